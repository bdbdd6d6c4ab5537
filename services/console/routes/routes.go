// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianConsole/pkg/extensions"
	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/handlers"
	"github.com/AleutianAI/AleutianConsole/services/console/itemform"
	"github.com/AleutianAI/AleutianConsole/services/console/mediatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/middleware"
	"github.com/AleutianAI/AleutianConsole/services/console/observability"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
	"github.com/AleutianAI/AleutianConsole/services/console/widgetfield"
)

// Dependencies are the services the routes are served by.
type Dependencies struct {
	Store   *store.Store
	Builder *itemform.Builder
	Lister  *mediatypes.Lister
	Metrics *observability.Metrics

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// RowsPerPage sizes the media type list. Defaults to
	// mediatypes.DefaultRowsPerPage.
	RowsPerPage handlers.RowsPerPage
}

func SetupRoutes(router *gin.Engine, deps Dependencies, opts extensions.ServiceOptions) {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	rows := deps.RowsPerPage
	if rows == nil {
		rows = handlers.FixedRows(mediatypes.DefaultRowsPerPage)
	}
	registries := func(dashboardID, editingWidgetID string) widgetfield.WidgetRegistry {
		return deps.Store.Dashboard(dashboardID, editingWidgetID)
	}
	read := func(resource string) gin.HandlerFunc {
		return middleware.Require(opts.AuthzProvider, extensions.ActionRead, resource)
	}
	write := func(resource string) gin.HandlerFunc {
		return middleware.Require(opts.AuthzProvider, extensions.ActionWrite, resource)
	}

	router.SetHTMLTemplate(handlers.Templates())
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	auth := middleware.AuthMiddleware(opts.AuthProvider)

	// Browser pages
	router.GET("/mediatypes", auth, read("mediatype"), handlers.HandleMediaTypePage(deps.Lister, rows))

	// API version 1 group
	v1 := router.Group("/v1", auth)
	{
		items := v1.Group("/items")
		{
			items.GET("/edit", read("item"), handlers.HandleItemEdit(deps.Builder, opts.AuthzProvider))
			items.POST("/edit", read("item"), handlers.HandleItemEdit(deps.Builder, opts.AuthzProvider))
		}

		mt := v1.Group("/mediatypes")
		{
			mt.GET("", read("mediatype"), handlers.HandleMediaTypeList(deps.Lister, rows))
			mt.GET("/export", read("mediatype"), handlers.HandleMediaTypeExport(deps.Store))
			mt.POST("/enable", write("mediatype"),
				handlers.HandleMediaTypeStatus(deps.Store, datatypes.MediaTypeStatusActive, deps.Metrics, opts.AuditLogger))
			mt.POST("/disable", write("mediatype"),
				handlers.HandleMediaTypeStatus(deps.Store, datatypes.MediaTypeStatusDisabled, deps.Metrics, opts.AuditLogger))
			mt.DELETE("", write("mediatype"), handlers.HandleMediaTypeDelete(deps.Store, opts.AuditLogger))
		}

		// Dashboard widget field routes
		dashboards := v1.Group("/dashboards/:dashboardid", read("dashboard"))
		{
			dashboards.GET("/widgets", handlers.HandleDashboardWidgets(registries, deps.Metrics))
			dashboards.POST("/widget-field/suggest", handlers.HandleWidgetFieldSuggest(registries, deps.Metrics))
			dashboards.POST("/widget-field/select", handlers.HandleWidgetFieldSelect(registries, deps.Metrics))
			dashboards.POST("/widget-field/options", handlers.HandleWidgetFieldOptions(deps.Metrics))
		}
	}
}
