// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianConsole/pkg/extensions"
	"github.com/AleutianAI/AleutianConsole/pkg/validation"
	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/mediatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/middleware"
	"github.com/AleutianAI/AleutianConsole/services/console/observability"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded HTML templates for gin's renderer.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// MediaTypeStore is the storage the media type endpoints change.
type MediaTypeStore interface {
	ListMediaTypes(ctx context.Context) ([]datatypes.MediaType, error)
	GetMediaTypes(ctx context.Context, ids []string) ([]datatypes.MediaType, error)
	SetMediaTypeStatus(ctx context.Context, ids []string, status int) (int, error)
	DeleteMediaTypes(ctx context.Context, ids []string) error
}

// RowsPerPage returns the current list page size. It is read on every
// request so a reloaded configuration applies without a restart.
type RowsPerPage func() int

// FixedRows returns a RowsPerPage that always reports n.
func FixedRows(n int) RowsPerPage {
	return func() int { return n }
}

type mediaTypeIDsRequest struct {
	IDs []string `json:"mediatypeids" form:"mediatypeids[]"`
}

func bindIDs(c *gin.Context) ([]string, bool) {
	var req mediaTypeIDsRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return nil, false
	}
	ids, err := validation.SanitizeIDs(req.IDs)
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	return ids, true
}

func bindListQuery(c *gin.Context, rowsPerPage RowsPerPage) (mediatypes.Query, bool) {
	q := mediatypes.DefaultQuery()
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return q, false
	}
	q.RowsPerPage = rowsPerPage()
	return q, true
}

// HandleMediaTypeList returns one page of the media type list as JSON.
func HandleMediaTypeList(lister *mediatypes.Lister, rowsPerPage RowsPerPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindListQuery(c, rowsPerPage)
		if !ok {
			return
		}
		page, err := lister.List(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleMediaTypePage renders the media type list page. format=json
// returns the view model instead.
func HandleMediaTypePage(lister *mediatypes.Lister, rowsPerPage RowsPerPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindListQuery(c, rowsPerPage)
		if !ok {
			return
		}
		page, err := lister.List(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		if c.Query("format") == "json" {
			c.JSON(http.StatusOK, page)
			return
		}
		c.HTML(http.StatusOK, "mediatypes.html", page)
	}
}

// HandleMediaTypeStatus enables or disables the posted media types. The
// change is atomic: an unknown id leaves every media type untouched.
func HandleMediaTypeStatus(st MediaTypeStore, status int, metrics *observability.Metrics,
	audit extensions.AuditLogger) gin.HandlerFunc {

	action := mediatypes.ActionEnable
	if status == datatypes.MediaTypeStatusDisabled {
		action = mediatypes.ActionDisable
	}
	return func(c *gin.Context) {
		ids, ok := bindIDs(c)
		if !ok {
			return
		}
		changed, err := st.SetMediaTypeStatus(c.Request.Context(), ids, status)
		recordAudit(c, audit, action, ids, err)
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.RecordMediaTypeStatusChange(status == datatypes.MediaTypeStatusActive, changed)
		slog.Info("media type status changed", "action", action, "ids", ids, "changed", changed)
		c.JSON(http.StatusOK, gin.H{"action": action, "updated": changed})
	}
}

// HandleMediaTypeDelete deletes the given media types atomically.
func HandleMediaTypeDelete(st MediaTypeStore, audit extensions.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := bindIDs(c)
		if !ok {
			return
		}
		err := st.DeleteMediaTypes(c.Request.Context(), ids)
		recordAudit(c, audit, "mediatype.delete", ids, err)
		if err != nil {
			respondError(c, err)
			return
		}
		slog.Info("media types deleted", "ids", ids)
		c.JSON(http.StatusOK, gin.H{"deleted": len(ids)})
	}
}

// HandleMediaTypeExport returns the selected media types, or all of them
// when none are selected, as a YAML fixture document. Unknown ids are
// skipped; a selection with no known id is a 404.
func HandleMediaTypeExport(st MediaTypeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.QueryArray("mediatypeids[]")

		var (
			list []datatypes.MediaType
			err  error
		)
		if len(raw) == 0 {
			list, err = st.ListMediaTypes(c.Request.Context())
		} else {
			ids, verr := validation.SanitizeIDs(raw)
			if verr != nil {
				badRequest(c, verr)
				return
			}
			list, err = st.GetMediaTypes(c.Request.Context(), ids)
			if err == nil && len(list) == 0 {
				err = fmt.Errorf("media types %v: %w", ids, store.ErrNotFound)
			}
		}
		if err != nil {
			respondError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := store.ExportMediaTypes(&buf, list); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="mediatypes.yaml"`)
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", buf.Bytes())
	}
}

func recordAudit(c *gin.Context, audit extensions.AuditLogger, eventType string, ids []string, err error) {
	if audit == nil {
		return
	}
	event := extensions.AuditEvent{
		EventType:    eventType,
		ResourceType: "mediatype",
		ResourceIDs:  ids,
		Outcome:      "success",
		RequestID:    middleware.GetRequestID(c),
	}
	if info := middleware.GetAuthInfo(c); info != nil {
		event.UserID = info.UserID
	}
	if err != nil {
		event.Outcome = "failure"
	}
	if aerr := audit.Log(c.Request.Context(), event); aerr != nil {
		slog.Warn("audit log failed", "event_type", eventType, "error", aerr)
	}
}
