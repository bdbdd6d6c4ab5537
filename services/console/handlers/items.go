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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianConsole/pkg/extensions"
	"github.com/AleutianAI/AleutianConsole/services/console/itemform"
	"github.com/AleutianAI/AleutianConsole/services/console/middleware"
)

// HandleItemEdit serves the item edit form data.
//
// GET reads the request from the query string. POST reads a JSON body and
// is used for form refreshes, which carry the edited form. Parent template
// links are editable when the caller may write templates.
func HandleItemEdit(builder *itemform.Builder, authz extensions.AuthzProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req itemform.Request
		var err error
		if c.Request.Method == http.MethodGet {
			err = c.ShouldBindQuery(&req)
		} else {
			err = c.ShouldBindJSON(&req)
		}
		if err != nil {
			badRequest(c, err)
			return
		}

		req.TemplateAccess = authz.Authorize(c.Request.Context(), extensions.AuthzRequest{
			User:         middleware.GetAuthInfo(c),
			Action:       extensions.ActionWrite,
			ResourceType: "template",
		}) == nil

		data, err := builder.Build(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}
