// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianConsole/pkg/extensions"
	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/itemform"
	"github.com/AleutianAI/AleutianConsole/services/console/mediatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/middleware"
	"github.com/AleutianAI/AleutianConsole/services/console/observability"
	cbadger "github.com/AleutianAI/AleutianConsole/services/console/storage/badger"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
	"github.com/AleutianAI/AleutianConsole/services/console/tags"
	"github.com/AleutianAI/AleutianConsole/services/console/widgetfield"
)

// =============================================================================
// Test Setup
// =============================================================================

func init() {
	gin.SetMode(gin.TestMode)
}

const handlerFixture = `
hosts:
  - hostid: "10001"
    name: Linux by agent
    status: 3
    tags:
      - {tag: class, value: os}
  - hostid: "10100"
    name: web01
    status: 0
    templateids: ["10001"]
items:
  - {itemid: "20003", hostid: "10100", name: Uptime, key: system.uptime, flags: 0}
mediatypes:
  - {mediatypeid: "1", name: Email, type: 0, status: 0, smtp_server: mail.example.com}
  - {mediatypeid: "3", name: SMS, type: 2, status: 1, gsm_modem: /dev/ttyS0}
  - {mediatypeid: "12", name: Slack, type: 4, status: 0}
actions:
  - {actionid: "7", name: Report problems, mediatypeids: ["1", "12"]}
widgets:
  - {widgetid: "2", dashboardid: "1", reference: ABCDE, type: hostnavigator, name: Hosts, out_types: [_hostids]}
  - {widgetid: "3", dashboardid: "1", reference: KLMNO, type: hostnavigator, out_types: [_hostids]}
  - {widgetid: "10", dashboardid: "1", reference: FGHIJ, type: graph, name: CPU}
`

// recordingAudit keeps every audit event.
type recordingAudit struct {
	events []extensions.AuditEvent
}

func (r *recordingAudit) Log(_ context.Context, event extensions.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

type testEnv struct {
	store   *store.Store
	metrics *observability.Metrics
	audit   *recordingAudit
	router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := cbadger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.New(db, nil)
	fx, err := store.DecodeFixture(strings.NewReader(handlerFixture))
	require.NoError(t, err)
	_, err = s.Import(context.Background(), fx)
	require.NoError(t, err)

	env := &testEnv{
		store:   s,
		metrics: observability.NewMetrics(prometheus.NewRegistry()),
		audit:   &recordingAudit{},
	}

	builder := itemform.NewBuilder(s, tags.NewResolver(s, s, s, nil), env.metrics, nil)
	lister := mediatypes.NewLister(s, nil)
	registries := func(dashboardID, editingWidgetID string) widgetfield.WidgetRegistry {
		return s.Dashboard(dashboardID, editingWidgetID)
	}
	authz := &extensions.RoleAuthzProvider{}

	r := gin.New()
	r.SetHTMLTemplate(Templates())
	r.Use(middleware.RequestID())
	r.GET("/health", HealthCheck)
	r.GET("/mediatypes", HandleMediaTypePage(lister, FixedRows(2)))
	r.GET("/v1/items/edit", HandleItemEdit(builder, authz))
	r.POST("/v1/items/edit", HandleItemEdit(builder, authz))
	r.GET("/v1/mediatypes", HandleMediaTypeList(lister, FixedRows(50)))
	r.POST("/v1/mediatypes/enable", HandleMediaTypeStatus(s, datatypes.MediaTypeStatusActive, env.metrics, env.audit))
	r.POST("/v1/mediatypes/disable", HandleMediaTypeStatus(s, datatypes.MediaTypeStatusDisabled, env.metrics, env.audit))
	r.DELETE("/v1/mediatypes", HandleMediaTypeDelete(s, env.audit))
	r.GET("/v1/mediatypes/export", HandleMediaTypeExport(s))
	r.POST("/v1/dashboards/:dashboardid/widget-field/suggest", HandleWidgetFieldSuggest(registries, env.metrics))
	r.POST("/v1/dashboards/:dashboardid/widget-field/select", HandleWidgetFieldSelect(registries, env.metrics))
	r.POST("/v1/dashboards/:dashboardid/widget-field/options", HandleWidgetFieldOptions(env.metrics))
	r.GET("/v1/dashboards/:dashboardid/widgets", HandleDashboardWidgets(registries, env.metrics))
	env.router = r
	return env
}

func (env *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// =============================================================================
// Error mapping
// =============================================================================

func TestStatusFor(t *testing.T) {
	_, verr := itemform.NewBuilder(nil, nil, nil, nil).Build(context.Background(), itemform.Request{})
	require.Error(t, verr)

	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("get item: %w", store.ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusFor(verr))
	assert.Equal(t, http.StatusForbidden, statusFor(extensions.ErrUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("disk on fire")))
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	w := env.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// =============================================================================
// Item edit
// =============================================================================

func TestItemEdit_Get(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/v1/items/edit?context=host&itemid=20003", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decode[itemform.Data](t, w)
	assert.Equal(t, itemform.ActionName, data.Action)
	assert.Equal(t, "web01", data.Host.Name)
	assert.Equal(t, "system.uptime", data.Form.Key)
}

func TestItemEdit_PostNewItem(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/items/edit", map[string]any{"context": "host", "hostid": "10100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decode[itemform.Data](t, w)
	assert.Empty(t, data.Form.ItemID)
	assert.Equal(t, "10100", data.Form.HostID)
}

func TestItemEdit_Errors(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do("GET", "/v1/items/edit?context=host&itemid=99999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/v1/items/edit?itemid=20003", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/v1/items/edit?context=graph&hostid=1", nil).Code)

	req := httptest.NewRequest("POST", "/v1/items/edit", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// Media types
// =============================================================================

func TestMediaTypeList(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/v1/mediatypes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[mediatypes.Page](t, w)

	names := make([]string, 0, len(page.Rows))
	for _, r := range page.Rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Email", "Slack", "SMS"}, names)
	assert.Equal(t, 3, page.Paging.Total)
	assert.Equal(t, "Report problems", page.Rows[0].Actions[0].Name)
}

func TestMediaTypeList_Filters(t *testing.T) {
	env := newTestEnv(t)

	page := decode[mediatypes.Page](t, env.do("GET", "/v1/mediatypes?filter_status=1", nil))
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "SMS", page.Rows[0].Name)

	page = decode[mediatypes.Page](t, env.do("GET", "/v1/mediatypes?filter_name=LAC&sortorder=DESC", nil))
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Slack", page.Rows[0].Name)

	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/v1/mediatypes?filter_status=7", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/v1/mediatypes?sort=status", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/v1/mediatypes?page=abc", nil).Code)
}

func TestMediaTypePage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/mediatypes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Media types</title>")
	assert.Contains(t, body, `value="1"`)
	assert.Contains(t, body, "Report problems")
	assert.Contains(t, body, "Page 1 of 2.")
	assert.NotContains(t, body, "SMS")

	w = env.do("GET", "/mediatypes?page=2&format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[mediatypes.Page](t, w)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "SMS", page.Rows[0].Name)
}

func TestMediaTypeStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/mediatypes/disable", map[string]any{"mediatypeids": []string{"1", "3", "1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"action":"mediatype.disable","updated":1}`, w.Body.String())

	list, err := env.store.GetMediaTypes(context.Background(), []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, datatypes.MediaTypeStatusDisabled, list[0].Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.MediaTypeStatusChangesTotal.WithLabelValues("disabled")))

	require.Len(t, env.audit.events, 1)
	event := env.audit.events[0]
	assert.Equal(t, mediatypes.ActionDisable, event.EventType)
	assert.Equal(t, []string{"1", "3"}, event.ResourceIDs)
	assert.Equal(t, "success", event.Outcome)
	assert.NotEmpty(t, event.RequestID)
}

func TestMediaTypeStatus_UnknownIDIsAtomic(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/mediatypes/enable", map[string]any{"mediatypeids": []string{"3", "999"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	list, err := env.store.GetMediaTypes(context.Background(), []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, datatypes.MediaTypeStatusDisabled, list[0].Status)

	require.Len(t, env.audit.events, 1)
	assert.Equal(t, "failure", env.audit.events[0].Outcome)
}

func TestMediaTypeStatus_BadIDs(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest,
		env.do("POST", "/v1/mediatypes/enable", map[string]any{"mediatypeids": []string{"abc"}}).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.do("POST", "/v1/mediatypes/enable", map[string]any{"mediatypeids": []string{}}).Code)
	assert.Empty(t, env.audit.events)
}

func TestMediaTypeStatus_FormBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/v1/mediatypes/enable", strings.NewReader("mediatypeids[]=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"action":"mediatype.enable","updated":1}`, w.Body.String())
}

func TestMediaTypeDelete(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("DELETE", "/v1/mediatypes", map[string]any{"mediatypeids": []string{"12"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())

	gone, err := env.store.GetMediaTypes(context.Background(), []string{"12"})
	require.NoError(t, err)
	assert.Empty(t, gone)

	w = env.do("DELETE", "/v1/mediatypes", map[string]any{"mediatypeids": []string{"1", "12"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	kept, err := env.store.GetMediaTypes(context.Background(), []string{"1"})
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestMediaTypeExport(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/v1/mediatypes/export?mediatypeids[]=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/yaml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mediatypes.yaml")

	fx, err := store.DecodeFixture(w.Body)
	require.NoError(t, err)
	require.Len(t, fx.MediaTypes, 1)
	assert.Equal(t, "SMS", fx.MediaTypes[0].Name)

	w = env.do("GET", "/v1/mediatypes/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fx, err = store.DecodeFixture(w.Body)
	require.NoError(t, err)
	assert.Len(t, fx.MediaTypes, 3)

	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/v1/mediatypes/export?mediatypeids[]=x", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do("GET", "/v1/mediatypes/export?mediatypeids[]=404", nil).Code)
}

// =============================================================================
// Widget field
// =============================================================================

func hostsField() widgetfield.FieldConfig {
	return widgetfield.FieldConfig{
		FieldName:         "hostids",
		InType:            "_hostids",
		Labels:            widgetfield.Labels{Object: "Host", Objects: "Hosts"},
		WidgetAccepted:    true,
		DashboardAccepted: true,
	}
}

func TestWidgetFieldSuggest(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/dashboards/1/widget-field/suggest", map[string]any{
		"field":            hostsField(),
		"editing_widgetid": "3",
		"search":           "",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, "ABCDE._hostids")
	assert.NotContains(t, body, "KLMNO")
	assert.NotContains(t, body, "FGHIJ")
	assert.Equal(t, 1.0, testutil.ToFloat64(
		env.metrics.WidgetFieldOperationsTotal.WithLabelValues(observability.OpSuggest, observability.ResultSuccess)))
}

func TestWidgetFieldSelect_TypedReference(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{
		"field": hostsField(),
		"value": map[string]any{"selected": []map[string]string{{"id": "10100", "name": "web01"}}},
		"token": "ABCDE._hostids",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[fieldResponse](t, w)
	assert.True(t, resp.Selected)
	assert.Equal(t, "ABCDE._hostids", resp.Value.Reference)
	assert.Empty(t, resp.Value.Selected)
	assert.Equal(t, hostsField().ReferenceName(), resp.Control.Name)
	chips := resp.Control.Chips()
	require.Len(t, chips, 1)
	assert.Equal(t, "Hosts", chips[0].Name)
}

func TestWidgetFieldSelect_StaleToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{
		"field":            hostsField(),
		"editing_widgetid": "2",
		"token":            "ABCDE._hostids",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[fieldResponse](t, w)
	assert.False(t, resp.Selected)
	assert.Empty(t, resp.Value.Reference)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		env.metrics.WidgetFieldOperationsTotal.WithLabelValues(observability.OpSelect, observability.ResultStale)))
	assert.Equal(t, 0.0, testutil.ToFloat64(
		env.metrics.WidgetFieldOperationsTotal.WithLabelValues(observability.OpSelect, observability.ResultSuccess)))
}

func TestWidgetFieldSelect_Dashboard(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{
		"field":     hostsField(),
		"dashboard": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[fieldResponse](t, w)
	assert.True(t, resp.Selected)
	assert.Equal(t, datatypes.DashboardReference("_hostids").Token(), resp.Value.Reference)
}

func TestWidgetFieldSelect_AddAndRemove(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{
		"field": hostsField(),
		"value": map[string]any{"_reference": "ABCDE._hostids"},
		"add":   map[string]string{"id": "10100", "name": "web01"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[fieldResponse](t, w)
	assert.Empty(t, resp.Value.Reference)
	assert.Equal(t, []widgetfield.Entity{{ID: "10100", Name: "web01"}}, resp.Value.Selected)
	assert.Equal(t, hostsField().PlainName(), resp.Control.Name)
	assert.Equal(t, 0, resp.Control.Limit)

	w = env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{
		"field":  hostsField(),
		"value":  map[string]any{"selected": []map[string]string{{"id": "10100", "name": "web01"}}},
		"remove": "10100",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode[fieldResponse](t, w)
	assert.Empty(t, resp.Value.Selected)
}

func TestWidgetFieldSelect_RemoveReferenceRestoresPlainControl(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{
		"field":  hostsField(),
		"value":  map[string]any{"_reference": "ABCDE._hostids"},
		"remove": "ABCDE._hostids",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[fieldResponse](t, w)
	assert.Empty(t, resp.Value.Reference)
	assert.Empty(t, resp.Value.Selected)
	assert.Equal(t, hostsField().PlainName(), resp.Control.Name)
	assert.Equal(t, 0, resp.Control.Limit)
}

func TestWidgetFieldSelect_StaleSubmittedValueCountedOnce(t *testing.T) {
	env := newTestEnv(t)

	// Widget 2 is the one being edited, so its own reference cannot load.
	w := env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{
		"field":            hostsField(),
		"editing_widgetid": "2",
		"value":            map[string]any{"_reference": "ABCDE._hostids"},
		"dashboard":        true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[fieldResponse](t, w).Selected)

	count := func(op, result string) float64 {
		return testutil.ToFloat64(env.metrics.WidgetFieldOperationsTotal.WithLabelValues(op, result))
	}
	assert.Equal(t, 1.0, count(observability.OpInit, observability.ResultStale))
	assert.Equal(t, 0.0, count(observability.OpSelect, observability.ResultStale))
	assert.Equal(t, 1.0, count(observability.OpSelect, observability.ResultSuccess))
}

func TestWidgetFieldSelect_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest,
		env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{"field": hostsField()}).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.do("POST", "/v1/dashboards/abc/widget-field/select", map[string]any{"field": hostsField(), "dashboard": true}).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{
			"field":            hostsField(),
			"editing_widgetid": "x",
			"dashboard":        true,
		}).Code)

	bad := hostsField()
	bad.InType = "a.b"
	assert.Equal(t, http.StatusBadRequest,
		env.do("POST", "/v1/dashboards/1/widget-field/select", map[string]any{"field": bad, "dashboard": true}).Code)
}

func TestWidgetFieldOptions(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/v1/dashboards/1/widget-field/options", map[string]any{"field": hostsField()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Options      []widgetfield.OptionalSelect `json:"options"`
		SelectAction widgetfield.Action           `json:"select_action"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []widgetfield.OptionalSelect{
		{Label: "Hosts", Action: widgetfield.ActionDefaultPopup},
		{Label: widgetfield.WordWidget, Action: widgetfield.ActionWidgetPopup},
		{Label: widgetfield.WordDashboard, Action: widgetfield.ActionDashboardLink},
	}, resp.Options)
	assert.Equal(t, widgetfield.ActionDefaultPopup, resp.SelectAction)

	plain := hostsField()
	plain.WidgetAccepted = false
	w = env.do("POST", "/v1/dashboards/1/widget-field/options", map[string]any{"field": plain})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"options":[]`)
}

func TestDashboardWidgets(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/v1/dashboards/1/widgets?in_type=_hostids&editing_widgetid=3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"widgets":[{"id":"ABCDE._hostids","name":"Hosts"}]}`, w.Body.String())

	w = env.do("GET", "/v1/dashboards/9/widgets?in_type=_hostids", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"widgets":[]}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/v1/dashboards/1/widgets", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/v1/dashboards/1/widgets?in_type=_hostids&editing_widgetid=0", nil).Code)
}
