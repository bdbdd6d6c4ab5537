// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package itemform

import (
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

// Form contexts.
const (
	ContextHost     = "host"
	ContextTemplate = "template"
)

// NameValue is one row of an editable name/value table.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PreprocStep is a preprocessing step as the form edits it.
type PreprocStep struct {
	Type               int      `json:"type"`
	Params             []string `json:"params"`
	ErrorHandler       int      `json:"error_handler"`
	ErrorHandlerParams string   `json:"error_handler_params"`
	SortOrder          int      `json:"sortorder"`
}

// Form is the editable state of the item form.
type Form struct {
	ItemID            string                `json:"itemid"`
	HostID            string                `json:"hostid"`
	Type              int                   `json:"type"`
	Name              string                `json:"name"`
	Key               string                `json:"key"`
	Delay             string                `json:"delay"`
	DelayFlex         []DelayFlex           `json:"delay_flex"`
	History           string                `json:"history"`
	HistoryMode       int                   `json:"history_mode"`
	Trends            string                `json:"trends"`
	TrendsMode        int                   `json:"trends_mode"`
	Status            int                   `json:"status"`
	ValueType         int                   `json:"value_type"`
	Units             string                `json:"units"`
	TemplateID        string                `json:"templateid"`
	ValueMapID        string                `json:"valuemapid"`
	MasterItemID      string                `json:"master_itemid"`
	InterfaceID       string                `json:"interfaceid"`
	Description       string                `json:"description"`
	InventoryLink     int                   `json:"inventory_link"`
	Flags             int                   `json:"flags"`
	Tags              []datatypes.MergedTag `json:"tags"`
	Preprocessing     []PreprocStep         `json:"preprocessing"`
	URL               string                `json:"url"`
	QueryFields       []NameValue           `json:"query_fields"`
	Headers           []NameValue           `json:"headers"`
	HTTPAuthType      string                `json:"http_authtype"`
	HTTPUsername      string                `json:"http_username"`
	HTTPPassword      string                `json:"http_password"`
	Timeout           string                `json:"timeout"`
	SNMPOID           string                `json:"snmp_oid"`
	Params            string                `json:"params"`
	TrapperHosts      string                `json:"trapper_hosts"`
	Context           string                `json:"context"`
	ShowInheritedTags int                   `json:"show_inherited_tags"`
	Discovered        int                   `json:"discovered"`
}

// DefaultForm returns the form of a new item.
func DefaultForm(context, hostID string) Form {
	return Form{
		HostID:      hostID,
		Type:        datatypes.ItemTypeZabbixPassive,
		Delay:       datatypes.DefaultDelay,
		DelayFlex:   []DelayFlex{},
		History:     "90d",
		HistoryMode: datatypes.StorageCustom,
		Trends:      "365d",
		TrendsMode:  datatypes.StorageCustom,
		ValueType:   datatypes.ValueTypeUint,
		Tags:        []datatypes.MergedTag{{}},
		QueryFields: []NameValue{},
		Headers:     []NameValue{},
		Context:     context,
	}
}

// fromInput fills the blanks of a submitted form with defaults.
func fromInput(in *Form, context, hostID string) Form {
	def := DefaultForm(context, hostID)
	if in == nil {
		return def
	}
	f := *in
	f.Context = context
	if f.HostID == "" {
		f.HostID = hostID
	}
	if f.Delay == "" {
		f.Delay = def.Delay
	}
	if f.History == "" {
		f.History = def.History
	}
	if f.Trends == "" {
		f.Trends = def.Trends
	}
	if f.DelayFlex == nil {
		f.DelayFlex = def.DelayFlex
	}
	if len(f.Tags) == 0 {
		f.Tags = def.Tags
	}
	if f.QueryFields == nil {
		f.QueryFields = def.QueryFields
	}
	if f.Headers == nil {
		f.Headers = def.Headers
	}
	return f
}

// fromItem converts a stored item into its form.
func fromItem(item datatypes.Item, context string) Form {
	f := Form{
		ItemID:        item.ItemID,
		HostID:        item.HostID,
		Type:          item.Type,
		Name:          item.Name,
		Key:           item.Key,
		History:       item.History,
		HistoryMode:   storageMode(item.History),
		Trends:        item.Trends,
		TrendsMode:    storageMode(item.Trends),
		Status:        item.Status,
		ValueType:     item.ValueType,
		Units:         item.Units,
		TemplateID:    item.TemplateID,
		ValueMapID:    item.ValueMapID,
		MasterItemID:  item.MasterItemID,
		InterfaceID:   item.InterfaceID,
		Description:   item.Description,
		InventoryLink: item.InventoryLink,
		Flags:         item.Flags,
		Tags:          ownTags(item.Tags),
		Preprocessing: preprocessing(item.Preprocessing),
		URL:           item.URL,
		QueryFields:   []NameValue{},
		Headers:       []NameValue{},
		Timeout:       item.Timeout,
		SNMPOID:       item.SNMPOID,
		Params:        item.Params,
		TrapperHosts:  item.TrapperHosts,
		Context:       context,
	}
	if item.Flags == datatypes.FlagDiscoveryCreated {
		f.Discovered = 1
	}

	if item.Type == datatypes.ItemTypeHTTPAgent {
		f.HTTPAuthType = strconv.Itoa(item.AuthType)
		f.HTTPUsername = item.Username
		f.HTTPPassword = item.Password
		f.QueryFields = queryFields(item.QueryFields)
		f.Headers = headers(item.Headers)
	}

	f.Delay, f.DelayFlex = formDelay(item)
	return f
}

func storageMode(period string) int {
	if period == datatypes.NoStorageValue {
		return datatypes.StorageOff
	}
	return datatypes.StorageCustom
}

func ownTags(tags []datatypes.Tag) []datatypes.MergedTag {
	if len(tags) == 0 {
		return []datatypes.MergedTag{{}}
	}
	out := make([]datatypes.MergedTag, 0, len(tags))
	for _, t := range tags {
		out = append(out, datatypes.MergedTag{Tag: t.Tag, Value: t.Value})
	}
	return out
}

// preprocessing numbers the steps and splits multi-line parameters. Script
// steps keep their parameter whole.
func preprocessing(steps []datatypes.PreprocessingStep) []PreprocStep {
	out := make([]PreprocStep, 0, len(steps))
	for i, s := range steps {
		var params []string
		if s.Type == datatypes.PreprocScript {
			params = []string{s.Params, ""}
		} else {
			params = strings.Split(s.Params, "\n")
		}
		out = append(out, PreprocStep{
			Type:               s.Type,
			Params:             params,
			ErrorHandler:       s.ErrorHandler,
			ErrorHandlerParams: s.ErrorHandlerParams,
			SortOrder:          i,
		})
	}
	return out
}

func queryFields(fields []datatypes.QueryField) []NameValue {
	out := make([]NameValue, 0, len(fields))
	for _, field := range fields {
		names := make([]string, 0, len(field))
		for name := range field {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, NameValue{Name: name, Value: field[name]})
		}
	}
	return out
}

func headers(h map[string]string) []NameValue {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]NameValue, 0, len(h))
	for _, name := range names {
		out = append(out, NameValue{Name: name, Value: h[name]})
	}
	return out
}

// formDelay splits the stored update interval into the delay field and the
// custom interval rows. Items that are not polled get the default delay
// when their stored delay is zero.
func formDelay(item datatypes.Item) (string, []DelayFlex) {
	flex := []DelayFlex{}
	parsed, ok := ParseUpdateInterval(item.Delay)
	if !ok {
		return datatypes.DefaultDelay, flex
	}

	delay := parsed.Delay
	if !strings.HasPrefix(delay, "{") {
		secs, _ := TimeUnitToSeconds(delay)
		if secs == 0 && notPolled(item) {
			delay = datatypes.DefaultDelay
		}
	}
	flex = append(flex, parsed.Intervals...)
	return delay, flex
}

func notPolled(item datatypes.Item) bool {
	switch item.Type {
	case datatypes.ItemTypeTrapper, datatypes.ItemTypeSNMPTrap, datatypes.ItemTypeDependent:
		return true
	case datatypes.ItemTypeZabbixActive:
		return strings.HasPrefix(item.Key, "mqtt.get")
	default:
		return false
	}
}
