// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// =============================================================================
// Item Constants
// =============================================================================

// Item types.
const (
	ItemTypeZabbixPassive = 0
	ItemTypeTrapper       = 2
	ItemTypeSimple        = 3
	ItemTypeInternal      = 5
	ItemTypeZabbixActive  = 7
	ItemTypeHTTPTest      = 9
	ItemTypeExternal      = 10
	ItemTypeDBMonitor     = 11
	ItemTypeIPMI          = 12
	ItemTypeSSH           = 13
	ItemTypeTelnet        = 14
	ItemTypeCalculated    = 15
	ItemTypeJMX           = 16
	ItemTypeSNMPTrap      = 17
	ItemTypeDependent     = 18
	ItemTypeHTTPAgent     = 19
	ItemTypeSNMP          = 20
	ItemTypeScript        = 21
)

// Item value types.
const (
	ValueTypeFloat = 0
	ValueTypeStr   = 1
	ValueTypeLog   = 2
	ValueTypeUint  = 3
	ValueTypeText  = 4
)

// Item flags.
const (
	FlagDiscoveryNormal    = 0
	FlagDiscoveryRule      = 1
	FlagDiscoveryPrototype = 2
	FlagDiscoveryCreated   = 4
)

// Storage modes for history and trends.
const (
	StorageCustom = 0
	StorageOff    = 1
)

// Preprocessing step type for JavaScript, whose params are not newline split.
const PreprocScript = 21

// NoStorageValue is the history/trends value meaning "do not store".
const NoStorageValue = "0"

// DefaultDelay is the update interval used when none can be derived.
const DefaultDelay = "1m"

// =============================================================================
// Item
// =============================================================================

// PreprocessingStep is one stored preprocessing step.
type PreprocessingStep struct {
	Type               int    `json:"type" yaml:"type"`
	Params             string `json:"params" yaml:"params"`
	ErrorHandler       int    `json:"error_handler" yaml:"error_handler"`
	ErrorHandlerParams string `json:"error_handler_params" yaml:"error_handler_params"`
}

// QueryField is one HTTP agent query field as stored (a single-entry map).
type QueryField map[string]string

// Item is a stored item, discovery rule or item prototype.
//
// Discovery rules are Items with Flags == FlagDiscoveryRule. A discovered
// item carries DiscoveryRuleID (the rule that created it) and ParentItemID
// (the prototype it was created from).
type Item struct {
	ItemID          string              `json:"itemid" yaml:"itemid" validate:"required,numeric"`
	HostID          string              `json:"hostid" yaml:"hostid" validate:"required,numeric"`
	Type            int                 `json:"type" yaml:"type" validate:"gte=0,lte=21"`
	Name            string              `json:"name" yaml:"name" validate:"required,max=255"`
	Key             string              `json:"key_" yaml:"key" validate:"required,max=2048"`
	Delay           string              `json:"delay" yaml:"delay"`
	History         string              `json:"history" yaml:"history"`
	Trends          string              `json:"trends" yaml:"trends"`
	Status          int                 `json:"status" yaml:"status" validate:"oneof=0 1"`
	ValueType       int                 `json:"value_type" yaml:"value_type" validate:"gte=0,lte=4"`
	Units           string              `json:"units" yaml:"units"`
	TemplateID      string              `json:"templateid" yaml:"templateid" validate:"omitempty,numeric"`
	ValueMapID      string              `json:"valuemapid" yaml:"valuemapid" validate:"omitempty,numeric"`
	MasterItemID    string              `json:"master_itemid" yaml:"master_itemid" validate:"omitempty,numeric"`
	Flags           int                 `json:"flags" yaml:"flags" validate:"oneof=0 1 2 4"`
	DiscoveryRuleID string              `json:"discovery_ruleid,omitempty" yaml:"discovery_ruleid,omitempty" validate:"omitempty,numeric"`
	ParentItemID    string              `json:"parent_itemid,omitempty" yaml:"parent_itemid,omitempty" validate:"omitempty,numeric"`
	InterfaceID     string              `json:"interfaceid" yaml:"interfaceid"`
	Description     string              `json:"description" yaml:"description"`
	InventoryLink   int                 `json:"inventory_link" yaml:"inventory_link"`
	Tags            []Tag               `json:"tags,omitempty" yaml:"tags,omitempty" validate:"dive"`
	Preprocessing   []PreprocessingStep `json:"preprocessing,omitempty" yaml:"preprocessing,omitempty"`
	URL             string              `json:"url,omitempty" yaml:"url,omitempty"`
	QueryFields     []QueryField        `json:"query_fields,omitempty" yaml:"query_fields,omitempty"`
	Headers         map[string]string   `json:"headers,omitempty" yaml:"headers,omitempty"`
	AuthType        int                 `json:"authtype" yaml:"authtype"`
	Username        string              `json:"username,omitempty" yaml:"username,omitempty"`
	Password        string              `json:"password,omitempty" yaml:"password,omitempty"`
	Timeout         string              `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	SNMPOID         string              `json:"snmp_oid,omitempty" yaml:"snmp_oid,omitempty"`
	Params          string              `json:"params,omitempty" yaml:"params,omitempty"`
	TrapperHosts    string              `json:"trapper_hosts,omitempty" yaml:"trapper_hosts,omitempty"`
	Lifetime        string              `json:"lifetime,omitempty" yaml:"lifetime,omitempty"`
}

// IsDiscoveryRule reports whether the item is a low-level discovery rule.
func (i Item) IsDiscoveryRule() bool {
	return i.Flags == FlagDiscoveryRule
}

// DiscoveryRuleRef is the caption of the discovery rule owning an item.
type DiscoveryRuleRef struct {
	ItemID     string `json:"itemid"`
	Name       string `json:"name"`
	TemplateID string `json:"templateid"`
}
