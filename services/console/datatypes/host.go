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

// Host status values. Templates are stored as hosts with HostStatusTemplate.
const (
	HostStatusMonitored    = 0
	HostStatusNotMonitored = 1
	HostStatusTemplate     = 3
)

// Interface types.
const (
	InterfaceTypeAgent = 1
	InterfaceTypeSNMP  = 2
	InterfaceTypeIPMI  = 3
	InterfaceTypeJMX   = 4
)

// Interface is a host network interface.
type Interface struct {
	InterfaceID string            `json:"interfaceid" yaml:"interfaceid" validate:"required,numeric"`
	Type        int               `json:"type" yaml:"type" validate:"oneof=1 2 3 4"`
	IP          string            `json:"ip" yaml:"ip"`
	DNS         string            `json:"dns" yaml:"dns"`
	Port        string            `json:"port" yaml:"port"`
	UseIP       int               `json:"useip" yaml:"useip"`
	Main        int               `json:"main" yaml:"main"`
	Details     map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Host is a monitored host or, when Status is HostStatusTemplate, a template.
type Host struct {
	HostID      string      `json:"hostid" yaml:"hostid" validate:"required,numeric"`
	Name        string      `json:"name" yaml:"name" validate:"required,max=128"`
	Flags       int         `json:"flags" yaml:"flags"`
	Status      int         `json:"status" yaml:"status" validate:"oneof=0 1 3"`
	Interfaces  []Interface `json:"interfaces,omitempty" yaml:"interfaces,omitempty" validate:"dive"`
	Tags        []Tag       `json:"tags,omitempty" yaml:"tags,omitempty" validate:"dive"`
	TemplateIDs []string    `json:"templateids,omitempty" yaml:"templateids,omitempty" validate:"dive,numeric"`
}

// IsTemplate reports whether the host record is a template.
func (h Host) IsTemplate() bool {
	return h.Status == HostStatusTemplate
}

// ValueMap is a named value mapping referenced by items.
type ValueMap struct {
	ValueMapID string `json:"valuemapid" yaml:"valuemapid" validate:"required,numeric"`
	HostID     string `json:"hostid" yaml:"hostid"`
	Name       string `json:"name" yaml:"name" validate:"required"`
}
