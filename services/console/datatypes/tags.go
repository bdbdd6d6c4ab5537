// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the console service.
//
// This file contains tag types shared by hosts, templates and items, and the
// merged tag entries produced for the item edit form.
package datatypes

// Provenance records where a merged tag came from.
//
// The numeric values match the property flags used by the console front end
// so the edit form can render them without translation.
type Provenance int

const (
	// ProvenanceOwn marks a tag defined directly on the item.
	ProvenanceOwn Provenance = 0

	// ProvenanceInherited marks a tag defined only on a template or the host.
	ProvenanceInherited Provenance = 1

	// ProvenanceBoth marks an inherited tag that the item redeclares.
	ProvenanceBoth Provenance = 2
)

// String returns "own", "inherited", "both" or "unknown".
func (p Provenance) String() string {
	switch p {
	case ProvenanceOwn:
		return "own"
	case ProvenanceInherited:
		return "inherited"
	case ProvenanceBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Tag is a name/value label. Two tags are the same tag only when both the
// name and the value match.
type Tag struct {
	Tag   string `json:"tag" yaml:"tag" validate:"max=255"`
	Value string `json:"value" yaml:"value" validate:"max=255"`
}

// Key returns the merge key of the tag.
func (t Tag) Key() TagKey {
	return TagKey{Tag: t.Tag, Value: t.Value}
}

// TagKey is the composite (tag, value) key used when merging tag sets.
type TagKey struct {
	Tag   string
	Value string
}

// Less orders keys by tag, then value.
func (k TagKey) Less(other TagKey) bool {
	if k.Tag != other.Tag {
		return k.Tag < other.Tag
	}
	return k.Value < other.Value
}

// TemplateSummary is the caption of one template in an item's template chain.
type TemplateSummary struct {
	TemplateID string `json:"templateid"`
	Name       string `json:"name"`
	ItemID     string `json:"itemid,omitempty"`
	Editable   bool   `json:"editable"`
}

// MergedTag is one row of the item edit form's tag table.
//
// ParentTemplates is keyed by template id and lists every template that
// contributed the pair. It is nil for own tags and for pairs redefined on
// the host.
type MergedTag struct {
	Tag             string                     `json:"tag"`
	Value           string                     `json:"value"`
	Type            *Provenance                `json:"type,omitempty"`
	ParentTemplates map[string]TemplateSummary `json:"parent_templates,omitempty"`
}

// Provenance returns the entry's provenance, or ProvenanceOwn for the empty
// placeholder row that carries none.
func (m MergedTag) Provenance() Provenance {
	if m.Type == nil {
		return ProvenanceOwn
	}
	return *m.Type
}

// ProvenancePtr returns a pointer to p for use in MergedTag literals.
func ProvenancePtr(p Provenance) *Provenance {
	return &p
}
