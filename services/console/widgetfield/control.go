// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package widgetfield

// Control is the multi-select control a field renders into.
type Control interface {
	// Modify sets the submission name and capacity.
	Modify(name string, limit int)

	// Clear empties the rendered list.
	Clear()

	// AddData appends chips. Chips beyond the capacity are ignored.
	AddData(entities ...Entity)

	// PrependReferenceIcon puts the typed reference indicator in front of
	// the chips, with hint as its tooltip.
	PrependReferenceIcon(hint string)
}

// Apply renders s onto control. The list is always rebuilt from scratch.
func Apply(control Control, s State) {
	control.Clear()
	control.Modify(s.Name, s.Limit)
	control.AddData(s.Selected()...)
	if ref, ok := s.Selection.(ReferenceSelection); ok && ref.Hint != "" {
		control.PrependReferenceIcon(ref.Hint)
	}
}

// Kinds of ListItem.
const (
	ItemChip          = "chip"
	ItemReferenceIcon = "reference"
)

// ListItem is one rendered element of a ListControl.
type ListItem struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Hint string `json:"hint,omitempty"`
}

// ListControl is an in-memory Control. Its JSON form is what the browser
// form receives.
type ListControl struct {
	Name  string     `json:"name"`
	Limit int        `json:"selected_limit"`
	Items []ListItem `json:"items"`
}

// NewListControl returns an empty control.
func NewListControl() *ListControl {
	return &ListControl{Items: []ListItem{}}
}

func (c *ListControl) Modify(name string, limit int) {
	c.Name = name
	c.Limit = limit
}

func (c *ListControl) Clear() {
	c.Items = []ListItem{}
}

func (c *ListControl) AddData(entities ...Entity) {
	for _, e := range entities {
		if c.Limit > 0 && len(c.Chips()) >= c.Limit {
			return
		}
		c.Items = append(c.Items, ListItem{Kind: ItemChip, ID: e.ID, Name: e.Name})
	}
}

func (c *ListControl) PrependReferenceIcon(hint string) {
	c.Items = append([]ListItem{{Kind: ItemReferenceIcon, Hint: hint}}, c.Items...)
}

// Chips returns the chip items, skipping indicators.
func (c *ListControl) Chips() []ListItem {
	var out []ListItem
	for _, it := range c.Items {
		if it.Kind == ItemChip {
			out = append(out, it)
		}
	}
	return out
}
