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
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// Interface requirements of item types.
const (
	InterfaceTypeAny      = -1
	InterfaceTypeOptional = -2
)

type itemTypeEntry struct {
	Type      int    `yaml:"type"`
	Name      string `yaml:"name"`
	Interface int    `yaml:"interface"`
}

type keyEntry struct {
	Key       string `yaml:"key"`
	ValueType int    `yaml:"value_type"`
	Types     []int  `yaml:"types"`
}

// InventoryFieldDef is one host inventory attribute.
type InventoryFieldDef struct {
	Nr      int    `yaml:"nr"`
	DBField string `yaml:"db_field"`
	Title   string `yaml:"title"`
}

// Catalogue holds the static item form catalogues.
type Catalogue struct {
	ItemTypes       []itemTypeEntry     `yaml:"item_types"`
	Keys            []keyEntry          `yaml:"keys"`
	InventoryFields []InventoryFieldDef `yaml:"inventory_fields"`
}

var (
	catalogueOnce sync.Once
	catalogue     *Catalogue
	catalogueErr  error
)

// LoadCatalogue parses the embedded catalogue once.
func LoadCatalogue() (*Catalogue, error) {
	catalogueOnce.Do(func() {
		var c Catalogue
		if err := yaml.Unmarshal(catalogueYAML, &c); err != nil {
			catalogueErr = fmt.Errorf("parse item catalogue: %w", err)
			return
		}
		catalogue = &c
	})
	return catalogue, catalogueErr
}

// Types returns item type names keyed by type. Web scenario items are
// never offered in the form.
func (c *Catalogue) Types() map[int]string {
	out := make(map[int]string, len(c.ItemTypes))
	for _, t := range c.ItemTypes {
		if t.Type == datatypes.ItemTypeHTTPTest {
			continue
		}
		out[t.Type] = t.Name
	}
	return out
}

// InterfaceTypes returns the interface type each item type needs. Types
// that need no interface are absent.
func (c *Catalogue) InterfaceTypes() map[int]int {
	out := make(map[int]int)
	for _, t := range c.ItemTypes {
		if t.Interface != 0 {
			out[t.Type] = t.Interface
		}
	}
	return out
}

// ValueTypeKeys returns, per item type, the known keys and the value type
// each key produces.
func (c *Catalogue) ValueTypeKeys() map[int]map[string]int {
	out := make(map[int]map[string]int)
	for _, k := range c.Keys {
		for _, t := range k.Types {
			if out[t] == nil {
				out[t] = make(map[string]int)
			}
			out[t][k.Key] = k.ValueType
		}
	}
	return out
}
