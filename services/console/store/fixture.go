// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

// Fixture is the YAML document accepted by Import.
type Fixture struct {
	Hosts      []datatypes.Host      `yaml:"hosts"`
	Items      []datatypes.Item      `yaml:"items"`
	ValueMaps  []datatypes.ValueMap  `yaml:"valuemaps"`
	MediaTypes []datatypes.MediaType `yaml:"mediatypes"`
	Actions    []datatypes.Action    `yaml:"actions"`
	Widgets    []datatypes.Widget    `yaml:"widgets"`
}

// ImportStats counts the records written by Import.
type ImportStats struct {
	Hosts      int
	Items      int
	ValueMaps  int
	MediaTypes int
	Actions    int
	Widgets    int
}

// Total returns the number of records written.
func (s ImportStats) Total() int {
	return s.Hosts + s.Items + s.ValueMaps + s.MediaTypes + s.Actions + s.Widgets
}

// DecodeFixture parses a fixture document. Unknown fields are rejected so
// typos in hand-written fixtures surface immediately.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// Import validates every record of the fixture and then writes them.
//
// # Description
//
// Validation runs over the whole document before anything is written, so a
// fixture with one bad record leaves the store untouched. Records are
// written entity by entity; existing records with the same id are replaced.
//
// # Outputs
//
//   - ImportStats: Counts per entity kind.
//   - error: Validation error naming the offending record, or a storage error.
func (s *Store) Import(ctx context.Context, fx *Fixture) (ImportStats, error) {
	var stats ImportStats
	if err := fx.validate(); err != nil {
		return stats, err
	}

	for _, h := range fx.Hosts {
		if err := s.PutHost(ctx, h); err != nil {
			return stats, err
		}
		stats.Hosts++
	}
	for _, vm := range fx.ValueMaps {
		if err := s.PutValueMap(ctx, vm); err != nil {
			return stats, err
		}
		stats.ValueMaps++
	}
	for _, it := range fx.Items {
		if err := s.PutItem(ctx, it); err != nil {
			return stats, err
		}
		stats.Items++
	}
	for _, mt := range fx.MediaTypes {
		if err := s.PutMediaType(ctx, mt); err != nil {
			return stats, err
		}
		stats.MediaTypes++
	}
	for _, a := range fx.Actions {
		if err := s.PutAction(ctx, a); err != nil {
			return stats, err
		}
		stats.Actions++
	}
	for _, w := range fx.Widgets {
		if err := s.PutWidget(ctx, w); err != nil {
			return stats, err
		}
		stats.Widgets++
	}

	s.logger.Info("fixture imported",
		"hosts", stats.Hosts,
		"items", stats.Items,
		"mediatypes", stats.MediaTypes,
		"actions", stats.Actions,
		"widgets", stats.Widgets)
	return stats, nil
}

func (fx *Fixture) validate() error {
	for i := range fx.Hosts {
		if err := fx.Hosts[i].Validate(); err != nil {
			return fmt.Errorf("hosts[%d]: %w", i, err)
		}
	}
	for i := range fx.Items {
		if err := fx.Items[i].Validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	for i := range fx.ValueMaps {
		if err := fx.ValueMaps[i].Validate(); err != nil {
			return fmt.Errorf("valuemaps[%d]: %w", i, err)
		}
	}
	for i := range fx.MediaTypes {
		if err := fx.MediaTypes[i].Validate(); err != nil {
			return fmt.Errorf("mediatypes[%d]: %w", i, err)
		}
	}
	for i := range fx.Actions {
		if err := fx.Actions[i].Validate(); err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
	}
	for i := range fx.Widgets {
		if err := fx.Widgets[i].Validate(); err != nil {
			return fmt.Errorf("widgets[%d]: %w", i, err)
		}
	}
	return nil
}

// ExportMediaTypes writes the given media types as a YAML fixture document
// containing only the mediatypes section.
func ExportMediaTypes(w io.Writer, mediaTypes []datatypes.MediaType) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	doc := struct {
		MediaTypes []datatypes.MediaType `yaml:"mediatypes"`
	}{MediaTypes: mediaTypes}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode media types: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode media types: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
