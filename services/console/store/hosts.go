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
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

// PutHost creates or replaces a host or template.
func (s *Store) PutHost(ctx context.Context, host datatypes.Host) error {
	if err := host.Validate(); err != nil {
		return err
	}
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return putJSON(txn, prefixHost+host.HostID, host)
	})
}

// GetHost returns the host or template with the given id.
func (s *Store) GetHost(ctx context.Context, hostID string) (datatypes.Host, error) {
	var host datatypes.Host
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		host, err = getJSON[datatypes.Host](txn, prefixHost+hostID)
		return err
	})
	return host, err
}

// GetTemplate returns a template. A host that is not a template is reported
// as not found.
func (s *Store) GetTemplate(ctx context.Context, templateID string) (datatypes.Host, error) {
	host, err := s.GetHost(ctx, templateID)
	if err != nil {
		return host, err
	}
	if !host.IsTemplate() {
		return datatypes.Host{}, fmt.Errorf("template %s: %w", templateID, ErrNotFound)
	}
	return host, nil
}

// HostByItem returns the host owning the given item.
func (s *Store) HostByItem(ctx context.Context, itemID string) (datatypes.Host, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return datatypes.Host{}, err
	}
	return s.GetHost(ctx, item.HostID)
}

// Templates returns the templates with the given ids keyed by id.
//
// # Description
//
// One read transaction serves the whole batch. Ids that do not exist or do
// not name a template are absent from the result rather than reported.
func (s *Store) Templates(ctx context.Context, templateIDs []string) (map[string]datatypes.Host, error) {
	out := make(map[string]datatypes.Host, len(templateIDs))
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		for _, id := range templateIDs {
			host, err := getJSON[datatypes.Host](txn, prefixHost+id)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return err
			}
			if host.IsTemplate() {
				out[id] = host
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TemplateTags returns the tags of each given template, keyed by template id.
func (s *Store) TemplateTags(ctx context.Context, templateIDs []string) (map[string][]datatypes.Tag, error) {
	templates, err := s.Templates(ctx, templateIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]datatypes.Tag, len(templates))
	for id, tpl := range templates {
		out[id] = tpl.Tags
	}
	return out, nil
}

// HostTags returns the tags of a host together with the tags it inherits
// from its linked templates.
//
// # Description
//
// The host's own tags come first, followed by template tags in link order,
// walking nested template links depth first. Duplicate (tag, value) pairs
// are reported once. Template link cycles are cut.
//
// # Outputs
//
//   - []datatypes.Tag: Merged tag list.
//   - error: Wraps ErrNotFound when the host does not exist.
func (s *Store) HostTags(ctx context.Context, hostID string) ([]datatypes.Tag, error) {
	var tags []datatypes.Tag
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		host, err := getJSON[datatypes.Host](txn, prefixHost+hostID)
		if err != nil {
			return err
		}

		seen := make(map[datatypes.TagKey]bool)
		add := func(list []datatypes.Tag) {
			for _, t := range list {
				if !seen[t.Key()] {
					seen[t.Key()] = true
					tags = append(tags, t)
				}
			}
		}
		add(host.Tags)

		visited := map[string]bool{host.HostID: true}
		var walk func(ids []string) error
		walk = func(ids []string) error {
			for _, id := range ids {
				if visited[id] {
					continue
				}
				visited[id] = true
				tpl, err := getJSON[datatypes.Host](txn, prefixHost+id)
				if err != nil {
					if isNotFound(err) {
						continue
					}
					return err
				}
				add(tpl.Tags)
				if err := walk(tpl.TemplateIDs); err != nil {
					return err
				}
			}
			return nil
		}
		return walk(host.TemplateIDs)
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// DeleteHost removes a host or template.
func (s *Store) DeleteHost(ctx context.Context, hostID string) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return deleteKey(txn, prefixHost+hostID)
	})
}

// ListHosts returns every host and template ordered by id.
func (s *Store) ListHosts(ctx context.Context) ([]datatypes.Host, error) {
	var hosts []datatypes.Host
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		hosts, err = scanJSON[datatypes.Host](txn, prefixHost)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortByID(hosts, func(h datatypes.Host) string { return h.HostID })
	return hosts, nil
}

// PutValueMap creates or replaces a value map.
func (s *Store) PutValueMap(ctx context.Context, vm datatypes.ValueMap) error {
	if err := vm.Validate(); err != nil {
		return err
	}
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return putJSON(txn, prefixValueMap+vm.ValueMapID, vm)
	})
}

// GetValueMap returns a value map.
func (s *Store) GetValueMap(ctx context.Context, valueMapID string) (datatypes.ValueMap, error) {
	var vm datatypes.ValueMap
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		vm, err = getJSON[datatypes.ValueMap](txn, prefixValueMap+valueMapID)
		return err
	})
	return vm, err
}
