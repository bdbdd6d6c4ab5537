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

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

// maxTemplateDepth bounds template chain walks so corrupt templateid links
// cannot loop forever.
const maxTemplateDepth = 64

// PutItem creates or replaces an item, discovery rule or prototype.
func (s *Store) PutItem(ctx context.Context, item datatypes.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return putJSON(txn, prefixItem+item.ItemID, item)
	})
}

// GetItem returns the item with the given id.
func (s *Store) GetItem(ctx context.Context, itemID string) (datatypes.Item, error) {
	var item datatypes.Item
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		item, err = getJSON[datatypes.Item](txn, prefixItem+itemID)
		return err
	})
	return item, err
}

// ItemsByHost returns the items of one host ordered by id. Discovery rules
// and prototypes are included.
func (s *Store) ItemsByHost(ctx context.Context, hostID string) ([]datatypes.Item, error) {
	var items []datatypes.Item
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		all, err := scanJSON[datatypes.Item](txn, prefixItem)
		if err != nil {
			return err
		}
		for _, it := range all {
			if it.HostID == hostID {
				items = append(items, it)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByID(items, func(i datatypes.Item) string { return i.ItemID })
	return items, nil
}

// InventoryLinks returns the inventory field numbers already populated by
// items on the host.
func (s *Store) InventoryLinks(ctx context.Context, hostID string) (map[int]bool, error) {
	items, err := s.ItemsByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	links := make(map[int]bool)
	for _, it := range items {
		if it.InventoryLink != 0 {
			links[it.InventoryLink] = true
		}
	}
	return links, nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return deleteKey(txn, prefixItem+itemID)
	})
}

// DiscoveryRule returns the caption of the discovery rule that owns the
// item, or nil when the item was not created by a rule.
//
// # Description
//
// For discovered items the rule is DiscoveryRuleID. Prototypes also carry
// DiscoveryRuleID. The rule's own templateid is returned so the template
// chain can be traced through the rule.
func (s *Store) DiscoveryRule(ctx context.Context, item datatypes.Item) (*datatypes.DiscoveryRuleRef, error) {
	if item.DiscoveryRuleID == "" {
		return nil, nil
	}
	rule, err := s.GetItem(ctx, item.DiscoveryRuleID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &datatypes.DiscoveryRuleRef{
		ItemID:     rule.ItemID,
		Name:       rule.Name,
		TemplateID: rule.TemplateID,
	}, nil
}

// ParentTemplates resolves the template chain of an item or discovery rule.
//
// # Description
//
// Follows templateid links from the given item upwards. Every parent item
// lives on a template; that template becomes the next chain entry. The
// result is ordered from the closest template to the most distant one.
//
// Index 0 is always a sentinel entry for the item itself (TemplateID "0",
// ItemID set to itemID). Consumers that only want ancestors must skip it.
//
// # Inputs
//
//   - itemID: The item or rule being edited. May be empty for new items.
//   - templateID: The item's templateid. Empty means no ancestors.
//
// # Outputs
//
//   - []datatypes.TemplateSummary: Sentinel followed by ancestors.
//   - error: Only for storage failures. Broken links end the chain.
func (s *Store) ParentTemplates(ctx context.Context, itemID, templateID string) ([]datatypes.TemplateSummary, error) {
	chain := []datatypes.TemplateSummary{{TemplateID: "0", ItemID: itemID}}

	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		seen := make(map[string]bool)
		next := templateID
		for depth := 0; next != "" && next != "0" && depth < maxTemplateDepth; depth++ {
			if seen[next] {
				break
			}
			seen[next] = true

			parent, err := getJSON[datatypes.Item](txn, prefixItem+next)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				return err
			}
			tpl, err := getJSON[datatypes.Host](txn, prefixHost+parent.HostID)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				return err
			}
			chain = append(chain, datatypes.TemplateSummary{
				TemplateID: tpl.HostID,
				Name:       tpl.Name,
				ItemID:     parent.ItemID,
			})
			next = parent.TemplateID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chain, nil
}
