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
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
)

// PutMediaType creates or replaces a media type.
func (s *Store) PutMediaType(ctx context.Context, mt datatypes.MediaType) error {
	if err := mt.Validate(); err != nil {
		return err
	}
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return putJSON(txn, prefixMediaType+mt.MediaTypeID, mt)
	})
}

// ListMediaTypes returns all media types ordered by id.
func (s *Store) ListMediaTypes(ctx context.Context) ([]datatypes.MediaType, error) {
	var out []datatypes.MediaType
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		out, err = scanJSON[datatypes.MediaType](txn, prefixMediaType)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortByID(out, func(m datatypes.MediaType) string { return m.MediaTypeID })
	return out, nil
}

// GetMediaTypes returns the media types with the given ids in request order.
// Unknown ids are skipped.
func (s *Store) GetMediaTypes(ctx context.Context, ids []string) ([]datatypes.MediaType, error) {
	var out []datatypes.MediaType
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			mt, err := getJSON[datatypes.MediaType](txn, prefixMediaType+id)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return err
			}
			out = append(out, mt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetMediaTypeStatus enables or disables media types in one transaction.
//
// # Outputs
//
//   - int: Number of media types whose status changed.
//   - error: Wraps ErrNotFound if any id is unknown; nothing is written then.
func (s *Store) SetMediaTypeStatus(ctx context.Context, ids []string, status int) (int, error) {
	if status != datatypes.MediaTypeStatusActive && status != datatypes.MediaTypeStatusDisabled {
		return 0, fmt.Errorf("invalid media type status %d", status)
	}
	changed := 0
	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			mt, err := getJSON[datatypes.MediaType](txn, prefixMediaType+id)
			if err != nil {
				return err
			}
			if mt.Status == status {
				continue
			}
			mt.Status = status
			if err := putJSON(txn, prefixMediaType+id, mt); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// DeleteMediaTypes removes media types in one transaction. Any unknown id
// aborts the whole delete.
func (s *Store) DeleteMediaTypes(ctx context.Context, ids []string) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := deleteKey(txn, prefixMediaType+id); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutAction creates or replaces an action.
func (s *Store) PutAction(ctx context.Context, action datatypes.Action) error {
	if err := action.Validate(); err != nil {
		return err
	}
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return putJSON(txn, prefixAction+action.ActionID, action)
	})
}

// ActionsByMediaType returns, for every media type used by at least one
// action, the actions using it ordered by name.
func (s *Store) ActionsByMediaType(ctx context.Context) (map[string][]datatypes.Action, error) {
	var actions []datatypes.Action
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		actions, err = scanJSON[datatypes.Action](txn, prefixAction)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string][]datatypes.Action)
	for _, a := range actions {
		for _, id := range a.MediaTypeIDs {
			out[id] = append(out[id], a)
		}
	}
	for id := range out {
		list := out[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	return out, nil
}
