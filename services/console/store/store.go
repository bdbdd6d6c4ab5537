// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store is the console's data access layer.
//
// Entities are stored as JSON values in BadgerDB under one key prefix per
// entity kind:
//
//	host/<hostid>                  hosts and templates
//	item/<itemid>                  items, discovery rules, prototypes
//	valuemap/<valuemapid>
//	mediatype/<mediatypeid>
//	action/<actionid>
//	widget/<dashboardid>/<widgetid>
//
// The store also plays the collaborator roles the tag resolver and the
// widget field selector need: template hierarchy resolution, batched
// template tag lookup, host tag lookup and the dashboard widget registry.
//
// # Thread Safety
//
// Store is safe for concurrent use; all state lives in BadgerDB.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianConsole/pkg/validation"
	cbadger "github.com/AleutianAI/AleutianConsole/services/console/storage/badger"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const (
	prefixHost      = "host/"
	prefixItem      = "item/"
	prefixValueMap  = "valuemap/"
	prefixMediaType = "mediatype/"
	prefixAction    = "action/"
	prefixWidget    = "widget/"
)

// Store provides typed access to console entities.
type Store struct {
	db     *cbadger.DB
	logger *slog.Logger
}

// New creates a Store over an opened database.
//
// # Inputs
//
//   - db: Opened console database. Must not be nil.
//   - logger: Logger for store diagnostics. Nil uses slog.Default().
//
// # Outputs
//
//   - *Store: Ready for use. The caller keeps ownership of db.
func New(db *cbadger.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger.With("component", "store")}
}

// =============================================================================
// Generic helpers
// =============================================================================

func putJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

func getJSON[T any](txn *badger.Txn, key string) (T, error) {
	var out T
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return out, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return out, fmt.Errorf("get %s: %w", key, err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &out)
	})
	if err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func scanJSON[T any](txn *badger.Txn, prefix string) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []T
	for it.Rewind(); it.Valid(); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func deleteKey(txn *badger.Txn, key string) error {
	if _, err := txn.Get([]byte(key)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return err
	}
	return txn.Delete([]byte(key))
}

func sortByID[T any](items []T, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return validation.LessID(id(items[i]), id(items[j]))
	})
}
