// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks record identifiers taken from user input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxIDs bounds the ids accepted by one mass operation.
const MaxIDs = 1000

// idPattern matches a positive database id without leading zeros.
var idPattern = regexp.MustCompile(`^[1-9][0-9]{0,19}$`)

// LessID orders record identifiers by numeric value. Decimal ids of any
// length compare as numbers; anything else falls back to string order and
// sorts after the decimal ids.
//
// # Examples
//
//	LessID("9", "10")     // true
//	LessID("10", "abc")   // true
//	LessID("abc", "abd")  // true
func LessID(a, b string) bool {
	da, db := isDecimal(a), isDecimal(b)
	switch {
	case da && db:
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	case da != db:
		return da
	default:
		return a < b
	}
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateID checks that id is a record identifier.
//
// # Inputs
//
//   - id: Identifier such as "10084".
//
// # Outputs
//
//   - error: Non-nil if id is empty or not a positive decimal number.
//
// # Examples
//
//	ValidateID("10084") // nil
//	ValidateID("0")     // error
//	ValidateID("1e3")   // error
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id %q (must be a positive decimal number)", id)
	}
	return nil
}

// SanitizeIDs trims, de-duplicates and validates a list of ids.
//
// # Description
//
// Order of first occurrence is kept. Every invalid entry is reported in one
// error so the caller can show them together.
//
// # Inputs
//
//   - ids: Raw ids, e.g. from repeated "mediatypeids[]" parameters.
//
// # Outputs
//
//   - []string: Clean ids.
//   - error: Non-nil if the list is empty, too long, or has invalid entries.
func SanitizeIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids given")
	}
	if len(ids) > MaxIDs {
		return nil, fmt.Errorf("too many ids: %d (max %d)", len(ids), MaxIDs)
	}

	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	var invalid []string
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if err := ValidateID(id); err != nil {
			invalid = append(invalid, raw)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid ids: %q", invalid)
	}
	return out, nil
}
