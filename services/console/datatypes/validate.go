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

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// consoleValidate is the validator instance for console datatypes.
var consoleValidate = validator.New()

// Validate validates any struct carrying `validate` tags with the shared
// console validator.
//
// # Description
//
// Used for fixture records before they are stored and for request bodies
// after binding. The returned error wraps validator.ValidationErrors so
// callers can inspect individual field failures with errors.As.
//
// # Inputs
//
//   - v: Pointer to or value of a struct with validate tags.
//
// # Outputs
//
//   - error: nil when valid.
func Validate(v any) error {
	if err := consoleValidate.Struct(v); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Validate checks the host record.
func (h *Host) Validate() error { return Validate(h) }

// Validate checks the item record.
func (i *Item) Validate() error { return Validate(i) }

// Validate checks the media type record.
func (m *MediaType) Validate() error { return Validate(m) }

// Validate checks the action record.
func (a *Action) Validate() error { return Validate(a) }

// Validate checks the widget record.
func (w *Widget) Validate() error { return Validate(w) }

// Validate checks the value map record.
func (v *ValueMap) Validate() error { return Validate(v) }
