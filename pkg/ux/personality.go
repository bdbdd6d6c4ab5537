// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel defines the richness of CLI output
type PersonalityLevel string

const (
	// PersonalityStandard enables colors, icons and bordered tables
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal uses icons and basic formatting only
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine outputs plain text suitable for scripting and parsing
	PersonalityMachine PersonalityLevel = "machine"
)

// OutputEnv overrides terminal detection.
const OutputEnv = "CONSOLE_OUTPUT"

// ParsePersonalityLevel converts a string to PersonalityLevel
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(s) {
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "plain", "quiet", "q":
		return PersonalityMachine
	default:
		return PersonalityStandard
	}
}

// DetectPersonality picks the level for f. OutputEnv wins; otherwise a
// terminal gets PersonalityStandard and anything else PersonalityMachine.
func DetectPersonality(f *os.File) PersonalityLevel {
	if env := os.Getenv(OutputEnv); env != "" {
		return ParsePersonalityLevel(env)
	}
	if f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return PersonalityStandard
	}
	return PersonalityMachine
}
