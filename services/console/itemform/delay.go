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
	"regexp"
	"strconv"
	"strings"
)

// Custom interval kinds.
const (
	DelayFlexible   = 0
	DelayScheduling = 1
)

// DelayFlex is one custom interval row of the form.
type DelayFlex struct {
	Type     int    `json:"type"`
	Delay    string `json:"delay,omitempty"`
	Period   string `json:"period,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

// UpdateInterval is a parsed item update interval.
type UpdateInterval struct {
	Delay     string
	Intervals []DelayFlex
}

var (
	timeUnitRe  = regexp.MustCompile(`^\d+[smhdw]?$`)
	userMacroRe = regexp.MustCompile(`^\{\$[A-Z0-9_.]+(:.*)?\}$`)
	periodRe    = regexp.MustCompile(`^[1-7](-[1-7])?,([01]?\d|2[0-3]):[0-5]\d-([01]?\d|2[0-4]):[0-5]\d$`)
	scheduleRe  = regexp.MustCompile(`^((md|wd|h|m|s)[0-9,/-]+)+$`)
)

func isUserMacro(s string) bool {
	return userMacroRe.MatchString(s)
}

// ParseUpdateInterval parses "<delay>[;<interval>...]" where every custom
// interval is either flexible ("<delay>/<period>") or a schedule
// ("wd1-5h9"). Delays and periods may be user macros.
func ParseUpdateInterval(s string) (UpdateInterval, bool) {
	parts := strings.Split(s, ";")
	delay := strings.TrimSpace(parts[0])
	if !timeUnitRe.MatchString(delay) && !isUserMacro(delay) {
		return UpdateInterval{}, false
	}

	out := UpdateInterval{Delay: delay}
	for _, raw := range parts[1:] {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return UpdateInterval{}, false
		}
		if d, period, ok := strings.Cut(raw, "/"); ok {
			if !timeUnitRe.MatchString(d) && !isUserMacro(d) {
				return UpdateInterval{}, false
			}
			if !periodRe.MatchString(period) && !isUserMacro(period) {
				return UpdateInterval{}, false
			}
			out.Intervals = append(out.Intervals, DelayFlex{Type: DelayFlexible, Delay: d, Period: period})
			continue
		}
		if !scheduleRe.MatchString(raw) && !isUserMacro(raw) {
			return UpdateInterval{}, false
		}
		out.Intervals = append(out.Intervals, DelayFlex{Type: DelayScheduling, Schedule: raw})
	}
	return out, true
}

// TimeUnitToSeconds converts "30s", "5m", "1h", "1d", "1w" or a bare
// number of seconds.
func TimeUnitToSeconds(s string) (int64, bool) {
	if !timeUnitRe.MatchString(s) {
		return 0, false
	}
	mult := int64(1)
	switch s[len(s)-1] {
	case 's':
		s = s[:len(s)-1]
	case 'm':
		mult, s = 60, s[:len(s)-1]
	case 'h':
		mult, s = 3600, s[:len(s)-1]
	case 'd':
		mult, s = 86400, s[:len(s)-1]
	case 'w':
		mult, s = 604800, s[:len(s)-1]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n * mult, true
}
