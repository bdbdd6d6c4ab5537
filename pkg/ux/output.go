// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders CLI output: styled for terminals, plain tab separated
// text for pipes and scripts.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // Deep teal - borders, accents
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Header:  lipgloss.NewStyle().Bold(true).Foreground(ColorTealPrimary).Padding(0, 1),
	Cell:    lipgloss.NewStyle().Padding(0, 1),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Border:  lipgloss.NewStyle().Foreground(ColorTealDeep),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Printer writes CLI output at one personality level.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Level PersonalityLevel
}

// NewPrinter returns a printer for stdout and stderr with the level
// detected from stdout.
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr, Level: DetectPersonality(os.Stdout)}
}

func (p *Printer) plain() bool {
	return p.Level == PersonalityMachine
}

// Title prints a styled title. Machine output omits it.
func (p *Printer) Title(text string) {
	if p.plain() {
		return
	}
	fmt.Fprintln(p.Out, Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func (p *Printer) Success(text string) {
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(p.Out, "OK: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(p.Out, "%s %s\n", IconSuccess.Render(), text)
	default:
		fmt.Fprintf(p.Out, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message to the error stream
func (p *Printer) Warning(text string) {
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(p.Err, "WARN: %s\n", text)
	default:
		fmt.Fprintf(p.Err, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message to the error stream
func (p *Printer) Error(text string) {
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(p.Err, "ERROR: %s\n", text)
	default:
		fmt.Fprintf(p.Err, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Table prints rows under headers. Machine output is tab separated with
// a header line; other levels draw a bordered lipgloss table.
func (p *Printer) Table(headers []string, rows [][]string) {
	if p.plain() {
		fmt.Fprintln(p.Out, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(p.Out, strings.Join(row, "\t"))
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}
			return Styles.Cell
		})
	fmt.Fprintln(p.Out, t.String())
	if len(rows) == 0 {
		fmt.Fprintln(p.Out, Styles.Muted.Render("No data found."))
	}
}
