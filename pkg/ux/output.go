// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the pipelines CLI.
//
// Output is styled with lipgloss only when the destination is a terminal.
// Pipes, files and CI logs get a plain line format that is stable enough
// to grep:
//
//	OK: Valid DAG.
//	ERROR: Cycle detected in graph.
//	nodes: 3
package ux

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
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

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
)

// Styles is the set of lipgloss styles a Printer renders with.
type Styles struct {
	Title   lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}

// newStyles binds the palette to a renderer so color detection follows the
// printer's writer rather than os.Stdout.
func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(ColorTealBright),
		Key:     r.NewStyle().Foreground(ColorTealPrimary),
		Muted:   r.NewStyle().Foreground(ColorSlate),
		Success: r.NewStyle().Foreground(ColorSuccess),
		Warning: r.NewStyle().Foreground(ColorWarning),
		Error:   r.NewStyle().Foreground(ColorError),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorTealDeep).
			Padding(0, 1),
	}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// =============================================================================
// Printer
// =============================================================================

// Printer writes CLI output in styled or plain form.
type Printer struct {
	w      io.Writer
	styled bool
	styles Styles
}

// NewPrinter returns a Printer that styles output only when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	f, ok := w.(*os.File)
	return NewPrinterWithStyle(w, ok && IsTerminal(f))
}

// NewPrinterWithStyle returns a Printer with styling forced on or off.
func NewPrinterWithStyle(w io.Writer, styled bool) *Printer {
	return &Printer{
		w:      w,
		styled: styled,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

// Styled reports whether the printer renders lipgloss styles.
func (p *Printer) Styled() bool {
	return p.styled
}

// Title prints a heading. Plain output omits it.
func (p *Printer) Title(text string) {
	if !p.styled {
		return
	}
	fmt.Fprintln(p.w, p.styles.Title.Render(text))
}

// Success prints text with a check mark.
func (p *Printer) Success(text string) {
	if !p.styled {
		fmt.Fprintf(p.w, "OK: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.styles.Success.Render(string(IconSuccess)), p.styles.Success.Render(text))
}

// Warning prints text with a warning sign.
func (p *Printer) Warning(text string) {
	if !p.styled {
		fmt.Fprintf(p.w, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.styles.Warning.Render(string(IconWarning)), p.styles.Warning.Render(text))
}

// Error prints text with a cross.
func (p *Printer) Error(text string) {
	if !p.styled {
		fmt.Fprintf(p.w, "ERROR: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.styles.Error.Render(string(IconError)), p.styles.Error.Render(text))
}

// Field prints one key/value line.
func (p *Printer) Field(key string, value any) {
	if !p.styled {
		fmt.Fprintf(p.w, "%s: %v\n", key, value)
		return
	}
	fmt.Fprintf(p.w, "  %s %s %v\n", p.styles.Muted.Render(string(IconArrow)), p.styles.Key.Render(key), value)
}

// Box prints content under a title inside a rounded border.
func (p *Printer) Box(title, content string) {
	if !p.styled {
		fmt.Fprintf(p.w, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(p.w, p.styles.Box.Width(60).Render(p.styles.Title.Render(title)+"\n"+content))
}
