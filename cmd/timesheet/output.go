package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ColorMode represents the color output mode.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Styles for CLI output.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorSuccess = lipgloss.Color("#10B981")

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)
)

// Formatter writes human output, coloured when the terminal allows it.
type Formatter struct {
	Writer    io.Writer
	ColorMode ColorMode
}

func NewFormatter(w io.Writer, mode ColorMode) *Formatter {
	return &Formatter{Writer: w, ColorMode: mode}
}

// IsColorEnabled returns true if color output is enabled.
func (f *Formatter) IsColorEnabled() bool {
	switch f.ColorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if w, ok := f.Writer.(*os.File); ok {
		return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
	}
	return false
}

func (f *Formatter) render(s lipgloss.Style, text string) string {
	if f.IsColorEnabled() {
		return s.Render(text)
	}
	return text
}

func (f *Formatter) Println(a ...any) {
	fmt.Fprintln(f.Writer, a...)
}

func (f *Formatter) Printf(format string, a ...any) {
	fmt.Fprintf(f.Writer, format, a...)
}

func (f *Formatter) Title(text string)   { f.Println(f.render(styleTitle, text)) }
func (f *Formatter) Success(text string) { f.Println(f.render(styleSuccess, "✓ "+text)) }
func (f *Formatter) Warning(text string) { f.Println(f.render(styleWarning, "⚠ "+text)) }
func (f *Formatter) Error(text string)   { f.Println(f.render(styleError, "✗ "+text)) }
func (f *Formatter) Muted(text string)   { f.Println(f.render(styleMuted, text)) }

// Field prints an indented "label: value" line.
func (f *Formatter) Field(label string, value any) {
	f.Printf("  %-14s %v\n", label+":", value)
}

// Table prints headers and rows padded to the widest cell of each column.
func (f *Formatter) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, col := range row {
			if i < len(widths) && len(col) > widths[i] {
				widths[i] = len(col)
			}
		}
	}

	line := func(cols []string) string {
		var b strings.Builder
		for i, col := range cols {
			if i < len(widths) {
				fmt.Fprintf(&b, "%-*s  ", widths[i], col)
			}
		}
		return strings.TrimRight(b.String(), " ")
	}

	f.Println(f.render(styleBold, line(headers)))
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	f.Println(line(sep))
	for _, row := range rows {
		f.Println(line(row))
	}
}
