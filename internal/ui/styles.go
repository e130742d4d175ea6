// Package ui holds console styling and terminal detection.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/roach88/dronectl/internal/config"
)

// ANSI palette, matching the classic green/red/cyan console.
const (
	ColorGreen = "2"
	ColorRed   = "1"
	ColorCyan  = "6"
	ColorGray  = "8"
	ColorAmber = "3"
)

// Styles holds every style the console renders with.
type Styles struct {
	Banner  lipgloss.Style
	Prompt  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Dim     lipgloss.Style
}

// newStyles builds coloured styles bound to r.
func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Banner:  r.NewStyle().Bold(true),
		Prompt:  r.NewStyle().Foreground(lipgloss.Color(ColorCyan)),
		Success: r.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Error:   r.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Warning: r.NewStyle().Foreground(lipgloss.Color(ColorAmber)),
		Dim:     r.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Banner:  lipgloss.NewStyle(),
		Prompt:  lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}

// GetStyles returns the styles for writing to w under a colour mode
// (config.ColorAuto, ColorAlways or ColorNever).
func GetStyles(w io.Writer, mode string) Styles {
	switch mode {
	case config.ColorNever:
		return NoColorStyles()
	case config.ColorAlways:
		r := lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.ANSI)
		return newStyles(r)
	}
	if DetectNoColor() || !IsTTY(w) {
		return NoColorStyles()
	}
	return newStyles(lipgloss.NewRenderer(w))
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
