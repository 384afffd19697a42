// Package output provides styled terminal rendering helpers for clauderank.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for positive indicators and unlocks.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for errors and broken streaks.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for caution indicators.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")

	// ColorWhite is used for primary text.
	ColorWhite = lipgloss.Color("#ffffff")
)

// tierColors maps level and rating tier color names to terminal colors.
var tierColors = map[string]lipgloss.Color{
	"bronze":      lipgloss.Color("#cd7f32"),
	"silver":      lipgloss.Color("#c0c0c0"),
	"gold":        lipgloss.Color("#ffd700"),
	"teal":        lipgloss.Color("#2dd4bf"),
	"diamond":     lipgloss.Color("#67e8f9"),
	"purple":      lipgloss.Color("#a78bfa"),
	"deep_purple": lipgloss.Color("#7c3aed"),
	"crimson":     lipgloss.Color("#e11d48"),
	"amber":       lipgloss.Color("#f59e0b"),
	"legendary":   lipgloss.Color("#f0abfc"),
	"grey":        lipgloss.Color("#9ca3af"),
	"green":       lipgloss.Color("#4ade80"),
	"blue":        lipgloss.Color("#60a5fa"),
	"cyan":        lipgloss.Color("#22d3ee"),
	"magenta":     lipgloss.Color("#e879f9"),
	"red":         lipgloss.Color("#f87171"),
	"yellow":      lipgloss.Color("#facc15"),

	"grey50":         lipgloss.Color("#7f7f7f"),
	"grey70":         lipgloss.Color("#b2b2b2"),
	"dark_orange3":   lipgloss.Color("#d75f00"),
	"gold1":          lipgloss.Color("#ffd700"),
	"deep_sky_blue1": lipgloss.Color("#00afff"),
	"dark_violet":    lipgloss.Color("#af00d7"),
	"red1":           lipgloss.Color("#ff0000"),
	"orange_red1":    lipgloss.Color("#ff5f5f"),
}

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader lipgloss.Style

	// StyleSuccess is used for positive values.
	StyleSuccess lipgloss.Style

	// StyleError is used for negative values.
	StyleError lipgloss.Style

	// StyleWarning is used for cautionary values.
	StyleWarning lipgloss.Style

	// StyleMuted is used for de-emphasized text.
	StyleMuted lipgloss.Style

	// StyleBold is used for emphasized text.
	StyleBold lipgloss.Style

	// StyleLabel is used for metric labels.
	StyleLabel lipgloss.Style
)

func init() {
	SetNoColor(false)
}

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally by reassigning the
// package-level styles.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleSuccess = plain
		StyleError = plain
		StyleWarning = plain
		StyleMuted = plain
		StyleBold = plain
		StyleLabel = plain.Width(24)
		return
	}
	StyleHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold = lipgloss.NewStyle().Bold(true)
	StyleLabel = lipgloss.NewStyle().Width(24)
}


// AutoColor disables color when f is not a terminal or NO_COLOR is set.
func AutoColor(f *os.File) {
	if os.Getenv("NO_COLOR") != "" {
		SetNoColor(true)
		return
	}
	fd := f.Fd()
	SetNoColor(!isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd))
}

// TierStyle returns a bold style in the named tier color. Unknown names
// render bold without color; with color disabled the style is plain.
func TierStyle(color string) lipgloss.Style {
	if noColor {
		return lipgloss.NewStyle()
	}
	s := lipgloss.NewStyle().Bold(true)
	if c, ok := tierColors[color]; ok {
		s = s.Foreground(c)
	}
	return s
}
