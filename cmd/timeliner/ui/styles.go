// Package ui provides the terminal rendering for timeliner: themes, the
// text rendition of a timeline scale, and the interactive bubbletea view.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"timeliner/internal/timeline"
)

// Palette
var (
	LightForeground = lipgloss.Color("#2c3e50")
	LightPrimary    = lipgloss.Color("#2c3e50")
	LightAccent     = lipgloss.Color("#3498db")
	LightMuted      = lipgloss.Color("#95a5a6")
	LightBorder     = lipgloss.Color("#dce0e5")

	DarkForeground = lipgloss.Color("#ecf0f1")
	DarkPrimary    = lipgloss.Color("#5dade2")
	DarkAccent     = lipgloss.Color("#f1c40f")
	DarkMuted      = lipgloss.Color("#7f8c8d")
	DarkBorder     = lipgloss.Color("#34495e")

	// Severity colors are the same in both modes.
	SeverityLow      = lipgloss.Color("#27ae60")
	SeverityMedium   = lipgloss.Color("#f39c12")
	SeverityHigh     = lipgloss.Color("#e67e22")
	SeverityCritical = lipgloss.Color("#e74c3c")

	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#27ae60")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeFor resolves a configured theme name. "auto" (or anything unknown)
// falls back to DetectTheme.
func ThemeFor(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses the terminal background from COLORFGBG, honours
// TIMELINER_DARK_MODE, and otherwise returns the light theme.
func DetectTheme() Theme {
	if on, err := strconv.ParseBool(os.Getenv("TIMELINER_DARK_MODE")); err == nil {
		if on {
			return DarkTheme()
		}
		return LightTheme()
	}

	// "foreground;background"; indices 0-6 and 8 are dark backgrounds.
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
		}
	}

	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	Header lipgloss.Style
	Footer lipgloss.Style
	Title  lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Bold   lipgloss.Style

	Axis     lipgloss.Style
	Tick     lipgloss.Style
	Selected lipgloss.Style
	Details  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	severity map[timeline.Severity]lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Axis: lipgloss.NewStyle().
			Foreground(theme.Border),

		Tick: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			Underline(true),

		Details: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Success: lipgloss.NewStyle().Foreground(Success).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(Warning).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(Info),

		severity: map[timeline.Severity]lipgloss.Style{
			timeline.SeverityLow:      lipgloss.NewStyle().Foreground(SeverityLow),
			timeline.SeverityMedium:   lipgloss.NewStyle().Foreground(SeverityMedium),
			timeline.SeverityHigh:     lipgloss.NewStyle().Foreground(SeverityHigh).Bold(true),
			timeline.SeverityCritical: lipgloss.NewStyle().Foreground(SeverityCritical).Bold(true),
		},
	}
}

// PlainStyles renders everything without decoration.
func PlainStyles() Styles {
	return Styles{}
}

// Severity returns the marker style for a severity; unknown values use medium.
func (s Styles) Severity(sev timeline.Severity) lipgloss.Style {
	if st, ok := s.severity[sev]; ok {
		return st
	}
	if st, ok := s.severity[timeline.SeverityMedium]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// Level returns the style for a notification level name.
func (s Styles) Level(level string) lipgloss.Style {
	switch level {
	case "success":
		return s.Success
	case "error":
		return s.Error
	case "warning":
		return s.Warning
	default:
		return s.Info
	}
}
