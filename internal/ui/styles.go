// Package ui provides the visual styling for the taskdeck console: the
// lipgloss theme shared by the REPL and the result grid.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode colors (default)
	LightForeground = lipgloss.Color("#1c2733")
	LightPrimary    = lipgloss.Color("#1f6feb")
	LightAccent     = lipgloss.Color("#2da44e")
	LightMuted      = lipgloss.Color("#8b949e")
	LightBorder     = lipgloss.Color("#d0d7de")

	// Dark mode colors
	DarkForeground = lipgloss.Color("#e6edf3")
	DarkPrimary    = lipgloss.Color("#58a6ff")
	DarkAccent     = lipgloss.Color("#3fb950")
	DarkMuted      = lipgloss.Color("#6e7681")
	DarkBorder     = lipgloss.Color("#30363d")

	// Semantic colors, same in both modes
	Destructive = lipgloss.Color("#f85149")
	Warning     = lipgloss.Color("#d29922")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

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

// DetectTheme picks a theme from the terminal environment; light is the
// fallback.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// Format is "foreground;background"; low background indexes mean a
		// dark terminal.
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}
	if os.Getenv("TASKDECK_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// ThemeByName resolves a configured theme name; "auto" detects.
func ThemeByName(name string) Theme {
	switch strings.ToLower(name) {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	}
	return DetectTheme()
}

// Styles holds the styled components.
type Styles struct {
	Theme Theme

	Title    lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Prompt   lipgloss.Style
	UserLine lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warn     lipgloss.Style
	Divider  lipgloss.Style
}

// NewStyles creates the styles for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

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

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		UserLine: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Success: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warn: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles with the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider of the given width.
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", width))
}
