// Package ui provides the visual styling for the netagent interactive chat.
// Light and dark palettes share one set of style definitions.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode
	LightForeground = lipgloss.Color("#1b2430")
	LightPrimary    = lipgloss.Color("#1f4e79") // Navy
	LightAccent     = lipgloss.Color("#0f9d8a") // Teal
	LightMuted      = lipgloss.Color("#8a939e")
	LightBorder     = lipgloss.Color("#d3d8de")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark mode
	DarkForeground = lipgloss.Color("#eceff3")
	DarkPrimary    = lipgloss.Color("#5fb3f0")
	DarkAccent     = lipgloss.Color("#3fd1bb")
	DarkMuted      = lipgloss.Color("#6b7685")
	DarkBorder     = lipgloss.Color("#334155")
	DarkCard       = lipgloss.Color("#1c2533")

	// Semantic, same in both modes
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#43a047")
	Warning     = lipgloss.Color("#ffb300")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// TerminalIsDark guesses the terminal background from COLORFGBG, with
// NETAGENT_DARK_MODE=1 forcing dark.
func TerminalIsDark() bool {
	if os.Getenv("NETAGENT_DARK_MODE") == "1" {
		return true
	}
	// "foreground;background"; ANSI 0-6 and 8 are dark backgrounds.
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil {
			return (bg >= 0 && bg <= 6) || bg == 8
		}
	}
	return false
}

// ThemeFor returns the dark or light theme.
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	Muted lipgloss.Style
	Bold  lipgloss.Style

	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style
	UserInput lipgloss.Style
	Loading   lipgloss.Style

	// Pending card awaiting confirm/edit
	Confirmation lipgloss.Style
	KeyHint      lipgloss.Style

	// Edit form
	FormBox     lipgloss.Style
	FormLabel   lipgloss.Style
	FormFocused lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Spinner lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		UserLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginTop(1),

		BotLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			MarginTop(1),

		UserInput: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Loading: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Confirmation: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),

		KeyHint: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		FormBox: lipgloss.NewStyle().
			Background(theme.Card).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		FormLabel: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(8),

		FormFocused: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			Width(8),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// RenderDivider returns a horizontal divider.
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
