package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `json:"theme" yaml:"theme"`

	// Markdown toggles glamour rendering of bot entries.
	Markdown bool `json:"markdown" yaml:"markdown"`

	// PickerDir is where the card file picker starts ("" = current directory).
	PickerDir string `json:"picker_dir,omitempty" yaml:"picker_dir,omitempty"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:    "auto",
		Markdown: true,
	}
}

// IsDark resolves the theme; "auto" defers to the terminal background.
func (c UIConfig) IsDark(terminalDark bool) bool {
	switch c.Theme {
	case "dark":
		return true
	case "light":
		return false
	default:
		return terminalDark
	}
}
