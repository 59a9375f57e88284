package ui

import (
	"strings"
	"testing"
)

func TestTerminalIsDark(t *testing.T) {
	t.Setenv("NETAGENT_DARK_MODE", "1")
	t.Setenv("COLORFGBG", "")
	if !TerminalIsDark() {
		t.Fatalf("expected dark when NETAGENT_DARK_MODE=1")
	}

	t.Setenv("NETAGENT_DARK_MODE", "")
	t.Setenv("COLORFGBG", "15;0")
	if !TerminalIsDark() {
		t.Fatalf("expected dark for COLORFGBG background 0")
	}

	t.Setenv("COLORFGBG", "0;15")
	if TerminalIsDark() {
		t.Fatalf("expected light for COLORFGBG background 15")
	}

	t.Setenv("COLORFGBG", "")
	if TerminalIsDark() {
		t.Fatalf("expected light when nothing is set")
	}
}

func TestThemeFor(t *testing.T) {
	if !ThemeFor(true).IsDark {
		t.Errorf("ThemeFor(true) should be dark")
	}
	if ThemeFor(false).IsDark {
		t.Errorf("ThemeFor(false) should be light")
	}
	if NewStyles(DarkTheme()).Theme.Primary != DarkPrimary {
		t.Errorf("styles should carry their theme")
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	if got := s.RenderDivider(5); !strings.Contains(got, "─────") {
		t.Errorf("divider = %q", got)
	}
	if got := s.RenderDivider(0); !strings.Contains(got, "─") {
		t.Errorf("zero width divider = %q", got)
	}
}
