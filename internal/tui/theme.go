package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette. AdaptiveColor keeps the editor readable on light and dark
// terminals; faint is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted     = ac("240", "243")
	colorSurfaceFg = ac("235", "252")
	colorControlBg = ac("252", "237")
	colorAccent    = ac("27", "62")
	colorSuccess   = ac("28", "78")
	colorDanger    = ac("160", "203")
	colorBorder    = ac("250", "240")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleSaved() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSurfaceFg).Bold(true)
}

func styleLink() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent).Underline(true)
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts
// TERM/COLORTERM when they promise more than termenv detected.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// themePreference resolves light/dark from GETMYTEXT_TUI_THEME, then the
// COLORFGBG heuristic. ok is false when neither says anything.
func themePreference() (dark bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("GETMYTEXT_TUI_THEME"))) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	// COLORFGBG is "fg;bg"; xterm palette 0-6 are dark.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	return false, false
}

func applyThemePreference() {
	if dark, ok := themePreference(); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}
