package enums

import (
	"fmt"
	"strings"
)

// Theme is the presentation mode stored per browser.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var validThemes = []Theme{
	ThemeLight,
	ThemeDark,
}

// String implements fmt.Stringer.
func (t Theme) String() string {
	return string(t)
}

// IsValid reports whether the value is a known Theme.
func (t Theme) IsValid() bool {
	for _, candidate := range validThemes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsDark reports whether the theme is the dark variant.
func (t Theme) IsDark() bool {
	return t == ThemeDark
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t.IsDark() {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeFromDark maps the boolean dark flag onto a Theme.
func ThemeFromDark(dark bool) Theme {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

// ParseTheme converts raw input into a Theme.
func ParseTheme(value string) (Theme, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validThemes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid theme %q", value)
}
