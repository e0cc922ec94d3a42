// Package styles provides shared lipgloss styles for CLI output.
//
// Colors come from the active [Theme]. [Init] picks the theme once at
// startup; the style variables are rebuilt from it.
package styles

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for UI components
type Theme struct {
	Primary color.Color // spinner, headings
	Success color.Color // checkmarks, pull request links
	Error   color.Color // failed steps
	Warning color.Color // orphaned branches
	Muted   color.Color // secondary text
}

var (
	// DefaultTheme is the default color scheme
	DefaultTheme = Theme{
		Primary: lipgloss.Color("62"),  // cyan/teal
		Success: lipgloss.Color("82"),  // green
		Error:   lipgloss.Color("196"), // red
		Warning: lipgloss.Color("214"), // orange
		Muted:   lipgloss.Color("240"), // dark gray
	}

	// NoneTheme renders without any colors. Bold is preserved.
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
	}
)

var themes = map[string]Theme{
	"default": DefaultTheme,
	"none":    NoneTheme,
}

// ThemeNames lists the accepted theme names.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Symbols used in step and result lines.
const (
	CheckMark = "✓"
	CrossMark = "✗"
	Arrow     = "→"
)

var currentTheme = DefaultTheme

// Styles built from the current theme.
var (
	Bold         = lipgloss.NewStyle().Bold(true)
	PrimaryStyle lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	MutedStyle   lipgloss.Style
	HeaderStyle  lipgloss.Style
)

func init() {
	applyTheme(DefaultTheme)
}

// Current returns the current theme
func Current() Theme {
	return currentTheme
}

// Init selects the theme by name. An empty name keeps the default.
func Init(name string) error {
	if name == "" {
		name = "default"
	}
	t, ok := themes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	applyTheme(t)
	return nil
}

// applyTheme updates all global style variables to use the given theme
func applyTheme(t Theme) {
	currentTheme = t
	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
}
