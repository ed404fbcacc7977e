package render

import (
	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the chat screen
type TUITheme struct {
	Name        string
	Description string

	// Base colors
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// Message bubbles
	MineBubble   lipgloss.Color
	MineText     lipgloss.Color
	TheirsBubble lipgloss.Color
	TheirsText   lipgloss.Color
}

// Built-in TUI themes
var (
	// TokyoNightTheme is the default dark theme
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),

		MineBubble:   lipgloss.Color("#3d59a1"),
		MineText:     lipgloss.Color("#c0caf5"),
		TheirsBubble: lipgloss.Color("#292e42"),
		TheirsText:   lipgloss.Color("#a9b1d6"),
	}

	// CatppuccinMochaTheme is based on the Catppuccin Mocha palette
	CatppuccinMochaTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",

		Background: lipgloss.Color("#1e1e2e"),
		Surface:    lipgloss.Color("#313244"),
		Border:     lipgloss.Color("#45475a"),

		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#a6e3a1"),
		Accent:    lipgloss.Color("#cba6f7"),
		Warning:   lipgloss.Color("#f9e2af"),
		Error:     lipgloss.Color("#f38ba8"),

		Text:     lipgloss.Color("#cdd6f4"),
		TextDim:  lipgloss.Color("#6c7086"),
		TextMute: lipgloss.Color("#45475a"),

		MineBubble:   lipgloss.Color("#585b70"),
		MineText:     lipgloss.Color("#cdd6f4"),
		TheirsBubble: lipgloss.Color("#313244"),
		TheirsText:   lipgloss.Color("#bac2de"),
	}

	// DraculaTheme is based on the Dracula color palette
	DraculaTheme = TUITheme{
		Name:        "dracula",
		Description: "Dracula - Dark theme with vibrant colors",

		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#44475a"),
		Border:     lipgloss.Color("#6272a4"),

		Primary:   lipgloss.Color("#8be9fd"),
		Secondary: lipgloss.Color("#50fa7b"),
		Accent:    lipgloss.Color("#ff79c6"),
		Warning:   lipgloss.Color("#f1fa8c"),
		Error:     lipgloss.Color("#ff5555"),

		Text:     lipgloss.Color("#f8f8f2"),
		TextDim:  lipgloss.Color("#6272a4"),
		TextMute: lipgloss.Color("#44475a"),

		MineBubble:   lipgloss.Color("#6272a4"),
		MineText:     lipgloss.Color("#f8f8f2"),
		TheirsBubble: lipgloss.Color("#44475a"),
		TheirsText:   lipgloss.Color("#f8f8f2"),
	}

	// LightTheme mirrors the bright mobile look: pale blue for own
	// messages, white for everyone else.
	LightTheme = TUITheme{
		Name:        "light",
		Description: "Light - Pale bubbles for bright terminals",

		Background: lipgloss.Color("#f5f5f5"),
		Surface:    lipgloss.Color("#ffffff"),
		Border:     lipgloss.Color("#c8c8c8"),

		Primary:   lipgloss.Color("#1e88e5"),
		Secondary: lipgloss.Color("#43a047"),
		Accent:    lipgloss.Color("#8e24aa"),
		Warning:   lipgloss.Color("#f9a825"),
		Error:     lipgloss.Color("#e53935"),

		Text:     lipgloss.Color("#222222"),
		TextDim:  lipgloss.Color("#777777"),
		TextMute: lipgloss.Color("#aaaaaa"),

		MineBubble:   lipgloss.Color("#d1f0ff"),
		MineText:     lipgloss.Color("#222222"),
		TheirsBubble: lipgloss.Color("#ffffff"),
		TheirsText:   lipgloss.Color("#222222"),
	}
)

// currentTUITheme holds the currently active TUI theme
var currentTUITheme = TokyoNightTheme

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if ok {
		currentTUITheme = theme
	}
	return ok
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes returns a list of all available TUI themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		TokyoNightTheme,
		CatppuccinMochaTheme,
		DraculaTheme,
		LightTheme,
	}
}

// TUIThemeNames returns just the theme names for selection
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
