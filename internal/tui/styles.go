// Package tui provides the terminal chat screen for roomchat.
package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/render"
)

// Color variables (updated from theme)
var (
	// Base colors
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	// Accent colors
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	// Text colors
	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	// Message bubbles, by placement
	mineBubbleStyle   lipgloss.Style
	mineLabelStyle    lipgloss.Style
	theirsBubbleStyle lipgloss.Style
	theirsLabelStyle  lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	// Status bar styles
	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	// Alert and prompt overlays
	alertBoxStyle     lipgloss.Style
	alertTitleStyle   lipgloss.Style
	alertMessageStyle lipgloss.Style
	promptBoxStyle    lipgloss.Style

	// Gallery selector
	selectorTitleStyle  lipgloss.Style
	selectorCursorStyle lipgloss.Style
	selectorDimStyle    lipgloss.Style

	errorStyle   lipgloss.Style
	noticeStyle  lipgloss.Style
	welcomeStyle lipgloss.Style
)

// init loads the default theme on package initialization
func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles based on the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles(theme)
}

// rebuildStyles creates all lipgloss styles with current color values
func rebuildStyles(theme render.TUITheme) {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	mineBubbleStyle = lipgloss.NewStyle().
		Background(theme.MineBubble).
		Foreground(theme.MineText).
		Padding(0, 1)

	mineLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	theirsBubbleStyle = lipgloss.NewStyle().
		Background(theme.TheirsBubble).
		Foreground(theme.TheirsText).
		Padding(0, 1)

	theirsLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	alertBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Background(colorSurface).
		Padding(1, 3).
		Align(lipgloss.Center)

	alertTitleStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	alertMessageStyle = lipgloss.NewStyle().
		Foreground(colorText)

	promptBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorWarning).
		Background(colorSurface).
		Padding(1, 3).
		Align(lipgloss.Center)

	selectorTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginBottom(1)

	selectorCursorStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	selectorDimStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Italic(true)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)
}

// renderAlert draws an alert box with its dismiss hint
func renderAlert(a apierrors.Alert) string {
	body := lipgloss.JoinVertical(
		lipgloss.Center,
		alertTitleStyle.Render(a.Title),
		"",
		alertMessageStyle.Render(a.Message),
		"",
		hintStyle.Render("enter: OK"),
	)
	return alertBoxStyle.Render(body)
}

// FormatError returns a styled one-line error for console output. Known
// failures use their alert text.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	a := apierrors.AlertFor(err)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	out := errorStyle.Render(fmt.Sprintf("✗ %s", a.Title))
	if a.Message != "" {
		out += dimStyle.Render(": " + a.Message)
	}
	if a.Message != err.Error() {
		out += dimStyle.Render(fmt.Sprintf("\n  %v", err))
	}
	return out
}

// PrintError prints a styled error message to w.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err))
}
