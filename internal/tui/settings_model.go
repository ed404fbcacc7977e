package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/roomchat/internal/config"
	"github.com/diogo/roomchat/internal/render"
)

// settingsView is the current view of the settings menu
type settingsView int

const (
	viewMain settingsView = iota
	viewThemeSelect
	viewTUIThemeSelect
)

// Menu item indices for the main view
const (
	menuCacheDriver = iota
	menuGalleryAccess
	menuEmoji
	menuTheme    // Markdown theme
	menuTUITheme // TUI color theme
	menuExit
	menuItemCount
)

// feedbackClearMsg clears the feedback line
type feedbackClearMsg struct{}

// galleryAccessCycle is the order gallery access steps through
var galleryAccessCycle = []string{
	config.GalleryAccessUnset,
	config.GalleryAccessGranted,
	config.GalleryAccessDenied,
}

// SettingsModel is the interactive settings menu. Every change is saved
// to path right away.
type SettingsModel struct {
	config config.Config
	path   string

	view           settingsView
	cursor         int
	themeCursor    int
	tuiThemeCursor int

	feedback        string
	feedbackTimeout time.Duration

	width  int
	height int
	ready  bool
}

// NewSettingsModel creates the menu for cfg, stored at path
func NewSettingsModel(cfg config.Config, path string) SettingsModel {
	currentTheme := cfg.Markdown.Style
	if currentTheme == "" {
		currentTheme = render.ThemeDark
	}
	currentTUITheme := cfg.TUITheme
	if currentTUITheme == "" {
		currentTUITheme = "tokyonight"
	}

	return SettingsModel{
		config:          cfg,
		path:            path,
		view:            viewMain,
		themeCursor:     max(0, slices.Index(render.ThemeNames(), currentTheme)),
		tuiThemeCursor:  max(0, slices.Index(render.TUIThemeNames(), currentTUITheme)),
		feedbackTimeout: 2 * time.Second,
	}
}

// Config returns the settings as edited so far
func (m SettingsModel) Config() config.Config {
	return m.config
}

func (m SettingsModel) Init() tea.Cmd {
	return nil
}

func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view != viewMain {
				m.view = viewMain
			} else {
				return m, tea.Quit
			}

		case "up", "k":
			m.move(-1)

		case "down", "j":
			m.move(1)

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

// move steps the cursor of the current view, wrapping at both ends
func (m *SettingsModel) move(delta int) {
	wrap := func(v, n int) int {
		return (v + delta + n) % n
	}
	switch m.view {
	case viewMain:
		m.cursor = wrap(m.cursor, menuItemCount)
	case viewThemeSelect:
		m.themeCursor = wrap(m.themeCursor, len(render.ThemeNames()))
	case viewTUIThemeSelect:
		m.tuiThemeCursor = wrap(m.tuiThemeCursor, len(render.TUIThemeNames()))
	}
}

func (m SettingsModel) handleSelect() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewMain:
		switch m.cursor {
		case menuCacheDriver:
			drivers := config.AvailableCacheDrivers()
			next := (slices.Index(drivers, m.config.Cache.Driver) + 1) % len(drivers)
			m.config.Cache.Driver = drivers[next]
			return m.save(fmt.Sprintf("Cache driver set to %s", m.config.Cache.Driver))

		case menuGalleryAccess:
			next := (slices.Index(galleryAccessCycle, m.config.Gallery.Access) + 1) % len(galleryAccessCycle)
			m.config.Gallery.Access = galleryAccessCycle[next]
			return m.save(fmt.Sprintf("Gallery access set to %s", accessLabel(m.config.Gallery.Access)))

		case menuEmoji:
			m.config.Markdown.EnableEmoji = !m.config.Markdown.EnableEmoji
			state := "disabled"
			if m.config.Markdown.EnableEmoji {
				state = "enabled"
			}
			return m.save(fmt.Sprintf("Emoji %s", state))

		case menuTheme:
			m.view = viewThemeSelect

		case menuTUITheme:
			m.view = viewTUIThemeSelect

		case menuExit:
			return m, tea.Quit
		}

	case viewThemeSelect:
		m.config.Markdown.Style = render.ThemeNames()[m.themeCursor]
		m.view = viewMain
		return m.save(fmt.Sprintf("Markdown theme set to %s", m.config.Markdown.Style))

	case viewTUIThemeSelect:
		selected := render.TUIThemeNames()[m.tuiThemeCursor]
		m.config.TUITheme = selected

		// Apply the new TUI theme immediately
		render.SetTUITheme(selected)
		UpdateTheme()

		m.view = viewMain
		return m.save(fmt.Sprintf("TUI theme set to %s", selected))
	}

	return m, nil
}

func (m SettingsModel) save(done string) (tea.Model, tea.Cmd) {
	if err := config.SaveConfigTo(m.path, m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
	} else {
		m.feedback = done
	}
	return m, clearFeedback(m.feedbackTimeout)
}

func accessLabel(access string) string {
	if access == config.GalleryAccessUnset {
		return "ask"
	}
	return access
}

func (m SettingsModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := max(m.width-4, 40)

	var sections []string
	header := headerStyle.Width(contentWidth).Render(titleStyle.Render("Settings"))
	sections = append(sections, header)

	paths := lipgloss.JoinVertical(lipgloss.Left,
		selectorTitleStyle.Render("Files"),
		"   Config: "+hintStyle.Render(m.path),
		"   Room:   "+hintStyle.Render(m.config.NATS.URL+" / "+m.config.NATS.Stream),
	)
	sections = append(sections, messagesAreaStyle.Width(contentWidth).Render(paths))

	var body string
	switch m.view {
	case viewMain:
		body = m.renderMainMenu()
	case viewThemeSelect:
		body = m.renderChoices("Markdown theme", render.ThemeNames(), m.themeCursor, m.config.Markdown.Style)
	case viewTUIThemeSelect:
		body = m.renderChoices("TUI theme", render.TUIThemeNames(), m.tuiThemeCursor, m.config.TUITheme)
	}
	sections = append(sections, messagesAreaStyle.Width(contentWidth).Render(body))

	if m.feedback != "" {
		sections = append(sections, noticeStyle.Render("✓ "+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SettingsModel) renderMainMenu() string {
	rows := []struct {
		label string
		value string
	}{
		{"Cache driver", m.config.Cache.Driver},
		{"Gallery access", accessLabel(m.config.Gallery.Access)},
		{"Emoji", boolLabel(m.config.Markdown.EnableEmoji)},
		{"Markdown theme", m.config.Markdown.Style},
		{"TUI theme", m.config.TUITheme},
	}

	items := []string{selectorTitleStyle.Render("Settings"), ""}
	for i, row := range rows {
		items = append(items, m.menuLine(i, fmt.Sprintf("%-16s%s", row.label, selectorDimStyle.Render(row.value))))
	}
	items = append(items, "", m.menuLine(menuExit, "Exit"))

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m SettingsModel) menuLine(index int, text string) string {
	if m.cursor == index {
		return selectorCursorStyle.Render("▸ " + text)
	}
	return "  " + text
}

func (m SettingsModel) renderChoices(title string, names []string, cursor int, current string) string {
	items := []string{selectorTitleStyle.Render(title), ""}
	for i, name := range names {
		line := name
		if name == current {
			line += selectorDimStyle.Render(" (current)")
		}
		if i == cursor {
			items = append(items, selectorCursorStyle.Render("▸ ")+line)
		} else {
			items = append(items, "  "+line)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func boolLabel(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func (m SettingsModel) renderStatusBar(width int) string {
	back := "Exit"
	if m.view != viewMain {
		back = "Back"
	}

	shortcuts := []struct{ key, desc string }{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"Esc", back},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunSettings opens the settings menu for the config stored at path
func RunSettings(cfg config.Config, path string) error {
	p := tea.NewProgram(NewSettingsModel(cfg, path), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
