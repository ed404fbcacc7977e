package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/roomchat/internal/media"
)

// GallerySelectorModel lets the user pick one image from the gallery
type GallerySelectorModel struct {
	// Data
	candidates []media.Candidate
	dir        string

	cursor int

	// State
	confirmed bool
	cancelled bool

	// Dimensions
	width  int
	height int
}

// NewGallerySelectorModel creates a selector over candidates
func NewGallerySelectorModel(candidates []media.Candidate, dir string, width, height int) GallerySelectorModel {
	return GallerySelectorModel{
		candidates: candidates,
		dir:        dir,
		width:      width,
		height:     height,
	}
}

// Update handles messages and updates the model
func (m GallerySelectorModel) Update(msg tea.Msg) (GallerySelectorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, nil

		case "up", "k":
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.candidates) - 1
			}

		case "down", "j":
			m.cursor++
			if m.cursor >= len(m.candidates) {
				m.cursor = 0
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = len(m.candidates) - 1

		case "enter":
			// nothing to pick counts as a cancel
			if len(m.candidates) == 0 {
				m.cancelled = true
			} else {
				m.confirmed = true
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the selector
func (m GallerySelectorModel) View() string {
	var b strings.Builder

	b.WriteString(selectorTitleStyle.Render("Choose an image"))
	b.WriteString("\n")
	b.WriteString(selectorDimStyle.Render("  " + m.dir))
	b.WriteString("\n\n")

	if len(m.candidates) == 0 {
		b.WriteString(welcomeStyle.Render("  No images found"))
		b.WriteString("\n\n")
		b.WriteString(selectorDimStyle.Render("  Esc: back"))
		return b.String()
	}

	// Reserve space for header and footer
	maxVisible := m.height - 7
	if maxVisible < 3 {
		maxVisible = 3
	}

	startIdx := 0
	if m.cursor >= maxVisible {
		startIdx = m.cursor - maxVisible + 1
	}
	endIdx := startIdx + maxVisible
	if endIdx > len(m.candidates) {
		endIdx = len(m.candidates)
	}

	maxNameLen := m.width - 30
	if maxNameLen < 20 {
		maxNameLen = 20
	}

	for i := startIdx; i < endIdx; i++ {
		c := m.candidates[i]

		name := c.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}
		meta := selectorDimStyle.Render(fmt.Sprintf("  %s  %s", formatSize(c.Size), c.ModTime.Format(time.DateOnly)))

		if i == m.cursor {
			b.WriteString(selectorCursorStyle.Render("> "+name) + meta + "\n")
		} else {
			b.WriteString("  " + name + meta + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(selectorDimStyle.Render(fmt.Sprintf("  %d of %d", m.cursor+1, len(m.candidates))))
	b.WriteString("\n\n")
	b.WriteString(selectorDimStyle.Render("  ↑↓: move  Enter: send  Esc: cancel"))

	return b.String()
}

// Selected returns the chosen candidate, or nil when nothing was chosen
func (m GallerySelectorModel) Selected() *media.Candidate {
	if !m.confirmed || m.cancelled || m.cursor < 0 || m.cursor >= len(m.candidates) {
		return nil
	}
	c := m.candidates[m.cursor]
	return &c
}

// Done reports whether the selector has finished
func (m GallerySelectorModel) Done() bool {
	return m.confirmed || m.cancelled
}

// IsCancelled returns whether the user cancelled
func (m GallerySelectorModel) IsCancelled() bool {
	return m.cancelled
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
