package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/diogo/roomchat/internal/media"
)

func testCandidates() []media.Candidate {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []media.Candidate{
		{Path: "/pics/c.jpg", Name: "c.jpg", Size: 2 << 20, ModTime: now},
		{Path: "/pics/b.png", Name: "b.png", Size: 3 << 10, ModTime: now.Add(-time.Hour)},
		{Path: "/pics/a.gif", Name: "a.gif", Size: 12, ModTime: now.Add(-2 * time.Hour)},
	}
}

func TestGallerySelector_Navigation(t *testing.T) {
	m := NewGallerySelectorModel(testCandidates(), "/pics", 80, 24)

	m, _ = m.Update(key("down"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	m, _ = m.Update(key("k"))
	m, _ = m.Update(key("k"))
	if m.cursor != 2 {
		t.Errorf("cursor should wrap to the end, got %d", m.cursor)
	}
	m, _ = m.Update(key("g"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestGallerySelector_Select(t *testing.T) {
	m := NewGallerySelectorModel(testCandidates(), "/pics", 80, 24)

	if m.Selected() != nil {
		t.Error("nothing is selected before enter")
	}

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("enter"))

	if !m.Done() || m.IsCancelled() {
		t.Fatal("enter should confirm")
	}
	got := m.Selected()
	if got == nil || got.Name != "b.png" {
		t.Errorf("Selected() = %+v", got)
	}
}

func TestGallerySelector_Cancel(t *testing.T) {
	m := NewGallerySelectorModel(testCandidates(), "/pics", 80, 24)
	m, _ = m.Update(key("esc"))

	if !m.Done() || !m.IsCancelled() || m.Selected() != nil {
		t.Error("esc should cancel without a selection")
	}
}

func TestGallerySelector_EmptyEnterCancels(t *testing.T) {
	m := NewGallerySelectorModel(nil, "/pics", 80, 24)
	m, _ = m.Update(key("enter"))

	if !m.IsCancelled() {
		t.Error("enter on an empty gallery should cancel")
	}
}

func TestGallerySelector_View(t *testing.T) {
	m := NewGallerySelectorModel(testCandidates(), "/pics", 80, 24)
	view := m.View()

	for _, want := range []string{"Choose an image", "/pics", "c.jpg", "2.0 MB", "3.0 KB", "12 B", "1 of 3"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
