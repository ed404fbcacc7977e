package models

import (
	"testing"
	"time"
)

func TestMessage_IsImage(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"image with url", Message{Type: TypeImage, ImageURL: "data:image/jpeg;base64,AA=="}, true},
		{"image without url", Message{Type: TypeImage}, false},
		{"text with url", Message{Type: TypeText, ImageURL: "data:image/jpeg;base64,AA=="}, false},
		{"untyped", Message{Text: "hi"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.IsImage(); got != tt.want {
				t.Errorf("IsImage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := Message{Type: TypeText, Text: "hello\n  there"}
	if got := msg.Preview(); got != "hello there" {
		t.Errorf("Preview() = %q, want %q", got, "hello there")
	}

	img := Message{Type: TypeImage, ImageURL: "data:x", Text: ImagePlaceholder}
	if got := img.Preview(); got != "[image]" {
		t.Errorf("Preview() = %q, want [image]", got)
	}
}

func TestSortByCreatedAt(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "c", CreatedAt: base.Add(2 * time.Second)},
		{ID: "a", CreatedAt: base},
		{ID: "b1", CreatedAt: base.Add(time.Second)},
		{ID: "b2", CreatedAt: base.Add(time.Second)},
	}

	SortByCreatedAt(msgs)

	want := []string{"a", "b1", "b2", "c"}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, msgs[i].ID, id)
		}
	}
}

func TestFieldsBuilders(t *testing.T) {
	f := TextFields("hello", "a@example.com", "uid-a")
	if f.Type != TypeText || f.Text != "hello" || f.SenderUID != "uid-a" || f.User != "a@example.com" {
		t.Errorf("unexpected text fields: %+v", f)
	}

	img := ImageFields("data:image/jpeg;base64,AA==", "a@example.com", "uid-a")
	if img.Type != TypeImage || img.Text != ImagePlaceholder || img.ImageURL == "" {
		t.Errorf("unexpected image fields: %+v", img)
	}
}

func TestClone(t *testing.T) {
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}

	orig := []Message{{ID: "1"}}
	cp := Clone(orig)
	cp[0].ID = "2"
	if orig[0].ID != "1" {
		t.Error("Clone shares backing array")
	}
}
