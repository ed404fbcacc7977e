package render

import (
	"testing"

	"github.com/diogo/roomchat/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	opts := OptionsFromConfig(config.MarkdownConfig{
		Style:            ThemeDracula,
		EnableEmoji:      false,
		PreserveNewLines: true,
	})

	if opts.Style != ThemeDracula {
		t.Errorf("Style = %s, want dracula", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("EnableEmoji should follow config")
	}
	if !opts.PreserveNewLines {
		t.Error("PreserveNewLines should follow config")
	}
	if opts.Width != 80 {
		t.Errorf("Width = %d, want default 80", opts.Width)
	}
}

func TestOptionsFromConfig_EmptyStyleKeepsDefault(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	opts := OptionsFromConfig(config.MarkdownConfig{})
	if opts.Style != ThemeDark {
		t.Errorf("Style = %s, want dark", opts.Style)
	}
}

func TestOptionsFromConfig_EnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", ThemeLight)

	opts := OptionsFromConfig(config.DefaultMarkdownConfig())
	if opts.Style != ThemeLight {
		t.Errorf("Style = %s, want env override light", opts.Style)
	}
}
