package render

import "testing"

func TestGetTUIThemeByName(t *testing.T) {
	for _, name := range TUIThemeNames() {
		theme, ok := GetTUIThemeByName(name)
		if !ok {
			t.Fatalf("theme %q not found", name)
		}
		if theme.MineBubble == "" || theme.TheirsBubble == "" {
			t.Errorf("theme %q is missing bubble colors", name)
		}
	}

	if _, ok := GetTUIThemeByName("solarized"); ok {
		t.Error("unknown theme should not resolve")
	}
}

func TestSetTUITheme(t *testing.T) {
	defer SetTUITheme(TokyoNightTheme.Name)

	if !SetTUITheme("light") {
		t.Fatal("SetTUITheme(light) = false")
	}
	if got := GetTUITheme(); got.MineBubble != "#d1f0ff" || got.TheirsBubble != "#ffffff" {
		t.Errorf("light bubbles = %s/%s", got.MineBubble, got.TheirsBubble)
	}

	if SetTUITheme("missing") {
		t.Error("SetTUITheme(missing) should fail")
	}
	if GetTUITheme().Name != "light" {
		t.Error("failed SetTUITheme should keep the active theme")
	}
}
