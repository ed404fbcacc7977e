package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.NATS.URL != "nats://127.0.0.1:4222" {
		t.Errorf("Expected default NATS url, got '%s'", cfg.NATS.URL)
	}
	if cfg.NATS.Stream != "ROOMCHAT" {
		t.Errorf("Expected stream ROOMCHAT, got '%s'", cfg.NATS.Stream)
	}
	if cfg.Cache.Driver != CacheDriverFile {
		t.Errorf("Expected file cache driver, got '%s'", cfg.Cache.Driver)
	}
	if cfg.Gallery.Access != GalleryAccessUnset {
		t.Errorf("Expected gallery access unset, got '%s'", cfg.Gallery.Access)
	}
}

func TestGetConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if got != dir {
		t.Errorf("GetConfigDir() = %s, want %s", got, dir)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if path != filepath.Join(dir, "config.json") {
		t.Errorf("GetConfigPath() = %s", path)
	}
}

func TestLoadConfigFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}
	if cfg.NATS.Subject != "roomchat.messages" {
		t.Errorf("Expected default subject, got %s", cfg.NATS.Subject)
	}
}

func TestLoadConfigFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"nats":{"url":"nats://chat.example:4222","stream":"ROOM"},"cache":{"driver":"sqlite"},"gallery":{"access":"granted"}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}

	if cfg.NATS.URL != "nats://chat.example:4222" {
		t.Errorf("NATS.URL = %s", cfg.NATS.URL)
	}
	if cfg.NATS.Stream != "ROOM" {
		t.Errorf("NATS.Stream = %s", cfg.NATS.Stream)
	}
	// Keys missing from the file keep their defaults
	if cfg.NATS.Subject != "roomchat.messages" {
		t.Errorf("NATS.Subject = %s", cfg.NATS.Subject)
	}
	if cfg.Cache.Driver != CacheDriverSQLite {
		t.Errorf("Cache.Driver = %s", cfg.Cache.Driver)
	}
	if cfg.Gallery.Access != GalleryAccessGranted {
		t.Errorf("Gallery.Access = %s", cfg.Gallery.Access)
	}
}

func TestLoadConfigFrom_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"nats":{"url":"nats://file:4222"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ROOMCHAT_NATS_URL", "nats://env:4222")
	t.Setenv("ROOMCHAT_LOG_LEVEL", "debug")

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}
	if cfg.NATS.URL != "nats://env:4222" {
		t.Errorf("Expected env to win, got %s", cfg.NATS.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s", cfg.Log.Level)
	}
}

func TestLoadConfigFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if cfg.NATS.URL == "" {
		t.Error("Expected defaults to be returned alongside the error")
	}
}

func TestSaveConfigTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Gallery.Dir = "/tmp/gallery"
	cfg.Gallery.Access = GalleryAccessDenied

	if err := SaveConfigTo(path, cfg); err != nil {
		t.Fatalf("SaveConfigTo() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	raw, _ := os.ReadFile(path)
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("saved config is not JSON: %v", err)
	}

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error: %v", err)
	}
	if loaded.Gallery.Dir != "/tmp/gallery" || loaded.Gallery.Access != GalleryAccessDenied {
		t.Errorf("round trip lost gallery settings: %+v", loaded.Gallery)
	}
}

func TestSaveConfig_UsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	if err := SaveConfig(DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Errorf("config.json not created in config dir: %v", err)
	}
}
