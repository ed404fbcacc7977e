// Package config handles configuration for roomchat.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables honoured by the loader
const (
	EnvHome   = "ROOMCHAT_HOME"
	EnvPrefix = "ROOMCHAT"
)

// Gallery access states recorded after the permission prompt
const (
	GalleryAccessUnset   = ""
	GalleryAccessGranted = "granted"
	GalleryAccessDenied  = "denied"
)

// Cache drivers
const (
	CacheDriverFile   = "file"
	CacheDriverSQLite = "sqlite"
)

// NATSConfig configures the realtime message collection
type NATSConfig struct {
	URL string `json:"url" mapstructure:"url"`
	// Creds is an optional path to a NATS .creds file
	Creds string `json:"creds,omitempty" mapstructure:"creds"`
	// Stream is the JetStream stream holding the room
	Stream string `json:"stream" mapstructure:"stream"`
	// Subject is where messages are appended
	Subject string `json:"subject" mapstructure:"subject"`
	// Timeout bounds connecting and stream setup, in seconds
	Timeout int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// CacheConfig configures the local message cache
type CacheConfig struct {
	Driver string `json:"driver" mapstructure:"driver"` // "file" or "sqlite"
}

// GalleryConfig configures the image picker
type GalleryConfig struct {
	Dir    string `json:"dir" mapstructure:"dir"`
	Access string `json:"access,omitempty" mapstructure:"access"` // "", "granted" or "denied"
}

// LogConfig configures the log file
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// MarkdownConfig configures markdown rendering of text messages
type MarkdownConfig struct {
	Style            string `json:"style" mapstructure:"style"` // glamour style name
	EnableEmoji      bool   `json:"enable_emoji" mapstructure:"enable_emoji"`
	PreserveNewLines bool   `json:"preserve_newlines" mapstructure:"preserve_newlines"`
}

// Config represents the user configuration
type Config struct {
	NATS     NATSConfig     `json:"nats" mapstructure:"nats"`
	Cache    CacheConfig    `json:"cache" mapstructure:"cache"`
	Gallery  GalleryConfig  `json:"gallery" mapstructure:"gallery"`
	Log      LogConfig      `json:"log" mapstructure:"log"`
	TUITheme string         `json:"tui_theme,omitempty" mapstructure:"tui_theme"`
	Markdown MarkdownConfig `json:"markdown" mapstructure:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Stream:  "ROOMCHAT",
			Subject: "roomchat.messages",
			Timeout: 5,
		},
		Cache: CacheConfig{
			Driver: CacheDriverFile,
		},
		Gallery: GalleryConfig{
			Dir: filepath.Join(homeDir, "Pictures"),
		},
		Log: LogConfig{
			Level: "info",
		},
		TUITheme: "tokyonight",
		Markdown: DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".roomchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the session file
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from the default location
func LoadConfig() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom loads the configuration from path. Precedence:
// defaults < config file < ROOMCHAT_* environment variables.
// A missing file is not an error.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	v := newViper(cfg)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// newViper registers every key with its default so env overrides apply
// even when the file omits the key.
func newViper(cfg Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")

	v.SetDefault("nats.url", cfg.NATS.URL)
	v.SetDefault("nats.creds", cfg.NATS.Creds)
	v.SetDefault("nats.stream", cfg.NATS.Stream)
	v.SetDefault("nats.subject", cfg.NATS.Subject)
	v.SetDefault("nats.timeout_seconds", cfg.NATS.Timeout)
	v.SetDefault("cache.driver", cfg.Cache.Driver)
	v.SetDefault("gallery.dir", cfg.Gallery.Dir)
	v.SetDefault("gallery.access", cfg.Gallery.Access)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("tui_theme", cfg.TUITheme)
	v.SetDefault("markdown.style", cfg.Markdown.Style)
	v.SetDefault("markdown.enable_emoji", cfg.Markdown.EnableEmoji)
	v.SetDefault("markdown.preserve_newlines", cfg.Markdown.PreserveNewLines)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// SaveConfig saves the configuration to the default location
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(filepath.Join(configDir, "config.json"), cfg)
}

// SaveConfigTo writes the configuration as indented JSON
func SaveConfigTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AvailableCacheDrivers returns the supported cache drivers
func AvailableCacheDrivers() []string {
	return []string{CacheDriverFile, CacheDriverSQLite}
}
