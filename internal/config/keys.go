package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Keys returns the settable configuration keys in display order
func Keys() []string {
	return []string{
		"nats.url",
		"nats.creds",
		"nats.stream",
		"nats.subject",
		"nats.timeout_seconds",
		"cache.driver",
		"gallery.dir",
		"gallery.access",
		"log.level",
		"tui_theme",
		"markdown.style",
		"markdown.enable_emoji",
		"markdown.preserve_newlines",
	}
}

// Get returns the value of key as a string
func (c Config) Get(key string) (string, error) {
	switch key {
	case "nats.url":
		return c.NATS.URL, nil
	case "nats.creds":
		return c.NATS.Creds, nil
	case "nats.stream":
		return c.NATS.Stream, nil
	case "nats.subject":
		return c.NATS.Subject, nil
	case "nats.timeout_seconds":
		return strconv.Itoa(c.NATS.Timeout), nil
	case "cache.driver":
		return c.Cache.Driver, nil
	case "gallery.dir":
		return c.Gallery.Dir, nil
	case "gallery.access":
		return c.Gallery.Access, nil
	case "log.level":
		return c.Log.Level, nil
	case "tui_theme":
		return c.TUITheme, nil
	case "markdown.style":
		return c.Markdown.Style, nil
	case "markdown.enable_emoji":
		return strconv.FormatBool(c.Markdown.EnableEmoji), nil
	case "markdown.preserve_newlines":
		return strconv.FormatBool(c.Markdown.PreserveNewLines), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set assigns value to key after validating it
func (c *Config) Set(key, value string) error {
	switch key {
	case "nats.url":
		if !strings.Contains(value, "://") {
			return fmt.Errorf("invalid NATS url %q", value)
		}
		c.NATS.URL = value
	case "nats.creds":
		c.NATS.Creds = value
	case "nats.stream":
		if value == "" || strings.ContainsAny(value, ". *>") {
			return fmt.Errorf("invalid stream name %q", value)
		}
		c.NATS.Stream = value
	case "nats.subject":
		if value == "" || strings.ContainsAny(value, " *>") {
			return fmt.Errorf("invalid subject %q", value)
		}
		c.NATS.Subject = value
	case "nats.timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout must be a positive integer, got %q", value)
		}
		c.NATS.Timeout = n
	case "cache.driver":
		if !slices.Contains(AvailableCacheDrivers(), value) {
			return fmt.Errorf("unknown cache driver %q (available: %s)", value, strings.Join(AvailableCacheDrivers(), ", "))
		}
		c.Cache.Driver = value
	case "gallery.dir":
		c.Gallery.Dir = value
	case "gallery.access":
		switch value {
		case GalleryAccessUnset, GalleryAccessGranted, GalleryAccessDenied:
			c.Gallery.Access = value
		default:
			return fmt.Errorf("gallery access must be granted, denied or empty, got %q", value)
		}
	case "log.level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			c.Log.Level = strings.ToLower(value)
		default:
			return fmt.Errorf("unknown log level %q", value)
		}
	case "tui_theme":
		c.TUITheme = value
	case "markdown.style":
		c.Markdown.Style = value
	case "markdown.enable_emoji", "markdown.preserve_newlines":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		if key == "markdown.enable_emoji" {
			c.Markdown.EnableEmoji = b
		} else {
			c.Markdown.PreserveNewLines = b
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
