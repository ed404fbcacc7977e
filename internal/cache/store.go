// Package cache provides the local key-value store holding the last
// observed message list.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/diogo/roomchat/internal/config"
)

// Store is a persistent string key-value store
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid cache key %q", key)
	}
	return nil
}

// Open returns the store selected by driver, rooted in baseDir
func Open(driver, baseDir string) (Store, error) {
	switch driver {
	case "", config.CacheDriverFile:
		return NewFileStore(filepath.Join(baseDir, "cache"))
	case config.CacheDriverSQLite:
		return NewSQLiteStore(filepath.Join(baseDir, "cache.db"))
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}
