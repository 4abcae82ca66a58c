// Package store provides the durable key-value backends behind the recipe cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/swatchbook/internal/config"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Store is a plain get/set-by-key byte store with no transactions.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// Open creates the Store selected by cfg.Backend.
func Open(cfg config.Cache, logger hclog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return NewFileStore(cfg.Dir)
	case config.BackendBadger:
		return OpenBadger(BadgerConfig{Path: filepath.Join(cfg.Dir, "badger"), Logger: logger})
	case config.BackendRedis:
		return NewRedisStoreFromURL(cfg.RedisURL, cfg.RedisPrefix)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
