// Package recipecache is the two-tier recipe cache: an in-process map backed by
// a bounded snapshot in a durable key-value store.
//
// Contract:
//   - Get never errors; a miss is (zero, false).
//   - Set always succeeds in memory; last write wins per hex.
//   - Flush writes the newest MaxEntries entries (by insertion order) to the
//     store. A store failure is logged and the cache stays memory-only for the
//     rest of its life.
//   - Load hydrates once; unreadable snapshots leave the cache empty.
package recipecache

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/swatchbook/internal/colour"
	"github.com/jmylchreest/swatchbook/internal/config"
	"github.com/jmylchreest/swatchbook/internal/recipecache/store"
)

// Cache maps normalized hex colours to their last known recipe.
type Cache struct {
	mu       sync.RWMutex
	entries  map[colour.HexColor]colour.Result
	order    []colour.HexColor // oldest first
	loaded   bool
	degraded bool

	flushMu sync.Mutex

	store      store.Store
	key        string
	maxEntries int
	logger     hclog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries sets how many entries survive a flush.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithKey sets the store key holding the snapshot.
func WithKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty cache. A nil store gives a memory-only cache.
func New(s store.Store, opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[colour.HexColor]colour.Result),
		store:      s,
		key:        config.DefaultSnapshotKey,
		maxEntries: config.DefaultMaxEntries,
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// snapshotEntry is one element of the persisted list.
type snapshotEntry struct {
	Hex        colour.HexColor        `json:"hex"`
	Recipe     colour.PrintConversion `json:"recipe"`
	Provenance colour.Provenance      `json:"provenance"`
}

// Load hydrates the cache from the store. Only the first call does any work.
// Every loaded entry is tagged ProvenanceCache; entries with an invalid hex or
// unknown provenance are skipped. Failures are logged, never returned.
func (c *Cache) Load(ctx context.Context) {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return
	}
	c.loaded = true
	c.mu.Unlock()

	if c.store == nil {
		return
	}

	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("failed to read recipe snapshot, starting empty", "error", err)
		}
		return
	}

	var snapshot []snapshotEntry
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("ignoring unreadable recipe snapshot", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	skipped := 0
	for _, e := range snapshot {
		if !colour.IsValidHex(string(e.Hex)) || !e.Provenance.Valid() {
			skipped++
			continue
		}
		hex := colour.NormalizeHex(string(e.Hex))
		recipe := e.Recipe.Clamp()
		recipe.Hex = hex
		// Entries written in this session before Load completed are newer.
		if _, ok := c.entries[hex]; ok {
			continue
		}
		c.entries[hex] = colour.Result{PrintConversion: recipe, Provenance: colour.ProvenanceCache}
		c.order = append(c.order, hex)
	}
	c.logger.Debug("loaded recipe snapshot", "entries", len(c.entries), "skipped", skipped)
}

// Get looks up hex. The key is normalized first.
func (c *Cache) Get(hex colour.HexColor) (colour.Result, bool) {
	hex = colour.NormalizeHex(string(hex))
	c.mu.RLock()
	r, ok := c.entries[hex]
	c.mu.RUnlock()
	return r, ok
}

// Set stores r under hex, making it the newest entry.
func (c *Cache) Set(hex colour.HexColor, r colour.Result) {
	hex = colour.NormalizeHex(string(hex))
	r.PrintConversion = r.PrintConversion.Clamp()
	r.Hex = hex

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[hex]; ok {
		if i := slices.Index(c.order, hex); i >= 0 {
			c.order = slices.Delete(c.order, i, i+1)
		}
	}
	c.entries[hex] = r
	c.order = append(c.order, hex)
}

// Flush trims the cache to the newest MaxEntries and writes them to the store.
func (c *Cache) Flush(ctx context.Context) {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.Lock()
	if excess := len(c.order) - c.maxEntries; excess > 0 {
		for _, hex := range c.order[:excess] {
			delete(c.entries, hex)
		}
		c.order = slices.Clone(c.order[excess:])
	}
	if c.store == nil || c.degraded {
		c.mu.Unlock()
		return
	}
	snapshot := make([]snapshotEntry, 0, len(c.order))
	for _, hex := range c.order {
		r := c.entries[hex]
		snapshot = append(snapshot, snapshotEntry{Hex: hex, Recipe: r.PrintConversion, Provenance: r.Provenance})
	}
	c.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err == nil {
		err = c.store.Set(ctx, c.key, data)
	}
	if err != nil {
		c.mu.Lock()
		c.degraded = true
		c.mu.Unlock()
		c.logger.Warn("failed to persist recipe snapshot, continuing in memory only", "error", err)
		return
	}
	c.logger.Trace("flushed recipe snapshot", "entries", len(snapshot))
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of all entries, oldest first.
func (c *Cache) Entries() []colour.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]colour.Result, 0, len(c.order))
	for _, hex := range c.order {
		out = append(out, c.entries[hex])
	}
	return out
}

// Degraded reports whether durable writes have been disabled after a failure.
func (c *Cache) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

// MaxEntries returns the retention bound.
func (c *Cache) MaxEntries() int {
	return c.maxEntries
}
