// Package accessor is the consumer-facing view over the batch coordinator.
//
// Result never blocks: it answers from the current batch, then the cache, then
// the heuristic engine. SetColours starts an asynchronous refresh whenever the
// ordered colour set changes. Only the most recently started refresh may
// publish; older ones finish in the background (still filling the cache) and
// are discarded. After Close nothing publishes.
package accessor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"github.com/jmylchreest/swatchbook/internal/colour"
)

// Fetcher resolves a colour set. *batch.Coordinator implements it.
type Fetcher interface {
	FetchBatch(ctx context.Context, hexes []string) map[colour.HexColor]colour.Result
}

// Cache is the read side of the recipe cache.
type Cache interface {
	Get(hex colour.HexColor) (colour.Result, bool)
}

// Accessor tracks the colour set in view and its best known results.
type Accessor struct {
	fetcher Fetcher
	cache   Cache
	logger  hclog.Logger
	metrics *Metrics

	group singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	key        string
	hexes      []colour.HexColor
	generation uint64
	loading    bool
	closed     bool
	current    map[colour.HexColor]colour.Result
	changed    chan struct{}
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(a *Accessor) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics records refresh outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(a *Accessor) {
		a.metrics = m
	}
}

// New creates an Accessor with an empty colour set. cache may be nil.
func New(fetcher Fetcher, cache Cache, opts ...Option) *Accessor {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Accessor{
		fetcher: fetcher,
		cache:   cache,
		logger:  hclog.NewNullLogger(),
		ctx:     ctx,
		cancel:  cancel,
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetKey returns the identity of an ordered colour set.
func SetKey(hexes []string) string {
	parts := make([]string, len(hexes))
	for i, h := range hexes {
		parts[i] = string(colour.NormalizeHex(h))
	}
	return strings.Join(parts, ",")
}

// View is a consistent picture of the accessor: Results line up with Key.
type View struct {
	Key        string
	Generation uint64
	Loading    bool
	Results    []colour.Result
}

// Result returns the best available recipe for hex without blocking.
func (a *Accessor) Result(hex string) colour.Result {
	a.mu.RLock()
	current := a.current
	a.mu.RUnlock()
	return a.resolve(current, colour.NormalizeHex(hex))
}

// resolve prefers this set's remote answer, then the cache, then the heuristic.
func (a *Accessor) resolve(current map[colour.HexColor]colour.Result, h colour.HexColor) colour.Result {
	if r, ok := current[h]; ok && r.Provenance == colour.ProvenanceAI {
		return r
	}
	if a.cache != nil {
		if r, ok := a.cache.Get(h); ok {
			return r
		}
	}
	return colour.HeuristicResult(string(h))
}

// Results returns Result for every colour in the current set, in order.
func (a *Accessor) Results() []colour.Result {
	return a.Snapshot().Results
}

// Snapshot reads the key, generation, loading flag and colour set under one
// lock, so a concurrent SetColours cannot mix two sets in one View.
func (a *Accessor) Snapshot() View {
	a.mu.RLock()
	v := View{Key: a.key, Generation: a.generation, Loading: a.loading}
	hexes := a.hexes
	current := a.current
	a.mu.RUnlock()

	// current and hexes are replaced on change, never mutated.
	v.Results = make([]colour.Result, len(hexes))
	for i, h := range hexes {
		v.Results[i] = a.resolve(current, h)
	}
	return v
}

// SetColours makes hexes the colour set in view. An unchanged set is a no-op;
// a changed one starts a refresh and returns immediately.
func (a *Accessor) SetColours(hexes []string) {
	key := SetKey(hexes)

	a.mu.Lock()
	if a.closed || key == a.key {
		a.mu.Unlock()
		return
	}
	a.generation++
	gen := a.generation
	a.key = key
	a.hexes = colour.NormalizeAll(hexes)
	a.current = nil
	a.loading = len(a.hexes) > 0
	a.notifyLocked()
	set := a.hexes
	a.mu.Unlock()

	if len(set) == 0 {
		return
	}

	a.logger.Debug("colour set changed", "generation", gen, "colours", len(set))

	input := make([]string, len(set))
	for i, h := range set {
		input[i] = string(h)
	}
	// DoChan registers the call before returning, so a set that is already
	// in flight is joined rather than fetched again.
	ch := a.group.DoChan(key, func() (any, error) {
		return a.fetcher.FetchBatch(a.ctx, input), nil
	})
	go a.await(gen, ch, time.Now())
}

func (a *Accessor) await(gen uint64, ch <-chan singleflight.Result, start time.Time) {
	res := <-ch
	results, _ := res.Val.(map[colour.HexColor]colour.Result)
	shared := res.Shared

	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.closed:
		a.metrics.observeRefresh(refreshClosed)
		return
	case gen != a.generation:
		a.logger.Trace("discarding stale refresh", "generation", gen, "current", a.generation)
		a.metrics.observeRefresh(refreshStale)
		return
	}

	a.current = results
	a.loading = false
	a.notifyLocked()
	a.metrics.observeRefresh(refreshPublished)
	a.logger.Debug("refresh published", "generation", gen, "shared", shared, "duration", time.Since(start))
}

// notifyLocked wakes everyone holding the current Subscribe channel.
func (a *Accessor) notifyLocked() {
	close(a.changed)
	a.changed = make(chan struct{})
}

// Loading reports whether the current set's refresh is outstanding.
func (a *Accessor) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Key returns the identity of the current colour set.
func (a *Accessor) Key() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.key
}

// Generation increments every time the colour set changes.
func (a *Accessor) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generation
}

// Subscribe returns a channel that is closed on the next observable change:
// a new colour set, a published refresh or Close.
func (a *Accessor) Subscribe() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.changed
}

// Wait blocks until the current refresh settles or ctx is done.
func (a *Accessor) Wait(ctx context.Context) error {
	for {
		a.mu.RLock()
		loading := a.loading
		ch := a.changed
		a.mu.RUnlock()
		if !loading {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close tears the accessor down. Outstanding refreshes are cancelled and can
// no longer change state. Close is idempotent.
func (a *Accessor) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.loading = false
	a.cancel()
	a.notifyLocked()
}
