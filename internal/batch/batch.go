// Package batch resolves sets of colours into print recipes with at most one
// remote call per set.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/swatchbook/internal/colour"
	"github.com/jmylchreest/swatchbook/internal/recipecache"
	"github.com/jmylchreest/swatchbook/internal/remote"
)

// Coordinator partitions a colour set against the recipe cache and fills the
// gaps from a remote Source, falling back to the heuristic engine for anything
// the source cannot resolve.
type Coordinator struct {
	cache   *recipecache.Cache
	source  remote.Source
	logger  hclog.Logger
	metrics *Metrics
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records activity in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// New creates a Coordinator. A nil source runs heuristic-only.
func New(cache *recipecache.Cache, source remote.Source, opts ...Option) *Coordinator {
	c := &Coordinator{
		cache:  cache,
		source: source,
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns the cache the coordinator writes to.
func (c *Coordinator) Cache() *recipecache.Cache {
	return c.cache
}

// RemoteEnabled reports whether a remote source is configured.
func (c *Coordinator) RemoteEnabled() bool {
	return c.source != nil
}

// FetchBatch resolves every colour in hexes. It never fails: each normalized
// input hex is present in the result. Colours already cached come back tagged
// cache; the rest are resolved by one remote call or by the heuristic engine.
func (c *Coordinator) FetchBatch(ctx context.Context, hexes []string) map[colour.HexColor]colour.Result {
	batchID := uuid.NewString()
	logger := c.logger.With("batch_id", batchID)

	requested := colour.NormalizeAll(hexes)
	results := make(map[colour.HexColor]colour.Result, len(requested))

	var uncached []colour.HexColor
	for _, h := range requested {
		if r, ok := c.cache.Get(h); ok {
			results[h] = r.WithProvenance(colour.ProvenanceCache)
			continue
		}
		uncached = append(uncached, h)
	}

	if len(uncached) == 0 {
		logger.Trace("batch fully cached", "colours", len(requested))
		c.count(results)
		return results
	}

	// A cancelled caller must not leave the snapshot degraded.
	flushCtx := context.WithoutCancel(ctx)

	if c.source == nil {
		logger.Debug("no remote source, resolving heuristically", "colours", len(uncached))
		c.resolveHeuristic(uncached, results, true)
		c.cache.Flush(flushCtx)
		c.count(results)
		return results
	}

	start := time.Now()
	recipes, err := c.source.FetchRecipes(ctx, uncached)
	if err != nil {
		// Fallbacks for an abandoned batch are not cached, so a later batch
		// for the same colours still asks the remote source.
		if ctx.Err() != nil {
			logger.Debug("remote batch abandoned", "colours", len(uncached), "error", err)
			c.resolveHeuristic(uncached, results, false)
			c.count(results)
			return results
		}
		logger.Warn("remote batch failed, falling back to heuristic", "colours", len(uncached), "error", err)
		c.metrics.observeRemote(outcomeFailure, len(uncached))
		c.resolveHeuristic(uncached, results, true)
		c.cache.Flush(flushCtx)
		c.count(results)
		return results
	}

	resolved := make(map[colour.HexColor]remote.Recipe, len(recipes))
	for _, r := range recipes {
		resolved[colour.NormalizeHex(string(r.Hex))] = r
	}

	var missing []colour.HexColor
	for _, h := range uncached {
		r, ok := resolved[h]
		if !ok {
			missing = append(missing, h)
			continue
		}
		result := aiResult(h, r)
		c.cache.Set(h, result)
		results[h] = result
	}

	outcome := outcomeSuccess
	if len(missing) > 0 {
		outcome = outcomePartial
		logger.Debug("remote response missing colours", "missing", len(missing))
		c.resolveHeuristic(missing, results, true)
	}
	c.metrics.observeRemote(outcome, len(uncached))
	logger.Debug("remote batch merged",
		"requested", len(uncached), "ai", len(uncached)-len(missing), "duration", time.Since(start))

	c.cache.Flush(flushCtx)
	c.count(results)
	return results
}

// aiResult builds a result from a remote recipe. The standard conversion is
// always recomputed from the hex rather than taken from the payload.
func aiResult(h colour.HexColor, r remote.Recipe) colour.Result {
	paper := r.Paper
	if paper == "" {
		paper = colour.DefaultPaper
	}
	pc := colour.PrintConversion{
		Hex:          h,
		StandardAuto: colour.StandardAutoFor(h),
		SmartPrintRecipe: colour.SmartRecipe{
			CMYK:        r.CMYK,
			Explanation: r.Explanation,
			Paper:       paper,
		},
	}
	return colour.Result{PrintConversion: pc.Clamp(), Provenance: colour.ProvenanceAI}
}

func (c *Coordinator) resolveHeuristic(hexes []colour.HexColor, results map[colour.HexColor]colour.Result, persist bool) {
	for _, h := range hexes {
		r := colour.HeuristicResult(string(h))
		if persist {
			c.cache.Set(h, r)
		}
		results[h] = r
	}
}

func (c *Coordinator) count(results map[colour.HexColor]colour.Result) {
	for _, r := range results {
		c.metrics.observeResult(r.Provenance.String())
	}
}
