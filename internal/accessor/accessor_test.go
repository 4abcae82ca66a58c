package accessor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jmylchreest/swatchbook/internal/colour"
)

// gatedFetcher blocks each colour set until its gate is released.
type gatedFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan struct{}
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: map[string]int{}, gates: map[string]chan struct{}{}}
}

func (f *gatedFetcher) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[key]
	if !ok {
		g = make(chan struct{})
		f.gates[key] = g
	}
	return g
}

func (f *gatedFetcher) release(key string) {
	close(f.gate(key))
}

func (f *gatedFetcher) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *gatedFetcher) FetchBatch(ctx context.Context, hexes []string) map[colour.HexColor]colour.Result {
	key := strings.Join(hexes, ",")
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()

	select {
	case <-f.gate(key):
	case <-ctx.Done():
	}

	out := make(map[colour.HexColor]colour.Result, len(hexes))
	for _, h := range hexes {
		r := colour.HeuristicResult(h).WithProvenance(colour.ProvenanceAI)
		r.SmartPrintRecipe.Explanation = "batch " + key
		out[colour.HexColor(h)] = r
	}
	return out
}

// mapCache is a fixed read-only cache.
type mapCache map[colour.HexColor]colour.Result

func (m mapCache) Get(hex colour.HexColor) (colour.Result, bool) {
	r, ok := m[hex]
	return r, ok
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitSettled(t *testing.T, a *Accessor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestResultBeforeAnyRefresh(t *testing.T) {
	a := New(newGatedFetcher(), nil)
	defer a.Close()

	r := a.Result("#6366f1")
	if r.Provenance != colour.ProvenanceHeuristic {
		t.Errorf("Provenance = %q, want heuristic", r.Provenance)
	}
	if want := (colour.CMYK{C: 59, M: 58, Y: 0, K: 5}); r.StandardAuto.CMYK != want {
		t.Errorf("StandardAuto = %v, want %v", r.StandardAuto.CMYK, want)
	}
	if a.Loading() {
		t.Error("Loading() = true before any colour set")
	}
}

func TestResultPrefersCacheOverHeuristic(t *testing.T) {
	cached := colour.HeuristicResult("#E11D48").WithProvenance(colour.ProvenanceCache)
	cached.SmartPrintRecipe.Explanation = "from snapshot"
	a := New(newGatedFetcher(), mapCache{"#E11D48": cached})
	defer a.Close()

	if r := a.Result("e11d48"); r.Provenance != colour.ProvenanceCache || r.SmartPrintRecipe.Explanation != "from snapshot" {
		t.Errorf("Result() = %+v, want cached entry", r)
	}
}

func TestSetColoursPublishes(t *testing.T) {
	f := newGatedFetcher()
	a := New(f, nil)
	defer a.Close()

	a.SetColours([]string{"#6366f1", "#000"})
	if !a.Loading() {
		t.Fatal("Loading() = false right after SetColours")
	}
	if got, want := a.Key(), "#6366F1,#000000"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}

	// Result never blocks on the outstanding refresh.
	if r := a.Result("#6366F1"); r.Provenance != colour.ProvenanceHeuristic {
		t.Errorf("Result() while loading = %q, want heuristic", r.Provenance)
	}

	f.release("#6366F1,#000000")
	waitSettled(t, a)

	if a.Loading() {
		t.Error("Loading() = true after refresh settled")
	}
	results := a.Results()
	if len(results) != 2 {
		t.Fatalf("len(Results()) = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Provenance != colour.ProvenanceAI {
			t.Errorf("%s Provenance = %q, want ai", r.Hex, r.Provenance)
		}
	}
}

func TestSetColoursSameKeyIsNoop(t *testing.T) {
	f := newGatedFetcher()
	a := New(f, nil)
	defer a.Close()

	a.SetColours([]string{"#FFFFFF"})
	a.SetColours([]string{"ffffff"})
	a.SetColours([]string{"#fff"})

	if got := a.Generation(); got != 1 {
		t.Errorf("Generation() = %d, want 1", got)
	}
	f.release("#FFFFFF")
	waitSettled(t, a)
	if got := f.callCount("#FFFFFF"); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	f := newGatedFetcher()
	metrics := NewMetrics(prometheus.NewRegistry())
	a := New(f, nil, WithMetrics(metrics))
	defer a.Close()

	a.SetColours([]string{"#E11D48"})
	waitFor(t, "first fetch to start", func() bool { return f.callCount("#E11D48") == 1 })
	a.SetColours([]string{"#6366F1"})

	f.release("#6366F1")
	waitSettled(t, a)
	if got := a.Result("#6366F1").Provenance; got != colour.ProvenanceAI {
		t.Fatalf("current set Provenance = %q, want ai", got)
	}

	f.release("#E11D48")
	waitFor(t, "stale refresh to finish", func() bool {
		return testutil.ToFloat64(metrics.refreshes.WithLabelValues(refreshStale)) == 1
	})

	if a.Loading() {
		t.Error("stale refresh changed Loading()")
	}
	if got := a.Key(); got != "#6366F1" {
		t.Errorf("Key() = %q, want #6366F1", got)
	}
	if got := a.Result("#E11D48").Provenance; got != colour.ProvenanceHeuristic {
		t.Errorf("stale colour Provenance = %q, want heuristic", got)
	}
}

func TestReturningToInFlightSetCoalesces(t *testing.T) {
	f := newGatedFetcher()
	a := New(f, nil)
	defer a.Close()

	a.SetColours([]string{"#E11D48"})
	waitFor(t, "first fetch to start", func() bool { return f.callCount("#E11D48") == 1 })
	a.SetColours([]string{"#6366F1"})
	a.SetColours([]string{"#E11D48"})

	if got := a.Generation(); got != 3 {
		t.Errorf("Generation() = %d, want 3", got)
	}

	f.release("#E11D48")
	waitSettled(t, a)

	if got := f.callCount("#E11D48"); got != 1 {
		t.Errorf("fetch calls for #E11D48 = %d, want 1", got)
	}
	if got := a.Result("#E11D48").Provenance; got != colour.ProvenanceAI {
		t.Errorf("Provenance = %q, want ai", got)
	}
	f.release("#6366F1")
}

func TestCloseSuppressesLateResults(t *testing.T) {
	f := newGatedFetcher()
	metrics := NewMetrics(prometheus.NewRegistry())
	a := New(f, nil, WithMetrics(metrics))

	a.SetColours([]string{"#22C55E"})
	sub := a.Subscribe()
	a.Close()

	select {
	case <-sub:
	default:
		t.Error("Close() did not notify subscribers")
	}

	waitFor(t, "cancelled refresh to finish", func() bool {
		return testutil.ToFloat64(metrics.refreshes.WithLabelValues(refreshClosed)) == 1
	})
	if a.Loading() {
		t.Error("Loading() = true after Close")
	}
	if got := a.Result("#22C55E").Provenance; got != colour.ProvenanceHeuristic {
		t.Errorf("Provenance after Close = %q, want heuristic", got)
	}

	a.SetColours([]string{"#000000"})
	if got := a.Generation(); got != 1 {
		t.Errorf("SetColours after Close changed Generation to %d", got)
	}
	a.Close()
}

func TestWaitHonoursContext(t *testing.T) {
	f := newGatedFetcher()
	a := New(f, nil)
	defer a.Close()

	a.SetColours([]string{"#123456"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Wait(ctx); err == nil {
		t.Error("Wait() = nil while refresh is blocked, want context error")
	}
	f.release("#123456")
}

func TestSubscribeFiresOnPublish(t *testing.T) {
	f := newGatedFetcher()
	a := New(f, nil)
	defer a.Close()

	a.SetColours([]string{"#ABCDEF"})
	sub := a.Subscribe()
	f.release("#ABCDEF")

	select {
	case <-sub:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification after refresh published")
	}
}

func TestSetKey(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"#fff"}, "#FFFFFF"},
		{[]string{"000000", "#6366f1"}, "#000000,#6366F1"},
		{[]string{"#6366f1", "000000"}, "#6366F1,#000000"},
	}

	for _, tt := range tests {
		if got := SetKey(tt.in); got != tt.want {
			t.Errorf("SetKey(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnapshotAfterPublish(t *testing.T) {
	f := newGatedFetcher()
	a := New(f, nil)
	defer a.Close()

	key := SetKey([]string{"#6366F1", "#000000"})
	f.release(key)
	a.SetColours([]string{"6366f1", "#000"})
	waitSettled(t, a)

	v := a.Snapshot()
	if v.Key != key || v.Generation != 1 || v.Loading {
		t.Fatalf("Snapshot() = {%q, %d, %v}, want {%q, 1, false}", v.Key, v.Generation, v.Loading, key)
	}
	if len(v.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(v.Results))
	}
	for i, want := range []colour.HexColor{"#6366F1", "#000000"} {
		if v.Results[i].Hex != want || v.Results[i].Provenance != colour.ProvenanceAI {
			t.Errorf("Results[%d] = %s %s, want %s ai", i, v.Results[i].Hex, v.Results[i].Provenance, want)
		}
	}
}

func TestSnapshotIsConsistentDuringChanges(t *testing.T) {
	f := newGatedFetcher()
	sets := [][]string{
		{"#6366F1", "#000000"},
		{"#E11D48", "#22C55E", "#FFFFFF"},
	}
	for _, s := range sets {
		f.release(SetKey(s))
	}

	a := New(f, nil)
	defer a.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			a.SetColours(sets[i%2])
		}
	}()

	for {
		v := a.Snapshot()
		if v.Key != "" {
			parts := strings.Split(v.Key, ",")
			if len(v.Results) != len(parts) {
				t.Fatalf("key %q has %d results", v.Key, len(v.Results))
			}
			for i, r := range v.Results {
				if string(r.Hex) != parts[i] {
					t.Fatalf("key %q: Results[%d].Hex = %s", v.Key, i, r.Hex)
				}
				if r.Provenance == colour.ProvenanceAI && r.SmartPrintRecipe.Explanation != "batch "+v.Key {
					t.Fatalf("key %q: result from %q", v.Key, r.SmartPrintRecipe.Explanation)
				}
			}
		}
		select {
		case <-done:
			return
		default:
		}
	}
}
