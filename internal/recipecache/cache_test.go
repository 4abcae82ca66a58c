package recipecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jmylchreest/swatchbook/internal/colour"
	"github.com/jmylchreest/swatchbook/internal/recipecache/store"
)

// failingStore fails every Set and counts attempts.
type failingStore struct {
	mu    sync.Mutex
	sets  int
	value []byte
	err   error
}

func (s *failingStore) Get(context.Context, string) ([]byte, error) {
	if s.value == nil {
		return nil, store.ErrNotFound
	}
	return s.value, nil
}

func (s *failingStore) Set(context.Context, string, []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	return errors.New("quota exceeded")
}

func (s *failingStore) Close() error { return nil }

func aiResult(hex string) colour.Result {
	pc := colour.HeuristicConversion(hex)
	pc.SmartPrintRecipe.Explanation = "model says so"
	return colour.Result{PrintConversion: pc, Provenance: colour.ProvenanceAI}
}

func TestGetMiss(t *testing.T) {
	c := New(nil)
	if _, ok := c.Get("#123456"); ok {
		t.Error("Get on empty cache reported a hit")
	}
}

func TestSetGetNormalizesKey(t *testing.T) {
	c := New(nil)
	c.Set("#abc", aiResult("#abc"))

	got, ok := c.Get("AABBCC")
	if !ok {
		t.Fatal("expected hit for equivalent hex")
	}
	if got.Hex != "#AABBCC" {
		t.Errorf("Hex = %q, want #AABBCC", got.Hex)
	}
	if got.Provenance != colour.ProvenanceAI {
		t.Errorf("Provenance = %q, want ai", got.Provenance)
	}
}

func TestSetClampsInk(t *testing.T) {
	c := New(nil)
	r := aiResult("#123456")
	r.SmartPrintRecipe.CMYK = colour.CMYK{C: 130, M: -4, Y: 50, K: 101}
	c.Set("#123456", r)

	got, _ := c.Get("#123456")
	want := colour.CMYK{C: 100, M: 0, Y: 50, K: 100}
	if got.SmartPrintRecipe.CMYK != want {
		t.Errorf("SmartPrintRecipe = %+v, want %+v", got.SmartPrintRecipe.CMYK, want)
	}
}

func TestSetOverwrites(t *testing.T) {
	c := New(nil)
	c.Set("#111111", colour.HeuristicResult("#111111"))
	c.Set("#111111", aiResult("#111111"))

	got, _ := c.Get("#111111")
	if got.Provenance != colour.ProvenanceAI {
		t.Errorf("Provenance = %q, want ai after overwrite", got.Provenance)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestFlushAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	first := New(s)
	first.Set("#6366F1", aiResult("#6366F1"))
	first.Set("#000000", colour.HeuristicResult("#000000"))
	first.Flush(ctx)

	second := New(s)
	second.Load(ctx)

	if second.Len() != 2 {
		t.Fatalf("Len() after load = %d, want 2", second.Len())
	}
	got, ok := second.Get("#6366F1")
	if !ok {
		t.Fatal("expected #6366F1 after load")
	}
	if got.Provenance != colour.ProvenanceCache {
		t.Errorf("loaded Provenance = %q, want cache", got.Provenance)
	}
	want, _ := first.Get("#6366F1")
	if got.PrintConversion != want.PrintConversion {
		t.Errorf("loaded recipe = %+v, want %+v", got.PrintConversion, want.PrintConversion)
	}
}

func TestFlushRetainsNewestEntries(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := New(s, WithMaxEntries(3))

	for i := 0; i < 5; i++ {
		hex := fmt.Sprintf("#00000%d", i)
		c.Set(colour.HexColor(hex), colour.HeuristicResult(hex))
	}
	// Touching an old entry makes it the newest.
	c.Set("#000000", aiResult("#000000"))
	c.Flush(ctx)

	data, err := s.Get(ctx, "swatchbook:recipe-cache")
	if err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	var snapshot []snapshotEntry
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("snapshot not JSON: %v", err)
	}

	var hexes []colour.HexColor
	for _, e := range snapshot {
		hexes = append(hexes, e.Hex)
	}
	want := []colour.HexColor{"#000003", "#000004", "#000000"}
	if fmt.Sprint(hexes) != fmt.Sprint(want) {
		t.Errorf("snapshot hexes = %v, want %v", hexes, want)
	}
	if c.Len() != 3 {
		t.Errorf("Len() after flush = %d, want 3", c.Len())
	}
}

func TestFlushFailureDegradesSilently(t *testing.T) {
	ctx := context.Background()
	s := &failingStore{}
	c := New(s)

	c.Set("#FF0000", aiResult("#FF0000"))
	c.Flush(ctx)

	if !c.Degraded() {
		t.Error("cache should be degraded after a failed flush")
	}
	if _, ok := c.Get("#FF0000"); !ok {
		t.Error("fast tier lost the entry after a failed flush")
	}

	c.Set("#00FF00", aiResult("#00FF00"))
	c.Flush(ctx)
	if s.sets != 1 {
		t.Errorf("store Set called %d times, want 1 (no retries once degraded)", s.sets)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLoadIgnoresCorruptSnapshot(t *testing.T) {
	c := New(&failingStore{value: []byte("{not json")})
	c.Load(context.Background())

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after corrupt snapshot", c.Len())
	}
}

func TestLoadSkipsInvalidAndClamps(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	snapshot := `[
		{"hex":"#abc","recipe":{"hex":"#abc","standard_auto":{"c":0,"m":0,"y":0,"k":0,"note":""},"smart_print_recipe":{"c":250,"m":0,"y":0,"k":0,"explanation":"x","paper":"Gloss"}},"provenance":"ai"},
		{"hex":"zzz","recipe":{},"provenance":"ai"},
		{"hex":"#123456","recipe":{"hex":"#123456"},"provenance":"remote"}
	]`
	if err := s.Set(ctx, "swatchbook:recipe-cache", []byte(snapshot)); err != nil {
		t.Fatal(err)
	}

	c := New(s)
	c.Load(ctx)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get("#123456"); ok {
		t.Error("entry with unknown provenance was loaded")
	}
	got, ok := c.Get("#AABBCC")
	if !ok {
		t.Fatal("expected normalized #AABBCC")
	}
	if got.SmartPrintRecipe.C != 100 {
		t.Errorf("C = %d, want clamped 100", got.SmartPrintRecipe.C)
	}
	if got.SmartPrintRecipe.Paper != "Gloss" {
		t.Errorf("Paper = %q, want Gloss", got.SmartPrintRecipe.Paper)
	}
}

func TestLoadOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	seed := New(s)
	seed.Set("#101010", aiResult("#101010"))
	seed.Flush(ctx)

	c := New(s)
	c.Load(ctx)
	c.Set("#101010", aiResult("#101010"))
	c.Load(ctx)

	got, _ := c.Get("#101010")
	if got.Provenance != colour.ProvenanceAI {
		t.Errorf("second Load overwrote a fresh entry: provenance %q", got.Provenance)
	}
}

func TestConcurrentSet(t *testing.T) {
	c := New(store.NewMemoryStore())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hex := fmt.Sprintf("#0000%02X", i)
			c.Set(colour.HexColor(hex), colour.HeuristicResult(hex))
			c.Flush(context.Background())
		}(i)
	}
	wg.Wait()

	if c.Len() != 16 {
		t.Errorf("Len() = %d, want 16", c.Len())
	}
}
