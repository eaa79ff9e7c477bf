package classify

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seqlab/prospect/internal/cache"
	"github.com/seqlab/prospect/internal/gateway"
	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/rubric"
)

// countingBackend answers every batch prompt with a valid response sized to
// the batch, marking PA1 true for every record.
type countingBackend struct {
	calls int
}

func (b *countingBackend) Complete(_ context.Context, req gateway.Request) (string, error) {
	b.calls++
	n := strings.Count(req.Prompt, "=== PESQUISADOR ")
	if n == 0 {
		n = 1 // individual prompt
	}

	var sb strings.Builder
	sb.WriteString(`{"pesquisadores": [`)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"pesquisador_id": %d, "nome": "R"`, i+1)
		for _, code := range rubric.Codes() {
			fmt.Fprintf(&sb, `, %q: %v`, code, code == "PA1")
		}
		sb.WriteString("}")
	}
	sb.WriteString("]}")
	return sb.String(), nil
}

func testSources(n int) []profile.Source {
	sources := make([]profile.Source, n)
	for i := range sources {
		name := fmt.Sprintf("Pesquisador %02d", i)
		sources[i] = profile.Source{
			Path:   fmt.Sprintf("perfil_%02d.json", i),
			Hash:   fmt.Sprintf("hash-%02d", i),
			Record: profile.Record{Name: name, Keywords: "proteina recombinante"},
		}
	}
	return sources
}

func newTestEngine(t *testing.T, backend gateway.Backend, store *cache.Cache, opts Options, sleeps *[]time.Duration) *Engine {
	t.Helper()
	gw := gateway.New(backend, gateway.DefaultPolicy(), 0.1, 4096,
		gateway.WithSleep(func(time.Duration) {}))
	return New(gw, store, opts, WithSleep(func(d time.Duration) {
		if sleeps != nil {
			*sleeps = append(*sleeps, d)
		}
	}))
}

func TestRunClassifiesInBatches(t *testing.T) {
	backend := &countingBackend{}
	e := newTestEngine(t, backend, nil, Options{BatchSize: 2}, nil)

	sources := testSources(5)
	items, stats, err := e.Run(context.Background(), sources)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Batches != 3 {
		t.Errorf("Batches = %d, want 3", stats.Batches)
	}
	if backend.calls != 3 {
		t.Errorf("backend calls = %d, want 3", backend.calls)
	}
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}
	for i, item := range items {
		if item.Source.Record.Name != sources[i].Record.Name {
			t.Errorf("item %d out of input order: %s", i, item.Source.Record.Name)
		}
		if !item.Criteria["PA1"] {
			t.Errorf("item %d lost its verdict", i)
		}
		if item.FromCache {
			t.Errorf("item %d marked cached on a cold run", i)
		}
		if item.Score.Label == "" {
			t.Errorf("item %d not scored", i)
		}
	}
}

func TestWarmCacheSkipsBackend(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	sources := testSources(4)

	cold := &countingBackend{}
	e := newTestEngine(t, cold, store, Options{BatchSize: 4}, nil)
	if _, _, err := e.Run(context.Background(), sources); err != nil {
		t.Fatalf("cold run: %v", err)
	}
	if cold.calls == 0 {
		t.Fatal("cold run never hit the backend")
	}

	warm := &countingBackend{}
	e = newTestEngine(t, warm, store, Options{BatchSize: 4}, nil)
	items, stats, err := e.Run(context.Background(), sources)
	if err != nil {
		t.Fatalf("warm run: %v", err)
	}

	if warm.calls != 0 {
		t.Errorf("warm run hit the backend %d times, want 0", warm.calls)
	}
	if stats.CacheHits != 4 {
		t.Errorf("CacheHits = %d, want 4", stats.CacheHits)
	}
	for i, item := range items {
		if !item.FromCache {
			t.Errorf("item %d not served from cache", i)
		}
		if item.Score.Label == "" {
			t.Errorf("cached item %d not rescored", i)
		}
	}
}

func TestChangedContentMissesCache(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	sources := testSources(1)
	e := newTestEngine(t, &countingBackend{}, store, Options{}, nil)
	if _, _, err := e.Run(context.Background(), sources); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Same file, new content hash: must be reclassified.
	sources[0].Hash = "hash-changed"
	warm := &countingBackend{}
	e = newTestEngine(t, warm, store, Options{}, nil)
	_, stats, err := e.Run(context.Background(), sources)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if warm.calls == 0 {
		t.Error("changed content was served from cache")
	}
	if stats.CacheHits != 0 {
		t.Errorf("CacheHits = %d, want 0", stats.CacheHits)
	}
}

func TestInterBatchPacing(t *testing.T) {
	var sleeps []time.Duration
	e := newTestEngine(t, &countingBackend{}, nil, Options{BatchSize: 2, Conservative: true}, &sleeps)

	if _, _, err := e.Run(context.Background(), testSources(6)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Three batches: the delay applies between batches, not before the
	// first or after the last.
	if len(sleeps) != 2 {
		t.Fatalf("slept %d times, want 2: %v", len(sleeps), sleeps)
	}
	for _, d := range sleeps {
		if d != conservativeDelay {
			t.Errorf("slept %v, want %v", d, conservativeDelay)
		}
	}
}

func TestCancellationStopsAtBatchBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &countingBackend{}
	e := newTestEngine(t, backend, nil, Options{BatchSize: 2}, nil)

	_, _, err := e.Run(ctx, testSources(4))
	if err == nil {
		t.Fatal("cancelled run returned no error")
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times after cancellation", backend.calls)
	}
}

func TestProgressCallbackOrder(t *testing.T) {
	var names []string
	gw := gateway.New(&countingBackend{}, gateway.DefaultPolicy(), 0.1, 4096,
		gateway.WithSleep(func(time.Duration) {}))
	e := New(gw, nil, Options{BatchSize: 3},
		WithSleep(func(time.Duration) {}),
		WithProgress(func(done, total int, name string, fromCache bool) {
			names = append(names, name)
			if done < 1 || done > total {
				t.Errorf("done = %d out of range (total %d)", done, total)
			}
		}))

	sources := testSources(3)
	if _, _, err := e.Run(context.Background(), sources); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("progress reported %d records, want 3", len(names))
	}
}

func TestBatchSizeClamping(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultBatchSize},
		{1, MinBatchSize},
		{7, 7},
		{50, MaxBatchSize},
	}
	for _, tt := range tests {
		e := New(nil, nil, Options{BatchSize: tt.in})
		if e.opts.BatchSize != tt.want {
			t.Errorf("BatchSize %d clamped to %d, want %d", tt.in, e.opts.BatchSize, tt.want)
		}
	}
}
