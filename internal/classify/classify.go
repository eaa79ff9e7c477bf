// Package classify runs the end-to-end classification pipeline over a set
// of loaded profiles: cache lookup, evidence retrieval, batched LLM calls,
// scoring, and cache write-back. Processing is sequential; pacing between
// batches is part of the rate-limit strategy, not an accident.
package classify

import (
	"context"
	"time"

	"github.com/seqlab/prospect/internal/cache"
	"github.com/seqlab/prospect/internal/evidence"
	"github.com/seqlab/prospect/internal/gateway"
	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/prompt"
	"github.com/seqlab/prospect/internal/rubric"
	"github.com/seqlab/prospect/internal/scoring"
)

const (
	// MinBatchSize and MaxBatchSize bound the records per LLM call. Below 2
	// batching buys nothing; above 12 response quality degrades.
	MinBatchSize = 2
	MaxBatchSize = 12

	// DefaultBatchSize balances throughput against response reliability.
	DefaultBatchSize = 4

	// interBatchDelay paces consecutive batches; conservativeDelay is used
	// when the configured model is known to throttle aggressively.
	interBatchDelay   = 5 * time.Second
	conservativeDelay = 10 * time.Second
)

// Item is the classification outcome for one profile.
type Item struct {
	Source    profile.Source
	Criteria  rubric.CriterionSet
	Score     scoring.Result
	FromCache bool

	// AllFalse marks the terminal fallback verdict: the backend never
	// produced a valid response for this record.
	AllFalse bool
}

// Stats summarizes one pipeline run.
type Stats struct {
	Records   int
	CacheHits int
	Batches   int
	Fallbacks int
	AllFalse  int
	Elapsed   time.Duration
}

// APICallsSaved estimates requests avoided by the cache, assuming the
// configured batch size.
func (s Stats) APICallsSaved(batchSize int) int {
	if batchSize < 1 {
		batchSize = 1
	}
	return (s.CacheHits + batchSize - 1) / batchSize
}

// Options configures an Engine.
type Options struct {
	// BatchSize is clamped to [MinBatchSize, MaxBatchSize]; zero selects
	// DefaultBatchSize.
	BatchSize int

	// Conservative selects the longer inter-batch delay.
	Conservative bool
}

// ProgressFunc is called after each record resolves.
type ProgressFunc func(done, total int, name string, fromCache bool)

// Engine drives the pipeline.
type Engine struct {
	gw       *gateway.Gateway
	store    *cache.Cache
	opts     Options
	sleep    func(time.Duration)
	progress ProgressFunc
	notice   gateway.NoticeFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress installs a per-record progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithNotice installs a diagnostic notice sink.
func WithNotice(fn gateway.NoticeFunc) Option {
	return func(e *Engine) { e.notice = fn }
}

// WithSleep replaces the pacing function (tests only).
func WithSleep(fn func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = fn }
}

// New creates an Engine. store may be nil to disable caching.
func New(gw *gateway.Gateway, store *cache.Cache, opts Options, optFns ...Option) *Engine {
	switch {
	case opts.BatchSize == 0:
		opts.BatchSize = DefaultBatchSize
	case opts.BatchSize < MinBatchSize:
		opts.BatchSize = MinBatchSize
	case opts.BatchSize > MaxBatchSize:
		opts.BatchSize = MaxBatchSize
	}

	e := &Engine{
		gw:    gw,
		store: store,
		opts:  opts,
		sleep: time.Sleep,
	}
	for _, fn := range optFns {
		fn(e)
	}
	return e
}

func (e *Engine) noticef(format string, args ...any) {
	if e.notice != nil {
		e.notice(format, args...)
	}
}

func (e *Engine) report(done, total int, name string, fromCache bool) {
	if e.progress != nil {
		e.progress(done, total, name, fromCache)
	}
}

// Run classifies every source and returns items in input order. Cached
// results are reused without touching the backend; the rest go through the
// gateway in batches. Cancellation is honored at batch boundaries so a
// partially processed batch is never recorded.
func (e *Engine) Run(ctx context.Context, sources []profile.Source) ([]Item, Stats, error) {
	start := time.Now()
	total := len(sources)
	items := make([]Item, total)
	stats := Stats{Records: total}

	// First pass: resolve what the cache already knows.
	var pending []int
	done := 0
	for i, src := range sources {
		if item, ok := e.fromCache(src); ok {
			items[i] = item
			stats.CacheHits++
			done++
			e.report(done, total, src.Record.Name, true)
			continue
		}
		pending = append(pending, i)
	}

	// Second pass: batch the misses through the gateway.
	for batchStart := 0; batchStart < len(pending); batchStart += e.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return items, stats, err
		}
		if batchStart > 0 {
			e.sleep(e.batchDelay())
		}

		batchEnd := batchStart + e.opts.BatchSize
		if batchEnd > len(pending) {
			batchEnd = len(pending)
		}
		indices := pending[batchStart:batchEnd]

		entries := make([]prompt.Entry, len(indices))
		for j, idx := range indices {
			r := &sources[idx].Record
			entries[j] = prompt.Entry{Record: r, Evidence: evidence.Retrieve(r)}
		}

		sets, outcome := e.gw.ClassifyBatch(ctx, entries)
		stats.Batches++
		if outcome.FellBack {
			stats.Fallbacks++
		}
		stats.AllFalse += outcome.AllFalse

		terminal := make(map[int]bool, len(outcome.AllFalseAt))
		for _, pos := range outcome.AllFalseAt {
			terminal[pos] = true
		}

		for j, idx := range indices {
			src := sources[idx]
			item := Item{
				Source:   src,
				Criteria: sets[j],
				Score:    scoring.Score(sets[j]),
				AllFalse: terminal[j],
			}
			items[idx] = item
			e.writeBack(src, item)
			done++
			e.report(done, total, src.Record.Name, false)
		}
	}

	stats.Elapsed = time.Since(start)
	return items, stats, nil
}

func (e *Engine) batchDelay() time.Duration {
	if e.opts.Conservative {
		return conservativeDelay
	}
	return interBatchDelay
}

// fromCache resolves a source against the cache. Incomplete or corrupt
// entries are treated as misses.
func (e *Engine) fromCache(src profile.Source) (Item, bool) {
	if e.store == nil {
		return Item{}, false
	}
	entry, ok, err := e.store.Get(src.Hash)
	if err != nil {
		e.noticef("cache read for %s failed: %v", src.Record.Name, err)
		return Item{}, false
	}
	if !ok || !entry.Criteria.Complete() {
		return Item{}, false
	}

	return Item{
		Source:    src,
		Criteria:  entry.Criteria,
		Score:     scoring.Score(entry.Criteria),
		FromCache: true,
	}, true
}

// writeBack stores a fresh result. Cache failures are reported but never
// fail the run; the verdict itself is already in hand.
func (e *Engine) writeBack(src profile.Source, item Item) {
	if e.store == nil {
		return
	}

	scores := make(map[string]float64, len(item.Score.Categories))
	for cat, cr := range item.Score.Categories {
		scores[cat.Code()] = cr.Score
	}

	err := e.store.Put(cache.Entry{
		Hash:          src.Hash,
		Name:          src.Record.Name,
		Criteria:      item.Criteria,
		Scores:        scores,
		Label:         item.Score.Label,
		Justification: item.Score.Justification,
	})
	if err != nil {
		e.noticef("cache write for %s failed: %v", src.Record.Name, err)
	}
}
