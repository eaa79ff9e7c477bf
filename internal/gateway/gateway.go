// Package gateway sends classification prompts to an LLM backend and turns
// the responses into validated criterion sets. It owns the retry/backoff
// policy and the degradation cascade: batch → per-item → all-criteria-false.
// Classification always produces a result; nothing here propagates an error
// past the record level.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seqlab/prospect/internal/prompt"
	"github.com/seqlab/prospect/internal/rubric"
)

// ErrRateLimited is wrapped by backends when the provider signals
// throttling. It selects the longer backoff schedule.
var ErrRateLimited = errors.New("rate limited")

// ValidationError marks a response that came back but failed parsing or
// schema validation. Retried like a transport failure: one malformed
// response is not assumed to be systemic.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid response: " + e.Reason
}

// Request is the backend-agnostic LLM call: a prompt, an optional persona
// preamble, and generation parameters.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int64
}

// Backend abstracts the LLM transport. Implementations wrap provider
// errors: throttling must wrap ErrRateLimited, everything else is treated
// as a transport failure.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Policy holds the retry and backoff configuration.
type Policy struct {
	// MaxAttempts is the attempt budget per request (transport and
	// validation failures both consume attempts).
	MaxAttempts int

	// RetryDelays is the escalating delay schedule for generic failures.
	// The last entry repeats once exhausted.
	RetryDelays []time.Duration

	// RateLimitBase and RateLimitCap shape the exponential backoff used
	// for throttling responses: base·2^n capped at RateLimitCap. Larger
	// than the generic schedule on purpose.
	RateLimitBase time.Duration
	RateLimitCap  time.Duration

	// SettleDelay is slept after every successful call to avoid bursting
	// the backend.
	SettleDelay time.Duration

	// IndividualAttempts is the smaller budget used by the per-item
	// fallback path.
	IndividualAttempts int
}

// DefaultPolicy returns the production policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		RetryDelays: []time.Duration{
			1 * time.Second, 3 * time.Second, 8 * time.Second,
			15 * time.Second, 30 * time.Second,
		},
		RateLimitBase:      10 * time.Second,
		RateLimitCap:       60 * time.Second,
		SettleDelay:        500 * time.Millisecond,
		IndividualAttempts: 2,
	}
}

// NoticeFunc receives progress and diagnostic notices. May be nil.
type NoticeFunc func(format string, args ...any)

// Gateway drives a Backend under the retry policy.
type Gateway struct {
	backend     Backend
	policy      Policy
	temperature float64
	maxTokens   int64
	notice      NoticeFunc

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithNotice installs a diagnostic notice sink.
func WithNotice(fn NoticeFunc) Option {
	return func(g *Gateway) { g.notice = fn }
}

// WithSleep replaces the delay function (tests only).
func WithSleep(fn func(time.Duration)) Option {
	return func(g *Gateway) { g.sleep = fn }
}

// New creates a Gateway. temperature and maxTokens are passed through to
// every backend request.
func New(backend Backend, policy Policy, temperature float64, maxTokens int64, opts ...Option) *Gateway {
	g := &Gateway{
		backend:     backend,
		policy:      policy,
		temperature: temperature,
		maxTokens:   maxTokens,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) noticef(format string, args ...any) {
	if g.notice != nil {
		g.notice(format, args...)
	}
}

// BatchOutcome reports how a batch was resolved.
type BatchOutcome struct {
	// FellBack is true when the batch prompt exhausted its budget and the
	// per-item path was used.
	FellBack bool

	// AllFalse counts records that also exhausted the individual budget
	// and received the all-criteria-false verdict.
	AllFalse int

	// AllFalseAt lists the positions (into the input batch) of those
	// records.
	AllFalseAt []int
}

// ClassifyBatch classifies a batch of records. It always returns exactly
// len(entries) criterion sets, matched positionally to the input; failures
// degrade through per-item retries down to all-false verdicts.
func (g *Gateway) ClassifyBatch(ctx context.Context, entries []prompt.Entry) ([]rubric.CriterionSet, BatchOutcome) {
	n := len(entries)
	p := prompt.Batch(entries)

	raw, err := g.complete(ctx, p, g.policy.MaxAttempts, func(attempt int, cause error) {
		g.noticef("batch of %d: attempt %d failed: %v", n, attempt, cause)
	})
	if err == nil {
		sets, perr := parseBatch(raw, n)
		if perr == nil {
			return sets, BatchOutcome{}
		}
		// The response validated at transport level but not structurally;
		// spend the remaining budget re-asking before giving up on batch mode.
		g.noticef("batch of %d: %v; retrying", n, perr)
		raw, err = g.complete(ctx, p, g.policy.MaxAttempts-1, func(attempt int, cause error) {
			g.noticef("batch of %d: revalidation attempt %d failed: %v", n, attempt, cause)
		})
		if err == nil {
			if sets, perr := parseBatch(raw, n); perr == nil {
				return sets, BatchOutcome{}
			}
		}
	}

	// Batch budget exhausted: classify every item individually.
	g.noticef("batch of %d exhausted retries; falling back to individual classification", n)
	outcome := BatchOutcome{FellBack: true}
	sets := make([]rubric.CriterionSet, n)
	for i, e := range entries {
		set, ok := g.classifyIndividual(ctx, e)
		if !ok {
			outcome.AllFalse++
			outcome.AllFalseAt = append(outcome.AllFalseAt, i)
		}
		sets[i] = set
	}
	return sets, outcome
}

// classifyIndividual classifies a single record with the smaller per-item
// budget. The boolean reports whether a real verdict was obtained (false
// means the all-false fallback).
func (g *Gateway) classifyIndividual(ctx context.Context, e prompt.Entry) (rubric.CriterionSet, bool) {
	p := prompt.Individual(e)

	for attempt := 0; attempt < g.policy.IndividualAttempts; attempt++ {
		raw, err := g.complete(ctx, p, g.policy.IndividualAttempts, nil)
		if err != nil {
			break
		}
		set, perr := parseIndividual(raw)
		if perr == nil {
			return set, true
		}
		g.noticef("%s: %v", e.Record.Name, perr)
	}

	g.noticef("%s: individual classification failed; recording all criteria false", e.Record.Name)
	return rubric.AllFalse(), false
}

// complete runs the retry loop around a single backend request. Transport
// failures follow the escalating schedule; rate limits follow their own
// exponential backoff and do not consume the generic schedule's position.
func (g *Gateway) complete(ctx context.Context, text string, budget int, onFail func(attempt int, cause error)) (string, error) {
	req := Request{
		System:      prompt.Persona,
		Prompt:      text,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	var lastErr error
	rateLimitHits := 0
	genericFails := 0

	for attempt := 0; attempt < budget; attempt++ {
		if attempt > 0 {
			g.sleep(g.nextDelay(lastErr, rateLimitHits, genericFails))
		}

		raw, err := g.backend.Complete(ctx, req)
		if err == nil {
			g.sleep(g.policy.SettleDelay)
			return raw, nil
		}

		lastErr = err
		if errors.Is(err, ErrRateLimited) {
			rateLimitHits++
			g.noticef("rate limit hit (%d); backing off", rateLimitHits)
		} else {
			genericFails++
		}
		if onFail != nil {
			onFail(attempt+1, err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("exhausted %d attempts: %w", budget, lastErr)
}

// nextDelay picks the backoff for the upcoming attempt based on what the
// previous one failed with.
func (g *Gateway) nextDelay(lastErr error, rateLimitHits, genericFails int) time.Duration {
	if errors.Is(lastErr, ErrRateLimited) {
		d := g.policy.RateLimitBase << (rateLimitHits - 1)
		if d > g.policy.RateLimitCap || d <= 0 {
			d = g.policy.RateLimitCap
		}
		return d
	}

	idx := genericFails - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(g.policy.RetryDelays) {
		idx = len(g.policy.RetryDelays) - 1
	}
	return g.policy.RetryDelays[idx]
}

// batchResponse is the expected top-level response shape in batch mode.
type batchResponse struct {
	Pesquisadores []map[string]json.RawMessage `json:"pesquisadores"`
}

// parseBatch validates a batch response: correct top-level shape, exactly n
// items matched positionally, every criterion code present as a boolean.
func parseBatch(raw string, n int) ([]rubric.CriterionSet, error) {
	cleaned := ExtractJSON(raw)

	var resp batchResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if resp.Pesquisadores == nil {
		return nil, &ValidationError{Reason: "missing 'pesquisadores' field"}
	}
	if len(resp.Pesquisadores) != n {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("item count mismatch: expected %d, got %d", n, len(resp.Pesquisadores)),
		}
	}

	sets := make([]rubric.CriterionSet, n)
	for i, item := range resp.Pesquisadores {
		set, err := criterionSet(item)
		if err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("item %d: %v", i+1, err)}
		}
		sets[i] = set
	}
	return sets, nil
}

// parseIndividual validates an individual-mode response.
func parseIndividual(raw string) (rubric.CriterionSet, error) {
	cleaned := ExtractJSON(raw)

	var item map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &item); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}

	set, err := criterionSet(item)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return set, nil
}

// criterionSet extracts every expected criterion code as a strict boolean.
func criterionSet(item map[string]json.RawMessage) (rubric.CriterionSet, error) {
	set := make(rubric.CriterionSet, len(rubric.Codes()))
	for _, code := range rubric.Codes() {
		raw, ok := item[code]
		if !ok {
			return nil, fmt.Errorf("missing criterion %s", code)
		}
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("criterion %s is not a boolean", code)
		}
		set[code] = v
	}
	return set, nil
}

// ExtractJSON strips markdown fences and other non-JSON wrapping the
// backend may add around the payload.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") {
		return s
	}

	if idx := strings.Index(s, "```json"); idx != -1 {
		start := idx + 7
		if end := strings.Index(s[start:], "```"); end != -1 {
			return strings.TrimSpace(s[start : start+end])
		}
	}

	if idx := strings.Index(s, "```"); idx != -1 {
		start := idx + 3
		if nl := strings.Index(s[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(s[start:], "```"); end != -1 {
			return strings.TrimSpace(s[start : start+end])
		}
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}

	return s
}
