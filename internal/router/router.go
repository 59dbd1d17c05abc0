package router

import (
	"context"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout     = 3500 * time.Millisecond
	DefaultRecentTurns = 6
)

// Classifier produces a routing decision for one user utterance.
type Classifier interface {
	Classify(ctx context.Context, input models.RouteInput) (models.RoutingDecision, error)
}

// Router supervises an optional primary classifier. The primary is raced
// against a timeout and any failure falls back to the rule-based strategy
// with the same input, so Route always returns.
type Router struct {
	primary     Classifier
	fallback    *FallbackClassifier
	timeout     time.Duration
	recentTurns int
	logger      *zerolog.Logger
}

type Option func(*Router)

func WithTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithRecentTurns(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.recentTurns = n
		}
	}
}

// NewRouter builds a router. primary may be nil, in which case every
// decision comes from the fallback rules.
func NewRouter(primary Classifier, logger *zerolog.Logger, opts ...Option) *Router {
	r := &Router{
		primary:     primary,
		fallback:    NewFallbackClassifier(),
		timeout:     DefaultTimeout,
		recentTurns: DefaultRecentTurns,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type classifyResult struct {
	decision models.RoutingDecision
	err      error
}

func (r *Router) Route(ctx context.Context, input models.RouteInput) models.RoutingDecision {
	input = r.prepare(input)

	if r.primary == nil {
		return r.fallback.Decide(input)
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Buffered so a late result never blocks the abandoned goroutine.
	results := make(chan classifyResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				results <- classifyResult{err: fmt.Errorf("classifier panic: %v", rec)}
			}
		}()
		decision, err := r.primary.Classify(callCtx, input)
		results <- classifyResult{decision: decision, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			r.logger.Warn().Err(res.err).Dur("elapsed", time.Since(start)).Msg("Primary classifier failed, using fallback")
			return r.degraded(input, "router_error")
		}
		r.logger.Debug().
			Str("intent", string(res.decision.Intent)).
			Str("target", string(res.decision.TargetAgent)).
			Dur("elapsed", time.Since(start)).
			Msg("Primary classifier decided")
		return res.decision

	case <-callCtx.Done():
		r.logger.Warn().Dur("timeout", r.timeout).Msg("Primary classifier timed out, using fallback")
		return r.degraded(input, "router_timeout")
	}
}

func (r *Router) degraded(input models.RouteInput, cause string) models.RoutingDecision {
	decision := r.fallback.Decide(input)
	decision.Reason = fmt.Sprintf("%s (%s)", decision.Reason, cause)
	return decision
}

// prepare bounds the recent turns and seeds them with the last speaker
// when the caller sent none.
func (r *Router) prepare(input models.RouteInput) models.RouteInput {
	turns := input.RecentTurns
	if len(turns) > r.recentTurns {
		turns = turns[len(turns)-r.recentTurns:]
	}
	turns = append([]models.HistoryEntry(nil), turns...)

	if len(turns) == 0 && input.LastSpeaker != "" && input.LastSpeaker != models.Role(models.TargetUnknown) {
		turns = append(turns, models.HistoryEntry{Role: input.LastSpeaker})
	}

	input.RecentTurns = turns
	return input
}
