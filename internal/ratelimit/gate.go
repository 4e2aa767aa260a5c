package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"contractor-verify/internal/models"
	errs "contractor-verify/pkg/errors"
	"contractor-verify/pkg/events"
	"contractor-verify/pkg/logging"
	"contractor-verify/pkg/metrics"
)

// Gate makes sliding-window rate limit decisions backed by an event store.
// The check and the subsequent append are separate operations, so two
// concurrent requests for the same identifier can both be admitted at the
// boundary. That over-admission is an accepted property of the design.
type Gate struct {
	store  events.EventStore
	policy *Policy
	logger *logging.ComponentLogger

	mAllowed  *metrics.Counter
	mRejected *metrics.Counter
	mErrors   *metrics.Counter
}

func NewGate(store events.EventStore, policy *Policy, log *logging.Logger) *Gate {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Gate{
		store:     store,
		policy:    policy,
		logger:    log.WithComponent("ratelimit"),
		mAllowed:  metrics.Default.Counter("rate_limit_allowed_total", "Requests admitted by the rate limit gate"),
		mRejected: metrics.Default.Counter("rate_limit_rejected_total", "Requests rejected by the rate limit gate"),
		mErrors:   metrics.Default.Counter("rate_limit_errors_total", "Rate limit checks that failed on store errors"),
	}
}

// SetPolicy swaps the active policy. Used by config reload.
func (g *Gate) SetPolicy(p *Policy) {
	if p != nil {
		g.policy = p
	}
}

// Check decides whether one more request is admitted for (identifier, action).
// Zero limit or window resolves from policy. Rejected requests are never
// appended to the store, so waiting out the window always clears the quota.
func (g *Gate) Check(ctx context.Context, identifier, action string, limit int, window time.Duration) (*models.RateLimitDecision, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, errs.NewValidation("ratelimit.Check", "identifier is required", nil)
	}
	if strings.TrimSpace(action) == "" {
		return nil, errs.NewValidation("ratelimit.Check", "action is required", nil)
	}
	if limit < 0 || window < 0 {
		return nil, errs.NewValidation("ratelimit.Check", "limit and window must not be negative", nil)
	}

	defLimit, defWindow := g.policy.Resolve(action)
	if limit == 0 {
		limit = defLimit
	}
	if window == 0 {
		window = defWindow
	}

	now := time.Now()
	since := now.Add(-window)

	// Opportunistic cleanup of everyone's expired events. Failures only cost
	// storage, never correctness, since counting is always window-bounded.
	if err := g.store.PurgeBefore(ctx, since); err != nil {
		g.logger.Warn("Failed to purge expired rate limit events",
			logging.String("error", err.Error()))
	}

	count, err := g.store.CountSince(ctx, identifier, action, since)
	if err != nil {
		g.mErrors.Inc(1)
		return nil, errs.NewDB("ratelimit.Check", "failed to count rate limit events", err)
	}

	resetTime := now.Add(window)

	if count >= limit {
		g.mRejected.Inc(1)
		return &models.RateLimitDecision{
			Allowed:   false,
			Remaining: 0,
			ResetTime: resetTime,
			Message:   fmt.Sprintf("Rate limit exceeded. Try again after %s", resetTime.Format(time.RFC3339)),
		}, nil
	}

	if err := g.store.Append(ctx, events.Event{Identifier: identifier, Action: action, At: now}); err != nil {
		// The decision to admit was already made from an accurate count.
		// Dropping the event under-counts slightly; rejecting the caller
		// over a bookkeeping write would be worse.
		g.logger.Warn("Failed to record rate limit event",
			logging.String("identifier", identifier),
			logging.String("action", action),
			logging.String("error", err.Error()))
	}

	g.mAllowed.Inc(1)
	return &models.RateLimitDecision{
		Allowed:   true,
		Remaining: limit - count - 1,
		ResetTime: resetTime,
	}, nil
}
