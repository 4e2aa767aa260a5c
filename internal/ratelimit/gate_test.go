package ratelimit

import (
	"context"
	"testing"
	"time"

	mocks "contractor-verify/internal/testing"
	errs "contractor-verify/pkg/errors"
	"contractor-verify/pkg/events"
	"contractor-verify/pkg/logging"
)

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	cfg := logging.DefaultLogConfig()
	cfg.Level = logging.LevelError
	cfg.EnableAsync = false
	log, err := logging.NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestGateAdmitsUpToLimit(t *testing.T) {
	gate := NewGate(events.NewMemoryEventStore(), nil, newTestLogger(t))
	ctx := context.Background()

	want := []bool{true, true, false}
	for i, expected := range want {
		d, err := gate.Check(ctx, "1.2.3.4", "verify_business", 2, time.Hour)
		if err != nil {
			t.Fatalf("Check %d: %v", i, err)
		}
		if d.Allowed != expected {
			t.Errorf("request %d: allowed = %v, want %v", i, d.Allowed, expected)
		}
	}
}

func TestGateRemainingCountsDown(t *testing.T) {
	gate := NewGate(events.NewMemoryEventStore(), nil, newTestLogger(t))
	ctx := context.Background()

	for i, want := range []int{2, 1, 0} {
		d, err := gate.Check(ctx, "1.2.3.4", "verify_business", 3, time.Hour)
		if err != nil {
			t.Fatalf("Check %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d unexpectedly rejected", i)
		}
		if d.Remaining != want {
			t.Errorf("request %d: remaining = %d, want %d", i, d.Remaining, want)
		}
	}
}

func TestGateRejectedRequestsNotRecorded(t *testing.T) {
	store := events.NewMemoryEventStore()
	gate := NewGate(store, nil, newTestLogger(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := gate.Check(ctx, "1.2.3.4", "verify_business", 2, time.Hour); err != nil {
			t.Fatalf("Check %d: %v", i, err)
		}
	}
	if got := store.Len(); got != 2 {
		t.Errorf("stored events = %d, want 2 (rejections must not count against the window)", got)
	}
}

func TestGateExpiredEventsReadmit(t *testing.T) {
	store := events.NewMemoryEventStore()
	gate := NewGate(store, nil, newTestLogger(t))
	ctx := context.Background()

	// Seed two events that already fell out of a one-hour window.
	old := time.Now().Add(-2 * time.Hour)
	for i := 0; i < 2; i++ {
		if err := store.Append(ctx, events.Event{Identifier: "1.2.3.4", Action: "verify_business", At: old}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	d, err := gate.Check(ctx, "1.2.3.4", "verify_business", 2, time.Hour)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !d.Allowed {
		t.Error("expired events should not count against the quota")
	}
	if d.Remaining != 1 {
		t.Errorf("remaining = %d, want 1", d.Remaining)
	}
}

func TestGateScopesByIdentifierAndAction(t *testing.T) {
	gate := NewGate(events.NewMemoryEventStore(), nil, newTestLogger(t))
	ctx := context.Background()

	if _, err := gate.Check(ctx, "1.2.3.4", "verify_business", 1, time.Hour); err != nil {
		t.Fatalf("Check: %v", err)
	}

	d, err := gate.Check(ctx, "5.6.7.8", "verify_business", 1, time.Hour)
	if err != nil {
		t.Fatalf("Check other identifier: %v", err)
	}
	if !d.Allowed {
		t.Error("other identifiers share no quota")
	}

	d, err = gate.Check(ctx, "1.2.3.4", "login", 1, time.Hour)
	if err != nil {
		t.Fatalf("Check other action: %v", err)
	}
	if !d.Allowed {
		t.Error("other actions share no quota")
	}
}

func TestGateCountFailurePropagates(t *testing.T) {
	store := &mocks.FailingEventStore{FailCount: true}
	gate := NewGate(store, nil, newTestLogger(t))

	_, err := gate.Check(context.Background(), "1.2.3.4", "verify_business", 2, time.Hour)
	if !errs.Is(err, errs.ErrDB) {
		t.Fatalf("err = %v, want DB error when the count is unavailable", err)
	}
}

func TestGateAppendFailureStillAllows(t *testing.T) {
	store := &mocks.FailingEventStore{FailAppend: true}
	gate := NewGate(store, nil, newTestLogger(t))

	d, err := gate.Check(context.Background(), "1.2.3.4", "verify_business", 2, time.Hour)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !d.Allowed {
		t.Error("append failure after an admit decision should not reject the request")
	}
}

func TestGatePurgeFailureIgnored(t *testing.T) {
	store := &mocks.FailingEventStore{FailPurge: true}
	gate := NewGate(store, nil, newTestLogger(t))

	d, err := gate.Check(context.Background(), "1.2.3.4", "verify_business", 2, time.Hour)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !d.Allowed {
		t.Error("purge failures must not affect the decision")
	}
}

func TestGateValidation(t *testing.T) {
	gate := NewGate(events.NewMemoryEventStore(), nil, newTestLogger(t))
	ctx := context.Background()

	if _, err := gate.Check(ctx, "", "verify_business", 2, time.Hour); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("empty identifier: err = %v, want validation error", err)
	}
	if _, err := gate.Check(ctx, "1.2.3.4", "", 2, time.Hour); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("empty action: err = %v, want validation error", err)
	}
	if _, err := gate.Check(ctx, "1.2.3.4", "verify_business", -1, time.Hour); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("negative limit: err = %v, want validation error", err)
	}
}

func TestGateZeroValuesResolveFromPolicy(t *testing.T) {
	policy := &Policy{
		DefaultLimit:  100,
		DefaultWindow: 60,
		Actions: map[string]ActionPolicy{
			"verify_business": {Limit: 1, WindowMinutes: 30},
		},
	}
	gate := NewGate(events.NewMemoryEventStore(), policy, newTestLogger(t))
	ctx := context.Background()

	d, err := gate.Check(ctx, "1.2.3.4", "verify_business", 0, 0)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !d.Allowed || d.Remaining != 0 {
		t.Errorf("first request: allowed=%v remaining=%d, want allowed with 0 remaining under limit 1", d.Allowed, d.Remaining)
	}

	d, err = gate.Check(ctx, "1.2.3.4", "verify_business", 0, 0)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if d.Allowed {
		t.Error("second request should exceed the per-action policy limit of 1")
	}
}
