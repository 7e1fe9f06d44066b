package mpinauth

import (
	"context"
	"testing"
	"time"
)

func TestForegroundWithoutBackgroundTimestampIsNoOp(t *testing.T) {
	te := newTestEngine(t)
	te.seedLoggedIn(t)

	target, expired, err := te.engine.OnForeground(context.Background())
	if err != nil {
		t.Fatalf("OnForeground failed: %v", err)
	}
	if expired || target != TargetNone {
		t.Fatalf("expected no-op, got target=%v expired=%v", target, expired)
	}
}

func TestShortAbsenceKeepsSession(t *testing.T) {
	te := newTestEngine(t)
	te.seedLoggedIn(t)
	ctx := context.Background()

	if err := te.engine.OnBackground(ctx); err != nil {
		t.Fatalf("OnBackground failed: %v", err)
	}
	te.clk.Advance(30 * time.Second)

	target, expired, err := te.engine.OnForeground(ctx)
	if err != nil {
		t.Fatalf("OnForeground failed: %v", err)
	}
	if expired || target != TargetNone {
		t.Fatalf("expected session kept, got target=%v expired=%v", target, expired)
	}
	if _, ok := te.repo().Phone(ctx); !ok {
		t.Fatal("expected phone intact")
	}

	// The consumed timestamp must not fire later.
	if _, ok := te.repo().LastActiveTime(ctx); ok {
		t.Fatal("expected backgrounding timestamp dropped")
	}
}

func TestExactThresholdKeepsSession(t *testing.T) {
	te := newTestEngine(t)
	te.seedLoggedIn(t)
	ctx := context.Background()

	if err := te.engine.OnBackground(ctx); err != nil {
		t.Fatalf("OnBackground failed: %v", err)
	}
	te.clk.Advance(60 * time.Second)

	_, expired, err := te.engine.OnForeground(ctx)
	if err != nil {
		t.Fatalf("OnForeground failed: %v", err)
	}
	if expired {
		t.Fatal("an absence of exactly the threshold must keep the session")
	}
}

func TestLongAbsenceExpiresSession(t *testing.T) {
	te := newTestEngine(t)
	te.seedLoggedIn(t)
	ctx := context.Background()

	if err := te.engine.OnBackground(ctx); err != nil {
		t.Fatalf("OnBackground failed: %v", err)
	}
	te.clk.Advance(61 * time.Second)

	target, expired, err := te.engine.OnForeground(ctx)
	if err != nil {
		t.Fatalf("OnForeground failed: %v", err)
	}
	if !expired {
		t.Fatal("expected session expired after 61s")
	}
	if target != TargetLogin {
		t.Fatalf("expected login target, got %v", target)
	}

	if _, ok := te.repo().Phone(ctx); ok {
		t.Fatal("expected verified phone cleared")
	}
	if _, ok := te.repo().Token(ctx); ok {
		t.Fatal("expected token cleared")
	}
	if !te.repo().SessionExpired(ctx) {
		t.Fatal("expected session-expired sentinel raised")
	}
	if got := te.engine.MetricsSnapshot().Counters[MetricSessionTimeout]; got != 1 {
		t.Fatalf("expected 1 timeout metric, got %d", got)
	}

	// The next routing decision consumes the sentinel.
	if got := decide(t, te); got != TargetLogin {
		t.Fatalf("expected login decision, got %v", got)
	}
	if te.repo().SessionExpired(ctx) {
		t.Fatal("expected sentinel consumed by the decision")
	}
}

func TestConfiguredTimeoutRespected(t *testing.T) {
	cfg := defaultConfig()
	cfg.Session.BackgroundTimeout = 5 * time.Minute
	te := newTestEngine(t, withConfig(cfg))
	te.seedLoggedIn(t)
	ctx := context.Background()

	if err := te.engine.OnBackground(ctx); err != nil {
		t.Fatalf("OnBackground failed: %v", err)
	}
	te.clk.Advance(2 * time.Minute)

	_, expired, err := te.engine.OnForeground(ctx)
	if err != nil {
		t.Fatalf("OnForeground failed: %v", err)
	}
	if expired {
		t.Fatal("expected session kept under the configured threshold")
	}
}
