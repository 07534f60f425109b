package ai

import (
	"math"
	"testing"
)

func TestGate_ReadyOncePerInterval(t *testing.T) {
	var g Gate
	dt := 1.0 / 60.0
	fires := 0
	for i := 0; i < 60; i++ {
		if g.Ready(SiteQueue, dt, IntervalSearch) {
			fires++
		}
	}
	// First call fires immediately, then roughly every 0.1s.
	if fires < 8 || fires > 11 {
		t.Fatalf("fires=%d", fires)
	}
}

func TestGate_SitesIndependent(t *testing.T) {
	var g Gate
	if !g.Ready(SiteQueue, 0.01, IntervalSearch) {
		t.Fatalf("queue site should fire first")
	}
	if !g.Ready(SiteDrink, 0.01, IntervalIdle) {
		t.Fatalf("drink site should fire independently")
	}
	if g.Ready(SiteQueue, 0.01, IntervalSearch) {
		t.Fatalf("queue site fired twice within interval")
	}
}

func TestTimer_RewindTenPercent(t *testing.T) {
	var tm Timer
	tm.Set(5.0)
	tm.Pass(2.0)
	tm.Rewind(0.1 * tm.Total)
	if got := tm.Elapsed(); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("elapsed=%v want 1.5", got)
	}
}

func TestTimer_RewindClampsAtStart(t *testing.T) {
	var tm Timer
	tm.Set(5.0)
	tm.Pass(0.2)
	tm.Rewind(0.5)
	if tm.Elapsed() != 0 || tm.Remaining != 5.0 {
		t.Fatalf("elapsed=%v remaining=%v", tm.Elapsed(), tm.Remaining)
	}
}

func TestTimer_PassExpires(t *testing.T) {
	var tm Timer
	if tm.Pass(1) {
		t.Fatalf("unset timer must not expire")
	}
	tm.Set(1.0)
	if tm.Pass(0.5) {
		t.Fatalf("expired early")
	}
	if !tm.Pass(0.5) || !tm.Done() {
		t.Fatalf("expected expiry")
	}
	if tm.Pct() != 0 {
		t.Fatalf("pct=%v", tm.Pct())
	}
}
