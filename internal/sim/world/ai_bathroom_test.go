package world

import (
	"testing"

	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/nav"
)

func spawnFull(w *World, name string, state ai.State) entity.Ref {
	ref := w.SpawnAgent(AgentSpec{Name: name, State: state, Abilities: ai.Abilities{UseBathroom: true}, Drink: "coke", Orders: 1})
	a, _ := w.agents.Get(ref)
	a.Order.BladderFill = w.tun.BladderSize
	return ref
}

func TestBathroom_OverridesQueueing(t *testing.T) {
	w := newTestWorld(t, nil)
	ref := spawnFull(w, "full", ai.QueueForRegister)

	w.StepOnce(testDT)
	a := mustAgent(t, w, ref)
	if a.Ctrl.State != ai.Bathroom {
		t.Fatalf("state=%s, want bathroom", a.Ctrl.State)
	}
	if a.Blocks.Bathroom.ReturnTo != ai.QueueForRegister {
		t.Fatalf("return to %s", a.Blocks.Bathroom.ReturnTo)
	}
	if w.lineOf(a) != nil {
		t.Fatalf("override left a register line entry behind")
	}
}

func TestBathroom_DoesNotInterruptDrinking(t *testing.T) {
	w := newTestWorld(t, nil)
	ref := spawnFull(w, "sipping", ai.Drinking)
	a := mustAgent(t, w, ref)
	a.Order.Accept()

	stepN(w, 5)
	if a.Ctrl.State != ai.Drinking {
		t.Fatalf("state=%s, want drinking", a.Ctrl.State)
	}
}

func TestBathroom_UsesToiletAndReturns(t *testing.T) {
	w := newTestWorld(t, nil)
	ref := spawnFull(w, "full", ai.Wander)
	toilet, _ := w.StationByName("toilet-1")

	stepUntil(t, w, 10, "toilet taken", func() bool { return toilet.Toilet.IsUser(ref) })
	stepUntil(t, w, 200, "back to wander", func() bool {
		s, _ := stateOf(w, ref)
		return s == ai.Wander
	})
	a := mustAgent(t, w, ref)
	if a.Order.BladderFill != 0 {
		t.Fatalf("bladder=%d after toilet", a.Order.BladderFill)
	}
	if toilet.Toilet.Occupied || toilet.Line.Len() != 0 {
		t.Fatalf("toilet not released: %+v line=%v", toilet.Toilet, toilet.Line.Members())
	}
	if toilet.Toilet.UsesRemaining != w.tun.ToiletUses-1 {
		t.Fatalf("uses=%d", toilet.Toilet.UsesRemaining)
	}
	if w.HazardCount() != 0 {
		t.Fatalf("made it in time but left a hazard")
	}
}

func TestBathroom_FloorTimerRewindsWhenLineMoves(t *testing.T) {
	w := newTestWorld(t, nil)
	first := spawnFull(w, "first", ai.Wander)
	second := spawnFull(w, "second", ai.Wander)
	toilet, _ := w.StationByName("toilet-1")

	stepN(w, 3)
	if got := toilet.Line.PositionOf(second); got != 1 {
		t.Fatalf("second position=%d, want 1", got)
	}
	b := mustAgent(t, w, second).Blocks.Bathroom
	if b.Floor.Total != w.tun.FloorTimer {
		t.Fatalf("floor total=%v, want %v", b.Floor.Total, w.tun.FloorTimer)
	}

	rewound := false
	for i := 0; i < 200 && !rewound; i++ {
		before := b.Floor.Remaining
		w.StepOnce(testDT)
		if b.Floor.Remaining > before {
			gain := b.Floor.Remaining - before
			if gain < 0.5-testDT-1e-9 || gain > 0.5+1e-9 {
				t.Fatalf("floor rewound by %v, want about 0.5", gain)
			}
			rewound = true
		}
	}
	if !rewound {
		t.Fatalf("floor timer never rewound")
	}
	if s, _ := stateOf(w, first); s == ai.Bathroom {
		t.Fatalf("first should be done by now")
	}
	if !toilet.Toilet.IsUser(second) {
		t.Fatalf("second did not take the toilet")
	}
	if w.HazardCount() != 0 {
		t.Fatalf("unexpected hazard")
	}
}

func TestBathroom_NoToiletEndsInVomit(t *testing.T) {
	w := newTestWorld(t, func(cfg *WorldConfig) {
		l := DefaultLayout()
		l.Toilets = nil
		cfg.Layout = l
	})
	ref := spawnFull(w, "unlucky", ai.Wander)

	ticks := stepUntil(t, w, 200, "vomit", func() bool { return w.HazardCount() == 1 })
	if want := int(w.tun.FloorTimer / testDT); ticks < want {
		t.Fatalf("vomited after %d ticks, floor timer is %d ticks", ticks, want)
	}
	a := mustAgent(t, w, ref)
	if a.Ctrl.State != ai.Wander {
		t.Fatalf("state=%s, want wander", a.Ctrl.State)
	}
	if a.Order.BladderFill != 0 {
		t.Fatalf("bladder=%d", a.Order.BladderFill)
	}
	if w.totals.Vomits != 1 {
		t.Fatalf("vomits=%d", w.totals.Vomits)
	}
}

func TestCleanVomit_JanitorRemovesHazard(t *testing.T) {
	w := newTestWorld(t, func(cfg *WorldConfig) { cfg.Janitors = 1 })
	hz := w.hazards.Insert(Hazard{Tile: nav.Tile{X: 3, Y: 6}, Work: 1})

	stepUntil(t, w, 10, "claimed", func() bool {
		h, ok := w.hazards.Get(hz)
		return ok && !h.TargetedBy.IsNil()
	})
	stepUntil(t, w, 600, "cleaned", func() bool { return w.HazardCount() == 0 })
	if w.totals.Cleaned != 1 {
		t.Fatalf("cleaned=%d", w.totals.Cleaned)
	}
}

func TestCleanVomit_ReleasesClaimOnExit(t *testing.T) {
	w := newTestWorld(t, func(cfg *WorldConfig) { cfg.Janitors = 1 })
	hz := w.hazards.Insert(Hazard{Tile: nav.Tile{X: 3, Y: 6}, Work: 10})
	stepUntil(t, w, 10, "claimed", func() bool {
		h, _ := w.hazards.Get(hz)
		return !h.TargetedBy.IsNil()
	})

	w.CloseBar()
	w.StepOnce(testDT)
	h, ok := w.hazards.Get(hz)
	if !ok {
		t.Fatalf("hazard vanished")
	}
	if !h.TargetedBy.IsNil() {
		t.Fatalf("claim kept after janitor left: %s", h.TargetedBy)
	}
}
