package world

import (
	"path/filepath"
	"reflect"
	"testing"

	"taproom.ai/internal/persistence/snapshot"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/tuning"
)

type viewNoRef struct {
	Name      string
	Pos       nav.Vec2
	State     string
	Drink     string
	Remaining int
	Patience  float64
	Holding   string
	Line      string
	LinePos   int
}

func viewsNoRef(w *World) []viewNoRef {
	var out []viewNoRef
	for _, v := range w.AgentViews() {
		out = append(out, viewNoRef{
			Name: v.Name, Pos: v.Pos, State: v.State.String(), Drink: v.Drink, Remaining: v.Remaining,
			Patience: v.Patience, Holding: v.Holding, Line: v.Line, LinePos: v.LinePos,
		})
	}
	return out
}

func TestSnapshot_RoundTrip(t *testing.T) {
	mutate := func(cfg *WorldConfig) {
		cfg.Spawner = true
		cfg.Janitors = 1
		cfg.AutoBartenderDelay = 0.5
		cfg.Tuning.SpawnEverySeconds = 1
		cfg.Tuning.UnlockedDrinks = []string{"coke", "rum_and_coke"}
	}
	w := newTestWorld(t, mutate)
	stepN(w, 400)
	w.hazards.Insert(Hazard{Tile: nav.Tile{X: 2, Y: 4}, Work: 1.5})

	tick := w.CurrentTick() - 1
	snap := w.ExportSnapshot(tick)
	path := filepath.Join(t.TempDir(), "snap.zst")
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	cfg := WorldConfig{Tuning: tuning.Defaults(), Pathing: nav.Options{Inline: true}}
	mutate(&cfg)
	w2, err := NewFromSnapshot(cfg, catalogs.Builtin(), got)
	if err != nil {
		t.Fatalf("NewFromSnapshot: %v", err)
	}
	t.Cleanup(w2.Close)

	if w2.CurrentTick() != w.CurrentTick() {
		t.Fatalf("tick=%d, want %d", w2.CurrentTick(), w.CurrentTick())
	}
	if w2.SessionID() != w.SessionID() {
		t.Fatalf("session=%q, want %q", w2.SessionID(), w.SessionID())
	}
	if w2.Bank().Balance() != w.Bank().Balance() || w2.Bank().Tips() != w.Bank().Tips() {
		t.Fatalf("bank %d/%d, want %d/%d", w2.Bank().Balance(), w2.Bank().Tips(), w.Bank().Balance(), w.Bank().Tips())
	}
	if w2.totals != w.totals {
		t.Fatalf("totals=%+v, want %+v", w2.totals, w.totals)
	}
	if w2.HazardCount() != w.HazardCount() || w2.items.Len() != w.items.Len() {
		t.Fatalf("hazards/items %d/%d, want %d/%d", w2.HazardCount(), w2.items.Len(), w.HazardCount(), w.items.Len())
	}
	if a, b := viewsNoRef(w2), viewsNoRef(w); !reflect.DeepEqual(a, b) {
		t.Fatalf("agents differ after restore:\n got %+v\nwant %+v", a, b)
	}
	w.stations.Each(func(_ entity.Ref, st *Station) bool {
		st2, ok := w2.StationByName(st.Name)
		if !ok {
			t.Fatalf("station %s missing", st.Name)
		}
		if st2.Line.Len() != st.Line.Len() {
			t.Fatalf("%s line len=%d, want %d", st.Name, st2.Line.Len(), st.Line.Len())
		}
		return true
	})

	// The restored bar keeps running under the same rules.
	for i := 0; i < 400; i++ {
		w2.StepOnce(testDT)
		checkLines(t, w2)
	}
}

func TestSnapshot_RejectsUnknownVersion(t *testing.T) {
	w := newTestWorld(t, nil)
	snap := w.ExportSnapshot(0)
	snap.Header.Version = 7
	if _, err := NewFromSnapshot(WorldConfig{Tuning: tuning.Defaults(), Pathing: nav.Options{Inline: true}}, nil, snap); err == nil {
		t.Fatalf("expected version error")
	}
}
