package world

import (
	"fmt"

	"taproom.ai/internal/persistence/snapshot"
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/nav"
	"taproom.ai/internal/sim/world/feature/orders"
	"taproom.ai/internal/sim/world/feature/queue"
)

// NewFromSnapshot rebuilds a world from s. Stations come from the snapshot,
// not cfg.Layout; walls still come from cfg.Layout.
func NewFromSnapshot(cfg WorldConfig, cats *catalogs.Catalogs, s snapshot.SnapshotV1) (*World, error) {
	if s.Header.Version != snapshot.Version {
		return nil, fmt.Errorf("snapshot version %d not supported", s.Header.Version)
	}
	cfg.ID = s.Header.WorldID
	cfg.SessionID = s.Header.SessionID
	cfg.Seed = s.Seed + int64(s.Header.Tick)
	cfg.Janitors = 0
	if cfg.Layout.W == 0 {
		cfg.Layout = DefaultLayout()
	}
	cfg.Layout.Registers, cfg.Layout.Toilets, cfg.Layout.Jukeboxes = nil, nil, nil
	w, err := New(cfg, cats)
	if err != nil {
		return nil, err
	}
	w.cfg.Seed = s.Seed
	if err := w.importSnapshot(s); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *World) importSnapshot(s snapshot.SnapshotV1) error {
	// The snapshot holds the state after Header.Tick was stepped.
	w.tick.Store(s.Header.Tick + 1)
	w.clock = s.Clock
	w.round = roundState{Closed: s.Closed, Over: s.RoundOver, SpawnTimer: s.SpawnTimer}
	w.nextNum = s.NextNum
	w.bank.Restore(s.Balance, s.Tips, s.LedgerSeq)
	w.totals = totalsFromMap(s.Totals)

	agentRefs := map[snapshot.RefV1]entity.Ref{}
	stationRefs := map[snapshot.RefV1]entity.Ref{}
	itemRefs := map[snapshot.RefV1]entity.Ref{}
	remap := func(m map[snapshot.RefV1]entity.Ref, r snapshot.RefV1) entity.Ref {
		if nr, ok := m[r]; ok {
			return nr
		}
		return entity.Nil
	}

	for _, sv := range s.Stations {
		tile := nav.Tile{X: sv.Tile[0], Y: sv.Tile[1]}
		if !w.grid.InBounds(tile) {
			return fmt.Errorf("snapshot: station %q out of bounds", sv.Name)
		}
		w.grid.SetBlocked(tile, true)
		var kind StationKind
		switch sv.Kind {
		case "register":
			kind = KindRegister
		case "toilet":
			kind = KindToilet
		case "jukebox":
			kind = KindJukebox
		default:
			return fmt.Errorf("snapshot: station %q has unknown kind %q", sv.Name, sv.Kind)
		}
		stationRefs[sv.Ref] = w.addStation(kind, Placement{Name: sv.Name, Tile: tile, Facing: nav.Dir(sv.Facing)})
	}
	w.paths.Close()
	w.paths = nav.NewService(w.grid, w.cfg.Pathing)
	w.maxPathLen = w.grid.LongestPath(w.cfg.Layout.Entrance)

	for _, av := range s.Agents {
		state, ok := ai.ParseState(av.State)
		if !ok {
			return fmt.Errorf("snapshot: agent %q has unknown state %q", av.Name, av.State)
		}
		resume, _ := ai.ParseState(av.Resume)
		a := Agent{
			Name:      av.Name,
			Pos:       nav.Vec2{X: av.Pos[0], Y: av.Pos[1]},
			Facing:    nav.Dir(av.Facing),
			Speed:     av.Speed,
			Ctrl:      ai.NewController(state, ai.Abilities{UseBathroom: av.UseBathroom, PlayJukebox: av.PlayJukebox, CleanVomit: av.CleanVomit}),
			SpawnTick: av.SpawnTick,
			AtExit:    av.AtExit,
			Patience:  Patience{Enabled: av.PatienceEnabled, Remaining: av.PatienceRemaining, Max: av.PatienceMax},
		}
		a.Ctrl.Resume = resume
		if o := av.Order; o != nil {
			a.Order = &orders.Order{
				Drink:             o.Drink,
				State:             orders.State(o.State),
				Remaining:         o.Remaining,
				TabTotal:          o.TabTotal,
				TipTotal:          o.TipTotal,
				DrinksConsumed:    o.DrinksConsumed,
				AlcoholicConsumed: o.AlcoholicConsumed,
				BladderFill:       o.BladderFill,
			}
		}
		ref := w.agents.Insert(a)
		ag, _ := w.agents.Get(ref)
		ag.Ref = ref
		ag.Blocks.ensure(state)
		if state == ai.Bathroom {
			if rt, ok := ai.ParseState(av.ReturnTo); ok {
				ag.Blocks.Bathroom.ReturnTo = rt
			}
		}
		agentRefs[av.Ref] = ref
	}

	for _, iv := range s.Items {
		ref := w.items.Insert(Item{
			Drink:       iv.Drink,
			Ingredients: orders.IngredientSet(iv.Ingredients),
			Register:    remap(stationRefs, iv.Register),
			Holder:      remap(agentRefs, iv.Holder),
		})
		itemRefs[iv.Ref] = ref
	}
	for _, hv := range s.Hazards {
		w.hazards.Insert(Hazard{Tile: nav.Tile{X: hv.Tile[0], Y: hv.Tile[1]}, Work: hv.Work})
	}

	for _, av := range s.Agents {
		if a, ok := w.agents.Get(agentRefs[av.Ref]); ok {
			a.Held = remap(itemRefs, av.Held)
		}
	}
	for _, sv := range s.Stations {
		st, _ := w.stations.Get(stationRefs[sv.Ref])
		for _, m := range sv.Line {
			if r := remap(agentRefs, m); !r.IsNil() {
				if _, err := st.Line.Join(r); err != nil {
					return fmt.Errorf("snapshot: station %q line: %w", sv.Name, err)
				}
			}
		}
		if st.Register != nil {
			st.Register.Slot = remap(itemRefs, sv.Slot)
		}
		if st.Toilet != nil {
			st.Toilet.Occupied = sv.ToiletOccupied
			st.Toilet.User = remap(agentRefs, sv.ToiletUser)
			st.Toilet.UsesRemaining = sv.ToiletUses
		}
		if st.Jukebox != nil {
			st.Jukebox.LastCustomer = remap(agentRefs, sv.LastCustomer)
		}
	}

	// Re-link line memberships into the agents' scratch blocks.
	w.agents.Each(func(_ entity.Ref, a *Agent) bool {
		ls := a.Blocks.line(a.Ctrl.State)
		st := w.lineOf(a)
		if st == nil {
			return true
		}
		if ls == nil {
			st.Line.Leave(a.Ref)
			return true
		}
		pos := st.Line.PositionOf(a.Ref)
		ls.Station = st.Ref
		ls.Waiter = queue.Waiter{Joined: true, Index: pos, PrevIndex: -1, Slot: pos + 1, AtFront: pos == 0}
		ls.Spot = st.SpotInFront(pos + 1)
		ls.HasSpot = true
		// A customer caught on the toilet starts the visit over.
		if bs := a.Blocks.Bathroom; bs != nil && st.Toilet != nil && st.Toilet.IsUser(a.Ref) {
			bs.Using = true
			bs.Use.Set(w.tun.PissTimer)
		}
		return true
	})
	return nil
}
