package world

import (
	"taproom.ai/internal/persistence/snapshot"
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
)

func refV1(r entity.Ref) snapshot.RefV1 { return snapshot.RefV1{r.Index, r.Gen} }

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	s := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version:   snapshot.Version,
			WorldID:   w.cfg.ID,
			SessionID: w.cfg.SessionID,
			Tick:      nowTick,
		},
		Seed:       w.cfg.Seed,
		TickRate:   w.tun.TickRateHz,
		Clock:      w.clock,
		Closed:     w.round.Closed,
		RoundOver:  w.round.Over,
		SpawnTimer: w.round.SpawnTimer,
		NextNum:    w.nextNum,
		Balance:    w.bank.Balance(),
		Tips:       w.bank.Tips(),
		LedgerSeq:  w.bank.NextSeq(),
		Totals:     w.totals.asMap(),
	}

	w.agents.Each(func(r entity.Ref, a *Agent) bool {
		av := snapshot.AgentV1{
			Ref:               refV1(r),
			Name:              a.Name,
			Pos:               [2]float64{a.Pos.X, a.Pos.Y},
			Facing:            uint8(a.Facing),
			Speed:             a.Speed,
			State:             a.Ctrl.State.String(),
			Resume:            a.Ctrl.Resume.String(),
			UseBathroom:       a.Ctrl.Abilities.UseBathroom,
			PlayJukebox:       a.Ctrl.Abilities.PlayJukebox,
			CleanVomit:        a.Ctrl.Abilities.CleanVomit,
			Held:              refV1(a.Held),
			PatienceEnabled:   a.Patience.Enabled,
			PatienceRemaining: a.Patience.Remaining,
			PatienceMax:       a.Patience.Max,
			SpawnTick:         a.SpawnTick,
			AtExit:            a.AtExit,
		}
		if a.Ctrl.State == ai.Bathroom && a.Blocks.Bathroom != nil {
			av.ReturnTo = a.Blocks.Bathroom.ReturnTo.String()
		}
		if o := a.Order; o != nil {
			av.Order = &snapshot.OrderV1{
				Drink:             o.Drink,
				State:             uint8(o.State),
				Remaining:         o.Remaining,
				TabTotal:          o.TabTotal,
				TipTotal:          o.TipTotal,
				DrinksConsumed:    o.DrinksConsumed,
				AlcoholicConsumed: o.AlcoholicConsumed,
				BladderFill:       o.BladderFill,
			}
		}
		s.Agents = append(s.Agents, av)
		return true
	})

	w.stations.Each(func(r entity.Ref, st *Station) bool {
		sv := snapshot.StationV1{
			Ref:    refV1(r),
			Kind:   st.Kind.String(),
			Name:   st.Name,
			Tile:   [2]int{st.Tile.X, st.Tile.Y},
			Facing: uint8(st.Facing),
		}
		for _, m := range st.Line.Members() {
			sv.Line = append(sv.Line, refV1(m))
		}
		if st.Register != nil {
			sv.Slot = refV1(st.Register.Slot)
		}
		if st.Toilet != nil {
			sv.ToiletOccupied = st.Toilet.Occupied
			sv.ToiletUser = refV1(st.Toilet.User)
			sv.ToiletUses = st.Toilet.UsesRemaining
		}
		if st.Jukebox != nil {
			sv.LastCustomer = refV1(st.Jukebox.LastCustomer)
		}
		s.Stations = append(s.Stations, sv)
		return true
	})

	w.items.Each(func(r entity.Ref, it *Item) bool {
		s.Items = append(s.Items, snapshot.ItemV1{
			Ref:         refV1(r),
			Drink:       it.Drink,
			Ingredients: uint32(it.Ingredients),
			Register:    refV1(it.Register),
			Holder:      refV1(it.Holder),
		})
		return true
	})

	w.hazards.Each(func(r entity.Ref, h *Hazard) bool {
		s.Hazards = append(s.Hazards, snapshot.HazardV1{Ref: refV1(r), Tile: [2]int{h.Tile.X, h.Tile.Y}, Work: h.Work})
		return true
	})
	return s
}

func (t Totals) asMap() map[string]int {
	return map[string]int{
		"spawned":      t.Spawned,
		"departed":     t.Departed,
		"drinks_sold":  t.DrinksSold,
		"rejected":     t.Rejected,
		"vomits":       t.Vomits,
		"cleaned":      t.Cleaned,
		"songs_played": t.SongsPlayed,
		"tabs_paid":    t.TabsPaid,
	}
}

func totalsFromMap(m map[string]int) Totals {
	return Totals{
		Spawned:     m["spawned"],
		Departed:    m["departed"],
		DrinksSold:  m["drinks_sold"],
		Rejected:    m["rejected"],
		Vomits:      m["vomits"],
		Cleaned:     m["cleaned"],
		SongsPlayed: m["songs_played"],
		TabsPaid:    m["tabs_paid"],
	}
}
