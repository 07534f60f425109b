package world

import (
	"encoding/json"

	"taproom.ai/internal/observerproto"
	"taproom.ai/internal/sim/entity"
)

// ObserverJoinRequest registers a read-only observer that receives one
// TickMsg per tick on TickOut. Slow observers only ever see the latest frame.
type ObserverJoinRequest struct {
	SessionID    string
	TickOut      chan []byte
	IncludeNotes bool
}

type observerClient struct {
	id           string
	tickOut      chan []byte
	includeNotes bool
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	w.observers[req.SessionID] = &observerClient{id: req.SessionID, tickOut: req.TickOut, includeNotes: req.IncludeNotes}
}

func (w *World) handleObserverLeave(id string) {
	delete(w.observers, id)
}

// Bootstrap describes the static floor for observers. Stations are fixed
// once the world is built, so it may be called off the world goroutine.
func (w *World) Bootstrap() observerproto.BootstrapResponse {
	l := w.cfg.Layout
	resp := observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		WorldID:         w.cfg.ID,
		SessionID:       w.cfg.SessionID,
		Tick:            w.tick.Load(),
		TickRateHz:      w.tun.TickRateHz,
		Floor: observerproto.FloorParams{
			W:        l.W,
			H:        l.H,
			Entrance: [2]int{l.Entrance.X, l.Entrance.Y},
			Exit:     [2]int{l.Exit.X, l.Exit.Y},
		},
		Menu: w.drinkMenu(),
	}
	for _, t := range l.Walls {
		resp.Floor.Walls = append(resp.Floor.Walls, [2]int{t.X, t.Y})
	}
	w.stations.Each(func(r entity.Ref, st *Station) bool {
		resp.Stations = append(resp.Stations, observerproto.StationInfo{
			Ref:    r.String(),
			Kind:   st.Kind.String(),
			Name:   st.Name,
			Tile:   [2]int{st.Tile.X, st.Tile.Y},
			Facing: st.Facing.String(),
		})
		return true
	})
	return resp
}

// tickFrame builds the per-tick observer message. Transitions and notes are
// the ones recorded during nowTick.
func (w *World) tickFrame(nowTick uint64, withNotes bool) observerproto.TickMsg {
	msg := observerproto.TickMsg{
		Type:            "TICK",
		ProtocolVersion: observerproto.Version,
		Tick:            nowTick,
		Clock:           w.clock,
		Closed:          w.round.Closed,
		Balance:         w.bank.Balance(),
		Tips:            w.bank.Tips(),
		Agents:          []observerproto.AgentState{},
		Lines:           []observerproto.LineState{},
	}
	for _, v := range w.AgentViews() {
		msg.Agents = append(msg.Agents, observerproto.AgentState{
			Ref:       v.Ref.String(),
			Name:      v.Name,
			Pos:       [2]float64{v.Pos.X, v.Pos.Y},
			State:     v.State.String(),
			Drink:     v.Drink,
			Remaining: v.Remaining,
			Patience:  v.Patience,
			Holding:   v.Holding,
		})
	}
	w.stations.Each(func(_ entity.Ref, st *Station) bool {
		ls := observerproto.LineState{Station: st.Name, Members: []string{}}
		for _, m := range st.Line.Members() {
			ls.Members = append(ls.Members, m.String())
		}
		msg.Lines = append(msg.Lines, ls)
		return true
	})
	w.hazards.Each(func(_ entity.Ref, h *Hazard) bool {
		msg.Hazards = append(msg.Hazards, [2]int{h.Tile.X, h.Tile.Y})
		return true
	})
	for _, tr := range w.transitions {
		msg.Transitions = append(msg.Transitions, observerproto.TransitionEntry{
			Agent: tr.Agent.String(), From: tr.From.String(), To: tr.To.String(), Forced: tr.Forced,
		})
	}
	if withNotes {
		for _, n := range w.notes {
			msg.Notes = append(msg.Notes, observerproto.NoteEntry{Agent: n.Agent.String(), Kind: n.Kind, Detail: n.Detail})
		}
	}
	return msg
}

func (w *World) stepObservers(nowTick uint64) {
	if len(w.observers) == 0 {
		return
	}
	var plain, full []byte
	for _, c := range w.observers {
		var b *[]byte
		if c.includeNotes {
			b = &full
		} else {
			b = &plain
		}
		if *b == nil {
			raw, err := json.Marshal(w.tickFrame(nowTick, c.includeNotes))
			if err != nil {
				w.logger.Printf("ERROR observer: encode tick=%d: %v", nowTick, err)
				return
			}
			*b = raw
		}
		sendLatest(c.tickOut, *b)
	}
}
