package world

import (
	"fmt"

	"taproom.ai/internal/sim/ai"
)

func (w *World) tickJukebox(a *Agent, dt float64) {
	if a.Order == nil || !a.Ctrl.Abilities.PlayJukebox {
		return
	}
	js := a.Blocks.Jukebox
	if w.gate(a, ai.SiteJukebox, dt, ai.IntervalSearch) {
		st := w.acquireLine(a, &js.Line, KindJukebox)
		if st == nil {
			// Nothing to play (or we just played it): order again.
			w.newOrder(a)
			a.Ctrl.RequestTransition(ai.QueueForRegister, false)
			return
		}
		step := w.advanceLine(a, &js.Line, st)
		if step.AtFront && !js.Timer.Initialized {
			js.Timer.Set(w.tun.JukeboxSongTime)
		}
	}
	w.walkToSpot(a, &js.Line, dt)
	if !js.Timer.Initialized || !js.Timer.Pass(dt) {
		return
	}

	st, ok := w.stations.Get(js.Line.Station)
	if ok && st.Jukebox != nil {
		st.Jukebox.LastCustomer = a.Ref
	}
	w.bank.Deposit(w.tun.JukeboxFee, fmt.Sprintf("jukebox %s", a.Ref))
	w.totals.SongsPlayed++
	w.note(a, "song", "")
	w.leaveLine(a, &js.Line)
	w.newOrder(a)
	a.Ctrl.RequestTransition(ai.QueueForRegister, false)
}
