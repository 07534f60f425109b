package world

import (
	"slices"
	"time"

	"taproom.ai/internal/sim/entity"
)

func (w *World) stepInternal(dt float64) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	w.transitions = w.transitions[:0]
	w.notes = w.notes[:0]

	w.drainAdminRequests()
	w.drainBarRequests()
	applied, stale := w.applyPaths()

	w.stepRound(dt)
	w.stepBartender(dt)
	w.stepMaintenance()

	// Patience drains every tick, outside the cooldown gates.
	w.agents.Each(func(_ entity.Ref, a *Agent) bool {
		a.Patience.Pass(dt)
		return true
	})

	w.setupStates()
	w.overrideBathroom()
	w.runHandlers(dt)
	w.commitTransitions()
	w.forceLeave()

	w.despawn()
	w.pruneLines()
	roundOver := w.stepRoundOver()

	entry := TickLogEntry{
		Tick:        nowTick,
		SessionID:   w.cfg.SessionID,
		Clock:       w.clock,
		Transitions: slices.Clone(w.transitions),
		Notes:       slices.Clone(w.notes),
		Ledger:      w.bank.Drain(),
		Balance:     w.bank.Balance(),
	}
	if !entry.empty() {
		if w.tickLogger != nil {
			if err := w.tickLogger.WriteTick(entry); err != nil {
				w.logger.Printf("WARN ticklog: tick=%d: %v", nowTick, err)
			}
		}
		if w.index != nil {
			if err := w.index.WriteTick(entry); err != nil {
				w.logger.Printf("WARN index: tick=%d: %v", nowTick, err)
			}
		}
	}

	w.stepObservers(nowTick)

	// Snapshot every N ticks, starting after tick 0, plus one when the round ends.
	if w.snapshotSink != nil {
		periodic := nowTick != 0 && w.tun.SnapshotEveryTicks > 0 && nowTick%uint64(w.tun.SnapshotEveryTicks) == 0
		if periodic || roundOver {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
				w.logger.Printf("WARN snapshot: sink full, dropped tick=%d", nowTick)
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)

	states := map[string]int{}
	w.agents.Each(func(_ entity.Ref, a *Agent) bool {
		states[a.Ctrl.State.String()]++
		return true
	})
	lines := map[string]int{}
	w.stations.Each(func(_ entity.Ref, st *Station) bool {
		lines[st.Name] = st.Line.Len()
		return true
	})
	w.metrics.Store(WorldMetrics{
		Tick:      nextTick,
		SessionID: w.cfg.SessionID,
		Clock:     w.clock,
		Closed:    w.round.Closed,
		RoundOver: w.round.Over,
		Agents:    w.agents.Len(),
		States:    states,
		Lines:     lines,
		Hazards:   w.hazards.Len(),
		Balance:   w.bank.Balance(),
		Tips:      w.bank.Tips(),
		Totals:    w.totals,
		QueueDepths: QueueDepths{
			Bar:       len(w.bar),
			Observers: len(w.observers),
		},
		PathsApplied: applied,
		PathsStale:   stale,
		StepMS:       stepMS,
	})
}
