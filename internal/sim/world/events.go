package world

import (
	"taproom.ai/internal/persistence/snapshot"
	"taproom.ai/internal/sim/ledger"
)

// TickLogEntry is everything that changed at one tick boundary.
type TickLogEntry struct {
	Tick        uint64               `json:"tick"`
	SessionID   string               `json:"session_id"`
	Clock       float64              `json:"clock"`
	Transitions []TransitionRecord   `json:"transitions,omitempty"`
	Notes       []Note               `json:"notes,omitempty"`
	Ledger      []ledger.Transaction `json:"ledger,omitempty"`
	Balance     int                  `json:"balance"`
}

func (e TickLogEntry) empty() bool {
	return len(e.Transitions) == 0 && len(e.Notes) == 0 && len(e.Ledger) == 0
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// Indexer receives the same entries as the tick log; implementations are
// expected to queue and return quickly.
type Indexer interface {
	WriteTick(entry TickLogEntry) error
}

func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetIndex(ix Indexer)                           { w.index = ix }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- string             { return w.observerLeave }
