package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.stepDuration())
	defer ticker.Stop()
	defer w.Close()

	dt := 1.0 / float64(w.tun.TickRateHz)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case <-ticker.C:
			w.stepInternal(dt)
		}
	}
}

// StepOnce advances the world by a single tick of dt seconds using the same
// ordering as the server loop. It is intended for tests and replays.
func (w *World) StepOnce(dt float64) uint64 {
	tick := w.tick.Load()
	w.stepInternal(dt)
	return tick
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
