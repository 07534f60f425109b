package world

import (
	"context"
	"errors"
)

type adminKind int

const (
	adminSnapshot adminKind = iota + 1
	adminClose
)

type adminReq struct {
	Kind adminKind
	Resp chan adminResp
}

type adminResp struct {
	Tick uint64
	Err  string
}

// RequestSnapshot asks the world loop goroutine to enqueue a snapshot.
// It is safe to call from other goroutines (e.g. HTTP handlers).
func (w *World) RequestSnapshot(ctx context.Context) (tick uint64, err error) {
	return w.requestAdmin(ctx, adminSnapshot)
}

// RequestClose is CloseBar for callers outside the world loop.
func (w *World) RequestClose(ctx context.Context) (tick uint64, err error) {
	return w.requestAdmin(ctx, adminClose)
}

func (w *World) requestAdmin(ctx context.Context, kind adminKind) (uint64, error) {
	if w == nil || w.admin == nil {
		return 0, errors.New("admin requests not available")
	}
	resp := make(chan adminResp, 1)
	select {
	case w.admin <- adminReq{Kind: kind, Resp: resp}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-resp:
		if r.Err != "" {
			return r.Tick, errors.New(r.Err)
		}
		return r.Tick, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// drainAdminRequests runs at the tick boundary, before anything of the
// current tick has been stepped.
func (w *World) drainAdminRequests() {
	for {
		select {
		case req := <-w.admin:
			w.handleAdminRequest(req)
		default:
			return
		}
	}
}

func (w *World) handleAdminRequest(req adminReq) {
	cur := w.tick.Load()
	resp := adminResp{Tick: cur}
	switch req.Kind {
	case adminSnapshot:
		// The committed state is the one left by the previous tick.
		snapTick := uint64(0)
		if cur > 0 {
			snapTick = cur - 1
		}
		resp.Tick = snapTick
		if w.snapshotSink == nil {
			resp.Err = "snapshot sink not configured"
			break
		}
		select {
		case w.snapshotSink <- w.ExportSnapshot(snapTick):
		default:
			resp.Err = "snapshot sink backpressure"
		}
	case adminClose:
		w.CloseBar()
	default:
		resp.Err = "unknown admin request"
	}
	if req.Resp == nil {
		return
	}
	select {
	case req.Resp <- resp:
	default:
		// Client timed out; don't block the sim loop.
	}
}
