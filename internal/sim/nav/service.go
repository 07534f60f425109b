package nav

import (
	"sync"
	"time"

	"taproom.ai/internal/sim/entity"
)

type Request struct {
	Agent entity.Ref
	Seq   uint64
	Start Tile
	Goal  Tile
}

type Response struct {
	Agent entity.Ref
	Seq   uint64
	Goal  Tile
	Path  []Tile
	OK    bool
}

type Options struct {
	// Inline solves requests on the caller's goroutine during Drain. Used by
	// tests and replay for deterministic runs.
	Inline    bool
	PollEvery time.Duration
	Buffer    int
}

// Service runs A* off the simulation goroutine. The world submits requests
// and drains responses once per tick; matching by (agent, seq) is the
// caller's job.
type Service struct {
	opts Options
	grid *Grid

	reqs  chan Request
	resps chan Response

	inlineQ []Request

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(grid *Grid, opts Options) *Service {
	if opts.PollEvery <= 0 {
		opts.PollEvery = 10 * time.Millisecond
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	s := &Service{
		opts: opts,
		grid: grid.Clone(),
		stop: make(chan struct{}),
	}
	if !opts.Inline {
		s.reqs = make(chan Request, opts.Buffer)
		s.resps = make(chan Response, opts.Buffer)
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *Service) Inline() bool { return s.opts.Inline }

// Submit queues a request without blocking. It returns false when the queue
// is full; the caller keeps moving in a straight line and retries later.
func (s *Service) Submit(r Request) bool {
	if s.opts.Inline {
		s.inlineQ = append(s.inlineQ, r)
		return true
	}
	select {
	case s.reqs <- r:
		return true
	default:
		return false
	}
}

func (s *Service) solve(r Request) Response {
	path, ok := s.grid.FindPath(r.Start, r.Goal)
	return Response{Agent: r.Agent, Seq: r.Seq, Goal: r.Goal, Path: path, OK: ok}
}

// Drain returns every response that is ready.
func (s *Service) Drain() []Response {
	if s.opts.Inline {
		if len(s.inlineQ) == 0 {
			return nil
		}
		out := make([]Response, 0, len(s.inlineQ))
		for _, r := range s.inlineQ {
			out = append(out, s.solve(r))
		}
		s.inlineQ = s.inlineQ[:0]
		return out
	}
	var out []Response
	for {
		select {
		case r := <-s.resps:
			out = append(out, r)
		default:
			return out
		}
	}
}

func (s *Service) worker() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.PollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
		for more := true; more; {
			select {
			case r := <-s.reqs:
				resp := s.solve(r)
				select {
				case s.resps <- resp:
				case <-s.stop:
					return
				}
			default:
				more = false
			}
		}
	}
}

// Close stops the worker. Safe to call more than once.
func (s *Service) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}
