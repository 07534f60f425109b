package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick      uint64  `json:"tick"`
	SessionID string  `json:"session_id"`
	Clock     float64 `json:"clock"`
	Closed    bool    `json:"closed"`
	RoundOver bool    `json:"round_over"`

	Agents  int            `json:"agents"`
	States  map[string]int `json:"states"`
	Lines   map[string]int `json:"lines"`
	Hazards int            `json:"hazards"`

	Balance int    `json:"balance"`
	Tips    int    `json:"tips"`
	Totals  Totals `json:"totals"`

	QueueDepths QueueDepths `json:"queue_depths"`

	PathsApplied int `json:"paths_applied"`
	PathsStale   int `json:"paths_stale"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Bar       int `json:"bar"`
	Observers int `json:"observers"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
