package world

import "survivecraft.ai/internal/sim/world/feature/economy/ledger"

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

// WorldMetrics is published after every tick and is safe to read from any
// goroutine.
type WorldMetrics struct {
	Tick        uint64        `json:"tick"`
	Clients     int           `json:"clients"`
	Instances   int           `json:"instances"`
	Structures  int           `json:"structures"`
	Ledger      ledger.Counts `json:"ledger"`
	QueueDepths QueueDepths   `json:"queue_depths"`
	StepMS      float64       `json:"step_ms"`
}

func (w *World) Metrics() WorldMetrics {
	if m, ok := w.metrics.Load().(WorldMetrics); ok {
		return m
	}
	return WorldMetrics{}
}
