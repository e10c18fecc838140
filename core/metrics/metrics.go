package metrics

import "time"

// SolveRecord captures one LP solve for observability purposes.
type SolveRecord struct {
	RunID       string
	WindowIndex int
	Mode        string // "block" or "rolling"
	Steps       int
	Solved      bool
	Status      string
	Objective   float64
	PeakKW      float64
	Duration    time.Duration
	Start       time.Time
}

// MetricsSink records solve events.
type MetricsSink interface {
	RecordSolve(rec SolveRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error { return nil }
