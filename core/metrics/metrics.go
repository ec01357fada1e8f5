package metrics

import "time"

// RunEvent describes the outcome of planning one instance.
type RunEvent struct {
	Source       string
	Index        int
	Period       int64
	Jobs         int
	Calibrations int
	Rounds       int
	Duration     time.Duration
	Feasible     bool
	Time         time.Time
}

// Outcome labels the event for aggregation.
func (e RunEvent) Outcome() string {
	if e.Feasible {
		return "feasible"
	}
	return "infeasible"
}

// MetricsSink records planning runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// BatchEvent summarises a completed batch.
type BatchEvent struct {
	Source     string
	Instances  int
	Infeasible int
	Failed     int
	Duration   time.Duration
	Time       time.Time
}

// BatchRecorder is implemented by sinks able to record batch summaries.
type BatchRecorder interface {
	RecordBatch(ev BatchEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error     { return nil }
func (NopSink) RecordBatch(BatchEvent) error { return nil }
