package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/plb/core/logger"
	"github.com/kilianp07/plb/core/metrics"
	"github.com/kilianp07/plb/core/model"
	"github.com/kilianp07/plb/core/planner"
	"github.com/kilianp07/plb/core/report"
	"github.com/kilianp07/plb/core/runlog"
)

// Outcome is the result of planning one instance of a batch.
type Outcome struct {
	Index    int
	Schedule *report.Schedule
	Record   runlog.RunRecord
	// Err is nil for feasible instances. It wraps planner.ErrInfeasible for
	// infeasible ones; any other error marks the instance as failed.
	Err error
}

// Infeasible reports whether the instance was rejected by the planner.
func (o Outcome) Infeasible() bool { return errors.Is(o.Err, planner.ErrInfeasible) }

// Result aggregates the outcomes of a batch.
type Result struct {
	Source     string
	Outcomes   []Outcome
	Infeasible int
	Failed     int
	Duration   time.Duration
}

// Records returns the run records of every outcome.
func (r Result) Records() []runlog.RunRecord {
	recs := make([]runlog.RunRecord, len(r.Outcomes))
	for i, o := range r.Outcomes {
		recs[i] = o.Record
	}
	return recs
}

// Runner plans instances one after another.
type Runner struct {
	planner *planner.Planner
	store   runlog.LogStore
	sink    metrics.MetricsSink
	log     logger.Logger
	verify  bool
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore persists a record per instance.
func WithStore(s runlog.LogStore) Option {
	return func(r *Runner) {
		if s != nil {
			r.store = s
		}
	}
}

// WithSink reports a RunEvent per instance and a BatchEvent per batch.
func WithSink(s metrics.MetricsSink) Option {
	return func(r *Runner) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithLogger sets the runner logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithVerify checks every feasible schedule against its instance.
func WithVerify(v bool) Option {
	return func(r *Runner) { r.verify = v }
}

// NewRunner returns a Runner using p. A nil planner uses the instance periods.
func NewRunner(p *planner.Planner, opts ...Option) *Runner {
	if p == nil {
		p = planner.New()
	}
	r := &Runner{
		planner: p,
		store:   runlog.NopStore{},
		sink:    metrics.NopSink{},
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Solve plans a single instance and reports it. Only context errors are
// returned; planning failures are carried by the Outcome.
func (r *Runner) Solve(ctx context.Context, source string, index int, in model.Instance) (Outcome, error) {
	start := r.now()
	sched, err := r.planner.Plan(ctx, in)
	elapsed := r.now().Sub(start)
	if err != nil && ctx.Err() != nil {
		return Outcome{}, err
	}
	if err == nil && r.verify {
		if verr := report.Verify(sched, in); verr != nil {
			err = fmt.Errorf("instance %d: %w", index, verr)
		}
	}

	rec := runlog.NewRecord(source, index)
	rec.Timestamp = start.UTC()
	rec.Period = r.planner.Period(in)
	rec.Jobs = len(in.Jobs)
	rec.Calibrations = len(sched.Calibrations)
	rec.Rounds = len(sched.Rounds)
	rec.Seconds = elapsed.Seconds()
	rec.Feasible = err == nil
	if err != nil {
		rec.Error = err.Error()
	}
	out := Outcome{Index: index, Schedule: sched, Record: rec, Err: err}

	switch {
	case err == nil:
		r.log.Infof("instance %d: T=%d N=%d calibrations=%d in %s", index, rec.Period, rec.Jobs, rec.Calibrations, elapsed)
	case out.Infeasible():
		r.log.Warnf("instance %d: %v", index, err)
	default:
		r.log.Errorf("instance %d: %v", index, err)
	}

	if serr := r.store.Append(ctx, rec); serr != nil {
		r.log.Errorf("run log append: %v", serr)
	}
	ev := metrics.RunEvent{
		Source:       source,
		Index:        index,
		Period:       rec.Period,
		Jobs:         rec.Jobs,
		Calibrations: rec.Calibrations,
		Rounds:       rec.Rounds,
		Duration:     elapsed,
		Feasible:     rec.Feasible,
		Time:         start,
	}
	if merr := r.sink.RecordRun(ev); merr != nil {
		r.log.Errorf("metrics sink: %v", merr)
	}
	return out, nil
}

// Run plans every instance in order. An infeasible or invalid instance never
// stops the batch; cancellation of ctx does, and the partial result is
// returned with the context error.
func (r *Runner) Run(ctx context.Context, source string, instances []model.Instance) (Result, error) {
	res := Result{Source: source, Outcomes: make([]Outcome, 0, len(instances))}
	start := r.now()
	var runErr error
	for i, in := range instances {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		out, err := r.Solve(ctx, source, i, in)
		if err != nil {
			runErr = err
			break
		}
		res.Outcomes = append(res.Outcomes, out)
		switch {
		case out.Err == nil:
		case out.Infeasible():
			res.Infeasible++
		default:
			res.Failed++
		}
	}
	res.Duration = r.now().Sub(start)

	if br, ok := r.sink.(metrics.BatchRecorder); ok {
		ev := metrics.BatchEvent{
			Source:     source,
			Instances:  len(res.Outcomes),
			Infeasible: res.Infeasible,
			Failed:     res.Failed,
			Duration:   res.Duration,
			Time:       start,
		}
		if err := br.RecordBatch(ev); err != nil {
			r.log.Errorf("metrics sink: %v", err)
		}
	}
	r.log.Infof("batch %s: %d instances, %d infeasible, %d failed in %s",
		source, len(res.Outcomes), res.Infeasible, res.Failed, res.Duration)
	return res, runErr
}
