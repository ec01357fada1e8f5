package planner

import (
	"context"
	"fmt"

	"github.com/kilianp07/plb/core/edf"
	"github.com/kilianp07/plb/core/jobstore"
	"github.com/kilianp07/plb/core/logger"
	"github.com/kilianp07/plb/core/model"
	"github.com/kilianp07/plb/core/report"
)

// Planner computes lazy binning schedules. It holds no per-instance state and
// can be reused; each Plan call owns a fresh job store.
type Planner struct {
	period model.Time
	log    logger.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithPeriod overrides the segment length carried by instances. Values
// below 1 leave the instance period in effect.
func WithPeriod(period model.Time) Option {
	return func(p *Planner) { p.period = period }
}

// WithLogger sets the logger used for round traces.
func WithLogger(l logger.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// New returns a Planner with the given options.
func New(opts ...Option) *Planner {
	p := &Planner{log: logger.Nop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Period returns the segment length used for in.
func (p *Planner) Period(in model.Instance) model.Time {
	if p.period > 0 {
		return p.period
	}
	return in.Period
}

// Plan schedules in. When the instance is infeasible the returned schedule
// is empty and the error wraps ErrInfeasible. ctx is only consulted between
// rounds.
func (p *Planner) Plan(ctx context.Context, in model.Instance) (*report.Schedule, error) {
	if err := in.Validate(); err != nil {
		return report.Empty(), err
	}
	period := p.Period(in)
	store := jobstore.New(in.Jobs)
	asm := report.NewAssembler(store.IDs())

	for round := 0; !store.Empty(); round++ {
		if err := ctx.Err(); err != nil {
			return report.Empty(), fmt.Errorf("round %d: %w", round, err)
		}
		ci, err := Tighten(store.Active())
		if err != nil {
			p.log.Warnf("round %d: %v", round, err)
			return report.Empty(), err
		}
		length, segments, u := Boundary(ci, period)
		asm.AddCalibration(u)
		asm.AddRound(report.Round{
			Index:         round,
			Start:         ci.Start,
			K:             ci.K,
			Deadline:      ci.Deadline,
			Delta:         ci.Delta,
			SegmentLength: length,
			Segments:      segments,
			Boundary:      u,
			Active:        store.Len(),
		})
		p.log.Debugw("calibration round", map[string]any{
			"round": round, "t": ci.Start, "k": ci.K, "d_k": ci.Deadline,
			"segment": length, "segments": segments, "u": u, "active": store.Len(),
		})

		asm.Merge(edf.Schedule(store.Prefix(ci.K), ci.Start, ci.Deadline))
		store.Prune()
		if ci.Deadline < u && !store.Empty() {
			asm.Merge(edf.Schedule(store.Active(), ci.Deadline, u))
			store.Prune()
		}
	}
	return asm.Build(), nil
}
