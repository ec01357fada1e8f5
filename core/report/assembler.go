package report

import (
	"sort"

	"github.com/kilianp07/plb/core/model"
)

// Assembler accumulates the output of planning rounds.
type Assembler struct {
	calibrations []model.Time
	intervals    map[model.JobID][]model.Interval
	rounds       []Round
}

// NewAssembler registers every job id of the instance so that jobs which
// never run still appear with an empty interval list.
func NewAssembler(ids []model.JobID) *Assembler {
	a := &Assembler{intervals: make(map[model.JobID][]model.Interval, len(ids))}
	for _, id := range ids {
		a.intervals[id] = []model.Interval{}
	}
	return a
}

// AddCalibration appends a calibration point in emission order.
func (a *Assembler) AddCalibration(u model.Time) {
	a.calibrations = append(a.calibrations, u)
}

// AddRound records the trace of a planning round.
func (a *Assembler) AddRound(r Round) {
	a.rounds = append(a.rounds, r)
}

// Merge appends the intervals of one sub-schedule.
func (a *Assembler) Merge(execs map[model.JobID][]model.Interval) {
	for id, ivs := range execs {
		if len(ivs) == 0 {
			if _, ok := a.intervals[id]; !ok {
				a.intervals[id] = []model.Interval{}
			}
			continue
		}
		a.intervals[id] = append(a.intervals[id], ivs...)
	}
}

// Build returns the assembled schedule with every interval list sorted by
// start time. The assembler can keep accumulating afterwards.
func (a *Assembler) Build() *Schedule {
	s := &Schedule{
		Calibrations: append([]model.Time{}, a.calibrations...),
		Intervals:    make(map[model.JobID][]model.Interval, len(a.intervals)),
		Rounds:       append([]Round(nil), a.rounds...),
	}
	for id, ivs := range a.intervals {
		cp := append([]model.Interval{}, ivs...)
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].Start < cp[j].Start })
		s.Intervals[id] = cp
	}
	return s
}
