// Package report assembles calibration points and execution intervals
// produced across planning rounds into a single schedule.
package report

import (
	"sort"

	"github.com/kilianp07/plb/core/model"
)

// Round records the decisions taken by one planning round.
type Round struct {
	Index int `json:"index"`
	// Start is the critical instant of the round.
	Start         model.Time `json:"start"`
	K             int        `json:"k"`
	Deadline      model.Time `json:"deadline"`
	Delta         model.Time `json:"delta"`
	SegmentLength model.Time `json:"segment_length"`
	Segments      model.Time `json:"segments"`
	Boundary      model.Time `json:"boundary"`
	Active        int        `json:"active"`
}

// Schedule is the final result for one instance.
type Schedule struct {
	Calibrations []model.Time                      `json:"calibrations"`
	Intervals    map[model.JobID][]model.Interval `json:"intervals"`
	Rounds       []Round                           `json:"rounds,omitempty"`
}

// Empty returns the schedule reported for an infeasible instance.
func Empty() *Schedule {
	return &Schedule{Calibrations: []model.Time{}, Intervals: map[model.JobID][]model.Interval{}}
}

// IsEmpty reports whether the schedule carries no calibration and no interval.
func (s *Schedule) IsEmpty() bool {
	return len(s.Calibrations) == 0 && len(s.Intervals) == 0
}

// JobIDs returns the ids present in the schedule in ascending order.
func (s *Schedule) JobIDs() []model.JobID {
	ids := make([]model.JobID, 0, len(s.Intervals))
	for id := range s.Intervals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Processed returns the total execution time given to id.
func (s *Schedule) Processed(id model.JobID) model.Time {
	var sum model.Time
	for _, iv := range s.Intervals[id] {
		sum += iv.Len()
	}
	return sum
}

// Makespan returns the latest interval end, or 0 when nothing ran.
func (s *Schedule) Makespan() model.Time {
	var m model.Time
	for _, ivs := range s.Intervals {
		for _, iv := range ivs {
			if iv.End > m {
				m = iv.End
			}
		}
	}
	return m
}
