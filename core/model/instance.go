package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInstance is returned when an instance cannot be planned at all.
var ErrInvalidInstance = errors.New("invalid instance")

// MaxTime bounds deadlines and the total processing of an instance. Planning
// adds and subtracts these quantities, so the bound keeps every intermediate
// value inside int64.
const MaxTime Time = math.MaxInt64 / 4

// Instance is a scheduling problem: a segment length parameter and the jobs
// sharing the single resource.
type Instance struct {
	Period Time      `json:"period"`
	Jobs   []JobSpec `json:"jobs"`
}

// Validate checks that the jobs can be handed to the planner.
// Release times other than zero are rejected since every job must be
// available from the start of the horizon. A negative deadline is accepted
// here; the planner reports it as infeasible.
func (in Instance) Validate() error {
	seen := make(map[JobID]struct{}, len(in.Jobs))
	var total Time
	for _, j := range in.Jobs {
		if _, ok := seen[j.ID]; ok {
			return fmt.Errorf("%w: duplicate job id %d", ErrInvalidInstance, j.ID)
		}
		seen[j.ID] = struct{}{}
		if j.Deadline > MaxTime || j.Deadline < -MaxTime {
			return fmt.Errorf("%w: job %d deadline %d out of range", ErrInvalidInstance, j.ID, j.Deadline)
		}
		if j.Processing < 0 {
			return fmt.Errorf("%w: job %d has negative processing %d", ErrInvalidInstance, j.ID, j.Processing)
		}
		// total <= MaxTime before the check, so the sum cannot wrap
		if j.Processing > MaxTime-total {
			return fmt.Errorf("%w: total processing exceeds %d at job %d", ErrInvalidInstance, MaxTime, j.ID)
		}
		total += j.Processing
		if j.Release != 0 {
			return fmt.Errorf("%w: job %d has release %d, only 0 is supported", ErrInvalidInstance, j.ID, j.Release)
		}
	}
	return nil
}

// TotalProcessing returns the sum of processing requirements.
func (in Instance) TotalProcessing() Time {
	var sum Time
	for _, j := range in.Jobs {
		sum += j.Processing
	}
	return sum
}

// MaxDeadline returns the largest deadline, or 0 for an empty instance.
func (in Instance) MaxDeadline() Time {
	var m Time
	for i, j := range in.Jobs {
		if i == 0 || j.Deadline > m {
			m = j.Deadline
		}
	}
	return m
}

// Spec returns the job description for id.
func (in Instance) Spec(id JobID) (JobSpec, bool) {
	for _, j := range in.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return JobSpec{}, false
}
