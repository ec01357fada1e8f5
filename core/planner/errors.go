package planner

import (
	"errors"
	"fmt"

	"github.com/kilianp07/plb/core/model"
)

// ErrInfeasible reports that no preemptive schedule meets every deadline.
var ErrInfeasible = errors.New("infeasible schedule")

// Reason tells which check rejected the instance.
type Reason string

const (
	// ReasonNegativeStart is raised when the critical instant falls before 0.
	ReasonNegativeStart Reason = "start time < 0"
	// ReasonDeadlineBeforeStart is raised when the tight deadline precedes
	// the critical instant.
	ReasonDeadlineBeforeStart Reason = "d_k < t"
)

// InfeasibleError carries the state of the tightening search when it gave up.
type InfeasibleError struct {
	Reason   Reason
	JobID    model.JobID
	Start    model.Time
	Deadline model.Time
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%s: %s (job %d, t=%d, d=%d)", ErrInfeasible, e.Reason, e.JobID, e.Start, e.Deadline)
}

// Unwrap lets errors.Is match ErrInfeasible.
func (e *InfeasibleError) Unwrap() error { return ErrInfeasible }
