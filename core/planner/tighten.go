package planner

import (
	"errors"

	"github.com/kilianp07/plb/core/model"
)

var errNoJobs = errors.New("no active jobs")

// CriticalInstant is the outcome of the tightening search for one round.
type CriticalInstant struct {
	// Start is the critical instant t.
	Start model.Time
	// K indexes the tight job in deadline order.
	K int
	// Deadline is d_k.
	Deadline    model.Time
	Delta       model.Time
	MaxDeadline model.Time
}

// Tighten walks jobs from the largest deadline down and keeps the smallest
// d_i - P_i, where P_i is the work of jobs 0..i. jobs must be sorted by
// ascending deadline. On ties the larger index wins.
func Tighten(jobs []*model.Job) (CriticalInstant, error) {
	if len(jobs) == 0 {
		return CriticalInstant{}, errNoJobs
	}
	var maxD, sum model.Time
	for i, j := range jobs {
		if i == 0 || j.Deadline > maxD {
			maxD = j.Deadline
		}
		sum += j.Remaining
	}

	t, k := maxD, 0
	for i := len(jobs) - 1; i >= 0; i-- {
		j := jobs[i]
		if limit := j.Deadline - sum; t > limit {
			t, k = limit, i
		}
		if t < 0 {
			return CriticalInstant{}, &InfeasibleError{
				Reason: ReasonNegativeStart, JobID: j.ID, Start: t, Deadline: j.Deadline,
			}
		}
		sum -= j.Remaining
	}

	dk := jobs[k].Deadline
	delta := dk - t
	if delta < 0 {
		return CriticalInstant{}, &InfeasibleError{
			Reason: ReasonDeadlineBeforeStart, JobID: jobs[k].ID, Start: t, Deadline: dk,
		}
	}
	return CriticalInstant{Start: t, K: k, Deadline: dk, Delta: delta, MaxDeadline: maxD}, nil
}

// SegmentLength caps period so that a segment starting at start never
// crosses maxDeadline. The result is at least 1 so the segment count is
// always defined, even for a non-positive period.
func SegmentLength(period, maxDeadline, start model.Time) model.Time {
	l := min(period, maxDeadline-start)
	if l < 1 {
		l = 1
	}
	return l
}

// Boundary returns the adaptive segment length, the number of segments
// needed to cover the critical window and the resulting calibration point.
func Boundary(ci CriticalInstant, period model.Time) (length, segments, u model.Time) {
	length = SegmentLength(period, ci.MaxDeadline, ci.Start)
	segments = max(1, ceilDiv(ci.Delta, length))
	u = min(ci.Start+segments*length, ci.MaxDeadline)
	return length, segments, u
}

// ceilDiv divides a non-negative numerator by a positive divisor, rounding up.
func ceilDiv(a, b model.Time) model.Time {
	return (a + b - 1) / b
}
