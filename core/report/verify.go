package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/plb/core/model"
)

// ErrViolation marks a schedule that breaks one of its guarantees.
var ErrViolation = errors.New("schedule violation")

type owned struct {
	id model.JobID
	iv model.Interval
}

// Verify checks a feasible schedule against the instance it was built from:
// each job receives exactly its processing time, intervals never overlap on
// the resource, every interval ends by its job's deadline, and calibration
// points are non-decreasing and bounded by the largest deadline.
func Verify(s *Schedule, in model.Instance) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrViolation}, args...)...))
	}

	var all []owned
	for _, spec := range in.Jobs {
		ivs, ok := s.Intervals[spec.ID]
		if !ok {
			fail("job %d missing from schedule", spec.ID)
			continue
		}
		if got := s.Processed(spec.ID); got != spec.Processing {
			fail("job %d processed %d, requires %d", spec.ID, got, spec.Processing)
		}
		for _, iv := range ivs {
			if iv.Len() <= 0 {
				fail("job %d has empty interval %v", spec.ID, iv)
			}
			if iv.End > spec.Deadline {
				fail("job %d interval %v ends after deadline %d", spec.ID, iv, spec.Deadline)
			}
			all = append(all, owned{id: spec.ID, iv: iv})
		}
	}
	for id := range s.Intervals {
		if _, ok := in.Spec(id); !ok {
			fail("unknown job %d in schedule", id)
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].iv.Start < all[j].iv.Start })
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.iv.Overlaps(cur.iv) {
			fail("job %d %v overlaps job %d %v", prev.id, prev.iv, cur.id, cur.iv)
		}
	}

	maxD := in.MaxDeadline()
	for i, u := range s.Calibrations {
		if u > maxD {
			fail("calibration %d at %d exceeds max deadline %d", i, u, maxD)
		}
		if i > 0 && u < s.Calibrations[i-1] {
			fail("calibration %d at %d precedes %d", i, u, s.Calibrations[i-1])
		}
	}
	return errors.Join(errs...)
}
