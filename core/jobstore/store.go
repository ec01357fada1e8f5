// Package jobstore owns the mutable job records of a single planning run.
package jobstore

import (
	"sort"

	"github.com/kilianp07/plb/core/model"
)

// Store holds the active jobs of one instance in ascending deadline order.
// Jobs that enter with no processing stay active until the first Prune, so
// their deadlines still bound the first round.
type Store struct {
	ids    []model.JobID
	active []*model.Job
}

// New builds fresh working copies of specs. The deadline sort is stable, so
// jobs sharing a deadline keep their input order.
func New(specs []model.JobSpec) *Store {
	s := &Store{
		ids:    make([]model.JobID, 0, len(specs)),
		active: make([]*model.Job, 0, len(specs)),
	}
	for _, spec := range specs {
		s.ids = append(s.ids, spec.ID)
		s.active = append(s.active, model.NewJob(spec))
	}
	sort.SliceStable(s.active, func(i, j int) bool {
		return s.active[i].Deadline < s.active[j].Deadline
	})
	return s
}

// IDs returns every job id of the instance in input order, finished or not.
func (s *Store) IDs() []model.JobID {
	out := make([]model.JobID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Active returns the unfinished jobs in deadline order. The slice is owned by
// the store and must not be retained across Prune.
func (s *Store) Active() []*model.Job { return s.active }

// Len returns the number of unfinished jobs.
func (s *Store) Len() int { return len(s.active) }

// Empty reports whether every job is complete.
func (s *Store) Empty() bool { return len(s.active) == 0 }

// Prefix returns the active jobs up to and including index k.
func (s *Store) Prefix(k int) []*model.Job {
	if k >= len(s.active) {
		k = len(s.active) - 1
	}
	return s.active[:k+1]
}

// MaxDeadline returns the largest deadline among the active jobs.
func (s *Store) MaxDeadline() model.Time {
	if len(s.active) == 0 {
		return 0
	}
	// sorted ascending
	return s.active[len(s.active)-1].Deadline
}

// Remaining returns the processing still owed by the active jobs.
func (s *Store) Remaining() model.Time {
	var sum model.Time
	for _, j := range s.active {
		sum += j.Remaining
	}
	return sum
}

// Prune drops exhausted jobs, keeping the deadline order of the rest, and
// returns the ids that were removed.
func (s *Store) Prune() []model.JobID {
	var done []model.JobID
	kept := s.active[:0]
	for _, j := range s.active {
		if j.Done() {
			done = append(done, j.ID)
			continue
		}
		kept = append(kept, j)
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = kept
	return done
}
