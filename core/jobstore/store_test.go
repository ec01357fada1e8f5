package jobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/plb/core/model"
)

func specs() []model.JobSpec {
	return []model.JobSpec{
		{ID: 1, Deadline: 10, Processing: 4},
		{ID: 2, Deadline: 6, Processing: 2},
		{ID: 3, Deadline: 6, Processing: 1},
		{ID: 4, Deadline: 8, Processing: 0},
	}
}

func activeIDs(s *Store) []model.JobID {
	var ids []model.JobID
	for _, j := range s.Active() {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestNewSortsStable(t *testing.T) {
	s := New(specs())
	assert.Equal(t, []model.JobID{2, 3, 4, 1}, activeIDs(s))
	assert.Equal(t, []model.JobID{1, 2, 3, 4}, s.IDs())
	assert.Equal(t, model.Time(10), s.MaxDeadline())
	assert.Equal(t, model.Time(7), s.Remaining())
	assert.Equal(t, 4, s.Len())
}

func TestNewKeepsZeroProcessingUntilPrune(t *testing.T) {
	s := New([]model.JobSpec{
		{ID: 1, Deadline: 100, Processing: 0},
		{ID: 2, Deadline: 10, Processing: 5},
	})
	assert.Equal(t, []model.JobID{2, 1}, activeIDs(s))
	assert.Equal(t, model.Time(100), s.MaxDeadline())

	done := s.Prune()
	assert.Equal(t, []model.JobID{1}, done)
	assert.Equal(t, []model.JobID{2}, activeIDs(s))
	assert.Equal(t, model.Time(10), s.MaxDeadline())
}

func TestNewCopiesJobs(t *testing.T) {
	in := specs()
	a := New(in)
	b := New(in)
	a.Active()[0].Run(2)
	require.Equal(t, model.Time(2), b.Active()[0].Remaining)
	require.Equal(t, model.Time(2), in[1].Processing)
}

func TestPrefix(t *testing.T) {
	s := New(specs())
	assert.Len(t, s.Prefix(0), 1)
	assert.Len(t, s.Prefix(1), 2)
	assert.Len(t, s.Prefix(10), 4)
}

func TestPrune(t *testing.T) {
	s := New(specs())
	s.Active()[0].Run(2)
	s.Active()[3].Run(4)
	done := s.Prune()
	assert.Equal(t, []model.JobID{2, 4, 1}, done)
	assert.Equal(t, []model.JobID{3}, activeIDs(s))
	assert.False(t, s.Empty())

	s.Active()[0].Run(1)
	s.Prune()
	assert.True(t, s.Empty())
	assert.Equal(t, model.Time(0), s.MaxDeadline())
}
