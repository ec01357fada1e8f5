package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/plb/core/model"
)

func TestDefaultPeriod(t *testing.T) {
	cases := map[int]model.Time{1: 1, 2: 1, 3: 2, 8: 3, 9: 4, 25000: 15}
	for n, want := range cases {
		assert.Equal(t, want, DefaultPeriod(n), "n=%d", n)
	}
}

func TestDeadlineRange(t *testing.T) {
	p := DefaultParams(10)
	lo, hi := p.DeadlineRange()
	assert.Equal(t, model.Time(200), lo)
	// 10 * 101 / 2 * 1.5 = 757.5, rounded half to even
	assert.Equal(t, model.Time(758), hi)

	p = Params{N: 1, PMin: 1, PMax: 2, DRatio: 1}
	_, hi = p.DeadlineRange()
	// 1.5 rounds to 2
	assert.Equal(t, model.Time(2), hi)
}

func TestGenerateWithinBounds(t *testing.T) {
	p := DefaultParams(50)
	p.Seed = 42
	g, err := New(p)
	require.NoError(t, err)
	in := g.Next()
	require.Len(t, in.Jobs, 50)
	assert.Equal(t, DefaultPeriod(50), in.Period)
	lo, hi := p.DeadlineRange()
	for i, j := range in.Jobs {
		assert.Equal(t, model.JobID(i+1), j.ID)
		assert.Zero(t, j.Release)
		assert.GreaterOrEqual(t, j.Deadline, lo)
		assert.LessOrEqual(t, j.Deadline, hi)
		assert.GreaterOrEqual(t, j.Processing, p.PMin)
		assert.LessOrEqual(t, j.Processing, p.PMax)
	}
	require.NoError(t, in.Validate())
}

func TestGenerateDeterministic(t *testing.T) {
	p := DefaultParams(20)
	p.Seed = 7
	a, err := New(p)
	require.NoError(t, err)
	b, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, a.Batch(3), b.Batch(3))
}

func TestValidate(t *testing.T) {
	bad := []Params{
		{N: -1, PMin: 1, PMax: 2, DRatio: 1},
		{N: 5, PMin: 3, PMax: 2, DRatio: 1},
		{N: 5, PMin: 1, PMax: 2, DRatio: 0},
		{N: 1, PMin: 1, PMax: 100, DRatio: 1},
	}
	for i, p := range bad {
		if _, err := New(p); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
