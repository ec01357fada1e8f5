package batch

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/plb/core/runlog"
)

func TestSummarizeGroupsByPeriodAndJobs(t *testing.T) {
	recs := []runlog.RunRecord{
		{Period: 4, Jobs: 10, Seconds: 1, Calibrations: 2, Feasible: true},
		{Period: 4, Jobs: 10, Seconds: 3, Calibrations: 4, Feasible: true},
		{Period: 4, Jobs: 10, Feasible: false},
		{Period: 5, Jobs: 20, Seconds: 2, Calibrations: 6, Feasible: true},
		{Period: 3, Jobs: 20, Feasible: false},
	}
	sums := Summarize(recs)
	require.Len(t, sums, 3)

	assert.Equal(t, int64(4), sums[0].Period)
	assert.Equal(t, 10, sums[0].Jobs)
	assert.Equal(t, 3, sums[0].Instances)
	assert.Equal(t, 1, sums[0].Infeasible)
	assert.InDelta(t, 2.0, sums[0].MeanSeconds, 1e-12)
	assert.InDelta(t, math.Sqrt2, sums[0].StdSeconds, 1e-12)
	assert.InDelta(t, 3.0, sums[0].MeanCalibrations, 1e-12)

	assert.Equal(t, int64(3), sums[1].Period)
	assert.Equal(t, 0.0, sums[1].MeanSeconds)

	assert.Equal(t, int64(5), sums[2].Period)
	assert.Equal(t, 2.0, sums[2].MeanSeconds)
	assert.Equal(t, 0.0, sums[2].StdSeconds)
}

func TestQuadraticScale(t *testing.T) {
	sums := []Summary{
		{Jobs: 10, Instances: 1, MeanSeconds: 0.5},
		{Jobs: 20, Instances: 1, MeanSeconds: 2},
		{Jobs: 30, Instances: 2, Infeasible: 2},
	}
	assert.InDelta(t, 0.005, QuadraticScale(sums), 1e-12)
	assert.Equal(t, 0.0, QuadraticScale(nil))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, []Summary{{Period: 4, Jobs: 10, Instances: 2, MeanSeconds: 0.25, MeanCalibrations: 3}}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "T"))
	assert.Contains(t, lines[1], "0.250000")
	assert.Contains(t, lines[1], "3.00")
}
