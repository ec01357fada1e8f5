package batch

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/plb/core/runlog"
)

// Summary aggregates the records sharing a period and a job count.
// Means and deviations only cover feasible instances.
type Summary struct {
	Period           int64   `json:"period"`
	Jobs             int     `json:"jobs"`
	Instances        int     `json:"instances"`
	Infeasible       int     `json:"infeasible"`
	MeanSeconds      float64 `json:"mean_seconds"`
	StdSeconds       float64 `json:"std_seconds"`
	MeanCalibrations float64 `json:"mean_calibrations"`
	StdCalibrations  float64 `json:"std_calibrations"`
}

type groupKey struct {
	period int64
	jobs   int
}

// Summarize groups records by (period, jobs), ordered by jobs then period.
func Summarize(recs []runlog.RunRecord) []Summary {
	type acc struct {
		total, infeasible int
		secs, cals        []float64
	}
	groups := make(map[groupKey]*acc)
	for _, r := range recs {
		k := groupKey{r.Period, r.Jobs}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.total++
		if !r.Feasible {
			a.infeasible++
			continue
		}
		a.secs = append(a.secs, r.Seconds)
		a.cals = append(a.cals, float64(r.Calibrations))
	}

	out := make([]Summary, 0, len(groups))
	for k, a := range groups {
		s := Summary{Period: k.period, Jobs: k.jobs, Instances: a.total, Infeasible: a.infeasible}
		s.MeanSeconds, s.StdSeconds = meanStd(a.secs)
		s.MeanCalibrations, s.StdCalibrations = meanStd(a.cals)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Jobs != out[j].Jobs {
			return out[i].Jobs < out[j].Jobs
		}
		return out[i].Period < out[j].Period
	})
	return out
}

func meanStd(xs []float64) (mean, std float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

// QuadraticScale fits mean seconds as c*N^2 through the origin over the
// summaries with at least one feasible instance and returns c.
func QuadraticScale(sums []Summary) float64 {
	var xs, ys []float64
	for _, s := range sums {
		if s.Instances == s.Infeasible {
			continue
		}
		n := float64(s.Jobs)
		xs = append(xs, n*n)
		ys = append(ys, s.MeanSeconds)
	}
	if len(xs) == 0 {
		return 0
	}
	_, beta := stat.LinearRegression(xs, ys, nil, true)
	return beta
}

// WriteSummary prints sums as an aligned table.
func WriteSummary(w io.Writer, sums []Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "T\tN\tinstances\tinfeasible\tmean sec\tstd sec\tmean calibr\tstd calibr"); err != nil {
		return err
	}
	for _, s := range sums {
		if _, err := fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.6f\t%.6f\t%.2f\t%.2f\n",
			s.Period, s.Jobs, s.Instances, s.Infeasible,
			s.MeanSeconds, s.StdSeconds, s.MeanCalibrations, s.StdCalibrations); err != nil {
			return err
		}
	}
	return tw.Flush()
}
