package edf

import "github.com/kilianp07/plb/core/model"

// Assignment maps a job to the intervals it received inside one window.
type Assignment map[model.JobID][]model.Interval

// Schedule runs the unfinished jobs in [start, end) and decreases their
// remaining processing by the time they were given. Every job with work left
// at call time has an entry, possibly empty. Time left once all jobs are
// exhausted is idle.
func Schedule(jobs []*model.Job, start, end model.Time) Assignment {
	out := make(Assignment, len(jobs))
	for _, j := range jobs {
		if !j.Done() {
			out[j.ID] = nil
		}
	}
	t := start
	for t < end {
		chosen := pick(jobs)
		if chosen == nil {
			// idle until the window closes
			break
		}
		steps := chosen.Run(end - t)
		out[chosen.ID] = appendInterval(out[chosen.ID], t, t+steps)
		t += steps
	}
	return out
}

// Stepwise is the unit-time simulation of Schedule. It re-selects the most
// urgent job at every time unit and idles one unit at a time.
func Stepwise(jobs []*model.Job, start, end model.Time) Assignment {
	out := make(Assignment, len(jobs))
	for _, j := range jobs {
		if !j.Done() {
			out[j.ID] = nil
		}
	}
	for t := start; t < end; t++ {
		chosen := pick(jobs)
		if chosen == nil {
			continue
		}
		chosen.Run(1)
		out[chosen.ID] = appendInterval(out[chosen.ID], t, t+1)
	}
	return out
}

// pick returns the unfinished job with the smallest deadline. Ties go to the
// job that comes first in jobs.
func pick(jobs []*model.Job) *model.Job {
	var best *model.Job
	for _, j := range jobs {
		if j.Done() {
			continue
		}
		if best == nil || j.Deadline < best.Deadline {
			best = j
		}
	}
	return best
}

// appendInterval extends the last interval when the new one is contiguous.
func appendInterval(ivs []model.Interval, start, end model.Time) []model.Interval {
	if n := len(ivs); n > 0 && ivs[n-1].End == start {
		ivs[n-1].End = end
		return ivs
	}
	return append(ivs, model.Interval{Start: start, End: end})
}
