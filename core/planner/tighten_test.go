package planner

import (
	"errors"
	"testing"

	"github.com/kilianp07/plb/core/model"
)

func work(specs ...model.JobSpec) []*model.Job {
	out := make([]*model.Job, len(specs))
	for i, s := range specs {
		out[i] = model.NewJob(s)
	}
	return out
}

func TestTighten(t *testing.T) {
	ci, err := Tighten(work(
		model.JobSpec{ID: 2, Deadline: 6, Processing: 2},
		model.JobSpec{ID: 1, Deadline: 10, Processing: 4},
	))
	if err != nil {
		t.Fatalf("tighten: %v", err)
	}
	want := CriticalInstant{Start: 4, K: 1, Deadline: 10, Delta: 6, MaxDeadline: 10}
	if ci != want {
		t.Fatalf("got %+v want %+v", ci, want)
	}
}

func TestTightenPicksEarlierPrefix(t *testing.T) {
	ci, err := Tighten(work(
		model.JobSpec{ID: 1, Deadline: 4, Processing: 4},
		model.JobSpec{ID: 2, Deadline: 20, Processing: 5},
	))
	if err != nil {
		t.Fatalf("tighten: %v", err)
	}
	if ci.Start != 0 || ci.K != 0 || ci.Deadline != 4 || ci.MaxDeadline != 20 {
		t.Fatalf("unexpected %+v", ci)
	}
}

func TestTightenDeadlineBeforeStart(t *testing.T) {
	// negative remaining work cannot come from a valid instance; it drives
	// the tight deadline below the critical instant
	_, err := Tighten([]*model.Job{
		{ID: 1, Deadline: 3, Remaining: -10},
		{ID: 2, Deadline: 5, Remaining: 1},
	})
	var ie *InfeasibleError
	if !errors.As(err, &ie) || ie.Reason != ReasonDeadlineBeforeStart {
		t.Fatalf("expected deadline before start, got %v", err)
	}
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible")
	}
}

func TestTightenEmpty(t *testing.T) {
	if _, err := Tighten(nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSegmentLength(t *testing.T) {
	cases := []struct {
		period, maxD, start, want model.Time
	}{
		{10, 10, 4, 6},
		{3, 10, 4, 3},
		{0, 10, 4, 1},
		{-4, 10, 4, 1},
		{5, 10, 10, 1},
	}
	for _, c := range cases {
		if got := SegmentLength(c.period, c.maxD, c.start); got != c.want {
			t.Errorf("SegmentLength(%d,%d,%d)=%d want %d", c.period, c.maxD, c.start, got, c.want)
		}
	}
}

func TestBoundary(t *testing.T) {
	ci := CriticalInstant{Start: 0, Deadline: 4, Delta: 4, MaxDeadline: 20}
	length, segments, u := Boundary(ci, 3)
	if length != 3 || segments != 2 || u != 6 {
		t.Fatalf("got %d %d %d", length, segments, u)
	}
	ci = CriticalInstant{Start: 50, Deadline: 100, Delta: 50, MaxDeadline: 100}
	if _, _, u := Boundary(ci, 20); u != 100 {
		t.Fatalf("boundary must be capped at max deadline, got %d", u)
	}
	ci = CriticalInstant{Start: 5, Deadline: 5, Delta: 0, MaxDeadline: 9}
	if _, segments, u := Boundary(ci, 2); segments != 1 || u != 7 {
		t.Fatalf("zero delta needs one segment, got %d %d", segments, u)
	}
}
