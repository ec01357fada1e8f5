package model

import "fmt"

// Time is a point or a duration on the scheduling timeline. Instances are
// integral, so every computation stays exact.
type Time = int64

// JobID identifies a job for the lifetime of a run.
type JobID int

// JobSpec is the immutable description of a job as read from an instance.
type JobSpec struct {
	ID         JobID `json:"id"`
	Release    Time  `json:"release"`
	Deadline   Time  `json:"deadline"`
	Processing Time  `json:"processing"`
}

// Job is the mutable working copy used while planning. Remaining is only
// decreased by the EDF scheduler.
type Job struct {
	ID        JobID
	Deadline  Time
	Remaining Time
}

// NewJob returns a fresh working copy of spec.
func NewJob(spec JobSpec) *Job {
	return &Job{ID: spec.ID, Deadline: spec.Deadline, Remaining: spec.Processing}
}

// Done reports whether the job has no processing left.
func (j *Job) Done() bool { return j.Remaining <= 0 }

// Run consumes up to steps units of processing and returns the amount used.
func (j *Job) Run(steps Time) Time {
	if steps > j.Remaining {
		steps = j.Remaining
	}
	if steps < 0 {
		steps = 0
	}
	j.Remaining -= steps
	return steps
}

func (j *Job) String() string {
	return fmt.Sprintf("job %d (d=%d, p=%d)", j.ID, j.Deadline, j.Remaining)
}
