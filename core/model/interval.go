package model

import "fmt"

// Interval is the half-open execution range [Start, End).
type Interval struct {
	Start Time `json:"start"`
	End   Time `json:"end"`
}

// Len returns the amount of processing covered by the interval.
func (iv Interval) Len() Time { return iv.End - iv.Start }

// Overlaps reports whether both intervals share at least one time point.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Start, iv.End)
}
