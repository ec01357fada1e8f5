// Package planner implements preemptive lazy binning.
//
// Each round finds the critical instant t of the active jobs, the latest
// time from which every deadline can still be met, and the job k whose
// deadline makes it tight. Jobs up to k are scheduled EDF in [t, d_k), which
// exactly fits their work, then the remaining jobs run EDF in [d_k, u) where
// the calibration point u lies a whole number of adaptive segments past t.
// Rounds repeat on the unfinished jobs until none is left.
package planner
