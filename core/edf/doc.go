// Package edf runs preemptive earliest-deadline-first sub-schedules over a
// bounded window on a single resource.
//
// All jobs handed to Schedule are available at the window start and their
// deadlines never change, so the job picked at any instant stays the most
// urgent one until it is exhausted or the window closes. Schedule therefore
// runs each pick to completion in one step; Stepwise is the unit-time
// reference that produces the same intervals.
package edf
