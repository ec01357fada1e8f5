// Package batch drives the planner over many independent instances,
// isolating infeasible instances from the rest of the run and reporting
// every outcome to the run log and the metrics sinks.
package batch
