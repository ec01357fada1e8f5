package metrics

import "github.com/kilianp07/plb/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr serves /metrics while a batch runs when not empty.
	PrometheusAddr string `json:"prometheus_addr"`
}
