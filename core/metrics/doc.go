// Package metrics defines the sinks recording planning runs. Sinks like
// PromSink and InfluxSink live in infra/metrics and register themselves by
// type name; NewMetricsSink builds them from configuration and wraps several
// of them in a MultiSink.
package metrics
