package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/plb/core/metrics"
	"github.com/kilianp07/plb/infra/logger"
)

// PromSink records planning runs in Prometheus metrics.
type PromSink struct {
	instances    *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	calibrations prometheus.Histogram
	rounds       prometheus.Histogram
	jobs         prometheus.Gauge
	batches      *prometheus.CounterVec
}

// NewPromSink registers planning metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.instances, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plb_instances_total",
		Help: "Instances planned, by outcome",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plb_plan_duration_seconds",
		Help:    "Wall time spent planning one instance",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.calibrations, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plb_calibrations",
		Help:    "Calibration points per feasible instance",
		Buckets: prometheus.ExponentialBuckets(1, 2, 16),
	})); err != nil {
		return nil, err
	}
	if s.rounds, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plb_rounds",
		Help:    "Planning rounds per feasible instance",
		Buckets: prometheus.ExponentialBuckets(1, 2, 16),
	})); err != nil {
		return nil, err
	}
	if s.jobs, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plb_jobs_last",
		Help: "Number of jobs in the last planned instance",
	})); err != nil {
		return nil, err
	}
	if s.batches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plb_batches_total",
		Help: "Completed batches, by whether any instance failed",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordRun updates the counters and histograms for one instance.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	outcome := ev.Outcome()
	s.instances.WithLabelValues(outcome).Inc()
	s.duration.WithLabelValues(outcome).Observe(ev.Duration.Seconds())
	s.jobs.Set(float64(ev.Jobs))
	if ev.Feasible {
		s.calibrations.Observe(float64(ev.Calibrations))
		s.rounds.Observe(float64(ev.Rounds))
	}
	return nil
}

// RecordBatch counts completed batches.
func (s *PromSink) RecordBatch(ev coremetrics.BatchEvent) error {
	status := "ok"
	if ev.Failed > 0 {
		status = "failed"
	}
	s.batches.WithLabelValues(status).Inc()
	return nil
}

// StartPromServer serves /metrics on addr until ctx is canceled.
// A dedicated ServeMux is used to avoid interfering with other handlers.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.New("prom-server").Errorf("prom server shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
