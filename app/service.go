package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/plb/config"
	"github.com/kilianp07/plb/core/batch"
	coremetrics "github.com/kilianp07/plb/core/metrics"
	"github.com/kilianp07/plb/core/model"
	"github.com/kilianp07/plb/core/planner"
	"github.com/kilianp07/plb/core/runlog"
	"github.com/kilianp07/plb/infra/logger"
	"github.com/kilianp07/plb/infra/metrics"
	_ "github.com/kilianp07/plb/infra/mqtt" // registers the mqtt sink
)

// Service wires the planner to the run log and the metrics sinks described
// by the configuration.
type Service struct {
	Planner  *planner.Planner
	Runner   *batch.Runner
	Store    runlog.LogStore
	sink     coremetrics.MetricsSink
	log      logger.Logger
	promAddr string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logg := logger.New("service")

	store, err := runlog.NewStore(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if cfg.Metrics.PrometheusAddr != "" && !hasPromSink(sink) {
		prom, err := metrics.NewPromSink()
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sink = withSink(sink, prom)
	}

	opts := append(cfg.Planner.Options(), planner.WithLogger(logger.New("planner")))
	p := planner.New(opts...)
	runner := batch.NewRunner(p,
		batch.WithStore(store),
		batch.WithSink(sink),
		batch.WithLogger(logger.New("batch")),
		batch.WithVerify(cfg.Planner.Verify),
	)
	return &Service{
		Planner:  p,
		Runner:   runner,
		Store:    store,
		sink:     sink,
		log:      logg,
		promAddr: cfg.Metrics.PrometheusAddr,
	}, nil
}

func hasPromSink(s coremetrics.MetricsSink) bool {
	switch v := s.(type) {
	case *metrics.PromSink:
		return true
	case *coremetrics.MultiSink:
		for _, inner := range v.Sinks {
			if hasPromSink(inner) {
				return true
			}
		}
	}
	return false
}

func withSink(s, extra coremetrics.MetricsSink) coremetrics.MetricsSink {
	switch v := s.(type) {
	case coremetrics.NopSink:
		return extra
	case *coremetrics.MultiSink:
		return coremetrics.NewMultiSink(append(v.Sinks, extra)...)
	}
	return coremetrics.NewMultiSink(s, extra)
}

// Start serves Prometheus metrics in the background when an address is
// configured. The server stops with ctx.
func (s *Service) Start(ctx context.Context) {
	if s.promAddr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Run plans the instances of one source.
func (s *Service) Run(ctx context.Context, source string, instances []model.Instance) (batch.Result, error) {
	return s.Runner.Run(ctx, source, instances)
}

// Close releases the run log and the sink connections.
func (s *Service) Close() error {
	closeSink(s.sink)
	return s.Store.Close()
}

func closeSink(sink coremetrics.MetricsSink) {
	switch v := sink.(type) {
	case *coremetrics.MultiSink:
		for _, inner := range v.Sinks {
			closeSink(inner)
		}
	case interface{ Disconnect() }:
		v.Disconnect()
	case interface{ Close() }:
		v.Close()
	}
}
