package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/plb/app"
	"github.com/kilianp07/plb/core/batch"
	"github.com/kilianp07/plb/infra/logger"
)

var batchOpts struct {
	runlog      string
	backend     string
	metricsAddr string
	period      int64
	verify      bool
}

var batchCmd = &cobra.Command{
	Use:   "batch FILE...",
	Short: "Plan every instance of the given files",
	Long: "Plan every instance of the given files, record one run per instance and\n" +
		"print the mean time and calibration count per (T, N) group.",
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchOpts.runlog, "runlog", "", "run log path")
	f.StringVar(&batchOpts.backend, "backend", "", "run log backend: jsonl, rotating, sqlite, text or none")
	f.StringVar(&batchOpts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.Int64VarP(&batchOpts.period, "period", "T", 0, "segment length overriding the instance values")
	f.BoolVar(&batchOpts.verify, "verify", false, "check every feasible schedule")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchOpts.backend != "" {
		cfg.RunLog.Backend = batchOpts.backend
		if batchOpts.runlog == "" {
			cfg.RunLog.Path = ""
		}
	}
	if batchOpts.runlog != "" {
		cfg.RunLog.Path = batchOpts.runlog
		if batchOpts.backend == "" && cfg.RunLog.Backend == "none" {
			cfg.RunLog.Backend = backendFor(batchOpts.runlog)
		}
	}
	if batchOpts.metricsAddr != "" {
		cfg.Metrics.PrometheusAddr = batchOpts.metricsAddr
	}
	if cmd.Flags().Changed("period") {
		cfg.Planner.Period = batchOpts.period
	}
	if batchOpts.verify {
		cfg.Planner.Verify = true
	}
	cfg.RunLog.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)

	var all batch.Result
	for _, path := range args {
		instances, err := readInstances(path, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		res, err := svc.Run(ctx, path, instances)
		all.Outcomes = append(all.Outcomes, res.Outcomes...)
		all.Infeasible += res.Infeasible
		all.Failed += res.Failed
		all.Duration += res.Duration
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	sums := batch.Summarize(all.Records())
	if err := batch.WriteSummary(out, sums); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "\n%d instances, %d infeasible, %d failed in %s\n",
		len(all.Outcomes), all.Infeasible, all.Failed, all.Duration); err != nil {
		return err
	}
	if all.Failed > 0 {
		return fmt.Errorf("%d instances failed", all.Failed)
	}
	return nil
}

// backendFor guesses the run log backend from the file extension.
func backendFor(path string) string {
	switch filepath.Ext(path) {
	case ".db", ".sqlite":
		return "sqlite"
	case ".txt", ".log":
		return "text"
	default:
		return "jsonl"
	}
}
