package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/plb/core/planner"
	"github.com/kilianp07/plb/core/report"
	"github.com/kilianp07/plb/infra/logger"
	"github.com/kilianp07/plb/pkg/export"
)

var solveOpts struct {
	format string
	period int64
	index  int
	verify bool
	trace  bool
}

var solveCmd = &cobra.Command{
	Use:   "solve FILE",
	Short: "Plan one instance and print its schedule",
	Long: "Plan one instance read from FILE (\"-\" for stdin) and print the calibration\n" +
		"times and the execution intervals of every job.",
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.StringVarP(&solveOpts.format, "format", "f", "text", "output format: text, json or csv")
	f.Int64VarP(&solveOpts.period, "period", "T", 0, "segment length overriding the instance value")
	f.IntVar(&solveOpts.index, "index", 0, "instance to plan in a multi-instance file")
	f.BoolVar(&solveOpts.verify, "verify", false, "check the schedule before printing it")
	f.BoolVar(&solveOpts.trace, "trace", false, "include the per-round trace in json output")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}
	if cmd.Flags().Changed("period") {
		cfg.Planner.Period = solveOpts.period
	}
	if solveOpts.verify {
		cfg.Planner.Verify = true
	}
	if solveOpts.trace {
		cfg.Planner.Trace = true
	}

	instances, err := readInstances(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if solveOpts.index < 0 || solveOpts.index >= len(instances) {
		return fmt.Errorf("instance %d out of range, file holds %d", solveOpts.index, len(instances))
	}
	in := instances[solveOpts.index]

	opts := append(cfg.Planner.Options(), planner.WithLogger(logger.New("planner")))
	sched, planErr := planner.New(opts...).Plan(ctx, in)
	if planErr == nil && cfg.Planner.Verify {
		planErr = report.Verify(sched, in)
	}
	if !cfg.Planner.Trace {
		sched.Rounds = nil
	}
	if err := export.Write(cmd.OutOrStdout(), sched, solveOpts.format); err != nil {
		return err
	}
	return planErr
}
