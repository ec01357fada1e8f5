package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/plb/core/batch"
	"github.com/kilianp07/plb/core/runlog"
)

var summaryOpts struct {
	runlog  string
	backend string
	source  string
	period  int64
	jobs    int
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate a run log per (T, N)",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&summaryOpts.runlog, "runlog", "", "run log path")
	f.StringVar(&summaryOpts.backend, "backend", "", "run log backend: jsonl, rotating, sqlite or text")
	f.StringVar(&summaryOpts.source, "source", "", "only runs of this source")
	f.Int64VarP(&summaryOpts.period, "period", "T", 0, "only runs with this segment length")
	f.IntVarP(&summaryOpts.jobs, "n", "n", 0, "only runs with this number of jobs")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rc := cfg.RunLog
	if summaryOpts.runlog != "" {
		rc.Path = summaryOpts.runlog
		if summaryOpts.backend == "" && rc.Backend == "none" {
			rc.Backend = backendFor(summaryOpts.runlog)
		}
	}
	if summaryOpts.backend != "" {
		rc.Backend = summaryOpts.backend
	}
	if rc.Backend == "none" {
		return fmt.Errorf("no run log configured, use --runlog")
	}
	store, err := runlog.NewStore(rc)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	recs, err := store.Query(context.Background(), runlog.LogQuery{
		Source: summaryOpts.source,
		Period: summaryOpts.period,
		Jobs:   summaryOpts.jobs,
	})
	if err != nil {
		return err
	}
	sums := batch.Summarize(recs)
	out := cmd.OutOrStdout()
	if err := batch.WriteSummary(out, sums); err != nil {
		return err
	}
	if c := batch.QuadraticScale(sums); c > 0 {
		_, err = fmt.Fprintf(out, "\nsec ~ %.3e * N^2\n", c)
	}
	return err
}
