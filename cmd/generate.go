package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/plb/core/generator"
	"github.com/kilianp07/plb/infra/logger"
	"github.com/kilianp07/plb/pkg/instance"
)

var generateOpts struct {
	n      int
	count  int
	period int64
	pMin   int64
	pMax   int64
	dRatio float64
	seed   uint64
	out    string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write random instances",
	Long: "Write random instances where every job is released at 0. Processing\n" +
		"times are drawn in [pmin, pmax] and deadlines in [2*pmax, N*(pmin+pmax)/2*d-ratio].",
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&generateOpts.n, "n", "n", 0, "jobs per instance")
	f.IntVarP(&generateOpts.count, "count", "k", 1, "number of instances")
	f.Int64VarP(&generateOpts.period, "period", "T", 0, "segment length, 0 for ceil(log2 n)")
	f.Int64Var(&generateOpts.pMin, "pmin", 1, "minimum processing time")
	f.Int64Var(&generateOpts.pMax, "pmax", 100, "maximum processing time")
	f.Float64Var(&generateOpts.dRatio, "d-ratio", 1.5, "deadline stretch relative to the expected total work")
	f.Uint64Var(&generateOpts.seed, "seed", 0, "random seed")
	f.StringVarP(&generateOpts.out, "out", "o", "-", "output file, - for stdout")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gc := cfg.Generator
	flags := cmd.Flags()
	if flags.Changed("n") {
		gc.N = generateOpts.n
	}
	if flags.Changed("count") || cfgPath == "" {
		gc.Count = generateOpts.count
	}
	if flags.Changed("period") {
		gc.Period = generateOpts.period
	}
	if flags.Changed("pmin") {
		gc.PMin = generateOpts.pMin
	}
	if flags.Changed("pmax") {
		gc.PMax = generateOpts.pMax
	}
	if flags.Changed("d-ratio") {
		gc.DRatio = generateOpts.dRatio
	}
	if flags.Changed("seed") {
		gc.Seed = generateOpts.seed
	}
	if gc.N <= 0 {
		return fmt.Errorf("--n must be positive")
	}

	gen, err := generator.New(gc.Params)
	if err != nil {
		return err
	}
	w, err := createOutput(generateOpts.out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	for i := 0; i < gc.Count; i++ {
		if err := instance.Write(w, gen.Next()); err != nil {
			return err
		}
	}
	lo, hi := gc.DeadlineRange()
	logger.New("generate").Infof("wrote %d instances of %d jobs, deadlines in [%d, %d]", gc.Count, gc.N, lo, hi)
	return w.Close()
}
