package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/plb/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "plb",
	Short:         "Preemptive lazy binning planner",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the file given by --config, or returns defaults.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
