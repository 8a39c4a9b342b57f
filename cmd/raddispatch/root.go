package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "raddispatch",
	Short: "Apparent Tardiness Cost distribution engine for radiology worklists",
	Long: `raddispatch assigns pending imaging studies to on-shift doctors using
the Apparent Tardiness Cost heuristic (SPEC_FULL §4). It can run the
distribution loop directly, serve the HTTP API, or run an Asynq worker
that executes scheduled and on-demand distribution jobs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file overriding the defaults")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "postgres", "backing store: \"postgres\" or \"sqlite\"")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
