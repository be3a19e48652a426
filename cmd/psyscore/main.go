// Package main provides the psyscore CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}

	rootCmd := &cobra.Command{
		Use:   "psyscore",
		Short: "Psychometric scoring for pre-assessment questionnaires",
		Long: `psyscore scores standardized screening questionnaires, classifies severity,
and encodes answers into the fixed-length feature vector used by the matching model.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config file (default: discover .psyscore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.catalogPath, "catalog", "", "Path to an instrument catalog YAML (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&g.lengthPolicy, "length-policy", "", "Answer length policy: tolerant or strict")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newInstrumentsCmd(g),
		newScoreCmd(g),
		newEncodeCmd(g),
		newRescoreCmd(g),
		newValidateCmd(g),
	)
	return rootCmd
}
