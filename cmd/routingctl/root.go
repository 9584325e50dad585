package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:           "routingctl",
	Short:         "Operate the regional routing and risk-scoring engine",
	Long:          `routingctl serves the routing HTTP API, drives the ingestion pipeline, and reports graph diagnostics.`,
	SilenceErrors: true,
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "accepted for every command; no command reads it, output is plain text")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true
	}
}
