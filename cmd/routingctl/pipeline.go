package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the ingestion/augmentation/graph-build pipeline once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		if err := eng.orchestrator.Run(ctx); err != nil {
			return err
		}
		for _, m := range eng.orchestrator.WorkerMetadata() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", m.ID, m.Status, m.Duration)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the active graph's node/edge counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		stats := eng.graphStore.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "nodes=%d edges=%d version=%s\n", stats.NodeCount, stats.EdgeCount, stats.DatasetVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(statsCmd)
}
