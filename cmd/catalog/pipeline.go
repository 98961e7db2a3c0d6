package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/catalog"
)

var (
	pipelineIn        string
	pipelineOut       string
	pipelineSkipIndex bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run dedup, enrich and index in one go",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		records, err := catalog.ReadRecordsFile(pipelineIn)
		if err != nil {
			return fmt.Errorf("read listings: %w", err)
		}

		kept, err := runDedup(ctx, records)
		if err != nil {
			return err
		}

		cars, err := runEnrich(ctx, kept)
		if err != nil {
			return err
		}

		if pipelineOut != "" {
			if err := catalog.WriteCatalogFile(pipelineOut, cars); err != nil {
				return fmt.Errorf("write catalog: %w", err)
			}
			logger.Info().Str("path", pipelineOut).Int("rows", len(cars)).Msg("✅ Catalog written")
		}

		if pipelineSkipIndex {
			return nil
		}
		return runIndex(ctx, cars)
	},
}

func init() {
	pipelineCmd.Flags().StringVarP(&pipelineIn, "in", "i", "", "raw listings XLSX (required)")
	pipelineCmd.Flags().StringVarP(&pipelineOut, "out", "o", "catalog.xlsx", "catalog XLSX to keep, empty to skip")
	pipelineCmd.Flags().IntVar(&indexStep, "step", 0, "cars per indexing step (default SEARCH_INDEX_STEP)")
	pipelineCmd.Flags().BoolVar(&pipelineSkipIndex, "skip-index", false, "stop after writing the catalog")
	_ = pipelineCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(pipelineCmd)
}
