package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/catalog"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

var (
	indexIn   string
	indexStep int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the catalog and store it in PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cars, err := catalog.ReadCatalogFile(indexIn)
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		return runIndex(ctx, cars)
	},
}

func init() {
	indexCmd.Flags().StringVarP(&indexIn, "in", "i", "", "enriched catalog XLSX (required)")
	indexCmd.Flags().IntVar(&indexStep, "step", 0, "cars per step (default SEARCH_INDEX_STEP)")
	_ = indexCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(ctx context.Context, cars []model.Car) error {
	indexer, repo, err := newIndexer(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	step := indexStep
	if step <= 0 {
		step = cfg.Search.IndexStep
	}

	bar := newProgressBar(len(cars), "Indexing")
	report, err := indexer.IndexCars(ctx, cars, step, func(n int) { _ = bar.Add(n) })
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	if report.Failed > 0 {
		logger.Warn().Int("failed", report.Failed).Int("indexed", report.Indexed).Msg("⚠️  Some cars were not indexed")
	} else {
		logger.Info().Int("indexed", report.Indexed).Msg("✅ Catalog indexed")
	}
	return nil
}
