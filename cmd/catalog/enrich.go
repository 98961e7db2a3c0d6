package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/catalog"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

var (
	enrichIn  string
	enrichOut string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Extract attributes and summaries",
	Long:  "Read deduplicated listings, extract structured attributes and description summaries, and write the enriched catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		records, err := catalog.ReadRecordsFile(enrichIn)
		if err != nil {
			return fmt.Errorf("read listings: %w", err)
		}

		cars, err := runEnrich(ctx, records)
		if err != nil {
			return err
		}

		if err := catalog.WriteCatalogFile(enrichOut, cars); err != nil {
			return fmt.Errorf("write catalog: %w", err)
		}
		logger.Info().Str("path", enrichOut).Int("rows", len(cars)).Msg("✅ Catalog written")
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichIn, "in", "i", "", "deduplicated listings XLSX (required)")
	enrichCmd.Flags().StringVarP(&enrichOut, "out", "o", "catalog.xlsx", "output catalog XLSX")
	_ = enrichCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(ctx context.Context, records []model.CandidateRecord) ([]model.Car, error) {
	enricher, c, err := newEnricher(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	bar := newProgressBar(len(records), "Enriching")
	cars, report, err := enricher.Enrich(ctx, records, func() { _ = bar.Add(1) })
	_ = bar.Finish()
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}

	logger.Info().
		Int("total", report.Total).
		Int("patterns", report.FromPatterns).
		Int("model", report.FromModel).
		Int("cache", report.FromCache).
		Int("failed", report.Failed).
		Int("dropped", report.Dropped).
		Int("summary_failed", report.SummaryFailed).
		Msg("Enrichment report")
	return cars, nil
}
