package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/catalog"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

var (
	dedupIn  string
	dedupOut string
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Drop near-duplicate listings",
	Long:  "Read raw listings, keep one representative per duplicate cluster and write the survivors.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		records, err := catalog.ReadRecordsFile(dedupIn)
		if err != nil {
			return fmt.Errorf("read listings: %w", err)
		}

		kept, err := runDedup(ctx, records)
		if err != nil {
			return err
		}

		if err := catalog.WriteRecordsFile(dedupOut, kept); err != nil {
			return fmt.Errorf("write listings: %w", err)
		}
		logger.Info().Str("path", dedupOut).Int("rows", len(kept)).Msg("✅ Deduplicated listings written")
		return nil
	},
}

func init() {
	dedupCmd.Flags().StringVarP(&dedupIn, "in", "i", "", "raw listings XLSX (required)")
	dedupCmd.Flags().StringVarP(&dedupOut, "out", "o", "dedup.xlsx", "output XLSX")
	_ = dedupCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(dedupCmd)
}

func runDedup(ctx context.Context, records []model.CandidateRecord) ([]model.CandidateRecord, error) {
	kept, report, err := newResolver().Resolve(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}

	logger.Info().
		Int("input", report.Input).
		Int("kept", report.Kept).
		Int("removed", report.Removed).
		Int("by_images", report.ByImages).
		Int("by_text", report.ByText).
		Int("price_guarded", report.PriceGuarded).
		Dur("took", report.Took).
		Msg("Deduplication finished")

	for _, r := range report.Removals {
		logger.Debug().
			Str("removed", r.Removed.ID).
			Str("kept", r.KeptID).
			Str("reason", string(r.Reason)).
			Msg("Duplicate dropped")
	}
	return kept, nil
}

