// Package dedup removes near-duplicate listings scraped from several sources.
package dedup

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/similarity"
)

// Config holds the duplicate thresholds
type Config struct {
	TextThreshold  float64 // text similarity above which records may be duplicates
	ImageThreshold float64 // image similarity above which records are duplicates
	PriceTolerance float64 // relative price gap under which text-similar records merge
	MaxFeatures    int
	MaxImages      int
	Workers        int
}

// DefaultConfig returns the thresholds used for the drom.ru catalog
func DefaultConfig() Config {
	return Config{
		TextThreshold:  0.65,
		ImageThreshold: 0.30,
		PriceTolerance: 0.15,
		MaxFeatures:    similarity.DefaultMaxFeatures,
		MaxImages:      similarity.DefaultMaxImages,
		Workers:        4,
	}
}

// Reason explains why a record was removed
type Reason string

const (
	ReasonImages Reason = "images"
	ReasonText   Reason = "text"
)

// Removal records one dropped listing and the kept listing it duplicates
type Removal struct {
	Removed model.CandidateRecord
	KeptID  string
	Reason  Reason
	Score   similarity.Score
}

// Report summarizes a deduplication run
type Report struct {
	Input        int           `json:"input"`
	Kept         int           `json:"kept"`
	Removed      int           `json:"removed"`
	Groups       int           `json:"groups"`
	Singletons   int           `json:"singletons"`
	ByImages     int           `json:"by_images"`
	ByText       int           `json:"by_text"`
	PriceGuarded int           `json:"price_guarded"`
	Took         time.Duration `json:"took"`
	Removals     []Removal     `json:"-"`
}

// Resolver deduplicates candidate records group by group
type Resolver struct {
	cfg    Config
	logger zerolog.Logger
}

// NewResolver creates a resolver
func NewResolver(cfg Config, logger zerolog.Logger) *Resolver {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Resolver{
		cfg:    cfg,
		logger: logger.With().Str("component", "dedup").Logger(),
	}
}

type groupKey struct {
	brand string
	model string
}

type groupResult struct {
	kept         []model.CandidateRecord
	removals     []Removal
	priceGuarded int
}

// Resolve partitions records by exact (brand, model), keeps one representative
// per duplicate cluster and returns the survivors. Groups are processed
// concurrently; output keeps groups in order of first appearance and records
// in input order within a group.
func (r *Resolver) Resolve(ctx context.Context, records []model.CandidateRecord) ([]model.CandidateRecord, Report, error) {
	start := time.Now()
	groups := partition(records)
	report := Report{Input: len(records), Groups: len(groups)}

	results := make([]groupResult, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, group := range groups {
		if len(group) == 1 {
			results[i] = groupResult{kept: group}
			report.Singletons++
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.resolveGroup(group)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	out := make([]model.CandidateRecord, 0, len(records))
	for _, res := range results {
		out = append(out, res.kept...)
		report.Removals = append(report.Removals, res.removals...)
		report.PriceGuarded += res.priceGuarded
	}
	for _, rm := range report.Removals {
		switch rm.Reason {
		case ReasonImages:
			report.ByImages++
		case ReasonText:
			report.ByText++
		}
	}
	report.Kept = len(out)
	report.Removed = len(report.Removals)
	report.Took = time.Since(start)

	r.logger.Info().
		Int("input", report.Input).
		Int("kept", report.Kept).
		Int("removed", report.Removed).
		Int("groups", report.Groups).
		Dur("took", report.Took).
		Msg("deduplication finished")
	return out, report, nil
}

// resolveGroup runs the greedy single pass: each kept record i removes every
// later, not yet removed record j that duplicates it. Removed records are
// never compared again, so duplicate chains are not merged transitively.
func (r *Resolver) resolveGroup(group []model.CandidateRecord) groupResult {
	descriptions := make([]string, len(group))
	images := make([][]string, len(group))
	for i, rec := range group {
		descriptions[i] = rec.Description
		images[i] = rec.Images
	}
	sims := similarity.NewGroup(descriptions, images, r.cfg.MaxFeatures, r.cfg.MaxImages)

	var res groupResult
	removed := make([]bool, len(group))
	for i := range group {
		if removed[i] {
			continue
		}
		res.kept = append(res.kept, group[i])

		for j := i + 1; j < len(group); j++ {
			if removed[j] {
				continue
			}
			score := sims.Score(i, j)

			if score.Image > r.cfg.ImageThreshold {
				removed[j] = true
				res.removals = append(res.removals, Removal{Removed: group[j], KeptID: group[i].ID, Reason: ReasonImages, Score: score})
				continue
			}
			if score.Text <= r.cfg.TextThreshold {
				continue
			}
			if r.pricesDiverge(group[i].Price(), group[j].Price()) {
				res.priceGuarded++
				continue
			}
			removed[j] = true
			res.removals = append(res.removals, Removal{Removed: group[j], KeptID: group[i].ID, Reason: ReasonText, Score: score})
		}
	}

	r.logger.Debug().
		Str("brand", group[0].Brand).
		Str("model", group[0].Model).
		Int("size", len(group)).
		Int("kept", len(res.kept)).
		Msg("group resolved")
	return res
}

// pricesDiverge reports whether the gap exceeds the tolerance relative to the
// kept record's price.
func (r *Resolver) pricesDiverge(kept, candidate float64) bool {
	return math.Abs(kept-candidate) > kept*r.cfg.PriceTolerance
}

// partition groups records by exact (brand, model) in order of first appearance.
func partition(records []model.CandidateRecord) [][]model.CandidateRecord {
	index := map[groupKey]int{}
	var groups [][]model.CandidateRecord
	for _, rec := range records {
		key := groupKey{brand: rec.Brand, model: rec.Model}
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], rec)
	}
	return groups
}

