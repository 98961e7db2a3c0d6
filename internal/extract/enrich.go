package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/cache"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

// EnricherConfig controls the enrichment pool
type EnricherConfig struct {
	Workers       int
	Summaries     bool
	DefaultRating float64
	DropFailed    bool          // drop records whose extraction failed instead of keeping empty attributes
	CacheTTL      time.Duration // zero keeps cached attributes forever
}

// DefaultEnricherConfig mirrors the production batch settings
func DefaultEnricherConfig() EnricherConfig {
	return EnricherConfig{
		Workers:       5,
		Summaries:     true,
		DefaultRating: 9.0,
	}
}

// EnrichReport counts what happened to each record
type EnrichReport struct {
	Total         int `json:"total"`
	FromPatterns  int `json:"from_patterns"`
	FromModel     int `json:"from_model"`
	FromCache     int `json:"from_cache"`
	Failed        int `json:"failed"`
	Dropped       int `json:"dropped"`
	SummaryFailed int `json:"summary_failed"`
}

// Enricher turns deduplicated records into catalog entries
type Enricher struct {
	extractor *Extractor
	cache     cache.Client
	cfg       EnricherConfig
	logger    zerolog.Logger
}

// NewEnricher creates an enricher. cache may be nil.
func NewEnricher(extractor *Extractor, c cache.Client, cfg EnricherConfig, logger zerolog.Logger) *Enricher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Enricher{
		extractor: extractor,
		cache:     c,
		cfg:       cfg,
		logger:    logger.With().Str("component", "enricher").Logger(),
	}
}

// Enrich extracts attributes and summaries for every record on a bounded
// worker pool. A record's failure never aborts the batch; only context
// cancellation does. Output order follows input order. onDone, if set, is
// called once per finished record.
func (en *Enricher) Enrich(ctx context.Context, records []model.CandidateRecord, onDone func()) ([]model.Car, EnrichReport, error) {
	report := EnrichReport{Total: len(records)}
	cars := make([]model.Car, len(records))
	failed := make([]bool, len(records))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(en.cfg.Workers)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := en.enrichOne(ctx, rec)
			if err := ctx.Err(); err != nil {
				return err
			}

			mu.Lock()
			cars[i] = res.car
			switch {
			case res.err != nil:
				report.Failed++
				failed[i] = true
			case res.source == SourcePatterns:
				report.FromPatterns++
			case res.source == SourceModel:
				report.FromModel++
			case res.source == SourceCache:
				report.FromCache++
			}
			if res.summaryErr != nil {
				report.SummaryFailed++
			}
			mu.Unlock()

			if res.err != nil {
				en.logger.Warn().Err(res.err).Str("id", res.car.ID).Str("brand", res.car.Brand).Str("model", res.car.Model).Msg("attribute extraction failed")
			}
			if onDone != nil {
				onDone()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	out := cars[:0]
	for i, car := range cars {
		if failed[i] && en.cfg.DropFailed {
			report.Dropped++
			continue
		}
		out = append(out, car)
	}

	en.logger.Info().
		Int("total", report.Total).
		Int("patterns", report.FromPatterns).
		Int("model", report.FromModel).
		Int("cache", report.FromCache).
		Int("failed", report.Failed).
		Msg("enrichment finished")
	return out, report, nil
}

type outcome struct {
	car        model.Car
	source     Source
	err        error
	summaryErr error
}

func (en *Enricher) enrichOne(ctx context.Context, rec model.CandidateRecord) outcome {
	car := model.Car{
		Number:      rec.Number,
		ID:          rec.ID,
		Brand:       rec.Brand,
		Model:       rec.Model,
		Description: rec.Description,
		Images:      model.JSONArray(rec.Images),
		Price:       rec.Price(),
		Rating:      en.cfg.DefaultRating,
	}
	if car.ID == "" {
		car.ID = uuid.NewString()
	}
	if rec.Rating != nil {
		car.Rating = *rec.Rating
	}

	attrs, source, err := en.attributes(ctx, rec.Description)
	car.CarAttributes = attrs

	var summaryErr error
	if en.cfg.Summaries {
		var s Summary
		s, summaryErr = en.extractor.Summarize(ctx, rec.Description)
		if summaryErr != nil {
			en.logger.Debug().Err(summaryErr).Str("id", car.ID).Msg("summary skipped")
		}
		car.Summary, car.Pros, car.Cons = s.Description, s.Pros, s.Cons
	}
	return outcome{car: car, source: source, err: err, summaryErr: summaryErr}
}

func (en *Enricher) attributes(ctx context.Context, description string) (model.CarAttributes, Source, error) {
	key := cacheKey(description)
	if en.cache != nil {
		if data, err := en.cache.Get(ctx, key); err == nil {
			var attrs model.CarAttributes
			if json.Unmarshal(data, &attrs) == nil {
				return attrs, SourceCache, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			en.logger.Debug().Err(err).Msg("attribute cache unavailable")
		}
	}

	res, err := en.extractor.Extract(ctx, description)
	if err != nil {
		return model.CarAttributes{}, res.Source, err
	}

	if en.cache != nil {
		if data, err := json.Marshal(res.Attributes); err == nil {
			if err := en.cache.Set(ctx, key, data, en.cfg.CacheTTL); err != nil {
				en.logger.Debug().Err(err).Msg("attribute cache write failed")
			}
		}
	}
	return res.Attributes, res.Source, nil
}

func cacheKey(description string) string {
	sum := sha256.Sum256([]byte(description))
	return "attrs:" + hex.EncodeToString(sum[:])
}
