package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/filter"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/repository"
)

// CarStore is the document store the search service reads and indexes into
type CarStore interface {
	SearchCars(ctx context.Context, q model.BoolQuery, embedding []float32, limit int) ([]model.CarSearchResult, error)
	GetCarByID(ctx context.Context, id string) (*model.Car, error)
	UpsertCars(ctx context.Context, cars []model.Car) error
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
	LogSearch(ctx context.Context, entry model.SearchLog) error
	LogFeedback(ctx context.Context, searchID, carID, action string) error
}

var _ CarStore = (*repository.PostgresRepository)(nil)

// candidateFactor is how many store hits are fetched per requested result
// so the ranker has something to reorder.
const candidateFactor = 3

// SearchService handles search business logic
type SearchService struct {
	repo     CarStore
	embedder Embedder
	ranker   *Ranker
	logger   zerolog.Logger
}

// NewSearchService creates a new search service. embedder may be nil, in
// which case searches are ordered by rating.
func NewSearchService(repo CarStore, embedder Embedder, ranker *Ranker, logger zerolog.Logger) *SearchService {
	return &SearchService{
		repo:     repo,
		embedder: embedder,
		ranker:   ranker,
		logger:   logger.With().Str("component", "search").Logger(),
	}
}

// Search returns up to limit cars satisfying f, ordered by how well they
// match query.
func (s *SearchService) Search(ctx context.Context, query string, f model.SearchFilter, limit int) ([]model.CarSearchResult, error) {
	if limit <= 0 {
		return []model.CarSearchResult{}, nil
	}

	embedding := s.embedQuery(ctx, query)

	cars, err := s.repo.SearchCars(ctx, filter.BuildQuery(f), embedding, limit*candidateFactor)
	if err != nil {
		return nil, err
	}

	results := s.ranker.RankResults(cars, f)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// embedQuery returns nil when the query cannot be embedded; the search then
// falls back to rating order.
func (s *SearchService) embedQuery(ctx context.Context, query string) []float32 {
	query = strings.TrimSpace(query)
	if s.embedder == nil || query == "" {
		return nil
	}

	vectors, err := s.embedder.CreateEmbeddings(ctx, []string{query})
	if err != nil {
		if !errors.Is(err, ErrAPIDisabled) {
			s.logger.Warn().Err(err).Msg("Query embedding failed, ordering by rating")
		}
		return nil
	}
	if len(vectors) == 0 {
		return nil
	}
	return vectors[0]
}

// GetCar retrieves a single car by ID
func (s *SearchService) GetCar(ctx context.Context, id string) (*model.Car, error) {
	return s.repo.GetCarByID(ctx, id)
}

// UpdateEmbeddings updates embeddings for multiple cars
func (s *SearchService) UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	return s.repo.BatchUpdateEmbeddings(ctx, items)
}

// LogSearch records a result set shown to a user
func (s *SearchService) LogSearch(ctx context.Context, entry model.SearchLog) error {
	return s.repo.LogSearch(ctx, entry)
}

// LogFeedback logs user feedback/action
func (s *SearchService) LogFeedback(ctx context.Context, searchID, carID, action string) error {
	return s.repo.LogFeedback(ctx, searchID, carID, action)
}

// IndexReport summarizes an indexing run
type IndexReport struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// IndexCars embeds and stores cars in chunks of step. A failed chunk is
// logged and skipped. onStep, if set, is called with the size of every
// processed chunk.
func (s *SearchService) IndexCars(ctx context.Context, cars []model.Car, step int, onStep func(n int)) (IndexReport, error) {
	if step <= 0 {
		step = 10
	}
	report := IndexReport{Total: len(cars)}

	for start := 0; start < len(cars); start += step {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := min(start+step, len(cars))
		chunk := append([]model.Car(nil), cars[start:end]...)

		if err := s.indexChunk(ctx, chunk); err != nil {
			s.logger.Error().Err(err).Int("from", start).Int("to", end).Msg("Failed to index chunk")
			report.Failed += len(chunk)
		} else {
			report.Indexed += len(chunk)
		}

		if onStep != nil {
			onStep(len(chunk))
		}
	}

	s.logger.Info().
		Int("total", report.Total).
		Int("indexed", report.Indexed).
		Int("failed", report.Failed).
		Msg("Indexing finished")
	return report, nil
}

func (s *SearchService) indexChunk(ctx context.Context, chunk []model.Car) error {
	if s.embedder != nil {
		texts := make([]string, len(chunk))
		for i, c := range chunk {
			texts[i] = EmbeddingText(c)
		}

		vectors, err := s.embedder.CreateEmbeddings(ctx, texts)
		switch {
		case errors.Is(err, ErrAPIDisabled):
		case err != nil:
			return fmt.Errorf("embed: %w", err)
		case len(vectors) != len(chunk):
			return fmt.Errorf("embed: got %d vectors for %d cars", len(vectors), len(chunk))
		default:
			for i := range chunk {
				chunk[i].Embedding = pgvector.NewVector(vectors[i])
			}
		}
	}

	if err := s.repo.UpsertCars(ctx, chunk); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// EmbeddingText is the text a car is embedded under.
func EmbeddingText(c model.Car) string {
	parts := []string{strings.TrimSpace(c.Brand + " " + c.Model)}
	for _, p := range []string{c.Description, c.Summary} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
