package service

import (
	"context"
	"errors"
	"sync"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/dialogue"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

type fakeStore struct {
	mu sync.Mutex

	results   []model.CarSearchResult
	searchErr error
	upsertErr error

	queries    []model.BoolQuery
	embeddings [][]float32
	limits     []int
	upserted   [][]model.Car
	logs       []model.SearchLog
}

func (s *fakeStore) SearchCars(_ context.Context, q model.BoolQuery, embedding []float32, limit int) ([]model.CarSearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	s.embeddings = append(s.embeddings, embedding)
	s.limits = append(s.limits, limit)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	out := append([]model.CarSearchResult(nil), s.results...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) GetCarByID(_ context.Context, id string) (*model.Car, error) {
	for _, r := range s.results {
		if r.ID == id {
			c := r.Car
			return &c, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeStore) UpsertCars(_ context.Context, cars []model.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, append([]model.Car(nil), cars...))
	return nil
}

func (s *fakeStore) BatchUpdateEmbeddings(_ context.Context, items []model.EmbeddingItem) (int, []string) {
	return len(items), nil
}

func (s *fakeStore) LogSearch(_ context.Context, entry model.SearchLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	return nil
}

func (s *fakeStore) LogFeedback(context.Context, string, string, string) error {
	return nil
}

func (s *fakeStore) searchLogs() []model.SearchLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SearchLog(nil), s.logs...)
}

type fakeEmbedder struct {
	err   error
	calls [][]string
}

func (e *fakeEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	e.calls = append(e.calls, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len([]rune(t)))}
	}
	return out, nil
}

// dialogueCompleter answers the decision conversation with decision and
// the filter conversation with filterReply.
type dialogueCompleter struct {
	mu          sync.Mutex
	decision    string
	filterReply string
	filterErr   error
	filterCalls []string
}

func (c *dialogueCompleter) Complete(_ context.Context, messages []model.ChatMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if messages[0].Content == dialogue.FilterPrompt {
		c.filterCalls = append(c.filterCalls, messages[len(messages)-1].Content)
		if c.filterErr != nil {
			return "", c.filterErr
		}
		return c.filterReply, nil
	}
	return c.decision, nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
