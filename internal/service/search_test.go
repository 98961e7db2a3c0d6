package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/filter"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

func newTestSearch(store CarStore, embedder Embedder) *SearchService {
	return NewSearchService(store, embedder, NewRanker(0.6, 0.2, 0.2), zerolog.Nop())
}

func TestSearchEmbedsQueryAndTrims(t *testing.T) {
	store := &fakeStore{results: []model.CarSearchResult{
		carResult("a", 1_000_000, 5, 0.1),
		carResult("b", 1_000_000, 9, 0.9),
		carResult("c", 1_000_000, 7, 0.5),
	}}
	embedder := &fakeEmbedder{}

	f := model.PermissiveFilter()
	f.Brands = []string{"Kia"}

	results, err := newTestSearch(store, embedder).Search(context.Background(), "  семейный кроссовер ", f, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, "c", results[1].ID)

	assert.Equal(t, [][]string{{"семейный кроссовер"}}, embedder.calls)
	assert.Equal(t, []int{2 * candidateFactor}, store.limits)
	assert.Equal(t, filter.BuildQuery(f), store.queries[0])
	assert.NotNil(t, store.embeddings[0])
}

func TestSearchWithoutEmbedding(t *testing.T) {
	tests := []struct {
		name     string
		embedder Embedder
		query    string
	}{
		{"no embedder", nil, "кроссовер"},
		{"empty query", &fakeEmbedder{}, "   "},
		{"embedding fails", &fakeEmbedder{err: errors.New("boom")}, "кроссовер"},
		{"api disabled", &fakeEmbedder{err: ErrAPIDisabled}, "кроссовер"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{results: []model.CarSearchResult{carResult("a", 1, 9, 0)}}
			results, err := newTestSearch(store, tt.embedder).Search(context.Background(), tt.query, model.PermissiveFilter(), 3)
			require.NoError(t, err)
			assert.Len(t, results, 1)
			require.Len(t, store.embeddings, 1)
			assert.Nil(t, store.embeddings[0])
		})
	}
}

func TestSearchStoreError(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("db down")}
	_, err := newTestSearch(store, nil).Search(context.Background(), "x", model.PermissiveFilter(), 3)
	assert.EqualError(t, err, "db down")
}

func TestSearchZeroLimit(t *testing.T) {
	store := &fakeStore{}
	results, err := newTestSearch(store, nil).Search(context.Background(), "x", model.PermissiveFilter(), 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, store.queries)
}

func testCars(n int) []model.Car {
	cars := make([]model.Car, n)
	for i := range cars {
		cars[i] = model.Car{ID: fmt.Sprintf("car-%d", i), Brand: "Lada", Model: "Vesta", Description: "седан"}
	}
	return cars
}

func TestIndexCars(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{}
	var steps []int

	report, err := newTestSearch(store, embedder).IndexCars(context.Background(), testCars(25), 10, func(n int) {
		steps = append(steps, n)
	})
	require.NoError(t, err)

	assert.Equal(t, IndexReport{Total: 25, Indexed: 25}, report)
	assert.Equal(t, []int{10, 10, 5}, steps)
	require.Len(t, store.upserted, 3)
	assert.Len(t, store.upserted[2], 5)
	assert.NotEmpty(t, store.upserted[0][0].Embedding.Slice())
	assert.Len(t, embedder.calls, 3)
	assert.Equal(t, "Lada Vesta\nседан", embedder.calls[0][0])
}

func TestIndexCarsSkipsFailedChunks(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: errors.New("rate limited")}

	report, err := newTestSearch(store, embedder).IndexCars(context.Background(), testCars(15), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, IndexReport{Total: 15, Failed: 15}, report)
	assert.Empty(t, store.upserted)
}

func TestIndexCarsWithoutEmbeddings(t *testing.T) {
	store := &fakeStore{}

	report, err := newTestSearch(store, &fakeEmbedder{err: ErrAPIDisabled}).IndexCars(context.Background(), testCars(3), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)
	require.Len(t, store.upserted, 1)
	assert.Empty(t, store.upserted[0][0].Embedding.Slice())
}

func TestIndexCarsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestSearch(&fakeStore{}, nil).IndexCars(ctx, testCars(3), 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Indexed)
}

func TestEmbeddingText(t *testing.T) {
	c := model.Car{Brand: "Kia", Model: "Rio", Description: " надежный ", Summary: "экономичный"}
	assert.Equal(t, "Kia Rio\nнадежный\nэкономичный", EmbeddingText(c))
	assert.Equal(t, "Kia", EmbeddingText(model.Car{Brand: "Kia"}))
}
