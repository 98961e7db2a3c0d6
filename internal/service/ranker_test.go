package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

func carResult(id string, price, rating, similarity float64) model.CarSearchResult {
	return model.CarSearchResult{
		Car:        model.Car{ID: id, Brand: "Kia", Model: id, Price: price, Rating: rating},
		Similarity: similarity,
	}
}

func TestCalculatePriceScore(t *testing.T) {
	r := NewRanker(0.6, 0.2, 0.2)

	tests := []struct {
		name   string
		price  float64
		budget model.Range
		want   float64
	}{
		{"unknown price", 0, model.Range{Min: 1, Max: 2}, 0.5},
		{"no budget", 1_500_000, model.Unbounded(), 1.0},
		{"midpoint", 1_500_000, model.Range{Min: 1_000_000, Max: 2_000_000}, 1.0},
		{"at bound", 2_000_000, model.Range{Min: 1_000_000, Max: 2_000_000}, 0.0},
		{"over budget", 2_500_000, model.Range{Min: model.RangeFloor, Max: 2_000_000}, 0.0},
		{"ceiling only", 1_000_000, model.Range{Min: model.RangeFloor, Max: 2_000_000}, 0.5},
		{"floor only", 3_000_000, model.Range{Min: 1_000_000, Max: model.RangeCeiling}, 1.0},
		{"exact price", 1_000_000, model.Range{Min: 1_000_000, Max: 1_000_000}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, r.calculatePriceScore(tt.price, tt.budget), 1e-9)
		})
	}
}

func TestRankResultsOrdersByScore(t *testing.T) {
	r := NewRanker(0.6, 0.2, 0.2)
	cars := []model.CarSearchResult{
		carResult("weak", 1_000_000, 5, 0.1),
		carResult("strong", 1_000_000, 9, 0.9),
		carResult("middle", 1_000_000, 9, 0.5),
	}

	ranked := r.RankResults(cars, model.PermissiveFilter())
	require.Len(t, ranked, 3)

	assert.Equal(t, "strong", ranked[0].ID)
	assert.Equal(t, "middle", ranked[1].ID)
	assert.Equal(t, "weak", ranked[2].ID)
	assert.InDelta(t, 0.6*0.9+0.2*0.9+0.2*1.0, ranked[0].Score, 1e-9)

	// input untouched
	assert.Equal(t, "weak", cars[0].ID)
	assert.Zero(t, cars[0].Score)
}

func TestRankResultsKeepsStoreOrderOnTies(t *testing.T) {
	r := NewRanker(0.6, 0.2, 0.2)
	cars := []model.CarSearchResult{
		carResult("a", 0, 9, 0),
		carResult("b", 0, 9, 0),
		carResult("c", 0, 9, 0),
	}

	ranked := r.RankResults(cars, model.PermissiveFilter())
	assert.Equal(t, []string{"a", "b", "c"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

func TestMatchedReasons(t *testing.T) {
	r := NewRanker(0.6, 0.2, 0.2)

	f := model.PermissiveFilter()
	f.Brands = []string{"kia"}
	f.Price = model.Range{Min: 1_000_000, Max: 2_000_000}
	f.Drives = []string{"полный"}

	car := carResult("sportage", 1_500_000, 9, 0.8)
	car.Drive = model.DriveAllWheel

	ranked := r.RankResults([]model.CarSearchResult{car}, f)
	assert.Equal(t, []string{
		ReasonBrandMatch,
		ReasonDriveMatch,
		ReasonPriceMatch,
		ReasonContentRelevant,
		ReasonHighRating,
	}, ranked[0].MatchedReasons)

	plain := r.RankResults([]model.CarSearchResult{carResult("x", 0, 3, 0)}, model.PermissiveFilter())
	assert.Equal(t, []string{ReasonGeneralMatch}, plain[0].MatchedReasons)
}

func TestMatchedReasonsBodyTypeSynonyms(t *testing.T) {
	r := NewRanker(0.6, 0.2, 0.2)

	for _, word := range []string{"внедорожник", "SUV", "кроссовер"} {
		t.Run(word, func(t *testing.T) {
			f := model.PermissiveFilter()
			f.BodyTypes = []string{word}

			car := carResult("sportage", 0, 3, 0)
			car.BodyType = "джип/suv"

			ranked := r.RankResults([]model.CarSearchResult{car}, f)
			assert.Equal(t, []string{ReasonBodyTypeMatch}, ranked[0].MatchedReasons)
		})
	}
}
