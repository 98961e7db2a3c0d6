package service

import (
	"math"
	"slices"
	"sort"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/utils"
)

// Match reason constants
const (
	ReasonContentRelevant   = "Описание соответствует запросу"
	ReasonHighRating        = "Высокий рейтинг"
	ReasonPriceMatch        = "Цена в рамках бюджета"
	ReasonBrandMatch        = "Нужная марка"
	ReasonBodyTypeMatch     = "Нужный тип кузова"
	ReasonTransmissionMatch = "Нужная коробка передач"
	ReasonDriveMatch        = "Нужный привод"
	ReasonGeneralMatch      = "Подходит под фильтр"
)

// ratingScale is the top of the catalog rating scale
const ratingScale = 10.0

// Ranker handles ranking and scoring of search results
type Ranker struct {
	weightSemantic float64
	weightRating   float64
	weightPrice    float64
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weightSemantic, weightRating, weightPrice float64) *Ranker {
	return &Ranker{
		weightSemantic: weightSemantic,
		weightRating:   weightRating,
		weightPrice:    weightPrice,
	}
}

// RankResults scores results and sorts them by score. Ties keep the
// store's order.
func (r *Ranker) RankResults(cars []model.CarSearchResult, f model.SearchFilter) []model.CarSearchResult {
	results := make([]model.CarSearchResult, 0, len(cars))

	for _, car := range cars {
		semantic := clamp01(car.Similarity)
		rating := clamp01(car.Rating / ratingScale)
		price := r.calculatePriceScore(car.Price, f.Price)

		car.Score = r.weightSemantic*semantic + r.weightRating*rating + r.weightPrice*price
		car.MatchedReasons = r.generateMatchedReasons(car.Car, f, semantic, price)
		results = append(results, car)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// calculatePriceScore calculates how well the price matches the budget
func (r *Ranker) calculatePriceScore(price float64, budget model.Range) float64 {
	if price <= 0 {
		return 0.5 // unknown price
	}

	hasMin := budget.Min > model.RangeFloor
	hasMax := budget.Max < model.RangeCeiling

	switch {
	case !hasMin && !hasMax:
		return 1.0
	case price < budget.Min || price > budget.Max:
		return 0.0
	case hasMin && hasMax:
		midpoint := (budget.Min + budget.Max) / 2
		half := (budget.Max - budget.Min) / 2
		if half == 0 {
			return 1.0
		}
		return clamp01(1.0 - math.Abs(price-midpoint)/half)
	case hasMax:
		// closer to the ceiling is better
		return clamp01(price / budget.Max)
	default:
		return 1.0
	}
}

// generateMatchedReasons generates human-readable reasons for why this car matched
func (r *Ranker) generateMatchedReasons(car model.Car, f model.SearchFilter, semantic, price float64) []string {
	reasons := []string{}

	if containsKeyword(utils.KeywordBrand, f.Brands, car.Brand) {
		reasons = append(reasons, ReasonBrandMatch)
	}
	if car.BodyType != "" && containsKeyword(utils.KeywordBodyType, f.BodyTypes, car.BodyType) {
		reasons = append(reasons, ReasonBodyTypeMatch)
	}
	if car.Transmission != model.TransmissionUnknown && len(f.Transmissions) > 0 {
		reasons = append(reasons, ReasonTransmissionMatch)
	}
	if car.Drive != model.DriveUnknown && len(f.Drives) > 0 {
		reasons = append(reasons, ReasonDriveMatch)
	}
	if !f.Price.IsUnbounded() && price > 0.8 {
		reasons = append(reasons, ReasonPriceMatch)
	}
	if semantic > 0.5 {
		reasons = append(reasons, ReasonContentRelevant)
	}
	if car.Rating >= 8.0 {
		reasons = append(reasons, ReasonHighRating)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return reasons
}

// containsKeyword compares filter values and the stored value in the
// catalog vocabulary of field.
func containsKeyword(field string, values []string, v string) bool {
	want := utils.CanonicalKeyword(field, v)
	return slices.ContainsFunc(values, func(s string) bool {
		return utils.CanonicalKeyword(field, s) == want
	})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
