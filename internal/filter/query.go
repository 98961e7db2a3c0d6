package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/utils"
)

// Numeric document fields
const (
	DocStartYear       = "start_year"
	DocEndYear         = "end_year"
	DocPrice           = "price"
	DocFuelConsumption = "fuel_consumption"
	DocSeats           = "seats"
	DocDoors           = "doors"
	DocHorsepower      = "horsepower"
	DocClearance       = "clearance"
)

// BuildQuery turns a filter into the nested bool query consumed by the car
// store. Clause order is fixed; empty keyword lists produce empty should
// groups, which match everything.
func BuildQuery(f model.SearchFilter) model.BoolQuery {
	return model.BoolQuery{Must: []model.Clause{
		rangeClause(DocStartYear, &f.Year.Min, nil),
		rangeClause(DocEndYear, nil, &f.Year.Max),
		rangeClause(DocPrice, &f.Price.Min, &f.Price.Max),
		shouldClause(utils.KeywordBrand, f.Brands),
		shouldClause(utils.KeywordCountry, f.Countries),
		shouldClause(utils.KeywordDrive, f.Drives),
		shouldClause(utils.KeywordEngineType, f.EngineTypes),
		rangeClause(DocFuelConsumption, &f.FuelConsumption.Min, &f.FuelConsumption.Max),
		rangeClause(DocSeats, &f.Seats.Min, &f.Seats.Max),
		shouldClause(utils.KeywordBodyType, f.BodyTypes),
		rangeClause(DocDoors, &f.Doors.Min, &f.Doors.Max),
		shouldClause(utils.KeywordTransmission, f.Transmissions),
		rangeClause(DocHorsepower, &f.Horsepower.Min, &f.Horsepower.Max),
		rangeClause(DocClearance, &f.Clearance.Min, &f.Clearance.Max),
	}}
}

func rangeClause(field string, gte, lte *float64) model.Clause {
	c := &model.RangeClause{Field: field}
	if gte != nil {
		v := *gte
		c.Gte = &v
	}
	if lte != nil {
		v := *lte
		c.Lte = &v
	}
	return model.Clause{Range: c}
}

func shouldClause(field string, values []string) model.Clause {
	c := &model.ShouldClause{Field: field, Matches: []model.MatchClause{}}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		q := utils.CanonicalKeyword(field, v)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		c.Matches = append(c.Matches, model.MatchClause{
			Field:    field,
			Query:    q,
			Analyzer: model.AnalyzerKeywordLowercase,
		})
	}
	return model.Clause{Should: c}
}

// Format renders a filter back into the template Parse reads.
func Format(f model.SearchFilter) string {
	var b strings.Builder
	line := func(field, value string) {
		fmt.Fprintf(&b, "%s - %s\n", field, value)
	}
	line(FieldYear, formatRange(f.Year))
	line(FieldMinPrice, formatBound(f.Price.Min, model.RangeFloor))
	line(FieldMaxPrice, formatBound(f.Price.Max, model.RangeCeiling))
	line(FieldBrand, formatList(f.Brands))
	line(FieldCountry, formatList(f.Countries))
	line(FieldDrive, formatList(f.Drives))
	line(FieldEngineType, formatList(f.EngineTypes))
	line(FieldFuelConsumption, formatRange(f.FuelConsumption))
	line(FieldSeats, formatRange(f.Seats))
	line(FieldBodyType, formatList(f.BodyTypes))
	line(FieldDoors, formatRange(f.Doors))
	line(FieldTransmission, formatList(f.Transmissions))
	line(FieldHorsepower, formatRange(f.Horsepower))
	line(FieldClearance, formatRange(f.Clearance))
	return strings.TrimSuffix(b.String(), "\n")
}

func formatRange(r model.Range) string {
	return fmt.Sprintf("от %s, до %s", formatBound(r.Min, model.RangeFloor), formatBound(r.Max, model.RangeCeiling))
}

func formatBound(v, sentinel float64) string {
	if v == sentinel {
		return NaN
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return NaN
	}
	return strings.Join(items, ", ")
}
