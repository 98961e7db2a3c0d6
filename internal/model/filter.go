package model

import (
	"encoding/json"
)

// Range bounds used whenever a bound is absent or unparseable.
const (
	RangeFloor   float64 = 0
	RangeCeiling float64 = 1_000_000_000
)

// Range is a closed numeric interval. Both bounds are always set.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Unbounded returns the maximally permissive range.
func Unbounded() Range {
	return Range{Min: RangeFloor, Max: RangeCeiling}
}

// IsUnbounded reports whether the range places no constraint.
func (r Range) IsUnbounded() bool {
	return r.Min <= RangeFloor && r.Max >= RangeCeiling
}

// SearchFilter is the structured query built from one dialogue turn.
type SearchFilter struct {
	Year            Range `json:"year"`
	Price           Range `json:"price"`
	FuelConsumption Range `json:"fuel_consumption"`
	Seats           Range `json:"seats"`
	Doors           Range `json:"doors"`
	Horsepower      Range `json:"horsepower"`
	Clearance       Range `json:"clearance"`

	Brands        []string `json:"brands"`
	Countries     []string `json:"countries"`
	Drives        []string `json:"drives"`
	EngineTypes   []string `json:"engine_types"`
	BodyTypes     []string `json:"body_types"`
	Transmissions []string `json:"transmissions"`
}

// PermissiveFilter returns a filter that constrains nothing.
func PermissiveFilter() SearchFilter {
	return SearchFilter{
		Year:            Unbounded(),
		Price:           Unbounded(),
		FuelConsumption: Unbounded(),
		Seats:           Unbounded(),
		Doors:           Unbounded(),
		Horsepower:      Unbounded(),
		Clearance:       Unbounded(),
		Brands:          []string{},
		Countries:       []string{},
		Drives:          []string{},
		EngineTypes:     []string{},
		BodyTypes:       []string{},
		Transmissions:   []string{},
	}
}

// AnalyzerKeywordLowercase matches a keyword field case-insensitively as a whole value.
const AnalyzerKeywordLowercase = "keyword_lowercase"

// BoolQuery is the nested boolean filter handed to the car store:
// every Must clause has to hold.
type BoolQuery struct {
	Must []Clause `json:"must"`
}

// Clause is either a numeric range or a keyword should-group.
type Clause struct {
	Range  *RangeClause  `json:"range,omitempty"`
	Should *ShouldClause `json:"bool,omitempty"`
}

// RangeClause constrains a numeric field. Nil bounds are open.
type RangeClause struct {
	Field string
	Gte   *float64
	Lte   *float64
}

// MarshalJSON renders {"<field>": {"gte": .., "lte": ..}}.
func (c RangeClause) MarshalJSON() ([]byte, error) {
	bounds := map[string]float64{}
	if c.Gte != nil {
		bounds["gte"] = *c.Gte
	}
	if c.Lte != nil {
		bounds["lte"] = *c.Lte
	}
	return json.Marshal(map[string]any{c.Field: bounds})
}

// ShouldClause matches when any of its matches hold. An empty clause matches everything.
type ShouldClause struct {
	Field   string        `json:"-"`
	Matches []MatchClause `json:"should"`
}

// MatchClause compares one keyword field with one value.
type MatchClause struct {
	Field    string
	Query    string
	Analyzer string
}

// MarshalJSON renders {"match": {"<field>": {"query": .., "analyzer": ..}}}.
func (c MatchClause) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"match": map[string]any{
			c.Field: map[string]string{"query": c.Query, "analyzer": c.Analyzer},
		},
	})
}
