package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pgvector/pgvector-go"
)

// CandidateRecord is a scraped listing before deduplication.
type CandidateRecord struct {
	Number      int       `json:"number"`
	ID          string    `json:"_id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Prices      []float64 `json:"prices"`
	Rating      *float64  `json:"rating,omitempty"`

	// Offer statistics reported by the source next to the median price.
	// They never feed Price.
	Low     *float64 `json:"low,omitempty"`
	Average *float64 `json:"average,omitempty"`
	High    *float64 `json:"high,omitempty"`
}

// Price returns the median of the price samples, 0 when there are none.
func (r CandidateRecord) Price() float64 {
	return Median(r.Prices)
}

// Median returns the median of values, 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// DriveType is the canonical drive value stored in the catalog
type DriveType string

const (
	DriveUnknown  DriveType = ""
	DriveFront    DriveType = "передний"
	DriveRear     DriveType = "задний"
	DriveAllWheel DriveType = "полный"
)

// EngineType is the canonical engine/fuel value stored in the catalog
type EngineType string

const (
	EngineUnknown  EngineType = ""
	EnginePetrol   EngineType = "бензин"
	EngineDiesel   EngineType = "дизель"
	EngineElectric EngineType = "электричество"
	EngineHybrid   EngineType = "гибрид"
	EngineGas      EngineType = "газ"
)

// TransmissionType is the canonical gearbox value stored in the catalog
type TransmissionType string

const (
	TransmissionUnknown   TransmissionType = ""
	TransmissionManual    TransmissionType = "механическая"
	TransmissionAutomatic TransmissionType = "автоматическая"
	TransmissionRobotized TransmissionType = "робот"
	TransmissionCVT       TransmissionType = "вариатор"
)

// Attribute field names, shared by the catalog sheet and the extraction prompt.
const (
	FieldSeats           = "Количество_мест"
	FieldDrive           = "Привод"
	FieldCountry         = "Страна"
	FieldDoors           = "Количество_дверей"
	FieldBodyType        = "Тип_кузова"
	FieldEngineType      = "Тип_двигателя"
	FieldFuelConsumption = "Расход_топлива"
	FieldClearance       = "Клиренс"
	FieldHorsepower      = "Лошадиные_силы"
	FieldTransmission    = "Тип_коробки"
	FieldStartYear       = "Начало_выпуска"
	FieldEndYear         = "Конец_выпуска"
)

// AttributeFields lists the attribute fields in catalog column order.
var AttributeFields = []string{
	FieldSeats, FieldDrive, FieldCountry, FieldDoors, FieldBodyType, FieldEngineType,
	FieldFuelConsumption, FieldClearance, FieldHorsepower, FieldTransmission,
	FieldStartYear, FieldEndYear,
}

// CarAttributes holds structured characteristics extracted from a description.
// Empty strings and nil pointers mean "unknown".
type CarAttributes struct {
	Seats           *int             `json:"seats,omitempty" db:"seats"`
	Drive           DriveType        `json:"drive,omitempty" db:"drive"`
	Country         string           `json:"country,omitempty" db:"country"`
	Doors           *int             `json:"doors,omitempty" db:"doors"`
	BodyType        string           `json:"body_type,omitempty" db:"body_type"`
	EngineType      EngineType       `json:"engine_type,omitempty" db:"engine_type"`
	FuelConsumption *float64         `json:"fuel_consumption,omitempty" db:"fuel_consumption"`
	Clearance       *int             `json:"clearance,omitempty" db:"clearance"`
	Horsepower      *int             `json:"horsepower,omitempty" db:"horsepower"`
	Transmission    TransmissionType `json:"transmission,omitempty" db:"transmission"`
	StartYear       *int             `json:"start_year,omitempty" db:"start_year"`
	EndYear         *int             `json:"end_year,omitempty" db:"end_year"`
}

// IsEmpty reports whether no attribute is known.
func (a CarAttributes) IsEmpty() bool {
	return a == CarAttributes{}
}

// Car is an enriched catalog entry and the document kept in the car store.
type Car struct {
	Number      int       `json:"number" db:"number"`
	ID          string    `json:"id" db:"id"`
	Brand       string    `json:"brand" db:"brand"`
	Model       string    `json:"model" db:"model"`
	Description string    `json:"description" db:"description"`
	Images      JSONArray `json:"images" db:"images"`
	Price       float64   `json:"price" db:"price"`
	Rating      float64   `json:"rating" db:"rating"`
	CarAttributes
	Summary   string          `json:"desc_summarization" db:"summary"`
	Pros      string          `json:"desc_plus" db:"pros"`
	Cons      string          `json:"desc_minus" db:"cons"`
	Embedding pgvector.Vector `json:"-" db:"embedding"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CarSearchResult is a car returned by the store with its ranking metadata
type CarSearchResult struct {
	Car
	Similarity     float64  `json:"similarity" db:"similarity"`
	Score          float64  `json:"score"`
	MatchedReasons []string `json:"matched_reasons"`
}

// JSONArray represents a JSON array column
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONArray source %T", value)
	}
}
