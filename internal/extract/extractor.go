package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/utils"
)

// ErrExtractionFailed is returned when the completion fallback cannot produce attributes.
var ErrExtractionFailed = errors.New("attribute extraction failed")

// Completer sends a conversation to a language model and returns its reply
type Completer interface {
	Complete(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// Source tells which stage produced a set of attributes
type Source string

const (
	SourcePatterns Source = "patterns"
	SourceModel    Source = "model"
	SourceCache    Source = "cache"
)

// Result is the outcome of extracting one description
type Result struct {
	Attributes model.CarAttributes
	Source     Source
	Violations []Violation // why the pattern stage was rejected
}

// Extractor runs the pattern table first and falls back to the language model
type Extractor struct {
	completer Completer
	logger    zerolog.Logger
}

// NewExtractor creates an extractor. completer may be nil, in which case
// every fallback fails with ErrExtractionFailed.
func NewExtractor(completer Completer, logger zerolog.Logger) *Extractor {
	return &Extractor{
		completer: completer,
		logger:    logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract returns validated attributes for a description. When the pattern
// stage produces an invalid set it is discarded and the model is asked for
// the same fields as JSON; invalid model fields are cleared.
func (e *Extractor) Extract(ctx context.Context, description string) (Result, error) {
	attrs := ExtractPatterns(description)
	violations := Validate(attrs)
	if len(violations) == 0 {
		return Result{Attributes: attrs, Source: SourcePatterns}, nil
	}

	e.logger.Debug().
		Stringer("violation", violations[0]).
		Int("violations", len(violations)).
		Msg("pattern attributes rejected, asking model")

	attrs, err := e.extractWithModel(ctx, description)
	if err != nil {
		return Result{Source: SourceModel, Violations: violations}, err
	}
	return Result{Attributes: attrs, Source: SourceModel, Violations: violations}, nil
}

func (e *Extractor) extractWithModel(ctx context.Context, description string) (model.CarAttributes, error) {
	if e.completer == nil {
		return model.CarAttributes{}, fmt.Errorf("%w: completion client is not configured", ErrExtractionFailed)
	}

	reply, err := e.completer.Complete(ctx, []model.ChatMessage{
		{Role: model.RoleUser, Content: attributePrompt(description)},
	})
	if err != nil {
		return model.CarAttributes{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	var raw map[string]any
	if err := utils.ParseAIJSON(reply, &raw); err != nil {
		return model.CarAttributes{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return Sanitize(decodeAttributes(raw)), nil
}

// decodeAttributes reads the model's JSON leniently: numbers may come as
// strings, enum fields go through the same normalizers as the pattern stage.
func decodeAttributes(raw map[string]any) model.CarAttributes {
	var a model.CarAttributes
	a.Seats = asInt(raw[model.FieldSeats])
	a.Doors = asInt(raw[model.FieldDoors])
	a.Clearance = asInt(raw[model.FieldClearance])
	a.Horsepower = asInt(raw[model.FieldHorsepower])
	a.StartYear = asInt(raw[model.FieldStartYear])
	a.EndYear = asInt(raw[model.FieldEndYear])
	a.FuelConsumption = asFloat(raw[model.FieldFuelConsumption])

	a.Drive = utils.NormalizeDrive(asString(raw[model.FieldDrive]))
	a.EngineType = utils.NormalizeEngine(asString(raw[model.FieldEngineType]))
	a.Transmission = utils.NormalizeTransmission(asString(raw[model.FieldTransmission]))
	a.Country = utils.NormalizeCountry(asString(raw[model.FieldCountry]))
	a.BodyType = utils.NormalizeBodyType(asString(raw[model.FieldBodyType]))
	return a
}

func asString(v any) string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

func asFloat(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", "."), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func asInt(v any) *int {
	f := asFloat(v)
	if f == nil || *f != math.Trunc(*f) {
		return nil
	}
	i := int(*f)
	return &i
}
