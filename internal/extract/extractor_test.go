package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/filter"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	reply   func(prompt string) (string, error)
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, messages []model.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	prompt := messages[len(messages)-1].Content
	f.prompts = append(f.prompts, prompt)
	if f.reply == nil {
		return "", errors.New("unexpected call")
	}
	return f.reply(prompt)
}

func replyWith(text string) *fakeCompleter {
	return &fakeCompleter{reply: func(string) (string, error) { return text, nil }}
}

func intPtr(v int) *int { return &v }

func TestExtractPatternsWithoutFallback(t *testing.T) {
	completer := &fakeCompleter{}
	e := NewExtractor(completer, zerolog.Nop())

	res, err := e.Extract(context.Background(), "4-местный, бензиновый двигатель, механика")
	require.NoError(t, err)

	assert.Equal(t, SourcePatterns, res.Source)
	assert.Equal(t, 0, completer.calls)
	assert.Equal(t, model.CarAttributes{
		Seats:        intPtr(4),
		EngineType:   model.EnginePetrol,
		Transmission: model.TransmissionManual,
	}, res.Attributes)
}

func TestExtractPatterns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, a model.CarAttributes)
	}{
		{
			name:  "drive horsepower fuel clearance",
			input: "Полный привод, 150 л.с., расход 7,5 л/100 км, клиренс 200 мм",
			check: func(t *testing.T, a model.CarAttributes) {
				assert.Equal(t, model.DriveAllWheel, a.Drive)
				assert.Equal(t, intPtr(150), a.Horsepower)
				require.NotNil(t, a.FuelConsumption)
				assert.InDelta(t, 7.5, *a.FuelConsumption, 1e-9)
				assert.Equal(t, intPtr(200), a.Clearance)
			},
		},
		{
			name:  "doors",
			input: "5-дверный хэтчбек",
			check: func(t *testing.T, a model.CarAttributes) {
				assert.Equal(t, intPtr(5), a.Doors)
			},
		},
		{
			name:  "production years",
			input: "Модель выпускается с 2015 по 2020 год",
			check: func(t *testing.T, a model.CarAttributes) {
				assert.Equal(t, intPtr(2015), a.StartYear)
				assert.Equal(t, intPtr(2020), a.EndYear)
			},
		},
		{
			name:  "year span",
			input: "Годы выпуска 2012–2018",
			check: func(t *testing.T, a model.CarAttributes) {
				assert.Equal(t, intPtr(2012), a.StartYear)
				assert.Equal(t, intPtr(2018), a.EndYear)
			},
		},
		{
			name:  "country and body",
			input: "Тип кузова: седан. Сборка: россия",
			check: func(t *testing.T, a model.CarAttributes) {
				assert.Equal(t, "седан", a.BodyType)
				assert.Equal(t, "Россия", a.Country)
			},
		},
		{
			name:  "gearbox word",
			input: "Коробка автомат, мотор дизельный",
			check: func(t *testing.T, a model.CarAttributes) {
				assert.Equal(t, model.TransmissionAutomatic, a.Transmission)
				assert.Equal(t, model.EngineDiesel, a.EngineType)
			},
		},
		{
			name:  "nothing",
			input: "Отличная машина",
			check: func(t *testing.T, a model.CarAttributes) {
				assert.True(t, a.IsEmpty())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ExtractPatterns(tt.input))
		})
	}
}

// queryValues returns the keyword values BuildQuery emits for field.
func queryValues(q model.BoolQuery, field string) []string {
	var values []string
	for _, c := range q.Must {
		if c.Should == nil || c.Should.Field != field {
			continue
		}
		for _, m := range c.Should.Matches {
			values = append(values, m.Query)
		}
	}
	return values
}

func TestExtractedKeywordsMatchFilterQuery(t *testing.T) {
	tests := []struct {
		name        string
		description string
		filterText  string
		field       string
		stored      func(a model.CarAttributes) string
	}{
		{
			name:        "body type",
			description: "Тип кузова: внедорожник, 5 мест",
			filterText:  "Тип кузова - внедорожник",
			field:       "body_type",
			stored:      func(a model.CarAttributes) string { return a.BodyType },
		},
		{
			name:        "body type synonym",
			description: "Тип кузова: кроссовер",
			filterText:  "Тип кузова - suv",
			field:       "body_type",
			stored:      func(a model.CarAttributes) string { return a.BodyType },
		},
		{
			name:        "inflected country",
			description: "Надежный седан, производство Японии",
			filterText:  "Страна - Япония",
			field:       "country",
			stored:      func(a model.CarAttributes) string { return strings.ToLower(a.Country) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := tt.stored(ExtractPatterns(tt.description))
			require.NotEmpty(t, stored)

			q := filter.BuildQuery(filter.Parse(tt.filterText))
			assert.Equal(t, []string{stored}, queryValues(q, tt.field))
		})
	}
}

func TestDecodeAttributesNormalizesVocabulary(t *testing.T) {
	a := decodeAttributes(map[string]any{
		model.FieldBodyType: "Внедорожник",
		model.FieldCountry:  "германии",
	})
	assert.Equal(t, "джип/suv", a.BodyType)
	assert.Equal(t, "Германия", a.Country)
}

func TestExtractOutOfRangeSeatsFallsBack(t *testing.T) {
	completer := replyWith("```json\n{\"Количество_мест\": 8, \"Привод\": \"задний\", \"Лошадиные_силы\": 5000, \"Тип_двигателя\": null}\n```")
	e := NewExtractor(completer, zerolog.Nop())

	res, err := e.Extract(context.Background(), "15-местный автобус")
	require.NoError(t, err)

	assert.Equal(t, 1, completer.calls)
	assert.Contains(t, completer.prompts[0], "15-местный автобус")
	assert.Equal(t, SourceModel, res.Source)
	require.NotEmpty(t, res.Violations)
	assert.Equal(t, model.FieldSeats, res.Violations[0].Field)

	assert.Equal(t, intPtr(8), res.Attributes.Seats)
	assert.Equal(t, model.DriveRear, res.Attributes.Drive)
	assert.Nil(t, res.Attributes.Horsepower, "out of range model value is cleared")
	assert.Equal(t, model.EngineUnknown, res.Attributes.EngineType)
}

func TestExtractEndBeforeStartFallsBack(t *testing.T) {
	completer := replyWith(`{"Начало_выпуска": "2018", "Конец_выпуска": 2010, "Расход_топлива": "6,4"}`)
	e := NewExtractor(completer, zerolog.Nop())

	res, err := e.Extract(context.Background(), "выпускалась с 2020 по 2015")
	require.NoError(t, err)

	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, intPtr(2018), res.Attributes.StartYear)
	assert.Nil(t, res.Attributes.EndYear)
	require.NotNil(t, res.Attributes.FuelConsumption)
	assert.InDelta(t, 6.4, *res.Attributes.FuelConsumption, 1e-9)
}

func TestExtractFallbackFailures(t *testing.T) {
	callErr := errors.New("status 500")
	tests := []struct {
		name      string
		completer Completer
		wantInner error
	}{
		{"no client", nil, nil},
		{"call fails", &fakeCompleter{reply: func(string) (string, error) { return "", callErr }}, callErr},
		{"unparseable", replyWith("извините, не знаю"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.completer, zerolog.Nop())
			_, err := e.Extract(context.Background(), "20 мест")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExtractionFailed)
			if tt.wantInner != nil {
				assert.ErrorIs(t, err, tt.wantInner)
			}
		})
	}
}

func TestValidateAndSanitize(t *testing.T) {
	fuel := 45.0
	a := model.CarAttributes{
		Seats:           intPtr(5),
		Doors:           intPtr(1),
		FuelConsumption: &fuel,
		StartYear:       intPtr(2010),
		EndYear:         intPtr(2008),
		Drive:           model.DriveType("гусеничный"),
	}
	violations := Validate(a)
	fields := make([]string, len(violations))
	for i, v := range violations {
		fields[i] = v.Field
	}
	assert.ElementsMatch(t, []string{model.FieldDoors, model.FieldFuelConsumption, model.FieldEndYear, model.FieldDrive}, fields)

	clean := Sanitize(a)
	assert.Empty(t, Validate(clean))
	assert.Equal(t, intPtr(5), clean.Seats)
	assert.Equal(t, intPtr(2010), clean.StartYear)
	assert.Nil(t, clean.EndYear)
	assert.Nil(t, clean.Doors)
	assert.Nil(t, clean.FuelConsumption)
	assert.Equal(t, model.DriveUnknown, clean.Drive)
}

func TestParseSummary(t *testing.T) {
	text := "Описание:\n    Компактный городской седан.\nПлюсы:\n    Экономичный.\n    Надежный.\nМинусы:\n    Тесный салон."
	s, ok := ParseSummary(text)
	require.True(t, ok)
	assert.Equal(t, "Компактный городской седан.", s.Description)
	assert.True(t, strings.HasPrefix(s.Pros, "Экономичный."))
	assert.Contains(t, s.Pros, "Надежный.")
	assert.Equal(t, "Тесный салон.", s.Cons)

	_, ok = ParseSummary("просто текст")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	e := NewExtractor(replyWith("Описание: кратко\nПлюсы: быстрый\nМинусы: дорогой"), zerolog.Nop())
	s, err := e.Summarize(context.Background(), "описание")
	require.NoError(t, err)
	assert.Equal(t, Summary{Description: "кратко", Pros: "быстрый", Cons: "дорогой"}, s)

	e = NewExtractor(replyWith("не по формату"), zerolog.Nop())
	_, err = e.Summarize(context.Background(), "описание")
	assert.Error(t, err)
}
