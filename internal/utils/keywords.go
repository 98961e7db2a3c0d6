package utils

import (
	"strings"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

type keywordRule[T any] struct {
	value    T
	keywords []string
}

// Rules are checked in order; the first rule with a matching keyword wins.
var (
	driveRules = []keywordRule[model.DriveType]{
		{model.DriveAllWheel, []string{"полн", "4wd", "awd", "4x4", "4х4"}},
		{model.DriveFront, []string{"передн"}},
		{model.DriveRear, []string{"задн"}},
	}
	engineRules = []keywordRule[model.EngineType]{
		{model.EngineDiesel, []string{"дизел"}},
		{model.EngineElectric, []string{"электр"}},
		{model.EngineHybrid, []string{"гибрид"}},
		{model.EngineGas, []string{"газ"}},
		{model.EnginePetrol, []string{"бензин"}},
	}
	transmissionRules = []keywordRule[model.TransmissionType]{
		{model.TransmissionManual, []string{"механ", "мкпп", "ручн"}},
		{model.TransmissionAutomatic, []string{"автомат", "акпп"}},
		{model.TransmissionRobotized, []string{"робот", "ркпп", "dsg"}},
		{model.TransmissionCVT, []string{"вариатор", "cvt"}},
	}
)

func matchRules[T any](text string, rules []keywordRule[T]) (T, bool) {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.value, true
			}
		}
	}
	var zero T
	return zero, false
}

// NormalizeDrive maps free text to a drive type: all-wheel, then front, then rear.
func NormalizeDrive(text string) model.DriveType {
	v, _ := matchRules(text, driveRules)
	return v
}

// NormalizeEngine maps free text to an engine type by priority
// diesel > electric > hybrid > gas > petrol.
func NormalizeEngine(text string) model.EngineType {
	v, _ := matchRules(text, engineRules)
	return v
}

// NormalizeTransmission maps free text to a gearbox type by priority
// manual > automatic > robotized > CVT.
func NormalizeTransmission(text string) model.TransmissionType {
	v, _ := matchRules(text, transmissionRules)
	return v
}

// Keyword fields of the car store
const (
	KeywordBrand        = "brand"
	KeywordCountry      = "country"
	KeywordDrive        = "drive"
	KeywordEngineType   = "engine_type"
	KeywordBodyType     = "body_type"
	KeywordTransmission = "transmission"
)

// CanonicalKeyword rewrites a filter value into the vocabulary stored in the
// catalog, so that "электро" matches "электричество" and "автомат" matches
// "автоматическая". Values without a known canonical form are lowercased.
func CanonicalKeyword(field, value string) string {
	value = strings.TrimSpace(value)
	switch field {
	case KeywordDrive:
		if v := NormalizeDrive(value); v != model.DriveUnknown {
			return string(v)
		}
	case KeywordEngineType:
		if v := NormalizeEngine(value); v != model.EngineUnknown {
			return string(v)
		}
	case KeywordTransmission:
		if v := NormalizeTransmission(value); v != model.TransmissionUnknown {
			return string(v)
		}
	case KeywordBodyType:
		return NormalizeBodyType(value)
	case KeywordCountry:
		return strings.ToLower(NormalizeCountry(value))
	}
	return strings.ToLower(value)
}

// NormalizeBodyType lowercases a body type and folds its synonyms into the
// stored form. The catalog and the filter both go through it.
func NormalizeBodyType(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if alias, ok := bodyTypeAliases[value]; ok {
		return alias
	}
	return value
}

// NormalizeCountry returns the nominative, capitalized country name for
// the inflected forms descriptions use ("Японии", "китайская").
// Unknown words are only capitalized.
func NormalizeCountry(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if name, ok := countryAliases[value]; ok {
		return name
	}
	r := []rune(value)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

var bodyTypeAliases = map[string]string{
	"suv":         "джип/suv",
	"джип":        "джип/suv",
	"внедорожник": "джип/suv",
	"кроссовер":   "джип/suv",
	"хетчбек":     "хэтчбек",
	"хечбек":      "хэтчбек",
	"минивен":     "минивэн",
	"кабриолет":   "открытый кузов",
	"родстер":     "открытый кузов",
}

var countryAliases = map[string]string{
	"россия": "Россия", "россии": "Россия", "российская": "Россия", "российской": "Россия", "рф": "Россия",
	"япония": "Япония", "японии": "Япония", "японская": "Япония", "японской": "Япония",
	"германия": "Германия", "германии": "Германия", "немецкая": "Германия", "немецкой": "Германия",
	"корея": "Корея", "кореи": "Корея", "корейская": "Корея", "корейской": "Корея",
	"китай": "Китай", "китая": "Китай", "китайская": "Китай", "китайской": "Китай",
	"сша": "США", "америка": "США", "америки": "США", "американская": "США", "американской": "США",
	"франция": "Франция", "франции": "Франция", "французская": "Франция", "французской": "Франция",
	"италия": "Италия", "италии": "Италия", "итальянская": "Италия", "итальянской": "Италия",
	"швеция": "Швеция", "швеции": "Швеция", "шведская": "Швеция", "шведской": "Швеция",
	"чехия": "Чехия", "чехии": "Чехия", "чешская": "Чехия", "чешской": "Чехия",
	"великобритания": "Великобритания", "великобритании": "Великобритания", "англия": "Великобритания", "англии": "Великобритания", "британская": "Великобритания", "британской": "Великобритания",
	"беларусь": "Беларусь", "белоруссии": "Беларусь", "белорусская": "Беларусь", "белорусской": "Беларусь",
}
