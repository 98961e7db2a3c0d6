package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

// Field names of the "<Field> - <value>" template
const (
	FieldYear            = "Год выпуска"
	FieldMinPrice        = "Минимальная цена"
	FieldMaxPrice        = "Максимальная цена"
	FieldBrand           = "Марка автомобиля"
	FieldCountry         = "Страна"
	FieldDrive           = "Привод"
	FieldEngineType      = "Тип двигателя"
	FieldFuelConsumption = "Расход топлива"
	FieldSeats           = "Количество мест"
	FieldBodyType        = "Тип кузова"
	FieldDoors           = "Количество дверей"
	FieldTransmission    = "Тип коробки"
	FieldHorsepower      = "Лошадиные силы"
	FieldClearance       = "Клиренс"
)

// NaN is the placeholder the completion prompt uses for "no preference".
const NaN = "NaN"

var (
	linePattern  = regexp.MustCompile(`([\p{L}\p{N}_]+(?: [\p{L}\p{N}_]+)*?) - (.+)`)
	rangePattern = regexp.MustCompile(`(?i)(?:^|\s)от\s+(.+?),\s*до\s+(.+)`)
	fromPattern  = regexp.MustCompile(`(?i)^от\s+(.+)$`)
	toPattern    = regexp.MustCompile(`(?i)^до\s+(.+)$`)
	digitSpaces  = regexp.MustCompile(`(\d)\s+(\d)`)
)

type valueKind int

const (
	kindScalar valueKind = iota
	kindList
	kindRange
)

// rawValue is one captured value before it is coerced by field name.
type rawValue struct {
	kind   valueKind
	scalar string
	items  []string
	from   string
	to     string
}

// splitValue classifies a captured value as a range, a list or a scalar.
// Only "от <x>, до <y>" counts as a range, so names containing the letters
// "от" (Тойота) stay scalars.
func splitValue(value string) rawValue {
	value = strings.TrimSpace(value)
	if m := rangePattern.FindStringSubmatch(value); m != nil {
		return rawValue{kind: kindRange, from: strings.TrimSpace(m[1]), to: strings.TrimSpace(m[2])}
	}
	if m := fromPattern.FindStringSubmatch(value); m != nil && !strings.Contains(m[1], ",") {
		return rawValue{kind: kindRange, from: strings.TrimSpace(m[1]), to: NaN}
	}
	if m := toPattern.FindStringSubmatch(value); m != nil && !strings.Contains(m[1], ",") {
		return rawValue{kind: kindRange, from: NaN, to: strings.TrimSpace(m[1])}
	}
	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			items = append(items, strings.TrimSpace(p))
		}
		return rawValue{kind: kindList, items: items}
	}
	return rawValue{kind: kindScalar, scalar: value}
}

// scan extracts every "<Field> - <value>" line. Later lines win.
func scan(text string) map[string]rawValue {
	data := make(map[string]rawValue)
	for _, m := range linePattern.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		data[key] = splitValue(m[2])
	}
	return data
}

// Parse converts a completion reply in the filter template into a
// SearchFilter. It never fails: absent, malformed or NaN values leave the
// corresponding field at its permissive default.
func Parse(text string) model.SearchFilter {
	f, _ := ParseFields(text)
	return f
}

// ParseFields is Parse that also reports which template fields were present
// in the text, in template order. An empty result means the reply was not a
// filter at all.
func ParseFields(text string) (model.SearchFilter, []string) {
	data := scan(text)
	f := model.PermissiveFilter()
	var seen []string

	lookup := func(field string) (rawValue, bool) {
		v, ok := data[strings.ToLower(field)]
		if ok {
			seen = append(seen, field)
		}
		return v, ok
	}
	rng := func(field string, dst *model.Range) {
		if v, ok := lookup(field); ok {
			*dst = parseRange(v)
		}
	}
	list := func(field string, dst *[]string) {
		if v, ok := lookup(field); ok {
			*dst = parseList(v)
		}
	}

	rng(FieldYear, &f.Year)
	if v, ok := lookup(FieldMinPrice); ok {
		f.Price.Min = parseScalarBound(v, model.RangeFloor)
	}
	if v, ok := lookup(FieldMaxPrice); ok {
		f.Price.Max = parseScalarBound(v, model.RangeCeiling)
	}
	f.Price = ordered(f.Price)
	list(FieldBrand, &f.Brands)
	list(FieldCountry, &f.Countries)
	list(FieldDrive, &f.Drives)
	list(FieldEngineType, &f.EngineTypes)
	rng(FieldFuelConsumption, &f.FuelConsumption)
	rng(FieldSeats, &f.Seats)
	list(FieldBodyType, &f.BodyTypes)
	rng(FieldDoors, &f.Doors)
	list(FieldTransmission, &f.Transmissions)
	rng(FieldHorsepower, &f.Horsepower)
	rng(FieldClearance, &f.Clearance)

	return f, seen
}

func parseRange(v rawValue) model.Range {
	switch v.kind {
	case kindRange:
		return ordered(model.Range{
			Min: parseBound(v.from, model.RangeFloor),
			Max: parseBound(v.to, model.RangeCeiling),
		})
	case kindScalar:
		// "Количество дверей - 4" means exactly four
		if x, ok := parseNumber(v.scalar); ok {
			return model.Range{Min: x, Max: x}
		}
	}
	return model.Unbounded()
}

func parseScalarBound(v rawValue, fallback float64) float64 {
	if v.kind != kindScalar {
		return fallback
	}
	return parseBound(v.scalar, fallback)
}

func parseBound(s string, fallback float64) float64 {
	if x, ok := parseNumber(s); ok {
		return x
	}
	return fallback
}

// parseNumber accepts "2018", "<2018>", "6,5" and "2 000 000".
func parseNumber(s string) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), "<>")
	s = digitSpaces.ReplaceAllString(s, "$1$2")
	s = digitSpaces.ReplaceAllString(s, "$1$2")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || strings.EqualFold(s, NaN) {
		return 0, false
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0, false
	}
	return x, true
}

func ordered(r model.Range) model.Range {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

func parseList(v rawValue) []string {
	var items []string
	switch v.kind {
	case kindList:
		items = v.items
	case kindScalar:
		items = []string{v.scalar}
	default:
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(strings.Trim(strings.TrimSpace(item), "<>"))
		if item == "" || strings.EqualFold(item, NaN) {
			continue
		}
		out = append(out, item)
	}
	return out
}
