package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

// Reply texts
const (
	ResultsHeader   = "🚗 Вот подходящие варианты:\n\n"
	NoResultsText   = "😕 К сожалению, не удалось найти подходящие варианты. Давайте уточним ваши предпочтения."
	PrioritiesText  = "Какие характеристики для вас наиболее важны?"
	unknownValue    = "—"
	priceCurrency   = " ₽"
	thousandsMarker = ","
)

// PriorityOptions are offered when a search comes back empty.
var PriorityOptions = []string{
	"Бюджет",
	"Марка",
	"Тип кузова",
	"Тип коробки передач",
	"Тип привода",
	"Тип топлива",
	"Год выпуска",
	"Мощность двигателя",
	"Количество мест",
	"Клиренс",
}

// PrioritiesQuestion asks the user which characteristics matter most.
func PrioritiesQuestion() *model.Question {
	return &model.Question{
		Type:    model.QuestionPriorities,
		Text:    PrioritiesText,
		Options: append([]string(nil), PriorityOptions...),
	}
}

// FormatCars renders a result list as a chat message.
func FormatCars(cars []model.CarSearchResult) string {
	var b strings.Builder
	b.WriteString(ResultsHeader)

	for i, c := range cars {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, c.Brand, c.Model)
		fmt.Fprintf(&b, "   📅 Год: %s-%s\n", intOr(c.StartYear), intOr(c.EndYear))
		fmt.Fprintf(&b, "   💰 Цена: %s\n", formatPrice(c.Price))
		fmt.Fprintf(&b, "   🛠 Двигатель: %s, %s л.с.\n", textOr(string(c.EngineType)), intOr(c.Horsepower))
		fmt.Fprintf(&b, "   ⚙️ Коробка: %s\n", textOr(string(c.Transmission)))
		fmt.Fprintf(&b, "   🚘 Привод: %s\n", textOr(string(c.Drive)))
		fmt.Fprintf(&b, "   ⛽️ Расход: %s л/100км\n", floatOr(c.FuelConsumption))
		fmt.Fprintf(&b, "   📏 Клиренс: %s мм\n", intOr(c.Clearance))
		fmt.Fprintf(&b, "   💺 Мест: %s\n", intOr(c.Seats))
		fmt.Fprintf(&b, "   🏎 Кузов: %s\n\n", textOr(c.BodyType))
	}

	return b.String()
}

func formatPrice(price float64) string {
	if price <= 0 {
		return unknownValue
	}
	return groupThousands(int64(math.Round(price))) + priceCurrency
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(thousandsMarker)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func intOr(v *int) string {
	if v == nil {
		return unknownValue
	}
	return strconv.Itoa(*v)
}

func floatOr(v *float64) string {
	if v == nil {
		return unknownValue
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func textOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return s
}
