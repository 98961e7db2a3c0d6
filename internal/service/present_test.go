package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

func TestFormatCars(t *testing.T) {
	full := model.CarSearchResult{Car: model.Car{
		Brand: "Toyota",
		Model: "RAV4",
		Price: 3_150_000,
		CarAttributes: model.CarAttributes{
			Seats:           intPtr(5),
			Drive:           model.DriveAllWheel,
			BodyType:        "кроссовер",
			EngineType:      model.EnginePetrol,
			FuelConsumption: floatPtr(7.5),
			Clearance:       intPtr(195),
			Horsepower:      intPtr(149),
			Transmission:    model.TransmissionCVT,
			StartYear:       intPtr(2019),
			EndYear:         intPtr(2024),
		},
	}}
	bare := model.CarSearchResult{Car: model.Car{Brand: "Lada", Model: "Niva"}}

	want := ResultsHeader +
		"1. Toyota RAV4\n" +
		"   📅 Год: 2019-2024\n" +
		"   💰 Цена: 3,150,000 ₽\n" +
		"   🛠 Двигатель: бензин, 149 л.с.\n" +
		"   ⚙️ Коробка: вариатор\n" +
		"   🚘 Привод: полный\n" +
		"   ⛽️ Расход: 7.5 л/100км\n" +
		"   📏 Клиренс: 195 мм\n" +
		"   💺 Мест: 5\n" +
		"   🏎 Кузов: кроссовер\n\n" +
		"2. Lada Niva\n" +
		"   📅 Год: —-—\n" +
		"   💰 Цена: —\n" +
		"   🛠 Двигатель: —, — л.с.\n" +
		"   ⚙️ Коробка: —\n" +
		"   🚘 Привод: —\n" +
		"   ⛽️ Расход: — л/100км\n" +
		"   📏 Клиренс: — мм\n" +
		"   💺 Мест: —\n" +
		"   🏎 Кузов: —\n\n"

	assert.Equal(t, want, FormatCars([]model.CarSearchResult{full, bare}))
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{25000, "25,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, groupThousands(tt.in))
		})
	}
}

func TestPrioritiesQuestionIsACopy(t *testing.T) {
	q := PrioritiesQuestion()
	q.Options[0] = "changed"
	assert.Equal(t, "Бюджет", PriorityOptions[0])
}
