package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

func TestNormalizeEngine(t *testing.T) {
	tests := []struct {
		in   string
		want model.EngineType
	}{
		{"бензиновый", model.EnginePetrol},
		{"Дизельный турбированный", model.EngineDiesel},
		{"гибрид бензин", model.EngineHybrid},
		{"бензин и газ", model.EngineGas},
		{"электро", model.EngineElectric},
		{"дизель-электрический", model.EngineDiesel},
		{"мощный", model.EngineUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEngine(tt.in))
		})
	}
}

func TestNormalizeTransmission(t *testing.T) {
	assert.Equal(t, model.TransmissionManual, NormalizeTransmission("механика"))
	assert.Equal(t, model.TransmissionManual, NormalizeTransmission("МКПП"))
	assert.Equal(t, model.TransmissionAutomatic, NormalizeTransmission("АКПП 6"))
	assert.Equal(t, model.TransmissionRobotized, NormalizeTransmission("роботизированная"))
	assert.Equal(t, model.TransmissionCVT, NormalizeTransmission("Вариатор"))
	assert.Equal(t, model.TransmissionManual, NormalizeTransmission("механика или автомат"))
	assert.Equal(t, model.TransmissionUnknown, NormalizeTransmission("удобная"))
}

func TestNormalizeDrive(t *testing.T) {
	assert.Equal(t, model.DriveAllWheel, NormalizeDrive("Полный привод"))
	assert.Equal(t, model.DriveAllWheel, NormalizeDrive("AWD"))
	assert.Equal(t, model.DriveFront, NormalizeDrive("переднеприводный"))
	assert.Equal(t, model.DriveRear, NormalizeDrive("задний"))
	assert.Equal(t, model.DriveUnknown, NormalizeDrive("неизвестно"))
}

func TestCanonicalKeyword(t *testing.T) {
	assert.Equal(t, "электричество", CanonicalKeyword(KeywordEngineType, "электро"))
	assert.Equal(t, "автоматическая", CanonicalKeyword(KeywordTransmission, " автомат "))
	assert.Equal(t, "полный", CanonicalKeyword(KeywordDrive, "полный"))
	assert.Equal(t, "джип/suv", CanonicalKeyword(KeywordBodyType, "SUV"))
	assert.Equal(t, "toyota", CanonicalKeyword(KeywordBrand, "Toyota"))
	assert.Equal(t, "россия", CanonicalKeyword(KeywordCountry, "Россия"))
}

func TestNormalizeBodyType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Внедорожник", "джип/suv"},
		{" кроссовер ", "джип/suv"},
		{"хечбек", "хэтчбек"},
		{"седан", "седан"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBodyType(tt.in))
			assert.Equal(t, tt.want, CanonicalKeyword(KeywordBodyType, tt.in))
		})
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Японии", "Япония"},
		{"китайская", "Китай"},
		{"сша", "США"},
		{"россия", "Россия"},
		{"монголии", "Монголии"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCountry(tt.in))
		})
	}
	assert.Equal(t, "германия", CanonicalKeyword(KeywordCountry, "Германии"))
}
