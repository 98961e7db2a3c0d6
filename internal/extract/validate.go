package extract

import (
	"fmt"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

// Allowed attribute ranges
const (
	MinSeats      = 2
	MaxSeats      = 9
	MinDoors      = 2
	MaxDoors      = 7
	MinFuel       = 3.0
	MaxFuel       = 30.0
	MinClearance  = 100
	MaxClearance  = 400
	MinHorsepower = 50
	MaxHorsepower = 2000
	MinYear       = 1990
	MaxYear       = 2025
)

// Violation is one attribute outside its allowed range
type Violation struct {
	Field  string
	Reason string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Reason
}

// Validate returns every constraint the attributes break; nil means valid.
func Validate(a model.CarAttributes) []Violation {
	var out []Violation
	checkInt := func(field string, v *int, lo, hi int) {
		if v != nil && (*v < lo || *v > hi) {
			out = append(out, Violation{field, fmt.Sprintf("%d not in [%d, %d]", *v, lo, hi)})
		}
	}

	checkInt(model.FieldSeats, a.Seats, MinSeats, MaxSeats)
	checkInt(model.FieldDoors, a.Doors, MinDoors, MaxDoors)
	checkInt(model.FieldClearance, a.Clearance, MinClearance, MaxClearance)
	checkInt(model.FieldHorsepower, a.Horsepower, MinHorsepower, MaxHorsepower)
	checkInt(model.FieldStartYear, a.StartYear, MinYear, MaxYear)
	checkInt(model.FieldEndYear, a.EndYear, MinYear, MaxYear)
	if f := a.FuelConsumption; f != nil && (*f < MinFuel || *f > MaxFuel) {
		out = append(out, Violation{model.FieldFuelConsumption, fmt.Sprintf("%.1f not in [%.1f, %.1f]", *f, MinFuel, MaxFuel)})
	}
	if a.StartYear != nil && a.EndYear != nil && *a.EndYear < *a.StartYear {
		out = append(out, Violation{model.FieldEndYear, fmt.Sprintf("%d before start year %d", *a.EndYear, *a.StartYear)})
	}

	switch a.Drive {
	case model.DriveUnknown, model.DriveFront, model.DriveRear, model.DriveAllWheel:
	default:
		out = append(out, Violation{model.FieldDrive, fmt.Sprintf("unknown value %q", a.Drive)})
	}
	switch a.EngineType {
	case model.EngineUnknown, model.EnginePetrol, model.EngineDiesel, model.EngineElectric, model.EngineHybrid, model.EngineGas:
	default:
		out = append(out, Violation{model.FieldEngineType, fmt.Sprintf("unknown value %q", a.EngineType)})
	}
	switch a.Transmission {
	case model.TransmissionUnknown, model.TransmissionManual, model.TransmissionAutomatic, model.TransmissionRobotized, model.TransmissionCVT:
	default:
		out = append(out, Violation{model.FieldTransmission, fmt.Sprintf("unknown value %q", a.Transmission)})
	}
	return out
}

// Sanitize clears every field that breaks its constraint. An end year before
// the start year clears only the end year.
func Sanitize(a model.CarAttributes) model.CarAttributes {
	for _, v := range Validate(a) {
		switch v.Field {
		case model.FieldSeats:
			a.Seats = nil
		case model.FieldDoors:
			a.Doors = nil
		case model.FieldClearance:
			a.Clearance = nil
		case model.FieldHorsepower:
			a.Horsepower = nil
		case model.FieldStartYear:
			a.StartYear = nil
		case model.FieldEndYear:
			a.EndYear = nil
		case model.FieldFuelConsumption:
			a.FuelConsumption = nil
		case model.FieldDrive:
			a.Drive = model.DriveUnknown
		case model.FieldEngineType:
			a.EngineType = model.EngineUnknown
		case model.FieldTransmission:
			a.Transmission = model.TransmissionUnknown
		}
	}
	return a
}
