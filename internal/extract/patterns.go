// Package extract turns free-text car descriptions into structured
// attributes and short summaries.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/utils"
)

var (
	seatsPattern      = regexp.MustCompile(`(?i)(\d+)\s*[-–]?\s*мест`)
	doorsPattern      = regexp.MustCompile(`(?i)(\d+)\s*[-–]?\s*двер`)
	fuelPattern       = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:л\s*/\s*100|литр\p{L}*\s+на\s+100)`)
	clearancePattern  = regexp.MustCompile(`(?i)(\d+)\s*(?:мм|миллиметр\p{L}*)\s*(?:клиренс|дорожн\p{L}*\s+просвет)|(?:клиренс|дорожн\p{L}*\s+просвет)\p{L}*\s*[:–-]?\s*(\d+)\s*(?:мм|миллиметр)`)
	horsepowerPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:л\.\s*с\.?|лошадин\p{L}*\s+сил)`)
	startYearPattern  = regexp.MustCompile(`(?i)(?:начал\p{L}*(?:\s+(?:выпуска|производства|продаж))?|(?:^|[^\p{L}])с)\s*(\d{4})`)
	endYearPattern    = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:до|по)\s*(\d{4})`)
	yearSpanPattern   = regexp.MustCompile(`(\d{4})\s*[–-]\s*(\d{4})`)

	drivePattern        = regexp.MustCompile(`(?i)привод(?:ом)?\s*[:–-]?\s*([\p{L}\s]+)|(\p{L}+)\s+привод|(\p{L}*привод\p{L}+)`)
	countryPattern      = regexp.MustCompile(`(?i)(?:сборка|сборки|производство|производства|страна)\s*[:–-]?\s*(\p{L}+)`)
	bodyPattern         = regexp.MustCompile(`(?i)(?:тип кузова|кузов)\s*[:–-]?\s*(\p{L}+)`)
	enginePattern       = regexp.MustCompile(`(?i)(\p{L}+)\s+(?:двигател|мотор)|(?:двигател\p{L}*|мотор\p{L}*)\s*[:–-]?\s*([\p{L}\s]+)`)
	transmissionPattern = regexp.MustCompile(`(?i)(?:коробк\p{L}*|трансмисси\p{L}*|кпп)\s*[:–-]?\s*([\p{L}\s]+)|(механик\p{L}*|механическ\p{L}*|мкпп|автомат\p{L}*|акпп|робот\p{L}*|ркпп|вариатор\p{L}*)`)
)

// ExtractPatterns applies the keyword pattern table to a description and
// normalizes enum-like fields. Unparseable captures leave the field unknown.
// The result is not validated.
func ExtractPatterns(description string) model.CarAttributes {
	var a model.CarAttributes

	a.Seats = intCapture(seatsPattern, description)
	a.Doors = intCapture(doorsPattern, description)
	a.Clearance = intCapture(clearancePattern, description)
	a.Horsepower = intCapture(horsepowerPattern, description)
	a.StartYear = intCapture(startYearPattern, description)
	a.EndYear = intCapture(endYearPattern, description)
	if a.StartYear == nil && a.EndYear == nil {
		if m := yearSpanPattern.FindStringSubmatch(description); m != nil {
			a.StartYear = parseInt(m[1])
			a.EndYear = parseInt(m[2])
		}
	}
	if s := capture(fuelPattern, description); s != "" {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
			a.FuelConsumption = &v
		}
	}

	if s := capture(drivePattern, description); s != "" {
		a.Drive = utils.NormalizeDrive(s)
	}
	if s := capture(enginePattern, description); s != "" {
		a.EngineType = utils.NormalizeEngine(s)
	}
	if s := capture(transmissionPattern, description); s != "" {
		a.Transmission = utils.NormalizeTransmission(s)
	}
	a.Country = utils.NormalizeCountry(capture(countryPattern, description))
	a.BodyType = utils.NormalizeBodyType(capture(bodyPattern, description))
	return a
}

// capture returns the first non-empty group of the leftmost match.
func capture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	for _, g := range m[min(1, len(m)):] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return ""
}

func intCapture(re *regexp.Regexp, text string) *int {
	return parseInt(capture(re, text))
}

func parseInt(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
