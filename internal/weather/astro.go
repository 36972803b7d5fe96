package weather

import (
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Length of a lunation in days and a reference new moon (2000-01-06 18:14 UTC).
const synodicMonth = 29.530588853

var newMoonEpoch = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

var moonPhaseNames = []string{
	"new_moon",
	"waxing_crescent",
	"first_quarter",
	"waxing_gibbous",
	"full_moon",
	"waning_gibbous",
	"last_quarter",
	"waning_crescent",
}

// SunMoonFor computes sunrise/sunset for the station's coordinates and the
// moon phase for the given date.
func SunMoonFor(lat, lng float64, date time.Time) SunMoon {
	rise, set := sunrise.SunriseSunset(lat, lng, date.Year(), date.Month(), date.Day())
	return SunMoon{
		Sunrise:   rise,
		Sunset:    set,
		MoonPhase: moonPhase(date),
	}
}

// moonPhase buckets the lunation fraction into the eight common phase names.
func moonPhase(t time.Time) string {
	days := t.Sub(newMoonEpoch).Hours() / 24
	frac := days / synodicMonth
	frac = frac - math.Floor(frac)

	// Each named phase owns 1/8 of the cycle, centered on its exact moment.
	idx := int(math.Floor(frac*8 + 0.5))
	if idx >= 8 {
		idx = 0
	}
	return moonPhaseNames[idx]
}
