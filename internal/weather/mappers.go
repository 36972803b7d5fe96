package weather

import (
	"errors"
	"time"
)

// ErrUnavailable is returned when a derived value cannot be served: the
// backing domain has never been fetched, the field is not enabled, or an
// index lies past the available forecast range. It never triggers a fetch.
var ErrUnavailable = errors.New("value unavailable")

// SensorField names one scalar observational sensor.
type SensorField string

const (
	SensorTemperature         SensorField = "temperature"
	SensorApparentTemperature SensorField = "apparent_temperature"
	SensorHumidity            SensorField = "humidity"
	SensorDewPoint            SensorField = "dewpoint"
	SensorPressure            SensorField = "pressure"
	SensorWindSpeed           SensorField = "wind_speed"
	SensorWindGust            SensorField = "wind_gust"
	SensorWindDirection       SensorField = "wind_direction"
	SensorWindDirectionText   SensorField = "wind_direction_text"
	SensorCloud               SensorField = "cloud"
	SensorRainLastHour        SensorField = "rain_last_hour"
	SensorRainToday           SensorField = "rain_today"
	SensorRainSince9AM        SensorField = "rain_since_9am"
	SensorPrecis              SensorField = "precis"
	SensorExtendedText        SensorField = "extended_text"
	SensorSunrise             SensorField = "sunrise"
	SensorSunset              SensorField = "sunset"
	SensorMoonPhase           SensorField = "moon_phase"
)

// scalarFields preserves a stable ordering for enumeration and API output.
var scalarFields = []SensorField{
	SensorTemperature,
	SensorApparentTemperature,
	SensorHumidity,
	SensorDewPoint,
	SensorPressure,
	SensorWindSpeed,
	SensorWindGust,
	SensorWindDirection,
	SensorWindDirectionText,
	SensorCloud,
	SensorRainLastHour,
	SensorRainToday,
	SensorRainSince9AM,
	SensorPrecis,
	SensorExtendedText,
	SensorSunrise,
	SensorSunset,
	SensorMoonPhase,
}

var scalarAccessors = map[SensorField]func(*ObservationalRecord) any{
	SensorTemperature:         func(r *ObservationalRecord) any { return r.Temperature },
	SensorApparentTemperature: func(r *ObservationalRecord) any { return r.ApparentTemperature },
	SensorHumidity:            func(r *ObservationalRecord) any { return r.Humidity },
	SensorDewPoint:            func(r *ObservationalRecord) any { return r.DewPoint },
	SensorPressure:            func(r *ObservationalRecord) any { return r.Pressure },
	SensorWindSpeed:           func(r *ObservationalRecord) any { return r.Wind.SpeedKMH },
	SensorWindGust:            func(r *ObservationalRecord) any { return r.Wind.GustKMH },
	SensorWindDirection:       func(r *ObservationalRecord) any { return r.Wind.DirectionDeg },
	SensorWindDirectionText:   func(r *ObservationalRecord) any { return r.Wind.DirectionText },
	SensorCloud:               func(r *ObservationalRecord) any { return r.CloudOktas },
	SensorRainLastHour:        func(r *ObservationalRecord) any { return r.Rainfall.LastHourMM },
	SensorRainToday:           func(r *ObservationalRecord) any { return r.Rainfall.TodayMM },
	SensorRainSince9AM:        func(r *ObservationalRecord) any { return r.Rainfall.Since9AMMM },
	SensorPrecis:              func(r *ObservationalRecord) any { return r.Precis },
	SensorExtendedText:        func(r *ObservationalRecord) any { return r.ExtendedText },
	SensorSunrise:             func(r *ObservationalRecord) any { return r.SunMoon.Sunrise },
	SensorSunset:              func(r *ObservationalRecord) any { return r.SunMoon.Sunset },
	SensorMoonPhase:           func(r *ObservationalRecord) any { return r.SunMoon.MoonPhase },
}

// ScalarSensorFields returns the full observational sensor catalogue.
func ScalarSensorFields() []SensorField {
	out := make([]SensorField, len(scalarFields))
	copy(out, scalarFields)
	return out
}

// IsScalarSensorField reports whether name is a known scalar sensor.
func IsScalarSensorField(name string) bool {
	_, ok := scalarAccessors[SensorField(name)]
	return ok
}

// SensorValue extracts one scalar sensor value from the snapshot. Fields
// outside the enabled set and fields of a never-fetched domain are
// unavailable. A nil enabled set means all fields are enabled.
func SensorValue(snap Snapshot, field SensorField, enabled map[SensorField]bool) (any, error) {
	accessor, ok := scalarAccessors[field]
	if !ok {
		return nil, ErrUnavailable
	}
	if enabled != nil && !enabled[field] {
		return nil, ErrUnavailable
	}
	if snap.Observational == nil {
		return nil, ErrUnavailable
	}
	return accessor(snap.Observational), nil
}

// DaySummary is one forecast day as exposed by the weather summary.
type DaySummary struct {
	Date            time.Time `json:"date"`
	Condition       Condition `json:"condition"`
	MinTemp         float64   `json:"minTempC"`
	MaxTemp         float64   `json:"maxTempC"`
	RainProbability int       `json:"rainProbabilityPercent"`
	RainAmountMM    float64   `json:"rainAmountMm"`
	UVIndex         float64   `json:"uvIndex,omitempty"`
}

// Summary is the single weather-summary consumer view.
type Summary struct {
	Station           string       `json:"station"`
	Condition         Condition    `json:"condition"`
	Temperature       float64      `json:"temperatureC"`
	ApparentTemp      float64      `json:"apparentTemperatureC"`
	Humidity          float64      `json:"humidityPercent"`
	Pressure          float64      `json:"pressureHpa"`
	WindSpeedKMH      float64      `json:"windSpeedKmh"`
	WindGustKMH       float64      `json:"windGustKmh"`
	WindBearingDeg    float64      `json:"windBearingDeg"`
	CloudCoverPercent float64      `json:"cloudCoverPercent"`
	Precis            string       `json:"precis"`
	Forecast          []DaySummary `json:"forecast"`
	AsOf              time.Time    `json:"asOf"`
}

// Summarize builds the weather summary from current conditions plus the
// first maxDays forecast days. The forecast shrinks to whatever is
// available; current conditions require the observational domain.
func Summarize(snap Snapshot, maxDays int) (Summary, error) {
	if snap.Observational == nil {
		return Summary{}, ErrUnavailable
	}
	obs := snap.Observational

	s := Summary{
		Station:           snap.Station.Name,
		Condition:         ConditionUnknown,
		Temperature:       obs.Temperature,
		ApparentTemp:      obs.ApparentTemperature,
		Humidity:          obs.Humidity,
		Pressure:          obs.Pressure,
		WindSpeedKMH:      obs.Wind.SpeedKMH,
		WindGustKMH:       obs.Wind.GustKMH,
		WindBearingDeg:    obs.Wind.DirectionDeg,
		CloudCoverPercent: obs.CloudOktas / 8 * 100,
		Precis:            obs.Precis,
		AsOf:              snap.AsOf,
	}

	if snap.Forecast == nil {
		return s, nil
	}

	days := snap.Forecast.Days
	n := len(days)
	if maxDays > 0 && maxDays < n {
		n = maxDays
	}
	for _, d := range days[:n] {
		s.Forecast = append(s.Forecast, DaySummary{
			Date:            d.Date,
			Condition:       ConditionForPrecis(d.PrecisCode),
			MinTemp:         d.MinTemp,
			MaxTemp:         d.MaxTemp,
			RainProbability: d.RainProbability,
			RainAmountMM:    (d.RainAmountMinMM + d.RainAmountMaxMM) / 2,
			UVIndex:         d.UVIndex,
		})
	}
	if len(s.Forecast) > 0 {
		s.Condition = s.Forecast[0].Condition
	}
	return s, nil
}

// ForecastDay returns the forecast day at index, or ErrUnavailable when the
// index lies past the available days.
func ForecastDay(snap Snapshot, index int) (DayEntry, error) {
	if snap.Forecast == nil || index < 0 || index >= len(snap.Forecast.Days) {
		return DayEntry{}, ErrUnavailable
	}
	return snap.Forecast.Days[index], nil
}

// ForecastHour returns the forecast hour at index, or ErrUnavailable when
// the index lies past the available hours.
func ForecastHour(snap Snapshot, index int) (HourEntry, error) {
	if snap.Forecast == nil || index < 0 || index >= len(snap.Forecast.Hours) {
		return HourEntry{}, ErrUnavailable
	}
	return snap.Forecast.Hours[index], nil
}

// NextTide returns the first tide extreme of the given type ("high" or
// "low") after now across the forecast days.
func NextTide(snap Snapshot, tideType string, now time.Time) (TideExtreme, error) {
	if snap.Forecast == nil {
		return TideExtreme{}, ErrUnavailable
	}
	for _, day := range snap.Forecast.Days {
		for _, tide := range day.Tides {
			if tide.Type == tideType && tide.Time.After(now) {
				return tide, nil
			}
		}
	}
	return TideExtreme{}, ErrUnavailable
}

// WarningState is the binary-sensor view of one warning group.
type WarningState struct {
	Type     WarningType `json:"type"`
	On       bool        `json:"on"`
	Severity Severity    `json:"severity,omitempty"`
	Count    int         `json:"count"`
	Members  []Warning   `json:"members,omitempty"`
}

// WarningStates renders one boolean state per catalogue type from the
// snapshot's warning groups.
func WarningStates(snap Snapshot) ([]WarningState, error) {
	if snap.Warnings == nil {
		return nil, ErrUnavailable
	}
	groups := snap.WarningGroups
	if groups == nil {
		groups = GroupWarnings(snap.Warnings.Warnings, snap.AsOf)
	}

	states := make([]WarningState, 0, len(groups))
	for _, g := range groups {
		states = append(states, WarningState{
			Type:     g.Type,
			On:       g.Active,
			Severity: g.MaxSeverity,
			Count:    g.Count,
			Members:  g.Members,
		})
	}
	return states, nil
}

// SensorSpec identifies one derived consumer: a domain, a field name and an
// optional forecast index (-1 for scalar sensors).
type SensorSpec struct {
	Domain Domain `json:"domain"`
	Field  string `json:"field"`
	Index  int    `json:"index"`
}

// EnumerateSensors expands validated configuration into the fixed catalogue
// of derived consumers created at startup. No dynamic dispatch happens
// afterwards; each spec resolves through the accessor tables above.
func EnumerateSensors(enabled []SensorField, forecastDays, hourlyDays int, includeWarnings bool) []SensorSpec {
	var specs []SensorSpec

	for _, f := range enabled {
		if IsScalarSensorField(string(f)) {
			specs = append(specs, SensorSpec{Domain: DomainObservational, Field: string(f), Index: -1})
		}
	}

	for day := 0; day < forecastDays; day++ {
		specs = append(specs, SensorSpec{Domain: DomainForecast, Field: "day", Index: day})
	}
	for hour := 0; hour < hourlyDays*24; hour++ {
		specs = append(specs, SensorSpec{Domain: DomainForecast, Field: "hour", Index: hour})
	}

	if includeWarnings {
		for _, t := range WarningCatalogue {
			specs = append(specs, SensorSpec{Domain: DomainWarnings, Field: string(t), Index: -1})
		}
	}
	return specs
}
