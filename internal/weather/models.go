package weather

import (
	"time"

	"github.com/ozweather/willypoll/internal/station"
)

// Domain identifies one of the independently scheduled fetch domains.
type Domain string

const (
	DomainObservational Domain = "observational"
	DomainForecast      Domain = "forecast"
	DomainWarnings      Domain = "warnings"
)

// Domains lists all fetch domains in a fixed order.
var Domains = []Domain{DomainObservational, DomainForecast, DomainWarnings}

// WindObservation is the current wind vector.
type WindObservation struct {
	SpeedKMH      float64 `json:"speedKmh"`
	GustKMH       float64 `json:"gustKmh"`
	DirectionDeg  float64 `json:"directionDeg"`
	DirectionText string  `json:"directionText"`
}

// RainfallObservation holds the station's rainfall counters.
type RainfallObservation struct {
	LastHourMM float64 `json:"lastHourMm"`
	TodayMM    float64 `json:"todayMm"`
	Since9AMMM float64 `json:"since9amMm"`
}

// SunMoon carries sun times computed from the station coordinates plus the
// moon phase for the current date.
type SunMoon struct {
	Sunrise   time.Time `json:"sunrise"`
	Sunset    time.Time `json:"sunset"`
	MoonPhase string    `json:"moonPhase"`
}

// ObservationalRecord is the normalized current-conditions view for the
// station. A new immutable record is produced on every successful fetch.
type ObservationalRecord struct {
	Temperature         float64             `json:"temperatureC"`
	ApparentTemperature float64             `json:"apparentTemperatureC"`
	DewPoint            float64             `json:"dewPointC"`
	Humidity            float64             `json:"humidityPercent"`
	Pressure            float64             `json:"pressureHpa"`
	Wind                WindObservation     `json:"wind"`
	Rainfall            RainfallObservation `json:"rainfall"`
	CloudOktas          float64             `json:"cloudOktas"`
	Precis              string              `json:"precis"`
	ExtendedText        string              `json:"extendedText,omitempty"`
	SunMoon             SunMoon             `json:"sunMoon"`
	ObservedAt          time.Time           `json:"observedAt"`
}

// TideExtreme is one high or low tide event.
type TideExtreme struct {
	Type    string    `json:"type"` // "high" or "low"
	Time    time.Time `json:"time"`
	HeightM float64   `json:"heightM"`
}

// DayEntry is one forecast day.
type DayEntry struct {
	Date            time.Time     `json:"date"`
	MinTemp         float64       `json:"minTempC"`
	MaxTemp         float64       `json:"maxTempC"`
	Precis          string        `json:"precis"`
	PrecisCode      string        `json:"precisCode"`
	RainProbability int           `json:"rainProbabilityPercent"`
	RainAmountMinMM float64       `json:"rainAmountMinMm"`
	RainAmountMaxMM float64       `json:"rainAmountMaxMm"`
	UVIndex         float64       `json:"uvIndex,omitempty"`
	UVAlert         string        `json:"uvAlert,omitempty"`
	Sunrise         time.Time     `json:"sunrise,omitzero"`
	Sunset          time.Time     `json:"sunset,omitzero"`
	Tides           []TideExtreme `json:"tides,omitempty"`
}

// HourEntry is one forecast hour.
type HourEntry struct {
	Time              time.Time `json:"time"`
	Temperature       float64   `json:"temperatureC"`
	WindSpeedKMH      float64   `json:"windSpeedKmh"`
	WindDirectionDeg  float64   `json:"windDirectionDeg"`
	RainProbability   int       `json:"rainProbabilityPercent"`
	UVIndex           float64   `json:"uvIndex,omitempty"`
	SwellHeightM      float64   `json:"swellHeightM,omitempty"`
	SwellPeriodS      float64   `json:"swellPeriodS,omitempty"`
	SwellDirectionDeg float64   `json:"swellDirectionDeg,omitempty"`
}

// ForecastRecord holds the ordered day and hour forecasts, bounded by the
// configured day and hour counts.
type ForecastRecord struct {
	Days     []DayEntry  `json:"days"`
	Hours    []HourEntry `json:"hours,omitempty"`
	IssuedAt time.Time   `json:"issuedAt"`
}

// Severity of a warning. Ordering is yellow < amber < red.
type Severity string

const (
	SeverityYellow Severity = "yellow"
	SeverityAmber  Severity = "amber"
	SeverityRed    Severity = "red"
)

// Rank returns the position of the severity in the total order. Unknown
// severities rank as yellow so an active warning is never dropped.
func (s Severity) Rank() int {
	switch s {
	case SeverityRed:
		return 2
	case SeverityAmber:
		return 1
	default:
		return 0
	}
}

// WarningType is one of the fixed catalogue of warning classifications.
type WarningType string

// Warning is one severe-weather warning for the station's region.
type Warning struct {
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      WarningType `json:"type"`
	Severity  Severity    `json:"severity"`
	IssuedAt  time.Time   `json:"issuedAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// WarningRecord is the raw set of warnings as fetched; grouping happens as a
// pure post-processing step.
type WarningRecord struct {
	Warnings []Warning `json:"warnings"`
}

// WarningGroup aggregates the warnings of one catalogue type.
type WarningGroup struct {
	Type        WarningType `json:"type"`
	Active      bool        `json:"active"`
	MaxSeverity Severity    `json:"maxSeverity,omitempty"`
	Count       int         `json:"count"`
	Members     []Warning   `json:"members,omitempty"`
}

// Snapshot is the atomically published, consistent read-only view across all
// domains. A nil domain pointer means that domain has never been fetched
// successfully.
type Snapshot struct {
	Station       station.Identity     `json:"station"`
	Observational *ObservationalRecord `json:"observational,omitempty"`
	Forecast      *ForecastRecord      `json:"forecast,omitempty"`
	Warnings      *WarningRecord       `json:"warnings,omitempty"`
	WarningGroups []WarningGroup       `json:"warningGroups,omitempty"`
	AsOf          time.Time            `json:"asOf"`
}
