package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"

	"github.com/ozweather/willypoll/internal/common"
	"github.com/ozweather/willypoll/internal/weather"
)

var validate = validator.New()

// DomainIntervals is the day/night refresh cadence for one domain class.
// Warnings share the observational class.
type DomainIntervals struct {
	Day   time.Duration `validate:"gt=0"`
	Night time.Duration `validate:"gt=0"`
}

// AppConfig is the validated configuration boundary. Nothing past this
// package re-validates; the coordinator trusts what it receives.
type AppConfig struct {
	APIKey string `validate:"required"`

	// Station selection: an explicit override, or coordinates (possibly
	// geocoded from an address) for nearest-station search.
	StationID string
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`

	Observational DomainIntervals
	Forecast      DomainIntervals

	NightStartHour int `validate:"gte=0,lte=23"`
	NightEndHour   int `validate:"gte=0,lte=23"`

	ForecastDays int `validate:"gte=1,lte=7"`
	HourlyDays   int `validate:"gte=0,lte=3"`

	// EnabledSensors filters the scalar sensor catalogue. Empty means all.
	EnabledSensors []weather.SensorField

	IncludeWarnings bool
	IncludeUV       bool
	IncludeTides    bool
	IncludeSwell    bool
	IncludeSunrise  bool
	ExtendedText    bool

	HTTPTimeout  time.Duration `validate:"gt=0"`
	FetchTimeout time.Duration `validate:"gt=0"`

	// Published-snapshot retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}
	cfg.APIKey = os.Getenv("WILLYWEATHER_API_KEY")
	cfg.StationID = os.Getenv("STATION_ID")
	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.Observational, err = loadIntervals("OBSERVATIONAL", "10m", "30m"); err != nil {
		return nil, err
	}
	if cfg.Forecast, err = loadIntervals("FORECAST", "1h", "3h"); err != nil {
		return nil, err
	}

	cfg.NightStartHour = getenvInt("NIGHT_START_HOUR", 21)
	cfg.NightEndHour = getenvInt("NIGHT_END_HOUR", 7)

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 5)
	cfg.HourlyDays = getenvInt("FORECAST_HOURLY_DAYS", 1)

	for _, name := range common.SplitList(os.Getenv("ENABLED_SENSORS")) {
		if !weather.IsScalarSensorField(name) {
			return nil, fmt.Errorf("unknown sensor field in ENABLED_SENSORS: %q", name)
		}
		cfg.EnabledSensors = append(cfg.EnabledSensors, weather.SensorField(name))
	}

	cfg.IncludeWarnings = getenvBool("INCLUDE_WARNINGS", true)
	cfg.IncludeUV = getenvBool("INCLUDE_UV", false)
	cfg.IncludeTides = getenvBool("INCLUDE_TIDES", false)
	cfg.IncludeSwell = getenvBool("INCLUDE_SWELL", false)
	cfg.IncludeSunrise = getenvBool("INCLUDE_SUNRISESUNSET", false)
	cfg.ExtendedText = getenvBool("EXTENDED_FORECAST_TEXT", false)

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96)
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	if err := loadCoordinates(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadCoordinates fills Latitude/Longitude from the environment, geocoding a
// configured address when explicit coordinates are absent. Skipped entirely
// when a station override is set.
func loadCoordinates(cfg *AppConfig) error {
	latStr, lngStr := os.Getenv("LATITUDE"), os.Getenv("LONGITUDE")
	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return fmt.Errorf("invalid LATITUDE: %w", err)
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return fmt.Errorf("invalid LONGITUDE: %w", err)
		}
		cfg.Latitude, cfg.Longitude = lat, lng
		return nil
	}

	if cfg.StationID != "" {
		return nil
	}

	city := os.Getenv("LOCATION_CITY")
	if city == "" {
		return fmt.Errorf("set STATION_ID, LATITUDE/LONGITUDE, or LOCATION_CITY")
	}

	geocoder.ApiKey = os.Getenv("GEOCODER_API_KEY")
	location, err := geocoder.Geocoding(geocoder.Address{
		City:    city,
		State:   os.Getenv("LOCATION_STATE"),
		Country: getenvDefault("LOCATION_COUNTRY", "Australia"),
	})
	if err != nil {
		return fmt.Errorf("geocoding %q: %w", city, err)
	}
	cfg.Latitude, cfg.Longitude = location.Latitude, location.Longitude
	log.Printf("config: geocoded %q to %.4f,%.4f", city, cfg.Latitude, cfg.Longitude)
	return nil
}

func loadIntervals(prefix, dayDef, nightDef string) (DomainIntervals, error) {
	day, err := getenvDuration(prefix+"_DAY_INTERVAL", dayDef)
	if err != nil {
		return DomainIntervals{}, err
	}
	night, err := getenvDuration(prefix+"_NIGHT_INTERVAL", nightDef)
	if err != nil {
		return DomainIntervals{}, err
	}
	return DomainIntervals{Day: day, Night: night}, nil
}

// EnabledSensorSet returns the enabled scalar fields as a set, or nil when
// every field is enabled.
func (c *AppConfig) EnabledSensorSet() map[weather.SensorField]bool {
	if len(c.EnabledSensors) == 0 {
		return nil
	}
	set := make(map[weather.SensorField]bool, len(c.EnabledSensors))
	for _, f := range c.EnabledSensors {
		set[f] = true
	}
	return set
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
