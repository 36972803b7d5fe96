package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/ozweather/willypoll/internal/station"
)

// FetchError wraps a failed domain fetch. Retryable errors resolve themselves
// at a later due cycle; non-retryable ones need operator action (bad API key).
type FetchError struct {
	Domain    Domain
	Retryable bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Domain, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ObservationalOptions selects optional parts of an observational fetch.
type ObservationalOptions struct {
	// ExtendedText requests the long-form regional forecast text with one
	// additional API call per fetch.
	ExtendedText bool
}

// ForecastOptions bounds and filters a forecast fetch. Disabled field groups
// are omitted from the request entirely.
type ForecastOptions struct {
	Days       int // 1..7
	HourlyDays int // 0..3, 0 disables the hourly forecast
	UV         bool
	Tides      bool
	Swell      bool
	Sunrise    bool
}

// ObservationalFetcher fetches and normalizes current conditions.
type ObservationalFetcher interface {
	Fetch(ctx context.Context, st station.Identity, opts ObservationalOptions) (*ObservationalRecord, error)
}

// ForecastFetcher fetches and normalizes the day/hour forecast.
type ForecastFetcher interface {
	Fetch(ctx context.Context, st station.Identity, opts ForecastOptions) (*ForecastRecord, error)
}

// WarningsFetcher fetches all active warnings for the station's region.
type WarningsFetcher interface {
	Fetch(ctx context.Context, st station.Identity) (*WarningRecord, error)
}

// Store is the contract the snapshot cache must satisfy. The coordinator is
// its only writer; mappers and the HTTP layer read published snapshots.
type Store interface {
	SetObservational(rec *ObservationalRecord, fetchedAt time.Time)
	SetForecast(rec *ForecastRecord, fetchedAt time.Time)
	SetWarnings(rec *WarningRecord, fetchedAt time.Time)
	SetError(d Domain, err error)
	Publish(st station.Identity, asOf time.Time) Snapshot
	Latest() (Snapshot, error)
}
