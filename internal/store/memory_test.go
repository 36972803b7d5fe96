package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ozweather/willypoll/internal/station"
	"github.com/ozweather/willypoll/internal/weather"
)

var testStation = station.Identity{ID: "4988", Name: "Bondi Beach"}

func TestLatestBeforeFirstPublish(t *testing.T) {
	s := NewMemoryStore(0, 0)
	if _, err := s.Latest(); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPublishAssemblesSnapshot(t *testing.T) {
	s := NewMemoryStore(0, 0)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	s.SetObservational(&weather.ObservationalRecord{Temperature: 19.5}, now)
	s.SetForecast(&weather.ForecastRecord{Days: []weather.DayEntry{{MaxTemp: 22}}}, now)
	s.SetWarnings(&weather.WarningRecord{Warnings: []weather.Warning{
		{Code: "W1", Type: "storm", Severity: weather.SeverityAmber, ExpiresAt: now.Add(time.Hour)},
	}}, now)

	snap := s.Publish(testStation, now)
	if snap.Observational == nil || snap.Observational.Temperature != 19.5 {
		t.Errorf("observational = %+v", snap.Observational)
	}
	if snap.Forecast == nil || len(snap.Forecast.Days) != 1 {
		t.Errorf("forecast = %+v", snap.Forecast)
	}
	if len(snap.WarningGroups) != len(weather.WarningCatalogue) {
		t.Errorf("got %d warning groups, want %d", len(snap.WarningGroups), len(weather.WarningCatalogue))
	}

	latest, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !latest.AsOf.Equal(now) {
		t.Errorf("asOf = %v", latest.AsOf)
	}

	if at, ok := s.FetchedAt(weather.DomainObservational); !ok || !at.Equal(now) {
		t.Errorf("fetchedAt = %v %v", at, ok)
	}
}

func TestSetErrorKeepsData(t *testing.T) {
	s := NewMemoryStore(0, 0)
	now := time.Now()

	s.SetObservational(&weather.ObservationalRecord{Temperature: 19.5}, now)
	s.Publish(testStation, now)

	failure := errors.New("upstream down")
	s.SetError(weather.DomainObservational, failure)

	snap := s.Publish(testStation, now.Add(10*time.Minute))
	if snap.Observational == nil || snap.Observational.Temperature != 19.5 {
		t.Error("failed refresh must not evict last-known-good data")
	}
	if !errors.Is(s.DomainError(weather.DomainObservational), failure) {
		t.Errorf("domain error = %v", s.DomainError(weather.DomainObservational))
	}

	// the next successful refresh clears the error
	s.SetObservational(&weather.ObservationalRecord{Temperature: 21}, now.Add(20*time.Minute))
	if s.DomainError(weather.DomainObservational) != nil {
		t.Error("successful refresh must clear the domain error")
	}
}

func TestFetchedAtBeforeFirstSet(t *testing.T) {
	s := NewMemoryStore(0, 0)
	if _, ok := s.FetchedAt(weather.DomainForecast); ok {
		t.Error("never-fetched domain must report no fetch time")
	}
}

func TestHistoryRetentionByCount(t *testing.T) {
	s := NewMemoryStore(3, 0)
	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.Publish(testStation, base.Add(time.Duration(i)*time.Hour))
	}

	snaps, err := s.Range(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	if !snaps[0].AsOf.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("oldest retained = %v, want the trailing three", snaps[0].AsOf)
	}
}

func TestHistoryRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, 2*time.Hour)
	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	s.Publish(testStation, base)
	s.Publish(testStation, base.Add(1*time.Hour))
	s.Publish(testStation, base.Add(3*time.Hour))

	snaps, err := s.Range(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	for _, snap := range snaps {
		if snap.AsOf.Before(base.Add(time.Hour)) {
			t.Errorf("snapshot %v older than retention window survived", snap.AsOf)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		s.Publish(testStation, base.Add(time.Duration(i)*time.Hour))
	}

	snaps, err := s.Range(base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(snaps) != 2 {
		t.Errorf("got %d snapshots, want 2 (inclusive bounds)", len(snaps))
	}

	if _, err := s.Range(base.Add(10*time.Hour), base.Add(11*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty range: err = %v, want ErrNotFound", err)
	}
}
