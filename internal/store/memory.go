package store

import (
	"errors"
	"sync"
	"time"

	"github.com/ozweather/willypoll/internal/station"
	"github.com/ozweather/willypoll/internal/weather"
)

var (
	// ErrNotFound is returned before the first snapshot has been published
	// or when a range query matches nothing.
	ErrNotFound = errors.New("no snapshot available")
)

// entry is the per-domain cache cell: last-known-good data survives failed
// refreshes, only the error field turns over.
type entry struct {
	fetchedAt time.Time
	err       error
}

// MemoryStore is the concurrency-safe snapshot cache. The coordinator is the
// only writer; consumers read published snapshots, never the cells directly.
type MemoryStore struct {
	mu sync.RWMutex

	observational *weather.ObservationalRecord
	forecast      *weather.ForecastRecord
	warnings      *weather.WarningRecord
	entries       map[weather.Domain]*entry

	latest  *weather.Snapshot
	history []weather.Snapshot

	// retention configuration for published snapshots
	maxHistory int           // max number of snapshots (0 = unlimited)
	maxAge     time.Duration // max age of snapshots (0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore with optional history limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[weather.Domain]*entry),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
	for _, d := range weather.Domains {
		s.entries[d] = &entry{}
	}
	return s
}

// SetObservational replaces the observational cell and clears its error.
func (s *MemoryStore) SetObservational(rec *weather.ObservationalRecord, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observational = rec
	s.entries[weather.DomainObservational].fetchedAt = fetchedAt
	s.entries[weather.DomainObservational].err = nil
}

// SetForecast replaces the forecast cell and clears its error.
func (s *MemoryStore) SetForecast(rec *weather.ForecastRecord, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecast = rec
	s.entries[weather.DomainForecast].fetchedAt = fetchedAt
	s.entries[weather.DomainForecast].err = nil
}

// SetWarnings replaces the warnings cell and clears its error.
func (s *MemoryStore) SetWarnings(rec *weather.WarningRecord, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = rec
	s.entries[weather.DomainWarnings].fetchedAt = fetchedAt
	s.entries[weather.DomainWarnings].err = nil
}

// SetError records a failed refresh for a domain. The domain's data is left
// untouched (last-known-good policy).
func (s *MemoryStore) SetError(d weather.Domain, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[d]; ok {
		e.err = err
	}
}

// DomainError returns the error from the domain's last refresh, if any.
func (s *MemoryStore) DomainError(d weather.Domain) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[d]; ok {
		return e.err
	}
	return nil
}

// FetchedAt returns when the domain last refreshed successfully; ok is false
// for a domain that has never succeeded.
func (s *MemoryStore) FetchedAt(d weather.Domain) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[d]
	if !ok || e.fetchedAt.IsZero() {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// Publish assembles a consistent snapshot from the current cells under one
// lock, appends it to history with retention, and makes it the latest.
// Not-due domains contribute their cached records verbatim.
func (s *MemoryStore) Publish(st station.Identity, asOf time.Time) weather.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := weather.Snapshot{
		Station:       st,
		Observational: s.observational,
		Forecast:      s.forecast,
		Warnings:      s.warnings,
		AsOf:          asOf,
	}
	if s.warnings != nil {
		snap.WarningGroups = weather.GroupWarnings(s.warnings.Warnings, asOf)
	}

	s.history = append(s.history, snap)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		over := len(s.history) - s.maxHistory
		s.history = s.history[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := asOf.Add(-s.maxAge)
		i := 0
		for ; i < len(s.history); i++ {
			if !s.history[i].AsOf.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(s.history) {
			s.history = s.history[i:]
		}
	}

	s.latest = &snap
	return snap
}

// Latest returns the most recently published snapshot.
func (s *MemoryStore) Latest() (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return weather.Snapshot{}, ErrNotFound
	}
	return *s.latest, nil
}

// Range returns all published snapshots between from and to (inclusive).
func (s *MemoryStore) Range(from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Snapshot
	for _, snap := range s.history {
		if !snap.AsOf.Before(from) && !snap.AsOf.After(to) {
			result = append(result, snap)
		}
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
