package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/ozweather/willypoll/internal/common"
	"github.com/ozweather/willypoll/internal/station"
	"github.com/ozweather/willypoll/internal/weather"
)

// State of one fetch domain.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateFresh         State = "fresh"
	StateStaleOnError  State = "stale_on_error"
)

// DomainStatus is the observable per-domain coordinator state.
type DomainStatus struct {
	Domain      weather.Domain `json:"domain"`
	State       State          `json:"state"`
	LastAttempt time.Time      `json:"lastAttempt,omitzero"`
	LastSuccess time.Time      `json:"lastSuccess,omitzero"`
	LastError   string         `json:"lastError,omitempty"`
}

// Fetchers bundles the three domain fetchers.
type Fetchers struct {
	Observational weather.ObservationalFetcher
	Forecast      weather.ForecastFetcher
	Warnings      weather.WarningsFetcher
}

// FetchOptions carries the per-domain request options derived from validated
// configuration.
type FetchOptions struct {
	Observational weather.ObservationalOptions
	Forecast      weather.ForecastOptions
	// WarningsEnabled removes the warnings domain from scheduling entirely.
	WarningsEnabled bool
}

type domainState struct {
	lastAttempt time.Time
	lastSuccess time.Time
	lastErr     error
	inFlight    bool
}

// Coordinator drives the three fetch domains: per-cycle due-checks against
// the interval policies, single-flight fetches, last-known-good caching on
// failure, and atomic snapshot publication to subscribers. One Coordinator
// exists per configured station; there is no ambient shared state.
type Coordinator struct {
	station      station.Identity
	fetchers     Fetchers
	opts         FetchOptions
	policies     map[weather.Domain]IntervalPolicy
	store        weather.Store
	fetchTimeout time.Duration
	clock        func() time.Time
	scheduler    *gocron.Scheduler

	mu      sync.Mutex
	domains map[weather.Domain]*domainState
	subs    map[string]func(weather.Snapshot)
	closed  bool
}

func New(
	st station.Identity,
	fetchers Fetchers,
	opts FetchOptions,
	policies map[weather.Domain]IntervalPolicy,
	store weather.Store,
	fetchTimeout time.Duration,
) *Coordinator {
	c := &Coordinator{
		station:      st,
		fetchers:     fetchers,
		opts:         opts,
		policies:     policies,
		store:        store,
		fetchTimeout: fetchTimeout,
		clock:        time.Now,
		scheduler:    gocron.NewScheduler(time.UTC),
		domains:      make(map[weather.Domain]*domainState),
		subs:         make(map[string]func(weather.Snapshot)),
	}
	for _, d := range c.scheduledDomains() {
		c.domains[d] = &domainState{}
	}
	return c
}

func (c *Coordinator) scheduledDomains() []weather.Domain {
	domains := []weather.Domain{weather.DomainObservational, weather.DomainForecast}
	if c.opts.WarningsEnabled {
		domains = append(domains, weather.DomainWarnings)
	}
	return domains
}

// Start schedules the drive tick at the shortest configured interval and
// runs the first cycle immediately.
func (c *Coordinator) Start(ctx context.Context) error {
	tick := c.shortestInterval()
	seconds := int(tick.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := c.scheduler.Every(seconds).Seconds().Do(func() {
		c.RunCycle(ctx)
	})
	if err != nil {
		return err
	}

	log.Printf("coordinator: driving station %s every %s", c.station.ID, tick)
	c.scheduler.StartAsync()
	c.RunCycle(ctx)
	return nil
}

// Stop halts the drive tick. In-flight fetches finish on their own; their
// results are discarded once the driving context is cancelled.
func (c *Coordinator) Stop() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Coordinator) shortestInterval() time.Duration {
	var intervals []time.Duration
	for _, p := range c.policies {
		intervals = append(intervals, p.Day, p.Night)
	}
	return common.MinDuration(intervals...)
}

// Subscribe registers a callback invoked with every published snapshot and
// returns a token for Unsubscribe.
func (c *Coordinator) Subscribe(fn func(weather.Snapshot)) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.subs[id] = fn
	c.mu.Unlock()
	return id
}

func (c *Coordinator) Unsubscribe(id string) {
	c.mu.Lock()
	delete(c.subs, id)
	c.mu.Unlock()
}

// RunCycle executes one drive cycle: determine the due domains, fetch them
// concurrently with single-flight protection, then publish one consistent
// snapshot. Not-due domains contribute their cached data verbatim. Cycles in
// which nothing was due publish nothing.
func (c *Coordinator) RunCycle(ctx context.Context) {
	now := c.clock()

	var wg sync.WaitGroup
	launched := 0

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	for _, d := range c.scheduledDomains() {
		ds := c.domains[d]
		if ds.inFlight {
			// Single-flight: a due-check against an in-flight domain is a
			// no-op for this cycle.
			continue
		}
		if !c.due(d, ds, now) {
			continue
		}
		ds.inFlight = true
		ds.lastAttempt = now
		launched++
		wg.Add(1)
		go c.fetch(ctx, d, now, &wg)
	}
	c.mu.Unlock()

	if launched == 0 {
		return
	}
	wg.Wait()

	if ctx.Err() != nil {
		return
	}

	snap := c.store.Publish(c.station, c.clock())
	c.notify(snap)
}

// due treats a never-attempted domain as always due; otherwise the elapsed
// time since the last attempt must reach the policy's effective interval.
func (c *Coordinator) due(d weather.Domain, ds *domainState, now time.Time) bool {
	if ds.lastAttempt.IsZero() {
		return true
	}
	policy, ok := c.policies[d]
	if !ok {
		return false
	}
	return now.Sub(ds.lastAttempt) >= policy.Effective(now)
}

func (c *Coordinator) fetch(ctx context.Context, d weather.Domain, attemptAt time.Time, wg *sync.WaitGroup) {
	defer wg.Done()

	fctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	var err error
	switch d {
	case weather.DomainObservational:
		var rec *weather.ObservationalRecord
		rec, err = c.fetchers.Observational.Fetch(fctx, c.station, c.opts.Observational)
		if err == nil && ctx.Err() == nil {
			c.store.SetObservational(rec, attemptAt)
		}
	case weather.DomainForecast:
		var rec *weather.ForecastRecord
		rec, err = c.fetchers.Forecast.Fetch(fctx, c.station, c.opts.Forecast)
		if err == nil && ctx.Err() == nil {
			c.store.SetForecast(rec, attemptAt)
		}
	case weather.DomainWarnings:
		var rec *weather.WarningRecord
		rec, err = c.fetchers.Warnings.Fetch(fctx, c.station)
		if err == nil && ctx.Err() == nil {
			c.store.SetWarnings(rec, attemptAt)
		}
	}

	c.mu.Lock()
	ds := c.domains[d]
	ds.inFlight = false
	if err != nil {
		ds.lastErr = err
	} else {
		ds.lastErr = nil
		ds.lastSuccess = attemptAt
	}
	c.mu.Unlock()

	if err != nil {
		// Contain the failure to this domain; its cached data stays intact.
		if ctx.Err() == nil {
			c.store.SetError(d, err)
		}
		log.Printf("coordinator: %s fetch failed for station %s: %v", d, c.station.ID, err)
	}
}

func (c *Coordinator) notify(snap weather.Snapshot) {
	c.mu.Lock()
	fns := make([]func(weather.Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Status reports the state machine position of every scheduled domain.
func (c *Coordinator) Status() []DomainStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := make([]DomainStatus, 0, len(c.domains))
	for _, d := range c.scheduledDomains() {
		ds := c.domains[d]
		status := DomainStatus{
			Domain:      d,
			State:       StateUninitialized,
			LastAttempt: ds.lastAttempt,
			LastSuccess: ds.lastSuccess,
		}
		if !ds.lastSuccess.IsZero() {
			status.State = StateFresh
			if ds.lastErr != nil {
				status.State = StateStaleOnError
			}
		}
		if ds.lastErr != nil {
			status.LastError = ds.lastErr.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}
