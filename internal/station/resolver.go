package station

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/ozweather/willypoll/internal/willy"
)

// Identity is the resolved weather station. It is immutable after resolution
// and only re-resolved when the configured coordinates or override change.
type Identity struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ConfigurationError means the configured station override is invalid.
// It is fatal to setup and never retried.
type ConfigurationError struct {
	StationID string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("station %q is not usable: %v", e.StationID, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ResolutionError means the nearest-station search failed. Setup may be
// retried later.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("station resolution failed: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver maps coordinates or an explicit station ID to a station Identity.
type Resolver struct {
	client *willy.Client
}

func NewResolver(client *willy.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns the station to poll. When overrideID is set it is validated
// against the API and its metadata returned; otherwise the closest station to
// the given coordinates is searched for.
func (r *Resolver) Resolve(ctx context.Context, lat, lng float64, overrideID string) (Identity, error) {
	if overrideID != "" {
		id, err := r.validate(ctx, overrideID)
		if err != nil {
			return Identity{}, &ConfigurationError{StationID: overrideID, Err: err}
		}
		log.Printf("resolver: using configured station %s (%s)", id.ID, id.Name)
		return id, nil
	}

	id, err := r.search(ctx, lat, lng)
	if err != nil {
		return Identity{}, &ResolutionError{Err: err}
	}
	log.Printf("resolver: closest station to %.4f,%.4f is %s (%s)", lat, lng, id.ID, id.Name)
	return id, nil
}

type locationPayload struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Lat      float64     `json:"lat"`
	Lng      float64     `json:"lng"`
	Distance float64     `json:"distance"`
}

func (l locationPayload) identity() Identity {
	return Identity{
		ID:        l.ID.String(),
		Name:      l.Name,
		Latitude:  l.Lat,
		Longitude: l.Lng,
	}
}

func (r *Resolver) search(ctx context.Context, lat, lng float64) (Identity, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("units", "distance:km")

	raw, err := r.client.Get(ctx, "search.json", params, nil)
	if err != nil {
		return Identity{}, err
	}

	var payload struct {
		Location *locationPayload `json:"location"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Identity{}, fmt.Errorf("decoding search response: %w", err)
	}
	if payload.Location == nil || payload.Location.ID.String() == "" {
		return Identity{}, fmt.Errorf("no station found near %.4f,%.4f", lat, lng)
	}

	return payload.Location.identity(), nil
}

// validate fetches the station's own weather document; its location block
// confirms the ID exists and supplies name and coordinates.
func (r *Resolver) validate(ctx context.Context, stationID string) (Identity, error) {
	params := url.Values{}
	params.Set("observational", "true")
	params.Set("units", willy.Units)

	raw, err := r.client.Get(ctx, fmt.Sprintf("locations/%s/weather.json", stationID), params, nil)
	if err != nil {
		return Identity{}, err
	}

	var payload struct {
		Location *locationPayload `json:"location"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Identity{}, fmt.Errorf("decoding station response: %w", err)
	}
	if payload.Location == nil {
		return Identity{}, fmt.Errorf("response carries no location block")
	}

	id := payload.Location.identity()
	if id.Name == "" {
		id.Name = "Station " + stationID
	}
	return id, nil
}
