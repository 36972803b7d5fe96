package station

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ozweather/willypoll/internal/willy"
)

func newTestResolver(t *testing.T, handler http.Handler) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewResolver(willy.NewClient(srv.Client(), "testkey", willy.WithBaseURL(srv.URL)))
}

func TestResolveBySearch(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/testkey/search.json" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("lat") != "-33.89" || q.Get("lng") != "151.27" {
			t.Errorf("coordinates = %s,%s", q.Get("lat"), q.Get("lng"))
		}
		w.Write([]byte(`{"location": {"id": 4988, "name": "Bondi Beach", "lat": -33.8908, "lng": 151.2743, "distance": 1.2}}`))
	}))

	id, err := r.Resolve(context.Background(), -33.89, 151.27, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.ID != "4988" || id.Name != "Bondi Beach" {
		t.Errorf("identity = %+v", id)
	}
	if id.Latitude != -33.8908 || id.Longitude != 151.2743 {
		t.Errorf("coordinates = %v,%v", id.Latitude, id.Longitude)
	}
}

func TestResolveSearchNoStation(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"location": null}`))
	}))

	_, err := r.Resolve(context.Background(), 0, 0, "")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %v, want *ResolutionError", err)
	}
}

func TestResolveSearchAPIFailure(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	_, err := r.Resolve(context.Background(), -33.89, 151.27, "")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %v, want *ResolutionError", err)
	}
}

func TestResolveWithOverride(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/testkey/locations/4988/weather.json" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		w.Write([]byte(`{"location": {"id": 4988, "name": "Bondi Beach", "lat": -33.8908, "lng": 151.2743}}`))
	}))

	id, err := r.Resolve(context.Background(), 0, 0, "4988")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.ID != "4988" || id.Name != "Bondi Beach" {
		t.Errorf("identity = %+v", id)
	}
}

func TestResolveOverrideNameFallback(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"location": {"id": 4988}}`))
	}))

	id, err := r.Resolve(context.Background(), 0, 0, "4988")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.Name != "Station 4988" {
		t.Errorf("name = %q, want fallback", id.Name)
	}
}

func TestResolveInvalidOverride(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "no such location", http.StatusNotFound)
	}))

	_, err := r.Resolve(context.Background(), 0, 0, "999999")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigurationError", err)
	}
	if cfgErr.StationID != "999999" {
		t.Errorf("station id = %q", cfgErr.StationID)
	}
}
