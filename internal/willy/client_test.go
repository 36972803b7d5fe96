package willy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func fastBackoff() BackoffConfig {
	return BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
}

func TestGetBuildsKeyedURL(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "secret", WithBaseURL(srv.URL))
	raw, err := c.Get(context.Background(), "search.json", url.Values{"lat": {"-33.89"}}, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("body = %s", raw)
	}
	if gotPath != "/secret/search.json" {
		t.Errorf("path = %q, want /secret/search.json", gotPath)
	}
	if gotQuery != "lat=-33.89" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestGetForwardsHeaders(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("x-payload")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	headers := http.Header{}
	headers.Set("x-payload", `{"days":2}`)

	c := NewClient(srv.Client(), "secret", WithBaseURL(srv.URL))
	if _, err := c.Get(context.Background(), "locations/1/weather.json", nil, headers); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != `{"days":2}` {
		t.Errorf("x-payload header = %q", got)
	}
}

func TestUnauthorizedIsPermanent(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "badkey", WithBaseURL(srv.URL), WithBackoff(fastBackoff()))
	_, err := c.Get(context.Background(), "search.json", nil, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if IsRetryable(err) {
		t.Error("auth failure must not be retryable")
	}
	if atomic.LoadInt32(&requests) != 1 {
		t.Errorf("got %d requests, want 1 (no retry on auth failure)", requests)
	}
}

func TestRateLimitSurfacesWithoutRetry(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "key", WithBaseURL(srv.URL), WithBackoff(fastBackoff()))
	_, err := c.Get(context.Background(), "search.json", nil, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d", apiErr.Status)
	}
	if !apiErr.Retryable {
		t.Error("429 must be marked retryable for the next due cycle")
	}
	if atomic.LoadInt32(&requests) != 1 {
		t.Errorf("got %d requests, want 1 (429 is not retried in-request)", requests)
	}
}

func TestServerErrorRetriedThenSucceeds(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "key", WithBaseURL(srv.URL), WithBackoff(fastBackoff()))
	raw, err := c.Get(context.Background(), "search.json", nil, nil)
	if err != nil {
		t.Fatalf("Get after retries: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("body = %s", raw)
	}
	if atomic.LoadInt32(&requests) != 3 {
		t.Errorf("got %d requests, want 3", requests)
	}
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "key", WithBaseURL(srv.URL), WithBackoff(BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond}))
	_, err := c.Get(context.Background(), "search.json", nil, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if !apiErr.Retryable {
		t.Error("5xx must stay retryable for the next due cycle")
	}
	if got := atomic.LoadInt32(&requests); got != 3 {
		t.Errorf("got %d requests, want 3 (initial + 2 retries)", got)
	}
}

func TestOtherClientErrorsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such location", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "key", WithBaseURL(srv.URL))
	_, err := c.Get(context.Background(), "locations/999999/weather.json", nil, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Retryable || IsRetryable(err) {
		t.Error("404 must not be retryable")
	}
}

func TestGetHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.Client(), "key", WithBaseURL(srv.URL))
	if _, err := c.Get(ctx, "search.json", nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
