package willy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://api.willyweather.com.au/v2"

// Units requested on every weather call so payloads arrive pre-converted.
const Units = "distance:km,temperature:c,amount:mm,speed:km/h,pressure:hpa,tideHeight:m,swellHeight:m"

// BackoffConfig controls in-request retry behaviour for transient failures.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// APIError is a non-2xx response from the WillyWeather API.
type APIError struct {
	Status    int
	Retryable bool
	Message   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("willyweather api: http %d: %s", e.Status, e.Message)
}

var (
	ErrUnauthorized = errors.New("api key rejected")
	errNoHTTPClient = errors.New("http client not configured")
	errCircuitOpen  = errors.New("circuit breaker open")
)

// IsRetryable reports whether err represents a transient failure that a later
// due cycle may recover from. Auth failures are permanent until reconfigured.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	return true
}

// Client is a thin WillyWeather v2 API client. All requests go through one
// circuit breaker; 5xx and network errors are retried with bounded
// exponential backoff, while 429 is surfaced immediately so the caller's
// due-cycle throttling governs the retry rate.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithBackoff overrides the retry/backoff settings.
func WithBackoff(b BackoffConfig) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

func NewClient(client *http.Client, apiKey string, opts ...Option) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "willyweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  client,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an authenticated GET against the given endpoint (path below
// the API key segment, e.g. "search.json" or "locations/4988/weather.json")
// and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, headers http.Header) (json.RawMessage, error) {
	if c.client == nil {
		return nil, errNoHTTPClient
	}

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiKey, strings.TrimLeft(endpoint, "/"))
		if len(params) > 0 {
			u = u + "?" + params.Encode()
		}
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		return req, nil
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			defer resp.Body.Close()

			body, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return nil, readErr
			}

			switch {
			case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
				return nil, fmt.Errorf("%w: http %d", ErrUnauthorized, resp.StatusCode)
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, &APIError{Status: resp.StatusCode, Retryable: true, Message: "rate limited"}
			case resp.StatusCode >= 500:
				return nil, &APIError{Status: resp.StatusCode, Retryable: true, Message: trim(body)}
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return nil, &APIError{Status: resp.StatusCode, Retryable: false, Message: trim(body)}
			}

			return json.RawMessage(body), nil
		})

		if err == nil {
			raw, ok := result.(json.RawMessage)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return raw, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if !retryInLoop(err) {
			return nil, err
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// retryInLoop limits in-request retries to 5xx and transport errors. Auth
// failures are permanent and 429 is left to the next due cycle.
func retryInLoop(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return true
}

func trim(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
