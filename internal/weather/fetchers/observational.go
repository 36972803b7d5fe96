package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ozweather/willypoll/internal/station"
	"github.com/ozweather/willypoll/internal/weather"
	"github.com/ozweather/willypoll/internal/willy"
)

// extendedTextDays is how many days of regional precis make up the extended
// forecast text.
const extendedTextDays = 2

// Observational fetches current conditions for a station. One API call per
// invocation, plus exactly one more when extended text is requested.
type Observational struct {
	client *willy.Client
	now    func() time.Time
}

func NewObservational(client *willy.Client) *Observational {
	return &Observational{client: client, now: time.Now}
}

type observationsPayload struct {
	Temperature struct {
		Temperature         float64 `json:"temperature"`
		ApparentTemperature float64 `json:"apparentTemperature"`
	} `json:"temperature"`
	Humidity struct {
		Percentage float64 `json:"percentage"`
	} `json:"humidity"`
	DewPoint struct {
		Temperature float64 `json:"temperature"`
	} `json:"dewPoint"`
	Pressure struct {
		Pressure float64 `json:"pressure"`
	} `json:"pressure"`
	Wind struct {
		Speed         float64 `json:"speed"`
		GustSpeed     float64 `json:"gustSpeed"`
		Direction     float64 `json:"direction"`
		DirectionText string  `json:"directionText"`
	} `json:"wind"`
	Rainfall struct {
		LastHourAmount float64 `json:"lastHourAmount"`
		TodayAmount    float64 `json:"todayAmount"`
		Since9AMAmount float64 `json:"since9AMAmount"`
	} `json:"rainfall"`
	Cloud struct {
		Oktas float64 `json:"oktas"`
	} `json:"cloud"`
}

type precisEntry struct {
	DateTime string `json:"dateTime"`
	Precis   string `json:"precis"`
}

func (f *Observational) Fetch(ctx context.Context, st station.Identity, opts weather.ObservationalOptions) (*weather.ObservationalRecord, error) {
	params := url.Values{}
	params.Set("observational", "true")
	params.Set("forecasts", "precis")
	params.Set("days", "1")
	params.Set("units", willy.Units)

	raw, err := f.client.Get(ctx, fmt.Sprintf("locations/%s/weather.json", st.ID), params, nil)
	if err != nil {
		return nil, &weather.FetchError{Domain: weather.DomainObservational, Retryable: willy.IsRetryable(err), Err: err}
	}

	var payload struct {
		Observational struct {
			Observations  observationsPayload `json:"observations"`
			IssueDateTime string              `json:"issueDateTime"`
		} `json:"observational"`
		Forecasts struct {
			Precis forecastBlock[precisEntry] `json:"precis"`
		} `json:"forecasts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &weather.FetchError{Domain: weather.DomainObservational, Retryable: false, Err: fmt.Errorf("decoding observational payload: %w", err)}
	}

	obs := payload.Observational.Observations
	rec := &weather.ObservationalRecord{
		Temperature:         obs.Temperature.Temperature,
		ApparentTemperature: obs.Temperature.ApparentTemperature,
		DewPoint:            obs.DewPoint.Temperature,
		Humidity:            obs.Humidity.Percentage,
		Pressure:            obs.Pressure.Pressure,
		Wind: weather.WindObservation{
			SpeedKMH:      obs.Wind.Speed,
			GustKMH:       obs.Wind.GustSpeed,
			DirectionDeg:  obs.Wind.Direction,
			DirectionText: obs.Wind.DirectionText,
		},
		Rainfall: weather.RainfallObservation{
			LastHourMM: obs.Rainfall.LastHourAmount,
			TodayMM:    obs.Rainfall.TodayAmount,
			Since9AMMM: obs.Rainfall.Since9AMAmount,
		},
		CloudOktas: obs.Cloud.Oktas,
		ObservedAt: parseWWTime(payload.Observational.IssueDateTime),
	}
	if entry, ok := firstEntry(payload.Forecasts.Precis.Days, 0); ok {
		rec.Precis = entry.Precis
	}

	now := f.now().UTC()
	rec.SunMoon = weather.SunMoonFor(st.Latitude, st.Longitude, now)
	if rec.ObservedAt.IsZero() {
		rec.ObservedAt = now
	}

	if opts.ExtendedText {
		text, err := f.fetchExtendedText(ctx, st)
		if err != nil {
			// Cosmetic text must not degrade the whole domain.
			log.Printf("observational: extended text fetch failed: %v", err)
		} else {
			rec.ExtendedText = text
		}
	}

	return rec, nil
}

// fetchExtendedText issues the region-precis request: a GET whose selector
// travels as a serialized JSON header rather than a POST body.
func (f *Observational) fetchExtendedText(ctx context.Context, st station.Identity) (string, error) {
	selector, err := json.Marshal(map[string]any{
		"forecasts": []string{"precis"},
		"days":      extendedTextDays,
	})
	if err != nil {
		return "", err
	}

	headers := http.Header{}
	headers.Set("x-payload", string(selector))

	raw, err := f.client.Get(ctx, fmt.Sprintf("locations/%s/weather.json", st.ID), nil, headers)
	if err != nil {
		return "", err
	}

	var payload struct {
		Forecasts struct {
			Precis forecastBlock[precisEntry] `json:"precis"`
		} `json:"forecasts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decoding precis payload: %w", err)
	}

	var parts []string
	for _, day := range payload.Forecasts.Precis.Days {
		for _, entry := range day.Entries {
			if entry.Precis != "" {
				parts = append(parts, entry.Precis)
			}
		}
	}
	return strings.Join(parts, " "), nil
}
