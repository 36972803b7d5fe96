package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ozweather/willypoll/internal/station"
	"github.com/ozweather/willypoll/internal/weather"
	"github.com/ozweather/willypoll/internal/willy"
)

// Warnings fetches all active warnings for the station's region in one API
// call. Grouping by type is left to the aggregator.
type Warnings struct {
	client *willy.Client
}

func NewWarnings(client *willy.Client) *Warnings {
	return &Warnings{client: client}
}

type warningPayload struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Severity       string `json:"severity"`
	IssueDateTime  string `json:"issueDateTime"`
	ExpireDateTime string `json:"expireDateTime"`
	WarningType    struct {
		Classification string `json:"classification"`
		Name           string `json:"name"`
	} `json:"warningType"`
}

func (f *Warnings) Fetch(ctx context.Context, st station.Identity) (*weather.WarningRecord, error) {
	params := url.Values{}
	params.Set("units", "distance:km")

	raw, err := f.client.Get(ctx, fmt.Sprintf("locations/%s/warnings.json", st.ID), params, nil)
	if err != nil {
		return nil, &weather.FetchError{Domain: weather.DomainWarnings, Retryable: willy.IsRetryable(err), Err: err}
	}

	// The endpoint returns a bare array; some gateway variants wrap it.
	var list []warningPayload
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapped struct {
			Warnings []warningPayload `json:"warnings"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, &weather.FetchError{Domain: weather.DomainWarnings, Retryable: false, Err: fmt.Errorf("decoding warnings payload: %w", err)}
		}
		list = wrapped.Warnings
	}

	rec := &weather.WarningRecord{Warnings: make([]weather.Warning, 0, len(list))}
	for _, w := range list {
		rec.Warnings = append(rec.Warnings, weather.Warning{
			Code:      w.Code,
			Name:      w.Name,
			Type:      weather.NormalizeClassification(w.WarningType.Classification),
			Severity:  normalizeSeverity(w.Severity),
			IssuedAt:  parseWWTime(w.IssueDateTime),
			ExpiresAt: parseWWTime(w.ExpireDateTime),
		})
	}
	return rec, nil
}

func normalizeSeverity(s string) weather.Severity {
	switch s {
	case "red", "severe":
		return weather.SeverityRed
	case "amber", "orange", "moderate":
		return weather.SeverityAmber
	default:
		return weather.SeverityYellow
	}
}
