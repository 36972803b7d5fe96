package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ozweather/willypoll/internal/station"
	"github.com/ozweather/willypoll/internal/weather"
	"github.com/ozweather/willypoll/internal/willy"
)

// Forecast fetches the day and hour forecast in one API call. Field groups
// the configuration left disabled are omitted from the request.
type Forecast struct {
	client *willy.Client
	now    func() time.Time
}

func NewForecast(client *willy.Client) *Forecast {
	return &Forecast{client: client, now: time.Now}
}

type weatherEntry struct {
	DateTime   string  `json:"dateTime"`
	PrecisCode string  `json:"precisCode"`
	Precis     string  `json:"precis"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

type rainfallEntry struct {
	StartRange  *float64 `json:"startRange"`
	EndRange    *float64 `json:"endRange"`
	Probability int      `json:"probability"`
}

type uvEntry struct {
	Index float64 `json:"index"`
	Alert string  `json:"alert"`
}

type sunEntry struct {
	RiseDateTime string `json:"riseDateTime"`
	SetDateTime  string `json:"setDateTime"`
}

type tideEntry struct {
	DateTime string  `json:"dateTime"`
	Height   float64 `json:"height"`
	Type     string  `json:"type"`
}

type hourTempEntry struct {
	DateTime    string  `json:"dateTime"`
	Temperature float64 `json:"temperature"`
}

type hourWindEntry struct {
	DateTime  string  `json:"dateTime"`
	Speed     float64 `json:"speed"`
	Direction float64 `json:"direction"`
}

type hourRainEntry struct {
	DateTime    string `json:"dateTime"`
	Probability int    `json:"probability"`
}

type swellEntry struct {
	DateTime  string  `json:"dateTime"`
	Height    float64 `json:"height"`
	Period    float64 `json:"period"`
	Direction float64 `json:"direction"`
}

func (f *Forecast) Fetch(ctx context.Context, st station.Identity, opts weather.ForecastOptions) (*weather.ForecastRecord, error) {
	types := []string{"weather", "rainfall"}
	if opts.UV {
		types = append(types, "uv")
	}
	if opts.Sunrise {
		types = append(types, "sunrisesunset")
	}
	if opts.Tides {
		types = append(types, "tides")
	}
	if opts.HourlyDays > 0 {
		types = append(types, "temperature", "wind", "rainfallprobability")
		if opts.Swell {
			types = append(types, "swell")
		}
	}

	params := url.Values{}
	params.Set("forecasts", strings.Join(types, ","))
	params.Set("days", strconv.Itoa(opts.Days))
	params.Set("units", willy.Units)

	raw, err := f.client.Get(ctx, fmt.Sprintf("locations/%s/weather.json", st.ID), params, nil)
	if err != nil {
		return nil, &weather.FetchError{Domain: weather.DomainForecast, Retryable: willy.IsRetryable(err), Err: err}
	}

	var payload struct {
		Forecasts struct {
			Weather             forecastBlock[weatherEntry]  `json:"weather"`
			Rainfall            forecastBlock[rainfallEntry] `json:"rainfall"`
			UV                  forecastBlock[uvEntry]       `json:"uv"`
			SunriseSunset       forecastBlock[sunEntry]      `json:"sunrisesunset"`
			Tides               forecastBlock[tideEntry]     `json:"tides"`
			Temperature         forecastBlock[hourTempEntry] `json:"temperature"`
			Wind                forecastBlock[hourWindEntry] `json:"wind"`
			RainfallProbability forecastBlock[hourRainEntry] `json:"rainfallprobability"`
			Swell               forecastBlock[swellEntry]    `json:"swell"`
		} `json:"forecasts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &weather.FetchError{Domain: weather.DomainForecast, Retryable: false, Err: fmt.Errorf("decoding forecast payload: %w", err)}
	}

	fc := payload.Forecasts
	rec := &weather.ForecastRecord{IssuedAt: f.now().UTC()}

	for idx, day := range fc.Weather.Days {
		if idx >= opts.Days {
			break
		}
		entry, ok := firstEntry(fc.Weather.Days, idx)
		if !ok {
			continue
		}

		d := weather.DayEntry{
			Date:       parseWWTime(firstNonEmpty(entry.DateTime, day.DateTime)),
			MinTemp:    entry.Min,
			MaxTemp:    entry.Max,
			Precis:     entry.Precis,
			PrecisCode: entry.PrecisCode,
		}

		if rain, ok := firstEntry(fc.Rainfall.Days, idx); ok {
			d.RainProbability = rain.Probability
			if rain.StartRange != nil {
				d.RainAmountMinMM = *rain.StartRange
			}
			if rain.EndRange != nil {
				d.RainAmountMaxMM = *rain.EndRange
			}
		}

		// UV entries arrive sub-daily; the day value is the peak index.
		if idx < len(fc.UV.Days) {
			for _, uv := range fc.UV.Days[idx].Entries {
				if uv.Index > d.UVIndex {
					d.UVIndex = uv.Index
				}
				if d.UVAlert == "" && uv.Alert != "" {
					d.UVAlert = uv.Alert
				}
			}
		}

		if sun, ok := firstEntry(fc.SunriseSunset.Days, idx); ok {
			d.Sunrise = parseWWTime(sun.RiseDateTime)
			d.Sunset = parseWWTime(sun.SetDateTime)
		}

		if idx < len(fc.Tides.Days) {
			for _, tide := range fc.Tides.Days[idx].Entries {
				d.Tides = append(d.Tides, weather.TideExtreme{
					Type:    tide.Type,
					Time:    parseWWTime(tide.DateTime),
					HeightM: tide.Height,
				})
			}
		}

		rec.Days = append(rec.Days, d)
	}

	if opts.HourlyDays > 0 {
		rec.Hours = buildHours(fc.Temperature, fc.Wind, fc.RainfallProbability, fc.Swell, opts.HourlyDays)
	}

	return rec, nil
}

// buildHours merges the hourly forecast types on their timestamps, with the
// temperature series as the spine. Hours past the configured day bound are
// dropped.
func buildHours(
	temps forecastBlock[hourTempEntry],
	winds forecastBlock[hourWindEntry],
	rains forecastBlock[hourRainEntry],
	swells forecastBlock[swellEntry],
	hourlyDays int,
) []weather.HourEntry {
	windAt := make(map[string]hourWindEntry)
	for _, day := range winds.Days {
		for _, e := range day.Entries {
			windAt[e.DateTime] = e
		}
	}
	rainAt := make(map[string]hourRainEntry)
	for _, day := range rains.Days {
		for _, e := range day.Entries {
			rainAt[e.DateTime] = e
		}
	}
	swellAt := make(map[string]swellEntry)
	for _, day := range swells.Days {
		for _, e := range day.Entries {
			swellAt[e.DateTime] = e
		}
	}

	var hours []weather.HourEntry
	for dayIdx, day := range temps.Days {
		if dayIdx >= hourlyDays {
			break
		}
		for _, e := range day.Entries {
			h := weather.HourEntry{
				Time:        parseWWTime(e.DateTime),
				Temperature: e.Temperature,
			}
			if w, ok := windAt[e.DateTime]; ok {
				h.WindSpeedKMH = w.Speed
				h.WindDirectionDeg = w.Direction
			}
			if r, ok := rainAt[e.DateTime]; ok {
				h.RainProbability = r.Probability
			}
			if s, ok := swellAt[e.DateTime]; ok {
				h.SwellHeightM = s.Height
				h.SwellPeriodS = s.Period
				h.SwellDirectionDeg = s.Direction
			}
			hours = append(hours, h)
		}
	}
	return hours
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
