package fetchers

import (
	"time"
)

// wwTime is the timestamp layout used throughout the WillyWeather API.
const wwTime = "2006-01-02 15:04:05"

func parseWWTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(wwTime, s)
	if err != nil {
		// Warning expiries sometimes arrive as RFC3339.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}
		}
	}
	return t.UTC()
}

// dayBlock is the generic day/entries wrapper every forecast type shares.
type dayBlock[E any] struct {
	DateTime string `json:"dateTime"`
	Entries  []E    `json:"entries"`
}

type forecastBlock[E any] struct {
	Days []dayBlock[E] `json:"days"`
}

func firstEntry[E any](days []dayBlock[E], idx int) (E, bool) {
	var zero E
	if idx < 0 || idx >= len(days) || len(days[idx].Entries) == 0 {
		return zero, false
	}
	return days[idx].Entries[0], true
}
