package scheduler

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2026, time.March, 10, hour, 30, 0, 0, time.UTC)
}

func TestIsNightWraparound(t *testing.T) {
	// start=21 end=7 wraps past midnight: hours 21-23 and 0-6 are night.
	for hour := 0; hour < 24; hour++ {
		want := hour >= 21 || hour < 7
		if got := isNight(hour, 21, 7); got != want {
			t.Errorf("isNight(%d, 21, 7) = %v, want %v", hour, got, want)
		}
	}
}

func TestIsNightNonWrap(t *testing.T) {
	// start=7 end=21 does not wrap: hours 7-20 are inside the window.
	for hour := 0; hour < 24; hour++ {
		want := hour >= 7 && hour < 21
		if got := isNight(hour, 7, 21); got != want {
			t.Errorf("isNight(%d, 7, 21) = %v, want %v", hour, got, want)
		}
	}
}

func TestIsNightEmptyWindow(t *testing.T) {
	// Equal bounds form an empty window; every hour is day.
	for hour := 0; hour < 24; hour++ {
		if isNight(hour, 5, 5) {
			t.Errorf("isNight(%d, 5, 5) = true, want false", hour)
		}
	}
}

func TestEffectiveInterval(t *testing.T) {
	policy := IntervalPolicy{
		Day:            10 * time.Minute,
		Night:          30 * time.Minute,
		NightStartHour: 21,
		NightEndHour:   7,
	}

	cases := []struct {
		hour int
		want time.Duration
	}{
		{14, 10 * time.Minute},
		{20, 10 * time.Minute},
		{21, 30 * time.Minute},
		{23, 30 * time.Minute},
		{0, 30 * time.Minute},
		{6, 30 * time.Minute},
		{7, 10 * time.Minute},
	}
	for _, tc := range cases {
		if got := policy.Effective(at(tc.hour)); got != tc.want {
			t.Errorf("Effective at hour %d = %v, want %v", tc.hour, got, tc.want)
		}
	}
}
