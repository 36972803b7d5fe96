package scheduler

import "time"

// IntervalPolicy yields a domain's effective refresh interval for a given
// wall-clock time. The night window [NightStartHour, NightEndHour) may wrap
// past midnight, e.g. start=21 end=7 spans 21:00 through 06:59.
type IntervalPolicy struct {
	Day            time.Duration
	Night          time.Duration
	NightStartHour int
	NightEndHour   int
}

// Effective returns the night interval while now falls inside the night
// window, the day interval otherwise. Pure and deterministic given now.
func (p IntervalPolicy) Effective(now time.Time) time.Duration {
	if isNight(now.Hour(), p.NightStartHour, p.NightEndHour) {
		return p.Night
	}
	return p.Day
}

func isNight(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}
