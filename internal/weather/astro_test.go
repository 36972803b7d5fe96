package weather

import (
	"testing"
	"time"
)

// lunation returns the instant the given fraction of a synodic month after
// the reference new moon.
func lunation(frac float64) time.Time {
	hours := synodicMonth * frac * 24
	return newMoonEpoch.Add(time.Duration(hours * float64(time.Hour)))
}

func TestMoonPhaseAtEpoch(t *testing.T) {
	if got := moonPhase(newMoonEpoch); got != "new_moon" {
		t.Errorf("moonPhase at reference new moon = %s, want new_moon", got)
	}
}

func TestMoonPhaseHalfCycle(t *testing.T) {
	if got := moonPhase(lunation(0.5)); got != "full_moon" {
		t.Errorf("moonPhase half a lunation after new moon = %s, want full_moon", got)
	}
}

func TestMoonPhaseFullCycleWrapsToNew(t *testing.T) {
	if got := moonPhase(lunation(1)); got != "new_moon" {
		t.Errorf("moonPhase one lunation later = %s, want new_moon", got)
	}
}

func TestMoonPhaseQuarters(t *testing.T) {
	if got := moonPhase(lunation(0.25)); got != "first_quarter" {
		t.Errorf("moonPhase quarter lunation = %s, want first_quarter", got)
	}
	if got := moonPhase(lunation(0.75)); got != "last_quarter" {
		t.Errorf("moonPhase three-quarter lunation = %s, want last_quarter", got)
	}
}

func TestSunMoonForPopulatesAllFields(t *testing.T) {
	// Bondi Beach on an equinox-adjacent date: sunrise and sunset both exist.
	sm := SunMoonFor(-33.89, 151.27, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))
	if sm.Sunrise.IsZero() || sm.Sunset.IsZero() {
		t.Errorf("sun times missing: sunrise=%v sunset=%v", sm.Sunrise, sm.Sunset)
	}
	if sm.MoonPhase == "" {
		t.Error("moon phase missing")
	}
}
