package common

import (
	"reflect"
	"testing"
	"time"
)

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{",,", nil},
	}
	for _, tc := range cases {
		if got := SplitList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMinDuration(t *testing.T) {
	cases := []struct {
		in   []time.Duration
		want time.Duration
	}{
		{nil, 0},
		{[]time.Duration{time.Minute}, time.Minute},
		{[]time.Duration{time.Hour, time.Minute, 30 * time.Minute}, time.Minute},
		{[]time.Duration{0, -time.Second, time.Hour}, time.Hour},
		{[]time.Duration{0, -time.Second}, 0},
	}
	for _, tc := range cases {
		if got := MinDuration(tc.in...); got != tc.want {
			t.Errorf("MinDuration(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
