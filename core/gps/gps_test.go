package gps

import (
	"math"
	"strings"
	"testing"
)

func TestDMSRoundTrip(t *testing.T) {
	values := []float64{
		0, 0.5, 12.3456, 40.7128, 74.0060, 89.9999, 179.9999, 51.5074, 2.3522,
	}
	for _, v := range values {
		got := ToDMS(v).Decimal()
		// Seconds are truncated to two decimals, which is at most
		// 0.01s of arc, i.e. 0.01/3600 degrees.
		if diff := math.Abs(got - v); diff > 0.01/3600+1e-9 {
			t.Errorf("ToDMS(%v).Decimal() = %v, off by %v", v, got, diff)
		}
	}
}

func TestToDMSComponents(t *testing.T) {
	d := ToDMS(40.7128)
	if d.Degrees != 40 {
		t.Errorf("degrees = %d, want 40", d.Degrees)
	}
	if d.Minutes != 42 {
		t.Errorf("minutes = %d, want 42", d.Minutes)
	}
	if d.Seconds < 46.0 || d.Seconds >= 47.0 {
		t.Errorf("seconds = %v, want in [46, 47)", d.Seconds)
	}
}

func TestToDMSNegativeUsesAbsolute(t *testing.T) {
	pos := ToDMS(74.0060)
	neg := ToDMS(-74.0060)
	if pos != neg {
		t.Errorf("ToDMS(-74.0060) = %+v, want %+v", neg, pos)
	}
}

func TestApplyRef(t *testing.T) {
	tests := []struct {
		value float64
		ref   string
		want  float64
	}{
		{40.7128, "N", 40.7128},
		{40.7128, "S", -40.7128},
		{74.0060, "E", 74.0060},
		{74.0060, "W", -74.0060},
		{74.0060, "", 74.0060},
	}
	for _, tt := range tests {
		if got := ApplyRef(tt.value, tt.ref); got != tt.want {
			t.Errorf("ApplyRef(%v, %q) = %v, want %v", tt.value, tt.ref, got, tt.want)
		}
	}
}

func TestFromRationals(t *testing.T) {
	pairs := [3][2]int64{{40, 1}, {42, 1}, {4608, 100}}
	want := 40.0 + 42.0/60 + 46.08/3600
	if got := FromRationals(pairs); math.Abs(got-want) > 1e-9 {
		t.Errorf("FromRationals = %v, want %v", got, want)
	}
}

func TestFromRationalsZeroDenominator(t *testing.T) {
	pairs := [3][2]int64{{40, 1}, {42, 0}, {0, 0}}
	if got := FromRationals(pairs); got != 40 {
		t.Errorf("FromRationals with zero denominators = %v, want 40", got)
	}
}

func TestRationalsEncoding(t *testing.T) {
	r := DMS{Degrees: 40, Minutes: 42, Seconds: 46.08}.rationals()
	if len(r) != 3 {
		t.Fatalf("len = %d, want 3", len(r))
	}
	if r[0].Numerator != 40 || r[0].Denominator != 1 {
		t.Errorf("degrees rational = %v/%v", r[0].Numerator, r[0].Denominator)
	}
	if r[2].Numerator != 4608 || r[2].Denominator != 100 {
		t.Errorf("seconds rational = %v/%v, want 4608/100", r[2].Numerator, r[2].Denominator)
	}
}

func TestAltitudeRationals(t *testing.T) {
	value, ref := altitudeRationals(-12.5)
	if ref != 1 {
		t.Errorf("ref for below sea level = %d, want 1", ref)
	}
	if value[0].Numerator != 1250 || value[0].Denominator != 100 {
		t.Errorf("magnitude rational = %d/%d, want 1250/100",
			value[0].Numerator, value[0].Denominator)
	}

	value, ref = altitudeRationals(100.25)
	if ref != 0 {
		t.Errorf("ref for above sea level = %d, want 0", ref)
	}
	if value[0].Numerator != 10025 || value[0].Denominator != 100 {
		t.Errorf("magnitude rational = %d/%d, want 10025/100",
			value[0].Numerator, value[0].Denominator)
	}

	if _, ref = altitudeRationals(0); ref != 0 {
		t.Errorf("ref for zero altitude = %d, want 0", ref)
	}
}

func TestReverseGeocodeKnownCities(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     string
	}{
		{40.7128, -74.0060, "New York, USA"},
		{51.5074, -0.1278, "London, UK"},
		{35.6762, 139.6503, "Tokyo, Japan"},
	}
	for _, tt := range tests {
		got := ReverseGeocode(tt.lat, tt.lon)
		if !strings.Contains(got, strings.SplitN(tt.want, ",", 2)[0]) {
			t.Errorf("ReverseGeocode(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestReverseGeocodeNearMiss(t *testing.T) {
	// A couple of degrees away still resolves to the nearest city.
	got := ReverseGeocode(41.5, -73.0)
	if !strings.Contains(got, "New York") {
		t.Errorf("ReverseGeocode(41.5, -73.0) = %q, want a New York match", got)
	}
}

func TestReverseGeocodeFallback(t *testing.T) {
	// The middle of the South Pacific is outside the match radius of
	// every known location.
	got := ReverseGeocode(-48.8767, -123.3933)
	want := "Coordinates: -48.8767°, -123.3933°"
	if got != want {
		t.Errorf("ReverseGeocode fallback = %q, want %q", got, want)
	}
}

func TestCoordinatesMissingFile(t *testing.T) {
	if _, err := Coordinates("nonexistent.jpg"); err == nil {
		t.Error("Coordinates on a missing file should fail")
	}
}
