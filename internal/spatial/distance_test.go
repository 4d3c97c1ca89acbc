package spatial

import (
	"math"
	"testing"
	"time"
)

func TestHaversineDistanceSymmetry(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"equator", 0, 0, 0, 0.001},
		{"mid latitude", 45.5, -122.6, 45.6, -122.7},
		{"cross meridian", 51.5, -0.001, 51.5, 0.001},
		{"southern hemisphere", -33.86, 151.2, -33.87, 151.21},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ab := HaversineDistance(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			ba := HaversineDistance(tc.lat2, tc.lon2, tc.lat1, tc.lon1)

			if ab < 0 {
				t.Errorf("distance must be non-negative, got %f", ab)
			}
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("distance not symmetric: %f vs %f", ab, ba)
			}
		})
	}
}

func TestHaversineDistanceIdentity(t *testing.T) {
	if d := HaversineDistance(40.0, -105.0, 40.0, -105.0); d != 0 {
		t.Errorf("distance from a point to itself should be 0, got %f", d)
	}
}

func TestHaversineDistanceKnownValue(t *testing.T) {
	// One degree of latitude along a meridian is ~111.2 km on a 6371 km
	// sphere.
	d := HaversineDistance(0, 0, 1, 0)
	want := EarthRadiusMeters * math.Pi / 180
	if math.Abs(d-want) > 1.0 {
		t.Errorf("1 degree of latitude: got %f, want %f", d, want)
	}
}

func TestBearing(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Bearing(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > 0.01 {
				t.Errorf("bearing: got %f, want %f", got, tc.want)
			}
		})
	}
}

func TestInstantSpeed(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("zero prev time", func(t *testing.T) {
		if v := InstantSpeed(time.Time{}, t0, 0, 0, 0, 0.001); v != 0 {
			t.Errorf("expected 0 for missing previous timestamp, got %f", v)
		}
	})

	t.Run("clock regression", func(t *testing.T) {
		if v := InstantSpeed(t0, t0.Add(-time.Second), 0, 0, 0, 0.001); v != 0 {
			t.Errorf("expected 0 for clock regression, got %f", v)
		}
	})

	t.Run("equal timestamps", func(t *testing.T) {
		if v := InstantSpeed(t0, t0, 0, 0, 0, 0.001); v != 0 {
			t.Errorf("expected 0 for equal timestamps, got %f", v)
		}
	})

	t.Run("normal pair", func(t *testing.T) {
		v := InstantSpeed(t0, t0.Add(10*time.Second), 0, 0, 0, 0.001)
		dist := HaversineDistance(0, 0, 0, 0.001)
		want := dist / 10
		if math.Abs(v-want) > 1e-9 {
			t.Errorf("speed: got %f, want %f", v, want)
		}
	})
}
