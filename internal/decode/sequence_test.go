package decode

import (
	"errors"
	"testing"
	"time"

	"github.com/openpace/activity-backend-go/internal/models"
)

func tsPoints(t0 time.Time, offsets ...int) []models.TrackPoint {
	points := make([]models.TrackPoint, 0, len(offsets))
	for _, off := range offsets {
		points = append(points, models.TrackPoint{Time: t0.Add(time.Duration(off) * time.Second)})
	}
	return points
}

func TestFinalizeDropsOutOfOrderPoints(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	// 40 ordered points with one regression in the middle: 1/41 < 5%.
	offsets := make([]int, 0, 41)
	for i := 0; i < 20; i++ {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, 5) // clock regression
	for i := 20; i < 40; i++ {
		offsets = append(offsets, i)
	}

	seq, err := finalize("gpx", DefaultConfig(), tsPoints(t0, offsets...), 0, nil, models.TypeRide)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(seq.Points) != 40 {
		t.Errorf("kept points: got %d, want 40", len(seq.Points))
	}
	if seq.Dropped != 1 {
		t.Errorf("dropped: got %d, want 1", seq.Dropped)
	}

	var last time.Time
	for i, p := range seq.Points {
		if p.Time.Before(last) {
			t.Fatalf("point %d out of order", i)
		}
		last = p.Time
	}
}

func TestFinalizeRejectsExcessiveCorruption(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	// 10 points, 2 regressions: 20% > 5% tolerance.
	seq, err := finalize("tcx", DefaultConfig(), tsPoints(t0, 0, 1, 2, 3, 1, 5, 6, 2, 8, 9), 0, nil, models.TypeRun)
	if seq != nil {
		t.Fatal("expected rejection, got a sequence")
	}
	var de *models.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestFinalizeCountsUpstreamDrops(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	// 9 good points plus 1 dropped during parsing: exactly at 10% with a
	// loose config, over with the default.
	points := tsPoints(t0, 0, 1, 2, 3, 4, 5, 6, 7, 8)

	if _, err := finalize("fit", DefaultConfig(), points, 1, nil, models.TypeRide); err == nil {
		t.Error("expected default tolerance to reject 10% upstream drops")
	}

	loose := Config{MaxDroppedFraction: 0.2}
	if _, err := finalize("fit", loose, points, 1, nil, models.TypeRide); err != nil {
		t.Errorf("loose tolerance should accept: %v", err)
	}
}

func TestFinalizeZeroPoints(t *testing.T) {
	_, err := finalize("gpx", DefaultConfig(), nil, 0, nil, models.TypeRide)
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for zero trackpoints, got %v", err)
	}
}

func TestFinalizeZeroTimestamps(t *testing.T) {
	points := []models.TrackPoint{{}, {}, {}}
	_, err := finalize("gpx", DefaultConfig(), points, 0, nil, models.TypeRide)
	if err == nil {
		t.Fatal("expected error for all-zero timestamps")
	}
}

func TestCanonicalSport(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"cycling", models.TypeRide},
		{"Biking", models.TypeRide},
		{"Running", models.TypeRun},
		{"trail run", models.TypeRun},
		{"Cross-Country-Skiing", models.TypeCrossCountrySkiing},
		{"snowboard", models.TypeSnowboarding},
		{"yoga", models.TypeWorkout},
		{"", models.TypeWorkout},
		{"some future sport", models.TypeWorkout},
	}

	for _, tc := range cases {
		if got := canonicalSport(tc.token); got != tc.want {
			t.Errorf("canonicalSport(%q): got %s, want %s", tc.token, got, tc.want)
		}
	}
}
