package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/openpace/activity-backend-go/internal/models"
)

func contiguousSequence(n int) *models.TrackSequence {
	seq := &models.TrackSequence{Sport: models.TypeRide}
	for i := 0; i < n; i++ {
		seq.Points = append(seq.Points, withPos(pointAt(i), 0, float64(i)*0.0001))
	}
	return seq
}

func TestSplitLapsWithoutBoundaries(t *testing.T) {
	seq := contiguousSequence(10)
	laps := SplitLaps(seq)
	if len(laps) != 1 {
		t.Fatalf("expected one implicit lap, got %d", len(laps))
	}
	if len(laps[0]) != 10 {
		t.Errorf("implicit lap should hold every point, got %d", len(laps[0]))
	}
}

func TestSplitLapsAtBoundaries(t *testing.T) {
	seq := contiguousSequence(20)
	seq.LapStarts = []time.Time{
		testStart,
		testStart.Add(10 * time.Second),
	}

	laps := SplitLaps(seq)
	if len(laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(laps))
	}
	if len(laps[0]) != 10 || len(laps[1]) != 10 {
		t.Errorf("lap sizes: got %d/%d, want 10/10", len(laps[0]), len(laps[1]))
	}
	if !laps[1][0].Time.Equal(testStart.Add(10 * time.Second)) {
		t.Errorf("second lap must start at its boundary, got %v", laps[1][0].Time)
	}
}

func TestSplitLapsSkipsEmptyBoundary(t *testing.T) {
	seq := contiguousSequence(10)
	// Two markers with no samples between them.
	seq.LapStarts = []time.Time{
		testStart,
		testStart.Add(4 * time.Second),
		testStart.Add(4 * time.Second),
	}

	laps := SplitLaps(seq)
	if len(laps) != 2 {
		t.Fatalf("empty lap must be skipped: got %d laps", len(laps))
	}
}

func TestBuildLapsElapsedPartition(t *testing.T) {
	// Laps fully partition a 1 Hz sequence, so the per-lap elapsed sum must
	// equal the whole-activity elapsed: each lap runs up to the next lap's
	// start and no boundary gap is lost.
	seq := contiguousSequence(60)
	seq.LapStarts = []time.Time{
		testStart,
		testStart.Add(20 * time.Second),
		testStart.Add(40 * time.Second),
	}

	laps := BuildLaps(seq)
	if len(laps) != 3 {
		t.Fatalf("expected 3 laps, got %d", len(laps))
	}
	// First two laps run to the next boundary; the last ends at the
	// sequence's final sample (59s).
	for i, want := range []float64{20, 20, 19} {
		if laps[i].ElapsedS != want {
			t.Errorf("lap %d elapsed: got %f, want %f", i, laps[i].ElapsedS, want)
		}
	}

	var lapElapsed float64
	for _, lap := range laps {
		lapElapsed += lap.ElapsedS
	}

	whole := Summarize(seq.Points)
	if math.Abs(whole.ElapsedS-lapElapsed) > 1 {
		t.Errorf("lap elapsed sum %f does not partition activity elapsed %f", lapElapsed, whole.ElapsedS)
	}
}

func TestBuildLapsAggregates(t *testing.T) {
	seq := &models.TrackSequence{}
	for i := 0; i < 20; i++ {
		p := withPos(pointAt(i), 0, float64(i)*0.0001)
		p = withHR(p, 100+i)
		seq.Points = append(seq.Points, p)
	}
	seq.LapStarts = []time.Time{testStart, testStart.Add(10 * time.Second)}

	laps := BuildLaps(seq)
	if len(laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(laps))
	}
	if laps[0].LapIndex != 0 || laps[1].LapIndex != 1 {
		t.Errorf("lap indices: got %d/%d", laps[0].LapIndex, laps[1].LapIndex)
	}
	if laps[0].MaxHeartRate == nil || *laps[0].MaxHeartRate != 109 {
		t.Errorf("first lap max hr: got %v, want 109", laps[0].MaxHeartRate)
	}
	if laps[1].AvgHeartRate == nil || math.Abs(*laps[1].AvgHeartRate-114.5) > 1e-9 {
		t.Errorf("second lap avg hr: got %v, want 114.5", laps[1].AvgHeartRate)
	}
	if laps[0].StartLat == nil {
		t.Error("lap start position missing")
	}
}
