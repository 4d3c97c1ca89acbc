package metrics

import (
	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/spatial"
)

// SpeedSeries returns the instantaneous speed in m/s for every point,
// index-aligned with the input. The first point and points without a
// position (or following a point without one) are 0.
func SpeedSeries(points []models.TrackPoint) []float64 {
	speeds := make([]float64, len(points))

	prevIdx := -1
	for i := range points {
		if !points[i].HasPosition() {
			continue
		}
		if prevIdx >= 0 {
			prev := &points[prevIdx]
			speeds[i] = spatial.InstantSpeed(
				prev.Time, points[i].Time,
				*prev.Lat, *prev.Lon,
				*points[i].Lat, *points[i].Lon,
			)
		}
		prevIdx = i
	}

	return speeds
}

// Pace converts a speed to seconds per meter. Zero speed yields zero pace
// by policy, never a division fault.
func Pace(speed float64) float64 {
	if speed > 0 {
		return 1 / speed
	}
	return 0
}
