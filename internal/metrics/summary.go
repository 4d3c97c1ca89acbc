package metrics

import (
	"time"

	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/spatial"
)

// pauseGapSeconds is the inter-sample gap beyond which the recording is
// considered paused; such gaps count toward elapsed time but not timer time.
const pauseGapSeconds = 30.0

// Summary holds the derived metrics of a point sequence (a whole activity
// or a single lap slice). Sensor aggregates are nil when no samples exist.
type Summary struct {
	StartTime time.Time
	EndTime   time.Time
	ElapsedS  float64
	TimerS    float64

	DistanceM   float64
	AvgSpeedMps float64
	MaxSpeedMps float64
	PaceSPerM   float64

	AvgHeartRate *float64
	MaxHeartRate *float64
	AvgCadence   *float64
	MaxCadence   *float64
	AvgPowerW    *float64
	MaxPowerW    *float64

	NormalizedPower *float64

	AscentM  float64
	DescentM float64

	StartLat, StartLon *float64
	EndLat, EndLon     *float64
}

// Summarize derives all aggregate metrics for a point sequence. Pure
// function: no I/O, no persistence.
func Summarize(points []models.TrackPoint) Summary {
	var s Summary
	if len(points) == 0 {
		return s
	}

	s.StartTime = points[0].Time
	s.EndTime = points[len(points)-1].Time
	s.ElapsedS = s.EndTime.Sub(s.StartTime).Seconds()
	s.TimerS = timerSeconds(points)

	s.DistanceM = totalDistance(points)

	speeds := SpeedSeries(points)
	var maxSpeed float64
	for i, v := range speeds {
		if points[i].SpeedMps != nil && *points[i].SpeedMps > v {
			v = *points[i].SpeedMps
		}
		if v > maxSpeed {
			maxSpeed = v
		}
	}
	s.MaxSpeedMps = maxSpeed
	if s.ElapsedS > 0 {
		s.AvgSpeedMps = s.DistanceM / s.ElapsedS
	}
	s.PaceSPerM = Pace(s.AvgSpeedMps)

	var hr, cad, pow Accumulator
	for i := range points {
		if points[i].HeartRate != nil {
			hr.Add(float64(*points[i].HeartRate))
		}
		if points[i].Cadence != nil {
			cad.Add(float64(*points[i].Cadence))
		}
		if points[i].PowerW != nil {
			pow.Add(float64(*points[i].PowerW))
		}
	}
	s.AvgHeartRate, s.MaxHeartRate = hr.Avg(), hr.Max()
	s.AvgCadence, s.MaxCadence = cad.Avg(), cad.Max()
	s.AvgPowerW, s.MaxPowerW = pow.Avg(), pow.Max()

	s.NormalizedPower = NormalizedPower(points)
	s.AscentM, s.DescentM = ElevationChange(points)

	for i := range points {
		if points[i].HasPosition() {
			s.StartLat, s.StartLon = points[i].Lat, points[i].Lon
			break
		}
	}
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].HasPosition() {
			s.EndLat, s.EndLon = points[i].Lat, points[i].Lon
			break
		}
	}

	return s
}

// totalDistance prefers the device-recorded cumulative distance when the
// sequence carries one, falling back to integrating haversine distance over
// consecutive positions.
func totalDistance(points []models.TrackPoint) float64 {
	var first, last *float64
	for i := range points {
		if points[i].DistanceM != nil {
			if first == nil {
				first = points[i].DistanceM
			}
			last = points[i].DistanceM
		}
	}
	if first != nil && last != nil && *last >= *first {
		return *last - *first
	}

	var total float64
	var prev *models.TrackPoint
	for i := range points {
		if !points[i].HasPosition() {
			continue
		}
		if prev != nil {
			total += spatial.HaversineDistance(*prev.Lat, *prev.Lon, *points[i].Lat, *points[i].Lon)
		}
		prev = &points[i]
	}
	return total
}

// timerSeconds sums inter-sample gaps, skipping gaps long enough to be
// recording pauses.
func timerSeconds(points []models.TrackPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		dt := points[i].Time.Sub(points[i-1].Time).Seconds()
		if dt > 0 && dt <= pauseGapSeconds {
			total += dt
		}
	}
	return total
}
