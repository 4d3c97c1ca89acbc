package models

import "time"

// TrackPoint is one timestamped GPS/sensor sample decoded from a device
// export file. Optional sensor fields are nil when the source file did not
// carry them; a missing sensor is never stored as zero.
type TrackPoint struct {
	Time       time.Time
	Lat        *float64
	Lon        *float64
	ElevationM *float64
	HeartRate  *int
	Cadence    *int
	PowerW     *int
	SpeedMps   *float64 // device-recorded instantaneous speed
	DistanceM  *float64 // cumulative device-recorded distance
}

// HasPosition reports whether the point carries a usable coordinate.
// (0,0) is treated as a missing fix, which is what consumer devices emit
// before GPS lock.
func (p *TrackPoint) HasPosition() bool {
	if p.Lat == nil || p.Lon == nil {
		return false
	}
	return *p.Lat != 0 || *p.Lon != 0
}

// TrackSequence is the canonical decode result: ordered trackpoints plus the
// device-reported lap boundary side channel. It is produced by exactly one
// decoder and consumed once by the lap segmenter and metrics engine.
type TrackSequence struct {
	Points []TrackPoint

	// LapStarts holds device-reported lap boundary timestamps in order.
	// Empty when the source format has no lap markers.
	LapStarts []time.Time

	// Sport is the canonical activity type mapped from the format-native
	// sport token.
	Sport string

	// Dropped counts points discarded during decoding (out-of-order
	// timestamps, unparseable samples).
	Dropped int
}

// StartTime returns the timestamp of the first point.
func (s *TrackSequence) StartTime() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Time
}

// EndTime returns the timestamp of the last point.
func (s *TrackSequence) EndTime() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Time
}
