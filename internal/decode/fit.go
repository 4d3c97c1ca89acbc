package decode

import (
	"bytes"
	"time"

	"github.com/tormoder/fit"

	"github.com/openpace/activity-backend-go/internal/models"
)

const semicirclesToDeg = 180.0 / 2147483648.0 // 2^31

// FITDecoder decodes Garmin FIT activity files via tormoder/fit. Record
// messages become trackpoints, lap messages supply the boundary side
// channel, and the session sport maps to the canonical activity type.
type FITDecoder struct {
	cfg Config
}

// NewFITDecoder creates a FIT decoder.
func NewFITDecoder(cfg Config) *FITDecoder {
	return &FITDecoder{cfg: cfg}
}

// Format returns "fit".
func (d *FITDecoder) Format() string { return "fit" }

// Sniff checks the ".FIT" tag at byte offset 8 of the file header.
func (d *FITDecoder) Sniff(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[8:12], []byte(".FIT"))
}

// Decode parses a FIT activity file into a TrackSequence.
func (d *FITDecoder) Decode(data []byte) (*models.TrackSequence, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &models.DecodeError{Format: "fit", Reason: "malformed file", Err: err}
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, &models.DecodeError{Format: "fit", Reason: "not an activity file", Err: err}
	}

	sport := ""
	if len(activity.Sessions) > 0 {
		sport = activity.Sessions[0].Sport.String()
	}

	var (
		points  []models.TrackPoint
		dropped int
	)
	for _, rec := range activity.Records {
		if rec.Timestamp.IsZero() {
			dropped++
			continue
		}

		tp := models.TrackPoint{Time: rec.Timestamp}

		// Positions are semicircles; 0/0 means no GPS fix yet.
		if rec.PositionLat.Semicircles() != 0 || rec.PositionLong.Semicircles() != 0 {
			lat := float64(rec.PositionLat.Semicircles()) * semicirclesToDeg
			lon := float64(rec.PositionLong.Semicircles()) * semicirclesToDeg
			if lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
				tp.Lat, tp.Lon = &lat, &lon
			}
		}

		// altitude: scale 5, offset 500
		if rec.Altitude != 0 && rec.Altitude != 0xFFFF {
			v := float64(rec.Altitude)/5.0 - 500.0
			tp.ElevationM = &v
		}

		// distance: centimeters
		if rec.Distance != 0 && rec.Distance != 0xFFFFFFFF {
			v := float64(rec.Distance) / 100.0
			tp.DistanceM = &v
		}

		// speed: scale 1000
		if rec.Speed != 0 && rec.Speed != 0xFFFF {
			v := float64(rec.Speed) / 1000.0
			tp.SpeedMps = &v
		}

		if rec.HeartRate != 0 && rec.HeartRate != 0xFF {
			v := int(rec.HeartRate)
			tp.HeartRate = &v
		}
		if rec.Cadence != 0 && rec.Cadence != 0xFF {
			v := int(rec.Cadence)
			tp.Cadence = &v
		}
		if rec.Power != 0 && rec.Power != 0xFFFF {
			v := int(rec.Power)
			tp.PowerW = &v
		}

		points = append(points, tp)
	}

	var lapStarts []time.Time
	for _, lap := range activity.Laps {
		if !lap.StartTime.IsZero() {
			lapStarts = append(lapStarts, lap.StartTime)
		}
	}

	return finalize("fit", d.cfg, points, dropped, lapStarts, canonicalSport(sport))
}
