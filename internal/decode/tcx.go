package decode

import (
	"encoding/xml"
	"time"

	"github.com/openpace/activity-backend-go/internal/models"
)

// TCXDecoder decodes Garmin Training Center XML. TCX encodes laps directly,
// so device lap boundaries pass through as the side channel.
type TCXDecoder struct {
	cfg Config
}

// NewTCXDecoder creates a TCX decoder.
func NewTCXDecoder(cfg Config) *TCXDecoder {
	return &TCXDecoder{cfg: cfg}
}

// Format returns "tcx".
func (d *TCXDecoder) Format() string { return "tcx" }

// Sniff reports whether the document root is <TrainingCenterDatabase>.
func (d *TCXDecoder) Sniff(data []byte) bool {
	return xmlRootIs(data, "TrainingCenterDatabase")
}

// tcxDatabase mirrors the TCX document structure. Timestamps are kept as
// strings so a single bad timestamp drops one point instead of failing the
// whole unmarshal.
type tcxDatabase struct {
	XMLName    xml.Name `xml:"TrainingCenterDatabase"`
	Activities struct {
		Activity []tcxActivity `xml:"Activity"`
	} `xml:"Activities"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	StartTime string `xml:"StartTime,attr"`
	Tracks    []struct {
		Points []tcxTrackpoint `xml:"Trackpoint"`
	} `xml:"Track"`
}

type tcxTrackpoint struct {
	Time     string `xml:"Time"`
	Position *struct {
		Lat float64 `xml:"LatitudeDegrees"`
		Lon float64 `xml:"LongitudeDegrees"`
	} `xml:"Position"`
	AltitudeMeters *float64 `xml:"AltitudeMeters"`
	DistanceMeters *float64 `xml:"DistanceMeters"`
	HeartRateBpm   *struct {
		Value int `xml:"Value"`
	} `xml:"HeartRateBpm"`
	Cadence    *int `xml:"Cadence"`
	Extensions *struct {
		TPX *struct {
			Watts      *int `xml:"Watts"`
			RunCadence *int `xml:"RunCadence"`
		} `xml:"TPX"`
	} `xml:"Extensions"`
}

// Decode parses a TCX file into a TrackSequence.
func (d *TCXDecoder) Decode(data []byte) (*models.TrackSequence, error) {
	var doc tcxDatabase
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &models.DecodeError{Format: "tcx", Reason: "malformed document", Err: err}
	}
	if len(doc.Activities.Activity) == 0 {
		return nil, &models.ValidationError{Reason: "no activity element in TCX file"}
	}

	// Multi-activity TCX exports exist but each upload is one activity;
	// the first activity element is authoritative.
	act := doc.Activities.Activity[0]

	var (
		points    []models.TrackPoint
		lapStarts []time.Time
		dropped   int
	)

	for _, lap := range act.Laps {
		if ts, err := time.Parse(time.RFC3339, lap.StartTime); err == nil {
			lapStarts = append(lapStarts, ts)
		}

		for _, trk := range lap.Tracks {
			for _, p := range trk.Points {
				ts, err := time.Parse(time.RFC3339, p.Time)
				if err != nil {
					dropped++
					continue
				}

				tp := models.TrackPoint{Time: ts}
				if p.Position != nil {
					lat, lon := p.Position.Lat, p.Position.Lon
					tp.Lat, tp.Lon = &lat, &lon
				}
				tp.ElevationM = p.AltitudeMeters
				tp.DistanceM = p.DistanceMeters
				if p.HeartRateBpm != nil {
					hr := p.HeartRateBpm.Value
					tp.HeartRate = &hr
				}
				tp.Cadence = p.Cadence
				if p.Extensions != nil && p.Extensions.TPX != nil {
					tp.PowerW = p.Extensions.TPX.Watts
					if tp.Cadence == nil {
						tp.Cadence = p.Extensions.TPX.RunCadence
					}
				}

				points = append(points, tp)
			}
		}
	}

	return finalize("tcx", d.cfg, points, dropped, lapStarts, canonicalSport(act.Sport))
}
