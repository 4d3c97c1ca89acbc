package decode

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/openpace/activity-backend-go/internal/models"
)

// GPXDecoder decodes GPX 1.0/1.1 documents. Track structure, timestamps and
// elevation come from gpxgo; sensor extensions (gpxtpx:hr, gpxtpx:cad,
// power) are collected in a streaming pass in document order and zipped by
// point index, since extension namespaces vary wildly between vendors.
type GPXDecoder struct {
	cfg Config
}

// NewGPXDecoder creates a GPX decoder.
func NewGPXDecoder(cfg Config) *GPXDecoder {
	return &GPXDecoder{cfg: cfg}
}

// Format returns "gpx".
func (d *GPXDecoder) Format() string { return "gpx" }

// Sniff reports whether the document root is <gpx>.
func (d *GPXDecoder) Sniff(data []byte) bool { return xmlRootIs(data, "gpx") }

// Decode parses a GPX file into a TrackSequence. GPX has no lap markers, so
// the boundary side channel is always empty.
func (d *GPXDecoder) Decode(data []byte) (*models.TrackSequence, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, &models.DecodeError{Format: "gpx", Reason: "malformed document", Err: err}
	}

	sensors, trackType := scanGPXSensors(data)

	var points []models.TrackPoint
	idx := 0
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				tp := models.TrackPoint{Time: p.Timestamp}

				lat, lon := p.Latitude, p.Longitude
				tp.Lat, tp.Lon = &lat, &lon

				if p.Elevation.NotNull() {
					v := p.Elevation.Value()
					tp.ElevationM = &v
				}

				if idx < len(sensors) {
					s := sensors[idx]
					tp.HeartRate = s.hr
					tp.Cadence = s.cad
					tp.PowerW = s.power
				}
				idx++

				points = append(points, tp)
			}
		}
	}

	return finalize("gpx", d.cfg, points, 0, nil, canonicalSport(trackType))
}

// gpxSensors holds the per-trackpoint extension values for one <trkpt>.
type gpxSensors struct {
	hr, cad, power *int
}

// scanGPXSensors streams the document once, collecting sensor extension
// values per <trkpt> in document order plus the first track-level <type>
// token. Parse problems end the scan early; the structural parse already
// validated the document.
func scanGPXSensors(data []byte) ([]gpxSensors, string) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		sensors   []gpxSensors
		trackType string
		inPoint   bool
		field     string
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			switch name {
			case "trkpt":
				inPoint = true
				sensors = append(sensors, gpxSensors{})
			case "hr", "heartrate", "cad", "cadence", "power", "watts", "type":
				field = name
			default:
				field = ""
			}
		case xml.EndElement:
			if strings.EqualFold(t.Name.Local, "trkpt") {
				inPoint = false
			}
			field = ""
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" || field == "" {
				continue
			}
			if field == "type" {
				if !inPoint && trackType == "" {
					trackType = text
				}
				continue
			}
			if !inPoint || len(sensors) == 0 {
				continue
			}
			v, err := strconv.Atoi(text)
			if err != nil {
				continue
			}
			cur := &sensors[len(sensors)-1]
			switch field {
			case "hr", "heartrate":
				cur.hr = &v
			case "cad", "cadence":
				cur.cad = &v
			case "power", "watts":
				cur.power = &v
			}
		}
	}

	return sensors, trackType
}
