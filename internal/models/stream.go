package models

// Stream type constants. One stream per sensor type per activity; a sensor
// with zero samples produces no stream row at all.
const (
	StreamHeartRate = "heart_rate"
	StreamPower     = "power"
	StreamCadence   = "cadence"
	StreamElevation = "elevation"
	StreamVelocity  = "velocity"
	StreamPace      = "pace"
	StreamLatLng    = "lat_lon"
)

// Waypoint is one sample of a stream: seconds from activity start plus
// either a scalar value or a lat/lon pair (for lat_lon streams).
type Waypoint struct {
	T     float64    `json:"t"`
	Value float64    `json:"v,omitempty"`
	Pair  *[2]float64 `json:"p,omitempty"`
}

// Stream is a typed time series of one sensor signal for one activity.
// Created once at ingestion; replaced wholesale on re-import, never
// partially updated.
type Stream struct {
	ID         int64      `json:"id" db:"id"`
	ActivityID int64      `json:"activity_id" db:"activity_id"`
	Type       string     `json:"type" db:"type"`
	Waypoints  []Waypoint `json:"waypoints" db:"waypoints"` // JSON TEXT column
}
