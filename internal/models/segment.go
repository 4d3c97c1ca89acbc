package models

import "time"

// LatLng is one vertex of a segment or activity polyline.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Segment is a user-defined reference route that finished activities are
// matched against. Geometry is immutable after creation except via explicit
// edit in the CRUD layer.
type Segment struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"type"` // canonical activity type
	Polyline  []LatLng  `json:"polyline" db:"polyline"` // JSON TEXT column
	DistanceM float64   `json:"distance_m" db:"distance_m"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Eligible reports whether the segment has enough geometry to be matched.
// Degenerate segments are skipped with a validation error, never a pipeline
// failure.
func (s *Segment) Eligible() bool {
	return len(s.Polyline) >= 2
}

// SegmentMatch records one overlap between an activity's GPS path and a
// segment. An activity may match the same segment more than once
// (out-and-back routes, repeated loops); each run is a distinct row.
// Matches for a segment are recomputed with replace-all semantics.
type SegmentMatch struct {
	ID         int64 `json:"id" db:"id"`
	SegmentID  int64 `json:"segment_id" db:"segment_id"`
	ActivityID int64 `json:"activity_id" db:"activity_id"`

	// Index range into the activity's lat_lon polyline covered by this
	// match; MatchedStartIdx <= MatchedEndIdx always holds.
	MatchedStartIdx int `json:"matched_start_idx" db:"matched_start_idx"`
	MatchedEndIdx   int `json:"matched_end_idx" db:"matched_end_idx"`

	ElapsedS   float64 `json:"elapsed_s" db:"elapsed_s"`
	BestEffort bool    `json:"best_effort" db:"best_effort"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SegmentFilter holds query parameters for listing segments.
type SegmentFilter struct {
	Type     string `form:"type"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
