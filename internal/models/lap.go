package models

import "time"

// Lap is a contiguous sub-interval of an activity with its own aggregates.
// Laps come from device-reported boundaries when the source format carries
// them; otherwise the whole activity is a single implicit lap. Laps are
// created atomically with their activity and deleted/recreated wholesale on
// reprocessing.
type Lap struct {
	ID         int64 `json:"id" db:"id"`
	ActivityID int64 `json:"activity_id" db:"activity_id"`
	LapIndex   int   `json:"lap_index" db:"lap_index"`

	StartTime time.Time `json:"start_time" db:"start_time"`
	StartLat  *float64  `json:"start_lat,omitempty" db:"start_lat"`
	StartLon  *float64  `json:"start_lon,omitempty" db:"start_lon"`
	EndLat    *float64  `json:"end_lat,omitempty" db:"end_lat"`
	EndLon    *float64  `json:"end_lon,omitempty" db:"end_lon"`

	ElapsedS  float64 `json:"elapsed_s" db:"elapsed_s"`
	TimerS    float64 `json:"timer_s" db:"timer_s"`
	DistanceM float64 `json:"distance_m" db:"distance_m"`

	AvgHeartRate    *float64 `json:"avg_heart_rate,omitempty" db:"avg_heart_rate"`
	MaxHeartRate    *float64 `json:"max_heart_rate,omitempty" db:"max_heart_rate"`
	AvgCadence      *float64 `json:"avg_cadence,omitempty" db:"avg_cadence"`
	MaxCadence      *float64 `json:"max_cadence,omitempty" db:"max_cadence"`
	AvgPowerW       *float64 `json:"avg_power_w,omitempty" db:"avg_power_w"`
	MaxPowerW       *float64 `json:"max_power_w,omitempty" db:"max_power_w"`
	NormalizedPower *float64 `json:"normalized_power_w,omitempty" db:"normalized_power_w"`

	AscentM  float64 `json:"ascent_m" db:"ascent_m"`
	DescentM float64 `json:"descent_m" db:"descent_m"`
}
