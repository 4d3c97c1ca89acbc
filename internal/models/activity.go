package models

import "time"

// Activity represents one canonical activity record built from a single
// decoded device export file. Derived fields (distance, elevation, power,
// speed) are computed at ingestion time and never user-edited afterward.
type Activity struct {
	ID     int64  `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// Checksum is the SHA-256 hex digest of the source file. Together with
	// UserID it is unique: re-ingesting an identical file is a no-op.
	Checksum string `json:"checksum" db:"checksum"`
	Filename string `json:"filename,omitempty" db:"filename"`
	Format   string `json:"format" db:"format"` // gpx, tcx, fit

	ActivityType string    `json:"activity_type" db:"activity_type"`
	StartTime    time.Time `json:"start_time" db:"start_time"`
	EndTime      time.Time `json:"end_time" db:"end_time"`
	ElapsedS     float64   `json:"elapsed_s" db:"elapsed_s"`
	TimerS       float64   `json:"timer_s" db:"timer_s"`

	DistanceM       float64 `json:"distance_m" db:"distance_m"`
	ElevationGainM  float64 `json:"elevation_gain_m" db:"elevation_gain_m"`
	ElevationLossM  float64 `json:"elevation_loss_m" db:"elevation_loss_m"`
	PaceSPerM       float64 `json:"pace_s_per_m" db:"pace_s_per_m"`
	AvgSpeedMps     float64 `json:"avg_speed_mps" db:"avg_speed_mps"`
	MaxSpeedMps     float64 `json:"max_speed_mps" db:"max_speed_mps"`

	// Sensor aggregates are nil when the activity carries no samples of
	// that sensor, not zero.
	AvgHeartRate    *float64 `json:"avg_heart_rate,omitempty" db:"avg_heart_rate"`
	MaxHeartRate    *float64 `json:"max_heart_rate,omitempty" db:"max_heart_rate"`
	AvgCadence      *float64 `json:"avg_cadence,omitempty" db:"avg_cadence"`
	MaxCadence      *float64 `json:"max_cadence,omitempty" db:"max_cadence"`
	AvgPowerW       *float64 `json:"avg_power_w,omitempty" db:"avg_power_w"`
	MaxPowerW       *float64 `json:"max_power_w,omitempty" db:"max_power_w"`
	NormalizedPower *float64 `json:"normalized_power_w,omitempty" db:"normalized_power_w"`

	// Location enrichment, best-effort; empty when geocoding failed or the
	// activity has no GPS fix.
	City     string `json:"city,omitempty" db:"city"`
	Town     string `json:"town,omitempty" db:"town"`
	Country  string `json:"country,omitempty" db:"country"`
	Timezone string `json:"timezone" db:"timezone"`

	GearID *int64 `json:"gear_id,omitempty" db:"gear_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Canonical activity types. Format-native sport tokens map onto these via
// the decoder lookup tables; unrecognized tokens fall back to TypeWorkout.
const (
	TypeRide                = "Ride"
	TypeRun                 = "Run"
	TypeWalk                = "Walk"
	TypeHike                = "Hike"
	TypeSwim                = "Swim"
	TypeRowing              = "Rowing"
	TypeCrossCountrySkiing  = "CrossCountrySkiing"
	TypeAlpineSkiing        = "AlpineSkiing"
	TypeSnowboarding        = "Snowboarding"
	TypeInlineSkating       = "InlineSkating"
	TypeWorkout             = "Workout"
)

// Gear is a piece of equipment (bike, shoes) a user can attach to
// activities. Managed by the excluded CRUD layer; read here only to resolve
// the per-type default at ingestion time.
type Gear struct {
	ID           int64  `json:"id" db:"id"`
	UserID       string `json:"user_id" db:"user_id"`
	Name         string `json:"name" db:"name"`
	ActivityType string `json:"activity_type" db:"activity_type"`
	IsDefault    bool   `json:"is_default" db:"is_default"`
}
