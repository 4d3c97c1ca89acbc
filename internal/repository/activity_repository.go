package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/openpace/activity-backend-go/internal/database"
	"github.com/openpace/activity-backend-go/internal/models"
)

// activityColumns is the canonical column list shared by every activity
// query so that scanActivity stays in sync with a single place.
const activityColumns = `id, user_id, checksum, filename, format, activity_type,
	start_time, end_time, elapsed_s, timer_s, distance_m,
	elevation_gain_m, elevation_loss_m, pace_s_per_m, avg_speed_mps, max_speed_mps,
	avg_heart_rate, max_heart_rate, avg_cadence, max_cadence,
	avg_power_w, max_power_w, normalized_power_w,
	city, town, country, timezone, gear_id, created_at`

// ActivityRepository handles database operations for activities and their
// dependent streams and laps.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func scanActivity(row interface{ Scan(...interface{}) error }) (*models.Activity, error) {
	var a models.Activity
	err := row.Scan(
		&a.ID, &a.UserID, &a.Checksum, &a.Filename, &a.Format, &a.ActivityType,
		&a.StartTime, &a.EndTime, &a.ElapsedS, &a.TimerS, &a.DistanceM,
		&a.ElevationGainM, &a.ElevationLossM, &a.PaceSPerM, &a.AvgSpeedMps, &a.MaxSpeedMps,
		&a.AvgHeartRate, &a.MaxHeartRate, &a.AvgCadence, &a.MaxCadence,
		&a.AvgPowerW, &a.MaxPowerW, &a.NormalizedPower,
		&a.City, &a.Town, &a.Country, &a.Timezone, &a.GearID, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByChecksum returns the activity previously ingested from an identical
// file, or nil when the user has never uploaded this content.
func (r *ActivityRepository) FindByChecksum(userID, checksum string) (*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE user_id = ? AND checksum = ?", activityColumns)
	a, err := scanActivity(r.db.QueryRow(query, userID, checksum))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity by checksum: %w", err)
	}
	return a, nil
}

// GetByID retrieves a single activity by ID
func (r *ActivityRepository) GetByID(id int64) (*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE id = ?", activityColumns)
	a, err := scanActivity(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity %d: %w", id, err)
	}
	return a, nil
}

// ListByUserAndType retrieves all of a user's activities of one canonical
// type, oldest first. Used when a new segment needs matching against the
// back catalog.
func (r *ActivityRepository) ListByUserAndType(userID, activityType string) ([]models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE user_id = ? AND activity_type = ? ORDER BY start_time ASC", activityColumns)
	rows, err := r.db.Query(query, userID, activityType)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// GetStreams retrieves all streams for an activity
func (r *ActivityRepository) GetStreams(activityID int64) ([]models.Stream, error) {
	rows, err := r.db.Query("SELECT id, activity_id, type, waypoints FROM streams WHERE activity_id = ?", activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query streams: %w", err)
	}
	defer rows.Close()

	var streams []models.Stream
	for rows.Next() {
		s, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, *s)
	}
	return streams, rows.Err()
}

// GetStream retrieves one typed stream for an activity, or nil when the
// activity carried no samples of that sensor.
func (r *ActivityRepository) GetStream(activityID int64, streamType string) (*models.Stream, error) {
	row := r.db.QueryRow("SELECT id, activity_id, type, waypoints FROM streams WHERE activity_id = ? AND type = ?", activityID, streamType)
	s, err := scanStream(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanStream(row interface{ Scan(...interface{}) error }) (*models.Stream, error) {
	var s models.Stream
	var waypoints string
	if err := row.Scan(&s.ID, &s.ActivityID, &s.Type, &waypoints); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan stream: %w", err)
	}
	if err := json.Unmarshal([]byte(waypoints), &s.Waypoints); err != nil {
		return nil, fmt.Errorf("failed to decode stream waypoints: %w", err)
	}
	return &s, nil
}

// GetLaps retrieves an activity's laps ordered by lap index
func (r *ActivityRepository) GetLaps(activityID int64) ([]models.Lap, error) {
	query := `SELECT id, activity_id, lap_index, start_time, start_lat, start_lon, end_lat, end_lon,
		elapsed_s, timer_s, distance_m,
		avg_heart_rate, max_heart_rate, avg_cadence, max_cadence,
		avg_power_w, max_power_w, normalized_power_w, ascent_m, descent_m
		FROM laps WHERE activity_id = ? ORDER BY lap_index`
	rows, err := r.db.Query(query, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query laps: %w", err)
	}
	defer rows.Close()

	var laps []models.Lap
	for rows.Next() {
		var l models.Lap
		err := rows.Scan(
			&l.ID, &l.ActivityID, &l.LapIndex, &l.StartTime, &l.StartLat, &l.StartLon, &l.EndLat, &l.EndLon,
			&l.ElapsedS, &l.TimerS, &l.DistanceM,
			&l.AvgHeartRate, &l.MaxHeartRate, &l.AvgCadence, &l.MaxCadence,
			&l.AvgPowerW, &l.MaxPowerW, &l.NormalizedPower, &l.AscentM, &l.DescentM,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lap: %w", err)
		}
		laps = append(laps, l)
	}
	return laps, rows.Err()
}

// SaveBundle persists an activity with its streams and laps in one
// transaction: either the complete record lands or nothing does. The
// activity's ID is filled in on success, as are the IDs of its children.
func (r *ActivityRepository) SaveBundle(activity *models.Activity, streams []models.Stream, laps []models.Lap) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO activities (
			user_id, checksum, filename, format, activity_type,
			start_time, end_time, elapsed_s, timer_s, distance_m,
			elevation_gain_m, elevation_loss_m, pace_s_per_m, avg_speed_mps, max_speed_mps,
			avg_heart_rate, max_heart_rate, avg_cadence, max_cadence,
			avg_power_w, max_power_w, normalized_power_w,
			city, town, country, timezone, gear_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			activity.UserID, activity.Checksum, activity.Filename, activity.Format, activity.ActivityType,
			activity.StartTime, activity.EndTime, activity.ElapsedS, activity.TimerS, activity.DistanceM,
			activity.ElevationGainM, activity.ElevationLossM, activity.PaceSPerM, activity.AvgSpeedMps, activity.MaxSpeedMps,
			activity.AvgHeartRate, activity.MaxHeartRate, activity.AvgCadence, activity.MaxCadence,
			activity.AvgPowerW, activity.MaxPowerW, activity.NormalizedPower,
			activity.City, activity.Town, activity.Country, activity.Timezone, activity.GearID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert activity: %w", err)
		}

		activityID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get activity id: %w", err)
		}
		activity.ID = activityID

		for i := range streams {
			waypoints, err := json.Marshal(streams[i].Waypoints)
			if err != nil {
				return fmt.Errorf("failed to encode %s stream: %w", streams[i].Type, err)
			}
			res, err := tx.Exec("INSERT INTO streams (activity_id, type, waypoints) VALUES (?, ?, ?)",
				activityID, streams[i].Type, string(waypoints))
			if err != nil {
				return fmt.Errorf("failed to insert %s stream: %w", streams[i].Type, err)
			}
			streams[i].ActivityID = activityID
			streams[i].ID, _ = res.LastInsertId()
		}

		for i := range laps {
			res, err := tx.Exec(`INSERT INTO laps (
				activity_id, lap_index, start_time, start_lat, start_lon, end_lat, end_lon,
				elapsed_s, timer_s, distance_m,
				avg_heart_rate, max_heart_rate, avg_cadence, max_cadence,
				avg_power_w, max_power_w, normalized_power_w, ascent_m, descent_m
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				activityID, laps[i].LapIndex, laps[i].StartTime,
				laps[i].StartLat, laps[i].StartLon, laps[i].EndLat, laps[i].EndLon,
				laps[i].ElapsedS, laps[i].TimerS, laps[i].DistanceM,
				laps[i].AvgHeartRate, laps[i].MaxHeartRate, laps[i].AvgCadence, laps[i].MaxCadence,
				laps[i].AvgPowerW, laps[i].MaxPowerW, laps[i].NormalizedPower,
				laps[i].AscentM, laps[i].DescentM,
			)
			if err != nil {
				return fmt.Errorf("failed to insert lap %d: %w", laps[i].LapIndex, err)
			}
			laps[i].ActivityID = activityID
			laps[i].ID, _ = res.LastInsertId()
		}

		return nil
	})
}
