package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/openpace/activity-backend-go/internal/database"
	"github.com/openpace/activity-backend-go/internal/models"
)

// SegmentRepository handles database operations for segments and their
// activity matches.
type SegmentRepository struct {
	db *sql.DB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *sql.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

// Create inserts a segment and fills in its ID
func (r *SegmentRepository) Create(segment *models.Segment) error {
	polyline, err := json.Marshal(segment.Polyline)
	if err != nil {
		return fmt.Errorf("failed to encode segment polyline: %w", err)
	}

	res, err := r.db.Exec(
		"INSERT INTO segments (user_id, name, type, polyline, distance_m) VALUES (?, ?, ?, ?, ?)",
		segment.UserID, segment.Name, segment.Type, string(polyline), segment.DistanceM,
	)
	if err != nil {
		return fmt.Errorf("failed to insert segment: %w", err)
	}

	segment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get segment id: %w", err)
	}
	return nil
}

func scanSegment(row interface{ Scan(...interface{}) error }) (*models.Segment, error) {
	var s models.Segment
	var polyline string
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Type, &polyline, &s.DistanceM, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan segment: %w", err)
	}
	if err := json.Unmarshal([]byte(polyline), &s.Polyline); err != nil {
		return nil, fmt.Errorf("failed to decode segment polyline: %w", err)
	}
	return &s, nil
}

// GetByID retrieves a single segment by ID
func (r *SegmentRepository) GetByID(id int64) (*models.Segment, error) {
	row := r.db.QueryRow("SELECT id, user_id, name, type, polyline, distance_m, created_at FROM segments WHERE id = ?", id)
	s, err := scanSegment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query segment %d: %w", id, err)
	}
	return s, nil
}

// List retrieves a user's segments with filtering and pagination
func (r *SegmentRepository) List(userID string, filter models.SegmentFilter) ([]models.Segment, int64, error) {
	query := "SELECT id, user_id, name, type, polyline, distance_m, created_at FROM segments WHERE user_id = ?"
	countQuery := "SELECT COUNT(*) FROM segments WHERE user_id = ?"
	args := []interface{}{userID}

	if filter.Type != "" {
		query += " AND type = ?"
		countQuery += " AND type = ?"
		args = append(args, filter.Type)
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count segments: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	offset := (filter.Page - 1) * filter.PageSize
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []models.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, 0, err
		}
		segments = append(segments, *s)
	}
	return segments, total, rows.Err()
}

// ListByUserAndType retrieves every segment of one canonical activity type
// for a user. Used by the matching pass after ingestion.
func (r *SegmentRepository) ListByUserAndType(userID, activityType string) ([]models.Segment, error) {
	rows, err := r.db.Query(
		"SELECT id, user_id, name, type, polyline, distance_m, created_at FROM segments WHERE user_id = ? AND type = ?",
		userID, activityType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []models.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *s)
	}
	return segments, rows.Err()
}

// ListMatches retrieves a segment's matches ordered fastest first
func (r *SegmentRepository) ListMatches(segmentID int64) ([]models.SegmentMatch, error) {
	rows, err := r.db.Query(
		`SELECT id, segment_id, activity_id, matched_start_idx, matched_end_idx, elapsed_s, best_effort, created_at
		FROM segment_matches WHERE segment_id = ? ORDER BY elapsed_s ASC, id ASC`, segmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment matches: %w", err)
	}
	defer rows.Close()

	var matches []models.SegmentMatch
	for rows.Next() {
		var m models.SegmentMatch
		err := rows.Scan(&m.ID, &m.SegmentID, &m.ActivityID, &m.MatchedStartIdx, &m.MatchedEndIdx,
			&m.ElapsedS, &m.BestEffort, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ReplaceMatchesForActivity replaces every match row belonging to one
// activity, then re-elects the best effort on each segment the activity
// touches. Called after an ingestion's matching pass.
func (r *SegmentRepository) ReplaceMatchesForActivity(activityID int64, matches []models.SegmentMatch) error {
	affected := make(map[int64]bool)
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		rows, err := tx.Query("SELECT DISTINCT segment_id FROM segment_matches WHERE activity_id = ?", activityID)
		if err != nil {
			return fmt.Errorf("failed to query affected segments: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan segment id: %w", err)
			}
			affected[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if _, err := tx.Exec("DELETE FROM segment_matches WHERE activity_id = ?", activityID); err != nil {
			return fmt.Errorf("failed to delete activity matches: %w", err)
		}

		for _, m := range matches {
			if err := insertMatch(tx, m); err != nil {
				return err
			}
			affected[m.SegmentID] = true
		}

		for segmentID := range affected {
			if err := electBestEffort(tx, segmentID); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// ReplaceMatchesForSegment replaces every match row belonging to one
// segment. Called when a segment is refreshed against the back catalog.
func (r *SegmentRepository) ReplaceMatchesForSegment(segmentID int64, matches []models.SegmentMatch) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM segment_matches WHERE segment_id = ?", segmentID); err != nil {
			return fmt.Errorf("failed to delete segment matches: %w", err)
		}
		for _, m := range matches {
			if err := insertMatch(tx, m); err != nil {
				return err
			}
		}
		return electBestEffort(tx, segmentID)
	})
}

func insertMatch(tx *sql.Tx, m models.SegmentMatch) error {
	_, err := tx.Exec(
		`INSERT INTO segment_matches (segment_id, activity_id, matched_start_idx, matched_end_idx, elapsed_s, best_effort)
		VALUES (?, ?, ?, ?, ?, 0)`,
		m.SegmentID, m.ActivityID, m.MatchedStartIdx, m.MatchedEndIdx, m.ElapsedS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert segment match: %w", err)
	}
	return nil
}

// electBestEffort marks the single fastest match on a segment. Ties break
// toward the row inserted first.
func electBestEffort(tx *sql.Tx, segmentID int64) error {
	if _, err := tx.Exec("UPDATE segment_matches SET best_effort = 0 WHERE segment_id = ?", segmentID); err != nil {
		return fmt.Errorf("failed to clear best effort: %w", err)
	}
	_, err := tx.Exec(
		`UPDATE segment_matches SET best_effort = 1 WHERE id = (
			SELECT id FROM segment_matches WHERE segment_id = ? ORDER BY elapsed_s ASC, id ASC LIMIT 1
		)`, segmentID)
	if err != nil {
		return fmt.Errorf("failed to elect best effort: %w", err)
	}
	return nil
}
