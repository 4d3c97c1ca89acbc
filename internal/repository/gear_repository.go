package repository

import (
	"database/sql"
	"fmt"

	"github.com/openpace/activity-backend-go/internal/models"
)

// GearRepository handles database operations for gear
type GearRepository struct {
	db *sql.DB
}

// NewGearRepository creates a new gear repository
func NewGearRepository(db *sql.DB) *GearRepository {
	return &GearRepository{db: db}
}

// Create inserts a gear record and fills in its ID
func (r *GearRepository) Create(gear *models.Gear) error {
	res, err := r.db.Exec(
		"INSERT INTO gear (user_id, name, activity_type, is_default) VALUES (?, ?, ?, ?)",
		gear.UserID, gear.Name, gear.ActivityType, gear.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("failed to insert gear: %w", err)
	}
	gear.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get gear id: %w", err)
	}
	return nil
}

// DefaultFor returns the user's default gear for one canonical activity
// type, or nil when none is configured.
func (r *GearRepository) DefaultFor(userID, activityType string) (*models.Gear, error) {
	var g models.Gear
	err := r.db.QueryRow(
		"SELECT id, user_id, name, activity_type, is_default FROM gear WHERE user_id = ? AND activity_type = ? AND is_default = 1 LIMIT 1",
		userID, activityType,
	).Scan(&g.ID, &g.UserID, &g.Name, &g.ActivityType, &g.IsDefault)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query default gear: %w", err)
	}
	return &g, nil
}
