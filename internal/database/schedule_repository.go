package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/coursebot/pkg/models"
)

// ScheduleRepository handles the single active schedule row
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new repository instance
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// GetActiveSchedule returns the first schedule row, or nil when none is configured
func (r *ScheduleRepository) GetActiveSchedule(ctx context.Context) (*models.Schedule, error) {
	var schedule models.Schedule
	err := r.db.GetContext(ctx, &schedule, "SELECT id, text, days, time, timezone FROM schedule ORDER BY id LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

// UpsertSchedule replaces the active schedule, inserting it when the table is empty.
// Readers never observe a partially written row.
func (r *ScheduleRepository) UpsertSchedule(ctx context.Context, schedule models.Schedule) (*models.Schedule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, "SELECT id FROM schedule ORDER BY id LIMIT 1")
	switch {
	case errors.Is(err, sql.ErrNoRows):
		query := tx.Rebind("INSERT INTO schedule (text, days, time, timezone) VALUES (?, ?, ?, ?) RETURNING id")
		if err := tx.GetContext(ctx, &id, query, schedule.Text, schedule.Days, schedule.Time, schedule.Timezone); err != nil {
			return nil, fmt.Errorf("failed to insert schedule: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	default:
		query := tx.Rebind("UPDATE schedule SET text = ?, days = ?, time = ?, timezone = ? WHERE id = ?")
		if _, err := tx.ExecContext(ctx, query, schedule.Text, schedule.Days, schedule.Time, schedule.Timezone, id); err != nil {
			return nil, fmt.Errorf("failed to update schedule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit schedule: %w", err)
	}

	schedule.ID = id
	return &schedule, nil
}
