package database

import (
	"context"
	"fmt"
)

// DeliveryRepository records sent reminders so a lesson is announced at most once per kind
type DeliveryRepository struct {
	db *DB
}

// NewDeliveryRepository creates a new repository instance
func NewDeliveryRepository(db *DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// ClaimDelivery marks the reminder as sent. It returns false when an earlier tick already claimed it.
func (r *DeliveryRepository) ClaimDelivery(ctx context.Context, userID int64, kind, lessonDate string) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO reminder_deliveries (user_id, kind, lesson_date)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, kind, lesson_date) DO NOTHING
	`)
	res, err := r.db.ExecContext(ctx, query, userID, kind, lessonDate)
	if err != nil {
		return false, fmt.Errorf("failed to claim delivery: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim delivery: %w", err)
	}
	return n == 1, nil
}

// ReleaseDelivery drops a claim after a failed send so the next tick retries it
func (r *DeliveryRepository) ReleaseDelivery(ctx context.Context, userID int64, kind, lessonDate string) error {
	query := r.db.Rebind("DELETE FROM reminder_deliveries WHERE user_id = ? AND kind = ? AND lesson_date = ?")
	if _, err := r.db.ExecContext(ctx, query, userID, kind, lessonDate); err != nil {
		return fmt.Errorf("failed to release delivery: %w", err)
	}
	return nil
}
