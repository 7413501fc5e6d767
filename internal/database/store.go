package database

import (
	"context"
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when an update targets an unregistered user
var ErrUserNotFound = errors.New("user not found")

// Store groups the repositories over one connection pool
type Store struct {
	*ScheduleRepository
	*UserRepository
	*DeliveryRepository

	db *DB
}

// NewStore wires all repositories to db
func NewStore(db *DB) *Store {
	return &Store{
		ScheduleRepository: NewScheduleRepository(db),
		UserRepository:     NewUserRepository(db),
		DeliveryRepository: NewDeliveryRepository(db),
		db:                 db,
	}
}

// Ping checks the connection is alive
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Wipe deletes all users, schedules and delivery records in one transaction
func (s *Store) Wipe(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"reminder_deliveries", "users", "schedule"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
