package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/coursebot/pkg/models"
)

// UserRepository handles database operations for students
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "user_id, full_name, city, age, phone, telegram, timezone, registration_time"

// Create stores a finished registration. Re-registering overwrites the profile
// but keeps the stored timezone.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (user_id, full_name, city, age, phone, telegram, timezone)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = excluded.full_name,
			city = excluded.city,
			age = excluded.age,
			phone = excluded.phone,
			telegram = excluded.telegram
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.UserID, user.FullName, user.City, user.Age, user.Phone, user.Telegram,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns a user by ID, or nil when not registered
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE user_id = ?")
	err := r.db.GetContext(ctx, &user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// GetAll returns all users in registration order
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY registration_time, user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// Search matches the query as a case-insensitive substring of full name or city
func (r *UserRepository) Search(ctx context.Context, q string) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`
		SELECT ` + userColumns + ` FROM users
		WHERE LOWER(full_name) LIKE '%' || ? || '%'
		OR LOWER(city) LIKE '%' || ? || '%'
		ORDER BY user_id
	`)
	needle := strings.ToLower(strings.TrimSpace(q))
	if err := r.db.SelectContext(ctx, &users, query, needle, needle); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// ListRecipients returns every registered user as a broadcast target
func (r *UserRepository) ListRecipients(ctx context.Context) ([]models.Recipient, error) {
	var recipients []models.Recipient
	if err := r.db.SelectContext(ctx, &recipients, "SELECT user_id, full_name FROM users ORDER BY user_id"); err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return recipients, nil
}

// ListUserTimezones returns every user with their stored timezone, ordered by user_id
func (r *UserRepository) ListUserTimezones(ctx context.Context) ([]models.UserTimezone, error) {
	var users []models.UserTimezone
	if err := r.db.SelectContext(ctx, &users, "SELECT user_id, timezone FROM users ORDER BY user_id"); err != nil {
		return nil, fmt.Errorf("failed to list user timezones: %w", err)
	}
	return users, nil
}

// SetUserTimezone stores the timezone detected from the user's location
func (r *UserRepository) SetUserTimezone(ctx context.Context, userID int64, tz string) error {
	query := r.db.Rebind("UPDATE users SET timezone = ? WHERE user_id = ?")
	res, err := r.db.ExecContext(ctx, query, tz, userID)
	if err != nil {
		return fmt.Errorf("failed to set timezone: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

var testUsers = []models.User{
	{UserID: 101, FullName: "Иван Иванов", City: "Москва", Age: 25, Phone: nullString("+79161234567"), Telegram: nullString("@port_manager_mmvbrts")},
	{UserID: 102, FullName: "Мария Петрова", City: "Санкт-Петербург", Age: 30, Phone: nullString("+79261234568"), Telegram: nullString("@maria_pet")},
	{UserID: 103, FullName: "Александр Сидоров", City: "Новосибирск", Age: 27, Phone: nullString("+79371234569"), Telegram: nullString("@alex_s")},
	{UserID: 104, FullName: "Ольга Смирнова", City: "Казань", Age: 22, Phone: nullString("+79481234560"), Telegram: nullString("@olga_smir")},
	{UserID: 105, FullName: "Дмитрий Кузнецов", City: "Екатеринбург", Age: 35, Phone: nullString("+79591234561"), Telegram: nullString("@dmitry_k")},
}

// SeedTestUsers inserts the fixed demo users, skipping any that already exist.
// Returns the number of rows actually inserted.
func (r *UserRepository) SeedTestUsers(ctx context.Context) (int, error) {
	query := r.db.Rebind(`
		INSERT INTO users (user_id, full_name, city, age, phone, telegram, timezone)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT (user_id) DO NOTHING
	`)

	inserted := 0
	for _, u := range testUsers {
		res, err := r.db.ExecContext(ctx, query, u.UserID, u.FullName, u.City, u.Age, u.Phone, u.Telegram)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed user %d: %w", u.UserID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
