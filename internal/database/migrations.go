package database

import (
	"context"
	"fmt"

	"github.com/GuiaBolso/darwin"
)

// The users and schedule tables keep the column layout of the legacy deployment,
// so an existing Postgres database is adopted as is.
var postgresMigrations = []darwin.Migration{
	{
		Version:     1,
		Description: "create users table",
		Script: `CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			full_name TEXT NOT NULL,
			city TEXT NOT NULL,
			age INTEGER NOT NULL,
			phone TEXT,
			telegram TEXT,
			timezone VARCHAR DEFAULT 'UTC',
			registration_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Version:     2,
		Description: "create schedule table",
		Script: `CREATE TABLE IF NOT EXISTS schedule (
			id SERIAL PRIMARY KEY,
			text TEXT NOT NULL,
			days TEXT NOT NULL,
			time TEXT NOT NULL,
			timezone TEXT NOT NULL
		)`,
	},
	{
		Version:     3,
		Description: "create reminder_deliveries table",
		Script: `CREATE TABLE IF NOT EXISTS reminder_deliveries (
			user_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			lesson_date TEXT NOT NULL,
			sent_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, kind, lesson_date)
		)`,
	},
}

var sqliteMigrations = []darwin.Migration{
	{
		Version:     1,
		Description: "create users table",
		Script: `CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			full_name TEXT NOT NULL,
			city TEXT NOT NULL,
			age INTEGER NOT NULL,
			phone TEXT,
			telegram TEXT,
			timezone VARCHAR DEFAULT 'UTC',
			registration_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Version:     2,
		Description: "create schedule table",
		Script: `CREATE TABLE IF NOT EXISTS schedule (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			days TEXT NOT NULL,
			time TEXT NOT NULL,
			timezone TEXT NOT NULL
		)`,
	},
	{
		Version:     3,
		Description: "create reminder_deliveries table",
		Script: `CREATE TABLE IF NOT EXISTS reminder_deliveries (
			user_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			lesson_date TEXT NOT NULL,
			sent_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, kind, lesson_date)
		)`,
	},
}

// Migrate applies pending schema migrations for the pool's dialect
func Migrate(db *DB) error {
	var (
		dialect    darwin.Dialect
		migrations []darwin.Migration
	)
	if db.IsPostgres() {
		dialect, migrations = darwin.PostgresDialect{}, postgresMigrations
	} else {
		dialect, migrations = darwin.SqliteDialect{}, sqliteMigrations
	}

	driver := darwin.NewGenericDriver(db.DB.DB, dialect)
	if err := darwin.New(driver, migrations, nil).Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Default schedule seeded into an empty schedule table on startup
const (
	defaultScheduleText     = "Курс проходит дважды в неделю."
	defaultScheduleDays     = "Вт, Чт"
	defaultScheduleTime     = "19:30"
	defaultScheduleTimezone = "UTC+6"
)

// SeedDefaultSchedule inserts the default schedule when none exists
func SeedDefaultSchedule(ctx context.Context, db *DB) error {
	query := db.Rebind(`
		INSERT INTO schedule (text, days, time, timezone)
		SELECT ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM schedule)
	`)
	if _, err := db.ExecContext(ctx, query,
		defaultScheduleText, defaultScheduleDays, defaultScheduleTime, defaultScheduleTimezone,
	); err != nil {
		return fmt.Errorf("failed to seed default schedule: %w", err)
	}
	return nil
}
