package models

import (
	"database/sql"
	"time"
)

// User represents a registered student
type User struct {
	UserID           int64          `json:"user_id" db:"user_id"` // Telegram User ID
	FullName         string         `json:"full_name" db:"full_name"`
	City             string         `json:"city" db:"city"` // City or country, free text
	Age              int            `json:"age" db:"age"`
	Phone            sql.NullString `json:"phone" db:"phone"`
	Telegram         sql.NullString `json:"telegram" db:"telegram"` // Handle or link typed during registration
	Timezone         sql.NullString `json:"timezone" db:"timezone"` // Set once by the geolocation handler
	RegistrationTime time.Time      `json:"registration_time" db:"registration_time"`
}

// UserTimezone is the projection the reminder engine works on
type UserTimezone struct {
	UserID   int64          `db:"user_id"`
	Timezone sql.NullString `db:"timezone"`
}

// Recipient is a broadcast target
type Recipient struct {
	UserID   int64  `db:"user_id"`
	FullName string `db:"full_name"`
}
