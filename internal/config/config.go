package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/example/coursebot/internal/timezone"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// CronList is a semicolon separated list of cron expressions.
// Commas are part of cron syntax, so the envconfig default splitting can't be used.
type CronList []string

// Decode implements envconfig.Decoder
func (c *CronList) Decode(value string) error {
	var out CronList
	for _, expr := range strings.Split(value, ";") {
		if expr = strings.TrimSpace(expr); expr != "" {
			out = append(out, expr)
		}
	}
	if len(out) == 0 {
		return errors.New("at least one cron expression is required")
	}
	*c = out
	return nil
}

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken         string        `envconfig:"BOT_TOKEN" required:"true"`
	DatabaseURL      string        `envconfig:"DATABASE_URL" required:"true"` // postgres://... or sqlite://path
	AdminID          int64         `envconfig:"ADMIN_ID" required:"true"`
	SupportUsername  string        `envconfig:"SUPPORT_USERNAME"`
	FallbackTimezone string        `envconfig:"FALLBACK_TIMEZONE" default:"UTC"`
	ReminderCrons    CronList      `envconfig:"REMINDER_CRONS" default:"0 9 * * *;30 18 * * *"`
	ReminderDedup    bool          `envconfig:"REMINDER_DEDUP" default:"true"`
	SendDelay        time.Duration `envconfig:"SEND_DELAY" default:"100ms"`
	DialogTTL        time.Duration `envconfig:"DIALOG_TTL" default:"30m"`
	RedisURL         string        `envconfig:"REDIS_URL"` // dialogue state in Redis when set, in memory otherwise
	FAQPath          string        `envconfig:"FAQ_PATH"`
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
}

// Load reads .env (if present) and environment variables into Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values envconfig can't
func (c Config) Validate() error {
	if c.AdminID <= 0 {
		return fmt.Errorf("ADMIN_ID must be a positive Telegram user id, got %d", c.AdminID)
	}
	if _, err := timezone.Load(c.FallbackTimezone); err != nil {
		return fmt.Errorf("FALLBACK_TIMEZONE: %w", err)
	}
	if c.SendDelay < 0 {
		return fmt.Errorf("SEND_DELAY must not be negative")
	}
	return nil
}

// FallbackLocation is the zone used for users who never shared a location
func (c Config) FallbackLocation() *time.Location {
	return timezone.LoadOr(c.FallbackTimezone, time.UTC)
}
