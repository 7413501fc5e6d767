package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "sqlite://data/course.db")
	t.Setenv("ADMIN_ID", "1001")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, int64(1001), cfg.AdminID)
	assert.Equal(t, "UTC", cfg.FallbackTimezone)
	assert.Equal(t, CronList{"0 9 * * *", "30 18 * * *"}, cfg.ReminderCrons)
	assert.True(t, cfg.ReminderDedup)
	assert.Equal(t, 100*time.Millisecond, cfg.SendDelay)
	assert.Equal(t, 30*time.Minute, cfg.DialogTTL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, time.UTC, cfg.FallbackLocation())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FALLBACK_TIMEZONE", "UTC+3")
	t.Setenv("REMINDER_CRONS", "0 8,20 * * * ; */15 * * * *")
	t.Setenv("REMINDER_DEDUP", "false")
	t.Setenv("SEND_DELAY", "250ms")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CronList{"0 8,20 * * *", "*/15 * * * *"}, cfg.ReminderCrons)
	assert.False(t, cfg.ReminderDedup)
	assert.Equal(t, 250*time.Millisecond, cfg.SendDelay)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)

	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).In(cfg.FallbackLocation()).Zone()
	assert.Equal(t, 3*3600, offset)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	require.NoError(t, os.Unsetenv("BOT_TOKEN"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"FALLBACK_TIMEZONE": "Mars/Olympus",
		"ADMIN_ID":          "-5",
		"REMINDER_CRONS":    " ; ",
		"SEND_DELAY":        "fast",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
