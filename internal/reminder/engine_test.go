package reminder

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/coursebot/pkg/models"
)

func biWeekly() *models.Schedule {
	return &models.Schedule{Text: "bi-weekly", Days: "Вт, Чт", Time: "19:30", Timezone: "UTC+6"}
}

func tz(name string) sql.NullString {
	if name == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: name, Valid: true}
}

func testUsers() []models.UserTimezone {
	return []models.UserTimezone{
		{UserID: 1, Timezone: tz("Europe/Moscow")},
		{UserID: 2, Timezone: tz("")},
		{UserID: 3, Timezone: tz("Asia/Almaty")},
	}
}

// 2025-03-04 is a Tuesday.
func tuesdayAt(hour, minute int) time.Time {
	return time.Date(2025, time.March, 4, hour, minute, 0, 0, time.UTC)
}

func TestWindow_AnchorsOnScheduleZone(t *testing.T) {
	e := NewEngine(time.UTC)

	w, err := e.Window(biWeekly(), tuesdayAt(12, 35))
	require.NoError(t, err)

	assert.Equal(t, tuesdayAt(13, 30), w.Lesson)
	assert.Equal(t, tuesdayAt(12, 30), w.OneHourBefore)
	assert.Equal(t, "2025-03-03", w.DayBeforeDate)
	assert.Equal(t, "2025-03-04", w.LessonDate)
	assert.True(t, w.Weekdays.Contains(time.Tuesday))
	assert.True(t, w.Weekdays.Contains(time.Thursday))
	assert.Len(t, w.Weekdays, 2)
}

func TestDue_OneHourBeforeScenario(t *testing.T) {
	e := NewEngine(time.UTC)

	got, err := e.Due(biWeekly(), tuesdayAt(12, 35), testUsers())
	require.NoError(t, err)

	want := []Notification{
		{UserID: 1, Kind: OneHourBefore, LocalTime: "16:30", LessonDate: "2025-03-04"},
		{UserID: 2, Kind: OneHourBefore, LocalTime: "13:30", LessonDate: "2025-03-04"},
		{UserID: 3, Kind: OneHourBefore, LocalTime: "18:30", LessonDate: "2025-03-04"},
	}
	assert.Equal(t, want, got)
}

func TestDue_OneHourWindowBounds(t *testing.T) {
	e := NewEngine(time.UTC)
	users := testUsers()

	start := tuesdayAt(11, 0)
	for now := start; now.Before(tuesdayAt(15, 0)); now = now.Add(time.Minute) {
		got, err := e.Due(biWeekly(), now, users)
		require.NoError(t, err)

		inside := !now.Before(tuesdayAt(12, 30)) && now.Before(tuesdayAt(13, 30))
		if !inside {
			assert.Empty(t, got, "no reminders expected at %s", now)
			continue
		}
		require.Len(t, got, len(users), "at %s", now)
		seen := map[int64]int{}
		for _, n := range got {
			assert.Equal(t, OneHourBefore, n.Kind)
			seen[n.UserID]++
		}
		for _, u := range users {
			assert.Equal(t, 1, seen[u.UserID])
		}
	}
}

func TestDue_OneDayBefore(t *testing.T) {
	e := NewEngine(time.UTC)

	// 20:00 UTC Tuesday is already Wednesday 02:00 in UTC+6, so the anchored
	// lesson is Wednesday 13:30 UTC and lesson-24h falls on Tuesday.
	now := tuesdayAt(20, 0)
	got, err := e.Due(biWeekly(), now, testUsers())
	require.NoError(t, err)

	require.Len(t, got, 3)
	for _, n := range got {
		assert.Equal(t, OneDayBefore, n.Kind)
		assert.Equal(t, "2025-03-05", n.LessonDate)
	}
	assert.Equal(t, "16:30", got[0].LocalTime)
	assert.Equal(t, "13:30", got[1].LocalTime)

	// Fires for the whole UTC day as long as the anchor stays the same.
	got, err = e.Due(biWeekly(), tuesdayAt(23, 59), testUsers())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDue_WeekdayGate(t *testing.T) {
	e := NewEngine(time.UTC)

	// Wednesday 12:35 UTC, same wall clock as the Tuesday scenario.
	wednesday := tuesdayAt(12, 35).AddDate(0, 0, 1)
	got, err := e.Due(biWeekly(), wednesday, testUsers())
	require.NoError(t, err)
	assert.Empty(t, got)

	// Thursday is a lesson day again.
	thursday := tuesdayAt(12, 35).AddDate(0, 0, 2)
	got, err = e.Due(biWeekly(), thursday, testUsers())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDue_Idempotent(t *testing.T) {
	e := NewEngine(time.UTC)
	s := biWeekly()
	users := testUsers()

	first, err := e.Due(s, tuesdayAt(12, 45), users)
	require.NoError(t, err)
	second, err := e.Due(s, tuesdayAt(12, 45), users)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, biWeekly(), s)
	assert.Equal(t, testUsers(), users)
}

func TestDue_NoSchedule(t *testing.T) {
	got, err := NewEngine(time.UTC).Due(nil, tuesdayAt(12, 35), testUsers())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDue_EmptyWeekdaysNeverEligible(t *testing.T) {
	s := biWeekly()
	s.Days = ""
	got, err := NewEngine(time.UTC).Due(s, tuesdayAt(12, 35), testUsers())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDue_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(s *models.Schedule)
		field string
	}{
		{"unknown weekday", func(s *models.Schedule) { s.Days = "Вт, Tue" }, "days"},
		{"trailing comma", func(s *models.Schedule) { s.Days = "Вт," }, "days"},
		{"short time", func(s *models.Schedule) { s.Time = "7:30" }, "time"},
		{"hour out of range", func(s *models.Schedule) { s.Time = "24:00" }, "time"},
		{"bad timezone", func(s *models.Schedule) { s.Timezone = "Moscow" }, "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := biWeekly()
			tt.mod(s)
			_, err := NewEngine(time.UTC).Due(s, tuesdayAt(12, 35), testUsers())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrScheduleConfig)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestDue_FallbackZone(t *testing.T) {
	e := NewEngine(time.FixedZone("UTC+3", 3*3600))
	users := []models.UserTimezone{
		{UserID: 7, Timezone: tz("")},
		{UserID: 8, Timezone: tz("Not/AZone")},
	}

	got, err := e.Due(biWeekly(), tuesdayAt(12, 35), users)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "16:30", got[0].LocalTime)
	assert.Equal(t, "16:30", got[1].LocalTime)
}

func TestWindow_IANAScheduleZoneAcrossDST(t *testing.T) {
	e := NewEngine(time.UTC)
	s := &models.Schedule{Days: "Вс", Time: "10:00", Timezone: "Europe/Berlin"}

	// Sunday 2025-03-30 is the day Berlin switches to CEST (UTC+2).
	w, err := e.Window(s, time.Date(2025, time.March, 30, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 30, 8, 0, 0, 0, time.UTC), w.Lesson)

	// A week earlier it is still CET (UTC+1).
	w, err = e.Window(s, time.Date(2025, time.March, 23, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 23, 9, 0, 0, 0, time.UTC), w.Lesson)
}
