// Package reminder decides which users are due a lesson reminder at a given instant.
// Everything here is pure: no clock reads and no I/O, so callers can replay any instant.
package reminder

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/example/coursebot/internal/timezone"
	"github.com/example/coursebot/pkg/models"
)

// Kind is the type of reminder
type Kind int

const (
	OneHourBefore Kind = iota + 1
	OneDayBefore
)

func (k Kind) String() string {
	switch k {
	case OneHourBefore:
		return "one_hour_before"
	case OneDayBefore:
		return "one_day_before"
	default:
		return "unknown"
	}
}

// LocalTimeLayout is how lesson times are shown to users
const LocalTimeLayout = "15:04"

var timeOfDayPattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// Notification is one reminder for one user
type Notification struct {
	UserID     int64
	Kind       Kind
	LocalTime  string // lesson time in the user's zone
	LessonDate string // lesson date in the schedule's zone, YYYY-MM-DD
}

// Window is the reminder window derived from a schedule at an instant
type Window struct {
	Weekdays      WeekdaySet
	Lesson        time.Time // today's lesson instant, UTC
	OneHourBefore time.Time
	DayBeforeDate string // calendar date of Lesson-24h, UTC
	LessonDate    string
}

// Engine computes due reminders
type Engine struct {
	tokens   TokenTable
	fallback *time.Location
}

// NewEngine creates an engine that renders times in fallback for users without a zone.
func NewEngine(fallback *time.Location) *Engine {
	if fallback == nil {
		fallback = time.UTC
	}
	return &Engine{tokens: TokenTableV1, fallback: fallback}
}

// Tokens returns the weekday table the engine parses schedules with
func (e *Engine) Tokens() TokenTable {
	return e.tokens
}

// ParseTimeOfDay parses HH:MM within 00:00-23:59
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	m := timeOfDayPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, &ConfigError{Field: "time", Value: s, Err: fmt.Errorf("expected HH:MM")}
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, &ConfigError{Field: "time", Value: s, Err: fmt.Errorf("out of range")}
	}
	return hour, minute, nil
}

// Window anchors the schedule's local time on today's date in the schedule's zone.
// The weekday set is parsed but not applied here.
func (e *Engine) Window(s *models.Schedule, now time.Time) (Window, error) {
	days, err := e.tokens.Parse(s.Days)
	if err != nil {
		return Window{}, err
	}
	hour, minute, err := ParseTimeOfDay(s.Time)
	if err != nil {
		return Window{}, err
	}
	loc, err := timezone.Load(s.Timezone)
	if err != nil {
		return Window{}, &ConfigError{Field: "timezone", Value: s.Timezone, Err: err}
	}

	local := now.In(loc)
	lessonLocal := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	lesson := lessonLocal.UTC()

	return Window{
		Weekdays:      days,
		Lesson:        lesson,
		OneHourBefore: lesson.Add(-time.Hour),
		DayBeforeDate: lesson.Add(-24 * time.Hour).Format("2006-01-02"),
		LessonDate:    lessonLocal.Format("2006-01-02"),
	}, nil
}

// Due returns the reminders to send at now. A nil schedule yields nothing.
// Output follows the order of users; per user the one-hour reminder comes first.
func (e *Engine) Due(s *models.Schedule, now time.Time, users []models.UserTimezone) ([]Notification, error) {
	if s == nil {
		return nil, nil
	}
	w, err := e.Window(s, now)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	if !w.Weekdays.Contains(now.Weekday()) {
		return nil, nil
	}

	hourDue := !now.Before(w.OneHourBefore) && now.Before(w.Lesson)
	dayDue := w.DayBeforeDate == now.Format("2006-01-02")
	if !hourDue && !dayDue {
		return nil, nil
	}

	var out []Notification
	for _, u := range users {
		local := e.RenderLocal(w.Lesson, u.Timezone.String)
		if hourDue {
			out = append(out, Notification{UserID: u.UserID, Kind: OneHourBefore, LocalTime: local, LessonDate: w.LessonDate})
		}
		if dayDue {
			out = append(out, Notification{UserID: u.UserID, Kind: OneDayBefore, LocalTime: local, LessonDate: w.LessonDate})
		}
	}
	return out, nil
}

// RenderLocal formats an instant in the given zone, or the fallback if tz is unset or unknown.
func (e *Engine) RenderLocal(t time.Time, tz string) string {
	return t.In(timezone.LoadOr(tz, e.fallback)).Format(LocalTimeLayout)
}
