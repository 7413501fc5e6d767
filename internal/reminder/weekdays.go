package reminder

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TokenTable maps the weekday tokens admins type to weekdays.
// Tables are versioned and never derived from runtime locale data.
type TokenTable struct {
	Version int
	tokens  map[string]time.Weekday
	names   map[time.Weekday]string
}

// TokenTableV1 holds the two-letter Russian abbreviations used by the course admin.
var TokenTableV1 = newTokenTable(1, []string{"пн", "вт", "ср", "чт", "пт", "сб", "вс"})

// newTokenTable builds a table from tokens listed Monday first.
func newTokenTable(version int, mondayFirst []string) TokenTable {
	t := TokenTable{
		Version: version,
		tokens:  make(map[string]time.Weekday, 7),
		names:   make(map[time.Weekday]string, 7),
	}
	for i, tok := range mondayFirst {
		day := time.Weekday((i + 1) % 7)
		t.tokens[tok] = day
		t.names[day] = tok
	}
	return t
}

// WeekdaySet is a set of weekdays
type WeekdaySet map[time.Weekday]bool

// Contains reports whether day is in the set
func (s WeekdaySet) Contains(day time.Weekday) bool {
	return s[day]
}

// Sorted returns the weekdays Monday first
func (s WeekdaySet) Sorted() []time.Weekday {
	days := make([]time.Weekday, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return (days[i]+6)%7 < (days[j]+6)%7
	})
	return days
}

// Lookup normalizes one token
func (t TokenTable) Lookup(token string) (time.Weekday, bool) {
	day, ok := t.tokens[strings.ToLower(strings.TrimSpace(token))]
	return day, ok
}

// Parse normalizes a comma-separated weekday list such as "Вт, Чт".
// Any token outside the table is a configuration error.
func (t TokenTable) Parse(days string) (WeekdaySet, error) {
	set := make(WeekdaySet)
	if strings.TrimSpace(days) == "" {
		return set, nil
	}
	for _, raw := range strings.Split(days, ",") {
		day, ok := t.Lookup(raw)
		if !ok {
			return nil, &ConfigError{Field: "days", Value: raw, Err: fmt.Errorf("unknown weekday token %q", strings.TrimSpace(raw))}
		}
		set[day] = true
	}
	return set, nil
}

// Format renders a set back to tokens, Monday first, capitalized the way they are typed.
func (t TokenTable) Format(set WeekdaySet) string {
	parts := make([]string, 0, len(set))
	for _, d := range set.Sorted() {
		tok := []rune(t.names[d])
		if len(tok) > 0 {
			tok[0] = []rune(strings.ToUpper(string(tok[0])))[0]
		}
		parts = append(parts, string(tok))
	}
	return strings.Join(parts, ", ")
}
