// Package timezone parses stored timezone identifiers and maps coordinates to IANA zones.
package timezone

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	// Embedded zone database so zone lookups never depend on the host.
	_ "time/tzdata"
)

// ErrInvalidTimezone is returned for identifiers that are neither IANA names nor UTC offsets.
var ErrInvalidTimezone = errors.New("invalid timezone")

// offsetPattern matches the fixed-offset form the admin dialogue accepts: UTC+3, UTC-5, UTC+5:30.
var offsetPattern = regexp.MustCompile(`^UTC([+-])(\d{1,2})(?::(\d{2}))?$`)

// Load resolves a timezone identifier to a location.
// Accepted forms are IANA names ("Europe/Moscow", "UTC") and fixed offsets ("UTC+6").
func Load(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTimezone)
	}

	if m := offsetPattern.FindStringSubmatch(tz); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("%w: offset out of range: %s", ErrInvalidTimezone, tz)
		}
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(tz, offset), nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, tz)
	}
	return loc, nil
}

// LoadOr resolves tz, falling back to fallback when tz is empty or invalid.
func LoadOr(tz string, fallback *time.Location) *time.Location {
	if loc, err := Load(tz); err == nil {
		return loc
	}
	return fallback
}
