package timezone

import "github.com/bradfitz/latlong"

// Resolver maps geographic coordinates to an IANA timezone name
type Resolver interface {
	Resolve(latitude, longitude float64) (string, bool)
}

// LatLongResolver looks zones up in the land boundary tables embedded in latlong.
// Points at sea have no zone.
type LatLongResolver struct{}

// NewResolver returns the default resolver
func NewResolver() LatLongResolver {
	return LatLongResolver{}
}

// Resolve returns the zone at the coordinate, or false when none matches.
func (LatLongResolver) Resolve(latitude, longitude float64) (string, bool) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return "", false
	}
	name := latlong.LookupZoneName(latitude, longitude)
	if name == "" {
		return "", false
	}
	return name, true
}
