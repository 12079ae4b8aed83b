package weather

import "errors"

var (
	// ErrMissingField is returned when a provider record lacks a field fusion requires.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownTimezone is returned when the forecast timezone cannot be loaded.
	ErrUnknownTimezone = errors.New("unknown timezone")

	// ErrGeocoderUnavailable is returned when a place name is given but no geocoder is configured.
	ErrGeocoderUnavailable = errors.New("geocoder not configured, specify location as lat,lon")

	// ErrLocationNotFound is returned when the geocoder has no result for a query.
	ErrLocationNotFound = errors.New("location not found")

	// ErrInvalidLocation is returned for empty or malformed location text.
	ErrInvalidLocation = errors.New("invalid location")
)
