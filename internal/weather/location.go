package weather

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCoordinate parses "lat,lon" text. ok is false when the text is not
// two comma-separated numbers; err is set when it is but the values are out
// of range.
func ParseCoordinate(text string) (c Coordinate, ok bool, err error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, false, nil
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, false, nil
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinate{}, true, fmt.Errorf("%w: %q out of range", ErrInvalidLocation, text)
	}

	return Coordinate{Lat: lat, Lon: lon}, true, nil
}

// NormalizeQuery returns the canonical cache key for free-text location input.
func NormalizeQuery(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
