package weather

import (
	"fmt"
	"time"
)

const kelvinOffset = 273.15

// ToCelsius converts Kelvin to Celsius rounded to two decimals.
func ToCelsius(kelvin float64) float64 {
	return roundTo(kelvin-kelvinOffset, 2)
}

// Normalizer converts provider epoch timestamps into local times.
//
// In zoned mode timestamps are read in the source zone and converted to the
// forecast location's zone. When the runtime has no timezone database the
// Normalizer is built unzoned and returns source-zone wall clock times as is.
// The mode is decided once at startup.
type Normalizer struct {
	source *time.Location
	zoned  bool
}

// NewNormalizer creates a Normalizer. A nil source means time.Local.
func NewNormalizer(source *time.Location, zoned bool) Normalizer {
	if source == nil {
		source = time.Local
	}
	return Normalizer{source: source, zoned: zoned}
}

// Zoned reports whether timezone conversion is enabled.
func (n Normalizer) Zoned() bool {
	return n.zoned
}

// Source returns the zone timestamps are first interpreted in.
func (n Normalizer) Source() *time.Location {
	if n.source == nil {
		return time.Local
	}
	return n.source
}

// ResolveZone loads the named target zone. Unzoned normalizers skip the
// lookup and return the source zone.
func (n Normalizer) ResolveZone(name string) (*time.Location, error) {
	if !n.zoned {
		return n.Source(), nil
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty timezone name", ErrUnknownTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownTimezone, name, err)
	}
	return loc, nil
}

// ToLocalZoned converts epoch seconds into a time in the target zone.
func (n Normalizer) ToLocalZoned(epochSeconds int64, target *time.Location) time.Time {
	local := time.Unix(epochSeconds, 0).In(n.Source())
	if !n.zoned || target == nil {
		return local
	}
	return local.In(target)
}

// ProbeTimezoneSupport reports whether the runtime can load IANA zones.
func ProbeTimezoneSupport() bool {
	_, err := time.LoadLocation("America/Edmonton")
	return err == nil
}
