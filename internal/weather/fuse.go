package weather

import (
	"fmt"
	"maps"
	"time"
)

// pollutionIndex keeps pollution samples keyed by timestamp in insertion order.
// A repeated timestamp overwrites the sample but keeps its first position.
type pollutionIndex struct {
	order []int64
	byTS  map[int64]PollutionSample
}

func newPollutionIndex(samples []PollutionSample) *pollutionIndex {
	idx := &pollutionIndex{byTS: make(map[int64]PollutionSample, len(samples))}
	for _, s := range samples {
		if _, ok := idx.byTS[s.Timestamp]; !ok {
			idx.order = append(idx.order, s.Timestamp)
		}
		idx.byTS[s.Timestamp] = s
	}
	return idx
}

func (idx *pollutionIndex) empty() bool {
	return len(idx.order) == 0
}

// nearest returns the sample with the exact timestamp, or else the one with
// the smallest absolute distance. Ties go to the earliest inserted sample.
func (idx *pollutionIndex) nearest(ts int64) (PollutionSample, bool) {
	if s, ok := idx.byTS[ts]; ok {
		return s, true
	}
	if idx.empty() {
		return PollutionSample{}, false
	}

	best := idx.order[0]
	bestDist := absInt64(best - ts)
	for _, candidate := range idx.order[1:] {
		if d := absInt64(candidate - ts); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return idx.byTS[best], true
}

// Fuse merges hourly weather samples with pollution samples by nearest
// timestamp. Records keep the input order. An empty pollution list is valid:
// records are returned without pollution or AQHI.
func Fuse(norm Normalizer, target *time.Location, samples []WeatherSample, pollution []PollutionSample) ([]FusedRecord, error) {
	idx := newPollutionIndex(pollution)
	withPollution := !idx.empty()

	records := make([]FusedRecord, 0, len(samples))
	for i, s := range samples {
		rec, err := fuseSample(norm, target, s)
		if err != nil {
			return nil, fmt.Errorf("weather sample %d (dt=%d): %w", i, s.Timestamp, err)
		}

		if withPollution {
			p, _ := idx.nearest(s.Timestamp)
			aqhi, err := aqhiFor(p)
			if err != nil {
				return nil, fmt.Errorf("pollution sample dt=%d matched to dt=%d: %w", p.Timestamp, s.Timestamp, err)
			}
			p.Components = maps.Clone(p.Components)
			rec.Pollution = &p
			rec.AQHI = &aqhi
		}

		records = append(records, rec)
	}

	return records, nil
}

func fuseSample(norm Normalizer, target *time.Location, s WeatherSample) (FusedRecord, error) {
	temp, err := requireField("temp", s.Temperature)
	if err != nil {
		return FusedRecord{}, err
	}
	dew, err := requireField("dew_point", s.DewPoint)
	if err != nil {
		return FusedRecord{}, err
	}
	feels, err := requireField("feels_like", s.FeelsLike)
	if err != nil {
		return FusedRecord{}, err
	}

	rec := FusedRecord{
		Timestamp:    s.Timestamp,
		Time:         norm.ToLocalZoned(s.Timestamp, target),
		TemperatureC: ToCelsius(temp),
		DewPointC:    ToCelsius(dew),
		FeelsLikeC:   ToCelsius(feels),
		HumidityPct:  s.HumidityPct,
		PressureHpa:  s.PressureHpa,
		WindSpeedMS:  s.WindSpeedMS,
		UVIndex:      s.UVIndex,
		CloudsPct:    s.CloudsPct,
	}
	if s.PrecipProbability != nil {
		rec.PrecipProbability = *s.PrecipProbability
	}
	if len(s.Conditions) == 0 {
		return FusedRecord{}, fmt.Errorf("%w: weather", ErrMissingField)
	}
	rec.Condition = s.Conditions[0]
	if s.Sunrise != nil {
		t := norm.ToLocalZoned(*s.Sunrise, target)
		rec.Sunrise = &t
	}
	if s.Sunset != nil {
		t := norm.ToLocalZoned(*s.Sunset, target)
		rec.Sunset = &t
	}

	return rec, nil
}

func aqhiFor(p PollutionSample) (float64, error) {
	var values [3]float64
	for i, code := range []string{PollutantOzone, PollutantNitrogenDioxide, PollutantPM25} {
		v, ok := p.Components[code]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingField, code)
		}
		values[i] = v
	}
	return CalculateAQHI(values[0], values[1], values[2]), nil
}

func requireField(name string, v *float64) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return *v, nil
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
