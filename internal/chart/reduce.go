package chart

import (
	"math"

	"github.com/i474232898/weather-image/internal/weather"
)

const (
	// DefaultWindow is the number of hourly records charted by default.
	DefaultWindow = 24

	// TemperatureMajorInterval is the temperature axis major tick spacing in °C.
	TemperatureMajorInterval = 5

	// Percent axis shared by precipitation probability and scaled AQHI.
	percentMin           = 0
	percentMax           = 100
	percentMajorInterval = 10

	hourLabelLayout = "15"
)

// Axis describes a y axis range with tick spacing.
type Axis struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	MajorInterval float64 `json:"majorInterval"`
	MinorInterval float64 `json:"minorInterval"`
}

// Ticks returns every tick value from Min to Max inclusive.
func (a Axis) Ticks() []float64 {
	step := a.MinorInterval
	if step <= 0 {
		step = a.MajorInterval
	}
	if step <= 0 || a.Max < a.Min {
		return nil
	}

	var ticks []float64
	for v := a.Min; v <= a.Max; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// IsMajor reports whether v falls on a major tick.
func (a Axis) IsMajor(v float64) bool {
	if a.MajorInterval <= 0 {
		return true
	}
	return math.Mod(v-a.Min, a.MajorInterval) == 0
}

// PercentAxis is the fixed 0-100 axis for percentage-scaled series.
func PercentAxis() Axis {
	return Axis{
		Min:           percentMin,
		Max:           percentMax,
		MajorInterval: percentMajorInterval,
		MinorInterval: percentMajorInterval,
	}
}

// Reduction is the chart-ready view of the first window of fused records.
// All non-empty series have len(Labels) elements. AQHI is empty when no
// record in the window carries an AQHI value.
type Reduction struct {
	Labels        []string  `json:"labels"`
	Temperature   []float64 `json:"temperature"`
	Precipitation []float64 `json:"precipitation"`
	AQHI          []float64 `json:"aqhi,omitempty"`

	TemperatureAxis Axis `json:"temperatureAxis"`
	PercentAxis     Axis `json:"percentAxis"`
}

// HasAQHI reports whether the AQHI series should be charted.
func (r Reduction) HasAQHI() bool {
	return len(r.AQHI) > 0
}

// Reduce truncates records to the first window entries and extracts the
// temperature, precipitation and AQHI series with their axes. A window <= 0
// uses DefaultWindow.
func Reduce(records []weather.FusedRecord, window int) Reduction {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(records) > window {
		records = records[:window]
	}

	r := Reduction{
		Labels:        make([]string, 0, len(records)),
		Temperature:   make([]float64, 0, len(records)),
		Precipitation: make([]float64, 0, len(records)),
		PercentAxis:   PercentAxis(),
	}
	if len(records) == 0 {
		return r
	}

	minTemp := math.Inf(1)
	maxTemp := math.Inf(-1)
	for _, rec := range records {
		r.Labels = append(r.Labels, rec.Time.Format(hourLabelLayout))
		r.Temperature = append(r.Temperature, rec.TemperatureC)
		r.Precipitation = append(r.Precipitation, rec.PrecipProbability*100)
		if rec.AQHI != nil {
			r.AQHI = append(r.AQHI, *rec.AQHI*10)
		}

		minTemp = math.Min(minTemp, rec.TemperatureC)
		maxTemp = math.Max(maxTemp, rec.TemperatureC)
	}

	r.TemperatureAxis = temperatureAxis(minTemp, maxTemp)
	return r
}

// temperatureAxis snaps the observed range onto multiples of the major
// interval with at least one interval of headroom above the maximum.
func temperatureAxis(minObserved, maxObserved float64) Axis {
	const major = TemperatureMajorInterval

	minTemp := math.RoundToEven(minObserved)
	maxTemp := math.RoundToEven(maxObserved)

	yMin := minTemp - floorMod(minTemp, major)
	if yMin > minObserved {
		yMin -= major
	}
	yMax := major * (math.RoundToEven(maxTemp/major) + 1)

	return Axis{
		Min:           yMin,
		Max:           yMax,
		MajorInterval: major,
		MinorInterval: 1,
	}
}

// floorMod is the modulo with the sign of the divisor.
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
