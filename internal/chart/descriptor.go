package chart

// Chart names, also used as output file suffixes.
const (
	NameTemperature = "temperature"
	NamePoP         = "pop"
)

// Series names as shown in chart legends.
const (
	SeriesTemperature = "°C"
	SeriesPoP         = "PoP"
	SeriesAQHI        = "AQHI"
)

// AxisSide selects the y axis a series is plotted against.
type AxisSide string

const (
	AxisPrimary   AxisSide = "primary"
	AxisSecondary AxisSide = "secondary"
)

// Series is one named line of values aligned with the descriptor's labels.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Axis   AxisSide  `json:"axis"`
}

// Descriptor is a renderer-independent description of a line chart.
type Descriptor struct {
	Name       string   `json:"name"`
	Labels     []string `json:"labels"`
	Series     []Series `json:"series"`
	Primary    *Axis    `json:"primaryAxis,omitempty"`
	Secondary  *Axis    `json:"secondaryAxis,omitempty"`
	ShowLegend bool     `json:"showLegend"`
}

// Empty reports whether the descriptor has nothing to plot.
func (d Descriptor) Empty() bool {
	return len(d.Labels) == 0
}

// AxisFor returns the axis definition for the given side.
func (d Descriptor) AxisFor(side AxisSide) *Axis {
	if side == AxisSecondary {
		return d.Secondary
	}
	return d.Primary
}

// Build assembles the temperature chart and the combined precipitation/AQHI
// chart. The AQHI series is left out entirely when the reduction has none.
func Build(r Reduction) []Descriptor {
	tempAxis := r.TemperatureAxis
	temperature := Descriptor{
		Name:   NameTemperature,
		Labels: r.Labels,
		Series: []Series{
			{Name: SeriesTemperature, Values: r.Temperature, Axis: AxisPrimary},
		},
		Primary: &tempAxis,
	}

	percent := r.PercentAxis
	pop := Descriptor{
		Name:   NamePoP,
		Labels: r.Labels,
		Series: []Series{
			{Name: SeriesPoP, Values: r.Precipitation, Axis: AxisSecondary},
		},
		Secondary:  &percent,
		ShowLegend: true,
	}
	if r.HasAQHI() {
		pop.Series = append(pop.Series, Series{Name: SeriesAQHI, Values: r.AQHI, Axis: AxisSecondary})
	}

	return []Descriptor{temperature, pop}
}

// Find returns the descriptor with the given name.
func Find(descriptors []Descriptor, name string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
