package weather

import "math"

// AQHI coefficients per pollutant (Canadian Air Quality Health Index).
const (
	aqhiOzoneCoeff = 0.000537
	aqhiNO2Coeff   = 0.000871
	aqhiPM25Coeff  = 0.000487
)

// CalculateAQHI computes the Air Quality Health Index from ozone, nitrogen
// dioxide and PM2.5 concentrations. The result is rounded to one decimal.
// No range validation is performed.
func CalculateAQHI(ozone, nitrogenDioxide, pm25 float64) float64 {
	term := func(c, x float64) float64 {
		return math.Exp(c*x) - 1
	}

	aqhi := (1000 / 10.4) * (term(aqhiOzoneCoeff, ozone) +
		term(aqhiNO2Coeff, nitrogenDioxide) +
		term(aqhiPM25Coeff, pm25))

	return roundTo(aqhi, 1)
}

// roundTo rounds half to even, like the axis bounds.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
