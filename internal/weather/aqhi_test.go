package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateAQHIFixtures(t *testing.T) {
	cases := []struct {
		name          string
		o3, no2, pm25 float64
		want          float64
	}{
		{"zero", 0, 0, 0, 0.0},
		{"regression fixture", 10, 20, 5, 2.4},
		{"moderate", 60, 40, 20, 7.5},
		{"high", 100, 50, 30, 11.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateAQHI(tc.o3, tc.no2, tc.pm25))
		})
	}
}

func TestCalculateAQHIMonotonic(t *testing.T) {
	base := []float64{10, 20, 5}

	for arg := 0; arg < 3; arg++ {
		prev := CalculateAQHI(base[0], base[1], base[2])
		for step := 1; step <= 50; step++ {
			in := append([]float64(nil), base...)
			in[arg] += float64(step) * 3
			got := CalculateAQHI(in[0], in[1], in[2])
			assert.GreaterOrEqual(t, got, prev, "argument %d step %d", arg, step)
			prev = got
		}
	}
}

func TestCalculateAQHINegativeInputsAreDefined(t *testing.T) {
	got := CalculateAQHI(-10, -20, -5)
	assert.Less(t, got, 0.0)
}

func TestRoundToHalvesToEven(t *testing.T) {
	assert.Equal(t, 2.0, roundTo(2.5, 0))
	assert.Equal(t, 4.0, roundTo(3.5, 0))
	assert.Equal(t, 0.2, roundTo(0.25, 1))
	assert.Equal(t, -0.2, roundTo(-0.25, 1))
	assert.Equal(t, 2.4, roundTo(2.441829, 1))
}
