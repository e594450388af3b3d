package ode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGear2MatchesFixedStep(t *testing.T) {
	h := 1e-3
	assert.InDeltaSlice(t, GetBDFcoeffs(2, h), GetGear2Coeffs(h, h), 1e-9)
}

func TestGear2ExactForQuadratics(t *testing.T) {
	x := func(t float64) float64 { return 3*t*t - t + 2 }
	dx := func(t float64) float64 { return 6*t - 1 }

	for _, steps := range [][2]float64{{0.1, 0.1}, {0.2, 0.1}, {0.05, 0.3}} {
		h, hPrev := steps[0], steps[1]
		t0, t1 := 1.0, 1.0+hPrev
		t2 := t1 + h

		c := GetGear2Coeffs(h, hPrev)
		got := c[0]*x(t2) + c[1]*x(t1) + c[2]*x(t0)
		assert.InDelta(t, dx(t2), got, 1e-8, "h=%g hPrev=%g", h, hPrev)
	}
}

func TestBDFcoeffsOrderOne(t *testing.T) {
	assert.Equal(t, []float64{10, -10}, GetBDFcoeffs(1, 0.1))
	// out of range orders fall back to backward Euler
	assert.Equal(t, GetBDFcoeffs(1, 0.1), GetBDFcoeffs(9, 0.1))
	assert.Equal(t, GetBDFcoeffs(1, 0.1), GetBDFcoeffs(3, 0.1))
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod("trap")
	assert.True(t, ok)
	assert.Equal(t, TrapezoidalMethod, m)

	m, ok = ParseMethod("GEAR")
	assert.True(t, ok)
	assert.Equal(t, GearMethod, m)

	_, ok = ParseMethod("euler")
	assert.False(t, ok)
}

func TestLTEConstant(t *testing.T) {
	assert.Equal(t, 0.5, lteConstant(GearMethod, 1))
	assert.Equal(t, 0.5, lteConstant(TrapezoidalMethod, 1))
	assert.InDelta(t, 2.0/9.0, lteConstant(GearMethod, 2), 1e-15)
	assert.InDelta(t, 1.0/12.0, lteConstant(TrapezoidalMethod, 2), 1e-15)
}
