package ode_test

import (
	"testing"

	"github.com/edp1096/piline/pkg/ode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformGrid(t *testing.T) {
	grid, err := ode.UniformGrid(0, 0.5e-3, 5e-6)
	require.NoError(t, err)
	require.Len(t, grid, 100)
	assert.Equal(t, 0.0, grid[0])
	assert.InDelta(t, 495e-6, grid[99], 1e-15)

	grid, err = ode.UniformGrid(1, 2, 0.3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1.3, 1.6, 1.9}, grid, 1e-12)
}

func TestUniformGridErrors(t *testing.T) {
	for _, c := range []struct {
		name              string
		start, stop, step float64
	}{
		{"zero step", 0, 1, 0},
		{"negative step", 0, 1, -0.1},
		{"empty span", 1, 1, 0.1},
		{"reversed", 1, 0, 0.1},
	} {
		_, err := ode.UniformGrid(c.start, c.stop, c.step)
		assert.ErrorIs(t, err, ode.ErrGrid, c.name)
	}
}
