package ode

import (
	"fmt"
	"math"
)

// UniformGrid returns start, start+step, ... up to but excluding stop.
func UniformGrid(start, stop, step float64) ([]float64, error) {
	if !isFinite(start) || !isFinite(stop) || !isFinite(step) {
		return nil, fmt.Errorf("%w: non-finite bounds", ErrGrid)
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %g", ErrGrid, step)
	}
	if stop <= start {
		return nil, fmt.Errorf("%w: stop %g must exceed start %g", ErrGrid, stop, start)
	}

	n := int(math.Ceil((stop-start)/step - 1e-9))
	if n < 1 {
		n = 1
	}
	grid := make([]float64, n)
	for k := range grid {
		grid[k] = start + float64(k)*step
	}
	return grid, nil
}

// ValidateGrid checks that grid is non-empty, finite and non-decreasing.
func ValidateGrid(grid []float64) error {
	if len(grid) == 0 {
		return fmt.Errorf("%w: empty", ErrGrid)
	}
	for i, t := range grid {
		if !isFinite(t) {
			return fmt.Errorf("%w: point %d is %g", ErrGrid, i, t)
		}
		if i > 0 && t < grid[i-1] {
			return fmt.Errorf("%w: point %d (%g) before point %d (%g)", ErrGrid, i, t, i-1, grid[i-1])
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
