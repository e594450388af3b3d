package line

import (
	"fmt"

	"github.com/edp1096/piline/pkg/ode"
	"github.com/edp1096/piline/pkg/source"
)

// Simulate integrates the line driven by src at the sending end with the
// receiving end open. The trajectory is labelled with StateLabels.
func Simulate(m *Model, src source.Source, grid []float64, x0 []float64, opts ...ode.Option) (*ode.Trajectory, error) {
	ss, err := m.StateSpace()
	if err != nil {
		return nil, err
	}
	sys, err := ss.System()
	if err != nil {
		return nil, err
	}

	tr, err := ode.Integrate(sys, src, grid, x0, opts...)
	if err != nil {
		return nil, fmt.Errorf("simulating %d sections: %w", m.Sections(), err)
	}
	tr.Labels = m.StateLabels()
	return tr, nil
}
