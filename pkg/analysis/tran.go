package analysis

import (
	"fmt"

	"github.com/edp1096/piline/pkg/line"
	"github.com/edp1096/piline/pkg/ode"
	"github.com/edp1096/piline/pkg/source"
)

// Transient integrates the line over a time grid. Without UIC the initial
// state is the operating point at the source value of the first grid point;
// with UIC the line starts de-energized.
type Transient struct {
	BaseAnalysis
	op     *OperatingPoint
	src    source.Source
	grid   []float64
	useUIC bool
	opts   []ode.Option

	x0         []float64
	trajectory *ode.Trajectory
}

func NewTransient(src source.Source, grid []float64, uic bool, opts ...ode.Option) *Transient {
	if src == nil {
		src = source.Zero
	}
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
		src:          src,
		grid:         append([]float64(nil), grid...),
		useUIC:       uic,
		opts:         opts,
	}
}

func (tr *Transient) Setup(m *line.Model) error {
	if err := ode.ValidateGrid(tr.grid); err != nil {
		return err
	}
	if err := tr.setup(m); err != nil {
		return err
	}

	tr.x0 = nil
	if !tr.useUIC {
		tr.op = NewOP(tr.src.Voltage(tr.grid[0]))
		if err := tr.op.Setup(m); err != nil {
			return fmt.Errorf("operating point setup error: %v", err)
		}
		if err := tr.op.Execute(); err != nil {
			return fmt.Errorf("operating point analysis error: %w", err)
		}
		tr.x0 = tr.op.Solution()
	}
	return nil
}

func (tr *Transient) Execute() error {
	if tr.Model == nil {
		return fmt.Errorf("line model not set")
	}

	traj, err := ode.Integrate(tr.system, tr.src, tr.grid, tr.x0, tr.opts...)
	if err != nil {
		return fmt.Errorf("simulating %d sections: %w", tr.Model.Sections(), err)
	}
	traj.Labels = tr.Model.StateLabels()
	tr.trajectory = traj

	for k, t := range traj.Times {
		tr.StoreTimeResult(t, traj.Labels, traj.States[k])
	}
	return nil
}

// Trajectory is the result of the last Execute, nil before.
func (tr *Transient) Trajectory() *ode.Trajectory {
	return tr.trajectory
}

// InitialState is the state at the first grid point, nil for UIC.
func (tr *Transient) InitialState() []float64 {
	return append([]float64(nil), tr.x0...)
}
