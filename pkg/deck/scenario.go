package deck

import (
	"fmt"
	"log/slog"

	"github.com/edp1096/piline/pkg/analysis"
	"github.com/edp1096/piline/pkg/line"
	"github.com/edp1096/piline/pkg/ode"
	"github.com/edp1096/piline/pkg/source"
)

// Scenario is one simulation run read from a deck or a YAML file.
type Scenario struct {
	Title       string
	Line        line.LineSpec
	Formulation line.Formulation
	Source      SourceSpec
	Tran        TranParam
	Method      ode.Method
	AbsTol      float64 // 0: integrator default
	RelTol      float64 // 0: integrator default
	Probes      []string
	SampleRate  float64 // Hz, 0: no meter emulation
}

type TranParam struct {
	TStep  float64 // output spacing
	TStop  float64 // end time, excluded
	TStart float64 // output starts here
	TMax   float64 // max internal step, 0: grid spacing
	FromOP bool    // start from the operating point instead of rest
}

// SourceSpec describes the sending-end voltage.
type SourceSpec struct {
	Type      source.SourceType
	Value     float64 // DC and STEP level
	Delay     float64 // STEP delay
	Sin       source.Sin
	Pulse     source.Pulse
	PWLTimes  []float64
	PWLValues []float64
}

func (s SourceSpec) Build() (source.Source, error) {
	switch s.Type {
	case source.DC:
		return source.Constant{Value: s.Value}, nil
	case source.STEP:
		return source.Step{Value: s.Value, Delay: s.Delay}, nil
	case source.SIN:
		return s.Sin, nil
	case source.PULSE:
		return s.Pulse, nil
	case source.PWL:
		return source.NewPWL(s.PWLTimes, s.PWLValues)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", s.Type)
	}
}

// Validate checks the line spec and the transient parameters. Line errors are
// *line.ValidationError.
func (sc *Scenario) Validate() error {
	if err := sc.Line.Validate(); err != nil {
		return err
	}
	if sc.Tran.TStep <= 0 || sc.Tran.TStop <= 0 {
		return fmt.Errorf("missing or invalid .tran: tstep=%g tstop=%g", sc.Tran.TStep, sc.Tran.TStop)
	}
	if sc.Tran.TStart < 0 || sc.Tran.TStart >= sc.Tran.TStop {
		return fmt.Errorf("tstart %g outside [0, %g)", sc.Tran.TStart, sc.Tran.TStop)
	}
	grid, err := sc.Grid()
	if err != nil {
		return err
	}
	if last := grid[len(grid)-1]; sc.Tran.TStart > last {
		return fmt.Errorf("tstart %g after the last output time %g", sc.Tran.TStart, last)
	}
	if sc.Tran.TMax < 0 {
		return fmt.Errorf("negative tmax %g", sc.Tran.TMax)
	}
	if sc.SampleRate < 0 {
		return fmt.Errorf("negative sample rate %g", sc.SampleRate)
	}
	if _, err := sc.Source.Build(); err != nil {
		return err
	}
	return nil
}

func (sc *Scenario) Model() (*line.Model, error) {
	return line.NewModel(sc.Line, line.WithFormulation(sc.Formulation))
}

// Grid is the output time grid, from 0 up to but excluding TStop.
func (sc *Scenario) Grid() ([]float64, error) {
	return ode.UniformGrid(0, sc.Tran.TStop, sc.Tran.TStep)
}

func (sc *Scenario) Options(logger *slog.Logger) []ode.Option {
	opts := []ode.Option{
		ode.WithMethod(sc.Method),
		ode.WithTolerances(sc.AbsTol, sc.RelTol),
	}
	if sc.Tran.TMax > 0 {
		opts = append(opts, ode.WithMaxStep(sc.Tran.TMax))
	}
	if logger != nil {
		opts = append(opts, ode.WithLogger(logger))
	}
	return opts
}

// Run builds the model and integrates it, keeping the points from TStart on
// and applying the meter sample rate when set.
func (sc *Scenario) Run(logger *slog.Logger) (*line.Model, *ode.Trajectory, error) {
	m, err := sc.Model()
	if err != nil {
		return nil, nil, err
	}
	src, err := sc.Source.Build()
	if err != nil {
		return nil, nil, err
	}
	grid, err := sc.Grid()
	if err != nil {
		return nil, nil, err
	}

	tran := analysis.NewTransient(src, grid, !sc.Tran.FromOP, sc.Options(logger)...)
	if err := tran.Setup(m); err != nil {
		return nil, nil, err
	}
	if err := tran.Execute(); err != nil {
		return nil, nil, err
	}
	tr := tran.Trajectory()
	if sc.SampleRate > 0 {
		if tr, err = tr.Sample(sc.SampleRate); err != nil {
			return nil, nil, err
		}
	}
	return m, tr.From(sc.Tran.TStart), nil
}

// OperatingPoint solves the DC steady state for the source value at TStop.
func (sc *Scenario) OperatingPoint() (*line.Model, *analysis.OperatingPoint, error) {
	m, err := sc.Model()
	if err != nil {
		return nil, nil, err
	}
	src, err := sc.Source.Build()
	if err != nil {
		return nil, nil, err
	}

	op := analysis.NewOP(src.Voltage(sc.Tran.TStop))
	if err := op.Setup(m); err != nil {
		return nil, nil, err
	}
	if err := op.Execute(); err != nil {
		return nil, nil, err
	}
	return m, op, nil
}
