package ode

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/edp1096/piline/internal/consts"
	"github.com/edp1096/piline/pkg/matrix"
	"github.com/edp1096/piline/pkg/source"
)

// Integrate solves X' = A·X + B·u(t) and returns the state at every grid point.
// x0 nil means a zero initial state. The state at grid[0] is x0.
//
// Steps are implicit (Gear or trapezoidal) so the stiff RL rungs do not limit
// the step size; the local truncation error decides it.
func Integrate(sys System, u source.Source, grid []float64, x0 []float64, opts ...Option) (*Trajectory, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := sys.Validate(); err != nil {
		return nil, err
	}
	n := sys.Order()
	if x0 == nil {
		x0 = make([]float64, n)
	} else if len(x0) != n {
		return nil, &DimensionError{What: "initial state", Want: n, Got: len(x0)}
	}
	if err := ValidateGrid(grid); err != nil {
		return nil, err
	}
	if u == nil {
		u = source.Zero
	}

	s, err := newStepper(sys, u, o, grid, x0)
	if err != nil {
		return nil, err
	}
	defer s.close()

	tr := &Trajectory{
		Times:  append([]float64(nil), grid...),
		States: make([][]float64, 0, len(grid)),
	}
	tr.States = append(tr.States, append([]float64(nil), x0...))

	for k := 1; k < len(grid); k++ {
		if err := s.advance(grid[k]); err != nil {
			return nil, err
		}
		tr.States = append(tr.States, append([]float64(nil), s.x...))
	}

	tr.Stats = s.stats
	if o.Logger != nil {
		o.Logger.Debug("integration done",
			slog.String("method", o.Method.String()),
			slog.Int("points", len(grid)),
			slog.Int("steps", s.stats.Steps),
			slog.Int("rejected", s.stats.Rejected),
			slog.Int("factorizations", s.stats.Factorizations),
			slog.Float64("max_step_ratio", s.stats.MaxStepRatio))
	}
	return tr, nil
}

type stepper struct {
	sys  System
	u    source.Source
	opts Options
	sm   *matrix.SystemMatrix
	c0   float64 // coefficient of the current factorization, 0 if none

	t     float64
	h     float64 // nominal step
	hPrev float64 // step that produced x, 0 before the first step
	x, f  []float64
	xPrev []float64
	fPrev []float64

	rhs, f1 []float64
	stats   Stats
}

func newStepper(sys System, u source.Source, o Options, grid []float64, x0 []float64) (*stepper, error) {
	n := sys.Order()
	sm, err := matrix.NewSystemMatrix(n)
	if err != nil {
		return nil, fmt.Errorf("step matrix: %w", err)
	}

	s := &stepper{
		sys:   sys,
		u:     u,
		opts:  o,
		sm:    sm,
		t:     grid[0],
		x:     append([]float64(nil), x0...),
		f:     make([]float64, n),
		xPrev: make([]float64, n),
		fPrev: make([]float64, n),
		rhs:   make([]float64, n),
		f1:    make([]float64, n),
	}
	if err := sys.Derivative(s.f, s.x, u.Voltage(s.t)); err != nil {
		sm.Destroy()
		return nil, err
	}

	span := grid[len(grid)-1] - grid[0]
	s.h = span / 100
	if o.MaxStep > 0 && (s.h == 0 || s.h > o.MaxStep) {
		s.h = o.MaxStep
	}
	if s.h == 0 {
		s.h = 1
	}
	return s, nil
}

func (s *stepper) close() {
	s.sm.Destroy()
}

func (s *stepper) fail(h float64, err error) error {
	return &NumericalError{Time: s.t, Step: h, Err: err}
}

// advance integrates up to tNext, landing exactly on it.
func (s *stepper) advance(tNext float64) error {
	for s.t < tNext {
		if s.stats.Steps+s.stats.Rejected >= s.opts.MaxSteps {
			return s.fail(s.h, ErrStepBudget)
		}

		remaining := tNext - s.t
		steps := math.Ceil(remaining/s.h - 1e-9)
		hs, tLand := remaining, tNext
		if steps > 1 {
			hs = remaining / steps
			tLand = s.t + hs
		}

		errNorm, order, err := s.try(hs, tLand)
		if err != nil {
			return err
		}
		exponent := 1.0 / float64(order+1)

		if errNorm > 1 {
			s.stats.Rejected++
			factor := consts.StepSafety * math.Pow(errNorm, -exponent)
			factor = math.Max(consts.MinStepScale, math.Min(0.5, factor))
			s.h = hs * factor
			if s.opts.Logger != nil {
				s.opts.Logger.Debug("step rejected",
					slog.Float64("t", s.t),
					slog.Float64("h", hs),
					slog.Float64("error", errNorm),
					slog.Float64("next_h", s.h))
			}
			if s.h < s.opts.MinStep {
				return s.fail(s.h, ErrStepTooSmall)
			}
			continue
		}

		s.stats.Steps++
		factor := consts.MaxStepScale
		if errNorm > 0 {
			factor = math.Min(consts.MaxStepScale, consts.StepSafety*math.Pow(errNorm, -exponent))
		}
		if factor >= consts.GrowthFloor {
			s.h = hs * factor
		}
		// a step cut short by the grid must not be followed by a much longer one
		if limit := hs * consts.MaxStepScale; s.h > limit {
			s.h = limit
		}
		if s.opts.MaxStep > 0 && s.h > s.opts.MaxStep {
			s.h = s.opts.MaxStep
		}
	}
	return nil
}

// try attempts one step of size h ending at tLand. On success the stepper
// moves to tLand; it returns the weighted error norm and the order the step
// control should use.
func (s *stepper) try(h, tLand float64) (float64, int, error) {
	first := s.hPrev == 0
	order := 2
	if first {
		order = 1
	}

	var coeffs []float64
	var c0 float64
	switch {
	case s.opts.Method == TrapezoidalMethod:
		c0 = GetTrapezoidalCoeffs(h)[0]
	case first:
		coeffs = GetBDFcoeffs(1, h)
		c0 = coeffs[0]
	default:
		coeffs = GetGear2Coeffs(h, s.hPrev)
		c0 = coeffs[0]
	}

	if err := s.factor(c0, h); err != nil {
		return 0, 0, err
	}

	u1 := s.u.Voltage(tLand)
	for i := range s.rhs {
		s.rhs[i] = s.sys.B[i] * u1
		switch {
		case s.opts.Method == TrapezoidalMethod:
			s.rhs[i] += c0*s.x[i] + s.f[i]
		case first:
			s.rhs[i] -= coeffs[1] * s.x[i]
		default:
			s.rhs[i] -= coeffs[1]*s.x[i] + coeffs[2]*s.xPrev[i]
		}
	}

	x1, err := s.sm.Solve(s.rhs)
	if err != nil {
		return 0, 0, s.fail(h, err)
	}
	for _, v := range x1 {
		if !isFinite(v) {
			return 0, 0, s.fail(h, ErrNonFinite)
		}
	}
	if err := s.sys.Derivative(s.f1, x1, u1); err != nil {
		return 0, 0, s.fail(h, err)
	}

	errNorm := 0.0
	lte := lteConstant(s.opts.Method, order)
	for i := range x1 {
		var est float64
		if first {
			est = lte * h * math.Abs(s.f1[i]-s.f[i])
		} else {
			d2 := ((s.f1[i]-s.f[i])/h - (s.f[i]-s.fPrev[i])/s.hPrev) / (h + s.hPrev)
			est = lte * h * h * h * 2 * math.Abs(d2)
		}
		scale := s.opts.AbsTol + s.opts.RelTol*math.Max(math.Abs(x1[i]), math.Abs(s.x[i]))
		if r := est / scale; r > errNorm {
			errNorm = r
		}
	}
	if !isFinite(errNorm) {
		return 0, 0, s.fail(h, ErrNonFinite)
	}
	if errNorm > 1 {
		return errNorm, order, nil
	}

	if !first {
		if w := h / s.hPrev; w > s.stats.MaxStepRatio {
			s.stats.MaxStepRatio = w
		}
	}
	s.xPrev, s.x = s.x, x1
	s.fPrev, s.f, s.f1 = s.f, s.f1, s.fPrev
	s.hPrev = h
	s.t = tLand
	return errNorm, order, nil
}

// factor refactors the step matrix when c0 changed.
func (s *stepper) factor(c0, h float64) error {
	if s.c0 != 0 && math.Abs(c0-s.c0) <= 1e-12*math.Abs(s.c0) {
		return nil
	}
	if err := s.sm.Load(s.sys.A, c0); err != nil {
		return err
	}
	if err := s.sm.Factor(); err != nil {
		s.c0 = 0
		return s.fail(h, err)
	}
	s.c0 = c0
	s.stats.Factorizations++
	return nil
}
