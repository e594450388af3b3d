package ode

import (
	"fmt"
	"math"
)

type Stats struct {
	Steps          int // accepted steps
	Rejected       int
	Factorizations int
	MaxStepRatio   float64 // largest h[n]/h[n-1] over accepted steps
}

// Trajectory holds one state vector per requested time point.
type Trajectory struct {
	Times  []float64
	States [][]float64
	Labels []string // optional state names, len == order when set
	Stats  Stats
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Order is the state dimension.
func (tr *Trajectory) Order() int {
	if len(tr.States) == 0 {
		return 0
	}
	return len(tr.States[0])
}

// Final returns the last state vector.
func (tr *Trajectory) Final() []float64 {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// Column returns the time series of state i.
func (tr *Trajectory) Column(i int) ([]float64, error) {
	if i < 0 || i >= tr.Order() {
		return nil, fmt.Errorf("state index %d out of range 0..%d", i, tr.Order()-1)
	}
	col := make([]float64, len(tr.States))
	for k, x := range tr.States {
		col[k] = x[i]
	}
	return col, nil
}

// Index looks up a state by label.
func (tr *Trajectory) Index(label string) (int, bool) {
	for i, l := range tr.Labels {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

// Label names state i, falling back to X(i+1).
func (tr *Trajectory) Label(i int) string {
	if i >= 0 && i < len(tr.Labels) {
		return tr.Labels[i]
	}
	return fmt.Sprintf("X(%d)", i+1)
}

// Results returns the trajectory keyed by "TIME" and state labels.
func (tr *Trajectory) Results() map[string][]float64 {
	results := make(map[string][]float64, tr.Order()+1)
	results["TIME"] = append([]float64(nil), tr.Times...)
	for i := 0; i < tr.Order(); i++ {
		col, _ := tr.Column(i)
		results[tr.Label(i)] = col
	}
	return results
}

// Sample emulates a digital meter reading the trajectory at rateHz. The time
// step is taken from the first two points and the grid is assumed uniform; the
// first point is kept and then every round(1/(dt·rateHz))-th point.
func (tr *Trajectory) Sample(rateHz float64) (*Trajectory, error) {
	if rateHz <= 0 || !isFinite(rateHz) {
		return nil, fmt.Errorf("sample rate must be positive, got %g", rateHz)
	}
	out := &Trajectory{Labels: tr.Labels, Stats: tr.Stats}
	if tr.Len() < 2 {
		out.Times = append(out.Times, tr.Times...)
		out.States = append(out.States, tr.States...)
		return out, nil
	}

	dt := tr.Times[1] - tr.Times[0]
	if dt <= 0 {
		return nil, fmt.Errorf("cannot sample a trajectory with time step %g", dt)
	}
	interval := int(math.Round(1 / dt / rateHz))
	if interval < 1 {
		return nil, fmt.Errorf("sample rate %g Hz exceeds data rate %g Hz", rateHz, 1/dt)
	}

	for k := 0; k < tr.Len(); k += interval {
		out.Times = append(out.Times, tr.Times[k])
		out.States = append(out.States, tr.States[k])
	}
	return out, nil
}

// From drops the points before t0, like the tstart field of a transient
// analysis.
func (tr *Trajectory) From(t0 float64) *Trajectory {
	out := &Trajectory{Labels: tr.Labels, Stats: tr.Stats}
	for k, t := range tr.Times {
		if t >= t0 {
			out.Times = append(out.Times, t)
			out.States = append(out.States, tr.States[k])
		}
	}
	return out
}
