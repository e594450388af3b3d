package analysis

import (
	"fmt"

	"github.com/edp1096/piline/pkg/line"
	"github.com/edp1096/piline/pkg/ode"
)

type Analysis interface {
	Setup(m *line.Model) error
	Execute() error
	GetResults() map[string][]float64
}

var (
	_ Analysis = (*OperatingPoint)(nil)
	_ Analysis = (*Transient)(nil)
)

type BaseAnalysis struct {
	Model   *line.Model
	system  ode.System
	results map[string][]float64 // key: state label, value: result by time
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

// setup assembles the state space of m once for the analysis.
func (a *BaseAnalysis) setup(m *line.Model) error {
	if m == nil {
		return fmt.Errorf("line model not set")
	}
	ss, err := m.StateSpace()
	if err != nil {
		return err
	}
	sys, err := ss.System()
	if err != nil {
		return err
	}
	a.Model = m
	a.system = sys
	return nil
}

// StoreTimeResult appends one state vector under "TIME" and the labels.
func (a *BaseAnalysis) StoreTimeResult(time float64, labels []string, state []float64) {
	// Ignore same time
	if times := a.results["TIME"]; len(times) > 0 && times[len(times)-1] == time {
		return
	}

	a.results["TIME"] = append(a.results["TIME"], time)
	for i, name := range labels {
		a.results[name] = append(a.results[name], state[i])
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
