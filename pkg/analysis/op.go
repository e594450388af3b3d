package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/piline/pkg/line"
	"github.com/edp1096/piline/pkg/matrix"
)

// OperatingPoint finds the DC steady state of the line under a constant
// sending-end voltage: 0 = A·X + B·u.
type OperatingPoint struct {
	BaseAnalysis
	input    float64
	solution []float64
}

func NewOP(input float64) *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
		input:        input,
	}
}

func (op *OperatingPoint) Setup(m *line.Model) error {
	return op.setup(m)
}

func (op *OperatingPoint) Execute() error {
	if op.Model == nil {
		return fmt.Errorf("line model not set")
	}
	n := op.system.Order()

	mat, err := matrix.NewSystemMatrix(n)
	if err != nil {
		return err
	}
	defer mat.Destroy()

	// c0 = 0 loads -A, so the right-hand side is B·u.
	if err := mat.Load(op.system.A, 0); err != nil {
		return fmt.Errorf("stamping error: %v", err)
	}
	if err := mat.Factor(); err != nil {
		return fmt.Errorf("operating point: %w", err)
	}

	rhs := make([]float64, n)
	for i, b := range op.system.B {
		rhs[i] = b * op.input
	}
	solution, err := mat.Solve(rhs)
	if err != nil {
		return fmt.Errorf("matrix solve error: %w", err)
	}
	for i, v := range solution {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("operating point: %s is not finite", op.Model.StateLabels()[i])
		}
	}

	op.solution = solution
	op.storeResults()
	return nil
}

// Solution returns a copy of the steady state vector.
func (op *OperatingPoint) Solution() []float64 {
	return append([]float64(nil), op.solution...)
}

func (op *OperatingPoint) Input() float64 { return op.input }

func (op *OperatingPoint) storeResults() {
	for i, name := range op.Model.StateLabels() {
		op.results[name] = []float64{op.solution[i]}
	}
}
