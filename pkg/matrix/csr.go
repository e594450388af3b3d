package matrix

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// CSR is a compressed sparse row matrix built from a COO once assembly is done.
type CSR struct {
	rows, cols int
	m          *sparse.CSR
}

func (m *CSR) Rows() int { return m.rows }
func (m *CSR) Cols() int { return m.cols }
func (m *CSR) NNZ() int  { return m.m.NNZ() }

func (m *CSR) At(i, j int) float64 {
	if i < 0 || j < 0 || i >= m.rows || j >= m.cols {
		return 0
	}
	return m.m.At(i, j)
}

// Row calls fn for each stored entry of row i.
func (m *CSR) Row(i int, fn func(j int, value float64)) {
	m.m.DoRowNonZero(i, func(_, j int, v float64) {
		fn(j, v)
	})
}

func (m *CSR) checkMulVec(dst, x []float64) error {
	if len(x) != m.cols || len(dst) != m.rows {
		return fmt.Errorf("%w: %dx%d times %d into %d",
			ErrDimensionMismatch, m.rows, m.cols, len(x), len(dst))
	}
	return nil
}

// MulVec sets dst = A·x.
func (m *CSR) MulVec(dst, x []float64) error {
	if err := m.checkMulVec(dst, x); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = 0
	}
	m.m.MulVecTo(dst, false, x)
	return nil
}

// MulVecAdd sets dst += alpha·A·x.
func (m *CSR) MulVecAdd(dst, x []float64, alpha float64) error {
	if err := m.checkMulVec(dst, x); err != nil {
		return err
	}
	ax := make([]float64, m.rows)
	m.m.MulVecTo(ax, false, x)
	for i, v := range ax {
		dst[i] += alpha * v
	}
	return nil
}
