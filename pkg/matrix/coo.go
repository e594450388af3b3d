package matrix

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// COO is a coordinate-format sparse matrix. Every AddElement call is kept as a
// separate contribution; contributions sharing a coordinate are summed when the
// matrix is read, never overwritten.
type COO struct {
	rows, cols int
	m          *sparse.COO
}

func NewCOO(rows, cols int) (*COO, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, rows, cols)
	}
	return &COO{rows: rows, cols: cols, m: sparse.NewCOO(rows, cols, nil, nil, nil)}, nil
}

func (m *COO) Rows() int { return m.rows }
func (m *COO) Cols() int { return m.cols }

// Len returns the number of coordinate contributions before accumulation.
func (m *COO) Len() int { return m.m.NNZ() }

func (m *COO) AddElement(i, j int, value float64) error {
	if i < 0 || j < 0 || i >= m.rows || j >= m.cols {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, i, j, m.rows, m.cols)
	}
	m.m.Set(i, j, value)
	return nil
}

// Each calls fn for every contribution in insertion order.
func (m *COO) Each(fn func(i, j int, value float64)) {
	m.m.DoNonZero(fn)
}

// At returns the accumulated value at (i, j).
func (m *COO) At(i, j int) float64 {
	if i < 0 || j < 0 || i >= m.rows || j >= m.cols {
		return 0
	}
	return m.m.At(i, j)
}

// Shift copies every contribution of m into dst, offset by (rowOff, colOff).
func (m *COO) Shift(rowOff, colOff int, dst *COO) error {
	var err error
	m.Each(func(i, j int, v float64) {
		if err == nil {
			err = dst.AddElement(i+rowOff, j+colOff, v)
		}
	})
	return err
}

// triplets returns copies of the contributions in insertion order.
func (m *COO) triplets() (rows, cols []int, vals []float64) {
	n := m.Len()
	rows, cols, vals = make([]int, 0, n), make([]int, 0, n), make([]float64, 0, n)
	m.Each(func(i, j int, v float64) {
		rows = append(rows, i)
		cols = append(cols, j)
		vals = append(vals, v)
	})
	return rows, cols, vals
}

// Resize returns a copy of m with a larger shape; contributions keep their
// coordinates.
func (m *COO) Resize(rows, cols int) (*COO, error) {
	if rows < m.rows || cols < m.cols {
		return nil, fmt.Errorf("%w: cannot shrink %dx%d to %dx%d",
			ErrDimensionMismatch, m.rows, m.cols, rows, cols)
	}
	r, c, v := m.triplets()
	return &COO{rows: rows, cols: cols, m: sparse.NewCOO(rows, cols, r, c, v)}, nil
}

// Clone returns an independent copy.
func (m *COO) Clone() *COO {
	out, _ := m.Resize(m.rows, m.cols)
	return out
}

// ToCSR accumulates duplicates and compresses by row. Columns within a row are
// sorted. Coordinates whose contributions cancel to zero are still stored.
func (m *COO) ToCSR() *CSR {
	r, c, v := m.triplets()
	order := make([]int, len(v))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if r[ka] != r[kb] {
			return r[ka] < r[kb]
		}
		return c[ka] < c[kb]
	})

	indptr := make([]int, m.rows+1)
	ind := make([]int, 0, len(v))
	data := make([]float64, 0, len(v))

	lastRow, lastCol := -1, -1
	for _, k := range order {
		if r[k] == lastRow && c[k] == lastCol {
			data[len(data)-1] += v[k]
			continue
		}
		ind = append(ind, c[k])
		data = append(data, v[k])
		indptr[r[k]+1]++
		lastRow, lastCol = r[k], c[k]
	}
	for i := 0; i < m.rows; i++ {
		indptr[i+1] += indptr[i]
	}

	return &CSR{rows: m.rows, cols: m.cols, m: sparse.NewCSR(m.rows, m.cols, indptr, ind, data)}
}

// Dense returns the accumulated matrix as a gonum dense matrix.
func (m *COO) Dense() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	m.Each(func(i, j int, v float64) {
		d.Set(i, j, d.At(i, j)+v)
	})
	return d
}
