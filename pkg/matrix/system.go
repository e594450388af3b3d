package matrix

import (
	"fmt"
	"io"
	"sort"

	"github.com/edp1096/sparse"
)

// SystemMatrix holds the implicit step matrix (c0·I - A) in the sparse LU
// package. Element handles are kept after the first load so that a reload with
// a new c0 reuses the pivot ordering found by the first factorization.
type SystemMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	config   *sparse.Configuration
	elements map[[2]int]*sparse.Element
	rhs      []float64 // 1-based
	c0       float64
	loaded   bool
}

func NewSystemMatrix(size int) (*SystemMatrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrBadShape, size)
	}

	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           false,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	return &SystemMatrix{
		Size:     size,
		matrix:   mat,
		config:   config,
		elements: make(map[[2]int]*sparse.Element),
		rhs:      make([]float64, size+1),
	}, nil
}

func (m *SystemMatrix) element(i, j int) (*sparse.Element, error) {
	if i < 0 || j < 0 || i >= m.Size || j >= m.Size {
		return nil, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, i, j, m.Size, m.Size)
	}
	key := [2]int{i, j}
	if e, ok := m.elements[key]; ok {
		return e, nil
	}
	e := m.matrix.GetElement(int64(i+1), int64(j+1))
	if e == nil {
		return nil, fmt.Errorf("%w: element (%d,%d) not allocated", ErrOutOfRange, i, j)
	}
	m.elements[key] = e
	return e, nil
}

func (m *SystemMatrix) AddElement(i, j int, value float64) error {
	e, err := m.element(i, j)
	if err != nil {
		return err
	}
	e.Real += value
	return nil
}

// Load clears the matrix and stamps c0·I - A.
func (m *SystemMatrix) Load(a *CSR, c0 float64) error {
	if a.Rows() != m.Size || a.Cols() != m.Size {
		return fmt.Errorf("%w: step matrix %d, state matrix %dx%d",
			ErrDimensionMismatch, m.Size, a.Rows(), a.Cols())
	}

	m.matrix.Clear()
	for i := 0; i < m.Size; i++ {
		if err := m.AddElement(i, i, c0); err != nil {
			return err
		}
		var stampErr error
		a.Row(i, func(j int, value float64) {
			if stampErr == nil {
				stampErr = m.AddElement(i, j, -value)
			}
		})
		if stampErr != nil {
			return stampErr
		}
	}

	m.c0 = c0
	m.loaded = true
	return nil
}

func (m *SystemMatrix) C0() float64 { return m.c0 }

func (m *SystemMatrix) Factor() error {
	if !m.loaded {
		return fmt.Errorf("matrix factorization failed: nothing loaded")
	}
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return nil
}

// Solve solves the factored system for a 0-based right-hand side.
func (m *SystemMatrix) Solve(rhs []float64) ([]float64, error) {
	if len(rhs) != m.Size {
		return nil, fmt.Errorf("%w: rhs %d, matrix %d", ErrDimensionMismatch, len(rhs), m.Size)
	}
	m.rhs[0] = 0
	copy(m.rhs[1:], rhs)

	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %w", err)
	}

	out := make([]float64, m.Size)
	copy(out, solution[1:m.Size+1])
	return out, nil
}

// Print writes the loaded equations, one row per line. Call it before Factor;
// afterwards the elements hold LU factors.
func (m *SystemMatrix) Print(w io.Writer) {
	fmt.Fprintf(w, "\nStep Equations (%dx%d), c0 = %g:\n", m.Size, m.Size, m.c0)

	keys := make([][2]int, 0, len(m.elements))
	for k := range m.elements {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a][0] != keys[b][0] {
			return keys[a][0] < keys[b][0]
		}
		return keys[a][1] < keys[b][1]
	})

	row := -1
	for _, k := range keys {
		value := m.elements[k].Real
		if value == 0 {
			continue
		}
		if k[0] != row {
			if row >= 0 {
				fmt.Fprintln(w)
			}
			row = k[0]
			fmt.Fprintf(w, "Equation %d:", row+1)
		}
		fmt.Fprintf(w, "  %+g*x%d", value, k[1]+1)
	}
	if row >= 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Elements: %d, fill-ins: %d\n", m.matrix.Elements, m.matrix.Fillins)
}

func (m *SystemMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
	m.elements = nil
	m.loaded = false
}
