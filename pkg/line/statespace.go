package line

import (
	"fmt"

	"github.com/edp1096/piline/pkg/matrix"
	"github.com/edp1096/piline/pkg/ode"
)

// StateSpace is the pair (A, B) of X' = A·X + B·u in coordinate form.
type StateSpace struct {
	A *matrix.COO // order x order
	B *matrix.COO // order x 1
}

func (s *StateSpace) Order() int { return s.A.Rows() }

// System compresses A and densifies B for the integrator.
func (s *StateSpace) System() (ode.System, error) {
	if s.B.Rows() != s.A.Rows() || s.B.Cols() != 1 {
		return ode.System{}, &ode.DimensionError{
			What: "input vector", Want: s.A.Rows(), Got: s.B.Rows(),
		}
	}
	b := make([]float64, s.B.Rows())
	s.B.Each(func(i, _ int, value float64) {
		b[i] += value
	})
	return ode.System{A: s.A.ToCSR(), B: b}, nil
}

// BuildSectionMatrices assembles the local state equations of one pi section.
// The block size is M+1: state 0 is the main branch current, states 1..M-1 the
// rung currents and state M the shunt voltage.
//
// Contributions are added in the order diagonal, first column, first row.
func BuildSectionMatrices(p SectionParams) (a, b *matrix.COO, err error) {
	rungs := len(p.Resistance)
	if rungs == 0 || len(p.Inductance) != rungs {
		return nil, nil, invalid("rungs", "resistance has %d elements, inductance has %d",
			len(p.Resistance), len(p.Inductance))
	}
	m := rungs + 1
	last := m - 1
	r, l := p.Resistance, p.Inductance

	a, err = matrix.NewCOO(m, m)
	if err != nil {
		return nil, nil, err
	}
	b, err = matrix.NewCOO(m, 1)
	if err != nil {
		return nil, nil, err
	}

	sumR := 0.0
	for _, v := range r {
		sumR += v
	}

	var stampErr error
	add := func(i, j int, v float64) {
		if stampErr == nil {
			stampErr = a.AddElement(i, j, v)
		}
	}

	// diagonal
	add(0, 0, -sumR/l[0])
	for i := 1; i < rungs; i++ {
		add(i, i, -r[i]/l[i])
	}
	add(last, last, -p.Capacitance/p.Conductance)

	// first column
	for i := 1; i < rungs; i++ {
		add(i, 0, r[i]/l[i])
	}
	add(last, 0, 2/p.Capacitance)

	// first row
	for i := 1; i < rungs; i++ {
		add(0, i, r[i]/l[0])
	}
	lo := -1 / l[0]
	add(0, last, lo)

	if stampErr != nil {
		return nil, nil, stampErr
	}

	// The source enters through the main branch: -(-1/L0).
	if err := b.AddElement(0, 0, -lo); err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

// TileBlockTridiagonal places ad on the block diagonal n times, as on the block
// super-diagonal and ai on the block sub-diagonal. For n == 1 ad is returned
// unchanged. Overlapping contributions are summed.
func TileBlockTridiagonal(ad, as, ai *matrix.COO, n int) (*matrix.COO, error) {
	if n <= 0 {
		return nil, invalid("sections", "block count must be positive, got %d", n)
	}
	if n == 1 {
		return ad, nil
	}

	m := ad.Rows()
	for _, blk := range []*matrix.COO{ad, as, ai} {
		if blk.Rows() != m || blk.Cols() != m {
			return nil, fmt.Errorf("%w: block %dx%d, want %dx%d",
				matrix.ErrDimensionMismatch, blk.Rows(), blk.Cols(), m, m)
		}
	}

	out, err := matrix.NewCOO(n*m, n*m)
	if err != nil {
		return nil, err
	}

	for k := 0; k < n; k++ {
		if err := ad.Shift(k*m, k*m, out); err != nil {
			return nil, err
		}
	}
	for k := 1; k < n; k++ {
		if err := as.Shift((k-1)*m, k*m, out); err != nil {
			return nil, err
		}
	}
	for k := 1; k < n; k++ {
		if err := ai.Shift(k*m, (k-1)*m, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// CouplingBlocks returns the blocks linking neighbouring sections: the upper
// block feeds the next section's main current out of this section's shunt
// voltage, the lower block drives a section's main current from the previous
// section's voltage.
func CouplingBlocks(p SectionParams) (upper, lower *matrix.COO, err error) {
	m := len(p.Resistance) + 1
	upper, err = matrix.NewCOO(m, m)
	if err != nil {
		return nil, nil, err
	}
	lower, err = matrix.NewCOO(m, m)
	if err != nil {
		return nil, nil, err
	}
	if err := upper.AddElement(m-1, 0, -1/p.Capacitance); err != nil {
		return nil, nil, err
	}
	if err := lower.AddElement(0, m-1, 1/p.Inductance[0]); err != nil {
		return nil, nil, err
	}
	return upper, lower, nil
}

// StateSpace assembles (A, B) for the whole line. Only the first section sees
// the source directly. With the Nodal formulation the shunt corrections are
// accumulated on the tiled matrix.
func (m *Model) StateSpace() (*StateSpace, error) {
	a1, b1, err := BuildSectionMatrices(m.section)
	if err != nil {
		return nil, fmt.Errorf("section matrices: %w", err)
	}

	upper, lower, err := CouplingBlocks(m.section)
	if err != nil {
		return nil, fmt.Errorf("coupling blocks: %w", err)
	}

	a, err := TileBlockTridiagonal(a1, upper, lower, m.spec.Sections)
	if err != nil {
		return nil, fmt.Errorf("tiling: %w", err)
	}
	if m.form == Nodal {
		// a1 is returned as is for a single section; keep it untouched.
		if a == a1 {
			a = a1.Clone()
		}
		if err := applyNodal(a, m.section, m.spec.Sections); err != nil {
			return nil, fmt.Errorf("nodal corrections: %w", err)
		}
	}

	b, err := b1.Resize(a.Rows(), 1)
	if err != nil {
		return nil, fmt.Errorf("input vector: %w", err)
	}

	return &StateSpace{A: a, B: b}, nil
}
