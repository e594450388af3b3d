package line

import "fmt"

// SectionParams are the lumped parameters of one pi section.
type SectionParams struct {
	Length      float64
	Conductance float64
	Capacitance float64
	Resistance  []float64
	Inductance  []float64
}

func (p SectionParams) clone() SectionParams {
	p.Resistance = append([]float64(nil), p.Resistance...)
	p.Inductance = append([]float64(nil), p.Inductance...)
	return p
}

// Model is a line with a source at the sending end and the receiving end open.
// It is immutable once built.
type Model struct {
	spec    LineSpec
	section SectionParams
	order   int
	form    Formulation
}

// NewModel validates spec and derives the per-section lumped parameters.
func NewModel(spec LineSpec, opts ...Option) (*Model, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	spec.Resistance = append([]float64(nil), spec.Resistance...)
	spec.Inductance = append([]float64(nil), spec.Inductance...)

	length := spec.Length / float64(spec.Sections)
	section := SectionParams{
		Length:      length,
		Conductance: spec.Conductance * length,
		Capacitance: spec.Capacitance * length,
		Resistance:  make([]float64, spec.Rungs()),
		Inductance:  make([]float64, spec.Rungs()),
	}
	for i := range spec.Resistance {
		section.Resistance[i] = spec.Resistance[i] * length
		section.Inductance[i] = spec.Inductance[i] * length
	}

	m := &Model{
		spec:    spec,
		section: section,
		order:   (spec.Rungs() + 1) * spec.Sections,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.form != Literal && m.form != Nodal {
		return nil, invalid("formulation", "unknown formulation %d", int(m.form))
	}
	return m, nil
}

func (m *Model) Spec() LineSpec {
	s := m.spec
	s.Resistance = append([]float64(nil), s.Resistance...)
	s.Inductance = append([]float64(nil), s.Inductance...)
	return s
}

func (m *Model) Formulation() Formulation { return m.form }

// Order is the dimension of the full state vector, (M+1)·N.
func (m *Model) Order() int { return m.order }

// BlockSize is the number of states per section, M+1.
func (m *Model) BlockSize() int { return m.spec.Rungs() + 1 }

func (m *Model) Sections() int { return m.spec.Sections }
func (m *Model) Rungs() int    { return m.spec.Rungs() }

func (m *Model) Section() SectionParams { return m.section.clone() }

// Totals sums the lumped parameters over all sections. The result does not
// depend on the section count.
func (m *Model) Totals() SectionParams {
	n := float64(m.spec.Sections)
	t := SectionParams{
		Length:      m.section.Length * n,
		Conductance: m.section.Conductance * n,
		Capacitance: m.section.Capacitance * n,
		Resistance:  make([]float64, len(m.section.Resistance)),
		Inductance:  make([]float64, len(m.section.Inductance)),
	}
	for i := range m.section.Resistance {
		t.Resistance[i] = m.section.Resistance[i] * n
		t.Inductance[i] = m.section.Inductance[i] * n
	}
	return t
}

// StateLabels names each state: I(k) is the main branch current of section k,
// I(k,r) the current of rung r and V(k) the shunt voltage. k and r are 1-based.
func (m *Model) StateLabels() []string {
	labels := make([]string, 0, m.order)
	for k := 1; k <= m.spec.Sections; k++ {
		labels = append(labels, fmt.Sprintf("I(%d)", k))
		for r := 1; r < m.spec.Rungs(); r++ {
			labels = append(labels, fmt.Sprintf("I(%d,%d)", k, r))
		}
		labels = append(labels, fmt.Sprintf("V(%d)", k))
	}
	return labels
}

// EndVoltageIndex is the state index of the receiving-end voltage.
func (m *Model) EndVoltageIndex() int { return m.order - 1 }

// VoltageIndex returns the state index of V(k), k in 1..N.
func (m *Model) VoltageIndex(k int) (int, error) {
	if k < 1 || k > m.spec.Sections {
		return 0, fmt.Errorf("section %d out of range 1..%d", k, m.spec.Sections)
	}
	return k*m.BlockSize() - 1, nil
}

// CurrentIndex returns the state index of I(k), k in 1..N.
func (m *Model) CurrentIndex(k int) (int, error) {
	if k < 1 || k > m.spec.Sections {
		return 0, fmt.Errorf("section %d out of range 1..%d", k, m.spec.Sections)
	}
	return (k - 1) * m.BlockSize(), nil
}
