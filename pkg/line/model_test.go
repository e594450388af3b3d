package line_test

import (
	"testing"

	"github.com/edp1096/piline/pkg/line"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceSpec(sections int) line.LineSpec {
	return line.LineSpec{
		Conductance: 0.556e-6,
		Capacitance: 11.11e-9,
		Resistance:  []float64{0.026, 1.470, 2.354, 20.149, 111.111},
		Inductance:  []float64{2.209e-3, 0.740e-3, 0.120e-3, 0.100e-3, 0.050e-3},
		Sections:    sections,
		Length:      10,
	}
}

func TestNewModelValidation(t *testing.T) {
	cases := []struct {
		name  string
		field string
		edit  func(*line.LineSpec)
	}{
		{"zero sections", "sections", func(s *line.LineSpec) { s.Sections = 0 }},
		{"negative sections", "sections", func(s *line.LineSpec) { s.Sections = -3 }},
		{"mismatched rungs", "rungs", func(s *line.LineSpec) { s.Inductance = s.Inductance[:4] }},
		{"no rungs", "rungs", func(s *line.LineSpec) { s.Resistance, s.Inductance = nil, nil }},
		{"zero length", "length", func(s *line.LineSpec) { s.Length = 0 }},
		{"zero conductance", "conductance", func(s *line.LineSpec) { s.Conductance = 0 }},
		{"zero capacitance", "capacitance", func(s *line.LineSpec) { s.Capacitance = 0 }},
		{"zero inductance", "inductance", func(s *line.LineSpec) { s.Inductance = []float64{1, 0, 1, 1, 1} }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec := referenceSpec(30)
			c.edit(&spec)

			m, err := line.NewModel(spec)
			assert.Nil(t, m)
			require.ErrorIs(t, err, line.ErrValidation)

			var vErr *line.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, c.field, vErr.Field)
		})
	}
}

func TestSectionsFromFloat(t *testing.T) {
	n, err := line.SectionsFromFloat(30)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	for _, v := range []float64{2.5, 0, -1} {
		_, err := line.SectionsFromFloat(v)
		assert.ErrorIs(t, err, line.ErrValidation, "%g", v)
	}
}

func TestModelDimensions(t *testing.T) {
	for _, n := range []int{1, 2, 7, 30} {
		m, err := line.NewModel(referenceSpec(n))
		require.NoError(t, err)

		assert.Equal(t, 6*n, m.Order())
		assert.Equal(t, 6, m.BlockSize())
		assert.Equal(t, n, m.Sections())
		assert.Equal(t, 5, m.Rungs())
		assert.Len(t, m.StateLabels(), m.Order())
		assert.Equal(t, m.Order()-1, m.EndVoltageIndex())
	}
}

func TestModelLumpedParameters(t *testing.T) {
	m, err := line.NewModel(referenceSpec(10))
	require.NoError(t, err)

	p := m.Section()
	assert.InDelta(t, 1.0, p.Length, 1e-15)
	assert.InDelta(t, 0.556e-6, p.Conductance, 1e-18)
	assert.InDelta(t, 11.11e-9, p.Capacitance, 1e-20)
	assert.InDeltaSlice(t, []float64{0.026, 1.470, 2.354, 20.149, 111.111}, p.Resistance, 1e-12)
}

func TestModelTotalsIndependentOfSections(t *testing.T) {
	base, err := line.NewModel(referenceSpec(15))
	require.NoError(t, err)
	want := base.Totals()

	for _, n := range []int{1, 30, 60, 97} {
		m, err := line.NewModel(referenceSpec(n))
		require.NoError(t, err)
		got := m.Totals()

		assert.InDelta(t, want.Length, got.Length, 1e-12, "N=%d", n)
		assert.InEpsilon(t, want.Conductance, got.Conductance, 1e-12, "N=%d", n)
		assert.InEpsilon(t, want.Capacitance, got.Capacitance, 1e-12, "N=%d", n)
		for i := range want.Resistance {
			assert.InEpsilon(t, want.Resistance[i], got.Resistance[i], 1e-12, "N=%d rung %d", n, i)
			assert.InEpsilon(t, want.Inductance[i], got.Inductance[i], 1e-12, "N=%d rung %d", n, i)
		}
	}
}

func TestModelCopiesInput(t *testing.T) {
	spec := referenceSpec(3)
	m, err := line.NewModel(spec)
	require.NoError(t, err)

	spec.Resistance[0] = 99
	assert.InDelta(t, 0.026, m.Spec().Resistance[0], 1e-15)

	s := m.Section()
	s.Inductance[0] = 42
	assert.NotEqual(t, 42.0, m.Section().Inductance[0])
}

func TestStateLabelsAndIndices(t *testing.T) {
	spec := referenceSpec(2)
	spec.Resistance = spec.Resistance[:3]
	spec.Inductance = spec.Inductance[:3]
	m, err := line.NewModel(spec)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"I(1)", "I(1,1)", "I(1,2)", "V(1)",
		"I(2)", "I(2,1)", "I(2,2)", "V(2)",
	}, m.StateLabels())

	v, err := m.VoltageIndex(2)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	i, err := m.CurrentIndex(2)
	require.NoError(t, err)
	assert.Equal(t, 4, i)

	_, err = m.VoltageIndex(3)
	assert.Error(t, err)
}

func TestFormulationOption(t *testing.T) {
	m, err := line.NewModel(referenceSpec(3))
	require.NoError(t, err)
	assert.Equal(t, line.Literal, m.Formulation())

	m, err = line.NewModel(referenceSpec(3), line.WithFormulation(line.Nodal))
	require.NoError(t, err)
	assert.Equal(t, line.Nodal, m.Formulation())

	_, err = line.NewModel(referenceSpec(3), line.WithFormulation(line.Formulation(7)))
	assert.ErrorIs(t, err, line.ErrValidation)

	f, err := line.ParseFormulation("Nodal")
	require.NoError(t, err)
	assert.Equal(t, line.Nodal, f)
	assert.Equal(t, "nodal", f.String())

	_, err = line.ParseFormulation("lumped")
	assert.ErrorIs(t, err, line.ErrValidation)
}
