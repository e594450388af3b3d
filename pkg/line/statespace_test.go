package line_test

import (
	"testing"

	"github.com/edp1096/piline/pkg/line"
	"github.com/edp1096/piline/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallSection() line.SectionParams {
	return line.SectionParams{
		Length:      1,
		Conductance: 2,
		Capacitance: 4,
		Resistance:  []float64{1, 2, 3},
		Inductance:  []float64{0.5, 0.25, 0.125},
	}
}

func TestBuildSectionMatrices(t *testing.T) {
	a, b, err := line.BuildSectionMatrices(smallSection())
	require.NoError(t, err)

	require.Equal(t, 4, a.Rows())
	require.Equal(t, 4, a.Cols())
	assert.Equal(t, 10, a.Len())

	want := [][]float64{
		{-12, 4, 6, -2},
		{8, -8, 0, 0},
		{24, 0, -24, 0},
		{0.5, 0, 0, -2},
	}
	for i := range want {
		for j := range want[i] {
			assert.InDelta(t, want[i][j], a.At(i, j), 1e-12, "A[%d][%d]", i, j)
		}
	}

	require.Equal(t, 4, b.Rows())
	require.Equal(t, 1, b.Cols())
	assert.Equal(t, 1, b.Len())
	assert.InDelta(t, 2.0, b.At(0, 0), 1e-12)
}

func TestBuildSectionMatricesOrder(t *testing.T) {
	a, _, err := line.BuildSectionMatrices(smallSection())
	require.NoError(t, err)

	var coords [][2]int
	a.Each(func(i, j int, _ float64) {
		coords = append(coords, [2]int{i, j})
	})
	assert.Equal(t, [][2]int{
		{0, 0}, {1, 1}, {2, 2}, {3, 3}, // diagonal
		{1, 0}, {2, 0}, {3, 0}, // first column
		{0, 1}, {0, 2}, {0, 3}, // first row
	}, coords)
}

func TestBuildSectionMatricesSingleRung(t *testing.T) {
	p := line.SectionParams{Conductance: 1, Capacitance: 2, Resistance: []float64{3}, Inductance: []float64{0.5}}
	a, b, err := line.BuildSectionMatrices(p)
	require.NoError(t, err)

	assert.Equal(t, 4, a.Len())
	assert.InDelta(t, -6.0, a.At(0, 0), 1e-12)
	assert.InDelta(t, -2.0, a.At(0, 1), 1e-12)
	assert.InDelta(t, 1.0, a.At(1, 0), 1e-12)
	assert.InDelta(t, -2.0, a.At(1, 1), 1e-12)
	assert.InDelta(t, 2.0, b.At(0, 0), 1e-12)
}

func TestBuildSectionMatricesMismatch(t *testing.T) {
	p := smallSection()
	p.Inductance = p.Inductance[:2]
	_, _, err := line.BuildSectionMatrices(p)
	assert.ErrorIs(t, err, line.ErrValidation)
}

func TestTileSingleBlockUnchanged(t *testing.T) {
	ad, _, err := line.BuildSectionMatrices(smallSection())
	require.NoError(t, err)
	as, ai, err := line.CouplingBlocks(smallSection())
	require.NoError(t, err)

	out, err := line.TileBlockTridiagonal(ad, as, ai, 1)
	require.NoError(t, err)
	assert.Same(t, ad, out)
	assert.Equal(t, 10, out.Len())
}

func TestTilePlacement(t *testing.T) {
	ad, _, err := line.BuildSectionMatrices(smallSection())
	require.NoError(t, err)
	as, ai, err := line.CouplingBlocks(smallSection())
	require.NoError(t, err)

	const n = 3
	out, err := line.TileBlockTridiagonal(ad, as, ai, n)
	require.NoError(t, err)
	require.Equal(t, 12, out.Rows())
	assert.Equal(t, 10*n+2*(n-1), out.Len())

	for k := 0; k < n; k++ {
		o := 4 * k
		assert.InDelta(t, -12.0, out.At(o, o), 1e-12)
		assert.InDelta(t, -2.0, out.At(o, o+3), 1e-12)
		assert.InDelta(t, 0.5, out.At(o+3, o), 1e-12)
	}
	for k := 1; k < n; k++ {
		assert.InDelta(t, -0.25, out.At(4*k-1, 4*k), 1e-12, "upper %d", k)
		assert.InDelta(t, 2.0, out.At(4*k, 4*k-1), 1e-12, "lower %d", k)
	}
	// outside the three block diagonals
	assert.Equal(t, 0.0, out.At(0, 8))
	assert.Equal(t, 0.0, out.At(11, 3))
}

func TestTileAccumulatesDuplicates(t *testing.T) {
	ad, err := matrix.NewCOO(2, 2)
	require.NoError(t, err)
	require.NoError(t, ad.AddElement(0, 0, 1))
	require.NoError(t, ad.AddElement(0, 0, 1.5))
	require.NoError(t, ad.AddElement(1, 1, -1))
	require.NoError(t, ad.AddElement(1, 1, 1))

	as, err := matrix.NewCOO(2, 2)
	require.NoError(t, err)
	require.NoError(t, as.AddElement(1, 0, 3))
	ai, err := matrix.NewCOO(2, 2)
	require.NoError(t, err)
	require.NoError(t, ai.AddElement(0, 1, 4))

	out, err := line.TileBlockTridiagonal(ad, as, ai, 3)
	require.NoError(t, err)
	assert.Equal(t, 4*3+2*2, out.Len())

	csr := out.ToCSR()
	for k := 0; k < 3; k++ {
		assert.Equal(t, 2.5, csr.At(2*k, 2*k))
		assert.Equal(t, 2.5, out.At(2*k, 2*k))
	}
	// entries that cancel are stored, not dropped
	assert.Equal(t, 3*2+2*2, csr.NNZ())
	assert.Equal(t, 3.0, csr.At(1, 2))
	assert.Equal(t, 4.0, csr.At(2, 1))
}

func TestTileErrors(t *testing.T) {
	ad, _, err := line.BuildSectionMatrices(smallSection())
	require.NoError(t, err)
	as, ai, err := line.CouplingBlocks(smallSection())
	require.NoError(t, err)

	_, err = line.TileBlockTridiagonal(ad, as, ai, 0)
	assert.ErrorIs(t, err, line.ErrValidation)

	wrong, err := matrix.NewCOO(3, 3)
	require.NoError(t, err)
	_, err = line.TileBlockTridiagonal(ad, wrong, ai, 2)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestStateSpaceReference(t *testing.T) {
	m, err := line.NewModel(referenceSpec(30))
	require.NoError(t, err)
	p := m.Section()

	ss, err := m.StateSpace()
	require.NoError(t, err)

	const sections, rungs = 30, 5
	assert.Equal(t, 180, ss.Order())
	assert.Equal(t, ss.A.Rows(), ss.B.Rows())
	assert.Equal(t, 1, ss.B.Cols())
	assert.Equal(t, (3*rungs+1)*sections+2*(sections-1), ss.A.Len())

	// only the first section sees the source
	assert.Equal(t, 1, ss.B.Len())
	assert.InEpsilon(t, 1/p.Inductance[0], ss.B.At(0, 0), 1e-12)

	assert.InEpsilon(t, -1/p.Capacitance, ss.A.At(5, 6), 1e-12)
	assert.InEpsilon(t, 1/p.Inductance[0], ss.A.At(6, 5), 1e-12)
	assert.InEpsilon(t, 2/p.Capacitance, ss.A.At(179, 174), 1e-12)
	assert.InEpsilon(t, -p.Capacitance/p.Conductance, ss.A.At(5, 5), 1e-12)

	sys, err := ss.System()
	require.NoError(t, err)
	assert.Equal(t, 180, sys.Order())
	assert.Equal(t, ss.A.Len(), sys.A.NNZ())
	assert.InEpsilon(t, 1/p.Inductance[0], sys.B[0], 1e-12)

	dense := ss.A.Dense()
	r, c := dense.Dims()
	assert.Equal(t, 180, r)
	assert.Equal(t, 180, c)
	assert.Equal(t, ss.A.At(3, 0), dense.At(3, 0))
}

func TestStateSpaceNodal(t *testing.T) {
	m, err := line.NewModel(referenceSpec(30), line.WithFormulation(line.Nodal))
	require.NoError(t, err)
	p := m.Section()
	c, g := p.Capacitance, p.Conductance

	ss, err := m.StateSpace()
	require.NoError(t, err)
	assert.Equal(t, 16*30+2*29+30+29, ss.A.Len())

	for k := 0; k < 30; k++ {
		v := 6*k + 5
		assert.InEpsilon(t, -g/c, ss.A.At(v, v), 1e-9, "V(%d)", k+1)
		want := 1 / c
		if k == 29 {
			want = 2 / c
		}
		assert.InEpsilon(t, want, ss.A.At(v, 6*k), 1e-12, "V(%d)", k+1)
	}

	sys, err := ss.System()
	require.NoError(t, err)
	assert.Equal(t, 16*30+2*29, sys.A.NNZ())
}

func TestStateSpaceNodalSingleSection(t *testing.T) {
	spec := referenceSpec(1)
	literal, err := line.NewModel(spec)
	require.NoError(t, err)
	nodal, err := line.NewModel(spec, line.WithFormulation(line.Nodal))
	require.NoError(t, err)

	ls, err := literal.StateSpace()
	require.NoError(t, err)
	ns, err := nodal.StateSpace()
	require.NoError(t, err)

	p := literal.Section()
	assert.Equal(t, 16, ls.A.Len())
	assert.Equal(t, 17, ns.A.Len())
	assert.InEpsilon(t, 2/p.Capacitance, ns.A.At(5, 0), 1e-12)
	assert.InEpsilon(t, -p.Conductance/p.Capacitance, ns.A.At(5, 5), 1e-9)
}

func TestStateSpaceSystemDimension(t *testing.T) {
	a, err := matrix.NewCOO(3, 3)
	require.NoError(t, err)
	b, err := matrix.NewCOO(2, 1)
	require.NoError(t, err)

	ss := &line.StateSpace{A: a, B: b}
	_, err = ss.System()
	assert.Error(t, err)
}
