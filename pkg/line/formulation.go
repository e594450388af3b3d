package line

import (
	"fmt"
	"strings"

	"github.com/edp1096/piline/pkg/matrix"
)

// Formulation selects how the shunt rows of the state matrix are written.
type Formulation int

const (
	// Literal uses the section matrix for every section as built by
	// BuildSectionMatrices: 2/C on the current feeding the shunt node and
	// -C/G on its diagonal.
	Literal Formulation = iota
	// Nodal gives interior nodes the full section capacitance (1/C) and the
	// open receiving end half of it (2/C), with -G/C shunt decay everywhere.
	Nodal
)

func (f Formulation) String() string {
	switch f {
	case Literal:
		return "literal"
	case Nodal:
		return "nodal"
	default:
		return fmt.Sprintf("Formulation(%d)", int(f))
	}
}

func ParseFormulation(s string) (Formulation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "literal":
		return Literal, nil
	case "nodal":
		return Nodal, nil
	default:
		return Literal, invalid("formulation", "unknown formulation %q", s)
	}
}

// Option configures a Model.
type Option func(*Model)

func WithFormulation(f Formulation) Option {
	return func(m *Model) {
		m.form = f
	}
}

// applyNodal stamps the nodal corrections on top of a tiled literal matrix.
// The corrections rely on coordinate accumulation: each one is a separate
// contribution summed with the literal entry at the same position.
func applyNodal(a matrix.Stamper, p SectionParams, sections int) error {
	m := len(p.Resistance) + 1
	c, g := p.Capacitance, p.Conductance
	for k := 0; k < sections; k++ {
		v := k*m + m - 1
		if err := a.AddElement(v, v, c/g-g/c); err != nil {
			return err
		}
		if k == sections-1 {
			continue
		}
		if err := a.AddElement(v, k*m, -1/c); err != nil {
			return err
		}
	}
	return nil
}
