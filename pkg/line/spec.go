package line

import "math"

// LineSpec holds the distributed parameters of the line, per unit length, in
// whatever length unit Length is given in.
//
// Resistance and Inductance describe the series rungs that approximate the
// frequency-dependent impedance; rung 0 is the main branch.
type LineSpec struct {
	Conductance float64   // shunt conductance (S/unit)
	Capacitance float64   // shunt capacitance (F/unit)
	Resistance  []float64 // series resistance per rung (Ohm/unit)
	Inductance  []float64 // series inductance per rung (H/unit)
	Sections    int       // number of cascaded pi sections
	Length      float64   // line length (unit)
}

// Validate checks the structural invariants and every value that ends up as a
// divisor in the state matrix.
func (s LineSpec) Validate() error {
	if s.Sections <= 0 {
		return invalid("sections", "must be a positive integer, got %d", s.Sections)
	}
	if len(s.Resistance) != len(s.Inductance) {
		return invalid("rungs", "resistance has %d elements, inductance has %d",
			len(s.Resistance), len(s.Inductance))
	}
	if len(s.Resistance) == 0 {
		return invalid("rungs", "at least one resistance/inductance pair is required")
	}
	if !finite(s.Length) || s.Length <= 0 {
		return invalid("length", "must be positive, got %g", s.Length)
	}
	if !finite(s.Conductance) || s.Conductance == 0 {
		return invalid("conductance", "must be finite and non-zero, got %g", s.Conductance)
	}
	if !finite(s.Capacitance) || s.Capacitance == 0 {
		return invalid("capacitance", "must be finite and non-zero, got %g", s.Capacitance)
	}
	for i, r := range s.Resistance {
		if !finite(r) {
			return invalid("resistance", "rung %d is %g", i, r)
		}
	}
	for i, l := range s.Inductance {
		if !finite(l) || l == 0 {
			return invalid("inductance", "rung %d must be finite and non-zero, got %g", i, l)
		}
	}
	return nil
}

// Rungs is M, the number of series resistance/inductance pairs.
func (s LineSpec) Rungs() int { return len(s.Resistance) }

// SectionsFromFloat converts a section count read from text or YAML, rejecting
// non-integer values.
func SectionsFromFloat(n float64) (int, error) {
	if !finite(n) || n != math.Trunc(n) {
		return 0, invalid("sections", "must be an integer, got %g", n)
	}
	if n <= 0 {
		return 0, invalid("sections", "must be a positive integer, got %g", n)
	}
	if n > math.MaxInt32 {
		return 0, invalid("sections", "too large: %g", n)
	}
	return int(n), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
