package ode

import "github.com/edp1096/piline/pkg/matrix"

// System is the linear system X' = A·X + B·u(t) with a scalar input.
type System struct {
	A *matrix.CSR
	B []float64
}

func (s System) Order() int {
	if s.A == nil {
		return 0
	}
	return s.A.Rows()
}

func (s System) Validate() error {
	if s.A == nil {
		return &DimensionError{What: "state matrix", Want: len(s.B), Got: 0}
	}
	if s.A.Rows() != s.A.Cols() {
		return &DimensionError{What: "state matrix columns", Want: s.A.Rows(), Got: s.A.Cols()}
	}
	if len(s.B) != s.A.Rows() {
		return &DimensionError{What: "input vector", Want: s.A.Rows(), Got: len(s.B)}
	}
	return nil
}

// Derivative sets dst = A·x + B·u.
func (s System) Derivative(dst, x []float64, u float64) error {
	if err := s.A.MulVec(dst, x); err != nil {
		return err
	}
	for i, b := range s.B {
		if b != 0 {
			dst[i] += b * u
		}
	}
	return nil
}
