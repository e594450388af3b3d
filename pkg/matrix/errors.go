package matrix

import "errors"

var (
	// ErrOutOfRange is returned when a row or column index falls outside the matrix.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch is returned when operand shapes are incompatible.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrSingular is returned when LU factorization hits a zero pivot.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrBadShape is returned for non-positive dimensions.
	ErrBadShape = errors.New("matrix: invalid shape")
)
