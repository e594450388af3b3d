package matrix

// Stamper accumulates contributions into a matrix. Indices are 0-based and a
// second contribution to the same (i, j) is added to the first.
type Stamper interface {
	AddElement(i, j int, value float64) error
}

var (
	_ Stamper = (*COO)(nil)
	_ Stamper = (*SystemMatrix)(nil)
)
