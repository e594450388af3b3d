package ode

type Method int

const (
	GearMethod Method = iota
	TrapezoidalMethod
)

func (m Method) String() string {
	switch m {
	case TrapezoidalMethod:
		return "trap"
	default:
		return "gear"
	}
}

// ParseMethod accepts the names used in scenario files.
func ParseMethod(name string) (Method, bool) {
	switch name {
	case "gear", "bdf", "GEAR", "BDF":
		return GearMethod, true
	case "trap", "trapezoidal", "TRAP", "TRAPEZOIDAL":
		return TrapezoidalMethod, true
	}
	return GearMethod, false
}

type backwardDifferentialFormula struct {
	coefficients []float64
	beta         float64
}

// bdfCoefficients are the fixed-step Gear formulas the integrator starts with,
// order 1..2: x[n+1] = sum(coefficients[i]·x[n-i]) + beta·h·f[n+1].
var bdfCoefficients = [2]backwardDifferentialFormula{
	{[]float64{1.0}, 1.0},
	{[]float64{4.0 / 3.0, -1.0 / 3.0}, 2.0 / 3.0},
}

// GetBDFcoeffs returns the derivative weights of the fixed-step Gear formula:
// x'[n+1] ≈ coeffs[0]·x[n+1] + sum(coeffs[i]·x[n+1-i]). Orders other than 1
// and 2 fall back to 1.
func GetBDFcoeffs(order int, dt float64) []float64 {
	if order < 1 || order > len(bdfCoefficients) {
		order = 1
	}

	bdf := bdfCoefficients[order-1]
	coeffs := make([]float64, order+1)
	scale := 1.0 / (bdf.beta * dt)
	coeffs[0] = scale

	for i := 1; i <= order; i++ {
		coeffs[i] = -bdf.coefficients[i-1] * scale
	}

	return coeffs
}

// GetGear2Coeffs is the variable-step second order Gear formula for a step dt
// following a step dtPrev. With dt == dtPrev it equals GetBDFcoeffs(2, dt).
func GetGear2Coeffs(dt, dtPrev float64) []float64 {
	w := dt / dtPrev
	if w > 1-1e-9 && w < 1+1e-9 {
		return GetBDFcoeffs(2, dt)
	}

	beta := (1 + w) / (1 + 2*w)
	a1 := (1 + w) * (1 + w) / (1 + 2*w)
	a2 := -w * w / (1 + 2*w)

	scale := 1.0 / (beta * dt)
	return []float64{scale, -a1 * scale, -a2 * scale}
}

// GetTrapezoidalCoeffs returns the matrix coefficient of the trapezoidal rule.
func GetTrapezoidalCoeffs(dt float64) []float64 {
	return []float64{2.0 / dt}
}

// lteConstant is the error constant of each formula in terms of h³·x'''
// (h²·x'' for backward Euler).
func lteConstant(method Method, order int) float64 {
	switch {
	case order == 1:
		return 0.5
	case method == TrapezoidalMethod:
		return 1.0 / 12.0
	default:
		return 2.0 / 9.0
	}
}
