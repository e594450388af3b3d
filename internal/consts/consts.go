package consts

// Step control defaults for the implicit integrator.
const (
	DefaultAbsTol   = 1e-6
	DefaultRelTol   = 1e-4
	DefaultMinStep  = 1e-15 // s
	DefaultMaxSteps = 5_000_000

	StepSafety   = 0.85 // step adjustment safety factor
	MaxStepScale = 2.0  // largest ratio of consecutive steps, below 1+√2 for BDF2
	MinStepScale = 0.1  // largest cut per rejected step
	GrowthFloor  = 1.2  // growth below this keeps the factorization
)
