package ode

import (
	"errors"
	"fmt"
)

var (
	// ErrDimension matches every *DimensionError.
	ErrDimension = errors.New("ode: dimension mismatch")

	// ErrNumerical matches every *NumericalError.
	ErrNumerical = errors.New("ode: numerical failure")

	// ErrStepTooSmall is the cause of a NumericalError raised when the step
	// controller shrinks below the minimum step.
	ErrStepTooSmall = errors.New("ode: step below minimum")

	// ErrStepBudget is the cause of a NumericalError raised when the step
	// budget is exhausted.
	ErrStepBudget = errors.New("ode: step budget exhausted")

	// ErrNonFinite is the cause of a NumericalError raised when the state
	// contains NaN or Inf.
	ErrNonFinite = errors.New("ode: non-finite state")

	// ErrGrid is returned for an empty, unordered or non-finite time grid.
	ErrGrid = errors.New("ode: invalid time grid")
)

// DimensionError reports inconsistent shapes between A, B and the initial
// state. It signals a programming error in the caller.
type DimensionError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("ode: %s has dimension %d, want %d", e.What, e.Got, e.Want)
}

func (e *DimensionError) Is(target error) bool { return target == ErrDimension }

// NumericalError reports a terminal integration failure at Time.
type NumericalError struct {
	Time float64
	Step float64
	Err  error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("ode: integration failed at t=%g (h=%g): %v", e.Time, e.Step, e.Err)
}

func (e *NumericalError) Is(target error) bool { return target == ErrNumerical }

func (e *NumericalError) Unwrap() error { return e.Err }
