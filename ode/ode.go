// Package ode provides the numeric-integration capability consumed by the
// simulation driver: an adaptive-step initial-value-problem integrator with
// error control and dense output onto caller-requested evaluation times.
package ode

import "errors"

var (
	// ErrStepBudget is returned when the integrator hits its maximum step
	// count before reaching the end of the interval.
	ErrStepBudget = errors.New("ode: step budget exhausted")

	// ErrStepTooSmall is returned when error control drives the step size
	// below the configured (or machine) minimum.
	ErrStepTooSmall = errors.New("ode: step size underflow")

	// ErrBadConfig is returned for structurally invalid configurations
	// (nil RHS, empty state, non-monotone output times).
	ErrBadConfig = errors.New("ode: invalid configuration")
)

// Function evaluates the right hand side of y'(t) = f(t, y), writing the
// derivative into dy. Implementations must not retain y or dy across calls:
// the integrator reuses buffers and calls with speculative trial states.
type Function func(t float64, y []float64, dy []float64)

// Config controls one integration.
type Config struct {
	// InitialStep, if > 0, is the size of the first attempted step.
	// Otherwise the integrator picks a default from the interval length.
	InitialStep float64

	// MinStep, if > 0, is the smallest step the integrator may take before
	// failing with ErrStepTooSmall.
	MinStep float64

	// MaxStep, if > 0, caps the step size.
	MaxStep float64

	// AbsTol and RelTol are the per-component error tolerances. Zero
	// values fall back to 1e-9 and 1e-6 respectively.
	AbsTol float64
	RelTol float64

	// MaxSteps, if > 0, bounds the number of accepted steps before the
	// integrator fails with ErrStepBudget.
	MaxSteps uint

	// Fcn is the right-hand-side expression.
	Fcn Function
}

// Statistics reports what the integrator did.
type Statistics struct {
	Steps       uint // accepted steps
	Rejected    uint // rejected trial steps
	Evaluations uint // RHS evaluations

	LastStep    float64 // size of the last accepted step
	CurrentTime float64 // time reached when the integrator returned
}

// Solution is the reported time grid with one state vector per grid point.
// Times are strictly increasing. On failure the partial solution up to the
// failure time is returned alongside the error.
type Solution struct {
	Times  []float64
	States [][]float64
}

// Info identifies an integrator implementation.
type Info struct {
	Name          string
	Stages, Order uint
}

// Integrator advances an initial value problem from t0 to t1.
//
// If outputTimes is non-empty it must be strictly increasing and contained in
// [t0, t1]; the solution is evaluated at exactly those times via dense output.
// If empty, every accepted step point is reported.
type Integrator interface {
	Info() Info
	Integrate(t0, t1 float64, y0 []float64, outputTimes []float64, cfg *Config) (Solution, Statistics, error)
}
