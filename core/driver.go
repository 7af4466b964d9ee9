package core

import (
	"fmt"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/ode"
)

// DefaultSpanHours is the reference integration horizon.
const DefaultSpanHours = 28.0

// TimeSpan is the integration interval in hours.
type TimeSpan struct {
	Start float64
	End   float64
}

// DefaultSpan returns the reference [0, 28 h] interval.
func DefaultSpan() TimeSpan { return TimeSpan{Start: 0, End: DefaultSpanHours} }

// Trajectory is one run's output: a strictly increasing time grid and the
// full state vector at each grid point, indexed by the species registry.
type Trajectory struct {
	Times  []float64
	States [][]float64
}

// At returns the concentration series of one species index across the grid.
func (tr *Trajectory) At(speciesIdx int) []float64 {
	out := make([]float64, len(tr.States))
	for i, state := range tr.States {
		out[i] = state[speciesIdx]
	}
	return out
}

// NumericalError reports a solver failure: the integrator could not satisfy
// its tolerance within the step budget. The partial trajectory up to the
// failure time is carried so callers can inspect how far the run got.
type NumericalError struct {
	Time    float64 // simulated time reached
	Steps   uint    // accepted steps before failing
	Partial *Trajectory
	Err     error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("integration failed at t=%.4g h after %d steps: %v", e.Time, e.Steps, e.Err)
}

func (e *NumericalError) Unwrap() error { return e.Err }

// Driver wraps the external integration capability: it builds initial
// conditions, binds the RHS to a parameter set, and surfaces solver failures
// as NumericalError instead of truncating.
type Driver struct {
	Network    *Network
	Integrator ode.Integrator

	AbsTol   float64
	RelTol   float64
	MaxSteps uint
}

// NewDriver returns a driver with the Dormand–Prince integrator and the
// reference tolerances.
func NewDriver(net *Network) *Driver {
	return &Driver{
		Network:    net,
		Integrator: ode.NewDormandPrince(),
		AbsTol:     1e-9,
		RelTol:     1e-7,
		MaxSteps:   200000,
	}
}

// InitialState builds a state vector from a sparse species→concentration
// specification. Unspecified species default to zero; a nil or empty
// specification yields the reference condition of 1.0 µM at free M9. A name
// absent from the registry is a configuration error.
func (d *Driver) InitialState(ic map[string]float64) ([]float64, error) {
	reg := d.Network.Registry()
	state := make([]float64, reg.Len())
	if len(ic) == 0 {
		idx, err := reg.Index("M9")
		if err != nil {
			return nil, err
		}
		state[idx] = 1.0
		return state, nil
	}
	for name, conc := range ic {
		idx, err := reg.Index(name)
		if err != nil {
			return nil, fmt.Errorf("initial condition: %w", err)
		}
		if conc < 0 {
			return nil, fmt.Errorf("%w: initial %q = %g", ErrNegativeValue, name, conc)
		}
		state[idx] = conc
	}
	return state, nil
}

// Run validates the parameter set, integrates the system over the span, and
// returns the trajectory on the requested output grid (or the solver's own
// accepted-step grid when outputTimes is nil). The parameter set is cloned so
// concurrent runs sharing a baseline cannot interfere.
func (d *Driver) Run(p ParameterSet, ic map[string]float64, span TimeSpan, outputTimes []float64) (*Trajectory, ode.Statistics, error) {
	var stats ode.Statistics

	if err := d.Network.ValidateParameters(p); err != nil {
		return nil, stats, err
	}
	state, err := d.InitialState(ic)
	if err != nil {
		return nil, stats, err
	}

	bound := p.Clone()
	eval := NewEvaluator(d.Network)
	cfg := &ode.Config{
		AbsTol:   d.AbsTol,
		RelTol:   d.RelTol,
		MaxSteps: d.MaxSteps,
		Fcn:      eval.Func(bound),
	}

	sol, stats, err := d.Integrator.Integrate(span.Start, span.End, state, outputTimes, cfg)
	tr := &Trajectory{Times: sol.Times, States: sol.States}
	if err != nil {
		return nil, stats, &NumericalError{
			Time:    stats.CurrentTime,
			Steps:   stats.Steps,
			Partial: tr,
			Err:     err,
		}
	}
	return tr, stats, nil
}

// UniformGrid returns n+1 evenly spaced output times covering the span.
func UniformGrid(span TimeSpan, n int) []float64 {
	if n < 1 {
		n = 1
	}
	grid := make([]float64, n+1)
	step := (span.End - span.Start) / float64(n)
	for i := 0; i <= n; i++ {
		grid[i] = span.Start + float64(i)*step
	}
	grid[n] = span.End
	return grid
}
