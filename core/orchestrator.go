package core

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/internal/logging"
	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/ode"
)

// BaselineLabel is the label under which the unmodified parameter set is run.
const BaselineLabel = "baseline"

// Scenario is one labeled variant: a set of validated parameter overrides and
// an optional sparse initial condition (nil means the reference condition).
type Scenario struct {
	Label     string
	Overrides map[string]float64
	Initial   map[string]float64
}

// Aggregates are the derived comparison series of one run: total non-sink
// mass (free plus lectin-bound) and the two cumulative sinks.
type Aggregates struct {
	Free     []float64
	Secreted []float64
	Degraded []float64
}

// ScenarioResult is one run's outcome. On failure Err is set and Trajectory
// holds whatever partial trajectory the solver produced, if any.
type ScenarioResult struct {
	Label      string
	Parameters ParameterSet
	Trajectory *Trajectory
	Aggregates *Aggregates
	Stats      ode.Statistics
	Err        error
}

// RunObserver receives per-run lifecycle notifications. Implementations feed
// metrics or tracing; a nil observer is ignored.
type RunObserver interface {
	RunStarted(label string)
	RunFinished(label string, stats ode.Statistics, err error)
}

// MultiObserver fans notifications out to several observers.
type MultiObserver []RunObserver

func (m MultiObserver) RunStarted(label string) {
	for _, o := range m {
		o.RunStarted(label)
	}
}

func (m MultiObserver) RunFinished(label string, stats ode.Statistics, err error) {
	for _, o := range m {
		o.RunFinished(label, stats, err)
	}
}

// Orchestrator runs the baseline and a list of scenario variants through the
// driver and assembles comparable outputs. Scenarios never observe each
// other's state: every run gets its own parameter copy and state vector.
type Orchestrator struct {
	Driver      *Driver
	Span        TimeSpan
	OutputTimes []float64

	Log      logging.Logger
	Observer RunObserver
}

// NewOrchestrator returns an orchestrator over the driver with the reference
// span and a uniform 6-minute output grid.
func NewOrchestrator(d *Driver) *Orchestrator {
	span := DefaultSpan()
	return &Orchestrator{
		Driver:      d,
		Span:        span,
		OutputTimes: UniformGrid(span, 280),
		Log:         logging.Noop(),
	}
}

// Compare runs the baseline followed by each scenario, preserving label
// order. A scenario whose override or run fails is recorded with its error
// and the comparison continues; the baseline parameter set is never mutated.
func (o *Orchestrator) Compare(ctx context.Context, baseline ParameterSet, scenarios []Scenario) []ScenarioResult {
	all := make([]Scenario, 0, len(scenarios)+1)
	all = append(all, Scenario{Label: BaselineLabel})
	all = append(all, scenarios...)

	results := make([]ScenarioResult, 0, len(all))
	for _, sc := range all {
		results = append(results, o.runScenario(ctx, baseline, sc))
	}
	return results
}

func (o *Orchestrator) runScenario(ctx context.Context, baseline ParameterSet, sc Scenario) ScenarioResult {
	res := ScenarioResult{Label: sc.Label}

	if o.Observer != nil {
		o.Observer.RunStarted(sc.Label)
	}
	defer func() {
		if o.Observer != nil {
			o.Observer.RunFinished(sc.Label, res.Stats, res.Err)
		}
	}()

	log := logging.ForRun(o.Log, sc.Label)

	params, err := Override(baseline, sc.Overrides)
	if err != nil {
		log.Error(ctx, "scenario setup failed", logging.String("error", err.Error()))
		res.Err = err
		return res
	}
	res.Parameters = params

	tr, stats, err := o.Driver.Run(params, sc.Initial, o.Span, o.OutputTimes)
	res.Stats = stats
	if err != nil {
		log.Error(ctx, "scenario run failed", logging.String("error", err.Error()))
		res.Err = err
		if numErr, ok := err.(*NumericalError); ok {
			res.Trajectory = numErr.Partial
		}
		return res
	}

	res.Trajectory = tr
	res.Aggregates = o.aggregate(tr)
	log.Info(ctx, "scenario complete",
		logging.Int("steps", int(stats.Steps)),
		logging.Int("rhs_evaluations", int(stats.Evaluations)),
		logging.Float("final_time_h", stats.CurrentTime))
	return res
}

// aggregate derives the Free/Secreted/Degraded comparison series.
func (o *Orchestrator) aggregate(tr *Trajectory) *Aggregates {
	reg := o.Driver.Network.Registry()
	secIdx, _ := reg.Index(SpeciesSecreted)
	degIdx, _ := reg.Index(SpeciesDegraded)

	agg := &Aggregates{
		Free:     make([]float64, len(tr.States)),
		Secreted: make([]float64, len(tr.States)),
		Degraded: make([]float64, len(tr.States)),
	}
	for i, state := range tr.States {
		agg.Free[i] = floats.Sum(state) - state[secIdx] - state[degIdx]
		agg.Secreted[i] = state[secIdx]
		agg.Degraded[i] = state[degIdx]
	}
	return agg
}
