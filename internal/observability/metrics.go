package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/ode"
)

// SimCollector bundles Prometheus metrics for scenario runs and exposes them
// through a /metrics handler. It also implements the orchestrator's
// RunObserver contract so runs feed it directly.
type SimCollector struct {
	gatherer prometheus.Gatherer

	ScenarioRuns   *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	SolverSteps    prometheus.Histogram
	RHSEvaluations prometheus.Counter

	SpeciesCount  prometheus.Gauge
	ReactionCount prometheus.Gauge

	started map[string]time.Time
}

// NewSimCollector registers the simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glycosim_scenario_runs_total",
		Help: "Total number of completed scenario runs, labeled by scenario and outcome.",
	}, []string{"scenario", "outcome"})
	runs, err := registerCounterVec(reg, runs, "glycosim_scenario_runs_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glycosim_run_duration_seconds",
		Help:    "Wall-clock duration of one scenario integration in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"scenario"})
	durations, err = registerHistogramVec(reg, durations, "glycosim_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	steps, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "glycosim_solver_steps",
		Help:    "Accepted solver steps per scenario run.",
		Buckets: prometheus.ExponentialBuckets(64, 2, 12),
	}), "glycosim_solver_steps")
	if err != nil {
		return nil, err
	}

	evals, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "glycosim_rhs_evaluations_total",
		Help: "Cumulative right-hand-side evaluations across all runs.",
	}), "glycosim_rhs_evaluations_total")
	if err != nil {
		return nil, err
	}

	species, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "glycosim_species",
		Help: "Number of species in the compiled reaction network.",
	}), "glycosim_species")
	if err != nil {
		return nil, err
	}
	reactions, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "glycosim_reactions",
		Help: "Number of reactions in the compiled reaction network.",
	}), "glycosim_reactions")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:       gatherer,
		ScenarioRuns:   runs,
		RunDuration:    durations,
		SolverSteps:    steps,
		RHSEvaluations: evals,
		SpeciesCount:   species,
		ReactionCount:  reactions,
		started:        make(map[string]time.Time),
	}, nil
}

// SetNetworkSize records the compiled network dimensions.
func (c *SimCollector) SetNetworkSize(species, reactions int) {
	if c == nil {
		return
	}
	if c.SpeciesCount != nil {
		c.SpeciesCount.Set(float64(species))
	}
	if c.ReactionCount != nil {
		c.ReactionCount.Set(float64(reactions))
	}
}

// RunStarted implements the run observer contract.
func (c *SimCollector) RunStarted(label string) {
	if c == nil {
		return
	}
	c.started[label] = time.Now()
}

// RunFinished implements the run observer contract, recording outcome,
// duration, and solver effort for the labeled run.
func (c *SimCollector) RunFinished(label string, stats ode.Statistics, err error) {
	if c == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.ScenarioRuns != nil {
		c.ScenarioRuns.WithLabelValues(label, outcome).Inc()
	}
	if c.RunDuration != nil {
		if start, ok := c.started[label]; ok {
			c.RunDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
			delete(c.started, label)
		}
	}
	if c.SolverSteps != nil {
		c.SolverSteps.Observe(float64(stats.Steps))
	}
	if c.RHSEvaluations != nil {
		c.RHSEvaluations.Add(float64(stats.Evaluations))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
