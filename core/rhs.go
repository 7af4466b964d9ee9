package core

import (
	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/model"
	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/ode"
)

// Evaluator computes the right hand side of the reaction system. It is pure
// and reentrant: no state is retained between calls, and the lectin free
// pools are re-derived algebraically on every evaluation because adaptive
// solvers call with speculative trial states that may be rejected.
type Evaluator struct {
	net *Network
}

// NewEvaluator returns an evaluator over the compiled network.
func NewEvaluator(net *Network) *Evaluator {
	return &Evaluator{net: net}
}

// FreePools derives the unbound lectin concentrations from the conservation
// constraint free = total − Σ(bound complexes).
func (e *Evaluator) FreePools(state []float64, p ParameterSet) (cnxFree, os9Free float64) {
	cnxFree = p[model.PoolCNX]
	for _, idx := range e.net.cnxComplexes {
		cnxFree -= state[idx]
	}
	os9Free = p[model.PoolOS9]
	for _, idx := range e.net.os9Complexes {
		os9Free -= state[idx]
	}
	return cnxFree, os9Free
}

// Derivatives writes the instantaneous rate of change of every species into
// deriv. All rate laws are mass action and purely multiplicative, so a
// vanishing substrate concentration yields a vanishing outgoing flux and no
// division ever occurs. The time argument exists only to satisfy the solver
// contract; the system is autonomous.
func (e *Evaluator) Derivatives(t float64, state []float64, p ParameterSet, deriv []float64) {
	_ = t

	for i := range deriv {
		deriv[i] = 0
	}

	cnxFree, os9Free := e.FreePools(state, p)

	for _, rxn := range e.net.reactions {
		k := p[rxn.rateKey]
		if k == 0 {
			continue
		}

		var flux float64
		switch rxn.kind {
		case model.KindGlucosylation, model.KindDeglucosylation,
			model.KindTrimming, model.KindEREMCleavage:
			flux = k * p[rxn.enzyme] * state[rxn.src]
		case model.KindLectinBinding:
			// Second order in the computed free pool; the free pool is
			// not a state variable, so only the complex derivative is
			// written.
			pool := cnxFree
			if rxn.lectin == lectinOS9 {
				pool = os9Free
			}
			flux = k * pool * state[rxn.src]
		case model.KindLectinUnbinding, model.KindSecretion, model.KindDegradation:
			flux = k * state[rxn.src]
		}

		deriv[rxn.src] -= flux
		deriv[rxn.dst] += flux
	}
}

// Func binds the evaluator to a parameter set, yielding the RHS closure the
// solver consumes. The parameter set must not be mutated while the returned
// function is in use; scenario runs therefore each bind their own copy.
func (e *Evaluator) Func(p ParameterSet) ode.Function {
	return func(t float64, y []float64, dy []float64) {
		e.Derivatives(t, y, p, dy)
	}
}
