package core

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/model"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrMissingParameter = errors.New("missing parameter")
	ErrNegativeValue    = errors.New("negative parameter value")
)

// ParameterSet maps parameter names (enzyme/lectin pool sizes and rate
// constants) to non-negative values. A baseline instance is built once at
// startup and treated as read-only; scenario variants are produced with
// Override, never by mutating the baseline.
type ParameterSet map[string]float64

// Clone returns an independent copy.
func (p ParameterSet) Clone() ParameterSet {
	out := make(ParameterSet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns all parameter names in sorted order.
func (p ParameterSet) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Override returns a new ParameterSet equal to baseline with the given keys
// replaced. A key absent from the baseline is a configuration error: silently
// accepting typos would corrupt scenario comparisons. Values replace, never
// accumulate, and must be non-negative. The baseline is not modified.
func Override(baseline ParameterSet, changes map[string]float64) (ParameterSet, error) {
	out := baseline.Clone()
	for k, v := range changes {
		if _, ok := baseline[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, k)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %q = %g", ErrNegativeValue, k, v)
		}
		out[k] = v
	}
	return out, nil
}

// Reference baseline values, in µM and 1/h (second-order constants in
// 1/(µM·h)). Pool sizes are total concentrations.
const (
	defaultUGGTPool   = 0.5
	defaultGIIPool    = 1.0
	defaultERManIPool = 1.0
	defaultEDEMPool   = 0.4
	defaultEREMPool   = 0.15
	defaultCNXPool    = 2.0
	defaultOS9Pool    = 0.5

	defaultGlucosylationRate   = 1.2
	defaultDeglucosylationRate = 1.8
	defaultERManITrimRate      = 0.9
	defaultEDEMTrimRate        = 0.5
	defaultCleavageRate        = 0.3
	defaultCNXOnRate           = 4.0
	defaultCNXOffRate          = 1.0
	defaultOS9OnRate           = 4.0
	defaultOS9OffRate          = 0.6
	defaultSecretionRate       = 0.12
	defaultDegradationRate     = 0.6
)

// DefaultParameters builds the reference baseline for a network: all enzyme
// and lectin pools at their reference concentrations and every rate-constant
// key the network declares, seeded with its family default.
func DefaultParameters(net *Network) ParameterSet {
	p := ParameterSet{
		model.PoolUGGT:   defaultUGGTPool,
		model.PoolGII:    defaultGIIPool,
		model.PoolERManI: defaultERManIPool,
		model.PoolEDEM1:  defaultEDEMPool,
		model.PoolEDEM2:  defaultEDEMPool,
		model.PoolEDEM3:  defaultEDEMPool,
		model.PoolEREM:   defaultEREMPool,
		model.PoolCNX:    defaultCNXPool,
		model.PoolOS9:    defaultOS9Pool,
	}
	for _, rxn := range net.reactions {
		switch rxn.kind {
		case model.KindGlucosylation:
			p[rxn.rateKey] = defaultGlucosylationRate
		case model.KindDeglucosylation:
			p[rxn.rateKey] = defaultDeglucosylationRate
		case model.KindTrimming:
			if rxn.enzyme == model.PoolERManI {
				p[rxn.rateKey] = defaultERManITrimRate
			} else {
				p[rxn.rateKey] = defaultEDEMTrimRate
			}
		case model.KindEREMCleavage:
			p[rxn.rateKey] = defaultCleavageRate
		case model.KindLectinBinding:
			if rxn.lectin == lectinCNX {
				p[rxn.rateKey] = defaultCNXOnRate
			} else {
				p[rxn.rateKey] = defaultOS9OnRate
			}
		case model.KindLectinUnbinding:
			if rxn.lectin == lectinCNX {
				p[rxn.rateKey] = defaultCNXOffRate
			} else {
				p[rxn.rateKey] = defaultOS9OffRate
			}
		case model.KindSecretion:
			p[rxn.rateKey] = defaultSecretionRate
		case model.KindDegradation:
			p[rxn.rateKey] = defaultDegradationRate
		}
	}
	return p
}

// ValidateParameters checks that the set carries every pool size and rate
// constant the network references, with no negative values. Detected eagerly
// at setup so a broken set never reaches the solver.
func (n *Network) ValidateParameters(p ParameterSet) error {
	for _, pool := range n.pools() {
		v, ok := p[pool]
		if !ok {
			return fmt.Errorf("%w: pool %q", ErrMissingParameter, pool)
		}
		if v < 0 {
			return fmt.Errorf("%w: pool %q = %g", ErrNegativeValue, pool, v)
		}
	}
	for _, rxn := range n.reactions {
		v, ok := p[rxn.rateKey]
		if !ok {
			return fmt.Errorf("%w: rate %q", ErrMissingParameter, rxn.rateKey)
		}
		if v < 0 {
			return fmt.Errorf("%w: rate %q = %g", ErrNegativeValue, rxn.rateKey, v)
		}
	}
	return nil
}
