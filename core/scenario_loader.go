package core

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/model"
)

var (
	ErrUnknownGroup   = errors.New("unknown rate-constant group")
	ErrEmptyLabel     = errors.New("scenario with empty label")
	ErrDuplicateLabel = errors.New("duplicate scenario label")
)

// YAML document shapes for a scenario suite.
type scenarioSuiteYAML struct {
	Scenarios []scenarioYAML `yaml:"scenarios"`
}

type scenarioYAML struct {
	Label string `yaml:"label"`

	// ZeroGroups names rate-constant groups whose members are all set to
	// zero (scenario inhibition). Resolved through the network's explicit
	// group helpers, never by substring matching over key names.
	ZeroGroups []string `yaml:"zero_groups"`

	// Overrides are individual parameter replacements, validated against
	// the baseline key space.
	Overrides map[string]float64 `yaml:"overrides"`

	// Initial is a sparse species→µM initial condition; empty means the
	// reference condition (M9 = 1.0 µM).
	Initial map[string]float64 `yaml:"initial"`
}

// GroupKeys resolves a named rate-constant group to its member keys. Groups
// are the statically enumerable override conveniences: "uggt", "gii",
// "erman1", "edem1", "edem2", "edem3", "erem", "mannosidases", "cnx", "os9",
// "secretion", "degradation".
func (n *Network) GroupKeys(group string) ([]string, error) {
	switch group {
	case "uggt":
		return n.EnzymeRateKeys(model.PoolUGGT), nil
	case "gii":
		return n.EnzymeRateKeys(model.PoolGII), nil
	case "erman1":
		return n.EnzymeRateKeys(model.PoolERManI), nil
	case "edem1":
		return n.EnzymeRateKeys(model.PoolEDEM1), nil
	case "edem2":
		return n.EnzymeRateKeys(model.PoolEDEM2), nil
	case "edem3":
		return n.EnzymeRateKeys(model.PoolEDEM3), nil
	case "erem":
		return n.EnzymeRateKeys(model.PoolEREM), nil
	case "mannosidases":
		return n.MannosidaseRateKeys(), nil
	case "cnx":
		return n.lectinRateKeys(lectinCNX), nil
	case "os9":
		return n.lectinRateKeys(lectinOS9), nil
	case "secretion":
		return n.KindRateKeys(model.KindSecretion), nil
	case "degradation":
		return n.KindRateKeys(model.KindDegradation), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
}

// lectinRateKeys returns the on/off rate keys of one lectin's binding cycle.
func (n *Network) lectinRateKeys(l lectinID) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, rxn := range n.reactions {
		if rxn.lectin != l {
			continue
		}
		if rxn.kind != model.KindLectinBinding && rxn.kind != model.KindLectinUnbinding {
			continue
		}
		if _, ok := seen[rxn.rateKey]; ok {
			continue
		}
		seen[rxn.rateKey] = struct{}{}
		keys = append(keys, rxn.rateKey)
	}
	return keys
}

// LoadScenarioSuite reads a YAML scenario suite from r and resolves it into
// runnable scenarios. All validation happens here, eagerly: unknown groups,
// parameter keys, and species names fail the load before any integration.
func LoadScenarioSuite(net *Network, baseline ParameterSet, r io.Reader) ([]Scenario, error) {
	var payload scenarioSuiteYAML
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenarioSuite: decode failed: %w", err)
	}

	reg := net.Registry()
	seen := make(map[string]struct{}, len(payload.Scenarios))
	scenarios := make([]Scenario, 0, len(payload.Scenarios))

	for _, sc := range payload.Scenarios {
		if sc.Label == "" {
			return nil, fmt.Errorf("LoadScenarioSuite: %w", ErrEmptyLabel)
		}
		if _, dup := seen[sc.Label]; dup {
			return nil, fmt.Errorf("LoadScenarioSuite: %w: %q", ErrDuplicateLabel, sc.Label)
		}
		seen[sc.Label] = struct{}{}

		overrides := make(map[string]float64)
		for _, group := range sc.ZeroGroups {
			keys, err := net.GroupKeys(group)
			if err != nil {
				return nil, fmt.Errorf("scenario %q: %w", sc.Label, err)
			}
			for _, k := range keys {
				overrides[k] = 0
			}
		}
		for k, v := range sc.Overrides {
			overrides[k] = v
		}

		// Validate the merged overrides and the initial condition now, so
		// a typo fails the whole suite rather than one run later on.
		if _, err := Override(baseline, overrides); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Label, err)
		}
		for name := range sc.Initial {
			if _, err := reg.Index(name); err != nil {
				return nil, fmt.Errorf("scenario %q: initial condition: %w", sc.Label, err)
			}
		}

		scenarios = append(scenarios, Scenario{
			Label:     sc.Label,
			Overrides: overrides,
			Initial:   sc.Initial,
		})
	}

	return scenarios, nil
}
