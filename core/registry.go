package core

import (
	"errors"
	"fmt"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/model"
)

var (
	ErrDuplicateSpecies = errors.New("duplicate species name")
	ErrUnknownSpecies   = errors.New("unknown species")
)

// Sink species names. Both are scalar cumulative pools.
const (
	SpeciesSecreted = "Secreted"
	SpeciesDegraded = "Degraded"
)

// ComplexName returns the canonical name of a lectin-bound complex,
// e.g. "CNX:G1M9".
func ComplexName(lectin, glycoform string) string {
	return lectin + ":" + glycoform
}

// Registry enumerates every tracked species and assigns each a stable index
// into the state vector. It is immutable once built.
type Registry struct {
	species []model.Species
	index   map[string]int
}

// BuildRegistry derives the species set from the topology: free glycoforms
// in declaration order, then CNX complexes, then OS9 complexes, then the two
// sinks. It fails on duplicate names and on topology entries that reference
// glycoforms outside the declared sets.
func BuildRegistry(topo model.Topology) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}

	add := func(name string, cat model.Category) error {
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrUnknownSpecies)
		}
		if _, exists := r.index[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateSpecies, name)
		}
		idx := len(r.species)
		r.species = append(r.species, model.Species{Name: name, Category: cat, Index: idx})
		r.index[name] = idx
		return nil
	}

	for _, name := range topo.Deglucosylated {
		if err := add(name, model.CategoryFreeDeglucosylated); err != nil {
			return nil, err
		}
	}
	for _, pair := range topo.Glucosylation {
		if _, ok := r.index[pair.Free]; !ok {
			return nil, fmt.Errorf("%w: glucosylation substrate %q", ErrUnknownSpecies, pair.Free)
		}
		if err := add(pair.Glucosylated, model.CategoryFreeGlucosylated); err != nil {
			return nil, err
		}
	}
	for _, name := range topo.CNXBinders {
		idx, ok := r.index[name]
		if !ok || r.species[idx].Category != model.CategoryFreeGlucosylated {
			return nil, fmt.Errorf("%w: CNX binder %q is not a glucosylated glycoform", ErrUnknownSpecies, name)
		}
		if err := add(ComplexName("CNX", name), model.CategoryCNXBound); err != nil {
			return nil, err
		}
	}
	for _, name := range topo.ERADSet {
		idx, ok := r.index[name]
		if !ok || r.species[idx].Category != model.CategoryFreeDeglucosylated {
			return nil, fmt.Errorf("%w: ERAD species %q is not a deglucosylated glycoform", ErrUnknownSpecies, name)
		}
		if err := add(ComplexName("OS9", name), model.CategoryOS9Bound); err != nil {
			return nil, err
		}
	}
	if err := add(SpeciesSecreted, model.CategorySecretedSink); err != nil {
		return nil, err
	}
	if err := add(SpeciesDegraded, model.CategoryDegradedSink); err != nil {
		return nil, err
	}

	return r, nil
}

// Len returns the number of tracked species (the state-vector length).
func (r *Registry) Len() int { return len(r.species) }

// Species returns all species in index order. The slice is a copy.
func (r *Registry) Species() []model.Species {
	out := make([]model.Species, len(r.species))
	copy(out, r.species)
	return out
}

// Index resolves a species name to its state-vector index.
func (r *Registry) Index(name string) (int, error) {
	idx, ok := r.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	return idx, nil
}

// Name returns the species name at the given index.
func (r *Registry) Name(idx int) string {
	return r.species[idx].Name
}

// Category returns the category of the species at the given index.
func (r *Registry) Category(idx int) model.Category {
	return r.species[idx].Category
}

// ByCategory returns the species of one category, in index order.
func (r *Registry) ByCategory(cat model.Category) []model.Species {
	var out []model.Species
	for _, sp := range r.species {
		if sp.Category == cat {
			out = append(out, sp)
		}
	}
	return out
}

// FreeSpecies returns all free (unbound, non-sink) species in index order.
func (r *Registry) FreeSpecies() []model.Species {
	var out []model.Species
	for _, sp := range r.species {
		if sp.Category == model.CategoryFreeGlucosylated || sp.Category == model.CategoryFreeDeglucosylated {
			out = append(out, sp)
		}
	}
	return out
}
