package core

import (
	"errors"
	"testing"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/model"
)

func TestBuildRegistryDefaultTopology(t *testing.T) {
	reg, err := BuildRegistry(model.DefaultTopology())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	if got := reg.Len(); got != 24 {
		t.Fatalf("Len() = %d, want 24", got)
	}

	counts := map[model.Category]int{
		model.CategoryFreeDeglucosylated: 9,
		model.CategoryFreeGlucosylated:   4,
		model.CategoryCNXBound:           4,
		model.CategoryOS9Bound:           5,
		model.CategorySecretedSink:       1,
		model.CategoryDegradedSink:       1,
	}
	for cat, want := range counts {
		if got := len(reg.ByCategory(cat)); got != want {
			t.Errorf("ByCategory(%s) = %d species, want %d", cat, got, want)
		}
	}

	if got := len(reg.FreeSpecies()); got != 13 {
		t.Errorf("FreeSpecies() = %d, want 13", got)
	}

	// Sinks occupy the last two indices.
	if reg.Name(22) != SpeciesSecreted || reg.Name(23) != SpeciesDegraded {
		t.Errorf("sink indices = %q, %q, want Secreted, Degraded", reg.Name(22), reg.Name(23))
	}
}

func TestRegistryIndexRoundTrip(t *testing.T) {
	reg, err := BuildRegistry(model.DefaultTopology())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	for _, sp := range reg.Species() {
		idx, err := reg.Index(sp.Name)
		if err != nil {
			t.Fatalf("Index(%q): %v", sp.Name, err)
		}
		if idx != sp.Index || reg.Name(idx) != sp.Name {
			t.Fatalf("round trip failed for %q: idx=%d, sp.Index=%d", sp.Name, idx, sp.Index)
		}
	}

	if _, err := reg.Index("G2M9"); !errors.Is(err, ErrUnknownSpecies) {
		t.Fatalf("Index of unknown species: got %v, want ErrUnknownSpecies", err)
	}
}

func TestRegistryComplexNames(t *testing.T) {
	reg, err := BuildRegistry(model.DefaultTopology())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	for _, name := range []string{"CNX:G1M9", "CNX:G1M7BC", "OS9:M8C", "OS9:M5"} {
		if _, err := reg.Index(name); err != nil {
			t.Errorf("expected complex %q in registry: %v", name, err)
		}
	}
}

func TestBuildRegistryRejectsDuplicates(t *testing.T) {
	topo := model.DefaultTopology()
	topo.Deglucosylated = append(topo.Deglucosylated, "M9")

	if _, err := BuildRegistry(topo); !errors.Is(err, ErrDuplicateSpecies) {
		t.Fatalf("got %v, want ErrDuplicateSpecies", err)
	}
}

func TestBuildRegistryRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Topology)
	}{
		{
			name: "glucosylation substrate missing",
			mutate: func(topo *model.Topology) {
				topo.Glucosylation = append(topo.Glucosylation,
					model.GlucosylationPair{Free: "M4", Glucosylated: "G1M4"})
			},
		},
		{
			name: "cnx binder not glucosylated",
			mutate: func(topo *model.Topology) {
				topo.CNXBinders = append(topo.CNXBinders, "M9")
			},
		},
		{
			name: "erad species not deglucosylated",
			mutate: func(topo *model.Topology) {
				topo.ERADSet = append(topo.ERADSet, "G1M9")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			topo := model.DefaultTopology()
			tc.mutate(&topo)
			if _, err := BuildRegistry(topo); !errors.Is(err, ErrUnknownSpecies) {
				t.Fatalf("got %v, want ErrUnknownSpecies", err)
			}
		})
	}
}
