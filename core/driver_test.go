package core

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/ode"
)

func TestInitialStateDefaultsToM9(t *testing.T) {
	d := NewDriver(buildDefaultNetwork(t))

	state, err := d.InitialState(nil)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	if got := floats.Sum(state); got != 1.0 {
		t.Fatalf("total initial mass = %v, want 1.0", got)
	}
	m9, err := d.Network.Registry().Index("M9")
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if state[m9] != 1.0 {
		t.Fatalf("M9 initial = %v, want 1.0", state[m9])
	}
}

func TestInitialStateSparseInput(t *testing.T) {
	d := NewDriver(buildDefaultNetwork(t))

	state, err := d.InitialState(map[string]float64{"M9": 0.4, "G1M9": 0.6})
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	if got := floats.Sum(state); math.Abs(got-1.0) > 1e-15 {
		t.Fatalf("total initial mass = %v, want 1.0", got)
	}
}

func TestInitialStateRejectsBadInput(t *testing.T) {
	d := NewDriver(buildDefaultNetwork(t))

	if _, err := d.InitialState(map[string]float64{"M99": 1}); !errors.Is(err, ErrUnknownSpecies) {
		t.Fatalf("unknown species: got %v, want ErrUnknownSpecies", err)
	}
	if _, err := d.InitialState(map[string]float64{"M9": -1}); !errors.Is(err, ErrNegativeValue) {
		t.Fatalf("negative concentration: got %v, want ErrNegativeValue", err)
	}
}

func TestRunConservesMass(t *testing.T) {
	net := buildDefaultNetwork(t)
	d := NewDriver(net)
	p := DefaultParameters(net)

	span := DefaultSpan()
	grid := UniformGrid(span, 56)
	tr, stats, err := d.Run(p, nil, span, grid)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Steps == 0 {
		t.Fatal("no accepted steps recorded")
	}
	if len(tr.Times) != len(grid) {
		t.Fatalf("trajectory has %d points, want %d", len(tr.Times), len(grid))
	}

	for i, state := range tr.States {
		if total := floats.Sum(state); math.Abs(total-1.0) > 1e-6 {
			t.Fatalf("total mass at t=%v is %v, want 1.0 within 1e-6", tr.Times[i], total)
		}
		for j, v := range state {
			if v < -1e-6 {
				t.Fatalf("species %s went negative at t=%v: %v",
					net.Registry().Name(j), tr.Times[i], v)
			}
		}
	}
}

func TestRunSinksAreMonotone(t *testing.T) {
	net := buildDefaultNetwork(t)
	d := NewDriver(net)
	p := DefaultParameters(net)
	reg := net.Registry()

	span := DefaultSpan()
	tr, _, err := d.Run(p, nil, span, UniformGrid(span, 56))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{SpeciesSecreted, SpeciesDegraded} {
		idx, err := reg.Index(name)
		if err != nil {
			t.Fatalf("Index: %v", err)
		}
		series := tr.At(idx)
		for i := 1; i < len(series); i++ {
			if series[i] < series[i-1]-1e-7 {
				t.Fatalf("%s decreased between t=%v and t=%v: %v -> %v",
					name, tr.Times[i-1], tr.Times[i], series[i-1], series[i])
			}
		}
		if series[len(series)-1] <= 0 {
			t.Fatalf("%s never accumulated mass over the full span", name)
		}
	}
}

func TestRunSurfacesNumericalError(t *testing.T) {
	net := buildDefaultNetwork(t)
	d := NewDriver(net)
	d.MaxSteps = 2
	p := DefaultParameters(net)

	span := DefaultSpan()
	_, _, err := d.Run(p, nil, span, UniformGrid(span, 10))
	if err == nil {
		t.Fatal("expected failure with a two-step budget")
	}

	var numErr *NumericalError
	if !errors.As(err, &numErr) {
		t.Fatalf("got %T, want *NumericalError", err)
	}
	if !errors.Is(err, ode.ErrStepBudget) {
		t.Fatalf("got %v, want wrapped ErrStepBudget", err)
	}
	if numErr.Partial == nil {
		t.Fatal("NumericalError carries no partial trajectory")
	}
	if numErr.Time >= span.End {
		t.Fatalf("failure time %v not before span end %v", numErr.Time, span.End)
	}
}

func TestRunRejectsIncompleteParameters(t *testing.T) {
	net := buildDefaultNetwork(t)
	d := NewDriver(net)
	p := DefaultParameters(net)
	delete(p, "k_deg_M5")

	if _, _, err := d.Run(p, nil, DefaultSpan(), nil); !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("got %v, want ErrMissingParameter", err)
	}
}

func TestUniformGrid(t *testing.T) {
	span := TimeSpan{Start: 0, End: 28}
	grid := UniformGrid(span, 280)

	if len(grid) != 281 {
		t.Fatalf("grid length = %d, want 281", len(grid))
	}
	if grid[0] != 0 || grid[len(grid)-1] != 28 {
		t.Fatalf("grid endpoints = %v, %v, want 0, 28", grid[0], grid[len(grid)-1])
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] <= grid[i-1] {
			t.Fatalf("grid not strictly increasing at %d", i)
		}
	}
}
