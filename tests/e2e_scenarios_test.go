package tests

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/core"
	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/model"
)

func buildNetwork(t *testing.T) *core.Network {
	t.Helper()
	topo := model.DefaultTopology()
	reg, err := core.BuildRegistry(topo)
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	net, err := core.BuildNetwork(reg, topo)
	if err != nil {
		t.Fatalf("BuildNetwork: %v", err)
	}
	return net
}

func runBaseline(t *testing.T, net *core.Network, overrides map[string]float64) *core.Trajectory {
	t.Helper()
	baseline := core.DefaultParameters(net)
	p, err := core.Override(baseline, overrides)
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	d := core.NewDriver(net)
	span := core.DefaultSpan()
	tr, _, err := d.Run(p, nil, span, core.UniformGrid(span, 112))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return tr
}

func zeroGroup(t *testing.T, net *core.Network, groups ...string) map[string]float64 {
	t.Helper()
	out := map[string]float64{}
	for _, g := range groups {
		keys, err := net.GroupKeys(g)
		if err != nil {
			t.Fatalf("GroupKeys(%q): %v", g, err)
		}
		for _, k := range keys {
			out[k] = 0
		}
	}
	return out
}

func TestTotalMassConservedIncludingSinks(t *testing.T) {
	net := buildNetwork(t)
	tr := runBaseline(t, net, nil)

	for i, state := range tr.States {
		if total := floats.Sum(state); math.Abs(total-1.0) > 1e-6 {
			t.Fatalf("total mass at t=%v is %v, want 1.0", tr.Times[i], total)
		}
	}
}

func TestClosedSystemHoldsMassWithoutSinks(t *testing.T) {
	net := buildNetwork(t)
	tr := runBaseline(t, net, zeroGroup(t, net, "secretion", "degradation"))
	reg := net.Registry()

	secIdx, err := reg.Index(core.SpeciesSecreted)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	degIdx, err := reg.Index(core.SpeciesDegraded)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	final := tr.States[len(tr.States)-1]
	if final[secIdx] != 0 || final[degIdx] != 0 {
		t.Fatalf("sinks accumulated with exits disabled: secreted=%v degraded=%v",
			final[secIdx], final[degIdx])
	}
	if total := floats.Sum(final); math.Abs(total-1.0) > 1e-6 {
		t.Fatalf("closed-system mass drifted to %v", total)
	}
}

func TestLectinPoolsNeverOverdrawn(t *testing.T) {
	net := buildNetwork(t)
	tr := runBaseline(t, net, nil)
	reg := net.Registry()
	p := core.DefaultParameters(net)

	for i, state := range tr.States {
		cnxBound, os9Bound := 0.0, 0.0
		for _, sp := range reg.ByCategory(model.CategoryCNXBound) {
			cnxBound += state[sp.Index]
		}
		for _, sp := range reg.ByCategory(model.CategoryOS9Bound) {
			os9Bound += state[sp.Index]
		}
		if cnxBound > p[model.PoolCNX]+1e-6 {
			t.Fatalf("CNX overdrawn at t=%v: bound %v of %v", tr.Times[i], cnxBound, p[model.PoolCNX])
		}
		if os9Bound > p[model.PoolOS9]+1e-6 {
			t.Fatalf("OS9 overdrawn at t=%v: bound %v of %v", tr.Times[i], os9Bound, p[model.PoolOS9])
		}
	}
}

func TestSinksAccumulateMonotonically(t *testing.T) {
	net := buildNetwork(t)
	tr := runBaseline(t, net, nil)
	reg := net.Registry()

	for _, name := range []string{core.SpeciesSecreted, core.SpeciesDegraded} {
		idx, err := reg.Index(name)
		if err != nil {
			t.Fatalf("Index: %v", err)
		}
		series := tr.At(idx)
		for i := 1; i < len(series); i++ {
			if series[i] < series[i-1]-1e-7 {
				t.Fatalf("%s decreased at t=%v", name, tr.Times[i])
			}
		}
	}
}

func TestUGGTInhibitionBlocksGlucosylation(t *testing.T) {
	net := buildNetwork(t)
	tr := runBaseline(t, net, zeroGroup(t, net, "uggt"))
	reg := net.Registry()

	// Starting from deglucosylated M9 with UGGT silenced, no glucosylated
	// species or calnexin complex can ever form.
	for _, cat := range []model.Category{model.CategoryFreeGlucosylated, model.CategoryCNXBound} {
		for _, sp := range reg.ByCategory(cat) {
			for i, state := range tr.States {
				if state[sp.Index] != 0 {
					t.Fatalf("%s = %v at t=%v, want exactly 0 with UGGT inhibited",
						sp.Name, state[sp.Index], tr.Times[i])
				}
			}
		}
	}
}

func TestMannosidaseInhibitionFreezesTrimming(t *testing.T) {
	net := buildNetwork(t)
	tr := runBaseline(t, net, zeroGroup(t, net, "mannosidases"))
	reg := net.Registry()

	reachable := map[string]bool{}
	for _, name := range []string{"M9", "G1M9", core.ComplexName("CNX", "G1M9"), core.SpeciesSecreted} {
		reachable[name] = true
	}
	for _, sp := range reg.Species() {
		if reachable[sp.Name] {
			continue
		}
		for i, state := range tr.States {
			if state[sp.Index] != 0 {
				t.Fatalf("%s = %v at t=%v, want exactly 0 with all mannose removal inhibited",
					sp.Name, state[sp.Index], tr.Times[i])
			}
		}
	}

	// With ERAD unreachable, nothing is ever degraded.
	degIdx, err := reg.Index(core.SpeciesDegraded)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if final := tr.States[len(tr.States)-1][degIdx]; final != 0 {
		t.Fatalf("Degraded = %v, want exactly 0", final)
	}
}

func TestZeroedFamilyMatchesRemovedFamily(t *testing.T) {
	// Zeroing every rate constant of a reaction family must reproduce the
	// trajectory of a network built without that family at all.
	topo := model.DefaultTopology()
	reg, err := core.BuildRegistry(topo)
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	full, err := core.BuildNetwork(reg, topo)
	if err != nil {
		t.Fatalf("BuildNetwork: %v", err)
	}

	pruned := topo
	pruned.EREMCleavage = nil
	without, err := core.BuildNetwork(reg, pruned)
	if err != nil {
		t.Fatalf("BuildNetwork without cleavage: %v", err)
	}

	span := core.TimeSpan{Start: 0, End: 6}
	grid := core.UniformGrid(span, 60)

	pFull, err := core.Override(core.DefaultParameters(full), zeroGroup(t, full, "erem"))
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	trFull, _, err := core.NewDriver(full).Run(pFull, nil, span, grid)
	if err != nil {
		t.Fatalf("Run full network: %v", err)
	}
	trPruned, _, err := core.NewDriver(without).Run(core.DefaultParameters(without), nil, span, grid)
	if err != nil {
		t.Fatalf("Run pruned network: %v", err)
	}

	for i := range trFull.States {
		for j := range trFull.States[i] {
			if diff := math.Abs(trFull.States[i][j] - trPruned.States[i][j]); diff > 1e-9 {
				t.Fatalf("species %s diverges at t=%v: |%v - %v| = %v",
					reg.Name(j), trFull.Times[i],
					trFull.States[i][j], trPruned.States[i][j], diff)
			}
		}
	}
}

func TestBaselineQualitativeShape(t *testing.T) {
	net := buildNetwork(t)
	tr := runBaseline(t, net, nil)
	reg := net.Registry()

	m9, err := reg.Index("M9")
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	series := tr.At(m9)
	if series[0] != 1.0 {
		t.Fatalf("M9(0) = %v, want 1.0", series[0])
	}
	final := series[len(series)-1]
	if final >= 0.1 {
		t.Fatalf("M9(28h) = %v, want decay well below the initial 1.0", final)
	}

	secIdx, err := reg.Index(core.SpeciesSecreted)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	degIdx, err := reg.Index(core.SpeciesDegraded)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	last := tr.States[len(tr.States)-1]
	if last[secIdx] <= 0 || last[degIdx] <= 0 {
		t.Fatalf("sinks empty at 28h: secreted=%v degraded=%v", last[secIdx], last[degIdx])
	}
}

func TestScenarioComparisonEndToEnd(t *testing.T) {
	net := buildNetwork(t)
	baseline := core.DefaultParameters(net)

	orch := core.NewOrchestrator(core.NewDriver(net))
	span := core.TimeSpan{Start: 0, End: 8}
	orch.Span = span
	orch.OutputTimes = core.UniformGrid(span, 80)

	scenarios := []core.Scenario{
		{Label: "uggt-inhibited", Overrides: zeroGroup(t, net, "uggt")},
		{Label: "cnx-depleted", Overrides: map[string]float64{model.PoolCNX: 0}},
	}
	results := orch.Compare(context.Background(), baseline, scenarios)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("run %q failed: %v", res.Label, res.Err)
		}
	}

	// Without reglucosylation the calnexin cycle cannot retain protein, so
	// secretion runs ahead of the baseline.
	baseSec := results[0].Aggregates.Secreted
	uggtSec := results[1].Aggregates.Secreted
	last := len(baseSec) - 1
	if uggtSec[last] <= baseSec[last] {
		t.Fatalf("secretion with UGGT inhibited (%v) not above baseline (%v)",
			uggtSec[last], baseSec[last])
	}

	// The baseline parameters must be untouched by either perturbation.
	if baseline[model.PoolCNX] != 2.0 {
		t.Fatalf("baseline CNX_total mutated: %v", baseline[model.PoolCNX])
	}
	for _, k := range net.EnzymeRateKeys(model.PoolUGGT) {
		if baseline[k] == 0 {
			t.Fatalf("baseline %q zeroed by scenario override", k)
		}
	}
}
