package core

import (
	"fmt"
	"sort"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/model"
)

// lectinID distinguishes the two conserved binding pools.
type lectinID int

const (
	lectinNone lectinID = iota
	lectinCNX
	lectinOS9
)

// compiledReaction is a Reaction with species names resolved to state-vector
// indices, ready for flux evaluation.
type compiledReaction struct {
	kind    model.ReactionKind
	src     int
	dst     int
	enzyme  string // pool parameter gating the rate, "" if uncatalyzed
	rateKey string
	lectin  lectinID // set for binding/unbinding reactions
}

// Network is the compiled reaction list plus the complex index sets needed
// for the lectin conservation constraints. The topology is scenario-invariant:
// only the ParameterSet values the reactions reference change between runs.
type Network struct {
	reg       *Registry
	reactions []compiledReaction
	decl      []model.Reaction

	cnxComplexes []int
	os9Complexes []int
}

// Rate-constant key construction. Keys are deterministic functions of the
// topology so the full key space is statically enumerable.
func glucosylationKey(substrate string) string   { return "k_uggt_" + substrate }
func deglucosylationKey(substrate string) string { return "k_gii_" + substrate }
func trimKey(enzyme, src, dst string) string     { return "k_" + enzyme + "_" + src + "_" + dst }
func cleavageKey(substrate string) string        { return "k_EREM_" + substrate }
func bindKey(lectin, glycoform string) string    { return "k_" + lectin + "_on_" + glycoform }
func unbindKey(lectin, glycoform string) string  { return "k_" + lectin + "_off_" + glycoform }
func secretionKey(species string) string         { return "k_sec_" + species }
func degradationKey(glycoform string) string     { return "k_deg_" + glycoform }

// BuildNetwork compiles the topology into the ordered reaction list. Every
// species reference is resolved against the registry; an unresolvable name is
// a configuration error surfaced before any integration.
func BuildNetwork(reg *Registry, topo model.Topology) (*Network, error) {
	n := &Network{reg: reg}

	addRxn := func(kind model.ReactionKind, src, dst, enzyme, rateKey string, lectin lectinID) error {
		srcIdx, err := reg.Index(src)
		if err != nil {
			return fmt.Errorf("%s reaction: %w", kind, err)
		}
		dstIdx, err := reg.Index(dst)
		if err != nil {
			return fmt.Errorf("%s reaction: %w", kind, err)
		}
		n.reactions = append(n.reactions, compiledReaction{
			kind: kind, src: srcIdx, dst: dstIdx,
			enzyme: enzyme, rateKey: rateKey, lectin: lectin,
		})
		n.decl = append(n.decl, model.Reaction{
			Kind: kind, Source: src, Dest: dst, Enzyme: enzyme, RateKey: rateKey,
		})
		return nil
	}

	// Glucosylation (UGGT) and deglucosylation (GII), one pair per substrate.
	for _, pair := range topo.Glucosylation {
		if err := addRxn(model.KindGlucosylation, pair.Free, pair.Glucosylated,
			model.PoolUGGT, glucosylationKey(pair.Free), lectinNone); err != nil {
			return nil, err
		}
		if err := addRxn(model.KindDeglucosylation, pair.Glucosylated, pair.Free,
			model.PoolGII, deglucosylationKey(pair.Glucosylated), lectinNone); err != nil {
			return nil, err
		}
	}

	// Mannose trimming, one irreversible edge per step.
	for _, step := range topo.TrimSteps {
		if err := addRxn(model.KindTrimming, step.Source, step.Dest,
			step.Enzyme, trimKey(step.Enzyme, step.Source, step.Dest), lectinNone); err != nil {
			return nil, err
		}
	}

	// EREM cleavage: glucose + branch-A mannose removed in one transformation.
	for _, step := range topo.EREMCleavage {
		if err := addRxn(model.KindEREMCleavage, step.Source, step.Dest,
			model.PoolEREM, cleavageKey(step.Source), lectinNone); err != nil {
			return nil, err
		}
	}

	// CNX binding/unbinding over the glucosylated set.
	for _, name := range topo.CNXBinders {
		complex := ComplexName("CNX", name)
		if err := addRxn(model.KindLectinBinding, name, complex,
			model.PoolCNX, bindKey("cnx", name), lectinCNX); err != nil {
			return nil, err
		}
		if err := addRxn(model.KindLectinUnbinding, complex, name,
			"", unbindKey("cnx", name), lectinCNX); err != nil {
			return nil, err
		}
		idx, err := reg.Index(complex)
		if err != nil {
			return nil, err
		}
		n.cnxComplexes = append(n.cnxComplexes, idx)
	}

	// OS9 binding/unbinding over the ERAD-recognized set.
	for _, name := range topo.ERADSet {
		complex := ComplexName("OS9", name)
		if err := addRxn(model.KindLectinBinding, name, complex,
			model.PoolOS9, bindKey("os9", name), lectinOS9); err != nil {
			return nil, err
		}
		if err := addRxn(model.KindLectinUnbinding, complex, name,
			"", unbindKey("os9", name), lectinOS9); err != nil {
			return nil, err
		}
		idx, err := reg.Index(complex)
		if err != nil {
			return nil, err
		}
		n.os9Complexes = append(n.os9Complexes, idx)
	}

	// Secretion: every free species exits to the Secreted sink.
	for _, sp := range reg.FreeSpecies() {
		if err := addRxn(model.KindSecretion, sp.Name, SpeciesSecreted,
			"", secretionKey(sp.Name), lectinNone); err != nil {
			return nil, err
		}
	}

	// Degradation: every OS9-bound complex exits to the Degraded sink.
	for _, name := range topo.ERADSet {
		if err := addRxn(model.KindDegradation, ComplexName("OS9", name), SpeciesDegraded,
			"", degradationKey(name), lectinOS9); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// Registry returns the species registry the network was compiled against.
func (n *Network) Registry() *Registry { return n.reg }

// Reactions returns the declarative reaction list in evaluation order.
// The slice is a copy.
func (n *Network) Reactions() []model.Reaction {
	out := make([]model.Reaction, len(n.decl))
	copy(out, n.decl)
	return out
}

// RateKeys returns every rate-constant key the network references, sorted.
func (n *Network) RateKeys() []string {
	seen := make(map[string]struct{}, len(n.reactions))
	var keys []string
	for _, rxn := range n.reactions {
		if _, ok := seen[rxn.rateKey]; ok {
			continue
		}
		seen[rxn.rateKey] = struct{}{}
		keys = append(keys, rxn.rateKey)
	}
	sort.Strings(keys)
	return keys
}

// EnzymeRateKeys returns the rate-constant keys of every reaction gated by
// the named pool. This is the explicit group-selection helper scenario
// definitions use instead of substring matching over key names.
func (n *Network) EnzymeRateKeys(pool string) []string {
	var keys []string
	for _, rxn := range n.reactions {
		if rxn.enzyme == pool {
			keys = append(keys, rxn.rateKey)
		}
	}
	sort.Strings(keys)
	return keys
}

// KindRateKeys returns the rate-constant keys of every reaction of the given
// kinds.
func (n *Network) KindRateKeys(kinds ...model.ReactionKind) []string {
	want := make(map[model.ReactionKind]struct{}, len(kinds))
	for _, k := range kinds {
		want[k] = struct{}{}
	}
	seen := make(map[string]struct{})
	var keys []string
	for _, rxn := range n.reactions {
		if _, ok := want[rxn.kind]; !ok {
			continue
		}
		if _, ok := seen[rxn.rateKey]; ok {
			continue
		}
		seen[rxn.rateKey] = struct{}{}
		keys = append(keys, rxn.rateKey)
	}
	sort.Strings(keys)
	return keys
}

// MannosidaseRateKeys returns the rate constants of every mannose-removing
// reaction: the three trimming branches plus EREM cleavage.
func (n *Network) MannosidaseRateKeys() []string {
	return n.KindRateKeys(model.KindTrimming, model.KindEREMCleavage)
}

// pools returns the distinct pool parameters the network references,
// including the lectin totals.
func (n *Network) pools() []string {
	seen := make(map[string]struct{})
	var pools []string
	for _, rxn := range n.reactions {
		if rxn.enzyme == "" {
			continue
		}
		if _, ok := seen[rxn.enzyme]; ok {
			continue
		}
		seen[rxn.enzyme] = struct{}{}
		pools = append(pools, rxn.enzyme)
	}
	sort.Strings(pools)
	return pools
}
