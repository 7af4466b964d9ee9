package model

// Pool parameter names. These are the fixed enzyme/lectin totals of the
// parameter set; every gated reaction references one of them.
const (
	PoolUGGT   = "UGGT"
	PoolGII    = "GII"
	PoolERManI = "ERManI"
	PoolEDEM1  = "EDEM1"
	PoolEDEM2  = "EDEM2"
	PoolEDEM3  = "EDEM3"
	PoolEREM   = "EREM"
	PoolCNX    = "CNX_total"
	PoolOS9    = "OS9_total"
)

// GlucosylationPair links a deglucosylated glycoform with its glucosylated
// counterpart. UGGT drives Free→Glucosylated, GII the reverse.
type GlucosylationPair struct {
	Free         string
	Glucosylated string
}

// TrimStep is one irreversible mannose-trimming edge, gated by the named
// enzyme pool.
type TrimStep struct {
	Enzyme string
	Source string
	Dest   string
}

// CleavageStep is one EREM edge: a glucosylated species loses its glucose and
// one mannose in a single transformation, yielding a deglucosylated product.
type CleavageStep struct {
	Source string
	Dest   string
}

// Topology is the declarative biological network definition. It names every
// glycoform and every allowed transformation; the registry and the reaction
// network are both derived from it. The topology never changes across
// scenarios — inhibition is expressed by zeroing rate constants.
type Topology struct {
	// Deglucosylated lists the free deglucosylated glycoforms in
	// state-vector order.
	Deglucosylated []string

	// Glucosylation lists the UGGT/GII substrate pairs. The glucosylated
	// names in these pairs are the full free-glucosylated species set.
	Glucosylation []GlucosylationPair

	// TrimSteps lists every mannose-trimming edge with its gating enzyme.
	TrimSteps []TrimStep

	// EREMCleavage lists the combined glucose+mannose removal edges.
	EREMCleavage []CleavageStep

	// CNXBinders lists the glucosylated species calnexin binds.
	CNXBinders []string

	// ERADSet lists the extensively trimmed deglucosylated species OS9
	// recognizes. Membership is explicit configuration, never inferred.
	ERADSet []string
}

// DefaultTopology returns the reference ER processing network.
//
// Naming: M9 carries nine mannoses; M8X has branch X trimmed once; M7XY has
// branches X and Y trimmed. Branch A carries the glucose acceptor, so only
// species with an intact branch A (M9, M8B, M8C, M7BC) can be reglucosylated
// by UGGT. Trimming is a lattice over the three arms:
//
//	M9 → M8A/M8B/M8C → M7AB/M7AC/M7BC → M6 → M5
//
// ERManI and EDEM2 work branch B, EDEM1 branch A, EDEM3 branch C plus the
// final M6→M5 step. EREM removes glucose together with the branch-A mannose
// in one cut, bypassing the GII+EDEM1 route.
func DefaultTopology() Topology {
	return Topology{
		Deglucosylated: []string{
			"M9", "M8A", "M8B", "M8C", "M7AB", "M7AC", "M7BC", "M6", "M5",
		},
		Glucosylation: []GlucosylationPair{
			{Free: "M9", Glucosylated: "G1M9"},
			{Free: "M8B", Glucosylated: "G1M8B"},
			{Free: "M8C", Glucosylated: "G1M8C"},
			{Free: "M7BC", Glucosylated: "G1M7BC"},
		},
		TrimSteps: []TrimStep{
			// Branch A — EDEM1.
			{Enzyme: PoolEDEM1, Source: "M9", Dest: "M8A"},
			{Enzyme: PoolEDEM1, Source: "M8B", Dest: "M7AB"},
			{Enzyme: PoolEDEM1, Source: "M8C", Dest: "M7AC"},
			{Enzyme: PoolEDEM1, Source: "M7BC", Dest: "M6"},
			// Branch B — ERManI and EDEM2 act in parallel on each edge.
			{Enzyme: PoolERManI, Source: "M9", Dest: "M8B"},
			{Enzyme: PoolERManI, Source: "M8A", Dest: "M7AB"},
			{Enzyme: PoolERManI, Source: "M8C", Dest: "M7BC"},
			{Enzyme: PoolERManI, Source: "M7AC", Dest: "M6"},
			{Enzyme: PoolEDEM2, Source: "M9", Dest: "M8B"},
			{Enzyme: PoolEDEM2, Source: "M8A", Dest: "M7AB"},
			{Enzyme: PoolEDEM2, Source: "M8C", Dest: "M7BC"},
			{Enzyme: PoolEDEM2, Source: "M7AC", Dest: "M6"},
			// Branch C — EDEM3, including the terminal M6→M5 trim.
			{Enzyme: PoolEDEM3, Source: "M9", Dest: "M8C"},
			{Enzyme: PoolEDEM3, Source: "M8A", Dest: "M7AC"},
			{Enzyme: PoolEDEM3, Source: "M8B", Dest: "M7BC"},
			{Enzyme: PoolEDEM3, Source: "M7AB", Dest: "M6"},
			{Enzyme: PoolEDEM3, Source: "M6", Dest: "M5"},
		},
		EREMCleavage: []CleavageStep{
			{Source: "G1M9", Dest: "M8A"},
			{Source: "G1M8B", Dest: "M7AB"},
			{Source: "G1M8C", Dest: "M7AC"},
			{Source: "G1M7BC", Dest: "M6"},
		},
		CNXBinders: []string{"G1M9", "G1M8B", "G1M8C", "G1M7BC"},
		ERADSet:    []string{"M8C", "M7AC", "M7BC", "M6", "M5"},
	}
}
