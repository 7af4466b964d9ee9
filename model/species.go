package model

// Category classifies a tracked molecular pool.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryFreeGlucosylated
	CategoryFreeDeglucosylated
	CategoryCNXBound
	CategoryOS9Bound
	CategorySecretedSink
	CategoryDegradedSink
)

// String returns a short human-readable tag for the category.
func (c Category) String() string {
	switch c {
	case CategoryFreeGlucosylated:
		return "free-glucosylated"
	case CategoryFreeDeglucosylated:
		return "free-deglucosylated"
	case CategoryCNXBound:
		return "cnx-bound"
	case CategoryOS9Bound:
		return "os9-bound"
	case CategorySecretedSink:
		return "secreted-sink"
	case CategoryDegradedSink:
		return "degraded-sink"
	default:
		return "unknown"
	}
}

// IsSink reports whether the category is one of the cumulative sink pools.
func (c Category) IsSink() bool {
	return c == CategorySecretedSink || c == CategoryDegradedSink
}

// Species is one tracked molecular pool: a free glycoform, a lectin-bound
// complex, or a cumulative sink. Index is the species' position in the state
// vector and is assigned by the registry at build time.
type Species struct {
	Name     string
	Category Category
	Index    int
}

// ReactionKind tags a reaction with its family. The rate law follows from
// the kind: enzyme-gated kinds are second-order in (pool, substrate), lectin
// binding is second-order in (free pool, substrate), everything else is
// first-order in the substrate.
type ReactionKind int

const (
	KindGlucosylation ReactionKind = iota
	KindDeglucosylation
	KindTrimming
	KindEREMCleavage
	KindLectinBinding
	KindLectinUnbinding
	KindSecretion
	KindDegradation
)

func (k ReactionKind) String() string {
	switch k {
	case KindGlucosylation:
		return "glucosylation"
	case KindDeglucosylation:
		return "deglucosylation"
	case KindTrimming:
		return "trimming"
	case KindEREMCleavage:
		return "erem-cleavage"
	case KindLectinBinding:
		return "lectin-binding"
	case KindLectinUnbinding:
		return "lectin-unbinding"
	case KindSecretion:
		return "secretion"
	case KindDegradation:
		return "degradation"
	default:
		return "unknown"
	}
}

// Reaction is the declarative record of one allowed transformation. Species
// are referenced by name; the network builder resolves them to state-vector
// indices and fails on names the registry does not know.
type Reaction struct {
	Kind   ReactionKind
	Source string
	Dest   string

	// Enzyme names the pool-size parameter gating the rate ("" for
	// uncatalyzed first-order steps such as unbinding and secretion).
	Enzyme string

	// RateKey is the rate-constant key looked up in the ParameterSet.
	RateKey string
}
