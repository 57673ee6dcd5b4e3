package solver

// LocatedVariable pairs a type variable with the source region that
// introduced it, for the environment snapshot reported on SaveEnv
// (spec.md §3, §5 "savedEnv").
type LocatedVariable struct {
	Var    Variable
	Region Region
}

// Scheme is a let-bound group of mutually recursive definitions: a set
// of header variables, each generalized over the quantifiers produced
// by Generalize, guarded by the constraint that must hold for the
// headers' own right-hand sides (spec.md §3, §5 "Let").
//
// RigidQuantifiers and FlexQuantifiers partition a scheme's NO_RANK
// quantifiers by how they entered the graph: Rigid ones are the
// programmer's own type annotations (skolems) and must still be
// NO_RANK after Generalize runs, or solving reports an
// InternalInvariant (spec.md §4.4, §7); Flex ones were inferred.
type Scheme struct {
	RigidQuantifiers []Variable
	FlexQuantifiers  []Variable
	Constraint       Constraint
	Header           map[string]LocatedVariable
}

// ConstraintKind discriminates the variants of Constraint (spec.md §3).
type ConstraintKind uint8

const (
	CTrue ConstraintKind = iota
	CSaveEnv
	CEqual
	CAnd
	CLet
	CInstance
)

// Constraint is the tree the elaborator hands to Solve: True | SaveEnv |
// Equal(hint, region, t1, t2) | And([]Constraint) | Let([]Scheme, body) |
// Instance(region, name, term) (spec.md §3, §5).
type Constraint struct {
	Kind ConstraintKind

	// Equal
	Hint   Hint
	Region Region
	T1, T2 *SynTerm

	// And
	Conjuncts []Constraint

	// Let
	Schemes []Scheme
	Body    *Constraint

	// Instance
	InstanceName string
	InstanceTerm *SynTerm
}

// True is the trivially-satisfied constraint.
func True() Constraint { return Constraint{Kind: CTrue} }

// SaveEnv requests a snapshot of the current environment be recorded
// (spec.md §5).
func SaveEnv() Constraint { return Constraint{Kind: CSaveEnv} }

// Equal requests t1 and t2 be unified, tagging any resulting error with
// hint and region.
func Equal(hint Hint, region Region, t1, t2 *SynTerm) Constraint {
	return Constraint{Kind: CEqual, Hint: hint, Region: region, T1: t1, T2: t2}
}

// And conjoins a sequence of constraints, solved left to right.
func And(conjuncts ...Constraint) Constraint {
	return Constraint{Kind: CAnd, Conjuncts: conjuncts}
}

// Let opens a new rank, solves schemes' own constraints there,
// generalizes, binds each scheme's header into the environment, then
// solves body under those bindings (spec.md §4.4, §5).
func Let(schemes []Scheme, body Constraint) Constraint {
	return Constraint{Kind: CLet, Schemes: schemes, Body: &body}
}

// Instance requests a fresh instantiation of the scheme bound to name
// be unified against term — the use-site of a let-bound identifier
// (spec.md §4.4 "Instantiation", §5).
func Instance(region Region, name string, term *SynTerm) Constraint {
	return Constraint{Kind: CInstance, Region: region, InstanceName: name, InstanceTerm: term}
}
