// Package solver is the Hindley-Milner constraint solver: union-find
// backed unification, rank-tracking for let-polymorphism, and an
// occurs check on the resulting sharing graph (spec.md §§2-4).
package solver

// Variable is a node identity in the type graph (spec.md §3, §9:
// "variables are identities, not values"). It indexes into the
// UnionFind arena; it is never dereferenced directly, always through
// Find.
type Variable int32

// noVariable is the sentinel for "no variable" (an empty Descriptor.Copy
// slot, an empty Record1 extension that was never set, etc).
const noVariable Variable = -1

// UnionFind is classic union-by-rank with path compression. The rank
// used here for disjoint-set balancing is internal bookkeeping and is
// NOT the polymorphism rank carried on a Descriptor — spec.md §4.1
// calls this out explicitly as two separate notions that happen to
// share a name.
type UnionFind struct {
	parent []Variable
	ufRank []uint8
	desc   []*Descriptor

	extraAppendable map[string]bool
	extraComparable map[string]bool
}

// NewUnionFind creates an empty arena.
func NewUnionFind() *UnionFind {
	return &UnionFind{}
}

// Configure extends the built-in super-kind membership (spec.md §4.3.4)
// with the App1 heads a host language's Config names, so the solver's
// hardcoded knowledge of String/List/Tuple does not have to enumerate
// every sequence-like type a caller defines.
func (uf *UnionFind) Configure(cfg *Config) {
	if cfg == nil {
		return
	}
	uf.extraAppendable = toHeadSet(cfg.AppendableHeads)
	uf.extraComparable = toHeadSet(cfg.ComparableHeads)
}

func toHeadSet(heads []string) map[string]bool {
	set := make(map[string]bool, len(heads))
	for _, h := range heads {
		set[NormalizeIdent(h)] = true
	}
	return set
}

// Fresh allocates a new singleton class with the given descriptor.
func (uf *UnionFind) Fresh(d *Descriptor) Variable {
	v := Variable(len(uf.parent))
	uf.parent = append(uf.parent, v)
	uf.ufRank = append(uf.ufRank, 0)
	uf.desc = append(uf.desc, d)
	return v
}

// Find returns the representative of v's class, compressing the path
// as it goes.
func (uf *UnionFind) Find(v Variable) Variable {
	root := v
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for v != root {
		next := uf.parent[v]
		uf.parent[v] = root
		v = next
	}
	return root
}

// Descriptor returns the shared descriptor of v's class (the root's).
func (uf *UnionFind) Descriptor(v Variable) *Descriptor {
	return uf.desc[uf.Find(v)]
}

// SetDescriptor overwrites the descriptor of v's class. Every member of
// the class observes the change, since they all share one root.
func (uf *UnionFind) SetDescriptor(v Variable, d *Descriptor) {
	uf.desc[uf.Find(v)] = d
}

// ModifyDescriptor applies f to v's class descriptor in place.
func (uf *UnionFind) ModifyDescriptor(v Variable, f func(*Descriptor)) {
	f(uf.desc[uf.Find(v)])
}

// Union merges a's and b's classes and installs d on the combined
// root. It is idempotent when a and b are already in the same class —
// the descriptor is still overwritten with d in that case, matching
// "merges ... and installs descriptor d" read literally, but no
// structural merge of the union-find trees happens twice.
//
// Unify (unify.go) is the only caller; nothing else in this package
// mutates class membership.
func (uf *UnionFind) Union(a, b Variable, d *Descriptor) Variable {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		uf.desc[ra] = d
		return ra
	}

	var root Variable
	switch {
	case uf.ufRank[ra] < uf.ufRank[rb]:
		uf.parent[ra] = rb
		root = rb
	case uf.ufRank[ra] > uf.ufRank[rb]:
		uf.parent[rb] = ra
		root = ra
	default:
		uf.parent[rb] = ra
		uf.ufRank[ra]++
		root = ra
	}
	uf.desc[root] = d
	return root
}

// Equivalent reports whether a and b denote the same class.
func (uf *UnionFind) Equivalent(a, b Variable) bool {
	return uf.Find(a) == uf.Find(b)
}

// Redundant reports whether v is not the root of its class — i.e. it
// has been unioned into another class and its own slot is stale.
func (uf *UnionFind) Redundant(v Variable) bool {
	return uf.Find(v) != v
}

// Len returns the number of variables ever allocated (including those
// later unioned away).
func (uf *UnionFind) Len() int {
	return len(uf.parent)
}
