package solver

import "sort"

// Pool is the set of variables introduced at a given rank — all
// variables live in exactly one pool at a time (spec.md §3, §4.4).
type Pool struct {
	Rank        int
	Inhabitants []Variable
}

// NewPool creates the solver's initial, outermost pool.
func NewPool() *Pool {
	return &Pool{Rank: OutermostRank}
}

// Register adds v to the pool's inhabitants. It does not touch v's
// descriptor: v keeps the rank it was allocated with, which is not set
// to the pool's rank here.
func (p *Pool) Register(v Variable) {
	p.Inhabitants = append(p.Inhabitants, v)
}

// NextRankPool returns a new pool one level deeper than p, for opening
// a let-scheme (spec.md §4.4, "Opening a let").
func NextRankPool(p *Pool) *Pool {
	return &Pool{Rank: p.Rank + 1}
}

// MarkCounter is the process-wide (here: per-Solver) monotonically
// increasing mark source described in spec.md §9: it replaces
// per-traversal cleanup by handing out integers that are never reused,
// so a descriptor's stale Mark from an earlier traversal can never be
// confused with the current one.
type MarkCounter struct {
	next int
}

// NewMarkCounter starts a fresh sequence. 0 is reserved as "never
// marked" (the zero value of Descriptor.Mark), so marks start at 1.
func NewMarkCounter() *MarkCounter {
	return &MarkCounter{next: 1}
}

// Next returns a mark guaranteed distinct from every mark previously
// handed out by this counter.
func (m *MarkCounter) Next() int {
	v := m.next
	m.next++
	return v
}

// Generalize promotes variables that belong semantically to an outer
// pool, and turns the remaining flex variables of youngPool into
// generalizable quantifiers, per spec.md §4.4.
func Generalize(uf *UnionFind, marks *MarkCounter, oldPool, youngPool *Pool) {
	youngMark := marks.Next()

	rankBuckets := map[int][]Variable{}
	seen := map[Variable]bool{}
	for _, v := range youngPool.Inhabitants {
		root := uf.Find(v)
		if seen[root] {
			continue
		}
		seen[root] = true
		d := uf.desc[root]
		d.Mark = youngMark
		rankBuckets[d.Rank] = append(rankBuckets[d.Rank], root)
	}

	ranks := make([]int, 0, len(rankBuckets))
	for r := range rankBuckets {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	visitedMark := marks.Next()
	for _, bucketRank := range ranks {
		for _, v := range rankBuckets[bucketRank] {
			adjustRank(uf, youngMark, visitedMark, bucketRank, v)
		}
	}

	for _, bucketRank := range ranks {
		for _, v := range rankBuckets[bucketRank] {
			if uf.Redundant(v) {
				continue
			}
			root := uf.Find(v)
			d := uf.desc[root]

			if bucketRank < youngPool.Rank {
				oldPool.Register(root)
				continue
			}
			// bucketRank == youngPool.Rank: either this class still
			// belongs to an outer scope (its adjusted rank says so) or
			// it is truly local and becomes a quantifier.
			if d.Rank < youngPool.Rank {
				oldPool.Register(root)
			} else {
				d.Rank = NoRank
			}
		}
	}
}

// adjustRank lowers a class's rank so ranks never increase along
// reachability (spec.md §4.4, step 2). It returns the (possibly
// updated) rank of v's class.
func adjustRank(uf *UnionFind, youngMark, visitedMark, bucketRank int, v Variable) int {
	root := uf.Find(v)
	d := uf.desc[root]

	switch d.Mark {
	case youngMark:
		d.Mark = visitedMark
		rank := adjustRankContent(uf, youngMark, visitedMark, bucketRank, d.Content)
		d.Rank = rank
		return rank
	case visitedMark:
		return d.Rank
	default:
		rank := bucketRank
		if d.Rank < rank {
			rank = d.Rank
		}
		d.Mark = visitedMark
		d.Rank = rank
		return rank
	}
}

func adjustRankContent(uf *UnionFind, youngMark, visitedMark, bucketRank int, c Content) int {
	switch c.Kind {
	case KindError, KindFlex, KindRigid:
		return bucketRank

	case KindAlias:
		max := adjustRank(uf, youngMark, visitedMark, bucketRank, c.RealVar)
		// Resolved Open Question (spec.md §9): recurse through both the
		// alias arguments and the real expansion.
		for _, a := range c.AliasArgs {
			if r := adjustRank(uf, youngMark, visitedMark, bucketRank, a.Var); r > max {
				max = r
			}
		}
		return max

	case KindStructure:
		return adjustRankTerm(uf, youngMark, visitedMark, bucketRank, c.Term)

	default:
		panic("solver: unknown content kind")
	}
}

func adjustRankTerm(uf *UnionFind, youngMark, visitedMark, bucketRank int, t Term) int {
	switch t.Kind {
	case TermApp:
		if len(t.Args) == 0 {
			return bucketRank
		}
		max := adjustRank(uf, youngMark, visitedMark, bucketRank, t.Args[0])
		for _, a := range t.Args[1:] {
			if r := adjustRank(uf, youngMark, visitedMark, bucketRank, a); r > max {
				max = r
			}
		}
		return max

	case TermFun:
		ra := adjustRank(uf, youngMark, visitedMark, bucketRank, t.FunArg)
		rr := adjustRank(uf, youngMark, visitedMark, bucketRank, t.FunRes)
		if ra > rr {
			return ra
		}
		return rr

	case TermEmptyRecord:
		return OutermostRank

	case TermRecord:
		max := adjustRank(uf, youngMark, visitedMark, bucketRank, t.Ext)
		for _, fv := range t.Fields {
			if r := adjustRank(uf, youngMark, visitedMark, bucketRank, fv); r > max {
				max = r
			}
		}
		return max

	default:
		panic("solver: unknown term kind")
	}
}

// MakeInstance produces a fresh copy of a generalized scheme variable
// (spec.md §4.4, "Instantiation"): every reachable class with
// rank == NoRank gets an independent fresh variable at pool's rank;
// everything else is shared with the original.
func MakeInstance(uf *UnionFind, pool *Pool, v Variable) Variable {
	copy := instanceCopy(uf, pool, v)
	clearCopies(uf, v, map[Variable]bool{})
	return copy
}

func instanceCopy(uf *UnionFind, pool *Pool, v Variable) Variable {
	root := uf.Find(v)
	d := uf.desc[root]

	if d.Rank != NoRank {
		return root
	}
	if d.Copy != noVariable {
		return d.Copy
	}

	switch d.Content.Kind {
	case KindFlex, KindRigid:
		// Instantiation always yields a fresh, freely-unifiable
		// variable, whether the quantifier was originally Flex or a
		// Rigid skolem — independent occurrences must be free to
		// receive distinct types at each use site.
		fresh := uf.Fresh(flexDescriptor(pool.Rank, d.Content.Super, ""))
		d.Copy = fresh
		pool.Register(fresh)
		return fresh

	case KindError:
		return root

	case KindAlias:
		fresh := uf.Fresh(flexDescriptor(pool.Rank, SuperNone, ""))
		d.Copy = fresh
		pool.Register(fresh)

		args := make([]AliasArg, len(d.Content.AliasArgs))
		for i, a := range d.Content.AliasArgs {
			args[i] = AliasArg{Name: a.Name, Var: instanceCopy(uf, pool, a.Var)}
		}
		real := instanceCopy(uf, pool, d.Content.RealVar)
		uf.SetDescriptor(fresh, aliasDescriptor(pool.Rank, d.Content.AliasName, args, real))
		return fresh

	case KindStructure:
		fresh := uf.Fresh(flexDescriptor(pool.Rank, SuperNone, ""))
		d.Copy = fresh
		pool.Register(fresh)

		term := instanceCopyTerm(uf, pool, d.Content.Term)
		uf.SetDescriptor(fresh, structureDescriptor(pool.Rank, term))
		return fresh

	default:
		panic("solver: unknown content kind")
	}
}

func instanceCopyTerm(uf *UnionFind, pool *Pool, t Term) Term {
	switch t.Kind {
	case TermApp:
		args := make([]Variable, len(t.Args))
		for i, a := range t.Args {
			args[i] = instanceCopy(uf, pool, a)
		}
		return Term{Kind: TermApp, Head: t.Head, Args: args}

	case TermFun:
		return Term{
			Kind:   TermFun,
			FunArg: instanceCopy(uf, pool, t.FunArg),
			FunRes: instanceCopy(uf, pool, t.FunRes),
		}

	case TermEmptyRecord:
		return Term{Kind: TermEmptyRecord}

	case TermRecord:
		fields := make(map[string]Variable, len(t.Fields))
		for name, fv := range t.Fields {
			fields[name] = instanceCopy(uf, pool, fv)
		}
		return Term{Kind: TermRecord, Fields: fields, Ext: instanceCopy(uf, pool, t.Ext)}

	default:
		panic("solver: unknown term kind")
	}
}

func clearCopies(uf *UnionFind, v Variable, visited map[Variable]bool) {
	root := uf.Find(v)
	if visited[root] {
		return
	}
	d := uf.desc[root]
	if d.Rank != NoRank || d.Copy == noVariable {
		return
	}
	visited[root] = true
	d.Copy = noVariable

	switch d.Content.Kind {
	case KindAlias:
		for _, a := range d.Content.AliasArgs {
			clearCopies(uf, a.Var, visited)
		}
		clearCopies(uf, d.Content.RealVar, visited)
	case KindStructure:
		clearCopiesTerm(uf, d.Content.Term, visited)
	}
}

func clearCopiesTerm(uf *UnionFind, t Term, visited map[Variable]bool) {
	switch t.Kind {
	case TermApp:
		for _, a := range t.Args {
			clearCopies(uf, a, visited)
		}
	case TermFun:
		clearCopies(uf, t.FunArg, visited)
		clearCopies(uf, t.FunRes, visited)
	case TermRecord:
		clearCopies(uf, t.Ext, visited)
		for _, fv := range t.Fields {
			clearCopies(uf, fv, visited)
		}
	}
}
