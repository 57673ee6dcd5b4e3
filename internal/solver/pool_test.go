package solver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralizeTurnsLocalFlexIntoQuantifier(t *testing.T) {
	uf := NewUnionFind()
	marks := NewMarkCounter()
	oldPool := NewPool()
	youngPool := NextRankPool(oldPool)

	a := NewFlexVariable(uf, youngPool.Rank, SuperNone, "a")
	youngPool.Register(a)

	Generalize(uf, marks, oldPool, youngPool)

	assert.Equal(t, NoRank, uf.Descriptor(a).Rank)
}

func TestGeneralizePromotesOuterScopedVariable(t *testing.T) {
	uf := NewUnionFind()
	marks := NewMarkCounter()
	oldPool := NewPool()
	youngPool := NextRankPool(oldPool)

	// Allocated at the outer rank but (as can happen via sharing through
	// an enclosing function argument) registered in the young pool too.
	outer := NewFlexVariable(uf, oldPool.Rank, SuperNone, "outer")
	youngPool.Register(outer)

	Generalize(uf, marks, oldPool, youngPool)

	assert.Equal(t, oldPool.Rank, uf.Descriptor(outer).Rank, "outer-ranked variable must not be generalized")
	assert.Contains(t, oldPool.Inhabitants, outer)
}

func TestGeneralizeStructureRankIsMaxOfChildren(t *testing.T) {
	uf := NewUnionFind()
	marks := NewMarkCounter()
	oldPool := NewPool()
	youngPool := NextRankPool(oldPool)

	outer := NewFlexVariable(uf, oldPool.Rank, SuperNone, "outer")
	inner := NewFlexVariable(uf, youngPool.Rank, SuperNone, "inner")
	fn := uf.Fresh(structureDescriptor(youngPool.Rank, Term{Kind: TermFun, FunArg: outer, FunRes: inner}))
	youngPool.Register(outer)
	youngPool.Register(inner)
	youngPool.Register(fn)

	Generalize(uf, marks, oldPool, youngPool)

	// fn's adjusted rank is the max of its children's (outer at the old
	// rank, inner at the young rank), so fn stays at the young rank and is
	// generalized along with inner.
	assert.Equal(t, NoRank, uf.Descriptor(fn).Rank)
	assert.Equal(t, NoRank, uf.Descriptor(inner).Rank)
}

func TestMakeInstanceCopiesQuantifiersIndependently(t *testing.T) {
	uf := NewUnionFind()
	marks := NewMarkCounter()
	oldPool := NewPool()
	youngPool := NextRankPool(oldPool)

	a := NewFlexVariable(uf, youngPool.Rank, SuperNone, "a")
	fn := uf.Fresh(structureDescriptor(youngPool.Rank, Term{Kind: TermFun, FunArg: a, FunRes: a}))
	youngPool.Register(a)
	youngPool.Register(fn)

	Generalize(uf, marks, oldPool, youngPool)
	require.Equal(t, NoRank, uf.Descriptor(fn).Rank)

	inst1 := MakeInstance(uf, oldPool, fn)
	inst2 := MakeInstance(uf, oldPool, fn)

	assert.False(t, uf.Equivalent(inst1, inst2), "two instantiations must be independent copies")

	t1 := uf.Descriptor(inst1).Content.Term
	assert.Equal(t, t1.FunArg, t1.FunRes, "within one instance, arg and result stay the same fresh variable")
}

func TestMakeInstanceSharesNonQuantifiedParts(t *testing.T) {
	uf := NewUnionFind()
	marks := NewMarkCounter()
	oldPool := NewPool()
	youngPool := NextRankPool(oldPool)

	shared := NewRigidVariable(uf, oldPool.Rank, SuperNone, "shared")
	a := NewFlexVariable(uf, youngPool.Rank, SuperNone, "a")
	fn := uf.Fresh(structureDescriptor(youngPool.Rank, Term{Kind: TermFun, FunArg: a, FunRes: shared}))
	youngPool.Register(a)
	youngPool.Register(fn)

	Generalize(uf, marks, oldPool, youngPool)

	inst1 := MakeInstance(uf, oldPool, fn)
	inst2 := MakeInstance(uf, oldPool, fn)

	r1 := uf.Descriptor(inst1).Content.Term.FunRes
	r2 := uf.Descriptor(inst2).Content.Term.FunRes
	assert.True(t, uf.Equivalent(r1, shared))
	assert.True(t, uf.Equivalent(r2, shared))
}

func TestGeneralizeIsIdempotentOnRenderedType(t *testing.T) {
	uf := NewUnionFind()
	marks := NewMarkCounter()
	oldPool := NewPool()
	youngPool := NextRankPool(oldPool)

	a := NewFlexVariable(uf, youngPool.Rank, SuperNone, "a")
	fn := uf.Fresh(structureDescriptor(youngPool.Rank, Term{Kind: TermFun, FunArg: a, FunRes: a}))
	youngPool.Register(a)
	youngPool.Register(fn)

	Generalize(uf, marks, oldPool, youngPool)
	before := ToSrcType(uf, fn)

	// Re-running Generalize over the same (already-generalized) pool
	// must not change what it already decided: the NoRank classes land
	// in the NoRank bucket, whose rank is below youngPool.Rank, so they
	// are re-registered in oldPool with their rank and content unchanged.
	Generalize(uf, marks, oldPool, youngPool)
	after := ToSrcType(uf, fn)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("Generalize is not idempotent on the rendered type (-before +after):\n%s", diff)
	}
}

func TestMarkCounterNeverRepeats(t *testing.T) {
	m := NewMarkCounter()
	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		mark := m.Next()
		assert.False(t, seen[mark])
		seen[mark] = true
		assert.NotEqual(t, 0, mark, "0 is reserved for Descriptor's zero-valued Mark")
	}
}
