package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogenesoftoronto/hmsolver/internal/types"
)

func TestUnifyFlexFlexMergesSuperKind(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	a := NewFlexVariable(uf, pool.Rank, SuperNumber, "a")
	b := NewFlexVariable(uf, pool.Rank, SuperComparable, "b")

	errs := Unify(uf, pool, "merge", Region{}, a, b)
	require.Empty(t, errs)
	assert.Equal(t, SuperNumber, uf.Descriptor(a).Content.Super)
}

func TestUnifyFlexFlexIncompatibleSuperKindIsBadKind(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	a := NewFlexVariable(uf, pool.Rank, SuperNumber, "a")
	b := NewFlexVariable(uf, pool.Rank, SuperAppendable, "b")

	errs := Unify(uf, pool, "merge", Region{}, a, b)
	require.Len(t, errs, 1)
	assert.Equal(t, types.BadKindError, errs[0].Kind)
	assert.Equal(t, KindError, uf.Descriptor(a).Content.Kind)
}

func TestUnifyRigidRigidDistinctAlwaysFails(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	r1 := NewRigidVariable(uf, pool.Rank, SuperNone, "a")
	r2 := NewRigidVariable(uf, pool.Rank, SuperNone, "a")

	errs := Unify(uf, pool, "skolem", Region{}, r1, r2)
	require.Len(t, errs, 1)
	assert.Equal(t, types.MismatchError, errs[0].Kind)
}

func TestUnifyFlexRigidAdoptsRigidIdentity(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	a := NewFlexVariable(uf, pool.Rank, SuperNone, "a")
	r := NewRigidVariable(uf, pool.Rank, SuperNone, "skolem")

	errs := Unify(uf, pool, "bind", Region{}, a, r)
	require.Empty(t, errs)
	assert.Equal(t, KindRigid, uf.Descriptor(a).Content.Kind)
	assert.Equal(t, "skolem", uf.Descriptor(a).Content.Name)
}

func TestUnifyStructureArgMismatchFlipsParentToError(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	v1 := Flatten(uf, pool, appT("List", appT("Int")))
	v2 := Flatten(uf, pool, appT("List", appT("String")))

	errs := Unify(uf, pool, "arg", Region{}, v1, v2)
	require.Len(t, errs, 1)
	assert.Equal(t, KindError, uf.Descriptor(v1).Content.Kind, "error in a nested arg must flip the whole parent to Error")
}

func TestUnifyAliasAliasSameNameUnifiesArgsAndExpansion(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	arg1 := Flatten(uf, pool, appT("Int"))
	real1 := Flatten(uf, pool, appT("Int"))
	alias1 := uf.Fresh(aliasDescriptor(pool.Rank, "box", []AliasArg{{Name: "a", Var: arg1}}, real1))
	pool.Register(alias1)

	arg2 := Flatten(uf, pool, appT("Int"))
	real2 := Flatten(uf, pool, appT("Int"))
	alias2 := uf.Fresh(aliasDescriptor(pool.Rank, "box", []AliasArg{{Name: "a", Var: arg2}}, real2))
	pool.Register(alias2)

	errs := Unify(uf, pool, "alias", Region{}, alias1, alias2)
	require.Empty(t, errs)
	assert.Equal(t, KindAlias, uf.Descriptor(alias1).Content.Kind)
	assert.Equal(t, "box", uf.Descriptor(alias1).Content.AliasName)
}

func TestUnifyRecordSharedFieldMismatchFlipsToError(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	left := Flatten(uf, pool, recordT(map[string]*SynTerm{"x": appT("Int")}, nil))
	right := Flatten(uf, pool, recordT(map[string]*SynTerm{"x": appT("String")}, nil))

	errs := Unify(uf, pool, "record", Region{}, left, right)
	require.Len(t, errs, 1)
	assert.Equal(t, types.MismatchError, errs[0].Kind)
	assert.Equal(t, KindError, uf.Descriptor(left).Content.Kind)
}

func TestUnifyRecordExtraFieldAgainstClosedIsRecordRowError(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	open := Flatten(uf, pool, recordT(map[string]*SynTerm{"x": appT("Int"), "y": appT("Int")}, nil))
	closed := Flatten(uf, pool, recordT(map[string]*SynTerm{"x": appT("Int")}, nil))

	errs := Unify(uf, pool, "record", Region{}, open, closed)
	require.Len(t, errs, 1)
	assert.Equal(t, types.RowMismatchError, errs[0].Kind)
}

func TestUnifyFlexStructureRespectsSuperKind(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	a := NewFlexVariable(uf, pool.Rank, SuperNumber, "a")
	s := Flatten(uf, pool, appT("String"))

	errs := Unify(uf, pool, "literal", Region{}, a, s)
	require.Len(t, errs, 1)
	assert.Equal(t, types.BadKindError, errs[0].Kind)
}

func TestUnifyFlexStructureSatisfyingSuperKindSucceeds(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	a := NewFlexVariable(uf, pool.Rank, SuperNumber, "a")
	i := Flatten(uf, pool, appT("Int"))

	errs := Unify(uf, pool, "literal", Region{}, a, i)
	require.Empty(t, errs)
	assert.Equal(t, KindStructure, uf.Descriptor(a).Content.Kind)
}

func TestUnifyAlreadyEquivalentIsNoop(t *testing.T) {
	uf := NewUnionFind()
	pool := NewPool()

	a := NewFlexVariable(uf, pool.Rank, SuperNone, "a")
	errs := Unify(uf, pool, "self", Region{}, a, a)
	assert.Empty(t, errs)
}
