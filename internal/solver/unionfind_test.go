package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionFindFreshAndFind(t *testing.T) {
	uf := NewUnionFind()
	a := uf.Fresh(flexDescriptor(0, SuperNone, "a"))
	b := uf.Fresh(flexDescriptor(0, SuperNone, "b"))

	assert.False(t, uf.Equivalent(a, b))
	assert.Equal(t, a, uf.Find(a))
	assert.Equal(t, 2, uf.Len())
}

func TestUnionFindUnionMergesClasses(t *testing.T) {
	uf := NewUnionFind()
	a := uf.Fresh(flexDescriptor(0, SuperNone, "a"))
	b := uf.Fresh(flexDescriptor(0, SuperNone, "b"))

	merged := errorDescriptor(0, "test-merge")
	root := uf.Union(a, b, merged)

	assert.True(t, uf.Equivalent(a, b))
	assert.Same(t, merged, uf.Descriptor(a))
	assert.Same(t, merged, uf.Descriptor(b))
	assert.True(t, root == uf.Find(a))
}

func TestUnionFindUnionSameClassIsIdempotentButReplacesDescriptor(t *testing.T) {
	uf := NewUnionFind()
	a := uf.Fresh(flexDescriptor(0, SuperNone, "a"))

	before := uf.Len()
	d := errorDescriptor(0, "replaced")
	uf.Union(a, a, d)

	assert.Equal(t, before, uf.Len())
	assert.Same(t, d, uf.Descriptor(a))
}

func TestUnionFindRedundant(t *testing.T) {
	uf := NewUnionFind()
	a := uf.Fresh(flexDescriptor(0, SuperNone, "a"))
	b := uf.Fresh(flexDescriptor(0, SuperNone, "b"))

	require.False(t, uf.Redundant(a))
	require.False(t, uf.Redundant(b))

	uf.Union(a, b, flexDescriptor(0, SuperNone, ""))

	// Exactly one of a, b kept its slot as the representative.
	assert.NotEqual(t, uf.Redundant(a), uf.Redundant(b))
}

func TestUnionFindModifyDescriptorAffectsWholeClass(t *testing.T) {
	uf := NewUnionFind()
	a := uf.Fresh(flexDescriptor(0, SuperNone, "a"))
	b := uf.Fresh(flexDescriptor(0, SuperNone, "b"))
	uf.Union(a, b, flexDescriptor(0, SuperNone, "ab"))

	uf.ModifyDescriptor(a, func(d *Descriptor) { d.Rank = 7 })
	assert.Equal(t, 7, uf.Descriptor(b).Rank)
}
