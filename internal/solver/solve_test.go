package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogenesoftoronto/hmsolver/internal/types"
)

// The six scenarios of spec.md §8, each built directly against the
// package's own API the way an elaborator would: quantifier variables
// are allocated up front with NewFlexVariable/NewRigidVariable and
// reused as SynTerm leaves, everything else is built as sugar-free
// syntactic terms for Flatten to register.

func appT(head string, args ...*SynTerm) *SynTerm {
	return &SynTerm{App: &SynApp{Head: head, Args: args}}
}

func funT(arg, result *SynTerm) *SynTerm {
	return &SynTerm{Fun: &SynFun{Arg: arg, Result: result}}
}

func recordT(fields map[string]*SynTerm, ext *SynTerm) *SynTerm {
	return &SynTerm{Record: &SynRecord{Fields: fields, Ext: ext}}
}

func leafT(v *Variable) *SynTerm {
	return &SynTerm{Leaf: v}
}

func TestS1Identity(t *testing.T) {
	s := NewSolver()
	uf := s.UnionFind()

	a := NewFlexVariable(uf, 1, SuperNone, "a")
	idVar := NewFlexVariable(uf, 1, SuperNone, "")

	scheme := Scheme{
		FlexQuantifiers: []Variable{a},
		Constraint:      Equal("identity-definition", Region{}, leafT(&idVar), funT(leafT(&a), leafT(&a))),
		Header:          map[string]LocatedVariable{"id": {Var: idVar}},
	}
	// The Let restores the environment after its body, so id is read from
	// the snapshot SaveEnv takes inside the body.
	body := And(Instance(Region{}, "id", funT(appT("Int"), appT("Int"))), SaveEnv())
	constraint := Let([]Scheme{scheme}, body)

	st, errs, fatal := s.Solve(constraint)
	require.Nil(t, fatal)
	require.Empty(t, errs)

	lv, ok := st.SavedEnv["id"]
	require.True(t, ok)

	rendered := ToSrcType(uf, lv.Var)
	fn, ok := rendered.(*types.TFun)
	require.True(t, ok, "env.id should render as a function type, got %s", rendered)

	argVar, argOK := fn.Arg.(*types.TVar)
	resVar, resOK := fn.Result.(*types.TVar)
	require.True(t, argOK && resOK)
	assert.Equal(t, argVar.Name, resVar.Name, "identity's argument and result must be the same quantifier")
}

func TestS2Occurs(t *testing.T) {
	s := NewSolver()
	uf := s.UnionFind()

	a := NewFlexVariable(uf, 1, SuperNone, "a")
	scheme := Scheme{
		FlexQuantifiers: []Variable{a},
		Constraint:      Equal("self-application", Region{}, leafT(&a), funT(leafT(&a), leafT(&a))),
		Header:          map[string]LocatedVariable{"x": {Var: a}},
	}
	constraint := Let([]Scheme{scheme}, True())

	_, errs, fatal := s.Solve(constraint)
	require.Nil(t, fatal)
	require.Len(t, errs, 1)
	assert.Equal(t, types.InfiniteTypeError, errs[0].Kind)

	d := uf.Descriptor(a)
	assert.Equal(t, KindError, d.Content.Kind)
	assert.Equal(t, "∞", d.Content.Reason)
}

func TestS3RecordWidth(t *testing.T) {
	s := NewSolver()
	uf := s.UnionFind()

	r := NewFlexVariable(uf, OutermostRank, SuperNone, "r")
	open := recordT(map[string]*SynTerm{"name": appT("String")}, leafT(&r))
	closed := recordT(map[string]*SynTerm{"name": appT("String"), "age": appT("Int")}, nil)

	_, errs, fatal := s.Solve(Equal("record-width", Region{}, open, closed))
	require.Nil(t, fatal)
	require.Empty(t, errs)

	rt, ok := ToSrcType(uf, r).(*types.TRecord)
	require.True(t, ok)
	assert.Nil(t, rt.Row, "r should have unified with a closed {age: Int}")
	require.Contains(t, rt.Fields, "age")
	assert.Equal(t, types.TInt, rt.Fields["age"])
	assert.NotContains(t, rt.Fields, "name", "name belonged to the other side, not to r itself")
}

func TestS4RecordClash(t *testing.T) {
	s := NewSolver()

	left := recordT(map[string]*SynTerm{"x": appT("Int")}, nil)
	right := recordT(map[string]*SynTerm{"x": appT("String")}, nil)

	_, errs, fatal := s.Solve(Equal("record-clash", Region{}, left, right))
	require.Nil(t, fatal)
	require.Len(t, errs, 1)
	assert.Equal(t, types.MismatchError, errs[0].Kind)
}

func TestS5SuperConstraint(t *testing.T) {
	s := NewSolver()
	uf := s.UnionFind()

	a := NewFlexVariable(uf, OutermostRank, SuperNumber, "a")

	_, errs, fatal := s.Solve(Equal("numeric-literal", Region{}, leafT(&a), appT("String")))
	require.Nil(t, fatal)
	require.Len(t, errs, 1)
	assert.Equal(t, types.BadKindError, errs[0].Kind)
}

func TestS6PolymorphicLet(t *testing.T) {
	s := NewSolver()
	uf := s.UnionFind()

	a := NewFlexVariable(uf, 1, SuperNone, "a")
	idVar := NewFlexVariable(uf, 1, SuperNone, "")
	scheme := Scheme{
		FlexQuantifiers: []Variable{a},
		Constraint:      Equal("identity-definition", Region{}, leafT(&idVar), funT(leafT(&a), leafT(&a))),
		Header:          map[string]LocatedVariable{"id": {Var: idVar}},
	}

	res1 := NewFlexVariable(uf, OutermostRank, SuperNone, "")
	res2 := NewFlexVariable(uf, OutermostRank, SuperNone, "")
	body := And(
		Instance(Region{}, "id", funT(appT("Int"), leafT(&res1))),
		Instance(Region{}, "id", funT(appT("String"), leafT(&res2))),
	)

	_, errs, fatal := s.Solve(Let([]Scheme{scheme}, body))
	require.Nil(t, fatal)
	require.Empty(t, errs)

	assert.Equal(t, types.TInt, ToSrcType(uf, res1))
	assert.Equal(t, types.TString, ToSrcType(uf, res2))
}
