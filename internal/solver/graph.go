package solver

import (
	"fmt"

	"github.com/diogenesoftoronto/hmsolver/internal/types"
)

// NoRank marks a class that has been generalized into a scheme
// quantifier (spec.md §3, §4.4).
const NoRank = -1

// OutermostRank is the rank of the solver's initial pool.
const OutermostRank = 0

// SuperKind is one of the four built-in kind constraints a Flex/Rigid
// variable may carry (spec.md §4.3.4).
type SuperKind uint8

const (
	SuperNone SuperKind = iota
	SuperNumber
	SuperComparable
	SuperAppendable
	SuperCompAppend
)

func (s SuperKind) String() string {
	switch s {
	case SuperNumber:
		return "number"
	case SuperComparable:
		return "comparable"
	case SuperAppendable:
		return "appendable"
	case SuperCompAppend:
		return "compappend"
	default:
		return ""
	}
}

// ContentKind discriminates the variants of Content (spec.md §3).
type ContentKind uint8

const (
	KindFlex ContentKind = iota
	KindRigid
	KindAlias
	KindStructure
	KindError
)

// AliasArg is one (argName, argVar) pair of an applied alias.
type AliasArg struct {
	Name string
	Var  Variable
}

// Content is the payload variant carried by a Descriptor.
type Content struct {
	Kind ContentKind

	// Flex / Rigid
	Super SuperKind
	Name  string // programmer-visible name, "" if anonymous

	// Alias
	AliasName string
	AliasArgs []AliasArg
	RealVar   Variable

	// Structure
	Term Term

	// Error
	Reason string
}

// TermKind discriminates the shapes a Structure's Term can take.
type TermKind uint8

const (
	TermApp TermKind = iota
	TermFun
	TermEmptyRecord
	TermRecord
)

// Term is App1(head, args) | Fun1(arg, result) | EmptyRecord1 |
// Record1(fields, extension) (spec.md §3).
type Term struct {
	Kind TermKind

	// App1
	Head string
	Args []Variable

	// Fun1
	FunArg Variable
	FunRes Variable

	// Record1
	Fields map[string]Variable
	Ext    Variable
}

// Descriptor is the payload of one equivalence class (spec.md §3).
type Descriptor struct {
	Content Content
	Rank    int
	Mark    int
	Copy    Variable // noVariable when unset
}

func flexDescriptor(rank int, super SuperKind, name string) *Descriptor {
	return &Descriptor{
		Content: Content{Kind: KindFlex, Super: super, Name: name},
		Rank:    rank,
		Copy:    noVariable,
	}
}

func rigidDescriptor(rank int, super SuperKind, name string) *Descriptor {
	return &Descriptor{
		Content: Content{Kind: KindRigid, Super: super, Name: name},
		Rank:    rank,
		Copy:    noVariable,
	}
}

func structureDescriptor(rank int, term Term) *Descriptor {
	return &Descriptor{
		Content: Content{Kind: KindStructure, Term: term},
		Rank:    rank,
		Copy:    noVariable,
	}
}

func aliasDescriptor(rank int, name string, args []AliasArg, real Variable) *Descriptor {
	return &Descriptor{
		Content: Content{Kind: KindAlias, AliasName: name, AliasArgs: args, RealVar: real},
		Rank:    rank,
		Copy:    noVariable,
	}
}

func errorDescriptor(rank int, reason string) *Descriptor {
	return &Descriptor{
		Content: Content{Kind: KindError, Reason: reason},
		Rank:    rank,
		Copy:    noVariable,
	}
}

// SynTerm is the syntactic type expression the elaborator hands to
// Flatten (spec.md §6: "flatten(term) -> Variable ... whose leaves may
// be already-allocated variables"). Exactly one of the fields below is
// set per node. A Leaf reuses an already-registered Variable verbatim;
// every other shape allocates and registers a fresh Variable.
type SynTerm struct {
	Leaf *Variable

	Flex  *SynFlex
	Rigid *SynFlex

	App *SynApp
	Fun *SynFun

	EmptyRecord bool
	Record      *SynRecord

	Alias *SynAlias
}

// SynFlex requests a fresh Flex/Rigid variable, optionally named and
// optionally constrained to a super-kind.
type SynFlex struct {
	Name  string
	Super SuperKind
}

// SynApp requests App1(Head, Args...).
type SynApp struct {
	Head string
	Args []*SynTerm
}

// SynFun requests Fun1(Arg, Result).
type SynFun struct {
	Arg    *SynTerm
	Result *SynTerm
}

// SynRecord requests Record1(Fields, Extension).
type SynRecord struct {
	Fields map[string]*SynTerm
	Ext    *SynTerm // nil means closed (EmptyRecord1)
}

// SynAlias requests an Alias application.
type SynAlias struct {
	Name string
	Args []SynAliasArg
	Real *SynTerm
}

// SynAliasArg is one (argName, argExpr) pair of an alias application.
type SynAliasArg struct {
	Name string
	Expr *SynTerm
}

// NewFlexVariable allocates a Flex variable directly, without going
// through Flatten. This is how a caller building a Scheme (spec.md §3,
// §4.5) produces the quantifier variables it lists in
// RigidQuantifiers/FlexQuantifiers and reuses as SynTerm leaves inside
// the scheme's own constraint and header — they must exist before
// solveScheme opens the pool that will register them.
func NewFlexVariable(uf *UnionFind, rank int, super SuperKind, name string) Variable {
	return uf.Fresh(flexDescriptor(rank, super, NormalizeIdent(name)))
}

// NewRigidVariable allocates a Rigid (skolem) variable directly, for
// the same reason as NewFlexVariable.
func NewRigidVariable(uf *UnionFind, rank int, super SuperKind, name string) Variable {
	return uf.Fresh(rigidDescriptor(rank, super, NormalizeIdent(name)))
}

// Flatten converts a syntactic type expression into a single Variable
// in pool, allocating a fresh graph Variable for every constructor
// application and registering each with pool (spec.md §4.2, §4.4).
func Flatten(uf *UnionFind, pool *Pool, t *SynTerm) Variable {
	switch {
	case t.Leaf != nil:
		return *t.Leaf

	case t.Flex != nil:
		v := uf.Fresh(flexDescriptor(pool.Rank, t.Flex.Super, NormalizeIdent(t.Flex.Name)))
		pool.Register(v)
		return v

	case t.Rigid != nil:
		v := uf.Fresh(rigidDescriptor(pool.Rank, t.Rigid.Super, NormalizeIdent(t.Rigid.Name)))
		pool.Register(v)
		return v

	case t.App != nil:
		args := make([]Variable, len(t.App.Args))
		for i, a := range t.App.Args {
			args[i] = Flatten(uf, pool, a)
		}
		v := uf.Fresh(structureDescriptor(pool.Rank, Term{Kind: TermApp, Head: NormalizeIdent(t.App.Head), Args: args}))
		pool.Register(v)
		return v

	case t.Fun != nil:
		arg := Flatten(uf, pool, t.Fun.Arg)
		res := Flatten(uf, pool, t.Fun.Result)
		v := uf.Fresh(structureDescriptor(pool.Rank, Term{Kind: TermFun, FunArg: arg, FunRes: res}))
		pool.Register(v)
		return v

	case t.EmptyRecord:
		v := uf.Fresh(structureDescriptor(pool.Rank, Term{Kind: TermEmptyRecord}))
		pool.Register(v)
		return v

	case t.Record != nil:
		fields := make(map[string]Variable, len(t.Record.Fields))
		for name, ft := range t.Record.Fields {
			fields[NormalizeIdent(name)] = Flatten(uf, pool, ft)
		}
		ext := noVariable
		if t.Record.Ext != nil {
			ext = Flatten(uf, pool, t.Record.Ext)
		} else {
			ext = uf.Fresh(structureDescriptor(pool.Rank, Term{Kind: TermEmptyRecord}))
			pool.Register(ext)
		}
		v := uf.Fresh(structureDescriptor(pool.Rank, Term{Kind: TermRecord, Fields: fields, Ext: ext}))
		pool.Register(v)
		return v

	case t.Alias != nil:
		args := make([]AliasArg, len(t.Alias.Args))
		for i, a := range t.Alias.Args {
			args[i] = AliasArg{Name: NormalizeIdent(a.Name), Var: Flatten(uf, pool, a.Expr)}
		}
		real := Flatten(uf, pool, t.Alias.Real)
		v := uf.Fresh(aliasDescriptor(pool.Rank, NormalizeIdent(t.Alias.Name), args, real))
		pool.Register(v)
		return v

	default:
		panic("solver: empty SynTerm")
	}
}

// ToSrcType walks v, following Alias and Structure content, to produce
// a presentation-layer types.Type for error messages (spec.md §4.2,
// §6). It detects cycles by remembering visited representatives and
// substituting a types.TCycle placeholder — the graph itself is never
// mutated by this walk.
func ToSrcType(uf *UnionFind, v Variable) types.Type {
	return toSrcType(uf, v, map[Variable]bool{})
}

func toSrcType(uf *UnionFind, v Variable, visiting map[Variable]bool) types.Type {
	root := uf.Find(v)
	if visiting[root] {
		return &types.TCycle{Of: fmt.Sprintf("var%d", root)}
	}
	visiting[root] = true
	defer delete(visiting, root)

	d := uf.desc[root]
	switch d.Content.Kind {
	case KindFlex:
		name := d.Content.Name
		if name == "" {
			name = fmt.Sprintf("t%d", root)
		}
		return &types.TVar{Name: name}

	case KindRigid:
		name := d.Content.Name
		if name == "" {
			name = fmt.Sprintf("r%d", root)
		}
		return &types.TVar{Name: name, Rigid: true}

	case KindAlias:
		return toSrcType(uf, d.Content.RealVar, visiting)

	case KindStructure:
		return termToSrcType(uf, d.Content.Term, visiting)

	case KindError:
		return &types.TCon{Name: "<error>"}

	default:
		panic("solver: unknown content kind")
	}
}

func termToSrcType(uf *UnionFind, t Term, visiting map[Variable]bool) types.Type {
	switch t.Kind {
	case TermApp:
		if len(t.Args) == 0 {
			return &types.TCon{Name: t.Head}
		}
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = toSrcType(uf, a, visiting)
		}
		return &types.TApp{Name: t.Head, Args: args}

	case TermFun:
		return &types.TFun{
			Arg:    toSrcType(uf, t.FunArg, visiting),
			Result: toSrcType(uf, t.FunRes, visiting),
		}

	case TermEmptyRecord:
		return &types.TRecord{Fields: map[string]types.Type{}}

	case TermRecord:
		fields := make(map[string]types.Type, len(t.Fields))
		for name, fv := range t.Fields {
			fields[name] = toSrcType(uf, fv, visiting)
		}
		var row types.Type
		if extDesc := uf.Descriptor(t.Ext); !(extDesc.Content.Kind == KindStructure && extDesc.Content.Term.Kind == TermEmptyRecord) {
			row = toSrcType(uf, t.Ext, visiting)
		}
		return &types.TRecord{Fields: fields, Row: row}

	default:
		panic("solver: unknown term kind")
	}
}
