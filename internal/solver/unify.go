package solver

import "github.com/diogenesoftoronto/hmsolver/internal/types"

// Unify makes v1 and v2 denote the same type (spec.md §4.3). It is the
// only function in this package allowed to call UnionFind.Union.
// Errors accumulate in the returned slice rather than aborting the
// recursive walk — a nested structural mismatch still lets sibling
// fields/arguments attempt to unify.
func Unify(uf *UnionFind, pool *Pool, hint Hint, region Region, v1, v2 Variable) []*LocatedError {
	if uf.Equivalent(v1, v2) {
		return nil
	}

	d1 := uf.Descriptor(v1)
	d2 := uf.Descriptor(v2)

	rank := d1.Rank
	if d2.Rank < rank {
		rank = d2.Rank
	}

	content, errs := unifyContents(uf, pool, hint, region, v1, v2, d1, d2)

	uf.Union(v1, v2, &Descriptor{Content: content, Rank: rank, Copy: noVariable})
	return errs
}

func errorContent(reason string) Content {
	return Content{Kind: KindError, Reason: reason}
}

func preferNamed(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func propagatedError(d1, d2 *Descriptor) Content {
	if d1.Content.Kind == KindError {
		return d1.Content
	}
	return d2.Content
}

// mergeSuper computes the intersection of two super-kind constraints
// (spec.md §4.3 step 2). The four super-kinds form a small lattice from
// their set definitions in §4.3.4: number and appendable are disjoint,
// compappend is the meet of comparable and appendable.
func mergeSuper(a, b SuperKind) (SuperKind, bool) {
	if a == SuperNone {
		return b, true
	}
	if b == SuperNone {
		return a, true
	}
	if a == b {
		return a, true
	}

	type pair struct{ a, b SuperKind }
	table := map[pair]SuperKind{
		{SuperNumber, SuperComparable}:    SuperNumber,
		{SuperComparable, SuperNumber}:    SuperNumber,
		{SuperComparable, SuperAppendable}: SuperCompAppend,
		{SuperAppendable, SuperComparable}: SuperCompAppend,
		{SuperComparable, SuperCompAppend}: SuperCompAppend,
		{SuperCompAppend, SuperComparable}: SuperCompAppend,
		{SuperAppendable, SuperCompAppend}: SuperCompAppend,
		{SuperCompAppend, SuperAppendable}: SuperCompAppend,
	}
	if r, ok := table[pair{a, b}]; ok {
		return r, true
	}
	return SuperNone, false
}

func unifyContents(uf *UnionFind, pool *Pool, hint Hint, region Region, v1, v2 Variable, d1, d2 *Descriptor) (Content, []*LocatedError) {
	k1, k2 := d1.Content.Kind, d2.Content.Kind

	switch {
	case k1 == KindError || k2 == KindError:
		return propagatedError(d1, d2), nil

	case k1 == KindFlex && k2 == KindFlex:
		merged, ok := mergeSuper(d1.Content.Super, d2.Content.Super)
		if !ok {
			return errorContent("incompatible kind constraints"), []*LocatedError{
				newBadKind(hint, region, d1.Content.Super, ToSrcType(uf, v2)),
			}
		}
		return Content{Kind: KindFlex, Super: merged, Name: preferNamed(d1.Content.Name, d2.Content.Name)}, nil

	case k1 == KindFlex && k2 == KindRigid:
		return unifyFlexRigid(uf, hint, region, v2, d1, d2)
	case k1 == KindRigid && k2 == KindFlex:
		return unifyFlexRigid(uf, hint, region, v1, d2, d1)

	case k1 == KindRigid && k2 == KindRigid:
		// find(v1) != find(v2) already established — distinct rigid
		// classes never unify (spec.md §3 invariant 4).
		return errorContent("rigid type variables are not interchangeable"), []*LocatedError{
			newMismatch(hint, region, ToSrcType(uf, v1), ToSrcType(uf, v2)),
		}

	case k1 == KindRigid && (k2 == KindAlias || k2 == KindStructure):
		return errorContent("rigid type variable cannot unify with a concrete type"), []*LocatedError{
			newMismatch(hint, region, ToSrcType(uf, v1), ToSrcType(uf, v2)),
		}
	case (k1 == KindAlias || k1 == KindStructure) && k2 == KindRigid:
		return errorContent("rigid type variable cannot unify with a concrete type"), []*LocatedError{
			newMismatch(hint, region, ToSrcType(uf, v1), ToSrcType(uf, v2)),
		}

	case k1 == KindFlex && k2 == KindAlias:
		return unifyFlexAlias(uf, hint, region, v2, d1, d2)
	case k1 == KindAlias && k2 == KindFlex:
		return unifyFlexAlias(uf, hint, region, v1, d2, d1)

	case k1 == KindFlex && k2 == KindStructure:
		return unifyFlexStructure(uf, hint, region, v1, v2, d1, d2.Content.Term)
	case k1 == KindStructure && k2 == KindFlex:
		return unifyFlexStructure(uf, hint, region, v2, v1, d2, d1.Content.Term)

	case k1 == KindAlias && k2 == KindAlias:
		return unifyAliasAlias(uf, pool, hint, region, d1, d2)

	case k1 == KindAlias && k2 == KindStructure:
		errs := Unify(uf, pool, hint, region, d1.Content.RealVar, v2)
		return uf.Descriptor(v2).Content, errs
	case k1 == KindStructure && k2 == KindAlias:
		errs := Unify(uf, pool, hint, region, v1, d2.Content.RealVar)
		return uf.Descriptor(v1).Content, errs

	case k1 == KindStructure && k2 == KindStructure:
		return unifyStructures(uf, pool, hint, region, v1, v2, d1.Content.Term, d2.Content.Term)

	default:
		panic("solver: unreachable content pair")
	}
}

func unifyFlexRigid(uf *UnionFind, hint Hint, region Region, rigidVar Variable, flexD, rigidD *Descriptor) (Content, []*LocatedError) {
	if flexD.Content.Super == SuperNone {
		return Content{Kind: KindRigid, Super: rigidD.Content.Super, Name: rigidD.Content.Name}, nil
	}
	merged, ok := mergeSuper(flexD.Content.Super, rigidD.Content.Super)
	if !ok {
		return errorContent("incompatible kind constraints"), []*LocatedError{
			newBadKind(hint, region, flexD.Content.Super, ToSrcType(uf, rigidVar)),
		}
	}
	return Content{Kind: KindRigid, Super: merged, Name: rigidD.Content.Name}, nil
}

func unifyFlexStructure(uf *UnionFind, hint Hint, region Region, flexVar, structVar Variable, flexD *Descriptor, term Term) (Content, []*LocatedError) {
	if flexD.Content.Super != SuperNone && !satisfiesSuper(uf, flexD.Content.Super, term) {
		return errorContent("incompatible kind constraints"), []*LocatedError{
			newBadKind(hint, region, flexD.Content.Super, ToSrcType(uf, structVar)),
		}
	}
	return Content{Kind: KindStructure, Term: term}, nil
}

func unifyFlexAlias(uf *UnionFind, hint Hint, region Region, aliasVar Variable, flexD, aliasD *Descriptor) (Content, []*LocatedError) {
	if flexD.Content.Super != SuperNone && !satisfiesSuperVar(uf, flexD.Content.Super, aliasD.Content.RealVar) {
		return errorContent("incompatible kind constraints"), []*LocatedError{
			newBadKind(hint, region, flexD.Content.Super, ToSrcType(uf, aliasVar)),
		}
	}
	return Content{Kind: KindAlias, AliasName: aliasD.Content.AliasName, AliasArgs: aliasD.Content.AliasArgs, RealVar: aliasD.Content.RealVar}, nil
}

func unifyAliasAlias(uf *UnionFind, pool *Pool, hint Hint, region Region, d1, d2 *Descriptor) (Content, []*LocatedError) {
	if d1.Content.AliasName == d2.Content.AliasName && len(d1.Content.AliasArgs) == len(d2.Content.AliasArgs) {
		var errs []*LocatedError
		args := make([]AliasArg, len(d1.Content.AliasArgs))
		for i := range d1.Content.AliasArgs {
			a1, a2 := d1.Content.AliasArgs[i], d2.Content.AliasArgs[i]
			errs = append(errs, Unify(uf, pool, hint, region, a1.Var, a2.Var)...)
			args[i] = AliasArg{Name: a1.Name, Var: uf.Find(a1.Var)}
		}
		errs = append(errs, Unify(uf, pool, hint, region, d1.Content.RealVar, d2.Content.RealVar)...)
		if len(errs) > 0 {
			return errorContent("alias argument mismatch"), errs
		}
		return Content{Kind: KindAlias, AliasName: d1.Content.AliasName, AliasArgs: args, RealVar: uf.Find(d1.Content.RealVar)}, nil
	}

	// Different alias names: expand both and unify the expansions.
	errs := Unify(uf, pool, hint, region, d1.Content.RealVar, d2.Content.RealVar)
	return uf.Descriptor(d1.Content.RealVar).Content, errs
}

func unifyStructures(uf *UnionFind, pool *Pool, hint Hint, region Region, v1, v2 Variable, t1, t2 Term) (Content, []*LocatedError) {
	switch {
	case t1.Kind == TermApp && t2.Kind == TermApp:
		if t1.Head != t2.Head || len(t1.Args) != len(t2.Args) {
			return errorContent("constructor mismatch"), []*LocatedError{
				newMismatch(hint, region, ToSrcType(uf, v1), ToSrcType(uf, v2)),
			}
		}
		var errs []*LocatedError
		args := make([]Variable, len(t1.Args))
		for i := range t1.Args {
			errs = append(errs, Unify(uf, pool, hint, region, t1.Args[i], t2.Args[i])...)
			args[i] = uf.Find(t1.Args[i])
		}
		if len(errs) > 0 {
			return errorContent("argument mismatch"), errs
		}
		return Content{Kind: KindStructure, Term: Term{Kind: TermApp, Head: t1.Head, Args: args}}, nil

	case t1.Kind == TermFun && t2.Kind == TermFun:
		var errs []*LocatedError
		errs = append(errs, Unify(uf, pool, hint, region, t1.FunArg, t2.FunArg)...)
		errs = append(errs, Unify(uf, pool, hint, region, t1.FunRes, t2.FunRes)...)
		if len(errs) > 0 {
			return errorContent("function type mismatch"), errs
		}
		return Content{Kind: KindStructure, Term: Term{Kind: TermFun, FunArg: uf.Find(t1.FunArg), FunRes: uf.Find(t1.FunRes)}}, nil

	case t1.Kind == TermEmptyRecord && t2.Kind == TermEmptyRecord:
		return Content{Kind: KindStructure, Term: Term{Kind: TermEmptyRecord}}, nil

	case t1.Kind == TermRecord && t2.Kind == TermRecord:
		return unifyRecords(uf, pool, hint, region, v1, v2, t1, t2)

	default:
		return errorContent("structural shape mismatch"), []*LocatedError{
			newMismatch(hint, region, ToSrcType(uf, v1), ToSrcType(uf, v2)),
		}
	}
}

// unifyRecords implements extensible-record unification (spec.md
// §4.3.5): shared fields unify directly; fields unique to one side are
// folded into a new record built on that side's own extension, which is
// then unified with the other side's extension so it absorbs them (or
// an error is reported, if the other side is closed).
func unifyRecords(uf *UnionFind, pool *Pool, hint Hint, region Region, v1, v2 Variable, t1, t2 Term) (Content, []*LocatedError) {
	var errs []*LocatedError

	for name, f1 := range t1.Fields {
		if f2, ok := t2.Fields[name]; ok {
			errs = append(errs, Unify(uf, pool, hint, region, f1, f2)...)
		}
	}

	only1 := map[string]Variable{}
	for name, fv := range t1.Fields {
		if _, ok := t2.Fields[name]; !ok {
			only1[name] = fv
		}
	}
	only2 := map[string]Variable{}
	for name, fv := range t2.Fields {
		if _, ok := t1.Fields[name]; !ok {
			only2[name] = fv
		}
	}

	closed1 := isEmptyRecord(uf, t1.Ext)
	closed2 := isEmptyRecord(uf, t2.Ext)

	if len(only1) == 0 && len(only2) == 0 {
		// Same field set on both sides: the remaining rows must denote
		// the same type, not just happen to agree on their known fields.
		errs = append(errs, Unify(uf, pool, hint, region, t1.Ext, t2.Ext)...)
	} else {
		if len(only1) > 0 {
			if closed2 {
				errs = append(errs, recordFieldsError(region, uf, v2, v1))
			} else {
				r1prime := newRecordVariable(uf, pool, only1, t1.Ext)
				errs = append(errs, Unify(uf, pool, hint, region, t2.Ext, r1prime)...)
			}
		}
		if len(only2) > 0 {
			if closed1 {
				errs = append(errs, recordFieldsError(region, uf, v1, v2))
			} else {
				r2prime := newRecordVariable(uf, pool, only2, t2.Ext)
				errs = append(errs, Unify(uf, pool, hint, region, t1.Ext, r2prime)...)
			}
		}
	}

	if len(errs) > 0 {
		return errorContent("record field mismatch"), errs
	}

	fields := map[string]Variable{}
	for name, fv := range t1.Fields {
		fields[name] = uf.Find(fv)
	}
	for name, fv := range t2.Fields {
		fields[name] = uf.Find(fv)
	}
	return Content{Kind: KindStructure, Term: Term{Kind: TermRecord, Fields: fields, Ext: uf.Find(t1.Ext)}}, nil
}

func isEmptyRecord(uf *UnionFind, v Variable) bool {
	d := uf.Descriptor(v)
	if d.Content.Kind == KindAlias {
		return isEmptyRecord(uf, d.Content.RealVar)
	}
	return d.Content.Kind == KindStructure && d.Content.Term.Kind == TermEmptyRecord
}

func newRecordVariable(uf *UnionFind, pool *Pool, fields map[string]Variable, ext Variable) Variable {
	rank := uf.Descriptor(ext).Rank
	v := uf.Fresh(structureDescriptor(rank, Term{Kind: TermRecord, Fields: fields, Ext: ext}))
	pool.Register(v)
	return v
}

func recordFieldsError(region Region, uf *UnionFind, closedVar, openVar Variable) *LocatedError {
	expected := toTRecord(uf, closedVar)
	actual := toTRecord(uf, openVar)
	return &LocatedError{TypeCheckError: types.NewRecordRowError(expected, actual, nil), Region: region}
}

func toTRecord(uf *UnionFind, v Variable) *types.TRecord {
	if t, ok := ToSrcType(uf, v).(*types.TRecord); ok {
		return t
	}
	return &types.TRecord{Fields: map[string]types.Type{}}
}

// satisfiesSuper checks a concrete Structure's Term against a super-kind
// constraint (spec.md §4.3.4). Atomic types are App1(name, nil); List and
// Tuple are App1("List", [elem]) / App1("Tuple", elems).
func satisfiesSuper(uf *UnionFind, super SuperKind, term Term) bool {
	if term.Kind != TermApp {
		return false
	}
	switch super {
	case SuperNumber:
		return term.Head == "Int" || term.Head == "Float"

	case SuperComparable:
		switch term.Head {
		case "Int", "Float", "Char", "String":
			return true
		case "List":
			return len(term.Args) == 1 && satisfiesSuperVar(uf, SuperComparable, term.Args[0])
		case "Tuple":
			for _, a := range term.Args {
				if !satisfiesSuperVar(uf, SuperComparable, a) {
					return false
				}
			}
			return true
		default:
			return uf.extraComparable[term.Head]
		}

	case SuperAppendable:
		switch term.Head {
		case "String":
			return true
		case "List":
			return len(term.Args) == 1
		default:
			return uf.extraAppendable[term.Head]
		}

	case SuperCompAppend:
		switch term.Head {
		case "String":
			return true
		case "List":
			return len(term.Args) == 1 && satisfiesSuperVar(uf, SuperComparable, term.Args[0])
		default:
			return false
		}

	default:
		return true
	}
}

// satisfiesSuperVar checks a Variable (rather than a bare Term) against a
// super-kind, recursing through Alias and through unresolved Flex/Rigid
// variables whose own constraint is compatible.
func satisfiesSuperVar(uf *UnionFind, super SuperKind, v Variable) bool {
	d := uf.Descriptor(v)
	switch d.Content.Kind {
	case KindFlex, KindRigid:
		_, ok := mergeSuper(d.Content.Super, super)
		return ok
	case KindAlias:
		return satisfiesSuperVar(uf, super, d.Content.RealVar)
	case KindStructure:
		return satisfiesSuper(uf, super, d.Content.Term)
	default:
		return false
	}
}
