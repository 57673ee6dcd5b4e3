// Package types holds the presentation-layer representation of types.
//
// It is deliberately separate from the solver's internal graph
// (internal/solver): a Type value here is an immutable tree produced by
// solver.ToSrcType for the sole purpose of rendering a type in an error
// message or a REPL transcript. Nothing in this package participates in
// unification, ranking, or generalization.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is a presentation-layer type tree.
type Type interface {
	String() string
	Equals(Type) bool
}

// TVar is an unresolved or rigid type variable, rendered by name.
type TVar struct {
	Name  string
	Rigid bool
}

func (t *TVar) String() string {
	if t.Rigid {
		return t.Name
	}
	return t.Name
}

func (t *TVar) Equals(other Type) bool {
	o, ok := other.(*TVar)
	return ok && t.Name == o.Name && t.Rigid == o.Rigid
}

// TCon is a nullary type constructor (Int, String, Bool, ...).
type TCon struct {
	Name string
}

func (t *TCon) String() string { return t.Name }

func (t *TCon) Equals(other Type) bool {
	o, ok := other.(*TCon)
	return ok && t.Name == o.Name
}

// TApp is a type constructor applied to arguments (List a, Result e a).
type TApp struct {
	Name string
	Args []Type
}

func (t *TApp) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s %s", t.Name, strings.Join(args, " "))
}

func (t *TApp) Equals(other Type) bool {
	o, ok := other.(*TApp)
	if !ok || t.Name != o.Name || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

// TFun is a single-argument function arrow, matching the solver's Fun1
// term shape exactly; curried surface functions render as nested TFuns.
type TFun struct {
	Arg    Type
	Result Type
}

func (t *TFun) String() string {
	argStr := t.Arg.String()
	if _, ok := t.Arg.(*TFun); ok {
		argStr = "(" + argStr + ")"
	}
	return fmt.Sprintf("%s -> %s", argStr, t.Result.String())
}

func (t *TFun) Equals(other Type) bool {
	o, ok := other.(*TFun)
	return ok && t.Arg.Equals(o.Arg) && t.Result.Equals(o.Result)
}

// TRecord is a record type, optionally open (Row != nil) for extension.
type TRecord struct {
	Fields map[string]Type
	Row    Type // nil means closed
}

func (t *TRecord) String() string {
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names)+1)
	for _, name := range names {
		fields = append(fields, fmt.Sprintf("%s: %s", name, t.Fields[name].String()))
	}
	if t.Row != nil {
		fields = append(fields, fmt.Sprintf("| %s", t.Row.String()))
	}
	return fmt.Sprintf("{ %s }", strings.Join(fields, ", "))
}

func (t *TRecord) Equals(other Type) bool {
	o, ok := other.(*TRecord)
	if !ok || len(t.Fields) != len(o.Fields) {
		return false
	}
	for name, typ := range t.Fields {
		oTyp, ok := o.Fields[name]
		if !ok || !typ.Equals(oTyp) {
			return false
		}
	}
	if t.Row == nil && o.Row == nil {
		return true
	}
	if t.Row != nil && o.Row != nil {
		return t.Row.Equals(o.Row)
	}
	return false
}

// TCycle is emitted in place of a type that would otherwise recurse
// infinitely while rendering (see spec.md §4.2, "type-to-source ...
// MUST detect cycles ... substituting a placeholder").
type TCycle struct {
	Of string // name of the variable the cycle closes on
}

func (t *TCycle) String() string { return fmt.Sprintf("<cyclic: %s>", t.Of) }

func (t *TCycle) Equals(other Type) bool {
	o, ok := other.(*TCycle)
	return ok && t.Of == o.Of
}

// Common predefined constructors, named the way the teacher's builtins
// name them (internal/types/builder.go: TCon{Name: "Int"}, "String", ...)
// and matching the App1 heads solver.satisfiesSuper recognizes.
var (
	TInt    = &TCon{Name: "Int"}
	TFloat  = &TCon{Name: "Float"}
	TString = &TCon{Name: "String"}
	TBool   = &TCon{Name: "Bool"}
	TChar   = &TCon{Name: "Char"}
	TUnit   = &TCon{Name: "()"}
)
