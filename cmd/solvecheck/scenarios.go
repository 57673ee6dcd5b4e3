package main

import (
	"fmt"

	"github.com/diogenesoftoronto/hmsolver/internal/solver"
)

type scenario struct {
	name     string
	describe string
	run      func(configPath string) (ok bool, summary string)
}

var scenarios = []scenario{
	{"s1-identity", "let id = \\x.x in id : Int -> Int, no errors, id generalized", runS1},
	{"s2-occurs", "a = a -> a inside a let binding x, one InfiniteType error", runS2},
	{"s3-record-width", "{name:String|r} ~ {name:String,age:Int}, r unifies with {age:Int}", runS3},
	{"s4-record-clash", "{x:Int} ~ {x:String}, one Mismatch, outer record becomes Error", runS4},
	{"s5-super-constraint", "number a ~ String, one BadKind error", runS5},
	{"s6-polymorphic-let", "let id = \\x.x in (id 1, id \"hi\"), no cross-unification", runS6},
}

func newSolver(configPath string) (*solver.Solver, error) {
	s := solver.NewSolver()
	if configPath == "" {
		return s, nil
	}
	cfg, err := solver.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	s.ApplyConfig(cfg)
	return s, nil
}

func appT(head string, args ...*solver.SynTerm) *solver.SynTerm {
	return &solver.SynTerm{App: &solver.SynApp{Head: head, Args: args}}
}

func funT(arg, result *solver.SynTerm) *solver.SynTerm {
	return &solver.SynTerm{Fun: &solver.SynFun{Arg: arg, Result: result}}
}

func recordT(fields map[string]*solver.SynTerm, ext *solver.SynTerm) *solver.SynTerm {
	return &solver.SynTerm{Record: &solver.SynRecord{Fields: fields, Ext: ext}}
}

func leafT(v *solver.Variable) *solver.SynTerm {
	return &solver.SynTerm{Leaf: v}
}

func runS1(configPath string) (bool, string) {
	s, err := newSolver(configPath)
	if err != nil {
		return false, err.Error()
	}
	uf := s.UnionFind()

	a := solver.NewFlexVariable(uf, 1, solver.SuperNone, "a")
	idVar := solver.NewFlexVariable(uf, 1, solver.SuperNone, "")

	scheme := solver.Scheme{
		FlexQuantifiers: []solver.Variable{a},
		Constraint:      solver.Equal("identity-definition", solver.Region{}, leafT(&idVar), funT(leafT(&a), leafT(&a))),
		Header:          map[string]solver.LocatedVariable{"id": {Var: idVar}},
	}
	// The Let restores the environment after its body, so id is read from
	// the snapshot SaveEnv takes inside the body.
	body := solver.And(
		solver.Instance(solver.Region{}, "id", funT(appT("Int"), appT("Int"))),
		solver.SaveEnv(),
	)
	constraint := solver.Let([]solver.Scheme{scheme}, body)

	st, errs, fatal := s.Solve(constraint)
	if fatal != nil {
		return false, fatal.Error()
	}
	if len(errs) != 0 {
		return false, fmt.Sprintf("unexpected errors: %v", errs)
	}
	lv, ok := st.SavedEnv["id"]
	if !ok {
		return false, "env.id missing"
	}
	return true, fmt.Sprintf("env.id : %s", solver.ToSrcType(uf, lv.Var))
}

func runS2(configPath string) (bool, string) {
	s, err := newSolver(configPath)
	if err != nil {
		return false, err.Error()
	}
	uf := s.UnionFind()

	a := solver.NewFlexVariable(uf, 1, solver.SuperNone, "a")
	scheme := solver.Scheme{
		FlexQuantifiers: []solver.Variable{a},
		Constraint:      solver.Equal("self-application", solver.Region{}, leafT(&a), funT(leafT(&a), leafT(&a))),
		Header:          map[string]solver.LocatedVariable{"x": {Var: a}},
	}
	constraint := solver.Let([]solver.Scheme{scheme}, solver.True())

	_, errs, fatal := s.Solve(constraint)
	if fatal != nil {
		return false, fatal.Error()
	}
	if len(errs) != 1 {
		return false, fmt.Sprintf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	return true, errs[0].Error()
}

func runS3(configPath string) (bool, string) {
	s, err := newSolver(configPath)
	if err != nil {
		return false, err.Error()
	}
	uf := s.UnionFind()

	r := solver.NewFlexVariable(uf, 0, solver.SuperNone, "r")
	open := recordT(map[string]*solver.SynTerm{"name": appT("String")}, leafT(&r))
	closed := recordT(map[string]*solver.SynTerm{"name": appT("String"), "age": appT("Int")}, nil)
	constraint := solver.Equal("record-width", solver.Region{}, open, closed)

	_, errs, fatal := s.Solve(constraint)
	if fatal != nil {
		return false, fatal.Error()
	}
	if len(errs) != 0 {
		return false, fmt.Sprintf("unexpected errors: %v", errs)
	}
	return true, fmt.Sprintf("r : %s", solver.ToSrcType(uf, r))
}

func runS4(configPath string) (bool, string) {
	s, err := newSolver(configPath)
	if err != nil {
		return false, err.Error()
	}

	left := recordT(map[string]*solver.SynTerm{"x": appT("Int")}, nil)
	right := recordT(map[string]*solver.SynTerm{"x": appT("String")}, nil)
	constraint := solver.Equal("record-clash", solver.Region{}, left, right)

	_, errs, fatal := s.Solve(constraint)
	if fatal != nil {
		return false, fatal.Error()
	}
	if len(errs) != 1 {
		return false, fmt.Sprintf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	return true, errs[0].Error()
}

func runS5(configPath string) (bool, string) {
	s, err := newSolver(configPath)
	if err != nil {
		return false, err.Error()
	}
	uf := s.UnionFind()

	a := solver.NewFlexVariable(uf, 0, solver.SuperNumber, "a")
	constraint := solver.Equal("numeric-literal", solver.Region{}, leafT(&a), appT("String"))

	_, errs, fatal := s.Solve(constraint)
	if fatal != nil {
		return false, fatal.Error()
	}
	if len(errs) != 1 {
		return false, fmt.Sprintf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	return true, errs[0].Error()
}

func runS6(configPath string) (bool, string) {
	s, err := newSolver(configPath)
	if err != nil {
		return false, err.Error()
	}
	uf := s.UnionFind()

	a := solver.NewFlexVariable(uf, 1, solver.SuperNone, "a")
	idVar := solver.NewFlexVariable(uf, 1, solver.SuperNone, "")
	scheme := solver.Scheme{
		FlexQuantifiers: []solver.Variable{a},
		Constraint:      solver.Equal("identity-definition", solver.Region{}, leafT(&idVar), funT(leafT(&a), leafT(&a))),
		Header:          map[string]solver.LocatedVariable{"id": {Var: idVar}},
	}

	res1 := solver.NewFlexVariable(uf, 0, solver.SuperNone, "")
	res2 := solver.NewFlexVariable(uf, 0, solver.SuperNone, "")
	body := solver.And(
		solver.Instance(solver.Region{}, "id", funT(appT("Int"), leafT(&res1))),
		solver.Instance(solver.Region{}, "id", funT(appT("String"), leafT(&res2))),
	)
	constraint := solver.Let([]solver.Scheme{scheme}, body)

	_, errs, fatal := s.Solve(constraint)
	if fatal != nil {
		return false, fatal.Error()
	}
	if len(errs) != 0 {
		return false, fmt.Sprintf("unexpected errors: %v", errs)
	}
	return true, fmt.Sprintf("id 1 : %s, id \"hi\" : %s", solver.ToSrcType(uf, res1), solver.ToSrcType(uf, res2))
}
