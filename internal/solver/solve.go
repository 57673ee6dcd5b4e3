package solver

// State is the externally visible result of a solve (spec.md §4.5,
// §6 "Outward"): the final typing environment and the snapshot taken
// at the most recent SaveEnv constraint.
type State struct {
	Env      map[string]LocatedVariable
	SavedEnv map[string]LocatedVariable
}

// Solver owns the mutable state a solve threads through: the type
// graph, the mark source, the current pool, the environment, and the
// accumulated error list (spec.md §4.5 "State", §5 "Shared state").
// It is not safe for concurrent use — the algorithm is explicitly
// single-threaded and cooperative (spec.md §5).
type Solver struct {
	uf    *UnionFind
	marks *MarkCounter
	pool  *Pool

	env      map[string]LocatedVariable
	savedEnv map[string]LocatedVariable
	errors   []*LocatedError

	// IsKernelIdentifier recognizes names the elaborator never bound
	// because they name a foreign/builtin primitive (spec.md §4.5
	// "Instance": "if the name is a 'kernel' identifier not in env,
	// allocate a fresh variable"). nil means none are recognized, so
	// every unresolved Instance is an internal failure.
	IsKernelIdentifier func(name string) bool

	// OnUnify, if set, is called immediately before every unification
	// attempted while solving — a trace hook for tests and diagnostics,
	// not part of the algorithm itself.
	OnUnify func(hint Hint, v1, v2 Variable)
}

// NewSolver creates a solver with a fresh, empty type graph.
func NewSolver() *Solver {
	return &Solver{
		uf:    NewUnionFind(),
		marks: NewMarkCounter(),
		env:   map[string]LocatedVariable{},
	}
}

// UnionFind exposes the underlying graph, e.g. for ToSrcType calls made
// by a caller inspecting the returned State.
func (s *Solver) UnionFind() *UnionFind { return s.uf }

// ApplyConfig wires a loaded Config into this solver: its extra
// super-kind heads into the type graph, and its kernel-identifier list
// into IsKernelIdentifier.
func (s *Solver) ApplyConfig(cfg *Config) {
	s.uf.Configure(cfg)
	s.IsKernelIdentifier = cfg.KernelPredicate()
}

// Bind installs an already-generalized identifier (rank == NoRank)
// into the initial environment before solving, e.g. an imported scheme
// from another module (spec.md §6: "the caller is responsible for
// populating the initial environment with imported schemes").
func (s *Solver) Bind(name string, v Variable, region Region) {
	s.env[name] = LocatedVariable{Var: v, Region: region}
}

// Solve runs the constraint to completion. Unification and occurs-check
// failures accumulate in the returned slice; an InternalInvariant
// violation aborts immediately and is returned as the third value
// instead (spec.md §4.5 step 3, §7).
func (s *Solver) Solve(c Constraint) (st *State, errs []*LocatedError, fatal *InternalInvariantError) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*InternalInvariantError); ok {
				st, errs, fatal = nil, nil, ie
				return
			}
			panic(r)
		}
	}()

	s.pool = NewPool()
	s.actuallySolve(c)
	return &State{Env: cloneEnv(s.env), SavedEnv: s.savedEnv}, s.errors, nil
}

func cloneEnv(env map[string]LocatedVariable) map[string]LocatedVariable {
	out := make(map[string]LocatedVariable, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

func (s *Solver) actuallySolve(c Constraint) {
	switch c.Kind {
	case CTrue:
		return

	case CSaveEnv:
		s.savedEnv = cloneEnv(s.env)
		return

	case CEqual:
		v1 := Flatten(s.uf, s.pool, c.T1)
		v2 := Flatten(s.uf, s.pool, c.T2)
		if s.OnUnify != nil {
			s.OnUnify(c.Hint, v1, v2)
		}
		s.errors = append(s.errors, Unify(s.uf, s.pool, c.Hint, c.Region, v1, v2)...)
		return

	case CAnd:
		for _, sub := range c.Conjuncts {
			s.actuallySolve(sub)
		}
		return

	case CInstance:
		s.solveInstance(c)
		return

	case CLet:
		s.solveLet(c)
		return

	default:
		panic(newInternalInvariant("unknown constraint kind %d", c.Kind))
	}
}

func (s *Solver) solveInstance(c Constraint) {
	var instanceVar Variable
	if lv, ok := s.env[c.InstanceName]; ok {
		instanceVar = MakeInstance(s.uf, s.pool, lv.Var)
	} else if s.IsKernelIdentifier != nil && s.IsKernelIdentifier(c.InstanceName) {
		instanceVar = s.uf.Fresh(flexDescriptor(s.pool.Rank, SuperNone, c.InstanceName))
		s.pool.Register(instanceVar)
	} else {
		panic(newInternalInvariant("unresolved identifier %q: the elaborator should have bound it in the environment", c.InstanceName))
	}

	v2 := Flatten(s.uf, s.pool, c.InstanceTerm)
	hint := InstanceHint(c.InstanceName)
	if s.OnUnify != nil {
		s.OnUnify(hint, instanceVar, v2)
	}
	s.errors = append(s.errors, Unify(s.uf, s.pool, hint, c.Region, instanceVar, v2)...)
}

func (s *Solver) solveLet(c Constraint) {
	snapshot := cloneEnv(s.env)

	header := map[string]LocatedVariable{}
	for i := range c.Schemes {
		for name, lv := range s.solveScheme(&c.Schemes[i]) {
			header[name] = lv
			s.env[name] = lv
		}
	}

	if c.Body != nil {
		s.actuallySolve(*c.Body)
	}

	s.occursCheckHeader(header)

	s.env = snapshot
}

// solveScheme implements both cases of spec.md §4.5 "solveScheme": a
// scheme with no quantifiers solves its constraint in the current
// pool; a polymorphic one opens a fresh pool one rank deeper, solves
// there, then generalizes it back into the enclosing pool.
func (s *Solver) solveScheme(scheme *Scheme) map[string]LocatedVariable {
	if len(scheme.RigidQuantifiers) == 0 && len(scheme.FlexQuantifiers) == 0 {
		s.actuallySolve(scheme.Constraint)
		return resolveHeader(s.uf, scheme.Header)
	}

	oldPool := s.pool
	youngPool := NextRankPool(oldPool)
	for _, v := range scheme.RigidQuantifiers {
		youngPool.Register(v)
	}
	for _, v := range scheme.FlexQuantifiers {
		youngPool.Register(v)
	}

	s.pool = youngPool
	s.actuallySolve(scheme.Constraint)
	s.pool = oldPool

	Generalize(s.uf, s.marks, oldPool, youngPool)

	for _, v := range scheme.RigidQuantifiers {
		if s.uf.Descriptor(v).Rank != NoRank {
			panic(newInternalInvariant("rigid quantifier %d did not generalize to NO_RANK", v))
		}
	}

	return resolveHeader(s.uf, scheme.Header)
}

func resolveHeader(uf *UnionFind, header map[string]LocatedVariable) map[string]LocatedVariable {
	out := make(map[string]LocatedVariable, len(header))
	for name, lv := range header {
		out[name] = LocatedVariable{Var: uf.Find(lv.Var), Region: lv.Region}
	}
	return out
}

// occursCheckHeader runs the post-Let occurs check (spec.md §4.5,
// §4.3.6 "Occurs check"): any header binding whose class structurally
// contains itself is an infinite type. The class's content is replaced
// with Error("∞") so later unifications involving it degrade instead of
// looping.
func (s *Solver) occursCheckHeader(header map[string]LocatedVariable) {
	for name, lv := range header {
		if !occurs(s.uf, lv.Var, map[Variable]bool{}) {
			continue
		}
		rendering := ToSrcType(s.uf, lv.Var)
		s.uf.ModifyDescriptor(lv.Var, func(d *Descriptor) {
			d.Content = errorContent("∞")
		})
		s.errors = append(s.errors, newInfiniteType(name, rendering))
	}
}

func occurs(uf *UnionFind, v Variable, onPath map[Variable]bool) bool {
	root := uf.Find(v)
	if onPath[root] {
		return true
	}
	d := uf.Descriptor(root)

	onPath[root] = true
	defer delete(onPath, root)

	switch d.Content.Kind {
	case KindAlias:
		if occurs(uf, d.Content.RealVar, onPath) {
			return true
		}
		for _, a := range d.Content.AliasArgs {
			if occurs(uf, a.Var, onPath) {
				return true
			}
		}
		return false

	case KindStructure:
		return occursTerm(uf, d.Content.Term, onPath)

	default:
		return false
	}
}

func occursTerm(uf *UnionFind, t Term, onPath map[Variable]bool) bool {
	switch t.Kind {
	case TermApp:
		for _, a := range t.Args {
			if occurs(uf, a, onPath) {
				return true
			}
		}
		return false

	case TermFun:
		return occurs(uf, t.FunArg, onPath) || occurs(uf, t.FunRes, onPath)

	case TermRecord:
		if occurs(uf, t.Ext, onPath) {
			return true
		}
		for _, fv := range t.Fields {
			if occurs(uf, fv, onPath) {
				return true
			}
		}
		return false

	default:
		return false
	}
}
