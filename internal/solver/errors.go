package solver

import (
	"fmt"

	"github.com/diogenesoftoronto/hmsolver/internal/types"
)

// Region is the opaque, comparable, renderable stand-in for a surface
// source span. The real region type belongs to the surface AST, an
// external collaborator out of this core's scope (spec.md §1); the
// solver only needs enough of one to locate an error.
type Region struct {
	Line, Col int
}

func (r Region) String() string {
	if r.Line == 0 && r.Col == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", r.Line, r.Col)
}

// Hint labels the provenance of an Equal constraint (e.g. "if-branches",
// "func-arg", or an Instance lookup) so a Mismatch error can say more
// than "these two types differ" (spec.md §3, §4.3).
type Hint string

// InstanceHint labels the equation an Instance constraint generates
// when unifying a freshly instantiated scheme against its use site.
func InstanceHint(name string) Hint {
	return Hint(fmt.Sprintf("instance of %s", name))
}

// LocatedError pairs a TypeCheckError with the region it occurred at
// (spec.md §7: Mismatch{hint, region, ...}, InfiniteType{name, ...}).
type LocatedError struct {
	*types.TypeCheckError
	Region Region
}

func (e *LocatedError) Error() string {
	if e.Region.String() == "" {
		return e.TypeCheckError.Error()
	}
	return e.Region.String() + ": " + e.TypeCheckError.Error()
}

func newMismatch(hint Hint, region Region, expected, actual types.Type) *LocatedError {
	return &LocatedError{
		TypeCheckError: types.NewMismatchError(string(hint), region.String(), expected, actual),
		Region:         region,
	}
}

func newBadKind(hint Hint, region Region, super SuperKind, actual types.Type) *LocatedError {
	return &LocatedError{
		TypeCheckError: types.NewBadKindError(string(hint), region.String(), super.String(), actual),
		Region:         region,
	}
}

func newInfiniteType(name string, rendering types.Type) *LocatedError {
	return &LocatedError{TypeCheckError: types.NewInfiniteTypeError(name, rendering)}
}

// InternalInvariantError is fatal: it aborts Solve immediately instead
// of accumulating (spec.md §7).
type InternalInvariantError struct {
	*types.TypeCheckError
}

func (e *InternalInvariantError) Error() string { return e.TypeCheckError.Error() }

func newInternalInvariant(format string, args ...interface{}) *InternalInvariantError {
	return &InternalInvariantError{TypeCheckError: types.NewInternalInvariantError(fmt.Sprintf(format, args...))}
}
