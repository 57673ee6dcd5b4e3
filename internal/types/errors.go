package types

import (
	"fmt"
	"sort"
	"strings"
)

// TypeErrorKind identifies the taxonomy of error a TypeCheckError reports.
// Mismatch/InfiniteType/BadKind/InternalInvariant are the solver's own
// kinds (spec.md §7); the rest are carried from the teacher's record/row
// diagnostics and reused wherever a Record1 unification fails.
type TypeErrorKind string

const (
	MismatchError         TypeErrorKind = "mismatch"
	InfiniteTypeError     TypeErrorKind = "infinite_type"
	BadKindError          TypeErrorKind = "bad_kind"
	InternalInvariantKind TypeErrorKind = "internal_invariant"
	RowMismatchError      TypeErrorKind = "row_mismatch"
	MissingFieldError     TypeErrorKind = "missing_field"
	ExtraFieldError       TypeErrorKind = "extra_field"
)

// TypeCheckError is a detailed, located type error.
type TypeCheckError struct {
	Kind       TypeErrorKind
	Path       []string // Field/expression path (record field nesting)
	Position   string   // Source region, rendered by the caller
	Expected   Type
	Actual     Type
	Message    string
	Suggestion string
}

func (e *TypeCheckError) Error() string {
	var parts []string

	if e.Position != "" {
		parts = append(parts, e.Position)
	}

	if len(e.Path) > 0 {
		parts = append(parts, fmt.Sprintf("at %s", strings.Join(e.Path, ".")))
	}

	parts = append(parts, e.Message)

	if e.Expected != nil && e.Actual != nil {
		parts = append(parts, fmt.Sprintf("\n  Expected: %s\n  Actual:   %s", e.Expected, e.Actual))
	}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}

	return strings.Join(parts, ": ")
}

// NewMismatchError reports two classes that could not be unified
// (spec.md §4.3.6, §7 Mismatch{hint, region, expected, actual}).
func NewMismatchError(hint, position string, expected, actual Type) *TypeCheckError {
	return &TypeCheckError{
		Kind:     MismatchError,
		Position: position,
		Expected: expected,
		Actual:   actual,
		Message:  fmt.Sprintf("type mismatch (%s)", hint),
	}
}

// NewBadKindError reports a super-constraint violation (spec.md §4.3.4):
// a Flex variable constrained to number/comparable/appendable/compappend
// unified with a Structure whose head does not satisfy it.
func NewBadKindError(hint, position string, super string, actual Type) *TypeCheckError {
	return &TypeCheckError{
		Kind:       BadKindError,
		Position:   position,
		Actual:     actual,
		Message:    fmt.Sprintf("%s does not satisfy the %s constraint (%s)", actual, super, hint),
		Suggestion: suggestionForSuper(super),
	}
}

func suggestionForSuper(super string) string {
	switch super {
	case "number":
		return "expected Int or Float"
	case "comparable":
		return "expected Int, Float, Char, String, a List of comparables, or a Tuple of comparables"
	case "appendable":
		return "expected String or a List"
	case "compappend":
		return "expected String or a List of comparables"
	default:
		return ""
	}
}

// NewInfiniteTypeError reports a structural cycle found by the
// post-Let occurs check (spec.md §4.5, "Occurs check").
func NewInfiniteTypeError(name string, rendering Type) *TypeCheckError {
	return &TypeCheckError{
		Kind:       InfiniteTypeError,
		Message:    fmt.Sprintf("infinite type: %s occurs in its own definition", name),
		Actual:     rendering,
		Suggestion: "this would require an infinitely large type; check for a recursive definition missing a base case",
	}
}

// NewInternalInvariantError reports a fatal violation of an internal
// solver invariant (spec.md §7 InternalInvariant) — generalization found
// a rigid quantifier that never reached NO_RANK.
func NewInternalInvariantError(message string) *TypeCheckError {
	return &TypeCheckError{
		Kind:    InternalInvariantKind,
		Message: message,
	}
}

// NewRecordRowError creates a detailed record-field mismatch error for
// Record1 vs Record1 unification (spec.md §4.3.5).
func NewRecordRowError(expected, actual *TRecord, path []string) *TypeCheckError {
	missing := []string{}
	for k := range expected.Fields {
		if _, ok := actual.Fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)

	extra := []string{}
	typeMismatches := []string{}
	for k, actualType := range actual.Fields {
		if expectedType, ok := expected.Fields[k]; ok {
			if !expectedType.Equals(actualType) {
				fieldPath := append(append([]string{}, path...), k)
				typeMismatches = append(typeMismatches,
					fmt.Sprintf("%s: expected %s, found %s",
						strings.Join(fieldPath, "."), expectedType, actualType))
			}
		} else {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)

	message := "record field mismatch"
	suggestions := []string{}

	if len(missing) > 0 {
		message = fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))
		suggestions = append(suggestions, fmt.Sprintf("add fields: %s", strings.Join(missing, ", ")))
	}

	if len(extra) > 0 {
		if len(missing) > 0 {
			message += fmt.Sprintf("; has extra fields: %s", strings.Join(extra, ", "))
		} else {
			message = fmt.Sprintf("has extra fields: %s", strings.Join(extra, ", "))
		}
		if expected.Row == nil {
			suggestions = append(suggestions, "this record type is closed and does not allow extra fields")
		}
	}

	if len(typeMismatches) > 0 {
		if len(missing) > 0 || len(extra) > 0 {
			message += "; "
		}
		message += fmt.Sprintf("field type mismatches: %s", strings.Join(typeMismatches, ", "))
	}

	return &TypeCheckError{
		Kind:       RowMismatchError,
		Path:       path,
		Message:    message,
		Suggestion: strings.Join(suggestions, "; "),
	}
}

// ErrorList aggregates the errors accumulated over one solve (spec.md
// §4.5/§7: unification failures accumulate without aborting the walk).
type ErrorList []*TypeCheckError

func (e ErrorList) Error() string {
	if len(e) == 0 {
		return "no errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d type errors:", len(e)))
	for i, err := range e {
		parts = append(parts, fmt.Sprintf("\n[%d] %s", i+1, err.Error()))
	}
	return strings.Join(parts, "\n")
}
