package schedule

import "fmt"

// ValidationError reports a malformed request: a missing field, a bad
// date, or an unknown weight key. Never recovered — returned straight
// to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field %q: %s", e.Field, e.Reason)
}

// InfeasibleGridError reports that a required-periods class has no
// slot reachable within the horizon once conflicts are pruned.
type InfeasibleGridError struct {
	ClassID string
}

func (e *InfeasibleGridError) Error() string {
	return fmt.Sprintf("infeasible grid: class %q has no required-period slot in range", e.ClassID)
}

// NoSolutionError reports that the solver found nothing within the
// time budget and no relaxation was attempted, or relaxation was
// exhausted. Callers receive an empty-assignment Response, not this
// error directly, but internals propagate it to decide metadata.
type NoSolutionError struct {
	Reason string
}

func (e *NoSolutionError) Error() string {
	if e.Reason == "" {
		return "no feasible solution found"
	}
	return fmt.Sprintf("no feasible solution found: %s", e.Reason)
}

// InternalError wraps an unexpected fault inside the solver. The
// best-so-far assignment set, if any, is still attached by the
// caller via Response.Assignments.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal solver error: %v", e.Cause)
}

func (e *InternalError) Unwrap() error { return e.Cause }
