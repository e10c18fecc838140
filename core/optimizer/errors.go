package optimizer

import "fmt"

// InvalidInputError reports a malformed input detected before the LP is
// built. No window is partially constructed when it is returned.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// InfeasibleError reports a window whose LP has no feasible solution. Bound
// names the constraint known or suspected to be violated.
type InfeasibleError struct {
	WindowIndex int
	Bound       string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("window %d infeasible: %s", e.WindowIndex, e.Bound)
}

// SolverError reports that the LP solver terminated without a usable
// solution, or that post-solve validation found violations beyond tolerance.
type SolverError struct {
	WindowIndex int
	Status      string
	Err         error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("window %d solver failure: %s", e.WindowIndex, e.Status)
}

func (e *SolverError) Unwrap() error { return e.Err }
