package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPlan is returned by Run when called without a plan.
	ErrNoPlan = errors.New("agent: no plan")

	// ErrCancelled is the Result error of a run stopped by its context.
	ErrCancelled = errors.New("agent: run cancelled")
)

// FaultLimitError is the Result error of a run that exceeded its fault
// threshold.
type FaultLimitError struct {
	Faults    int
	Threshold int
	Last      string
}

func (e *FaultLimitError) Error() string {
	return fmt.Sprintf("agent: %d faults exceeded threshold %d (last: %s)", e.Faults, e.Threshold, e.Last)
}
