package agent

import "time"

// Termination is how a run ended.
type Termination string

const (
	// TerminationSuccess means every operation resolved or the model
	// reported completion.
	TerminationSuccess Termination = "success"

	// TerminationIterationCap means the iteration cap was reached first.
	TerminationIterationCap Termination = "iteration_cap_reached"

	// TerminationFatal means generation failed, the fault threshold was
	// exceeded, or the run was cancelled.
	TerminationFatal Termination = "fatal_error"
)

// Result is the structured outcome of a run.
type Result struct {
	TaskID      string      `json:"taskId"`
	Plan        string      `json:"plan,omitempty"`
	Query       string      `json:"query"`
	Termination Termination `json:"termination"`
	Reason      string      `json:"reason"`
	Iterations  int         `json:"iterations"`

	// Answer is the last known answer, empty when none was recorded.
	Answer string `json:"answer,omitempty"`

	Ledger  []LedgerEntry `json:"ledger"`
	History []string      `json:"history"`
	Faults  int           `json:"faults"`

	// Err is the cause of a fatal termination. Error carries its message
	// through serialization.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Succeeded reports whether the run terminated successfully.
func (r *Result) Succeeded() bool {
	return r.Termination == TerminationSuccess
}

// Duration returns the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Operation returns the ledger entry for name.
func (r *Result) Operation(name string) (LedgerEntry, bool) {
	for _, e := range r.Ledger {
		if e.Operation == name {
			return e, true
		}
	}
	return LedgerEntry{}, false
}
