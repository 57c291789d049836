package agent

import (
	"time"

	"github.com/spetersoncode/talk2mcp/plan"
)

// OperationStatus is the ledger state of an operation.
type OperationStatus string

const (
	StatusPending   OperationStatus = "pending"
	StatusCompleted OperationStatus = "completed"
	StatusSkipped   OperationStatus = "skipped"
)

// How an operation left the pending state.
const (
	ViaTool     = "tool"
	ViaAnswer   = "answer"
	ViaFallback = "fallback"
)

// LedgerEntry is one operation of a run.
type LedgerEntry struct {
	Operation   string          `json:"operation"`
	Status      OperationStatus `json:"status"`
	CompletedAt time.Time       `json:"completedAt,omitzero"`
	Via         string          `json:"via,omitempty"`
}

// Resolved reports whether the entry left the pending state.
func (e LedgerEntry) Resolved() bool {
	return e.Status != StatusPending
}

// Ledger tracks which operations of a plan are done. Transitions only go
// from pending, so a resolved operation never becomes pending again.
type Ledger struct {
	entries []LedgerEntry
	index   map[string]int
}

// NewLedger returns a ledger with every operation pending.
func NewLedger(ops []plan.Operation) *Ledger {
	l := &Ledger{
		entries: make([]LedgerEntry, len(ops)),
		index:   make(map[string]int, len(ops)),
	}
	for i, op := range ops {
		l.entries[i] = LedgerEntry{Operation: op.Name, Status: StatusPending}
		l.index[op.Name] = i
	}
	return l
}

// Status returns the state of an operation.
func (l *Ledger) Status(name string) (OperationStatus, bool) {
	i, ok := l.index[name]
	if !ok {
		return "", false
	}
	return l.entries[i].Status, true
}

// IsPending reports whether name is a pending operation.
func (l *Ledger) IsPending(name string) bool {
	s, ok := l.Status(name)
	return ok && s == StatusPending
}

// Complete marks a pending operation completed. It reports false when the
// operation is unknown or already resolved.
func (l *Ledger) Complete(name, via string, at time.Time) bool {
	return l.resolve(name, StatusCompleted, via, at)
}

// Skip marks a pending operation skipped.
func (l *Ledger) Skip(name, via string, at time.Time) bool {
	return l.resolve(name, StatusSkipped, via, at)
}

func (l *Ledger) resolve(name string, status OperationStatus, via string, at time.Time) bool {
	i, ok := l.index[name]
	if !ok || l.entries[i].Status != StatusPending {
		return false
	}
	l.entries[i].Status = status
	l.entries[i].Via = via
	l.entries[i].CompletedAt = at
	return true
}

// FirstPending returns the first of names, in ledger order, that is pending.
func (l *Ledger) FirstPending(names []string) (string, bool) {
	for _, e := range l.entries {
		if e.Status != StatusPending {
			continue
		}
		for _, n := range names {
			if n == e.Operation {
				return n, true
			}
		}
	}
	return "", false
}

// Done reports whether every operation is resolved.
func (l *Ledger) Done() bool {
	for _, e := range l.entries {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

// Entries returns a copy of the ledger in plan order.
func (l *Ledger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
