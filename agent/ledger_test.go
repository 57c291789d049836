package agent

import (
	"testing"
	"time"

	"github.com/spetersoncode/talk2mcp/plan"
	"github.com/stretchr/testify/assert"
)

func TestLedger(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	newLedger := func() *Ledger {
		return NewLedger([]plan.Operation{{Name: "calculation"}, {Name: "drawing"}, {Name: "finalization"}})
	}

	t.Run("starts pending", func(t *testing.T) {
		l := newLedger()
		assert.False(t, l.Done())
		for _, e := range l.Entries() {
			assert.Equal(t, StatusPending, e.Status)
			assert.True(t, e.CompletedAt.IsZero())
		}
	})

	t.Run("complete is one way", func(t *testing.T) {
		l := newLedger()
		assert.True(t, l.Complete("calculation", ViaTool, at))
		assert.False(t, l.Complete("calculation", ViaAnswer, at.Add(time.Hour)))
		assert.False(t, l.Skip("calculation", ViaFallback, at))

		e := l.Entries()[0]
		assert.Equal(t, StatusCompleted, e.Status)
		assert.Equal(t, ViaTool, e.Via)
		assert.Equal(t, at, e.CompletedAt)
	})

	t.Run("unknown operation", func(t *testing.T) {
		l := newLedger()
		assert.False(t, l.Complete("email", ViaTool, at))
		_, ok := l.Status("email")
		assert.False(t, ok)
		assert.False(t, l.IsPending("email"))
	})

	t.Run("skipped counts as resolved", func(t *testing.T) {
		l := newLedger()
		l.Complete("calculation", ViaTool, at)
		l.Skip("drawing", ViaFallback, at)
		assert.False(t, l.Done())
		l.Complete("finalization", ViaFallback, at)
		assert.True(t, l.Done())

		s, _ := l.Status("drawing")
		assert.Equal(t, StatusSkipped, s)
	})

	t.Run("first pending follows ledger order", func(t *testing.T) {
		l := newLedger()
		name, ok := l.FirstPending([]string{"finalization", "drawing"})
		assert.True(t, ok)
		assert.Equal(t, "drawing", name)

		l.Complete("drawing", ViaTool, at)
		name, _ = l.FirstPending([]string{"finalization", "drawing"})
		assert.Equal(t, "finalization", name)

		l.Complete("finalization", ViaTool, at)
		_, ok = l.FirstPending([]string{"finalization", "drawing"})
		assert.False(t, ok)
	})

	t.Run("entries are a copy", func(t *testing.T) {
		l := newLedger()
		entries := l.Entries()
		entries[0].Status = StatusCompleted
		assert.True(t, l.IsPending("calculation"))
	})

	t.Run("empty ledger is done", func(t *testing.T) {
		assert.True(t, NewLedger(nil).Done())
	})
}
