package agent

import (
	"strings"
	"testing"

	"github.com/spetersoncode/talk2mcp/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// section returns the text between start and the next blank line.
func section(t *testing.T, prompt, start string) string {
	t.Helper()
	i := strings.Index(prompt, start)
	require.GreaterOrEqual(t, i, 0, "missing %q", start)
	rest := prompt[i+len(start):]
	if j := strings.Index(rest, "\n\n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func TestBuildPrompt(t *testing.T) {
	catalog, _, _ := fixture(t, false)
	p := plan.Default()

	state := PromptState{
		Plan:    p,
		Catalog: catalog,
		Ledger: []LedgerEntry{
			{Operation: "calculation", Status: StatusCompleted, Via: ViaTool},
			{Operation: "canvas-setup", Status: StatusPending},
			{Operation: "drawing", Status: StatusSkipped, Via: ViaFallback},
			{Operation: "finalization", Status: StatusPending},
		},
		Answer:  "89",
		History: []string{"In iteration 1 you called add with {\"a\":45,\"b\":44} parameters, and the function returned FINAL_ANSWER: [89]."},
	}
	prompt := BuildPrompt(state)

	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, prompt, BuildPrompt(state))
	})

	t.Run("lists tools", func(t *testing.T) {
		assert.Contains(t, prompt, "1. add(a: integer, b: integer) - Add two numbers")
		assert.Contains(t, prompt, "draw_rectangle(x1: integer, y1: integer, x2: integer, y2: integer)")
	})

	t.Run("resolved operations are only in the completed group", func(t *testing.T) {
		pending := section(t, prompt, "Pending:\n")
		assert.Contains(t, pending, "- canvas-setup: PENDING")
		assert.Contains(t, pending, "- finalization: PENDING")
		assert.NotContains(t, pending, "calculation")
		assert.NotContains(t, pending, "drawing")

		completed := section(t, prompt, "Completed:\n")
		assert.Contains(t, completed, "- calculation: COMPLETED")
		assert.Contains(t, completed, "- drawing: SKIPPED (via fallback)")

		next := section(t, prompt, "NEXT OPERATIONS:\n")
		assert.Contains(t, next, "1. canvas-setup")
		assert.Contains(t, next, "2. finalization")
		assert.NotContains(t, next, "calculation")
	})

	t.Run("examples cover pending operations", func(t *testing.T) {
		assert.Contains(t, prompt, `FUNCTION_CALL: {"function":"open_canvas","parameters":{}}`)
		assert.Contains(t, prompt, `FUNCTION_CALL: {"function":"add_text","parameters":{"text":"text"}}`)
		assert.NotContains(t, prompt, `{"function":"add","parameters":{"a":5,"b":5}}`)
	})

	t.Run("carries answer history and query", func(t *testing.T) {
		assert.Contains(t, prompt, "Known answer: 89")
		assert.Contains(t, prompt, "Previous iterations:\n"+state.History[0])
		assert.True(t, strings.HasSuffix(prompt, "Query: "+p.Query+"\nWhat is the next step?"))
		assert.NotContains(t, prompt, "FORMAT REMINDER")
	})

	t.Run("reprompt adds the reminder", func(t *testing.T) {
		s := state
		s.Reprompt = true
		assert.Contains(t, BuildPrompt(s), "FORMAT REMINDER")
	})
}

func TestBuildPromptFreshRun(t *testing.T) {
	catalog, _, _ := fixture(t, false)
	p := plan.Default()
	p.Instructions = "Keep the rectangle small."

	prompt := BuildPrompt(PromptState{Plan: p, Catalog: catalog, Ledger: NewLedger(p.Operations).Entries()})

	assert.Contains(t, section(t, prompt, "Completed:\n"), "- (none)")
	assert.Contains(t, prompt, `FUNCTION_CALL: {"function":"add","parameters":{"a":5,"b":5}}`)
	assert.Contains(t, prompt, "Keep the rectangle small.")
	assert.NotContains(t, prompt, "Known answer")
	assert.NotContains(t, prompt, "Previous iterations")
}

func TestBuildPromptWithoutCatalog(t *testing.T) {
	prompt := BuildPrompt(PromptState{})
	assert.Contains(t, prompt, "Available tools:\n(none)")
	assert.True(t, strings.HasSuffix(prompt, "What is the next step?"))
}
