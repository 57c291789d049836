package agent

import (
	"fmt"
	"strings"

	"github.com/spetersoncode/talk2mcp/plan"
	"github.com/spetersoncode/talk2mcp/reply"
	"github.com/spetersoncode/talk2mcp/tool"
)

// PromptState is everything a prompt is built from.
type PromptState struct {
	Plan    *plan.Plan
	Catalog *tool.Catalog
	Ledger  []LedgerEntry
	Answer  string
	History []string

	// Reprompt asks for the format reminder after an unrecognized reply.
	Reprompt bool
}

const preamble = `You are an agent that completes multi-step tasks by calling tools. You have access to the tools listed below.`

const formats = `Respond with EXACTLY ONE of these formats:
1. For function calls (use compact JSON with no extra whitespace):
   FUNCTION_CALL: {"function":"function_name","parameters":{"param1":value1,"param2":value2}}
%s
2. For final answers:
   FINAL_ANSWER: [number]

3. For errors or issues:
   ERROR: [description of the issue]
   SUGGESTION: [proposed solution]

4. For completion:
   COMPLETE: [summary of completed operations]`

const rules = `RULES:
- Perform the pending operations in order, each exactly once.
- Never call a tool for an operation that is listed as completed.
- Report a computed value with FINAL_ANSWER before moving on.
- Return COMPLETE when every operation is done.`

const formatReminder = `FORMAT REMINDER: your previous reply did not match any of the formats above. Reply with exactly one line starting with FUNCTION_CALL:, FINAL_ANSWER:, ERROR: or COMPLETE:.`

// BuildPrompt renders the prompt for the next model call. It depends on
// nothing but s, so equal states give equal prompts.
func BuildPrompt(s PromptState) string {
	var b strings.Builder

	b.WriteString(preamble)
	b.WriteString("\n\nAvailable tools:\n")
	if s.Catalog != nil && s.Catalog.Len() > 0 {
		b.WriteString(s.Catalog.Describe())
	} else {
		b.WriteString("(none)")
	}

	pending, resolved := splitLedger(s.Ledger)
	ops := operationIndex(s.Plan)

	if len(pending) > 0 {
		b.WriteString("\n\nNEXT OPERATIONS:\n")
		for i, e := range pending {
			fmt.Fprintf(&b, "%d. %s", i+1, e.Operation)
			if op, ok := ops[e.Operation]; ok {
				if op.Description != "" {
					b.WriteString(": " + op.Description)
				}
				if len(op.Tools) > 0 {
					b.WriteString(" (tools: " + strings.Join(op.Tools, ", ") + ")")
				}
			}
			b.WriteByte('\n')
		}
		b.WriteString("Each operation must be completed before moving to the next.")
	}

	b.WriteString("\n\n")
	fmt.Fprintf(&b, formats, examples(s.Catalog, s.Plan, pending))
	b.WriteString("\n\n")
	b.WriteString(rules)

	if s.Plan != nil && strings.TrimSpace(s.Plan.Instructions) != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(s.Plan.Instructions))
	}

	b.WriteString("\n\nOPERATION STATUS:\nCompleted:\n")
	writeEntries(&b, resolved)
	b.WriteString("Pending:\n")
	writeEntries(&b, pending)

	if s.Answer != "" {
		fmt.Fprintf(&b, "\nKnown answer: %s\n", s.Answer)
	}

	if len(s.History) > 0 {
		b.WriteString("\nPrevious iterations:\n")
		for _, h := range s.History {
			b.WriteString(h)
			b.WriteByte('\n')
		}
	}

	if s.Reprompt {
		b.WriteString("\n")
		b.WriteString(formatReminder)
		b.WriteByte('\n')
	}

	if s.Plan != nil {
		fmt.Fprintf(&b, "\nQuery: %s\n", s.Plan.Query)
	}
	b.WriteString("What is the next step?")
	return b.String()
}

func splitLedger(entries []LedgerEntry) (pending, resolved []LedgerEntry) {
	for _, e := range entries {
		if e.Resolved() {
			resolved = append(resolved, e)
		} else {
			pending = append(pending, e)
		}
	}
	return pending, resolved
}

func operationIndex(p *plan.Plan) map[string]plan.Operation {
	if p == nil {
		return nil
	}
	ops := make(map[string]plan.Operation, len(p.Operations))
	for _, op := range p.Operations {
		ops[op.Name] = op
	}
	return ops
}

func writeEntries(b *strings.Builder, entries []LedgerEntry) {
	if len(entries) == 0 {
		b.WriteString("- (none)\n")
		return
	}
	for _, e := range entries {
		switch e.Status {
		case StatusSkipped:
			fmt.Fprintf(b, "- %s: SKIPPED (via %s)\n", e.Operation, e.Via)
		case StatusCompleted:
			fmt.Fprintf(b, "- %s: COMPLETED\n", e.Operation)
		default:
			fmt.Fprintf(b, "- %s: PENDING\n", e.Operation)
		}
	}
}

// examples renders one sample call for the first catalog tool of each
// pending operation.
func examples(c *tool.Catalog, p *plan.Plan, pending []LedgerEntry) string {
	if c == nil {
		return ""
	}
	ops := operationIndex(p)
	var lines []string
	seen := make(map[string]bool)
	for _, e := range pending {
		for _, name := range ops[e.Operation].Tools {
			entry, err := c.Lookup(name)
			if err != nil {
				continue
			}
			if !seen[name] {
				seen[name] = true
				lines = append(lines, fmt.Sprintf("   For %s, use:\n   %s", entry.Signature(), sampleCall(entry)))
			}
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n" + strings.Join(lines, "\n") + "\n"
}

func sampleCall(e tool.Entry) string {
	args := make(map[string]any, len(e.Schema))
	for _, p := range e.Schema {
		args[p.Name] = sampleValue(p.Type)
	}
	return reply.FormatFunctionCall(e.Name(), args, nil)
}

func sampleValue(typ string) any {
	switch typ {
	case tool.TypeInteger:
		return 5
	case tool.TypeNumber:
		return 2.5
	case tool.TypeBoolean:
		return true
	case tool.TypeArray:
		return []int{1, 2, 3}
	case tool.TypeObject:
		return map[string]any{}
	default:
		return "text"
	}
}
