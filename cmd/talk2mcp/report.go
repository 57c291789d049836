package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/spetersoncode/talk2mcp/agent"
)

// reportMarkdown renders a run result as a markdown report.
func reportMarkdown(res *agent.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Run %s\n\n", res.TaskID)
	if res.Plan != "" {
		fmt.Fprintf(&b, "**Plan:** %s\n\n", res.Plan)
	}
	fmt.Fprintf(&b, "**Query:** %s\n\n", res.Query)
	fmt.Fprintf(&b, "**Termination:** %s (%s)\n\n", res.Termination, res.Reason)
	answer := res.Answer
	if answer == "" {
		answer = "_none_"
	}
	fmt.Fprintf(&b, "**Answer:** %s\n\n", answer)
	fmt.Fprintf(&b, "**Iterations:** %d, **Faults:** %d, **Duration:** %s\n\n",
		res.Iterations, res.Faults, res.Duration().Round(time.Millisecond))

	b.WriteString("## Operations\n\n")
	b.WriteString("| Operation | Status | Via |\n|---|---|---|\n")
	for _, e := range res.Ledger {
		via := e.Via
		if via == "" {
			via = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", e.Operation, e.Status, via)
	}

	if len(res.History) > 0 {
		b.WriteString("\n## History\n\n")
		for i, line := range res.History {
			fmt.Fprintf(&b, "%d. %s\n", i+1, line)
		}
	}

	if res.Error != "" {
		fmt.Fprintf(&b, "\n## Error\n\n```\n%s\n```\n", res.Error)
	}
	return b.String()
}

// renderReport renders markdown for the terminal. Plain output returns the
// markdown unchanged.
func renderReport(markdown string, plain bool) (string, error) {
	if plain {
		return markdown, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
