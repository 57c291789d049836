// Package plan describes the multi-step tasks the agent carries out.
//
// A Plan names the query sent to the model, the ordered operations that
// make up the task, the tools that fulfil each operation, and the fallbacks
// to apply when an operation keeps failing. Plans are YAML documents:
//
//	name: sum-and-draw
//	query: Find the sum of 45 and 44, then draw it.
//	operations:
//	  - name: calculation
//	    tools: [add]
//	    yields_answer: true
//	    completes_on_answer: true
//	  - {name: drawing, tools: [draw_rectangle]}
//	  - {name: finalization, tools: [add_text]}
//	fallbacks:
//	  - operation: drawing
//	    skip_to: finalization
//	    call:
//	      tool: add_text
//	      arguments: {text: "Final Answer: {{.Answer}}"}
package plan

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// DefaultAfterFailures is how many failures an operation absorbs before its
// fallback runs.
const DefaultAfterFailures = 2

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid plan")

//go:embed default.yaml
var defaultPlan []byte

// Plan is a task for the agent.
type Plan struct {
	Name  string `yaml:"name" json:"name"`
	Query string `yaml:"query" json:"query"`

	// Instructions are appended to the system prompt.
	Instructions string `yaml:"instructions,omitempty" json:"instructions,omitempty"`

	// MaxIterations overrides the agent's iteration cap when positive.
	MaxIterations int `yaml:"max_iterations,omitempty" json:"maxIterations,omitempty"`

	// StatefulTools are tools whose calls are followed by a settle delay.
	StatefulTools []string `yaml:"stateful_tools,omitempty" json:"statefulTools,omitempty"`

	Operations []Operation `yaml:"operations" json:"operations"`
	Fallbacks  []Fallback  `yaml:"fallbacks,omitempty" json:"fallbacks,omitempty"`
}

// Operation is one logical step of a plan.
type Operation struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Tools       []string `yaml:"tools,omitempty" json:"tools,omitempty"`

	// YieldsAnswer records a successful call's result as the pending answer.
	YieldsAnswer bool `yaml:"yields_answer,omitempty" json:"yieldsAnswer,omitempty"`

	// CompletesOnAnswer marks the operation complete on FINAL_ANSWER.
	CompletesOnAnswer bool `yaml:"completes_on_answer,omitempty" json:"completesOnAnswer,omitempty"`
}

// Uses reports whether tool fulfils the operation.
func (o Operation) Uses(tool string) bool {
	return slices.Contains(o.Tools, tool)
}

// Fallback replaces a failing operation with a direct tool call.
type Fallback struct {
	// Operation is the failing operation.
	Operation string `yaml:"operation" json:"operation"`

	// AfterFailures is the failure count that arms the fallback.
	AfterFailures int `yaml:"after_failures,omitempty" json:"afterFailures,omitempty"`

	// SkipTo is the operation the call completes. Empty means Operation.
	SkipTo string `yaml:"skip_to,omitempty" json:"skipTo,omitempty"`

	Call Call `yaml:"call" json:"call"`
}

// Target returns the operation completed by a successful fallback call.
func (f Fallback) Target() string {
	if f.SkipTo != "" {
		return f.SkipTo
	}
	return f.Operation
}

// Call is a tool invocation whose string arguments are text/template
// sources rendered against TemplateData.
type Call struct {
	Tool      string         `yaml:"tool" json:"tool"`
	Arguments map[string]any `yaml:"arguments,omitempty" json:"arguments,omitempty"`
}

// TemplateData is the data available to fallback argument templates.
type TemplateData struct {
	Answer string
}

// Render returns the call's arguments with every string value executed as
// a template. Non-string values are copied unchanged.
func (c Call) Render(data TemplateData) (map[string]any, error) {
	out := make(map[string]any, len(c.Arguments))
	for name, value := range c.Arguments {
		src, ok := value.(string)
		if !ok {
			out[name] = value
			continue
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		out[name] = buf.String()
	}
	return out, nil
}

// Default returns the built-in sum-and-draw plan.
func Default() *Plan {
	p, err := Parse(defaultPlan)
	if err != nil {
		panic(fmt.Sprintf("plan: built-in plan: %v", err))
	}
	return p
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML plan. Unknown fields are rejected.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) applyDefaults() {
	for i := range p.Fallbacks {
		if p.Fallbacks[i].AfterFailures == 0 {
			p.Fallbacks[i].AfterFailures = DefaultAfterFailures
		}
	}
}

// Validate checks the plan's internal references.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Query) == "" {
		return invalid("query is required")
	}
	if p.MaxIterations < 0 {
		return invalid("max_iterations must not be negative")
	}
	if len(p.Operations) == 0 {
		return invalid("at least one operation is required")
	}

	seen := make(map[string]bool, len(p.Operations))
	for i, op := range p.Operations {
		if op.Name == "" {
			return invalid("operation %d has no name", i+1)
		}
		if seen[op.Name] {
			return invalid("duplicate operation %q", op.Name)
		}
		seen[op.Name] = true
	}

	guarded := make(map[string]bool, len(p.Fallbacks))
	for _, fb := range p.Fallbacks {
		if !seen[fb.Operation] {
			return invalid("fallback references unknown operation %q", fb.Operation)
		}
		if guarded[fb.Operation] {
			return invalid("operation %q has more than one fallback", fb.Operation)
		}
		guarded[fb.Operation] = true
		if fb.SkipTo != "" && !seen[fb.SkipTo] {
			return invalid("fallback for %q skips to unknown operation %q", fb.Operation, fb.SkipTo)
		}
		if fb.Call.Tool == "" {
			return invalid("fallback for %q has no tool", fb.Operation)
		}
		if fb.AfterFailures < 1 {
			return invalid("fallback for %q: after_failures must be positive", fb.Operation)
		}
		if _, err := fb.Call.Render(TemplateData{}); err != nil {
			return invalid("fallback for %q: %v", fb.Operation, err)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Operation returns the named operation.
func (p *Plan) Operation(name string) (Operation, bool) {
	for _, op := range p.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// FallbackFor returns the fallback registered for an operation.
func (p *Plan) FallbackFor(operation string) (Fallback, bool) {
	for _, fb := range p.Fallbacks {
		if fb.Operation == operation {
			return fb, true
		}
	}
	return Fallback{}, false
}

// OperationsUsing returns the names of the operations a tool fulfils, in
// plan order.
func (p *Plan) OperationsUsing(tool string) []string {
	var names []string
	for _, op := range p.Operations {
		if op.Uses(tool) {
			names = append(names, op.Name)
		}
	}
	return names
}

// WithQuery returns a copy of the plan with a different query.
func (p *Plan) WithQuery(query string) *Plan {
	cp := *p
	cp.Query = query
	return &cp
}
