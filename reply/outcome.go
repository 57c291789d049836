// Package reply parses model replies written in the orchestration grammar.
//
// A reply is classified into exactly one [Outcome]:
//
//	FUNCTION_CALL: {"function":"add","parameters":{"a":45,"b":44}}  -> FunctionCall
//	FINAL_ANSWER: [89]                                             -> FinalAnswer
//	ERROR: canvas not open                                         -> Error
//	SUGGESTION: call open_canvas first
//	COMPLETE: rectangle drawn with the answer                      -> Complete
//
// Anything else, including a FUNCTION_CALL whose payload is not valid JSON,
// is [Unrecognized]. Parse never panics and never returns nil.
package reply

import "fmt"

// Kind identifies the variant of an Outcome.
type Kind string

const (
	KindFunctionCall Kind = "function_call"
	KindFinalAnswer  Kind = "final_answer"
	KindError        Kind = "error"
	KindComplete     Kind = "complete"
	KindUnrecognized Kind = "unrecognized"
)

// Outcome is the classified result of parsing one model reply.
type Outcome interface {
	Kind() Kind
	fmt.Stringer
}

// FunctionCall asks for a tool invocation.
// Arguments holds named parameters; Positional is set instead when the model
// sent parameters as a JSON array. Numbers are json.Number.
type FunctionCall struct {
	Name       string
	Arguments  map[string]any
	Positional []any
}

func (FunctionCall) Kind() Kind { return KindFunctionCall }

func (f FunctionCall) String() string {
	return FormatFunctionCall(f.Name, f.Arguments, f.Positional)
}

// FinalAnswer carries the bracketed value of a FINAL_ANSWER line.
type FinalAnswer struct {
	Value string
}

func (FinalAnswer) Kind() Kind { return KindFinalAnswer }

func (f FinalAnswer) String() string {
	return MarkerFinalAnswer + " [" + f.Value + "]"
}

// Error is the model reporting that it cannot proceed.
type Error struct {
	Description string
	Suggestion  string
}

func (Error) Kind() Kind { return KindError }

func (e Error) String() string {
	if e.Suggestion == "" {
		return MarkerError + " " + e.Description
	}
	return MarkerError + " " + e.Description + "\n" + MarkerSuggestion + " " + e.Suggestion
}

// Complete is the model declaring the task finished.
type Complete struct {
	Summary string
}

func (Complete) Kind() Kind { return KindComplete }

func (c Complete) String() string {
	return MarkerComplete + " " + c.Summary
}

// Unrecognized is a reply that matched no marker or had a malformed payload.
type Unrecognized struct {
	Raw    string
	Reason string
}

func (Unrecognized) Kind() Kind { return KindUnrecognized }

func (u Unrecognized) String() string {
	return fmt.Sprintf("unrecognized reply (%s)", u.Reason)
}
