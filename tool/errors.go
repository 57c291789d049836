package tool

import "fmt"

// UnknownToolError is returned when a call names a tool that is not in the
// catalog or registry.
type UnknownToolError struct {
	Name string
}

// Error returns a formatted error message including the tool name.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool: unknown tool: %s", e.Name)
}

// CoercionError reports an argument that could not be converted to the type
// its parameter declares.
type CoercionError struct {
	Tool      string
	Parameter string
	Reason    string
}

func (e *CoercionError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("tool: parameter %q: %s", e.Parameter, e.Reason)
	}
	return fmt.Sprintf("tool: %s: parameter %q: %s", e.Tool, e.Parameter, e.Reason)
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

// Error returns a formatted error message including the duplicate tool name.
func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}
