package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/talk2mcp"
	"github.com/tidwall/gjson"
)

// Declared parameter types.
const (
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeString  = "string"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Param is one declared parameter of a tool.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Schema is a tool's parameter list in declaration order.
type Schema []Param

// Names returns the parameter names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.Name
	}
	return names
}

// Param looks up a parameter by name.
func (s Schema) Param(name string) (Param, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ParseSchema reads a JSON Schema object into an ordered parameter list.
// Properties keep the order they have in the document. A type union such as
// ["integer","null"] resolves to its first non-null member and a missing type
// resolves to string.
func ParseSchema(raw json.RawMessage) Schema {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	doc := gjson.ParseBytes(raw)

	required := map[string]bool{}
	for _, r := range doc.Get("required").Array() {
		required[r.String()] = true
	}

	var schema Schema
	doc.Get("properties").ForEach(func(key, prop gjson.Result) bool {
		schema = append(schema, Param{
			Name:        key.String(),
			Type:        resolveType(prop.Get("type")),
			Description: prop.Get("description").String(),
			Required:    required[key.String()],
		})
		return true
	})
	return schema
}

func resolveType(t gjson.Result) string {
	if t.IsArray() {
		for _, member := range t.Array() {
			if s := member.String(); s != "" && s != "null" {
				return s
			}
		}
		return TypeString
	}
	if s := t.String(); s != "" {
		return s
	}
	return TypeString
}

// Entry is one tool in a Catalog.
type Entry struct {
	Tool   ai.Tool
	Schema Schema
}

// Name returns the tool name.
func (e Entry) Name() string { return e.Tool.Name }

// Signature renders the entry as name(p: type, ...).
func (e Entry) Signature() string {
	params := make([]string, len(e.Schema))
	for i, p := range e.Schema {
		params[i] = p.Name + ": " + p.Type
	}
	return e.Tool.Name + "(" + strings.Join(params, ", ") + ")"
}

// Catalog is the immutable set of tools available to one session.
// It is built once and only read afterwards, so it needs no locking.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog builds a catalog from the tools a session listed.
// Tool order is preserved. Empty or duplicate names are rejected.
func NewCatalog(tools []ai.Tool) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(tools)),
		index:   make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("tool: catalog: tool with empty name")
		}
		if _, dup := c.index[t.Name]; dup {
			return nil, fmt.Errorf("tool: catalog: duplicate tool %q", t.Name)
		}
		if len(t.Parameters) > 0 && !gjson.ValidBytes(t.Parameters) {
			return nil, fmt.Errorf("tool: catalog: tool %q has an invalid parameter schema", t.Name)
		}
		c.index[t.Name] = len(c.entries)
		c.entries = append(c.entries, Entry{Tool: t, Schema: ParseSchema(t.Parameters)})
	}
	return c, nil
}

// Lookup returns the entry for name, or *UnknownToolError.
func (c *Catalog) Lookup(name string) (Entry, error) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, &UnknownToolError{Name: name}
	}
	return c.entries[i], nil
}

// Has reports whether the catalog contains name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Tools returns the tool definitions in catalog order.
func (c *Catalog) Tools() []ai.Tool {
	tools := make([]ai.Tool, len(c.entries))
	for i, e := range c.entries {
		tools[i] = e.Tool
	}
	return tools
}

// Names returns the tool names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Tool.Name
	}
	return names
}

// Len returns the number of tools.
func (c *Catalog) Len() int { return len(c.entries) }

// Describe renders the numbered tool listing used in prompts:
//
//	1. add(a: integer, b: integer) - Add two numbers
func (c *Catalog) Describe() string {
	var b strings.Builder
	for i, e := range c.entries {
		fmt.Fprintf(&b, "%d. %s", i+1, e.Signature())
		if desc := strings.TrimSpace(e.Tool.Description); desc != "" {
			b.WriteString(" - ")
			b.WriteString(firstLine(desc))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
