package talk2mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// SchemaBuilder provides a fluent API for constructing JSON Schema objects
// from Go structs. Use SchemaFrom[T]() to create a builder from a struct type.
//
// Struct tags are honored:
//
//	type DrawArgs struct {
//	    X1 int `json:"x1" desc:"Left edge" required:"true"`
//	    Mode string `json:"mode" enum:"outline,filled"`
//	}
//
// Properties are emitted in field declaration order.
type SchemaBuilder struct {
	properties    map[string]*propertyDef
	required      []string
	propertyOrder []string
}

type propertyDef struct {
	Type        string
	Description string
	Enum        []any
	Items       *propertyDef
	Nested      *SchemaBuilder
}

// SchemaFrom creates a SchemaBuilder by reflecting on the given struct type.
// Field names are taken from json tags, types are mapped to JSON Schema types.
func SchemaFrom[T any]() *SchemaBuilder {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return newSchemaBuilder()
	}
	return buildFromStruct(t)
}

// SchemaFor generates a JSON schema from the struct type T.
func SchemaFor[T any]() (json.RawMessage, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %v is not a struct", t)
	}
	return buildFromStruct(t).Build(), nil
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	schema, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

func newSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{
		properties:    make(map[string]*propertyDef),
		propertyOrder: make([]string, 0),
	}
}

func buildFromStruct(t reflect.Type) *SchemaBuilder {
	sb := newSchemaBuilder()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			name = field.Name
		}

		prop := typeToPropertyDef(field.Type)
		prop.Description = field.Tag.Get("desc")
		if enum := field.Tag.Get("enum"); enum != "" {
			for _, v := range strings.Split(enum, ",") {
				prop.Enum = append(prop.Enum, strings.TrimSpace(v))
			}
		}

		sb.properties[name] = prop
		sb.propertyOrder = append(sb.propertyOrder, name)
		if field.Tag.Get("required") == "true" {
			sb.required = append(sb.required, name)
		}
	}

	return sb
}

func typeToPropertyDef(t reflect.Type) *propertyDef {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &propertyDef{Type: "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &propertyDef{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &propertyDef{Type: "number"}

	case reflect.Bool:
		return &propertyDef{Type: "boolean"}

	case reflect.Slice, reflect.Array:
		return &propertyDef{Type: "array", Items: typeToPropertyDef(t.Elem())}

	case reflect.Struct:
		return &propertyDef{Type: "object", Nested: buildFromStruct(t)}

	case reflect.Map:
		return &propertyDef{Type: "object"}

	default:
		return &propertyDef{Type: "string"}
	}
}

// Desc sets the description for a field.
func (s *SchemaBuilder) Desc(field, description string) *SchemaBuilder {
	if prop, ok := s.properties[field]; ok {
		prop.Description = description
	}
	return s
}

// Required marks the specified fields as required.
func (s *SchemaBuilder) Required(fields ...string) *SchemaBuilder {
	for _, field := range fields {
		if _, ok := s.properties[field]; !ok {
			continue
		}
		found := false
		for _, r := range s.required {
			if r == field {
				found = true
				break
			}
		}
		if !found {
			s.required = append(s.required, field)
		}
	}
	return s
}

// Enum sets the allowed values for a string field.
func (s *SchemaBuilder) Enum(field string, values ...string) *SchemaBuilder {
	if prop, ok := s.properties[field]; ok {
		prop.Enum = make([]any, len(values))
		for i, v := range values {
			prop.Enum[i] = v
		}
	}
	return s
}

// Build generates the JSON Schema as json.RawMessage.
func (s *SchemaBuilder) Build() json.RawMessage {
	var buf bytes.Buffer
	if err := s.encode(&buf); err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return buf.Bytes()
}

// encode writes the object schema by hand so properties keep declaration
// order; encoding/json would sort map keys.
func (s *SchemaBuilder) encode(buf *bytes.Buffer) error {
	buf.WriteString(`{"type":"object","properties":{`)
	for i, name := range s.propertyOrder {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := s.properties[name].encode(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')

	if len(s.required) > 0 {
		required, err := json.Marshal(s.required)
		if err != nil {
			return err
		}
		buf.WriteString(`,"required":`)
		buf.Write(required)
	}
	buf.WriteByte('}')
	return nil
}

func (p *propertyDef) encode(buf *bytes.Buffer) error {
	if p.Nested != nil {
		if p.Description == "" {
			return p.Nested.encode(buf)
		}
		// Splice the description into the nested object schema.
		var nested bytes.Buffer
		if err := p.Nested.encode(&nested); err != nil {
			return err
		}
		desc, err := json.Marshal(p.Description)
		if err != nil {
			return err
		}
		buf.WriteString(`{"description":`)
		buf.Write(desc)
		buf.WriteByte(',')
		buf.Write(nested.Bytes()[1:])
		return nil
	}

	fields := map[string]any{"type": p.Type}
	if p.Description != "" {
		fields["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		fields["enum"] = p.Enum
	}
	if p.Items != nil {
		var items bytes.Buffer
		if err := p.Items.encode(&items); err != nil {
			return err
		}
		fields["items"] = json.RawMessage(items.Bytes())
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
