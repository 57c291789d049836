package tool

import (
	"encoding/json"
	"testing"

	ai "github.com/spetersoncode/talk2mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	t.Run("document order and required", func(t *testing.T) {
		schema := ParseSchema(json.RawMessage(`{
			"type": "object",
			"properties": {
				"y2": {"type": "integer"},
				"x1": {"type": "integer", "description": "Left edge"},
				"label": {"type": ["string", "null"]},
				"extra": {}
			},
			"required": ["y2", "x1"]
		}`))

		require.Len(t, schema, 4)
		assert.Equal(t, []string{"y2", "x1", "label", "extra"}, schema.Names())
		assert.Equal(t, Param{Name: "x1", Type: TypeInteger, Description: "Left edge", Required: true}, schema[1])
		assert.Equal(t, TypeString, schema[2].Type)
		assert.False(t, schema[2].Required)
		assert.Equal(t, TypeString, schema[3].Type)
	})

	t.Run("null first in union", func(t *testing.T) {
		schema := ParseSchema(json.RawMessage(`{"properties":{"n":{"type":["null","number"]}}}`))
		assert.Equal(t, TypeNumber, schema[0].Type)
	})

	t.Run("empty and invalid", func(t *testing.T) {
		assert.Empty(t, ParseSchema(nil))
		assert.Empty(t, ParseSchema(json.RawMessage(`{"type":"object"}`)))
		assert.Empty(t, ParseSchema(json.RawMessage(`{not json`)))
	})
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog([]ai.Tool{
		{
			Name:        "add",
			Description: "Add two numbers\nReturns the sum.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"a":{"type":"integer"},"b":{"type":"integer"}},"required":["a","b"]}`),
		},
		{Name: "open_canvas", Description: "Open the canvas"},
	})
	require.NoError(t, err)
	return catalog
}

func TestCatalog(t *testing.T) {
	catalog := testCatalog(t)

	t.Run("lookup", func(t *testing.T) {
		entry, err := catalog.Lookup("add")
		require.NoError(t, err)
		assert.Equal(t, "add", entry.Name())
		assert.Equal(t, []string{"a", "b"}, entry.Schema.Names())
		assert.Equal(t, "add(a: integer, b: integer)", entry.Signature())
	})

	t.Run("unknown tool is an error", func(t *testing.T) {
		_, err := catalog.Lookup("paint")
		var unknown *UnknownToolError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "paint", unknown.Name)
		assert.False(t, catalog.Has("paint"))
	})

	t.Run("listing", func(t *testing.T) {
		assert.Equal(t, 2, catalog.Len())
		assert.Equal(t, []string{"add", "open_canvas"}, catalog.Names())
		assert.Len(t, catalog.Tools(), 2)
		assert.Equal(t, "1. add(a: integer, b: integer) - Add two numbers\n2. open_canvas() - Open the canvas", catalog.Describe())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewCatalog([]ai.Tool{{Name: "add"}, {Name: "add"}})
		assert.ErrorContains(t, err, "duplicate")

		_, err = NewCatalog([]ai.Tool{{Name: " "}})
		assert.ErrorContains(t, err, "empty name")

		_, err = NewCatalog([]ai.Tool{{Name: "x", Parameters: json.RawMessage(`{`)}})
		assert.ErrorContains(t, err, "invalid parameter schema")
	})
}
