package talk2mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSchemaFrom_SimpleTypes(t *testing.T) {
	type Args struct {
		Name   string  `json:"name"`
		Age    int     `json:"age"`
		Score  float64 `json:"score"`
		Active bool    `json:"active"`
		Tags   []int   `json:"tags"`
	}

	schema := SchemaFrom[Args]().Build()

	var result map[string]any
	require.NoError(t, json.Unmarshal(schema, &result))

	assert.Equal(t, "object", result["type"])
	props := result["properties"].(map[string]any)
	assert.Equal(t, "string", props["name"].(map[string]any)["type"])
	assert.Equal(t, "integer", props["age"].(map[string]any)["type"])
	assert.Equal(t, "number", props["score"].(map[string]any)["type"])
	assert.Equal(t, "boolean", props["active"].(map[string]any)["type"])

	tags := props["tags"].(map[string]any)
	assert.Equal(t, "array", tags["type"])
	assert.Equal(t, "integer", tags["items"].(map[string]any)["type"])
}

func TestSchemaFrom_Builder(t *testing.T) {
	type Args struct {
		Location string `json:"location"`
		Unit     string `json:"unit"`
	}

	schema := SchemaFrom[Args]().
		Desc("location", "City name").
		Required("location", "location", "missing").
		Enum("unit", "celsius", "fahrenheit").
		Build()

	assert.Equal(t, `["location"]`, gjson.GetBytes(schema, "required").Raw)
	assert.Equal(t, "City name", gjson.GetBytes(schema, "properties.location.description").String())
	assert.Equal(t, `["celsius","fahrenheit"]`, gjson.GetBytes(schema, "properties.unit.enum").Raw)
}

func TestSchemaFor_Tags(t *testing.T) {
	type RectArgs struct {
		X1 int `json:"x1" desc:"Left edge" required:"true"`
		Y1 int `json:"y1" desc:"Top edge" required:"true"`
		X2 int `json:"x2" required:"true"`
		Y2 int `json:"y2" required:"true"`
	}

	schema, err := SchemaFor[RectArgs]()
	require.NoError(t, err)

	var order []string
	gjson.GetBytes(schema, "properties").ForEach(func(key, _ gjson.Result) bool {
		order = append(order, key.String())
		return true
	})
	assert.Equal(t, []string{"x1", "y1", "x2", "y2"}, order, "declaration order is kept")
	assert.Equal(t, `["x1","y1","x2","y2"]`, gjson.GetBytes(schema, "required").Raw)
	assert.Equal(t, "Left edge", gjson.GetBytes(schema, "properties.x1.description").String())
}

func TestSchemaFor_Nested(t *testing.T) {
	type Point struct {
		X int `json:"x" required:"true"`
	}
	type Args struct {
		At Point `json:"at" desc:"Anchor"`
	}

	schema := MustSchemaFor[Args]()
	assert.True(t, json.Valid(schema))
	assert.Equal(t, "object", gjson.GetBytes(schema, "properties.at.type").String())
	assert.Equal(t, "Anchor", gjson.GetBytes(schema, "properties.at.description").String())
	assert.Equal(t, `["x"]`, gjson.GetBytes(schema, "properties.at.required").Raw)
}

func TestSchemaFor_NonStruct(t *testing.T) {
	_, err := SchemaFor[string]()
	assert.Error(t, err)
	assert.Panics(t, func() { MustSchemaFor[int]() })
}
