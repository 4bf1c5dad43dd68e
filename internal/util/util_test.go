package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Zone  string   `json:"zone" description:"IANA zone" enum:"UTC,Europe/Berlin"`
	Count *int     `json:"count" description:"Optional pointer field"`
	Tags  []string `json:"tags,omitempty"`
	skip  string
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleArgs{})
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	assert.Contains(t, props, "zone")
	assert.Contains(t, props, "count")
	assert.Contains(t, props, "tags")
	assert.NotContains(t, props, "skip")

	zone := props["zone"].(map[string]any)
	assert.Equal(t, "string", zone["type"])
	assert.Equal(t, "IANA zone", zone["description"])
	assert.Equal(t, []string{"UTC", "Europe/Berlin"}, zone["enum"])
	assert.Equal(t, "integer", props["count"].(map[string]any)["type"])
	assert.Equal(t, "array", props["tags"].(map[string]any)["type"])
	assert.Equal(t, map[string]any{"type": "string"}, props["tags"].(map[string]any)["items"])

	assert.ElementsMatch(t, []string{"zone"}, RequiredFields(schema))
}

func TestCreateSchema_NonStruct(t *testing.T) {
	schema := CreateSchema(42)
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x":    map[string]any{"type": "integer"},
			"mode": map[string]any{"type": "string", "enum": []any{"fast", "slow"}},
			"list": map[string]any{"type": "array"},
		},
		"required": []string{"x"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"x": 5.0, "mode": "fast", "list": []any{1}}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"x": 5, "extra": true}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	err = ValidateParameters(map[string]any{"x": "not-int"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type integer")

	err = ValidateParameters(map[string]any{"x": 1.5}, schema)
	assert.Error(t, err)

	err = ValidateParameters(map[string]any{"x": 1, "mode": "medium"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "mode", vErr.Field)
}

func TestRequiredFields_JSONDecodedShape(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, RequiredFields(map[string]any{"required": []any{"a", 3, "b"}}))
	assert.Nil(t, RequiredFields(map[string]any{}))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("no markers", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers", out)

	out, err = RenderTemplate(`You are {{.Name}}. Tools: {{join ", " .Tools}}. {{default "n/a" .Missing}}`, map[string]any{
		"Name":  "Kit <bot>",
		"Tools": []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You are Kit <bot>. Tools: a, b. n/a", out)

	_, err = RenderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}
