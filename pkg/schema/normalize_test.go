package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pctx-dev/pctx/pkg/schema"
	"github.com/pctx-dev/pctx/pkg/tsgen"
)

func compile(t *testing.T, raw map[string]any, seed string) (*schema.Node, *schema.DefinitionTable) {
	t.Helper()
	defs := schema.NewDefinitionTable()
	require.NoError(t, schema.LoadDefinitions(schema.RawSchema(raw), defs))
	node, err := schema.NewNormalizer(defs).Normalize(schema.RawSchema(raw), nil)
	require.NoError(t, err)
	schema.NewAssigner(schema.CasePascal).Assign(node, seed)
	return node, defs
}

// TestPrimitiveRequiredProperty grounds scenario 1: {x: string} required.
func TestPrimitiveRequiredProperty(t *testing.T) {
	raw := map[string]any{
		"type":       "object",
		"required":   []any{"x"},
		"properties": map[string]any{"x": map[string]any{"type": "string"}},
	}
	node, defs := compile(t, raw, "Foo")

	decl, err := tsgen.Declarations(node, defs)
	require.NoError(t, err)
	require.Contains(t, decl, "interface Foo {\n  x: string;\n}")
}

// TestOptionalNullableArrayOfEnums grounds scenario 2.
func TestOptionalNullableArrayOfEnums(t *testing.T) {
	raw := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tags": map[string]any{
				"type":  []any{"array", "null"},
				"items": map[string]any{"type": "string", "enum": []any{"a", "b"}},
			},
		},
	}
	node, defs := compile(t, raw, "Bar")

	decl, err := tsgen.Declarations(node, defs)
	require.NoError(t, err)
	require.Contains(t, decl, `tags?: ("a" | "b")[] | null;`)
}

// TestRecursiveDefinition grounds scenario 3: a self-referencing $ref
// declares its interface exactly once.
func TestRecursiveDefinition(t *testing.T) {
	raw := map[string]any{
		"$ref": "#/$defs/Node",
		"$defs": map[string]any{
			"Node": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"child": map[string]any{"$ref": "#/$defs/Node"},
				},
			},
		},
	}
	defs := schema.NewDefinitionTable()
	require.NoError(t, schema.LoadDefinitions(schema.RawSchema(raw), defs))
	node, err := schema.NewNormalizer(defs).Normalize(schema.RawSchema(raw), nil)
	require.NoError(t, err)
	schema.NewAssigner(schema.CasePascal).Assign(node, "Node")

	decl, err := tsgen.Declarations(node, defs)
	require.NoError(t, err)
	require.Equal(t, 1, countOccurrences(decl, "interface Node {"))
	require.Contains(t, decl, "child?: Node;")
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
			i += len(needle) - 1
		}
	}
	return count
}
