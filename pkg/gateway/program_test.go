package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pctx-dev/pctx/pkg/mcpupstream"
	"github.com/pctx-dev/pctx/pkg/toolwrap"
)

func buildServer(t *testing.T, name string) *mcpupstream.ServerDescriptor {
	t.Helper()
	desc := mcpupstream.NewServerDescriptor(name, "", "https://"+name+".example.com/mcp", nil)
	tool, err := toolwrap.Build("echo", "", "", map[string]any{
		"type":     "object",
		"required": []any{"msg"},
		"properties": map[string]any{
			"msg": map[string]any{"type": "string"},
		},
	}, nil)
	require.NoError(t, err)
	desc.AddTool(tool)
	return desc
}

func TestBuildProgramAssemblesRegistrationsNamespacesAndTrailer(t *testing.T) {
	servers := []*mcpupstream.ServerDescriptor{buildServer(t, "foo")}

	program := BuildProgram(servers, "async function run() { return 1; }")

	assert.Contains(t, program, `registerMCP({ name: "foo" });`)
	assert.Contains(t, program, "namespace Foo {")
	assert.Contains(t, program, "export async function echo(")
	assert.Contains(t, program, "async function run() { return 1; }")
	assert.Contains(t, program, "export default await run();")

	// registration and namespace must precede the user code, which must
	// precede the trailer.
	regIdx := indexOf(program, `registerMCP({ name: "foo" });`)
	nsIdx := indexOf(program, "namespace Foo {")
	userIdx := indexOf(program, "async function run() { return 1; }")
	trailerIdx := indexOf(program, "export default await run();")
	assert.True(t, regIdx < nsIdx)
	assert.True(t, nsIdx < userIdx)
	assert.True(t, userIdx < trailerIdx)
}

func TestDeclarationFileListsSignaturesOnly(t *testing.T) {
	servers := []*mcpupstream.ServerDescriptor{buildServer(t, "foo")}

	decl := DeclarationFile(servers)

	assert.Contains(t, decl, "declare namespace Foo {")
	assert.Contains(t, decl, "export async function echo(")
	assert.NotContains(t, decl, "interface")
}

func TestFunctionDetailsIncludesDeclarations(t *testing.T) {
	servers := []*mcpupstream.ServerDescriptor{buildServer(t, "foo")}

	details := FunctionDetails(servers, []string{"Foo.echo"})

	assert.Contains(t, details, "interface")
	assert.Contains(t, details, "export async function echo(")
}

func TestFunctionDetailsUnknownNameYieldsFixedMessage(t *testing.T) {
	servers := []*mcpupstream.ServerDescriptor{buildServer(t, "foo")}

	details := FunctionDetails(servers, []string{"Bar.missing", "malformed"})

	assert.Equal(t, "No matching functions found.", details)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
