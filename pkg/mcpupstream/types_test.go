package mcpupstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pctx-dev/pctx/pkg/toolwrap"
)

func TestServerDescriptorNamespaceIsPascalCase(t *testing.T) {
	desc := NewServerDescriptor("my-cool-server", "", "https://example.com", nil)
	assert.Equal(t, "MyCoolServer", desc.Namespace)
}

func TestServerDescriptorAddToolPreservesOrderAndDedups(t *testing.T) {
	desc := NewServerDescriptor("foo", "", "https://example.com", nil)
	a := &toolwrap.ToolDescriptor{FnName: "a"}
	b := &toolwrap.ToolDescriptor{FnName: "b"}
	aAgain := &toolwrap.ToolDescriptor{FnName: "a", Title: "updated"}

	desc.AddTool(a)
	desc.AddTool(b)
	desc.AddTool(aAgain)

	tools := desc.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "a", tools[0].FnName)
	assert.Equal(t, "updated", tools[0].Title)
	assert.Equal(t, "b", tools[1].FnName)
}

func TestRegistrationEscapesQuotes(t *testing.T) {
	desc := NewServerDescriptor(`weird"name`, "", "https://example.com", nil)
	assert.Equal(t, `registerMCP({ name: "weird\"name" });`, desc.Registration())
}
