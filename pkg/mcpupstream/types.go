// Package mcpupstream implements the upstream MCP client (C5): connecting
// to one upstream server over Streamable HTTP, discovering its tool
// catalog, and dispatching `tools/call` invocations back to it.
package mcpupstream

import (
	"strings"

	"github.com/pctx-dev/pctx/pkg/config"
	"github.com/pctx-dev/pctx/pkg/schema"
	"github.com/pctx-dev/pctx/pkg/toolwrap"
)

// ServerDescriptor is the "Upstream server descriptor": immutable
// once built, shared read-only with every per-request sandbox.
type ServerDescriptor struct {
	Name string
	Namespace string
	Description string
	URL string

	// Tools is insertion-ordered by first discovery (fn_name -> descriptor).
	toolOrder []string
	tools map[string]*toolwrap.ToolDescriptor

	// auth is used host-side by Client to build request headers. It is
	// never passed into the sandbox: Registration() carries only the name.
	auth *config.AuthConfig
}

// NewServerDescriptor builds an (initially empty) descriptor; tools are
// added as AddTool discovers them.
func NewServerDescriptor(name, description, url string, auth *config.AuthConfig) *ServerDescriptor {
	return &ServerDescriptor{
		Name: name,
		Namespace: schema.Case(name, schema.CasePascal),
		Description: description,
		URL: url,
		tools: make(map[string]*toolwrap.ToolDescriptor),
		auth: auth,
	}
}

// AddTool registers a tool descriptor, preserving discovery order.
func (s *ServerDescriptor) AddTool(t *toolwrap.ToolDescriptor) {
	if _, exists := s.tools[t.FnName]; !exists {
		s.toolOrder = append(s.toolOrder, t.FnName)
	}
	s.tools[t.FnName] = t
}

// Tools returns the tool descriptors in discovery order.
func (s *ServerDescriptor) Tools() []*toolwrap.ToolDescriptor {
	out := make([]*toolwrap.ToolDescriptor, 0, len(s.toolOrder))
	for _, name := range s.toolOrder {
		out = append(out, s.tools[name])
	}
	return out
}

// Tool looks up one tool by its generated function name.
func (s *ServerDescriptor) Tool(fnName string) (*toolwrap.ToolDescriptor, bool) {
	t, ok := s.tools[fnName]
	return t, ok
}

// Registration renders the `registerMCP(...)` call sandbox code needs to
// reconstruct this server's identity. The gateway, not the
// sandbox, resolves secrets; the sandbox only ever sees the server name —
// `callMCPTool` dispatch happens host-side (see the registerMCP and
// callMCPTool globals installed by package sandbox).
func (s *ServerDescriptor) Registration() string {
	var b strings.Builder
	b.WriteString("registerMCP({ name: ")
	b.WriteString(jsString(s.Name))
	b.WriteString(" });")
	return b.String()
}

func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(s[i])
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}
