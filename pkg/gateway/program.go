package gateway

import (
	"strings"

	"github.com/pctx-dev/pctx/pkg/mcpupstream"
)

// BuildProgram assembles the sandboxed program `execute` submits to C8
//: one `registerMCP` call per upstream, one `namespace`
// block per upstream containing every tool's callable body, the
// caller's own code, and the fixed trailer that captures `run()`'s
// result as the module's default export.
func BuildProgram(servers []*mcpupstream.ServerDescriptor, userCode string) string {
	var b strings.Builder

	for _, s := range servers {
		b.WriteString(s.Registration())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, s := range servers {
		b.WriteString("namespace ")
		b.WriteString(s.Namespace)
		b.WriteString(" {\n")
		for _, t := range s.Tools() {
			b.WriteString(indent(t.Body(s.Name)))
			b.WriteString("\n")
		}
		b.WriteString("}\n\n")
	}

	b.WriteString(userCode)
	b.WriteString("\n\n")
	b.WriteString("export default await run();\n")
	return b.String()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = " " + l
	}
	return strings.Join(lines, "\n")
}

// DeclarationFile implements `list_functions`: every namespace, every
// function signature, no type declarations and no bodies — a low-token
// overview.
func DeclarationFile(servers []*mcpupstream.ServerDescriptor) string {
	var b strings.Builder
	for _, s := range servers {
		b.WriteString("declare namespace ")
		b.WriteString(s.Namespace)
		b.WriteString(" {\n")
		for _, t := range s.Tools() {
			b.WriteString(indent(t.Signature()))
			b.WriteString(";\n\n")
		}
		b.WriteString("}\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FunctionDetails implements `get_function_details`: for each requested
// "Namespace.fn", the function signature together with its full type
// declarations. Unknown or malformed names are skipped silently.
func FunctionDetails(servers []*mcpupstream.ServerDescriptor, requested []string) string {
	byNamespace := make(map[string]*mcpupstream.ServerDescriptor, len(servers))
	for _, s := range servers {
		byNamespace[s.Namespace] = s
	}

	var b strings.Builder
	for _, req := range requested {
		idx := strings.LastIndex(req, ".")
		if idx <= 0 || idx == len(req)-1 {
			continue
		}
		ns, fn := req[:idx], req[idx+1:]
		server, ok := byNamespace[ns]
		if !ok {
			continue
		}
		tool, ok := server.Tool(fn)
		if !ok {
			continue
		}
		if tool.TypeDeclarations != "" {
			b.WriteString(tool.TypeDeclarations)
			b.WriteString("\n")
		}
		b.WriteString(tool.Signature())
		b.WriteString(";\n\n")
	}

	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return "No matching functions found."
	}
	return out + "\n"
}
