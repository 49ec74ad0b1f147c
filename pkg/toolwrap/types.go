// Package toolwrap implements the tool wrapper builder (C4): given one
// upstream MCP tool descriptor, it produces the TypeScript input/output
// types, the exported function signature with JSDoc, and the callable
// body that delegates into the sandbox's `callMCPTool` bridge.
package toolwrap

// ToolDescriptor is the C4 output described in It is
// constructed once per upstream tool when the server is first contacted
// and never mutated afterward.
type ToolDescriptor struct {
	ToolName string
	FnName string
	Title string
	Description string

	InputTypeSignature string
	OutputTypeSignature string
	TypeDeclarations string
}

// Signature renders the exported function declaration with its JSDoc
//, used by both `list_functions` (where only this is
// shown) and `get_function_details` (where TypeDeclarations is prefixed
// to it).
func (t *ToolDescriptor) Signature() string {
	doc := jsdocBlock(t.Title, t.Description)
	return doc + "export async function " + t.FnName + "(input: " + t.InputTypeSignature + "): Promise<" + t.OutputTypeSignature + ">"
}

// Body renders the callable implementation used only
// inside the constructed `execute` program, never shown to the model
// through `get_function_details`.
func (t *ToolDescriptor) Body(serverName string) string {
	return t.Signature() + " {\n" +
	" return await callMCPTool<" + t.OutputTypeSignature + ">({\n" +
	" name: " + quote(serverName) + ",\n" +
	" tool: " + quote(t.ToolName) + ",\n" +
	" arguments: input,\n" +
	" });\n" +
	"}\n"
}

func jsdocBlock(title, description string) string {
	if title == "" && description == "" {
		return ""
	}
	text := title
	if description != "" {
		if text != "" {
			text += "\n\n"
		}
		text += description
	}
	return "/** " + escapeCommentClose(text) + " */\n"
}

func escapeCommentClose(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) && s[i] == '*' && s[i+1] == '/' {
			out = append(out, '*', '-', '/')
			i++
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func quote(s string) string {
	b := make([]byte, 0, len(s)+2)
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			b = append(b, '\\', s[i])
		default:
			b = append(b, s[i])
		}
	}
	b = append(b, '"')
	return string(b)
}
