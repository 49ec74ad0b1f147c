package toolwrap

import (
	"github.com/pctx-dev/pctx/pkg/schema"
	"github.com/pctx-dev/pctx/pkg/tsgen"
)

// Build runs C1->C3 over a tool's input and, if present, output schema and
// assembles the ToolDescriptor.
func Build(toolName, title, description string, inputSchema, outputSchema map[string]any) (*ToolDescriptor, error) {
	fnName := schema.Case(toolName, schema.CaseCamel)

	inputSig, inputDecls, err := compile(inputSchema, fnName+"Input")
	if err != nil {
		return nil, err
	}

	outputSig := "any"
	outputDecls := ""
	if outputSchema != nil {
		outputSig, outputDecls, err = compile(outputSchema, fnName+"Output")
		if err != nil {
			return nil, err
		}
	}
	// Open Questions resolves the any-vs-Promise<any> oscillation
	// in favor of typed Promise<any>, matching the rest of the emitter.

	decls := inputDecls
	if outputDecls != "" {
		if decls != "" {
			decls += "\n\n"
		}
		decls += outputDecls
	}

	return &ToolDescriptor{
		ToolName: toolName,
		FnName: fnName,
		Title: title,
		Description: description,
		InputTypeSignature: inputSig,
		OutputTypeSignature: outputSig,
		TypeDeclarations: decls,
	}, nil
}

// compile runs the full C1->C3 pipeline on one raw schema document, seeded
// as described in , and returns its top-level signature plus the
// interface declarations it depends on.
func compile(raw map[string]any, seed string) (sig string, decls string, err error) {
	if raw == nil {
		return "any", "", nil
	}
	defs := schema.NewDefinitionTable()
	if err := schema.LoadDefinitions(schema.RawSchema(raw), defs); err != nil {
		return "", "", err
	}
	normalizer := schema.NewNormalizer(defs)
	node, err := normalizer.Normalize(schema.RawSchema(raw), nil)
	if err != nil {
		return "", "", err
	}

	assigner := schema.NewAssigner(schema.CasePascal)
	assigner.Assign(node, seed)

	sig, err = tsgen.Signature(node, defs, true)
	if err != nil {
		return "", "", err
	}
	decls, err = tsgen.Declarations(node, defs)
	if err != nil {
		return "", "", err
	}
	return sig, decls, nil
}
