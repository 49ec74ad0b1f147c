package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateDocument compiles raw as a standalone JSON Schema document using
// the draft 2020-12 dialect. It exists to reject structurally broken
// schemas — dangling `$ref`s, malformed keyword shapes — before C1 ever
// sees them, with a precise compiler-reported location, rather than
// letting the normalizer silently degrade to Any.
//
// ValidateDocument only surfaces what the compiler found, as an *Error.
// The C1-C4 pipeline (schema.LoadDefinitions, Normalize, toolwrap.Build)
// does not call it.
func ValidateDocument(raw RawSchema) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return newError(fmt.Sprintf("schema is not valid JSON: %v", err), nil)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	const resourceName = "inline.json"
	if err := c.AddResource(resourceName, bytes.NewReader(data)); err != nil {
		return newError(fmt.Sprintf("schema could not be registered: %v", err), nil)
	}
	if _, err := c.Compile(resourceName); err != nil {
		return newError(fmt.Sprintf("schema failed draft 2020-12 compilation: %v", err), nil)
	}
	return nil
}
