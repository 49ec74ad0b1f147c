package schema

// LoadDefinitions walks every conventional JSON Schema definitions
// location in a root document — `$defs`, `definitions`, and the OpenAPI-
// style `components.schemas` some MCP servers reuse — and normalizes each
// entry into defs.
//
// Normalize itself never needs defs populated, so entries can reference
// each other in any order. Each entry's Object nodes are named (C2) with
// its definition key as the seed, so a `$ref` to "Node" emits as `Node`.
func LoadDefinitions(root RawSchema, defs *DefinitionTable) error {
	n := NewNormalizer(defs)
	assigner := NewAssigner(CasePascal)

	for _, bucket := range [][]string{{"$defs"}, {"definitions"}, {"components", "schemas"}} {
		m, ok := lookupNestedMap(root, bucket)
		if !ok {
			continue
		}
		for key, raw := range m {
			rawMap, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			node, err := n.Normalize(RawSchema(rawMap), []string{"$defs", key})
			if err != nil {
				return err
			}
			assigner.Assign(node, key)
			defs.Put(key, node)
		}
	}
	return nil
}

func lookupNestedMap(root RawSchema, path []string) (map[string]any, bool) {
	var cur map[string]any = root
	for i, seg := range path {
		v, ok := cur[seg]
		if !ok {
			return nil, false
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return m, true
		}
		cur = m
	}
	return nil, false
}
