package schema

import (
	"sort"
	"strconv"
	"strings"
)

// Normalizer turns raw JSON Schema fragments into Node variants (C1). It
// carries no state across calls other than the definition table it was
// constructed with: normalization never mutates the table.
type Normalizer struct {
	defs *DefinitionTable
}

// NewNormalizer builds a Normalizer against defs. Normalize never reads
// defs — Ref nodes are emitted verbatim and resolved later by the emitter —
// so defs may be populated before or after (see LoadDefinitions).
func NewNormalizer(defs *DefinitionTable) *Normalizer {
	if defs == nil {
		defs = NewDefinitionTable()
	}
	return &Normalizer{defs: defs}
}

// Definitions returns the table this normalizer reads against.
func (n *Normalizer) Definitions() *DefinitionTable { return n.defs }

// Normalize applies the seven normalization rules to one raw schema node,
// returning its Node variant. trail is the reference path
// used for SchemaError reporting and is appended to, never mutated
// in-place, on recursive calls.
func (n *Normalizer) Normalize(raw RawSchema, trail []string) (*Node, error) {
	if raw == nil {
		return &Node{Kind: KindAny, Raw: raw}, nil
	}

	// Rule 1: oneOf/anyOf union handling takes priority over everything else.
	if members, ok := unionMembers(raw); ok {
		return n.normalizeUnion(raw, members, trail)
	}
	if _, has := raw["allOf"]; has {
		// allOf is not supported; degrade to Any.
		return &Node{Kind: KindAny, Raw: raw}, nil
	}

	// Rule 2: $ref.
	if ref, ok := raw["$ref"].(string); ok {
		return &Node{
			Kind: KindRef,
			RefKey: refKey(ref),
			Nullable: explicitNullType(raw),
			Raw: raw,
		}, nil
	}

	// Rule 3: dispatch on "type".
	switch t := raw["type"].(type) {
	case string:
		return n.normalizeTyped(raw, t, false, trail)
	case []any:
		nonNull := make([]string, 0, len(t))
		sawNull := false
		for _, v := range t {
			s, _ := v.(string)
			if s == "null" {
				sawNull = true
				continue
			}
			if s != "" {
				nonNull = append(nonNull, s)
			}
		}
		switch len(nonNull) {
		case 0:
			return &Node{Kind: KindAny, Raw: raw, Nullable: sawNull}, nil
		case 1:
			return n.normalizeTyped(raw, nonNull[0], len(t) > 1, trail)
		default:
			members := make([]RawSchema, 0, len(nonNull))
			for _, single := range nonNull {
				clone := cloneWithType(raw, single)
				members = append(members, clone)
			}
			return n.normalizeUnion(raw, members, trail)
		}
	default:
		return &Node{Kind: KindAny, Raw: raw}, nil
	}
}

// normalizeTyped handles a single concrete "type" value (rule 3/4/5/6/7).
func (n *Normalizer) normalizeTyped(raw RawSchema, t string, nullable bool, trail []string) (*Node, error) {
	switch t {
	case "boolean":
		return &Node{Kind: KindBool, Nullable: nullable, Raw: raw}, nil
	case "integer":
		return n.normalizeNumeric(raw, KindInt, nullable)
	case "number":
		return n.normalizeNumeric(raw, KindNumber, nullable)
	case "string":
		return n.normalizeString(raw, nullable)
	case "object":
		return n.normalizeObject(raw, nullable, trail)
	case "array":
		return n.normalizeArray(raw, nullable, trail)
	case "null":
		return &Node{Kind: KindAny, Nullable: true, Raw: raw}, nil
	default:
		// Unrecognized type token degrades to Any.
		return &Node{Kind: KindAny, Nullable: nullable, Raw: raw}, nil
	}
}

// Rule 4: object handling.
func (n *Normalizer) normalizeObject(raw RawSchema, nullable bool, trail []string) (*Node, error) {
	propsRaw, hasProps := raw["properties"].(map[string]any)
	if hasProps && len(propsRaw) > 0 {
		names := make([]string, 0, len(propsRaw))
		for name := range propsRaw {
			names = append(names, name)
		}
		sort.Strings(names) // deterministic when the decoder loses source order
		required := make(map[string]bool)
		if reqList, ok := raw["required"].([]any); ok {
			for _, r := range reqList {
				if s, ok := r.(string); ok {
					required[s] = true
				}
			}
		}

		props := make([]ObjectProperty, 0, len(names))
		for _, name := range names {
			propRaw, _ := propsRaw[name].(map[string]any)
			childTrail := append(append([]string{}, trail...), name)
			childNode, err := n.Normalize(RawSchema(propRaw), childTrail)
			if err != nil {
				return nil, err
			}
			desc, _ := propRaw["description"].(string)
			props = append(props, ObjectProperty{Name: name, Schema: childNode, Desc: desc})
		}

		var additional *Node
		if addRaw, ok := objectAdditional(raw); ok {
			childTrail := append(append([]string{}, trail...), "additionalProperties")
			addNode, err := n.Normalize(addRaw, childTrail)
			if err != nil {
				return nil, err
			}
			additional = addNode
		}

		return &Node{
			Kind: KindObject,
			Nullable: nullable,
			Raw: raw,
			Properties: props,
			Required: required,
			Additional: additional,
		}, nil
	}

	// No declared properties: a Map (index-signature) node. Emptiness of
	// properties decides Map vs Object.
	valueSchema := &Node{Kind: KindAny}
	if addRaw, ok := objectAdditional(raw); ok {
		childTrail := append(append([]string{}, trail...), "additionalProperties")
		addNode, err := n.Normalize(addRaw, childTrail)
		if err != nil {
			return nil, err
		}
		valueSchema = addNode
	}
	return &Node{Kind: KindMap, Nullable: nullable, Raw: raw, ValueSchema: valueSchema}, nil
}

// objectAdditional extracts the additionalProperties schema, if any and if
// it isn't the literal boolean form (which carries no schema to recurse
// into).
func objectAdditional(raw RawSchema) (RawSchema, bool) {
	switch v := raw["additionalProperties"].(type) {
	case map[string]any:
		return RawSchema(v), true
	default:
		return nil, false
	}
}

// Rule 5: array handling.
func (n *Normalizer) normalizeArray(raw RawSchema, nullable bool, trail []string) (*Node, error) {
	childTrail := append(append([]string{}, trail...), "items")
	switch items := raw["items"].(type) {
	case map[string]any:
		itemNode, err := n.Normalize(RawSchema(items), childTrail)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindArray, Nullable: nullable, Raw: raw, ItemSchema: itemNode}, nil
	case []any:
		// Tuple form: synthesize a oneOf over one schema per member.
		members := make([]RawSchema, 0, len(items))
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				members = append(members, RawSchema(m))
			}
		}
		unionNode, err := n.normalizeUnion(raw, members, childTrail)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindArray, Nullable: nullable, Raw: raw, ItemSchema: unionNode}, nil
	default:
		return &Node{Kind: KindArray, Nullable: nullable, Raw: raw, ItemSchema: &Node{Kind: KindAny}}, nil
	}
}

// Rule 6: number/integer enum discrimination.
func (n *Normalizer) normalizeNumeric(raw RawSchema, kind Kind, nullable bool) (*Node, error) {
	if vals, ok := raw["enum"].([]any); ok && len(vals) > 0 && allNumeric(vals) {
		return &Node{Kind: KindEnum, Nullable: nullable, Raw: raw, EnumValues: vals}, nil
	}
	return &Node{Kind: kind, Nullable: nullable, Raw: raw}, nil
}

// Rule 7: string enum discrimination, with empty-string enum values
// discarded per the tie-break rule.
func (n *Normalizer) normalizeString(raw RawSchema, nullable bool) (*Node, error) {
	if vals, ok := raw["enum"].([]any); ok {
		nonEmpty := make([]any, 0, len(vals))
		for _, v := range vals {
			if s, ok := v.(string); ok && s != "" {
				nonEmpty = append(nonEmpty, v)
			}
		}
		if len(nonEmpty) > 0 {
			return &Node{Kind: KindEnum, Nullable: nullable, Raw: raw, EnumValues: nonEmpty}, nil
		}
	}
	return &Node{Kind: KindString, Nullable: nullable, Raw: raw}, nil
}

// normalizeUnion implements rule 1's body: partition members into null and
// non-null, fold null-ness into Nullable, collapse to Any if nothing
// non-null remains.
func (n *Normalizer) normalizeUnion(raw RawSchema, members []RawSchema, trail []string) (*Node, error) {
	nonNull := make([]*Node, 0, len(members))
	nullable := false
	for i, m := range members {
		if isNullSchema(m) {
			nullable = true
			continue
		}
		childTrail := append(append([]string{}, trail...), memberLabel(i))
		child, err := n.Normalize(m, childTrail)
		if err != nil {
			return nil, err
		}
		if child.Nullable {
			nullable = true
			child = shallowCopyWithNullable(child, false)
		}
		nonNull = append(nonNull, child)
	}
	if len(nonNull) == 0 {
		return &Node{Kind: KindAny, Nullable: nullable, Raw: raw}, nil
	}
	return &Node{Kind: KindUnion, Nullable: nullable, Raw: raw, Members: nonNull}, nil
}

func memberLabel(i int) string {
	return "oneOf[" + strconv.Itoa(i) + "]"
}

func shallowCopyWithNullable(n *Node, nullable bool) *Node {
	cp := *n
	cp.Nullable = nullable
	return &cp
}

// unionMembers extracts oneOf/anyOf member schemas, preferring oneOf when
// both are (unusually) present, matching the literal wording of rule 1
// ("carries oneOf or anyOf").
func unionMembers(raw RawSchema) ([]RawSchema, bool) {
	if v, ok := raw["oneOf"].([]any); ok {
		return toRawSchemas(v), true
	}
	if v, ok := raw["anyOf"].([]any); ok {
		return toRawSchemas(v), true
	}
	return nil, false
}

func toRawSchemas(list []any) []RawSchema {
	out := make([]RawSchema, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, RawSchema(m))
		}
	}
	return out
}

// isNullSchema identifies the null-typed member that a union lifts into
// Nullable: a "type" of exactly "null" (single or singleton array).
func isNullSchema(raw RawSchema) bool {
	switch t := raw["type"].(type) {
	case string:
		return t == "null"
	case []any:
		if len(t) != 1 {
			return false
		}
		s, _ := t[0].(string)
		return s == "null"
	}
	return false
}

// explicitNullType reports whether a $ref node's sibling "type" keyword
// names null explicitly, the only way a Ref can be nullable under rule 2.
func explicitNullType(raw RawSchema) bool {
	return isNullSchema(raw)
}

func allNumeric(vals []any) bool {
	for _, v := range vals {
		switch v.(type) {
		case float64, int, int64:
		default:
			return false
		}
	}
	return true
}

// refKey extracts the last path segment of a $ref URI, e.g.
// "#/$defs/Foo" / "#/definitions/Foo" / "#/components/schemas/Foo" all
// yield "Foo".
func refKey(ref string) string {
	ref = strings.TrimSuffix(ref, "/")
	idx := strings.LastIndex(ref, "/")
	if idx < 0 {
		return ref
	}
	return ref[idx+1:]
}

// cloneWithType returns a shallow copy of raw with "type" replaced by a
// single string, used to synthesize one schema per member of a
// multi-valued "type" array before recursing (rule 3).
func cloneWithType(raw RawSchema, t string) RawSchema {
	clone := make(RawSchema, len(raw))
	for k, v := range raw {
		clone[k] = v
	}
	clone["type"] = t
	return clone
}
