// Package schema implements the JSON Schema normalizer (C1) and
// type-name assigner (C2) described in -4.2: it canonicalizes a
// raw JSON Schema document into a closed variant set and stamps every
// object-like node with a unique TypeScript identifier.
package schema

// Kind tags which variant a Node holds. The set is closed: every Node is
// exactly one of these, never a hybrid.
type Kind int

const (
	KindRef Kind = iota
	KindAny
	KindBool
	KindNumber
	KindInt
	KindString
	KindEnum
	KindObject
	KindMap
	KindArray
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindRef:
		return "Ref"
	case KindAny:
		return "Any"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindInt:
		return "Int"
	case KindString:
		return "String"
	case KindEnum:
		return "Enum"
	case KindObject:
		return "Object"
	case KindMap:
		return "Map"
	case KindArray:
		return "Array"
	case KindUnion:
		return "Union"
	default:
		return "Unknown"
	}
}

// RawSchema is a raw JSON Schema document fragment. Each Node keeps the
// fragment it was normalized from in Raw, carried by reference; after
// normalization only the emitter reads it, for the "description" keyword.
// No assigned type name is written back into it or into the output.
type RawSchema map[string]any

// Node is a normalized JSON Schema variant. The zero value is
// never valid; the normalizer constructs every Node with Kind and
// Nullable set together.
type Node struct {
	Kind Kind
	Nullable bool
	Raw RawSchema

	// KindRef
	RefKey string

	// KindEnum
	EnumValues []any // JSON literals, string- or number-typed, never mixed

	// KindObject
	TypeName string
	Properties []ObjectProperty // sorted by property name
	Required map[string]bool
	Additional *Node // nil means "no additionalProperties schema"

	// KindMap
	ValueSchema *Node

	// KindArray
	ItemSchema *Node

	// KindUnion
	// The normalizer lifts null-typed members into Nullable; the Assigner
	// then appends a null literal member to a nullable union.
	Members []*Node
}

// ObjectProperty is one named entry of an Object node's property map.
// Properties is a slice, not a map, so its (name-sorted) order is fixed.
type ObjectProperty struct {
	Name string
	Schema *Node
	Desc string // JSDoc source, taken from the raw schema's "description"
}

// PropertyRequired reports whether name is in the Object's Required set.
func (n *Node) PropertyRequired(name string) bool {
	if n.Required == nil {
		return false
	}
	return n.Required[name]
}

// DefinitionTable is the insertion-ordered mapping from reference key to
// schema node described in It is populated once per root schema
// and is read-only thereafter.
type DefinitionTable struct {
	order []string
	byKey map[string]*Node
}

// NewDefinitionTable returns an empty, mutable-during-construction table.
func NewDefinitionTable() *DefinitionTable {
	return &DefinitionTable{byKey: make(map[string]*Node)}
}

// Put inserts or overwrites key's node. Call order determines iteration
// order for first-time inserts; overwriting an existing key does not move
// it.
func (t *DefinitionTable) Put(key string, n *Node) {
	if _, exists := t.byKey[key]; !exists {
		t.order = append(t.order, key)
	}
	t.byKey[key] = n
}

// Get returns the node for key, or nil with ok=false if key was never
// defined. A caller hitting ok=false for a Ref encountered during emission
// has a SchemaError: a missing `$ref` target.
func (t *DefinitionTable) Get(key string) (*Node, bool) {
	n, ok := t.byKey[key]
	return n, ok
}

// Keys returns definition keys in insertion order.
func (t *DefinitionTable) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
