// Package tsgen implements the TypeScript emitter (C3): lowering a
// normalized schema.Node into a type signature expression and the
// `interface` declarations it depends on.
package tsgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pctx-dev/pctx/pkg/schema"
)

// Signature renders n's TypeScript type expression. required controls whether a trailing
// `| undefined` is appended for an optional property position; pass true
// when the node is not sitting in an optional slot.
func Signature(n *schema.Node, defs *schema.DefinitionTable, required bool) (string, error) {
	base, err := signature(n, defs, map[*schema.Node]bool{})
	if err != nil {
		return "", err
	}
	if !required {
		base += " | undefined"
	}
	return base, nil
}

func signature(n *schema.Node, defs *schema.DefinitionTable, refPath map[*schema.Node]bool) (string, error) {
	if n == nil {
		return "any", nil
	}

	var base string
	switch n.Kind {
	case schema.KindRef:
		target, ok := defs.Get(n.RefKey)
		if !ok {
			return "", &schema.Error{Reason: fmt.Sprintf("undefined $ref target %q", n.RefKey)}
		}
		if refPath[target] {
			// Defensive: signature computation for a Ref chain that never
			// passes through a terminal Object. Declaration emission is
			// where spec'd cycle handling lives (§4.3); this only stops an
			// otherwise-unbounded walk.
			return "any", nil
		}
		refPath[target] = true
		s, err := signature(target, defs, refPath)
		if err != nil {
			return "", err
		}
		base = s
	case schema.KindAny:
		base = "any"
	case schema.KindBool:
		base = "boolean"
	case schema.KindNumber, schema.KindInt:
		base = "number"
	case schema.KindString:
		base = "string"
	case schema.KindEnum:
		base = enumLiteral(n.EnumValues)
	case schema.KindObject:
		base = n.TypeName
	case schema.KindMap:
		valueSig, err := signature(n.ValueSchema, defs, refPath)
		if err != nil {
			return "", err
		}
		base = "{ [key: string]: " + valueSig + " }"
	case schema.KindArray:
		itemSig, err := signature(n.ItemSchema, defs, refPath)
		if err != nil {
			return "", err
		}
		if needsParens(n.ItemSchema) {
			itemSig = "(" + itemSig + ")"
		}
		base = itemSig + "[]"
	case schema.KindUnion:
		parts := make([]string, 0, len(n.Members))
		for _, m := range n.Members {
			s, err := signature(m, defs, refPath)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		base = strings.Join(parts, " | ")
	default:
		base = "any"
	}

	if n.Kind != schema.KindRef && n.Nullable {
		base += " | null"
	}
	return base, nil
}

// needsParens reports whether an array's item signature must be
// parenthesized so `[]` binds to the whole union/nullable expression
// rather than its last member, e.g. `("a" | "b")[]`. A multi-value Enum
// renders as an unparenthesized `|`-joined literal union, so it needs the
// same treatment as a Union node.
func needsParens(item *schema.Node) bool {
	if item == nil {
		return false
	}
	if item.Kind == schema.KindUnion {
		return true
	}
	if item.Kind == schema.KindEnum && len(item.EnumValues) > 1 {
		return true
	}
	return item.Nullable
}

func enumLiteral(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			parts = append(parts, "any")
			continue
		}
		parts = append(parts, string(b))
	}
	if len(parts) == 0 {
		return "never"
	}
	return strings.Join(parts, " | ")
}
