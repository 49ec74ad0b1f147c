package schema

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/stoewer/go-strcase"
)

// CaseStyle selects the identifier style PascalCase/PascalCase's sibling
// conversions are requested in.
type CaseStyle int

const (
	CasePascal CaseStyle = iota
	CaseCamel
	CaseSnake
	CaseShoutySnake
	CaseTitle
	CaseKebab
	CaseLowercase
)

// Assigner walks a schema node and stamps every Object node with a unique
// TypeName (C2). A single Assigner should be used per root schema so the
// uniqueness set is shared across the whole tree.
type Assigner struct {
	style CaseStyle
	seen map[string]int
}

// NewAssigner builds an Assigner using the given identifier case style.
// PCTX always emits PascalCase interface names (TypeScript convention);
// the other styles are also available through Case, which toolwrap.Build
// calls with CaseCamel to derive function names.
func NewAssigner(style CaseStyle) *Assigner {
	return &Assigner{style: style, seen: make(map[string]int)}
}

// Assign runs the depth-first traversal from starting at seed,
// mutating n and everything it reaches.
func (a *Assigner) Assign(n *Node, seed string) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindObject:
		n.TypeName = a.unique(Case(seed, a.style))
		for i := range n.Properties {
			p := &n.Properties[i]
			childSeed := n.TypeName + " " + p.Name
			a.Assign(p.Schema, childSeed)
		}
		if n.Additional != nil {
			a.Assign(n.Additional, n.TypeName+"AdditionalProps")
		}
	case KindMap:
		a.Assign(n.ValueSchema, seed)
	case KindArray:
		a.Assign(n.ItemSchema, seed)
	case KindUnion:
		if n.Nullable {
			n.Members = append(n.Members, nullLiteralMember())
		}
		for i, m := range n.Members {
			childSeed := seed + " " + m.Kind.String() + " " + strconv.Itoa(i)
			a.Assign(m, childSeed)
		}
	default:
		// Ref, Any, Bool, Number, Int, String, Enum are terminals.
	}
}

// nullLiteralMember is the explicit `| null` tail the emitter expects to
// see as a union member once the assigner has run.
func nullLiteralMember() *Node {
	return &Node{Kind: KindEnum, EnumValues: []any{nil}}
}

// unique returns name, or name suffixed with a disambiguating counter if
// it collides with a name already assigned by this Assigner — the
// fallback path for the rare case where two distinct seeds normalize to
// the same identifier.
func (a *Assigner) unique(name string) string {
	if name == "" {
		name = "Anonymous"
	}
	count, seen := a.seen[name]
	a.seen[name] = count + 1
	if !seen {
		return name
	}
	return name + strconv.Itoa(count+1)
}

// Case sanitizes seed and applies style. Leading/trailing underscores are
// preserved verbatim; every other character that isn't a valid
// identifier-continuation character becomes a word break and does not
// appear in the result.
func Case(seed string, style CaseStyle) string {
	leading, core, trailing := splitUnderscores(sanitize(seed))
	if core == "" {
		return leading + trailing
	}

	var converted string
	switch style {
	case CasePascal:
		converted = strcase.UpperCamelCase(core)
	case CaseCamel:
		converted = strcase.LowerCamelCase(core)
	case CaseSnake:
		converted = strcase.SnakeCase(core)
	case CaseShoutySnake:
		converted = strings.ToUpper(strcase.SnakeCase(core))
	case CaseKebab:
		converted = strcase.KebabCase(core)
	case CaseLowercase:
		converted = strings.ToLower(stripSpaces(core))
	case CaseTitle:
		converted = titleCase(core)
	default:
		converted = strcase.UpperCamelCase(core)
	}
	return leading + converted + trailing
}

// sanitize replaces characters that cannot appear in a TypeScript
// identifier continuation with a space, and keeps letters, digits,
// underscores, hyphens and spaces (the seed-composition separator), so the
// case converters see every one of them as a word boundary.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == ' ', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func splitUnderscores(s string) (leading, core, trailing string) {
	i := 0
	for i < len(s) && s[i] == '_' {
		i++
	}
	j := len(s)
	for j > i && s[j-1] == '_' {
		j--
	}
	return s[:i], s[i:j], s[j:]
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func titleCase(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
	for i, f := range fields {
		if f == "" {
			continue
		}
		r := []rune(f)
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}
