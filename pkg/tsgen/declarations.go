package tsgen

import (
	"fmt"
	"strings"

	"github.com/pctx-dev/pctx/pkg/schema"
)

// Declarations walks n and returns the concatenated `interface` blocks for
// every named Object it reaches, each emitted exactly once, in discovery
// order. The result has already passed
// through Format.
func Declarations(n *schema.Node, defs *schema.DefinitionTable) (string, error) {
	c := &collector{defs: defs, emitted: map[*schema.Node]bool{}}
	if err := c.walk(n); err != nil {
		return "", err
	}
	var b strings.Builder
	for i, obj := range c.order {
		if i > 0 {
			b.WriteString("\n\n")
		}
		decl, err := renderInterface(obj, defs)
		if err != nil {
			return "", err
		}
		b.WriteString(decl)
	}
	return Format(b.String()), nil
}

type collector struct {
	defs *schema.DefinitionTable
	emitted map[*schema.Node]bool
	order []*schema.Node
}

// walk traverses n looking for Object nodes to queue for declaration
// emission. Marking an Object emitted *before* descending into its
// properties is what breaks recursive-definition cycles: the second time the walk reaches the same
// node through a `$ref` it finds the node already marked and stops.
func (c *collector) walk(n *schema.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case schema.KindRef:
		target, ok := c.defs.Get(n.RefKey)
		if !ok {
			return &schema.Error{Reason: fmt.Sprintf("undefined $ref target %q", n.RefKey)}
		}
		return c.walk(target)
	case schema.KindObject:
		if c.emitted[n] {
			return nil
		}
		c.emitted[n] = true
		c.order = append(c.order, n)
		for _, p := range n.Properties {
			if err := c.walk(p.Schema); err != nil {
				return err
			}
		}
		if n.Additional != nil {
			if err := c.walk(n.Additional); err != nil {
				return err
			}
		}
	case schema.KindMap:
		return c.walk(n.ValueSchema)
	case schema.KindArray:
		return c.walk(n.ItemSchema)
	case schema.KindUnion:
		for _, m := range n.Members {
			if err := c.walk(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderInterface(obj *schema.Node, defs *schema.DefinitionTable) (string, error) {
	var b strings.Builder
	if desc := descriptionOf(obj.Raw); desc != "" {
		b.WriteString(jsdoc(desc, 0))
	}
	fmt.Fprintf(&b, "interface %s {\n", obj.TypeName)
	for _, p := range obj.Properties {
		if p.Desc != "" {
			b.WriteString(jsdoc(p.Desc, 1))
		}
		required := obj.PropertyRequired(p.Name)
		sig, err := signature(p.Schema, defs, map[*schema.Node]bool{})
		if err != nil {
			return "", err
		}
		optional := ""
		if !required {
			optional = "?"
		}
		fmt.Fprintf(&b, "  %s%s: %s;\n", p.Name, optional, sig)
	}
	if obj.Additional != nil {
		addSig, err := signature(obj.Additional, defs, map[*schema.Node]bool{})
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  [key: string]: %s;\n", addSig)
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func descriptionOf(raw schema.RawSchema) string {
	if raw == nil {
		return ""
	}
	s, _ := raw["description"].(string)
	return s
}

// jsdoc renders desc as a `/** ... */` block indented by indent levels (two
// spaces each), escaping any embedded `*/` so the comment can't be closed
// early by untrusted upstream tool descriptions.
func jsdoc(desc string, indent int) string {
	pad := strings.Repeat("  ", indent)
	escaped := strings.ReplaceAll(desc, "*/", "*-/")
	lines := strings.Split(escaped, "\n")
	if len(lines) == 1 {
		return fmt.Sprintf("%s/** %s */\n", pad, lines[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s/**\n", pad)
	for _, l := range lines {
		fmt.Fprintf(&b, "%s * %s\n", pad, l)
	}
	fmt.Fprintf(&b, "%s */\n", pad)
	return b.String()
}
