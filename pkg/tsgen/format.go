package tsgen

import "strings"

// Format is the deterministic formatter declaration output passes through
// before it is returned. The emitter already
// produces canonically indented text (two spaces per level, see
// declarations.go), so formatting here is limited to the normalization a
// real pretty-printer would also guarantee byte-for-byte across runs:
// trimmed trailing whitespace, collapsed blank-line runs, and exactly one
// trailing newline.
//
// A dedicated TypeScript pretty-printer (the way `prettier` would be
// invoked from a Node toolchain) has no equivalent Go-native library in
// this module's dependency set; hand-rolled whitespace normalization is
// the documented exception (see DESIGN.md).
func Format(src string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		trimmed := strings.TrimRight(l, " \t")
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n") + "\n"
}
