package typecheck

// ignoredCodes is the closed set of TypeScript diagnostic codes the
// orchestrator discards before deciding whether a check failed: module-resolution and ambient-global complaints that are
// expected and harmless in a single-file, no-`node_modules` sandbox script
// (the gateway namespaces and host globals are injected, not imported).
var ignoredCodes = map[int]bool{
	2307: true, // Cannot find module
	2304: true, // Cannot find name
	7016: true, // Could not find a declaration file for module
	2318: true, // Cannot find global type
	2580: true, // Cannot find name 'require' / 'module' (Node globals)
	2583: true, // Cannot find name (needs --target / --lib)
	2584: true, // Cannot find name (needs --lib dom)
	2585: true, // Cannot find name (needs --lib es2015+)
	2591: true, // Cannot find name 'require' (needs @types/node)
	2339: true, // Property does not exist on type (host globals are untyped)
	2693: true, // Value used as a type (ambient namespace globals)
	7006: true, // Parameter implicitly has an 'any' type
	7053: true, // Element implicitly has an 'any' type (index signature)
	7005: true, // Variable implicitly has an 'any' type
	7034: true, // Variable implicitly has type 'any' in some locations
	18046: true, // 'x' is of type 'unknown'
	2362: true, // Left-hand side of arithmetic must be of type any/number/bigint
	2363: true, // Right-hand side of arithmetic must be of type any/number/bigint
}

// FilterDiagnostics removes every diagnostic on the ignore-list, leaving
// only the ones that should fail the check.
func FilterDiagnostics(diags []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Code != nil && ignoredCodes[*d.Code] {
			continue
		}
		out = append(out, d)
	}
	return out
}
