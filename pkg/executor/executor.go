// Package executor implements the execution orchestrator (C8): it drives
// a submitted TypeScript source through type-checking, transpilation, and
// sandboxed evaluation, producing the ExecutionResult the gateway's
// `execute` tool returns.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/pctx-dev/pctx/pkg/logging"
	"github.com/pctx-dev/pctx/pkg/mcpupstream"
	"github.com/pctx-dev/pctx/pkg/sandbox"
	"github.com/pctx-dev/pctx/pkg/typecheck"
)

// DefaultTimeout is the wall-clock budget for one execute call.
const DefaultTimeout = 10 * time.Second

// Result is the ExecutionResult.
type Result struct {
	Success bool `json:"success"`
	Diagnostics []typecheck.Diagnostic `json:"diagnostics,omitempty"`
	RuntimeError *RuntimeErrorInfo `json:"runtime_error,omitempty"`
	Output any `json:"output,omitempty"`
	Stdout []string `json:"stdout"`
	Stderr []string `json:"stderr"`
}

// RuntimeErrorInfo is the wire shape of a sandbox.RuntimeError.
type RuntimeErrorInfo struct {
	Message string `json:"message"`
	Stack string `json:"stack,omitempty"`
}

// Orchestrator composes C7 (type-check) and C6 (sandbox) to run one
// script per call. It is stateless between calls: every Execute gets a
// fresh checker runtime and a fresh sandbox, matching the "no state
// survives between calls" isolation guarantee.
type Orchestrator struct {
	timeout time.Duration
	log logging.Logger
}

// New builds an Orchestrator with the default timeout.
func New(log logging.Logger) *Orchestrator {
	return &Orchestrator{timeout: DefaultTimeout, log: log}
}

// Execute runs source (a complete script: gateway-emitted namespace
// declarations and wrapper functions, followed by the caller's code and
// a trailing `export default <expr>;`) against allowList and dispatcher,
// following this pipeline:
// 1. syntactic pre-pass
// 2. type-check (ignore-list filtered)
// 3. transpile TS -> JS
// 4. construct a sandbox runtime
// 5. load and evaluate the module, capturing console output
// 6. extract and return the default export
func (o *Orchestrator) Execute(ctx context.Context, source string, allowList map[string]struct{}, dispatcher mcpupstream.Dispatcher) *Result {
	if diag, ok := syntaxPrePass(source); !ok {
		return &Result{Success: false, Diagnostics: []typecheck.Diagnostic{diag}, Stdout: []string{}, Stderr: []string{}}
	}

	checker, err := typecheck.New()
	if err != nil {
		return runtimeFailure(fmt.Sprintf("type-check runtime unavailable: %v", err))
	}
	checkResult, err := checker.Check(source)
	if err != nil {
		return runtimeFailure(fmt.Sprintf("type-check failed: %v", err))
	}
	remaining := typecheck.FilterDiagnostics(checkResult.Diagnostics)
	if len(remaining) > 0 {
		return &Result{Success: false, Diagnostics: remaining, Stdout: []string{}, Stderr: []string{}}
	}

	transpiled, err := transpile(source)
	if err != nil {
		return runtimeFailure(fmt.Sprintf("transpilation failed: %v", err))
	}

	wrapped := wrapAsModule(transpiled)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	rt := sandbox.New(allowList, dispatcher, o.log)
	outcome := rt.Eval(ctx, wrapped)

	res := &Result{Stdout: outcome.Stdout, Stderr: outcome.Stderr}
	if res.Stdout == nil {
		res.Stdout = []string{}
	}
	if res.Stderr == nil {
		res.Stderr = []string{}
	}
	if outcome.Err != nil {
		res.Success = false
		res.RuntimeError = &RuntimeErrorInfo{Message: outcome.Err.Message, Stack: outcome.Err.Stack}
		return res
	}
	res.Success = true
	res.Output = outcome.Value
	return res
}

func runtimeFailure(msg string) *Result {
	return &Result{Success: false, RuntimeError: &RuntimeErrorInfo{Message: msg}, Stdout: []string{}, Stderr: []string{}}
}

// syntaxPrePass implements the pre-typecheck pass: "the orchestrator parses the
// source with a syntactic-only parser [before] invoking the embedded
// compiler" — esbuild's own TS parser doubles as that syntactic check,
// since a parse failure there is always a parse failure for the real
// compiler too.
func syntaxPrePass(source string) (typecheck.Diagnostic, bool) {
	result := api.Transform(source, api.TransformOptions{
		Loader: api.LoaderTS,
	})
	if len(result.Errors) == 0 {
		return typecheck.Diagnostic{}, true
	}
	msg := result.Errors[0]
	diag := typecheck.Diagnostic{
		Message: msg.Text,
		Severity: typecheck.SeverityError,
	}
	if msg.Location != nil {
		line := msg.Location.Line
		col := msg.Location.Column
		diag.Line = &line
		diag.Column = &col
	}
	return diag, false
}

func transpile(source string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader: api.LoaderTS,
		Target: api.ES2020,
		// The gateway trailer `export default await run();` is top-level
		// await, which ES2020 lacks; wrapAsModule later moves it into an
		// async function, so esbuild is told to leave it as written.
		Supported: map[string]bool{"top-level-await": true},
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Text
		}
		return "", fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}

// wrapAsModule rewrites the single gateway-controlled `export default
// <expr>;` trailer esbuild leaves behind (after stripping TS types, it
// becomes a plain JS `export default <expr>;`) into a `return` inside an
// async IIFE, then drives that IIFE's settlement into the
// __pctx_resolve/__pctx_reject globals the sandbox installs. This sidesteps
// needing goja's native ES module support for what is, in practice, a
// single expression.
func wrapAsModule(transpiled string) string {
	body := transpiled
	if idx := strings.LastIndex(body, "export default "); idx != -1 {
		body = body[:idx] + "return " + body[idx+len("export default "):]
	}
	var sb strings.Builder
	sb.WriteString("(async function () {\n")
	sb.WriteString(body)
	sb.WriteString("\n})().then(__pctx_resolve, __pctx_reject);\n")
	return sb.String()
}
