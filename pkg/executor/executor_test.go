package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pctx-dev/pctx/pkg/logging"
	"github.com/pctx-dev/pctx/pkg/mcpupstream"
)

type noopDispatcher struct{}

func (noopDispatcher) CallTool(context.Context, string, string, map[string]any) (any, error) {
	return nil, nil
}

func TestWrapAsModuleRewritesDefaultExport(t *testing.T) {
	wrapped := wrapAsModule("var x = 1;\nexport default x + 1;\n")

	require.Contains(t, wrapped, "(async function () {")
	require.Contains(t, wrapped, "return x + 1;")
	require.NotContains(t, wrapped, "export default")
	require.Contains(t, wrapped, ".then(__pctx_resolve, __pctx_reject);")
}

// TestExecuteSuccessPath grounds scenario 4 of the testable scenario
// suite: `async function run() { return 1 + 1; }` succeeds with output 2.
func TestExecuteSuccessPath(t *testing.T) {
	o := New(logging.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	source := "async function run() {\n  return 1 + 1;\n}\n\nexport default await run();\n"

	res := o.Execute(ctx, source, map[string]struct{}{}, noopDispatcher{})

	require.True(t, res.Success)
	require.EqualValues(t, 2, res.Output)
	require.Empty(t, res.Diagnostics)
	require.Nil(t, res.RuntimeError)
}

func TestExecuteTypeCheckFailure(t *testing.T) {
	o := New(logging.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	source := `
interface FooInput { x: string; }
function foo(input: FooInput): void {}
foo({x: 1});

async function run() {
  return 1;
}

export default await run();
`

	res := o.Execute(ctx, source, map[string]struct{}{}, noopDispatcher{})

	require.False(t, res.Success)
	require.NotEmpty(t, res.Diagnostics)
	require.Equal(t, 2322, *res.Diagnostics[0].Code)
}

// TestExecuteUpstreamToolCall grounds scenario 5: a script awaiting a
// namespaced wrapper function that delegates to callMCPTool.
func TestExecuteUpstreamToolCall(t *testing.T) {
	dispatcher := &recordingDispatcher{result: map[string]any{"ok": true}}
	o := New(logging.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	source := `
registerMCP({ name: "foo" });

namespace Foo {
  export async function echo(input: any): Promise<any> {
    return await callMCPTool({ name: "foo", tool: "echo", arguments: input });
  }
}

async function run() {
  return await Foo.echo({ msg: "hi" });
}

export default await run();
`

	res := o.Execute(ctx, source, map[string]struct{}{}, dispatcher)

	require.True(t, res.Success)
	require.Equal(t, map[string]any{"ok": true}, res.Output)
	require.Equal(t, "foo", dispatcher.gotServer)
	require.Equal(t, "echo", dispatcher.gotTool)
}

type recordingDispatcher struct {
	result               any
	gotServer, gotTool   string
}

func (d *recordingDispatcher) CallTool(_ context.Context, serverName, toolName string, _ map[string]any) (any, error) {
	d.gotServer, d.gotTool = serverName, toolName
	return d.result, nil
}

var _ mcpupstream.Dispatcher = (*recordingDispatcher)(nil)
