package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pctx-dev/pctx/pkg/logging"
)

type stubDispatcher struct {
	result any
	err    error
	gotServer, gotTool string
	gotArgs            map[string]any
}

func (s *stubDispatcher) CallTool(_ context.Context, serverName, toolName string, arguments map[string]any) (any, error) {
	s.gotServer, s.gotTool, s.gotArgs = serverName, toolName, arguments
	return s.result, s.err
}

func wrap(body string) string {
	return "(async function () {\n" + body + "\n})().then(__pctx_resolve, __pctx_reject);\n"
}

func TestEvalResolvesDefaultExport(t *testing.T) {
	rt := New(map[string]struct{}{}, &stubDispatcher{}, logging.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := rt.Eval(ctx, wrap("return 1 + 1;"))

	require.Nil(t, out.Err)
	require.Equal(t, int64(2), toInt64(out.Value))
}

func TestEvalCapturesConsoleOrdering(t *testing.T) {
	rt := New(map[string]struct{}{}, &stubDispatcher{}, logging.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := rt.Eval(ctx, wrap(`
console.log("a", 1);
console.warn("b");
console.log("c");
return null;
`))

	require.Nil(t, out.Err)
	require.Equal(t, []string{`a 1`, `c`}, out.Stdout)
	require.Equal(t, []string{`b`}, out.Stderr)
}

func TestEvalCallMCPToolBridgesToDispatcher(t *testing.T) {
	dispatcher := &stubDispatcher{result: map[string]any{"ok": true}}
	rt := New(map[string]struct{}{}, dispatcher, logging.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := rt.Eval(ctx, wrap(`
registerMCP({ name: "foo" });
return await callMCPTool({ name: "foo", tool: "echo", arguments: { msg: "hi" } });
`))

	require.Nil(t, out.Err)
	require.Equal(t, "foo", dispatcher.gotServer)
	require.Equal(t, "echo", dispatcher.gotTool)
	require.Equal(t, "hi", dispatcher.gotArgs["msg"])
}

func TestEvalFetchRejectsHostNotInAllowList(t *testing.T) {
	rt := New(map[string]struct{}{"localhost:3000": {}}, &stubDispatcher{}, logging.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := rt.Eval(ctx, wrap(`
try {
  await fetch("http://example.com");
  return "unreachable";
} catch (e) {
  return String(e);
}
`))

	require.Nil(t, out.Err)
	require.Contains(t, out.Value, "not in allow-list")
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return -1
	}
}
