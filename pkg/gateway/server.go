package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/pctx-dev/pctx/pkg/executor"
	"github.com/pctx-dev/pctx/pkg/logging"
	"github.com/pctx-dev/pctx/pkg/mcpupstream"
	"github.com/pctx-dev/pctx/pkg/redact"
)

const (
	serverName = "pctx"
	serverVersion = "0.1.0"
)

// Gateway owns the connected upstream registry, the execution
// orchestrator, and the inbound MCP server exposing the three tools:
// list_functions, get_function_details, and execute.
type Gateway struct {
	registry *mcpupstream.Registry
	dispatcher mcpupstream.Dispatcher
	orch *executor.Orchestrator
	allowList map[string]struct{}
	log logging.Logger
	redactor *redact.Redactor
	mcpServer *mcpserver.MCPServer
}

// New builds a Gateway. allowList is the derived `host:port`/`host` set
// every sandbox's `fetch` is gated against.
func New(registry *mcpupstream.Registry, dispatcher mcpupstream.Dispatcher, allowList map[string]struct{}, log logging.Logger) *Gateway {
	g := &Gateway{
		registry: registry,
		dispatcher: dispatcher,
		orch: executor.New(log),
		allowList: allowList,
		log: log,
		redactor: redact.New(),
	}
	g.mcpServer = g.buildMCPServer()
	return g
}

func (g *Gateway) buildMCPServer() *mcpserver.MCPServer {
	names := make([]string, 0, len(g.registry.Servers()))
	for _, s := range g.registry.Servers() {
		names = append(names, s.Name)
	}
	instructions := "Connected upstream servers: " + strings.Join(names, ", ")

	srv := mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithInstructions(instructions),
		mcpserver.WithRecovery(),
	)

	srv.AddTool(
		gomcp.NewTool("list_functions",
			gomcp.WithDescription("Returns a TypeScript declaration file listing every connected namespace and function signature, with no type bodies — a low-token overview of what is callable."),
		),
		g.handleListFunctions,
	)

	srv.AddTool(
		gomcp.NewTool("get_function_details",
			gomcp.WithDescription("Returns the full function signature and type declarations for each requested \"Namespace.function\" name."),
			gomcp.WithArray("functions",
				gomcp.Required(),
				gomcp.Items(map[string]any{"type": "string"}),
				gomcp.Description(`Function identifiers of the form "Namespace.functionName", as listed by list_functions.`),
			),
		),
		g.handleGetFunctionDetails,
	)

	srv.AddTool(
		gomcp.NewTool("execute",
			gomcp.WithDescription("Type-checks, transpiles, and runs a short TypeScript program in a sandbox. The program must define `async function run()`; its return value becomes the result."),
			gomcp.WithString("code",
				gomcp.Required(),
				gomcp.Description("TypeScript source defining async function run(). Call the typed namespace functions from list_functions/get_function_details to reach upstream tools."),
			),
		),
		g.handleExecute,
	)

	return srv
}

func (g *Gateway) handleListFunctions(_ context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	return gomcp.NewToolResultText(DeclarationFile(g.registry.Servers())), nil
}

func (g *Gateway) handleGetFunctionDetails(_ context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	raw, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return gomcp.NewToolResultText("No matching functions found."), nil
	}
	list, ok := raw["functions"].([]any)
	if !ok {
		return gomcp.NewToolResultText("No matching functions found."), nil
	}
	requested := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			requested = append(requested, s)
		}
	}
	return gomcp.NewToolResultText(FunctionDetails(g.registry.Servers(), requested)), nil
}

func (g *Gateway) handleExecute(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	raw, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return gomcp.NewToolResultError("execute: missing \"code\" argument"), nil
	}
	code, ok := raw["code"].(string)
	if !ok {
		return gomcp.NewToolResultError("execute: \"code\" must be a string"), nil
	}

	runID := uuid.NewString()
	program := BuildProgram(g.registry.Servers(), code)
	result := g.orch.Execute(ctx, program, g.allowList, g.dispatcher)
	text := renderResult(result)

	g.log.Debug("execute completed",
		zap.String("run_id", runID),
		zap.Bool("success", result.Success),
		zap.Strings("stdout", g.redactor.Strings(result.Stdout)),
		zap.Strings("stderr", g.redactor.Strings(result.Stderr)),
	)

	if !result.Success {
		return gomcp.NewToolResultError(text), nil
	}
	return gomcp.NewToolResultText(text), nil
}

// renderResult implements the execute tool's user-visible shape: a header line,
// a pretty-printed JSON return value section, and the two captured
// streams.
func renderResult(res *executor.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Code Executed Successfully: %t\n\n", res.Success)

	b.WriteString("# Return Value\n```json\n")
	if res.Output != nil {
		pretty, err := json.MarshalIndent(res.Output, "", " ")
		if err == nil {
			b.Write(pretty)
		} else {
			b.WriteString("null")
		}
	} else {
		b.WriteString("null")
	}
	b.WriteString("\n```\n\n")

	b.WriteString("# STDOUT\n")
	b.WriteString(strings.Join(res.Stdout, "\n"))
	b.WriteString("\n\n")

	b.WriteString("# STDERR\n")
	stderr := res.Stderr
	if len(stderr) == 0 && res.RuntimeError != nil {
		stderr = []string{res.RuntimeError.Message}
	}
	b.WriteString(strings.Join(stderr, "\n"))
	b.WriteString("\n")

	return b.String()
}

// HTTPHandler mounts the stateless Streamable HTTP transport at POST /mcp,
// plus a liveness probe at /healthz.
func (g *Gateway) HTTPHandler() http.Handler {
	streamable := mcpserver.NewStreamableHTTPServer(g.mcpServer, mcpserver.WithStateLess(true))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Handle("/mcp", streamable)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
