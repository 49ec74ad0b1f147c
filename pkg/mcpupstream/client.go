package mcpupstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gomcp "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pctx-dev/pctx/pkg/config"
	"github.com/pctx-dev/pctx/pkg/logging"
	"github.com/pctx-dev/pctx/pkg/toolwrap"
)

// ClientVersion is reported in every upstream `initialize` call.
const ClientVersion = "0.1.0"

// ProtocolVersion is the MCP wire version PCTX requests as an upstream
// client. The inbound gateway server does not use it: its version is
// negotiated by mcp-go's server.
const ProtocolVersion = "2024-11-05"

// Client talks to a single upstream MCP server over Streamable HTTP.
// Connections are one-shot per invocation; Client itself is just the immutable recipe for
// building one.
type Client struct {
	desc *ServerDescriptor
	url string
	resolver config.Resolver
	auth *config.AuthConfig
	log logging.Logger
}

// New builds a Client for one upstream server.
func New(desc *ServerDescriptor, resolver config.Resolver, log logging.Logger) *Client {
	return &Client{desc: desc, url: desc.URL, resolver: resolver, auth: desc.auth, log: log}
}

// Discover performs `initialize` followed by a paginated `tools/list`,
// populating desc.Tools() via C4.
// A connection failure classifies as *ConnectError; a schema compilation
// failure for any one tool is a *schema.Error, which aborts discovery for
// the whole server (a partially-typed namespace is worse than none).
func (c *Client) Discover(ctx context.Context) error {
	mc, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer mc.Close()

	cursor := ""
	for {
		req := mcp.ListToolsRequest{}
		if cursor != "" {
			req.Params.Cursor = mcp.Cursor(cursor)
		}
		res, err := mc.ListTools(ctx, req)
		if err != nil {
			return failed(fmt.Sprintf("tools/list: %v", err))
		}
		for _, t := range res.Tools {
			inputSchema, outputSchema, err := toolSchemas(t)
			if err != nil {
				return fmt.Errorf("mcpupstream: decoding schema for tool %q from %q: %w", t.Name, c.desc.Name, err)
			}
			desc, err := toolwrap.Build(t.Name, t.Annotations.Title, t.Description, inputSchema, outputSchema)
			if err != nil {
				return fmt.Errorf("mcpupstream: compiling tool %q from %q: %w", t.Name, c.desc.Name, err)
			}
			c.desc.AddTool(desc)
		}
		if res.NextCursor == "" {
			break
		}
		cursor = string(res.NextCursor)
	}
	return nil
}

// Call performs one `tools/call` and returns the value per the
// tools/call extraction rules: structuredContent when present, otherwise a best
// effort JSON.parse of the first text content item, falling back to the
// raw string, and finally a JSON-serialized content array when the first
// item isn't text. `isError == true` is converted to *CallError.
func (c *Client) Call(ctx context.Context, toolName string, arguments map[string]any) (any, error) {
	mc, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer mc.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = arguments

	res, err := mc.CallTool(ctx, req)
	if err != nil {
		return nil, &CallError{ToolName: toolName, Message: err.Error()}
	}
	if res.IsError {
		return nil, &CallError{ToolName: toolName, Message: extractErrorMessage(res)}
	}
	return extractResult(res), nil
}

func (c *Client) dial(ctx context.Context) (*gomcp.Client, error) {
	opts, err := c.transportOptions()
	if err != nil {
		return nil, failed(err.Error())
	}

	mc, err := gomcp.NewStreamableHttpClient(c.url, opts...)
	if err != nil {
		return nil, classifyConnectError(err)
	}
	if err := mc.Start(ctx); err != nil {
		return nil, classifyConnectError(err)
	}

	_, err = mc.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: ProtocolVersion,
			ClientInfo: mcp.Implementation{
				Name: "pctx-client",
				Version: ClientVersion,
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		mc.Close()
		return nil, classifyConnectError(err)
	}
	return mc, nil
}

// transportOptions builds the per-server auth header set: a bearer token or a resolved set of custom headers, via the
// secret-string Resolver the gateway was configured with.
func (c *Client) transportOptions() ([]transport.StreamableHTTPCOption, error) {
	headers := map[string]string{
		"Accept": "application/json, text/event-stream",
	}
	if c.auth != nil {
		switch c.auth.Kind {
		case config.AuthBearer:
			token, err := c.resolver.Resolve(c.auth.Token)
			if err != nil {
				return nil, fmt.Errorf("resolving bearer token: %w", err)
			}
			headers["Authorization"] = "Bearer " + token
		case config.AuthCustom:
			for name, secretString := range c.auth.Headers {
				val, err := c.resolver.Resolve(secretString)
				if err != nil {
					return nil, fmt.Errorf("resolving header %q: %w", name, err)
				}
				headers[name] = val
			}
		}
	}
	return []transport.StreamableHTTPCOption{
		transport.WithHTTPHeaders(headers),
	}, nil
}

// classifyConnectError maps a transport failure into RequiresAuth or
// Failed(reason): HTTP 401, or the transport's own auth-required signal,
// means RequiresAuth.
func classifyConnectError(err error) *ConnectError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, strconv.Itoa(http.StatusUnauthorized)) || strings.Contains(strings.ToLower(msg), "unauthorized") {
		return requiresAuth()
	}
	return failed(msg)
}

// toolSchemas decodes a discovered tool's inputSchema/outputSchema back
// into generic maps by round-tripping through JSON: the wire shape is
// standardized by MCP regardless of how mcp-go's Go structs happen to
// model it, so this is robust to the library's own field layout.
func toolSchemas(t mcp.Tool) (input, output map[string]any, err error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, nil, err
	}
	var wire struct {
		InputSchema map[string]any `json:"inputSchema"`
		OutputSchema map[string]any `json:"outputSchema"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, nil, err
	}
	return wire.InputSchema, wire.OutputSchema, nil
}

// extractResult implements the tools/call content-extraction rules.
func extractResult(res *mcp.CallToolResult) any {
	if res.StructuredContent != nil {
		return res.StructuredContent
	}
	if len(res.Content) > 0 {
		if tc, ok := res.Content[0].(mcp.TextContent); ok {
			var parsed any
			if err := json.Unmarshal([]byte(tc.Text), &parsed); err == nil {
				return parsed
			}
			return tc.Text
		}
	}
	if raw, err := json.Marshal(res.Content); err == nil {
		var arr any
		if err := json.Unmarshal(raw, &arr); err == nil {
			return arr
		}
	}
	return res.Content
}

func extractErrorMessage(res *mcp.CallToolResult) string {
	for _, item := range res.Content {
		if tc, ok := item.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return "tool call reported isError without a text message"
}

// AllowListEntry derives the `host:port` form of rawURL used for allow-list
// membership checks: scheme defaults apply when no port is explicit.
func AllowListEntry(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("mcpupstream: invalid URL %q: %w", rawURL, err)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", fmt.Errorf("mcpupstream: cannot derive a default port for scheme %q", u.Scheme)
		}
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("mcpupstream: invalid port in %q", rawURL)
	}
	return host + ":" + port, nil
}
