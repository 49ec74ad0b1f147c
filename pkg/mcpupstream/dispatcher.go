package mcpupstream

import (
	"context"

	"github.com/pctx-dev/pctx/pkg/config"
	"github.com/pctx-dev/pctx/pkg/logging"
)

// Dispatcher is the narrow interface the sandbox's `callMCPTool` host op
// needs: resolve a server by name, call one
// of its tools, and surface upstream failures as errors the sandbox turns
// into a rejected promise.
type Dispatcher interface {
	CallTool(ctx context.Context, serverName, toolName string, arguments map[string]any) (any, error)
}

// registryDispatcher adapts a Registry (immutable, shared across
// sandboxes) into a Dispatcher. Each call opens a fresh one-shot upstream
// connection per — no pooling, no state retained between calls.
type registryDispatcher struct {
	reg *Registry
	resolver config.Resolver
	log logging.Logger
}

// NewDispatcher wraps reg for use by sandbox runtimes.
func NewDispatcher(reg *Registry, resolver config.Resolver, log logging.Logger) Dispatcher {
	return &registryDispatcher{reg: reg, resolver: resolver, log: log}
}

func (d *registryDispatcher) CallTool(ctx context.Context, serverName, toolName string, arguments map[string]any) (any, error) {
	desc, ok := d.reg.Server(serverName)
	if !ok {
		return nil, &CallError{ToolName: toolName, Message: "unknown upstream server " + serverName}
	}
	client := New(desc, d.resolver, d.log)
	return client.Call(ctx, toolName, arguments)
}
