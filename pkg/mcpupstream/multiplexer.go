package mcpupstream

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pctx-dev/pctx/pkg/config"
	"github.com/pctx-dev/pctx/pkg/logging"
)

// Registry is the immutable-after-startup upstream server table: built once, shared read-only by every sandbox.
type Registry struct {
	order []string
	servers map[string]*ServerDescriptor
}

// NewRegistry builds and connects to every configured server, skipping
// (and logging a warning for) any that fail to connect — the gateway
// continues serving the servers that did connect.
// The aggregate of all connect errors is returned too, via multierr, so a
// caller that cares (e.g. the `serve` command, which logs it) can still
// see every failure instead of just the first.
func NewRegistry(ctx context.Context, servers []config.ServerConfig, resolver config.Resolver, log logging.Logger) (*Registry, error) {
	reg := &Registry{servers: make(map[string]*ServerDescriptor)}
	var errs error

	for _, sc := range servers {
		desc := NewServerDescriptor(sc.Name, "", sc.URL, sc.Auth)
		client := New(desc, resolver, log)
		if err := client.Discover(ctx); err != nil {
			log.Warn("skipping upstream server that failed to connect",
				zap.String("server", sc.Name), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		reg.order = append(reg.order, desc.Name)
		reg.servers[desc.Name] = desc
		log.Info("connected to upstream server",
			zap.String("server", desc.Name), zap.Int("tools", len(desc.Tools())))
	}
	return reg, errs
}

// Servers returns the connected server descriptors in connection order.
func (r *Registry) Servers() []*ServerDescriptor {
	out := make([]*ServerDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.servers[name])
	}
	return out
}

// Server looks up one connected server by name.
func (r *Registry) Server(name string) (*ServerDescriptor, bool) {
	s, ok := r.servers[name]
	return s, ok
}
