// Package config defines the ServerConfig list and secret-string resolver
// interfaces the PCTX core consumes, plus a minimal YAML-backed loader for
// the upstream server list.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AuthKind selects which of the two auth shapes the core actually needs.
// The source's oauth-client-credentials/oauth2/keychain/command drafts are
// collaborator territory and are not modeled here.
type AuthKind string

const (
	AuthNone AuthKind = ""
	AuthBearer AuthKind = "bearer"
	AuthCustom AuthKind = "custom"
)

// AuthConfig describes how the upstream client authenticates to one server.
type AuthConfig struct {
	Kind AuthKind `yaml:"kind,omitempty"`

	// Token is a secret-string (see Resolver) used when Kind == AuthBearer.
	Token string `yaml:"token,omitempty"`

	// Headers is resolved header name -> secret-string value, used when
	// Kind == AuthCustom.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// ServerConfig describes one upstream MCP server, as loaded from the
// gateway's config file (collaborator-owned persistence format; PCTX only
// needs the decoded shape).
type ServerConfig struct {
	Name string `yaml:"name"`
	URL string `yaml:"url"`
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// GatewayConfig is the root document loaded from disk.
type GatewayConfig struct {
	Servers []ServerConfig `yaml:"servers"`
}

// Resolver turns a secret-string (`${env:X}`, `keychain://...`,
// `command://...`) into a plain value. PCTX's core only ever calls this; it
// never decides how secrets are actually stored.
type Resolver interface {
	Resolve(secretString string) (string, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(secretString string) (string, error)

func (f ResolverFunc) Resolve(s string) (string, error) { return f(s) }

// Load reads and parses a gateway config file.
func Load(path string) (*GatewayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg GatewayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for i, s := range cfg.Servers {
		if s.Name == "" {
			return nil, fmt.Errorf("config: server at index %d has no name", i)
		}
		if s.URL == "" {
			return nil, fmt.Errorf("config: server %q has no url", s.Name)
		}
	}
	return &cfg, nil
}
