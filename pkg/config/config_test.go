package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pctx-dev/pctx/pkg/config"
)

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pctx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
servers:
  - name: foo
    url: https://foo.example.com/mcp
    auth:
      kind: bearer
      token: "${env:FOO_TOKEN}"
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 1)
	require.Equal(t, "foo", cfg.Servers[0].Name)
	require.Equal(t, config.AuthBearer, cfg.Servers[0].Auth.Kind)
}

func TestLoadRejectsServerWithoutName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pctx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
servers:
  - url: https://foo.example.com/mcp
`), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsServerWithoutURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pctx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
servers:
  - name: foo
`), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
