package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pctx-dev/pctx/pkg/config"
)

func TestEnvResolverResolvesEnvVar(t *testing.T) {
	t.Setenv("PCTX_TEST_SECRET", "s3cr3t")

	val, err := config.EnvResolver{}.Resolve("${env:PCTX_TEST_SECRET}")
	require.NoError(t, err)
	require.Equal(t, "s3cr3t", val)
}

func TestEnvResolverMissingEnvVar(t *testing.T) {
	require.NoError(t, os.Unsetenv("PCTX_TEST_MISSING"))

	_, err := config.EnvResolver{}.Resolve("${env:PCTX_TEST_MISSING}")
	require.Error(t, err)
}

func TestEnvResolverCommand(t *testing.T) {
	val, err := config.EnvResolver{}.Resolve("command://echo -n hello")
	require.NoError(t, err)
	require.Equal(t, "hello", val)
}

func TestEnvResolverKeychainNotImplemented(t *testing.T) {
	_, err := config.EnvResolver{}.Resolve("keychain://some-entry")
	require.Error(t, err)
}

func TestEnvResolverPassthrough(t *testing.T) {
	val, err := config.EnvResolver{}.Resolve("plain-value")
	require.NoError(t, err)
	require.Equal(t, "plain-value", val)
}
