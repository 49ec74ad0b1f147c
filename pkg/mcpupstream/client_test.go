package mcpupstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowListEntryDefaultPorts(t *testing.T) {
	entry, err := AllowListEntry("https://tools.example.com/mcp")
	require.NoError(t, err)
	assert.Equal(t, "tools.example.com:443", entry)

	entry, err = AllowListEntry("http://localhost/mcp")
	require.NoError(t, err)
	assert.Equal(t, "localhost:80", entry)
}

func TestAllowListEntryExplicitPort(t *testing.T) {
	entry, err := AllowListEntry("http://localhost:8888/mcp")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8888", entry)
}

func TestAllowListEntryUnknownScheme(t *testing.T) {
	_, err := AllowListEntry("ftp://example.com/mcp")
	require.Error(t, err)
}

func TestClassifyConnectErrorUnauthorized(t *testing.T) {
	err := classifyConnectError(assertError("401 Unauthorized"))
	require.True(t, err.RequiresAuth)
}

func TestClassifyConnectErrorOther(t *testing.T) {
	err := classifyConnectError(assertError("connection refused"))
	require.False(t, err.RequiresAuth)
	require.Equal(t, "connection refused", err.Reason)
}

type stringError string

func (e stringError) Error() string { return string(e) }

func assertError(msg string) error { return stringError(msg) }
