package typecheck

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCheckPrimitiveRequiredProperty grounds scenario 1 of the testable
// scenario suite: a string-typed required property rejects a numeric
// literal with code 2322.
func TestCheckPrimitiveRequiredProperty(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)

	source := `
interface FooInput { x: string; }
function foo(input: FooInput): void {}
foo({x: 1});
`
	res, err := rt.Check(source)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.NotEmpty(t, res.Diagnostics)
	require.Equal(t, 2322, *res.Diagnostics[0].Code)
}

func TestCheckPrimitiveRequiredPropertyPasses(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)

	source := `
interface FooInput { x: string; }
function foo(input: FooInput): void {}
foo({x: "hi"});
`
	res, err := rt.Check(source)
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestCheckMissingRequiredProperty(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)

	source := `
interface FooInput { x: string; }
function foo(input: FooInput): void {}
foo({});
`
	res, err := rt.Check(source)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, 2741, *res.Diagnostics[0].Code)
}

func TestCheckEnumMembership(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)

	source := `
interface BarInput { tag: "a" | "b"; }
function bar(input: BarInput): void {}
bar({tag: "c"});
`
	res, err := rt.Check(source)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, 2322, *res.Diagnostics[0].Code)
}
