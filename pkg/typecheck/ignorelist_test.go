package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func codePtr(c int) *int { return &c }

func TestFilterDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		{Message: "Cannot find module 'x'", Code: codePtr(2307)},
		{Message: "Type 'number' is not assignable to type 'string'.", Code: codePtr(2322)},
		{Message: "no code at all"},
	}

	out := FilterDiagnostics(diags)

	assert.Len(t, out, 2)
	assert.Equal(t, 2322, *out[0].Code)
	assert.Nil(t, out[1].Code)
}

func TestFilterDiagnosticsEmpty(t *testing.T) {
	assert.Empty(t, FilterDiagnostics(nil))
}
