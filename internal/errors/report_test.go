package errors

import (
	"testing"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapReportRoundTrips(t *testing.T) {
	r := New("typecheck", TYP001, ast.Pos{File: "a.rill", Line: 3, Col: 5}, "expected %s, got %s", "i64", "str")
	err := WrapReport(r)
	require.Error(t, err)

	got, ok := AsReport(err)
	require.True(t, ok)
	assert.Equal(t, TYP001, got.Code)
	assert.Equal(t, Schema, got.Schema)
	assert.Contains(t, err.Error(), "a.rill:3:5")
	assert.Contains(t, err.Error(), "expected i64, got str")
}

func TestWrapReportNil(t *testing.T) {
	assert.NoError(t, WrapReport(nil))
}

func TestReportToJSON(t *testing.T) {
	r := NewNoPos("loader", MAN002, "library %q not found", "sqlite")
	js, err := r.ToJSON(true)
	require.NoError(t, err)
	assert.Contains(t, js, `"code":"MAN002"`)
	assert.Contains(t, js, `"schema":"rill.error/v1"`)
}

func TestAsReportMissesPlainErrors(t *testing.T) {
	_, ok := AsReport(assert.AnError)
	assert.False(t, ok)
}
