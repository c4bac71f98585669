package module

import (
	"testing"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRewriteAliasRefsSkipsParamShadowingAlias verifies that a function
// parameter named the same as an import alias is treated as a local
// variable, not the alias, so `param.field` stays a plain field access
// instead of being mangled into a cross-module reference.
func TestRewriteAliasRefsSkipsParamShadowingAlias(t *testing.T) {
	dir := t.TempDir()
	writeRill(t, dir, "utils", `
func x() -> i64 {
	return 1
}
`)
	root := writeRill(t, dir, "main", `
import utils as u

struct Point {
	x: i64
}

func f(u: Point) -> i64 {
	return u.x
}

func main() -> i64 {
	return f(Point(1))
}
`)

	l := NewLoader(dir, nil, "linux")
	prog, err := l.LoadRoot(root)
	require.NoError(t, err)

	f, ok := prog.FindFunc("f")
	require.True(t, ok)
	ret, ok := f.Body.Stmts[0].(*ast.SReturn)
	require.True(t, ok)
	ma, ok := ret.Value.(*ast.EMemberAccess)
	require.True(t, ok, "expected u.x to remain a member access on local param u")
	obj, ok := ma.Obj.(*ast.EVar)
	require.True(t, ok)
	assert.Equal(t, "u", obj.Name)
	assert.Equal(t, "x", ma.Field)
}
