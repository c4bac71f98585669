package types

import (
	"testing"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElemTagRecursesIntoCompoundTypes(t *testing.T) {
	assert.Equal(t, "I64", ElemTag("i64"))
	assert.Equal(t, "List_I64", ElemTag("List[i64]"))
	assert.Equal(t, "Dict_STR_I64", ElemTag("Dict[str,i64]"))
	assert.Equal(t, "Point", ElemTag("Point"))
}

// TestCheckGenericCallWithCompoundTypeArgument verifies that explicitly
// instantiating a generic function with a compound type argument, as
// parseType allows at a call site, produces a mangled name codegen's own
// elemTag agrees with, rather than embedding the raw "List[i64]" text.
func TestCheckGenericCallWithCompoundTypeArgument(t *testing.T) {
	prog := parseProgram(t, `
func identity[T](x: T) -> T {
	return x
}

func main() -> i64 {
	let xs: List[i64] = List[i64]()
	let ys: List[i64] = identity[List[i64]](xs)
	return len(ys)
}
`)
	require.NoError(t, Check(prog))

	_, ok := prog.FindFunc("identity_List_I64")
	require.True(t, ok, "expected monomorphized instance named identity_List_I64")

	mainFn, ok := prog.FindFunc("main")
	require.True(t, ok)
	decl := mainFn.Body.Stmts[1].(*ast.SVarDecl)
	call := decl.Value.(*ast.ECall)
	assert.Equal(t, "List[i64]", call.TypeParam)
}
