package frontend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rillc/internal/ast"
)

var ignorePos = cmp.Options{
	cmpopts.IgnoreFields(ast.Pos{}, "File", "Line", "Col", "Offset", "Length"),
	// Expression nodes embed the unexported typed struct; compare it too.
	cmp.AllowUnexported(ast.EBinary{}, ast.EInt{}, ast.ECall{}, ast.EVar{}, ast.EMemberAccess{}, ast.EIndex{}),
}

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	wrapped := "func main() -> i64 {\n\treturn " + src + "\n}\n"
	toks, err := (DefaultLexer{}).Tokenize(wrapped, "test.rill")
	require.NoError(t, err)
	prog, err := (DefaultParser{}).Parse(toks)
	require.NoError(t, err)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.SReturn)
	return ret.Value
}

func TestParseBinaryExprShape(t *testing.T) {
	got := parseExpr(t, "1 + 2 * 3")
	want := &ast.EBinary{
		Op:  "+",
		Lhs: &ast.EInt{Value: 1},
		Rhs: &ast.EBinary{
			Op:  "*",
			Lhs: &ast.EInt{Value: 2},
			Rhs: &ast.EInt{Value: 3},
		},
	}
	if diff := cmp.Diff(want, got, ignorePos); diff != "" {
		t.Errorf("expression shape mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCallExprShape(t *testing.T) {
	got := parseExpr(t, "add(1, 2)")
	want := &ast.ECall{
		Callee: &ast.EVar{Name: "add"},
		Args: []ast.Expr{
			&ast.EInt{Value: 1},
			&ast.EInt{Value: 2},
		},
	}
	if diff := cmp.Diff(want, got, ignorePos); diff != "" {
		t.Errorf("call shape mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMemberAndIndexShape(t *testing.T) {
	got := parseExpr(t, "xs[0].field")
	want := &ast.EMemberAccess{
		Obj: &ast.EIndex{
			Obj:   &ast.EVar{Name: "xs"},
			Index: &ast.EInt{Value: 0},
		},
		Field: "field",
	}
	if diff := cmp.Diff(want, got, ignorePos); diff != "" {
		t.Errorf("member/index shape mismatch (-want +got):\n%s", diff)
	}
}
