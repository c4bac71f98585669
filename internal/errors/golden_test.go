package errors

import (
	"testing"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/testutil"
)

func TestErrorTextGolden(t *testing.T) {
	rep := New("typecheck", TYP001, ast.Pos{File: "test.rill", Line: 3, Col: 5}, "mismatched types: expected %s, got %s", "i64", "str")
	err := WrapReport(rep)
	testutil.CompareWithGolden(t, "errors", "type_mismatch", err.Error())
}
