package codegen

import (
	"fmt"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
	"github.com/rill-lang/rillc/internal/types"
)

func sprintf(format string, args ...any) string { return fmt.Sprintf(format, args...) }

func genErr(pos ast.Pos, format string, args ...any) error {
	return errors.WrapReport(errors.New("codegen", errors.GEN001, pos, format, args...))
}

// Thin local aliases onto internal/types's structural-type-string helpers,
// kept short since codegen calls them constantly while walking types.
func isListType(t string) bool       { return types.IsListType(t) }
func listElem(t string) string       { return types.ListElemType(t) }
func isDictType(t string) bool       { return types.IsDictType(t) }
func isFnType(t string) bool         { return types.IsFnType(t) }
func isTupleType(t string) bool      { return types.IsTupleType(t) }
func tupleElemTypes(t string) []string { return types.TupleElemTypes(t) }
func fnParamTypes(t string) []string { return types.FnParamTypes(t) }
func fnRetType(t string) string      { return types.FnRetType(t) }
