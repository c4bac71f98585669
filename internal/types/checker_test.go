package types

import (
	"testing"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
	"github.com/rill-lang/rillc/internal/frontend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	pp := frontend.DefaultPreprocessor{}
	processed, err := pp.Process(src, "test.rill", nil)
	require.NoError(t, err)
	lex := frontend.DefaultLexer{}
	toks, err := lex.Tokenize(processed, "test.rill")
	require.NoError(t, err)
	p := frontend.DefaultParser{}
	prog, err := p.Parse(toks)
	require.NoError(t, err)
	return prog
}

func TestCheckSimpleFunction(t *testing.T) {
	prog := parseProgram(t, `
func add(a: i64, b: i64) -> i64 {
	return a + b
}

func main() -> i64 {
	let x: i64 = add(2, 3)
	return x
}
`)
	require.NoError(t, Check(prog))
	mainFn, ok := prog.FindFunc("main")
	require.True(t, ok)
	decl := mainFn.Body.Stmts[0].(*ast.SVarDecl)
	assert.Equal(t, "i64", decl.Value.Type())
}

func TestCheckRejectsTypeMismatch(t *testing.T) {
	prog := parseProgram(t, `
func main() -> i64 {
	let x: i64 = true
	return x
}
`)
	err := Check(prog)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.TYP001, rep.Code)
}

func TestCheckRejectsCircularClassReference(t *testing.T) {
	prog := parseProgram(t, `
class A {
	b: B
}

class B {
	a: A
}

func main() -> void {
	return
}
`)
	err := Check(prog)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.CYC001, rep.Code)
}

func TestCheckAllowsSelfReferencingClass(t *testing.T) {
	prog := parseProgram(t, `
class Node {
	value: i64
	next: Node
}

func main() -> void {
	return
}
`)
	require.NoError(t, Check(prog))
}

func TestCheckRejectsRecursiveStruct(t *testing.T) {
	prog := parseProgram(t, `
struct Inner {
	x: i64
}

struct Outer {
	inner: Outer
}

func main() -> void {
	return
}
`)
	err := Check(prog)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.CYC002, rep.Code)
}

func TestCheckMonomorphizesGenericFunction(t *testing.T) {
	prog := parseProgram(t, `
func identity[T](x: T) -> T {
	return x
}

func main() -> i64 {
	let a: i64 = identity(42)
	let b: bool = identity(true)
	return a
}
`)
	require.NoError(t, Check(prog))
	_, ok := prog.FindFunc("identity_I64")
	require.True(t, ok)
	_, ok = prog.FindFunc("identity_BOOL")
	require.True(t, ok)
}

func TestCheckClassMustImplementInterfaceMethods(t *testing.T) {
	prog := parseProgram(t, `
interface Shape {
	func area(self) -> f64
}

class Square implements Shape {
	side: f64

	func init(self, side: f64) -> void {
		self.side = side
	}
}

func main() -> void {
	return
}
`)
	err := Check(prog)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.TYP003, rep.Code)
}

func TestCheckDictRejectsNonHashableKey(t *testing.T) {
	prog := parseProgram(t, `
class Box {
	v: i64
}

func main() -> void {
	let d: Dict[Box,i64] = Dict[Box,i64]()
	return
}
`)
	err := Check(prog)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.TYP001, rep.Code)
}

func TestCheckEnumResolvesToI64(t *testing.T) {
	prog := parseProgram(t, `
enum Color {
	Red
	Green
	Blue
}

func main() -> i64 {
	let c: Color = Color.Red
	let n: i64 = c
	return n
}
`)
	require.NoError(t, Check(prog))
}
