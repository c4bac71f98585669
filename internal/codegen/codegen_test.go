package codegen

import (
	"testing"

	"github.com/rill-lang/rillc/internal/frontend"
	"github.com/rill-lang/rillc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) string {
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
	require.NoError(t, types.Check(prog))
	out, err := Generate(prog, false)
	require.NoError(t, err)
	return out
}

func TestGenerateSimpleFunction(t *testing.T) {
	out := compile(t, `
func add(a: i64, b: i64) -> i64 {
	return a + b
}

func main() -> i64 {
	let x: i64 = add(2, 3)
	return x
}
`)
	assert.Contains(t, out, `#include "rt_runtime.h"`)
	assert.Contains(t, out, "static int64_t __lang_rt_fn_add(int64_t a_, int64_t b_)")
	assert.Contains(t, out, "= (a_ + b_);")
	assert.Contains(t, out, "int main(int argc, char** argv) {")
}

func TestGenerateClassRetainRelease(t *testing.T) {
	out := compile(t, `
class Counter {
	count: i64

	func init(self) {
		self.count = 0
	}

	func bump(self) -> i64 {
		self.count = self.count + 1
		return self.count
	}
}

func main() -> i64 {
	let c: Counter = Counter()
	return c.bump()
}
`)
	assert.Contains(t, out, "struct __lang_rt_Class_Counter {")
	assert.Contains(t, out, "__lang_rt_Rc rc;")
	assert.Contains(t, out, "static void __lang_rt_class_Counter_release(__lang_rt_Class_Counter* o)")
	assert.Contains(t, out, "__lang_rt_null_check(")
}

func TestGenerateStringLiteralInterning(t *testing.T) {
	out := compile(t, `
func main() -> i64 {
	let a: str = "hi"
	let b: str = "hi"
	print(a)
	print(b)
	return 0
}
`)
	assert.Equal(t, 1, countSubstr(out, `__LANG_RT_STR_LIT(`))
}

func TestGenerateListContainerInstantiation(t *testing.T) {
	out := compile(t, `
func main() -> i64 {
	let xs: List[i64] = List[i64]()
	append[i64](xs, 1)
	append[i64](xs, 2)
	return len(xs)
}
`)
	assert.Contains(t, out, "__LANG_RT_LIST_DEFINE(I64, int64_t")
	assert.Contains(t, out, "__lang_rt_list_I64_push(")
	assert.Contains(t, out, "__lang_rt_list_I64_len(")
}

func TestGenerateInterfaceDispatch(t *testing.T) {
	out := compile(t, `
interface Shape {
	func area(self) -> f64
}

class Square implements Shape {
	side: f64

	func init(self, side: f64) {
		self.side = side
	}

	func area(self) -> f64 {
		return self.side * self.side
	}
}

func main() -> i64 {
	let s: Shape = Square(2.0)
	print(s.area())
	return 0
}
`)
	assert.Contains(t, out, "__lang_rt_Vtbl_Shape")
	assert.Contains(t, out, "__lang_rt_vtbl_Square_as_Shape")
	assert.Contains(t, out, ".vtbl->area_(")
}

func TestGenerateForLoopOverList(t *testing.T) {
	out := compile(t, `
func sum(xs: List[i64]) -> i64 {
	let total: i64 = 0
	for x: i64 in xs {
		total = total + x
	}
	return total
}

func main() -> i64 {
	let xs: List[i64] = List[i64]()
	append[i64](xs, 1)
	return sum(xs)
}
`)
	assert.Contains(t, out, "for (int64_t")
}

func TestGenerateEnumVariantsAsIntegerLiterals(t *testing.T) {
	out := compile(t, `
enum Color {
	Red,
	Green,
	Blue = 10
}

func main() -> i64 {
	let c: Color = Color.Green
	return c + Color.Blue
}
`)
	assert.Contains(t, out, "= 1;")
	assert.Contains(t, out, "+ 10)")
}

func TestGenerateTupleDestructuring(t *testing.T) {
	out := compile(t, `
func pair() -> (i64, i64) {
	return (1, 2)
}

func main() -> i64 {
	a, b := pair()
	return a + b
}
`)
	assert.Contains(t, out, "} __lang_rt_Tuple_I64_I64;")
	assert.Contains(t, out, ".f0")
	assert.Contains(t, out, ".f1")
}

func TestGenerateDictLiteral(t *testing.T) {
	out := compile(t, `
func main() -> i64 {
	let d: Dict[str, i64] = Dict[str, i64]()
	return len(d)
}
`)
	assert.Contains(t, out, "__LANG_RT_DICT_DEFINE(")
	assert.Contains(t, out, "__lang_rt_dict_")
}

func TestGenerateAsDowncast(t *testing.T) {
	out := compile(t, `
interface Shape {
	func area(self) -> f64
}

class Square implements Shape {
	side: f64

	func init(self, side: f64) {
		self.side = side
	}

	func area(self) -> f64 {
		return self.side * self.side
	}
}

func main() -> i64 {
	let s: Shape = Square(2.0)
	let sq: Square = s as Square
	return i64(sq.area())
}
`)
	assert.Contains(t, out, "__lang_rt_downcast(")
}

func countSubstr(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
			i += len(sub) - 1
		}
	}
	return n
}
