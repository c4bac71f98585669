package ast

// EInt is an integer literal. Its default type is i64 unless a target
// type hint during checking says otherwise (internal/types).
type EInt struct {
	typed
	Value int64
	Pos   Pos
}

func (e *EInt) Position() Pos { return e.Pos }
func (e *EInt) exprNode()     {}

// EFloat is a floating literal, defaulting to f64.
type EFloat struct {
	typed
	Value float64
	Pos   Pos
}

func (e *EFloat) Position() Pos { return e.Pos }
func (e *EFloat) exprNode()     {}

// EBool is a boolean literal.
type EBool struct {
	typed
	Value bool
	Pos   Pos
}

func (e *EBool) Position() Pos { return e.Pos }
func (e *EBool) exprNode()     {}

// EString is a string literal. Distinct literals with identical contents
// are interned to a single static C string by codegen.
type EString struct {
	typed
	Value string
	Pos   Pos
}

func (e *EString) Position() Pos { return e.Pos }
func (e *EString) exprNode()     {}

// ENone is the `none` literal, assignable to any reference type.
type ENone struct {
	typed
	Pos Pos
}

func (e *ENone) Position() Pos { return e.Pos }
func (e *ENone) exprNode()     {}

// EVar is a bare identifier reference (local, parameter, global, or a
// mangled `alias__name` after import resolution).
type EVar struct {
	typed
	Name string
	Pos  Pos
}

func (e *EVar) Position() Pos { return e.Pos }
func (e *EVar) exprNode()     {}

// EUnary is a prefix operator: "-", "not".
type EUnary struct {
	typed
	Op   string
	Rhs  Expr
	Pos  Pos
}

func (e *EUnary) Position() Pos { return e.Pos }
func (e *EUnary) exprNode()     {}

// EBinary is an infix operator, including "and"/"or" (short-circuit).
type EBinary struct {
	typed
	Op  string
	Lhs Expr
	Rhs Expr
	Pos Pos
}

func (e *EBinary) Position() Pos { return e.Pos }
func (e *EBinary) exprNode()     {}

// ECall is a function call, optionally with an explicit type argument for
// a generic function or container builtin, e.g. `id[i64](5)`.
type ECall struct {
	typed
	Callee    Expr
	TypeParam string // explicit type argument, empty if omitted/inferred
	Args      []Expr
	Pos       Pos
}

func (e *ECall) Position() Pos { return e.Pos }
func (e *ECall) exprNode()     {}

// EMemberAccess is `obj.field` — pointer-arrow semantics on a class,
// value semantics on a struct; illegal on an interface (checked).
type EMemberAccess struct {
	typed
	Obj   Expr
	Field string
	Pos   Pos
}

func (e *EMemberAccess) Position() Pos { return e.Pos }
func (e *EMemberAccess) exprNode()     {}

// EIndex is `obj[index]` — list/dict/string subscript.
type EIndex struct {
	typed
	Obj   Expr
	Index Expr
	Pos   Pos
}

func (e *EIndex) Position() Pos { return e.Pos }
func (e *EIndex) exprNode()     {}

// EIs is `expr is T` (or `expr is None`, sugar for a null check).
type EIs struct {
	typed
	Lhs    Expr
	TyName string
	Pos    Pos
}

func (e *EIs) Position() Pos { return e.Pos }
func (e *EIs) exprNode()     {}

// EAs is `expr as C` — interface-to-class downcast. IfaceTy is recorded
// by the checker for codegen's runtime downcast helper.
type EAs struct {
	typed
	Lhs     Expr
	ClsName string
	IfaceTy string
	Pos     Pos
}

func (e *EAs) Position() Pos { return e.Pos }
func (e *EAs) exprNode()     {}

// ETuple is a tuple literal `(e1, e2, ...)`, arity >= 2.
type ETuple struct {
	typed
	Elems []Expr
	Pos   Pos
}

func (e *ETuple) Position() Pos { return e.Pos }
func (e *ETuple) exprNode()     {}

// EListLit is `List[T]() {e1, e2, ...}`. ElemType is substituted during
// monomorphization.
type EListLit struct {
	typed
	ElemType string
	Elems    []Expr
	Pos      Pos
}

func (e *EListLit) Position() Pos { return e.Pos }
func (e *EListLit) exprNode()     {}

// EDictLit is `Dict[K,V]() {k1: v1, ...}`.
type EDictLit struct {
	typed
	KeyType string
	ValType string
	Keys    []Expr
	Vals    []Expr
	Pos     Pos
}

func (e *EDictLit) Position() Pos { return e.Pos }
func (e *EDictLit) exprNode()     {}
