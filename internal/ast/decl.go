package ast

// Param is a function or method parameter.
type Param struct {
	Name string
	Ty   TypeRef
	Pos  Pos
}

// TypeRef is a resolved-or-unresolved structural type name, e.g. "i64",
// "List[str]", "(i64,str)", "Fn(i64,i64)->i64", or a nominal class/struct/
// interface/enum/extern name. See internal/types for the parser that
// decomposes the structural sub-language back into a Type.
type TypeRef struct {
	Name string
	Pos  Pos
}

// FuncDecl is a top-level or generic function declaration. TypeParams has
// length 0 (non-generic) or 1 (generic — exactly one type variable is in
// scope, per spec).
type FuncDecl struct {
	Name       string
	TypeParams []string
	Params     []*Param
	Ret        TypeRef
	Body       *Block
	Pos        Pos

	// ExternCName is set when this declaration was synthesized from a
	// manifest [functions] entry; codegen calls the named C symbol
	// directly instead of the mangled Rill function name.
	ExternCName string
	// ExternDtorFor names the extern type this function destructs, empty
	// otherwise.
	ExternDtorFor string
}

func (f *FuncDecl) Position() Pos   { return f.Pos }
func (f *FuncDecl) declNode()       {}
func (f *FuncDecl) DeclName() string { return f.Name }

// FieldDecl is a class or struct field.
type FieldDecl struct {
	Name string
	Ty   TypeRef
	Pos  Pos
}

// ClassDecl is a nominal reference type. Classes may self-reference but
// multi-class reference cycles are statically rejected (internal/types).
type ClassDecl struct {
	Name       string
	Fields     []*FieldDecl
	Methods    []*FuncDecl
	Implements []string // interface names this class claims to implement
	Pos        Pos

	// Extern marks this class as an opaque native-library handle
	// synthesized from a manifest [types] entry; see Program.ExternTypes.
	Extern bool
}

func (c *ClassDecl) Position() Pos   { return c.Pos }
func (c *ClassDecl) declNode()       {}
func (c *ClassDecl) DeclName() string { return c.Name }

// StructDecl is a nominal value type. Fields must be value types and
// structs may not be recursive (internal/types enforces both).
type StructDecl struct {
	Name    string
	Fields  []*FieldDecl
	Methods []*FuncDecl
	Pos     Pos
}

func (s *StructDecl) Position() Pos   { return s.Pos }
func (s *StructDecl) declNode()       {}
func (s *StructDecl) DeclName() string { return s.Name }

// MethodSig is one method signature declared by an interface.
type MethodSig struct {
	Name   string
	Params []*Param
	Ret    TypeRef
	Pos    Pos
}

// InterfaceDecl is a structural contract. A class is assignable to an
// interface it declares it implements via an exact signature match.
type InterfaceDecl struct {
	Name       string
	MethodSigs []*MethodSig
	Pos        Pos
}

func (i *InterfaceDecl) Position() Pos   { return i.Pos }
func (i *InterfaceDecl) declNode()       {}
func (i *InterfaceDecl) DeclName() string { return i.Name }

// EnumVariant is a single named variant with (possibly auto-assigned)
// integer value.
type EnumVariant struct {
	Name        string
	Value       *int64 // nil when not explicitly given — auto-assigned
	HasExplicit bool
	Pos         Pos
}

// EnumDecl resolves to i64 for arithmetic purposes.
type EnumDecl struct {
	Name     string
	Variants []*EnumVariant
	Pos      Pos
}

func (e *EnumDecl) Position() Pos   { return e.Pos }
func (e *EnumDecl) declNode()       {}
func (e *EnumDecl) DeclName() string { return e.Name }

// ImportDecl is `import mod as alias`.
type ImportDecl struct {
	Path  string
	Alias string
	Pos   Pos
}

func (i *ImportDecl) Position() Pos   { return i.Pos }
func (i *ImportDecl) declNode()       {}
func (i *ImportDecl) DeclName() string { return i.Alias }

// ExternDecl is `extern libname as alias`.
type ExternDecl struct {
	LibName string
	Alias   string
	Pos     Pos
}

func (e *ExternDecl) Position() Pos   { return e.Pos }
func (e *ExternDecl) declNode()       {}
func (e *ExternDecl) DeclName() string { return e.Alias }

// Block is a sequence of statements forming a lexical scope.
type Block struct {
	Stmts []Stmt
	Pos   Pos
}

func (b *Block) Position() Pos { return b.Pos }
