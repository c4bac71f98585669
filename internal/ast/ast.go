// Package ast defines the Rill abstract syntax tree: declarations,
// statements, expressions, and the structural type-name sub-language.
//
// Nodes are produced by a Parser (internal/frontend), mutated in place by
// the module resolver (internal/module) to rename identifiers, and by the
// type checker (internal/types) to attach resolved types and append
// monomorphized copies. The code generator (internal/codegen) consumes
// the tree read-only.
package ast

import "fmt"

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Line   int
	Col    int
	Offset int
	Length int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
	// Type returns the resolved type string attached by the type checker.
	// It is empty until type checking has run.
	Type() string
	SetType(string)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is implemented by every top-level declaration.
type Decl interface {
	Node
	declNode()
	DeclName() string
}

// typed is embedded in every Expr to carry the resolved type.
type typed struct {
	Ty string
}

func (t *typed) Type() string     { return t.Ty }
func (t *typed) SetType(ty string) { t.Ty = ty }

// Program is the merged, ordered declaration set the resolver produces and
// the type checker and code generator consume.
type Program struct {
	Functions     []*FuncDecl
	Classes       []*ClassDecl
	Structs       []*StructDecl
	Interfaces    []*InterfaceDecl
	Enums         []*EnumDecl
	TopLevel      []Stmt
	Imports       []*ImportDecl
	Externs       []*ExternDecl

	// ExternTypes maps a mangled extern type name to its native C type and
	// optional destructor C symbol.
	ExternTypes map[string]ExternTypeInfo
	// ExternConsts maps a mangled extern constant name to its native C
	// expression and Rill type.
	ExternConsts map[string]ExternConstInfo
	// ExternIncludes/Cflags/Ldflags accumulate across every loaded library.
	ExternIncludes []string
	ExternCflags   []string
	ExternLdflags  []string
}

// ExternTypeInfo is the side-table entry for an opaque extern handle type.
type ExternTypeInfo struct {
	CType string
	Dtor  string // empty if the library declares no destructor
}

// ExternConstInfo is the side-table entry for an extern constant.
type ExternConstInfo struct {
	CExpr string
	Type  string
}

// FindFunc returns the non-generic or monomorphized function by name.
func (p *Program) FindFunc(name string) (*FuncDecl, bool) {
	for _, f := range p.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FindClass returns the class declaration by name.
func (p *Program) FindClass(name string) (*ClassDecl, bool) {
	for _, c := range p.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// FindStruct returns the struct declaration by name.
func (p *Program) FindStruct(name string) (*StructDecl, bool) {
	for _, s := range p.Structs {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// FindInterface returns the interface declaration by name.
func (p *Program) FindInterface(name string) (*InterfaceDecl, bool) {
	for _, i := range p.Interfaces {
		if i.Name == name {
			return i, true
		}
	}
	return nil, false
}

// FindEnum returns the enum declaration by name.
func (p *Program) FindEnum(name string) (*EnumDecl, bool) {
	for _, e := range p.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}
