package types

import (
	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

// Checker walks a resolved *ast.Program and annotates every expression
// with a resolved type, rejecting the program on the first error. It also
// owns monomorphization: generic function templates are instantiated on
// first concrete call and appended to prog.Functions.
type Checker struct {
	prog *ast.Program

	funcs      map[string]FuncSig
	genericFns map[string]*ast.FuncDecl
	instances  map[string]bool // mangled name -> already instantiated

	classes    map[string]*ClassInfo
	structs    map[string]*StructInfo
	interfaces map[string]*InterfaceInfo
	enumVals   map[string]EnumVariantInfo // variant name -> (enum, value)
	implements map[string]map[string]bool // class -> set of interfaces

	scopes []map[string]VarInfo
	curRet string
	loop   int
}

// Check type-checks prog in place, appending monomorphized function
// instances as they are discovered.
func Check(prog *ast.Program) error {
	c := &Checker{
		prog:       prog,
		funcs:      map[string]FuncSig{},
		genericFns: map[string]*ast.FuncDecl{},
		instances:  map[string]bool{},
		classes:    map[string]*ClassInfo{},
		structs:    map[string]*StructInfo{},
		interfaces: map[string]*InterfaceInfo{},
		enumVals:   map[string]EnumVariantInfo{},
		implements: map[string]map[string]bool{},
	}
	return c.check()
}

func (c *Checker) typErr(pos ast.Pos, format string, args ...any) error {
	return errors.WrapReport(errors.New("types", errors.TYP001, pos, format, args...))
}

func (c *Checker) check() error {
	if err := c.registerInterfaces(); err != nil {
		return err
	}
	if err := c.registerEnums(); err != nil {
		return err
	}
	if err := c.registerClassNames(); err != nil {
		return err
	}
	if err := c.registerStructNames(); err != nil {
		return err
	}
	if err := c.buildInterfaces(); err != nil {
		return err
	}
	if err := c.buildClasses(); err != nil {
		return err
	}
	if err := c.checkCircularClassRefs(); err != nil {
		return err
	}
	if err := c.buildStructs(); err != nil {
		return err
	}
	if err := c.checkCircularStructRefs(); err != nil {
		return err
	}
	if err := c.buildFuncTable(); err != nil {
		return err
	}

	c.pushScope()
	c.curRet = ""
	c.loop = 0
	for _, st := range c.prog.TopLevel {
		if err := c.checkStmt(st); err != nil {
			return err
		}
	}

	for _, f := range c.prog.Functions {
		if len(f.TypeParams) > 0 {
			continue
		}
		if err := c.checkFunc(f); err != nil {
			return err
		}
	}
	for _, cls := range c.prog.Classes {
		for _, m := range cls.Methods {
			if err := c.checkMethod(cls.Name, "", m); err != nil {
				return err
			}
		}
	}
	for _, st := range c.prog.Structs {
		for _, m := range st.Methods {
			if err := c.checkMethod("", st.Name, m); err != nil {
				return err
			}
		}
	}
	c.popScope()
	return nil
}

func (c *Checker) isKnown(t string) bool {
	switch {
	case KnownBaseTypes[t]:
		return true
	case c.classes[t] != nil:
		return true
	case c.structs[t] != nil:
		return true
	case c.interfaces[t] != nil:
		return true
	case c.isEnumType(t):
		return true
	case IsListType(t):
		return c.isKnown(ListElemType(t))
	case IsDictType(t):
		return c.isKnown(DictKeyType(t)) && c.isKnown(DictValType(t))
	case IsFnType(t):
		for _, pt := range FnParamTypes(t) {
			if !c.isKnown(pt) {
				return false
			}
		}
		return c.isKnown(FnRetType(t))
	case IsTupleType(t):
		for _, et := range TupleElemTypes(t) {
			if !c.isKnown(et) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (c *Checker) requireKnown(pos ast.Pos, t string) error {
	if !c.isKnown(t) {
		return errors.WrapReport(errors.New("types", errors.TYP002, pos, "unknown type %q", t))
	}
	return nil
}

func (c *Checker) isEnumType(t string) bool {
	_, ok := c.prog.FindEnum(t)
	return ok
}

// resolveEnumTy maps an enum type name to i64, its runtime representation.
func (c *Checker) resolveEnumTy(t string) string {
	if c.isEnumType(t) {
		return "i64"
	}
	return t
}

func (c *Checker) isRefType(t string) bool {
	if t == "str" {
		return true
	}
	if IsListType(t) || IsDictType(t) {
		return true
	}
	if c.classes[t] != nil {
		return true
	}
	if c.interfaces[t] != nil {
		return true
	}
	return false
}

func (c *Checker) isTruthyType(t string) bool {
	if t == "bool" {
		return true
	}
	if IntTypes[c.resolveEnumTy(t)] {
		return true
	}
	return c.isRefType(t)
}

// assignable reports whether a value of type src can be used where dst is
// expected: exact match, enum<->i64, none->any ref type, or class->an
// interface it implements.
func (c *Checker) assignable(src, dst string) bool {
	if src == dst {
		return true
	}
	if c.resolveEnumTy(src) == c.resolveEnumTy(dst) {
		return true
	}
	if src == "none" && c.isRefType(dst) {
		return true
	}
	if c.interfaces[dst] != nil && c.implements[src][dst] {
		return true
	}
	return false
}
