package types

import (
	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

func (c *Checker) pushScope() {
	c.scopes = append(c.scopes, map[string]VarInfo{})
}

func (c *Checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Checker) declare(name, ty string, pos ast.Pos) error {
	top := c.scopes[len(c.scopes)-1]
	if _, dup := top[name]; dup {
		return errors.WrapReport(errors.New("types", errors.TYP004, pos, "variable %q already declared in this scope", name))
	}
	top[name] = VarInfo{Ty: ty}
	return nil
}

func (c *Checker) lookup(name string, pos ast.Pos) (VarInfo, error) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if vi, ok := c.scopes[i][name]; ok {
			return vi, nil
		}
	}
	return VarInfo{}, errors.WrapReport(errors.New("types", errors.TYP002, pos, "undefined variable %q", name))
}

func (c *Checker) checkFunc(f *ast.FuncDecl) error {
	c.pushScope()
	defer c.popScope()
	c.curRet = f.Ret.Name
	c.loop = 0
	for _, p := range f.Params {
		if err := c.declare(p.Name, p.Ty.Name, p.Pos); err != nil {
			return err
		}
	}
	if f.Body == nil {
		return nil
	}
	for _, st := range f.Body.Stmts {
		if err := c.checkStmt(st); err != nil {
			return err
		}
	}
	return nil
}

// checkMethod checks a class or struct method body. Exactly one of
// className/structName is non-empty.
func (c *Checker) checkMethod(className, structName string, m *ast.FuncDecl) error {
	c.pushScope()
	defer c.popScope()
	c.curRet = m.Ret.Name
	c.loop = 0
	selfTy := className
	if selfTy == "" {
		selfTy = structName
	}
	if err := c.declare("self", selfTy, m.Params[0].Pos); err != nil {
		return err
	}
	for _, p := range m.Params[1:] {
		if err := c.declare(p.Name, p.Ty.Name, p.Pos); err != nil {
			return err
		}
	}
	for _, st := range m.Body.Stmts {
		if err := c.checkStmt(st); err != nil {
			return err
		}
	}
	return nil
}
