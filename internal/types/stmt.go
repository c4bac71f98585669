package types

import (
	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

func (c *Checker) checkStmt(st ast.Stmt) error {
	switch s := st.(type) {
	case *ast.SVarDecl:
		return c.checkVarDecl(s)
	case *ast.STupleDestructure:
		return c.checkTupleDestructure(s)
	case *ast.SAssign:
		vi, err := c.lookup(s.Name, s.Pos)
		if err != nil {
			return err
		}
		rhsTy, err := c.checkExpr(s.Value, vi.Ty)
		if err != nil {
			return err
		}
		if !c.assignable(rhsTy, vi.Ty) {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos,
				"cannot assign %s to %q of type %s", rhsTy, s.Name, vi.Ty))
		}
		return nil
	case *ast.SMemberAssign:
		return c.checkMemberAssign(s)
	case *ast.SIndexAssign:
		return c.checkIndexAssign(s)
	case *ast.SExpr:
		_, err := c.checkExpr(s.Value, "")
		return err
	case *ast.SReturn:
		return c.checkReturn(s)
	case *ast.SBreak:
		if c.loop <= 0 {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "break not inside loop"))
		}
		return nil
	case *ast.SContinue:
		if c.loop <= 0 {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "continue not inside loop"))
		}
		return nil
	case *ast.SWhile:
		return c.checkWhile(s)
	case *ast.SFor:
		return c.checkFor(s)
	case *ast.SIf:
		return c.checkIf(s)
	case *ast.SBlock:
		c.pushScope()
		defer c.popScope()
		for _, s2 := range s.Block.Stmts {
			if err := c.checkStmt(s2); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.WrapReport(errors.New("types", errors.TYP001, st.Position(), "unhandled statement"))
	}
}

func (c *Checker) checkVarDecl(s *ast.SVarDecl) error {
	hint := ""
	if s.Ty != nil {
		hint = s.Ty.Name
	}
	valTy, err := c.checkExpr(s.Value, hint)
	if err != nil {
		return err
	}
	if s.Ty == nil {
		if valTy == "none" {
			return errors.WrapReport(errors.New("types", errors.TYP002, s.Pos, "cannot infer type from 'none' in := declaration"))
		}
		if valTy == "void" {
			return errors.WrapReport(errors.New("types", errors.TYP002, s.Pos, "cannot infer type from void expression in := declaration"))
		}
		s.Ty = &ast.TypeRef{Name: valTy, Pos: s.Pos}
	} else {
		if err := c.requireKnown(s.Pos, s.Ty.Name); err != nil {
			return err
		}
		if !c.assignable(valTy, s.Ty.Name) {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos,
				"cannot assign value of type %s to variable %q of type %s", valTy, s.Name, s.Ty.Name))
		}
	}
	return c.declare(s.Name, s.Ty.Name, s.Pos)
}

func (c *Checker) checkTupleDestructure(s *ast.STupleDestructure) error {
	valTy, err := c.checkExpr(s.Value, "")
	if err != nil {
		return err
	}
	if !IsTupleType(valTy) {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "cannot destructure non-tuple type %q", valTy))
	}
	elemTys := TupleElemTypes(valTy)
	if len(elemTys) != len(s.Names) {
		return errors.WrapReport(errors.New("types", errors.TYP005, s.Pos,
			"tuple has %d elements, but %d names given", len(elemTys), len(s.Names)))
	}
	for i, name := range s.Names {
		if err := c.declare(name, elemTys[i], s.Pos); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkMemberAssign(s *ast.SMemberAssign) error {
	objTy, err := c.checkExpr(s.Obj, "")
	if err != nil {
		return err
	}
	if c.interfaces[objTy] != nil {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "cannot assign fields on interface type %q", objTy))
	}
	var fieldTy string
	if si, ok := c.structs[objTy]; ok {
		fieldTy, ok = si.Fields[s.Field]
		if !ok {
			return errors.WrapReport(errors.New("types", errors.TYP002, s.Pos, "struct %q has no field %q", objTy, s.Field))
		}
	} else if ci, ok := c.classes[objTy]; ok {
		fieldTy, ok = ci.Fields[s.Field]
		if !ok {
			return errors.WrapReport(errors.New("types", errors.TYP002, s.Pos, "class %q has no field %q", objTy, s.Field))
		}
	} else {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "member assignment on non-class type %q", objTy))
	}
	rhsTy, err := c.checkExpr(s.Value, fieldTy)
	if err != nil {
		return err
	}
	if !c.assignable(rhsTy, fieldTy) {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos,
			"cannot assign %s to field %q of type %s", rhsTy, s.Field, fieldTy))
	}
	return nil
}

func (c *Checker) checkIndexAssign(s *ast.SIndexAssign) error {
	objTy, err := c.checkExpr(s.Obj, "")
	if err != nil {
		return err
	}
	idxTy, err := c.checkExpr(s.Index, "")
	if err != nil {
		return err
	}
	switch {
	case IsListType(objTy):
		if idxTy != "i64" {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "list index must be i64, got %s", idxTy))
		}
		elem := ListElemType(objTy)
		rhsTy, err := c.checkExpr(s.Value, elem)
		if err != nil {
			return err
		}
		if !c.assignable(rhsTy, elem) {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "cannot assign %s to list element of type %s", rhsTy, elem))
		}
		return nil
	case IsDictType(objTy):
		key := DictKeyType(objTy)
		if idxTy != key {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "dict key must be %s, got %s", key, idxTy))
		}
		val := DictValType(objTy)
		rhsTy, err := c.checkExpr(s.Value, val)
		if err != nil {
			return err
		}
		if !c.assignable(rhsTy, val) {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "cannot assign %s to dict value of type %s", rhsTy, val))
		}
		return nil
	default:
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "type %q does not support subscript assignment []", objTy))
	}
}

func (c *Checker) checkReturn(s *ast.SReturn) error {
	if c.curRet == "" {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "return not allowed at top level"))
	}
	if s.Value == nil {
		if c.curRet != "void" {
			return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "return requires a value of type %s", c.curRet))
		}
		return nil
	}
	if c.curRet == "void" {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "void function must not return a value"))
	}
	vty, err := c.checkExpr(s.Value, c.curRet)
	if err != nil {
		return err
	}
	if !c.assignable(vty, c.curRet) {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "return type mismatch: expected %s, got %s", c.curRet, vty))
	}
	return nil
}

func (c *Checker) checkWhile(s *ast.SWhile) error {
	cty, err := c.checkExpr(s.Cond, "")
	if err != nil {
		return err
	}
	if !c.isTruthyType(cty) {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "while condition must be bool, integer, or reference type, got %s", cty))
	}
	c.loop++
	c.pushScope()
	for _, s2 := range s.Body.Stmts {
		if err := c.checkStmt(s2); err != nil {
			c.popScope()
			c.loop--
			return err
		}
	}
	c.popScope()
	c.loop--
	return nil
}

func (c *Checker) checkFor(s *ast.SFor) error {
	if err := c.requireKnown(s.Pos, s.VarTy.Name); err != nil {
		return err
	}
	iterTy, err := c.checkExpr(s.Iter, "")
	if err != nil {
		return err
	}
	if !IsListType(iterTy) {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos, "for-in requires a list type, got %s", iterTy))
	}
	elemTy := ListElemType(iterTy)
	if s.VarTy.Name != elemTy {
		return errors.WrapReport(errors.New("types", errors.TYP001, s.Pos,
			"loop variable type %q does not match list element type %q", s.VarTy.Name, elemTy))
	}
	c.loop++
	c.pushScope()
	if err := c.declare(s.VarName, elemTy, s.Pos); err != nil {
		c.popScope()
		c.loop--
		return err
	}
	for _, s2 := range s.Body.Stmts {
		if err := c.checkStmt(s2); err != nil {
			c.popScope()
			c.loop--
			return err
		}
	}
	c.popScope()
	c.loop--
	return nil
}

func (c *Checker) checkIf(s *ast.SIf) error {
	for _, arm := range s.Arms {
		if arm.Cond != nil {
			cty, err := c.checkExpr(arm.Cond, "")
			if err != nil {
				return err
			}
			if !c.isTruthyType(cty) {
				return errors.WrapReport(errors.New("types", errors.TYP001, arm.Pos,
					"if/elif condition must be bool, integer, or reference type, got %s", cty))
			}
		}
		c.pushScope()
		for _, s2 := range arm.Block.Stmts {
			if err := c.checkStmt(s2); err != nil {
				c.popScope()
				return err
			}
		}
		c.popScope()
	}
	return nil
}
