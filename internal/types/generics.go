package types

import (
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

// checkGenericCall type-checks a call to a user-defined single-type-param
// generic function, instantiating (and recursively checking) the
// concrete specialization on first use.
func (c *Checker) checkGenericCall(e *ast.ECall, name string, gf *ast.FuncDecl) (string, error) {
	argTys := make([]string, len(e.Args))
	for i, arg := range e.Args {
		at, err := c.checkExpr(arg, "")
		if err != nil {
			return "", err
		}
		argTys[i] = at
	}

	concreteTp := e.TypeParam
	if concreteTp != "" {
		if !c.isKnown(concreteTp) {
			return "", errors.WrapReport(errors.New("types", errors.TYP002, e.Pos,
				"unknown type parameter %q in '%s[%s]'", concreteTp, name, concreteTp))
		}
	} else {
		tp, err := c.inferUserGenericType(gf, argTys, e.Pos)
		if err != nil {
			return "", err
		}
		concreteTp = tp
		e.TypeParam = concreteTp
	}

	sub := map[string]string{gf.TypeParams[0]: concreteTp}
	paramTys := make([]string, len(gf.Params))
	for i, p := range gf.Params {
		paramTys[i] = substTypeName(p.Ty.Name, sub)
	}
	retTy := substTypeName(gf.Ret.Name, sub)

	if len(paramTys) != len(e.Args) {
		return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos,
			"'%s' expects %d args, got %d", name, len(paramTys), len(e.Args)))
	}
	for i, pt := range paramTys {
		if !c.assignable(argTys[i], pt) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Args[i].Position(),
				"argument %d of '%s' expected %s, got %s", i+1, name, pt, argTys[i]))
		}
	}

	mangled := name + "_" + ElemTag(concreteTp)
	if !c.instances[mangled] {
		c.instances[mangled] = true
		concrete := instantiateFunc(gf, sub, mangled)
		c.funcs[mangled] = FuncSig{Params: paramTys, Ret: retTy}
		c.prog.Functions = append(c.prog.Functions, concrete)
		if err := c.checkFunc(concrete); err != nil {
			return "", err
		}
	}

	return set(e, retTy), nil
}

// inferUserGenericType recovers the concrete type argument from the
// shape of the call's argument types when the caller omitted `[T]`.
func (c *Checker) inferUserGenericType(gf *ast.FuncDecl, argTys []string, pos ast.Pos) (string, error) {
	tpName := gf.TypeParams[0]
	for i, p := range gf.Params {
		if i >= len(argTys) {
			break
		}
		pt, at := p.Ty.Name, argTys[i]
		if pt == tpName {
			return at, nil
		}
		if IsListType(pt) && ListElemType(pt) == tpName && IsListType(at) {
			return ListElemType(at), nil
		}
		if IsDictType(pt) && IsDictType(at) {
			if DictValType(pt) == tpName {
				return DictValType(at), nil
			}
		}
	}
	return "", errors.WrapReport(errors.New("types", errors.TYP002, pos,
		"cannot infer type parameter %q for generic function %q", tpName, gf.Name))
}

// substTypeName substitutes type-parameter names inside a structural type
// string, recursing into List/Dict/tuple shapes.
func substTypeName(name string, sub map[string]string) string {
	if s, ok := sub[name]; ok {
		return s
	}
	if IsListType(name) {
		return "List[" + substTypeName(ListElemType(name), sub) + "]"
	}
	if IsDictType(name) {
		k, v := splitDictInner(name[5 : len(name)-1])
		return "Dict[" + substTypeName(k, sub) + "," + substTypeName(v, sub) + "]"
	}
	if IsTupleType(name) {
		elems := TupleElemTypes(name)
		subbed := make([]string, len(elems))
		for i, el := range elems {
			subbed[i] = substTypeName(el, sub)
		}
		return "(" + strings.Join(subbed, ",") + ")"
	}
	return name
}

// instantiateFunc deep-copies a generic template, substituting the type
// parameter throughout its signature and body to produce one concrete,
// monomorphized function.
func instantiateFunc(gf *ast.FuncDecl, sub map[string]string, mangledName string) *ast.FuncDecl {
	concrete := &ast.FuncDecl{
		Name: mangledName,
		Pos:  gf.Pos,
	}
	concrete.Params = make([]*ast.Param, len(gf.Params))
	for i, p := range gf.Params {
		concrete.Params[i] = &ast.Param{Name: p.Name, Pos: p.Pos, Ty: ast.TypeRef{Name: substTypeName(p.Ty.Name, sub), Pos: p.Ty.Pos}}
	}
	concrete.Ret = ast.TypeRef{Name: substTypeName(gf.Ret.Name, sub), Pos: gf.Ret.Pos}
	concrete.Body = substBlock(gf.Body, sub)
	return concrete
}

func substBlock(b *ast.Block, sub map[string]string) *ast.Block {
	if b == nil {
		return nil
	}
	out := &ast.Block{Pos: b.Pos, Stmts: make([]ast.Stmt, len(b.Stmts))}
	for i, st := range b.Stmts {
		out.Stmts[i] = substStmt(st, sub)
	}
	return out
}

func substStmt(st ast.Stmt, sub map[string]string) ast.Stmt {
	switch s := st.(type) {
	case *ast.SVarDecl:
		var ty *ast.TypeRef
		if s.Ty != nil {
			ty = &ast.TypeRef{Name: substTypeName(s.Ty.Name, sub), Pos: s.Ty.Pos}
		}
		return &ast.SVarDecl{Name: s.Name, Ty: ty, Value: substExpr(s.Value, sub), Pos: s.Pos}
	case *ast.STupleDestructure:
		return &ast.STupleDestructure{Names: s.Names, Value: substExpr(s.Value, sub), Pos: s.Pos}
	case *ast.SAssign:
		return &ast.SAssign{Name: s.Name, Value: substExpr(s.Value, sub), Pos: s.Pos}
	case *ast.SMemberAssign:
		return &ast.SMemberAssign{Obj: substExpr(s.Obj, sub), Field: s.Field, Value: substExpr(s.Value, sub), Pos: s.Pos}
	case *ast.SIndexAssign:
		return &ast.SIndexAssign{Obj: substExpr(s.Obj, sub), Index: substExpr(s.Index, sub), Value: substExpr(s.Value, sub), Pos: s.Pos}
	case *ast.SExpr:
		return &ast.SExpr{Value: substExpr(s.Value, sub), Pos: s.Pos}
	case *ast.SReturn:
		var v ast.Expr
		if s.Value != nil {
			v = substExpr(s.Value, sub)
		}
		return &ast.SReturn{Value: v, Pos: s.Pos}
	case *ast.SBreak:
		return s
	case *ast.SContinue:
		return s
	case *ast.SIf:
		arms := make([]*ast.IfArm, len(s.Arms))
		for i, arm := range s.Arms {
			var cond ast.Expr
			if arm.Cond != nil {
				cond = substExpr(arm.Cond, sub)
			}
			arms[i] = &ast.IfArm{Cond: cond, Block: substBlock(arm.Block, sub), Pos: arm.Pos}
		}
		return &ast.SIf{Arms: arms, Pos: s.Pos}
	case *ast.SWhile:
		return &ast.SWhile{Cond: substExpr(s.Cond, sub), Body: substBlock(s.Body, sub), Pos: s.Pos}
	case *ast.SFor:
		return &ast.SFor{
			VarName: s.VarName,
			VarTy:   ast.TypeRef{Name: substTypeName(s.VarTy.Name, sub), Pos: s.VarTy.Pos},
			Iter:    substExpr(s.Iter, sub),
			Body:    substBlock(s.Body, sub),
			Pos:     s.Pos,
		}
	case *ast.SBlock:
		return &ast.SBlock{Block: substBlock(s.Block, sub), Pos: s.Pos}
	default:
		return st
	}
}

func substExpr(e ast.Expr, sub map[string]string) ast.Expr {
	switch ex := e.(type) {
	case *ast.ECall:
		tp := ex.TypeParam
		if s, ok := sub[tp]; ok {
			tp = s
		}
		args := make([]ast.Expr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = substExpr(a, sub)
		}
		return &ast.ECall{Callee: substExpr(ex.Callee, sub), TypeParam: tp, Args: args, Pos: ex.Pos}
	case *ast.ETuple:
		elems := make([]ast.Expr, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = substExpr(el, sub)
		}
		return &ast.ETuple{Elems: elems, Pos: ex.Pos}
	case *ast.EBinary:
		return &ast.EBinary{Op: ex.Op, Lhs: substExpr(ex.Lhs, sub), Rhs: substExpr(ex.Rhs, sub), Pos: ex.Pos}
	case *ast.EUnary:
		return &ast.EUnary{Op: ex.Op, Rhs: substExpr(ex.Rhs, sub), Pos: ex.Pos}
	case *ast.EMemberAccess:
		return &ast.EMemberAccess{Obj: substExpr(ex.Obj, sub), Field: ex.Field, Pos: ex.Pos}
	case *ast.EIndex:
		return &ast.EIndex{Obj: substExpr(ex.Obj, sub), Index: substExpr(ex.Index, sub), Pos: ex.Pos}
	case *ast.EIs:
		tn := ex.TyName
		if s, ok := sub[tn]; ok {
			tn = s
		}
		return &ast.EIs{Lhs: substExpr(ex.Lhs, sub), TyName: tn, Pos: ex.Pos}
	case *ast.EAs:
		return &ast.EAs{Lhs: substExpr(ex.Lhs, sub), ClsName: ex.ClsName, Pos: ex.Pos}
	case *ast.EListLit:
		elemTy := ex.ElemType
		if s, ok := sub[elemTy]; ok {
			elemTy = s
		}
		elems := make([]ast.Expr, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = substExpr(el, sub)
		}
		return &ast.EListLit{ElemType: elemTy, Elems: elems, Pos: ex.Pos}
	case *ast.EDictLit:
		keyTy, valTy := ex.KeyType, ex.ValType
		if s, ok := sub[keyTy]; ok {
			keyTy = s
		}
		if s, ok := sub[valTy]; ok {
			valTy = s
		}
		keys := make([]ast.Expr, len(ex.Keys))
		for i, k := range ex.Keys {
			keys[i] = substExpr(k, sub)
		}
		vals := make([]ast.Expr, len(ex.Vals))
		for i, v := range ex.Vals {
			vals[i] = substExpr(v, sub)
		}
		return &ast.EDictLit{KeyType: keyTy, ValType: valTy, Keys: keys, Vals: vals, Pos: ex.Pos}
	default:
		return e
	}
}
