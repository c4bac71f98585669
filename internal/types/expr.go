package types

import (
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

// checkExpr type-checks e, returning its resolved type. targetTy is a
// hint (may be "") that lets an untyped int/float literal adapt to the
// surrounding context instead of always defaulting to i64/f64.
func (c *Checker) checkExpr(e ast.Expr, targetTy string) (string, error) {
	switch ex := e.(type) {
	case *ast.EInt:
		if IntTypes[targetTy] {
			return set(ex, targetTy), nil
		}
		return set(ex, "i64"), nil
	case *ast.EFloat:
		if FloatTypes[targetTy] {
			return set(ex, targetTy), nil
		}
		return set(ex, "f64"), nil
	case *ast.EBool:
		return set(ex, "bool"), nil
	case *ast.EString:
		return set(ex, "str"), nil
	case *ast.ENone:
		return set(ex, "none"), nil
	case *ast.EVar:
		return c.checkVar(ex, targetTy)
	case *ast.EUnary:
		return c.checkUnary(ex)
	case *ast.EIs:
		return c.checkIs(ex)
	case *ast.EAs:
		return c.checkAs(ex)
	case *ast.EBinary:
		return c.checkBinary(ex)
	case *ast.ECall:
		return c.checkCall(ex)
	case *ast.EMemberAccess:
		return c.checkMemberAccess(ex)
	case *ast.EIndex:
		return c.checkIndex(ex)
	case *ast.ETuple:
		return c.checkTuple(ex, targetTy)
	case *ast.EListLit:
		return c.checkListLit(ex)
	case *ast.EDictLit:
		return c.checkDictLit(ex)
	default:
		return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Position(), "unhandled expression"))
	}
}

func set(e ast.Expr, ty string) string {
	e.SetType(ty)
	return ty
}

func (c *Checker) checkVar(ex *ast.EVar, targetTy string) (string, error) {
	if targetTy != "" && IsFnType(targetTy) {
		if sig, ok := c.funcs[ex.Name]; ok {
			fnTy := "Fn(" + strings.Join(sig.Params, ",") + ")->" + sig.Ret
			if fnTy != targetTy {
				return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos,
					"function %q has type %s, expected %s", ex.Name, fnTy, targetTy))
			}
			return set(ex, fnTy), nil
		}
	}
	vi, err := c.lookup(ex.Name, ex.Pos)
	if err != nil {
		return "", err
	}
	return set(ex, vi.Ty), nil
}

func (c *Checker) checkUnary(ex *ast.EUnary) (string, error) {
	rhsTy, err := c.checkExpr(ex.Rhs, "")
	if err != nil {
		return "", err
	}
	switch ex.Op {
	case "-":
		if !isNum(c.resolveEnumTy(rhsTy)) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "unary '-' requires numeric, got %s", rhsTy))
		}
		return set(ex, rhsTy), nil
	case "not":
		if !c.isTruthyType(rhsTy) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "'not' requires bool, integer, or reference type, got %s", rhsTy))
		}
		return set(ex, "bool"), nil
	default:
		return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "unknown unary operator %q", ex.Op))
	}
}

func isNum(t string) bool { return IntTypes[t] || FloatTypes[t] }

func (c *Checker) checkIs(ex *ast.EIs) (string, error) {
	if _, err := c.checkExpr(ex.Lhs, ""); err != nil {
		return "", err
	}
	if ex.TyName == "none" {
		return set(ex, "bool"), nil
	}
	if !c.isKnown(ex.TyName) {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, ex.Pos, "'is' right-hand side must be a type name, got %q", ex.TyName))
	}
	return set(ex, "bool"), nil
}

func (c *Checker) checkAs(ex *ast.EAs) (string, error) {
	lhsTy, err := c.checkExpr(ex.Lhs, "")
	if err != nil {
		return "", err
	}
	if !c.isKnown(ex.ClsName) {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, ex.Pos, "'as' target must be a type name, got %q", ex.ClsName))
	}
	if c.interfaces[lhsTy] == nil {
		return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "'as' requires an interface type on the left, got %q", lhsTy))
	}
	if c.classes[ex.ClsName] == nil {
		return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "'as' target must be a class type, got %q", ex.ClsName))
	}
	if !c.implements[ex.ClsName][lhsTy] {
		return "", errors.WrapReport(errors.New("types", errors.TYP003, ex.Pos, "class %q does not implement interface %q", ex.ClsName, lhsTy))
	}
	ex.IfaceTy = lhsTy
	return set(ex, ex.ClsName), nil
}

func (c *Checker) checkBinary(ex *ast.EBinary) (string, error) {
	a, err := c.checkExpr(ex.Lhs, "")
	if err != nil {
		return "", err
	}

	rhsKind := literalKindOf(ex.Rhs)
	var b string
	if (IntTypes[a] && rhsKind == litInt) || (FloatTypes[a] && rhsKind == litFloat) {
		b, err = c.checkExpr(ex.Rhs, a)
	} else {
		b, err = c.checkExpr(ex.Rhs, "")
	}
	if err != nil {
		return "", err
	}

	lhsKind := literalKindOf(ex.Lhs)
	if IntTypes[b] && a == "i64" && b != "i64" && lhsKind == litInt {
		a, err = c.checkExpr(ex.Lhs, b)
		if err != nil {
			return "", err
		}
	} else if FloatTypes[b] && a == "f64" && b != "f64" && lhsKind == litFloat {
		a, err = c.checkExpr(ex.Lhs, b)
		if err != nil {
			return "", err
		}
	}

	op := ex.Op
	ra, rb := c.resolveEnumTy(a), c.resolveEnumTy(b)

	switch op {
	case "+", "-", "*", "/", "%":
		if op == "+" && a == "str" && b == "str" {
			return set(ex, "str"), nil
		}
		if !isNum(ra) || !isNum(rb) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "operator %q requires numeric operands, got %s and %s", op, a, b))
		}
		if ra != rb {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "operator %q requires same numeric type, got %s and %s", op, a, b))
		}
		return set(ex, a), nil
	case "&", "|", "^", "<<", ">>":
		if !IntTypes[ra] || !IntTypes[rb] {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "operator %q requires integer operands, got %s and %s", op, a, b))
		}
		if ra != rb {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "operator %q requires same integer type, got %s and %s", op, a, b))
		}
		return set(ex, a), nil
	case "<", "<=", ">", ">=":
		if !isNum(ra) || !isNum(rb) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "comparison %q requires numeric operands, got %s and %s", op, a, b))
		}
		if ra != rb {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "comparison %q requires same numeric type, got %s and %s", op, a, b))
		}
		return set(ex, "bool"), nil
	case "==", "!=":
		if a == "none" && c.isRefType(b) {
			return set(ex, "bool"), nil
		}
		if b == "none" && c.isRefType(a) {
			return set(ex, "bool"), nil
		}
		if ra != rb {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "equality %q requires same types, got %s and %s", op, a, b))
		}
		return set(ex, "bool"), nil
	case "and", "or":
		if !c.isTruthyType(a) || !c.isTruthyType(b) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "%q requires bool, integer, or reference operands, got %s and %s", op, a, b))
		}
		return set(ex, "bool"), nil
	default:
		return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "unknown binary operator %q", op))
	}
}

type literalKind int

const (
	litNone literalKind = iota
	litInt
	litFloat
)

func literalKindOf(e ast.Expr) literalKind {
	switch e.(type) {
	case *ast.EInt:
		return litInt
	case *ast.EFloat:
		return litFloat
	default:
		return litNone
	}
}

func (c *Checker) checkMemberAccess(ex *ast.EMemberAccess) (string, error) {
	if v, ok := ex.Obj.(*ast.EVar); ok {
		if enum, ok := c.prog.FindEnum(v.Name); ok {
			found := false
			for _, variant := range enum.Variants {
				if variant.Name == ex.Field {
					found = true
					break
				}
			}
			if !found {
				return "", errors.WrapReport(errors.New("types", errors.TYP002, ex.Pos, "enum %q has no variant %q", enum.Name, ex.Field))
			}
			return set(ex, enum.Name), nil
		}
	}
	objTy, err := c.checkExpr(ex.Obj, "")
	if err != nil {
		return "", err
	}
	if c.interfaces[objTy] != nil {
		return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "cannot access fields on interface type %q", objTy))
	}
	if si, ok := c.structs[objTy]; ok {
		fty, ok := si.Fields[ex.Field]
		if !ok {
			return "", errors.WrapReport(errors.New("types", errors.TYP002, ex.Pos, "struct %q has no field %q", objTy, ex.Field))
		}
		return set(ex, fty), nil
	}
	ci, ok := c.classes[objTy]
	if !ok {
		return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "member access on non-class type %q", objTy))
	}
	fty, ok := ci.Fields[ex.Field]
	if !ok {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, ex.Pos, "class %q has no field %q", objTy, ex.Field))
	}
	return set(ex, fty), nil
}

func (c *Checker) checkIndex(ex *ast.EIndex) (string, error) {
	objTy, err := c.checkExpr(ex.Obj, "")
	if err != nil {
		return "", err
	}
	idxTy, err := c.checkExpr(ex.Index, "")
	if err != nil {
		return "", err
	}
	switch {
	case IsListType(objTy):
		if idxTy != "i64" {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "list index must be i64, got %s", idxTy))
		}
		return set(ex, ListElemType(objTy)), nil
	case IsDictType(objTy):
		key := DictKeyType(objTy)
		if idxTy != key {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "dict key must be %s, got %s", key, idxTy))
		}
		return set(ex, DictValType(objTy)), nil
	case objTy == "str":
		if idxTy != "i64" {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "string index must be i64, got %s", idxTy))
		}
		return set(ex, "i64"), nil
	default:
		return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos, "type %q does not support subscript []", objTy))
	}
}

func (c *Checker) checkTuple(ex *ast.ETuple, targetTy string) (string, error) {
	var targetElems []string
	if targetTy != "" && IsTupleType(targetTy) {
		targetElems = TupleElemTypes(targetTy)
		if len(targetElems) != len(ex.Elems) {
			return "", errors.WrapReport(errors.New("types", errors.TYP005, ex.Pos,
				"tuple has %d elements, target type expects %d", len(ex.Elems), len(targetElems)))
		}
	}
	elemTys := make([]string, len(ex.Elems))
	for i, elem := range ex.Elems {
		hint := ""
		if targetElems != nil {
			hint = targetElems[i]
		}
		ety, err := c.checkExpr(elem, hint)
		if err != nil {
			return "", err
		}
		if targetElems != nil && !c.assignable(ety, targetElems[i]) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, elem.Position(),
				"tuple element %d has type %s, expected %s", i, ety, targetElems[i]))
		}
		elemTys[i] = ety
	}
	if targetElems != nil {
		return set(ex, targetTy), nil
	}
	return set(ex, "("+strings.Join(elemTys, ",")+")"), nil
}

func (c *Checker) checkListLit(ex *ast.EListLit) (string, error) {
	tp := ex.ElemType
	if !c.isKnown(tp) {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, ex.Pos, "unknown type parameter %q in List[%s]", tp, tp))
	}
	for i, elem := range ex.Elems {
		ety, err := c.checkExpr(elem, tp)
		if err != nil {
			return "", err
		}
		if !c.assignable(ety, tp) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, elem.Position(),
				"list literal element %d has type %s, expected %s", i+1, ety, tp))
		}
	}
	return set(ex, "List["+tp+"]"), nil
}

func (c *Checker) checkDictLit(ex *ast.EDictLit) (string, error) {
	ktp, tp := ex.KeyType, ex.ValType
	if !c.isKnown(ktp) {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, ex.Pos, "unknown key type %q in Dict[%s,%s]", ktp, ktp, tp))
	}
	if !c.isKnown(tp) {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, ex.Pos, "unknown value type %q in Dict[%s,%s]", tp, ktp, tp))
	}
	if !hashableBase[ktp] && !c.isEnumType(ktp) {
		return "", errors.WrapReport(errors.New("types", errors.TYP001, ex.Pos,
			"type %q cannot be used as dict key (allowed: integers, str, bool, enums)", ktp))
	}
	for i, key := range ex.Keys {
		kty, err := c.checkExpr(key, ktp)
		if err != nil {
			return "", err
		}
		if kty != ktp {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, key.Position(), "dict literal key %d must be %s, got %s", i+1, ktp, kty))
		}
	}
	for i, val := range ex.Vals {
		vty, err := c.checkExpr(val, tp)
		if err != nil {
			return "", err
		}
		if !c.assignable(vty, tp) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, val.Position(), "dict literal value %d has type %s, expected %s", i+1, vty, tp))
		}
	}
	return set(ex, "Dict["+ktp+","+tp+"]"), nil
}
