package types

import (
	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

// castTypes are the numeric scalar names usable as a conversion builtin,
// e.g. i32(x).
var castTypes = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true,
}

// genericContainerOp describes one built-in List/Dict operation's
// signature as a function of its concrete type argument(s).
type genericContainerOp struct {
	isDict bool
	sig    func(tp string) ([]string, string)
}

var listGenericOps = map[string]bool{"append": true, "get": true, "set": true, "pop": true, "remove": true}
var dictGenericOps = map[string]bool{"put": true, "lookup": true, "has": true}

var genericContainerOps = map[string]genericContainerOp{
	"List":   {sig: func(tp string) ([]string, string) { return nil, "List[" + tp + "]" }},
	"append": {sig: func(tp string) ([]string, string) { return []string{"List[" + tp + "]", tp}, "void" }},
	"get":    {sig: func(tp string) ([]string, string) { return []string{"List[" + tp + "]", "i64"}, tp }},
	"set":    {sig: func(tp string) ([]string, string) { return []string{"List[" + tp + "]", "i64", tp}, "void" }},
	"pop":    {sig: func(tp string) ([]string, string) { return []string{"List[" + tp + "]"}, tp }},
	"remove": {sig: func(tp string) ([]string, string) { return []string{"List[" + tp + "]", "i64"}, "void" }},
	"Dict":   {isDict: true, sig: func(tp string) ([]string, string) { return nil, "Dict[" + tp + "]" }},
	"put": {isDict: true, sig: func(tp string) ([]string, string) {
		k, v := splitDictInner(tp)
		return []string{"Dict[" + tp + "]", k, v}, "void"
	}},
	"lookup": {isDict: true, sig: func(tp string) ([]string, string) {
		k, v := splitDictInner(tp)
		return []string{"Dict[" + tp + "]", k}, v
	}},
	"has": {isDict: true, sig: func(tp string) ([]string, string) {
		k, _ := splitDictInner(tp)
		return []string{"Dict[" + tp + "]", k}, "bool"
	}},
}

func (c *Checker) checkArgs(pos ast.Pos, what string, paramTys []string, args []ast.Expr) error {
	if len(paramTys) != len(args) {
		return errors.WrapReport(errors.New("types", errors.TYP005, pos,
			"%s expects %d args, got %d", what, len(paramTys), len(args)))
	}
	for i, pt := range paramTys {
		at, err := c.checkExpr(args[i], pt)
		if err != nil {
			return err
		}
		if !c.assignable(at, pt) {
			return errors.WrapReport(errors.New("types", errors.TYP001, args[i].Position(),
				"argument %d of %s expected %s, got %s", i+1, what, pt, at))
		}
	}
	return nil
}

func (c *Checker) checkCall(e *ast.ECall) (string, error) {
	if ma, ok := e.Callee.(*ast.EMemberAccess); ok {
		return c.checkMethodCall(e, ma)
	}

	if _, ok := e.Callee.(*ast.EVar); !ok {
		calleeTy, err := c.checkExpr(e.Callee, "")
		if err != nil {
			return "", err
		}
		if !IsFnType(calleeTy) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "callee must be identifier"))
		}
		if err := c.checkArgs(e.Pos, "function pointer", FnParamTypes(calleeTy), e.Args); err != nil {
			return "", err
		}
		return set(e, FnRetType(calleeTy)), nil
	}

	name := e.Callee.(*ast.EVar).Name

	if vi, err := c.lookup(name, e.Pos); err == nil && IsFnType(vi.Ty) &&
		c.funcs[name].Ret == "" && c.genericFns[name] == nil && c.classes[name] == nil && c.interfaces[name] == nil {
		e.Callee.(*ast.EVar).SetType(vi.Ty)
		if err := c.checkArgs(e.Pos, "function pointer '"+name+"'", FnParamTypes(vi.Ty), e.Args); err != nil {
			return "", err
		}
		return set(e, FnRetType(vi.Ty)), nil
	}

	if castTypes[name] {
		if len(e.Args) != 1 {
			return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos, "%s() expects 1 argument", name))
		}
		aty, err := c.checkExpr(e.Args[0], "")
		if err != nil {
			return "", err
		}
		if !isNum(c.resolveEnumTy(aty)) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "%s() requires a numeric argument, got %s", name, aty))
		}
		return set(e, name), nil
	}

	switch name {
	case "print":
		if len(e.Args) != 1 {
			return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos, "print(x) expects 1 argument"))
		}
		aty, err := c.checkExpr(e.Args[0], "")
		if err != nil {
			return "", err
		}
		raty := c.resolveEnumTy(aty)
		if !isNum(raty) && raty != "bool" && raty != "str" {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "print() does not support type %s", aty))
		}
		return set(e, "void"), nil

	case "format":
		if len(e.Args) < 1 {
			return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos, "format() expects at least 1 argument (the format string)"))
		}
		fmtTy, err := c.checkExpr(e.Args[0], "")
		if err != nil {
			return "", err
		}
		if fmtTy != "str" {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Args[0].Position(), "format() first argument must be str, got %s", fmtTy))
		}
		for i, arg := range e.Args[1:] {
			aty, err := c.checkExpr(arg, "")
			if err != nil {
				return "", err
			}
			raty := c.resolveEnumTy(aty)
			if !isNum(raty) && raty != "bool" && raty != "str" {
				return "", errors.WrapReport(errors.New("types", errors.TYP001, arg.Position(), "format() argument %d has unsupported type %s", i+2, aty))
			}
		}
		return set(e, "str"), nil

	case "range":
		if len(e.Args) < 1 || len(e.Args) > 3 {
			return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos, "range() expects 1-3 arguments, got %d", len(e.Args)))
		}
		for i, arg := range e.Args {
			at, err := c.checkExpr(arg, "")
			if err != nil {
				return "", err
			}
			if at != "i64" {
				return "", errors.WrapReport(errors.New("types", errors.TYP001, arg.Position(), "argument %d of 'range' must be i64, got %s", i+1, at))
			}
		}
		return set(e, "List[i64]"), nil

	case "keys":
		if len(e.Args) != 1 {
			return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos, "keys() expects 1 argument"))
		}
		at, err := c.checkExpr(e.Args[0], "")
		if err != nil {
			return "", err
		}
		if !IsDictType(at) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "keys() requires a dict type, got %s", at))
		}
		return set(e, "List["+DictKeyType(at)+"]"), nil

	case "len":
		if len(e.Args) != 1 {
			return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos, "len() expects 1 argument"))
		}
		at, err := c.checkExpr(e.Args[0], "")
		if err != nil {
			return "", err
		}
		if IsListType(at) || IsDictType(at) || at == "str" {
			return set(e, "i64"), nil
		}
		return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "len() does not support type %s", at))
	}

	if op, ok := genericContainerOps[name]; ok {
		if e.TypeParam != "" {
			return c.checkExplicitGenericContainerOp(e, name, op, e.TypeParam)
		}
		if name != "List" && name != "Dict" && len(e.Args) > 0 {
			if s, err, handled := c.tryInferGenericContainerOp(e, name, op); handled {
				return s, err
			}
		}
	}

	if name == "init" {
		return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "'init' is not directly callable"))
	}

	if gf, ok := c.genericFns[name]; ok {
		return c.checkGenericCall(e, name, gf)
	}

	if c.interfaces[name] != nil {
		return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "cannot construct interface %q — only classes can be instantiated", name))
	}

	if ci, ok := c.classes[name]; ok {
		if err := c.checkArgs(e.Pos, "constructor '"+name+"'", ci.InitParams, e.Args); err != nil {
			return "", err
		}
		return set(e, name), nil
	}

	if si, ok := c.structs[name]; ok {
		if len(si.FieldOrder) != len(e.Args) {
			return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos,
				"struct %q has %d fields, got %d arguments", name, len(si.FieldOrder), len(e.Args)))
		}
		for i, fname := range si.FieldOrder {
			fty := si.Fields[fname]
			at, err := c.checkExpr(e.Args[i], fty)
			if err != nil {
				return "", err
			}
			if !c.assignable(at, fty) {
				return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Args[i].Position(),
					"field %q of struct %q expected %s, got %s", fname, name, fty, at))
			}
		}
		return set(e, name), nil
	}

	sig, ok := c.funcs[name]
	if !ok {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, e.Pos, "unknown function %q", name))
	}
	if err := c.checkArgs(e.Pos, "function '"+name+"'", sig.Params, e.Args); err != nil {
		return "", err
	}
	return set(e, sig.Ret), nil
}

func (c *Checker) checkMethodCall(e *ast.ECall, ma *ast.EMemberAccess) (string, error) {
	objTy, err := c.checkExpr(ma.Obj, "")
	if err != nil {
		return "", err
	}
	mname := ma.Field

	if ii, ok := c.interfaces[objTy]; ok {
		sig, ok := ii.Methods[mname]
		if !ok {
			return "", errors.WrapReport(errors.New("types", errors.TYP002, e.Pos, "interface %q has no method %q", objTy, mname))
		}
		if err := c.checkArgs(e.Pos, "method '"+mname+"'", sig.Params, e.Args); err != nil {
			return "", err
		}
		return set(e, sig.Ret), nil
	}
	if si, ok := c.structs[objTy]; ok {
		sig, ok := si.Methods[mname]
		if !ok {
			return "", errors.WrapReport(errors.New("types", errors.TYP002, e.Pos, "struct %q has no method %q", objTy, mname))
		}
		if err := c.checkArgs(e.Pos, "method '"+mname+"'", sig.Params, e.Args); err != nil {
			return "", err
		}
		return set(e, sig.Ret), nil
	}
	ci, ok := c.classes[objTy]
	if !ok {
		return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "method call on non-class type %q", objTy))
	}
	sig, ok := ci.Methods[mname]
	if !ok {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, e.Pos, "class %q has no method %q", objTy, mname))
	}
	if err := c.checkArgs(e.Pos, "method '"+mname+"'", sig.Params, e.Args); err != nil {
		return "", err
	}
	return set(e, sig.Ret), nil
}

func (c *Checker) checkExplicitGenericContainerOp(e *ast.ECall, name string, op genericContainerOp, tp string) (string, error) {
	if op.isDict {
		k, v := splitDictInner(tp)
		if !c.isKnown(k) {
			return "", errors.WrapReport(errors.New("types", errors.TYP002, e.Pos, "unknown key type %q in '%s[%s]'", k, name, tp))
		}
		if !c.isKnown(v) {
			return "", errors.WrapReport(errors.New("types", errors.TYP002, e.Pos, "unknown value type %q in '%s[%s]'", v, name, tp))
		}
		if !hashableBase[k] && !c.isEnumType(k) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Pos, "type %q cannot be used as dict key", k))
		}
	} else if !c.isKnown(tp) {
		return "", errors.WrapReport(errors.New("types", errors.TYP002, e.Pos, "unknown type parameter %q in '%s[%s]'", tp, name, tp))
	}
	paramTys, retTy := op.sig(tp)
	if err := c.checkArgs(e.Pos, "'"+name+"["+tp+"]'", paramTys, e.Args); err != nil {
		return "", err
	}
	return set(e, retTy), nil
}

func (c *Checker) tryInferGenericContainerOp(e *ast.ECall, name string, op genericContainerOp) (string, error, bool) {
	firstTy, err := c.checkExpr(e.Args[0], "")
	if err != nil {
		return "", err, true
	}
	var inferredTp string
	switch {
	case listGenericOps[name] && IsListType(firstTy):
		inferredTp = ListElemType(firstTy)
	case dictGenericOps[name] && IsDictType(firstTy):
		inferredTp = firstTy[5 : len(firstTy)-1]
	default:
		return "", nil, false
	}
	e.TypeParam = inferredTp
	paramTys, retTy := op.sig(inferredTp)
	if len(paramTys) != len(e.Args) {
		return "", errors.WrapReport(errors.New("types", errors.TYP005, e.Pos, "'%s' expects %d args, got %d", name, len(paramTys), len(e.Args))), true
	}
	for i := 1; i < len(paramTys); i++ {
		at, err := c.checkExpr(e.Args[i], paramTys[i])
		if err != nil {
			return "", err, true
		}
		if !c.assignable(at, paramTys[i]) {
			return "", errors.WrapReport(errors.New("types", errors.TYP001, e.Args[i].Position(),
				"argument %d of '%s' expected %s, got %s", i+1, name, paramTys[i], at)), true
		}
	}
	return set(e, retTy), nil, true
}
