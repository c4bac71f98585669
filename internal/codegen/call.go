package codegen

import (
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/types"
)

func (g *CodeGen) emitCall(ex *ast.ECall) (string, string, error) {
	if member, ok := ex.Callee.(*ast.EMemberAccess); ok {
		return g.emitMethodCall(ex, member)
	}

	if _, ok := ex.Callee.(*ast.EVar); !ok {
		calleeC, calleeTy, err := g.emitExpr(ex.Callee)
		if err != nil {
			return "", "", err
		}
		if isFnType(calleeTy) {
			args, err := g.emitArgsSafe(ex.Args)
			if err != nil {
				return "", "", err
			}
			return sprintf("%s(%s)", calleeC, strings.Join(args, ", ")), fnRetType(calleeTy), nil
		}
		return "", "", genErr(ex.Pos, "callee must be a function-typed expression")
	}

	name := ex.Callee.(*ast.EVar).Name
	src := g.src(ex.Pos)

	if _, isFn := g.funcSigs[name]; !isFn && !castTypes[name] {
		if _, isCls := g.classDefs[name]; !isCls {
			if vi, err := g.lookup(name, ex.Pos); err == nil && isFnType(vi.Ty) {
				args, err := g.emitArgsSafe(ex.Args)
				if err != nil {
					return "", "", err
				}
				return sprintf("%s(%s)", vi.CName, strings.Join(args, ", ")), fnRetType(vi.Ty), nil
			}
		}
	}

	if castTypes[name] {
		argC, _, err := g.emitArgSafe(ex.Args[0])
		if err != nil {
			return "", "", err
		}
		return sprintf("((%s)(%s))", primC[name], argC), name, nil
	}

	switch name {
	case "print":
		return g.emitPrint(ex)
	case "format":
		return g.emitFormat(ex, src)
	case "range":
		return g.emitRange(ex, src)
	case "keys":
		return g.emitKeys(ex, src)
	case "len":
		return g.emitLen(ex)
	}

	if ex.TypeParam != "" {
		return g.emitGenericCall(ex, src)
	}

	if cls, ok := g.classDefs[name]; ok {
		return g.emitCtorCall(ex, cls, src)
	}

	if st, ok := g.structDefs[name]; ok {
		return g.emitStructCtor(ex, st)
	}

	sig, ok := g.funcSigs[name]
	if !ok {
		return "", "", genErr(ex.Pos, "unknown function %q", name)
	}
	args := make([]string, len(ex.Args))
	for i, a := range ex.Args {
		ac, aty, err := g.emitArgSafe(a)
		if err != nil {
			return "", "", err
		}
		if i < len(sig.Params) {
			ac = g.maybeWrapIface(ac, aty, sig.Params[i])
		}
		args[i] = ac
	}
	return sprintf("__lang_rt_fn_%s(%s)", name, strings.Join(args, ", ")), sig.Ret, nil
}

func (g *CodeGen) emitArgsSafe(args []ast.Expr) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		ac, _, err := g.emitArgSafe(a)
		if err != nil {
			return nil, err
		}
		out[i] = ac
	}
	return out, nil
}

func (g *CodeGen) emitMethodCall(ex *ast.ECall, member *ast.EMemberAccess) (string, string, error) {
	objC, objTy, err := g.emitExpr(member.Obj)
	if err != nil {
		return "", "", err
	}
	if g.isRefType(objTy) && !g.exprIsBorrowed(member.Obj) {
		tmp := g.newTmp()
		g.wf("%s %s = %s;", g.cType(objTy), tmp, objC)
		g.pendingReleases = append(g.pendingReleases, &VarInfo{CName: tmp, Ty: objTy})
		objC = tmp
	}
	mname := member.Field
	src := g.src(ex.Pos)

	if iface, ok := g.ifaceDefs[objTy]; ok {
		g.wf("__lang_rt_null_check(%s.obj, %s);", objC, src)
		args := []string{objC + ".obj"}
		rest, err := g.emitArgsSafe(ex.Args)
		if err != nil {
			return "", "", err
		}
		args = append(args, rest...)
		for _, ms := range iface.MethodSigs {
			if ms.Name == mname {
				return sprintf("%s.vtbl->%s(%s)", objC, ci(mname), strings.Join(args, ", ")), ms.Ret.Name, nil
			}
		}
		return "", "", genErr(ex.Pos, "unknown interface method %q on %q", mname, objTy)
	}

	args := []string{objC}
	rest, err := g.emitArgsSafe(ex.Args)
	if err != nil {
		return "", "", err
	}
	args = append(args, rest...)

	if st, ok := g.structDefs[objTy]; ok {
		for _, m := range st.Methods {
			if m.Name == mname {
				return sprintf("__lang_rt_struct_%s_%s(%s)", objTy, mname, strings.Join(args, ", ")), m.Ret.Name, nil
			}
		}
	}
	if cls, ok := g.classDefs[objTy]; ok {
		g.wf("__lang_rt_null_check(%s, %s);", objC, src)
		for _, m := range cls.Methods {
			if m.Name == mname {
				return sprintf("__lang_rt_class_%s_%s(%s)", objTy, mname, strings.Join(args, ", ")), m.Ret.Name, nil
			}
		}
	}
	return "", "", genErr(ex.Pos, "unknown method %q on %q", mname, objTy)
}

func (g *CodeGen) emitPrint(ex *ast.ECall) (string, string, error) {
	argC, argTy, err := g.emitArgSafe(ex.Args[0])
	if err != nil {
		return "", "", err
	}
	if _, ok := g.enumVariants[argTy]; ok {
		argTy = "i64"
	}
	switch {
	case castTypes[argTy]:
		return sprintf("__lang_rt_print_%s(%s)", argTy, argC), "void", nil
	case argTy == "bool":
		return sprintf("__lang_rt_print_bool(%s)", argC), "void", nil
	case argTy == "str":
		return sprintf("__lang_rt_print_str(%s)", argC), "void", nil
	}
	return sprintf("printf(\"%%p\\n\", (void*)(%s))", argC), "void", nil
}

func (g *CodeGen) emitFormat(ex *ast.ECall, src string) (string, string, error) {
	fmtC, _, err := g.emitArgSafe(ex.Args[0])
	if err != nil {
		return "", "", err
	}
	nargs := len(ex.Args) - 1
	if nargs == 0 {
		tmp := g.newTmp()
		g.wf("__lang_rt_Str* %s = __lang_rt_format(%s, %s, NULL, 0);", tmp, src, fmtC)
		return tmp, "str", nil
	}
	arr := g.newTmp()
	g.wf("__lang_rt_FmtArg %s[%d];", arr, nargs)
	for i, a := range ex.Args[1:] {
		ac, aty, err := g.emitArgSafe(a)
		if err != nil {
			return "", "", err
		}
		if _, ok := g.enumVariants[aty]; ok {
			aty = "i64"
		}
		switch aty {
		case "i8", "i16", "i32", "i64":
			g.wf("%s[%d].tag = __LANG_RT_FMT_I64; %s[%d].val.i = (int64_t)(%s);", arr, i, arr, i, ac)
		case "u8", "u16", "u32", "u64":
			g.wf("%s[%d].tag = __LANG_RT_FMT_U64; %s[%d].val.u = (uint64_t)(%s);", arr, i, arr, i, ac)
		case "f32", "f64":
			g.wf("%s[%d].tag = __LANG_RT_FMT_F64; %s[%d].val.f = (double)(%s);", arr, i, arr, i, ac)
		case "bool":
			g.wf("%s[%d].tag = __LANG_RT_FMT_BOOL; %s[%d].val.b = (%s);", arr, i, arr, i, ac)
		case "str":
			g.wf("%s[%d].tag = __LANG_RT_FMT_STR; %s[%d].val.s = (%s);", arr, i, arr, i, ac)
		}
	}
	tmp := g.newTmp()
	g.wf("__lang_rt_Str* %s = __lang_rt_format(%s, %s, %s, %d);", tmp, src, fmtC, arr, nargs)
	return tmp, "str", nil
}

func (g *CodeGen) emitRange(ex *ast.ECall, src string) (string, string, error) {
	g.usedListTags["I64"] = true
	args, err := g.emitArgsSafe(ex.Args)
	if err != nil {
		return "", "", err
	}
	switch len(args) {
	case 1:
		return sprintf("__lang_rt_range(%s, 0, %s, 1)", src, args[0]), "List[i64]", nil
	case 2:
		return sprintf("__lang_rt_range(%s, %s, %s, 1)", src, args[0], args[1]), "List[i64]", nil
	default:
		return sprintf("__lang_rt_range(%s, %s, %s, %s)", src, args[0], args[1], args[2]), "List[i64]", nil
	}
}

func (g *CodeGen) emitKeys(ex *ast.ECall, src string) (string, string, error) {
	argC, argTy, err := g.emitArgSafe(ex.Args[0])
	if err != nil {
		return "", "", err
	}
	if !isDictType(argTy) {
		return "", "", genErr(ex.Pos, "keys() requires dict type")
	}
	k := keyOf(argTy)
	g.usedListTags[elemTag(k)] = true
	combined := dictCombinedTag(argTy)
	return sprintf("__lang_rt_dict_%s_keys(%s, %s)", combined, src, argC), "List[" + k + "]", nil
}

func (g *CodeGen) emitLen(ex *ast.ECall) (string, string, error) {
	argC, argTy, err := g.emitArgSafe(ex.Args[0])
	if err != nil {
		return "", "", err
	}
	switch {
	case isListType(argTy):
		return sprintf("__lang_rt_list_%s_len(%s)", elemTag(listElem(argTy)), argC), "i64", nil
	case isDictType(argTy):
		return sprintf("__lang_rt_dict_%s_len(%s)", dictCombinedTag(argTy), argC), "i64", nil
	case argTy == "str":
		return sprintf("((int64_t)(%s)->len)", argC), "i64", nil
	}
	return "", "", genErr(ex.Pos, "len() does not support type %q", argTy)
}

// emitGenericCall lowers container builtins parameterized by an explicit
// type argument (List[T](), append[T](...), Dict[K,V](), put[K,V](...), ...)
// and monomorphized user-defined generic function calls name[T](...).
func (g *CodeGen) emitGenericCall(ex *ast.ECall, src string) (string, string, error) {
	name := ex.Callee.(*ast.EVar).Name
	tp := ex.TypeParam
	tag := elemTag(tp)

	ba := func(i int) (string, error) {
		ac, _, err := g.emitArgSafe(ex.Args[i])
		return ac, err
	}
	baVal := func(i int, elemTy string) (string, error) {
		ac, aty, err := g.emitArgSafe(ex.Args[i])
		if err != nil {
			return "", err
		}
		return g.maybeWrapIface(ac, aty, elemTy), nil
	}

	switch name {
	case "List":
		g.usedListTags[tag] = true
		return sprintf("__lang_rt_list_%s_new(%s)", tag, src), "List[" + tp + "]", nil
	case "append":
		g.usedListTags[tag] = true
		a0, err := ba(0)
		if err != nil {
			return "", "", err
		}
		a1, err := baVal(1, tp)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_list_%s_push(%s, %s, %s)", tag, src, a0, a1), "void", nil
	case "get":
		g.usedListTags[tag] = true
		a0, err := ba(0)
		if err != nil {
			return "", "", err
		}
		a1, err := ba(1)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_list_%s_get(%s, %s, %s)", tag, src, a0, a1), tp, nil
	case "set":
		g.usedListTags[tag] = true
		a0, err := ba(0)
		if err != nil {
			return "", "", err
		}
		a1, err := ba(1)
		if err != nil {
			return "", "", err
		}
		a2, err := baVal(2, tp)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_list_%s_set(%s, %s, %s, %s)", tag, src, a0, a1, a2), "void", nil
	case "pop":
		g.usedListTags[tag] = true
		a0, err := ba(0)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_list_%s_pop(%s, %s)", tag, src, a0), tp, nil
	case "remove":
		g.usedListTags[tag] = true
		a0, err := ba(0)
		if err != nil {
			return "", "", err
		}
		a1, err := ba(1)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_list_%s_remove(%s, %s, %s)", tag, src, a0, a1), "void", nil
	case "Dict":
		k, v := types.DictKeyType("Dict[" + tp + "]"), types.DictValType("Dict["+tp+"]")
		combined := elemTag(k) + "_" + elemTag(v)
		g.usedDictTags[combined] = true
		return sprintf("__lang_rt_dict_%s_new(%s)", combined, src), "Dict[" + tp + "]", nil
	case "put":
		k, v := types.DictKeyType("Dict[" + tp + "]"), types.DictValType("Dict["+tp+"]")
		combined := elemTag(k) + "_" + elemTag(v)
		g.usedDictTags[combined] = true
		a0, err := ba(0)
		if err != nil {
			return "", "", err
		}
		a1, err := ba(1)
		if err != nil {
			return "", "", err
		}
		a2, err := baVal(2, v)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_dict_%s_set(%s, %s, %s, %s)", combined, src, a0, a1, a2), "void", nil
	case "lookup":
		k, v := types.DictKeyType("Dict[" + tp + "]"), types.DictValType("Dict["+tp+"]")
		combined := elemTag(k) + "_" + elemTag(v)
		g.usedDictTags[combined] = true
		a0, err := ba(0)
		if err != nil {
			return "", "", err
		}
		a1, err := ba(1)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_dict_%s_get(%s, %s, %s)", combined, src, a0, a1), v, nil
	case "has":
		k, v := types.DictKeyType("Dict[" + tp + "]"), types.DictValType("Dict["+tp+"]")
		combined := elemTag(k) + "_" + elemTag(v)
		g.usedDictTags[combined] = true
		a0, err := ba(0)
		if err != nil {
			return "", "", err
		}
		a1, err := ba(1)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_dict_%s_has(%s, %s, %s)", combined, src, a0, a1), "bool", nil
	}

	mangled := name + "_" + tag
	if sig, ok := g.funcSigs[mangled]; ok {
		args, err := g.emitArgsSafe(ex.Args)
		if err != nil {
			return "", "", err
		}
		return sprintf("__lang_rt_fn_%s(%s)", mangled, strings.Join(args, ", ")), sig.Ret, nil
	}
	return "", "", genErr(ex.Pos, "unknown generic function %q[%s]", name, tp)
}

func (g *CodeGen) emitCtorCall(ex *ast.ECall, cls *ast.ClassDecl, src string) (string, string, error) {
	var initParamTys []string
	for _, m := range cls.Methods {
		if m.Name == "init" {
			for _, p := range m.Params[1:] {
				initParamTys = append(initParamTys, p.Ty.Name)
			}
			break
		}
	}
	args := []string{src}
	for i, a := range ex.Args {
		ac, aty, err := g.emitArgSafe(a)
		if err != nil {
			return "", "", err
		}
		if i < len(initParamTys) {
			ac = g.maybeWrapIface(ac, aty, initParamTys[i])
		}
		args = append(args, ac)
	}
	return sprintf("__lang_rt_class_%s_new(%s)", cls.Name, strings.Join(args, ", ")), cls.Name, nil
}

func (g *CodeGen) emitStructCtor(ex *ast.ECall, st *ast.StructDecl) (string, string, error) {
	fields := make([]string, 0, len(st.Fields))
	for i, fd := range st.Fields {
		if i >= len(ex.Args) {
			break
		}
		ac, _, err := g.emitArgSafe(ex.Args[i])
		if err != nil {
			return "", "", err
		}
		fields = append(fields, sprintf(".%s = %s", ci(fd.Name), ac))
	}
	return sprintf("(%s){%s}", g.cType(st.Name), strings.Join(fields, ", ")), st.Name, nil
}
