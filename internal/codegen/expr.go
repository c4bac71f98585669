package codegen

import (
	"strconv"
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
)

// emitExpr lowers one expression to a C expression string plus the
// language-level type of that expression. Side-effecting sub-steps (null
// checks, bounds checks, owned-temp materialization) are written as
// statements via g.w/g.wf before the expression string is returned.
func (g *CodeGen) emitExpr(e ast.Expr) (string, string, error) {
	switch ex := e.(type) {
	case *ast.EInt:
		ty := ex.Type()
		if ty == "" {
			ty = "i64"
		}
		return strconv.FormatInt(ex.Value, 10), ty, nil
	case *ast.EFloat:
		ty := ex.Type()
		if ty == "" {
			ty = "f64"
		}
		return formatFloat(ex.Value), ty, nil
	case *ast.EBool:
		if ex.Value {
			return "true", "bool", nil
		}
		return "false", "bool", nil
	case *ast.EString:
		lit := cEscapeBytes([]byte(ex.Value))
		name, ok := g.stringLits[lit]
		if !ok {
			g.stringLitIdx++
			name = sprintf("__lang_rt_lit_%d", g.stringLitIdx)
			g.stringLits[lit] = name
		}
		return "&" + name, "str", nil
	case *ast.ENone:
		return "NULL", "none", nil
	case *ast.EVar:
		if info, ok := g.externConsts[ex.Name]; ok {
			return "(" + info.CExpr + ")", info.Type, nil
		}
		if ty := ex.Type(); ty != "" && isFnType(ty) {
			if _, ok := g.funcSigs[ex.Name]; ok {
				return "__lang_rt_fn_" + ex.Name, ty, nil
			}
		}
		vi, err := g.lookup(ex.Name, ex.Pos)
		if err != nil {
			return "", "", err
		}
		return vi.CName, vi.Ty, nil
	case *ast.EUnary:
		rhsC, rhsTy, err := g.emitExpr(ex.Rhs)
		if err != nil {
			return "", "", err
		}
		switch ex.Op {
		case "-":
			return sprintf("(-(%s))", rhsC), rhsTy, nil
		case "not":
			return sprintf("(!(%s))", rhsC), "bool", nil
		case "~":
			return sprintf("(~(%s))", rhsC), rhsTy, nil
		}
		return "", "", genErr(ex.Pos, "unknown unary op %q", ex.Op)
	case *ast.EIs:
		return g.emitIs(ex)
	case *ast.EAs:
		return g.emitAs(ex)
	case *ast.EBinary:
		return g.emitBinary(ex)
	case *ast.ECall:
		return g.emitCall(ex)
	case *ast.EMemberAccess:
		return g.emitMemberAccess(ex)
	case *ast.EIndex:
		return g.emitIndex(ex)
	case *ast.EListLit:
		return g.emitListLit(ex)
	case *ast.EDictLit:
		return g.emitDictLit(ex)
	case *ast.ETuple:
		return g.emitTuple(ex)
	}
	return "", "", genErr(e.Position(), "unhandled expression")
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func cEscapeBytes(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range b {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if c < 0x20 || c >= 0x7f {
				sb.WriteString(sprintf(`\x%02x`, c))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func (g *CodeGen) emitIs(ex *ast.EIs) (string, string, error) {
	lhsC, lhsTy, err := g.emitExpr(ex.Lhs)
	if err != nil {
		return "", "", err
	}
	rhsTy := ex.TyName
	if rhsTy == "None" || rhsTy == "none" {
		if _, ok := g.ifaceDefs[lhsTy]; ok {
			return sprintf("(%s.obj == NULL)", lhsC), "bool", nil
		}
		return sprintf("(%s == NULL)", lhsC), "bool", nil
	}
	if _, ok := g.ifaceDefs[lhsTy]; ok {
		impl := g.classImplements[rhsTy]
		for _, i := range impl {
			if i == lhsTy {
				return sprintf("(%s.vtbl == &__lang_rt_vtbl_%s_as_%s)", lhsC, rhsTy, lhsTy), "bool", nil
			}
		}
		return "0", "bool", nil
	}
	if lhsTy == rhsTy {
		return "1", "bool", nil
	}
	return "0", "bool", nil
}

func (g *CodeGen) emitAs(ex *ast.EAs) (string, string, error) {
	lhsC, lhsTy, err := g.emitExpr(ex.Lhs)
	if err != nil {
		return "", "", err
	}
	target := ex.ClsName
	ifaceTy := ex.IfaceTy
	if ifaceTy == "" {
		ifaceTy = lhsTy
	}
	src := g.src(ex.Pos)
	tmp := g.newTmp()
	g.wf("__lang_rt_Iface_%s %s = %s;", ifaceTy, tmp, lhsC)
	return sprintf("((__lang_rt_Class_%s*)__lang_rt_downcast(%s, %s.obj, %s.vtbl, &__lang_rt_vtbl_%s_as_%s, %q))",
		target, src, tmp, tmp, target, ifaceTy, target), target, nil
}

func (g *CodeGen) emitBinary(ex *ast.EBinary) (string, string, error) {
	src := g.src(ex.Pos)
	if ex.Op == "and" || ex.Op == "or" {
		aC, _, err := g.emitExpr(ex.Lhs)
		if err != nil {
			return "", "", err
		}
		tmp := g.newTmp()
		g.wf("bool %s = %s;", tmp, aC)
		g.flushPendingReleases(src)
		guard := tmp
		if ex.Op == "or" {
			guard = "!" + tmp
		}
		g.wf("if (%s) {", guard)
		g.ind++
		bC, _, err := g.emitExpr(ex.Rhs)
		if err != nil {
			return "", "", err
		}
		g.wf("%s = %s;", tmp, bC)
		g.flushPendingReleases(src)
		g.ind--
		g.w("}")
		return tmp, "bool", nil
	}

	aC, aTy, err := g.emitExpr(ex.Lhs)
	if err != nil {
		return "", "", err
	}
	bC, bTy, err := g.emitExpr(ex.Rhs)
	if err != nil {
		return "", "", err
	}
	if g.isRefType(aTy) && !g.exprIsBorrowed(ex.Lhs) {
		tmp := g.newTmp()
		g.wf("%s %s = %s;", g.cType(aTy), tmp, aC)
		g.pendingReleases = append(g.pendingReleases, &VarInfo{CName: tmp, Ty: aTy})
		aC = tmp
	}
	if g.isRefType(bTy) && !g.exprIsBorrowed(ex.Rhs) {
		tmp := g.newTmp()
		g.wf("%s %s = %s;", g.cType(bTy), tmp, bC)
		g.pendingReleases = append(g.pendingReleases, &VarInfo{CName: tmp, Ty: bTy})
		bC = tmp
	}

	switch ex.Op {
	case "==", "!=", "<", "<=", ">", ">=":
		if aTy == "str" && bTy == "str" && (ex.Op == "==" || ex.Op == "!=") {
			expr := sprintf("__lang_rt_str_eq(%s, %s)", aC, bC)
			if ex.Op == "!=" {
				expr = "!(" + expr + ")"
			}
			return expr, "bool", nil
		}
		if (aTy == "none" || bTy == "none") && (ex.Op == "==" || ex.Op == "!=") {
			if _, ok := g.ifaceDefs[aTy]; ok {
				return sprintf("(%s.obj %s NULL)", aC, ex.Op), "bool", nil
			}
			if _, ok := g.ifaceDefs[bTy]; ok {
				return sprintf("(%s.obj %s NULL)", bC, ex.Op), "bool", nil
			}
		}
		return sprintf("(%s %s %s)", aC, ex.Op, bC), "bool", nil
	case "+", "-", "*", "/", "%":
		if ex.Op == "+" && aTy == "str" {
			return sprintf("__lang_rt_str_concat(%s, %s, %s)", src, aC, bC), "str", nil
		}
		return sprintf("(%s %s %s)", aC, ex.Op, bC), aTy, nil
	case "&", "|", "^", "<<", ">>":
		return sprintf("(%s %s %s)", aC, ex.Op, bC), aTy, nil
	}
	return "", "", genErr(ex.Pos, "unknown binary op %q", ex.Op)
}

func (g *CodeGen) emitMemberAccess(ex *ast.EMemberAccess) (string, string, error) {
	if v, ok := ex.Obj.(*ast.EVar); ok {
		if variants, ok := g.enumVariants[v.Name]; ok {
			val, ok := variants[ex.Field]
			if !ok {
				return "", "", genErr(ex.Pos, "unknown enum variant %q on %q", ex.Field, v.Name)
			}
			return strconv.FormatInt(val, 10), "i64", nil
		}
	}
	objC, objTy, err := g.emitExpr(ex.Obj)
	if err != nil {
		return "", "", err
	}
	if g.isRefType(objTy) && !g.exprIsBorrowed(ex.Obj) {
		tmp := g.newTmp()
		g.wf("%s %s = %s;", g.cType(objTy), tmp, objC)
		g.pendingReleases = append(g.pendingReleases, &VarInfo{CName: tmp, Ty: objTy})
		objC = tmp
	}
	if st, ok := g.structDefs[objTy]; ok {
		for _, fd := range st.Fields {
			if fd.Name == ex.Field {
				return sprintf("%s.%s", objC, ci(ex.Field)), fd.Ty.Name, nil
			}
		}
	}
	if cls, ok := g.classDefs[objTy]; ok {
		src := g.src(ex.Pos)
		g.wf("__lang_rt_null_check(%s, %s);", objC, src)
		for _, fd := range cls.Fields {
			if fd.Name == ex.Field {
				return sprintf("%s->%s", objC, ci(ex.Field)), fd.Ty.Name, nil
			}
		}
	}
	return "", "", genErr(ex.Pos, "unknown member %q on type %q", ex.Field, objTy)
}

func (g *CodeGen) emitIndex(ex *ast.EIndex) (string, string, error) {
	src := g.src(ex.Pos)
	objC, objTy, err := g.emitExpr(ex.Obj)
	if err != nil {
		return "", "", err
	}
	idxC, _, err := g.emitArgSafe(ex.Index)
	if err != nil {
		return "", "", err
	}
	switch {
	case isListType(objTy):
		elem := listElem(objTy)
		tag := elemTag(elem)
		g.usedListTags[tag] = true
		return sprintf("__lang_rt_list_%s_get(%s, %s, %s)", tag, src, objC, idxC), elem, nil
	case isDictType(objTy):
		val := valOf(objTy)
		combined := dictCombinedTag(objTy)
		g.usedDictTags[combined] = true
		return sprintf("__lang_rt_dict_%s_get(%s, %s, %s)", combined, src, objC, idxC), val, nil
	case objTy == "str":
		return sprintf("__lang_rt_str_get(%s, %s, %s)", src, objC, idxC), "i64", nil
	}
	return "", "", genErr(ex.Pos, "subscript not supported on type %q", objTy)
}

func (g *CodeGen) emitListLit(ex *ast.EListLit) (string, string, error) {
	tp := ex.ElemType
	tag := elemTag(tp)
	g.usedListTags[tag] = true
	src := g.src(ex.Pos)
	tmp := g.newTmp()
	listTy := "List[" + tp + "]"
	g.wf("%s %s = __lang_rt_list_%s_new(%s);", g.cType(listTy), tmp, tag, src)
	for _, el := range ex.Elems {
		ec, ety, err := g.emitArgSafe(el)
		if err != nil {
			return "", "", err
		}
		ec = g.maybeWrapIface(ec, ety, tp)
		g.wf("__lang_rt_list_%s_push(%s, %s, %s);", tag, src, tmp, ec)
	}
	return tmp, listTy, nil
}

func (g *CodeGen) emitDictLit(ex *ast.EDictLit) (string, string, error) {
	ktp, tp := ex.KeyType, ex.ValType
	combined := elemTag(ktp) + "_" + elemTag(tp)
	g.usedDictTags[combined] = true
	src := g.src(ex.Pos)
	dictTy := "Dict[" + ktp + "," + tp + "]"
	tmp := g.newTmp()
	g.wf("%s %s = __lang_rt_dict_%s_new(%s);", g.cType(dictTy), tmp, combined, src)
	for i := range ex.Keys {
		kc, _, err := g.emitArgSafe(ex.Keys[i])
		if err != nil {
			return "", "", err
		}
		vc, vty, err := g.emitArgSafe(ex.Vals[i])
		if err != nil {
			return "", "", err
		}
		vc = g.maybeWrapIface(vc, vty, tp)
		g.wf("__lang_rt_dict_%s_set(%s, %s, %s, %s);", combined, src, tmp, kc, vc)
	}
	return tmp, dictTy, nil
}

func (g *CodeGen) emitTuple(ex *ast.ETuple) (string, string, error) {
	tupleTy := ex.Type()
	targetElems := tupleElemTypes(tupleTy)
	structName := tupleStructName(tupleTy)
	g.markTypeUse(tupleTy)

	type item struct {
		c, ty, target string
		expr          ast.Expr
	}
	items := make([]item, len(ex.Elems))
	for i, el := range ex.Elems {
		ec, ety, err := g.emitExpr(el)
		if err != nil {
			return "", "", err
		}
		ec = g.maybeWrapIface(ec, ety, targetElems[i])
		items[i] = item{ec, ety, targetElems[i], el}
	}
	tmp := g.newTmp()
	fields := make([]string, len(items))
	for i, it := range items {
		fields[i] = sprintf(".f%d = %s", i, it.c)
	}
	g.wf("%s %s = {%s};", structName, tmp, strings.Join(fields, ", "))
	src := g.src(ex.Pos)
	for i, it := range items {
		if g.isRefType(it.target) && g.exprIsBorrowed(it.expr) {
			g.emitRetainValue(it.target, sprintf("%s.f%d", tmp, i), src)
		}
	}
	return tmp, tupleTy, nil
}
