package codegen

import "github.com/rill-lang/rillc/internal/ast"

func (g *CodeGen) emitStmt(st ast.Stmt, allowBreak, allowContinue bool) error {
	switch s := st.(type) {
	case *ast.SVarDecl:
		return g.emitVarDecl(s)
	case *ast.SAssign:
		return g.emitAssign(s)
	case *ast.SMemberAssign:
		return g.emitMemberAssign(s)
	case *ast.SIndexAssign:
		return g.emitIndexAssign(s)
	case *ast.SExpr:
		return g.emitExprStmt(s)
	case *ast.SReturn:
		return g.emitReturn(s)
	case *ast.SBreak:
		if !allowBreak {
			return genErr(s.Pos, "break not inside loop")
		}
		g.releaseLoopScopes(g.src(s.Pos))
		g.w("break;")
		return nil
	case *ast.SContinue:
		if !allowContinue {
			return genErr(s.Pos, "continue not inside loop")
		}
		g.releaseLoopScopes(g.src(s.Pos))
		g.w("continue;")
		return nil
	case *ast.SWhile:
		return g.emitWhile(s)
	case *ast.SFor:
		return g.emitFor(s)
	case *ast.SIf:
		return g.emitIf(s, allowBreak, allowContinue)
	case *ast.SBlock:
		src := g.src(s.Pos)
		g.w("{")
		g.ind++
		g.pushScope()
		for _, s2 := range s.Block.Stmts {
			if err := g.emitStmt(s2, allowBreak, allowContinue); err != nil {
				return err
			}
		}
		g.popScope(src)
		g.ind--
		g.w("}")
		return nil
	case *ast.STupleDestructure:
		return g.emitTupleDestructure(s)
	default:
		return genErr(st.Position(), "unhandled statement")
	}
}

func (g *CodeGen) emitVarDecl(s *ast.SVarDecl) error {
	ty := s.Ty.Name
	ct := g.cType(ty)
	g.markTypeUse(ty)
	vi := g.declareVar(s.Name, ty)
	src := g.src(s.Pos)

	exprC, exprTy, err := g.emitExpr(s.Value)
	if err != nil {
		return err
	}
	exprC = g.maybeWrapIface(exprC, exprTy, ty)
	g.wf("%s %s = %s;", ct, vi.CName, exprC)
	if g.isRefType(ty) && g.exprIsBorrowed(s.Value) {
		g.emitRetainValue(ty, vi.CName, src)
	}
	g.flushPendingReleases(src)
	return nil
}

func (g *CodeGen) emitAssign(s *ast.SAssign) error {
	vi, err := g.lookup(s.Name, s.Pos)
	if err != nil {
		return err
	}
	src := g.src(s.Pos)
	exprC, exprTy, err := g.emitExpr(s.Value)
	if err != nil {
		return err
	}
	if g.isRefType(vi.Ty) {
		exprC = g.maybeWrapIface(exprC, exprTy, vi.Ty)
		tmp := g.newTmp()
		g.wf("%s %s = %s;", g.cType(vi.Ty), tmp, exprC)
		if g.exprIsBorrowed(s.Value) {
			g.emitRetainValue(vi.Ty, tmp, src)
		}
		g.emitRelease(vi, src)
		g.wf("%s = %s;", vi.CName, tmp)
		g.flushPendingReleases(src)
		return nil
	}
	g.wf("%s = %s;", vi.CName, exprC)
	g.flushPendingReleases(src)
	return nil
}

func (g *CodeGen) emitMemberAssign(s *ast.SMemberAssign) error {
	src := g.src(s.Pos)
	objC, objTy, err := g.emitExpr(s.Obj)
	if err != nil {
		return err
	}
	exprC, exprTy, err := g.emitExpr(s.Value)
	if err != nil {
		return err
	}

	if _, ok := g.structDefs[objTy]; ok {
		g.wf("%s.%s = %s;", objC, ci(s.Field), exprC)
		g.flushPendingReleases(src)
		return nil
	}

	if _, ok := g.classDefs[objTy]; ok {
		g.wf("__lang_rt_null_check(%s, %s);", objC, src)
	}
	fieldC := sprintf("%s->%s", objC, ci(s.Field))

	var fieldTy string
	if cls, ok := g.classDefs[objTy]; ok {
		for _, fd := range cls.Fields {
			if fd.Name == s.Field {
				fieldTy = fd.Ty.Name
				break
			}
		}
	}
	if fieldTy == "" {
		fieldTy = exprTy
	}
	exprC = g.maybeWrapIface(exprC, exprTy, fieldTy)
	if g.isRefType(fieldTy) {
		tmp := g.newTmp()
		g.wf("%s %s = %s;", g.cType(fieldTy), tmp, exprC)
		if g.exprIsBorrowed(s.Value) {
			g.emitRetainValue(fieldTy, tmp, src)
		}
		g.emitReleaseExpr(fieldC, fieldTy, src)
		g.wf("%s = %s;", fieldC, tmp)
	} else {
		g.wf("%s = %s;", fieldC, exprC)
	}
	g.flushPendingReleases(src)
	return nil
}

func (g *CodeGen) emitIndexAssign(s *ast.SIndexAssign) error {
	src := g.src(s.Pos)
	objC, objTy, err := g.emitExpr(s.Obj)
	if err != nil {
		return err
	}
	idxC, _, err := g.emitArgSafe(s.Index)
	if err != nil {
		return err
	}
	exprC, exprTy, err := g.emitArgSafe(s.Value)
	if err != nil {
		return err
	}
	switch {
	case isListType(objTy):
		elem := listElem(objTy)
		tag := elemTag(elem)
		g.usedListTags[tag] = true
		exprC = g.maybeWrapIface(exprC, exprTy, elem)
		g.wf("__lang_rt_list_%s_set(%s, %s, %s, %s);", tag, src, objC, idxC, exprC)
	case isDictType(objTy):
		val := valOf(objTy)
		combined := dictCombinedTag(objTy)
		g.usedDictTags[combined] = true
		exprC = g.maybeWrapIface(exprC, exprTy, val)
		g.wf("__lang_rt_dict_%s_set(%s, %s, %s, %s);", combined, src, objC, idxC, exprC)
	default:
		return genErr(s.Pos, "subscript assignment not supported on type %q", objTy)
	}
	g.flushPendingReleases(src)
	return nil
}

func (g *CodeGen) emitExprStmt(s *ast.SExpr) error {
	src := g.src(s.Pos)
	exprC, exprTy, err := g.emitExpr(s.Value)
	if err != nil {
		return err
	}
	switch {
	case exprTy == "void":
		g.wf("%s;", exprC)
		if call, ok := s.Value.(*ast.ECall); ok {
			if v, ok := call.Callee.(*ast.EVar); ok && v.Name == "print" {
				g.w("__lang_rt_print_ln();")
			}
		}
	case g.isRefType(exprTy) && !g.exprIsBorrowed(s.Value):
		tmp := g.newTmp()
		g.wf("%s %s = %s;", g.cType(exprTy), tmp, exprC)
		g.emitReleaseExpr(tmp, exprTy, src)
	default:
		g.wf("(void)(%s);", exprC)
	}
	g.flushPendingReleases(src)
	return nil
}

func (g *CodeGen) emitReturn(s *ast.SReturn) error {
	src := g.src(s.Pos)
	if s.Value == nil {
		g.flushPendingReleases(src)
		g.releaseAllScopes(src)
		g.emitReturnDefaultFor(g.curFnRet, src)
		return nil
	}
	exprC, exprTy, err := g.emitExpr(s.Value)
	if err != nil {
		return err
	}
	retTy := g.curFnRet
	wrapped := g.maybeWrapIface(exprC, exprTy, retTy)
	actualTy := exprTy
	if _, ok := g.ifaceDefs[retTy]; ok {
		if _, ok := g.classDefs[exprTy]; ok {
			actualTy = retTy
		}
	}
	if actualTy == "none" {
		actualTy = retTy
	}
	retTmp := g.newTmp()
	g.wf("%s %s = %s;", g.cType(actualTy), retTmp, wrapped)
	if g.isRefType(actualTy) && g.exprIsBorrowed(s.Value) {
		g.emitRetainValue(actualTy, retTmp, src)
	}
	g.flushPendingReleases(src)
	g.releaseAllScopes(src)
	g.wf("return %s;", retTmp)
	return nil
}

func (g *CodeGen) emitWhile(s *ast.SWhile) error {
	src := g.src(s.Pos)
	g.w("while (1) {")
	g.ind++
	condC, _, err := g.emitExpr(s.Cond)
	if err != nil {
		return err
	}
	if len(g.pendingReleases) > 0 {
		tmp := g.newTmp()
		g.wf("bool %s = %s;", tmp, condC)
		condC = tmp
	}
	g.flushPendingReleases(src)
	g.wf("if (!(%s)) break;", condC)
	g.loopScopeDepth = append(g.loopScopeDepth, len(g.scopeVars))
	g.pushScope()
	for _, s2 := range s.Body.Stmts {
		if err := g.emitStmt(s2, true, true); err != nil {
			return err
		}
	}
	g.popScope(src)
	g.loopScopeDepth = g.loopScopeDepth[:len(g.loopScopeDepth)-1]
	g.ind--
	g.w("}")
	return nil
}

func (g *CodeGen) emitFor(s *ast.SFor) error {
	src := g.src(s.Pos)
	iterC, iterTy, err := g.emitExpr(s.Iter)
	if err != nil {
		return err
	}
	if !isListType(iterTy) {
		return genErr(s.Pos, "for-in requires list type, got %s", iterTy)
	}
	elemTy := listElem(iterTy)
	tag := elemTag(elemTy)
	cElem := g.cType(elemTy)

	iterTmp := g.newTmp()
	idxTmp := g.newTmp()
	g.wf("__lang_rt_List_%s* %s = %s;", tag, iterTmp, iterC)
	g.loopScopeDepth = append(g.loopScopeDepth, len(g.scopeVars))
	g.pushScope()
	vi := g.declareVar(s.VarName, elemTy)
	g.wf("for (int64_t %s = 0; %s < (int64_t)%s->len; %s++) {", idxTmp, idxTmp, iterTmp, idxTmp)
	g.ind++
	g.wf("%s %s = %s->data[(uint32_t)%s];", cElem, vi.CName, iterTmp, idxTmp)
	if g.isRefType(elemTy) {
		g.emitRetainValue(elemTy, vi.CName, src)
	}
	g.pushScope()
	for _, s2 := range s.Body.Stmts {
		if err := g.emitStmt(s2, true, true); err != nil {
			return err
		}
	}
	g.popScope(src)
	if g.isRefType(elemTy) {
		g.emitRelease(vi, src)
	}
	g.ind--
	g.w("}")
	if !g.exprIsBorrowed(s.Iter) {
		g.emitReleaseExpr(iterTmp, iterTy, src)
	}
	g.flushPendingReleases(src)
	g.loopScopeDepth = g.loopScopeDepth[:len(g.loopScopeDepth)-1]
	g.env = g.env[:len(g.env)-1]
	g.scopeVars = g.scopeVars[:len(g.scopeVars)-1]
	return nil
}

func (g *CodeGen) emitIf(s *ast.SIf, allowBreak, allowContinue bool) error {
	src := g.src(s.Pos)
	first := true
	elifDepth := 0
	for _, arm := range s.Arms {
		if arm.Cond == nil {
			g.w("else {")
		} else if first {
			condC, _, err := g.emitExpr(arm.Cond)
			if err != nil {
				return err
			}
			if len(g.pendingReleases) > 0 {
				tmp := g.newTmp()
				g.wf("bool %s = %s;", tmp, condC)
				condC = tmp
			}
			g.flushPendingReleases(src)
			g.wf("if (%s) {", condC)
			first = false
		} else {
			g.w("else {")
			g.ind++
			elifDepth++
			condC, _, err := g.emitExpr(arm.Cond)
			if err != nil {
				return err
			}
			if len(g.pendingReleases) > 0 {
				tmp := g.newTmp()
				g.wf("bool %s = %s;", tmp, condC)
				condC = tmp
			}
			g.flushPendingReleases(src)
			g.wf("if (%s) {", condC)
		}
		g.ind++
		g.pushScope()
		for _, s2 := range arm.Block.Stmts {
			if err := g.emitStmt(s2, allowBreak, allowContinue); err != nil {
				return err
			}
		}
		g.popScope(src)
		g.ind--
		g.w("}")
	}
	for i := 0; i < elifDepth; i++ {
		g.ind--
		g.w("}")
	}
	return nil
}

func (g *CodeGen) emitTupleDestructure(s *ast.STupleDestructure) error {
	src := g.src(s.Pos)
	exprC, exprTy, err := g.emitExpr(s.Value)
	if err != nil {
		return err
	}
	elemTypes := tupleElemTypes(exprTy)
	structName := tupleStructName(exprTy)
	g.markTypeUse(exprTy)
	tmp := g.newTmp()
	g.wf("%s %s = %s;", structName, tmp, exprC)
	borrowed := g.exprIsBorrowed(s.Value)
	for i, name := range s.Names {
		ety := elemTypes[i]
		vi := g.declareVar(name, ety)
		g.wf("%s %s = %s.f%d;", g.cType(ety), vi.CName, tmp, i)
		if g.isRefType(ety) && borrowed {
			g.emitRetainValue(ety, vi.CName, src)
		}
	}
	g.flushPendingReleases(src)
	return nil
}

func (g *CodeGen) releaseAllScopes(src string) {
	for i := len(g.scopeVars) - 1; i >= g.globalScopeDepth; i-- {
		vars := g.scopeVars[i]
		for j := len(vars) - 1; j >= 0; j-- {
			v := vars[j]
			if g.isRefType(v.Ty) && !v.IsStatic {
				g.emitRelease(v, src)
			}
		}
	}
}

func (g *CodeGen) releaseLoopScopes(src string) {
	depth := g.loopScopeDepth[len(g.loopScopeDepth)-1]
	for i := len(g.scopeVars) - 1; i >= depth; i-- {
		vars := g.scopeVars[i]
		for j := len(vars) - 1; j >= 0; j-- {
			v := vars[j]
			if g.isRefType(v.Ty) && !v.IsStatic {
				g.emitRelease(v, src)
			}
		}
	}
}

func (g *CodeGen) emitDefaultReturn(retTy, src string) {
	g.flushPendingReleases(src)
	g.releaseAllScopes(src)
	g.emitReturnDefaultFor(retTy, src)
}

func (g *CodeGen) emitReturnDefaultFor(retTy, src string) {
	switch {
	case retTy == "" || retTy == "void":
		g.w("return;")
	case isIntType(retTy):
		g.w("return 0;")
	case retTy == "f32" || retTy == "f64":
		g.w("return 0.0;")
	case retTy == "bool":
		g.w("return false;")
	case retTy == "str":
		g.w("return (__lang_rt_Str*)0;")
	case isListType(retTy) || isDictType(retTy):
		g.w("return (void*)0;")
	default:
		if _, ok := g.classDefs[retTy]; ok {
			g.wf("return (__lang_rt_Class_%s*)0;", retTy)
			return
		}
		if _, ok := g.ifaceDefs[retTy]; ok {
			g.wf("return (__lang_rt_Iface_%s){.obj = NULL, .vtbl = NULL};", retTy)
			return
		}
		if isTupleType(retTy) {
			g.wf("return (%s){0};", tupleStructName(retTy))
			return
		}
		if _, ok := g.structDefs[retTy]; ok {
			g.wf("return (%s){0};", g.cType(retTy))
			return
		}
		g.w("return 0;")
	}
}

func (g *CodeGen) flushPendingReleases(src string) {
	for _, v := range g.pendingReleases {
		g.emitRelease(v, src)
	}
	g.pendingReleases = nil
}

// emitArgSafe evaluates a call argument; if it produces an owned temp it
// schedules release at the end of the enclosing statement so it can't leak.
func (g *CodeGen) emitArgSafe(arg ast.Expr) (string, string, error) {
	ac, aty, err := g.emitExpr(arg)
	if err != nil {
		return "", "", err
	}
	if g.isRefType(aty) && !g.exprIsBorrowed(arg) {
		tmp := g.newTmp()
		g.wf("%s %s = %s;", g.cType(aty), tmp, ac)
		g.pendingReleases = append(g.pendingReleases, &VarInfo{CName: tmp, Ty: aty})
		return tmp, aty, nil
	}
	return ac, aty, nil
}

// exprIsBorrowed reports whether an expression's result is a +0 borrowed
// reference (a variable read, field access, subscript, downcast, literal
// none/string) rather than a +1 owned reference the caller must release.
func (g *CodeGen) exprIsBorrowed(e ast.Expr) bool {
	switch ex := e.(type) {
	case *ast.ENone:
		return true
	case *ast.EString:
		return true
	case *ast.EMemberAccess:
		return true
	case *ast.EIndex:
		return true
	case *ast.EAs:
		return true
	case *ast.ETuple:
		return false
	case *ast.ECall:
		if v, ok := ex.Callee.(*ast.EVar); ok && (v.Name == "get" || v.Name == "lookup") {
			return true
		}
		return false
	case *ast.EVar:
		return true
	}
	return false
}
