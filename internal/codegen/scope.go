package codegen

import "github.com/rill-lang/rillc/internal/ast"

// VarInfo is a single declared local: its mangled C name (mangled so
// shadowing in nested scopes never collides) and its Rill type.
type VarInfo struct {
	CName    string
	Ty       string
	IsStatic bool
}

func (g *CodeGen) w(s string) {
	g.out = append(g.out, indentStr(g.ind)+s)
}

func (g *CodeGen) wf(format string, args ...any) {
	g.w(sprintf(format, args...))
}

func indentStr(n int) string {
	b := make([]byte, n*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func (g *CodeGen) newTmp() string {
	g.tmp++
	return sprintf("_t%d", g.tmp)
}

func (g *CodeGen) pushScope() {
	g.env = append(g.env, map[string]*VarInfo{})
	g.scopeVars = append(g.scopeVars, nil)
}

// popScope releases every ref-typed, non-static local declared in this
// scope, in reverse declaration order, then discards the scope.
func (g *CodeGen) popScope(src string) {
	n := len(g.scopeVars) - 1
	vars := g.scopeVars[n]
	for i := len(vars) - 1; i >= 0; i-- {
		v := vars[i]
		if g.isRefType(v.Ty) && !v.IsStatic {
			g.emitRelease(v, src)
		}
	}
	g.scopeVars = g.scopeVars[:n]
	g.env = g.env[:n]
}

func (g *CodeGen) declareVar(name, ty string) *VarInfo {
	g.tmp++
	vi := &VarInfo{CName: sprintf("%s_%d", name, g.tmp), Ty: ty}
	top := len(g.env) - 1
	g.env[top][name] = vi
	g.scopeVars[top] = append(g.scopeVars[top], vi)
	return vi
}

func (g *CodeGen) lookup(name string, pos ast.Pos) (*VarInfo, error) {
	for i := len(g.env) - 1; i >= 0; i-- {
		if vi, ok := g.env[i][name]; ok {
			return vi, nil
		}
	}
	return nil, genErr(pos, "undefined variable %q", name)
}

// emitRelease dispatches a release call by type category. Primitives,
// enums, structs-without-ref-fields, and function pointers are no-ops.
func (g *CodeGen) emitRelease(v *VarInfo, src string) {
	g.emitReleaseExpr(v.CName, v.Ty, src)
}

func (g *CodeGen) emitReleaseExpr(cExpr, ty, src string) {
	switch {
	case ty == "str":
		g.wf("__lang_rt_str_release(%s); (void)%s;", cExpr, src)
	case isListType(ty):
		g.wf("__lang_rt_list_%s_release(%s); (void)%s;", elemTag(listElem(ty)), cExpr, src)
	case isDictType(ty):
		g.wf("__lang_rt_dict_%s_release(%s); (void)%s;", dictCombinedTag(ty), cExpr, src)
	default:
		if _, ok := g.ifaceDefs[ty]; ok {
			g.wf("if (%s.obj) %s.vtbl->release(%s.obj); (void)%s;", cExpr, cExpr, cExpr, src)
			return
		}
		if _, ok := g.classDefs[ty]; ok {
			g.wf("if (%s) __lang_rt_class_%s_release(%s); (void)%s;", cExpr, ty, cExpr, src)
			return
		}
		if isTupleType(ty) {
			for i, et := range tupleElemTypes(ty) {
				if g.isRefType(et) {
					g.emitReleaseExpr(sprintf("%s.f%d", cExpr, i), et, src)
				}
			}
		}
	}
}

// emitRetainValue retains a borrowed reference being stored into a new
// owning slot. No-op for value types.
func (g *CodeGen) emitRetainValue(ty, expr, src string) {
	switch {
	case ty == "str":
		g.wf("if (%s) __lang_rt_str_retain(%s); (void)%s;", expr, expr, src)
	case isListType(ty):
		g.wf("if (%s) __lang_rt_list_%s_retain(%s); (void)%s;", expr, elemTag(listElem(ty)), expr, src)
	case isDictType(ty):
		g.wf("if (%s) __lang_rt_dict_%s_retain(%s); (void)%s;", expr, dictCombinedTag(ty), expr, src)
	default:
		if _, ok := g.ifaceDefs[ty]; ok {
			g.wf("if (%s.obj) %s.vtbl->retain(%s.obj); (void)%s;", expr, expr, expr, src)
			return
		}
		if _, ok := g.classDefs[ty]; ok {
			g.wf("if (%s) __lang_rt_class_%s_retain(%s); (void)%s;", expr, ty, expr, src)
			return
		}
		if isTupleType(ty) {
			for i, et := range tupleElemTypes(ty) {
				if g.isRefType(et) {
					g.emitRetainValue(et, sprintf("%s.f%d", expr, i), src)
				}
			}
		}
	}
}

// maybeWrapIface wraps a class-typed expression into an interface fat
// pointer when the destination type is an interface the class implements.
func (g *CodeGen) maybeWrapIface(exprC, srcTy, dstTy string) string {
	if _, ok := g.ifaceDefs[dstTy]; ok {
		if _, ok := g.classDefs[srcTy]; ok {
			return sprintf("(__lang_rt_Iface_%s){.obj = %s, .vtbl = &__lang_rt_vtbl_%s_as_%s}", dstTy, exprC, srcTy, dstTy)
		}
		if srcTy == "none" {
			return sprintf("(__lang_rt_Iface_%s){.obj = NULL, .vtbl = NULL}", dstTy)
		}
	}
	return exprC
}
