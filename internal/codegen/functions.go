package codegen

import (
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
)

func (g *CodeGen) fnProto(f *ast.FuncDecl) string {
	retC := g.cType(f.Ret.Name)
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = sprintf("%s %s", g.cType(p.Ty.Name), ci(p.Name))
	}
	paramsC := strings.Join(params, ", ")
	if paramsC == "" {
		paramsC = "void"
	}
	return sprintf("static %s __lang_rt_fn_%s(%s)", retC, f.Name, paramsC)
}

func (g *CodeGen) emitExternWrapper(f *ast.FuncDecl) error {
	g.wf("%s {", g.fnProto(f))
	g.ind++
	args := make([]string, len(f.Params))
	for i, p := range f.Params {
		if _, ok := g.externTypeInfo[p.Ty.Name]; ok {
			args[i] = ci(p.Name) + "->ptr"
		} else {
			args[i] = ci(p.Name)
		}
	}
	argsStr := strings.Join(args, ", ")

	retTy := f.Ret.Name
	switch {
	case retTy == "void":
		g.wf("%s(%s);", f.ExternCName, argsStr)
	default:
		if _, ok := g.externTypeInfo[retTy]; ok {
			g.wf("return __lang_rt_extern_%s_wrap(%s(%s));", retTy, f.ExternCName, argsStr)
		} else {
			g.wf("return %s(%s);", f.ExternCName, argsStr)
		}
	}
	g.ind--
	g.w("}")
	return nil
}

func (g *CodeGen) emitFunction(f *ast.FuncDecl) error {
	g.curFnRet = f.Ret.Name
	g.wf("%s {", g.fnProto(f))
	g.ind++
	g.pushScope()

	// Parameters are borrowed from the caller: declared in env but not in
	// scope_vars, so popScope never releases them.
	for _, p := range f.Params {
		g.env[len(g.env)-1][p.Name] = &VarInfo{CName: ci(p.Name), Ty: p.Ty.Name}
	}

	for _, st := range f.Body.Stmts {
		if err := g.emitStmt(st, false, false); err != nil {
			return err
		}
	}

	src := g.src(f.Pos)
	g.emitDefaultReturn(f.Ret.Name, src)
	g.popScope(src)
	g.ind--
	g.w("}")
	g.curFnRet = ""
	return nil
}

func (g *CodeGen) emitGlobalVars(prog *ast.Program) {
	g.pushScope()
	for _, st := range prog.TopLevel {
		vd, ok := st.(*ast.SVarDecl)
		if !ok {
			continue
		}
		if _, ok := g.externConsts[vd.Name]; ok {
			continue
		}
		ty := vd.Ty.Name
		ct := g.cType(ty)
		g.markTypeUse(ty)
		vi := g.declareVar(vd.Name, ty)
		if g.isRefType(ty) {
			g.wf("static %s %s = {0};", ct, vi.CName)
			continue
		}
		if _, ok := g.ifaceDefs[ty]; ok {
			g.wf("static %s %s = {0};", ct, vi.CName)
			continue
		}
		if _, ok := g.structDefs[ty]; ok {
			g.wf("static %s %s = {0};", ct, vi.CName)
			continue
		}
		g.wf("static %s %s = 0;", ct, vi.CName)
	}
	g.w("")
}

func (g *CodeGen) emitProgramBootstrap(prog *ast.Program) error {
	g.w("static void __lang_rt_program(void) {")
	g.ind++
	for _, st := range prog.TopLevel {
		if vd, ok := st.(*ast.SVarDecl); ok {
			if _, ok := g.externConsts[vd.Name]; ok {
				continue
			}
			vi, err := g.lookup(vd.Name, vd.Pos)
			if err != nil {
				return err
			}
			src := g.src(vd.Pos)
			exprC, exprTy, err := g.emitExpr(vd.Value)
			if err != nil {
				return err
			}
			exprC = g.maybeWrapIface(exprC, exprTy, vd.Ty.Name)
			g.wf("%s = %s;", vi.CName, exprC)
			if g.isRefType(vd.Ty.Name) && g.exprIsBorrowed(vd.Value) {
				g.emitRetainValue(vd.Ty.Name, vi.CName, src)
			}
			g.flushPendingReleases(src)
			continue
		}
		if err := g.emitStmt(st, false, false); err != nil {
			return err
		}
	}
	for i := g.globalScopeDepth - 1; i >= 0; i-- {
		vars := g.scopeVars[i]
		for j := len(vars) - 1; j >= 0; j-- {
			v := vars[j]
			if g.isRefType(v.Ty) {
				g.emitReleaseExpr(v.CName, v.Ty, `"global cleanup"`)
			}
		}
	}
	g.w("__LANG_RT_LEAK_REPORT();")
	g.ind--
	g.w("}")
	return nil
}

func (g *CodeGen) emitMain(prog *ast.Program) {
	g.w("int main(int argc, char** argv) {")
	g.ind++
	g.w("__lang_rt_argc_ = argc;")
	g.w("__lang_rt_argv_ = argv;")
	g.w("__lang_rt_program();")
	g.w("return 0;")
	g.ind--
	g.w("}")
}
