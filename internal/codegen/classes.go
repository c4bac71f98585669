package codegen

import "github.com/rill-lang/rillc/internal/ast"

func (g *CodeGen) emitIfaceTypes(iface *ast.InterfaceDecl) {
	name := iface.Name
	g.wf("typedef struct __lang_rt_Vtbl_%s {", name)
	g.ind++
	g.w("void (*retain)(void*);")
	g.w("void (*release)(void*);")
	for _, ms := range iface.MethodSigs {
		params := "void*"
		for _, p := range ms.Params[1:] {
			params += ", " + g.cType(p.Ty.Name)
		}
		g.wf("%s (*%s)(%s);", g.cType(ms.Ret.Name), ci(ms.Name), params)
	}
	g.ind--
	g.wf("} __lang_rt_Vtbl_%s;", name)
	g.w("")
	g.wf("typedef struct __lang_rt_Iface_%s {", name)
	g.ind++
	g.w("void* obj;")
	g.wf("__lang_rt_Vtbl_%s* vtbl;", name)
	g.ind--
	g.wf("} __lang_rt_Iface_%s;", name)
	g.w("")
}

func (g *CodeGen) emitVtableInstance(cls *ast.ClassDecl, iface *ast.InterfaceDecl) {
	cname, iname := cls.Name, iface.Name
	g.wf("static __lang_rt_Vtbl_%s __lang_rt_vtbl_%s_as_%s = {", iname, cname, iname)
	g.ind++
	g.wf(".retain = (void(*)(void*))__lang_rt_class_%s_retain,", cname)
	g.wf(".release = (void(*)(void*))__lang_rt_class_%s_release,", cname)
	for _, ms := range iface.MethodSigs {
		params := "void*"
		for _, p := range ms.Params[1:] {
			params += ", " + g.cType(p.Ty.Name)
		}
		g.wf(".%s = (%s(*)(%s))__lang_rt_class_%s_%s,", ci(ms.Name), g.cType(ms.Ret.Name), params, cname, ms.Name)
	}
	g.ind--
	g.w("};")
	g.w("")
}

func (g *CodeGen) emitStructTypedef(st *ast.StructDecl) {
	name := st.Name
	g.wf("typedef struct __lang_rt_Struct_%s_s {", name)
	g.ind++
	for _, fd := range st.Fields {
		g.wf("%s %s;", g.cType(fd.Ty.Name), ci(fd.Name))
	}
	g.ind--
	g.wf("} __lang_rt_Struct_%s;", name)
	for _, m := range st.Methods {
		params := sprintf("__lang_rt_Struct_%s self", name)
		for _, p := range m.Params[1:] {
			params += sprintf(", %s %s", g.cType(p.Ty.Name), ci(p.Name))
		}
		g.wf("static %s __lang_rt_struct_%s_%s(%s);", g.cType(m.Ret.Name), name, m.Name, params)
	}
	g.w("")
}

func (g *CodeGen) emitStructMethod(st *ast.StructDecl, m *ast.FuncDecl) error {
	name := st.Name
	params := sprintf("__lang_rt_Struct_%s self", name)
	for _, p := range m.Params[1:] {
		params += sprintf(", %s %s", g.cType(p.Ty.Name), ci(p.Name))
	}
	g.curFnRet = m.Ret.Name
	g.wf("static %s __lang_rt_struct_%s_%s(%s) {", g.cType(m.Ret.Name), name, m.Name, params)
	g.ind++
	g.pushScope()
	g.env[len(g.env)-1]["self"] = &VarInfo{CName: "self", Ty: name}
	for _, p := range m.Params[1:] {
		g.env[len(g.env)-1][p.Name] = &VarInfo{CName: ci(p.Name), Ty: p.Ty.Name}
	}
	for _, st2 := range m.Body.Stmts {
		if err := g.emitStmt(st2, false, false); err != nil {
			return err
		}
	}
	src := g.src(m.Pos)
	g.emitDefaultReturn(m.Ret.Name, src)
	g.popScope(src)
	g.ind--
	g.w("}")
	g.w("")
	g.curFnRet = ""
	return nil
}

func (g *CodeGen) emitClassStruct(cls *ast.ClassDecl) {
	name := cls.Name
	if info, ok := g.externTypeInfo[name]; ok {
		g.emitExternTypeStruct(name, info)
		return
	}
	g.wf("struct __lang_rt_Class_%s {", name)
	g.ind++
	g.w("__lang_rt_Rc rc;")
	for _, fd := range cls.Fields {
		g.wf("%s %s;", g.cType(fd.Ty.Name), ci(fd.Name))
	}
	g.ind--
	g.w("};")
	g.w("")
	g.wf("static void __lang_rt_class_%s_dtor(void* obj);", name)
	g.wf("static void __lang_rt_class_%s_retain(__lang_rt_Class_%s* o);", name, name)
	g.wf("static void __lang_rt_class_%s_release(__lang_rt_Class_%s* o);", name, name)
	for _, m := range cls.Methods {
		if m.Name == "init" {
			params := ""
			for _, p := range m.Params[1:] {
				if params != "" {
					params += ", "
				}
				params += sprintf("%s %s", g.cType(p.Ty.Name), ci(p.Name))
			}
			sep := ""
			if params != "" {
				sep = ","
			}
			g.wf("static __lang_rt_Class_%s* __lang_rt_class_%s_new(__lang_rt_Src __lang_rt__src%s %s);", name, name, sep, params)
			continue
		}
		params := sprintf("__lang_rt_Class_%s* self", name)
		for _, p := range m.Params[1:] {
			params += sprintf(", %s %s", g.cType(p.Ty.Name), ci(p.Name))
		}
		g.wf("static %s __lang_rt_class_%s_%s(%s);", g.cType(m.Ret.Name), name, m.Name, params)
	}
	g.w("")
}

func (g *CodeGen) emitExternTypeStruct(name string, info ast.ExternTypeInfo) {
	g.wf("struct __lang_rt_Class_%s {", name)
	g.ind++
	g.w("__lang_rt_Rc rc;")
	g.wf("%s* ptr;", info.CType)
	g.ind--
	g.w("};")
	g.w("")
	g.wf("static void __lang_rt_class_%s_dtor(void* obj);", name)
	g.wf("static void __lang_rt_class_%s_retain(__lang_rt_Class_%s* o);", name, name)
	g.wf("static void __lang_rt_class_%s_release(__lang_rt_Class_%s* o);", name, name)
	g.wf("static __lang_rt_Class_%s* __lang_rt_extern_%s_wrap(%s* ptr);", name, name, info.CType)
	g.w("")
}

func (g *CodeGen) emitExternTypeMethods(name string, info ast.ExternTypeInfo) {
	g.wf("static void __lang_rt_class_%s_dtor(void* obj) {", name)
	g.ind++
	g.wf("__lang_rt_Class_%s* self = (__lang_rt_Class_%s*)obj;", name, name)
	if info.Dtor != "" {
		g.wf("if (self->ptr) %s(self->ptr);", info.Dtor)
	}
	g.w("__LANG_RT_LEAK_UNTRACK(self);")
	g.w("free(self);")
	g.ind--
	g.w("}")
	g.w("")
	g.wf("static void __lang_rt_class_%s_retain(__lang_rt_Class_%s* o) { __lang_rt_retain(o); }", name, name)
	g.wf("static void __lang_rt_class_%s_release(__lang_rt_Class_%s* o) { __lang_rt_release(o, __lang_rt_class_%s_dtor); }", name, name, name)
	g.w("")
	g.wf("static __lang_rt_Class_%s* __lang_rt_extern_%s_wrap(%s* ptr) {", name, name, info.CType)
	g.ind++
	g.wf("__lang_rt_Class_%s* obj = (__lang_rt_Class_%s*)malloc(sizeof(__lang_rt_Class_%s));", name, name, name)
	g.w("__lang_rt_rc_init(&obj->rc);")
	g.wf("__LANG_RT_LEAK_TRACK(obj, %q, NULL, 0, 0);", name)
	g.w("obj->ptr = ptr;")
	g.w("return obj;")
	g.ind--
	g.w("}")
	g.w("")
}

func (g *CodeGen) emitClassMethods(cls *ast.ClassDecl) error {
	name := cls.Name
	if info, ok := g.externTypeInfo[name]; ok {
		g.emitExternTypeMethods(name, info)
		return nil
	}

	g.wf("static void __lang_rt_class_%s_dtor(void* obj) {", name)
	g.ind++
	g.wf("__lang_rt_Class_%s* self = (__lang_rt_Class_%s*)obj;", name, name)
	for _, fd := range cls.Fields {
		if !g.isRefType(fd.Ty.Name) {
			continue
		}
		field := sprintf("self->%s", ci(fd.Name))
		switch {
		case fd.Ty.Name == "str":
			g.wf("if (%s) __lang_rt_str_release(%s);", field, field)
		case isListType(fd.Ty.Name):
			g.wf("if (%s) __lang_rt_list_%s_release(%s);", field, elemTag(listElem(fd.Ty.Name)), field)
		case isDictType(fd.Ty.Name):
			g.wf("if (%s) __lang_rt_dict_%s_release(%s);", field, dictCombinedTag(fd.Ty.Name), field)
		default:
			if _, ok := g.ifaceDefs[fd.Ty.Name]; ok {
				g.wf("if (%s.obj) %s.vtbl->release(%s.obj);", field, field, field)
			} else if _, ok := g.classDefs[fd.Ty.Name]; ok {
				g.wf("if (%s) __lang_rt_class_%s_release(%s);", field, fd.Ty.Name, field)
			}
		}
	}
	g.w("__LANG_RT_LEAK_UNTRACK(self);")
	g.w("free(self);")
	g.ind--
	g.w("}")
	g.w("")

	g.wf("static void __lang_rt_class_%s_retain(__lang_rt_Class_%s* o) { __lang_rt_retain(o); }", name, name)
	g.wf("static void __lang_rt_class_%s_release(__lang_rt_Class_%s* o) { __lang_rt_release(o, __lang_rt_class_%s_dtor); }", name, name, name)
	g.w("")

	var initMethod *ast.FuncDecl
	for _, m := range cls.Methods {
		if m.Name == "init" {
			initMethod = m
			break
		}
	}

	params := ""
	if initMethod != nil {
		for _, p := range initMethod.Params[1:] {
			if params != "" {
				params += ", "
			}
			params += sprintf("%s %s", g.cType(p.Ty.Name), ci(p.Name))
		}
	}
	sep := ""
	if params != "" {
		sep = ","
	}
	g.wf("static __lang_rt_Class_%s* __lang_rt_class_%s_new(__lang_rt_Src __lang_rt__src%s %s) {", name, name, sep, params)
	g.ind++
	g.wf("__lang_rt_Class_%s* self = (__lang_rt_Class_%s*)__lang_rt_malloc(__lang_rt__src, sizeof(__lang_rt_Class_%s));", name, name, name)
	g.w("__lang_rt_rc_init(&self->rc);")
	g.wf("__LANG_RT_LEAK_TRACK(self, %q, __lang_rt__src.file, __lang_rt__src.line, __lang_rt__src.col);", name)
	for _, fd := range cls.Fields {
		field := sprintf("self->%s", ci(fd.Name))
		switch {
		case g.ifaceDefs[fd.Ty.Name] != nil:
			g.wf("%s.obj = NULL;", field)
			g.wf("%s.vtbl = NULL;", field)
		case g.isRefType(fd.Ty.Name):
			g.wf("%s = NULL;", field)
		case isIntType(fd.Ty.Name):
			g.wf("%s = 0;", field)
		case fd.Ty.Name == "f32" || fd.Ty.Name == "f64":
			g.wf("%s = 0.0;", field)
		case fd.Ty.Name == "bool":
			g.wf("%s = false;", field)
		default:
			if _, ok := g.enumVariants[fd.Ty.Name]; ok {
				g.wf("%s = 0;", field)
			}
		}
	}

	if initMethod != nil {
		g.pushScope()
		g.env[len(g.env)-1]["self"] = &VarInfo{CName: "self", Ty: name}
		for _, p := range initMethod.Params[1:] {
			vi := &VarInfo{CName: ci(p.Name), Ty: p.Ty.Name}
			g.env[len(g.env)-1][p.Name] = vi
			g.scopeVars[len(g.scopeVars)-1] = append(g.scopeVars[len(g.scopeVars)-1], vi)
		}
		for _, st := range initMethod.Body.Stmts {
			if err := g.emitStmt(st, false, false); err != nil {
				return err
			}
		}
		g.env = g.env[:len(g.env)-1]
		g.scopeVars = g.scopeVars[:len(g.scopeVars)-1]
	}

	g.w("return self;")
	g.ind--
	g.w("}")
	g.w("")

	for _, m := range cls.Methods {
		if m.Name == "init" {
			continue
		}
		if err := g.emitClassMethod(cls, m); err != nil {
			return err
		}
	}
	return nil
}

func isIntType(t string) bool {
	switch t {
	case "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64":
		return true
	}
	return false
}

func (g *CodeGen) emitClassMethod(cls *ast.ClassDecl, m *ast.FuncDecl) error {
	name := cls.Name
	params := sprintf("__lang_rt_Class_%s* self", name)
	for _, p := range m.Params[1:] {
		params += sprintf(", %s %s", g.cType(p.Ty.Name), ci(p.Name))
	}
	g.curFnRet = m.Ret.Name
	g.wf("static %s __lang_rt_class_%s_%s(%s) {", g.cType(m.Ret.Name), name, m.Name, params)
	g.ind++
	g.pushScope()
	g.env[len(g.env)-1]["self"] = &VarInfo{CName: "self", Ty: name}
	for _, p := range m.Params[1:] {
		g.env[len(g.env)-1][p.Name] = &VarInfo{CName: ci(p.Name), Ty: p.Ty.Name}
	}
	for _, st := range m.Body.Stmts {
		if err := g.emitStmt(st, false, false); err != nil {
			return err
		}
	}
	src := g.src(m.Pos)
	g.emitDefaultReturn(m.Ret.Name, src)
	g.popScope(src)
	g.ind--
	g.w("}")
	g.w("")
	g.curFnRet = ""
	return nil
}

// src formats a source-location constructor for the runtime's
// allocation-site and leak-tracking macros.
func (g *CodeGen) src(pos ast.Pos) string {
	return sprintf("__LANG_RT_SRC(%q, %d, %d)", pos.File, pos.Line, pos.Col)
}
