package codegen

import (
	"github.com/rill-lang/rillc/internal/ast"
)

// markTypeUse records every container/tuple/fn-type shape reachable from
// a type name so emitContainerInstantiations can instantiate exactly the
// monomorphizations the program actually needs, and nothing else.
func (g *CodeGen) markTypeUse(ty string) {
	if isListType(ty) {
		elem := listElem(ty)
		g.usedListTags[elemTag(elem)] = true
		g.markTypeUse(elem)
		return
	}
	if isDictType(ty) {
		g.usedDictTags[dictCombinedTag(ty)] = true
		g.markTypeUse(keyOf(ty))
		g.markTypeUse(valOf(ty))
		return
	}
	if isFnType(ty) {
		g.usedFnTypes[ty] = true
		return
	}
	if isTupleType(ty) {
		g.usedTuples[ty] = true
		for _, et := range tupleElemTypes(ty) {
			g.markTypeUse(et)
		}
	}
}

func keyOf(dictTy string) string {
	// Dict[K,V] -> K
	inner := dictTy[5 : len(dictTy)-1]
	depth := 0
	for i, ch := range inner {
		switch ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				return inner[:i]
			}
		}
	}
	return inner
}

func valOf(dictTy string) string {
	inner := dictTy[5 : len(dictTy)-1]
	depth := 0
	for i, ch := range inner {
		switch ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				return inner[i+1:]
			}
		}
	}
	return ""
}

var listDictOps = map[string]bool{"List": true, "append": true, "get": true, "set": true, "pop": true, "remove": true}
var dictDictOps = map[string]bool{"Dict": true, "put": true, "lookup": true, "has": true}

func (g *CodeGen) collectTypeUses(prog *ast.Program) {
	for _, f := range prog.Functions {
		if len(f.TypeParams) > 0 {
			continue
		}
		g.markTypeUse(f.Ret.Name)
		for _, p := range f.Params {
			g.markTypeUse(p.Ty.Name)
		}
		g.collectStmtTypes(f.Body)
	}
	for _, cls := range prog.Classes {
		for _, fd := range cls.Fields {
			g.markTypeUse(fd.Ty.Name)
		}
		for _, m := range cls.Methods {
			g.markTypeUse(m.Ret.Name)
			for _, p := range m.Params {
				if p.Name != "self" {
					g.markTypeUse(p.Ty.Name)
				}
			}
			g.collectStmtTypes(m.Body)
		}
	}
	for _, st := range prog.Structs {
		for _, fd := range st.Fields {
			g.markTypeUse(fd.Ty.Name)
		}
		for _, m := range st.Methods {
			g.markTypeUse(m.Ret.Name)
			for _, p := range m.Params {
				if p.Name != "self" {
					g.markTypeUse(p.Ty.Name)
				}
			}
			g.collectStmtTypes(m.Body)
		}
	}
	for _, st := range prog.TopLevel {
		g.collectStmtTypes(st)
	}
}

func (g *CodeGen) collectStmtTypes(st ast.Stmt) {
	switch s := st.(type) {
	case *ast.SVarDecl:
		if s.Ty != nil {
			g.markTypeUse(s.Ty.Name)
		}
		g.collectExprTypes(s.Value)
	case *ast.STupleDestructure:
		g.collectExprTypes(s.Value)
	case *ast.SAssign:
		g.collectExprTypes(s.Value)
	case *ast.SMemberAssign:
		g.collectExprTypes(s.Obj)
		g.collectExprTypes(s.Value)
	case *ast.SIndexAssign:
		g.collectExprTypes(s.Obj)
		g.collectExprTypes(s.Index)
		g.collectExprTypes(s.Value)
	case *ast.SExpr:
		g.collectExprTypes(s.Value)
	case *ast.SReturn:
		if s.Value != nil {
			g.collectExprTypes(s.Value)
		}
	case *ast.SIf:
		for _, arm := range s.Arms {
			if arm.Cond != nil {
				g.collectExprTypes(arm.Cond)
			}
			for _, s2 := range arm.Block.Stmts {
				g.collectStmtTypes(s2)
			}
		}
	case *ast.SWhile:
		g.collectExprTypes(s.Cond)
		for _, s2 := range s.Body.Stmts {
			g.collectStmtTypes(s2)
		}
	case *ast.SFor:
		g.markTypeUse(s.VarTy.Name)
		g.collectExprTypes(s.Iter)
		for _, s2 := range s.Body.Stmts {
			g.collectStmtTypes(s2)
		}
	case *ast.SBlock:
		for _, s2 := range s.Block.Stmts {
			g.collectStmtTypes(s2)
		}
	}
}

func (g *CodeGen) collectExprTypes(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.EIs:
		g.collectExprTypes(ex.Lhs)
	case *ast.EAs:
		g.collectExprTypes(ex.Lhs)
	case *ast.EUnary:
		g.collectExprTypes(ex.Rhs)
	case *ast.EBinary:
		g.collectExprTypes(ex.Lhs)
		g.collectExprTypes(ex.Rhs)
	case *ast.EMemberAccess:
		if v, ok := ex.Obj.(*ast.EVar); ok {
			if _, isEnum := g.enumVariants[v.Name]; isEnum {
				return
			}
		}
		g.collectExprTypes(ex.Obj)
	case *ast.EIndex:
		g.collectExprTypes(ex.Obj)
		g.collectExprTypes(ex.Index)
	case *ast.ECall:
		if v, ok := ex.Callee.(*ast.EVar); ok {
			if v.Name == "range" {
				g.usedListTags["I64"] = true
			}
			if ex.TypeParam != "" {
				switch {
				case listDictOps[v.Name]:
					g.usedListTags[elemTag(ex.TypeParam)] = true
				case dictDictOps[v.Name]:
					k := keyOf("Dict[" + ex.TypeParam + "]")
					val := valOf("Dict[" + ex.TypeParam + "]")
					g.usedDictTags[elemTag(k)+"_"+elemTag(val)] = true
				}
			}
		}
		if ex.TypeParam != "" {
			if v, ok := ex.Callee.(*ast.EVar); ok && dictDictOps[v.Name] {
				g.markTypeUse("Dict[" + ex.TypeParam + "]")
			} else {
				g.markTypeUse(ex.TypeParam)
			}
		}
		g.collectExprTypes(ex.Callee)
		for _, a := range ex.Args {
			g.collectExprTypes(a)
		}
	case *ast.ETuple:
		for _, el := range ex.Elems {
			g.collectExprTypes(el)
		}
	case *ast.EListLit:
		g.usedListTags[elemTag(ex.ElemType)] = true
		g.markTypeUse(ex.ElemType)
		for _, el := range ex.Elems {
			g.collectExprTypes(el)
		}
	case *ast.EDictLit:
		g.usedDictTags[elemTag(ex.KeyType)+"_"+elemTag(ex.ValType)] = true
		g.markTypeUse("Dict[" + ex.KeyType + "," + ex.ValType + "]")
		for _, k := range ex.Keys {
			g.collectExprTypes(k)
		}
		for _, v := range ex.Vals {
			g.collectExprTypes(v)
		}
	}
}

func (g *CodeGen) emitTupleTypedefs() {
	if len(g.usedTuples) == 0 {
		return
	}
	emitted := map[string]bool{}
	var emitOne func(ty string)
	emitOne = func(ty string) {
		if emitted[ty] {
			return
		}
		for _, et := range tupleElemTypes(ty) {
			if isTupleType(et) && g.usedTuples[et] {
				emitOne(et)
			}
		}
		name := tupleStructName(ty)
		elems := tupleElemTypes(ty)
		fields := ""
		for i, et := range elems {
			if i > 0 {
				fields += "; "
			}
			fields += sprintf("%s f%d", g.cType(et), i)
		}
		g.wf("typedef struct { %s; } %s;", fields, name)
		emitted[ty] = true
	}
	for _, ty := range sortedStrings(keysOfBool(g.usedTuples)) {
		emitOne(ty)
	}
	g.w("")
}

func keysOfBool(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedStrings(in []string) []string {
	out := append([]string{}, in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

type primInfo struct {
	cType string
	isRef bool
}

var containerPrims = map[string]primInfo{
	"I8": {"int8_t", false}, "I16": {"int16_t", false}, "I32": {"int32_t", false}, "I64": {"int64_t", false},
	"U8": {"uint8_t", false}, "U16": {"uint16_t", false}, "U32": {"uint32_t", false}, "U64": {"uint64_t", false},
	"F32": {"float", false}, "F64": {"double", false},
	"BOOL": {"bool", false}, "STR": {"__lang_rt_Str*", true},
}

// tagCat classifies a container element tag for drop/clone macro selection.
func (g *CodeGen) tagCat(tag string) string {
	if _, ok := containerPrims[tag]; ok {
		return "prim"
	}
	if len(tag) > 5 && tag[:5] == "List_" {
		return "list"
	}
	if len(tag) > 5 && tag[:5] == "Dict_" {
		return "dict"
	}
	if len(tag) > 13 && tag[:13] == "__lang_rt_Fn_" {
		return "fn"
	}
	if _, ok := g.ifaceDefs[tag]; ok {
		return "iface"
	}
	if _, ok := g.structDefs[tag]; ok {
		return "struct"
	}
	return "class"
}

func splitDictTag(combined string) (string, string) {
	for i := 0; i < len(combined); i++ {
		if combined[i] == '_' {
			return combined[:i], combined[i+1:]
		}
	}
	return combined, ""
}

// dropClone returns the C element type plus DROP/CLONE macro definitions
// for one container element tag, specialized by its type category.
func (g *CodeGen) dropClone(tag, vprefix, nameTag string) (string, string, string) {
	nt := nameTag
	if nt == "" {
		nt = tag
	}
	switch g.tagCat(tag) {
	case "prim":
		info := containerPrims[tag]
		if info.isRef {
			return info.cType,
				sprintf("#define __LANG_RT_%sDROP_%s(x) do { __lang_rt_str_release((x)); } while(0)", vprefix, nt),
				sprintf("#define __LANG_RT_%sCLONE_%s(dst, src) do { (dst) = (src); __lang_rt_str_retain((src)); } while(0)", vprefix, nt)
		}
		return info.cType,
			sprintf("#define __LANG_RT_%sDROP_%s(x) ((void)(x))", vprefix, nt),
			sprintf("#define __LANG_RT_%sCLONE_%s(dst, src) do { (dst) = (src); } while(0)", vprefix, nt)
	case "list":
		inner := tag[5:]
		return sprintf("__lang_rt_List_%s*", inner),
			sprintf("#define __LANG_RT_%sDROP_%s(x) do { if ((x)) __lang_rt_list_%s_release((x)); } while(0)", vprefix, nt, inner),
			sprintf("#define __LANG_RT_%sCLONE_%s(dst, src) do { (dst) = (src); if ((src)) __lang_rt_list_%s_retain((src)); } while(0)", vprefix, nt, inner)
	case "dict":
		inner := tag[5:]
		return sprintf("__lang_rt_Dict_%s*", inner),
			sprintf("#define __LANG_RT_%sDROP_%s(x) do { if ((x)) __lang_rt_dict_%s_release((x)); } while(0)", vprefix, nt, inner),
			sprintf("#define __LANG_RT_%sCLONE_%s(dst, src) do { (dst) = (src); if ((src)) __lang_rt_dict_%s_retain((src)); } while(0)", vprefix, nt, inner)
	case "fn":
		return tag,
			sprintf("#define __LANG_RT_%sDROP_%s(x) ((void)(x))", vprefix, nt),
			sprintf("#define __LANG_RT_%sCLONE_%s(dst, src) do { (dst) = (src); } while(0)", vprefix, nt)
	case "iface":
		return sprintf("__lang_rt_Iface_%s", tag),
			sprintf("#define __LANG_RT_%sDROP_%s(x) do { if ((x).obj) (x).vtbl->release((x).obj); } while(0)", vprefix, nt),
			sprintf("#define __LANG_RT_%sCLONE_%s(dst, src) do { (dst) = (src); if ((src).obj) (src).vtbl->retain((src).obj); } while(0)", vprefix, nt)
	case "struct":
		return sprintf("__lang_rt_Struct_%s", tag),
			sprintf("#define __LANG_RT_%sDROP_%s(x) ((void)(x))", vprefix, nt),
			sprintf("#define __LANG_RT_%sCLONE_%s(dst, src) do { (dst) = (src); } while(0)", vprefix, nt)
	default: // class
		return sprintf("__lang_rt_Class_%s*", tag),
			sprintf("#define __LANG_RT_%sDROP_%s(x) do { if ((x)) __lang_rt_class_%s_release((x)); } while(0)", vprefix, nt, tag),
			sprintf("#define __LANG_RT_%sCLONE_%s(dst, src) do { (dst) = (src); if ((src)) __lang_rt_class_%s_retain((src)); } while(0)", vprefix, nt, tag)
	}
}

// emitContainerInstantiations forward-declares class types used only
// inside a container, then topologically emits every List[T]/Dict[K,V]
// the program needs — inner containers first — via the runtime's
// LIST_DEFINE/DICT_DEFINE macros.
func (g *CodeGen) emitContainerInstantiations() {
	classTags := map[string]bool{}
	for tag := range g.usedListTags {
		if g.tagCat(tag) == "class" {
			classTags[tag] = true
		}
	}
	for combined := range g.usedDictTags {
		_, valTag := splitDictTag(combined)
		if g.tagCat(valTag) == "class" {
			classTags[valTag] = true
		}
	}
	if len(classTags) > 0 {
		g.w("// ---- forward declarations for class types in containers ----")
		for _, tag := range sortedStrings(keysOfBool(classTags)) {
			g.wf("typedef struct __lang_rt_Class_%s __lang_rt_Class_%s;", tag, tag)
			g.wf("static void __lang_rt_class_%s_retain(__lang_rt_Class_%s* o);", tag, tag)
			g.wf("static void __lang_rt_class_%s_release(__lang_rt_Class_%s* o);", tag, tag)
		}
		g.w("")
	}

	for combined := range g.usedDictTags {
		keyTag, _ := splitDictTag(combined)
		g.usedListTags[keyTag] = true
	}

	type entry struct{ kind, tag string }
	var ordered []entry
	visited := map[entry]bool{}
	var visit func(kind, tag string)
	visit = func(kind, tag string) {
		e := entry{kind, tag}
		if visited[e] {
			return
		}
		visited[e] = true
		if kind == "list" {
			switch g.tagCat(tag) {
			case "list":
				visit("list", tag[5:])
			case "dict":
				visit("dict", tag[5:])
			}
		} else {
			_, valTag := splitDictTag(tag)
			switch g.tagCat(valTag) {
			case "list":
				visit("list", valTag[5:])
			case "dict":
				visit("dict", valTag[5:])
			}
		}
		ordered = append(ordered, e)
	}
	for _, tag := range sortedStrings(keysOfBool(g.usedListTags)) {
		visit("list", tag)
	}
	for _, tag := range sortedStrings(keysOfBool(g.usedDictTags)) {
		visit("dict", tag)
	}

	if len(ordered) > 0 {
		g.w("// ---- container instantiations ----")
	}
	for _, e := range ordered {
		if e.kind == "list" {
			ct, drop, clone := g.dropClone(e.tag, "", "")
			g.w(drop)
			g.w(clone)
			g.wf("__LANG_RT_LIST_DEFINE(%s, %s, __LANG_RT_DROP_%s, __LANG_RT_CLONE_%s)", e.tag, ct, e.tag, e.tag)
			g.w("")
			continue
		}
		keyTag, valTag := splitDictTag(e.tag)
		vct, vdrop, vclone := g.dropClone(valTag, "V", e.tag)
		_ = vct
		g.w(vdrop)
		g.w(vclone)
		var kct, khash, keq, kclone, kdrop, knull string
		if keyTag == "STR" {
			kct, khash, keq, kclone, kdrop, knull =
				"__lang_rt_Str*", "__LANG_RT_KHASH_STR", "__LANG_RT_KEQ_STR",
				"__LANG_RT_KCLONE_STR", "__LANG_RT_KDROP_STR", "__LANG_RT_KNULL_STR"
		} else {
			kct = "int64_t"
			if info, ok := containerPrims[keyTag]; ok {
				kct = info.cType
			}
			khash, keq, kclone, kdrop, knull =
				"__LANG_RT_KHASH_INT", "__LANG_RT_KEQ_INT",
				"__LANG_RT_KCLONE_INT", "__LANG_RT_KDROP_INT", "__LANG_RT_KNULL_INT"
		}
		g.wf("__LANG_RT_DICT_DEFINE(%s, %s, %s, %s, %s, %s, %s, %s, __LANG_RT_VCLONE_%s, __LANG_RT_VDROP_%s)",
			e.tag, kct, vct, khash, keq, kclone, kdrop, knull, e.tag, e.tag)
		g.w("")
	}

	if g.usedListTags["I64"] {
		g.w(`#include "rt_range.h"`)
		g.w("")
	}
	if len(g.usedDictTags) > 0 {
		for _, combined := range sortedStrings(keysOfBool(g.usedDictTags)) {
			keyTag, _ := splitDictTag(combined)
			g.wf("__LANG_RT_DICT_KEYS_DEFINE(%s, %s)", combined, keyTag)
		}
		g.w("")
	}
}
