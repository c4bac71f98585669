package module

import (
	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/manifest"
)

// mergeProgram splices src's declarations into dst, inserting at the head
// so imports appear before the root's own declarations. Names already
// present in dst are skipped silently — this is what makes diamond
// imports of the same extern library (or, transitively, the same module)
// safe.
func mergeProgram(dst, src *ast.Program) {
	seen := map[string]bool{}
	for _, f := range dst.Functions {
		seen[f.Name] = true
	}
	for _, c := range dst.Classes {
		seen[c.Name] = true
	}
	for _, s := range dst.Structs {
		seen[s.Name] = true
	}
	for _, i := range dst.Interfaces {
		seen[i.Name] = true
	}
	for _, e := range dst.Enums {
		seen[e.Name] = true
	}

	var funcs []*ast.FuncDecl
	for _, f := range src.Functions {
		if !seen[f.Name] {
			funcs = append(funcs, f)
			seen[f.Name] = true
		}
	}
	dst.Functions = append(funcs, dst.Functions...)

	var classes []*ast.ClassDecl
	for _, c := range src.Classes {
		if !seen[c.Name] {
			classes = append(classes, c)
			seen[c.Name] = true
		}
	}
	dst.Classes = append(classes, dst.Classes...)

	var structs []*ast.StructDecl
	for _, s := range src.Structs {
		if !seen[s.Name] {
			structs = append(structs, s)
			seen[s.Name] = true
		}
	}
	dst.Structs = append(structs, dst.Structs...)

	var ifaces []*ast.InterfaceDecl
	for _, i := range src.Interfaces {
		if !seen[i.Name] {
			ifaces = append(ifaces, i)
			seen[i.Name] = true
		}
	}
	dst.Interfaces = append(ifaces, dst.Interfaces...)

	var enums []*ast.EnumDecl
	for _, e := range src.Enums {
		if !seen[e.Name] {
			enums = append(enums, e)
			seen[e.Name] = true
		}
	}
	dst.Enums = append(enums, dst.Enums...)

	if dst.ExternTypes == nil {
		dst.ExternTypes = map[string]ast.ExternTypeInfo{}
	}
	for k, v := range src.ExternTypes {
		if _, ok := dst.ExternTypes[k]; !ok {
			dst.ExternTypes[k] = v
		}
	}
	if dst.ExternConsts == nil {
		dst.ExternConsts = map[string]ast.ExternConstInfo{}
	}
	for k, v := range src.ExternConsts {
		if _, ok := dst.ExternConsts[k]; !ok {
			dst.ExternConsts[k] = v
		}
	}
	dst.ExternIncludes = appendUnique(dst.ExternIncludes, src.ExternIncludes...)
	dst.ExternCflags = appendUnique(dst.ExternCflags, src.ExternCflags...)
	dst.ExternLdflags = appendUnique(dst.ExternLdflags, src.ExternLdflags...)
}

func appendUnique(dst []string, items ...string) []string {
	seen := map[string]bool{}
	for _, d := range dst {
		seen[d] = true
	}
	for _, it := range items {
		if !seen[it] {
			dst = append(dst, it)
			seen[it] = true
		}
	}
	return dst
}

// rewriteAliasRefs rewrites `alias.X` references inside prog's own
// (not-yet-merged) declarations into the mangled `alias__X` form, using
// rm (the rename map computed for the module just loaded under alias).
// This is the root-program side of name mangling: the imported module's
// own body was already rewritten by RenameProgram.
func rewriteAliasRefs(prog *ast.Program, alias string, rm renameMap) {
	onType := func(t string) string { return rewriteDottedType(t, alias, rm) }

	rewriteFor := func(locals map[string]bool) func(ast.Expr) ast.Expr {
		return func(e ast.Expr) ast.Expr {
			if ma, ok := e.(*ast.EMemberAccess); ok {
				if v, ok := ma.Obj.(*ast.EVar); ok && v.Name == alias && !locals[alias] {
					if mangled, ok := rm[ma.Field]; ok {
						return &ast.EVar{Name: mangled, Pos: ma.Pos}
					}
				}
			}
			return e
		}
	}

	for _, f := range prog.Functions {
		for _, p := range f.Params {
			p.Ty.Name = onType(p.Ty.Name)
		}
		f.Ret.Name = onType(f.Ret.Name)
		if f.Body != nil {
			locals := ast.CollectLocalNames(f.Params, f.Body.Stmts)
			ast.WalkStmts(f.Body.Stmts, rewriteFor(locals), onType)
		}
	}
	for _, c := range prog.Classes {
		for _, fd := range c.Fields {
			fd.Ty.Name = onType(fd.Ty.Name)
		}
		for _, m := range c.Methods {
			for _, p := range m.Params {
				p.Ty.Name = onType(p.Ty.Name)
			}
			m.Ret.Name = onType(m.Ret.Name)
			if m.Body != nil {
				locals := ast.CollectLocalNames(m.Params, m.Body.Stmts)
				ast.WalkStmts(m.Body.Stmts, rewriteFor(locals), onType)
			}
		}
	}
	ast.WalkStmts(prog.TopLevel, rewriteFor(nil), onType)
}

func rewriteDottedType(ty, alias string, rm renameMap) string {
	if ty == "" {
		return ty
	}
	prefix := alias + "."
	return identWithDotRe.ReplaceAllStringFunc(ty, func(word string) string {
		if len(word) > len(prefix) && word[:len(prefix)] == prefix {
			field := word[len(prefix):]
			if mangled, ok := rm[field]; ok {
				return mangled
			}
		}
		return word
	})
}

// synthesizeExtern injects AST declarations for one `extern libname as
// alias` into prog, per manifest m. Types become opaque extern classes,
// functions get their extern C name tagged, constants become sentinel
// globals whose real C expression lives in prog.ExternConsts.
func synthesizeExtern(prog *ast.Program, m *manifest.Manifest, alias string) renameMap {
	if prog.ExternTypes == nil {
		prog.ExternTypes = map[string]ast.ExternTypeInfo{}
	}
	if prog.ExternConsts == nil {
		prog.ExternConsts = map[string]ast.ExternConstInfo{}
	}

	existingClasses := map[string]bool{}
	for _, c := range prog.Classes {
		existingClasses[c.Name] = true
	}
	existingFuncs := map[string]bool{}
	for _, f := range prog.Functions {
		existingFuncs[f.Name] = true
	}

	typeMangled := map[string]string{} // manifest type name -> mangled class name
	for _, t := range m.Types {
		mangled := MangleName(alias, t.Name)
		typeMangled[t.Name] = mangled
		if existingClasses[mangled] {
			continue
		}
		prog.Classes = append([]*ast.ClassDecl{{Name: mangled, Extern: true}}, prog.Classes...)
		prog.ExternTypes[mangled] = ast.ExternTypeInfo{CType: t.CType, Dtor: t.CDtor}
		existingClasses[mangled] = true
	}

	rewriteOwnType := func(ty string) string {
		if mangled, ok := typeMangled[ty]; ok {
			return mangled
		}
		return ty
	}

	rm := renameMap{}
	for orig, mangled := range typeMangled {
		rm[orig] = mangled
	}

	for _, fn := range m.Funcs {
		mangled := MangleName(alias, fn.Name)
		rm[fn.Name] = mangled
		if existingFuncs[mangled] {
			continue
		}
		fd := &ast.FuncDecl{Name: mangled, ExternCName: fn.CName}
		for _, p := range fn.Params {
			fd.Params = append(fd.Params, &ast.Param{Name: p.Name, Ty: ast.TypeRef{Name: rewriteOwnType(p.Ty)}})
		}
		fd.Ret = ast.TypeRef{Name: rewriteOwnType(fn.Ret)}
		if fn.IsDtor && len(fn.Params) > 0 {
			fd.ExternDtorFor = typeMangled[fn.Params[0].Ty]
		}
		prog.Functions = append([]*ast.FuncDecl{fd}, prog.Functions...)
		existingFuncs[mangled] = true
	}

	for _, c := range m.Consts {
		mangled := MangleName(alias, c.Name)
		rm[c.Name] = mangled
		if _, ok := prog.ExternConsts[mangled]; ok {
			continue
		}
		prog.ExternConsts[mangled] = ast.ExternConstInfo{CExpr: c.CExpr, Type: c.Ty}
		prog.TopLevel = append([]ast.Stmt{&ast.SVarDecl{
			Name:  mangled,
			Ty:    &ast.TypeRef{Name: c.Ty},
			Value: sentinelLiteral(c.Ty),
		}}, prog.TopLevel...)
	}

	if m.CSource != "" {
		prog.ExternIncludes = appendUnique(prog.ExternIncludes, m.CSource)
	}
	prog.ExternCflags = appendUnique(prog.ExternCflags, m.Cflags...)
	prog.ExternLdflags = appendUnique(prog.ExternLdflags, m.Ldflags...)
	return rm
}

// sentinelLiteral produces a placeholder value of the given primitive
// type for a type-checking pass to assign a type to; codegen never
// emits it; it substitutes the manifest's real C expression instead.
func sentinelLiteral(ty string) ast.Expr {
	switch ty {
	case "f32", "f64":
		return &ast.EFloat{Value: 0}
	case "bool":
		return &ast.EBool{Value: false}
	case "str":
		return &ast.EString{Value: ""}
	default:
		return &ast.EInt{Value: 0}
	}
}
