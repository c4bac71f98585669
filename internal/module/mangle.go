package module

import (
	"regexp"
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
)

// IsMangled reports whether name already contains the `__` mangling
// separator, meaning it came from a transitive import and should be left
// alone rather than re-prefixed.
func IsMangled(name string) bool {
	return strings.Contains(name, "__")
}

// MangleName produces `alias__name`, or returns name unchanged if it is
// already mangled.
func MangleName(alias, name string) string {
	if IsMangled(name) {
		return name
	}
	return alias + "__" + name
}

// renameMap describes every top-level name visible from an imported
// module's alias, keyed by its original name, valued by its mangled form.
type renameMap map[string]string

// collectTopLevelNames gathers every function/class/struct/interface/enum
// name declared at the top level of prog. Names already mangled by a
// deeper, transitive import are included; RenameProgram skips them.
func collectTopLevelNames(prog *ast.Program) []string {
	var names []string
	for _, f := range prog.Functions {
		names = append(names, f.Name)
	}
	for _, c := range prog.Classes {
		names = append(names, c.Name)
	}
	for _, s := range prog.Structs {
		names = append(names, s.Name)
	}
	for _, i := range prog.Interfaces {
		names = append(names, i.Name)
	}
	for _, e := range prog.Enums {
		names = append(names, e.Name)
	}
	return names
}

// RenameProgram applies `alias__` mangling to every top-level declaration
// in prog and rewrites every reference to those names throughout prog's
// bodies and type annotations. Scope-aware: a parameter or local that
// shadows a top-level name is left alone within that function's body.
func RenameProgram(prog *ast.Program, alias string) renameMap {
	rm := renameMap{}
	for _, name := range collectTopLevelNames(prog) {
		if IsMangled(name) {
			continue
		}
		rm[name] = MangleName(alias, name)
	}
	if len(rm) == 0 {
		return rm
	}

	for _, f := range prog.Functions {
		renameFuncDecl(f, rm)
	}
	for _, c := range prog.Classes {
		for _, m := range c.Methods {
			renameFuncDecl(m, rm)
		}
		for _, fd := range c.Fields {
			fd.Ty.Name = rewriteTypeString(fd.Ty.Name, rm)
		}
		for i, impl := range c.Implements {
			if mangled, ok := rm[impl]; ok {
				c.Implements[i] = mangled
			}
		}
	}
	for _, s := range prog.Structs {
		for _, m := range s.Methods {
			renameFuncDecl(m, rm)
		}
		for _, fd := range s.Fields {
			fd.Ty.Name = rewriteTypeString(fd.Ty.Name, rm)
		}
	}
	for _, i := range prog.Interfaces {
		for _, sig := range i.MethodSigs {
			for _, p := range sig.Params {
				p.Ty.Name = rewriteTypeString(p.Ty.Name, rm)
			}
			sig.Ret.Name = rewriteTypeString(sig.Ret.Name, rm)
		}
	}
	renameStmts(prog.TopLevel, nil, rm)

	// Rename the declarations themselves last, once all reference
	// rewriting (which reads the original names) is complete.
	for _, f := range prog.Functions {
		if mangled, ok := rm[f.Name]; ok {
			f.Name = mangled
		}
	}
	for _, c := range prog.Classes {
		if mangled, ok := rm[c.Name]; ok {
			c.Name = mangled
		}
	}
	for _, s := range prog.Structs {
		if mangled, ok := rm[s.Name]; ok {
			s.Name = mangled
		}
	}
	for _, i := range prog.Interfaces {
		if mangled, ok := rm[i.Name]; ok {
			i.Name = mangled
		}
	}
	for _, e := range prog.Enums {
		if mangled, ok := rm[e.Name]; ok {
			e.Name = mangled
		}
	}
	return rm
}

func renameFuncDecl(f *ast.FuncDecl, rm renameMap) {
	for _, p := range f.Params {
		p.Ty.Name = rewriteTypeString(p.Ty.Name, rm)
	}
	f.Ret.Name = rewriteTypeString(f.Ret.Name, rm)
	if f.Body == nil {
		return
	}
	locals := ast.CollectLocalNames(f.Params, f.Body.Stmts)
	renameStmts(f.Body.Stmts, locals, rm)
}

func renameStmts(stmts []ast.Stmt, locals map[string]bool, rm renameMap) {
	onExpr := func(e ast.Expr) ast.Expr {
		switch ex := e.(type) {
		case *ast.EVar:
			if locals[ex.Name] {
				return ex
			}
			if mangled, ok := rm[ex.Name]; ok {
				ex.Name = mangled
			}
			return ex
		case *ast.EIs:
			ex.TyName = rewriteTypeString(ex.TyName, rm)
			return ex
		case *ast.EAs:
			ex.ClsName = rewriteTypeString(ex.ClsName, rm)
			ex.IfaceTy = rewriteTypeString(ex.IfaceTy, rm)
			return ex
		case *ast.EListLit:
			ex.ElemType = rewriteTypeString(ex.ElemType, rm)
			return ex
		case *ast.EDictLit:
			ex.KeyType = rewriteTypeString(ex.KeyType, rm)
			ex.ValType = rewriteTypeString(ex.ValType, rm)
			return ex
		case *ast.ECall:
			if ex.TypeParam != "" {
				ex.TypeParam = rewriteTypeString(ex.TypeParam, rm)
			}
			return ex
		default:
			return e
		}
	}
	onType := func(t string) string { return rewriteTypeString(t, rm) }
	ast.WalkStmts(stmts, onExpr, onType)
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// identWithDotRe additionally captures one dotted segment, e.g. "os.Handle",
// so rewriteDottedType can recognize `alias.Type` references inside a
// structural type string.
var identWithDotRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)?`)

// rewriteTypeString rewrites every whole-word occurrence of a renamed
// top-level name inside a structural type string ("List[Foo]",
// "Dict[str,Foo]", "(Foo,i64)", "Fn(Foo)->Foo", or a bare "Foo").
func rewriteTypeString(ty string, rm renameMap) string {
	if ty == "" {
		return ty
	}
	return identRe.ReplaceAllStringFunc(ty, func(word string) string {
		if mangled, ok := rm[word]; ok {
			return mangled
		}
		return word
	})
}
