package codegen

import (
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
)

// CodeGen holds all state accumulated while lowering one program to C:
// the symbol tables the type checker already validated, the scope stack
// used to track ownership, and the output line buffer.
type CodeGen struct {
	out []string
	ind int
	tmp int

	debugLeaks bool

	env       []map[string]*VarInfo
	scopeVars [][]*VarInfo

	usedListTags map[string]bool
	usedDictTags map[string]bool
	usedFnTypes  map[string]bool
	usedTuples   map[string]bool

	funcSigs        map[string]funcSig
	curFnRet        string
	pendingReleases []*VarInfo

	classDefs       map[string]*ast.ClassDecl
	structDefs      map[string]*ast.StructDecl
	ifaceDefs       map[string]*ast.InterfaceDecl
	classImplements map[string][]string
	externTypeInfo  map[string]ast.ExternTypeInfo
	externConsts    map[string]ast.ExternConstInfo
	enumVariants    map[string]map[string]int64

	globalScopeDepth int
	loopScopeDepth   []int

	stringLits    map[string]string // escaped C literal -> static var name
	stringLitIdx  int
	stringLitLine int // index into out where literal statics are spliced
}

type funcSig struct {
	Params []string
	Ret    string
}

// Generate lowers a fully type-checked program into a self-contained C
// translation unit. The program must already have passed internal/types
// Check — Generate assumes every expression carries a resolved type and
// every generic call carries its concrete type argument, whose
// monomorphized instance the checker has already added to the program.
func Generate(prog *ast.Program, debugLeaks bool) (string, error) {
	g := &CodeGen{
		debugLeaks:      debugLeaks,
		usedListTags:    map[string]bool{},
		usedDictTags:    map[string]bool{},
		usedFnTypes:     map[string]bool{},
		usedTuples:      map[string]bool{},
		funcSigs:        map[string]funcSig{},
		classDefs:       map[string]*ast.ClassDecl{},
		structDefs:      map[string]*ast.StructDecl{},
		ifaceDefs:       map[string]*ast.InterfaceDecl{},
		classImplements: map[string][]string{},
		externTypeInfo:  prog.ExternTypes,
		externConsts:    prog.ExternConsts,
		enumVariants:    map[string]map[string]int64{},
		stringLits:      map[string]string{},
	}
	return g.generate(prog)
}

func (g *CodeGen) generate(prog *ast.Program) (string, error) {
	for _, iface := range prog.Interfaces {
		g.ifaceDefs[iface.Name] = iface
	}
	for _, enum := range prog.Enums {
		variants := map[string]int64{}
		for _, v := range enum.Variants {
			if v.Value != nil {
				variants[v.Name] = *v.Value
			}
		}
		g.enumVariants[enum.Name] = variants
	}
	for _, cls := range prog.Classes {
		g.classDefs[cls.Name] = cls
		g.classImplements[cls.Name] = cls.Implements
	}
	for _, st := range prog.Structs {
		g.structDefs[st.Name] = st
	}
	for _, f := range prog.Functions {
		if len(f.TypeParams) > 0 {
			continue
		}
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = p.Ty.Name
		}
		g.funcSigs[f.Name] = funcSig{Params: params, Ret: f.Ret.Name}
	}

	g.collectTypeUses(prog)

	g.emitPrelude()
	g.w("")
	g.stringLitLine = len(g.out)

	for _, inc := range prog.ExternIncludes {
		g.wf("#include %q", inc)
	}
	if len(prog.ExternIncludes) > 0 {
		g.w("")
	}

	g.emitFnTypedefs()

	for _, cls := range prog.Classes {
		g.wf("typedef struct __lang_rt_Class_%s __lang_rt_Class_%s;", cls.Name, cls.Name)
	}
	g.w("")

	for _, iface := range prog.Interfaces {
		g.emitIfaceTypes(iface)
	}
	g.w("")

	for _, st := range prog.Structs {
		g.emitStructTypedef(st)
	}
	if len(prog.Structs) > 0 {
		g.w("")
	}

	g.emitContainerInstantiations()
	g.w("")
	g.emitTupleTypedefs()

	for _, cls := range prog.Classes {
		g.emitClassStruct(cls)
	}
	g.w("")

	for _, f := range prog.Functions {
		if len(f.TypeParams) > 0 {
			continue
		}
		g.wf("%s;", g.fnProto(f))
	}
	g.w("")

	g.emitGlobalVars(prog)
	g.globalScopeDepth = len(g.scopeVars)

	for _, cls := range prog.Classes {
		if err := g.emitClassMethods(cls); err != nil {
			return "", err
		}
	}
	g.w("")

	for _, st := range prog.Structs {
		for _, m := range st.Methods {
			if err := g.emitStructMethod(st, m); err != nil {
				return "", err
			}
		}
	}
	if len(prog.Structs) > 0 {
		g.w("")
	}

	for _, cls := range prog.Classes {
		for _, iname := range cls.Implements {
			g.emitVtableInstance(cls, g.ifaceDefs[iname])
		}
	}
	g.w("")

	for _, f := range prog.Functions {
		if len(f.TypeParams) > 0 {
			continue
		}
		var err error
		if f.ExternCName != "" {
			err = g.emitExternWrapper(f)
		} else {
			err = g.emitFunction(f)
		}
		if err != nil {
			return "", err
		}
		g.w("")
	}

	if err := g.emitProgramBootstrap(prog); err != nil {
		return "", err
	}
	g.w("")
	g.env = g.env[:len(g.env)-1]
	g.scopeVars = g.scopeVars[:len(g.scopeVars)-1]
	g.emitMain(prog)

	if len(g.stringLits) > 0 {
		var lits []string
		for escaped, name := range g.stringLits {
			lits = append(lits, sprintf("__LANG_RT_STR_LIT(%s, %s);", name, escaped))
		}
		lits = append(lits, "")
		tail := append([]string{}, g.out[g.stringLitLine:]...)
		g.out = append(g.out[:g.stringLitLine], append(lits, tail...)...)
	}

	return strings.Join(g.out, "\n") + "\n", nil
}

func (g *CodeGen) emitPrelude() {
	g.w("// Generated by rillc. Do not edit.")
	if g.debugLeaks {
		g.w("#define __LANG_RT_DEBUG_LEAKS")
	}
	g.w("#if !defined(_WIN32) && !defined(__APPLE__)")
	g.w("  #define _POSIX_C_SOURCE 199309L")
	g.w("#endif")
	g.w("#include <stdint.h>")
	g.w("#include <stdbool.h>")
	g.w(`#include "rt_runtime.h"`)
	g.w("")
	g.w("#define __LANG_RT_SRC(file, line, col) __lang_rt_src((file), (line), (col))")
	g.w("")
	g.w("int __lang_rt_argc_ = 0;")
	g.w("char** __lang_rt_argv_ = NULL;")
}

func (g *CodeGen) emitFnTypedefs() {
	if len(g.usedFnTypes) == 0 {
		return
	}
	names := sortedKeys(g.usedFnTypes)
	for _, ty := range names {
		name := fnTypedefName(ty)
		params := fnParamTypes(ty)
		ret := fnRetType(ty)
		cParams := make([]string, len(params))
		for i, p := range params {
			cParams[i] = g.cType(p)
		}
		retC := "void"
		if ret != "void" {
			retC = g.cType(ret)
		}
		if len(cParams) == 0 {
			g.wf("typedef %s (*%s)(void);", retC, name)
		} else {
			g.wf("typedef %s (*%s)(%s);", retC, name, strings.Join(cParams, ", "))
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Simple insertion sort: these sets are small and this keeps codegen
	// free of a sort-package import for a handful of strings.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
