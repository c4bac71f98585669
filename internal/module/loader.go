// Package module implements the import/extern resolver: it walks a root
// Rill source file's transitive imports and extern declarations and
// splices them into one merged *ast.Program, applying `alias__name`
// mangling, scope-aware reference renaming, and manifest-driven extern
// synthesis along the way.
package module

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
	"github.com/rill-lang/rillc/internal/frontend"
	"github.com/rill-lang/rillc/internal/manifest"
)

// Loader owns the frontend collaborators and the compiler-root/platform
// context needed to resolve imports and externs.
type Loader struct {
	Preprocessor frontend.Preprocessor
	Lexer        frontend.Lexer
	Parser       frontend.Parser

	CompilerRoot   string
	TargetPlatform string // "" defers to manifest.CurrentPlatform()
	Defines        map[string]bool
}

// NewLoader builds a Loader with the reference frontend implementations.
func NewLoader(compilerRoot string, defines map[string]bool, targetPlatform string) *Loader {
	return &Loader{
		Preprocessor:   frontend.DefaultPreprocessor{},
		Lexer:          frontend.DefaultLexer{},
		Parser:         frontend.DefaultParser{},
		CompilerRoot:   compilerRoot,
		TargetPlatform: targetPlatform,
		Defines:        defines,
	}
}

// LoadRoot parses path and resolves its full transitive closure of
// imports and externs into a single merged *ast.Program.
func (l *Loader) LoadRoot(path string) (*ast.Program, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return l.load(abs, nil)
}

func (l *Loader) load(absPath string, stack []string) (*ast.Program, error) {
	for _, s := range stack {
		if s == absPath {
			cycle := append(append([]string{}, stack...), absPath)
			return nil, errors.WrapReport(errors.NewNoPos("resolver", errors.IMP002,
				"circular import: %s", strings.Join(cycle, " -> ")))
		}
	}
	stack = append(stack, absPath)

	prog, err := l.parseFile(absPath)
	if err != nil {
		return nil, err
	}

	sourceDir := filepath.Dir(absPath)
	resolver := &Resolver{SourceDir: sourceDir, CompilerRoot: l.CompilerRoot}

	for _, imp := range prog.Imports {
		childPath, ok := resolver.ResolveImport(imp.Path)
		if !ok {
			return nil, errors.WrapReport(errors.NewNoPos("resolver", errors.IMP001,
				"module %q not found (tried %s/…, %s/modules/…, %s/src/…)",
				imp.Path, sourceDir, l.CompilerRoot, l.CompilerRoot))
		}
		childProg, err := l.load(childPath, stack)
		if err != nil {
			return nil, err
		}
		rm := RenameProgram(childProg, imp.Alias)
		rewriteAliasRefs(prog, imp.Alias, rm)
		mergeProgram(prog, childProg)
	}

	for _, ext := range prog.Externs {
		libDir, manifestPath, ok := manifest.FindLib(ext.LibName, absPath, l.CompilerRoot)
		if !ok {
			return nil, errors.WrapReport(errors.NewNoPos("resolver", errors.IMP003,
				"extern library %q not found under %s/libs or %s/libs",
				ext.LibName, sourceDir, l.CompilerRoot))
		}
		m, err := manifest.Load(manifestPath, ext.LibName, libDir, l.TargetPlatform)
		if err != nil {
			return nil, err
		}
		rm := synthesizeExtern(prog, m, ext.Alias)
		rewriteAliasRefs(prog, ext.Alias, rm)
	}

	return prog, nil
}

func (l *Loader) parseFile(absPath string) (*ast.Program, error) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.WrapReport(errors.NewNoPos("resolver", errors.IMP001,
			"cannot read %q: %v", absPath, err))
	}
	preprocessed, err := l.Preprocessor.Process(string(raw), absPath, l.Defines)
	if err != nil {
		return nil, err
	}
	tokens, err := l.Lexer.Tokenize(preprocessed, absPath)
	if err != nil {
		return nil, err
	}
	return l.Parser.Parse(tokens)
}
