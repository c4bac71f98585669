// Package manifest parses native-library binding manifests: line-oriented
// descriptions of the C types, functions, and constants a Rill module can
// reach through `extern libname as alias`, plus the per-platform compile
// and link flags needed to build against the library.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rill-lang/rillc/internal/errors"
)

// SchemaVersion identifies the manifest grammar this loader accepts.
const SchemaVersion = "rill.manifest/v1"

// ExternType is a `[types]` entry: `Name = c_type`. Its destructor, if
// any, is filled in once the `[functions]` section has been scanned for a
// `[dtor]`-tagged entry whose first parameter names this type.
type ExternType struct {
	Name  string
	CType string
	CDtor string
	Doc   string
	Line  int
}

// ExternParam is one `name: type` entry in an extern function signature.
type ExternParam struct {
	Name string
	Ty   string
}

// ExternFunc is a `[functions]` entry:
// `name(p1: t1, …) [-> ret] [[dtor]] = c_symbol`.
type ExternFunc struct {
	Name    string
	Params  []ExternParam
	Ret     string
	CName   string
	IsDtor  bool
	Doc     string
	Line    int
}

// ExternConst is a `[constants]` entry: `NAME: type = c_expr`.
type ExternConst struct {
	Name  string
	Ty    string
	CExpr string
	Doc   string
	Line  int
}

// Manifest is one parsed library manifest, with platform-specific flags
// already resolved and `{LIB_DIR}` already substituted.
type Manifest struct {
	Name    string
	LibDir  string
	Types   []ExternType
	Funcs   []ExternFunc
	Consts  []ExternConst
	CSource string // absolute path to <name>.c next to the manifest, "" if absent
	Cflags  []string
	Ldflags []string
}

// FindType looks up a declared extern type by its Rill-facing name.
func (m *Manifest) FindType(name string) (*ExternType, bool) {
	for i := range m.Types {
		if m.Types[i].Name == name {
			return &m.Types[i], true
		}
	}
	return nil, false
}

// CurrentPlatform maps runtime.GOOS to the manifest flag-suffix vocabulary
// (`linux` / `macos` / `win`), matching the reference compiler's
// platform.system() normalization.
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "linux":
		return "linux"
	case "darwin":
		return "macos"
	case "windows":
		return "win"
	default:
		return runtime.GOOS
	}
}

// FindLib resolves a library directory by name: first relative to the
// source file being compiled, then relative to the compiler root. Returns
// the absolute lib directory and the manifest path inside it.
func FindLib(libName, srcFile, compilerRoot string) (libDir, manifestPath string, ok bool) {
	srcDir, _ := filepath.Abs(filepath.Dir(srcFile))
	candidates := []string{
		filepath.Join(srcDir, "libs", libName),
		filepath.Join(compilerRoot, "libs", libName),
	}
	for _, d := range candidates {
		mp := filepath.Join(d, libName+".mutlib")
		if st, err := os.Stat(mp); err == nil && !st.IsDir() {
			abs, _ := filepath.Abs(d)
			return abs, mp, true
		}
	}
	return "", "", false
}

// Load parses the manifest at manifestPath, belonging to library libName
// in directory libDir, resolving flags for targetPlatform (empty string
// means CurrentPlatform()).
func Load(manifestPath, libName, libDir, targetPlatform string) (*Manifest, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN002,
			"cannot open manifest %q: %v", manifestPath, err))
	}
	defer f.Close()

	var types []ExternType
	var funcs []ExternFunc
	var consts []ExternConst
	flagEntries := map[string]string{}
	section := ""
	var docLines []string

	flushDoc := func() string {
		if len(docLines) == 0 {
			return ""
		}
		doc := strings.Join(docLines, "\n")
		docLines = nil
		return doc
	}

	lineNo := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			docLines = nil
			continue
		}
		if strings.HasPrefix(line, "#") {
			docLines = append(docLines, stripComment(line))
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			docLines = nil
			continue
		}

		doc := flushDoc()
		switch section {
		case "types":
			t, err := parseTypeLine(line, manifestPath, lineNo)
			if err != nil {
				return nil, err
			}
			t.Doc, t.Line = doc, lineNo
			types = append(types, t)
		case "functions":
			fn, err := parseFuncLine(line, manifestPath, lineNo)
			if err != nil {
				return nil, err
			}
			fn.Doc, fn.Line = doc, lineNo
			funcs = append(funcs, fn)
		case "constants":
			c, err := parseConstLine(line, manifestPath, lineNo)
			if err != nil {
				return nil, err
			}
			c.Doc, c.Line = doc, lineNo
			consts = append(consts, c)
		case "flags":
			if idx := strings.Index(line, "="); idx >= 0 {
				key := strings.TrimSpace(line[:idx])
				val := strings.TrimSpace(line[idx+1:])
				flagEntries[key] = val
			}
		default:
			return nil, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
				"%s:%d: unknown section or orphan line: %q", manifestPath, lineNo, line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	cSource := filepath.Join(libDir, libName+".c")
	if st, err := os.Stat(cSource); err != nil || st.IsDir() {
		cSource = ""
	}

	plat := targetPlatform
	if plat == "" {
		plat = CurrentPlatform()
	}
	cflags, ldflags := resolveFlags(flagEntries, plat)
	for i, v := range cflags {
		cflags[i] = strings.ReplaceAll(v, "{LIB_DIR}", libDir)
	}
	for i, v := range ldflags {
		ldflags[i] = strings.ReplaceAll(v, "{LIB_DIR}", libDir)
	}

	typeByName := make(map[string]int, len(types))
	for i, t := range types {
		typeByName[t.Name] = i
	}
	for _, fn := range funcs {
		if !fn.IsDtor {
			continue
		}
		if len(fn.Params) == 0 {
			return nil, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
				"%s: [dtor] function %q must have at least one parameter", manifestPath, fn.Name))
		}
		firstTy := fn.Params[0].Ty
		idx, ok := typeByName[firstTy]
		if !ok {
			return nil, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
				"%s: [dtor] function %q first parameter type %q is not a declared [types] entry",
				manifestPath, fn.Name, firstTy))
		}
		types[idx].CDtor = fn.CName
	}

	return &Manifest{
		Name: libName, LibDir: libDir,
		Types: types, Funcs: funcs, Consts: consts,
		CSource: cSource, Cflags: cflags, Ldflags: ldflags,
	}, nil
}

func stripComment(line string) string {
	if len(line) > 1 && line[1] == ' ' {
		return line[2:]
	}
	return line[1:]
}

func parseTypeLine(line, path string, lineNo int) (ExternType, error) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return ExternType{}, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
			"%s:%d: type line must have '= c_type': %q", path, lineNo, line))
	}
	return ExternType{
		Name:  strings.TrimSpace(line[:idx]),
		CType: strings.TrimSpace(line[idx+1:]),
	}, nil
}

func parseFuncLine(line, path string, lineNo int) (ExternFunc, error) {
	eq := strings.LastIndex(line, "=")
	if eq < 0 {
		return ExternFunc{}, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
			"%s:%d: function line must have '= c_name': %q", path, lineNo, line))
	}
	sig := strings.TrimSpace(line[:eq])
	cName := strings.TrimSpace(line[eq+1:])

	open := strings.Index(sig, "(")
	if open < 0 {
		return ExternFunc{}, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
			"%s:%d: missing '(' in function signature: %q", path, lineNo, sig))
	}
	name := strings.TrimSpace(sig[:open])
	rest := sig[open+1:]
	closeIdx := strings.Index(rest, ")")
	if closeIdx < 0 {
		return ExternFunc{}, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
			"%s:%d: missing ')' in function signature: %q", path, lineNo, sig))
	}
	paramsStr := strings.TrimSpace(rest[:closeIdx])
	afterParen := strings.TrimSpace(rest[closeIdx+1:])

	var params []ExternParam
	if paramsStr != "" {
		for _, p := range strings.Split(paramsStr, ",") {
			p = strings.TrimSpace(p)
			ci := strings.Index(p, ":")
			if ci < 0 {
				return ExternFunc{}, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
					"%s:%d: param must have 'name: type': %q", path, lineNo, p))
			}
			params = append(params, ExternParam{
				Name: strings.TrimSpace(p[:ci]),
				Ty:   strings.TrimSpace(p[ci+1:]),
			})
		}
	}

	isDtor := false
	if strings.Contains(afterParen, "[dtor]") {
		isDtor = true
		afterParen = strings.TrimSpace(strings.ReplaceAll(afterParen, "[dtor]", ""))
	}

	ret := "void"
	if strings.HasPrefix(afterParen, "->") {
		ret = strings.TrimSpace(afterParen[2:])
	}

	return ExternFunc{Name: name, Params: params, Ret: ret, CName: cName, IsDtor: isDtor}, nil
}

func parseConstLine(line, path string, lineNo int) (ExternConst, error) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return ExternConst{}, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
			"%s:%d: constant line must have '= value': %q", path, lineNo, line))
	}
	decl := strings.TrimSpace(line[:eq])
	cExpr := strings.TrimSpace(line[eq+1:])
	ci := strings.Index(decl, ":")
	if ci < 0 {
		return ExternConst{}, errors.WrapReport(errors.NewNoPos("manifest", errors.MAN001,
			"%s:%d: constant must have 'NAME: type': %q", path, lineNo, decl))
	}
	return ExternConst{
		Name: strings.TrimSpace(decl[:ci]),
		Ty:   strings.TrimSpace(decl[ci+1:]),
		CExpr: cExpr,
	}, nil
}

func resolveFlags(entries map[string]string, plat string) (cflags, ldflags []string) {
	if v := entries["cflags"]; v != "" {
		cflags = append(cflags, strings.Fields(v)...)
	}
	if v := entries["ldflags"]; v != "" {
		ldflags = append(ldflags, strings.Fields(v)...)
	}
	if v := entries[fmt.Sprintf("cflags_%s", plat)]; v != "" {
		cflags = append(cflags, strings.Fields(v)...)
	}
	if v := entries[fmt.Sprintf("ldflags_%s", plat)]; v != "" {
		ldflags = append(ldflags, strings.Fields(v)...)
	}
	return cflags, ldflags
}
