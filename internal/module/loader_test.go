package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRill(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name+".rill")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadRootMergesAndManglesImport(t *testing.T) {
	dir := t.TempDir()
	writeRill(t, dir, "utils", `
func double(n: i64) -> i64 {
	return n * 2
}
`)
	root := writeRill(t, dir, "main", `
import utils as u

func main() -> i64 {
	let x: i64 = u.double(21)
	return x
}
`)

	l := NewLoader(dir, nil, "linux")
	prog, err := l.LoadRoot(root)
	require.NoError(t, err)

	_, ok := prog.FindFunc("u__double")
	require.True(t, ok)
	mainFn, ok := prog.FindFunc("main")
	require.True(t, ok)

	decl, ok := mainFn.Body.Stmts[0].(*ast.SVarDecl)
	require.True(t, ok)
	call, ok := decl.Value.(*ast.ECall)
	require.True(t, ok)
	callee, ok := call.Callee.(*ast.EVar)
	require.True(t, ok)
	assert.Equal(t, "u__double", callee.Name)
}

func TestLoadRootDetectsCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeRill(t, dir, "a", `import b as b
func fa() -> i64 { return b.fb() }
`)
	root := writeRill(t, dir, "b", `import a as a
func fb() -> i64 { return a.fa() }
`)

	l := NewLoader(dir, nil, "linux")
	_, err := l.LoadRoot(root)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.IMP002, rep.Code)
}

func TestLoadRootSynthesizesExtern(t *testing.T) {
	dir := t.TempDir()
	libDir := filepath.Join(dir, "libs", "osfacts")
	require.NoError(t, os.MkdirAll(libDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "osfacts.mutlib"), []byte(`[types]
Handle = FILE*

[functions]
open(path: str) -> Handle = c_open
close(h: Handle) [dtor] = c_close

[constants]
PAGE_SIZE: i64 = 4096
`), 0o644))

	root := writeRill(t, dir, "main", `
extern osfacts as os

func main() -> i64 {
	return os.PAGE_SIZE
}
`)

	l := NewLoader(dir, nil, "linux")
	prog, err := l.LoadRoot(root)
	require.NoError(t, err)

	_, ok := prog.FindClass("os__Handle")
	require.True(t, ok)
	info, ok := prog.ExternTypes["os__Handle"]
	require.True(t, ok)
	assert.Equal(t, "FILE*", info.CType)
	assert.Equal(t, "c_close", info.Dtor)

	fn, ok := prog.FindFunc("os__open")
	require.True(t, ok)
	assert.Equal(t, "c_open", fn.ExternCName)
	assert.Equal(t, "os__Handle", fn.Ret.Name)

	cinfo, ok := prog.ExternConsts["os__PAGE_SIZE"]
	require.True(t, ok)
	assert.Equal(t, "4096", cinfo.CExpr)
}
