package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name+".mutlib")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadParsesAllSections(t *testing.T) {
	dir := t.TempDir()
	body := `# opaque handle to an OS file
FileHandle = FILE*

[functions]
# opens a file for reading
file_open(path: str) -> FileHandle = bismut_file_open
file_close(f: FileHandle) [dtor] = bismut_file_close

[constants]
PAGE_SIZE: i64 = 4096

[flags]
cflags = -I{LIB_DIR}
ldflags = -lm
cflags_linux = -DLINUX
`
	// fix up: types section header was omitted above by mistake in this
	// raw string, so reconstruct with one explicitly.
	body = "[types]\n" + body
	p := writeManifest(t, dir, "osfacts", body)

	m, err := Load(p, "osfacts", dir, "linux")
	require.NoError(t, err)

	require.Len(t, m.Types, 1)
	assert.Equal(t, "FileHandle", m.Types[0].Name)
	assert.Equal(t, "FILE*", m.Types[0].CType)

	require.Len(t, m.Funcs, 2)
	assert.Equal(t, "bismut_file_open", m.Funcs[0].CName)
	assert.Equal(t, "opens a file for reading", m.Funcs[0].Doc)
	assert.True(t, m.Funcs[1].IsDtor)
	assert.Equal(t, "bismut_file_close", m.Types[0].CDtor)

	require.Len(t, m.Consts, 1)
	assert.Equal(t, "4096", m.Consts[0].CExpr)

	assert.Contains(t, m.Cflags, "-I"+dir)
	assert.Contains(t, m.Cflags, "-DLINUX")
	assert.Contains(t, m.Ldflags, "-lm")
}

func TestLoadRejectsDtorWithoutDeclaredType(t *testing.T) {
	dir := t.TempDir()
	body := "[functions]\nclose(f: Unknown) [dtor] = c_close\n"
	p := writeManifest(t, dir, "bad", body)

	_, err := Load(p, "bad", dir, "linux")
	require.Error(t, err)
}

func TestLoadRejectsOrphanLine(t *testing.T) {
	dir := t.TempDir()
	p := writeManifest(t, dir, "bad", "just some text\n")
	_, err := Load(p, "bad", dir, "linux")
	require.Error(t, err)
}

func TestFindLibChecksSourceThenCompilerRoot(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "project")
	compilerRoot := filepath.Join(root, "compiler")
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "libs", "sqlite"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(compilerRoot, "libs", "sqlite"), 0o755))
	writeManifest(t, filepath.Join(srcDir, "libs", "sqlite"), "sqlite", "[types]\n")

	libDir, manifestPath, ok := FindLib("sqlite", filepath.Join(srcDir, "main.rill"), compilerRoot)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(srcDir, "libs", "sqlite"), libDir)
	assert.FileExists(t, manifestPath)
}
