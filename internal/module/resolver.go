package module

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver turns `import a.b.c` references into absolute file paths, per
// the module lookup order: source-directory relative, then two fixed
// locations under the compiler root. Extern library manifests are located
// by manifest.FindLib, not here.
type Resolver struct {
	SourceDir    string
	CompilerRoot string
}

// ResolveImport finds the file backing `import a.b.c`, trying in order:
//  1. <source-dir>/a/b/c.rill
//  2. <compiler-root>/modules/a/b/c.rill
//  3. <compiler-root>/src/a/b/c.rill
func (r *Resolver) ResolveImport(dotted string) (string, bool) {
	rel := filepath.Join(strings.Split(dotted, ".")...) + ".rill"
	candidates := []string{
		filepath.Join(r.SourceDir, rel),
		filepath.Join(r.CompilerRoot, "modules", rel),
		filepath.Join(r.CompilerRoot, "src", rel),
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			abs, err := filepath.Abs(c)
			if err != nil {
				return c, true
			}
			return abs, true
		}
	}
	return "", false
}
