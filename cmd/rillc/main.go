// Command rillc compiles a single Rill source file, plus its transitive
// imports and extern manifests, into a self-contained C translation unit.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/rill-lang/rillc/internal/codegen"
	"github.com/rill-lang/rillc/internal/errors"
	"github.com/rill-lang/rillc/internal/manifest"
	"github.com/rill-lang/rillc/internal/module"
	"github.com/rill-lang/rillc/internal/types"
)

var (
	red  = color.New(color.FgRed).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

// defineList collects repeated --define NAME flags into a set.
type defineList struct{ names map[string]bool }

func (d *defineList) String() string { return "" }
func (d *defineList) Set(v string) error {
	if d.names == nil {
		d.names = map[string]bool{}
	}
	d.names[v] = true
	return nil
}

func main() {
	defines := &defineList{}
	noDebugLeaks := flag.Bool("no-debug-leaks", false, "disable the runtime's leak tracker")
	out := flag.String("o", "out.c", "output C file path")
	root := flag.String("root", "", "compiler root containing libs/ for extern manifest lookup (defaults to $RILLC_ROOT or the working directory)")
	jsonDiagnostics := flag.Bool("json-diagnostics", false, "render the first error as JSON instead of text")
	flag.Var(defines, "define", "preprocessor define, may be repeated")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}
	srcFile := flag.Arg(0)

	if err := run(srcFile, defines.names, *noDebugLeaks, *out, *root); err != nil {
		if *jsonDiagnostics {
			if rep, ok := errors.AsReport(err); ok {
				js, jerr := rep.ToJSON(false)
				if jerr == nil {
					fmt.Fprintln(os.Stderr, js)
					os.Exit(1)
				}
			}
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "%s\n\n", bold("rillc - Rill reference compiler"))
	fmt.Fprintln(os.Stderr, "usage: rillc <file.rill> [--define NAME]... [--no-debug-leaks] [-o out.c]")
}

func targetPlatform(defines map[string]bool) string {
	switch {
	case defines["__WIN__"]:
		return "win"
	case defines["__MACOS__"]:
		return "macos"
	case defines["__LINUX__"]:
		return "linux"
	default:
		return manifest.CurrentPlatform()
	}
}

func run(srcFile string, defines map[string]bool, noDebugLeaks bool, outPath, root string) error {
	absSrc, err := filepath.Abs(srcFile)
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(wd)
	if err != nil {
		return err
	}
	if cfg != nil {
		if root == "" {
			root = cfg.Root
		}
		if len(cfg.Defines) > 0 {
			if defines == nil {
				defines = map[string]bool{}
			}
			for _, d := range cfg.Defines {
				defines[d] = true
			}
		}
	}
	compilerRoot := compilerRootFor(root)

	platform := targetPlatform(defines)
	if cfg != nil && cfg.Platform != "" && !defines["__WIN__"] && !defines["__MACOS__"] && !defines["__LINUX__"] {
		platform = cfg.Platform
	}

	loader := module.NewLoader(compilerRoot, defines, platform)
	prog, err := loader.LoadRoot(absSrc)
	if err != nil {
		return err
	}

	if err := types.Check(prog); err != nil {
		return err
	}

	// The reference compiler always does debug builds; --no-debug-leaks
	// is the one way to turn the leak tracker off.
	debugLeaks := !noDebugLeaks
	c, err := codegen.Generate(prog, debugLeaks)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, []byte(c), 0o644); err != nil {
		return err
	}

	if len(prog.ExternCflags) > 0 || len(prog.ExternLdflags) > 0 {
		flags := append(append([]string{}, prog.ExternCflags...), prog.ExternLdflags...)
		fmt.Fprintf(os.Stderr, "EXTERN_FLAGS: %s\n", strings.Join(flags, " "))
	}
	return nil
}

// compilerRootFor resolves the root directory searched for libs/<name>
// extern manifests: the explicit --root flag, then $RILLC_ROOT, then the
// working directory.
func compilerRootFor(root string) string {
	if root != "" {
		return root
	}
	if env := os.Getenv("RILLC_ROOT"); env != "" {
		return env
	}
	wd, _ := os.Getwd()
	return wd
}
