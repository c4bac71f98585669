// Command rillrepl is a minimal read-eval-print loop over the Rill
// compiler. Rill has no interpreter, so "eval" here means: accumulate the
// declarations and statements typed so far, type-check the result, lower
// it to C, and print the generated translation unit.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/rill-lang/rillc/internal/codegen"
	"github.com/rill-lang/rillc/internal/frontend"
	"github.com/rill-lang/rillc/internal/types"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

var topLevelKeywords = []string{"func", "class", "struct", "interface", "enum", "import", "extern", "let"}

// session accumulates everything the user has typed that compiled
// successfully: top-level declarations persist across inputs, statements
// are re-wrapped into a fresh synthetic main on every line.
type session struct {
	decls []string
	stmts []string
}

func (s *session) source() string {
	var b strings.Builder
	for _, d := range s.decls {
		b.WriteString(d)
		b.WriteString("\n")
	}
	b.WriteString("func main() -> i64 {\n")
	for _, st := range s.stmts {
		b.WriteString("\t")
		b.WriteString(st)
		b.WriteString("\n")
	}
	b.WriteString("\treturn 0\n}\n")
	return b.String()
}

func isTopLevel(line string) bool {
	for _, kw := range topLevelKeywords {
		if strings.HasPrefix(line, kw+" ") || strings.HasPrefix(line, kw+"(") {
			return true
		}
	}
	return false
}

func compile(src string) (string, error) {
	pp := frontend.DefaultPreprocessor{}
	processed, err := pp.Process(src, "<repl>", nil)
	if err != nil {
		return "", err
	}
	lex := frontend.DefaultLexer{}
	toks, err := lex.Tokenize(processed, "<repl>")
	if err != nil {
		return "", err
	}
	p := frontend.DefaultParser{}
	prog, err := p.Parse(toks)
	if err != nil {
		return "", err
	}
	if err := types.Check(prog); err != nil {
		return "", err
	}
	return codegen.Generate(prog, true)
}

func main() {
	s := &session{}

	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".rillrepl_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetCompleter(func(l string) (c []string) {
		for _, cmd := range []string{":help", ":quit", ":reset", ":source"} {
			if strings.HasPrefix(cmd, l) {
				c = append(c, cmd)
			}
		}
		return
	})

	fmt.Fprintf(os.Stdout, "%s\n", bold("rillrepl"))
	fmt.Fprintln(os.Stdout, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(os.Stdout)

	for {
		input, err := line.Prompt("rill> ")
		if err == io.EOF {
			fmt.Fprintln(os.Stdout, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			continue
		}
		line.AppendHistory(input)
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, ":") {
			handleCommand(input, s)
			continue
		}

		var restoreDecls []string
		var restoreStmts []string
		if isTopLevel(input) {
			restoreDecls = append([]string{}, s.decls...)
			s.decls = append(s.decls, input)
		} else {
			restoreStmts = append([]string{}, s.stmts...)
			s.stmts = append(s.stmts, input)
		}

		out, err := compile(s.source())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			if restoreDecls != nil {
				s.decls = restoreDecls
			} else {
				s.stmts = restoreStmts
			}
			continue
		}
		fmt.Fprintln(os.Stdout, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func handleCommand(cmd string, s *session) {
	switch cmd {
	case ":help":
		fmt.Fprintln(os.Stdout, "Commands: :help :quit :reset :source")
	case ":quit":
		os.Exit(0)
	case ":reset":
		s.decls = nil
		s.stmts = nil
		fmt.Fprintln(os.Stdout, green("session reset"))
	case ":source":
		fmt.Fprintln(os.Stdout, s.source())
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("error"), cmd)
	}
}
