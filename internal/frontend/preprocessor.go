package frontend

import (
	"fmt"
	"strings"

	"github.com/rill-lang/rillc/internal/errors"
)

// DefaultPreprocessor implements the @define/@if/@elif/@else/@end
// conditional directive language described in spec.md §6, grounded on the
// reference compiler's line-oriented preprocessor.
type DefaultPreprocessor struct{}

type condFrame struct {
	parentEmitting bool
	taken          bool
}

// Process strips or includes lines based on defines, which the caller has
// already seeded with host-platform and --define symbols.
func (DefaultPreprocessor) Process(source, file string, defines map[string]bool) (string, error) {
	defs := make(map[string]bool, len(defines))
	for k, v := range defines {
		defs[k] = v
	}

	var out []string
	var stack []condFrame
	emitting := true

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lineNo := i + 1
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "@define "):
			if emitting {
				name := strings.TrimSpace(stripped[len("@define "):])
				if name == "" {
					return "", ppcError(file, lineNo, "PPC001", "@define requires a name")
				}
				defs[name] = true
			}
			continue

		case strings.HasPrefix(stripped, "@if "):
			name := strings.TrimSpace(stripped[len("@if "):])
			if name == "" {
				return "", ppcError(file, lineNo, "PPC002", "@if requires a name")
			}
			parentEmitting := emitting
			cond := defs[name]
			emitting = parentEmitting && cond
			stack = append(stack, condFrame{parentEmitting: parentEmitting, taken: cond})
			continue

		case strings.HasPrefix(stripped, "@elif "):
			if len(stack) == 0 {
				return "", ppcError(file, lineNo, "PPC003", "@elif without matching @if")
			}
			name := strings.TrimSpace(stripped[len("@elif "):])
			if name == "" {
				return "", ppcError(file, lineNo, "PPC004", "@elif requires a name")
			}
			top := &stack[len(stack)-1]
			if top.taken {
				emitting = false
			} else {
				emitting = top.parentEmitting && defs[name]
				if emitting {
					top.taken = true
				}
			}
			continue

		case stripped == "@else":
			if len(stack) == 0 {
				return "", ppcError(file, lineNo, "PPC005", "@else without matching @if")
			}
			top := &stack[len(stack)-1]
			if top.taken {
				emitting = false
			} else {
				emitting = top.parentEmitting
				top.taken = true
			}
			continue

		case stripped == "@end":
			if len(stack) == 0 {
				return "", ppcError(file, lineNo, "PPC006", "@end without matching @if")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			emitting = top.parentEmitting
			continue
		}

		if emitting {
			out = append(out, line)
		}
	}

	if len(stack) > 0 {
		return "", ppcError(file, len(lines), "PPC007", "unterminated @if block (missing @end)")
	}

	return strings.Join(out, "\n"), nil
}

func ppcError(file string, line int, code, msg string) error {
	return errors.WrapReport(&errors.Report{
		Schema:  errors.Schema,
		Code:    code,
		Phase:   "preprocessor",
		Message: fmt.Sprintf("%s:%d: %s", file, line, msg),
	})
}
