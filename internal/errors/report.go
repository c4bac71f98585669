// Package errors provides the structured, phase-tagged error report used
// throughout the compiler, plus the error-code taxonomy of SPEC_FULL.md
// §7. Every compile-time failure is fatal on first occurrence — there is
// no diagnostic batching or recovery — so a *Report is both the error
// value and the final user-facing diagnostic.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rill-lang/rillc/internal/ast"
)

// Schema is the structured-error schema tag stamped on every Report.
const Schema = "rill.error/v1"

// Report is the canonical structured error type. All error builders
// return *Report, wrapped as a ReportError so it survives errors.As.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Pos     *ast.Pos       `json:"pos,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	if e.Rep.Pos != nil {
		return fmt.Sprintf("%s: %s: %s", e.Rep.Pos.String(), phaseLabel(e.Rep), e.Rep.Message)
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

func phaseLabel(r *Report) string {
	if r.Phase != "" {
		return r.Phase
	}
	return r.Code
}

// AsReport extracts a *Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error. Returns nil for a nil Report so
// it composes with ordinary `if err := f(); err != nil` call sites.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	if r.Schema == "" {
		r.Schema = Schema
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the report as JSON, for --json-diagnostics style output.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New builds a Report at the given phase/code/position.
func New(phase, code string, pos ast.Pos, format string, args ...any) *Report {
	p := pos
	return &Report{
		Schema:  Schema,
		Code:    code,
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
		Pos:     &p,
	}
}

// NewNoPos builds a Report for a phase that has no single source
// location (e.g. a missing-library manifest error naming two search
// paths).
func NewNoPos(phase, code, format string, args ...any) *Report {
	return &Report{
		Schema:  Schema,
		Code:    code,
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
	}
}
