// Package frontend defines the interfaces for the collaborators that sit
// upstream of the compiler's core: a text-level conditional preprocessor,
// a lexer producing a token stream, and a parser producing an
// *ast.Program. These are specified here only as interfaces — per the
// system's scope, a full diagnostic-grade lexer/parser/preprocessor is an
// external concern. The implementations in this package are the minimal
// reference versions needed to drive the type checker, resolver, and code
// generator end to end in tests.
package frontend

import "github.com/rill-lang/rillc/internal/ast"

// Preprocessor strips or includes source lines based on compile-time
// @define/@if/@elif/@else/@end directives before lexing.
type Preprocessor interface {
	Process(source, file string, defines map[string]bool) (string, error)
}

// TokenKind enumerates lexical token categories.
type TokenKind int

const (
	TEOF TokenKind = iota
	TIdent
	TInt
	TFloat
	TString
	TKeyword
	TOp
	TPunct
)

// Token is a single lexical token stamped with its source position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  ast.Pos
}

// Lexer turns preprocessed source text into a token stream.
type Lexer interface {
	Tokenize(source, file string) ([]Token, error)
}

// Parser turns a token stream into an *ast.Program.
type Parser interface {
	Parse(tokens []Token) (*ast.Program, error)
}
