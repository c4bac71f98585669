package frontend

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

const bomUTF8 = "﻿"

// normalizeSource strips a leading UTF-8 BOM and applies Unicode NFC
// normalization, so identifiers that differ only by composed-vs-decomposed
// accents lex to the same token text.
func normalizeSource(src string) string {
	src = strings.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormalString(src) {
		src = norm.NFC.String(src)
	}
	return src
}

var keywords = map[string]bool{
	"let": true, "if": true, "elif": true, "else": true, "while": true,
	"for": true, "in": true, "return": true, "break": true, "continue": true,
	"func": true, "class": true, "struct": true, "interface": true,
	"enum": true, "implements": true, "import": true, "extern": true,
	"as": true, "is": true, "and": true, "or": true, "not": true,
	"none": true, "true": true, "false": true,
}

// multi-char operators, longest first.
var operators = []string{
	"->", "==", "!=", "<=", ">=", ":=",
	"+", "-", "*", "/", "%", "<", ">", "=", ".", ",",
	":", "(", ")", "{", "}", "[", "]", ";",
}

// DefaultLexer is the reference Rill tokenizer: a single forward scan with
// no backtracking, grounded on the same token-category split the teacher
// repo uses (identifiers/literals/keywords/operators/punctuation).
type DefaultLexer struct{}

func (DefaultLexer) Tokenize(source, file string) ([]Token, error) {
	l := &lexState{src: normalizeSource(source), file: file, line: 1, col: 1}
	var toks []Token
	for {
		l.skipTrivia()
		if l.eof() {
			toks = append(toks, Token{Kind: TEOF, Pos: l.pos()})
			return toks, nil
		}
		start := l.pos()
		r := l.peek()
		switch {
		case r == '"':
			s, err := l.readString()
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: TString, Text: s, Pos: start})
		case unicode.IsDigit(r):
			text, isFloat := l.readNumber()
			kind := TInt
			if isFloat {
				kind = TFloat
			}
			toks = append(toks, Token{Kind: kind, Text: text, Pos: start})
		case isIdentStart(r):
			text := l.readIdent()
			kind := TIdent
			if keywords[text] {
				kind = TKeyword
			}
			toks = append(toks, Token{Kind: kind, Text: text, Pos: start})
		default:
			op, ok := l.readOperator()
			if !ok {
				return nil, lexError(file, start, errors.LEX002, "invalid character %q", r)
			}
			kind := TPunct
			switch op {
			case "+", "-", "*", "/", "%", "==", "!=", "<=", ">=", "<", ">", "=":
				kind = TOp
			}
			toks = append(toks, Token{Kind: kind, Text: op, Pos: start})
		}
	}
}

type lexState struct {
	src       string
	file      string
	offset    int
	line, col int
}

func (l *lexState) pos() ast.Pos {
	return ast.Pos{File: l.file, Line: l.line, Col: l.col, Offset: l.offset}
}

func (l *lexState) eof() bool { return l.offset >= len(l.src) }

func (l *lexState) peek() rune {
	if l.eof() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	return r
}

func (l *lexState) peekAt(n int) rune {
	off := l.offset
	for i := 0; i < n && off < len(l.src); i++ {
		_, sz := utf8.DecodeRuneInString(l.src[off:])
		off += sz
	}
	if off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *lexState) advance() rune {
	r, sz := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += sz
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexState) skipTrivia() {
	for !l.eof() {
		r := l.peek()
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			l.advance()
			continue
		}
		if r == '#' {
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentCont(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

func (l *lexState) readIdent() string {
	var sb strings.Builder
	for !l.eof() && isIdentCont(l.peek()) {
		sb.WriteRune(l.advance())
	}
	return sb.String()
}

func (l *lexState) readNumber() (string, bool) {
	var sb strings.Builder
	isFloat := false
	for !l.eof() && unicode.IsDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if !l.eof() && l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		isFloat = true
		sb.WriteRune(l.advance())
		for !l.eof() && unicode.IsDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
	}
	return sb.String(), isFloat
}

func (l *lexState) readString() (string, error) {
	start := l.pos()
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.eof() {
			return "", lexError(l.file, start, errors.LEX001, "unterminated string literal")
		}
		r := l.advance()
		if r == '"' {
			return sb.String(), nil
		}
		if r == '\\' {
			if l.eof() {
				return "", lexError(l.file, start, errors.LEX001, "unterminated string literal")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
}

func (l *lexState) readOperator() (string, bool) {
	for _, op := range operators {
		if strings.HasPrefix(l.src[l.offset:], op) {
			for range op {
				l.advance()
			}
			return op, true
		}
	}
	return "", false
}

func lexError(file string, pos ast.Pos, code, format string, args ...any) error {
	return errors.WrapReport(errors.New("lexer", code, pos, format, args...))
}
