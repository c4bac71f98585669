package frontend

import (
	"strconv"
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

// Operator precedence levels, Pratt-style, mirroring the teacher parser's
// prefix/infix parselet split.
const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precComparison
	precAdditive
	precMultiplicative
	precUnary
	precCall // call, index, member access, is/as
)

var binPrec = map[string]int{
	"or": precOr, "and": precAnd,
	"==": precEquality, "!=": precEquality,
	"<": precComparison, ">": precComparison, "<=": precComparison, ">=": precComparison,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

// DefaultParser is the reference recursive-descent / Pratt parser for
// Rill, producing an *ast.Program directly (no separate "module" wrapper
// — a Rill source file is the unit the module resolver mangles whole).
type DefaultParser struct{}

func (DefaultParser) Parse(tokens []Token) (*ast.Program, error) {
	p := &parseState{toks: tokens}
	prog := &ast.Program{}
	for !p.curIs(TEOF) {
		if err := p.parseTop(prog); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

type parseState struct {
	toks []Token
	pos  int
}

func (p *parseState) cur() Token  { return p.toks[p.pos] }
func (p *parseState) peek() Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}
func (p *parseState) advance() Token { t := p.cur(); if p.pos < len(p.toks)-1 { p.pos++ }; return t }
func (p *parseState) curIs(k TokenKind) bool { return p.cur().Kind == k }
func (p *parseState) curText(text string) bool {
	return p.cur().Text == text && (p.cur().Kind == TKeyword || p.cur().Kind == TOp || p.cur().Kind == TPunct)
}

func (p *parseState) expect(text string) (Token, error) {
	if p.cur().Text != text {
		return Token{}, parseErr(p.cur(), "expected %q, got %q", text, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *parseState) expectIdent() (Token, error) {
	if p.cur().Kind != TIdent {
		return Token{}, parseErr(p.cur(), "expected identifier, got %q", p.cur().Text)
	}
	return p.advance(), nil
}

func parseErr(t Token, format string, args ...any) error {
	return errors.WrapReport(errors.New("parser", errors.PAR001, t.Pos, format, args...))
}

// ---------------- top level ----------------

func (p *parseState) parseTop(prog *ast.Program) error {
	switch {
	case p.curText("import"):
		return p.parseImport(prog)
	case p.curText("extern"):
		return p.parseExtern(prog)
	case p.curText("func"):
		f, err := p.parseFuncDecl()
		if err != nil {
			return err
		}
		prog.Functions = append(prog.Functions, f)
		return nil
	case p.curText("class"):
		c, err := p.parseClassDecl()
		if err != nil {
			return err
		}
		prog.Classes = append(prog.Classes, c)
		return nil
	case p.curText("struct"):
		s, err := p.parseStructDecl()
		if err != nil {
			return err
		}
		prog.Structs = append(prog.Structs, s)
		return nil
	case p.curText("interface"):
		i, err := p.parseInterfaceDecl()
		if err != nil {
			return err
		}
		prog.Interfaces = append(prog.Interfaces, i)
		return nil
	case p.curText("enum"):
		e, err := p.parseEnumDecl()
		if err != nil {
			return err
		}
		prog.Enums = append(prog.Enums, e)
		return nil
	default:
		st, err := p.parseStmt()
		if err != nil {
			return err
		}
		prog.TopLevel = append(prog.TopLevel, st)
		return nil
	}
}

func (p *parseState) parseImport(prog *ast.Program) error {
	pos := p.advance().Pos // "import"
	var parts []string
	id, err := p.expectIdent()
	if err != nil {
		return err
	}
	parts = append(parts, id.Text)
	for p.curText(".") {
		p.advance()
		id, err := p.expectIdent()
		if err != nil {
			return err
		}
		parts = append(parts, id.Text)
	}
	if _, err := p.expect("as"); err != nil {
		return err
	}
	alias, err := p.expectIdent()
	if err != nil {
		return err
	}
	prog.Imports = append(prog.Imports, &ast.ImportDecl{
		Path: strings.Join(parts, "."), Alias: alias.Text, Pos: pos,
	})
	return nil
}

func (p *parseState) parseExtern(prog *ast.Program) error {
	pos := p.advance().Pos // "extern"
	lib, err := p.expectIdent()
	if err != nil {
		return err
	}
	if _, err := p.expect("as"); err != nil {
		return err
	}
	alias, err := p.expectIdent()
	if err != nil {
		return err
	}
	prog.Externs = append(prog.Externs, &ast.ExternDecl{LibName: lib.Text, Alias: alias.Text, Pos: pos})
	return nil
}

func (p *parseState) parseParamList() ([]*ast.Param, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var params []*ast.Param
	for !p.curText(")") {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		// The implicit receiver parameter carries no type annotation — the
		// type checker binds it to the enclosing class/struct name.
		if name.Text == "self" && len(params) == 0 && !p.curText(":") {
			params = append(params, &ast.Param{Name: name.Text, Ty: ast.TypeRef{Name: "", Pos: name.Pos}, Pos: name.Pos})
			if p.curText(",") {
				p.advance()
			}
			continue
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{Name: name.Text, Ty: ast.TypeRef{Name: ty, Pos: name.Pos}, Pos: name.Pos})
		if p.curText(",") {
			p.advance()
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parseState) parseFuncDecl() (*ast.FuncDecl, error) {
	pos := p.advance().Pos // "func"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var typeParams []string
	if p.curText("[") {
		p.advance()
		tp, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		typeParams = append(typeParams, tp.Text)
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	ret := ast.TypeRef{Name: "void", Pos: pos}
	if p.curText("->") {
		p.advance()
		rt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ret = ast.TypeRef{Name: rt, Pos: pos}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{Name: name.Text, TypeParams: typeParams, Params: params, Ret: ret, Body: body, Pos: pos}, nil
}

func (p *parseState) parseClassDecl() (*ast.ClassDecl, error) {
	pos := p.advance().Pos // "class"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var implements []string
	if p.curText("implements") {
		p.advance()
		id, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		implements = append(implements, id.Text)
		for p.curText(",") {
			p.advance()
			id, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			implements = append(implements, id.Text)
		}
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	cd := &ast.ClassDecl{Name: name.Text, Implements: implements, Pos: pos}
	for !p.curText("}") {
		if p.curText("func") {
			m, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			cd.Methods = append(cd.Methods, m)
			continue
		}
		fd, err := p.parseFieldDecl()
		if err != nil {
			return nil, err
		}
		cd.Fields = append(cd.Fields, fd)
	}
	p.advance() // "}"
	return cd, nil
}

func (p *parseState) parseFieldDecl() (*ast.FieldDecl, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.FieldDecl{Name: name.Text, Ty: ast.TypeRef{Name: ty, Pos: name.Pos}, Pos: name.Pos}, nil
}

func (p *parseState) parseStructDecl() (*ast.StructDecl, error) {
	pos := p.advance().Pos // "struct"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	sd := &ast.StructDecl{Name: name.Text, Pos: pos}
	for !p.curText("}") {
		if p.curText("func") {
			m, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			sd.Methods = append(sd.Methods, m)
			continue
		}
		fd, err := p.parseFieldDecl()
		if err != nil {
			return nil, err
		}
		sd.Fields = append(sd.Fields, fd)
	}
	p.advance() // "}"
	return sd, nil
}

func (p *parseState) parseInterfaceDecl() (*ast.InterfaceDecl, error) {
	pos := p.advance().Pos // "interface"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	id := &ast.InterfaceDecl{Name: name.Text, Pos: pos}
	for !p.curText("}") {
		if p.curText("func") {
			p.advance()
		}
		mname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		ret := ast.TypeRef{Name: "void", Pos: mname.Pos}
		if p.curText("->") {
			p.advance()
			rt, err := p.parseType()
			if err != nil {
				return nil, err
			}
			ret = ast.TypeRef{Name: rt, Pos: mname.Pos}
		}
		id.MethodSigs = append(id.MethodSigs, &ast.MethodSig{Name: mname.Text, Params: params, Ret: ret, Pos: mname.Pos})
	}
	p.advance() // "}"
	return id, nil
}

func (p *parseState) parseEnumDecl() (*ast.EnumDecl, error) {
	pos := p.advance().Pos // "enum"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	ed := &ast.EnumDecl{Name: name.Text, Pos: pos}
	for !p.curText("}") {
		vname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		v := &ast.EnumVariant{Name: vname.Text, Pos: vname.Pos}
		if p.curText("=") {
			p.advance()
			numTok := p.advance()
			n, err := strconv.ParseInt(numTok.Text, 10, 64)
			if err != nil {
				return nil, parseErr(numTok, "invalid enum value %q", numTok.Text)
			}
			v.Value = &n
			v.HasExplicit = true
		}
		ed.Variants = append(ed.Variants, v)
		if p.curText(",") {
			p.advance()
		}
	}
	p.advance() // "}"
	return ed, nil
}

// ---------------- types ----------------

func (p *parseState) parseType() (string, error) {
	if p.curIs(TIdent) && p.cur().Text == "List" {
		p.advance()
		if _, err := p.expect("["); err != nil {
			return "", err
		}
		inner, err := p.parseType()
		if err != nil {
			return "", err
		}
		if _, err := p.expect("]"); err != nil {
			return "", err
		}
		return "List[" + inner + "]", nil
	}
	if p.curIs(TIdent) && p.cur().Text == "Dict" {
		p.advance()
		if _, err := p.expect("["); err != nil {
			return "", err
		}
		k, err := p.parseType()
		if err != nil {
			return "", err
		}
		if _, err := p.expect(","); err != nil {
			return "", err
		}
		v, err := p.parseType()
		if err != nil {
			return "", err
		}
		if _, err := p.expect("]"); err != nil {
			return "", err
		}
		return "Dict[" + k + "," + v + "]", nil
	}
	if p.curIs(TIdent) && p.cur().Text == "Fn" {
		p.advance()
		if _, err := p.expect("("); err != nil {
			return "", err
		}
		var params []string
		for !p.curText(")") {
			t, err := p.parseType()
			if err != nil {
				return "", err
			}
			params = append(params, t)
			if p.curText(",") {
				p.advance()
			}
		}
		p.advance() // ")"
		if _, err := p.expect("->"); err != nil {
			return "", err
		}
		ret, err := p.parseType()
		if err != nil {
			return "", err
		}
		return "Fn(" + strings.Join(params, ",") + ")->" + ret, nil
	}
	if p.curText("(") {
		p.advance()
		var elems []string
		for !p.curText(")") {
			t, err := p.parseType()
			if err != nil {
				return "", err
			}
			elems = append(elems, t)
			if p.curText(",") {
				p.advance()
			}
		}
		p.advance() // ")"
		if len(elems) < 2 {
			return "", parseErr(p.cur(), "tuple type needs arity >= 2")
		}
		return "(" + strings.Join(elems, ",") + ")", nil
	}
	id, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	return id.Text, nil
}

// ---------------- statements ----------------

func (p *parseState) parseBlock() (*ast.Block, error) {
	pos, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	b := &ast.Block{Pos: pos.Pos}
	for !p.curText("}") {
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, st)
	}
	p.advance() // "}"
	return b, nil
}

func (p *parseState) parseStmt() (ast.Stmt, error) {
	switch {
	case p.curText("let"):
		return p.parseVarDecl()
	case p.curText("return"):
		pos := p.advance().Pos
		if p.curText("}") {
			return &ast.SReturn{Pos: pos}, nil
		}
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		return &ast.SReturn{Value: e, Pos: pos}, nil
	case p.curText("break"):
		return &ast.SBreak{Pos: p.advance().Pos}, nil
	case p.curText("continue"):
		return &ast.SContinue{Pos: p.advance().Pos}, nil
	case p.curText("if"):
		return p.parseIf()
	case p.curText("while"):
		return p.parseWhile()
	case p.curText("for"):
		return p.parseFor()
	case p.curText("{"):
		blk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.SBlock{Block: blk, Pos: blk.Pos}, nil
	}

	// ident "," ident {"," ident} ":=" expr  — tuple destructure
	if p.curIs(TIdent) && p.peek().Text == "," {
		save := p.pos
		names, ok := p.tryParseNameList()
		if ok && p.curText(":=") {
			pos := p.advance().Pos
			val, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			return &ast.STupleDestructure{Names: names, Value: val, Pos: pos}, nil
		}
		p.pos = save
	}

	e, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	switch {
	case p.curText("="):
		pos := p.advance().Pos
		val, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		switch lhs := e.(type) {
		case *ast.EVar:
			return &ast.SAssign{Name: lhs.Name, Value: val, Pos: pos}, nil
		case *ast.EMemberAccess:
			return &ast.SMemberAssign{Obj: lhs.Obj, Field: lhs.Field, Value: val, Pos: pos}, nil
		case *ast.EIndex:
			return &ast.SIndexAssign{Obj: lhs.Obj, Index: lhs.Index, Value: val, Pos: pos}, nil
		default:
			return nil, parseErr(p.cur(), "invalid assignment target")
		}
	default:
		return &ast.SExpr{Value: e, Pos: e.Position()}, nil
	}
}

func (p *parseState) tryParseNameList() ([]string, bool) {
	var names []string
	if !p.curIs(TIdent) {
		return nil, false
	}
	names = append(names, p.advance().Text)
	for p.curText(",") {
		p.advance()
		if !p.curIs(TIdent) {
			return nil, false
		}
		names = append(names, p.advance().Text)
	}
	return names, true
}

func (p *parseState) parseVarDecl() (ast.Stmt, error) {
	pos := p.advance().Pos // "let"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var ty *ast.TypeRef
	if p.curText(":") {
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ty = &ast.TypeRef{Name: t, Pos: name.Pos}
		if _, err := p.expect("="); err != nil {
			return nil, err
		}
	} else if _, err := p.expect(":="); err != nil {
		return nil, err
	}
	val, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	return &ast.SVarDecl{Name: name.Text, Ty: ty, Value: val, Pos: pos}, nil
}

func (p *parseState) parseIf() (ast.Stmt, error) {
	pos := p.advance().Pos // "if"
	si := &ast.SIf{Pos: pos}
	cond, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	blk, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	si.Arms = append(si.Arms, &ast.IfArm{Cond: cond, Block: blk, Pos: pos})
	for p.curText("elif") {
		epos := p.advance().Pos
		econd, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		eblk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		si.Arms = append(si.Arms, &ast.IfArm{Cond: econd, Block: eblk, Pos: epos})
	}
	if p.curText("else") {
		epos := p.advance().Pos
		eblk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		si.Arms = append(si.Arms, &ast.IfArm{Cond: nil, Block: eblk, Pos: epos})
	}
	return si, nil
}

func (p *parseState) parseWhile() (ast.Stmt, error) {
	pos := p.advance().Pos
	cond, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.SWhile{Cond: cond, Body: body, Pos: pos}, nil
}

func (p *parseState) parseFor() (ast.Stmt, error) {
	pos := p.advance().Pos // "for"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("in"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.SFor{VarName: name.Text, VarTy: ast.TypeRef{Name: ty, Pos: name.Pos}, Iter: iter, Body: body, Pos: pos}, nil
}

// ---------------- expressions (Pratt) ----------------

func (p *parseState) parseExpr(prec int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		if p.curIs(TOp) || p.curText("and") || p.curText("or") {
			if bp, ok := binPrec[p.cur().Text]; ok && bp > prec {
				op := p.advance()
				right, err := p.parseExpr(bp)
				if err != nil {
					return nil, err
				}
				left = &ast.EBinary{Op: op.Text, Lhs: left, Rhs: right, Pos: op.Pos}
				continue
			}
		}
		if p.curText("is") && precCall > prec {
			op := p.advance()
			tyname, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			left = &ast.EIs{Lhs: left, TyName: tyname.Text, Pos: op.Pos}
			continue
		}
		if p.curText("as") && precCall > prec {
			op := p.advance()
			cls, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			left = &ast.EAs{Lhs: left, ClsName: cls.Text, Pos: op.Pos}
			continue
		}
		if p.curText(".") && precCall > prec {
			op := p.advance()
			field, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			left = &ast.EMemberAccess{Obj: left, Field: field.Text, Pos: op.Pos}
			continue
		}
		if p.curText("[") && precCall > prec {
			op := p.advance()
			idx, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			left = &ast.EIndex{Obj: left, Index: idx, Pos: op.Pos}
			continue
		}
		if p.curText("(") && precCall > prec {
			call, err := p.parseCallArgs(left, "")
			if err != nil {
				return nil, err
			}
			left = call
			continue
		}
		break
	}
	return left, nil
}

func (p *parseState) parseCallArgs(callee ast.Expr, typeParam string) (ast.Expr, error) {
	pos, err := p.expect("(")
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.curText(")") {
		a, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.curText(",") {
			p.advance()
		}
	}
	p.advance() // ")"
	return &ast.ECall{Callee: callee, TypeParam: typeParam, Args: args, Pos: pos.Pos}, nil
}

func (p *parseState) parsePrefix() (ast.Expr, error) {
	t := p.cur()
	switch {
	case t.Kind == TInt:
		p.advance()
		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, parseErr(t, "invalid integer literal %q", t.Text)
		}
		return &ast.EInt{Value: n, Pos: t.Pos}, nil
	case t.Kind == TFloat:
		p.advance()
		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, parseErr(t, "invalid float literal %q", t.Text)
		}
		return &ast.EFloat{Value: f, Pos: t.Pos}, nil
	case t.Kind == TString:
		p.advance()
		return &ast.EString{Value: t.Text, Pos: t.Pos}, nil
	case t.Text == "true":
		p.advance()
		return &ast.EBool{Value: true, Pos: t.Pos}, nil
	case t.Text == "false":
		p.advance()
		return &ast.EBool{Value: false, Pos: t.Pos}, nil
	case t.Text == "none":
		p.advance()
		return &ast.ENone{Pos: t.Pos}, nil
	case t.Text == "not" || t.Text == "-":
		p.advance()
		rhs, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.EUnary{Op: t.Text, Rhs: rhs, Pos: t.Pos}, nil
	case t.Text == "(":
		p.advance()
		first, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if p.curText(",") {
			elems := []ast.Expr{first}
			for p.curText(",") {
				p.advance()
				e, err := p.parseExpr(precLowest)
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return &ast.ETuple{Elems: elems, Pos: t.Pos}, nil
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return first, nil
	case t.Kind == TIdent && t.Text == "List":
		return p.parseListLit()
	case t.Kind == TIdent && t.Text == "Dict":
		return p.parseDictLit()
	case t.Kind == TIdent:
		p.advance()
		name := t.Text
		if p.curText("[") {
			// generic call: name[Type](args)
			p.advance()
			typeParam, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			return p.parseCallArgs(&ast.EVar{Name: name, Pos: t.Pos}, typeParam)
		}
		return &ast.EVar{Name: name, Pos: t.Pos}, nil
	}
	return nil, parseErr(t, "unexpected token %q", t.Text)
}

func (p *parseState) parseListLit() (ast.Expr, error) {
	pos := p.advance().Pos // "List"
	if _, err := p.expect("["); err != nil {
		return nil, err
	}
	elemTy, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	lit := &ast.EListLit{ElemType: elemTy, Pos: pos}
	if p.curText("{") {
		p.advance()
		for !p.curText("}") {
			e, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			lit.Elems = append(lit.Elems, e)
			if p.curText(",") {
				p.advance()
			}
		}
		p.advance() // "}"
	}
	return lit, nil
}

func (p *parseState) parseDictLit() (ast.Expr, error) {
	pos := p.advance().Pos // "Dict"
	if _, err := p.expect("["); err != nil {
		return nil, err
	}
	keyTy, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(","); err != nil {
		return nil, err
	}
	valTy, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	lit := &ast.EDictLit{KeyType: keyTy, ValType: valTy, Pos: pos}
	if p.curText("{") {
		p.advance()
		for !p.curText("}") {
			k, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(":"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			lit.Keys = append(lit.Keys, k)
			lit.Vals = append(lit.Vals, v)
			if p.curText(",") {
				p.advance()
			}
		}
		p.advance() // "}"
	}
	return lit, nil
}
