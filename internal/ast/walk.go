package ast

// ExprRewriter rewrites an expression subtree and returns its replacement
// (often the same node, mutated in place). TypeRewriter rewrites the Name
// of a TypeRef in place.
type ExprRewriter func(Expr) Expr
type TypeRewriter func(string) string

// WalkExpr recursively applies rw to e and every sub-expression,
// bottom-up: children are rewritten first, then rw is applied to the
// parent. This is the shape both the module resolver (renaming) and the
// type checker (monomorphization substitution) need.
func WalkExpr(e Expr, rw ExprRewriter) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *EUnary:
		n.Rhs = WalkExpr(n.Rhs, rw)
	case *EBinary:
		n.Lhs = WalkExpr(n.Lhs, rw)
		n.Rhs = WalkExpr(n.Rhs, rw)
	case *ECall:
		n.Callee = WalkExpr(n.Callee, rw)
		for i, a := range n.Args {
			n.Args[i] = WalkExpr(a, rw)
		}
	case *EMemberAccess:
		n.Obj = WalkExpr(n.Obj, rw)
	case *EIndex:
		n.Obj = WalkExpr(n.Obj, rw)
		n.Index = WalkExpr(n.Index, rw)
	case *EIs:
		n.Lhs = WalkExpr(n.Lhs, rw)
	case *EAs:
		n.Lhs = WalkExpr(n.Lhs, rw)
	case *ETuple:
		for i, el := range n.Elems {
			n.Elems[i] = WalkExpr(el, rw)
		}
	case *EListLit:
		for i, el := range n.Elems {
			n.Elems[i] = WalkExpr(el, rw)
		}
	case *EDictLit:
		for i := range n.Keys {
			n.Keys[i] = WalkExpr(n.Keys[i], rw)
		}
		for i := range n.Vals {
			n.Vals[i] = WalkExpr(n.Vals[i], rw)
		}
	}
	return rw(e)
}

// WalkStmts applies onExpr to every expression reachable from stmts and
// onType to every TypeRef.Name, recursing into nested blocks.
func WalkStmts(stmts []Stmt, onExpr ExprRewriter, onType TypeRewriter) {
	for _, st := range stmts {
		switch s := st.(type) {
		case *SVarDecl:
			if s.Ty != nil {
				s.Ty.Name = onType(s.Ty.Name)
			}
			s.Value = WalkExpr(s.Value, onExpr)
		case *STupleDestructure:
			s.Value = WalkExpr(s.Value, onExpr)
		case *SAssign:
			renamed := WalkExpr(&EVar{Name: s.Name, Pos: s.Pos}, onExpr)
			if v, ok := renamed.(*EVar); ok {
				s.Name = v.Name
			}
			s.Value = WalkExpr(s.Value, onExpr)
		case *SMemberAssign:
			s.Obj = WalkExpr(s.Obj, onExpr)
			s.Value = WalkExpr(s.Value, onExpr)
		case *SIndexAssign:
			s.Obj = WalkExpr(s.Obj, onExpr)
			s.Index = WalkExpr(s.Index, onExpr)
			s.Value = WalkExpr(s.Value, onExpr)
		case *SExpr:
			s.Value = WalkExpr(s.Value, onExpr)
		case *SReturn:
			if s.Value != nil {
				s.Value = WalkExpr(s.Value, onExpr)
			}
		case *SIf:
			for _, arm := range s.Arms {
				if arm.Cond != nil {
					arm.Cond = WalkExpr(arm.Cond, onExpr)
				}
				WalkStmts(arm.Block.Stmts, onExpr, onType)
			}
		case *SWhile:
			s.Cond = WalkExpr(s.Cond, onExpr)
			WalkStmts(s.Body.Stmts, onExpr, onType)
		case *SFor:
			s.VarTy.Name = onType(s.VarTy.Name)
			s.Iter = WalkExpr(s.Iter, onExpr)
			WalkStmts(s.Body.Stmts, onExpr, onType)
		case *SBlock:
			WalkStmts(s.Block.Stmts, onExpr, onType)
		}
	}
}

// CollectLocalNames returns every name declared as a parameter, var decl,
// tuple-destructuring slot, or for-loop variable within params/stmts. Used
// to compute scope-aware shadowing during import renaming.
func CollectLocalNames(params []*Param, stmts []Stmt) map[string]bool {
	names := map[string]bool{}
	for _, p := range params {
		names[p.Name] = true
	}
	var walk func([]Stmt)
	walk = func(ss []Stmt) {
		for _, st := range ss {
			switch s := st.(type) {
			case *SVarDecl:
				names[s.Name] = true
			case *STupleDestructure:
				for _, n := range s.Names {
					names[n] = true
				}
			case *SIf:
				for _, arm := range s.Arms {
					walk(arm.Block.Stmts)
				}
			case *SWhile:
				walk(s.Body.Stmts)
			case *SFor:
				names[s.VarName] = true
				walk(s.Body.Stmts)
			case *SBlock:
				walk(s.Block.Stmts)
			}
		}
	}
	walk(stmts)
	return names
}
