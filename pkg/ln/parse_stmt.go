package ln

import (
	"alan.dev/alanc/internal/diag"
	pk "alan.dev/alanc/pkg/parsekit"
)

// parseBlock parses `{ stmt* }`, folding a trailing tail expression (if any)
// into a synthetic ReturnStmt so every Body []Statement — function,
// handler, closure — has one uniform shape regardless of whether the
// source used an explicit `return` or the block-with-value form.
func parseBlock(cur pk.Cursor) ([]Statement, pk.Cursor, error) {
	stmts, tail, tailPos, next, err := parseBlockWithTail(cur)
	if err != nil {
		return nil, cur, err
	}
	if tail != nil {
		stmts = append(stmts, ReturnStmt{Value: tail, Pos: tailPos})
	}
	return stmts, next, nil
}

// parseBlockWithTail parses `{ stmt* tailExpr? }`, where tailExpr is an
// expression with no trailing `;` immediately followed by `}` (spec §4.5
// rule 7). At each position we first try the tail form, since its success
// plus a following `}` disambiguates it unambiguously from a same-looking
// ExprStmt (which would be followed by `;` instead).
func parseBlockWithTail(cur pk.Cursor) ([]Statement, Expression, diag.Position, pk.Cursor, error) {
	_, cur, err := pLBrace(cur)
	if err != nil {
		return nil, nil, diag.Position{}, cur, err
	}

	var stmts []Statement
	for {
		if _, next, err := pRBrace(cur); err == nil {
			return stmts, nil, diag.Position{}, next, nil
		}

		tailPos := cur.Position()
		if e, next, err := parseExpr(cur); err == nil {
			if _, closeNext, err2 := pRBrace(next); err2 == nil {
				return stmts, e, tailPos, closeNext, nil
			}
		}

		stmt, next, err := parseStatement(cur)
		if err != nil {
			return nil, nil, diag.Position{}, cur, err
		}
		stmts = append(stmts, stmt)
		cur = next
	}
}

func parseStatement(cur pk.Cursor) (Statement, pk.Cursor, error) {
	startPos := cur.Position()

	if _, next, err := kw("let")(cur); err == nil {
		return parseVarStmtTail(next, true, startPos)
	}
	if _, next, err := kw("const")(cur); err == nil {
		return parseVarStmtTail(next, false, startPos)
	}
	if _, next, err := kw("return")(cur); err == nil {
		return parseReturnStmt(next, startPos)
	}
	if _, next, err := kw("emit")(cur); err == nil {
		return parseEmitStmt(next, startPos)
	}
	return parseExprOrAssignStmt(cur, startPos)
}

func parseVarStmtTail(cur pk.Cursor, isLet bool, startPos diag.Position) (Statement, pk.Cursor, error) {
	nameNode, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}

	var ty TypeExpr
	if _, next2, err := pColon(next); err == nil {
		t, next3, err := parseTypeExpr(next2)
		if err != nil {
			return nil, cur, err
		}
		ty = t
		next = next3
	}

	_, next, err = pAssign(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected '=' in variable declaration")
	}
	value, next, err := parseExpr(next)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pSemi(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' terminating statement")
	}

	return VarStmt{Name: nameNode.Text, Type: ty, Value: value, IsLet: isLet, Pos: startPos}, next, nil
}

func parseReturnStmt(cur pk.Cursor, startPos diag.Position) (Statement, pk.Cursor, error) {
	if _, next, err := pSemi(cur); err == nil {
		return ReturnStmt{Pos: startPos}, next, nil
	}
	value, next, err := parseExpr(cur)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pSemi(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' terminating return statement")
	}
	return ReturnStmt{Value: value, Pos: startPos}, next, nil
}

// parseEmitStmt parses `emit EventName;` or `emit EventName(value);` (spec
// §4.5's emit form); the event payload is optional.
func parseEmitStmt(cur pk.Cursor, startPos diag.Position) (Statement, pk.Cursor, error) {
	nameNode, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}

	var value Expression
	if _, next2, err := pLParen(next); err == nil {
		if _, afterClose, err := pRParen(next2); err == nil {
			next = afterClose
		} else {
			v, next3, err := parseExpr(next2)
			if err != nil {
				return nil, cur, err
			}
			value = v
			afterClose, err := expectRParen(next3)
			if err != nil {
				return nil, cur, err
			}
			next = afterClose
		}
	}

	_, next, err = pSemi(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' terminating emit statement")
	}
	return EmitStmt{Event: nameNode.Text, Value: value, Pos: startPos}, next, nil
}

// parseExprOrAssignStmt disambiguates a bare expression statement from an
// assignment by peeking for `=` after the expression; CallExpr/VarExpr/
// IndexExpr are all valid assignment targets syntactically (the resolver
// rejects non-lvalue targets).
func parseExprOrAssignStmt(cur pk.Cursor, startPos diag.Position) (Statement, pk.Cursor, error) {
	e, next, err := parseExpr(cur)
	if err != nil {
		return nil, cur, err
	}

	if _, next2, err := pAssign(next); err == nil {
		value, next3, err := parseExpr(next2)
		if err != nil {
			return nil, cur, err
		}
		_, next4, err := pSemi(next3)
		if err != nil {
			return nil, cur, diag.New(diag.ClassParse, next3.Position(), "expected ';' terminating assignment")
		}
		return AssignStmt{Target: e, Value: value, Pos: startPos}, next4, nil
	}

	_, next2, err := pSemi(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' terminating statement")
	}
	return ExprStmt{Expr: e, Pos: startPos}, next2, nil
}
