package amm

import (
	"alan.dev/alanc/internal/diag"
	pk "alan.dev/alanc/pkg/parsekit"
)

// ParseModule parses AMM text (as produced by pkg/ln.EmitAMM) into a
// Module. It is also the self-verification step spec §4.6 requires of the
// AmmEmitter: emitting invalid AMM is itself an emitter bug, and this is
// what catches it.
func ParseModule(file, source string) (*Module, error) {
	cur := pk.NewCursor(file, source)
	cur = pk.SkipTrivia(cur)

	var decls []Decl
	for !cur.AtEnd() {
		d, next, err := parseDecl(cur)
		if err != nil {
			return nil, toPositioned(err)
		}
		decls = append(decls, d)
		cur = pk.SkipTrivia(next)
	}

	return &Module{Path: file, Decls: decls, Source: source}, nil
}

func toPositioned(err error) error {
	if _, ok := err.(*diag.Positioned); ok {
		return err
	}
	return pk.ToPositioned(err)
}

func parseDecl(cur pk.Cursor) (Decl, pk.Cursor, error) {
	if _, next, err := kw("const")(cur); err == nil {
		return parseConstDecl(next)
	}
	if _, next, err := kw("event")(cur); err == nil {
		return parseEventDecl(next)
	}
	if _, next, err := kw("on")(cur); err == nil {
		return parseHandler(next)
	}
	if _, next, err := kw("fn")(cur); err == nil {
		return parseFuncDecl(next)
	}
	return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected a top-level declaration (const/event/on/fn)")
}

func parseConstDecl(cur pk.Cursor) (Decl, pk.Cursor, error) {
	startPos := cur.Position()
	name, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pColon(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' after const name %q", name.Text)
	}
	ty, next, err := parseTypeExpr(next)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pAssign(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected '=' in const declaration")
	}
	value, next, err := parseExpr(next)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pSemi(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' after const declaration")
	}
	return ConstDecl{Name: name.Text, Type: ty, Value: value, Pos: startPos}, next, nil
}

func parseEventDecl(cur pk.Cursor) (Decl, pk.Cursor, error) {
	startPos := cur.Position()
	name, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pColon(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' after event name %q", name.Text)
	}
	ty, next, err := parseTypeExpr(next)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pSemi(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' after event declaration")
	}
	return EventDecl{Name: name.Text, Type: ty, Pos: startPos}, next, nil
}

func parseHandler(cur pk.Cursor) (Decl, pk.Cursor, error) {
	startPos := cur.Position()
	event, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = kw("fn")(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected 'fn' in handler declaration")
	}
	_, next, err = pLParen(next)
	if err != nil {
		return nil, cur, err
	}

	var argName string
	var argType TypeExpr
	if _, afterClose, err := pRParen(next); err == nil {
		next = afterClose
	} else {
		tn, afterArg, err := parseTypedName(next)
		if err != nil {
			return nil, cur, err
		}
		argName, argType = tn.Name, tn.Type
		next = afterArg
		_, afterClose, err := pRParen(next)
		if err != nil {
			return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ')' closing handler argument")
		}
		next = afterClose
	}

	_, next, err = pColon(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' before handler return type")
	}
	_, next, err = kw("void")(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "handler return type must be 'void'")
	}
	body, next, err := parseBlock(next)
	if err != nil {
		return nil, cur, err
	}
	return Handler{Event: event.Text, ArgName: argName, ArgType: argType, Body: body, Pos: startPos}, next, nil
}

func parseFuncDecl(cur pk.Cursor) (Decl, pk.Cursor, error) {
	startPos := cur.Position()
	name, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	params, next, err := parseTypedNameList(next)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pColon(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' before function return type")
	}
	ret, next, err := parseTypeExpr(next)
	if err != nil {
		return nil, cur, err
	}
	body, next, err := parseBlock(next)
	if err != nil {
		return nil, cur, err
	}
	return FuncDecl{Name: name.Text, Params: params, ReturnType: ret, Body: body, Pos: startPos}, next, nil
}

func parseBlock(cur pk.Cursor) ([]Statement, pk.Cursor, error) {
	_, next, err := pLBrace(cur)
	if err != nil {
		return nil, cur, err
	}
	var stmts []Statement
	for {
		if _, afterClose, err := pRBrace(next); err == nil {
			return stmts, afterClose, nil
		}
		st, afterStmt, err := parseStmt(next)
		if err != nil {
			return nil, cur, err
		}
		stmts = append(stmts, st)
		next = afterStmt
	}
}

func parseStmt(cur pk.Cursor) (Statement, pk.Cursor, error) {
	startPos := cur.Position()

	if _, next, err := kw("let")(cur); err == nil {
		return parseVarStmt(next, startPos, true)
	}
	if _, next, err := kw("const")(cur); err == nil {
		return parseVarStmt(next, startPos, false)
	}
	if _, next, err := kw("emit")(cur); err == nil {
		return parseEmitStmt(next, startPos)
	}

	name, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	if _, afterParen, err := pLParen(next); err == nil {
		args, afterArgs, err := parseArgList(afterParen)
		if err != nil {
			return nil, cur, err
		}
		afterClose, err := expectRParen(afterArgs)
		if err != nil {
			return nil, cur, err
		}
		_, afterSemi, err := pSemi(afterClose)
		if err != nil {
			return nil, cur, diag.New(diag.ClassParse, afterClose.Position(), "expected ';' after call statement")
		}
		return CallStmt{FuncName: name.Text, Args: args, Pos: startPos}, afterSemi, nil
	}
	if _, afterEq, err := pAssign(next); err == nil {
		value, afterValue, err := parseExpr(afterEq)
		if err != nil {
			return nil, cur, err
		}
		_, afterSemi, err := pSemi(afterValue)
		if err != nil {
			return nil, cur, diag.New(diag.ClassParse, afterValue.Position(), "expected ';' after assignment")
		}
		return AssignStmt{Target: name.Text, Value: value, Pos: startPos}, afterSemi, nil
	}
	return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected a statement")
}

func parseVarStmt(cur pk.Cursor, startPos diag.Position, isLet bool) (Statement, pk.Cursor, error) {
	name, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pColon(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' after variable name %q", name.Text)
	}
	ty, next, err := parseTypeExpr(next)
	if err != nil {
		return nil, cur, err
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
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' after variable declaration")
	}
	return VarStmt{Name: name.Text, Type: ty, Value: value, IsLet: isLet, Pos: startPos}, next, nil
}

func parseEmitStmt(cur pk.Cursor, startPos diag.Position) (Statement, pk.Cursor, error) {
	event, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	if _, afterSemi, err := pSemi(next); err == nil {
		return EmitStmt{Event: event.Text, Pos: startPos}, afterSemi, nil
	}
	value, next2, err := parseExpr(next)
	if err != nil {
		return nil, cur, err
	}
	_, next3, err := pSemi(next2)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next2.Position(), "expected ';' after emit statement")
	}
	return EmitStmt{Event: event.Text, Value: value, Pos: startPos}, next3, nil
}

func parseArgList(cur pk.Cursor) ([]Expression, pk.Cursor, error) {
	var args []Expression
	first, next, err := parseExpr(cur)
	if err != nil {
		return args, cur, nil
	}
	args = append(args, first)
	cur = next
	for {
		_, next2, err := pComma(cur)
		if err != nil {
			break
		}
		e, next3, err := parseExpr(next2)
		if err != nil {
			return nil, cur, err
		}
		args = append(args, e)
		cur = next3
	}
	return args, cur, nil
}

func expectRParen(cur pk.Cursor) (pk.Cursor, error) {
	_, next, err := pRParen(cur)
	if err != nil {
		return cur, diag.New(diag.ClassParse, cur.Position(), "expected ')'")
	}
	return next, nil
}

func parseExpr(cur pk.Cursor) (Expression, pk.Cursor, error) {
	startPos := cur.Position()

	if n, next, err := pFloat(cur); err == nil {
		return LiteralExpr{Kind: FloatLiteral, Value: n.Text, Pos: startPos}, next, nil
	}
	if n, next, err := pInt(cur); err == nil {
		return LiteralExpr{Kind: IntLiteral, Value: n.Text, Pos: startPos}, next, nil
	}
	if n, next, err := pString(cur); err == nil {
		return LiteralExpr{Kind: StringLiteral, Value: unquoteStringLexeme(n.Text), Pos: startPos}, next, nil
	}
	if _, next, err := pTrue(cur); err == nil {
		return LiteralExpr{Kind: BoolLiteral, Value: "true", Pos: startPos}, next, nil
	}
	if _, next, err := pFalse(cur); err == nil {
		return LiteralExpr{Kind: BoolLiteral, Value: "false", Pos: startPos}, next, nil
	}
	if _, _, err := kw("fn")(cur); err == nil {
		return parseClosureExpr(cur)
	}
	if _, next, err := pLBracket(cur); err == nil {
		return parseArrayExpr(next, startPos)
	}
	if _, next, err := pLParen(cur); err == nil {
		return parseParenOrTuple(next, startPos)
	}
	if n, next, err := pIdent(cur); err == nil {
		if _, afterParen, err := pLParen(next); err == nil {
			args, afterArgs, err := parseArgList(afterParen)
			if err != nil {
				return nil, cur, err
			}
			afterClose, err := expectRParen(afterArgs)
			if err != nil {
				return nil, cur, err
			}
			return CallExpr{FuncName: n.Text, Args: args, Pos: startPos}, afterClose, nil
		}
		return VarExpr{Name: n.Text, Pos: startPos}, next, nil
	}

	return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected expression")
}

// parseParenOrTuple disambiguates a parenthesized sub-expression from a
// dispatch-table tuple cell `(cond, closure)`: both open with '(', but a
// tuple has a top-level comma before its closing ')'.
func parseParenOrTuple(cur pk.Cursor, startPos diag.Position) (Expression, pk.Cursor, error) {
	first, next, err := parseExpr(cur)
	if err != nil {
		return nil, cur, err
	}
	elems := []Expression{first}
	for {
		_, afterComma, err := pComma(next)
		if err != nil {
			break
		}
		e, afterElem, err := parseExpr(afterComma)
		if err != nil {
			return nil, cur, err
		}
		elems = append(elems, e)
		next = afterElem
	}
	closeNext, err := expectRParen(next)
	if err != nil {
		return nil, cur, err
	}
	if len(elems) == 1 {
		return elems[0], closeNext, nil
	}
	return TupleExpr{Elems: elems, Pos: startPos}, closeNext, nil
}

func parseArrayExpr(cur pk.Cursor, startPos diag.Position) (Expression, pk.Cursor, error) {
	if _, next, err := pRBracket(cur); err == nil {
		return ArrayExpr{Pos: startPos}, next, nil
	}
	var elems []Expression
	first, next, err := parseExpr(cur)
	if err != nil {
		return nil, cur, err
	}
	elems = append(elems, first)
	for {
		_, afterComma, err := pComma(next)
		if err != nil {
			break
		}
		e, afterElem, err := parseExpr(afterComma)
		if err != nil {
			return nil, cur, err
		}
		elems = append(elems, e)
		next = afterElem
	}
	_, afterClose, err := pRBracket(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ']' closing array literal")
	}
	return ArrayExpr{Elems: elems, Pos: startPos}, afterClose, nil
}

func parseClosureExpr(cur pk.Cursor) (Expression, pk.Cursor, error) {
	startPos := cur.Position()
	_, next, err := kw("fn")(cur)
	if err != nil {
		return nil, cur, err
	}
	params, next, err := parseTypedNameList(next)
	if err != nil {
		return nil, cur, err
	}
	_, next, err = pColon(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' before closure return type")
	}
	ret, next, err := parseTypeExpr(next)
	if err != nil {
		return nil, cur, err
	}
	body, next, err := parseBlock(next)
	if err != nil {
		return nil, cur, err
	}
	return ClosureExpr{Params: params, ReturnType: ret, Body: body, Pos: startPos}, next, nil
}

func unquoteStringLexeme(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func parseTypeExpr(cur pk.Cursor) (TypeExpr, pk.Cursor, error) {
	nameNode, next, err := pIdent(cur)
	if err != nil {
		return TypeExpr{}, cur, err
	}
	te := TypeExpr{Name: nameNode.Text, Pos: nameNode.Pos}

	if _, afterAngle, err := pLAngle(next); err == nil {
		args, afterArgs, err := parseTypeArgList(afterAngle)
		if err != nil {
			return TypeExpr{}, cur, err
		}
		if _, afterClose, err := pRAngle(afterArgs); err == nil {
			te.Args = args
			return te, afterClose, nil
		}
		return TypeExpr{}, cur, diag.New(diag.ClassParse, afterArgs.Position(), "expected '>' closing generic argument list for %q", te.Name)
	}
	return te, next, nil
}

func parseTypeArgList(cur pk.Cursor) ([]TypeExpr, pk.Cursor, error) {
	var args []TypeExpr
	first, next, err := parseTypeExpr(cur)
	if err != nil {
		return nil, cur, err
	}
	args = append(args, first)
	cur = next
	for {
		_, afterComma, err := pComma(cur)
		if err != nil {
			break
		}
		arg, afterArg, err := parseTypeExpr(afterComma)
		if err != nil {
			return nil, cur, err
		}
		args = append(args, arg)
		cur = afterArg
	}
	return args, cur, nil
}

func parseTypedName(cur pk.Cursor) (TypedName, pk.Cursor, error) {
	nameNode, next, err := pIdent(cur)
	if err != nil {
		return TypedName{}, cur, err
	}
	_, next2, err := pColon(next)
	if err != nil {
		return TypedName{}, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' after parameter name %q", nameNode.Text)
	}
	ty, next3, err := parseTypeExpr(next2)
	if err != nil {
		return TypedName{}, cur, err
	}
	return TypedName{Name: nameNode.Text, Type: ty}, next3, nil
}

func parseTypedNameList(cur pk.Cursor) ([]TypedName, pk.Cursor, error) {
	var names []TypedName
	_, cur, err := pLParen(cur)
	if err != nil {
		return nil, cur, err
	}
	if _, afterClose, err := pRParen(cur); err == nil {
		return names, afterClose, nil
	}
	first, next, err := parseTypedName(cur)
	if err != nil {
		return nil, cur, err
	}
	names = append(names, first)
	cur = next
	for {
		_, afterComma, err := pComma(cur)
		if err != nil {
			break
		}
		tn, afterTn, err := parseTypedName(afterComma)
		if err != nil {
			return nil, cur, err
		}
		names = append(names, tn)
		cur = afterTn
	}
	_, cur, err = pRParen(cur)
	if err != nil {
		return nil, cur, err
	}
	return names, cur, nil
}
