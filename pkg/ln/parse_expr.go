package ln

import (
	"strings"

	"alan.dev/alanc/internal/diag"
	pk "alan.dev/alanc/pkg/parsekit"
)

// parseExpr is the grammar's expression entry point: an operator chain left
// exactly as written (spec §4.5 rule 4 defers precedence to the resolver,
// once a module's full operator table is known).
func parseExpr(cur pk.Cursor) (Expression, pk.Cursor, error) {
	startPos := cur.Position()

	first, next, err := parseUnaryExpr(cur)
	if err != nil {
		return nil, cur, err
	}
	cur = next

	var rest []OperatorChainElem
	for {
		opNode, next2, err := pOpSymbol(cur)
		if err != nil {
			break
		}
		operand, next3, err := parseUnaryExpr(next2)
		if err != nil {
			return nil, cur, err
		}
		rest = append(rest, OperatorChainElem{Symbol: opNode.Text, Operand: operand, Pos: opNode.Pos})
		cur = next3
	}

	if len(rest) == 0 {
		return first, cur, nil
	}
	return OperatorChainExpr{First: first, Rest: rest, Pos: startPos}, cur, nil
}

// parseUnaryExpr handles a leading prefix-operator symbol, e.g. `-x`, `!ok`,
// recursing so `--x` and mixed prefixes compose (spec §4.5 rule 4).
func parseUnaryExpr(cur pk.Cursor) (Expression, pk.Cursor, error) {
	if opNode, next, err := pOpSymbol(cur); err == nil {
		operand, next2, err := parseUnaryExpr(next)
		if err != nil {
			return nil, cur, err
		}
		return PrefixedExpr{Symbol: opNode.Text, Operand: operand, Pos: opNode.Pos}, next2, nil
	}
	return parsePostfixExpr(cur)
}

func parsePostfixExpr(cur pk.Cursor) (Expression, pk.Cursor, error) {
	pos := cur.Position()
	base, next, err := parsePrimary(cur)
	if err != nil {
		return nil, cur, err
	}
	return parsePostfix(base, pos, next)
}

// parsePostfix chains call/method-call/index suffixes onto base (spec §4.5
// rules 5 and 6: a method chain `a.f(b)` becomes CallExpr{FuncName: "f",
// Args: [a, b]}, and `a[i]` becomes IndexExpr).
func parsePostfix(base Expression, basePos diag.Position, cur pk.Cursor) (Expression, pk.Cursor, error) {
	for {
		if _, next, err := pLParen(cur); err == nil {
			ve, ok := base.(VarExpr)
			if !ok {
				return nil, cur, diag.New(diag.ClassParse, basePos, "call target must be a plain name")
			}
			args, next2, err := parseArgList(next)
			if err != nil {
				return nil, cur, err
			}
			closeNext, err := expectRParen(next2)
			if err != nil {
				return nil, cur, err
			}
			base = CallExpr{FuncName: ve.Name, Args: args, Pos: basePos}
			cur = closeNext
			continue
		}

		if _, next, err := pDot(cur); err == nil {
			methodNode, next2, err := pIdent(next)
			if err != nil {
				return nil, cur, err
			}
			_, next3, err := pLParen(next2)
			if err != nil {
				return nil, cur, err
			}
			args, next4, err := parseArgList(next3)
			if err != nil {
				return nil, cur, err
			}
			closeNext, err := expectRParen(next4)
			if err != nil {
				return nil, cur, err
			}
			base = CallExpr{FuncName: methodNode.Text, Args: append([]Expression{base}, args...), Pos: basePos}
			cur = closeNext
			continue
		}

		if _, next, err := pLBracket(cur); err == nil {
			idx, next2, err := parseExpr(next)
			if err != nil {
				return nil, cur, err
			}
			_, next3, err := pRBracket(next2)
			if err != nil {
				return nil, cur, diag.New(diag.ClassParse, next2.Position(), "expected ']' closing index expression")
			}
			base = IndexExpr{Array: base, Index: idx, Pos: basePos}
			cur = next3
			continue
		}

		break
	}
	return base, cur, nil
}

func expectRParen(cur pk.Cursor) (pk.Cursor, error) {
	_, next, err := pRParen(cur)
	if err != nil {
		return cur, diag.New(diag.ClassParse, cur.Position(), "expected ')'")
	}
	return next, nil
}

// parseArgList parses a comma-separated expression list, or no expressions
// at all (an empty arg list is not itself an error; the call site checks
// for the closing paren).
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

func parsePrimary(cur pk.Cursor) (Expression, pk.Cursor, error) {
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
	if _, _, err := kw("if")(cur); err == nil {
		return parseConditionalExpr(cur)
	}
	if _, _, err := kw("fn")(cur); err == nil {
		return parseClosureExpr(cur)
	}
	if _, next, err := pLParen(cur); err == nil {
		e, next2, err := parseExpr(next)
		if err != nil {
			return nil, cur, err
		}
		closeNext, err := expectRParen(next2)
		if err != nil {
			return nil, cur, err
		}
		return e, closeNext, nil
	}
	if n, next, err := pIdent(cur); err == nil {
		return VarExpr{Name: n.Text, Pos: startPos}, next, nil
	}

	return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected expression")
}

// unquoteStringLexeme strips the surrounding quote characters captured by
// pString's matched text. In a double-quoted literal it also interprets the
// escapes \n, \t, \\, \' and \"; a single-quoted literal's body is returned
// verbatim.
func unquoteStringLexeme(s string) string {
	if len(s) < 2 {
		return s
	}
	body := s[1 : len(s)-1]
	if s[0] == '"' {
		return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`, `\'`, "'", `\"`, `"`).Replace(body)
	}
	return body
}

// parseConditionalExpr parses `if cond { ... } else if cond { ... } else { ... }`
// as an expression (SPEC_FULL's resolution of spec §9's open question):
// every arm's block may end in a tail expression, becoming this
// ConditionalExpr's value once the resolver unifies each arm's type.
func parseConditionalExpr(cur pk.Cursor) (Expression, pk.Cursor, error) {
	startPos := cur.Position()
	_, cur, err := kw("if")(cur)
	if err != nil {
		return nil, cur, err
	}

	var arms []ConditionalArm
	for {
		cond, next, err := parseExpr(cur)
		if err != nil {
			return nil, cur, err
		}
		body, tail, _, next2, err := parseBlockWithTail(next)
		if err != nil {
			return nil, cur, err
		}
		arms = append(arms, ConditionalArm{Cond: cond, Body: body, Tail: tail})
		cur = next2

		if _, next3, err := kw("else")(cur); err == nil {
			cur = next3
			if _, next4, err := kw("if")(cur); err == nil {
				cur = next4
				continue
			}
			body, tail, _, next5, err := parseBlockWithTail(cur)
			if err != nil {
				return nil, cur, err
			}
			arms = append(arms, ConditionalArm{Cond: nil, Body: body, Tail: tail})
			cur = next5
		}
		break
	}

	return ConditionalExpr{Arms: arms, Pos: startPos}, cur, nil
}

// parseClosureExpr parses both block-bodied closures (`fn(x: int) { ... }`)
// and the `fn(x) => expr` arrow sugar, which desugars to a single synthetic
// ReturnStmt (mirroring FuncDecl.IsArrowForm).
func parseClosureExpr(cur pk.Cursor) (Expression, pk.Cursor, error) {
	startPos := cur.Position()
	_, cur, err := kw("fn")(cur)
	if err != nil {
		return nil, cur, err
	}

	params, cur, err := parseTypedNameList(cur, pLParen, pRParen)
	if err != nil {
		return nil, cur, err
	}

	var retType TypeExpr
	if _, next, err := pColon(cur); err == nil {
		t, next2, err := parseTypeExpr(next)
		if err != nil {
			return nil, cur, err
		}
		retType = t
		cur = next2
	}

	if _, next, err := pFatArrow(cur); err == nil {
		e, next2, err := parseExpr(next)
		if err != nil {
			return nil, cur, err
		}
		return ClosureExpr{
			Params: params, ReturnType: retType,
			Body: []Statement{ReturnStmt{Value: e, Pos: startPos}},
			Pos:  startPos,
		}, next2, nil
	}

	body, next, err := parseBlock(cur)
	if err != nil {
		return nil, cur, err
	}
	return ClosureExpr{Params: params, ReturnType: retType, Body: body, Pos: startPos}, next, nil
}
