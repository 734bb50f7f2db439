package aga

import (
	"strconv"

	"alan.dev/alanc/internal/diag"
	pk "alan.dev/alanc/pkg/parsekit"
)

// ParseModule parses AGA text (as produced by this package's Emit, or read
// back from a `.aga` file by pkg/pipeline/pkg/agc) into a Module. This is
// both the Pipeline's `aga -> agc` entry point and the AgaEmitter's own
// self-verification step (spec §4.7 follows §4.6's AmmEmitter convention
// of re-parsing its own output).
func ParseModule(file, source string) (*Module, error) {
	cur := pk.NewCursor(file, source)
	cur = pk.SkipTrivia(cur)

	mod := &Module{Path: file, Source: source}
	for !cur.AtEnd() {
		next, err := parseTopLevel(cur, mod)
		if err != nil {
			return nil, toPositioned(err)
		}
		cur = pk.SkipTrivia(next)
	}
	return mod, nil
}

func toPositioned(err error) error {
	if _, ok := err.(*diag.Positioned); ok {
		return err
	}
	return pk.ToPositioned(err)
}

func parseTopLevel(cur pk.Cursor, mod *Module) (pk.Cursor, error) {
	if _, next, err := kw("global")(cur); err == nil {
		g, after, err := parseGlobal(next)
		if err != nil {
			return cur, err
		}
		mod.Globals = append(mod.Globals, g)
		return after, nil
	}
	if _, next, err := kw("event")(cur); err == nil {
		e, after, err := parseEvent(next)
		if err != nil {
			return cur, err
		}
		mod.Events = append(mod.Events, e)
		return after, nil
	}
	if _, next, err := kw("handler")(cur); err == nil {
		h, after, err := parseHandler(next)
		if err != nil {
			return cur, err
		}
		mod.Handlers = append(mod.Handlers, h)
		return after, nil
	}
	return cur, diag.New(diag.ClassParse, cur.Position(), "expected a top-level declaration (global/event/handler)")
}

func parseGlobal(cur pk.Cursor) (GlobalDecl, pk.Cursor, error) {
	start := cur.Position()
	name, next, err := pIdent(cur)
	if err != nil {
		return GlobalDecl{}, cur, err
	}
	_, next, err = pColon(next)
	if err != nil {
		return GlobalDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' after global name %q", name.Text)
	}
	ty, next, err := pIdent(next)
	if err != nil {
		return GlobalDecl{}, cur, err
	}
	_, next, err = pAt(next)
	if err != nil {
		return GlobalDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected '@' before global address")
	}
	addr, next, err := parseSignedInt(next)
	if err != nil {
		return GlobalDecl{}, cur, err
	}
	_, next, err = kw("size")(next)
	if err != nil {
		return GlobalDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected 'size' in global declaration")
	}
	size, next, err := parseSignedInt(next)
	if err != nil {
		return GlobalDecl{}, cur, err
	}
	_, next, err = pAssign(next)
	if err != nil {
		return GlobalDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected '=' in global declaration")
	}
	lit, next, err := parseLiteral(next)
	if err != nil {
		return GlobalDecl{}, cur, err
	}
	_, next, err = pSemi(next)
	if err != nil {
		return GlobalDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' after global declaration")
	}
	return GlobalDecl{Name: name.Text, Type: ty.Text, Address: addr, Size: size, Value: lit, Pos: start}, next, nil
}

func parseEvent(cur pk.Cursor) (EventDecl, pk.Cursor, error) {
	start := cur.Position()
	name, next, err := pIdent(cur)
	if err != nil {
		return EventDecl{}, cur, err
	}
	_, next, err = pHash(next)
	if err != nil {
		return EventDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected '#' before event id")
	}
	id, next, err := parseSignedInt(next)
	if err != nil {
		return EventDecl{}, cur, err
	}
	_, next, err = kw("size")(next)
	if err != nil {
		return EventDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected 'size' in event declaration")
	}
	size, next, err := parseSignedInt(next)
	if err != nil {
		return EventDecl{}, cur, err
	}
	_, next, err = pSemi(next)
	if err != nil {
		return EventDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' after event declaration")
	}
	return EventDecl{Name: name.Text, ID: id, PayloadSize: size, Pos: start}, next, nil
}

func parseHandler(cur pk.Cursor) (HandlerDecl, pk.Cursor, error) {
	start := cur.Position()
	name, next, err := pIdent(cur)
	if err != nil {
		return HandlerDecl{}, cur, err
	}
	_, next, err = pHash(next)
	if err != nil {
		return HandlerDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected '#' before handler event id")
	}
	id, next, err := parseSignedInt(next)
	if err != nil {
		return HandlerDecl{}, cur, err
	}
	_, next, err = kw("frame")(next)
	if err != nil {
		return HandlerDecl{}, cur, diag.New(diag.ClassParse, next.Position(), "expected 'frame' in handler declaration")
	}
	frame, next, err := parseSignedInt(next)
	if err != nil {
		return HandlerDecl{}, cur, err
	}
	_, next, err = pLBrace(next)
	if err != nil {
		return HandlerDecl{}, cur, err
	}
	var lines []StmtLine
	for {
		if _, after, err := pRBrace(next); err == nil {
			return HandlerDecl{Event: name.Text, EventID: id, FrameSize: frame, Statements: lines, Pos: start}, after, nil
		}
		line, after, err := parseStmtLine(next)
		if err != nil {
			return HandlerDecl{}, cur, err
		}
		lines = append(lines, line)
		next = after
	}
}

func parseStmtLine(cur pk.Cursor) (StmtLine, pk.Cursor, error) {
	start := cur.Position()
	_, next, err := kw("line")(cur)
	if err != nil {
		return StmtLine{}, cur, err
	}
	lineNo, next, err := parseSignedInt(next)
	if err != nil {
		return StmtLine{}, cur, err
	}
	_, next, err = kw("deps")(next)
	if err != nil {
		return StmtLine{}, cur, diag.New(diag.ClassParse, next.Position(), "expected 'deps' in statement line")
	}
	deps, next, err := parseDepsList(next)
	if err != nil {
		return StmtLine{}, cur, err
	}
	op, next, err := pIdent(next)
	if err != nil {
		return StmtLine{}, cur, err
	}
	_, next, err = pLParen(next)
	if err != nil {
		return StmtLine{}, cur, err
	}
	var args [3]Operand
	for i := 0; i < 3; i++ {
		if i > 0 {
			_, after, err := pComma(next)
			if err != nil {
				return StmtLine{}, cur, diag.New(diag.ClassParse, next.Position(), "expected ',' between statement operands")
			}
			next = after
		}
		operand, after, err := parseOperand(next)
		if err != nil {
			return StmtLine{}, cur, err
		}
		args[i] = operand
		next = after
	}
	_, next, err = pRParen(next)
	if err != nil {
		return StmtLine{}, cur, diag.New(diag.ClassParse, next.Position(), "expected ')' closing statement operands")
	}
	_, next, err = pSemi(next)
	if err != nil {
		return StmtLine{}, cur, diag.New(diag.ClassParse, next.Position(), "expected ';' after statement line")
	}
	return StmtLine{Line: lineNo, Deps: deps, Opcode: op.Text, Args: args, Pos: start}, next, nil
}

func parseDepsList(cur pk.Cursor) ([]int64, pk.Cursor, error) {
	_, next, err := pLBracket(cur)
	if err != nil {
		return nil, cur, err
	}
	if _, after, err := pRBracket(next); err == nil {
		return nil, after, nil
	}
	var deps []int64
	d, next, err := parseSignedInt(next)
	if err != nil {
		return nil, cur, err
	}
	deps = append(deps, d)
	for {
		_, after, err := pComma(next)
		if err != nil {
			break
		}
		d, after2, err := parseSignedInt(after)
		if err != nil {
			return nil, cur, err
		}
		deps = append(deps, d)
		next = after2
	}
	_, next, err = pRBracket(next)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected ']' closing dependency list")
	}
	return deps, next, nil
}

func parseOperand(cur pk.Cursor) (Operand, pk.Cursor, error) {
	if _, next, err := pUnderbar(cur); err == nil {
		return None, next, nil
	}
	if _, next, err := pAt(cur); err == nil {
		addr, after, err := parseSignedInt(next)
		if err != nil {
			return Operand{}, cur, err
		}
		return Operand{Kind: OpAddr, Addr: addr}, after, nil
	}
	lit, next, err := parseLiteral(cur)
	if err != nil {
		return Operand{}, cur, diag.New(diag.ClassParse, cur.Position(), "expected an operand ('_', '@addr' or a literal)")
	}
	return Operand{Kind: OpImm, Imm: literalOperandText(lit)}, next, nil
}

func parseLiteral(cur pk.Cursor) (Literal, pk.Cursor, error) {
	if n, next, err := pFloat(cur); err == nil {
		return Literal{Kind: FloatLiteral, Value: n.Text}, next, nil
	}
	if n, next, err := parseSignedIntRaw(cur); err == nil {
		return Literal{Kind: IntLiteral, Value: n}, next, nil
	}
	if n, next, err := pString(cur); err == nil {
		return Literal{Kind: StringLiteral, Value: unquote(n.Text)}, next, nil
	}
	if _, next, err := pTrue(cur); err == nil {
		return Literal{Kind: BoolLiteral, Value: "true"}, next, nil
	}
	if _, next, err := pFalse(cur); err == nil {
		return Literal{Kind: BoolLiteral, Value: "false"}, next, nil
	}
	return Literal{}, cur, diag.New(diag.ClassParse, cur.Position(), "expected a literal")
}

func literalOperandText(lit Literal) string {
	if lit.Kind == StringLiteral {
		return strconv.Quote(lit.Value)
	}
	return lit.Value
}

func parseSignedInt(cur pk.Cursor) (int64, pk.Cursor, error) {
	text, next, err := parseSignedIntRaw(cur)
	if err != nil {
		return 0, cur, err
	}
	n, convErr := strconv.ParseInt(text, 10, 64)
	if convErr != nil {
		return 0, cur, diag.New(diag.ClassParse, cur.Position(), "invalid integer %q: %v", text, convErr)
	}
	return n, next, nil
}

func parseSignedIntRaw(cur pk.Cursor) (string, pk.Cursor, error) {
	neg, next, err := pk.Lexeme(pk.Opt(pk.Literal("-")))(cur)
	if err != nil {
		return "", cur, err
	}
	n, after, err := pInt(next)
	if err != nil {
		return "", cur, err
	}
	return neg.Text + n.Text, after, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

