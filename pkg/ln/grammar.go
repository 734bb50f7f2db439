package ln

import (
	"alan.dev/alanc/internal/stdparse"
	pk "alan.dev/alanc/pkg/parsekit"
)

// ----------------------------------------------------------------------------
// Lexical Parser Combinator(s)

// This section defines the Parser Combinators for every token of the LN
// language, in the same declarative-var-block style the teacher repo uses
// for Jack/VM/Asm: each `pXxx` is built once, at package init, out of
// pkg/parsekit primitives (Literal, CharRange, Seq, Alt, ...) and reused by
// every higher-level rule in parser.go.

var (
	pLetter    = pk.Alt("letter", pk.CharRange('a', 'z'), pk.CharRange('A', 'Z'), pk.Literal("_"))
	pDigit     = pk.CharRange('0', '9')
	pAlnum     = pk.Alt("ident-char", pLetter, pDigit)
	pIdentBody = pk.Seq("ident-body", pLetter, pk.ZeroOrMore("ident-rest", pAlnum))

	// keywords excluded from identifiers via LeftSubset (spec §4.2).
	pKeyword = pk.Alt("keyword",
		pk.Literal("import"), pk.Literal("from"), pk.Literal("export"),
		pk.Literal("type"), pk.Literal("interface"), pk.Literal("operator"),
		pk.Literal("event"), pk.Literal("on"), pk.Literal("fn"),
		pk.Literal("let"), pk.Literal("const"), pk.Literal("return"),
		pk.Literal("emit"), pk.Literal("if"), pk.Literal("else"),
		pk.Literal("true"), pk.Literal("false"), pk.Literal("prefix"), pk.Literal("infix"),
	)

	// pIdent matches any identifier that is not also a reserved keyword.
	pIdent = pk.Lexeme(pk.LeftSubset("ident", pIdentBody, pKeyword))

	// Integer and float literals are recognized by internal/stdparse's
	// goparsec-backed token recognizers (pc.Int()/pc.Float()), the same
	// library the teacher parses Jack/VM/Asm numeric literals with.
	pInt   = pk.Lexeme(pk.ExternalToken("int", stdparse.MatchInt))
	pFloat = pk.Lexeme(pk.ExternalToken("float", stdparse.MatchFloat))

	// Double-quoted strings interpret backslash escapes; single-quoted
	// strings are taken verbatim (SPEC_FULL's resolution of spec §9's open
	// question on string-escape handling).
	pDQStringBody = pk.Seq("dq-string", pk.Literal(`"`),
		pk.ZeroOrMore("dq-body", pk.Alt("dq-char",
			pk.Seq("escape", pk.Literal(`\`), pk.CharRange(0, 0x10FFFF)),
			pk.NotLiteral(`"`),
		)),
		pk.Literal(`"`),
	)
	pSQStringBody = pk.Seq("sq-string", pk.Literal("'"), pk.ZeroOrMore("sq-body", pk.NotLiteral("'")), pk.Literal("'"))
	pString       = pk.Lexeme(pk.Alt("string", pDQStringBody, pSQStringBody))

	pTrue  = pk.Lexeme(pk.Literal("true"))
	pFalse = pk.Lexeme(pk.Literal("false"))

	pOpChar   = pk.Alt("op-char", pk.Literal("+"), pk.Literal("-"), pk.Literal("*"), pk.Literal("/"),
		pk.Literal("%"), pk.Literal("<"), pk.Literal(">"), pk.Literal("="), pk.Literal("!"),
		pk.Literal("&"), pk.Literal("|"), pk.Literal("^"), pk.Literal("~"))
	pOpSymbolBody = pk.OneOrMore("op-symbol", pOpChar)
	// Reserved tokens that must not be mistaken for a
	// user-declared operator symbol when used in their structural position.
	pReservedOp = pk.Alt("reserved-op", pk.Literal("=>"), pk.Literal("="))
	pOpSymbol   = pk.Lexeme(pOpSymbolBody)

	// pBarePath matches an unquoted import path spelled with identifier
	// characters plus '.', '/', '@' and '-', e.g. `@std/app` or `./util`.
	pBarePathChar = pk.Alt("path-char", pAlnum, pk.Literal("."), pk.Literal("/"), pk.Literal("@"), pk.Literal("-"))
	pBarePathBody = pk.OneOrMore("path-body", pBarePathChar)
	pBarePath     = pk.Lexeme(pBarePathBody)

	pLBrace   = pk.Lexeme(pk.Literal("{"))
	pRBrace   = pk.Lexeme(pk.Literal("}"))
	pLParen   = pk.Lexeme(pk.Literal("("))
	pRParen   = pk.Lexeme(pk.Literal(")"))
	pLBracket = pk.Lexeme(pk.Literal("["))
	pRBracket = pk.Lexeme(pk.Literal("]"))
	pLAngle   = pk.Lexeme(pk.Literal("<"))
	pRAngle   = pk.Lexeme(pk.Literal(">"))
	pComma    = pk.Lexeme(pk.Literal(","))
	pColon    = pk.Lexeme(pk.Literal(":"))
	pSemi     = pk.Lexeme(pk.Literal(";"))
	pDot      = pk.Lexeme(pk.Literal("."))
	pAt       = pk.Lexeme(pk.Literal("@"))
	pAssign   = pk.Lexeme(pk.Literal("="))
	pFatArrow = pk.Lexeme(pk.Literal("=>"))
)

func kw(s string) pk.Combinator { return pk.Lexeme(pk.Literal(s)) }
