package amm

import (
	"alan.dev/alanc/internal/stdparse"
	pk "alan.dev/alanc/pkg/parsekit"
)

// Lexical combinators, built the same declarative-var-block way
// pkg/ln/grammar.go builds LN's — AMM's lexicon is a strict subset: no
// operator symbols, since desugarDecls has already turned every one of
// those into a plain call by the time this text exists.

var (
	pLetter    = pk.Alt("letter", pk.CharRange('a', 'z'), pk.CharRange('A', 'Z'), pk.Literal("_"))
	pDigit     = pk.CharRange('0', '9')
	pAlnum     = pk.Alt("ident-char", pLetter, pDigit)
	pIdentBody = pk.Seq("ident-body", pLetter, pk.ZeroOrMore("ident-rest", pAlnum))

	pKeyword = pk.Alt("keyword",
		pk.Literal("const"), pk.Literal("let"), pk.Literal("event"),
		pk.Literal("on"), pk.Literal("fn"), pk.Literal("emit"),
		pk.Literal("void"), pk.Literal("true"), pk.Literal("false"),
	)

	pIdent = pk.Lexeme(pk.LeftSubset("ident", pIdentBody, pKeyword))

	pInt   = pk.Lexeme(pk.ExternalToken("int", stdparse.MatchInt))
	pFloat = pk.Lexeme(pk.ExternalToken("float", stdparse.MatchFloat))

	pDQStringBody = pk.Seq("dq-string", pk.Literal(`"`),
		pk.ZeroOrMore("dq-body", pk.Alt("dq-char",
			pk.Seq("escape", pk.Literal(`\`), pk.CharRange(0, 0x10FFFF)),
			pk.NotLiteral(`"`),
		)),
		pk.Literal(`"`),
	)
	pString = pk.Lexeme(pDQStringBody)

	pTrue  = pk.Lexeme(pk.Literal("true"))
	pFalse = pk.Lexeme(pk.Literal("false"))

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
	pAssign   = pk.Lexeme(pk.Literal("="))
)

func kw(s string) pk.Combinator { return pk.Lexeme(pk.Literal(s)) }
