package aga

import (
	"alan.dev/alanc/internal/stdparse"
	pk "alan.dev/alanc/pkg/parsekit"
)

// Lexical combinators, built the same declarative-var-block way
// pkg/amm/grammar.go and pkg/ln/grammar.go build theirs (trivia.go's
// convention spans all three grammars). AGA's lexicon adds '@', '#', '[',
// ']' for addresses, event/handler ids and dependency lists, and drops
// every LN/AMM keyword that has no meaning once names are gone.

var (
	pLetter    = pk.Alt("letter", pk.CharRange('a', 'z'), pk.CharRange('A', 'Z'), pk.Literal("_"))
	pDigit     = pk.CharRange('0', '9')
	pAlnum     = pk.Alt("ident-char", pLetter, pDigit)
	pIdentBody = pk.Seq("ident-body", pLetter, pk.ZeroOrMore("ident-rest", pAlnum))

	pKeyword = pk.Alt("keyword",
		pk.Literal("global"), pk.Literal("event"), pk.Literal("handler"),
		pk.Literal("line"), pk.Literal("deps"), pk.Literal("size"), pk.Literal("frame"),
		pk.Literal("true"), pk.Literal("false"),
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
	pComma    = pk.Lexeme(pk.Literal(","))
	pColon    = pk.Lexeme(pk.Literal(":"))
	pSemi     = pk.Lexeme(pk.Literal(";"))
	pAssign   = pk.Lexeme(pk.Literal("="))
	pAt       = pk.Lexeme(pk.Literal("@"))
	pHash     = pk.Lexeme(pk.Literal("#"))
	pUnderbar = pk.Lexeme(pk.Literal("_"))
)

func kw(s string) pk.Combinator { return pk.Lexeme(pk.Literal(s)) }
