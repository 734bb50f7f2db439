// Package stdparse keeps one corner of the teacher's original parsing
// engine alive: github.com/prataprc/goparsec, used exactly the way
// pkg/jack/parsing.go, pkg/vm/parsing.go and pkg/asm/parsing.go use it
// (pc.NewAST + pc.Float()/pc.Int() token recognizers run through
// ast.Parsewith against a pc.Scanner). pkg/parsekit, the combinator engine
// behind the LN/AMM/AGA grammars, can't be built on top of goparsec itself
// — it needs an explicit (file, line, column) cursor tuple on every node,
// a fatal-vs-non-fatal failure distinction for the repetition guard, and a
// Placeholder indirection for mutually recursive rules, none of which
// goparsec's opaque pc.Queryable tree exposes — but the numeric-literal
// recognizers are a narrow, self-contained piece that goparsec already
// does well, so all three grammars borrow it here instead of
// re-implementing int/float lexing a third time.
package stdparse

import (
	pc "github.com/prataprc/goparsec"
)

var (
	numberAST = pc.NewAST("numeric_literal", 1)
	pNumber   = numberAST.OrdChoice("number", nil, pc.Float(), pc.Int())
)

// MatchFloat reports whether s begins with a valid floating-point literal
// per goparsec's own Float() token recognizer, returning the matched
// prefix. Used by pkg/ln, pkg/amm and pkg/aga's grammars to lex float
// literals (spec §4.2).
func MatchFloat(s string) (text string, ok bool) {
	return matchKind(s, "FLOAT")
}

// MatchInt is MatchFloat's integer counterpart, per goparsec's Int().
func MatchInt(s string) (text string, ok bool) {
	return matchKind(s, "INT")
}

func matchKind(s, wantName string) (string, bool) {
	root, _ := numberAST.Parsewith(pNumber, pc.NewScanner([]byte(s)))
	if root == nil {
		return "", false
	}
	if root.GetName() != wantName {
		return "", false
	}
	text := root.GetValue()
	if text == "" {
		return "", false
	}
	return text, true
}
