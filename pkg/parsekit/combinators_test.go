package parsekit_test

import (
	"testing"

	pk "alan.dev/alanc/pkg/parsekit"
)

func TestLiteralAndSeq(t *testing.T) {
	pFoo := pk.Literal("foo")
	pBar := pk.Literal("bar")
	pFooBar := pk.Seq("foobar", pFoo, pBar)

	test := func(input string, wantOK bool) {
		n, err := pk.Parse("t.ln", input, pFooBar)
		if wantOK && err != nil {
			t.Fatalf("expected %q to parse, got error: %v", input, err)
		}
		if !wantOK && err == nil {
			t.Fatalf("expected %q to fail, got node %+v", input, n)
		}
	}

	t.Run("matches exact concatenation", func(t *testing.T) { test("foobar", true) })
	t.Run("rejects partial match", func(t *testing.T) { test("foo", false) })
	t.Run("rejects trailing garbage", func(t *testing.T) { test("foobarbaz", false) })
}

func TestAltPicksFirstMatchAndBacktracks(t *testing.T) {
	pAlt := pk.Alt("alt", pk.Literal("cat"), pk.Literal("car"), pk.Literal("carpet"))

	n, err := pk.Parse("t.ln", "car", pAlt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Text != "car" {
		t.Fatalf("expected matched text 'car', got %q", n.Text)
	}

	if _, err := pk.Parse("t.ln", "carpet", pAlt); err == nil {
		t.Fatalf("expected 'carpet' to fail since 'car' is tried first and Parse requires full consumption")
	}
}

func TestOptYieldsNullOnFailure(t *testing.T) {
	pMaybeBang := pk.Seq("stmt", pk.Literal("x"), pk.Opt(pk.Literal("!")))

	n, err := pk.Parse("t.ln", "x", pMaybeBang)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	optional := n.Children[1]
	if optional.IsPresent() {
		t.Fatalf("expected optional bang to be absent")
	}

	n2, err := pk.Parse("t.ln", "x!", pMaybeBang)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n2.Children[1].IsPresent() {
		t.Fatalf("expected optional bang to be present")
	}
}

func TestZeroOrMoreForwardProgressGuard(t *testing.T) {
	// Opt(Literal("")) always "succeeds" without consuming input; wrapping it
	// in ZeroOrMore must trip the fatal infinite-loop guard rather than hang.
	zeroWidth := pk.Opt(pk.Literal(""))
	pLoop := pk.ZeroOrMore("loop", zeroWidth)

	_, err := pk.Parse("t.ln", "abc", pLoop)
	if err == nil {
		t.Fatalf("expected the zero-width repetition to fail fatally")
	}
}

func TestOneOrMoreRequiresAtLeastOneMatch(t *testing.T) {
	pDigits := pk.OneOrMore("digits", pk.CharRange('0', '9'))

	if _, err := pk.Parse("t.ln", "123", pDigits); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := pk.Parse("t.ln", "", pDigits); err == nil {
		t.Fatalf("expected failure on empty input")
	}
}

func TestLeftSubsetExcludesKeywords(t *testing.T) {
	ident := pk.OneOrMore("ident-chars", pk.Alt("ident-char", pk.CharRange('a', 'z'), pk.CharRange('A', 'Z')))
	keyword := pk.Alt("keyword", pk.Literal("if"), pk.Literal("else"))
	pIdent := pk.LeftSubset("ident", ident, keyword)

	if _, err := pk.Parse("t.ln", "if", pIdent); err == nil {
		t.Fatalf("expected 'if' to be excluded as a keyword")
	}
	if _, err := pk.Parse("t.ln", "iffy", pIdent); err != nil {
		t.Fatalf("expected 'iffy' to parse as an identifier, got: %v", err)
	}
}

func TestXOrRejectsAmbiguousAndEmptyMatches(t *testing.T) {
	pXor := pk.XOr("xor", pk.Literal("a"), pk.Literal("b"))

	if _, err := pk.Parse("t.ln", "a", pXor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := pk.Parse("t.ln", "c", pXor); err == nil {
		t.Fatalf("expected failure when no alternative matches")
	}

	pAmbiguous := pk.XOr("xor-ambiguous", pk.Literal("a"), pk.Literal("a"))
	if _, err := pk.Parse("t.ln", "a", pAmbiguous); err == nil {
		t.Fatalf("expected failure when more than one alternative matches")
	}
}

func TestPlaceholderSupportsMutualRecursion(t *testing.T) {
	exprPlaceholder := pk.NewPlaceholder("expr")
	pExpr := exprPlaceholder.Combinator()

	pParenExpr := pk.Seq("paren", pk.Literal("("), pExpr, pk.Literal(")"))
	pDigit := pk.CharRange('0', '9')
	exprPlaceholder.Assign(pk.Alt("expr-body", pParenExpr, pDigit))

	if _, err := pk.Parse("t.ln", "((5))", pExpr); err != nil {
		t.Fatalf("unexpected error parsing nested parens: %v", err)
	}
}
