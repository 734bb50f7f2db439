package parsekit

import (
	"fmt"
	"strings"
)

// Combinator is the single contract every parser primitive implements:
// given a Cursor it either matches a prefix of the remaining input and
// returns the resulting Node plus the advanced Cursor, or it fails and
// returns the original Cursor unchanged alongside a non-nil error (a
// *ParseError for an ordinary, recoverable failure, or a *FatalError for
// the repetition infinite-loop guard).
type Combinator func(Cursor) (*Node, Cursor, error)

// Field pairs a named child combinator with the key it is stored under in a
// Sequence-named or Choice-named node.
type Field struct {
	Key string
	C   Combinator
}

// Literal matches the exact string s at the cursor or fails.
func Literal(s string) Combinator {
	rule := fmt.Sprintf("%q", s)
	return func(cur Cursor) (*Node, Cursor, error) {
		if len(cur.Remaining()) < len(s) || cur.Remaining()[:len(s)] != s {
			return nil, cur, newParseError(cur, rule)
		}
		pos := cur.Position()
		next := cur.Advance(len(s))
		return &Node{Kind: KindLeaf, Pos: pos, Text: s}, next, nil
	}
}

// NotLiteral consumes exactly one character, succeeding only when s does
// not occur at the cursor. Used to express "any character that is not the
// start of X" (e.g. inside string-literal bodies).
func NotLiteral(s string) Combinator {
	rule := "not " + s
	return func(cur Cursor) (*Node, Cursor, error) {
		if cur.AtEnd() {
			return nil, cur, newParseError(cur, rule)
		}
		if strings.HasPrefix(cur.Remaining(), s) {
			return nil, cur, newParseError(cur, rule)
		}
		r, size, _ := cur.NextRune()
		pos := cur.Position()
		next := cur.Advance(size)
		return &Node{Kind: KindNegationLeaf, Pos: pos, Text: string(r)}, next, nil
	}
}

// CharRange consumes a single character within the inclusive [lo, hi] range.
func CharRange(lo, hi rune) Combinator {
	rule := fmt.Sprintf("char in [%c-%c]", lo, hi)
	return func(cur Cursor) (*Node, Cursor, error) {
		r, size, ok := cur.NextRune()
		if !ok || r < lo || r > hi {
			return nil, cur, newParseError(cur, rule)
		}
		pos := cur.Position()
		next := cur.Advance(size)
		return &Node{Kind: KindLeaf, Pos: pos, Text: string(r)}, next, nil
	}
}

// ExternalToken adapts an outside recognizer — a func(remaining string)
// (matched string, ok bool) — into a Combinator, for grammar pieces best
// left to a purpose-built library (e.g. internal/stdparse's goparsec-backed
// numeric-literal recognizers) rather than hand-rolled CharRange chains.
func ExternalToken(rule string, match func(string) (string, bool)) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		text, ok := match(cur.Remaining())
		if !ok || text == "" {
			return nil, cur, newParseError(cur, rule)
		}
		pos := cur.Position()
		next := cur.Advance(len(text))
		return &Node{Kind: KindLeaf, Pos: pos, Text: text}, next, nil
	}
}

// Seq matches each child combinator in order, restoring the cursor and
// failing as soon as one of them fails.
func Seq(name string, children ...Combinator) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		start := cur
		nodes := make([]*Node, 0, len(children))
		for _, c := range children {
			n, next, err := c(cur)
			if err != nil {
				return nil, start, wrapErr(name, start, err)
			}
			nodes = append(nodes, n)
			cur = next
		}
		return &Node{Kind: KindSeqAnon, Pos: start.Position(), Text: joinText(nodes), Children: nodes}, cur, nil
	}
}

// NamedSeq is Seq with each child's result keyed by field name, preserving
// declaration order for readable tree navigation.
func NamedSeq(name string, fields ...Field) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		start := cur
		of := &OrderedFields{}
		texts := make([]*Node, 0, len(fields))
		for _, f := range fields {
			n, next, err := f.C(cur)
			if err != nil {
				return nil, start, wrapErr(name, start, err)
			}
			of.Set(f.Key, n)
			texts = append(texts, n)
			cur = next
		}
		return &Node{Kind: KindSeqNamed, Pos: start.Position(), Text: joinText(texts), Fields: of}, cur, nil
	}
}

// Alt tries each child in order against the original cursor snapshot; the
// first to succeed wins. If all fail, the deepest-reaching failure becomes
// the primary diagnostic and every attempt is retained as an alternative.
func Alt(name string, children ...Combinator) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		var failures []*ParseError
		for i, c := range children {
			n, next, err := c(cur)
			if err == nil {
				return &Node{Kind: KindChoiceAnon, Pos: cur.Position(), Text: n.Text, SelectedIndex: i, Inner: n}, next, nil
			}
			if IsFatal(err) {
				return nil, cur, err
			}
			if pe, ok := err.(*ParseError); ok {
				failures = append(failures, pe)
			}
		}
		return nil, cur, aggregateFailures(name, cur, failures)
	}
}

// NamedAlt is Alt for keyed alternatives: the winning branch's key is
// recorded on the resulting node as Branch.
func NamedAlt(name string, alts ...Field) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		var failures []*ParseError
		for _, f := range alts {
			n, next, err := f.C(cur)
			if err == nil {
				return &Node{Kind: KindChoiceNamed, Pos: cur.Position(), Text: n.Text, Branch: f.Key, Inner: n}, next, nil
			}
			if IsFatal(err) {
				return nil, cur, err
			}
			if pe, ok := err.(*ParseError); ok {
				failures = append(failures, pe)
			}
		}
		return nil, cur, aggregateFailures(name, cur, failures)
	}
}

// Opt makes c optional: on failure it restores the cursor and yields a Null
// sentinel rather than propagating the failure.
func Opt(c Combinator) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		n, next, err := c(cur)
		if err == nil {
			return &Node{Kind: KindOptional, Pos: cur.Position(), Text: n.Text, Inner: n}, next, nil
		}
		if IsFatal(err) {
			return nil, cur, err
		}
		return &Node{Kind: KindOptional, Pos: cur.Position(), Inner: newNullNode(cur.Position())}, cur, nil
	}
}

// ZeroOrMore repeats c until it fails, requiring strictly forward progress
// on every successful iteration; a match that consumes zero bytes trips the
// fatal infinite-loop guard rather than looping forever.
func ZeroOrMore(name string, c Combinator) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		start := cur
		var nodes []*Node
		for {
			before := cur
			n, next, err := c(cur)
			if err != nil {
				if IsFatal(err) {
					return nil, start, err
				}
				break
			}
			if next.Offset == before.Offset {
				return nil, start, &FatalError{Err: newParseError(cur, name+": zero-width match would loop forever")}
			}
			nodes = append(nodes, n)
			cur = next
		}
		return &Node{Kind: KindRepetition, Pos: start.Position(), Text: joinText(nodes), Children: nodes}, cur, nil
	}
}

// OneOrMore is ZeroOrMore requiring at least one successful match.
func OneOrMore(name string, c Combinator) Combinator {
	zm := ZeroOrMore(name, c)
	return func(cur Cursor) (*Node, Cursor, error) {
		n, next, err := zm(cur)
		if err != nil {
			return nil, cur, err
		}
		if len(n.Children) == 0 {
			return nil, cur, newParseError(cur, name+": expected at least one match")
		}
		return n, next, nil
	}
}

// LeftSubset matches a, then rejects the match if b applied to exactly the
// matched slice would itself consume all of it. This is how grammars carve
// keywords out of a broader identifier pattern: a matches any identifier
// shape, b is the alternation of reserved words, and LeftSubset(a, b) is
// "identifier, but not a keyword".
func LeftSubset(name string, a, b Combinator) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		n, next, err := a(cur)
		if err != nil {
			return nil, cur, err
		}
		sub := NewCursor(cur.File, n.Text)
		_, subNext, subErr := b(sub)
		if subErr == nil && subNext.AtEnd() {
			return nil, cur, newParseError(cur, name+": excluded (matches keyword "+n.Text+")")
		}
		return n, next, nil
	}
}

// XOr succeeds iff exactly one of children matches at the cursor; zero or
// more than one matches is a failure. Every candidate is tried against the
// same starting cursor, mirroring Alt's semantics but with the opposite
// acceptance rule.
func XOr(name string, children ...Combinator) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		type hit struct {
			n    *Node
			next Cursor
		}
		var hits []hit
		for _, c := range children {
			n, next, err := c(cur)
			if err == nil {
				hits = append(hits, hit{n, next})
				continue
			}
			if IsFatal(err) {
				return nil, cur, err
			}
		}
		if len(hits) != 1 {
			return nil, cur, newParseError(cur, fmt.Sprintf("%s: expected exactly one alternative to match, %d did", name, len(hits)))
		}
		return hits[0].n, hits[0].next, nil
	}
}

// Placeholder supports mutually recursive grammars: construct it up front,
// obtain its Combinator to embed wherever the forward reference is needed,
// then Assign the real combinator once every rule has been declared.
type Placeholder struct {
	name  string
	inner Combinator
}

// NewPlaceholder creates an unassigned Placeholder. Calling its Combinator
// before Assign panics, which surfaces wiring bugs immediately rather than
// as a silent always-fails parser.
func NewPlaceholder(name string) *Placeholder { return &Placeholder{name: name} }

// Assign patches in the real rule. Must be called exactly once, after every
// grammar declaration that references this placeholder has been built.
func (p *Placeholder) Assign(c Combinator) { p.inner = c }

// Combinator returns a Combinator that defers to whatever was last passed
// to Assign, resolved lazily at parse time so declaration order doesn't
// matter.
func (p *Placeholder) Combinator() Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		if p.inner == nil {
			panic("parsekit: placeholder " + p.name + " used before Assign")
		}
		return p.inner(cur)
	}
}

// Parse runs root against the entire source text attributed to file,
// requiring it to consume all input (spec §4.2: "the match must consume
// all input or parse fails").
func Parse(file, source string, root Combinator) (*Node, error) {
	cur := NewCursor(file, source)
	n, next, err := root(cur)
	if err != nil {
		return nil, ToPositioned(err)
	}
	if !next.AtEnd() {
		return nil, ToPositioned(newParseError(next, "end of input"))
	}
	return n, nil
}
