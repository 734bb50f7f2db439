package parsekit

import "strings"

// SkipTrivia advances past any run of whitespace, `//` line comments and
// `/* */` block comments at the cursor, returning the resulting Cursor. All
// three grammars (LN, AMM, AGA) share this convention.
func SkipTrivia(cur Cursor) Cursor {
	for {
		advanced := false

		for !cur.AtEnd() {
			r, size, ok := cur.NextRune()
			if !ok || (r != ' ' && r != '\t' && r != '\n' && r != '\r') {
				break
			}
			cur = cur.Advance(size)
			advanced = true
		}

		if strings.HasPrefix(cur.Remaining(), "//") {
			for !cur.AtEnd() {
				r, size, _ := cur.NextRune()
				cur = cur.Advance(size)
				if r == '\n' {
					break
				}
			}
			advanced = true
		} else if strings.HasPrefix(cur.Remaining(), "/*") {
			cur = cur.Advance(2)
			for !cur.AtEnd() && !strings.HasPrefix(cur.Remaining(), "*/") {
				_, size, _ := cur.NextRune()
				cur = cur.Advance(size)
			}
			if strings.HasPrefix(cur.Remaining(), "*/") {
				cur = cur.Advance(2)
			}
			advanced = true
		}

		if !advanced {
			return cur
		}
	}
}

// Lexeme wraps c so that any leading whitespace/comments are skipped before
// c runs. The resulting node's Text and Pos are the token's own, so a node's
// text still equals the exact source slice from its start offset (spec §8
// invariant 1); the skipped trivia is recorded in no node.
func Lexeme(c Combinator) Combinator {
	return func(cur Cursor) (*Node, Cursor, error) {
		n, next, err := c(SkipTrivia(cur))
		if err != nil {
			return nil, cur, err
		}
		return n, next, nil
	}
}
