// Package parsekit implements the combinator primitives shared by the LN,
// AMM and AGA grammars (pkg/ln, pkg/amm, pkg/aga). It produces a concrete
// syntax tree (CST) that preserves source text exactly: every node's
// matched text is a verbatim slice of the input, and every node records the
// position at which it starts.
//
// The combinators are deliberately hand-rolled rather than delegated to a
// general-purpose parsing library — see DESIGN.md for why.
package parsekit

import (
	"unicode/utf8"

	"alan.dev/alanc/internal/diag"
)

// Cursor is an immutable snapshot of a parse position: advancing it returns
// a new Cursor, leaving the original untouched, which is what lets every
// combinator backtrack simply by discarding the Cursor it advanced and
// reusing the one it started with.
type Cursor struct {
	File   string
	Text   string
	Offset int
	Line   int
	Column int
}

// NewCursor creates a Cursor positioned at the start of text, attributed to
// file for diagnostic purposes.
func NewCursor(file, text string) Cursor {
	return Cursor{File: file, Text: text, Offset: 0, Line: 1, Column: 1}
}

// Remaining returns the unconsumed suffix of the source text.
func (c Cursor) Remaining() string { return c.Text[c.Offset:] }

// AtEnd reports whether the cursor has consumed the entire source text.
func (c Cursor) AtEnd() bool { return c.Offset >= len(c.Text) }

// Position converts the cursor's internal bookkeeping into the (file, line,
// column, offset) tuple spec §3 requires on every CST node.
func (c Cursor) Position() diag.Position {
	return diag.Position{File: c.File, Line: c.Line, Column: c.Column, Offset: c.Offset}
}

// Snapshot returns c itself: Cursor is a plain value type, so taking a
// snapshot is just keeping a copy around: no explicit save/restore pair is
// needed beyond "hang on to the old value".
func (c Cursor) Snapshot() Cursor { return c }

// Restore is the dual of Snapshot, provided for readability at call sites
// that want to make the backtrack explicit (`cur = snap.Restore()`).
func (c Cursor) Restore() Cursor { return c }

// Advance consumes the next n bytes of Remaining(), updating line/column
// bookkeeping for any newlines crossed, and returns the resulting Cursor.
func (c Cursor) Advance(n int) Cursor {
	consumed := c.Text[c.Offset : c.Offset+n]
	next := c
	next.Offset += n
	for _, r := range consumed {
		if r == '\n' {
			next.Line++
			next.Column = 1
			continue
		}
		next.Column++
	}
	return next
}

// NextRune decodes the rune at the cursor along with its byte width,
// reporting ok=false at end of input.
func (c Cursor) NextRune() (r rune, size int, ok bool) {
	if c.AtEnd() {
		return 0, 0, false
	}
	r, size = utf8.DecodeRuneInString(c.Remaining())
	return r, size, true
}
