package parsekit

import (
	"errors"
	"fmt"

	"alan.dev/alanc/internal/diag"
)

// ParseError is the non-fatal failure mode of a combinator: the caller (an
// enclosing Alt, Opt, ZeroOrMore, ...) is free to recover from it and try
// something else. Alternatives collects every branch tried by an Alt/XOr so
// the top-level diagnostic can show "tried: a, b, c" rather than just the
// single deepest failure (spec §9's "error aggregation" design note).
type ParseError struct {
	Pos          diag.Position
	Rule         string
	Excerpt      string
	Alternatives []*ParseError
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, found %q at %s", e.Rule, e.Excerpt, e.Pos)
}

const excerptLen = 24

func newParseError(cur Cursor, rule string) *ParseError {
	excerpt := cur.Remaining()
	if len(excerpt) > excerptLen {
		excerpt = excerpt[:excerptLen]
	}
	return &ParseError{Pos: cur.Position(), Rule: rule, Excerpt: excerpt}
}

// wrapErr attaches rule/cur context to an inner failure, preserving the
// innermost excerpt so the deepest failure position survives up the call
// stack even as outer Seq/NamedSeq frames add their own rule names.
func wrapErr(rule string, cur Cursor, cause error) error {
	if IsFatal(cause) {
		return cause
	}
	var pe *ParseError
	if errors.As(cause, &pe) {
		return &ParseError{Pos: pe.Pos, Rule: rule, Excerpt: pe.Excerpt, Alternatives: []*ParseError{pe}}
	}
	return newParseError(cur, rule)
}

// aggregateFailures picks the failure that got furthest into the input as
// the primary diagnostic (spec §9: "the first one encountered at the
// deepest position is the primary diagnostic") and retains the rest as
// alternatives tried.
func aggregateFailures(name string, cur Cursor, failures []*ParseError) *ParseError {
	if len(failures) == 0 {
		return newParseError(cur, name)
	}
	primary := failures[0]
	for _, f := range failures[1:] {
		if f.Pos.Offset > primary.Pos.Offset {
			primary = f
		}
	}
	return &ParseError{Pos: primary.Pos, Rule: name, Excerpt: primary.Excerpt, Alternatives: failures}
}

// FatalError marks an unrecoverable combinator failure: the infinite-loop
// guard inside ZeroOrMore/OneOrMore is the only source of these, and once
// raised it must abort the whole parse rather than let an enclosing Alt
// quietly try another alternative (spec §4.1's failure-mode distinction).
type FatalError struct{ Err error }

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// IsFatal reports whether err (or something it wraps) is a FatalError.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}

// ToPositioned converts a combinator failure into the diag.Positioned shape
// used uniformly across the compiler, rendering any retained alternatives
// into the message.
func ToPositioned(err error) *diag.Positioned {
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return diag.New(diag.ClassParse, positionOf(fatal.Err), "%s", fatal.Error())
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		if len(pe.Alternatives) > 1 {
			names := make([]string, 0, len(pe.Alternatives))
			for _, alt := range pe.Alternatives {
				names = append(names, alt.Rule)
			}
			return diag.New(diag.ClassParse, pe.Pos, "expected %s, found %q (tried %v)", pe.Rule, pe.Excerpt, names)
		}
		return diag.New(diag.ClassParse, pe.Pos, "expected %s, found %q", pe.Rule, pe.Excerpt)
	}

	return diag.New(diag.ClassParse, diag.Position{}, "%s", err.Error())
}

func positionOf(err error) diag.Position {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Pos
	}
	return diag.Position{}
}
