package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Class distinguishes the taxonomy of errors spec §7 lays out. The CLI front
// door maps a Class to one of the exit codes from spec §6.
type Class int

const (
	// ClassParse covers grammar/combinator failures (exit code 1).
	ClassParse Class = iota
	// ClassImport covers ModuleGraph failures: cycles, missing modules, unreadable files (exit code 1).
	ClassImport
	// ClassScope covers duplicate bindings and undefined identifiers (exit code 2).
	ClassScope
	// ClassResolve covers dispatch/unification/interface-satisfaction failures (exit code 2).
	ClassResolve
	// ClassType covers conditional/return type mismatches and invalid literals (exit code 2).
	ClassType
	// ClassEmission covers AMM/AGA/AGC invariant violations (exit code 3).
	ClassEmission
	// ClassIO covers read/write failures (exit code 4).
	ClassIO
)

// ExitCode maps a Class to the CLI exit code spec §6 assigns it.
func (c Class) ExitCode() int {
	switch c {
	case ClassParse, ClassImport:
		return 1
	case ClassScope, ClassResolve, ClassType:
		return 2
	case ClassEmission:
		return 3
	case ClassIO:
		return 4
	default:
		return 1
	}
}

func (c Class) String() string {
	switch c {
	case ClassParse:
		return "ParseError"
	case ClassImport:
		return "ImportError"
	case ClassScope:
		return "ScopeError"
	case ClassResolve:
		return "ResolveError"
	case ClassType:
		return "TypeError"
	case ClassEmission:
		return "EmissionError"
	case ClassIO:
		return "IOError"
	default:
		return "Error"
	}
}

// Positioned is the diagnostic error shape every compilation stage returns.
// It carries the originating Class, a human message, the Position at which
// the failure occurred and an optional wrapped cause, so a chain of frames
// (one per parser/resolver recursion level) can be rendered as nested
// "caused by" lines without losing the structured (file, line, col) data.
type Positioned struct {
	Class   Class
	Message string
	Pos     Position
	Cause   error
}

// New builds a root Positioned error with no further cause.
func New(class Class, pos Position, format string, args ...any) *Positioned {
	return &Positioned{Class: class, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Wrap attaches a new frame on top of an existing error. The new frame
// carries the given class; the cause's own Class is left as it is.
func Wrap(class Class, pos Position, cause error, format string, args ...any) *Positioned {
	return &Positioned{Class: class, Message: fmt.Sprintf(format, args...), Pos: pos, Cause: cause}
}

func (e *Positioned) Error() string {
	return fmt.Sprintf("%s in %s", e.Message, e.Pos.String())
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Positioned) Unwrap() error { return e.Cause }

// Render produces the full multi-line diagnostic text: the top-level
// message followed by one "caused by" line per nested Positioned frame,
// exactly the shape spec §7 prescribes for user-visible output.
func Render(err error) string {
	var b strings.Builder
	first := true
	for err != nil {
		var p *Positioned
		if !errors.As(err, &p) {
			fmt.Fprintf(&b, "caused by: %s\n", err.Error())
			break
		}
		if first {
			fmt.Fprintf(&b, "%s\n", p.Error())
			first = false
		} else {
			fmt.Fprintf(&b, "caused by: %s\n", p.Error())
		}
		err = p.Cause
	}
	return strings.TrimRight(b.String(), "\n")
}

// ClassOf walks the chain looking for the first Positioned frame and
// returns its Class, defaulting to ClassIO (exit 4) when err isn't one of
// ours — a plain os/io error surfacing unwrapped from a read/write call.
func ClassOf(err error) Class {
	var p *Positioned
	if errors.As(err, &p) {
		return p.Class
	}
	return ClassIO
}
