// Package aga implements the AGA intermediate language: the textual
// assembly this package's AgaEmitter (Emit) produces (spec §4.7) and pkg/agc's
// AgcWriter consumes. Where AMM is still a named-variable, call-shaped
// language, AGA has no names left at all — every operand is either a
// memory address (global, negative; local-frame, non-negative) or an
// immediate value, and every executable unit is a "handler" bound to an
// event id, matching the event-driven VM spec §3 describes. It follows the
// same declarative-grammar/CST shape pkg/amm and pkg/ln use.
package aga

import "alan.dev/alanc/internal/diag"

// Module is one AGA compilation unit: its global memory layout, its event
// table (including any synthetic ids extraction produced) and its handler
// blocks, in declaration order.
type Module struct {
	Path     string
	Globals  []GlobalDecl
	Events   []EventDecl
	Handlers []HandlerDecl
	Source   string
}

// GlobalDecl is one module-level memory-resident constant. Address is
// always <= -8 (global memory grows downward from -8, spec §4.7 rule 1).
// Size is the packed byte width: 8 for every numeric/bool primitive, or
// 8+ceil(len/8)*8 for a string (the first 8 bytes of which hold its
// little-endian signed length once packed by pkg/agc).
type GlobalDecl struct {
	Name    string
	Type    string
	Address int64
	Size    int64
	Value   Literal
	Pos     diag.Position
}

// EventDecl is one entry of the event table: a monotonically increasing id
// assigned in declaration order starting at 0 (spec §4.7 rule 2), plus the
// payload size AgcWriter packs alongside it (0 void, -1 variable-size, 8
// otherwise).
type EventDecl struct {
	Name        string
	ID          int64
	PayloadSize int64
	Pos         diag.Position
}

// HandlerDecl is one executable unit bound to an event id: a real `on`
// handler from the source, or a synthetic one AgaEmitter extracted from a
// closure or a plain function body (spec §4.7 rule 4; spec §9's closure
// note). FrameSize is the handler's own memory-frame size in bytes; a
// synthetic handler extracted from a closure shares its parent's frame and
// repeats the parent's FrameSize here rather than allocating a fresh one.
type HandlerDecl struct {
	Event      string
	EventID    int64
	FrameSize  int64
	Statements []StmtLine
	Pos        diag.Position
}

// OperandKind distinguishes the three operand shapes a StmtLine argument
// or destination slot can take.
type OperandKind int

const (
	OpNone OperandKind = iota
	OpImm
	OpAddr
)

// Operand is one of a StmtLine's three argument/result slots. Address sign
// is the space discriminant: Addr < 0 is global memory, Addr >= 0 is a
// local frame offset — no separate flag is needed.
type Operand struct {
	Kind OperandKind
	Imm  string // raw literal text, for OpImm
	Addr int64  // meaningful for OpAddr
}

// None is the zero-value "not present" operand, rendered as `_`.
var None = Operand{Kind: OpNone}

// StmtLine is one AGA instruction: spec §4.7 rule 5's per-statement record.
// Args holds exactly three slots; by convention a statement that produces
// a result writes it into Args[2], leaving at most two true operands in
// Args[0]/Args[1] (spec §6's "three argument words ... third word = result
// address or 0").
type StmtLine struct {
	Line   int64
	Deps   []int64
	Opcode string
	Args   [3]Operand
	Pos    diag.Position
}

// LiteralKind mirrors amm.LiteralKind; kept as its own type since AGA never
// imports amm (it's produced from amm, not defined in terms of it).
type LiteralKind string

const (
	IntLiteral    LiteralKind = "int"
	FloatLiteral  LiteralKind = "float"
	StringLiteral LiteralKind = "string"
	BoolLiteral   LiteralKind = "bool"
)

type Literal struct {
	Kind  LiteralKind
	Value string
}
