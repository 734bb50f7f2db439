// Package amm implements the AMM intermediate language: the flattened,
// type-annotated text pkg/ln's AmmEmitter produces (spec §4.6) and the
// AgaEmitter (pkg/aga) consumes. Unlike LN, AMM carries no generics, no
// user-definable operators, and no method-chain sugar — every call is
// already a plain `name(args)`, matching the teacher's VM intermediate
// tier sitting between Jack's AST and Hack assembly.
package amm

import "alan.dev/alanc/internal/diag"

// Module mirrors ln.Module's shape: an ordered list of top-level
// declarations, emitted and re-parsed as a single text unit per source
// module (spec §4.6's self-verification requirement).
type Module struct {
	Path   string
	Decls  []Decl
	Source string
}

type Decl interface{ declNode() }

type ConstDecl struct {
	Name  string
	Type  TypeExpr
	Value Expression
	Pos   diag.Position
}

func (ConstDecl) declNode() {}

type EventDecl struct {
	Name string
	Type TypeExpr
	Pos  diag.Position
}

func (EventDecl) declNode() {}

// Handler is `on <event> fn (<arg>: <type>): void { <body> }`.
type Handler struct {
	Event   string
	ArgName string
	ArgType TypeExpr
	Body    []Statement
	Pos     diag.Position
}

func (Handler) declNode() {}

// FuncDecl is a flattened, already-resolved function body: every call
// inside it references a concrete, disambiguated callee (spec §4.5's
// dispatch has already run by the time this text exists).
type FuncDecl struct {
	Name       string
	Params     []TypedName
	ReturnType TypeExpr
	Body       []Statement
	Pos        diag.Position
}

func (FuncDecl) declNode() {}

// TypeExpr is a bare name with optional generic-looking arguments —
// `Array<Closure>`, `int64` — kept only for the builtin container/closure
// shapes the emitter produces; AMM has no user type declarations of its
// own; every nominal type it mentions was already resolved in LN.
type TypeExpr struct {
	Name string
	Args []TypeExpr
	Pos  diag.Position
}

type TypedName struct {
	Name string
	Type TypeExpr
}

type Statement interface{ stmtNode() }

type VarStmt struct {
	Name  string
	Type  TypeExpr
	Value Expression
	IsLet bool
	Pos   diag.Position
}

func (VarStmt) stmtNode() {}

type AssignStmt struct {
	Target string
	Value  Expression
	Pos    diag.Position
}

func (AssignStmt) stmtNode() {}

// CallStmt is a bare call used for its side effect ("Call → name(args);",
// spec §4.6).
type CallStmt struct {
	FuncName string
	Args     []Expression
	Pos      diag.Position
}

func (CallStmt) stmtNode() {}

type EmitStmt struct {
	Event string
	Value Expression // nil for payload-less events
	Pos   diag.Position
}

func (EmitStmt) stmtNode() {}

type Expression interface{ exprNode() }

type LiteralKind string

const (
	IntLiteral    LiteralKind = "int"
	FloatLiteral  LiteralKind = "float"
	StringLiteral LiteralKind = "string"
	BoolLiteral   LiteralKind = "bool"
)

type LiteralExpr struct {
	Kind  LiteralKind
	Value string
	Pos   diag.Position
}

func (LiteralExpr) exprNode() {}

type VarExpr struct {
	Name string
	Pos  diag.Position
}

func (VarExpr) exprNode() {}

// CallExpr is always a plain call; no method-chain form survives into AMM.
type CallExpr struct {
	FuncName string
	Args     []Expression
	Pos      diag.Position
}

func (CallExpr) exprNode() {}

// TupleExpr is the `(a, b)` pairing used by a conditional dispatch table's
// entries (spec §4.6: one (bool, closure) pair per arm).
type TupleExpr struct {
	Elems []Expression
	Pos   diag.Position
}

func (TupleExpr) exprNode() {}

// ArrayExpr is a literal `[e, e, ...]`, used for conditional dispatch
// tables and any other Array<T> constant the emitter produces.
type ArrayExpr struct {
	Elems []Expression
	Pos   diag.Position
}

func (ArrayExpr) exprNode() {}

// ClosureExpr is `fn (params): type { body }`, either a plain value bound
// to a const or one cell of a conditional dispatch table.
type ClosureExpr struct {
	Params     []TypedName
	ReturnType TypeExpr
	Body       []Statement
	Pos        diag.Position
}

func (ClosureExpr) exprNode() {}
