// Package ln implements the surface language: its grammar (built on
// pkg/parsekit), its decorated AST, and the AmmEmitter that lowers a
// resolved LN module down to AMM text (spec §4.6).
package ln

import (
	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/scope"
)

// ----------------------------------------------------------------------------
// General information

// An LN source file is a Module: an ordered list of imports followed by an
// ordered list of top-level declarations (types, interfaces, functions,
// operator mappings, events, handlers, module-level constants). Unlike the
// Jack language this isn't OOP-shaped — there's no single top-level class —
// but the declaration-container role is the same one jack.Class played for
// its teacher, just generalized to LN's richer declaration set.
type Module struct {
	Path    string
	Imports []Import
	Decls   []Decl
	Exports map[string]bool // names explicitly marked `export`
	Source  string
}

// ----------------------------------------------------------------------------
// Imports

type ImportKind string

const (
	ImportStd      ImportKind = "std"      // @std/<name>
	ImportRelative ImportKind = "relative" // ./<rel> or ../<rel>
	ImportStaged   ImportKind = "staged"   // anything else: pre-staged on disk
)

// Import is one `import <dep>` or `from <dep> import <names>` statement.
type Import struct {
	Kind  ImportKind
	Path  string
	Names []string // populated for `from ... import a, b, c`; empty for bare `import`
	Pos   diag.Position
}

// ----------------------------------------------------------------------------
// Declarations

// Decl is the shared marker for every kind of top-level declaration.
type Decl interface{ declNode() }

type TypeDecl struct {
	Name          string
	GenericParams []string
	Body          TypeExpr // product / alias / generic application
	Exported      bool
	Pos           diag.Position
}

func (TypeDecl) declNode() {}

type InterfaceDecl struct {
	Name     string
	Methods  []InterfaceMethod
	Fields   []TypedName
	Exported bool
	Pos      diag.Position
}

func (InterfaceDecl) declNode() {}

type InterfaceMethod struct {
	Name       string
	Params     []TypeExpr
	ReturnType TypeExpr
}

type FuncDecl struct {
	Name          string
	GenericParams []string
	Params        []TypedName
	ReturnType    TypeExpr // zero value (Name=="") means inferred/void
	Body          []Statement
	IsArrowForm   bool // `fn(x) => expr` sugar: Body holds a single synthetic ReturnStmt
	IsExtern      bool // `fn name(...): T;` with no body: a native, resolved outside LN (the standard library)
	Exported      bool
	Pos           diag.Position
}

func (FuncDecl) declNode() {}

type OperatorDecl struct {
	Symbol     string
	Fixity     string // "prefix" | "infix"
	Precedence int
	FuncName   string
	Pos        diag.Position
}

func (OperatorDecl) declNode() {}

type EventDecl struct {
	Name     string
	Type     TypeExpr
	Exported bool
	Pos      diag.Position
}

func (EventDecl) declNode() {}

// Handler is an `on <event> { ... }` block.
type Handler struct {
	Event   string
	ArgName string   // "" if the handler takes no argument
	ArgType TypeExpr
	Body    []Statement
	Pos     diag.Position
}

func (Handler) declNode() {}

// ConstDecl is a module-level `const name: Type = expr;`.
type ConstDecl struct {
	Name     string
	Type     TypeExpr // may be zero value (inferred)
	Value    Expression
	Exported bool
	Pos      diag.Position
}

func (ConstDecl) declNode() {}

// ----------------------------------------------------------------------------
// Type expressions (unresolved syntax, turned into scope.Type by the resolver)

// TypeExpr is the surface syntax for a type reference: a bare name (possibly
// a generic parameter or an alias/product/interface/primitive name) with an
// optional list of generic arguments, e.g. `Array<Foo>`, `int64`, `T`.
type TypeExpr struct {
	Name string
	Args []TypeExpr
	Pos  diag.Position
}

// TypedName is a (name, type) pair used for parameters, fields, and
// interface-required fields.
type TypedName struct {
	Name string
	Type TypeExpr
}

// ----------------------------------------------------------------------------
// Statements

// Statement is the shared marker for every LN statement form.
type Statement interface{ stmtNode() }

type VarStmt struct {
	Name  string
	Type  TypeExpr // may be zero value (inferred from Value)
	Value Expression
	IsLet bool // true for `let` (reassignable), false for `const`
	// ResolvedType is filled in by the resolver: Type itself when explicit,
	// otherwise Value's inferred type.
	ResolvedType scope.Type
	Pos          diag.Position
}

func (VarStmt) stmtNode() {}

type AssignStmt struct {
	Target Expression // VarExpr or IndexExpr
	Value  Expression
	Pos    diag.Position
}

func (AssignStmt) stmtNode() {}

// ExprStmt is a bare call used for its side effect, its value discarded.
type ExprStmt struct {
	Expr Expression
	Pos  diag.Position
}

func (ExprStmt) stmtNode() {}

type EmitStmt struct {
	Event string
	Value Expression // nil for payload-less events
	Pos   diag.Position
}

func (EmitStmt) stmtNode() {}

type ReturnStmt struct {
	Value Expression // nil for a void return
	Pos   diag.Position
}

func (ReturnStmt) stmtNode() {}

// ----------------------------------------------------------------------------
// Expressions

// Expression is the shared marker for every LN expression form.
type Expression interface{ exprNode() }

type LiteralExpr struct {
	Kind         LiteralKind
	Value        string
	ResolvedType scope.Type
	Pos          diag.Position
}

func (LiteralExpr) exprNode() {}

type LiteralKind string

const (
	IntLiteral    LiteralKind = "int"
	FloatLiteral  LiteralKind = "float"
	StringLiteral LiteralKind = "string"
	BoolLiteral   LiteralKind = "bool"
)

type VarExpr struct {
	Name         string
	ResolvedType scope.Type
	Pos          diag.Position
}

func (VarExpr) exprNode() {}

// CallExpr covers plain calls, operator-desugared calls (spec §4.5 rule 4),
// and method-chain calls (spec §4.5 rule 5: the receiver becomes Args[0]).
type CallExpr struct {
	FuncName     string
	Args         []Expression
	ResolvedType scope.Type
	Pos          diag.Position
}

func (CallExpr) exprNode() {}

// IndexExpr is `a[i]` sugar for a call to the builtin indexing function
// (spec §4.5 rule 6); kept as its own node so the emitter can special-case
// it as an lvalue in AssignStmt.Target.
type IndexExpr struct {
	Array        Expression
	Index        Expression
	ResolvedType scope.Type
	Pos          diag.Position
}

func (IndexExpr) exprNode() {}

// ConditionalExpr is the expression-position `if` adopted by SPEC_FULL's
// resolution of spec §9's open question: every branch is an Expression, and
// the resolver unifies their types into the ConditionalExpr's own type.
type ConditionalExpr struct {
	Arms         []ConditionalArm // in source order; last arm may have Cond == nil (the `else`)
	ResolvedType scope.Type
	Pos          diag.Position
}

func (ConditionalExpr) exprNode() {}

type ConditionalArm struct {
	Cond Expression // nil for the terminal `else`
	Body []Statement
	// Tail is the value produced by Body when this arm is selected: either
	// the last statement's expression (block-with-value, spec §4.5 rule 7)
	// or nil when the conditional is used as a bare statement.
	Tail Expression
}

// PrefixedExpr is a prefix-operator application, e.g. `-x` or `!ok`. The
// resolver looks FuncName up the same way it looks up an infix operator's
// function (spec §4.5 rule 4): by symbol and fixity in the scope's operator
// table, not by name at parse time, so FuncName stays unresolved here.
type PrefixedExpr struct {
	Symbol  string
	Operand Expression
	Pos     diag.Position
}

func (PrefixedExpr) exprNode() {}

// OperatorChainExpr is a flat left-to-right sequence of operands and infix
// operator symbols, exactly as written in source (`a + b * c - d`). The
// parser makes no precedence decisions: it only knows where user-defined
// operator symbols sit lexically. Precedence and associativity depend on
// each symbol's OperatorDecl, which isn't known until the declaring
// module's operator table has been built, so the resolver reassembles this
// chain into nested CallExprs via shunting-yard once that table is
// available (spec §4.5 rule 4).
type OperatorChainExpr struct {
	First Expression
	Rest  []OperatorChainElem
	Pos   diag.Position
}

func (OperatorChainExpr) exprNode() {}

// OperatorChainElem is one (operator, operand) pair following First in an
// OperatorChainExpr.
type OperatorChainElem struct {
	Symbol  string
	Operand Expression
	Pos     diag.Position
}

// ClosureExpr is `fn (params): ReturnType { body }` appearing as a value,
// most commonly the right-hand side of a `const` inside a handler body
// (spec §4.6, extracted into a synthetic event by the AgaEmitter).
type ClosureExpr struct {
	Params       []TypedName
	ReturnType   TypeExpr
	Body         []Statement
	ResolvedType scope.Type
	Pos          diag.Position
}

func (ClosureExpr) exprNode() {}
