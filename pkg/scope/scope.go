package scope

import (
	"fmt"

	"alan.dev/alanc/internal/diag"
)

// EntityKind tags the variant of value a Scope binds a name to (spec §3).
type EntityKind int

const (
	KindType EntityKind = iota
	KindFunctionSet
	KindConstant
	KindOperator
	KindEvent
	KindInterface
	KindModuleAlias
	KindImportedReference
)

// Entity is whatever a Scope binds an identifier to. Function is the only
// kind that accumulates (spec §3: "An identifier may bind to a *set* of
// functions for multiple dispatch"); every other kind forbids redefinition.
type Entity struct {
	Kind      EntityKind
	Type      Type        // for KindType, KindConstant (the constant's type)
	Functions []*Function  // for KindFunctionSet
	Event     *EventDecl   // for KindEvent
	Interface *Interface   // for KindInterface
	Alias     string       // for KindModuleAlias / KindImportedReference: the target module path
	DeclaredAt diag.Position
}

// Function is a callable binding: a builtin opcode, a user-defined LN
// function, or a generic instantiation thereof (spec §3).
type Function struct {
	Name          string
	GenericParams []string
	Parameters    []Param2
	ReturnType    Type
	Body          any // the declaration's []ln.Statement for user bodies, nil for IsOpcode
	IsOpcode      bool
	OpcodeName    string
	Purity        Purity
	DeclScope     *Scope // scope the function was declared in, for dispatch tie-breaking
	DeclIndex     int    // declaration order within DeclScope, for tie-breaking
}

// Param2 avoids colliding with the Param generic-type-parameter variant:
// it's a function parameter's (name, type) pair.
type Param2 struct {
	Name string
	Type Type
}

// Purity classifies a Function per spec §3.
type Purity int

const (
	Pure Purity = iota
	Impure
	IO
)

// EventDecl is a declared event name and its payload type (spec §3).
type EventDecl struct {
	Name string
	Type Type
}

// Operator is one row of the per-scope operator table (spec §3).
type Operator struct {
	Symbol     string
	Fixity     Fixity
	Precedence int
	FuncName   string
}

type Fixity int

const (
	Prefix Fixity = iota
	Infix
)

// Scope is one lexical level in the upward-linked chain: local → handler →
// module → root/builtin (spec §3). Lookup walks upward from the innermost
// scope, stopping at the first match.
type Scope struct {
	Name      string
	Parent    *Scope
	entries   map[string]*Entity
	order     []string // insertion order of the names bound here
	operators []Operator
	declCount int
}

// NewScope creates a scope nested under parent (nil for the root/builtin
// scope).
func NewScope(name string, parent *Scope) *Scope {
	return &Scope{Name: name, Parent: parent, entries: make(map[string]*Entity)}
}

// Get looks up name starting at this scope and walking up the parent
// chain, returning the first match.
func (s *Scope) Get(name string) (*Entity, *Scope, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if e, ok := sc.entries[name]; ok {
			return e, sc, true
		}
	}
	return nil, nil, false
}

// GetLocal looks up name in this scope only, without walking to parents.
func (s *Scope) GetLocal(name string) (*Entity, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Depth returns how many parent hops separate s from the root scope; used
// by the resolver to prefer a candidate declared in a closer scope (spec
// §4.5 rule iv).
func (s *Scope) Depth() int {
	d := 0
	for sc := s.Parent; sc != nil; sc = sc.Parent {
		d++
	}
	return d
}

// Insert binds name to entity in this scope. Functions accumulate into the
// existing set; every other kind rejects a redefinition within the same
// scope with a ScopeError (spec §3, §7).
func (s *Scope) Insert(name string, entity *Entity, pos diag.Position) error {
	if entity.Kind == KindFunctionSet {
		if existing, ok := s.entries[name]; ok {
			if existing.Kind != KindFunctionSet {
				return diag.New(diag.ClassScope, pos, "cannot declare function %q: name already bound to a non-function entity", name)
			}
			for _, fn := range entity.Functions {
				fn.DeclIndex = s.declCount
				s.declCount++
			}
			existing.Functions = append(existing.Functions, entity.Functions...)
			return nil
		}
		for _, fn := range entity.Functions {
			fn.DeclIndex = s.declCount
			s.declCount++
		}
		entity.DeclaredAt = pos
		s.entries[name] = entity
		s.order = append(s.order, name)
		return nil
	}

	if _, exists := s.entries[name]; exists {
		return diag.New(diag.ClassScope, pos, "%q already declared in this scope", name)
	}
	entity.DeclaredAt = pos
	s.entries[name] = entity
	s.order = append(s.order, name)
	return nil
}

// AddOperator registers an operator row in this scope's table.
func (s *Scope) AddOperator(op Operator) { s.operators = append(s.operators, op) }

// Operators returns every operator row visible from this scope (this scope
// plus every ancestor), matching on symbol and fixity. Per spec §4.4,
// lookup returns the full set at all precedences; the caller orders by
// precedence once operand types have narrowed the set.
func (s *Scope) Operators(symbol string, fixity Fixity) []Operator {
	var out []Operator
	for sc := s; sc != nil; sc = sc.Parent {
		for _, op := range sc.operators {
			if op.Symbol == symbol && op.Fixity == fixity {
				out = append(out, op)
			}
		}
	}
	return out
}

func (e *Entity) String() string {
	switch e.Kind {
	case KindType:
		return fmt.Sprintf("type(%s)", e.Type)
	case KindFunctionSet:
		return fmt.Sprintf("functions(%d overloads)", len(e.Functions))
	case KindConstant:
		return fmt.Sprintf("const(%s)", e.Type)
	case KindEvent:
		return fmt.Sprintf("event(%s)", e.Event.Name)
	case KindInterface:
		return fmt.Sprintf("interface(%s)", e.Interface.Name)
	default:
		return "entity"
	}
}
