// Package scope implements the Scope & Types subsystem (spec §4.4): lexical
// scope chains, the Type variant hierarchy, interfaces and the per-scope
// operator table. It follows the teacher's habit (pkg/jack, pkg/vm) of
// declaring a shared marker interface per sum type and one concrete struct
// per variant, dispatched with type switches rather than a visitor.
package scope

import (
	"fmt"
	"strings"
)

// Type is the shared marker for every type variant in spec §3: builtin
// primitives, generic applications, products (records), aliases,
// interfaces, and unresolved generic parameters.
type Type interface {
	typeNode()
	// String renders the type the way it would appear in AMM output.
	String() string
}

// Primitive is one of the built-in scalar/void types. Name is one of
// int8, int16, int32, int64, float32, float64, bool, string, void.
type Primitive struct{ Name string }

func (Primitive) typeNode()        {}
func (p Primitive) String() string { return p.Name }

// Builtin primitive singletons, reused everywhere rather than re-allocated.
var (
	Int8    = Primitive{"int8"}
	Int16   = Primitive{"int16"}
	Int32   = Primitive{"int32"}
	Int64   = Primitive{"int64"}
	Float32 = Primitive{"float32"}
	Float64 = Primitive{"float64"}
	Bool    = Primitive{"bool"}
	Str     = Primitive{"string"}
	Void    = Primitive{"void"}
)

// primitivesByName is used by the grammar/resolver layers to map a type
// name token back to its Primitive singleton.
var primitivesByName = map[string]Primitive{
	"int8": Int8, "int16": Int16, "int32": Int32, "int64": Int64,
	"float32": Float32, "float64": Float64, "bool": Bool, "string": Str, "void": Void,
}

// LookupPrimitive returns the Primitive singleton for name, if any.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitivesByName[name]
	return p, ok
}

// IsNumeric reports whether t is one of the integer/float primitives.
func IsNumeric(t Type) bool {
	p, ok := t.(Primitive)
	if !ok {
		return false
	}
	switch p.Name {
	case "int8", "int16", "int32", "int64", "float32", "float64":
		return true
	default:
		return false
	}
}

// IsInteger reports whether t is one of the signed integer primitives.
func IsInteger(t Type) bool {
	p, ok := t.(Primitive)
	return ok && strings.HasPrefix(p.Name, "int")
}

// Width returns the byte width of a numeric/bool primitive, used by the
// resolver to check literal width-correctness (spec §8 invariant 6).
func Width(t Type) (int, bool) {
	p, ok := t.(Primitive)
	if !ok {
		return 0, false
	}
	switch p.Name {
	case "int8":
		return 1, true
	case "int16":
		return 2, true
	case "int32", "float32":
		return 4, true
	case "int64", "float64":
		return 8, true
	case "bool":
		return 1, true
	default:
		return 0, false
	}
}

// Generic is a generic type application, e.g. Array<Foo>, Result<int64>,
// Maybe<T>. Result, Maybe and Either are always Generic values whose Name is
// one of those three built-in constructors (spec §3 invariant iii).
type Generic struct {
	Name string
	Args []Type
}

func (Generic) typeNode() {}
func (g Generic) String() string {
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", g.Name, strings.Join(parts, ", "))
}

// IsBuiltinGeneric reports whether name is one of the compiler-intrinsic
// generic constructors that users cannot recursively redefine.
func IsBuiltinGeneric(name string) bool {
	switch name {
	case "Result", "Maybe", "Either", "Array":
		return true
	default:
		return false
	}
}

// Field is one named, typed member of a Product type.
type Field struct {
	Name string
	Type Type
}

// Product is a user-declared record type. Equality is nominal: two Product
// values are equal iff they share the same Decl identity, never by
// structurally comparing Fields (spec §4.4).
type Product struct {
	Decl   *ProductDecl
	Fields []Field
}

func (Product) typeNode() {}
func (p Product) String() string { return p.Decl.Name }

// ProductDecl is the unique, stable declaration identity behind a Product
// type (spec §9: "keep a stable id on every user type declaration"). Two
// Product values compare equal iff their Decl pointers are identical.
type ProductDecl struct {
	Name          string
	GenericParams []string
}

// Alias is a user `type Name = Underlying` declaration.
type Alias struct {
	Name       string
	Underlying Type
}

func (Alias) typeNode()      {}
func (a Alias) String() string { return a.Name }

// Resolve follows an alias chain to its underlying non-alias type. Cyclic
// aliases are rejected at declaration time (spec §3 invariant i), so this
// is guaranteed to terminate.
func Resolve(t Type) Type {
	for {
		a, ok := t.(Alias)
		if !ok {
			return t
		}
		t = a.Underlying
	}
}

// MethodSig is one operation an Interface requires, expressed with the
// constrained type parameter left in place (spec §4.4: "(..., I, ...) → I").
type MethodSig struct {
	Name       string
	Params     []Type
	ReturnType Type
}

// Interface is a structural constraint: a set of required operations plus a
// set of required field names/types.
type Interface struct {
	Name    string
	Methods []MethodSig
	Fields  []Field
}

func (Interface) typeNode()      {}
func (i Interface) String() string { return i.Name }

// Param is an unresolved generic parameter, bound during dispatch/unification.
type Param struct{ Name string }

func (Param) typeNode()      {}
func (p Param) String() string { return p.Name }

// Equal implements spec §4.4's equality rule after resolving aliases:
// Generic applications compare structurally, Primitive, Interface and Param
// compare by name, and Product is nominal on Decl identity.
func Equal(a, b Type) bool {
	a, b = Resolve(a), Resolve(b)

	switch ta := a.(type) {
	case Primitive:
		tb, ok := b.(Primitive)
		return ok && ta.Name == tb.Name
	case Product:
		tb, ok := b.(Product)
		return ok && ta.Decl == tb.Decl
	case Generic:
		tb, ok := b.(Generic)
		if !ok || ta.Name != tb.Name || len(ta.Args) != len(tb.Args) {
			return false
		}
		for i := range ta.Args {
			if !Equal(ta.Args[i], tb.Args[i]) {
				return false
			}
		}
		return true
	case Interface:
		tb, ok := b.(Interface)
		return ok && ta.Name == tb.Name
	case Param:
		tb, ok := b.(Param)
		return ok && ta.Name == tb.Name
	default:
		return false
	}
}

// Substitute replaces every occurrence of a generic Param bound in subst
// with its concrete argument, recursing into Generic args and Product
// fields. Used for generic instantiation (spec §4.5) and for a generic
// call's return type during type inference.
func Substitute(t Type, subst map[string]Type) Type {
	switch tt := t.(type) {
	case Param:
		if repl, ok := subst[tt.Name]; ok {
			return repl
		}
		return tt
	case Generic:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = Substitute(a, subst)
		}
		return Generic{Name: tt.Name, Args: args}
	case Product:
		fields := make([]Field, len(tt.Fields))
		for i, f := range tt.Fields {
			fields[i] = Field{Name: f.Name, Type: Substitute(f.Type, subst)}
		}
		return Product{Decl: tt.Decl, Fields: fields}
	case Alias:
		return Alias{Name: tt.Name, Underlying: Substitute(tt.Underlying, subst)}
	default:
		return t
	}
}
