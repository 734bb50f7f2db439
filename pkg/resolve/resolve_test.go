package resolve_test

import (
	"testing"

	"alan.dev/alanc/pkg/ln"
	"alan.dev/alanc/pkg/module"
	"alan.dev/alanc/pkg/resolve"
	"alan.dev/alanc/pkg/scope"
)

func TestModuleDesugarsOperatorChainByPrecedence(t *testing.T) {
	src := `
operator + infix 10 = plus;
operator * infix 20 = times;

fn plus(a: int64, b: int64): int64;
fn times(a: int64, b: int64): int64;

const result: int64 = 1 + 2 * 3;
`
	mod, err := ln.ParseModule("arith.ln", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	g := module.NewGraph()
	res, err := resolve.Module(g, mod, resolve.Root())
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	_ = res

	var constDecl ln.ConstDecl
	found := false
	for _, d := range mod.Decls {
		if c, ok := d.(ln.ConstDecl); ok {
			constDecl, found = c, true
		}
	}
	if !found {
		t.Fatalf("expected a ConstDecl in the resolved module")
	}

	// 1 + 2 * 3 with * higher precedence than + must desugar to
	// plus(1, times(2, 3)), never times(plus(1, 2), 3).
	outer, ok := constDecl.Value.(ln.CallExpr)
	if !ok {
		t.Fatalf("expected top-level CallExpr, got %T", constDecl.Value)
	}
	if outer.FuncName != "plus" {
		t.Fatalf("expected outer call to 'plus', got %q", outer.FuncName)
	}
	if len(outer.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(outer.Args))
	}
	inner, ok := outer.Args[1].(ln.CallExpr)
	if !ok {
		t.Fatalf("expected inner CallExpr, got %T", outer.Args[1])
	}
	if inner.FuncName != "times" {
		t.Fatalf("expected inner call to 'times', got %q", inner.FuncName)
	}
}

func TestModuleDesugarsPrefixOperator(t *testing.T) {
	src := `
operator - prefix 30 = negate;
fn negate(a: int64): int64;
fn use(a: int64): int64 { return -a; }
`
	mod, err := ln.ParseModule("prefix.ln", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	g := module.NewGraph()
	if _, err := resolve.Module(g, mod, resolve.Root()); err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var fn ln.FuncDecl
	for _, d := range mod.Decls {
		if f, ok := d.(ln.FuncDecl); ok && f.Name == "use" {
			fn = f
		}
	}
	ret, ok := fn.Body[0].(ln.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", fn.Body[0])
	}
	call, ok := ret.Value.(ln.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", ret.Value)
	}
	if call.FuncName != "negate" || len(call.Args) != 1 {
		t.Fatalf("unexpected desugared prefix call: %+v", call)
	}
}

func TestModuleRejectsUndeclaredOperator(t *testing.T) {
	src := `const result: int64 = 1 + 2;`
	mod, err := ln.ParseModule("bad.ln", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	g := module.NewGraph()
	if _, err := resolve.Module(g, mod, resolve.Root()); err == nil {
		t.Fatalf("expected an error for an undeclared '+' operator")
	}
}

func TestModuleInfersConstTypeFromLiteral(t *testing.T) {
	src := `const pi: float64 = 3.14; const name = "alan";`
	mod, err := ln.ParseModule("consts.ln", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	g := module.NewGraph()
	res, err := resolve.Module(g, mod, resolve.Root())
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	entity, _, ok := res.Scope.Get("name")
	if !ok {
		t.Fatalf("expected 'name' to resolve")
	}
	if !scope.Equal(entity.Type, scope.Str) {
		t.Fatalf("expected 'name' to infer as string, got %s", entity.Type.String())
	}
}
