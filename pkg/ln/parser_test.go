package ln_test

import (
	"testing"

	"alan.dev/alanc/pkg/ln"
)

func TestParseModuleHelloWorld(t *testing.T) {
	src := `
from @std/app import start, print, exit

on start {
	print("hello, world");
	exit(0);
}
`
	mod, err := ln.ParseModule("hello.ln", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(mod.Imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(mod.Imports))
	}
	imp := mod.Imports[0]
	if imp.Kind != ln.ImportStd || imp.Path != "@std/app" {
		t.Fatalf("unexpected import: %+v", imp)
	}
	if len(imp.Names) != 3 || imp.Names[0] != "start" || imp.Names[2] != "exit" {
		t.Fatalf("unexpected import names: %v", imp.Names)
	}
	if len(mod.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(mod.Decls))
	}
	h, ok := mod.Decls[0].(ln.Handler)
	if !ok {
		t.Fatalf("expected a Handler, got %T", mod.Decls[0])
	}
	if h.Event != "start" {
		t.Fatalf("expected handler for 'start', got %q", h.Event)
	}
	if len(h.Body) != 2 {
		t.Fatalf("expected 2 statements in handler body, got %d", len(h.Body))
	}
}

func TestParseModuleDeclarations(t *testing.T) {
	src := `
type Point {
	x: int64,
	y: int64,
}

interface Shape {
	area(): float64;
}

operator + infix 10 = add;

event Tick: int64;

export const Pi: float64 = 3.14;

export fn add(a: int64, b: int64): int64 {
	return a + b;
}

fn square(x: int64) => x * x;
`
	mod, err := ln.ParseModule("decls.ln", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(mod.Decls) != 7 {
		t.Fatalf("expected 7 declarations, got %d", len(mod.Decls))
	}

	typeDecl, ok := mod.Decls[0].(ln.TypeDecl)
	if !ok || typeDecl.Name != "Point" {
		t.Fatalf("expected TypeDecl Point, got %+v", mod.Decls[0])
	}

	ifaceDecl, ok := mod.Decls[1].(ln.InterfaceDecl)
	if !ok || len(ifaceDecl.Methods) != 1 || ifaceDecl.Methods[0].Name != "area" {
		t.Fatalf("expected InterfaceDecl Shape with method area, got %+v", mod.Decls[1])
	}

	opDecl, ok := mod.Decls[2].(ln.OperatorDecl)
	if !ok || opDecl.Symbol != "+" || opDecl.Fixity != "infix" || opDecl.Precedence != 10 || opDecl.FuncName != "add" {
		t.Fatalf("unexpected OperatorDecl: %+v", mod.Decls[2])
	}

	eventDecl, ok := mod.Decls[3].(ln.EventDecl)
	if !ok || eventDecl.Name != "Tick" || eventDecl.Type.Name != "int64" {
		t.Fatalf("unexpected EventDecl: %+v", mod.Decls[3])
	}

	constDecl, ok := mod.Decls[4].(ln.ConstDecl)
	if !ok || !constDecl.Exported || constDecl.Name != "Pi" {
		t.Fatalf("unexpected ConstDecl: %+v", mod.Decls[4])
	}
	if !mod.Exports["Pi"] {
		t.Fatalf("expected Pi to be recorded in Module.Exports")
	}

	fnDecl, ok := mod.Decls[5].(ln.FuncDecl)
	if !ok || fnDecl.Name != "add" || !fnDecl.Exported || len(fnDecl.Params) != 2 {
		t.Fatalf("unexpected FuncDecl: %+v", mod.Decls[5])
	}
	if ret, ok := fnDecl.Body[0].(ln.ReturnStmt); !ok {
		t.Fatalf("expected function body to end in a return statement, got %T", fnDecl.Body[0])
	} else if _, ok := ret.Value.(ln.OperatorChainExpr); !ok {
		t.Fatalf("expected 'a + b' to parse as an OperatorChainExpr, got %T", ret.Value)
	}
}

func TestParseModuleArrowFunctionSugar(t *testing.T) {
	src := `fn square(x: int64) => x * x;` + "\n"
	mod, err := ln.ParseModule("arrow.ln", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	fn, ok := mod.Decls[0].(ln.FuncDecl)
	if !ok || !fn.IsArrowForm {
		t.Fatalf("expected an arrow-form FuncDecl, got %+v", mod.Decls[0])
	}
}

func TestParseModuleConditionalExpression(t *testing.T) {
	src := `
fn classify(n: int64): string {
	let label: string = if n < 0 {
		"negative"
	} else if n == 0 {
		"zero"
	} else {
		"positive"
	};
	return label;
}
`
	mod, err := ln.ParseModule("cond.ln", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	fn := mod.Decls[0].(ln.FuncDecl)
	letStmt, ok := fn.Body[0].(ln.VarStmt)
	if !ok {
		t.Fatalf("expected first statement to be a VarStmt, got %T", fn.Body[0])
	}
	cond, ok := letStmt.Value.(ln.ConditionalExpr)
	if !ok {
		t.Fatalf("expected the let value to be a ConditionalExpr, got %T", letStmt.Value)
	}
	if len(cond.Arms) != 3 {
		t.Fatalf("expected 3 conditional arms, got %d", len(cond.Arms))
	}
	if cond.Arms[2].Cond != nil {
		t.Fatalf("expected the final arm to be an else with nil Cond")
	}
}

func TestParseModuleMethodChainAndIndex(t *testing.T) {
	src := `
on start {
	let total: int64 = items.sum().double();
	let first: int64 = values[0];
}
`
	mod, err := ln.ParseModule("chain.ln", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	h := mod.Decls[0].(ln.Handler)

	totalStmt := h.Body[0].(ln.VarStmt)
	outer, ok := totalStmt.Value.(ln.CallExpr)
	if !ok || outer.FuncName != "double" {
		t.Fatalf("expected outer call to be 'double', got %+v", totalStmt.Value)
	}
	inner, ok := outer.Args[0].(ln.CallExpr)
	if !ok || inner.FuncName != "sum" {
		t.Fatalf("expected receiver to be a call to 'sum', got %+v", outer.Args[0])
	}
	if _, ok := inner.Args[0].(ln.VarExpr); !ok {
		t.Fatalf("expected sum()'s receiver arg to be the VarExpr 'items', got %+v", inner.Args[0])
	}

	firstStmt := h.Body[1].(ln.VarStmt)
	idx, ok := firstStmt.Value.(ln.IndexExpr)
	if !ok {
		t.Fatalf("expected an IndexExpr, got %T", firstStmt.Value)
	}
	lit, ok := idx.Index.(ln.LiteralExpr)
	if !ok || lit.Value != "0" {
		t.Fatalf("expected index literal '0', got %+v", idx.Index)
	}
}

func TestParseModuleRejectsMissingSemicolon(t *testing.T) {
	src := `
on start {
	let x: int64 = 1
}
`
	if _, err := ln.ParseModule("bad.ln", src); err == nil {
		t.Fatalf("expected a parse error for the missing ';'")
	}
}
