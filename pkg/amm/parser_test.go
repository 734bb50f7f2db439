package amm_test

import (
	"testing"

	"alan.dev/alanc/pkg/amm"
)

func TestParseModuleHandlerAndEvent(t *testing.T) {
	src := `
event tick: int64;

on tick fn (n: int64): void {
	let total: int64 = 0;
	total = plus(total, n);
	emit done total;
}
`
	mod, err := amm.ParseModule("tick.amm", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(mod.Decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(mod.Decls))
	}
	ev, ok := mod.Decls[0].(amm.EventDecl)
	if !ok || ev.Name != "tick" {
		t.Fatalf("expected an EventDecl for 'tick', got %+v", mod.Decls[0])
	}
	h, ok := mod.Decls[1].(amm.Handler)
	if !ok {
		t.Fatalf("expected a Handler, got %T", mod.Decls[1])
	}
	if h.ArgName != "n" || h.ArgType.Name != "int64" {
		t.Fatalf("unexpected handler argument: %+v", h)
	}
	if len(h.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(h.Body))
	}
}

func TestParseModuleConditionalDispatchTable(t *testing.T) {
	src := `
fn sign(n: int64): int64 {
	const __t0: bool = gt(n, 0);
	const __t1: Array<Closure> = [(__t0, fn (): int64 { let __ret: int64 = 1; }), (true, fn (): int64 { let __ret: int64 = negate(1); })];
	const __t2: int64 = evalcond(__t1);
	let __ret: int64 = __t2;
}
`
	mod, err := amm.ParseModule("cond.amm", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	fn, ok := mod.Decls[0].(amm.FuncDecl)
	if !ok || fn.Name != "sign" {
		t.Fatalf("expected a FuncDecl for 'sign', got %+v", mod.Decls[0])
	}
	if len(fn.Body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(fn.Body))
	}
	table, ok := fn.Body[1].(amm.VarStmt)
	if !ok {
		t.Fatalf("expected the table const as a VarStmt, got %T", fn.Body[1])
	}
	arr, ok := table.Value.(amm.ArrayExpr)
	if !ok || len(arr.Elems) != 2 {
		t.Fatalf("expected a 2-element ArrayExpr, got %+v", table.Value)
	}
	pair, ok := arr.Elems[0].(amm.TupleExpr)
	if !ok || len(pair.Elems) != 2 {
		t.Fatalf("expected a 2-element tuple, got %+v", arr.Elems[0])
	}
	if _, ok := pair.Elems[1].(amm.ClosureExpr); !ok {
		t.Fatalf("expected the tuple's second element to be a closure, got %T", pair.Elems[1])
	}
}

func TestParseModuleRejectsMissingSemicolon(t *testing.T) {
	src := `const x: int64 = 1`
	if _, err := amm.ParseModule("bad.amm", src); err == nil {
		t.Fatalf("expected a parse error for a missing ';'")
	}
}
