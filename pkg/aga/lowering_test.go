package aga_test

import (
	"strconv"
	"testing"

	"alan.dev/alanc/pkg/aga"
	"alan.dev/alanc/pkg/amm"
)

// TestEmitClosureExtraction grounds spec §8 scenario S5: a handler-local
// closure becomes its own synthetic handler, and the caller's statement
// references that synthetic event id as its first operand.
func TestEmitClosureExtraction(t *testing.T) {
	src := `
on start fn (arg: int64): void {
	const f: Closure = fn (n: int64): int64 { let r: int64 = mul(n, 2); };
	let x: int64 = f(3);
}
`
	ammMod, err := amm.ParseModule("closure.amm", src)
	if err != nil {
		t.Fatalf("unexpected AMM parse error: %v", err)
	}
	text, err := aga.Emit(ammMod)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}

	agaMod, err := aga.ParseModule("closure.aga", text)
	if err != nil {
		t.Fatalf("emitted AGA failed to re-parse: %v\n%s", err, text)
	}
	if len(agaMod.Handlers) != 2 {
		t.Fatalf("expected 2 handler blocks (original + synthetic closure), got %d:\n%s", len(agaMod.Handlers), text)
	}

	var startHandler, closureHandler *aga.HandlerDecl
	for i := range agaMod.Handlers {
		h := &agaMod.Handlers[i]
		if h.Event == "start" {
			startHandler = h
		} else {
			closureHandler = h
		}
	}
	if startHandler == nil || closureHandler == nil {
		t.Fatalf("expected one 'start' handler and one synthetic closure handler, got %+v", agaMod.Handlers)
	}

	var invoke *aga.StmtLine
	for i := range startHandler.Statements {
		if startHandler.Statements[i].Opcode == "invoke" {
			invoke = &startHandler.Statements[i]
		}
	}
	if invoke == nil {
		t.Fatalf("expected an 'invoke' statement in the start handler:\n%s", text)
	}
	if invoke.Args[0].Kind != aga.OpImm {
		t.Fatalf("expected invoke's first operand to be an immediate synthetic event id, got %+v", invoke.Args[0])
	}
	if invoke.Args[0].Imm != strconv.FormatInt(closureHandler.EventID, 10) {
		t.Fatalf("expected invoke to reference synthetic event id %d, got %q", closureHandler.EventID, invoke.Args[0].Imm)
	}
}

// TestEmitConditionalDispatchTable grounds spec §8 scenario S4: a
// conditional's AMM dispatch-table constant lowers to a tblnew/tblput
// sequence plus a single evalcond call.
func TestEmitConditionalDispatchTable(t *testing.T) {
	src := `
fn sign(n: int64): int64 {
	const __t0: bool = gt(n, 0);
	const __t1: Array<Closure> = [(__t0, fn (): int64 { let __ret: int64 = 1; }), (true, fn (): int64 { let __ret: int64 = negate(1); })];
	const __t2: int64 = evalcond(__t1);
	let __ret: int64 = __t2;
}
`
	ammMod, err := amm.ParseModule("cond.amm", src)
	if err != nil {
		t.Fatalf("unexpected AMM parse error: %v", err)
	}
	text, err := aga.Emit(ammMod)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}

	agaMod, err := aga.ParseModule("cond.aga", text)
	if err != nil {
		t.Fatalf("emitted AGA failed to re-parse: %v\n%s", err, text)
	}

	// sign's own handler plus one synthetic handler per dispatch arm.
	if len(agaMod.Handlers) != 3 {
		t.Fatalf("expected 3 handler blocks (sign + 2 closures), got %d:\n%s", len(agaMod.Handlers), text)
	}

	var sign *aga.HandlerDecl
	for i := range agaMod.Handlers {
		if agaMod.Handlers[i].Event == "sign" {
			sign = &agaMod.Handlers[i]
		}
	}
	if sign == nil {
		t.Fatalf("expected a handler for 'sign', got %+v", agaMod.Handlers)
	}

	var sawTblnew, sawEvalcond bool
	var tblputCount int
	for _, ln := range sign.Statements {
		switch ln.Opcode {
		case "tblnew":
			sawTblnew = true
		case "tblput":
			tblputCount++
		case "evalcond":
			sawEvalcond = true
		}
	}
	if !sawTblnew {
		t.Fatalf("expected a tblnew statement:\n%s", text)
	}
	if tblputCount != 2 {
		t.Fatalf("expected 2 tblput statements (one per dispatch arm), got %d:\n%s", tblputCount, text)
	}
	if !sawEvalcond {
		t.Fatalf("expected a single evalcond statement:\n%s", text)
	}
}

