package ln_test

import (
	"strings"
	"testing"

	"alan.dev/alanc/pkg/ln"
	"alan.dev/alanc/pkg/module"
	"alan.dev/alanc/pkg/resolve"
)

func resolveSrc(t *testing.T, path, src string) (*ln.Module, *resolve.Result) {
	t.Helper()
	mod, err := ln.ParseModule(path, src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	g := module.NewGraph()
	res, err := resolve.Module(g, mod, resolve.Root())
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	return mod, res
}

func TestEmitAMMFlattensConstInitializer(t *testing.T) {
	src := `
operator + infix 10 = plus;
operator * infix 20 = times;

fn plus(a: int64, b: int64): int64;
fn times(a: int64, b: int64): int64;

const result: int64 = 1 + 2 * 3;
`
	mod, res := resolveSrc(t, "arith.ln", src)
	out, err := ln.EmitAMM(mod, res.Scope)
	if err != nil {
		t.Fatalf("EmitAMM error: %v", err)
	}
	if !strings.Contains(out, "times(2, 3)") {
		t.Fatalf("expected a hoisted times(2, 3) temp, got:\n%s", out)
	}
	if !strings.Contains(out, "plus(1, __t") {
		t.Fatalf("expected the outer plus call to reference a hoisted temp, got:\n%s", out)
	}
	if !strings.Contains(out, "const result: int64 = plus(1, __t") {
		t.Fatalf("expected result's initializer to call plus with the hoisted temp, got:\n%s", out)
	}
}

func TestEmitAMMHandlerAndEvent(t *testing.T) {
	src := `
event tick: int64;

on tick {
	let n: int64 = 0;
}
`
	mod, res := resolveSrc(t, "events.ln", src)
	out, err := ln.EmitAMM(mod, res.Scope)
	if err != nil {
		t.Fatalf("EmitAMM error: %v", err)
	}
	if !strings.Contains(out, "event tick: int64;") {
		t.Fatalf("expected an event declaration line, got:\n%s", out)
	}
	if !strings.Contains(out, "on tick fn (): void {") {
		t.Fatalf("expected a handler block, got:\n%s", out)
	}
	if !strings.Contains(out, "let n: int64 = 0;") {
		t.Fatalf("expected the handler's let statement to survive, got:\n%s", out)
	}
}

func TestEmitAMMLowersConditionalIntoEvalcondTable(t *testing.T) {
	src := `
operator > infix 10 = gt;
operator - prefix 30 = negate;
fn gt(a: int64, b: int64): bool;
fn negate(a: int64): int64;

fn sign(n: int64): int64 {
	return if n > 0 { 1 } else { -1 };
}
`
	mod, res := resolveSrc(t, "cond.ln", src)
	out, err := ln.EmitAMM(mod, res.Scope)
	if err != nil {
		t.Fatalf("EmitAMM error: %v", err)
	}
	if !strings.Contains(out, "evalcond(") {
		t.Fatalf("expected a conditional to lower into an evalcond call, got:\n%s", out)
	}
	if !strings.Contains(out, "Array<Closure>") {
		t.Fatalf("expected the dispatch table to be declared as Array<Closure>, got:\n%s", out)
	}
}

func TestEmitAMMLowersReturnToSyntheticVariable(t *testing.T) {
	src := `
fn identity(n: int64): int64 {
	return n;
}
`
	mod, res := resolveSrc(t, "ret.ln", src)
	out, err := ln.EmitAMM(mod, res.Scope)
	if err != nil {
		t.Fatalf("EmitAMM error: %v", err)
	}
	if !strings.Contains(out, "let __ret: int64 = n;") {
		t.Fatalf("expected return to lower into a synthetic __ret assignment, got:\n%s", out)
	}
}

func TestEmitAMMSkipsExternAndGenericFunctions(t *testing.T) {
	src := `
fn abs(n: int64): int64;
fn identity<T>(x: T): T { return x; }
`
	mod, res := resolveSrc(t, "skip.ln", src)
	out, err := ln.EmitAMM(mod, res.Scope)
	if err != nil {
		t.Fatalf("EmitAMM error: %v", err)
	}
	if strings.Contains(out, "fn abs") || strings.Contains(out, "fn identity") {
		t.Fatalf("extern and generic functions must not be re-emitted as AMM declarations, got:\n%s", out)
	}
}
