package resolve_test

import (
	"testing"

	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/resolve"
	"alan.dev/alanc/pkg/scope"
)

func TestSelectCandidatePrefersExactOverGeneric(t *testing.T) {
	generic := &scope.Function{
		Name: "identity", GenericParams: []string{"T"},
		Parameters: []scope.Param2{{Name: "x", Type: scope.Param{Name: "T"}}},
		ReturnType: scope.Param{Name: "T"},
		DeclIndex:  0,
	}
	exact := &scope.Function{
		Name:       "identity",
		Parameters: []scope.Param2{{Name: "x", Type: scope.Int64}},
		ReturnType: scope.Int64,
		DeclIndex:  1,
	}

	fn, subst, err := resolve.SelectCandidate([]*scope.Function{generic, exact}, []scope.Type{scope.Int64}, diag.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fn != exact {
		t.Fatalf("expected the exact overload to win over the generic one")
	}
	if len(subst) != 0 {
		t.Fatalf("expected no substitution for the exact match, got %v", subst)
	}
}

func TestSelectCandidateFallsBackToGeneric(t *testing.T) {
	generic := &scope.Function{
		Name: "identity", GenericParams: []string{"T"},
		Parameters: []scope.Param2{{Name: "x", Type: scope.Param{Name: "T"}}},
		ReturnType: scope.Param{Name: "T"},
	}

	fn, subst, err := resolve.SelectCandidate([]*scope.Function{generic}, []scope.Type{scope.Str}, diag.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fn != generic {
		t.Fatalf("expected the generic overload to be selected")
	}
	if !scope.Equal(subst["T"], scope.Str) {
		t.Fatalf("expected T bound to string, got %v", subst["T"])
	}
}

func TestSelectCandidateRejectsArityMismatch(t *testing.T) {
	one := &scope.Function{Name: "f", Parameters: []scope.Param2{{Name: "a", Type: scope.Int64}}, ReturnType: scope.Int64}

	_, _, err := resolve.SelectCandidate([]*scope.Function{one}, []scope.Type{scope.Int64, scope.Int64}, diag.Position{})
	if err == nil {
		t.Fatalf("expected an error for an arity mismatch")
	}
}

func TestSelectCandidateReportsAmbiguity(t *testing.T) {
	a := &scope.Function{Name: "f", Parameters: []scope.Param2{{Name: "x", Type: scope.Int64}}, ReturnType: scope.Int64}
	b := &scope.Function{Name: "f", Parameters: []scope.Param2{{Name: "x", Type: scope.Int64}}, ReturnType: scope.Bool}

	_, _, err := resolve.SelectCandidate([]*scope.Function{a, b}, []scope.Type{scope.Int64}, diag.Position{})
	if err == nil {
		t.Fatalf("expected an ambiguity error for two identically-shaped exact overloads")
	}
}

func TestInstantiateMemoizesByConcreteArgs(t *testing.T) {
	generic := &scope.Function{
		Name: "len", GenericParams: []string{"T"},
		Parameters: []scope.Param2{{Name: "a", Type: scope.Generic{Name: "Array", Args: []scope.Type{scope.Param{Name: "T"}}}}},
		ReturnType: scope.Int64,
	}

	first := resolve.Instantiate(generic, map[string]scope.Type{"T": scope.Str})
	second := resolve.Instantiate(generic, map[string]scope.Type{"T": scope.Str})
	if first != second {
		t.Fatalf("expected repeated instantiation with the same concrete type to be memoized")
	}

	third := resolve.Instantiate(generic, map[string]scope.Type{"T": scope.Int64})
	if first == third {
		t.Fatalf("expected a distinct instantiation for a different concrete type")
	}
	arrType := third.Parameters[0].Type.(scope.Generic)
	if !scope.Equal(arrType.Args[0], scope.Int64) {
		t.Fatalf("expected Array<int64> after substitution, got %s", arrType.String())
	}
}

func TestInstantiateIsNoopForNonGenericFunctions(t *testing.T) {
	plain := &scope.Function{Name: "f", Parameters: []scope.Param2{{Name: "a", Type: scope.Int64}}, ReturnType: scope.Int64}
	if resolve.Instantiate(plain, map[string]scope.Type{"T": scope.Str}) != plain {
		t.Fatalf("expected a non-generic function to be returned unchanged")
	}
}
