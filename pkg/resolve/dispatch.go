package resolve

import (
	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/scope"
)

// matchKind ranks how a single argument matched a single parameter,
// smaller is better (spec §4.5's dispatch ranking rule: "exact match >
// interface match > generic substitution").
type matchKind int

const (
	matchExact matchKind = iota
	matchInterface
	matchGeneric
)

// candidateScore is the sortable rank of one Function against a concrete
// argument-type tuple.
type candidateScore struct {
	fn          *scope.Function
	worst       matchKind // the least-specific match any single parameter needed
	numGeneric  int       // count of parameters that needed a generic substitution
	declIndex   int
	scopeDepth  int
	subst       map[string]scope.Type
}

// SelectCandidate picks the best-matching overload of fn for argTypes per
// spec §4.5's dispatch rule: exact match beats interface match beats
// generic substitution; among equally-specific candidates, fewer generic
// substitutions wins, then earlier declaration, then closer declaring
// scope. A genuine tie after all four tie-breakers is a compile error.
func SelectCandidate(fns []*scope.Function, argTypes []scope.Type, pos diag.Position) (*scope.Function, map[string]scope.Type, error) {
	var scored []candidateScore

	for _, fn := range fns {
		if len(fn.Parameters) != len(argTypes) {
			continue
		}
		subst := map[string]scope.Type{}
		worst := matchExact
		numGeneric := 0
		ok := true
		for i, param := range fn.Parameters {
			kind, matched := matchParam(fn.DeclScope, argTypes[i], param.Type, subst)
			if !matched {
				ok = false
				break
			}
			if kind > worst {
				worst = kind
			}
			if kind == matchGeneric {
				numGeneric++
			}
		}
		if !ok {
			continue
		}
		depth := 0
		if fn.DeclScope != nil {
			depth = fn.DeclScope.Depth()
		}
		scored = append(scored, candidateScore{
			fn: fn, worst: worst, numGeneric: numGeneric,
			declIndex: fn.DeclIndex, scopeDepth: depth, subst: subst,
		})
	}

	if len(scored) == 0 {
		return nil, nil, diag.New(diag.ClassResolve, pos, "no matching overload for argument types %s", typeList(argTypes))
	}

	best := scored[0]
	tied := []candidateScore{best}
	for _, c := range scored[1:] {
		switch compareCandidates(c, best) {
		case -1:
			best = c
			tied = []candidateScore{c}
		case 0:
			tied = append(tied, c)
		}
	}

	if len(tied) > 1 {
		return nil, nil, diag.New(diag.ClassResolve, pos, "ambiguous call: %d overloads are equally specific for %s", len(tied), typeList(argTypes))
	}
	return best.fn, best.subst, nil
}

// compareCandidates returns -1 if a ranks strictly better than b, +1 if
// worse, 0 if tied on every tie-breaker.
func compareCandidates(a, b candidateScore) int {
	if a.worst != b.worst {
		if a.worst < b.worst {
			return -1
		}
		return 1
	}
	if a.numGeneric != b.numGeneric {
		if a.numGeneric < b.numGeneric {
			return -1
		}
		return 1
	}
	if a.declIndex != b.declIndex {
		if a.declIndex < b.declIndex {
			return -1
		}
		return 1
	}
	if a.scopeDepth != b.scopeDepth {
		if a.scopeDepth > b.scopeDepth { // deeper Depth() == farther from root == closer to call site
			return -1
		}
		return 1
	}
	return 0
}

// matchParam reports how argType matches paramType, binding subst when
// paramType is an unresolved generic Param. A Param bound more than once
// must agree with its first binding (spec §4.5: a generic function's type
// parameters are consistent across all its uses in one call).
func matchParam(declScope *scope.Scope, argType, paramType scope.Type, subst map[string]scope.Type) (matchKind, bool) {
	if p, ok := paramType.(scope.Param); ok {
		if bound, ok := subst[p.Name]; ok {
			return matchGeneric, scope.Equal(bound, argType)
		}
		subst[p.Name] = argType
		return matchGeneric, true
	}
	if scope.Equal(argType, paramType) {
		return matchExact, true
	}
	if iface, ok := scope.Resolve(paramType).(scope.Interface); ok {
		if declScope == nil {
			return matchInterface, false
		}
		_, ok := scope.Satisfies(declScope, iface, argType)
		return matchInterface, ok
	}
	return matchExact, false
}

func typeList(ts []scope.Type) string {
	out := ""
	for i, t := range ts {
		if i > 0 {
			out += ", "
		}
		out += t.String()
	}
	return out
}
