package resolve

import (
	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/ln"
	"alan.dev/alanc/pkg/scope"
)

// Infer performs bottom-up type inference over e (spec §4.4: "bottom-up,
// with top-down hints flowing only from an explicit VarStmt/ConstDecl type
// annotation or a function's declared return type"). It first desugars any
// OperatorChainExpr/PrefixedExpr it encounters — a const initializer is
// type-checked before desugarDecls runs over the rest of the module, so
// Infer must be able to stand on its own — and returns both the inferred
// type and the (possibly rewritten) expression.
func Infer(s *scope.Scope, e ln.Expression) (scope.Type, ln.Expression, error) {
	desugared, err := desugarExpr(s, e)
	if err != nil {
		return nil, nil, err
	}
	ty, err := inferType(s, desugared)
	if err != nil {
		return nil, nil, err
	}
	return ty, desugared, nil
}

func inferType(s *scope.Scope, e ln.Expression) (scope.Type, error) {
	switch v := e.(type) {
	case ln.LiteralExpr:
		return literalType(v), nil

	case ln.VarExpr:
		if v.ResolvedType != nil {
			return v.ResolvedType, nil
		}
		entity, _, ok := s.Get(v.Name)
		if !ok {
			return nil, diag.New(diag.ClassResolve, v.Pos, "undefined name %q", v.Name)
		}
		switch entity.Kind {
		case scope.KindConstant:
			return entity.Type, nil
		case scope.KindFunctionSet:
			if len(entity.Functions) == 1 {
				return closureType(entity.Functions[0]), nil
			}
			return nil, diag.New(diag.ClassResolve, v.Pos, "%q names an overload set, not a value", v.Name)
		default:
			return nil, diag.New(diag.ClassResolve, v.Pos, "%q is not a value", v.Name)
		}

	case ln.CallExpr:
		if v.ResolvedType != nil {
			return v.ResolvedType, nil
		}
		return inferCall(s, v)

	case ln.IndexExpr:
		if v.ResolvedType != nil {
			return v.ResolvedType, nil
		}
		arrTy, err := inferType(s, v.Array)
		if err != nil {
			return nil, err
		}
		g, ok := scope.Resolve(arrTy).(scope.Generic)
		if !ok || g.Name != "Array" || len(g.Args) != 1 {
			return nil, diag.New(diag.ClassType, v.Pos, "cannot index non-array type %s", arrTy.String())
		}
		return g.Args[0], nil

	case ln.ConditionalExpr:
		if v.ResolvedType != nil {
			return v.ResolvedType, nil
		}
		var unified scope.Type
		for _, arm := range v.Arms {
			if arm.Tail == nil {
				continue
			}
			ty, err := inferType(s, arm.Tail)
			if err != nil {
				return nil, err
			}
			if unified == nil {
				unified = ty
				continue
			}
			if !scope.Equal(unified, ty) {
				return nil, diag.New(diag.ClassType, v.Pos, "conditional arms disagree: %s vs %s", unified.String(), ty.String())
			}
		}
		if unified == nil {
			return scope.Void, nil
		}
		return unified, nil

	case ln.ClosureExpr:
		if v.ResolvedType != nil {
			return v.ResolvedType, nil
		}
		params := make([]scope.Param2, 0, len(v.Params))
		for _, p := range v.Params {
			ty, err := typeExprToType(p.Type, s)
			if err != nil {
				return nil, err
			}
			params = append(params, scope.Param2{Name: p.Name, Type: ty})
		}
		ret, err := typeExprToType(v.ReturnType, s)
		if err != nil {
			return nil, err
		}
		return closureType(&scope.Function{Parameters: params, ReturnType: ret}), nil

	default:
		return nil, diag.New(diag.ClassResolve, diag.Position{}, "resolve: cannot infer type of %T", e)
	}
}

func literalType(v ln.LiteralExpr) scope.Type {
	switch v.Kind {
	case ln.IntLiteral:
		return scope.Int64
	case ln.FloatLiteral:
		return scope.Float64
	case ln.StringLiteral:
		return scope.Str
	case ln.BoolLiteral:
		return scope.Bool
	default:
		return scope.Void
	}
}

// closureType represents a function's signature as a Generic so it can flow
// through the same Type sum everything else uses, rather than introducing a
// seventh Type variant solely for "value of function type" — a closure is
// assigned to a const exactly once per spec §4.6 and is never itself
// dispatched on, so it doesn't need the full Equal/Substitute machinery a
// first-class function type would.
func closureType(fn *scope.Function) scope.Type {
	args := make([]scope.Type, 0, len(fn.Parameters)+1)
	for _, p := range fn.Parameters {
		args = append(args, p.Type)
	}
	args = append(args, fn.ReturnType)
	return scope.Generic{Name: "Closure", Args: args}
}

// inferCall resolves v.FuncName against s's multiple-dispatch candidates
// (spec §4.5) using the inferred argument types, then returns the chosen
// candidate's return type (substituting any generic parameters the
// candidate binds).
func inferCall(s *scope.Scope, v ln.CallExpr) (scope.Type, error) {
	argTypes := make([]scope.Type, len(v.Args))
	for i, a := range v.Args {
		ty, err := inferType(s, a)
		if err != nil {
			return nil, err
		}
		argTypes[i] = ty
	}

	entity, _, ok := s.Get(v.FuncName)
	if !ok {
		return nil, diag.New(diag.ClassResolve, v.Pos, "undefined function %q", v.FuncName)
	}
	if entity.Kind != scope.KindFunctionSet {
		return nil, diag.New(diag.ClassResolve, v.Pos, "%q is not callable", v.FuncName)
	}

	fn, subst, err := SelectCandidate(entity.Functions, argTypes, v.Pos)
	if err != nil {
		return nil, err
	}
	if len(subst) == 0 {
		return fn.ReturnType, nil
	}
	return scope.Substitute(fn.ReturnType, subst), nil
}
