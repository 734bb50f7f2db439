package resolve

import (
	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/ln"
	"alan.dev/alanc/pkg/scope"
)

// desugarDecls rewrites every OperatorChainExpr/PrefixedExpr reachable from
// mod's function bodies, handler bodies and const initializers into nested
// CallExprs, using s's operator table (spec §4.5 rule 4: operators are
// never special syntax to the emitter, only to the parser). Along the way
// it builds the local scope spec §4.4 describes (local → handler/function →
// module → root) and annotates every expression node's ResolvedType, so the
// AmmEmitter never has to re-derive a type the resolver already computed.
// Mutates mod.Decls in place.
func desugarDecls(mod *ln.Module, s *scope.Scope) error {
	for i, d := range mod.Decls {
		switch v := d.(type) {
		case ln.FuncDecl:
			local := scope.NewScope("fn "+v.Name, s)
			for _, p := range v.Params {
				ty, err := typeExprToTypeWithGenerics(p.Type, s, v.GenericParams)
				if err != nil {
					return err
				}
				if err := local.Insert(p.Name, &scope.Entity{Kind: scope.KindConstant, Type: ty}, v.Pos); err != nil {
					return err
				}
			}
			body, err := desugarBlock(local, v.Body)
			if err != nil {
				return err
			}
			v.Body = body
			mod.Decls[i] = v

		case ln.Handler:
			local := scope.NewScope("on "+v.Event, s)
			if v.ArgName != "" {
				ty, err := typeExprToType(v.ArgType, s)
				if err != nil {
					return err
				}
				if err := local.Insert(v.ArgName, &scope.Entity{Kind: scope.KindConstant, Type: ty}, v.Pos); err != nil {
					return err
				}
			}
			body, err := desugarBlock(local, v.Body)
			if err != nil {
				return err
			}
			v.Body = body
			mod.Decls[i] = v

		case ln.ConstDecl:
			e, err := desugarExpr(s, v.Value)
			if err != nil {
				return err
			}
			v.Value = e
			mod.Decls[i] = v
		}
	}
	return nil
}

func desugarBlock(s *scope.Scope, stmts []ln.Statement) ([]ln.Statement, error) {
	out := make([]ln.Statement, len(stmts))
	for i, st := range stmts {
		desugared, err := desugarStmt(s, st)
		if err != nil {
			return nil, err
		}
		out[i] = desugared
	}
	return out, nil
}

// desugarStmt rewrites one statement's expressions and, for a VarStmt,
// binds its name into s so later statements in the same block see it —
// locals are only ever visible to statements that follow their declaration,
// which a single forward pass over stmts (the order desugarBlock already
// walks in) enforces for free.
func desugarStmt(s *scope.Scope, st ln.Statement) (ln.Statement, error) {
	switch v := st.(type) {
	case ln.VarStmt:
		e, err := desugarExpr(s, v.Value)
		if err != nil {
			return nil, err
		}
		v.Value = e

		var ty scope.Type
		if v.Type.Name != "" {
			t, err := typeExprToType(v.Type, s)
			if err != nil {
				return nil, err
			}
			ty = t
		} else {
			t, err := inferType(s, e)
			if err != nil {
				return nil, err
			}
			ty = t
		}
		v.ResolvedType = ty
		if err := s.Insert(v.Name, &scope.Entity{Kind: scope.KindConstant, Type: ty}, v.Pos); err != nil {
			return nil, err
		}
		return v, nil

	case ln.AssignStmt:
		target, err := desugarExpr(s, v.Target)
		if err != nil {
			return nil, err
		}
		value, err := desugarExpr(s, v.Value)
		if err != nil {
			return nil, err
		}
		v.Target, v.Value = target, value
		return v, nil

	case ln.ExprStmt:
		e, err := desugarExpr(s, v.Expr)
		if err != nil {
			return nil, err
		}
		v.Expr = e
		return v, nil

	case ln.EmitStmt:
		if v.Value != nil {
			e, err := desugarExpr(s, v.Value)
			if err != nil {
				return nil, err
			}
			v.Value = e
		}
		return v, nil

	case ln.ReturnStmt:
		if v.Value != nil {
			e, err := desugarExpr(s, v.Value)
			if err != nil {
				return nil, err
			}
			v.Value = e
		}
		return v, nil

	default:
		return st, nil
	}
}

// desugarExpr rewrites e's operator sugar into nested CallExprs and
// annotates every node it returns with its ResolvedType.
func desugarExpr(s *scope.Scope, e ln.Expression) (ln.Expression, error) {
	if e == nil {
		return nil, nil
	}
	switch v := e.(type) {
	case ln.LiteralExpr:
		v.ResolvedType = literalType(v)
		return v, nil

	case ln.VarExpr:
		ty, err := inferType(s, v)
		if err != nil {
			return nil, err
		}
		v.ResolvedType = ty
		return v, nil

	case ln.CallExpr:
		args := make([]ln.Expression, len(v.Args))
		for i, a := range v.Args {
			d, err := desugarExpr(s, a)
			if err != nil {
				return nil, err
			}
			args[i] = d
		}
		v.Args = args
		ty, err := inferType(s, v)
		if err != nil {
			return nil, err
		}
		v.ResolvedType = ty
		return v, nil

	case ln.IndexExpr:
		arr, err := desugarExpr(s, v.Array)
		if err != nil {
			return nil, err
		}
		idx, err := desugarExpr(s, v.Index)
		if err != nil {
			return nil, err
		}
		v.Array, v.Index = arr, idx
		ty, err := inferType(s, v)
		if err != nil {
			return nil, err
		}
		v.ResolvedType = ty
		return v, nil

	case ln.ConditionalExpr:
		arms := make([]ln.ConditionalArm, len(v.Arms))
		for i, arm := range v.Arms {
			armScope := scope.NewScope("if-arm", s)
			if arm.Cond != nil {
				c, err := desugarExpr(armScope, arm.Cond)
				if err != nil {
					return nil, err
				}
				arm.Cond = c
			}
			body, err := desugarBlock(armScope, arm.Body)
			if err != nil {
				return nil, err
			}
			arm.Body = body
			if arm.Tail != nil {
				tail, err := desugarExpr(armScope, arm.Tail)
				if err != nil {
					return nil, err
				}
				arm.Tail = tail
			}
			arms[i] = arm
		}
		v.Arms = arms
		ty, err := inferType(s, v)
		if err != nil {
			return nil, err
		}
		v.ResolvedType = ty
		return v, nil

	case ln.ClosureExpr:
		local := scope.NewScope("closure", s)
		for _, p := range v.Params {
			ty, err := typeExprToType(p.Type, s)
			if err != nil {
				return nil, err
			}
			if err := local.Insert(p.Name, &scope.Entity{Kind: scope.KindConstant, Type: ty}, v.Pos); err != nil {
				return nil, err
			}
		}
		body, err := desugarBlock(local, v.Body)
		if err != nil {
			return nil, err
		}
		v.Body = body
		ty, err := inferType(s, v)
		if err != nil {
			return nil, err
		}
		v.ResolvedType = ty
		return v, nil

	case ln.PrefixedExpr:
		operand, err := desugarExpr(s, v.Operand)
		if err != nil {
			return nil, err
		}
		fn, err := operatorFunc(s, v.Symbol, scope.Prefix, v.Pos)
		if err != nil {
			return nil, err
		}
		return desugarExpr(s, ln.CallExpr{FuncName: fn, Args: []ln.Expression{operand}, Pos: v.Pos})

	case ln.OperatorChainExpr:
		first, err := desugarExpr(s, v.First)
		if err != nil {
			return nil, err
		}
		rest := make([]ln.OperatorChainElem, len(v.Rest))
		for i, elem := range v.Rest {
			operand, err := desugarExpr(s, elem.Operand)
			if err != nil {
				return nil, err
			}
			rest[i] = ln.OperatorChainElem{Symbol: elem.Symbol, Operand: operand, Pos: elem.Pos}
		}
		reduced, err := desugarOperatorChain(s, ln.OperatorChainExpr{First: first, Rest: rest, Pos: v.Pos})
		if err != nil {
			return nil, err
		}
		return desugarExpr(s, reduced)

	default:
		return nil, diag.New(diag.ClassResolve, diag.Position{}, "resolve: unhandled expression node %T", e)
	}
}

// desugarOperatorChain runs the textbook shunting-yard algorithm over a
// flat operator chain, consulting s's operator table for each symbol's
// declared precedence (spec §4.5 rule 4) and building left-associative
// nested CallExprs, one per operator application. The CallExprs it builds
// are returned un-annotated; the caller (desugarExpr) re-walks the result
// through its own CallExpr case to attach ResolvedType.
func desugarOperatorChain(s *scope.Scope, chain ln.OperatorChainExpr) (ln.Expression, error) {
	type pending struct {
		symbol string
		prec   int
		pos    diag.Position
	}

	output := []ln.Expression{chain.First}
	var ops []pending

	applyTop := func() error {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		right := output[len(output)-1]
		left := output[len(output)-2]
		output = output[:len(output)-2]
		fn, err := operatorFunc(s, top.symbol, scope.Infix, top.pos)
		if err != nil {
			return err
		}
		output = append(output, ln.CallExpr{FuncName: fn, Args: []ln.Expression{left, right}, Pos: top.pos})
		return nil
	}

	for _, elem := range chain.Rest {
		prec, err := operatorPrecedence(s, elem.Symbol, scope.Infix, elem.Pos)
		if err != nil {
			return nil, err
		}
		for len(ops) > 0 && ops[len(ops)-1].prec >= prec {
			if err := applyTop(); err != nil {
				return nil, err
			}
		}
		ops = append(ops, pending{symbol: elem.Symbol, prec: prec, pos: elem.Pos})
		output = append(output, elem.Operand)
	}
	for len(ops) > 0 {
		if err := applyTop(); err != nil {
			return nil, err
		}
	}
	if len(output) != 1 {
		return nil, diag.New(diag.ClassResolve, chain.Pos, "operator chain did not reduce to a single expression")
	}
	return output[0], nil
}

func operatorPrecedence(s *scope.Scope, symbol string, fixity scope.Fixity, pos diag.Position) (int, error) {
	ops := s.Operators(symbol, fixity)
	if len(ops) == 0 {
		return 0, diag.New(diag.ClassResolve, pos, "undeclared operator %q", symbol)
	}
	return ops[0].Precedence, nil
}

func operatorFunc(s *scope.Scope, symbol string, fixity scope.Fixity, pos diag.Position) (string, error) {
	ops := s.Operators(symbol, fixity)
	if len(ops) == 0 {
		return "", diag.New(diag.ClassResolve, pos, "undeclared operator %q", symbol)
	}
	return ops[0].FuncName, nil
}
