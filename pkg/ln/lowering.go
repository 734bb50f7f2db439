package ln

import (
	"fmt"
	"strings"

	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/amm"
	"alan.dev/alanc/pkg/scope"
)

// EmitAMM lowers mod — already resolved (pkg/resolve.Module has run:
// operator chains desugared into CallExprs, every expression's
// ResolvedType filled in) — into a single AMM text stream (spec §4.6).
//
// mod.Decls is the source of truth for bodies; the scope.Function values s
// holds were captured before desugaring and keep their pre-desugar Body
// (see DESIGN.md), so this walks mod.Decls directly rather than through s.
func EmitAMM(mod *Module, s *scope.Scope) (string, error) {
	e := &ammEmitter{scope: s, genericDecls: map[string]FuncDecl{}, instantiated: map[string]string{}}

	for _, d := range mod.Decls {
		if fd, ok := d.(FuncDecl); ok && len(fd.GenericParams) > 0 && !fd.IsExtern {
			e.genericDecls[fd.Name] = fd
		}
	}

	var out strings.Builder

	for _, d := range mod.Decls {
		switch v := d.(type) {
		case ConstDecl:
			text, err := e.emitTopLevelConst(v)
			if err != nil {
				return "", err
			}
			out.WriteString(text)
		case EventDecl:
			out.WriteString(fmt.Sprintf("event %s: %s;\n", v.Name, typeExprText(v.Type)))
		case Handler:
			text, err := e.emitHandler(v)
			if err != nil {
				return "", err
			}
			out.WriteString(text)
		case FuncDecl:
			if v.IsExtern || len(v.GenericParams) > 0 {
				// Externs have no body to lower; generic functions have no
				// concrete byte-width of their own and are never emitted as
				// a standalone declaration — every call site instantiates
				// and emits its own concrete copy on demand (see
				// ammEmitter.calleeName below and DESIGN.md's generics note).
				continue
			}
			text, err := e.emitFunc(v)
			if err != nil {
				return "", err
			}
			out.WriteString(text)
		}
	}

	// Call sites reached during the walk above may have queued concrete
	// instantiations of a generic FuncDecl; append each exactly once, in
	// first-use order, after every plain declaration has been emitted.
	for _, text := range e.pendingDecls {
		out.WriteString(text)
	}

	text := out.String()
	if _, err := amm.ParseModule(mod.Path, text); err != nil {
		return "", diag.New(diag.ClassEmission, diag.Position{File: mod.Path}, "AmmEmitter produced AMM text that fails to re-parse: %v", err)
	}
	return text, nil
}

type ammEmitter struct {
	scope   *scope.Scope
	tempNum int

	// genericDecls holds every module-level generic FuncDecl by name,
	// collected up front so a call site reached deep inside some other
	// body's emission can recognize it needs instantiating rather than
	// emitted by its declared (unparameterized) name.
	genericDecls map[string]FuncDecl
	// instantiated memoizes name+concrete-arg-types -> the mangled name
	// already queued for emission, so two call sites with the same
	// concrete types share one instantiated copy (spec §4.5's generic
	// instantiation is memoized per concrete argument tuple, mirrored
	// here at the AMM-emission boundary for pkg/resolve.Instantiate's
	// scope.Function-level cache).
	instantiated map[string]string
	pendingDecls []string
}

func (e *ammEmitter) nextTemp() string {
	name := fmt.Sprintf("__t%d", e.tempNum)
	e.tempNum++
	return name
}

func (e *ammEmitter) emitTopLevelConst(v ConstDecl) (string, error) {
	prelude, ref, err := e.flatten(v.Value)
	if err != nil {
		return "", err
	}
	ty := typeOf(v.Value)
	var b strings.Builder
	for _, line := range prelude {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(fmt.Sprintf("const %s: %s = %s;\n", v.Name, ty.String(), ref))
	return b.String(), nil
}

func (e *ammEmitter) emitHandler(v Handler) (string, error) {
	body, err := e.emitBlock(v.Body)
	if err != nil {
		return "", err
	}
	arg := ""
	if v.ArgName != "" {
		arg = fmt.Sprintf("%s: %s", v.ArgName, typeExprText(v.ArgType))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("on %s fn (%s): void {\n", v.Event, arg))
	writeIndented(&b, body)
	b.WriteString("}\n")
	return b.String(), nil
}

func (e *ammEmitter) emitFunc(v FuncDecl) (string, error) {
	body, err := e.emitBlock(v.Body)
	if err != nil {
		return "", err
	}
	params := make([]string, len(v.Params))
	for i, p := range v.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, typeExprText(p.Type))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("fn %s(%s): %s {\n", v.Name, strings.Join(params, ", "), typeExprText(v.ReturnType)))
	writeIndented(&b, body)
	b.WriteString("}\n")
	return b.String(), nil
}

func writeIndented(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString("\t")
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// emitBlock lowers a statement list into AMM statement lines, in order.
func (e *ammEmitter) emitBlock(stmts []Statement) ([]string, error) {
	var lines []string
	for _, st := range stmts {
		more, err := e.emitStmt(st)
		if err != nil {
			return nil, err
		}
		lines = append(lines, more...)
	}
	return lines, nil
}

func (e *ammEmitter) emitStmt(st Statement) ([]string, error) {
	switch v := st.(type) {
	case VarStmt:
		prelude, ref, err := e.flatten(v.Value)
		if err != nil {
			return nil, err
		}
		kw := "const"
		if v.IsLet {
			kw = "let"
		}
		ty := v.ResolvedType
		if ty == nil {
			ty = typeOf(v.Value)
		}
		return append(prelude, fmt.Sprintf("%s %s: %s = %s;", kw, v.Name, ty.String(), ref)), nil

	case AssignStmt:
		prelude, ref, err := e.flatten(v.Value)
		if err != nil {
			return nil, err
		}
		switch target := v.Target.(type) {
		case VarExpr:
			return append(prelude, fmt.Sprintf("%s = %s;", target.Name, ref)), nil
		case IndexExpr:
			arrPrelude, arrRef, err := e.flatten(target.Array)
			if err != nil {
				return nil, err
			}
			idxPrelude, idxRef, err := e.flatten(target.Index)
			if err != nil {
				return nil, err
			}
			lines := append(append(arrPrelude, idxPrelude...), prelude...)
			return append(lines, fmt.Sprintf("__array_set(%s, %s, %s);", arrRef, idxRef, ref)), nil
		default:
			return nil, diag.New(diag.ClassEmission, diag.Position{}, "cannot assign to %T", v.Target)
		}

	case ExprStmt:
		call, ok := v.Expr.(CallExpr)
		if !ok {
			// A bare non-call expression statement has no observable
			// effect once resolved; flatten it for side effects its
			// arguments might carry (none, today) and drop the value.
			prelude, _, err := e.flatten(v.Expr)
			return prelude, err
		}
		prelude, argRefs, err := e.flattenArgs(call.Args)
		if err != nil {
			return nil, err
		}
		callee, err := e.calleeName(call.FuncName, call.Args)
		if err != nil {
			return nil, err
		}
		return append(prelude, fmt.Sprintf("%s(%s);", callee, strings.Join(argRefs, ", "))), nil

	case EmitStmt:
		if v.Value == nil {
			return []string{fmt.Sprintf("emit %s;", v.Event)}, nil
		}
		prelude, ref, err := e.flatten(v.Value)
		if err != nil {
			return nil, err
		}
		return append(prelude, fmt.Sprintf("emit %s %s;", v.Event, ref)), nil

	case ReturnStmt:
		if v.Value == nil {
			return nil, nil
		}
		prelude, ref, err := e.flatten(v.Value)
		if err != nil {
			return nil, err
		}
		return append(prelude, fmt.Sprintf("let __ret: %s = %s;", typeOf(v.Value).String(), ref)), nil

	default:
		return nil, diag.New(diag.ClassEmission, diag.Position{}, "ln: unhandled statement node %T", st)
	}
}

// flatten lowers e to a simple reference (a literal, a variable name, or a
// single non-nested call) plus the prelude of synthetic `const __tN`
// statements needed to get there (spec §4.6: "Complex initialisers are
// split into a synthetic sequence of constants whose last is the named
// one").
func (e *ammEmitter) flatten(expr Expression) ([]string, string, error) {
	switch v := expr.(type) {
	case LiteralExpr:
		return nil, literalText(v), nil

	case VarExpr:
		return nil, v.Name, nil

	case CallExpr:
		prelude, argRefs, err := e.flattenArgs(v.Args)
		if err != nil {
			return nil, "", err
		}
		callee, err := e.calleeName(v.FuncName, v.Args)
		if err != nil {
			return nil, "", err
		}
		call := fmt.Sprintf("%s(%s)", callee, strings.Join(argRefs, ", "))
		return prelude, call, nil

	case IndexExpr:
		arrPrelude, arrRef, err := e.flatten(v.Array)
		if err != nil {
			return nil, "", err
		}
		idxPrelude, idxRef, err := e.flatten(v.Index)
		if err != nil {
			return nil, "", err
		}
		return append(arrPrelude, idxPrelude...), fmt.Sprintf("__array_get(%s, %s)", arrRef, idxRef), nil

	case ConditionalExpr:
		return e.flattenConditional(v)

	case ClosureExpr:
		text, err := e.closureLiteral(v)
		if err != nil {
			return nil, "", err
		}
		return nil, text, nil

	default:
		return nil, "", diag.New(diag.ClassEmission, diag.Position{}, "ln: cannot flatten %T into AMM", expr)
	}
}

// flattenArgs flattens each argument independently; every argument that
// isn't already a bare literal/variable gets hoisted into its own
// `const __tN` so the resulting call's argument list is never nested
// (spec §4.6: AMM calls only ever take simple argument references).
func (e *ammEmitter) flattenArgs(args []Expression) ([]string, []string, error) {
	var prelude []string
	refs := make([]string, len(args))
	for i, a := range args {
		argPrelude, ref, err := e.flatten(a)
		if err != nil {
			return nil, nil, err
		}
		if _, simple := a.(LiteralExpr); simple {
			prelude = append(prelude, argPrelude...)
			refs[i] = ref
			continue
		}
		if _, simple := a.(VarExpr); simple {
			prelude = append(prelude, argPrelude...)
			refs[i] = ref
			continue
		}
		prelude = append(prelude, argPrelude...)
		temp := e.nextTemp()
		prelude = append(prelude, fmt.Sprintf("const %s: %s = %s;", temp, typeOf(a).String(), ref))
		refs[i] = temp
	}
	return prelude, refs, nil
}

// flattenConditional builds the conditional-dispatch table spec §4.6
// describes: one (condition, closure) pair per `if`/`else if` arm in
// source order, the terminal `else` becomes the unconditional final pair,
// and a single `evalcond` call selects and invokes the first true branch.
func (e *ammEmitter) flattenConditional(v ConditionalExpr) ([]string, string, error) {
	var prelude []string
	pairs := make([]string, len(v.Arms))
	for i, arm := range v.Arms {
		closureText, err := e.armClosureLiteral(arm, v.ResolvedType)
		if err != nil {
			return nil, "", err
		}
		condText := "true"
		if arm.Cond != nil {
			condPrelude, condRef, err := e.flatten(arm.Cond)
			if err != nil {
				return nil, "", err
			}
			prelude = append(prelude, condPrelude...)
			condText = condRef
		}
		pairs[i] = fmt.Sprintf("(%s, %s)", condText, closureText)
	}

	table := e.nextTemp()
	prelude = append(prelude, fmt.Sprintf("const %s: Array<Closure> = [%s];", table, strings.Join(pairs, ", ")))
	dest := e.nextTemp()
	retTy := v.ResolvedType
	if retTy == nil {
		retTy = scope.Void
	}
	prelude = append(prelude, fmt.Sprintf("const %s: %s = evalcond(%s);", dest, retTy.String(), table))
	return prelude, dest, nil
}

func (e *ammEmitter) armClosureLiteral(arm ConditionalArm, resultType scope.Type) (string, error) {
	body, err := e.emitBlock(arm.Body)
	if err != nil {
		return "", err
	}
	if arm.Tail != nil {
		prelude, ref, err := e.flatten(arm.Tail)
		if err != nil {
			return "", err
		}
		body = append(body, prelude...)
		retTy := resultType
		if retTy == nil {
			retTy = typeOf(arm.Tail)
		}
		body = append(body, fmt.Sprintf("let __ret: %s = %s;", retTy.String(), ref))
	}
	var b strings.Builder
	b.WriteString("fn (): ")
	if resultType != nil {
		b.WriteString(resultType.String())
	} else {
		b.WriteString("void")
	}
	b.WriteString(" { ")
	for _, line := range body {
		b.WriteString(line)
		b.WriteString(" ")
	}
	b.WriteString("}")
	return b.String(), nil
}

func (e *ammEmitter) closureLiteral(v ClosureExpr) (string, error) {
	body, err := e.emitBlock(v.Body)
	if err != nil {
		return "", err
	}
	params := make([]string, len(v.Params))
	for i, p := range v.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, typeExprText(p.Type))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("fn (%s): %s { ", strings.Join(params, ", "), typeExprText(v.ReturnType)))
	for _, line := range body {
		b.WriteString(line)
		b.WriteString(" ")
	}
	b.WriteString("}")
	return b.String(), nil
}

func literalText(v LiteralExpr) string {
	switch v.Kind {
	case StringLiteral:
		return fmt.Sprintf("%q", v.Value)
	default:
		return v.Value
	}
}

func typeExprText(te TypeExpr) string {
	if te.Name == "" {
		return "void"
	}
	if len(te.Args) == 0 {
		return te.Name
	}
	parts := make([]string, len(te.Args))
	for i, a := range te.Args {
		parts[i] = typeExprText(a)
	}
	return fmt.Sprintf("%s<%s>", te.Name, strings.Join(parts, ", "))
}

// calleeName returns the AMM-text callee to emit for a call to name with
// the given (already-resolved) argument expressions: name itself for a
// plain function, or the mangled name of the concrete instantiation for a
// generic one, instantiating and queuing it on first use.
func (e *ammEmitter) calleeName(name string, args []Expression) (string, error) {
	orig, isGeneric := e.genericDecls[name]
	if !isGeneric {
		return name, nil
	}

	argTypes := make([]scope.Type, len(args))
	for i, a := range args {
		argTypes[i] = typeOf(a)
	}

	key := name
	for _, t := range argTypes {
		if t != nil {
			key += "$" + sanitizeMangle(t.String())
		}
	}
	if mangled, ok := e.instantiated[key]; ok {
		return mangled, nil
	}

	mangled := sanitizeMangle(key)
	e.instantiated[key] = mangled

	inst := instantiateGeneric(orig, mangled, argTypes)
	text, err := e.emitFunc(inst)
	if err != nil {
		return "", err
	}
	e.pendingDecls = append(e.pendingDecls, text)
	return mangled, nil
}

// instantiateGeneric substitutes every parameter (and the return type, if
// it names a generic parameter directly) with the concrete type bound at
// this call site, mirroring pkg/resolve.Instantiate's scope.Function-level
// substitution at the AST level the emitter walks. Nested generic
// positions (e.g. a parameter typed Array<T>) are left as declared: they
// never affect an AGA frame slot's byte width (every non-closure local is
// a uniform 8-byte slot, spec §4.7), so substituting them is cosmetic only
// and isn't attempted here.
func instantiateGeneric(orig FuncDecl, newName string, argTypes []scope.Type) FuncDecl {
	isGenericParam := map[string]bool{}
	for _, g := range orig.GenericParams {
		isGenericParam[g] = true
	}

	bound := map[string]string{}
	params := make([]TypedName, len(orig.Params))
	for i, p := range orig.Params {
		params[i] = p
		if isGenericParam[p.Type.Name] && i < len(argTypes) && argTypes[i] != nil {
			conc := argTypes[i].String()
			bound[p.Type.Name] = conc
			params[i].Type = TypeExpr{Name: conc, Pos: p.Type.Pos}
		}
	}

	ret := orig.ReturnType
	if conc, ok := bound[ret.Name]; ok {
		ret = TypeExpr{Name: conc, Pos: orig.ReturnType.Pos}
	}

	return FuncDecl{Name: newName, Params: params, ReturnType: ret, Body: orig.Body, Pos: orig.Pos}
}

// sanitizeMangle turns a type signature key into a valid AMM identifier
// fragment: '<', '>', ',' and spaces (the only punctuation scope.Type's
// String() can produce) become '_'.
func sanitizeMangle(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// typeOf reads back an expression's resolver-assigned ResolvedType,
// falling back to void for node kinds that don't carry one (there are
// none after a successful resolve, but this keeps the emitter total).
func typeOf(e Expression) scope.Type {
	switch v := e.(type) {
	case LiteralExpr:
		return v.ResolvedType
	case VarExpr:
		return v.ResolvedType
	case CallExpr:
		return v.ResolvedType
	case IndexExpr:
		return v.ResolvedType
	case ConditionalExpr:
		return v.ResolvedType
	case ClosureExpr:
		return v.ResolvedType
	default:
		return scope.Void
	}
}
