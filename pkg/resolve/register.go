package resolve

import (
	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/ln"
	"alan.dev/alanc/pkg/scope"
)

// registerDecls walks mod's top-level declarations in source order and
// inserts one scope.Entity per named declaration (functions accumulate
// under the same name, everything else forbids redeclaration — spec §4.4).
func registerDecls(mod *ln.Module, s *scope.Scope) error {
	// Two passes: types/interfaces first, so a function signature that
	// refers to a type declared later in the same file still resolves.
	for _, d := range mod.Decls {
		switch v := d.(type) {
		case ln.TypeDecl:
			if err := registerTypeDecl(v, s); err != nil {
				return err
			}
		case ln.InterfaceDecl:
			if err := registerInterfaceDecl(v, s); err != nil {
				return err
			}
		case ln.EventDecl:
			ty, err := typeExprToType(v.Type, s)
			if err != nil {
				return err
			}
			if err := s.Insert(v.Name, &scope.Entity{Kind: scope.KindEvent, Event: &scope.EventDecl{Name: v.Name, Type: ty}, DeclaredAt: v.Pos}, v.Pos); err != nil {
				return err
			}
		}
	}

	for _, d := range mod.Decls {
		switch v := d.(type) {
		case ln.OperatorDecl:
			fixity := scope.Infix
			if v.Fixity == "prefix" {
				fixity = scope.Prefix
			}
			s.AddOperator(scope.Operator{Symbol: v.Symbol, Fixity: fixity, Precedence: v.Precedence, FuncName: v.FuncName})
		case ln.ConstDecl:
			if err := registerConstDecl(v, s); err != nil {
				return err
			}
		case ln.FuncDecl:
			if err := registerFuncDecl(v, s); err != nil {
				return err
			}
		}
	}

	return nil
}

func registerTypeDecl(v ln.TypeDecl, s *scope.Scope) error {
	decl := &scope.ProductDecl{Name: v.Name, GenericParams: v.GenericParams}

	// A TypeDecl with Body.Args populated and an empty Name-collision with
	// the decl's own name (see pkg/ln/parse_decl.go's product-form parse)
	// is a product; otherwise it's an alias to Body resolved as a type.
	if v.Body.Name == v.Name && len(v.Body.Args) > 0 {
		fields := make([]scope.Field, 0, len(v.Body.Args))
		for i, argTy := range v.Body.Args {
			ty, err := typeExprToType(argTy, s)
			if err != nil {
				return err
			}
			fields = append(fields, scope.Field{Name: fieldNameForIndex(i), Type: ty})
		}
		entity := &scope.Entity{Kind: scope.KindType, Type: scope.Product{Decl: decl, Fields: fields}, DeclaredAt: v.Pos}
		return s.Insert(v.Name, entity, v.Pos)
	}

	underlying, err := typeExprToType(v.Body, s)
	if err != nil {
		return err
	}
	entity := &scope.Entity{Kind: scope.KindType, Type: scope.Alias{Name: v.Name, Underlying: underlying}, DeclaredAt: v.Pos}
	return s.Insert(v.Name, entity, v.Pos)
}

// fieldNameForIndex is a placeholder until pkg/ln's product-declaration
// parse preserves field names on TypeDecl.Body directly (today it only
// keeps their types, see parse_decl.go's parseTypeDecl); field identity for
// structural equality (scope.Equal on Product is nominal via Decl) doesn't
// depend on these names, but diagnostics reading "field0" instead of the
// source name are a known rough edge.
func fieldNameForIndex(i int) string {
	names := []string{"field0", "field1", "field2", "field3", "field4", "field5", "field6", "field7"}
	if i < len(names) {
		return names[i]
	}
	return "field_n"
}

func registerInterfaceDecl(v ln.InterfaceDecl, s *scope.Scope) error {
	methods := make([]scope.MethodSig, 0, len(v.Methods))
	for _, m := range v.Methods {
		params := make([]scope.Type, 0, len(m.Params))
		for _, p := range m.Params {
			ty, err := typeExprToType(p, s)
			if err != nil {
				return err
			}
			params = append(params, ty)
		}
		ret, err := typeExprToType(m.ReturnType, s)
		if err != nil {
			return err
		}
		methods = append(methods, scope.MethodSig{Name: m.Name, Params: params, ReturnType: ret})
	}
	fields := make([]scope.Field, 0, len(v.Fields))
	for _, f := range v.Fields {
		ty, err := typeExprToType(f.Type, s)
		if err != nil {
			return err
		}
		fields = append(fields, scope.Field{Name: f.Name, Type: ty})
	}
	iface := scope.Interface{Name: v.Name, Methods: methods, Fields: fields}
	return s.Insert(v.Name, &scope.Entity{Kind: scope.KindInterface, Interface: &iface, DeclaredAt: v.Pos}, v.Pos)
}

func registerConstDecl(v ln.ConstDecl, s *scope.Scope) error {
	var ty scope.Type
	if v.Type.Name != "" {
		t, err := typeExprToType(v.Type, s)
		if err != nil {
			return err
		}
		ty = t
	} else {
		t, _, err := Infer(s, v.Value)
		if err != nil {
			return err
		}
		ty = t
	}
	return s.Insert(v.Name, &scope.Entity{Kind: scope.KindConstant, Type: ty, DeclaredAt: v.Pos}, v.Pos)
}

func registerFuncDecl(v ln.FuncDecl, s *scope.Scope) error {
	params := make([]scope.Param2, 0, len(v.Params))
	for _, p := range v.Params {
		ty, err := typeExprToTypeWithGenerics(p.Type, s, v.GenericParams)
		if err != nil {
			return err
		}
		params = append(params, scope.Param2{Name: p.Name, Type: ty})
	}
	ret, err := typeExprToTypeWithGenerics(v.ReturnType, s, v.GenericParams)
	if err != nil {
		return err
	}
	fn := &scope.Function{
		Name: v.Name, GenericParams: v.GenericParams, Parameters: params, ReturnType: ret,
		Body: v.Body, Purity: purityOf(v), DeclScope: s,
	}
	entity := &scope.Entity{Kind: scope.KindFunctionSet, Functions: []*scope.Function{fn}, DeclaredAt: v.Pos}
	return s.Insert(v.Name, entity, v.Pos)
}

// purityOf derives a function's purity from its own declaration alone: an
// extern function is IO, a function whose body has a top-level EmitStmt is
// IO, and every other function is Pure. Calls in the body are not examined,
// an emit nested inside a block or closure is not seen, and Impure is never
// assigned.
func purityOf(v ln.FuncDecl) scope.Purity {
	if v.IsExtern {
		return scope.IO
	}
	for _, stmt := range v.Body {
		if _, ok := stmt.(ln.EmitStmt); ok {
			return scope.IO
		}
	}
	return scope.Pure
}

// typeExprToType resolves a TypeExpr against s, recognizing built-in
// generics (Array/Result/Maybe/Either), primitives, and previously
// registered Product/Interface/Alias declarations.
func typeExprToType(te ln.TypeExpr, s *scope.Scope) (scope.Type, error) {
	return typeExprToTypeWithGenerics(te, s, nil)
}

func typeExprToTypeWithGenerics(te ln.TypeExpr, s *scope.Scope, generics []string) (scope.Type, error) {
	if te.Name == "" {
		return scope.Void, nil
	}
	if prim, ok := scope.LookupPrimitive(te.Name); ok {
		return prim, nil
	}
	for _, g := range generics {
		if g == te.Name {
			return scope.Param{Name: te.Name}, nil
		}
	}
	if scope.IsBuiltinGeneric(te.Name) {
		args := make([]scope.Type, 0, len(te.Args))
		for _, a := range te.Args {
			ty, err := typeExprToTypeWithGenerics(a, s, generics)
			if err != nil {
				return nil, err
			}
			args = append(args, ty)
		}
		return scope.Generic{Name: te.Name, Args: args}, nil
	}
	entity, _, ok := s.Get(te.Name)
	if !ok {
		return nil, diag.New(diag.ClassType, te.Pos, "undefined type %q", te.Name)
	}
	switch entity.Kind {
	case scope.KindType:
		return entity.Type, nil
	case scope.KindInterface:
		return *entity.Interface, nil
	default:
		return nil, diag.New(diag.ClassType, te.Pos, "%q is not a type", te.Name)
	}
}
