package ln

import (
	"strconv"
	"strings"

	"alan.dev/alanc/internal/diag"
	pk "alan.dev/alanc/pkg/parsekit"
)

// parseImport parses either a bare `import <path>;` or a `from <path>
// import a, b, c` form, whose trailing `;` is optional. Path classification (std/relative/staged) mirrors
// the ModuleGraph's own classification so the two never disagree (spec
// §4.3).
func parseImport(cur pk.Cursor) (Import, pk.Cursor, error) {
	startPos := cur.Position()

	if _, next, err := kw("from")(cur); err == nil {
		path, next2, err := parseImportPath(next)
		if err != nil {
			return Import{}, cur, err
		}
		_, next3, err := kw("import")(next2)
		if err != nil {
			return Import{}, cur, diag.New(diag.ClassParse, next2.Position(), "expected 'import' after 'from %s'", path)
		}
		names, next4, err := parseImportNameList(next3)
		if err != nil {
			return Import{}, cur, err
		}
		return Import{Kind: classifyImportPath(path), Path: path, Names: names, Pos: startPos}, requireSemiOptional(next4), nil
	}

	_, next, err := kw("import")(cur)
	if err != nil {
		return Import{}, cur, err
	}
	path, next2, err := parseImportPath(next)
	if err != nil {
		return Import{}, cur, err
	}
	_, next3, err := pSemi(next2)
	if err != nil {
		return Import{}, cur, diag.New(diag.ClassParse, next2.Position(), "expected ';' terminating import")
	}
	return Import{Kind: classifyImportPath(path), Path: path, Pos: startPos}, next3, nil
}

// parseImportPath accepts either a string-literal path or a bare `@std/...`
// / relative path spelled out of identifiers, dots and slashes.
func parseImportPath(cur pk.Cursor) (string, pk.Cursor, error) {
	if n, next, err := pString(cur); err == nil {
		return unquoteStringLexeme(n.Text), next, nil
	}
	if n, next, err := pBarePath(cur); err == nil {
		return n.Text, next, nil
	}
	return "", cur, diag.New(diag.ClassParse, cur.Position(), "expected an import path")
}

func parseImportNameList(cur pk.Cursor) ([]string, pk.Cursor, error) {
	var names []string
	first, next, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	names = append(names, first.Text)
	cur = next
	for {
		_, next2, err := pComma(cur)
		if err != nil {
			break
		}
		n, next3, err := pIdent(next2)
		if err != nil {
			return nil, cur, err
		}
		names = append(names, n.Text)
		cur = next3
	}
	return names, cur, nil
}

func classifyImportPath(path string) ImportKind {
	switch {
	case strings.HasPrefix(path, "@std/"):
		return ImportStd
	case strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../"):
		return ImportRelative
	default:
		return ImportStaged
	}
}

// parseGenericParamList parses an optional `<T, U>` parameter list on a
// type or function declaration.
func parseGenericParamList(cur pk.Cursor) ([]string, pk.Cursor, error) {
	if _, next, err := pLAngle(cur); err == nil {
		var params []string
		first, next2, err := pIdent(next)
		if err != nil {
			return nil, cur, err
		}
		params = append(params, first.Text)
		cur = next2
		for {
			_, next3, err := pComma(cur)
			if err != nil {
				break
			}
			n, next4, err := pIdent(next3)
			if err != nil {
				return nil, cur, err
			}
			params = append(params, n.Text)
			cur = next4
		}
		_, next5, err := pRAngle(cur)
		if err != nil {
			return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected '>' closing generic parameter list")
		}
		return params, next5, nil
	}
	return nil, cur, nil
}

// parseTypeDecl parses `type Name<T> = TypeExpr;` (alias or generic
// application) and `type Name<T> { field: Type, ... }` (product, spec
// §4.2's product-declaration form).
func parseTypeDecl(cur pk.Cursor, exported bool, startPos diag.Position) (Decl, pk.Cursor, error) {
	_, cur, err := kw("type")(cur)
	if err != nil {
		return nil, cur, err
	}
	nameNode, cur, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	generics, cur, err := parseGenericParamList(cur)
	if err != nil {
		return nil, cur, err
	}

	if _, _, err := pLBrace(cur); err == nil {
		fields, next2, err := parseTypedNameList(cur, pLBrace, pRBrace)
		if err != nil {
			return nil, cur, err
		}
		body := TypeExpr{Name: nameNode.Text, Pos: nameNode.Pos}
		for _, f := range fields {
			body.Args = append(body.Args, f.Type)
		}
		decl := TypeDecl{Name: nameNode.Text, GenericParams: generics, Body: body, Exported: exported, Pos: startPos}
		return decl, requireSemiOptional(next2), nil
	}

	_, cur, err = pAssign(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected '=' or '{' in type declaration %q", nameNode.Text)
	}
	underlying, cur, err := parseTypeExpr(cur)
	if err != nil {
		return nil, cur, err
	}
	_, cur, err = pSemi(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected ';' terminating type declaration")
	}
	return TypeDecl{Name: nameNode.Text, GenericParams: generics, Body: underlying, Exported: exported, Pos: startPos}, cur, nil
}

// requireSemiOptional consumes a trailing ';' if present; product-type
// declarations read fine either way, so we don't hard-fail without one.
func requireSemiOptional(cur pk.Cursor) pk.Cursor {
	if _, next, err := pSemi(cur); err == nil {
		return next
	}
	return cur
}

// parseInterfaceDecl parses `interface Name { method(Args): Ret; field: Type; ... }`
// (spec §4.4).
func parseInterfaceDecl(cur pk.Cursor, exported bool, startPos diag.Position) (Decl, pk.Cursor, error) {
	_, cur, err := kw("interface")(cur)
	if err != nil {
		return nil, cur, err
	}
	nameNode, cur, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	_, cur, err = pLBrace(cur)
	if err != nil {
		return nil, cur, err
	}

	var methods []InterfaceMethod
	var fields []TypedName
	for {
		if _, next, err := pRBrace(cur); err == nil {
			return InterfaceDecl{Name: nameNode.Text, Methods: methods, Fields: fields, Exported: exported, Pos: startPos}, next, nil
		}

		memberName, next, err := pIdent(cur)
		if err != nil {
			return nil, cur, err
		}
		if _, next2, err := pLParen(next); err == nil {
			params, next3, err := parseTypeArgListOptional(next2)
			if err != nil {
				return nil, cur, err
			}
			afterParen, err := expectRParen(next3)
			if err != nil {
				return nil, cur, err
			}
			var ret TypeExpr
			if _, next4, err := pColon(afterParen); err == nil {
				r, next5, err := parseTypeExpr(next4)
				if err != nil {
					return nil, cur, err
				}
				ret = r
				afterParen = next5
			}
			methods = append(methods, InterfaceMethod{Name: memberName.Text, Params: params, ReturnType: ret})
			cur = requireSemiOptional(afterParen)
			continue
		}

		_, next2, err := pColon(next)
		if err != nil {
			return nil, cur, diag.New(diag.ClassParse, next.Position(), "expected '(' or ':' after interface member %q", memberName.Text)
		}
		fieldType, next3, err := parseTypeExpr(next2)
		if err != nil {
			return nil, cur, err
		}
		fields = append(fields, TypedName{Name: memberName.Text, Type: fieldType})
		cur = requireSemiOptional(next3)
	}
}

func parseTypeArgListOptional(cur pk.Cursor) ([]TypeExpr, pk.Cursor, error) {
	if _, _, err := pRParen(cur); err == nil {
		return nil, cur, nil
	}
	return parseTypeArgList(cur)
}

// parseOperatorDecl parses `operator <symbol> <prefix|infix> <precedence> = funcName;`
// (spec §4.5 rule 4: operators are declared mappings onto an ordinary
// function, never built-in syntax).
func parseOperatorDecl(cur pk.Cursor, startPos diag.Position) (Decl, pk.Cursor, error) {
	_, cur, err := kw("operator")(cur)
	if err != nil {
		return nil, cur, err
	}
	symNode, cur, err := pOpSymbol(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected an operator symbol")
	}

	fixity := "infix"
	if _, next, err := kw("prefix")(cur); err == nil {
		fixity = "prefix"
		cur = next
	} else if _, next, err := kw("infix")(cur); err == nil {
		fixity = "infix"
		cur = next
	}

	precNode, cur, err := pInt(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected a precedence integer")
	}
	prec, convErr := strconv.Atoi(precNode.Text)
	if convErr != nil {
		return nil, cur, diag.Wrap(diag.ClassParse, precNode.Pos, convErr, "invalid precedence literal %q", precNode.Text)
	}

	_, cur, err = pAssign(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected '=' in operator declaration")
	}
	fnNode, cur, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	_, cur, err = pSemi(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected ';' terminating operator declaration")
	}

	return OperatorDecl{Symbol: symNode.Text, Fixity: fixity, Precedence: prec, FuncName: fnNode.Text, Pos: startPos}, cur, nil
}

// parseEventDecl parses `event Name: Type;` or `event Name;` (a payload-less event).
func parseEventDecl(cur pk.Cursor, exported bool, startPos diag.Position) (Decl, pk.Cursor, error) {
	_, cur, err := kw("event")(cur)
	if err != nil {
		return nil, cur, err
	}
	nameNode, cur, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	var ty TypeExpr
	if _, next, err := pColon(cur); err == nil {
		t, next2, err := parseTypeExpr(next)
		if err != nil {
			return nil, cur, err
		}
		ty = t
		cur = next2
	}
	_, cur, err = pSemi(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected ';' terminating event declaration")
	}
	return EventDecl{Name: nameNode.Text, Type: ty, Exported: exported, Pos: startPos}, cur, nil
}

// parseConstDecl parses a module-level `const name: Type = expr;`.
func parseConstDecl(cur pk.Cursor, exported bool, startPos diag.Position) (Decl, pk.Cursor, error) {
	_, cur, err := kw("const")(cur)
	if err != nil {
		return nil, cur, err
	}
	nameNode, cur, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	var ty TypeExpr
	if _, next, err := pColon(cur); err == nil {
		t, next2, err := parseTypeExpr(next)
		if err != nil {
			return nil, cur, err
		}
		ty = t
		cur = next2
	}
	_, cur, err = pAssign(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected '=' in const declaration %q", nameNode.Text)
	}
	value, cur, err := parseExpr(cur)
	if err != nil {
		return nil, cur, err
	}
	_, cur, err = pSemi(cur)
	if err != nil {
		return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected ';' terminating const declaration")
	}
	return ConstDecl{Name: nameNode.Text, Type: ty, Value: value, Exported: exported, Pos: startPos}, cur, nil
}

// parseFuncDecl parses `fn name<T>(params): RetType { body }` and the arrow
// sugar `fn name(params) => expr;`.
func parseFuncDecl(cur pk.Cursor, exported bool, startPos diag.Position) (Decl, pk.Cursor, error) {
	_, cur, err := kw("fn")(cur)
	if err != nil {
		return nil, cur, err
	}
	nameNode, cur, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}
	generics, cur, err := parseGenericParamList(cur)
	if err != nil {
		return nil, cur, err
	}
	params, cur, err := parseTypedNameList(cur, pLParen, pRParen)
	if err != nil {
		return nil, cur, err
	}
	var ret TypeExpr
	if _, next, err := pColon(cur); err == nil {
		t, next2, err := parseTypeExpr(next)
		if err != nil {
			return nil, cur, err
		}
		ret = t
		cur = next2
	}

	if _, next, err := pFatArrow(cur); err == nil {
		e, next2, err := parseExpr(next)
		if err != nil {
			return nil, cur, err
		}
		_, next3, err := pSemi(next2)
		if err != nil {
			return nil, cur, diag.New(diag.ClassParse, next2.Position(), "expected ';' terminating arrow function %q", nameNode.Text)
		}
		return FuncDecl{
			Name: nameNode.Text, GenericParams: generics, Params: params, ReturnType: ret,
			Body: []Statement{ReturnStmt{Value: e, Pos: startPos}}, IsArrowForm: true,
			Exported: exported, Pos: startPos,
		}, next3, nil
	}

	// A bare ';' with no block marks a native/extern declaration: the
	// standard library's functions are implemented outside LN (spec
	// §4.3), so they're declared with a signature only.
	if _, next, err := pSemi(cur); err == nil {
		return FuncDecl{
			Name: nameNode.Text, GenericParams: generics, Params: params, ReturnType: ret,
			IsExtern: true, Exported: exported, Pos: startPos,
		}, next, nil
	}

	body, cur, err := parseBlock(cur)
	if err != nil {
		return nil, cur, err
	}
	return FuncDecl{
		Name: nameNode.Text, GenericParams: generics, Params: params, ReturnType: ret,
		Body: body, Exported: exported, Pos: startPos,
	}, cur, nil
}

// parseHandler parses `on EventName(arg: Type) { body }` or the argless
// `on EventName { body }`.
func parseHandler(cur pk.Cursor, startPos diag.Position) (Decl, pk.Cursor, error) {
	_, cur, err := kw("on")(cur)
	if err != nil {
		return nil, cur, err
	}
	eventNode, cur, err := pIdent(cur)
	if err != nil {
		return nil, cur, err
	}

	var argName string
	var argType TypeExpr
	if _, next, err := pLParen(cur); err == nil {
		tn, next2, err := parseTypedName(next)
		if err != nil {
			return nil, cur, err
		}
		afterParen, err := expectRParen(next2)
		if err != nil {
			return nil, cur, err
		}
		argName, argType = tn.Name, tn.Type
		cur = afterParen
	}

	body, cur, err := parseBlock(cur)
	if err != nil {
		return nil, cur, err
	}
	return Handler{Event: eventNode.Text, ArgName: argName, ArgType: argType, Body: body, Pos: startPos}, cur, nil
}

// parseDecl dispatches on the leading keyword to one of the declaration
// parsers above, consuming a leading `export` marker first.
func parseDecl(cur pk.Cursor) (Decl, pk.Cursor, error) {
	startPos := cur.Position()
	exported := false
	if _, next, err := kw("export")(cur); err == nil {
		exported = true
		cur = next
	}

	if _, _, err := kw("type")(cur); err == nil {
		return parseTypeDecl(cur, exported, startPos)
	}
	if _, _, err := kw("interface")(cur); err == nil {
		return parseInterfaceDecl(cur, exported, startPos)
	}
	if _, _, err := kw("operator")(cur); err == nil {
		return parseOperatorDecl(cur, startPos)
	}
	if _, _, err := kw("event")(cur); err == nil {
		return parseEventDecl(cur, exported, startPos)
	}
	if _, _, err := kw("const")(cur); err == nil {
		return parseConstDecl(cur, exported, startPos)
	}
	if _, _, err := kw("fn")(cur); err == nil {
		return parseFuncDecl(cur, exported, startPos)
	}
	if _, _, err := kw("on")(cur); err == nil {
		if exported {
			return nil, cur, diag.New(diag.ClassParse, startPos, "'export' is not meaningful on a handler")
		}
		return parseHandler(cur, startPos)
	}

	return nil, cur, diag.New(diag.ClassParse, cur.Position(), "expected a declaration (type/interface/operator/event/const/fn/on)")
}
