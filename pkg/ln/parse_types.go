package ln

import (
	"alan.dev/alanc/internal/diag"
	pk "alan.dev/alanc/pkg/parsekit"
)

// parseTypeExpr parses a type reference: a bare name, optionally followed
// by `<Arg, Arg, ...>` generic arguments (spec §4.2's type-declaration
// grammar; `<` is reused from the operator-symbol charset so we match it
// explicitly rather than through pOpSymbol).
func parseTypeExpr(cur pk.Cursor) (TypeExpr, pk.Cursor, error) {
	nameNode, next, err := pIdent(cur)
	if err != nil {
		return TypeExpr{}, cur, err
	}
	te := TypeExpr{Name: nameNode.Text, Pos: nameNode.Pos}

	if _, afterAngle, err := pLAngle(next); err == nil {
		args, afterArgs, err := parseTypeArgList(afterAngle)
		if err != nil {
			return TypeExpr{}, cur, err
		}
		if _, afterClose, err := pRAngle(afterArgs); err == nil {
			te.Args = args
			return te, afterClose, nil
		}
		return TypeExpr{}, cur, diag.New(diag.ClassParse, afterArgs.Position(), "expected '>' closing generic argument list for %q", te.Name)
	}

	return te, next, nil
}

func parseTypeArgList(cur pk.Cursor) ([]TypeExpr, pk.Cursor, error) {
	var args []TypeExpr

	first, next, err := parseTypeExpr(cur)
	if err != nil {
		return nil, cur, err
	}
	args = append(args, first)
	cur = next

	for {
		_, afterComma, err := pComma(cur)
		if err != nil {
			break
		}
		arg, afterArg, err := parseTypeExpr(afterComma)
		if err != nil {
			return nil, cur, err
		}
		args = append(args, arg)
		cur = afterArg
	}

	return args, cur, nil
}

// parseTypedName parses `name: Type`, used for parameters, product fields
// and interface-required fields.
func parseTypedName(cur pk.Cursor) (TypedName, pk.Cursor, error) {
	nameNode, next, err := pIdent(cur)
	if err != nil {
		return TypedName{}, cur, err
	}
	if _, next2, err := pColon(next); err == nil {
		ty, next3, err := parseTypeExpr(next2)
		if err != nil {
			return TypedName{}, cur, err
		}
		return TypedName{Name: nameNode.Text, Type: ty}, next3, nil
	}
	return TypedName{}, cur, diag.New(diag.ClassParse, next.Position(), "expected ':' after parameter name %q", nameNode.Text)
}

func parseTypedNameList(cur pk.Cursor, open, close pk.Combinator) ([]TypedName, pk.Cursor, error) {
	var names []TypedName

	_, cur, err := open(cur)
	if err != nil {
		return nil, cur, err
	}

	if _, afterClose, err := close(cur); err == nil {
		return names, afterClose, nil
	}

	first, next, err := parseTypedName(cur)
	if err != nil {
		return nil, cur, err
	}
	names = append(names, first)
	cur = next

	for {
		_, afterComma, err := pComma(cur)
		if err != nil {
			break
		}
		if _, _, err := close(afterComma); err == nil {
			cur = afterComma
			break
		}
		tn, afterTn, err := parseTypedName(afterComma)
		if err != nil {
			return nil, cur, err
		}
		names = append(names, tn)
		cur = afterTn
	}

	_, cur, err = close(cur)
	if err != nil {
		return nil, cur, err
	}
	return names, cur, nil
}
