package resolve

import (
	"sort"
	"strings"

	"alan.dev/alanc/pkg/scope"
)

// instantiationCache memoizes generic instantiations keyed on the
// declaring Function and the concrete argument tuple bound to its generic
// parameters, so calling e.g. len<int64> twice never re-substitutes the
// same signature (spec §4.5: "generic instantiation is memoized per
// concrete argument tuple").
var instantiationCache = map[*scope.Function]map[string]*scope.Function{}

// Instantiate returns fn specialized to subst, substituting every
// scope.Param occurrence in its parameter and return types. Non-generic
// functions (empty GenericParams) are returned unchanged. The result is
// cached against (fn, subst) so repeated calls with the same concrete
// types share one *scope.Function.
func Instantiate(fn *scope.Function, subst map[string]scope.Type) *scope.Function {
	if len(fn.GenericParams) == 0 || len(subst) == 0 {
		return fn
	}

	key := substKey(fn.GenericParams, subst)
	if byKey, ok := instantiationCache[fn]; ok {
		if inst, ok := byKey[key]; ok {
			return inst
		}
	} else {
		instantiationCache[fn] = map[string]*scope.Function{}
	}

	params := make([]scope.Param2, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = scope.Param2{Name: p.Name, Type: scope.Substitute(p.Type, subst)}
	}
	inst := &scope.Function{
		Name:          fn.Name,
		GenericParams: nil, // fully concrete now
		Parameters:    params,
		ReturnType:    scope.Substitute(fn.ReturnType, subst),
		Body:          fn.Body,
		IsOpcode:      fn.IsOpcode,
		OpcodeName:    fn.OpcodeName,
		Purity:        fn.Purity,
		DeclScope:     fn.DeclScope,
		DeclIndex:     fn.DeclIndex,
	}
	instantiationCache[fn][key] = inst
	return inst
}

// substKey renders subst deterministically, visiting fn's generic parameter
// names in sorted order, so the same concrete binding always produces the same
// cache key regardless of map iteration order.
func substKey(genericParams []string, subst map[string]scope.Type) string {
	names := append([]string(nil), genericParams...)
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		ty, ok := subst[name]
		if !ok {
			continue
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(ty.String())
		b.WriteByte(';')
	}
	return b.String()
}
