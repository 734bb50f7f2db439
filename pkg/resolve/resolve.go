// Package resolve implements the Resolver (spec §4.4): it builds the
// lexical scope chain for a module graph, desugars operator chains and
// method-call sugar, performs bottom-up type inference with top-down
// hints, and resolves multiple-dispatch call sites and generic
// instantiations against pkg/scope's symbol tables.
package resolve

import (
	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/ln"
	"alan.dev/alanc/pkg/module"
	"alan.dev/alanc/pkg/scope"
)

// Result is everything downstream stages (the AmmEmitter) need out of
// resolving one module: its scope (for later symbol lookups during
// lowering) and the module's declarations with every OperatorChainExpr
// rewritten into nested CallExprs.
type Result struct {
	Scope   *scope.Scope
	Module  *ln.Module
	Handled map[string]*scope.Function // exported function name -> resolved Function, for cross-module lookups
}

// Root returns the global scope every module scope chains up to: built-in
// primitive types are implicitly visible everywhere and never redeclared
// per module (spec §4.4, "root" level of the lexical chain).
func Root() *scope.Scope {
	root := scope.NewScope("root", nil)
	for _, name := range []string{"int8", "int16", "int32", "int64", "float32", "float64", "bool", "string", "void"} {
		prim, _ := scope.LookupPrimitive(name)
		_ = root.Insert(name, &scope.Entity{Kind: scope.KindType, Type: prim}, diag.Position{})
	}
	return root
}

// Module resolves one already-loaded module: builds its scope (importing
// every name its imports expose), registers every top-level declaration,
// desugars operator chains throughout every function/handler body, and
// returns the result.
func Module(g *module.Graph, mod *ln.Module, root *scope.Scope) (*Result, error) {
	moduleScope := scope.NewScope(mod.Path, root)

	if err := importNames(g, mod, moduleScope); err != nil {
		return nil, err
	}
	if err := registerDecls(mod, moduleScope); err != nil {
		return nil, err
	}
	if err := desugarDecls(mod, moduleScope); err != nil {
		return nil, err
	}

	handled := map[string]*scope.Function{}
	for name := range mod.Exports {
		if entity, _, ok := moduleScope.Get(name); ok && entity.Kind == scope.KindFunctionSet && len(entity.Functions) > 0 {
			handled[name] = entity.Functions[0]
		}
	}

	return &Result{Scope: moduleScope, Module: mod, Handled: handled}, nil
}

// importNames binds every name a `from <dep> import a, b, c` (or bare
// `import <dep>`, which binds nothing directly but still makes the
// dependency's module-qualified names resolvable once pkg/resolve grows
// qualified lookups) statement references into the importing module's
// scope, failing if the dependency never exports that name (spec §4.3).
func importNames(g *module.Graph, mod *ln.Module, into *scope.Scope) error {
	for _, imp := range mod.Imports {
		if len(imp.Names) == 0 {
			continue
		}
		depPath, err := canonicalDepPath(g, mod, imp)
		if err != nil {
			return err
		}
		dep, ok := g.Get(depPath)
		if !ok {
			return diag.New(diag.ClassImport, imp.Pos, "import of unresolved module %q", imp.Path)
		}
		for _, name := range imp.Names {
			if !dep.Exports[name] {
				return diag.New(diag.ClassImport, imp.Pos, "module %q does not export %q", imp.Path, name)
			}
			entity, depScope, ok := lookupInModule(dep, name)
			if !ok {
				return diag.New(diag.ClassImport, imp.Pos, "module %q exports %q but it has no resolvable declaration", imp.Path, name)
			}
			_ = depScope
			if err := into.Insert(name, entity, imp.Pos); err != nil {
				return err
			}
		}
	}
	return nil
}

// canonicalDepPath mirrors module.Graph's own import-path classification so
// the resolver looks dependencies up under the same key they were loaded
// with.
func canonicalDepPath(g *module.Graph, mod *ln.Module, imp ln.Import) (string, error) {
	for _, dep := range g.DependenciesOf(mod) {
		if depMod, ok := g.Get(dep); ok && moduleMatchesImport(depMod, imp) {
			return dep, nil
		}
	}
	return "", diag.New(diag.ClassImport, imp.Pos, "could not match import %q to a loaded module", imp.Path)
}

func moduleMatchesImport(depMod *ln.Module, imp ln.Import) bool {
	if imp.Kind == ln.ImportStd {
		return depMod.Path == "@std/"+trimStdPrefix(imp.Path)
	}
	return true // relative/staged paths are resolved 1:1 by module.Graph already
}

func trimStdPrefix(path string) string {
	if len(path) > 5 && path[:5] == "@std/" {
		return path[5:]
	}
	return path
}

// lookupInModule re-derives a *scope.Entity for name from dep's own
// declarations. Each module is resolved independently (the resolver
// doesn't keep every module's scope around at once), so re-deriving the
// entity shape here is cheaper than threading a map of every module's
// fully-built scope through the whole pipeline.
func lookupInModule(dep *ln.Module, name string) (*scope.Entity, *scope.Scope, bool) {
	tmp := scope.NewScope(dep.Path, nil)
	if err := registerDecls(dep, tmp); err != nil {
		return nil, nil, false
	}
	entity, s, ok := tmp.Get(name)
	return entity, s, ok
}
