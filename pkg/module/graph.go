// Package module implements the ModuleGraph (spec §4.3): it loads LN source
// files, follows their import statements to build a dependency graph, and
// answers which other modules a given module transitively depends on. The
// three import kinds (`@std/...`, relative paths, pre-staged external
// paths) are each backed by a different source, but once loaded every
// module is a plain *ln.Module and the graph treats them uniformly.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/ln"
)

// Graph holds every module loaded so far, keyed by its canonical path, plus
// the import edges between them.
type Graph struct {
	modules map[string]*ln.Module
	edges   map[string][]string // canonical path -> canonical paths it imports
	order   []string            // insertion order, for deterministic iteration
}

// NewGraph returns an empty module graph.
func NewGraph() *Graph {
	return &Graph{modules: map[string]*ln.Module{}, edges: map[string][]string{}}
}

// Modules returns every loaded module in the order it was first resolved.
func (g *Graph) Modules() []*ln.Module {
	out := make([]*ln.Module, 0, len(g.order))
	for _, path := range g.order {
		out = append(out, g.modules[path])
	}
	return out
}

// Get returns the already-loaded module at canonical path, if any.
func (g *Graph) Get(path string) (*ln.Module, bool) {
	m, ok := g.modules[path]
	return m, ok
}

// Load reads and parses the root module at entryPath and recursively
// resolves every import it (transitively) references, detecting cycles and
// re-entering already-loaded modules idempotently (spec §8 invariant:
// "loading the same module graph twice yields the same Exports sets").
func (g *Graph) Load(entryPath string) (*ln.Module, error) {
	canon, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, diag.Wrap(diag.ClassIO, diag.Position{File: entryPath}, err, "resolving path %s", entryPath)
	}
	return g.load(canon, nil)
}

// LoadText registers source under canon directly, without reading it from
// disk, then follows its imports the same way Load does. This is how
// pkg/pipeline's fromText entry points compile a source string that has no
// backing file (spec §4.9): the entry module comes from memory, but
// anything it imports (stdlib or sibling files) still loads normally.
func (g *Graph) LoadText(canon, source string) (*ln.Module, error) {
	if mod, ok := g.modules[canon]; ok {
		return mod, nil
	}
	mod, err := ln.ParseModule(canon, source)
	if err != nil {
		return nil, err
	}
	g.modules[canon] = mod
	g.order = append(g.order, canon)

	for _, imp := range mod.Imports {
		depPath, err := g.resolveImportPath(canon, imp)
		if err != nil {
			return nil, err
		}
		if _, err := g.load(depPath, []string{canon}); err != nil {
			return nil, err
		}
		g.edges[canon] = append(g.edges[canon], depPath)
	}
	return mod, nil
}

func (g *Graph) load(canon string, chain []string) (*ln.Module, error) {
	for _, seen := range chain {
		if seen == canon {
			return nil, diag.New(diag.ClassImport, diag.Position{File: canon}, "import cycle detected: %s", strings.Join(append(chain, canon), " -> "))
		}
	}
	if mod, ok := g.modules[canon]; ok {
		return mod, nil
	}

	source, err := readModuleSource(canon)
	if err != nil {
		return nil, err
	}
	mod, err := ln.ParseModule(canon, source)
	if err != nil {
		return nil, err
	}

	g.modules[canon] = mod
	g.order = append(g.order, canon)

	nextChain := append(append([]string{}, chain...), canon)
	for _, imp := range mod.Imports {
		depPath, err := g.resolveImportPath(canon, imp)
		if err != nil {
			return nil, err
		}
		if _, err := g.load(depPath, nextChain); err != nil {
			return nil, err
		}
		g.edges[canon] = append(g.edges[canon], depPath)
	}

	return mod, nil
}

// resolveImportPath turns an Import into the canonical path load() keys
// modules by, dispatching on its Kind.
func (g *Graph) resolveImportPath(fromPath string, imp ln.Import) (string, error) {
	switch imp.Kind {
	case ln.ImportStd:
		name := strings.TrimPrefix(imp.Path, "@std/")
		canon := stdModuleCanonicalPath(name)
		if _, ok := stdlibSources[name]; !ok {
			return "", diag.New(diag.ClassImport, imp.Pos, "unknown standard module %q", imp.Path)
		}
		return canon, nil
	case ln.ImportRelative:
		dir := filepath.Dir(fromPath)
		resolved := filepath.Join(dir, imp.Path)
		if !strings.HasSuffix(resolved, ".ln") {
			resolved += ".ln"
		}
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return "", diag.Wrap(diag.ClassImport, imp.Pos, err, "resolving relative import %q", imp.Path)
		}
		return abs, nil
	default: // ln.ImportStaged: a pre-staged external import, resolved against the working directory
		abs, err := filepath.Abs(imp.Path)
		if err != nil {
			return "", diag.Wrap(diag.ClassImport, imp.Pos, err, "resolving staged import %q", imp.Path)
		}
		return abs, nil
	}
}

const stdModulePrefix = "@std/"

func stdModuleCanonicalPath(name string) string { return stdModulePrefix + name }

func readModuleSource(canon string) (string, error) {
	if strings.HasPrefix(canon, stdModulePrefix) {
		name := strings.TrimPrefix(canon, stdModulePrefix)
		src, ok := stdlibSources[name]
		if !ok {
			return "", diag.New(diag.ClassImport, diag.Position{File: canon}, "unknown standard module %q", canon)
		}
		return src, nil
	}
	buf, err := os.ReadFile(canon)
	if err != nil {
		return "", diag.Wrap(diag.ClassIO, diag.Position{File: canon}, err, "reading module %s", canon)
	}
	return string(buf), nil
}

// ExportedNames returns the union of every name mod and the modules it
// directly imports mark `export`; exports of modules further down the
// import chain are not included.
func (g *Graph) ExportedNames(mod *ln.Module) map[string]bool {
	out := map[string]bool{}
	for name := range mod.Exports {
		out[name] = true
	}
	for _, dep := range g.edges[mod.Path] {
		if depMod, ok := g.modules[dep]; ok {
			for name := range depMod.Exports {
				out[name] = true
			}
		}
	}
	return out
}

// DependenciesOf returns the canonical paths mod directly imports, in
// source order.
func (g *Graph) DependenciesOf(mod *ln.Module) []string {
	return append([]string{}, g.edges[mod.Path]...)
}

// String renders the graph as a human-readable edge list, useful for
// `-dump-graph`-style CLI diagnostics.
func (g *Graph) String() string {
	var b strings.Builder
	for _, path := range g.order {
		fmt.Fprintf(&b, "%s\n", path)
		for _, dep := range g.edges[path] {
			fmt.Fprintf(&b, "  -> %s\n", dep)
		}
	}
	return b.String()
}
