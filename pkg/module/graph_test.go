package module_test

import (
	"os"
	"path/filepath"
	"testing"

	"alan.dev/alanc/pkg/module"
)

func TestGraphLoadsStdImport(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.ln")
	src := `
from @std/app import start, print, exit

on start {
	print("hi");
	exit(0);
}
`
	if err := os.WriteFile(entry, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	g := module.NewGraph()
	mod, err := g.Load(entry)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(g.Modules()) != 2 {
		t.Fatalf("expected 2 modules (entry + @std/app), got %d", len(g.Modules()))
	}
	deps := g.DependenciesOf(mod)
	if len(deps) != 1 || deps[0] != "@std/app" {
		t.Fatalf("expected a single dependency on @std/app, got %v", deps)
	}

	exports := g.ExportedNames(mod)
	if !exports["start"] || !exports["print"] || !exports["exit"] {
		t.Fatalf("expected start/print/exit to be visible via @std/app's exports, got %v", exports)
	}
}

func TestGraphDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.ln")
	bPath := filepath.Join(dir, "b.ln")

	if err := os.WriteFile(aPath, []byte(`import "./b";`+"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.WriteFile(bPath, []byte(`import "./a";`+"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	g := module.NewGraph()
	if _, err := g.Load(aPath); err == nil {
		t.Fatalf("expected an import cycle error")
	}
}

func TestGraphReentryIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	leafPath := filepath.Join(dir, "leaf.ln")
	aPath := filepath.Join(dir, "a.ln")
	bPath := filepath.Join(dir, "b.ln")
	mainPath := filepath.Join(dir, "main.ln")

	os.WriteFile(leafPath, []byte("export const Value: int64 = 1;\n"), 0o644)
	os.WriteFile(aPath, []byte(`import "./leaf";`+"\n"), 0o644)
	os.WriteFile(bPath, []byte(`import "./leaf";`+"\n"), 0o644)
	os.WriteFile(mainPath, []byte("import \"./a\";\nimport \"./b\";\n"), 0o644)

	g := module.NewGraph()
	if _, err := g.Load(mainPath); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	// leaf.ln must appear exactly once despite being imported by both a and b.
	seen := 0
	for _, m := range g.Modules() {
		if m.Path == leafPath {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("expected leaf module to be loaded exactly once, saw it %d times", seen)
	}
}
