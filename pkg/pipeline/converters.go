package pipeline

import (
	"os"
	"path/filepath"

	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/agc"
	"alan.dev/alanc/pkg/aga"
	"alan.dev/alanc/pkg/amm"
	"alan.dev/alanc/pkg/ln"
	"alan.dev/alanc/pkg/module"
	"alan.dev/alanc/pkg/resolve"
)

// Default returns the Registry wired with the compiler core's three stage
// edges (spec §4.9's data-flow diagram: LN -> AMM -> AGA -> AGC).
func Default() *Registry {
	r := NewRegistry()
	r.Register("ln", "amm", lnToAmm{})
	r.Register("amm", "aga", ammToAga{})
	r.Register("aga", "agc", agaToAgc{})
	return r
}

func readFile(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", diag.Wrap(diag.ClassIO, diag.Position{File: path}, err, "reading %s", path)
	}
	return string(buf), nil
}

// lnToAmm drives ModuleGraph + Resolver + AmmEmitter over one LN source:
// the full front half of the compiler (spec §4.3-§4.6).
type lnToAmm struct{}

func (lnToAmm) FromText(name, source string) ([]byte, error) {
	canon, err := filepath.Abs(name)
	if err != nil {
		return nil, diag.Wrap(diag.ClassIO, diag.Position{File: name}, err, "resolving path %s", name)
	}
	g := module.NewGraph()
	mod, err := g.LoadText(canon, source)
	if err != nil {
		return nil, err
	}
	res, err := resolve.Module(g, mod, resolve.Root())
	if err != nil {
		return nil, err
	}
	text, err := ln.EmitAMM(res.Module, res.Scope)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (c lnToAmm) FromFile(path string) ([]byte, error) {
	g := module.NewGraph()
	mod, err := g.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := resolve.Module(g, mod, resolve.Root())
	if err != nil {
		return nil, err
	}
	text, err := ln.EmitAMM(res.Module, res.Scope)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// ammToAga drives the AgaEmitter over one already-parsed AMM module
// (spec §4.7).
type ammToAga struct{}

func (ammToAga) FromText(name, source string) ([]byte, error) {
	mod, err := amm.ParseModule(name, source)
	if err != nil {
		return nil, err
	}
	text, err := aga.Emit(mod)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (c ammToAga) FromFile(path string) ([]byte, error) {
	source, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return c.FromText(path, source)
}

// agaToAgc drives the AgcWriter over AGA text (spec §4.8), producing the
// pipeline's only true binary stage.
type agaToAgc struct{}

func (agaToAgc) FromText(name, source string) ([]byte, error) {
	return agc.Write(name, source)
}

func (c agaToAgc) FromFile(path string) ([]byte, error) {
	source, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return c.FromText(path, source)
}
