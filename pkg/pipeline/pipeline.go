// Package pipeline implements the Pipeline (spec §4.9): a small registry of
// {inExt, outExt, Converter} edges between the compiler's file extensions,
// with breadth-first routing so a caller can request any two endpoints
// (`ln -> agc`, `amm -> aga`, ...) without knowing the intermediate stages.
package pipeline

import (
	"errors"
	"fmt"
)

// Converter is one compilation-stage edge. FromText converts in-memory
// source directly under a display name (used in diagnostics); FromFile
// reads path from disk first. The return value is always raw bytes — the
// text stages (LN/AMM/AGA) just hold UTF-8 text in them, AGC alone is true
// binary (spec §4.9: "bytes-or-text").
type Converter interface {
	FromText(name, source string) ([]byte, error)
	FromFile(path string) ([]byte, error)
}

type edge struct {
	inExt, outExt string
	conv          Converter
}

// Registry is a small directed graph of extension-to-extension
// conversions; Compile/CompileFile run breadth-first search over it to
// find the shortest chain between any two registered extensions.
type Registry struct {
	edges []edge
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds one {inExt, outExt, Converter} triple.
func (r *Registry) Register(inExt, outExt string, conv Converter) {
	r.edges = append(r.edges, edge{inExt: inExt, outExt: outExt, conv: conv})
}

// ErrNoRoute is returned when no chain of registered converters connects
// the requested extensions.
var ErrNoRoute = errors.New("pipeline: no route between the requested extensions")

// route runs BFS over r.edges and returns the shortest ordered chain from
// inExt to outExt (spec §4.9: "breadth-first shortest-path computation").
func (r *Registry) route(inExt, outExt string) ([]edge, error) {
	if inExt == outExt {
		return nil, nil
	}
	type node struct {
		ext  string
		path []edge
	}
	visited := map[string]bool{inExt: true}
	queue := []node{{ext: inExt}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range r.edges {
			if e.inExt != cur.ext || visited[e.outExt] {
				continue
			}
			path := append(append([]edge{}, cur.path...), e)
			if e.outExt == outExt {
				return path, nil
			}
			visited[e.outExt] = true
			queue = append(queue, node{ext: e.outExt, path: path})
		}
	}
	return nil, fmt.Errorf("%w: %s -> %s", ErrNoRoute, inExt, outExt)
}

// Compile routes from inExt to outExt and runs the composed chain against
// source, holding every intermediate text in memory only (spec §4.9).
func (r *Registry) Compile(name, source, inExt, outExt string) ([]byte, error) {
	chain, err := r.route(inExt, outExt)
	if err != nil {
		return nil, err
	}
	cur := []byte(source)
	for _, e := range chain {
		out, err := e.conv.FromText(name, string(cur))
		if err != nil {
			return nil, err
		}
		cur = out
	}
	return cur, nil
}

// CompileFile is Compile's file-backed counterpart: the first stage reads
// path from disk (Converter.FromFile); every later stage runs purely in
// memory, same as Compile.
func (r *Registry) CompileFile(path, inExt, outExt string) ([]byte, error) {
	chain, err := r.route(inExt, outExt)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		source, err := readFile(path)
		if err != nil {
			return nil, err
		}
		return []byte(source), nil
	}
	cur, err := chain[0].conv.FromFile(path)
	if err != nil {
		return nil, err
	}
	for _, e := range chain[1:] {
		out, err := e.conv.FromText(path, string(cur))
		if err != nil {
			return nil, err
		}
		cur = out
	}
	return cur, nil
}
