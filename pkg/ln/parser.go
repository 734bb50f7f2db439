package ln

import (
	"io"

	"alan.dev/alanc/internal/diag"
	pk "alan.dev/alanc/pkg/parsekit"
)

// Parser reads LN source and produces a Module, mirroring the teacher's
// jack.Parser{reader}/NewParser(r)/Parse() shape, adapted to this
// language's richer top-level declaration set.
type Parser struct {
	file   string
	source string
}

// NewParser builds a Parser over the full contents of r, attributing
// diagnostics to file.
func NewParser(file string, r io.Reader) (Parser, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return Parser{}, diag.Wrap(diag.ClassIO, diag.Position{File: file}, err, "reading %s", file)
	}
	return Parser{file: file, source: string(buf)}, nil
}

// Parse runs the full LN grammar over the parser's source and returns the
// resulting Module, or a *diag.Positioned describing the first parse
// failure (spec §8 invariant: every parse failure carries a precise
// position).
func (p Parser) Parse() (*Module, error) {
	return ParseModule(p.file, p.source)
}

// ParseModule is the convenience entry point used directly by the
// ModuleGraph (pkg/module), which never needs an io.Reader wrapper.
func ParseModule(file, source string) (*Module, error) {
	cur := pk.NewCursor(file, source)
	cur = pk.SkipTrivia(cur)

	var imports []Import
	for {
		if _, _, err := kw("import")(cur); err == nil {
			imp, next, err := parseImport(cur)
			if err != nil {
				return nil, toPositioned(err)
			}
			imports = append(imports, imp)
			cur = next
			continue
		}
		if _, _, err := kw("from")(cur); err == nil {
			imp, next, err := parseImport(cur)
			if err != nil {
				return nil, toPositioned(err)
			}
			imports = append(imports, imp)
			cur = next
			continue
		}
		break
	}

	var decls []Decl
	exports := map[string]bool{}
	for cur = pk.SkipTrivia(cur); !cur.AtEnd(); cur = pk.SkipTrivia(cur) {
		decl, next, err := parseDecl(cur)
		if err != nil {
			return nil, toPositioned(err)
		}
		decls = append(decls, decl)
		cur = next
		if name, exported := declExportName(decl); exported {
			exports[name] = true
		}
	}

	return &Module{Path: file, Imports: imports, Decls: decls, Exports: exports, Source: source}, nil
}

// declExportName reports the declared name and export flag for decl, used
// to build Module.Exports; handlers and operator mappings have no exportable
// name of their own.
func declExportName(d Decl) (string, bool) {
	switch v := d.(type) {
	case TypeDecl:
		return v.Name, v.Exported
	case InterfaceDecl:
		return v.Name, v.Exported
	case EventDecl:
		return v.Name, v.Exported
	case ConstDecl:
		return v.Name, v.Exported
	case FuncDecl:
		return v.Name, v.Exported
	default:
		return "", false
	}
}

// toPositioned normalizes any parsekit failure (a *pk.ParseError, a
// *pk.FatalError, or an already-Positioned diag error raised by one of our
// own parse functions) into a single *diag.Positioned so callers never
// need to type-switch on parser-internal error types.
func toPositioned(err error) error {
	if _, ok := err.(*diag.Positioned); ok {
		return err
	}
	return pk.ToPositioned(err)
}
