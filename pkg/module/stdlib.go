package module

import (
	"embed"
	"path"
	"strings"
)

//go:embed stdlib/*.ln
var stdlibFS embed.FS

// stdlibSources maps a standard module name (the part after `@std/`) to its
// embedded source text, built once at package init so @std/ imports never
// touch the filesystem (spec §4.3: "the standard library ships inside the
// compiler binary").
var stdlibSources = func() map[string]string {
	entries, err := stdlibFS.ReadDir("stdlib")
	if err != nil {
		panic("module: embedded stdlib missing: " + err.Error())
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ln") {
			continue
		}
		buf, err := stdlibFS.ReadFile(path.Join("stdlib", e.Name()))
		if err != nil {
			panic("module: reading embedded stdlib file " + e.Name() + ": " + err.Error())
		}
		name := strings.TrimSuffix(e.Name(), ".ln")
		out[name] = string(buf)
	}
	return out
}()
