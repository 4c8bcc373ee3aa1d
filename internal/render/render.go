// Package render turns index artifacts into files of a target syntax.
//
// Renderers are pure: the same artifact always yields the same bytes, which
// is what makes regeneration idempotent and `index --check` possible.
package render

import (
	"fmt"
	"sort"

	"schemaflow/internal/index"
)

// Renderer produces the on-disk form of an index artifact.
type Renderer interface {
	// Name is the identifier used in configuration and on the command line.
	Name() string
	// Ext is the artifact file extension including the dot.
	Ext() string
	Render(a index.Artifact) ([]byte, error)
}

var registry = map[string]Renderer{
	"ts":   TypeScript{},
	"json": JSON{},
}

// For returns the renderer registered under name.
func For(name string) (Renderer, error) {
	r, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown renderer %q (supported: %v)", name, Names())
	}
	return r, nil
}

// Names lists the registered renderers in lexicographic order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
