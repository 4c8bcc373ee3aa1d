// Package treeview prints a scanned schema tree as namespaces and the ids
// assigned to each generated file.
package treeview

import (
	"fmt"
	"io"

	"github.com/ddddddO/gtree"

	"schemaflow/internal/index"
	"schemaflow/internal/naming"
	"schemaflow/internal/walkwalk"
)

// Print writes the namespace tree of root to w. arts must be the result of
// index.Build(root); directories are labelled with their namespace and
// files with "Symbol = id".
func Print(w io.Writer, root *walkwalk.Dir, arts []index.Artifact) error {
	byRel := make(map[string]index.Artifact, len(arts))
	for _, a := range arts {
		byRel[a.Rel] = a
	}

	top := gtree.NewRoot(root.Name)
	addDir(top, root, byRel)
	if err := gtree.OutputFromRoot(w, top); err != nil {
		return fmt.Errorf("print tree: %w", err)
	}
	return nil
}

func addDir(node *gtree.Node, d *walkwalk.Dir, byRel map[string]index.Artifact) {
	for _, child := range d.Dirs {
		addDir(node.Add(naming.Title(child.Name)+" ("+child.Name+"/)"), child, byRel)
	}
	for _, id := range byRel[d.Rel].IDs {
		node.Add(fmt.Sprintf("%s = %d", id.Symbol, id.ID))
	}
}
