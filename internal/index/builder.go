package index

import (
	"strings"

	"schemaflow/internal/naming"
	"schemaflow/internal/walkwalk"
)

// Build derives the index artifacts for root and every directory below it.
//
// Children are visited before the directory's own files, and a single id
// counter is shared by the whole traversal, so ids are unique across the tree
// and a directory's enum values continue wherever its last child left off.
// Artifacts are returned in the same post-order.
func Build(root *walkwalk.Dir) []Artifact {
	arts, _ := visit(root, nil, Accumulator{}, true)
	return arts
}

func visit(d *walkwalk.Dir, prefix []string, acc Accumulator, isRoot bool) ([]Artifact, Accumulator) {
	art := Artifact{Rel: d.Rel, Dir: d.Abs}
	var out []Artifact

	// * children first, each one becomes a namespace of this directory
	for _, child := range d.Dirs {
		ns := naming.Title(child.Name)
		childArts, next := visit(child, appendCopy(prefix, ns), acc, false)
		acc = next
		out = append(out, childArts...)
		art.Namespaces = append(art.Namespaces, Namespace{Name: ns, Path: "./" + child.Name})
	}

	// * then this directory's files
	qualifier := strings.Join(appendCopy(prefix, "Id"), ".") + "."
	for _, file := range d.Files {
		sym := naming.Title(file)
		art.Exports = append(art.Exports, Export{Symbol: sym, File: file})
		art.IDs = append(art.IDs, Assignment{Symbol: sym, ID: acc.Next})
		acc.Names = append(acc.Names, Name{ID: acc.Next, Qualified: qualifier + sym, Symbol: sym})
		acc.Next++
	}

	if isRoot {
		names := make([]Name, len(acc.Names))
		copy(names, acc.Names)
		art.Root = &RootExtras{IDMax: acc.Next, Names: names}
	}
	return append(out, art), acc
}

func appendCopy(prefix []string, s string) []string {
	out := make([]string, len(prefix), len(prefix)+1)
	copy(out, prefix)
	return append(out, s)
}
