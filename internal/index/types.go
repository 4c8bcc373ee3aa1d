// Package index defines the index artifact model and the builder that
// derives one artifact per directory of a generated schema tree.
package index

// Namespace re-exports a child directory under its title-cased name.
type Namespace struct {
	Name string `json:"name"` // title-cased directory name, e.g. "Action"
	Path string `json:"path"` // module path relative to the artifact, e.g. "./action"
}

// Export re-exports one generated file under its symbol.
type Export struct {
	Symbol string `json:"symbol"` // e.g. "PlayerMove"
	File   string `json:"file"`   // base name without extension, e.g. "player_move"
}

// Assignment binds a symbol to its numeric id.
type Assignment struct {
	Symbol string `json:"symbol"`
	ID     int    `json:"id"`
}

// Name is one entry of the root name map. Qualified is the dotted path of the
// enum member from the root artifact, e.g. "Action.Id.Move" or "Id.Create".
type Name struct {
	ID        int    `json:"id"`
	Qualified string `json:"qualified"`
	Symbol    string `json:"symbol"`
}

// RootExtras is only present on the root artifact.
type RootExtras struct {
	IDMax int    `json:"idMax"` // total number of exports in the whole tree
	Names []Name `json:"names"` // in id order
}

// Artifact is the structured content of one directory's index file.
// Namespaces always precede Exports when rendered.
type Artifact struct {
	Rel        string       `json:"-"` // root-relative directory, "" for the root
	Dir        string       `json:"-"` // absolute directory the artifact is written into
	Namespaces []Namespace  `json:"namespaces"`
	Exports    []Export     `json:"exports"`
	IDs        []Assignment `json:"ids"`
	Root       *RootExtras  `json:"root,omitempty"`
}

// IsRoot reports whether the artifact belongs to the scanned root directory.
func (a Artifact) IsRoot() bool { return a.Root != nil }

// Accumulator carries the traversal-wide state: the next id to hand out and
// the names recorded so far. It is passed into every recursive step and the
// updated value is returned.
type Accumulator struct {
	Next  int
	Names []Name
}
