// Package validate checks the built index artifacts before anything is
// written to disk. It aggregates every issue into a single error so one run
// reports all naming collisions at once.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"schemaflow/internal/index"
	"schemaflow/internal/naming"
	"schemaflow/internal/sortutil"
)

// Artifacts validates a full build:
//
//   - exactly one artifact is the root, and it comes last
//   - every namespace and symbol is a usable identifier
//   - no symbol or namespace is declared twice within one directory, nor
//     shadows a name the index itself declares (Id, and Name/ID_MAX at the root)
//   - ids are unique across the tree and the root IDMax equals their count
//   - every id assignment has a matching export, in the same order
//   - namespaces and exports are sorted
func Artifacts(arts []index.Artifact) error {
	var errs errlist

	roots := 0
	var root *index.RootExtras
	for i, a := range arts {
		if a.IsRoot() {
			roots++
			root = a.Root
			if i != len(arts)-1 {
				errs.add("root artifact must be the last one built (got position %d)", i)
			}
		}
	}
	if roots != 1 {
		errs.add("expected exactly one root artifact, got %d", roots)
	}

	seenIDs := make(map[int]string)
	total := 0
	for _, a := range arts {
		prefix := dirLabel(a.Rel)
		declared := map[string]string{"Id": "the Id enum"}
		if a.IsRoot() {
			declared["Name"] = "the root Name map"
			declared["ID_MAX"] = "the root ID_MAX constant"
		}

		for _, ns := range a.Namespaces {
			if !naming.Valid(ns.Name) {
				errs.add("%s: namespace %q (from %s) is not a valid identifier", prefix, ns.Name, ns.Path)
			}
			if prev, dup := declared[ns.Name]; dup {
				errs.add("%s: namespace %q from %s collides with %s", prefix, ns.Name, ns.Path, prev)
			} else {
				declared[ns.Name] = ns.Path
			}
		}
		for _, ex := range a.Exports {
			if !naming.Valid(ex.Symbol) {
				errs.add("%s: symbol %q (from %s) is not a valid identifier", prefix, ex.Symbol, ex.File)
			}
			if prev, dup := declared[ex.Symbol]; dup {
				errs.add("%s: symbol %q from %s collides with %s", prefix, ex.Symbol, ex.File, prev)
			} else {
				declared[ex.Symbol] = ex.File
			}
		}

		files := make([]string, len(a.Exports))
		for i, ex := range a.Exports {
			files[i] = ex.File
		}
		if !sortutil.IsSorted(files) {
			errs.add("%s: exports are not in lexicographic file order", prefix)
		}
		paths := make([]string, len(a.Namespaces))
		for i, ns := range a.Namespaces {
			paths[i] = ns.Path
		}
		if !sortutil.IsSorted(paths) {
			errs.add("%s: namespaces are not in lexicographic directory order", prefix)
		}

		if len(a.IDs) != len(a.Exports) {
			errs.add("%s: %d ids for %d exports", prefix, len(a.IDs), len(a.Exports))
		}
		for i, id := range a.IDs {
			if i < len(a.Exports) && a.Exports[i].Symbol != id.Symbol {
				errs.add("%s: id %d assigned to %q but export %d is %q", prefix, id.ID, id.Symbol, i, a.Exports[i].Symbol)
			}
			if other, dup := seenIDs[id.ID]; dup {
				errs.add("%s: id %d of %q already used by %s", prefix, id.ID, id.Symbol, other)
			} else {
				seenIDs[id.ID] = prefix + "." + id.Symbol
			}
			total++
		}
	}

	if root != nil {
		if root.IDMax != total {
			errs.add("root idMax is %d but %d ids were assigned", root.IDMax, total)
		}
		if len(root.Names) != total {
			errs.add("root name map has %d entries for %d ids", len(root.Names), total)
		}
	}

	return errs.err()
}

func dirLabel(rel string) string {
	if rel == "" {
		return "<root>"
	}
	return rel
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if e == nil || len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
