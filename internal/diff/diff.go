// Package diff produces unified diffs between an artifact on disk and the
// freshly rendered version. It uses github.com/pmezard/go-difflib/difflib to
// produce classic unified patches (---/+++ headers, @@ hunks, lines prefixed
// with ' ', '-', '+').
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Options controls patch generation behavior.
type Options struct {
	// Context controls the number of context lines in unified hunks.
	// If 0, default to 3.
	Context int

	// MaxBytes is a guardrail on input size (old+new). When exceeded,
	// a placeholder patch is returned. 0 means "no limit".
	MaxBytes int
}

// Unified produces a unified patch turning current into want. Both files
// are labelled with name; a missing current file is shown as /dev/null.
// An empty string means there is no difference.
func Unified(name string, current, want []byte, exists bool, opt Options) string {
	if exists && string(current) == string(want) {
		return ""
	}
	from, to := "a/"+name, "b/"+name
	if !exists {
		from = "/dev/null"
	}
	if opt.MaxBytes > 0 && len(current)+len(want) > opt.MaxBytes {
		return omitted(from, to)
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(current)),
		B:        splitLinesKeepNL(string(want)),
		FromFile: from,
		ToFile:   to,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return omitted(from, to)
	}
	return s
}

// splitLinesKeepNL splits into lines and keeps newline characters,
// which produces better unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

func omitted(from, to string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted\n", from, to)
}
