// Package textutil normalizes generated text so artifacts are byte-stable
// across platforms.
package textutil

import (
	"bytes"
)

// NormalizeUTF8LF converts CRLF to LF and ensures the output is valid UTF-8
// by replacing invalid byte sequences with the Unicode replacement character.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("\uFFFD"))
}

// EnsureTrailingLF appends a single \n if not already present.
func EnsureTrailingLF(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}

// TrimTrailingSpace strips spaces and tabs at the end of every line.
func TrimTrailingSpace(b []byte) []byte {
	lines := bytes.Split(b, []byte("\n"))
	for i, ln := range lines {
		lines[i] = bytes.TrimRight(ln, " \t")
	}
	return bytes.Join(lines, []byte("\n"))
}

// Normalize applies every rule of this package: LF newlines, valid UTF-8,
// no trailing whitespace and exactly one final newline for non-empty input.
func Normalize(b []byte) []byte {
	b = TrimTrailingSpace(NormalizeUTF8LF(b))
	b = bytes.TrimRight(b, "\n")
	return EnsureTrailingLF(b)
}
