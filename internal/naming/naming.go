// Package naming derives exported identifiers from generated file and
// directory names.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Segments splits a base name on '_', '-', '.' and whitespace, dropping empty parts.
func Segments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
}

// Title converts a base name into an exported symbol: every segment is
// lower-cased, title-cased and the segments are concatenated.
//
//	initial      -> Initial
//	player_move  -> PlayerMove
//	chat-message -> ChatMessage
func Title(s string) string {
	caser := cases.Title(language.English)
	var b strings.Builder
	for _, part := range Segments(s) {
		b.WriteString(caser.String(strings.ToLower(part)))
	}
	return b.String()
}

// Valid reports whether s can be used as an identifier in the generated index.
func Valid(s string) bool {
	return identRe.MatchString(s)
}
