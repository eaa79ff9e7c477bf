// Package textnorm canonicalizes free text so keyword lookups are not
// defeated by accents, casing, or whitespace noise.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize strips diacritics, lowercases, and collapses whitespace runs
// to single spaces. Idempotent: Normalize(Normalize(s)) == Normalize(s).
// Empty input yields the empty string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		// Malformed UTF-8; fall back to the raw text rather than fail.
		folded = s
	}

	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}
