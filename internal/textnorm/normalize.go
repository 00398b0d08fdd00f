// Package textnorm provides the text folding used by keyword classification.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize decomposes accented characters, drops the combining marks, and
// lower-cases the result, so "Piojós" and "piojos" compare equal. It never
// fails: input that cannot be transformed is lower-cased as-is.
func Normalize(text string) string {
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// CapitalizeFirst upper-cases the first rune of text.
func CapitalizeFirst(text string) string {
	if text == "" {
		return text
	}
	r := []rune(text)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
