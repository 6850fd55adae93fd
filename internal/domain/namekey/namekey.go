// Package namekey derives the match key used to pair criterion names
// between a rubric and an evaluation.
package namekey

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize maps a criterion name to its match key: Unicode NFKC form,
// lowercased, with every maximal run of non-alphanumeric characters
// replaced by a single space and leading/trailing whitespace removed.
// An empty key never matches anything.
func Normalize(name string) string {
	folded := strings.ToLower(norm.NFKC.String(name))

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range folded {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}
