package tempid

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Normalize collapses cosmetic variants of an alias to a single key:
// full-width characters are folded to their half-width forms, letters are
// lower-cased, and punctuation, symbols and whitespace are stripped.
// "（株）ACME  Corp." and "(株)acme corp" normalize identically.
func Normalize(alias string) string {
	folded := width.Fold.String(strings.TrimSpace(alias))
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
