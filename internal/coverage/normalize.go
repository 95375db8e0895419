package coverage

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dotless i has no canonical decomposition, fold it by hand.
var dotlessFolder = strings.NewReplacer("ı", "i")

// NormalizeText canonicalizes a label for matching: trims, strips diacritics,
// lower-cases and collapses whitespace runs to a single space.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	stripped = dotlessFolder.Replace(strings.ToLower(stripped))
	return strings.Join(strings.Fields(stripped), " ")
}
