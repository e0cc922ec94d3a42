package stac

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// symbolReplacer spells out symbols that have no compatibility decomposition.
var symbolReplacer = strings.NewReplacer(
	"°", "deg",
	"µ", "u",
	"–", "-",
	"—", "-",
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

// FoldASCII rewrites s into an ASCII-safe form for index documents.
// Non-breaking and other compatibility spaces become plain spaces, "°"
// becomes "deg" and diacritics are dropped. Remaining characters outside
// ASCII are kept.
func FoldASCII(s string) string {
	if isASCII(s) {
		return s
	}
	s = symbolReplacer.Replace(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// FoldTitles ASCII-folds every link title in ls and reports whether any
// title changed.
func (ls Links) FoldTitles() bool {
	changed := false
	for i, l := range ls {
		if folded := FoldASCII(l.Title); folded != l.Title {
			ls[i].Title = folded
			changed = true
		}
	}
	return changed
}
