package simpletokenizer

import (
    "strings"
    "unicode"
    "unicode/utf8"

    "github.com/kljensen/snowball/english"
    "golang.org/x/text/runes"
    "golang.org/x/text/transform"
    "golang.org/x/text/unicode/norm"
)

func isCombiningDiacritic(c rune) bool {
    return c >= 0x0300 && c <= 0x036F
}

// Compatibility-decompose so that precomposed letters expose their marks,
// drop the marks, then recompose whatever is left. A fresh chain is needed
// per call as transform.Chain keeps internal state.
func newDiacriticStripper() transform.Transformer {
    return transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(isCombiningDiacritic)), norm.NFC)
}

// Normalize folds a word into its index form. The second return value is
// true when the result is plain ASCII longer than one byte, i.e. when English
// stemming may be applied.
func Normalize(word string) (string, bool) {
    folded, _, err := transform.String(newDiacriticStripper(), word)
    if err != nil {
        // Only possible for a broken transformer; fall back to plain NFKC.
        folded = norm.NFKC.String(word)
    }

    needs_stemming := true
    var sb strings.Builder
    sb.Grow(len(folded))
    for _, c := range folded {
        if c < utf8.RuneSelf {
            if c >= 'A' && c <= 'Z' {
                c += 'a' - 'A'
            }
            sb.WriteRune(c)
        } else {
            needs_stemming = false
            sb.WriteRune(unicode.ToLower(c))
        }
    }

    output := sb.String()
    if len(output) <= 1 {
        needs_stemming = false
    }
    return output, needs_stemming
}

// Stem reduces an English word to its Porter2 stem.
func Stem(word string) string {
    return english.Stem(word, true)
}
