package simpletokenizer

import (
    "unicode"
    "unicode/utf8"

    "github.com/rivo/uniseg"
)

type wordSpan struct {
    Word string
    Start int
    End int
}

func isWordLike(word string) bool {
    for _, c := range word {
        if c == utf8.RuneError {
            continue
        }
        if unicode.IsLetter(c) || unicode.IsNumber(c) {
            return true
        }
    }
    return false
}

// Splits text at Unicode word boundaries and keeps the segments containing
// at least one letter or number. Offsets are byte positions in text. Invalid
// UTF-8 is read one byte at a time as U+FFFD, which always breaks a word.
func segmentWords(text string) []wordSpan {
    output := []wordSpan{}

    state := -1
    offset := 0
    remaining := text
    for len(remaining) > 0 {
        var word string
        word, remaining, state = uniseg.FirstWordInString(remaining, state)
        if len(word) == 0 {
            break
        }
        if isWordLike(word) {
            output = append(output, wordSpan{ Word: word, Start: offset, End: offset + len(word) })
        }
        offset += len(word)
    }

    return output
}

// Returns the only rune in word, if word holds exactly one character.
func singleRune(word string) (rune, bool) {
    c, size := utf8.DecodeRuneInString(word)
    if size == 0 || size != len(word) || c == utf8.RuneError {
        return 0, false
    }
    return c, true
}
