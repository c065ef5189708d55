package simpletokenizer

import (
    "testing"
)

func TestSegmentWords(t *testing.T) {
    check := func(t *testing.T, text string, expected []wordSpan) {
        out := segmentWords(text)
        if len(out) != len(expected) {
            t.Fatalf("expected %d words from %q, got %v", len(expected), text, out)
        }
        for i, e := range expected {
            if out[i] != e {
                t.Fatalf("expected %v from %q, got %v", e, text, out[i])
            }
        }
    }

    t.Run("mixed", func(t *testing.T) {
        check(t, "Hello, 世界! 123", []wordSpan{
            { Word: "Hello", Start: 0, End: 5 },
            { Word: "世", Start: 7, End: 10 },
            { Word: "界", Start: 10, End: 13 },
            { Word: "123", Start: 15, End: 18 },
        })
    })

    t.Run("contractions and numbers", func(t *testing.T) {
        check(t, "I'm making 32.3 kg", []wordSpan{
            { Word: "I'm", Start: 0, End: 3 },
            { Word: "making", Start: 4, End: 10 },
            { Word: "32.3", Start: 11, End: 15 },
            { Word: "kg", Start: 16, End: 18 },
        })
    })

    t.Run("no words", func(t *testing.T) {
        check(t, "", []wordSpan{})
        check(t, "  ,.!? \n\t", []wordSpan{})
    })

    t.Run("invalid bytes", func(t *testing.T) {
        check(t, "ab\xffcd", []wordSpan{
            { Word: "ab", Start: 0, End: 2 },
            { Word: "cd", Start: 3, End: 5 },
        })
    })
}

func TestSingleRune(t *testing.T) {
    if c, ok := singleRune("国"); !ok || c != '国' {
        t.Fatalf("expected a single rune")
    }
    if _, ok := singleRune("国家"); ok {
        t.Fatalf("expected multiple runes")
    }
    if _, ok := singleRune(""); ok {
        t.Fatalf("expected no runes")
    }
    if _, ok := singleRune("\xff"); ok {
        t.Fatalf("invalid bytes should not count as a character")
    }
}
