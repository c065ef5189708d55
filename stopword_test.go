package simpletokenizer

import (
    "strings"
    "testing"
)

func TestDefaultStopwords(t *testing.T) {
    stop, err := DefaultStopwords()
    if err != nil {
        t.Fatalf(err.Error())
    }

    for _, w := range []string{ "的", "了", "the", "and", "is" } {
        if !stop.Contains(w) {
            t.Fatalf("expected %q to be a stopword", w)
        }
    }
    for _, w := range []string{ "国", "家", "中", "like", "sqlite", "making", "" } {
        if stop.Contains(w) {
            t.Fatalf("expected %q to not be a stopword", w)
        }
    }

    for _, w := range stop.Words() {
        if strings.HasPrefix(w, "#") || strings.TrimSpace(w) != w {
            t.Fatalf("comments and whitespace should be stripped; %q", w)
        }
    }
}

func TestParseStopwords(t *testing.T) {
    stop, err := ParseStopwords(strings.NewReader("# header\nthe\n\n  a  \nthe\n的\n"))
    if err != nil {
        t.Fatalf(err.Error())
    }

    if !equalStringArrays(stop.Words(), []string{ "the", "a", "的" }) {
        t.Fatalf("unexpected stopwords %q", stop.Words())
    }
    if stop.Len() != 3 {
        t.Fatalf("expected three stopwords")
    }
    if !stop.Contains("a") || stop.Contains("# header") {
        t.Fatalf("unexpected contents of the stopword set")
    }

    var empty *StopwordSet
    if empty.Contains("the") || empty.Len() != 0 {
        t.Fatalf("a nil set should be empty")
    }
}
