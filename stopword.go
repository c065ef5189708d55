package simpletokenizer

import (
    "bufio"
    "bytes"
    _ "embed"
    "fmt"
    "io"
    "strings"
    "sync"
)

//go:embed data/stopword.txt
var defaultStopwordBytes []byte

// StopwordSet is an immutable list of words that are never indexed.
type StopwordSet struct {
    words []string
    index map[string]struct{}
}

// NewStopwordSet builds a set from the supplied words, keeping the first
// occurrence of each. Empty words are ignored.
func NewStopwordSet(words []string) *StopwordSet {
    output := &StopwordSet{ index: map[string]struct{}{} }
    for _, w := range words {
        w = strings.TrimSpace(w)
        if w == "" {
            continue
        }
        if _, ok := output.index[w]; ok {
            continue
        }
        output.index[w] = struct{}{}
        output.words = append(output.words, w)
    }
    return output
}

// ParseStopwords reads one word per line. Blank lines and lines starting
// with '#' are skipped.
func ParseStopwords(src io.Reader) (*StopwordSet, error) {
    collected := []string{}
    scanner := bufio.NewScanner(src)
    for scanner.Scan() {
        line := strings.TrimSpace(scanner.Text())
        if line == "" || strings.HasPrefix(line, "#") {
            continue
        }
        collected = append(collected, line)
    }

    if err := scanner.Err(); err != nil {
        return nil, fmt.Errorf("failed to read stopword artifact; %w", err)
    }
    return NewStopwordSet(collected), nil
}

var (
    default_stopwords_once sync.Once
    default_stopwords *StopwordSet
    default_stopwords_err error
)

// DefaultStopwords returns the bundled Chinese and English stopword list.
func DefaultStopwords() (*StopwordSet, error) {
    default_stopwords_once.Do(func() {
        default_stopwords, default_stopwords_err = ParseStopwords(bytes.NewReader(defaultStopwordBytes))
    })
    return default_stopwords, default_stopwords_err
}

func (s *StopwordSet) Contains(word string) bool {
    if s == nil {
        return false
    }
    _, ok := s.index[word]
    return ok
}

func (s *StopwordSet) Len() int {
    if s == nil {
        return 0
    }
    return len(s.words)
}

// Words lists the stopwords in the order they were supplied.
func (s *StopwordSet) Words() []string {
    if s == nil {
        return nil
    }
    return append([]string(nil), s.words...)
}
