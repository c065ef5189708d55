package simpletokenizer

import (
    "fmt"
    "sort"
    "strings"

    lru "github.com/hashicorp/golang-lru/v2"
)

// Words longer than this (in runes) are never decomposed.
const maxDecomposeLength = 20

const pieceSeparator = "+"

type runeRange struct {
    Begin int
    End int
}

func decomposeRange(chars []rune, begin, end int, memo map[runeRange][]string) []string {
    if begin >= end {
        return nil
    }
    if end - begin == 1 {
        return []string{ string(chars[begin]) }
    }

    key := runeRange{ Begin: begin, End: end }
    if found, ok := memo[key]; ok {
        return found
    }

    output := []string{}
    whole := string(chars[begin:end])
    if IsValidSyllable(whole) || IsSyllablePrefix(whole) {
        output = append(output, whole)
    }

    for split := begin + 1; split < end; split++ {
        prefix := string(chars[begin:split])
        if !IsValidSyllable(prefix) {
            continue
        }
        for _, rest := range decomposeRange(chars, split, end, memo) {
            output = append(output, prefix + pieceSeparator + rest)
        }
    }

    memo[key] = output
    return output
}

// Decompose enumerates the ways of reading word as a run of pinyin syllables,
// optionally ending in an incomplete syllable. The word itself and its fully
// separated form are always included. Output is sorted and deduplicated.
func Decompose(word string) []string {
    chars := []rune(word)
    if len(chars) <= 1 || len(chars) > maxDecomposeLength {
        return []string{ word }
    }

    separated := make([]string, len(chars))
    for i, c := range chars {
        separated[i] = string(c)
    }

    present := map[string]bool{
        word: true,
        strings.Join(separated, pieceSeparator): true,
    }
    if len(chars) > 2 {
        memo := map[runeRange][]string{}
        for _, d := range decomposeRange(chars, 0, len(chars), memo) {
            present[d] = true
        }
    }

    output := make([]string, 0, len(present))
    for d := range present {
        output = append(output, d)
    }
    sort.Strings(output)
    return output
}

// Decomposer wraps Decompose with a bounded memo cache. A nil cache (size
// zero) is allowed, in which case every call recomputes.
type Decomposer struct {
    cache *lru.Cache[string, []string]
}

func NewDecomposer(cache_size int) (*Decomposer, error) {
    output := &Decomposer{}
    if cache_size > 0 {
        cache, err := lru.New[string, []string](cache_size)
        if err != nil {
            return nil, fmt.Errorf("failed to create the decomposition cache; %w", err)
        }
        output.cache = cache
    }
    return output, nil
}

// Decompose returns the same result as the package-level Decompose. Callers
// receive their own copy and may modify it.
func (d *Decomposer) Decompose(word string) []string {
    if d == nil || d.cache == nil {
        return Decompose(word)
    }

    found, ok := d.cache.Get(word)
    if !ok {
        found = Decompose(word)
        d.cache.Add(word, found)
    }
    return append([]string(nil), found...)
}

func (d *Decomposer) CacheLen() int {
    if d == nil || d.cache == nil {
        return 0
    }
    return d.cache.Len()
}
