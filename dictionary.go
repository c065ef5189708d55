package simpletokenizer

import (
    "fmt"
    "sync"
)

const DefaultCacheSize = 4096

// Dictionary bundles the static data shared by every tokenizer and query
// synthesizer. It is built once and never modified afterwards.
type Dictionary struct {
    Registry *Registry
    Stopwords *StopwordSet
    Decomposer *Decomposer
}

// NewDictionary assembles a Dictionary. A nil stopword set behaves as an
// empty one; cache_size <= 0 disables decomposition caching.
func NewDictionary(registry *Registry, stopwords *StopwordSet, cache_size int) (*Dictionary, error) {
    if registry == nil {
        return nil, fmt.Errorf("pinyin registry must be supplied")
    }
    if stopwords == nil {
        stopwords = NewStopwordSet(nil)
    }

    decomposer, err := NewDecomposer(cache_size)
    if err != nil {
        return nil, err
    }

    return &Dictionary{
        Registry: registry,
        Stopwords: stopwords,
        Decomposer: decomposer,
    }, nil
}

var (
    default_dictionary_once sync.Once
    default_dictionary *Dictionary
    default_dictionary_err error
)

// DefaultDictionary uses the bundled pinyin table and stopword list.
func DefaultDictionary() (*Dictionary, error) {
    default_dictionary_once.Do(func() {
        registry, err := DefaultRegistry()
        if err != nil {
            default_dictionary_err = err
            return
        }

        stopwords, err := DefaultStopwords()
        if err != nil {
            default_dictionary_err = fmt.Errorf("failed to load the bundled stopwords; %w", err)
            return
        }

        default_dictionary, default_dictionary_err = NewDictionary(registry, stopwords, DefaultCacheSize)
    })
    return default_dictionary, default_dictionary_err
}
