package simpletokenizer

import (
    "fmt"
    "strings"
    "unicode/utf8"
)

type ReasonKind int

const (
    ReasonDocument ReasonKind = iota + 1
    ReasonQuery
    ReasonAux
)

// Reason says why text is being tokenized. Prefix only has meaning for
// queries, where it marks a prefix (wildcard) query.
type Reason struct {
    Kind ReasonKind
    Prefix bool
}

var (
    DocumentReason = Reason{ Kind: ReasonDocument }
    QueryReason = Reason{ Kind: ReasonQuery }
    PrefixQueryReason = Reason{ Kind: ReasonQuery, Prefix: true }
    AuxReason = Reason{ Kind: ReasonAux }
)

// Flag values used by SQLite's FTS5 xTokenize callback.
const (
    fts5TokenizeQuery = 0x0001
    fts5TokenizePrefix = 0x0002
    fts5TokenizeDocument = 0x0004
    fts5TokenizeAux = 0x0008
)

// ReasonFromFlags maps FTS5 tokenize flags to a Reason.
func ReasonFromFlags(flags int) (Reason, error) {
    switch flags {
    case fts5TokenizeQuery:
        return QueryReason, nil
    case fts5TokenizeQuery | fts5TokenizePrefix:
        return PrefixQueryReason, nil
    case fts5TokenizeDocument:
        return DocumentReason, nil
    case fts5TokenizeAux:
        return AuxReason, nil
    }
    return Reason{}, &UnrecognizedReasonError{ Flags: flags }
}

// Flags is the inverse of ReasonFromFlags.
func (r Reason) Flags() int {
    flags := 0
    switch r.Kind {
    case ReasonDocument:
        flags = fts5TokenizeDocument
    case ReasonAux:
        flags = fts5TokenizeAux
    case ReasonQuery:
        flags = fts5TokenizeQuery
    }
    if r.Prefix {
        flags |= fts5TokenizePrefix
    }
    return flags
}

func (r Reason) valid() bool {
    switch r.Kind {
    case ReasonDocument, ReasonAux:
        return !r.Prefix
    case ReasonQuery:
        return true
    }
    return false
}

func (r Reason) String() string {
    switch r.Kind {
    case ReasonDocument:
        return "document"
    case ReasonAux:
        return "aux"
    case ReasonQuery:
        if r.Prefix {
            return "prefix"
        }
        return "query"
    }
    return fmt.Sprintf("unknown(%d)", int(r.Kind))
}

// ParseReason accepts the names returned by Reason.String.
func ParseReason(name string) (Reason, error) {
    switch strings.ToLower(name) {
    case "document":
        return DocumentReason, nil
    case "query":
        return QueryReason, nil
    case "prefix":
        return PrefixQueryReason, nil
    case "aux":
        return AuxReason, nil
    }
    return Reason{}, fmt.Errorf("unknown tokenize reason %q", name)
}

/**********************************************************************/

// Token is a single index term. Start and End are byte offsets into the
// tokenized text; Text is the normalized term and need not equal that range.
type Token struct {
    Text []byte
    Start int
    End int
    Colocated bool
}

type Tokenizer interface {
    Name() string
    TokenizeFunc(reason Reason, text []byte, emit func(Token) error) error
    Tokenize(reason Reason, text []byte) ([]Token, error)
}

func collectTokens(tok Tokenizer, reason Reason, text []byte) ([]Token, error) {
    output := []Token{}
    err := tok.TokenizeFunc(reason, text, func(t Token) error {
        output = append(output, t)
        return nil
    })
    if err != nil {
        return nil, err
    }
    return output, nil
}

const (
    argDisablePinyin = "disable_pinyin"
    argDisableStopword = "disable_stopword"
)

// SimpleTokenizer splits text at Unicode word boundaries. In document mode,
// a word that is a single Chinese character is indexed under each of its
// pinyin readings instead of the character itself.
type SimpleTokenizer struct {
    dict *Dictionary
    enablePinyin bool
    enableStopword bool
}

// NewSimpleTokenizer recognizes the "disable_pinyin" and "disable_stopword"
// arguments. Anything else is ignored.
func NewSimpleTokenizer(dict *Dictionary, args []string) (*SimpleTokenizer, error) {
    if dict == nil {
        return nil, fmt.Errorf("dictionary must be supplied")
    }

    output := &SimpleTokenizer{
        dict: dict,
        enablePinyin: true,
        enableStopword: true,
    }

    for _, a := range args {
        switch a {
        case argDisablePinyin:
            output.enablePinyin = false
        case argDisableStopword:
            output.enableStopword = false
        }
    }

    return output, nil
}

func (t *SimpleTokenizer) Name() string {
    return "simple"
}

func (t *SimpleTokenizer) PinyinEnabled() bool {
    return t.enablePinyin
}

func (t *SimpleTokenizer) StopwordEnabled() bool {
    return t.enableStopword
}

func (t *SimpleTokenizer) TokenizeFunc(reason Reason, text []byte, emit func(Token) error) error {
    if !reason.valid() {
        return &UnrecognizedReasonError{ Flags: reason.Flags() }
    }

    for _, span := range segmentWords(string(text)) {
        if t.enablePinyin && reason.Kind == ReasonDocument {
            if c, ok := singleRune(span.Word); ok {
                if readings, ok := t.dict.Registry.Readings(c); ok {
                    if t.enableStopword && t.dict.Stopwords.Contains(span.Word) {
                        continue
                    }
                    // TODO: readings after the first should probably be
                    // Colocated, as they all share one position; doing so
                    // changes FTS5 phrase and ranking results.
                    for _, r := range readings {
                        err := emit(Token{ Text: []byte(r), Start: span.Start, End: span.End })
                        if err != nil {
                            return fmt.Errorf("failed to emit token %q; %w", r, err)
                        }
                    }
                    continue
                }
            }
        }

        normalized, needs_stemming := Normalize(strings.ToValidUTF8(span.Word, string(utf8.RuneError)))
        if normalized == "" {
            continue
        }
        if t.enableStopword && t.dict.Stopwords.Contains(normalized) {
            continue
        }
        if needs_stemming {
            normalized = Stem(normalized)
        }

        err := emit(Token{ Text: []byte(normalized), Start: span.Start, End: span.End })
        if err != nil {
            return fmt.Errorf("failed to emit token %q; %w", normalized, err)
        }
    }

    return nil
}

func (t *SimpleTokenizer) Tokenize(reason Reason, text []byte) ([]Token, error) {
    return collectTokens(t, reason, text)
}
