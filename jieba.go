package simpletokenizer

import (
    "fmt"
    "strings"
    "sync"
    "unicode"
    "unicode/utf8"

    "github.com/go-ego/gse"
)

var (
    jieba_once sync.Once
    jieba_segmenter *gse.Segmenter
    jieba_err error
)

// The embedded dictionary takes a while to load, so it is only done when a
// JiebaTokenizer is first used.
func loadJiebaSegmenter() (*gse.Segmenter, error) {
    jieba_once.Do(func() {
        seg := &gse.Segmenter{}
        if err := seg.LoadDictEmbed("zh"); err != nil {
            jieba_err = fmt.Errorf("failed to load the embedded segmentation dictionary; %w", err)
            return
        }
        jieba_segmenter = seg
    })
    return jieba_segmenter, jieba_err
}

// JiebaTokenizer segments Chinese text into dictionary words rather than
// single characters. It emits no pinyin readings and always drops stopwords.
type JiebaTokenizer struct {
    dict *Dictionary
}

// NewJiebaTokenizer accepts the same argument list as NewSimpleTokenizer but
// currently recognizes none of them.
func NewJiebaTokenizer(dict *Dictionary, args []string) (*JiebaTokenizer, error) {
    if dict == nil {
        return nil, fmt.Errorf("dictionary must be supplied")
    }
    return &JiebaTokenizer{ dict: dict }, nil
}

func (t *JiebaTokenizer) Name() string {
    return "jieba"
}

type validChunk struct {
    Text string
    Start int
}

// Splits text around invalid UTF-8 so that each chunk can be segmented
// without losing track of byte offsets.
func splitValidUTF8(text []byte) []validChunk {
    output := []validChunk{}
    start := 0
    i := 0
    for i < len(text) {
        c, size := utf8.DecodeRune(text[i:])
        if c == utf8.RuneError && size <= 1 {
            if i > start {
                output = append(output, validChunk{ Text: string(text[start:i]), Start: start })
            }
            i++
            start = i
            continue
        }
        i += size
    }
    if i > start {
        output = append(output, validChunk{ Text: string(text[start:i]), Start: start })
    }
    return output
}

// Lowercases text the same way strings.ToLower does, also reporting the
// offset in text of every byte of the output (plus one for the end).
func lowerWithPositions(text string) (string, []int) {
    var sb strings.Builder
    positions := make([]int, 0, len(text) + 1)
    for i, c := range text {
        before := sb.Len()
        sb.WriteRune(unicode.ToLower(c))
        for j := before; j < sb.Len(); j++ {
            positions = append(positions, i)
        }
    }
    positions = append(positions, len(text))
    return sb.String(), positions
}

// Splits text around runs of whitespace, reporting byte offsets into text.
func splitSpaces(text string) []wordSpan {
    output := []wordSpan{}
    start := -1
    for i, c := range text {
        if unicode.IsSpace(c) {
            if start >= 0 {
                output = append(output, wordSpan{ Word: text[start:i], Start: start, End: i })
                start = -1
            }
        } else if start < 0 {
            start = i
        }
    }
    if start >= 0 {
        output = append(output, wordSpan{ Word: text[start:], Start: start, End: len(text) })
    }
    return output
}

func (t *JiebaTokenizer) TokenizeFunc(reason Reason, text []byte, emit func(Token) error) error {
    if !reason.valid() {
        return &UnrecognizedReasonError{ Flags: reason.Flags() }
    }

    seg, err := loadJiebaSegmenter()
    if err != nil {
        return err
    }

    for _, chunk := range splitValidUTF8(text) {
        // The segmenter lowercases its input, so words are located in a
        // lowercased copy and mapped back to the original offsets.
        lowered, positions := lowerWithPositions(chunk.Text)

        cursor := 0
        for _, word := range seg.Cut(chunk.Text, true) {
            if word == "" {
                continue
            }
            found := strings.Index(lowered[cursor:], word)
            if found < 0 {
                continue
            }
            start := cursor + found
            cursor = start + len(word)

            // The segmenter can keep runs of Latin text together across
            // whitespace, so each segment is split again before emission.
            original := chunk.Text[positions[start]:positions[cursor]]
            base := chunk.Start + positions[start]
            for _, span := range splitSpaces(original) {
                if !isWordLike(span.Word) {
                    continue
                }

                normalized, needs_stemming := Normalize(span.Word)
                if normalized == "" || t.dict.Stopwords.Contains(normalized) {
                    continue
                }
                if needs_stemming {
                    normalized = Stem(normalized)
                }

                err := emit(Token{ Text: []byte(normalized), Start: base + span.Start, End: base + span.End })
                if err != nil {
                    return fmt.Errorf("failed to emit token %q; %w", normalized, err)
                }
            }
        }
    }

    return nil
}

func (t *JiebaTokenizer) Tokenize(reason Reason, text []byte) ([]Token, error) {
    return collectTokens(t, reason, text)
}
