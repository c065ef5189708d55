package simpletokenizer

import (
    "fmt"
    "sort"
    "strings"
)

// QueryGroup holds the alternatives for one query word. Each candidate is a
// decomposition with pieces joined by '+'. Pinyin is set when the candidates
// came from the readings of a single Chinese character.
type QueryGroup struct {
    Word string
    Candidates []string
    Pinyin bool
}

// Expression is a conjunction of groups, each a disjunction of prefix
// matches over its candidates.
type Expression struct {
    Groups []QueryGroup
}

func (e *Expression) Empty() bool {
    return len(e.Groups) == 0
}

// String renders the expression in the form "(a* OR b+c*) AND (d*)".
func (e *Expression) String() string {
    return e.Render(nil)
}

// Render builds the expression text, passing every piece of every candidate
// through piece (if non-nil) first. Pieces rendered as empty strings are
// dropped, as are candidates and groups left with nothing in them. A word
// whose undivided form renders as empty (e.g., a stopword) is dropped along
// with all of its spelled-out candidates.
func (e *Expression) Render(piece func(piece string, pinyin bool) string) string {
    collected := []string{}

    for _, group := range e.Groups {
        members := []string{}
        present := map[string]bool{}

        if piece != nil && !group.Pinyin && piece(strings.ToLower(group.Word), false) == "" {
            continue
        }

        for _, candidate := range group.Candidates {
            var rendered string
            if piece == nil {
                rendered = candidate
            } else {
                parts := []string{}
                for _, p := range strings.Split(candidate, pieceSeparator) {
                    if r := piece(p, group.Pinyin); r != "" {
                        parts = append(parts, r)
                    }
                }
                rendered = strings.Join(parts, " " + pieceSeparator + " ")
            }

            if rendered == "" {
                continue
            }
            rendered += "*"
            if _, ok := present[rendered]; !ok {
                present[rendered] = true
                members = append(members, rendered)
            }
        }

        if len(members) > 0 {
            collected = append(collected, "(" + strings.Join(members, " OR ") + ")")
        }
    }

    return strings.Join(collected, " AND ")
}

/**********************************************************************/

// Synthesizer turns query text into an Expression that matches the tokens
// SimpleTokenizer produces for documents, even when a Chinese character is
// queried through a complete or partial pinyin spelling.
type Synthesizer struct {
    dict *Dictionary
    literal bool
}

func NewSynthesizer(dict *Dictionary) (*Synthesizer, error) {
    if dict == nil {
        return nil, fmt.Errorf("dictionary must be supplied")
    }
    return &Synthesizer{ dict: dict }, nil
}

// Literal returns a Synthesizer that never expands characters into pinyin,
// for use against documents indexed with pinyin disabled.
func (s *Synthesizer) Literal() *Synthesizer {
    return &Synthesizer{ dict: s.dict, literal: true }
}

func (s *Synthesizer) Build(text string) *Expression {
    output := &Expression{ Groups: []QueryGroup{} }

    for _, span := range segmentWords(text) {
        group := QueryGroup{ Word: span.Word }
        present := map[string]bool{}

        if c, ok := singleRune(span.Word); ok && !s.literal {
            if readings, ok := s.dict.Registry.Readings(c); ok {
                group.Pinyin = true
                for _, r := range readings {
                    for _, d := range s.dict.Decomposer.Decompose(r) {
                        present[d] = true
                    }
                }
            }
        }

        if !group.Pinyin {
            for _, d := range s.dict.Decomposer.Decompose(strings.ToLower(span.Word)) {
                present[d] = true
            }
        }

        group.Candidates = make([]string, 0, len(present))
        for d := range present {
            group.Candidates = append(group.Candidates, d)
        }
        sort.Strings(group.Candidates)
        output.Groups = append(output.Groups, group)
    }

    return output
}

// Synthesize returns the textual match expression for text, or an empty
// string if text contains no words.
func (s *Synthesizer) Synthesize(text string) string {
    return s.Build(text).String()
}
