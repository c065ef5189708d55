package simpletokenizer

import (
    "testing"
)

func equalStringArrays(x []string, y []string) bool {
    if (x == nil) != (y == nil) {
        return false
    }
    if x == nil {
        return true
    }

    if len(x) != len(y) {
        return false
    }
    for i, v := range x {
        if v != y[i] {
            return false
        }
    }

    return true
}

func tokenTexts(tokens []Token) []string {
    output := []string{}
    for _, t := range tokens {
        output = append(output, string(t.Text))
    }
    return output
}

func defaultDictionaryForTest(t *testing.T) *Dictionary {
    dict, err := DefaultDictionary()
    if err != nil {
        t.Fatalf(err.Error())
    }
    return dict
}
