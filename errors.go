package simpletokenizer

import (
    "fmt"
)

// LoadError is returned when a static artifact (pinyin table or stopword
// list) contains a malformed entry. Nothing is loaded when this occurs.
type LoadError struct {
    Source string
    Line int
    Reason string
}

func (e *LoadError) Error() string {
    if e.Line > 0 {
        return fmt.Sprintf("malformed entry in %s at line %d; %s", e.Source, e.Line, e.Reason)
    }
    return fmt.Sprintf("malformed entry in %s; %s", e.Source, e.Reason)
}

// UnrecognizedReasonError is returned when a host asks for tokenization with
// a reason code that does not map to document, query or auxiliary use.
type UnrecognizedReasonError struct {
    Flags int
}

func (e *UnrecognizedReasonError) Error() string {
    return fmt.Sprintf("unrecognized tokenize reason flags %d", e.Flags)
}

// InputTypeError is returned by the SQL query function when its argument is
// not text.
type InputTypeError struct {
    Got string
}

func (e *InputTypeError) Error() string {
    return "input data must be text, got " + e.Got
}
