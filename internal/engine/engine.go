package engine

import (
	"io"
	"strings"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{
	KindBeginObject: "begin_object",
	KindEndObject:   "end_object",
	KindBeginArray:  "begin_array",
	KindEndArray:    "end_array",
	KindKey:         "key",
	KindString:      "string",
	KindNumber:      "number",
	KindBool:        "bool",
	KindNull:        "null",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string // Stored for key/string tokens.
	Number string // Number literal text; interpretation is left to the consumer.
	Bool   bool
	Offset int64 // Byte position when known, -1 otherwise.
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SyntaxError is the driver-neutral form of a tokenizer failure. Drivers
// convert their native error types into it so positions survive unchanged.
type SyntaxError struct {
	Offset int64 // -1 when the tokenizer did not report one.
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string { return e.Msg }

func (e *SyntaxError) Unwrap() error { return e.Err }

// UnexpectedEnd builds the SyntaxError reported when input stops inside a
// container or before any value.
func UnexpectedEnd(offset int64) *SyntaxError {
	return &SyntaxError{Offset: offset, Msg: "unexpected end of JSON input", Err: io.ErrUnexpectedEOF}
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends one RFC 6901 reference token to a JSON Pointer.
func JoinPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}

// RootPointer renders the empty pointer as "/" for messages.
func RootPointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
