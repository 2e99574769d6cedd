package typegraph

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reoring/typegraph/i18n"
	eng "github.com/reoring/typegraph/internal/engine"
)

// Code classifies a decode failure.
type Code string

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeSyntax                   Code = "syntax_error"
	CodeFileOpen                 Code = "file_open_error"
	CodeDuplicateReference       Code = "duplicate_reference"
	CodeDanglingReference        Code = "dangling_reference"
	CodeUnknownSchema            Code = "unknown_schema"
	CodeUnsupportedSchemaVersion Code = "unsupported_schema_version"
	CodeConstructor              Code = "constructor_error"
	// Malformed reserved keys (non-string schema, negative version, ...).
	CodeInvalidTag Code = "invalid_schema_tag"
	// Runtime enforcement (DecodeOpt.Strictness, MaxDepth, MaxBytes).
	CodeDuplicateKey  Code = eng.CodeDuplicateKey
	CodeLimitExceeded Code = eng.CodeLimitExceeded
)

// Error is the single failure type returned by every decode entry point.
// Fields that do not apply to Code are left at their zero value, except
// Offset which is -1 when unknown.
type Error struct {
	Code    Code
	Message string
	File    string // Input file, set by DecodeFile.
	Path    string // JSON Pointer of the offending node (for example: /tracks/0).
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	Line    int    // 1-based; 0 when unknown.
	Column  int    // 1-based byte column; 0 when unknown.

	Schema  string
	Version int
	// Requested and Reached describe a failed downgrade chain: the version
	// found in the document and the version at which the chain stopped.
	Requested int
	Reached   int

	RefID string
	Cause error
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	switch {
	case e.Line > 0:
		fmt.Fprintf(b, " at line %d, column %d", e.Line, e.Column)
	case e.Offset >= 0:
		fmt.Fprintf(b, " at offset %d", e.Offset)
	}
	if e.Path != "" {
		fmt.Fprintf(b, " (%s)", e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Localized renders a short message for Code in the current i18n language,
// followed by the position when known.
func (e *Error) Localized() string {
	msg := i18n.T(string(e.Code), map[string]string{
		"schema":  e.Schema,
		"version": strconv.Itoa(e.Version),
		"ref":     e.RefID,
		"file":    e.File,
	})
	switch {
	case e.Line > 0:
		msg += fmt.Sprintf(" (%d:%d)", e.Line, e.Column)
	case e.Path != "":
		msg += " (" + e.Path + ")"
	}
	return msg
}

// Is matches another *Error by Code, so errors.Is(err, &Error{Code: c}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// AsError extracts *Error from an error using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the Code carried by err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, c Code) bool { return CodeOf(err) == c }

func newError(c Code, msg string) *Error { return &Error{Code: c, Message: msg, Offset: -1} }

// toError maps engine and driver failures into *Error at the public boundary.
func toError(err error, loc int64) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &Error{Code: Code(ie.Code), Message: ie.Message, Path: ie.Path, Offset: ie.Offset, Cause: err}
	}
	var se *eng.SyntaxError
	if errors.As(err, &se) {
		off := se.Offset
		if off < 0 {
			off = loc
		}
		return &Error{Code: CodeSyntax, Message: se.Msg, Offset: off, Cause: err}
	}
	return &Error{Code: CodeSyntax, Message: err.Error(), Offset: loc, Cause: err}
}

// locate fills Line and Column from Offset against the original input.
// Truncated input is reported at its end.
func locate(e *Error, data []byte) {
	if e.Code == CodeSyntax && errors.Is(e.Cause, io.ErrUnexpectedEOF) {
		e.Offset = int64(len(data))
	}
	if e.Offset < 0 || e.Offset > int64(len(data)) {
		return
	}
	head := data[:e.Offset]
	e.Line = 1 + bytes.Count(head, []byte{'\n'})
	e.Column = int(e.Offset) - bytes.LastIndexByte(head, '\n')
}
