package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/typegraph"
	eng "github.com/reoring/typegraph/internal/engine"
)

// Driver returns a typegraph.JSONDriver backed by goccy/go-json.
func Driver() typegraph.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) typegraph.Source { return NewReader(r) }
func (driverGoJSON) NewBytes(b []byte) typegraph.Source     { return NewBytes(b) }
func (driverGoJSON) Name() string                           { return "go-json" }

// ---- engine.TokenSource implementation using go-json Decoder ----

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
	members      int
}

type source struct {
	dec     *j.Decoder
	tape    *tape
	stack   []frame
	pos     int64 // offset just past the last token
	started bool
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
// go-json's Token skips ',' and ':' without checking them, so the source
// records the consumed input and validates the separators between tokens.
func NewReader(r io.Reader) eng.TokenSource {
	t := &tape{r: r}
	dec := j.NewDecoder(t)
	dec.UseNumber()
	return &source{dec: dec, tape: t}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, s.convertErr(err)
	}
	s.started = true
	end := s.dec.InputOffset()
	sep, n, start := s.separators(end)
	d, isDelim := tok.(j.Delim)
	closer := isDelim && (d == '}' || d == ']')
	if msg := s.checkSeparators(sep, n, closer); msg != "" {
		return eng.Token{}, &eng.SyntaxError{Offset: start, Msg: msg}
	}
	s.pos = end
	s.tape.release(end)

	// Opening delimiters report their own offset; other tokens report the
	// offset just past them, as the encoding/json driver does.
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: start}, nil
		case '}':
			s.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: end}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: start}, nil
		case ']':
			s.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: end}, nil
		}
	case string:
		if top := s.top(); top != nil && top.kind == kindObject && top.expectingKey {
			top.expectingKey = false
			return eng.Token{Kind: eng.KindKey, String: v, Offset: end}, nil
		}
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: end}, nil
	case bool:
		s.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: end}, nil
	case j.Number:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: end}, nil
	case float64:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: end}, nil
	}
	s.valueDone()
	return eng.Token{Kind: eng.KindNull, Offset: end}, nil
}

// separators scans the input between the previous token and the one ending at
// end. It returns the first separator byte, how many separators were seen and
// the offset where the new token starts.
func (s *source) separators(end int64) (sep byte, n int, start int64) {
	for i, c := range s.tape.span(s.pos, end) {
		switch c {
		case ' ', '\t', '\r', '\n':
		case ',', ':':
			if n == 0 {
				sep = c
			}
			n++
		default:
			return sep, n, s.pos + int64(i)
		}
	}
	return sep, n, end
}

// checkSeparators returns a syntax error message when the separators found
// before a token do not fit the enclosing container.
func (s *source) checkSeparators(sep byte, n int, closer bool) string {
	var want byte
	if top := s.top(); top != nil {
		switch {
		case top.kind == kindObject && !top.expectingKey:
			want = ':'
		case top.members > 0 && !closer:
			want = ','
		}
	}
	switch {
	case n == 0 && want == 0, n == 1 && sep == want:
		return ""
	case n > 1 || want == 0:
		return "invalid character '" + string(sep) + "' looking for beginning of value"
	case want == ':':
		return "invalid character after object key, expecting ':'"
	}
	if s.top().kind == kindObject {
		return "invalid character after object key:value pair, expecting ','"
	}
	return "invalid character after array element, expecting ','"
}

func (s *source) top() *frame {
	if n := len(s.stack); n > 0 {
		return &s.stack[n-1]
	}
	return nil
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *source) valueDone() {
	if top := s.top(); top != nil {
		top.members++
		if top.kind == kindObject {
			top.expectingKey = true
		}
	}
}

func (s *source) convertErr(err error) error {
	var se *j.SyntaxError
	switch {
	case errors.As(err, &se):
		return &eng.SyntaxError{Offset: se.Offset, Msg: se.Error(), Err: err}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return eng.UnexpectedEnd(s.dec.InputOffset())
	case errors.Is(err, io.EOF):
		if len(s.stack) > 0 || !s.started {
			return eng.UnexpectedEnd(s.dec.InputOffset())
		}
		if sep, n, _ := s.separators(s.dec.InputOffset()); n > 0 {
			return &eng.SyntaxError{Offset: s.pos, Msg: "invalid character '" + string(sep) + "' after top-level value"}
		}
		return io.EOF
	}
	return &eng.SyntaxError{Offset: -1, Msg: err.Error(), Err: err}
}

func (s *source) Location() int64 { return s.pos }

// tape records what the decoder reads so separators can be inspected after
// go-json has consumed them. Offsets are absolute input offsets.
type tape struct {
	r    io.Reader
	buf  []byte
	base int64
}

func (t *tape) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.buf = append(t.buf, p[:n]...)
	return n, err
}

func (t *tape) span(from, to int64) []byte { return t.buf[from-t.base : to-t.base] }

// release drops recorded bytes before off once they dominate the buffer.
func (t *tape) release(off int64) {
	n := off - t.base
	if n < 4096 || n < int64(len(t.buf))/2 {
		return
	}
	t.buf = append(t.buf[:0], t.buf[n:]...)
	t.base = off
}
