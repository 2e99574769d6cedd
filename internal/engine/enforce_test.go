package engine

import (
	"errors"
	"io"
	"testing"
)

type sliceSource struct {
	toks []Token
	pos  int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.pos) }

func drain(src TokenSource) error {
	for {
		if _, err := src.NextToken(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// {"a":{"b":1,"b":2}}
func dupTokens() []Token {
	return []Token{
		{Kind: KindBeginObject},
		{Kind: KindKey, String: "a"},
		{Kind: KindBeginObject},
		{Kind: KindKey, String: "b"},
		{Kind: KindNumber, Number: "1"},
		{Kind: KindKey, String: "b"},
		{Kind: KindNumber, Number: "2"},
		{Kind: KindEndObject},
		{Kind: KindEndObject},
	}
}

func TestEnforce_DuplicateKeyError(t *testing.T) {
	src := WrapWithEnforcement(&sliceSource{toks: dupTokens()}, EnforceOptions{OnDuplicate: DupError})
	err := drain(src)
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != CodeDuplicateKey {
		t.Fatalf("want %s, got %s", CodeDuplicateKey, ie.Code)
	}
	if ie.Path != "/a/b" {
		t.Fatalf("want path /a/b, got %s", ie.Path)
	}
}

func TestEnforce_DuplicateKeyWarnReportsToSink(t *testing.T) {
	var got []SimpleIssue
	src := WrapWithEnforcement(&sliceSource{toks: dupTokens()}, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	})
	if err := drain(src); err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if len(got) != 1 || got[0].Code != CodeDuplicateKey {
		t.Fatalf("expected one duplicate_key issue, got %v", got)
	}
}

func TestEnforce_MaxDepth(t *testing.T) {
	toks := []Token{
		{Kind: KindBeginArray},
		{Kind: KindBeginArray},
		{Kind: KindBeginArray},
		{Kind: KindEndArray},
		{Kind: KindEndArray},
		{Kind: KindEndArray},
	}
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{MaxDepth: 2})
	err := drain(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != CodeLimitExceeded {
		t.Fatalf("expected limit_exceeded, got %v", err)
	}
	if ie.Path != "/0/0" {
		t.Fatalf("want path /0/0, got %s", ie.Path)
	}
}

func TestEnforce_SameKeyInSiblingObjectsIsFine(t *testing.T) {
	toks := []Token{
		{Kind: KindBeginArray},
		{Kind: KindBeginObject},
		{Kind: KindKey, String: "k"},
		{Kind: KindNull},
		{Kind: KindEndObject},
		{Kind: KindBeginObject},
		{Kind: KindKey, String: "k"},
		{Kind: KindNull},
		{Kind: KindEndObject},
		{Kind: KindEndArray},
	}
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{OnDuplicate: DupError})
	if err := drain(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJoinPointer_Escapes(t *testing.T) {
	if got := JoinPointer("/a", "b/c~d"); got != "/a/b~1c~0d" {
		t.Fatalf("got %s", got)
	}
	if RootPointer("") != "/" {
		t.Fatalf("empty pointer should render as /")
	}
}
