package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("syntax_error", nil); msg == "syntax_error" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("syntax_error", nil); msg == "malformed JSON" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	msg := T("unsupported_schema_version", map[string]string{"schema": "Clip", "version": "3"})
	if msg != "schema Clip version 3 is not supported" {
		t.Fatalf("got %q", msg)
	}
	if msg := T("dangling_reference", nil); msg != "reference-id {ref} is never defined" {
		t.Fatalf("placeholders without data should stay, got %q", msg)
	}
}

func TestTranslator_UnknownCodeAndLanguage(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown codes should fall back to the code, got %q", msg)
	}
	SetLanguage("fr")
	defer SetLanguage("en")
	if msg := T("duplicate_key", nil); msg != "duplicate key" {
		t.Fatalf("unknown language should fall back to en, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if msg := T("syntax_error", nil); msg != "X:syntax_error" {
		t.Fatalf("got %q", msg)
	}
}
