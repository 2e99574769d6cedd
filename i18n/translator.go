package i18n

import (
	"sort"
	"strings"
	"sync"
)

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "schema" or "ref"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"syntax_error":               "malformed JSON",
		"file_open_error":            "cannot read file {file}",
		"duplicate_reference":        "reference-id {ref} is defined twice",
		"dangling_reference":         "reference-id {ref} is never defined",
		"unknown_schema":             "unknown schema {schema}",
		"unsupported_schema_version": "schema {schema} version {version} is not supported",
		"constructor_error":          "cannot build {schema}",
		"invalid_schema_tag":         "malformed schema tag",
		"duplicate_key":              "duplicate key",
		"limit_exceeded":             "input limit exceeded",
	},
	"ja": {
		"syntax_error":               "JSON の構文が不正です",
		"file_open_error":            "ファイル {file} を読み込めません",
		"duplicate_reference":        "参照 ID {ref} が重複して定義されています",
		"dangling_reference":         "参照 ID {ref} が定義されていません",
		"unknown_schema":             "未知のスキーマ {schema} です",
		"unsupported_schema_version": "スキーマ {schema} のバージョン {version} はサポートされていません",
		"constructor_error":          "{schema} を構築できません",
		"invalid_schema_tag":         "スキーマタグが不正です",
		"duplicate_key":              "キーが重複しています",
		"limit_exceeded":             "入力の上限を超えました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		return code
	}
	return expand(msg, data)
}

// expand replaces {name} placeholders; unknown placeholders are left as is.
func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// Languages lists the languages of the built-in dictionary.
func Languages() []string { return []string{"en", "ja"} }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dict[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
