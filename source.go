package typegraph

import (
	"io"
	"sync"

	eng "github.com/reoring/typegraph/internal/engine"
	jsonsrc "github.com/reoring/typegraph/source/json"
)

// Token kinds are shared with the engine so drivers and the decoder speak the
// same event vocabulary without adapters.
type (
	TokenKind = eng.Kind
	Token     = eng.Token
)

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// Source is the parser event stream consumed by the decoder. NextToken
// returns io.EOF once the single top-level value has been fully produced and
// Location reports the current byte offset (-1 if unknown).
type Source interface {
	NextToken() (Token, error)
	Location() int64
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The default
// implementation is based on encoding/json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default encoding/json-backed driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the driver used by JSONReader and JSONBytes.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// defaultJSONDriver wraps the encoding/json implementation.
type defaultJSONDriver struct{}

func (defaultJSONDriver) NewReader(r io.Reader) Source { return jsonsrc.NewReader(r) }
func (defaultJSONDriver) NewBytes(b []byte) Source     { return jsonsrc.NewBytes(b) }
func (defaultJSONDriver) Name() string                 { return "encoding/json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// EnforceSource wraps a Source with runtime enforcement of the duplicate key
// policy, nesting depth and consumed bytes configured in opt. Duplicate keys
// under Warn are reported to opt.Logger.
func EnforceSource(s Source, opt DecodeOpt) Source {
	eo := enforceOptions(opt)
	if !eo.Enabled() {
		return s
	}
	return eng.WrapWithEnforcement(s, eo)
}

func enforceOptions(opt DecodeOpt) eng.EnforceOptions {
	eo := eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	}
	if l := opt.Logger; l != nil {
		eo.IssueSink = func(si eng.SimpleIssue) {
			l.Warn(si.Message, "code", si.Code, "path", si.Path)
		}
	}
	return eo
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Fail:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
