package typegraph

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DecodeFrom is the primary entry point. It consumes tokens from src, builds
// the value tree, constructs tagged objects through opt.Registry and resolves
// every reference before returning. On failure no partial tree is returned.
func DecodeFrom(src Source, opts ...DecodeOpt) (Value, error) {
	opt := lastOpt(opts)
	return newDecoder(EnforceSource(src, opt), opt).run()
}

// DecodeBytes decodes a complete JSON document held in memory. Errors carry
// Line and Column computed against data.
func DecodeBytes(data []byte, opts ...DecodeOpt) (Value, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		e := newError(CodeLimitExceeded, fmt.Sprintf("input of %d bytes exceeds limit of %d", len(data), opt.MaxBytes))
		e.Offset = opt.MaxBytes
		return Value{}, e
	}
	v, err := newDecoder(EnforceSource(JSONBytes(data), opt), opt).run()
	if err != nil {
		e := toError(err, -1)
		locate(e, data)
		return Value{}, e
	}
	return v, nil
}

// DecodeString decodes JSON text.
func DecodeString(text string, opts ...DecodeOpt) (Value, error) {
	return DecodeBytes([]byte(text), opts...)
}

// DecodeReader buffers r and decodes it like DecodeBytes. With MaxBytes set,
// at most MaxBytes+1 bytes are read.
func DecodeReader(r io.Reader, opts ...DecodeOpt) (Value, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		r = io.LimitReader(r, opt.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		e := newError(CodeFileOpen, "read input: "+err.Error())
		e.Cause = err
		return Value{}, e
	}
	return DecodeBytes(data, opt)
}

// DecodeFile reads and decodes the file at path. Open and read failures
// report CodeFileOpen; every error carries path in File.
func DecodeFile(path string, opts ...DecodeOpt) (Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return Value{}, fileError(path, err)
	}
	defer f.Close()
	v, err := DecodeReader(f, opts...)
	if err != nil {
		e := toError(err, -1)
		e.File = path
		return Value{}, e
	}
	return v, nil
}

func fileError(path string, err error) *Error {
	msg := err.Error()
	var pe *os.PathError
	if errors.As(err, &pe) {
		msg = pe.Op + ": " + pe.Err.Error()
	}
	e := newError(CodeFileOpen, "cannot open file: "+msg)
	e.File = path
	e.Cause = err
	return e
}

// Unmarshal decodes data into *dst. dst is written only on success.
func Unmarshal(data []byte, dst *Value, opts ...DecodeOpt) error {
	v, err := DecodeBytes(data, opts...)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// UnmarshalFile decodes the file at path into *dst. dst is written only on
// success.
func UnmarshalFile(path string, dst *Value, opts ...DecodeOpt) error {
	v, err := DecodeFile(path, opts...)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
