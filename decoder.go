package typegraph

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	eng "github.com/reoring/typegraph/internal/engine"
)

type frameKind uint8

const (
	frameObject frameKind = iota
	frameArray
)

// frame is a container under construction. The decoder keeps frames on an
// explicit stack so input depth never turns into call depth.
type frame struct {
	kind   frameKind
	fields *Fields
	list   []Value
	key    string
	hasKey bool
	path   string // JSON Pointer of the container
	offset int64  // offset of the opening token
}

type decoder struct {
	src   Source
	reg   TypeRegistry
	keys  ReservedKeys
	log   *log.Logger
	refs  *refTable
	stack []frame
	root  Value
	done  bool
	built int
}

func newDecoder(src Source, opt DecodeOpt) *decoder {
	return &decoder{
		src:  src,
		reg:  opt.Registry,
		keys: opt.Keys,
		log:  opt.Logger,
		refs: newRefTable(),
	}
}

// run consumes the whole token stream. The first error aborts and nothing
// built so far is returned.
func (d *decoder) run() (Value, error) {
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if d.done {
					break
				}
				err = eng.UnexpectedEnd(d.src.Location())
			}
			return Value{}, toError(err, d.src.Location())
		}
		if d.done {
			return Value{}, d.syntaxAt(tok, "unexpected data after top-level value")
		}
		if err := d.step(tok); err != nil {
			return Value{}, err
		}
	}
	if err := d.refs.finalize(d.log); err != nil {
		return Value{}, err
	}
	if d.log != nil {
		d.log.Debug("document decoded", "objects", d.built, "references", d.refs.len())
	}
	return d.root, nil
}

func (d *decoder) step(tok Token) error {
	switch tok.Kind {
	case TokenBeginObject:
		return d.push(frame{kind: frameObject, fields: NewFields(), offset: tok.Offset}, tok)
	case TokenBeginArray:
		return d.push(frame{kind: frameArray, offset: tok.Offset}, tok)
	case TokenKey:
		top := d.top()
		if top == nil || top.kind != frameObject || top.hasKey {
			return d.syntaxAt(tok, "unexpected object key "+strconv.Quote(tok.String))
		}
		top.key, top.hasKey = tok.String, true
		return nil
	case TokenEndObject:
		fr, err := d.pop(frameObject, tok)
		if err != nil {
			return err
		}
		v, err := d.closeObject(fr)
		if err != nil {
			return err
		}
		return d.emit(v, tok)
	case TokenEndArray:
		fr, err := d.pop(frameArray, tok)
		if err != nil {
			return err
		}
		if fr.list == nil {
			fr.list = []Value{}
		}
		return d.emit(List(fr.list...), tok)
	case TokenString:
		return d.emit(String(tok.String), tok)
	case TokenNumber:
		v, err := parseNumber(tok.Number)
		if err != nil {
			return d.syntaxAt(tok, err.Error())
		}
		return d.emit(v, tok)
	case TokenBool:
		return d.emit(Bool(tok.Bool), tok)
	case TokenNull:
		return d.emit(Null(), tok)
	}
	return d.syntaxAt(tok, "unknown token "+tok.Kind.String())
}

func (d *decoder) top() *frame {
	if len(d.stack) == 0 {
		return nil
	}
	return &d.stack[len(d.stack)-1]
}

func (d *decoder) push(fr frame, tok Token) error {
	if top := d.top(); top != nil {
		if top.kind == frameObject && !top.hasKey {
			return d.syntaxAt(tok, "object value without key")
		}
		fr.path = childPath(top)
	}
	d.stack = append(d.stack, fr)
	return nil
}

func (d *decoder) pop(kind frameKind, tok Token) (frame, error) {
	top := d.top()
	if top == nil || top.kind != kind || top.hasKey {
		return frame{}, d.syntaxAt(tok, "unexpected "+tok.Kind.String())
	}
	fr := *top
	d.stack = d.stack[:len(d.stack)-1]
	return fr, nil
}

// emit folds a finished value into the enclosing container, or makes it the
// root when the stack is empty.
func (d *decoder) emit(v Value, tok Token) error {
	top := d.top()
	if top == nil {
		d.root, d.done = v, true
		return nil
	}
	switch top.kind {
	case frameArray:
		top.list = append(top.list, v)
	case frameObject:
		if !top.hasKey {
			return d.syntaxAt(tok, "object value without key")
		}
		top.fields.Set(top.key, v)
		top.hasKey = false
	}
	return nil
}

func childPath(top *frame) string {
	if top.kind == frameArray {
		return eng.JoinPointer(top.path, strconv.Itoa(len(top.list)))
	}
	return eng.JoinPointer(top.path, top.key)
}

// closeObject decides what a finished JSON object stands for: a plain field
// mapping, a reference to an object defined elsewhere, or a tagged object to
// construct.
func (d *decoder) closeObject(fr frame) (Value, error) {
	f, k := fr.fields, d.keys
	schemaV, hasSchema := f.Get(k.Schema)
	refV, hasRef := f.Get(k.RefID)

	if !hasSchema {
		if f.Has(k.Version) {
			return Value{}, d.tagError(fr, "key "+k.Version+" without "+k.Schema)
		}
		if !hasRef {
			return FieldsValue(f), nil
		}
		if f.Len() != 1 {
			return Value{}, d.tagError(fr, "key "+k.RefID+" mixed with other keys but no "+k.Schema)
		}
		id, err := d.refID(fr, refV)
		if err != nil {
			return Value{}, err
		}
		return ObjectValue(d.refs.declare(id)), nil
	}

	tag, err := d.schemaTag(fr, schemaV)
	if err != nil {
		return Value{}, err
	}
	var id string
	if hasRef {
		if id, err = d.refID(fr, refV); err != nil {
			return Value{}, err
		}
	}
	f.Delete(k.Schema)
	f.Delete(k.Version)
	f.Delete(k.RefID)

	obj, built, err := d.construct(tag, f)
	if err != nil {
		if id != "" {
			d.refs.fail(id)
		}
		return Value{}, d.at(err, fr)
	}
	d.built++
	if id == "" {
		return ObjectValue(&Ref{state: RefResolved, obj: obj, tag: built, wire: tag}), nil
	}
	r, err := d.refs.resolve(id, obj, built, tag)
	if err != nil {
		return Value{}, d.at(err, fr)
	}
	return ObjectValue(r), nil
}

// construct tries the exact tag first and falls back to the downgrade chain
// only when the registry reports ErrUnknownSchemaVersion.
func (d *decoder) construct(tag SchemaTag, f *Fields) (any, SchemaTag, error) {
	obj, err := d.reg.Construct(tag.Name, tag.Version, f)
	if err == nil {
		return checkObject(obj, tag)
	}
	if !errors.Is(err, ErrUnknownSchemaVersion) {
		return nil, tag, constructorError(tag, err)
	}
	built, f, err := downgrade(d.reg, tag, f, d.log)
	if err != nil {
		return nil, tag, err
	}
	obj, err = d.reg.Construct(built.Name, built.Version, f)
	if err != nil {
		return nil, built, constructorError(built, err)
	}
	return checkObject(obj, built)
}

func checkObject(obj any, tag SchemaTag) (any, SchemaTag, error) {
	if obj == nil {
		return nil, tag, constructorError(tag, errors.New("constructor returned nil"))
	}
	return obj, tag, nil
}

func constructorError(tag SchemaTag, err error) *Error {
	e := newError(CodeConstructor, tag.String()+": "+err.Error())
	e.Schema = tag.Name
	e.Version = tag.Version
	e.Cause = err
	return e
}

func (d *decoder) schemaTag(fr frame, v Value) (SchemaTag, error) {
	name, ok := v.AsString()
	if !ok || name == "" {
		return SchemaTag{}, d.tagError(fr, "key "+d.keys.Schema+" must be a non-empty string")
	}
	if vv, ok := fr.fields.Get(d.keys.Version); ok {
		n, ok := vv.AsInt()
		if !ok || n < 0 || n > math.MaxInt32 {
			return SchemaTag{}, d.tagError(fr, "key "+d.keys.Version+" must be a non-negative integer")
		}
		return SchemaTag{Name: name, Version: int(n)}, nil
	}
	// Combined "Name.Version" form.
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return SchemaTag{}, d.tagError(fr, fmt.Sprintf("schema %q carries no version", name))
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil || n < 0 {
		return SchemaTag{}, d.tagError(fr, fmt.Sprintf("schema %q carries no valid version", name))
	}
	return SchemaTag{Name: name[:i], Version: n}, nil
}

func (d *decoder) refID(fr frame, v Value) (string, error) {
	id, ok := v.AsString()
	if !ok || id == "" {
		return "", d.tagError(fr, "key "+d.keys.RefID+" must be a non-empty string")
	}
	return id, nil
}

func (d *decoder) tagError(fr frame, msg string) error {
	return d.at(newError(CodeInvalidTag, msg), fr)
}

// at attaches the position of fr to err when err carries none.
func (d *decoder) at(err error, fr frame) error {
	e, ok := AsError(err)
	if !ok {
		return err
	}
	if e.Path == "" {
		e.Path = eng.RootPointer(fr.path)
	}
	if e.Offset < 0 {
		e.Offset = fr.offset
	}
	return e
}

func (d *decoder) syntaxAt(tok Token, msg string) error {
	e := newError(CodeSyntax, msg)
	e.Offset = tok.Offset
	if e.Offset < 0 {
		e.Offset = d.src.Location()
	}
	return e
}

// parseNumber keeps integral literals that fit in int64 as KindInt and maps
// everything else to KindDouble.
func parseNumber(text string) (Value, error) {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if errors.Is(err, strconv.ErrRange) {
		return Value{}, fmt.Errorf("number %s is out of range for a double", text)
	}
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q", text)
	}
	return Double(f), nil
}
