package typegraph

import (
	"math"
	"reflect"
	"strconv"
)

// Kind enumerates the variants of Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindList
	KindFields
	// KindObject holds a shared handle to a constructed domain object.
	KindObject
	// KindReference is a handle whose target has not been defined yet. It is
	// only observable while a decode is in progress (for example by a
	// constructor receiving a forward reference).
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindFields:
		return "fields"
	case KindObject:
		return "object"
	case KindReference:
		return "reference"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// SchemaTag identifies the domain type and shape-version of an object.
type SchemaTag struct {
	Name    string
	Version int
}

// String renders the tag in the combined "Name.Version" form.
func (t SchemaTag) String() string { return t.Name + "." + strconv.Itoa(t.Version) }

// Value is a decoded JSON value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	list   []Value
	fields *Fields
	ref    *Ref
}

// Null returns the null Value.
func Null() Value { return Value{} }

func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Int(i int64) Value         { return Value{kind: KindInt, i: i} }
func Double(f float64) Value    { return Value{kind: KindDouble, f: f} }
func String(s string) Value     { return Value{kind: KindString, s: s} }
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// FieldsValue wraps a field mapping. A nil mapping becomes an empty one.
func FieldsValue(f *Fields) Value {
	if f == nil {
		f = NewFields()
	}
	return Value{kind: KindFields, fields: f}
}

// ObjectValue wraps a shared object handle. Values built from the same *Ref
// share the object; they never copy it.
func ObjectValue(r *Ref) Value {
	if r == nil {
		return Value{}
	}
	return Value{kind: KindObject, ref: r}
}

// Kind reports the variant. Handles that are still pending report
// KindReference.
func (v Value) Kind() Kind {
	if v.kind == KindObject && !v.ref.Resolved() {
		return KindReference
	}
	return v.kind
}

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsDouble accepts both KindDouble and KindInt.
func (v Value) AsDouble() (float64, bool) {
	switch v.kind {
	case KindDouble:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

func (v Value) AsFields() (*Fields, bool) { return v.fields, v.kind == KindFields }

// AsObject returns the constructed object of a resolved handle.
func (v Value) AsObject() (any, bool) {
	if v.kind != KindObject || !v.ref.Resolved() {
		return nil, false
	}
	return v.ref.Object(), true
}

// Ref returns the shared handle of KindObject and KindReference values.
func (v Value) Ref() *Ref {
	if v.kind != KindObject {
		return nil
	}
	return v.ref
}

// Interface converts v to plain Go values: nil, bool, int64, float64, string,
// []any, map[string]any, or the constructed object.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, it := range v.list {
			out[i] = it.Interface()
		}
		return out
	case KindFields:
		out := make(map[string]any, v.fields.Len())
		v.fields.Range(func(k string, fv Value) bool {
			out[k] = fv.Interface()
			return true
		})
		return out
	case KindObject:
		return v.ref.Object()
	}
	return nil
}

// Equal reports structural equality. Objects are equal when they share a
// handle, or when both are resolved with the same tag and deeply equal
// payloads.
func (v Value) Equal(o Value) bool { return Equal(v, o) }

// Equal reports whether a and b are structurally equal.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindDouble:
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindFields:
		return a.fields.Equal(b.fields)
	case KindObject:
		if a.ref == b.ref {
			return true
		}
		if a.ref.ID() != b.ref.ID() || a.ref.Tag() != b.ref.Tag() {
			return false
		}
		return reflect.DeepEqual(a.ref.Object(), b.ref.Object())
	}
	return false
}
