package typegraph

// Fields is an insertion-ordered mapping from string keys to Values. Setting
// an existing key replaces its value in place and keeps its position. A nil
// *Fields behaves as an empty mapping for all read operations.
type Fields struct {
	keys  []string
	vals  []Value
	index map[string]int
}

// NewFields returns an empty mapping.
func NewFields() *Fields { return &Fields{index: map[string]int{}} }

// FieldsOf builds a mapping from alternating key/value pairs.
// It panics if a key is not a string or a value is not a Value.
func FieldsOf(kv ...any) *Fields {
	f := NewFields()
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i].(string), kv[i+1].(Value))
	}
	return f
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.keys...)
}

func (f *Fields) Get(key string) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	i, ok := f.index[key]
	if !ok {
		return Value{}, false
	}
	return f.vals[i], true
}

func (f *Fields) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Set stores v under key and returns f for chaining. A nil receiver cannot
// be written through, so Set allocates a new mapping for it and returns that.
func (f *Fields) Set(key string, v Value) *Fields {
	if f == nil {
		f = NewFields()
	}
	if f.index == nil {
		f.index = map[string]int{}
	}
	if i, ok := f.index[key]; ok {
		f.vals[i] = v
		return f
	}
	f.index[key] = len(f.keys)
	f.keys = append(f.keys, key)
	f.vals = append(f.vals, v)
	return f
}

// Delete removes key and reports whether it was present.
func (f *Fields) Delete(key string) bool {
	if f == nil {
		return false
	}
	i, ok := f.index[key]
	if !ok {
		return false
	}
	f.keys = append(f.keys[:i], f.keys[i+1:]...)
	f.vals = append(f.vals[:i], f.vals[i+1:]...)
	delete(f.index, key)
	for j := i; j < len(f.keys); j++ {
		f.index[f.keys[j]] = j
	}
	return true
}

// Rename moves the value stored under from to to, keeping its position. An
// existing entry under to is removed first. It reports whether from existed.
func (f *Fields) Rename(from, to string) bool {
	if f == nil || from == to {
		return f.Has(from)
	}
	i, ok := f.index[from]
	if !ok {
		return false
	}
	if f.Has(to) {
		f.Delete(to)
		i = f.index[from]
	}
	delete(f.index, from)
	f.keys[i] = to
	f.index[to] = i
	return true
}

// Range calls fn for each entry in order until fn returns false.
func (f *Fields) Range(fn func(key string, v Value) bool) {
	if f == nil {
		return
	}
	for i, k := range f.keys {
		if !fn(k, f.vals[i]) {
			return
		}
	}
}

// Clone returns a shallow copy: nested containers and object handles are
// shared with f.
func (f *Fields) Clone() *Fields {
	out := NewFields()
	f.Range(func(k string, v Value) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// Equal compares entries in order.
func (f *Fields) Equal(o *Fields) bool {
	if f.Len() != o.Len() {
		return false
	}
	for i := 0; i < f.Len(); i++ {
		if f.keys[i] != o.keys[i] || !Equal(f.vals[i], o.vals[i]) {
			return false
		}
	}
	return true
}

// ---- typed readers for constructors ----

func (f *Fields) String(key string) (string, bool) {
	v, _ := f.Get(key)
	return v.AsString()
}

func (f *Fields) Int(key string) (int64, bool) {
	v, _ := f.Get(key)
	return v.AsInt()
}

// Double accepts integer values too.
func (f *Fields) Double(key string) (float64, bool) {
	v, _ := f.Get(key)
	return v.AsDouble()
}

func (f *Fields) Bool(key string) (bool, bool) {
	v, _ := f.Get(key)
	return v.AsBool()
}

func (f *Fields) List(key string) ([]Value, bool) {
	v, _ := f.Get(key)
	return v.AsList()
}

func (f *Fields) Fields(key string) (*Fields, bool) {
	v, _ := f.Get(key)
	return v.AsFields()
}

// Object returns the constructed object stored under key. Pending
// references report false; use Ref to keep a handle to them.
func (f *Fields) Object(key string) (any, bool) {
	v, _ := f.Get(key)
	return v.AsObject()
}

// Ref returns the shared handle stored under key, resolved or not.
func (f *Fields) Ref(key string) (*Ref, bool) {
	v, _ := f.Get(key)
	r := v.Ref()
	return r, r != nil
}

// IsNull reports whether key is absent or explicitly null.
func (f *Fields) IsNull(key string) bool {
	v, _ := f.Get(key)
	return v.IsNull()
}
