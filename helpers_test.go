package typegraph_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/reoring/typegraph"
)

// person is a minimal domain type with an optional link to another person.
type person struct {
	Name   string
	Friend *typegraph.Ref
}

func (p *person) fields() *typegraph.Fields {
	f := typegraph.NewFields().Set("name", typegraph.String(p.Name))
	if p.Friend != nil {
		f.Set("friend", typegraph.ObjectValue(p.Friend))
	}
	return f
}

type box struct {
	Size  float64
	Items []typegraph.Value
}

func (b *box) fields() *typegraph.Fields {
	return typegraph.NewFields().
		Set("size", typegraph.Double(b.Size)).
		Set("items", typegraph.List(b.Items...))
}

type fieldser interface{ fields() *typegraph.Fields }

func newPerson(f *typegraph.Fields) (any, error) {
	name, _ := f.String("name")
	p := &person{Name: name}
	if r, ok := f.Ref("friend"); ok {
		p.Friend = r
	}
	return p, nil
}

func newBox(f *typegraph.Fields) (any, error) {
	size, ok := f.Double("size")
	if !ok {
		return nil, fmt.Errorf("box: size is required")
	}
	items, _ := f.List("items")
	return &box{Size: size, Items: items}, nil
}

func testRegistry() *typegraph.Registry {
	reg := typegraph.NewRegistry()
	reg.MustRegister("Person", 1, newPerson)
	reg.MustRegister("Box", 1, newBox)
	return reg
}

// encode renders v back to JSON with default reserved keys. Objects already
// written once are emitted as reference markers.
func encode(v typegraph.Value) []byte {
	e := &encoder{seen: map[*typegraph.Ref]bool{}}
	e.value(v)
	return e.buf.Bytes()
}

type encoder struct {
	buf  bytes.Buffer
	seen map[*typegraph.Ref]bool
}

func (e *encoder) value(v typegraph.Value) {
	switch v.Kind() {
	case typegraph.KindNull:
		e.buf.WriteString("null")
	case typegraph.KindBool:
		b, _ := v.AsBool()
		e.buf.WriteString(strconv.FormatBool(b))
	case typegraph.KindInt:
		i, _ := v.AsInt()
		e.buf.WriteString(strconv.FormatInt(i, 10))
	case typegraph.KindDouble:
		f, _ := v.AsDouble()
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !bytes.ContainsAny([]byte(s), ".eE") {
			s += ".0"
		}
		e.buf.WriteString(s)
	case typegraph.KindString:
		s, _ := v.AsString()
		e.str(s)
	case typegraph.KindList:
		items, _ := v.AsList()
		e.buf.WriteByte('[')
		for i, it := range items {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.value(it)
		}
		e.buf.WriteByte(']')
	case typegraph.KindFields:
		f, _ := v.AsFields()
		e.fields(f, nil)
	case typegraph.KindObject:
		r := v.Ref()
		if r.ID() != "" && e.seen[r] {
			e.buf.WriteString(`{"` + typegraph.DefaultRefIDKey + `":`)
			e.str(r.ID())
			e.buf.WriteByte('}')
			return
		}
		e.seen[r] = true
		head := typegraph.NewFields().
			Set(typegraph.DefaultSchemaKey, typegraph.String(r.Tag().Name)).
			Set(typegraph.DefaultVersionKey, typegraph.Int(int64(r.Tag().Version)))
		if r.ID() != "" {
			head.Set(typegraph.DefaultRefIDKey, typegraph.String(r.ID()))
		}
		e.fields(head, r.Object().(fieldser).fields())
	}
}

func (e *encoder) fields(head, body *typegraph.Fields) {
	e.buf.WriteByte('{')
	n := 0
	emit := func(k string, v typegraph.Value) bool {
		if n > 0 {
			e.buf.WriteByte(',')
		}
		n++
		e.str(k)
		e.buf.WriteByte(':')
		e.value(v)
		return true
	}
	head.Range(emit)
	body.Range(emit)
	e.buf.WriteByte('}')
}

func (e *encoder) str(s string) {
	b, _ := json.Marshal(s)
	e.buf.Write(b)
}
