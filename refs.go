package typegraph

import (
	"strconv"

	"github.com/charmbracelet/log"
)

// RefState is the lifecycle state of a reference handle.
type RefState uint8

const (
	RefPending RefState = iota
	RefResolved
	RefFailed
)

func (s RefState) String() string {
	switch s {
	case RefPending:
		return "pending"
	case RefResolved:
		return "resolved"
	case RefFailed:
		return "failed"
	}
	return "unknown"
}

// Ref is the shared handle behind KindObject values. Every position in the
// document that names the same reference-id holds the same *Ref, so the
// object it points to is shared rather than copied. Constructors that
// receive a forward reference may keep the *Ref; it is resolved by the time
// the decode call returns successfully.
type Ref struct {
	id    string
	state RefState
	obj   any
	tag   SchemaTag // tag the object was constructed at
	wire  SchemaTag // tag found in the document
}

// NewRef returns a resolved anonymous handle for obj, for callers that build
// Values by hand.
func NewRef(obj any, tag SchemaTag) *Ref {
	return &Ref{state: RefResolved, obj: obj, tag: tag, wire: tag}
}

// ID is the document-local reference-id; empty for anonymous objects.
func (r *Ref) ID() string {
	if r == nil {
		return ""
	}
	return r.id
}

func (r *Ref) State() RefState {
	if r == nil {
		return RefPending
	}
	return r.state
}

func (r *Ref) Resolved() bool { return r != nil && r.state == RefResolved }

// Object returns the constructed object, or nil while unresolved.
func (r *Ref) Object() any {
	if !r.Resolved() {
		return nil
	}
	return r.obj
}

// Tag is the schema tag the object was constructed at (after downgrading).
func (r *Ref) Tag() SchemaTag {
	if r == nil {
		return SchemaTag{}
	}
	return r.tag
}

// WireTag is the schema tag as written in the document.
func (r *Ref) WireTag() SchemaTag {
	if r == nil {
		return SchemaTag{}
	}
	return r.wire
}

// Downgraded reports whether the object was constructed at an older version
// than the one written.
func (r *Ref) Downgraded() bool { return r.Tag() != r.WireTag() }

// refTable maps reference-ids to handles for one decode call.
type refTable struct {
	entries map[string]*Ref
	order   []string // first appearance, for deterministic finalize errors
}

func newRefTable() *refTable { return &refTable{entries: map[string]*Ref{}} }

func (t *refTable) entry(id string) *Ref {
	r, ok := t.entries[id]
	if !ok {
		r = &Ref{id: id}
		t.entries[id] = r
		t.order = append(t.order, id)
	}
	return r
}

// declare returns the handle for id, registering a pending entry the first
// time id is seen. Already resolved handles are returned as is.
func (t *refTable) declare(id string) *Ref { return t.entry(id) }

// resolve binds obj to id. Only pending entries can be resolved; a second
// definition of the same id fails with CodeDuplicateReference.
func (t *refTable) resolve(id string, obj any, tag, wire SchemaTag) (*Ref, error) {
	r := t.entry(id)
	if r.state != RefPending {
		e := newError(CodeDuplicateReference, "reference-id "+strconv.Quote(id)+" is already defined")
		e.RefID = id
		e.Schema = wire.Name
		e.Version = wire.Version
		return nil, e
	}
	r.state = RefResolved
	r.obj = obj
	r.tag = tag
	r.wire = wire
	return r, nil
}

// fail marks a pending entry whose defining object could not be built.
func (t *refTable) fail(id string) {
	if r := t.entry(id); r.state == RefPending {
		r.state = RefFailed
	}
}

// finalize requires every entry to be resolved; the first one that is not
// is reported as a dangling reference.
func (t *refTable) finalize(logger *log.Logger) error {
	for _, id := range t.order {
		r := t.entries[id]
		if r.state != RefResolved {
			e := newError(CodeDanglingReference, "reference-id "+strconv.Quote(id)+" is never defined")
			e.RefID = id
			return e
		}
	}
	if logger != nil && len(t.order) > 0 {
		logger.Debug("references resolved", "count", len(t.order))
	}
	return nil
}

func (t *refTable) len() int { return len(t.order) }
