package typegraph_test

import (
	"errors"
	"testing"

	"github.com/reoring/typegraph"
)

type shape struct{ fields *typegraph.Fields }

func newShape(f *typegraph.Fields) (any, error) { return &shape{fields: f.Clone()}, nil }

func rename(from, to string) typegraph.DowngradeFunc {
	return func(f *typegraph.Fields) (*typegraph.Fields, error) {
		f.Rename(from, to)
		return f, nil
	}
}

func TestDowngrade_ChainToOldestConstructor(t *testing.T) {
	reg := typegraph.NewRegistry()
	reg.MustRegister("Shape", 1, newShape)
	reg.MustRegisterDowngrade("Shape", 3, rename("a", "b"))
	reg.MustRegisterDowngrade("Shape", 2, rename("b", "c"))

	v, err := typegraph.DecodeString(`{"OTIO_SCHEMA":"Shape.3","a":5}`, typegraph.DecodeOpt{Registry: reg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := v.Ref()
	if r == nil || !r.Resolved() {
		t.Fatalf("expected constructed object, got %v", v.Kind())
	}
	if r.Tag() != (typegraph.SchemaTag{Name: "Shape", Version: 1}) {
		t.Fatalf("constructed at %v", r.Tag())
	}
	if r.WireTag() != (typegraph.SchemaTag{Name: "Shape", Version: 3}) || !r.Downgraded() {
		t.Fatalf("wire tag = %v", r.WireTag())
	}
	s := r.Object().(*shape)
	if got, _ := s.fields.Int("c"); got != 5 || s.fields.Has("a") || s.fields.Has("b") {
		t.Fatalf("transforms not applied in order: %v", s.fields.Keys())
	}
}

func TestDowngrade_ExactVersionSkipsTransforms(t *testing.T) {
	reg := typegraph.NewRegistry()
	reg.MustRegister("Shape", 1, newShape)
	reg.MustRegister("Shape", 2, newShape)
	reg.MustRegisterDowngrade("Shape", 2, func(*typegraph.Fields) (*typegraph.Fields, error) {
		return nil, errors.New("must not run")
	})
	v, err := typegraph.DecodeString(`{"OTIO_SCHEMA":"Shape","OTIO_SCHEMA_VERSION":2,"a":1}`, typegraph.DecodeOpt{Registry: reg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Ref().Downgraded() {
		t.Fatalf("exact match must not downgrade")
	}
}

func TestDowngrade_BrokenChainReportsReachedVersion(t *testing.T) {
	reg := typegraph.NewRegistry()
	reg.MustRegister("Shape", 1, newShape)
	reg.MustRegisterDowngrade("Shape", 3, rename("a", "b"))

	_, err := typegraph.DecodeString(`{"OTIO_SCHEMA":"Shape.3","a":5}`, typegraph.DecodeOpt{Registry: reg})
	e, ok := typegraph.AsError(err)
	if !ok || e.Code != typegraph.CodeUnsupportedSchemaVersion {
		t.Fatalf("expected unsupported_schema_version, got %v", err)
	}
	if e.Schema != "Shape" || e.Requested != 3 || e.Reached != 2 {
		t.Fatalf("schema=%q requested=%d reached=%d", e.Schema, e.Requested, e.Reached)
	}
}

func TestDowngrade_NoUpgradePath(t *testing.T) {
	reg := typegraph.NewRegistry()
	reg.MustRegister("Shape", 2, newShape)

	_, err := typegraph.DecodeString(`{"OTIO_SCHEMA":"Shape.1"}`, typegraph.DecodeOpt{Registry: reg})
	e, ok := typegraph.AsError(err)
	if !ok || e.Code != typegraph.CodeUnsupportedSchemaVersion {
		t.Fatalf("expected unsupported_schema_version, got %v", err)
	}
	if e.Requested != 1 || e.Reached != 1 {
		t.Fatalf("requested=%d reached=%d", e.Requested, e.Reached)
	}
}

func TestDowngrade_TransformErrorIsConstructorError(t *testing.T) {
	boom := errors.New("boom")
	reg := typegraph.NewRegistry()
	reg.MustRegister("Shape", 1, newShape)
	reg.MustRegisterDowngrade("Shape", 2, func(*typegraph.Fields) (*typegraph.Fields, error) { return nil, boom })

	_, err := typegraph.DecodeString(`[{"OTIO_SCHEMA":"Shape.2"}]`, typegraph.DecodeOpt{Registry: reg})
	if !typegraph.IsCode(err, typegraph.CodeConstructor) || !errors.Is(err, boom) {
		t.Fatalf("expected constructor_error wrapping boom, got %v", err)
	}
	if e, _ := typegraph.AsError(err); e.Path != "/0" {
		t.Fatalf("path = %q", e.Path)
	}
}

func TestDowngrade_UnknownSchema(t *testing.T) {
	_, err := typegraph.DecodeString(`{"x":[{"OTIO_SCHEMA":"Nope.1"}]}`, typegraph.DecodeOpt{Registry: testRegistry()})
	e, ok := typegraph.AsError(err)
	if !ok || e.Code != typegraph.CodeUnknownSchema {
		t.Fatalf("expected unknown_schema, got %v", err)
	}
	if e.Schema != "Nope" || e.Path != "/x/0" {
		t.Fatalf("schema=%q path=%q", e.Schema, e.Path)
	}
}
