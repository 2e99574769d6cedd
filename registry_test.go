package typegraph_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/reoring/typegraph"
)

func identity(f *typegraph.Fields) (*typegraph.Fields, error) { return f, nil }

func TestRegistry_RegisterRejectsDuplicatesAndInvalid(t *testing.T) {
	reg := typegraph.NewRegistry()
	if err := reg.Register("A", 1, newPerson); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register("A", 1, newPerson); err == nil {
		t.Fatalf("expected duplicate constructor error")
	}
	if err := reg.Register("", 1, newPerson); err == nil {
		t.Fatalf("expected empty name error")
	}
	if err := reg.Register("A", -1, newPerson); err == nil {
		t.Fatalf("expected negative version error")
	}
	if err := reg.Register("A", 2, nil); err == nil {
		t.Fatalf("expected nil constructor error")
	}
	if err := reg.RegisterDowngrade("A", 0, identity); err == nil {
		t.Fatalf("expected error for downgrade below version 0")
	}
	if err := reg.RegisterDowngrade("A", 2, identity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.RegisterDowngrade("A", 2, identity); err == nil {
		t.Fatalf("expected duplicate downgrade error")
	}
}

func TestRegistry_Lookups(t *testing.T) {
	reg := typegraph.NewRegistry()
	reg.MustRegister("Clip", 1, newBox)
	reg.MustRegister("Clip", 3, newBox)
	reg.MustRegisterDowngrade("Clip", 2, identity)
	reg.MustRegisterDowngrade("Gap", 2, identity)

	if !reg.HasSchema("Gap") {
		t.Fatalf("a downgrade alone should make the schema known")
	}
	if reg.HasConstructor("Clip", 2) || !reg.HasConstructor("Clip", 3) {
		t.Fatalf("HasConstructor mismatch")
	}
	if got := reg.Schemas(); !reflect.DeepEqual(got, []string{"Clip", "Gap"}) {
		t.Fatalf("Schemas() = %v", got)
	}
	if got := reg.Versions("Clip"); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Fatalf("Versions() = %v", got)
	}
	if got := reg.DowngradeVersions("Clip"); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("DowngradeVersions() = %v", got)
	}
	if _, err := reg.Construct("Clip", 2, typegraph.NewFields()); !errors.Is(err, typegraph.ErrUnknownSchemaVersion) {
		t.Fatalf("expected ErrUnknownSchemaVersion, got %v", err)
	}
	if _, err := reg.ApplyDowngrade("Clip", 3, typegraph.NewFields()); !errors.Is(err, typegraph.ErrNoDowngrade) {
		t.Fatalf("expected ErrNoDowngrade, got %v", err)
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	reg := typegraph.NewRegistry()
	reg.MustRegister("A", 1, newPerson)
	reg.MustRegister("A", 1, newPerson)
}
