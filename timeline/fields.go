package timeline

import (
	"fmt"

	"github.com/reoring/typegraph"
)

func present(f *typegraph.Fields, key string) (typegraph.Value, bool) {
	v, ok := f.Get(key)
	return v, ok && !v.IsNull()
}

func optString(f *typegraph.Fields, key string) (string, error) {
	v, ok := present(f, key)
	if !ok {
		return "", nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %s", key, v.Kind())
	}
	return s, nil
}

func number(f *typegraph.Fields, key string) (float64, error) {
	v, ok := present(f, key)
	if !ok {
		return 0, fmt.Errorf("%s: required", key)
	}
	n, ok := v.AsDouble()
	if !ok {
		return 0, fmt.Errorf("%s: expected number, got %s", key, v.Kind())
	}
	return n, nil
}

// metadata returns the free-form metadata mapping, empty when absent.
func metadata(f *typegraph.Fields) (*typegraph.Fields, error) {
	v, ok := present(f, "metadata")
	if !ok {
		return typegraph.NewFields(), nil
	}
	m, ok := v.AsFields()
	if !ok {
		return nil, fmt.Errorf("metadata: expected mapping, got %s", v.Kind())
	}
	return m, nil
}

func asObject[T any](key string, v typegraph.Value) (T, error) {
	var zero T
	obj, ok := v.AsObject()
	if !ok {
		if v.Kind() == typegraph.KindReference {
			return zero, fmt.Errorf("%s: reference %q is not defined before use", key, v.Ref().ID())
		}
		return zero, fmt.Errorf("%s: expected object, got %s", key, v.Kind())
	}
	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected object %s", key, v.Ref().Tag())
	}
	return t, nil
}

func optional[T any](f *typegraph.Fields, key string) (T, error) {
	v, ok := present(f, key)
	if !ok {
		var zero T
		return zero, nil
	}
	return asObject[T](key, v)
}

func required[T any](f *typegraph.Fields, key string) (T, error) {
	v, ok := present(f, key)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: required", key)
	}
	return asObject[T](key, v)
}

// objects reads a list of already defined objects of type T.
func objects[T any](f *typegraph.Fields, key string) ([]T, error) {
	v, ok := present(f, key)
	if !ok {
		return nil, nil
	}
	items, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("%s: expected list, got %s", key, v.Kind())
	}
	out := make([]T, 0, len(items))
	for i, it := range items {
		t, err := asObject[T](fmt.Sprintf("%s[%d]", key, i), it)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// optRef keeps the handle itself so forward references stay usable.
func optRef(f *typegraph.Fields, key string) (*typegraph.Ref, error) {
	v, ok := present(f, key)
	if !ok {
		return nil, nil
	}
	r := v.Ref()
	if r == nil {
		return nil, fmt.Errorf("%s: expected object, got %s", key, v.Kind())
	}
	return r, nil
}

func refs(f *typegraph.Fields, key string) ([]*typegraph.Ref, error) {
	v, ok := present(f, key)
	if !ok {
		return nil, nil
	}
	items, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("%s: expected list, got %s", key, v.Kind())
	}
	out := make([]*typegraph.Ref, 0, len(items))
	for i, it := range items {
		r := it.Ref()
		if r == nil {
			return nil, fmt.Errorf("%s[%d]: expected object, got %s", key, i, it.Kind())
		}
		out = append(out, r)
	}
	return out, nil
}
