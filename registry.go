package typegraph

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownSchemaVersion is returned by TypeRegistry.Construct when no
// constructor exists for the exact (name, version) pair. The decoder treats it
// as a request to run the downgrade pipeline rather than as a failure.
var ErrUnknownSchemaVersion = errors.New("typegraph: unknown schema version")

// ErrNoDowngrade is returned by TypeRegistry.ApplyDowngrade when no transform
// is registered for the pair.
var ErrNoDowngrade = errors.New("typegraph: no downgrade registered")

// Constructor builds a domain object from the fields of a tagged JSON object.
// Reserved keys have already been removed from f.
type Constructor func(f *Fields) (any, error)

// DowngradeFunc maps the fields of version N to the shape of version N-1. It
// may modify and return f.
type DowngradeFunc func(f *Fields) (*Fields, error)

// TypeRegistry is the lookup service the decoder consumes. Implementations
// must be safe for concurrent reads when shared by concurrent decodes.
type TypeRegistry interface {
	// HasSchema reports whether any constructor or downgrade exists for name.
	HasSchema(name string) bool
	HasConstructor(name string, version int) bool
	// Construct returns ErrUnknownSchemaVersion when no constructor matches.
	Construct(name string, version int, f *Fields) (any, error)
	HasDowngrade(name string, version int) bool
	// ApplyDowngrade runs the transform registered at (name, version).
	ApplyDowngrade(name string, version int, f *Fields) (*Fields, error)
}

// Registry is an in-memory TypeRegistry keyed by (name, version).
type Registry struct {
	mu         sync.RWMutex
	ctors      map[SchemaTag]Constructor
	downgrades map[SchemaTag]DowngradeFunc
	names      map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		ctors:      map[SchemaTag]Constructor{},
		downgrades: map[SchemaTag]DowngradeFunc{},
		names:      map[string]struct{}{},
	}
}

func validTag(name string, version int) error {
	if name == "" {
		return errors.New("typegraph: empty schema name")
	}
	if version < 0 {
		return fmt.Errorf("typegraph: negative version %d for schema %q", version, name)
	}
	return nil
}

// Register adds a constructor for name at version. Registering the same pair
// twice is an error.
func (r *Registry) Register(name string, version int, c Constructor) error {
	if err := validTag(name, version); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("typegraph: nil constructor for %s.%d", name, version)
	}
	tag := SchemaTag{Name: name, Version: version}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[tag]; ok {
		return fmt.Errorf("typegraph: constructor for %s already registered", tag)
	}
	r.ctors[tag] = c
	r.names[name] = struct{}{}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, version int, c Constructor) {
	if err := r.Register(name, version, c); err != nil {
		panic(err)
	}
}

// RegisterDowngrade adds the transform from version to version-1 for name.
// version must be at least 1.
func (r *Registry) RegisterDowngrade(name string, version int, fn DowngradeFunc) error {
	if err := validTag(name, version); err != nil {
		return err
	}
	if version == 0 {
		return fmt.Errorf("typegraph: cannot downgrade %s below version 0", name)
	}
	if fn == nil {
		return fmt.Errorf("typegraph: nil downgrade for %s.%d", name, version)
	}
	tag := SchemaTag{Name: name, Version: version}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.downgrades[tag]; ok {
		return fmt.Errorf("typegraph: downgrade for %s already registered", tag)
	}
	r.downgrades[tag] = fn
	r.names[name] = struct{}{}
	return nil
}

// MustRegisterDowngrade is like RegisterDowngrade but panics on error.
func (r *Registry) MustRegisterDowngrade(name string, version int, fn DowngradeFunc) {
	if err := r.RegisterDowngrade(name, version, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) HasSchema(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

func (r *Registry) HasConstructor(name string, version int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[SchemaTag{Name: name, Version: version}]
	return ok
}

func (r *Registry) Construct(name string, version int, f *Fields) (any, error) {
	r.mu.RLock()
	c, ok := r.ctors[SchemaTag{Name: name, Version: version}]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownSchemaVersion
	}
	return c(f)
}

func (r *Registry) HasDowngrade(name string, version int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.downgrades[SchemaTag{Name: name, Version: version}]
	return ok
}

func (r *Registry) ApplyDowngrade(name string, version int, f *Fields) (*Fields, error) {
	r.mu.RLock()
	fn, ok := r.downgrades[SchemaTag{Name: name, Version: version}]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNoDowngrade
	}
	return fn(f)
}

// Schemas lists the registered schema names in lexical order.
func (r *Registry) Schemas() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Versions lists the constructor versions registered for name, ascending.
func (r *Registry) Versions(name string) []int { return r.versions(name, true) }

// DowngradeVersions lists the versions that have a downgrade transform.
func (r *Registry) DowngradeVersions(name string) []int { return r.versions(name, false) }

func (r *Registry) versions(name string, ctors bool) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []int
	if ctors {
		for t := range r.ctors {
			if t.Name == name {
				out = append(out, t.Version)
			}
		}
	} else {
		for t := range r.downgrades {
			if t.Name == name {
				out = append(out, t.Version)
			}
		}
	}
	sort.Ints(out)
	return out
}

// emptyRegistry backs decodes configured without a Registry.
type emptyRegistry struct{}

func (emptyRegistry) HasSchema(string) bool                       { return false }
func (emptyRegistry) HasConstructor(string, int) bool             { return false }
func (emptyRegistry) Construct(string, int, *Fields) (any, error) { return nil, ErrUnknownSchemaVersion }
func (emptyRegistry) HasDowngrade(string, int) bool               { return false }
func (emptyRegistry) ApplyDowngrade(string, int, *Fields) (*Fields, error) {
	return nil, ErrNoDowngrade
}
