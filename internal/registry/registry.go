// Package registry implements the layered registration store backing a
// container: service keys, registration records, and the parent-linked
// scope structure that lets child containers extend or shadow their parent.
package registry

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/google/uuid"
)

// Key identifies a registered service. Exactly one of Type or Name is set:
// a type key (interface or concrete type) or an opaque string name.
type Key struct {
	Type reflect.Type
	Name string
}

// TypeKey returns a key for a service identified by type.
func TypeKey(t reflect.Type) Key {
	return Key{Type: t}
}

// NameKey returns a key for a service identified by an opaque name.
func NameKey(name string) Key {
	return Key{Name: name}
}

// IsName reports whether the key is a string name key.
func (k Key) IsName() bool {
	return k.Type == nil
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k.Type == nil && k.Name == ""
}

func (k Key) String() string {
	if k.IsName() {
		return fmt.Sprintf("%q", k.Name)
	}
	return k.Type.String()
}

// Scope controls instance caching for a registration.
type Scope int

const (
	// Transient creates a new instance on every resolution.
	Transient Scope = iota

	// Singleton caches the first successfully constructed instance in the
	// resolving container and returns it for that container's subsequent
	// resolutions.
	Singleton
)

// String returns the string representation of the Scope.
func (s Scope) String() string {
	switch s {
	case Transient:
		return "Transient"
	case Singleton:
		return "Singleton"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// IsValid checks if the scope is a known value.
func (s Scope) IsValid() bool {
	return s >= Transient && s <= Singleton
}

// Registration is the stored recipe for producing a value for a key.
// Exactly one build strategy is set: a pre-built instance, a struct target
// type, or a constructor function.
type Registration struct {
	// ID uniquely identifies this registration, for diagnostics.
	ID string

	// Key is the service key this registration satisfies.
	Key Key

	// Scope determines instance caching behavior.
	Scope Scope

	// Instance is the pre-built value when HasInstance is true. Instance
	// registrations are never constructed and always behave as singletons.
	Instance    any
	HasInstance bool

	// Target is the struct type to construct, when the build strategy is a
	// struct target. TargetPtr records whether resolution should produce a
	// pointer to the struct rather than a value.
	Target    reflect.Type
	TargetPtr bool

	// Constructor is the factory function, when the build strategy is a
	// function.
	Constructor reflect.Value

	// Arguments are the preset arguments captured at registration time,
	// keyed by parameter name. They are constant values, never resolved
	// further.
	Arguments map[string]any
}

// NewRegistration returns a registration with a fresh ID.
func NewRegistration(key Key) *Registration {
	return &Registration{ID: uuid.NewString(), Key: key}
}

// IsFunc reports whether the build strategy is a constructor function.
func (r *Registration) IsFunc() bool {
	return r.Constructor.IsValid()
}

// TargetType returns the type the resolver must introspect to construct
// this registration: the struct target or the constructor function type.
// It is nil for instance registrations.
func (r *Registration) TargetType() reflect.Type {
	if r.HasInstance {
		return nil
	}
	if r.IsFunc() {
		return r.Constructor.Type()
	}
	return r.Target
}

// ProducedType returns the concrete type resolution yields.
func (r *Registration) ProducedType() reflect.Type {
	switch {
	case r.HasInstance:
		return reflect.TypeOf(r.Instance)
	case r.IsFunc():
		return r.Constructor.Type().Out(0)
	case r.TargetPtr:
		return reflect.PointerTo(r.Target)
	default:
		return r.Target
	}
}

// Store is the layered registration store. A child store extends its
// parent: lookups see ancestor registrations first, in insertion order,
// followed by local ones, so the most recent local registration is the
// default resolution target. Appends never touch the parent.
type Store struct {
	parent  *Store
	entries map[Key][]*Registration
	names   map[string]Key
}

// NewStore creates a store. parent may be nil for a root store.
func NewStore(parent *Store) *Store {
	return &Store{
		parent:  parent,
		entries: make(map[Key][]*Registration),
		names:   make(map[string]Key),
	}
}

// Append adds a registration to the local layer. Type keys with a named
// type also bind that type's name, so deferred references can find them.
func (s *Store) Append(reg *Registration) {
	s.entries[reg.Key] = append(s.entries[reg.Key], reg)

	if reg.Key.IsName() {
		s.names[reg.Key.Name] = reg.Key
	} else if name := reg.Key.Type.Name(); name != "" {
		s.names[name] = reg.Key
	}
}

// BindName binds an additional name to a key in the local layer.
func (s *Store) BindName(name string, key Key) {
	s.names[name] = key
}

// Get returns all registrations for a key: ancestors first, in insertion
// order, then local ones. The returned slice is owned by the caller.
func (s *Store) Get(key Key) []*Registration {
	var out []*Registration
	if s.parent != nil {
		out = s.parent.Get(key)
	}
	return append(out, s.entries[key]...)
}

// Has reports whether any layer holds a registration for the key.
func (s *Store) Has(key Key) bool {
	if len(s.entries[key]) > 0 {
		return true
	}
	if s.parent != nil {
		return s.parent.Has(key)
	}
	return false
}

// All returns a lazy, restartable sequence of registrations for a key,
// most recent first: local registrations in reverse insertion order,
// then the parent's.
func (s *Store) All(key Key) iter.Seq[*Registration] {
	return func(yield func(*Registration) bool) {
		for scope := s; scope != nil; scope = scope.parent {
			local := scope.entries[key]
			for i := len(local) - 1; i >= 0; i-- {
				if !yield(local[i]) {
					return
				}
			}
		}
	}
}

// ResolveName looks up a name binding, innermost layer first.
func (s *Store) ResolveName(name string) (Key, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if key, ok := scope.names[name]; ok {
			return key, true
		}
	}
	return Key{}, false
}
