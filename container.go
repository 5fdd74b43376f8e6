package punq

import (
	"iter"
	"reflect"

	"github.com/google/uuid"

	"github.com/bobthemighty/punq/internal/reflection"
	"github.com/bobthemighty/punq/internal/registry"
)

// DefaultMaxDepth is the default resolution recursion limit.
const DefaultMaxDepth = 100

var containerType = reflect.TypeOf((*Container)(nil))

// Container is the inversion-of-control container: a registry mapping
// service keys to registrations, plus the resolver that builds object
// graphs from them.
//
// Containers hold no global state; callers create them explicitly and pass
// them around. A container is always resolvable as a service under its own
// type, so a constructible target may declare a *Container field to receive
// the active container and dispatch between implementations dynamically.
//
// Containers are meant to be built once and read many times. Register and
// Resolve calls are not synchronized; a container shared across goroutines
// must be externally serialized, or each goroutine given its own Child.
type Container struct {
	id       string
	parent   *Container
	store    *registry.Store
	analyzer *reflection.Analyzer
	maxDepth int

	// singletons caches constructed singleton instances per container.
	// Each container, child containers included, caches independently:
	// a dependency injected during construction (the active container
	// above all) must belong to the container that resolved it.
	singletons map[*Registration]any
}

// New creates an empty container.
func New(opts ...ContainerOption) *Container {
	options := &containerOptions{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt.applyContainer(options)
		}
	}

	c := &Container{
		id:         uuid.NewString(),
		store:      registry.NewStore(nil),
		analyzer:   reflection.NewAnalyzer(),
		maxDepth:   options.maxDepth,
		singletons: make(map[*Registration]any),
	}
	c.registerSelf()
	return c
}

// Child creates a child container layered over this one. The child sees
// every parent registration; registering in the child extends or shadows
// the parent without mutating it. The child resolves itself, not the
// parent, as the active container, and starts with an empty singleton
// cache: singletons resolved through the child never become the parent's.
func (c *Container) Child() *Container {
	child := &Container{
		id:         uuid.NewString(),
		parent:     c,
		store:      registry.NewStore(c.store),
		analyzer:   c.analyzer,
		maxDepth:   c.maxDepth,
		singletons: make(map[*Registration]any),
	}
	child.registerSelf()
	return child
}

// registerSelf makes the container resolvable under its own type.
func (c *Container) registerSelf() {
	reg := registry.NewRegistration(registry.TypeKey(containerType))
	reg.Instance = c
	reg.HasInstance = true
	reg.Scope = Singleton
	c.store.Append(reg)
}

// ID returns the container's unique identifier, for diagnostics.
func (c *Container) ID() string {
	return c.id
}

// Parent returns the parent container, or nil for a root container.
func (c *Container) Parent() *Container {
	return c.parent
}

// Register adds a registration for a service.
//
// The service key may be a reflect.Type, a string name, a
// pointer-to-interface sample such as (*MessageWriter)(nil), or any value
// whose dynamic type becomes the key.
//
// At most one of WithImplementation and WithInstance may be given. With
// neither, the key itself must be a constructible type and is used as its
// own implementation. Re-registering a key appends; the most recent
// registration becomes the default resolution target while all remain
// reachable through ResolveAll and Registrations.
func (c *Container) Register(service any, opts ...RegisterOption) (*Registration, error) {
	key, err := keyFor(service)
	if err != nil {
		return nil, InvalidRegistrationError{Cause: err}
	}

	options := &registerOptions{scope: Transient}
	for _, opt := range opts {
		if opt != nil {
			opt.applyRegister(options)
		}
	}

	reg, err := c.buildRegistration(key, options)
	if err != nil {
		return nil, err
	}

	if options.hasName && options.name == "" {
		return nil, InvalidRegistrationError{Key: key, Cause: ErrNameEmpty}
	}

	c.store.Append(reg)
	if options.hasName {
		c.store.BindName(options.name, key)
	}
	return reg, nil
}

// MustRegister is like Register but panics on error. Intended for
// bootstrap code where a bad registration is a programming error.
func (c *Container) MustRegister(service any, opts ...RegisterOption) *Registration {
	reg, err := c.Register(service, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

func (c *Container) buildRegistration(key registry.Key, options *registerOptions) (*Registration, error) {
	if options.hasImplementation && options.hasInstance {
		return nil, InvalidRegistrationError{Key: key, Cause: ErrBothImplementationAndInstance}
	}

	reg := registry.NewRegistration(key)
	reg.Scope = options.scope
	reg.Arguments = options.arguments

	switch {
	case options.hasInstance:
		if options.instance == nil {
			return nil, InvalidRegistrationError{Key: key, Cause: ErrInstanceNil}
		}
		if len(options.arguments) > 0 {
			return nil, InvalidRegistrationError{Key: key, Cause: ErrArgumentsWithInstance}
		}
		reg.Instance = options.instance
		reg.HasInstance = true
		reg.Scope = Singleton

	case options.hasImplementation:
		if err := c.setTarget(reg, options.implementation); err != nil {
			return nil, InvalidRegistrationError{Key: key, Cause: err}
		}

	default:
		// Self-registration: the key is its own implementation.
		if key.IsName() || !isConstructibleType(key.Type) {
			return nil, InvalidRegistrationError{Key: key, Cause: ErrNotConstructible}
		}
		if err := c.setTarget(reg, key.Type); err != nil {
			return nil, InvalidRegistrationError{Key: key, Cause: err}
		}
	}

	if err := c.validate(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// setTarget records the build strategy for an implementation value: a
// constructor function, a reflect.Type, or a struct sample.
func (c *Container) setTarget(reg *Registration, implementation any) error {
	if implementation == nil {
		return ErrImplementationNil
	}

	if t, ok := implementation.(reflect.Type); ok {
		switch {
		case t.Kind() == reflect.Struct:
			reg.Target = t
		case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
			reg.Target = t.Elem()
			reg.TargetPtr = true
		default:
			return ErrNotConstructible
		}
		return nil
	}

	v := reflect.ValueOf(implementation)
	t := v.Type()

	switch {
	case t.Kind() == reflect.Func:
		if v.IsNil() {
			return ErrImplementationNil
		}
		reg.Constructor = v
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		reg.Target = t.Elem()
		reg.TargetPtr = true
	case t.Kind() == reflect.Struct:
		reg.Target = t
	default:
		return ErrNotConstructible
	}
	return nil
}

// validate checks a registration eagerly so mistakes surface at Register
// time rather than deep inside a resolution.
func (c *Container) validate(reg *Registration) error {
	key := reg.Key

	if !reg.HasInstance {
		sig, err := c.analyzer.Analyze(reg.TargetType())
		if err != nil {
			return InvalidRegistrationError{Key: key, Cause: err}
		}

		// Preset names must bind to a parameter. Function targets have no
		// parameter names, so presets can never bind there.
		for name := range reg.Arguments {
			if _, ok := findParam(sig, name); !ok {
				return InvalidRegistrationError{
					Key:   key,
					Cause: unknownArgumentError(name, sig.Target),
				}
			}
		}
	}

	// The produced value must satisfy a type key.
	if !key.IsName() {
		produced := reg.ProducedType()
		if produced == nil || !produced.AssignableTo(key.Type) {
			return InvalidRegistrationError{
				Key: key,
				Cause: TypeMismatchError{
					Owner:    key.Type,
					Expected: key.Type,
					Actual:   produced,
				},
			}
		}
	}

	return nil
}

// HasRegistration reports whether the key has at least one registration in
// this container or any ancestor.
func (c *Container) HasRegistration(service any) bool {
	key, err := keyFor(service)
	if err != nil {
		return false
	}
	return c.store.Has(key)
}

// Registrations returns a lazy, restartable sequence of the registrations
// for a service, most recent first, walking the ancestor chain. The
// sequence is empty for unknown keys.
func (c *Container) Registrations(service any) iter.Seq[*Registration] {
	key, err := keyFor(service)
	if err != nil {
		return func(func(*Registration) bool) {}
	}
	return c.store.All(key)
}

// keyFor normalizes a service value into a ServiceKey.
func keyFor(service any) (registry.Key, error) {
	switch s := service.(type) {
	case nil:
		return registry.Key{}, ErrServiceNil
	case string:
		if s == "" {
			return registry.Key{}, ErrServiceNil
		}
		return registry.NameKey(s), nil
	case registry.Key:
		return s, nil
	case reflect.Type:
		return registry.TypeKey(s), nil
	default:
		t := reflect.TypeOf(service)
		if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface {
			return registry.TypeKey(t.Elem()), nil
		}
		return registry.TypeKey(t), nil
	}
}

// isConstructibleType reports whether a type can serve as its own
// implementation.
func isConstructibleType(t reflect.Type) bool {
	switch {
	case t == nil:
		return false
	case t.Kind() == reflect.Struct:
		return true
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return true
	default:
		return false
	}
}
