package punq

// ContainerOption configures a new container.
type ContainerOption interface {
	applyContainer(*containerOptions)
}

type containerOptions struct {
	maxDepth int
}

type containerOptionFunc func(*containerOptions)

func (f containerOptionFunc) applyContainer(opts *containerOptions) {
	f(opts)
}

// WithMaxDepth overrides the resolution recursion limit. The limit is the
// only guard against dependency cycles, which are otherwise undetected.
func WithMaxDepth(depth int) ContainerOption {
	return containerOptionFunc(func(opts *containerOptions) {
		if depth > 0 {
			opts.maxDepth = depth
		}
	})
}

// RegisterOption configures a registration.
type RegisterOption interface {
	applyRegister(*registerOptions)
}

type registerOptions struct {
	implementation    any
	hasImplementation bool
	instance          any
	hasInstance       bool
	scope             Scope
	name              string
	hasName           bool
	arguments         map[string]any
}

type registerOptionFunc func(*registerOptions)

func (f registerOptionFunc) applyRegister(opts *registerOptions) {
	f(opts)
}

// WithImplementation sets the constructible target for the registration: a
// struct sample (value or pointer), a reflect.Type, or a constructor
// function returning (T) or (T, error).
func WithImplementation(implementation any) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		opts.implementation = implementation
		opts.hasImplementation = true
	})
}

// WithInstance registers an already-constructed value. Instance
// registrations are never constructed: resolving them always returns the
// value unchanged, regardless of scope.
func WithInstance(instance any) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		opts.instance = instance
		opts.hasInstance = true
	})
}

// WithScope sets the registration scope.
func WithScope(scope Scope) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		opts.scope = scope
	})
}

// AsSingleton marks the registration as a singleton: the first successfully
// constructed instance is cached and returned for all later resolutions by
// the same container. Each container, children included, caches its own
// instance; a resolution carrying call-time arguments bypasses the cache.
func AsSingleton() RegisterOption {
	return WithScope(Singleton)
}

// WithArgument presets a named argument for the registration. Preset
// arguments are constant values reused on every resolution unless
// overridden by a call-time Arg of the same name. They bind to struct
// target fields by name; function targets have no parameter names.
func WithArgument(name string, value any) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		if opts.arguments == nil {
			opts.arguments = make(map[string]any)
		}
		opts.arguments[name] = value
	})
}

// WithArguments presets several named arguments at once.
func WithArguments(arguments map[string]any) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		if opts.arguments == nil {
			opts.arguments = make(map[string]any, len(arguments))
		}
		for name, value := range arguments {
			opts.arguments[name] = value
		}
	})
}

// WithName additionally binds the registration's key under a name, making
// it the target of ref tags and name lookups.
func WithName(name string) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		opts.name = name
		opts.hasName = true
	})
}

// ResolveOption configures a single Resolve call.
type ResolveOption interface {
	applyResolve(*resolveOptions)
}

type resolveOptions struct {
	arguments map[string]any
}

type resolveOptionFunc func(*resolveOptions)

func (f resolveOptionFunc) applyResolve(opts *resolveOptions) {
	f(opts)
}

// Arg supplies a call-time argument for the target being resolved. It
// takes precedence over a preset argument of the same name, which in turn
// takes precedence over the field's declared default. Call-time arguments
// apply only to the top-level target, never to nested dependencies.
func Arg(name string, value any) ResolveOption {
	return resolveOptionFunc(func(opts *resolveOptions) {
		if opts.arguments == nil {
			opts.arguments = make(map[string]any)
		}
		opts.arguments[name] = value
	})
}
