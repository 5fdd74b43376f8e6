// Package punq provides an inversion-of-control container for Go
// applications: a registry mapping service keys to construction recipes,
// and a resolver that builds fully-wired object graphs on demand by
// recursively satisfying constructor dependencies.
//
// # Overview
//
// The container lets application code compose objects without each object
// knowing how its dependencies are built:
//   - Register interfaces against implementations, pre-built instances, or
//     factory functions
//   - Automatic recursive dependency resolution
//   - Transient and Singleton scopes
//   - Preset arguments fixed at registration time, overridable per call
//   - Multiple registrations per key, resolvable as a group or as a chain
//   - Child containers that extend or shadow their parent
//   - No global state: every container is an explicit, caller-owned value
//
// # Basic Usage
//
// Create a container, register services, resolve:
//
//	c := punq.New()
//	c.MustRegister(punq.TypeOf[ConfigReader](), punq.WithImplementation(&EnvConfigReader{}))
//	c.MustRegister(punq.TypeOf[Greeter](), punq.WithImplementation(&ConsoleGreeter{}))
//
//	greeter, err := punq.Resolve[Greeter](c)
//
// # Constructible Targets
//
// A registration's implementation may be:
//
//   - A struct sample or type. Its exported fields are the constructor
//     parameters: each field is filled by name from call-time and preset
//     arguments, or by type from other registrations. Field tags refine
//     this: `optional:"true"` omits the field when unresolvable,
//     `default:"value"` declares a literal default, `name:"arg"` renames
//     the parameter, `ref:"service"` defers a named reference to
//     resolution time, and `inject:"-"` excludes the field.
//   - A constructor function, func(deps...) T or func(deps...) (T, error).
//     Parameters are matched by type; Go reflection exposes no parameter
//     names, so named arguments do not apply to functions.
//   - A pre-built instance, returned unchanged on every resolution.
//
// # Argument Precedence
//
// Each parameter takes the first value available from: a call-time
// punq.Arg of the same name, a registration-time preset, the active
// container for *punq.Container parameters, a deferred named reference,
// the group of registrations for a slice parameter's element type, a
// recursive resolution of the parameter's registered type, and finally
// the declared default. A required parameter with no value fails the
// whole resolution with MissingDependencyError.
//
// # Scopes
//
// Registrations are Transient by default: every resolution constructs a
// new instance. AsSingleton caches the first successfully constructed
// instance in the resolving container; each container, child containers
// included, keeps its own singleton cache, and a resolution carrying
// call-time arguments neither reads nor writes it. Pre-built instances
// always behave as singletons. Within a single Resolve call, a transient
// dependency shared by several parts of the graph is constructed once.
//
// # Child Containers
//
// Child() layers a new container over an existing one. The child sees all
// parent registrations, and registering in the child shadows or extends
// the parent without mutating it. This suits request-scoped overrides in
// servers.
//
// # Concurrency
//
// Containers are intended to be built once and read many times.
// Registration and resolution are not synchronized; callers that share a
// container across goroutines must serialize access to it. The chi
// integration sidesteps this by deriving a container per request.
package punq
