package punq

import "github.com/bobthemighty/punq/internal/registry"

// ServiceKey identifies a registered service: either a type or an opaque
// string name. Keys compare by value.
type ServiceKey = registry.Key

// Registration is the stored recipe for producing a value for a service
// key: exactly one of a pre-built instance, a struct target type, or a
// constructor function, plus the scope and preset arguments captured at
// registration time.
//
// Registrations are created only by Register and never mutated afterwards;
// singleton instances are cached by the resolving container, not on the
// registration.
type Registration = registry.Registration

// Scope controls instance caching for a registration.
type Scope = registry.Scope

const (
	// Transient creates a new instance on every resolution. This is the
	// default scope.
	Transient = registry.Transient

	// Singleton caches the first successfully constructed instance in the
	// resolving container and returns it for that container's subsequent
	// resolutions of the registration.
	Singleton = registry.Singleton
)
