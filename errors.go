package punq

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors describing programmer mistakes at the call site. They are
// wrapped in the typed errors below before being returned; match them with
// errors.Is.
var (
	// ErrServiceNil indicates a nil service key was passed.
	ErrServiceNil = errors.New("service cannot be nil")

	// ErrInstanceNil indicates WithInstance was given a nil value.
	ErrInstanceNil = errors.New("instance cannot be nil")

	// ErrImplementationNil indicates WithImplementation was given a nil value.
	ErrImplementationNil = errors.New("implementation cannot be nil")

	// ErrBothImplementationAndInstance indicates a registration supplied both
	// an implementation and an instance.
	ErrBothImplementationAndInstance = errors.New("cannot register both an implementation and an instance")

	// ErrNotConstructible indicates a self-registered key is not a
	// constructible type.
	ErrNotConstructible = errors.New("service is not constructible")

	// ErrArgumentsWithInstance indicates preset arguments were supplied for
	// an instance registration, which is never constructed.
	ErrArgumentsWithInstance = errors.New("cannot preset arguments for an instance")

	// ErrNameEmpty indicates WithName was given an empty name.
	ErrNameEmpty = errors.New("binding name cannot be empty")
)

var (
	_ error = InvalidRegistrationError{}
	_ error = MissingDependencyError{}
	_ error = InvalidForwardReferenceError{}
	_ error = TypeMismatchError{}
	_ error = MaxDepthError{}
)

// InvalidRegistrationError indicates a registration call is
// self-contradictory or its target is not constructible.
type InvalidRegistrationError struct {
	Key   ServiceKey
	Cause error
}

func (e InvalidRegistrationError) Error() string {
	if e.Key.IsZero() {
		return fmt.Sprintf("invalid registration: %v", e.Cause)
	}
	return fmt.Sprintf("invalid registration for %s: %v", e.Key, e.Cause)
}

func (e InvalidRegistrationError) Unwrap() error {
	return e.Cause
}

// MissingDependencyError indicates a required parameter, either the
// top-level key or a nested dependency, has no way to be satisfied.
type MissingDependencyError struct {
	// Key is the service key being resolved when the failure occurred.
	Key ServiceKey

	// Parameter names the unsatisfiable parameter. Empty when the key
	// itself has no registration.
	Parameter string

	// Owner is the constructible target declaring the parameter.
	Owner reflect.Type

	// Path is the chain of keys being resolved, outermost first. Purely
	// diagnostic; the innermost failure is the one surfaced.
	Path []string
}

func (e MissingDependencyError) Error() string {
	var b strings.Builder

	if e.Parameter == "" {
		fmt.Fprintf(&b, "no registration for %s", e.Key)
	} else {
		fmt.Fprintf(&b, "cannot satisfy parameter %q of %s (resolving %s)",
			e.Parameter, formatType(e.Owner), e.Key)
	}

	if len(e.Path) > 1 {
		fmt.Fprintf(&b, "\nresolution path: %s", strings.Join(e.Path, " -> "))
	}

	return b.String()
}

// InvalidForwardReferenceError indicates a deferred named reference could
// not be evaluated to a registered service at resolution time.
type InvalidForwardReferenceError struct {
	// Ref is the name that failed to evaluate.
	Ref string

	// Owner is the type declaring the reference.
	Owner reflect.Type
}

func (e InvalidForwardReferenceError) Error() string {
	return fmt.Sprintf("forward reference %q on %s does not evaluate to a registered service",
		e.Ref, formatType(e.Owner))
}

// TypeMismatchError indicates a supplied argument is not usable as the
// parameter it was matched to.
type TypeMismatchError struct {
	Parameter string
	Owner     reflect.Type
	Expected  reflect.Type
	Actual    reflect.Type
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("argument %q of %s: cannot use %s as %s",
		e.Parameter, formatType(e.Owner), formatType(e.Actual), formatType(e.Expected))
}

// MaxDepthError indicates resolution exceeded the recursion limit. This is
// how an undetected dependency cycle surfaces.
type MaxDepthError struct {
	Key      ServiceKey
	Depth    int
	MaxDepth int
}

func (e MaxDepthError) Error() string {
	return fmt.Sprintf("resolution of %s exceeded maximum depth %d (dependency cycle?)",
		e.Key, e.MaxDepth)
}

// unknownArgumentError reports a preset argument that binds to nothing.
func unknownArgumentError(name string, target reflect.Type) error {
	return fmt.Errorf("preset argument %q does not match any parameter of %s", name, formatType(target))
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + formatType(t.Elem())
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	case reflect.Func:
		return t.String()
	default:
		return t.String()
	}
}
