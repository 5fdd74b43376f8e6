package punq

import (
	"fmt"
	"reflect"
)

// TypeOf returns the reflect.Type of T, including interface types, for use
// as a service key: TypeOf[MessageWriter]().
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register registers a service under the type T.
func Register[T any](c *Container, opts ...RegisterOption) (*Registration, error) {
	return c.Register(TypeOf[T](), opts...)
}

// Resolve resolves a service registered under the type T.
func Resolve[T any](c *Container, opts ...ResolveOption) (T, error) {
	var zero T

	instance, err := c.Resolve(TypeOf[T](), opts...)
	if err != nil {
		return zero, err
	}

	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("type assertion failed: expected %T, got %T", zero, instance)
	}
	return result, nil
}

// MustResolve resolves a service registered under the type T and panics
// on error.
func MustResolve[T any](c *Container, opts ...ResolveOption) T {
	result, err := Resolve[T](c, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %T: %v", *new(T), err))
	}
	return result
}

// ResolveAll resolves every registration for the type T, in registration
// order.
func ResolveAll[T any](c *Container) ([]T, error) {
	instances, err := c.ResolveAll(TypeOf[T]())
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(instances))
	for i, instance := range instances {
		result, ok := instance.(T)
		if !ok {
			return nil, fmt.Errorf("type assertion failed for item %d: expected %T, got %T",
				i, *new(T), instance)
		}
		results = append(results, result)
	}
	return results, nil
}
