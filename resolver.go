package punq

import (
	"reflect"
	"strings"

	"github.com/bobthemighty/punq/internal/reflection"
	"github.com/bobthemighty/punq/internal/registry"
)

// resolutionContext carries the state of one top-level Resolve or
// ResolveAll call: recursion depth, the chain of keys being resolved,
// the per-registration instance cache, and the chain cursors that drive
// chain-of-collaborators resolution.
type resolutionContext struct {
	container *Container
	depth     int
	path      []string

	// cursors maps a key to the registration index its next resolution
	// should use, set while an outer registration for the same key is
	// constructing.
	cursors map[registry.Key]int

	// instances shares constructed values within a single resolution, so
	// a transient dependency appearing twice in one graph is built once.
	instances map[*Registration]any
}

func (c *Container) newResolutionContext() *resolutionContext {
	return &resolutionContext{
		container: c,
		cursors:   make(map[registry.Key]int),
		instances: make(map[*Registration]any),
	}
}

func (ctx *resolutionContext) enter(key registry.Key) {
	ctx.depth++
	ctx.path = append(ctx.path, key.String())
}

func (ctx *resolutionContext) exit() {
	ctx.depth--
	ctx.path = ctx.path[:len(ctx.path)-1]
}

func (ctx *resolutionContext) snapshotPath() []string {
	return append([]string(nil), ctx.path...)
}

// Resolve produces an instance for a service key.
//
// The most recent registration for the key is the resolution target. Its
// constructor parameters are satisfied, in precedence order, by: a
// call-time Arg of the same name; a preset argument captured at
// registration time; the active container, for *Container parameters; a
// deferred named reference (ref tag); every registration of the element
// type, for slice parameters; a recursive resolution of the parameter's
// registered type; the field's declared default. A required parameter
// with none of these fails with MissingDependencyError.
//
// Resolution either fully succeeds or fails atomically: no
// partially-constructed instance is visible, and a singleton cache is only
// populated after complete construction.
func (c *Container) Resolve(service any, opts ...ResolveOption) (any, error) {
	key, err := keyFor(service)
	if err != nil {
		return nil, err
	}

	options := &resolveOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyResolve(options)
		}
	}

	ctx := c.newResolutionContext()
	return c.resolveKey(ctx, key, options.arguments)
}

// MustResolve is like Resolve but panics on error.
func (c *Container) MustResolve(service any, opts ...ResolveOption) any {
	instance, err := c.Resolve(service, opts...)
	if err != nil {
		panic(err)
	}
	return instance
}

// ResolveAll produces one instance per registration for the key, in
// registration order (ancestors first). Each instance is constructed
// independently under the same rules as Resolve; singleton registrations
// in the set cache independently of one another. The result is empty for
// an unknown key.
func (c *Container) ResolveAll(service any) ([]any, error) {
	key, err := keyFor(service)
	if err != nil {
		return nil, err
	}

	ctx := c.newResolutionContext()
	return c.resolveAllKey(ctx, key)
}

func (c *Container) resolveKey(ctx *resolutionContext, key registry.Key, explicit map[string]any) (any, error) {
	ctx.enter(key)
	defer ctx.exit()

	if ctx.depth > c.maxDepth {
		return nil, MaxDepthError{Key: key, Depth: ctx.depth, MaxDepth: c.maxDepth}
	}

	regs := c.store.Get(key)
	idx, chained := ctx.cursors[key]
	if !chained {
		idx = len(regs) - 1
	}

	if idx < 0 {
		if len(regs) == 0 {
			// No registration at all: a key that is itself a constructible
			// type with satisfiable parameters still resolves.
			if instance, ok, err := c.autoConstruct(ctx, key, explicit); ok || err != nil {
				return instance, err
			}
		}
		return nil, MissingDependencyError{Key: key, Path: ctx.snapshotPath()}
	}

	return c.resolveRegistration(ctx, key, idx, regs[idx], explicit)
}

func (c *Container) resolveAllKey(ctx *resolutionContext, key registry.Key) ([]any, error) {
	ctx.enter(key)
	defer ctx.exit()

	if ctx.depth > c.maxDepth {
		return nil, MaxDepthError{Key: key, Depth: ctx.depth, MaxDepth: c.maxDepth}
	}

	regs := c.store.Get(key)
	instances := make([]any, 0, len(regs))
	for idx, reg := range regs {
		instance, err := c.resolveRegistration(ctx, key, idx, reg, nil)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

func (c *Container) resolveRegistration(ctx *resolutionContext, key registry.Key, idx int, reg *Registration, explicit map[string]any) (any, error) {
	// A pre-built instance is returned unchanged: no construction, no
	// argument merging.
	if reg.HasInstance {
		return reg.Instance, nil
	}

	// Call-time arguments bypass every cache, both ways: a customized
	// instance is never stored, and a customized resolution never returns
	// a stored one.
	if len(explicit) == 0 {
		if reg.Scope == Singleton {
			if cached, ok := c.singletons[reg]; ok {
				return cached, nil
			}
		}

		// Within one top-level call each registration constructs at most
		// once.
		if shared, ok := ctx.instances[reg]; ok {
			return shared, nil
		}
	}

	instance, err := c.construct(ctx, key, idx, reg, explicit)
	if err != nil {
		return nil, err
	}

	// Caches are written only after fully successful construction.
	if len(explicit) == 0 {
		if reg.Scope == Singleton {
			c.singletons[reg] = instance
		}
		ctx.instances[reg] = instance
	}
	return instance, nil
}

func (c *Container) construct(ctx *resolutionContext, key registry.Key, idx int, reg *Registration, explicit map[string]any) (any, error) {
	sig, err := c.analyzer.Analyze(reg.TargetType())
	if err != nil {
		return nil, InvalidRegistrationError{Key: key, Cause: err}
	}

	// While this registration constructs, a dependency on the same key
	// resolves the next older registration, so stacked registrations form
	// a chain of collaborators.
	prev, had := ctx.cursors[key]
	ctx.cursors[key] = idx - 1
	defer func() {
		if had {
			ctx.cursors[key] = prev
		} else {
			delete(ctx.cursors, key)
		}
	}()

	args := make(map[int]reflect.Value, len(sig.Params))
	for _, param := range sig.Params {
		value, ok, err := c.resolveParam(ctx, key, reg, sig, param, explicit)
		if err != nil {
			return nil, err
		}
		if ok {
			args[param.Index] = value
		}
	}

	if sig.Kind == reflection.FuncTarget {
		return reflection.InvokeConstructor(reg.Constructor, sig, args)
	}
	return reflection.InstantiateStruct(sig, args, reg.TargetPtr)
}

// resolveParam finds a value for one parameter, in precedence order. The
// boolean result is false when an optional parameter is deliberately
// omitted so the target's zero value applies.
func (c *Container) resolveParam(ctx *resolutionContext, key registry.Key, reg *Registration, sig *reflection.Signature, param reflection.Param, explicit map[string]any) (reflect.Value, bool, error) {
	// Call-time arguments, then registration-time presets, by name.
	// Function parameters have no names and never match either.
	if param.Name != "" {
		if raw, ok := lookupArgument(explicit, param.Name); ok {
			return coerceArgument(raw, param, sig)
		}
		if raw, ok := lookupArgument(reg.Arguments, param.Name); ok {
			return coerceArgument(raw, param, sig)
		}
	}

	// A *Container parameter receives the active container.
	if param.Type == containerType {
		return reflect.ValueOf(ctx.container), true, nil
	}

	// A deferred named reference, evaluated lazily against the current
	// name bindings.
	if param.Ref != "" {
		refKey, ok := c.store.ResolveName(param.Ref)
		if !ok {
			return reflect.Value{}, false, InvalidForwardReferenceError{Ref: param.Ref, Owner: sig.Target}
		}
		value, err := c.resolveKey(ctx, refKey, nil)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return coerceArgument(value, param, sig)
	}

	// A slice of a registered type receives one instance per registration.
	if param.Type.Kind() == reflect.Slice {
		elemKey := registry.TypeKey(param.Type.Elem())
		if c.store.Has(elemKey) {
			return c.resolveSliceParam(ctx, param, sig, elemKey)
		}
	}

	// A registered dependency type resolves recursively. The nested
	// resolution sees only its own registration's presets, never the
	// outer call's arguments.
	depKey := registry.TypeKey(param.Type)
	if c.store.Has(depKey) {
		value, err := c.resolveKey(ctx, depKey, nil)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return coerceArgument(value, param, sig)
	}

	// The declared default, or nothing at all for an optional parameter.
	if param.HasDefault {
		return param.Default, true, nil
	}
	if param.Optional {
		return reflect.Value{}, false, nil
	}

	return reflect.Value{}, false, MissingDependencyError{
		Key:       key,
		Parameter: param.DisplayName(),
		Owner:     sig.Target,
		Path:      ctx.snapshotPath(),
	}
}

func (c *Container) resolveSliceParam(ctx *resolutionContext, param reflection.Param, sig *reflection.Signature, elemKey registry.Key) (reflect.Value, bool, error) {
	instances, err := c.resolveAllKey(ctx, elemKey)
	if err != nil {
		return reflect.Value{}, false, err
	}

	slice := reflect.MakeSlice(param.Type, 0, len(instances))
	for _, instance := range instances {
		value, ok := reflection.Coerce(instance, param.Type.Elem())
		if !ok {
			return reflect.Value{}, false, TypeMismatchError{
				Parameter: param.DisplayName(),
				Owner:     sig.Target,
				Expected:  param.Type.Elem(),
				Actual:    reflect.TypeOf(instance),
			}
		}
		slice = reflect.Append(slice, value)
	}
	return slice, true, nil
}

// autoConstruct builds an unregistered type key directly, so trivially
// constructible concrete types resolve without a registration. It reports
// ok=false when the key is not a constructible type, leaving the caller to
// fail with MissingDependencyError.
func (c *Container) autoConstruct(ctx *resolutionContext, key registry.Key, explicit map[string]any) (any, bool, error) {
	if key.IsName() || !isConstructibleType(key.Type) {
		return nil, false, nil
	}
	if _, err := c.analyzer.Analyze(key.Type); err != nil {
		return nil, false, nil
	}

	reg := registry.NewRegistration(key)
	if key.Type.Kind() == reflect.Pointer {
		reg.Target = key.Type.Elem()
		reg.TargetPtr = true
	} else {
		reg.Target = key.Type
	}

	instance, err := c.construct(ctx, key, 0, reg, explicit)
	if err != nil {
		return nil, true, err
	}
	return instance, true, nil
}

// lookupArgument matches an argument name against a parameter name,
// preferring an exact match and falling back to a case-insensitive one so
// Arg("path", ...) binds to an exported Path field.
func lookupArgument(arguments map[string]any, name string) (any, bool) {
	if len(arguments) == 0 {
		return nil, false
	}
	if raw, ok := arguments[name]; ok {
		return raw, true
	}
	for argName, raw := range arguments {
		if strings.EqualFold(argName, name) {
			return raw, true
		}
	}
	return nil, false
}

func coerceArgument(raw any, param reflection.Param, sig *reflection.Signature) (reflect.Value, bool, error) {
	value, ok := reflection.Coerce(raw, param.Type)
	if !ok {
		return reflect.Value{}, false, TypeMismatchError{
			Parameter: param.DisplayName(),
			Owner:     sig.Target,
			Expected:  param.Type,
			Actual:    reflect.TypeOf(raw),
		}
	}
	return value, true, nil
}

// findParam locates a named parameter in a signature, matching the way
// argument lookup does.
func findParam(sig *reflection.Signature, name string) (reflection.Param, bool) {
	for _, param := range sig.Params {
		if param.Name != "" && strings.EqualFold(param.Name, name) {
			return param, true
		}
	}
	return reflection.Param{}, false
}
