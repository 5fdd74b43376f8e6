// Package reflection implements constructor introspection: it turns a
// constructible target (a struct type or a factory function) into an
// ordered parameter list the resolver can satisfy, and instantiates
// targets from resolved arguments.
package reflection

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"
)

// TargetKind discriminates the two constructible target shapes.
type TargetKind int

const (
	// StructTarget is a struct type whose exported fields are the
	// constructor parameters.
	StructTarget TargetKind = iota

	// FuncTarget is a factory function whose parameters are matched by
	// declared type only. Go reflection does not expose parameter names,
	// so named arguments never bind to function parameters.
	FuncTarget
)

// Param describes a single constructor parameter of a target.
type Param struct {
	// Name is the parameter name used for argument matching. Empty for
	// function parameters.
	Name string

	// Index is the parameter position in the signature.
	Index int

	// FieldIndex is the struct field index for struct targets.
	FieldIndex int

	// Type is the declared type of the parameter.
	Type reflect.Type

	// Optional marks a parameter that may be omitted; the field keeps its
	// zero value when no argument is found.
	Optional bool

	// HasDefault marks a parameter with a declared default literal.
	HasDefault bool

	// Default is the parsed default value when HasDefault is true.
	Default reflect.Value

	// Ref is a deferred named reference to another service, bound lazily
	// at resolution time.
	Ref string
}

// Required reports whether resolution must find a value for the parameter.
func (p Param) Required() bool {
	return !p.Optional && !p.HasDefault
}

// DisplayName returns the parameter name for error messages.
func (p Param) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("#%d", p.Index)
}

// Signature is the introspected parameter list of a constructible target.
type Signature struct {
	// Target is the struct type or function type that was analyzed.
	Target reflect.Type

	// Kind is the target shape.
	Kind TargetKind

	// ReturnsError reports whether a function target has a trailing error
	// return value.
	ReturnsError bool

	// Params is the ordered parameter list.
	Params []Param
}

// Analyzer computes and memoizes target signatures. Analysis results only
// depend on the type, so the cache is shared freely; it is safe for
// concurrent use.
type Analyzer struct {
	cache sync.Map // reflect.Type -> analysis
}

type analysis struct {
	sig *Signature
	err error
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze returns the signature of a constructible target type: a struct
// type, a pointer-to-struct type, or a function type. The result is
// memoized per type, errors included.
func (a *Analyzer) Analyze(t reflect.Type) (*Signature, error) {
	if t == nil {
		return nil, fmt.Errorf("target type is nil")
	}

	if cached, ok := a.cache.Load(t); ok {
		res := cached.(analysis)
		return res.sig, res.err
	}

	sig, err := analyzeType(t)
	a.cache.Store(t, analysis{sig: sig, err: err})
	return sig, err
}

func analyzeType(t reflect.Type) (*Signature, error) {
	switch {
	case t.Kind() == reflect.Func:
		return analyzeFunc(t)
	case t.Kind() == reflect.Struct:
		return analyzeStruct(t)
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return analyzeStruct(t.Elem())
	default:
		return nil, fmt.Errorf("%s is not a constructible target (want a struct type or a function)", t)
	}
}

func analyzeFunc(t reflect.Type) (*Signature, error) {
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic constructor %s is not supported", t)
	}

	sig := &Signature{Target: t, Kind: FuncTarget}

	switch t.NumOut() {
	case 1:
		if t.Out(0) == errorType {
			return nil, fmt.Errorf("constructor %s returns only an error", t)
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("constructor %s must return (T) or (T, error)", t)
		}
		sig.ReturnsError = true
	default:
		return nil, fmt.Errorf("constructor %s must return (T) or (T, error)", t)
	}

	for i := 0; i < t.NumIn(); i++ {
		sig.Params = append(sig.Params, Param{
			Index: i,
			Type:  t.In(i),
		})
	}

	return sig, nil
}

func analyzeStruct(t reflect.Type) (*Signature, error) {
	sig := &Signature{Target: t, Kind: StructTarget}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Tag.Get("inject") == "-" {
			continue
		}

		param := Param{
			Name:       field.Name,
			Index:      len(sig.Params),
			FieldIndex: i,
			Type:       field.Type,
			Ref:        field.Tag.Get("ref"),
		}

		if name := field.Tag.Get("name"); name != "" {
			param.Name = name
		}

		if optional := field.Tag.Get("optional"); optional != "" {
			value, err := strconv.ParseBool(optional)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s has invalid optional tag %q", t, field.Name, optional)
			}
			param.Optional = value
		}

		if def, ok := field.Tag.Lookup("default"); ok {
			value, err := parseDefault(def, field.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", t, field.Name, err)
			}
			param.HasDefault = true
			param.Default = value
		}

		sig.Params = append(sig.Params, param)
	}

	return sig, nil
}

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	durationType = reflect.TypeOf(time.Duration(0))
)

// parseDefault parses a default tag literal into a value of the field type.
// Strings, booleans, integers, floats and time.Duration are supported.
func parseDefault(literal string, t reflect.Type) (reflect.Value, error) {
	if t == durationType {
		d, err := time.ParseDuration(literal)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid default duration %q: %w", literal, err)
		}
		return reflect.ValueOf(d), nil
	}

	out := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.String:
		out.SetString(literal)
	case reflect.Bool:
		v, err := strconv.ParseBool(literal)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid default bool %q: %w", literal, err)
		}
		out.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(literal, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid default integer %q: %w", literal, err)
		}
		out.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(literal, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid default unsigned integer %q: %w", literal, err)
		}
		out.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(literal, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid default float %q: %w", literal, err)
		}
		out.SetFloat(v)
	default:
		return reflect.Value{}, fmt.Errorf("default tag is not supported for %s fields", t)
	}

	return out, nil
}
