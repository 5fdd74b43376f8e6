package reflection

import (
	"fmt"
	"reflect"
)

// Coerce adapts a raw argument value to a parameter type. A nil raw value
// yields the type's zero value when the type is nilable. Numeric values
// convert across numeric kinds; everything else must be assignable.
func Coerce(raw any, t reflect.Type) (reflect.Value, bool) {
	if raw == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(t), true
		default:
			return reflect.Value{}, false
		}
	}

	v := reflect.ValueOf(raw)
	if v.Type().AssignableTo(t) {
		return v, true
	}
	if isNumeric(v.Type().Kind()) && isNumeric(t.Kind()) {
		return v.Convert(t), true
	}
	return reflect.Value{}, false
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64 && k != reflect.Uintptr
}

// InstantiateStruct builds a value of a struct target from the resolved
// arguments, keyed by parameter index. Parameters without an entry keep
// their zero value. wantPtr controls whether a pointer to the struct or
// the struct value itself is returned.
func InstantiateStruct(sig *Signature, args map[int]reflect.Value, wantPtr bool) (any, error) {
	if sig.Kind != StructTarget {
		return nil, fmt.Errorf("%s is not a struct target", sig.Target)
	}

	v := reflect.New(sig.Target)
	elem := v.Elem()

	for _, param := range sig.Params {
		arg, ok := args[param.Index]
		if !ok {
			continue
		}
		elem.Field(param.FieldIndex).Set(arg)
	}

	if wantPtr {
		return v.Interface(), nil
	}
	return elem.Interface(), nil
}

// InvokeConstructor calls a factory function with the resolved arguments.
// Every parameter must have an entry in args. A non-nil trailing error
// return aborts construction and is returned unwrapped.
func InvokeConstructor(fn reflect.Value, sig *Signature, args map[int]reflect.Value) (any, error) {
	if sig.Kind != FuncTarget {
		return nil, fmt.Errorf("%s is not a function target", sig.Target)
	}

	in := make([]reflect.Value, len(sig.Params))
	for _, param := range sig.Params {
		arg, ok := args[param.Index]
		if !ok {
			return nil, fmt.Errorf("missing argument %s for constructor %s", param.DisplayName(), sig.Target)
		}
		in[param.Index] = arg
	}

	out := fn.Call(in)
	if sig.ReturnsError {
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, err
		}
	}
	return out[0].Interface(), nil
}
