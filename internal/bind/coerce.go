package bind

import (
	"reflect"

	"github.com/viant/xunsafe"
)

// Identity returns a key shared by every use of the same function value,
// so a handler can be found again after it was wrapped.
func Identity(fn any) uintptr {
	if fn == nil {
		return 0
	}
	return uintptr(xunsafe.AsPointer(fn))
}

// Code returns the code pointer of a function. Every evaluation of the
// same method value or function literal shares it, while Identity
// differs per evaluation. Non-functions yield 0.
func Code(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return 0
	}
	return v.Pointer()
}

// Coerce adapts handler to the function type target. A nil handler
// yields the zero value; a handler already assignable to target is used
// as is. Otherwise parameter and result counts must match and each
// position must be convertible in one direction; a forwarding function
// of type target is built that converts on every call.
func Coerce(target reflect.Type, handler any) (reflect.Value, error) {
	if target.Kind() != reflect.Func {
		return reflect.Value{}, Failf("handler type %s is not a function type", target)
	}
	if handler == nil {
		return reflect.Zero(target), nil
	}

	h := reflect.ValueOf(handler)
	ht := h.Type()
	if ht.AssignableTo(target) {
		v := reflect.New(target).Elem()
		v.Set(h)
		return v, nil
	}
	if ht.Kind() != reflect.Func {
		return reflect.Value{}, Failf("cannot use %s as handler of type %s", ht, target)
	}
	if ht.NumIn() != target.NumIn() || ht.NumOut() != target.NumOut() || ht.IsVariadic() != target.IsVariadic() {
		return reflect.Value{}, Failf("cannot coerce %s to %s: parameter or result counts differ", ht, target)
	}
	for i := 0; i < ht.NumIn(); i++ {
		if !compatible(target.In(i), ht.In(i)) {
			return reflect.Value{}, Failf("cannot coerce %s to %s: parameter %d %s does not accept %s",
				ht, target, i, ht.In(i), target.In(i))
		}
	}
	for i := 0; i < ht.NumOut(); i++ {
		if !compatible(ht.Out(i), target.Out(i)) {
			return reflect.Value{}, Failf("cannot coerce %s to %s: result %d %s does not convert to %s",
				ht, target, i, ht.Out(i), target.Out(i))
		}
	}

	fn := reflect.MakeFunc(target, func(args []reflect.Value) []reflect.Value {
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			in[i] = convert(a, ht.In(i))
		}
		out := Call(h, in)
		res := make([]reflect.Value, len(out))
		for i, o := range out {
			res[i] = convert(o, target.Out(i))
		}
		return res
	})
	return fn, nil
}

// compatible reports whether a value of type from may be converted to
// type to, possibly only at run time (interface to concrete).
func compatible(from, to reflect.Type) bool {
	return from.AssignableTo(to) || convertible(from, to) ||
		(from.Kind() == reflect.Interface && to.AssignableTo(from))
}

// convertible is reflect's ConvertibleTo without the integer to string
// conversion, which would silently produce a rune.
func convertible(from, to reflect.Type) bool {
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return false
	}
	return from.ConvertibleTo(to)
}

func convert(v reflect.Value, to reflect.Type) reflect.Value {
	switch {
	case v.Type() == to:
		return v
	case v.Type().AssignableTo(to):
		r := reflect.New(to).Elem()
		r.Set(v)
		return r
	case convertible(v.Type(), to):
		return v.Convert(to)
	case v.Kind() == reflect.Interface && v.IsNil():
		return reflect.Zero(to)
	case v.Kind() == reflect.Interface:
		return convert(v.Elem(), to)
	}
	panic(Failf("handler received %s, which does not convert to %s", v.Type(), to))
}
