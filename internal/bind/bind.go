// Package bind turns a resolved member into a reflective call: it
// prepares arguments, picks the receiver, splits results and adapts
// event handlers. Failures of this machinery are reported as *Failure so
// callers can tell them apart from errors the member itself returned.
package bind

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/unbound-force/mirror/internal/typesys"
)

var errorType = reflect.TypeFor[error]()

// Failure marks an error raised while setting up a call rather than by
// the called member.
type Failure struct {
	Err error
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// Failf builds a Failure carrying a stack trace of the failure site.
func Failf(format string, args ...any) error {
	return &Failure{Err: errors.Errorf(format, args...)}
}

// AsFailure returns the Failure in err's chain, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}

// Guard runs fn and turns a panic raised by reflection into a Failure.
// Member code must never run inside Guard: its panics belong to the
// caller.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*Failure); ok {
				err = f
				return
			}
			err = Failf("%v", r)
		}
	}()
	return fn()
}

// Args converts call arguments to values of the formal parameter
// types. A nil argument becomes the zero value of a nilable formal.
func Args(formals []reflect.Type, args []any) ([]reflect.Value, error) {
	if len(formals) != len(args) {
		return nil, Failf("expected %d arguments, got %d", len(formals), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		f := formals[i]
		if a == nil {
			if !typesys.NilableKind(f.Kind()) {
				return nil, Failf("argument %d: nil is not a valid %s", i, f)
			}
			in[i] = reflect.Zero(f)
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(f) {
			return nil, Failf("argument %d: %s is not assignable to %s", i, v.Type(), f)
		}
		in[i] = v
	}
	return in, nil
}

// Value converts a single value for assignment to a variable of type t.
func Value(t reflect.Type, v any) (reflect.Value, error) {
	in, err := Args([]reflect.Type{t}, []any{v})
	if err != nil {
		return reflect.Value{}, err
	}
	return in[0], nil
}

// Call invokes fn, spreading the final slice argument of a variadic
// function. Panics raised by fn propagate unchanged.
func Call(fn reflect.Value, in []reflect.Value) []reflect.Value {
	if fn.Type().IsVariadic() {
		return fn.CallSlice(in)
	}
	return fn.Call(in)
}

// Results splits a trailing error result off out and collapses the
// rest: no values is nil, one value is that value, several are []any.
// A non-nil trailing error is returned as is.
func Results(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, nil
}

// Receiver adapts inst to the receiver type want: inst itself, the value
// it points to, or its address when it is addressable.
func Receiver(inst reflect.Value, want reflect.Type) (reflect.Value, error) {
	if !inst.IsValid() {
		return reflect.Value{}, Failf("member requires an instance of %s but the mirror is bound to a type only", want)
	}
	if inst.Type().AssignableTo(want) {
		return inst, nil
	}
	if inst.Kind() == reflect.Pointer && !inst.IsNil() && inst.Elem().Type().AssignableTo(want) {
		return inst.Elem(), nil
	}
	if inst.CanAddr() && reflect.PointerTo(inst.Type()).AssignableTo(want) {
		return inst.Addr(), nil
	}
	if reflect.PointerTo(inst.Type()).AssignableTo(want) {
		return reflect.Value{}, Failf("member needs a %s receiver; bind the mirror to a pointer", want)
	}
	return reflect.Value{}, Failf("instance of type %s cannot act as receiver %s", inst.Type(), want)
}
