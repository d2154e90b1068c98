package typesys

import "reflect"

// reflectType adapts a reflect.Type.
type reflectType struct {
	t reflect.Type
}

// Of wraps a reflect.Type. A nil reflect.Type yields a nil Type.
func Of(t reflect.Type) Type {
	if t == nil {
		return nil
	}
	return reflectType{t: t}
}

// TypeOf wraps the static type T.
func TypeOf[T any]() Type {
	return Of(reflect.TypeFor[T]())
}

// OfAll wraps a list of reflect.Types, keeping nil entries as wildcards.
func OfAll(ts []reflect.Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Of(t)
	}
	return out
}

// Reflect unwraps a Type built by Of. It returns nil for parameters and
// types from other adapters.
func Reflect(t Type) reflect.Type {
	if r, ok := t.(reflectType); ok {
		return r.t
	}
	return nil
}

// Implements builds a constraint that admits types implementing the
// interface type I.
func Implements[I any]() Type {
	t := reflect.TypeFor[I]()
	if t.Kind() != reflect.Interface {
		panic("typesys: Implements requires an interface type, got " + t.String())
	}
	return reflectType{t: t}
}

func (r reflectType) String() string { return r.t.String() }

func (r reflectType) Identical(u Type) bool {
	o, ok := u.(reflectType)
	return ok && o.t == r.t
}

func (r reflectType) AssignableTo(u Type) bool {
	o, ok := u.(reflectType)
	return ok && r.t.AssignableTo(o.t)
}

func (r reflectType) Nilable() bool {
	return NilableKind(r.t.Kind())
}

// NilableKind reports whether nil is a value of types of kind k.
func NilableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}
