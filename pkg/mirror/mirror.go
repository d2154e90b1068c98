// Package mirror resolves members of Go types by name and operates on
// them: reading and writing fields and properties, invoking methods and
// constructors, subscribing to events and looking up nested types.
//
// A member is found among every same-named candidate the type exposes,
// narrowed by kind, visibility and scope, parameter signature, generic
// arguments and the types of the actual arguments. Exactly one candidate
// must remain. Members come from two sources: what reflection sees
// (struct fields, unexported ones included, method sets and the built-in
// "[]" indexer of maps, slices, arrays and strings) and what a Class
// declares for the type (overloads, generic methods, constructors,
// static variables, properties, indexers, events and nested types).
//
//	m := mirror.ForObject(&account)
//	balance, err := m.Member("balance").Get()
//	_, err = m.Member("Deposit").WithSignature(reflect.TypeFor[int]()).Invoke(10)
//
// Errors raised by the mirror are *Error values. Errors and panics raised
// by the member itself reach the caller unchanged.
package mirror

import (
	"reflect"

	"github.com/unbound-force/mirror/internal/taxonomy"
)

// ConstructorName is the member name constructors are declared under.
const ConstructorName = taxonomy.ConstructorName

// Mirror is a type, optionally bound to an instance of it.
type Mirror struct {
	typ  reflect.Type
	inst reflect.Value
	reg  *Registry
}

// NullOfUnknownType is the mirror of a nil value whose type is unknown.
// Every member query on it fails with InvalidArgument.
var NullOfUnknownType = Mirror{}

// ForType returns a mirror of t without an instance. Only static members
// can be accessed through it. A nil t yields NullOfUnknownType.
func ForType(t reflect.Type) Mirror {
	return DefaultRegistry.ForType(t)
}

// ForTypeOf returns a mirror of T without an instance.
func ForTypeOf[T any]() Mirror {
	return ForType(reflect.TypeFor[T]())
}

// ForObject returns a mirror bound to v. Bind a pointer to change
// fields of a struct through the mirror. A nil v yields
// NullOfUnknownType.
func ForObject(v any) Mirror {
	return DefaultRegistry.ForObject(v)
}

// ForTypeName looks a registered type up by name. See
// Registry.ForTypeName.
func ForTypeName(name string, pkg ...string) (Mirror, error) {
	return DefaultRegistry.ForTypeName(name, pkg...)
}

// Declare returns the class of t in the default registry.
func Declare(t reflect.Type) *Class {
	return DefaultRegistry.Declare(t)
}

// Type returns the mirrored type, nil for NullOfUnknownType.
func (m Mirror) Type() reflect.Type { return m.typ }

// Instance returns the bound instance, or nil.
func (m Mirror) Instance() any {
	if !m.inst.IsValid() || !m.inst.CanInterface() {
		return nil
	}
	return m.inst.Interface()
}

// IsNull reports whether no instance is bound, or the bound instance is
// a nil pointer, map, slice, channel, function or interface.
func (m Mirror) IsNull() bool {
	if !m.inst.IsValid() {
		return true
	}
	switch m.inst.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return m.inst.IsNil()
	}
	return false
}

// IsNullOfUnknownType reports whether m carries no type.
func (m Mirror) IsNullOfUnknownType() bool { return m.typ == nil }

func (m Mirror) String() string {
	if m.typ == nil {
		return "mirror(nil)"
	}
	if !m.inst.IsValid() {
		return "mirror(" + m.typ.String() + ")"
	}
	return "mirror(" + m.typ.String() + " instance)"
}

// Member starts a query for the members named name. Resolution happens
// when an operation is performed.
func (m Mirror) Member(name string) MemberQuery {
	q := MemberQuery{mirror: m, name: name, binding: taxonomy.AnyBinding}
	if name == "" {
		q.err = invalidArgument("member name must not be empty")
	}
	return q
}

// Constructor starts a query for the constructors declared for the
// mirrored type.
func (m Mirror) Constructor() MemberQuery {
	return m.Member(ConstructorName)
}

func (m Mirror) registry() *Registry {
	if m.reg == nil {
		return DefaultRegistry
	}
	return m.reg
}
