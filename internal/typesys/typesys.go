// Package typesys defines the type identity used by member resolution.
//
// Resolution never needs to know whether a type came from reflect or from
// go/types. It only asks whether two types are identical, whether a value
// of one type can be assigned to another, and whether nil is a valid value
// of a type. Generic type parameters are represented by *Param, which the
// resolver substitutes by position.
package typesys

import (
	"fmt"
	"reflect"
)

// Type is an opaque type identity.
type Type interface {
	fmt.Stringer

	// Identical reports whether t and u denote the same type.
	Identical(u Type) bool

	// AssignableTo reports whether a value of type t may be assigned to
	// a variable of type u.
	AssignableTo(u Type) bool

	// Nilable reports whether nil is a value of the type.
	Nilable() bool
}

// Satisfier is implemented by types that can check generic constraints
// themselves. Types that don't implement it satisfy every constraint
// except one built with Implements.
type Satisfier interface {
	Satisfies(constraint Type) bool
}

// Param is a generic type parameter of a candidate member.
type Param struct {
	// Index is the position of the parameter in the candidate's type
	// parameter list.
	Index int

	// Name is the declared name, used only for display.
	Name string

	// Constraint, when non-nil, limits the types the parameter may be
	// instantiated with.
	Constraint Type
}

func (p *Param) String() string { return p.Name }

// Identical reports pointer identity: two parameters are the same only if
// they are the same declaration.
func (p *Param) Identical(u Type) bool {
	q, ok := u.(*Param)
	return ok && p == q
}

// AssignableTo is false for every type but p itself. An unresolved
// parameter never accepts a concrete value.
func (p *Param) AssignableTo(u Type) bool { return p.Identical(u) }

// Nilable is false; nothing is known about an unresolved parameter.
func (p *Param) Nilable() bool { return false }

// Satisfied reports whether t may instantiate p.
func (p *Param) Satisfied(t Type) bool {
	if p.Constraint == nil || t == nil {
		return true
	}
	if s, ok := t.(Satisfier); ok {
		return s.Satisfies(p.Constraint)
	}
	if c, ok := p.Constraint.(reflectType); ok && c.t.Kind() == reflect.Interface {
		return t.AssignableTo(c)
	}
	return true
}

// IsParam reports whether t is an unresolved generic parameter and
// returns it.
func IsParam(t Type) (*Param, bool) {
	p, ok := t.(*Param)
	return p, ok
}

// Accepts reports whether an argument of type actual can be passed to a
// parameter of type formal. A nil actual stands for the untyped nil and
// is accepted only by nilable formals.
func Accepts(formal, actual Type) bool {
	if actual == nil {
		return formal.Nilable()
	}
	return actual.AssignableTo(formal)
}

// Substitute returns t with p replaced by the slot at p.Index when that
// slot is filled.
func Substitute(t Type, slots []Type) Type {
	if p, ok := IsParam(t); ok && p.Index < len(slots) && slots[p.Index] != nil {
		return slots[p.Index]
	}
	return t
}

// Strings renders a type list the way a signature is shown in messages.
func Strings(ts []Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			out[i] = "_"
			continue
		}
		out[i] = t.String()
	}
	return out
}
