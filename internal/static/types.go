package static

import (
	"go/types"

	"github.com/unbound-force/mirror/internal/typesys"
)

// goType adapts a go/types type.
type goType struct {
	t types.Type
	q types.Qualifier
}

func (g goType) String() string { return types.TypeString(g.t, g.q) }

func (g goType) Identical(u typesys.Type) bool {
	o, ok := u.(goType)
	return ok && types.Identical(g.t, o.t)
}

func (g goType) AssignableTo(u typesys.Type) bool {
	o, ok := u.(goType)
	return ok && types.AssignableTo(g.t, o.t)
}

func (g goType) Nilable() bool {
	switch u := g.t.Underlying().(type) {
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Signature, *types.Interface:
		return true
	case *types.Basic:
		return u.Kind() == types.UnsafePointer || u.Kind() == types.UntypedNil
	}
	return false
}

// Satisfies checks a type parameter constraint, type sets included.
func (g goType) Satisfies(constraint typesys.Type) bool {
	c, ok := constraint.(goType)
	if !ok {
		return false
	}
	iface, ok := c.t.Underlying().(*types.Interface)
	if !ok {
		return false
	}
	return types.Satisfies(g.t, iface)
}

// Underlying returns the go/types type of t, or nil when t did not come
// from this package.
func Underlying(t typesys.Type) types.Type {
	if g, ok := t.(goType); ok {
		return g.t
	}
	return nil
}
