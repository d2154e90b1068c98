package mirror

import (
	"reflect"

	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// Kind is the category of a member.
type Kind = taxonomy.Kind

// Member kinds.
const (
	Field           = taxonomy.Field
	Property        = taxonomy.Property
	IndexedProperty = taxonomy.IndexedProperty
	Method          = taxonomy.Method
	Constructor     = taxonomy.Constructor
	Event           = taxonomy.Event
	NestedType      = taxonomy.NestedType
)

// ResolvedMember is the one member a query resolved to.
type ResolvedMember struct {
	r *resolve.Resolved
}

// Name returns the member name.
func (m *ResolvedMember) Name() string { return m.r.Name }

// Kind returns the member category.
func (m *ResolvedMember) Kind() Kind { return m.r.Kind }

// Static reports whether the member needs no instance.
func (m *ResolvedMember) Static() bool { return m.r.Static }

// Public reports the member's visibility.
func (m *ResolvedMember) Public() bool { return m.r.Public }

// Params returns the instantiated parameter types.
func (m *ResolvedMember) Params() []reflect.Type { return reflectTypes(m.r.Params) }

// Results returns the instantiated result types; for fields and
// properties, the value type.
func (m *ResolvedMember) Results() []reflect.Type { return reflectTypes(m.r.Results) }

// TypeArgs returns the generic arguments. Entries are nil when the
// member was looked up without instantiating it.
func (m *ResolvedMember) TypeArgs() []reflect.Type { return reflectTypes(m.r.TypeArgs) }

func (m *ResolvedMember) String() string {
	return m.r.Owner + "." + m.r.Signature()
}

func reflectTypes(ts []typesys.Type) []reflect.Type {
	out := make([]reflect.Type, len(ts))
	for i, t := range ts {
		out[i] = typesys.Reflect(t)
	}
	return out
}
