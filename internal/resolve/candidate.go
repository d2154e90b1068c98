// Package resolve picks the one member a query refers to among the
// same-named candidates a descriptor exposes.
package resolve

import (
	"fmt"
	"strings"

	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// Candidate is a member as seen by the resolver.
type Candidate struct {
	Name   string
	Kind   taxonomy.Kind
	Owner  string
	Public bool
	Static bool

	// Params are the formal parameter types. Entries may be
	// *typesys.Param values from TypeParams.
	Params []typesys.Type

	// TypeParams are the member's own generic parameters, in order.
	TypeParams []*typesys.Param

	// Results are the result types, or the value type for fields and
	// properties.
	Results []typesys.Type

	// Impl is the descriptor's binding for the member. The resolver
	// never looks at it.
	Impl any
}

// Generic reports whether c declares type parameters.
func (c *Candidate) Generic() bool { return len(c.TypeParams) > 0 }

// Signature renders the member for messages and listings, e.g.
// "Sum[T](T, T) T".
func (c *Candidate) Signature() string {
	var b strings.Builder
	b.WriteString(c.Name)
	if len(c.TypeParams) > 0 {
		names := make([]string, len(c.TypeParams))
		for i, p := range c.TypeParams {
			names[i] = p.Name
		}
		fmt.Fprintf(&b, "[%s]", strings.Join(names, ", "))
	}
	switch c.Kind {
	case taxonomy.Field, taxonomy.Property:
		if len(c.Results) == 1 {
			fmt.Fprintf(&b, " %s", c.Results[0])
		}
		return b.String()
	case taxonomy.NestedType:
		return b.String()
	}
	fmt.Fprintf(&b, "(%s)", strings.Join(typesys.Strings(c.Params), ", "))
	switch len(c.Results) {
	case 0:
	case 1:
		fmt.Fprintf(&b, " %s", c.Results[0])
	default:
		fmt.Fprintf(&b, " (%s)", strings.Join(typesys.Strings(c.Results), ", "))
	}
	return b.String()
}

// Descriptor lists the candidate members of one type.
type Descriptor interface {
	// TypeName names the described type in messages.
	TypeName() string

	// Candidates returns the members named name whose kind is in kinds
	// and whose visibility and scope pass binding. Matching is case
	// sensitive.
	Candidates(name string, kinds []taxonomy.Kind, binding taxonomy.Binding) ([]*Candidate, error)
}

// Filter keeps the members of all that Candidates would return.
func Filter(all []*Candidate, name string, kinds []taxonomy.Kind, binding taxonomy.Binding) []*Candidate {
	var out []*Candidate
	for _, c := range all {
		if c.Name != name || !binding.Admits(c.Public, c.Static) {
			continue
		}
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
