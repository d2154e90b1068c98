// Package taxonomy defines the member kinds, binding masks and
// operations shared by the resolver, the runtime mirror and the static
// descriptor.
package taxonomy

import (
	"fmt"
	"strings"
)

// Kind enumerates the member categories a descriptor can expose.
type Kind string

// Member kinds.
const (
	Field           Kind = "Field"
	Property        Kind = "Property"
	IndexedProperty Kind = "IndexedProperty"
	Method          Kind = "Method"
	Constructor     Kind = "Constructor"
	Event           Kind = "Event"
	NestedType      Kind = "NestedType"
)

// Reserved member names.
const (
	// ConstructorName is the name constructors are listed under.
	ConstructorName = "<init>"

	// IndexerName is the name of the built-in indexer of maps, slices,
	// arrays and strings.
	IndexerName = "[]"
)

// AllKinds lists every member kind in display order.
var AllKinds = []Kind{
	Field, Property, IndexedProperty, Method, Constructor, Event, NestedType,
}

// Callable reports whether members of kind k take arguments.
func (k Kind) Callable() bool {
	return k == Method || k == Constructor || k == IndexedProperty
}

// Binding is a mask over member visibility and scope. A member is
// admitted when both its visibility and its scope bits are set.
type Binding uint8

// Binding flags.
const (
	Public Binding = 1 << iota
	NonPublic
	Instance
	Static

	// AnyBinding admits every member.
	AnyBinding = Public | NonPublic | Instance | Static
)

var bindingNames = []struct {
	flag Binding
	name string
}{
	{Public, "public"},
	{NonPublic, "nonpublic"},
	{Instance, "instance"},
	{Static, "static"},
}

// Admits reports whether a member with the given visibility and scope
// passes the mask.
func (b Binding) Admits(public, static bool) bool {
	vis := NonPublic
	if public {
		vis = Public
	}
	scope := Instance
	if static {
		scope = Static
	}
	return b&vis != 0 && b&scope != 0
}

// Valid reports whether b can admit any member at all.
func (b Binding) Valid() bool {
	return b&(Public|NonPublic) != 0 && b&(Instance|Static) != 0
}

func (b Binding) String() string {
	if b == 0 {
		return "none"
	}
	var parts []string
	for _, n := range bindingNames {
		if b&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseBinding parses a comma-separated list of flag names, as printed
// by Binding.String. "any" stands for AnyBinding.
func ParseBinding(s string) (Binding, error) {
	var b Binding
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if part == "any" {
			b |= AnyBinding
			continue
		}
		found := false
		for _, n := range bindingNames {
			if n.name == part {
				b |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown binding flag %q: must be one of public, nonpublic, instance, static, any", part)
		}
	}
	if !b.Valid() {
		return 0, fmt.Errorf("binding %q admits no members: need at least one of public/nonpublic and one of instance/static", s)
	}
	return b, nil
}
