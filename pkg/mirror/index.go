package mirror

import (
	"reflect"

	"github.com/unbound-force/mirror/internal/resolve"
)

// IndexAccessor reads and writes one position of an indexed property.
type IndexAccessor struct {
	mirror Mirror
	r      *resolve.Resolved
	index  []reflect.Value
}

// Get reads the value at the bound index.
func (a IndexAccessor) Get() (any, error) {
	if a.r == nil {
		return nil, invalidArgument("index accessor is not bound to a member")
	}
	v, err := a.r.Impl.(valueMember).getValue(a.mirror.inst, a.index)
	if err != nil {
		return nil, setupError(err, "get value of", &ResolvedMember{r: a.r})
	}
	return v, nil
}

// Set writes v at the bound index.
func (a IndexAccessor) Set(v any) error {
	if a.r == nil {
		return invalidArgument("index accessor is not bound to a member")
	}
	err := a.r.Impl.(valueMember).setValue(a.mirror.inst, a.index, v)
	return setupError(err, "set value of", &ResolvedMember{r: a.r})
}

// ValueAsMirror reads the value at the bound index and mirrors it.
func (a IndexAccessor) ValueAsMirror() (Mirror, error) {
	v, err := a.Get()
	if err != nil {
		return Mirror{}, err
	}
	return a.mirror.wrap(v, a.r.Results), nil
}
