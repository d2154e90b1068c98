package mirror

import (
	"reflect"
	"slices"

	"github.com/unbound-force/mirror/internal/bind"
	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// Binding is a mask over member visibility and scope.
type Binding = taxonomy.Binding

// Binding flags. A member passes when both its visibility and its scope
// are in the mask.
const (
	BindPublic    = taxonomy.Public
	BindNonPublic = taxonomy.NonPublic
	BindInstance  = taxonomy.Instance
	BindStatic    = taxonomy.Static
	AnyBinding    = taxonomy.AnyBinding
)

// MemberQuery names a member of a mirror and constrains which of the
// same-named members it means. Queries are values: every With method
// returns a refined copy and leaves the receiver unchanged.
type MemberQuery struct {
	mirror Mirror
	name   string

	signature    []reflect.Type
	hasSignature bool
	generic      []reflect.Type
	hasGeneric   bool
	binding      Binding

	err error
}

// Name returns the queried member name.
func (q MemberQuery) Name() string { return q.name }

// WithSignature restricts the query to members whose parameter types are
// exactly types. A nil entry matches any type. Calling it with no types
// selects members without parameters.
func (q MemberQuery) WithSignature(types ...reflect.Type) MemberQuery {
	q.signature = slices.Clone(types)
	q.hasSignature = true
	return q
}

// WithGenericArgs restricts the query to generic members with as many
// type parameters as types and instantiates them. A nil entry is
// inferred from the arguments. Calling it with no types selects
// non-generic members.
func (q MemberQuery) WithGenericArgs(types ...reflect.Type) MemberQuery {
	q.generic = slices.Clone(types)
	q.hasGeneric = true
	return q
}

// WithBinding replaces the visibility and scope mask. The default is
// AnyBinding.
func (q MemberQuery) WithBinding(b Binding) MemberQuery {
	q.binding = b
	if !b.Valid() && q.err == nil {
		q.err = invalidArgument("binding %s admits no members", b)
	}
	return q
}

func (q MemberQuery) resolve(op taxonomy.Operation, args ...any) (*resolve.Resolved, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.mirror.typ == nil {
		return nil, invalidArgument("cannot look up member '%s' of a null of unknown type", q.name)
	}

	actual := make([]typesys.Type, len(args))
	for i, a := range args {
		if a != nil {
			actual[i] = typesys.Of(reflect.TypeOf(a))
		}
	}
	rq := resolve.Query{
		Name:         q.name,
		Signature:    typesys.OfAll(q.signature),
		HasSignature: q.hasSignature,
		Generic:      typesys.OfAll(q.generic),
		HasGeneric:   q.hasGeneric,
		Binding:      q.binding,
	}
	desc := runtimeDescriptor{typ: q.mirror.typ, reg: q.mirror.registry()}

	r, err := resolve.Resolve(desc, rq, op, actual...)
	if err != nil {
		logger.Debug("resolution failed", "type", desc.TypeName(), "member", q.name, "op", op, "err", err)
		return nil, resolutionError(err)
	}
	logger.Debug("resolved member", "type", desc.TypeName(), "member", r.Signature(), "op", op)
	return r, nil
}

// Resolve finds the member among every kind without touching it.
func (q MemberQuery) Resolve() (*ResolvedMember, error) {
	r, err := q.resolve(taxonomy.OpAny)
	if err != nil {
		return nil, err
	}
	return &ResolvedMember{r: r}, nil
}

// Get reads a field or property.
func (q MemberQuery) Get() (any, error) {
	r, err := q.resolve(taxonomy.OpValue)
	if err != nil {
		return nil, err
	}
	v, err := r.Impl.(valueMember).getValue(q.mirror.inst, nil)
	if err != nil {
		return nil, setupError(err, "get value of", &ResolvedMember{r: r})
	}
	return v, nil
}

// Set writes a field or property.
func (q MemberQuery) Set(v any) error {
	r, err := q.resolve(taxonomy.OpValue)
	if err != nil {
		return err
	}
	err = r.Impl.(valueMember).setValue(q.mirror.inst, nil, v)
	return setupError(err, "set value of", &ResolvedMember{r: r})
}

// ValueAsMirror reads a field or property and mirrors the value. A nil
// value is mirrored as its declared type without an instance.
func (q MemberQuery) ValueAsMirror() (Mirror, error) {
	r, err := q.resolve(taxonomy.OpValue)
	if err != nil {
		return Mirror{}, err
	}
	v, err := r.Impl.(valueMember).getValue(q.mirror.inst, nil)
	if err != nil {
		return Mirror{}, setupError(err, "get value of", &ResolvedMember{r: r})
	}
	return q.mirror.wrap(v, r.Results), nil
}

// Invoke calls a method or constructor with args. nil arguments become
// the zero value of their parameter. The result is nil for no results,
// the value for one and []any for several; a trailing error result is
// returned as the error.
func (q MemberQuery) Invoke(args ...any) (any, error) {
	r, err := q.resolve(taxonomy.OpInvoke, args...)
	if err != nil {
		return nil, err
	}
	v, err := r.Impl.(invokable).invoke(q.mirror.inst, r, args)
	return v, setupError(err, "invoke", &ResolvedMember{r: r})
}

// InvokeAsMirror calls a method or constructor and mirrors the result.
func (q MemberQuery) InvokeAsMirror(args ...any) (Mirror, error) {
	r, err := q.resolve(taxonomy.OpInvoke, args...)
	if err != nil {
		return Mirror{}, err
	}
	v, err := r.Impl.(invokable).invoke(q.mirror.inst, r, args)
	if err != nil {
		return Mirror{}, setupError(err, "invoke", &ResolvedMember{r: r})
	}
	return q.mirror.wrap(v, r.Results), nil
}

// AddHandler subscribes handler to an event. handler is coerced to the
// event's handler type; a nil handler is passed on as is.
func (q MemberQuery) AddHandler(handler any) error {
	return q.event(handler, "add handler to", func(e *eventMember) func(reflect.Value, Handler) error { return e.add })
}

// RemoveHandler unsubscribes handler from an event. The handler is
// matched by the function it was made from.
func (q MemberQuery) RemoveHandler(handler any) error {
	return q.event(handler, "remove handler from", func(e *eventMember) func(reflect.Value, Handler) error { return e.remove })
}

func (q MemberQuery) event(handler any, action string, pick func(*eventMember) func(reflect.Value, Handler) error) error {
	r, err := q.resolve(taxonomy.OpEvent)
	if err != nil {
		return err
	}
	m := &ResolvedMember{r: r}
	e := r.Impl.(*eventMember)
	h, err := bind.Coerce(e.typ, handler)
	if err != nil {
		return setupError(err, action, m)
	}
	return setupError(pick(e)(q.mirror.inst, newHandler(handler, h)), action, m)
}

// Index resolves an indexed property by the types of the index
// arguments and returns an accessor bound to them.
func (q MemberQuery) Index(args ...any) (IndexAccessor, error) {
	r, err := q.resolve(taxonomy.OpIndex, args...)
	if err != nil {
		return IndexAccessor{}, err
	}
	in, err := bind.Args(reflectTypes(r.Params), args)
	if err != nil {
		return IndexAccessor{}, setupError(err, "index", &ResolvedMember{r: r})
	}
	return IndexAccessor{mirror: q.mirror, r: r, index: in}, nil
}

// NestedType returns a nested type.
func (q MemberQuery) NestedType() (reflect.Type, error) {
	r, err := q.resolve(taxonomy.OpNested)
	if err != nil {
		return nil, err
	}
	return r.Impl.(*nestedMember).typ, nil
}

// NestedTypeAsMirror returns a static mirror of a nested type.
func (q MemberQuery) NestedTypeAsMirror() (Mirror, error) {
	t, err := q.NestedType()
	if err != nil {
		return Mirror{}, err
	}
	return q.mirror.registry().ForType(t), nil
}

// wrap mirrors v, falling back to the single declared result type when
// v is nil.
func (m Mirror) wrap(v any, results []typesys.Type) Mirror {
	if v == nil {
		if len(results) == 1 {
			return m.registry().ForType(typesys.Reflect(results[0]))
		}
		return NullOfUnknownType
	}
	return m.registry().ForObject(v)
}
