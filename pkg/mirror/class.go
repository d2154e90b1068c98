package mirror

import (
	"fmt"
	"reflect"

	"github.com/unbound-force/mirror/internal/bind"
	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// Type is a type as the resolver sees it: a reflect.Type wrapped with T
// or TypeOf, or a *TypeParam of a generic member.
type Type = typesys.Type

// TypeParam is a type parameter of a generic member declared with
// Class.Generic. A TypeParam belongs to exactly one declaration.
type TypeParam = typesys.Param

// NewTypeParam returns a type parameter, optionally constrained. A
// constraint built with Implements admits the types implementing it.
func NewTypeParam(name string, constraint ...Type) *TypeParam {
	p := &TypeParam{Name: name}
	if len(constraint) > 0 {
		p.Constraint = constraint[0]
	}
	return p
}

// T wraps a reflect.Type for use in generic declarations.
func T(t reflect.Type) Type { return typesys.Of(t) }

// TypeOf wraps the static type X.
func TypeOf[X any]() Type { return typesys.TypeOf[X]() }

// Implements builds a constraint admitting types that implement the
// interface I.
func Implements[I any]() Type { return typesys.Implements[I]() }

// GenericFunc implements a generic member. recv is the bound instance,
// or the zero Value for static members. typeArgs holds the instantiated
// type arguments in declaration order and args the converted arguments.
type GenericFunc func(recv reflect.Value, typeArgs []reflect.Type, args []reflect.Value) ([]reflect.Value, error)

// MemberOption adjusts a declared member.
type MemberOption func(*memberOptions)

type memberOptions struct {
	nonPublic bool
	static    bool
}

// NonPublic hides the member from queries that only admit public
// members.
func NonPublic() MemberOption {
	return func(o *memberOptions) { o.nonPublic = true }
}

// Static declares a member that needs no instance. Functions of static
// members take no receiver parameter.
func Static() MemberOption {
	return func(o *memberOptions) { o.static = true }
}

// Class collects the declared members of one type. Declaration methods
// panic on malformed declarations and return the class for chaining.
type Class struct {
	typ     reflect.Type
	reg     *Registry
	members []*resolve.Candidate
}

// Type returns the declared type.
func (c *Class) Type() reflect.Type { return c.typ }

// Method declares a method. An instance method's fn takes the receiver
// as its first parameter. A trailing error result of fn is returned by
// Invoke as the call's error.
func (c *Class) Method(name string, fn any, opts ...MemberOption) *Class {
	o := applyOptions(opts)
	fv, ft := c.funcOf("method "+name, fn)
	impl := &funcMember{fn: fv}
	params := ins(ft)
	if !o.static {
		impl.recv = c.receiver("method "+name, ft)
		params = params[1:]
	}
	return c.add(&resolve.Candidate{
		Name:    name,
		Kind:    taxonomy.Method,
		Public:  !o.nonPublic,
		Static:  o.static,
		Params:  typesys.OfAll(params),
		Results: typesys.OfAll(valueOuts(ft)),
		Impl:    impl,
	})
}

// Generic declares a generic method over tparams. params and results
// may refer to the type parameters directly.
func (c *Class) Generic(name string, tparams []*TypeParam, params, results []Type, fn GenericFunc, opts ...MemberOption) *Class {
	o := applyOptions(opts)
	if fn == nil {
		panic(fmt.Sprintf("mirror: generic method %s.%s has no implementation", c.typ, name))
	}
	for i, p := range tparams {
		p.Index = i
	}
	for _, t := range append(append([]Type{}, params...), results...) {
		if p, ok := typesys.IsParam(t); ok && (p.Index >= len(tparams) || tparams[p.Index] != p) {
			panic(fmt.Sprintf("mirror: generic method %s.%s uses type parameter %s it does not declare", c.typ, name, p))
		}
	}
	return c.add(&resolve.Candidate{
		Name:       name,
		Kind:       taxonomy.Method,
		Public:     !o.nonPublic,
		Static:     o.static,
		TypeParams: tparams,
		Params:     params,
		Results:    results,
		Impl:       &genericMember{fn: fn, static: o.static},
	})
}

// Constructor declares a constructor. fn takes the constructor's
// arguments and returns the new value, optionally followed by an error.
func (c *Class) Constructor(fn any, opts ...MemberOption) *Class {
	o := applyOptions(opts)
	fv, ft := c.funcOf("constructor", fn)
	return c.add(&resolve.Candidate{
		Name:    ConstructorName,
		Kind:    taxonomy.Constructor,
		Public:  !o.nonPublic,
		Static:  true,
		Params:  typesys.OfAll(ins(ft)),
		Results: typesys.OfAll(valueOuts(ft)),
		Impl:    &funcMember{fn: fv},
	})
}

// Var declares a static field backed by the variable ptr points to.
func (c *Class) Var(name string, ptr any, opts ...MemberOption) *Class {
	o := applyOptions(opts)
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		panic(fmt.Sprintf("mirror: static field %s.%s needs a non-nil pointer, got %T", c.typ, name, ptr))
	}
	return c.add(&resolve.Candidate{
		Name:    name,
		Kind:    taxonomy.Field,
		Public:  !o.nonPublic,
		Static:  true,
		Results: []Type{typesys.Of(pv.Type().Elem())},
		Impl:    &varMember{name: name, ptr: pv},
	})
}

// Property declares a property. Either get or set may be nil. An
// instance getter has the form func(R) V and a setter func(R, V); static
// ones drop R. Both may return a trailing error.
func (c *Class) Property(name string, get, set any, opts ...MemberOption) *Class {
	return c.property(name, taxonomy.Property, get, set, opts)
}

// Indexer declares an indexed property. Index parameters follow the
// receiver: func(R, I...) V and func(R, I..., V).
func (c *Class) Indexer(name string, get, set any, opts ...MemberOption) *Class {
	return c.property(name, taxonomy.IndexedProperty, get, set, opts)
}

func (c *Class) property(name string, kind taxonomy.Kind, get, set any, opts []MemberOption) *Class {
	o := applyOptions(opts)
	what := "property " + name
	if get == nil && set == nil {
		panic(fmt.Sprintf("mirror: %s of %s has neither getter nor setter", what, c.typ))
	}
	skip := 1
	if o.static {
		skip = 0
	}

	impl := &propertyMember{name: name}
	var index []reflect.Type
	if get != nil {
		fv, ft := c.funcOf(what+" getter", get)
		outs := valueOuts(ft)
		if len(outs) != 1 {
			panic(fmt.Sprintf("mirror: %s getter of %s must return one value", what, c.typ))
		}
		impl.get, impl.valueType = fv, outs[0]
		if !o.static {
			impl.getRecv = c.receiver(what+" getter", ft)
		}
		index = ins(ft)[skip:]
	}
	if set != nil {
		fv, ft := c.funcOf(what+" setter", set)
		in := ins(ft)
		if len(in) < skip+1 || len(valueOuts(ft)) != 0 {
			panic(fmt.Sprintf("mirror: %s setter of %s must take the value last and return at most an error", what, c.typ))
		}
		vt := in[len(in)-1]
		setIndex := in[skip : len(in)-1]
		if impl.get.IsValid() && (vt != impl.valueType || !sameTypes(index, setIndex)) {
			panic(fmt.Sprintf("mirror: %s getter and setter of %s disagree", what, c.typ))
		}
		impl.set, impl.valueType, index = fv, vt, setIndex
		if !o.static {
			impl.setRecv = c.receiver(what+" setter", ft)
		}
	}
	if kind == taxonomy.Property && len(index) > 0 {
		panic(fmt.Sprintf("mirror: %s of %s takes index parameters; declare it with Indexer", what, c.typ))
	}
	return c.add(&resolve.Candidate{
		Name:    name,
		Kind:    kind,
		Public:  !o.nonPublic,
		Static:  o.static,
		Params:  typesys.OfAll(index),
		Results: []Type{typesys.Of(impl.valueType)},
		Impl:    impl,
	})
}

// Event declares an event whose handlers have type handlerType. add and
// remove receive the coerced handler: func(R, Handler) for instance
// events, func(Handler) for static ones, optionally returning an error.
func (c *Class) Event(name string, handlerType reflect.Type, add, remove any, opts ...MemberOption) *Class {
	o := applyOptions(opts)
	if handlerType == nil || handlerType.Kind() != reflect.Func {
		panic(fmt.Sprintf("mirror: event %s.%s needs a function handler type, got %v", c.typ, name, handlerType))
	}
	impl := &eventMember{name: name, typ: handlerType}
	impl.add = c.eventAccessor("event "+name+" add", add, o.static)
	impl.remove = c.eventAccessor("event "+name+" remove", remove, o.static)
	return c.addEvent(name, impl, o)
}

// ListEvent declares an event stored in an EventList. list returns the
// list: func(R) *EventList, or func() *EventList for static events.
func (c *Class) ListEvent(name string, handlerType reflect.Type, list any, opts ...MemberOption) *Class {
	o := applyOptions(opts)
	if handlerType == nil || handlerType.Kind() != reflect.Func {
		panic(fmt.Sprintf("mirror: event %s.%s needs a function handler type, got %v", c.typ, name, handlerType))
	}
	fv, ft := c.funcOf("event "+name+" list", list)
	if ft.NumOut() != 1 || ft.Out(0) != reflect.TypeFor[*EventList]() {
		panic(fmt.Sprintf("mirror: event %s.%s list function must return *EventList", c.typ, name))
	}
	var recv reflect.Type
	if !o.static {
		recv = c.receiver("event "+name+" list", ft)
	}
	lookup := func(inst reflect.Value) (*EventList, error) {
		var in []reflect.Value
		if recv != nil {
			r, err := bind.Receiver(inst, recv)
			if err != nil {
				return nil, err
			}
			in = []reflect.Value{r}
		}
		l, _ := fv.Call(in)[0].Interface().(*EventList)
		if l == nil {
			return nil, bind.Failf("event %s of %s has no handler list", name, c.typ)
		}
		return l, nil
	}
	impl := &eventMember{
		name: name,
		typ:  handlerType,
		add: func(inst reflect.Value, h Handler) error {
			l, err := lookup(inst)
			if err != nil {
				return err
			}
			l.Add(h)
			return nil
		},
		remove: func(inst reflect.Value, h Handler) error {
			l, err := lookup(inst)
			if err != nil {
				return err
			}
			l.Remove(h)
			return nil
		},
	}
	return c.addEvent(name, impl, o)
}

func (c *Class) addEvent(name string, impl *eventMember, o memberOptions) *Class {
	return c.add(&resolve.Candidate{
		Name:    name,
		Kind:    taxonomy.Event,
		Public:  !o.nonPublic,
		Static:  o.static,
		Results: []Type{typesys.Of(impl.typ)},
		Impl:    impl,
	})
}

// Nested declares t as a nested type named name.
func (c *Class) Nested(name string, t reflect.Type, opts ...MemberOption) *Class {
	o := applyOptions(opts)
	if t == nil {
		panic(fmt.Sprintf("mirror: nested type %s.%s is nil", c.typ, name))
	}
	return c.add(&resolve.Candidate{
		Name:    name,
		Kind:    taxonomy.NestedType,
		Public:  !o.nonPublic,
		Static:  true,
		Results: []Type{typesys.Of(t)},
		Impl:    &nestedMember{typ: t},
	})
}

func (c *Class) add(cand *resolve.Candidate) *Class {
	cand.Owner = c.typ.String()
	c.reg.mu.Lock()
	c.members = append(c.members, cand)
	c.reg.mu.Unlock()
	return c
}

func (c *Class) candidates() []*resolve.Candidate {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return append([]*resolve.Candidate(nil), c.members...)
}

func (c *Class) funcOf(what string, fn any) (reflect.Value, reflect.Type) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		panic(fmt.Sprintf("mirror: %s of %s must be a function, got %T", what, c.typ, fn))
	}
	return fv, fv.Type()
}

func (c *Class) receiver(what string, ft reflect.Type) reflect.Type {
	if ft.NumIn() == 0 {
		panic(fmt.Sprintf("mirror: %s of %s needs a receiver parameter; declare it Static otherwise", what, c.typ))
	}
	return ft.In(0)
}

func (c *Class) eventAccessor(what string, fn any, static bool) func(reflect.Value, Handler) error {
	fv, ft := c.funcOf(what, fn)
	want := 1
	var recv reflect.Type
	if !static {
		recv = c.receiver(what, ft)
		want = 2
	}
	if ft.NumIn() != want || ft.In(want-1) != reflect.TypeFor[Handler]() || len(valueOuts(ft)) != 0 {
		panic(fmt.Sprintf("mirror: %s of %s must take a Handler and return at most an error", what, c.typ))
	}
	return func(inst reflect.Value, h Handler) error {
		in := []reflect.Value{reflect.ValueOf(h)}
		if recv != nil {
			r, err := bind.Receiver(inst, recv)
			if err != nil {
				return err
			}
			in = append([]reflect.Value{r}, in...)
		}
		_, err := bind.Results(fv.Call(in))
		return err
	}
}

func applyOptions(opts []MemberOption) memberOptions {
	var o memberOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func ins(ft reflect.Type) []reflect.Type {
	out := make([]reflect.Type, ft.NumIn())
	for i := range out {
		out[i] = ft.In(i)
	}
	return out
}

// valueOuts returns the results of ft without a trailing error.
func valueOuts(ft reflect.Type) []reflect.Type {
	out := make([]reflect.Type, ft.NumOut())
	for i := range out {
		out[i] = ft.Out(i)
	}
	if n := len(out); n > 0 && out[n-1] == errorType {
		out = out[:n-1]
	}
	return out
}

func sameTypes(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var errorType = reflect.TypeFor[error]()
