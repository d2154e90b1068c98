package mirror

import (
	"reflect"

	"github.com/unbound-force/mirror/internal/bind"
	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// IndexerName is the member name of the built-in indexer of maps,
// slices, arrays and strings.
const IndexerName = taxonomy.IndexerName

// valueMember reads and writes fields, properties and indexers.
type valueMember interface {
	getValue(inst reflect.Value, index []reflect.Value) (any, error)
	setValue(inst reflect.Value, index []reflect.Value, v any) error
}

// invokable calls methods and constructors.
type invokable interface {
	invoke(inst reflect.Value, r *resolve.Resolved, args []any) (any, error)
}

// runtimeDescriptor merges the members reflection sees with the ones
// declared for the type.
type runtimeDescriptor struct {
	typ reflect.Type
	reg *Registry
}

func (d runtimeDescriptor) TypeName() string { return baseType(d.typ).String() }

func (d runtimeDescriptor) Candidates(name string, kinds []taxonomy.Kind, b taxonomy.Binding) ([]*resolve.Candidate, error) {
	all := reflectMembers(d.typ)
	if c := d.reg.class(d.typ); c != nil {
		all = append(all, c.candidates()...)
	}
	return resolve.Filter(all, name, kinds, b), nil
}

// reflectMembers lists the fields, methods and built-in indexer of t.
func reflectMembers(t reflect.Type) []*resolve.Candidate {
	owner := baseType(t).String()
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	var out []*resolve.Candidate
	if base.Kind() == reflect.Struct {
		for _, sf := range reflect.VisibleFields(base) {
			out = append(out, &resolve.Candidate{
				Name:    sf.Name,
				Kind:    taxonomy.Field,
				Owner:   owner,
				Public:  sf.IsExported(),
				Results: []typesys.Type{typesys.Of(sf.Type)},
				Impl:    newStructField(base, sf),
			})
		}
	}

	// The pointer method set includes every method callable on an
	// addressable value.
	mt := t
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer {
		mt = reflect.PointerTo(t)
	}
	skip := 1
	if mt.Kind() == reflect.Interface {
		skip = 0
	}
	for i := 0; i < mt.NumMethod(); i++ {
		m := mt.Method(i)
		out = append(out, &resolve.Candidate{
			Name:    m.Name,
			Kind:    taxonomy.Method,
			Owner:   owner,
			Public:  true,
			Params:  typesys.OfAll(ins(m.Type)[skip:]),
			Results: typesys.OfAll(valueOuts(m.Type)),
			Impl:    &methodMember{name: m.Name},
		})
	}

	if idx := builtinIndex(base); idx != nil {
		idx.Owner = owner
		out = append(out, idx)
	}
	return out
}

func builtinIndex(t reflect.Type) *resolve.Candidate {
	var key, elem reflect.Type
	switch t.Kind() {
	case reflect.Map:
		key, elem = t.Key(), t.Elem()
	case reflect.Slice, reflect.Array:
		key, elem = reflect.TypeFor[int](), t.Elem()
	case reflect.String:
		key, elem = reflect.TypeFor[int](), reflect.TypeFor[byte]()
	default:
		return nil
	}
	return &resolve.Candidate{
		Name:    IndexerName,
		Kind:    taxonomy.IndexedProperty,
		Public:  true,
		Params:  []typesys.Type{typesys.Of(key)},
		Results: []typesys.Type{typesys.Of(elem)},
		Impl:    builtinIndexer{},
	}
}

// methodMember is a method found in a method set.
type methodMember struct {
	name string
}

func (m *methodMember) invoke(inst reflect.Value, r *resolve.Resolved, args []any) (any, error) {
	var fn reflect.Value
	var in []reflect.Value
	err := bind.Guard(func() error {
		if !inst.IsValid() {
			return bind.Failf("method %s needs an instance but the mirror is bound to a type only", m.name)
		}
		fn = inst.MethodByName(m.name)
		if !fn.IsValid() && inst.CanAddr() {
			fn = inst.Addr().MethodByName(m.name)
		}
		if !fn.IsValid() {
			return bind.Failf("method %s has a pointer receiver but the mirror is bound to a %s value; bind a pointer", m.name, inst.Type())
		}
		var err error
		in, err = bind.Args(reflectTypes(r.Params), args)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bind.Results(bind.Call(fn, in))
}

// funcMember is a declared method or constructor.
type funcMember struct {
	fn   reflect.Value
	recv reflect.Type
}

func (f *funcMember) invoke(inst reflect.Value, r *resolve.Resolved, args []any) (any, error) {
	var in []reflect.Value
	err := bind.Guard(func() error {
		var err error
		in, err = bind.Args(reflectTypes(r.Params), args)
		if err != nil {
			return err
		}
		if f.recv != nil {
			recv, err := bind.Receiver(inst, f.recv)
			if err != nil {
				return err
			}
			in = append([]reflect.Value{recv}, in...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bind.Results(bind.Call(f.fn, in))
}

// genericMember is a declared generic method.
type genericMember struct {
	fn     GenericFunc
	static bool
}

func (g *genericMember) invoke(inst reflect.Value, r *resolve.Resolved, args []any) (any, error) {
	var in []reflect.Value
	var recv reflect.Value
	typeArgs := reflectTypes(r.TypeArgs)
	err := bind.Guard(func() error {
		if !g.static {
			if !inst.IsValid() {
				return bind.Failf("method %s needs an instance but the mirror is bound to a type only", r.Name)
			}
			recv = inst
		}
		for i, t := range typeArgs {
			if t == nil {
				return bind.Failf("type argument %s of %s is not a runtime type", r.TypeArgs[i], r.Name)
			}
		}
		var err error
		in, err = bind.Args(reflectTypes(r.Params), args)
		return err
	})
	if err != nil {
		return nil, err
	}
	out, err := g.fn(recv, typeArgs, in)
	if err != nil {
		return nil, err
	}
	return bind.Results(out)
}

// varMember is a declared static field.
type varMember struct {
	name string
	ptr  reflect.Value
}

func (v *varMember) getValue(reflect.Value, []reflect.Value) (any, error) {
	return v.ptr.Elem().Interface(), nil
}

func (v *varMember) setValue(_ reflect.Value, _ []reflect.Value, x any) error {
	return bind.Guard(func() error {
		val, err := bind.Value(v.ptr.Type().Elem(), x)
		if err != nil {
			return err
		}
		v.ptr.Elem().Set(val)
		return nil
	})
}

// propertyMember is a declared property or indexer.
type propertyMember struct {
	name      string
	valueType reflect.Type
	get, set  reflect.Value
	getRecv   reflect.Type
	setRecv   reflect.Type
}

func (p *propertyMember) getValue(inst reflect.Value, index []reflect.Value) (any, error) {
	if !p.get.IsValid() {
		return nil, bind.Failf("property %s has no getter", p.name)
	}
	in, err := receiverArgs(inst, p.getRecv, index)
	if err != nil {
		return nil, err
	}
	return bind.Results(bind.Call(p.get, in))
}

func (p *propertyMember) setValue(inst reflect.Value, index []reflect.Value, v any) error {
	if !p.set.IsValid() {
		return bind.Failf("property %s has no setter", p.name)
	}
	var in []reflect.Value
	err := bind.Guard(func() error {
		val, err := bind.Value(p.valueType, v)
		if err != nil {
			return err
		}
		in, err = receiverArgs(inst, p.setRecv, index)
		in = append(in, val)
		return err
	})
	if err != nil {
		return err
	}
	_, err = bind.Results(bind.Call(p.set, in))
	return err
}

func receiverArgs(inst reflect.Value, recv reflect.Type, rest []reflect.Value) ([]reflect.Value, error) {
	if recv == nil {
		return append([]reflect.Value(nil), rest...), nil
	}
	r, err := bind.Receiver(inst, recv)
	if err != nil {
		return nil, err
	}
	return append([]reflect.Value{r}, rest...), nil
}

// eventMember is a declared event.
type eventMember struct {
	name        string
	typ         reflect.Type
	add, remove func(inst reflect.Value, h Handler) error
}

// nestedMember is a declared nested type.
type nestedMember struct {
	typ reflect.Type
}
