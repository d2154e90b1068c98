package mirror

import (
	"reflect"

	"github.com/unbound-force/mirror/internal/bind"
	"github.com/viant/xunsafe"
)

// structField is a struct field, possibly promoted through embedded
// structs. Unexported fields are reached through their address.
type structField struct {
	sf reflect.StructField
	xf *xunsafe.Field
}

func newStructField(base reflect.Type, sf reflect.StructField) *structField {
	holder := base
	for _, i := range sf.Index[:len(sf.Index)-1] {
		holder = holder.Field(i).Type
		if holder.Kind() == reflect.Pointer {
			holder = holder.Elem()
		}
	}
	return &structField{
		sf: sf,
		xf: xunsafe.NewField(holder.Field(sf.Index[len(sf.Index)-1])),
	}
}

func (f *structField) getValue(inst reflect.Value, _ []reflect.Value) (any, error) {
	var out any
	err := bind.Guard(func() error {
		root, err := f.root(inst)
		if err != nil {
			return err
		}
		if !root.CanAddr() {
			cp := reflect.New(root.Type()).Elem()
			cp.Set(root)
			root = cp
		}
		fv, err := f.field(root)
		if err != nil {
			return err
		}
		out = fv.Interface()
		return nil
	})
	return out, err
}

func (f *structField) setValue(inst reflect.Value, _ []reflect.Value, v any) error {
	return bind.Guard(func() error {
		root, err := f.root(inst)
		if err != nil {
			return err
		}
		if !root.CanAddr() {
			return bind.Failf("cannot set field %s of a %s value; bind the mirror to a pointer", f.sf.Name, root.Type())
		}
		val, err := bind.Value(f.sf.Type, v)
		if err != nil {
			return err
		}
		fv, err := f.field(root)
		if err != nil {
			return err
		}
		fv.Set(val)
		return nil
	})
}

func (f *structField) root(inst reflect.Value) (reflect.Value, error) {
	if !inst.IsValid() {
		return reflect.Value{}, bind.Failf("field %s needs an instance but the mirror is bound to a type only", f.sf.Name)
	}
	if inst.Kind() == reflect.Pointer {
		if inst.IsNil() {
			return reflect.Value{}, bind.Failf("field %s of a nil %s", f.sf.Name, inst.Type())
		}
		inst = inst.Elem()
	}
	return inst, nil
}

// field returns an addressable, fully accessible value of the field
// inside the addressable struct root.
func (f *structField) field(root reflect.Value) (reflect.Value, error) {
	holder := root
	for _, i := range f.sf.Index[:len(f.sf.Index)-1] {
		holder = holder.Field(i)
		if holder.Kind() == reflect.Pointer {
			if holder.IsNil() {
				return reflect.Value{}, bind.Failf("field %s is promoted through a nil embedded %s", f.sf.Name, holder.Type())
			}
			holder = holder.Elem()
		}
	}
	fv := holder.Field(f.sf.Index[len(f.sf.Index)-1])
	if fv.CanInterface() && fv.CanSet() {
		return fv, nil
	}
	ptr := f.xf.Pointer(holder.Addr().UnsafePointer())
	return reflect.NewAt(f.xf.Type, ptr).Elem(), nil
}

// builtinIndexer indexes maps, slices, arrays and strings.
type builtinIndexer struct{}

func (builtinIndexer) getValue(inst reflect.Value, index []reflect.Value) (any, error) {
	var out any
	err := bind.Guard(func() error {
		c, err := container(inst)
		if err != nil {
			return err
		}
		if c.Kind() == reflect.Map {
			e := c.MapIndex(index[0])
			if !e.IsValid() {
				e = reflect.Zero(c.Type().Elem())
			}
			out = e.Interface()
			return nil
		}
		i, err := position(c, index[0])
		if err != nil {
			return err
		}
		out = c.Index(i).Interface()
		return nil
	})
	return out, err
}

func (builtinIndexer) setValue(inst reflect.Value, index []reflect.Value, v any) error {
	return bind.Guard(func() error {
		c, err := container(inst)
		if err != nil {
			return err
		}
		switch c.Kind() {
		case reflect.String:
			return bind.Failf("strings are immutable")
		case reflect.Map:
			if c.IsNil() {
				return bind.Failf("assignment to entry in nil map")
			}
			val, err := bind.Value(c.Type().Elem(), v)
			if err != nil {
				return err
			}
			c.SetMapIndex(index[0], val)
			return nil
		}
		i, err := position(c, index[0])
		if err != nil {
			return err
		}
		e := c.Index(i)
		if !e.CanSet() {
			return bind.Failf("cannot set element of a %s value; bind the mirror to a pointer", c.Type())
		}
		val, err := bind.Value(e.Type(), v)
		if err != nil {
			return err
		}
		e.Set(val)
		return nil
	})
}

func container(inst reflect.Value) (reflect.Value, error) {
	if !inst.IsValid() {
		return reflect.Value{}, bind.Failf("indexer needs an instance but the mirror is bound to a type only")
	}
	if inst.Kind() == reflect.Pointer {
		if inst.IsNil() {
			return reflect.Value{}, bind.Failf("indexing a nil %s", inst.Type())
		}
		inst = inst.Elem()
	}
	return inst, nil
}

func position(c, idx reflect.Value) (int, error) {
	i := int(idx.Int())
	if i < 0 || i >= c.Len() {
		return 0, bind.Failf("index %d out of range [0:%d]", i, c.Len())
	}
	return i, nil
}
