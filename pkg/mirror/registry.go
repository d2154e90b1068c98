package mirror

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/viant/xreflect"
)

// Registry holds declared classes and the names types can be looked up
// by.
type Registry struct {
	mu      sync.RWMutex
	types   *xreflect.Types
	named   map[reflect.Type]bool
	classes map[reflect.Type]*Class
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   xreflect.NewTypes(),
		named:   map[reflect.Type]bool{},
		classes: map[reflect.Type]*Class{},
	}
}

// DefaultRegistry backs the package-level functions.
var DefaultRegistry = NewRegistry()

// Register makes t available to ForTypeName under its package name and
// type name, the way %T prints it. Pointer types register their element.
func (r *Registry) Register(t reflect.Type) error {
	t = baseType(t)
	if t.Name() == "" {
		return invalidArgument("cannot register unnamed type %s", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(t)
}

func (r *Registry) register(t reflect.Type) error {
	if r.named[t] {
		return nil
	}
	pkg := packageName(t)
	if err := r.types.Register(t.Name(), xreflect.WithPackage(pkg), xreflect.WithReflectType(t)); err != nil {
		return fmt.Errorf("registering type %s: %w", t, err)
	}
	r.named[t] = true
	return nil
}

// Declare returns the class of t for declaring members Go reflection
// cannot see. Named types are registered for name lookup as well.
func (r *Registry) Declare(t reflect.Type) *Class {
	t = baseType(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.classes[t]; ok {
		return c
	}
	if t.Name() != "" {
		if err := r.register(t); err != nil {
			panic(err)
		}
	}
	c := &Class{typ: t, reg: r}
	r.classes[t] = c
	return c
}

// ForTypeName returns a static mirror for the named type. name is either
// "pkg.Name" or a bare name with the package passed separately.
func (r *Registry) ForTypeName(name string, pkg ...string) (Mirror, error) {
	typeName, pkgName := name, ""
	if len(pkg) > 0 {
		pkgName = pkg[0]
	} else if i := strings.LastIndex(name, "."); i >= 0 {
		pkgName, typeName = name[:i], name[i+1:]
	}

	var opts []xreflect.Option
	if pkgName != "" {
		opts = append(opts, xreflect.WithPackage(pkgName))
	}
	r.mu.RLock()
	t, err := r.types.Lookup(typeName, opts...)
	r.mu.RUnlock()
	if err != nil || t == nil {
		msg := fmt.Sprintf("could not find type '%s'", name)
		if len(pkg) > 0 {
			msg += fmt.Sprintf(" in package '%s'", pkgName)
		}
		return Mirror{}, &Error{Kind: TypeNotFound, Message: msg, Err: err}
	}
	return r.ForType(t), nil
}

// ForType returns a static mirror for t backed by r.
func (r *Registry) ForType(t reflect.Type) Mirror {
	return Mirror{typ: t, reg: r}
}

// ForObject returns a mirror bound to v backed by r.
func (r *Registry) ForObject(v any) Mirror {
	if v == nil {
		return Mirror{reg: r}
	}
	rv := reflect.ValueOf(v)
	return Mirror{typ: rv.Type(), inst: rv, reg: r}
}

func (r *Registry) class(t reflect.Type) *Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[baseType(t)]
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	return t
}

// packageName returns the qualifier %T prints for t.
func packageName(t reflect.Type) string {
	s := t.String()
	if i := strings.Index(s, "."); i >= 0 && !strings.ContainsAny(s[:i], "[]*") {
		return s[:i]
	}
	return t.PkgPath()
}
