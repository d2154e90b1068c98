// Package static exposes the members of a type declared in Go source,
// or of a whole package scope, to the resolver. It powers the dry runs
// of the mirror command: the same resolution rules as the runtime
// mirror, applied to go/types information instead of reflection.
package static

import (
	"fmt"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/fzipp/gocyclo"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/unbound-force/mirror/internal/loader"
	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// Info is the Impl of every candidate built by this package.
type Info struct {
	// Object is the declaring object.
	Object types.Object

	// Pos is the declaration position.
	Pos token.Position

	// Complexity is the cyclomatic complexity of functions and methods
	// declared in the package, or 0.
	Complexity int

	// Doc is the first sentence of the function's doc comment.
	Doc string
}

// Descriptor lists the members of one type or of a package scope.
type Descriptor struct {
	res     *loader.Result
	qual    types.Qualifier
	name    string
	members []*resolve.Candidate
}

// New builds the descriptor for typeExpr, any type expression valid at
// package scope such as "Shape" or "Box[int]". An empty typeExpr or "."
// describes the package scope itself.
func New(res *loader.Result, typeExpr string) (*Descriptor, error) {
	d := &Descriptor{
		res:  res,
		qual: types.RelativeTo(res.Pkg.Types),
	}
	if typeExpr == "" || typeExpr == "." {
		d.name = res.Pkg.Name
		d.members = d.scopeMembers()
		return d, nil
	}

	tv, err := types.Eval(res.Fset, res.Pkg.Types, token.NoPos, typeExpr)
	if err != nil {
		return nil, fmt.Errorf("evaluating type %q: %w", typeExpr, err)
	}
	if !tv.IsType() {
		return nil, fmt.Errorf("%q is not a type", typeExpr)
	}
	d.name = types.TypeString(tv.Type, d.qual)
	d.members = d.typeMembers(tv.Type)
	return d, nil
}

// TypeName names the described type or package.
func (d *Descriptor) TypeName() string { return d.name }

// Candidates implements resolve.Descriptor.
func (d *Descriptor) Candidates(name string, kinds []taxonomy.Kind, b taxonomy.Binding) ([]*resolve.Candidate, error) {
	return resolve.Filter(d.members, name, kinds, b), nil
}

// Members returns every member in listing order.
func (d *Descriptor) Members() []*resolve.Candidate {
	return append([]*resolve.Candidate(nil), d.members...)
}

// ParseType parses a type expression at package scope. "_" yields the
// nil wildcard.
func (d *Descriptor) ParseType(expr string) (typesys.Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "_" {
		return nil, nil
	}
	tv, err := types.Eval(d.res.Fset, d.res.Pkg.Types, token.NoPos, expr)
	if err != nil {
		return nil, fmt.Errorf("parsing type %q: %w", expr, err)
	}
	if !tv.IsType() {
		return nil, fmt.Errorf("%q is not a type", expr)
	}
	return d.wrap(tv.Type), nil
}

// ParseTypes parses a comma-separated list of type expressions. "nil"
// stands for an untyped nil argument when allowNil is set.
func (d *Descriptor) ParseTypes(list string, allowNil bool) ([]typesys.Type, error) {
	var out []typesys.Type
	for _, expr := range SplitTypes(list) {
		if allowNil && expr == "nil" {
			out = append(out, nil)
			continue
		}
		t, err := d.ParseType(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// SplitTypes splits a comma-separated list of type expressions,
// ignoring commas nested in brackets, braces and parentheses.
func SplitTypes(list string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range list {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(list[start:]); last != "" || len(out) > 0 {
		out = append(out, last)
	}
	return out
}

func (d *Descriptor) wrap(t types.Type) typesys.Type {
	return goType{t: t, q: d.qual}
}

func (d *Descriptor) typeMembers(t types.Type) []*resolve.Candidate {
	var out []*resolve.Candidate
	base := t
	if p, ok := base.Underlying().(*types.Pointer); ok {
		base = p.Elem()
	}

	if st, ok := base.Underlying().(*types.Struct); ok {
		for _, f := range visibleFields(st) {
			out = append(out, &resolve.Candidate{
				Name:    f.Name(),
				Kind:    taxonomy.Field,
				Owner:   d.name,
				Public:  f.Exported(),
				Results: []typesys.Type{d.wrap(f.Type())},
				Impl:    d.info(f, 0),
			})
		}
	}

	for _, sel := range typeutil.IntuitiveMethodSet(base, nil) {
		fn, ok := sel.Obj().(*types.Func)
		if !ok {
			continue
		}
		sig := sel.Type().(*types.Signature)
		c := d.funcCandidate(fn, sig, taxonomy.Method, false)
		out = append(out, c)
	}

	if named, ok := base.(*types.Named); ok {
		out = append(out, d.constructors(named)...)
	}

	if idx := d.indexer(base); idx != nil {
		out = append(out, idx)
	}
	return out
}

// visibleFields lists the fields of st including promoted ones; a
// shallower field hides deeper ones of the same name.
func visibleFields(st *types.Struct) []*types.Var {
	var out []*types.Var
	seen := map[string]bool{}
	level := []*types.Struct{st}
	visited := map[*types.Struct]bool{}
	for len(level) > 0 {
		var next []*types.Struct
		found := map[string]bool{}
		for _, s := range level {
			if visited[s] {
				continue
			}
			visited[s] = true
			for i := 0; i < s.NumFields(); i++ {
				f := s.Field(i)
				if seen[f.Name()] {
					continue
				}
				if !found[f.Name()] {
					out = append(out, f)
					found[f.Name()] = true
				}
				if f.Embedded() {
					ft := f.Type()
					if p, ok := ft.Underlying().(*types.Pointer); ok {
						ft = p.Elem()
					}
					if es, ok := ft.Underlying().(*types.Struct); ok {
						next = append(next, es)
					}
				}
			}
		}
		for name := range found {
			seen[name] = true
		}
		level = next
	}
	return out
}

// constructors returns the package functions named New... whose first
// result is named or a pointer to it.
func (d *Descriptor) constructors(named *types.Named) []*resolve.Candidate {
	scope := d.res.Pkg.Types.Scope()
	var out []*resolve.Candidate
	for _, name := range scope.Names() {
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok || !strings.HasPrefix(name, "New") {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.TypeParams().Len() > 0 || sig.Results().Len() == 0 {
			continue
		}
		r := sig.Results().At(0).Type()
		if p, ok := r.(*types.Pointer); ok {
			r = p.Elem()
		}
		if !types.Identical(r, named) {
			continue
		}
		c := d.funcCandidate(fn, sig, taxonomy.Constructor, true)
		c.Name = taxonomy.ConstructorName
		out = append(out, c)
	}
	return out
}

func (d *Descriptor) indexer(t types.Type) *resolve.Candidate {
	var key, elem types.Type
	switch u := t.Underlying().(type) {
	case *types.Map:
		key, elem = u.Key(), u.Elem()
	case *types.Slice:
		key, elem = types.Typ[types.Int], u.Elem()
	case *types.Array:
		key, elem = types.Typ[types.Int], u.Elem()
	case *types.Basic:
		if u.Info()&types.IsString == 0 {
			return nil
		}
		key, elem = types.Typ[types.Int], types.Typ[types.Byte]
	default:
		return nil
	}
	return &resolve.Candidate{
		Name:    taxonomy.IndexerName,
		Kind:    taxonomy.IndexedProperty,
		Owner:   d.name,
		Public:  true,
		Params:  []typesys.Type{d.wrap(key)},
		Results: []typesys.Type{d.wrap(elem)},
		Impl:    &Info{},
	}
}

func (d *Descriptor) scopeMembers() []*resolve.Candidate {
	scope := d.res.Pkg.Types.Scope()
	var out []*resolve.Candidate
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		switch o := obj.(type) {
		case *types.Func:
			out = append(out, d.funcCandidate(o, o.Type().(*types.Signature), taxonomy.Method, true))
		case *types.Var, *types.Const:
			out = append(out, &resolve.Candidate{
				Name:    name,
				Kind:    taxonomy.Field,
				Owner:   d.name,
				Public:  o.Exported(),
				Static:  true,
				Results: []typesys.Type{d.wrap(o.Type())},
				Impl:    d.info(o, 0),
			})
		case *types.TypeName:
			out = append(out, &resolve.Candidate{
				Name:    name,
				Kind:    taxonomy.NestedType,
				Owner:   d.name,
				Public:  o.Exported(),
				Static:  true,
				Results: []typesys.Type{d.wrap(o.Type())},
				Impl:    d.info(o, 0),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return kindOrder(out[i].Kind) < kindOrder(out[j].Kind)
	})
	return out
}

func kindOrder(k taxonomy.Kind) int {
	for i, kk := range taxonomy.AllKinds {
		if kk == k {
			return i
		}
	}
	return len(taxonomy.AllKinds)
}

func (d *Descriptor) funcCandidate(fn *types.Func, sig *types.Signature, kind taxonomy.Kind, static bool) *resolve.Candidate {
	c := &resolve.Candidate{
		Name:   fn.Name(),
		Kind:   kind,
		Owner:  d.name,
		Public: fn.Exported(),
		Static: static,
	}
	tparams := sig.TypeParams()
	for i := 0; i < tparams.Len(); i++ {
		tp := tparams.At(i)
		c.TypeParams = append(c.TypeParams, &typesys.Param{
			Index:      i,
			Name:       tp.Obj().Name(),
			Constraint: d.wrap(tp.Constraint()),
		})
	}
	c.Params = d.tuple(sig.Params(), c.TypeParams)
	c.Results = d.tuple(sig.Results(), c.TypeParams)

	info := d.info(fn, 0)
	if decl := d.res.Decl(fn); decl != nil {
		info.Complexity = gocyclo.Complexity(decl)
		if decl.Doc != nil {
			info.Doc = synopsis(decl.Doc.Text())
		}
	}
	c.Impl = info
	return c
}

// synopsis returns the first sentence of a doc comment on one line.
func synopsis(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if i := strings.Index(text, ". "); i >= 0 {
		return text[:i+1]
	}
	return text
}

// tuple converts a parameter list, mapping type parameters to the
// candidate's own.
func (d *Descriptor) tuple(t *types.Tuple, tparams []*typesys.Param) []typesys.Type {
	out := make([]typesys.Type, t.Len())
	for i := 0; i < t.Len(); i++ {
		vt := t.At(i).Type()
		if tp, ok := vt.(*types.TypeParam); ok && tp.Index() < len(tparams) {
			out[i] = tparams[tp.Index()]
			continue
		}
		out[i] = d.wrap(vt)
	}
	return out
}

func (d *Descriptor) info(obj types.Object, complexity int) *Info {
	return &Info{
		Object:     obj,
		Pos:        d.res.Fset.Position(obj.Pos()),
		Complexity: complexity,
	}
}
