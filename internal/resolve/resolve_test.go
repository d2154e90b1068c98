package resolve_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// fakeDescriptor serves a fixed member list.
type fakeDescriptor struct {
	members []*resolve.Candidate
	err     error
}

func (d *fakeDescriptor) TypeName() string { return "Sample" }

func (d *fakeDescriptor) Candidates(name string, kinds []taxonomy.Kind, b taxonomy.Binding) ([]*resolve.Candidate, error) {
	if d.err != nil {
		return nil, d.err
	}
	return resolve.Filter(d.members, name, kinds, b), nil
}

func method(name string, params ...typesys.Type) *resolve.Candidate {
	return &resolve.Candidate{Name: name, Kind: taxonomy.Method, Public: true, Params: params}
}

var (
	tInt      = typesys.TypeOf[int]()
	tString   = typesys.TypeOf[string]()
	tError    = typesys.TypeOf[error]()
	tStringer = typesys.TypeOf[fmt.Stringer]()
	tIntPtr   = typesys.TypeOf[*int]()
)

func anyQuery(name string) resolve.Query {
	return resolve.Query{Name: name, Binding: taxonomy.AnyBinding}
}

func TestResolve_SingleMember(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{method("Add", tInt, tInt)}}

	r, err := resolve.Resolve(d, anyQuery("Add"), taxonomy.OpInvoke, tInt, tInt)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if r.Name != "Add" {
		t.Errorf("resolved %q, want Add", r.Name)
	}

	q := anyQuery("Add")
	q.Signature, q.HasSignature = []typesys.Type{tInt, tInt}, true
	if _, err := resolve.Resolve(d, q, taxonomy.OpAny); err != nil {
		t.Errorf("consistent signature should still resolve: %v", err)
	}
}

func TestResolve_OverloadByArity(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{
		method("Sum", tInt),
		method("Sum", tInt, tInt),
		method("Sum", tInt, tInt, tInt),
	}}
	r, err := resolve.Resolve(d, anyQuery("Sum"), taxonomy.OpInvoke, tInt, tInt)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(r.Params) != 2 {
		t.Errorf("resolved arity %d, want 2", len(r.Params))
	}
}

func TestResolve_OverloadByType(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{
		method("Put", tInt),
		method("Put", tString),
	}}
	r, err := resolve.Resolve(d, anyQuery("Put"), taxonomy.OpInvoke, tString)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !r.Params[0].Identical(tString) {
		t.Errorf("resolved Put(%v), want Put(string)", r.Params[0])
	}
}

func TestResolve_NilOnlyMatchesNilable(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{
		method("Put", tInt),
		method("Put", tString),
	}}
	_, err := resolve.Resolve(d, anyQuery("Put"), taxonomy.OpInvoke, nil)
	var nf *resolve.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Total != 2 {
		t.Errorf("Total = %d, want 2", nf.Total)
	}
	if !strings.Contains(err.Error(), "0 matches out of 2") {
		t.Errorf("message lacks counts: %q", err.Error())
	}
}

func TestResolve_AmbiguousThenSignature(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{
		method("Describe", tError),
		method("Describe", tStringer),
		method("Describe", tInt, tInt),
	}}

	_, err := resolve.Resolve(d, anyQuery("Describe"), taxonomy.OpInvoke, nil)
	var amb *resolve.AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if len(amb.Matches) != 2 || amb.Total != 3 {
		t.Errorf("matches/total = %d/%d, want 2/3", len(amb.Matches), amb.Total)
	}
	if !strings.Contains(err.Error(), "2 matches out of 3") {
		t.Errorf("message lacks counts: %q", err.Error())
	}

	q := anyQuery("Describe")
	q.Signature, q.HasSignature = []typesys.Type{tStringer}, true
	r, err := resolve.Resolve(d, q, taxonomy.OpInvoke, nil)
	if err != nil {
		t.Fatalf("Resolve() with signature error: %v", err)
	}
	if !r.Params[0].Identical(tStringer) {
		t.Errorf("resolved Describe(%v), want Describe(fmt.Stringer)", r.Params[0])
	}
}

func TestResolve_SignatureWildcard(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{
		method("Pair", tInt, tString),
		method("Pair", tString, tString),
	}}
	q := anyQuery("Pair")
	q.Signature, q.HasSignature = []typesys.Type{tInt, nil}, true
	r, err := resolve.Resolve(d, q, taxonomy.OpAny)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !r.Params[0].Identical(tInt) {
		t.Errorf("resolved wrong overload %s", r.Signature())
	}
}

func TestResolve_SignatureRequiresIdentity(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{method("Log", tStringer)}}
	q := anyQuery("Log")
	q.Signature, q.HasSignature = []typesys.Type{typesys.TypeOf[stamp]()}, true
	if _, err := resolve.Resolve(d, q, taxonomy.OpAny); err == nil {
		t.Error("an assignable but different signature type must not match")
	}
}

func TestResolve_EmptySignatureMeansNoParams(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{
		method("Reset"),
		method("Reset", tInt),
	}}
	q := anyQuery("Reset")
	q.HasSignature = true
	r, err := resolve.Resolve(d, q, taxonomy.OpAny)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(r.Params) != 0 {
		t.Errorf("resolved %s, want Reset()", r.Signature())
	}
}

func echo() *resolve.Candidate {
	g := &typesys.Param{Index: 0, Name: "G"}
	return &resolve.Candidate{
		Name: "Echo", Kind: taxonomy.Method, Public: true,
		TypeParams: []*typesys.Param{g},
		Params:     []typesys.Type{g},
		Results:    []typesys.Type{g},
	}
}

func TestResolve_GenericInference(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{echo()}}
	r, err := resolve.Resolve(d, anyQuery("Echo"), taxonomy.OpInvoke, tInt)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !r.TypeArgs[0].Identical(tInt) {
		t.Errorf("inferred %v, want int", r.TypeArgs[0])
	}
	if !r.Results[0].Identical(tInt) || !r.Params[0].Identical(tInt) {
		t.Errorf("instantiated signature %v -> %v", r.Params, r.Results)
	}
}

func TestResolve_GenericExplicitMismatch(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{echo()}}
	q := anyQuery("Echo")
	q.Generic, q.HasGeneric = []typesys.Type{tString}, true
	_, err := resolve.Resolve(d, q, taxonomy.OpInvoke, tInt)
	var nf *resolve.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestResolve_EmptyGenericArgsMeansNonGeneric(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{echo(), method("Echo", tInt)}}

	if _, err := resolve.Resolve(d, anyQuery("Echo"), taxonomy.OpInvoke, tInt); err == nil {
		t.Fatal("generic and plain Echo(int) should be ambiguous")
	}

	q := anyQuery("Echo")
	q.HasGeneric = true
	r, err := resolve.Resolve(d, q, taxonomy.OpInvoke, tInt)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if r.Generic() {
		t.Error("empty generic argument list should select the non-generic overload")
	}
}

func TestResolve_GenericNilCannotInfer(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{echo()}}
	if _, err := resolve.Resolve(d, anyQuery("Echo"), taxonomy.OpInvoke, nil); err == nil {
		t.Error("nil carries no type and must leave the slot unresolved")
	}
}

func TestResolve_GenericLaterPositionFillsSlot(t *testing.T) {
	a := &typesys.Param{Index: 0, Name: "A"}
	same := &resolve.Candidate{
		Name: "Same", Kind: taxonomy.Method, Public: true,
		TypeParams: []*typesys.Param{a},
		Params:     []typesys.Type{a, a},
	}
	d := &fakeDescriptor{members: []*resolve.Candidate{same}}

	r, err := resolve.Resolve(d, anyQuery("Same"), taxonomy.OpInvoke, nil, tIntPtr)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !r.TypeArgs[0].Identical(tIntPtr) {
		t.Errorf("inferred %v, want *int", r.TypeArgs[0])
	}

	if _, err := resolve.Resolve(d, anyQuery("Same"), taxonomy.OpInvoke, tInt, tString); err == nil {
		t.Error("conflicting arguments for one parameter must not match")
	}
	if _, err := resolve.Resolve(d, anyQuery("Same"), taxonomy.OpInvoke, nil, tInt); err == nil {
		t.Error("nil for a slot later bound to int must not match")
	}
}

func TestResolve_GenericSignatureInfers(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{echo()}}
	q := anyQuery("Echo")
	q.Signature, q.HasSignature = []typesys.Type{tString}, true
	r, err := resolve.Resolve(d, q, taxonomy.OpInvoke, tString)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !r.TypeArgs[0].Identical(tString) {
		t.Errorf("inferred %v, want string", r.TypeArgs[0])
	}
}

func TestResolve_GenericConstraint(t *testing.T) {
	s := &typesys.Param{Index: 0, Name: "S", Constraint: typesys.Implements[fmt.Stringer]()}
	show := &resolve.Candidate{
		Name: "Show", Kind: taxonomy.Method, Public: true,
		TypeParams: []*typesys.Param{s},
		Params:     []typesys.Type{s},
	}
	d := &fakeDescriptor{members: []*resolve.Candidate{show}}
	if _, err := resolve.Resolve(d, anyQuery("Show"), taxonomy.OpInvoke, typesys.TypeOf[stamp]()); err != nil {
		t.Errorf("stamp satisfies fmt.Stringer: %v", err)
	}
	if _, err := resolve.Resolve(d, anyQuery("Show"), taxonomy.OpInvoke, tInt); err == nil {
		t.Error("int violates the fmt.Stringer constraint")
	}
}

func TestResolve_PlainLookupOfGenericMember(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{echo()}}
	r, err := resolve.Resolve(d, anyQuery("Echo"), taxonomy.OpAny)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if r.TypeArgs[0] != nil {
		t.Errorf("plain lookup should leave the type argument open, got %v", r.TypeArgs[0])
	}
}

func TestResolve_NoCandidates(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{method("Add", tInt)}}
	_, err := resolve.Resolve(d, anyQuery("add"), taxonomy.OpInvoke, tInt)
	var nf *resolve.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Total != 0 {
		t.Errorf("Total = %d, want 0", nf.Total)
	}
	want := "could not find any method or constructor 'add' of type 'Sample'"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestResolve_KindFilter(t *testing.T) {
	d := &fakeDescriptor{members: []*resolve.Candidate{method("Count")}}
	if _, err := resolve.Resolve(d, anyQuery("Count"), taxonomy.OpValue); err == nil {
		t.Error("a method must not resolve for value access")
	}
}

func TestResolve_BindingFilter(t *testing.T) {
	hidden := method("secret")
	hidden.Public = false
	d := &fakeDescriptor{members: []*resolve.Candidate{hidden}}

	q := anyQuery("secret")
	q.Binding = taxonomy.Public | taxonomy.Instance
	if _, err := resolve.Resolve(d, q, taxonomy.OpInvoke); err == nil {
		t.Error("public-only binding must not see a non-public member")
	}
	q.Binding = taxonomy.NonPublic | taxonomy.Instance
	if _, err := resolve.Resolve(d, q, taxonomy.OpInvoke); err != nil {
		t.Errorf("non-public binding should see the member: %v", err)
	}
}

func TestResolve_DescriptorError(t *testing.T) {
	cause := errors.New("broken descriptor")
	d := &fakeDescriptor{err: cause}
	_, err := resolve.Resolve(d, anyQuery("X"), taxonomy.OpAny)
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}
}

func TestCandidate_Signature(t *testing.T) {
	c := echo()
	if got := c.Signature(); got != "Echo[G](G) G" {
		t.Errorf("Signature() = %q", got)
	}
	f := &resolve.Candidate{Name: "Count", Kind: taxonomy.Field, Results: []typesys.Type{tInt}}
	if got := f.Signature(); got != "Count int" {
		t.Errorf("Signature() = %q", got)
	}
}

type stamp struct{}

func (stamp) String() string { return "stamp" }
