package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"go/token"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/static"
	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

var tParam = &typesys.Param{Index: 0, Name: "T"}

func sampleCandidates() []*resolve.Candidate {
	intType := typesys.TypeOf[int]()
	return []*resolve.Candidate{
		{
			Name:    "Count",
			Kind:    taxonomy.Field,
			Owner:   "Store",
			Public:  true,
			Results: []typesys.Type{intType},
		},
		{
			Name:    "Save",
			Kind:    taxonomy.Method,
			Owner:   "Store",
			Public:  true,
			Params:  []typesys.Type{typesys.TypeOf[string]()},
			Results: []typesys.Type{intType, typesys.TypeOf[error]()},
			Impl: &static.Info{
				Pos:        token.Position{Filename: "store.go", Line: 42, Column: 1},
				Complexity: 21,
				Doc:        "Save stores an item.",
			},
		},
		{
			Name:       "Max",
			Kind:       taxonomy.Method,
			Owner:      "Store",
			Static:     true,
			Params:     []typesys.Type{tParam, tParam},
			TypeParams: []*typesys.Param{tParam},
			Results:    []typesys.Type{tParam},
			Impl:       &static.Info{Complexity: 2},
		},
	}
}

func sampleListing() *Listing {
	return NewListing("Store", sampleCandidates())
}

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		t.Fatalf("failed to parse schema JSON: %v", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", sch); err != nil {
		t.Fatalf("failed to add schema resource: %v", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}
	return compiled
}

func validate(t *testing.T, compiled *jsonschema.Schema, out []byte) {
	t.Helper()
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if err := compiled.Validate(inst); err != nil {
		t.Errorf("JSON output does not conform to schema:\n%v\noutput:\n%s", err, out)
	}
}

func TestNewMember(t *testing.T) {
	l := sampleListing()
	if len(l.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(l.Members))
	}

	save := l.Members[1]
	if save.Signature != "Save(string) (int, error)" {
		t.Errorf("Signature = %q", save.Signature)
	}
	if save.Location != "store.go:42:1" {
		t.Errorf("Location = %q, want store.go:42:1", save.Location)
	}
	if save.Complexity != 21 {
		t.Errorf("Complexity = %d, want 21", save.Complexity)
	}
	if save.Doc != "Save stores an item." {
		t.Errorf("Doc = %q", save.Doc)
	}

	generic := l.Members[2]
	if !generic.Generic || !generic.Static || generic.Public {
		t.Errorf("flags = generic:%v static:%v public:%v", generic.Generic, generic.Static, generic.Public)
	}
	if generic.Location != "" {
		t.Errorf("expected no location for an invalid position, got %q", generic.Location)
	}
}

func TestNewResolution_Resolved(t *testing.T) {
	intType := typesys.TypeOf[int]()
	r := &resolve.Resolved{
		Candidate: sampleCandidates()[2],
		TypeArgs:  []typesys.Type{intType},
		Params:    []typesys.Type{intType, intType},
		Results:   []typesys.Type{intType},
	}
	res := NewResolution("Store", "Max", taxonomy.OpInvoke, r, nil)
	if res.Error != nil || res.Resolved == nil {
		t.Fatalf("expected a resolved member, got %+v", res)
	}
	if res.Instance != "Max[int](int, int) int" {
		t.Errorf("Instance = %q", res.Instance)
	}
	if len(res.TypeArgs) != 1 || res.TypeArgs[0] != "int" {
		t.Errorf("TypeArgs = %v", res.TypeArgs)
	}
}

func TestNewResolution_Errors(t *testing.T) {
	cands := sampleCandidates()
	amb := &resolve.AmbiguousError{
		Name: "Max", Type: "Store", What: "method",
		Matches: cands[1:], Total: 3,
	}
	res := NewResolution("Store", "Max", taxonomy.OpInvoke, nil, amb)
	if res.Error == nil || res.Error.Kind != AmbiguousMember {
		t.Fatalf("expected AmbiguousMember, got %+v", res.Error)
	}
	if res.Error.Candidates != 3 || len(res.Error.Matches) != 2 {
		t.Errorf("candidates/matches = %d/%d", res.Error.Candidates, len(res.Error.Matches))
	}

	nf := &resolve.NotFoundError{Name: "Nope", Type: "Store", What: "member"}
	res = NewResolution("Store", "Nope", taxonomy.OpAny, nil, nf)
	if res.Error == nil || res.Error.Kind != MemberNotFound {
		t.Fatalf("expected MemberNotFound, got %+v", res.Error)
	}
	if !strings.Contains(res.Error.Message, "could not find any member 'Nope'") {
		t.Errorf("Message = %q", res.Error.Message)
	}

	if NewResolution("Store", "Max", taxonomy.OpAny, nil, errors.New("boom")) != nil {
		t.Error("foreign errors are not resolution outcomes")
	}
}

func TestWriteListingJSON_ValidAgainstSchema(t *testing.T) {
	compiled := compileSchema(t)

	var buf bytes.Buffer
	if err := WriteListingJSON(&buf, sampleListing()); err != nil {
		t.Fatalf("WriteListingJSON failed: %v", err)
	}
	validate(t, compiled, buf.Bytes())

	var report JSONReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if report.Version != Version {
		t.Errorf("version = %q, want %q", report.Version, Version)
	}
	if report.Listing == nil || len(report.Listing.Members) != 3 {
		t.Errorf("expected 3 listed members, got %+v", report.Listing)
	}
}

func TestWriteListingJSON_Empty(t *testing.T) {
	compiled := compileSchema(t)

	var buf bytes.Buffer
	if err := WriteListingJSON(&buf, &Listing{Type: "Empty"}); err != nil {
		t.Fatalf("WriteListingJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"members": []`) {
		t.Errorf("expected an empty members array, got:\n%s", buf.String())
	}
	validate(t, compiled, buf.Bytes())
}

func TestWriteResolutionJSON_ValidAgainstSchema(t *testing.T) {
	compiled := compileSchema(t)
	cands := sampleCandidates()

	outcomes := []*Resolution{
		NewResolution("Store", "Save", taxonomy.OpInvoke, &resolve.Resolved{
			Candidate: cands[1],
			Params:    cands[1].Params,
			Results:   cands[1].Results,
		}, nil),
		NewResolution("Store", "Max", taxonomy.OpAny, nil, &resolve.AmbiguousError{
			Name: "Max", Type: "Store", What: "member", Matches: cands[1:], Total: 2,
		}),
	}
	for _, r := range outcomes {
		var buf bytes.Buffer
		if err := WriteResolutionJSON(&buf, r); err != nil {
			t.Fatalf("WriteResolutionJSON failed: %v", err)
		}
		validate(t, compiled, buf.Bytes())
	}
}

func TestSchema_RejectsBothPayloads(t *testing.T) {
	compiled := compileSchema(t)
	doc := `{"version": "0.1.0",
	  "listing": {"type": "T", "members": []},
	  "resolution": {"type": "T", "member": "M", "operation": "any",
	    "error": {"kind": "MemberNotFound", "message": "m", "candidates": 0}}}`
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if compiled.Validate(inst) == nil {
		t.Error("a report carrying both a listing and a resolution must be rejected")
	}
}

func TestWriteListingText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListingText(&buf, sampleListing(), TextOptions{ComplexityThreshold: 15}); err != nil {
		t.Fatal(err)
	}
	out := stripANSI(buf.String())
	for _, want := range []string{"=== Store ===", "Count int", "Save(string) (int, error)", "Max[T](T, T) T", "pub/i", "priv/s", "21", "Summary:", "Field: 1", "Method: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteListingText_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListingText(&buf, &Listing{Type: "Empty"}, TextOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No members found") {
		t.Error("expected 'No members found' for an empty listing")
	}
}

func TestWriteResolutionText(t *testing.T) {
	cands := sampleCandidates()
	var buf bytes.Buffer
	amb := NewResolution("Store", "Max", taxonomy.OpAny, nil, &resolve.AmbiguousError{
		Name: "Max", Type: "Store", What: "member", Matches: cands[1:], Total: 2,
	})
	if err := WriteResolutionText(&buf, amb); err != nil {
		t.Fatal(err)
	}
	out := stripANSI(buf.String())
	for _, want := range []string{"Store.Max (any)", "AmbiguousMember", "there were 2 matches out of 2", "- Max[T](T, T) T"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	ok := NewResolution("Store", "Save", taxonomy.OpInvoke, &resolve.Resolved{
		Candidate: cands[1], Params: cands[1].Params, Results: cands[1].Results,
	}, nil)
	if err := WriteResolutionText(&buf, ok); err != nil {
		t.Fatal(err)
	}
	out = stripANSI(buf.String())
	for _, want := range []string{"resolved Save(string) (int, error)", "store.go:42:1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// stripANSI removes ANSI escape sequences from text for width measurement.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func TestWriteListingText_FitsIn80Columns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListingText(&buf, sampleListing(), TextOptions{}); err != nil {
		t.Fatal(err)
	}

	const maxWidth = 80
	for i, line := range strings.Split(buf.String(), "\n") {
		plain := stripANSI(line)
		if width := utf8.RuneCountInString(plain); width > maxWidth {
			t.Errorf("line %d exceeds %d columns (%d runes): %q",
				i+1, maxWidth, width, plain)
		}
	}
}
