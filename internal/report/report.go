package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/static"
	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// Member is one listed or resolved member.
type Member struct {
	Name       string        `json:"name"`
	Kind       taxonomy.Kind `json:"kind"`
	Signature  string        `json:"signature"`
	Public     bool          `json:"public"`
	Static     bool          `json:"static"`
	Generic    bool          `json:"generic"`
	Location   string        `json:"location,omitempty"`
	Complexity int           `json:"complexity,omitempty"`
	Doc        string        `json:"doc,omitempty"`
}

// Listing is the output of the members command.
type Listing struct {
	Type    string   `json:"type"`
	Members []Member `json:"members"`
}

// Resolution is the output of the resolve command. Exactly one of
// Resolved and Error is set.
type Resolution struct {
	Type      string             `json:"type"`
	Member    string             `json:"member"`
	Operation taxonomy.Operation `json:"operation"`
	Resolved  *Member            `json:"resolved,omitempty"`
	// Instance is the resolved signature with generic arguments
	// substituted.
	Instance string           `json:"instance,omitempty"`
	TypeArgs []string         `json:"type_args,omitempty"`
	Error    *ResolutionError `json:"error,omitempty"`
}

// ResolutionError describes a failed resolution.
type ResolutionError struct {
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	Candidates int      `json:"candidates"`
	Matches    []string `json:"matches,omitempty"`
}

// Error kinds reported for failed resolutions.
const (
	MemberNotFound  = "MemberNotFound"
	AmbiguousMember = "AmbiguousMember"
)

// NewMember describes c. Source position and complexity are filled in
// for candidates of the static descriptor.
func NewMember(c *resolve.Candidate) Member {
	m := Member{
		Name:      c.Name,
		Kind:      c.Kind,
		Signature: c.Signature(),
		Public:    c.Public,
		Static:    c.Static,
		Generic:   c.Generic(),
	}
	if info, ok := c.Impl.(*static.Info); ok {
		if info.Pos.IsValid() {
			m.Location = info.Pos.String()
		}
		m.Complexity = info.Complexity
		m.Doc = info.Doc
	}
	return m
}

// NewListing describes every candidate of a type.
func NewListing(typeName string, cands []*resolve.Candidate) *Listing {
	l := &Listing{Type: typeName, Members: make([]Member, 0, len(cands))}
	for _, c := range cands {
		l.Members = append(l.Members, NewMember(c))
	}
	return l
}

// NewResolution records the outcome of resolve.Resolve. Errors other
// than the resolver's own are not resolution outcomes and make it
// return nil.
func NewResolution(typeName, member string, op taxonomy.Operation, r *resolve.Resolved, err error) *Resolution {
	res := &Resolution{Type: typeName, Member: member, Operation: op}
	if err == nil {
		m := NewMember(r.Candidate)
		res.Resolved = &m
		res.Instance = instance(r)
		res.TypeArgs = typesys.Strings(r.TypeArgs)
		return res
	}

	var nf *resolve.NotFoundError
	var amb *resolve.AmbiguousError
	switch {
	case errors.As(err, &amb):
		res.Error = &ResolutionError{
			Kind:       AmbiguousMember,
			Message:    err.Error(),
			Candidates: amb.Total,
		}
		for _, c := range amb.Matches {
			res.Error.Matches = append(res.Error.Matches, c.Signature())
		}
	case errors.As(err, &nf):
		res.Error = &ResolutionError{
			Kind:       MemberNotFound,
			Message:    err.Error(),
			Candidates: nf.Total,
		}
	default:
		return nil
	}
	return res
}

func instance(r *resolve.Resolved) string {
	switch r.Kind {
	case taxonomy.Field, taxonomy.Property, taxonomy.NestedType:
		return r.Signature()
	}
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.TypeArgs) > 0 {
		fmt.Fprintf(&b, "[%s]", strings.Join(typesys.Strings(r.TypeArgs), ", "))
	}
	fmt.Fprintf(&b, "(%s)", strings.Join(typesys.Strings(r.Params), ", "))
	switch len(r.Results) {
	case 0:
	case 1:
		fmt.Fprintf(&b, " %s", r.Results[0])
	default:
		fmt.Fprintf(&b, " (%s)", strings.Join(typesys.Strings(r.Results), ", "))
	}
	return b.String()
}
