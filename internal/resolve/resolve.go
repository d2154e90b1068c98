package resolve

import (
	"fmt"

	"github.com/unbound-force/mirror/internal/taxonomy"
	"github.com/unbound-force/mirror/internal/typesys"
)

// Query is the caller's description of a member.
type Query struct {
	Name string

	// Signature constrains parameter types when HasSignature is set.
	// Nil entries match any type.
	Signature    []typesys.Type
	HasSignature bool

	// Generic supplies generic arguments when HasGeneric is set. Nil
	// entries are inferred.
	Generic    []typesys.Type
	HasGeneric bool

	Binding taxonomy.Binding
}

// Resolved is the single candidate a query matched, instantiated.
type Resolved struct {
	*Candidate

	// TypeArgs holds the inferred or supplied generic arguments.
	TypeArgs []typesys.Type

	// Params and Results have every generic parameter substituted.
	Params  []typesys.Type
	Results []typesys.Type
}

// NotFoundError reports a query that matched nothing. Total is the
// number of same-named candidates that were considered.
type NotFoundError struct {
	Name  string
	Type  string
	What  string
	Total int
	Err   error
}

func (e *NotFoundError) Error() string {
	if e.Total == 0 {
		msg := fmt.Sprintf("could not find any %s '%s' of type '%s'", e.What, e.Name, e.Type)
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}
	return fmt.Sprintf("could not find a matching %s '%s' of type '%s': there were 0 matches out of %d members with the same name",
		e.What, e.Name, e.Type, e.Total)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// AmbiguousError reports a query that matched more than one candidate.
type AmbiguousError struct {
	Name    string
	Type    string
	What    string
	Matches []*Candidate
	Total   int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("could not find a unique matching %s '%s' of type '%s': there were %d matches out of %d members with the same name; provide a signature or generic arguments to narrow down the choices",
		e.What, e.Name, e.Type, len(e.Matches), e.Total)
}

// Resolve finds the single candidate of desc that q refers to for op.
// args are the actual argument types for operations that take
// arguments; a nil entry is an untyped nil.
func Resolve(desc Descriptor, q Query, op taxonomy.Operation, args ...typesys.Type) (*Resolved, error) {
	what := taxonomy.Describe(op)
	cands, err := desc.Candidates(q.Name, taxonomy.KindsFor(op), q.Binding)
	if err != nil {
		return nil, &NotFoundError{Name: q.Name, Type: desc.TypeName(), What: what, Err: err}
	}
	if len(cands) == 0 {
		return nil, &NotFoundError{Name: q.Name, Type: desc.TypeName(), What: what}
	}

	var matches []*Resolved
	for _, c := range cands {
		if r, ok := match(c, q, op, args); ok {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &NotFoundError{Name: q.Name, Type: desc.TypeName(), What: what, Total: len(cands)}
	}
	amb := &AmbiguousError{Name: q.Name, Type: desc.TypeName(), What: what, Total: len(cands)}
	for _, m := range matches {
		amb.Matches = append(amb.Matches, m.Candidate)
	}
	return nil, amb
}

// match checks one candidate against the query and instantiates it.
func match(c *Candidate, q Query, op taxonomy.Operation, args []typesys.Type) (*Resolved, bool) {
	if q.HasSignature && len(q.Signature) != len(c.Params) {
		return nil, false
	}
	if q.HasGeneric && len(q.Generic) != len(c.TypeParams) {
		return nil, false
	}
	takesArgs := taxonomy.TakesArgs(op) && c.Kind.Callable()
	if takesArgs && len(args) != len(c.Params) {
		return nil, false
	}

	slots := make([]typesys.Type, len(c.TypeParams))
	if q.HasGeneric {
		copy(slots, q.Generic)
	}

	// Positions whose formal was still an open parameter when checked.
	var deferred []int
	for i, formal := range c.Params {
		f := typesys.Substitute(formal, slots)
		_, open := typesys.IsParam(f)

		if q.HasSignature && q.Signature[i] != nil {
			sig := q.Signature[i]
			if p, ok := typesys.IsParam(f); ok {
				slots[p.Index] = sig
				f = sig
				open = false
			} else if !f.Identical(sig) {
				return nil, false
			}
		}

		if takesArgs {
			actual := args[i]
			if p, ok := typesys.IsParam(f); ok {
				if actual != nil {
					slots[p.Index] = actual
					open = false
				}
			} else if !typesys.Accepts(f, actual) {
				return nil, false
			}
		}

		if open {
			deferred = append(deferred, i)
		}
	}

	// A slot may have been filled by a later position.
	for _, i := range deferred {
		f := typesys.Substitute(c.Params[i], slots)
		if _, ok := typesys.IsParam(f); ok {
			continue
		}
		if q.HasSignature && q.Signature[i] != nil && !f.Identical(q.Signature[i]) {
			return nil, false
		}
		if takesArgs && !typesys.Accepts(f, args[i]) {
			return nil, false
		}
	}

	for i, p := range c.TypeParams {
		if slots[i] == nil {
			// Plain lookup may name an uninstantiated generic member.
			if op == taxonomy.OpAny {
				continue
			}
			return nil, false
		}
		if !p.Satisfied(slots[i]) {
			return nil, false
		}
	}

	r := &Resolved{
		Candidate: c,
		TypeArgs:  slots,
		Params:    substituteAll(c.Params, slots),
		Results:   substituteAll(c.Results, slots),
	}
	return r, true
}

func substituteAll(ts []typesys.Type, slots []typesys.Type) []typesys.Type {
	out := make([]typesys.Type, len(ts))
	for i, t := range ts {
		out[i] = typesys.Substitute(t, slots)
	}
	return out
}
