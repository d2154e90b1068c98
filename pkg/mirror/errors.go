package mirror

import (
	"errors"
	"fmt"

	"github.com/unbound-force/mirror/internal/bind"
	"github.com/unbound-force/mirror/internal/resolve"
)

// ErrorKind classifies the failures raised by the mirror itself.
type ErrorKind string

// Error kinds.
const (
	TypeNotFound          ErrorKind = "TypeNotFound"
	MemberNotFound        ErrorKind = "MemberNotFound"
	AmbiguousMember       ErrorKind = "AmbiguousMember"
	InvocationSetupFailed ErrorKind = "InvocationSetupFailed"
	InvalidArgument       ErrorKind = "InvalidArgument"
)

// Error is a failure of resolution or binding. Errors returned by the
// member being accessed are never wrapped in an Error.
type Error struct {
	Kind    ErrorKind
	Message string

	// Member describes the member the failure concerns, when known.
	Member string

	// Matches and Candidates count the matching and same-named members
	// for MemberNotFound and AmbiguousMember.
	Matches    int
	Candidates int

	// Err is the underlying cause.
	Err error
}

// Sentinels for errors.Is.
var (
	ErrTypeNotFound          = &Error{Kind: TypeNotFound}
	ErrMemberNotFound        = &Error{Kind: MemberNotFound}
	ErrAmbiguousMember       = &Error{Kind: AmbiguousMember}
	ErrInvocationSetupFailed = &Error{Kind: InvocationSetupFailed}
	ErrInvalidArgument       = &Error{Kind: InvalidArgument}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return "mirror: " + string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func invalidArgument(format string, args ...any) *Error {
	return &Error{Kind: InvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// resolutionError maps a resolver failure onto the taxonomy.
func resolutionError(err error) error {
	var nf *resolve.NotFoundError
	if errors.As(err, &nf) {
		return &Error{Kind: MemberNotFound, Message: nf.Error(), Candidates: nf.Total, Err: err}
	}
	var amb *resolve.AmbiguousError
	if errors.As(err, &amb) {
		return &Error{
			Kind:       AmbiguousMember,
			Message:    amb.Error(),
			Matches:    len(amb.Matches),
			Candidates: amb.Total,
			Err:        err,
		}
	}
	return err
}

// setupError translates a binding failure and passes everything else,
// the member's own errors included, through untouched.
func setupError(err error, action string, m *ResolvedMember) error {
	if err == nil {
		return nil
	}
	if f, ok := bind.AsFailure(err); ok {
		return &Error{
			Kind:    InvocationSetupFailed,
			Message: fmt.Sprintf("could not %s %s: %v", action, m, f.Err),
			Member:  m.String(),
			Err:     f.Err,
		}
	}
	return err
}
