package mirror

import (
	"reflect"
	"slices"

	"github.com/unbound-force/mirror/internal/bind"
)

// Handler is an event handler coerced to the handler type of an event.
type Handler struct {
	// Key identifies the function the handler was made from, so removing
	// the same function finds the wrapper added earlier.
	Key uintptr

	// Code is the code pointer of that function. Removal falls back to
	// it when no Key matches, since each evaluation of a method value
	// such as obj.OnChanged builds a new function value.
	Code uintptr

	// Func has the event's handler type. It is nil for a nil handler.
	Func reflect.Value
}

// IsNil reports whether h was made from a nil handler.
func (h Handler) IsNil() bool {
	return !h.Func.IsValid() || h.Func.IsNil()
}

// Coerce adapts fn to handlerType. fn may already have that type, or
// any function type of the same shape whose parameters and results
// convert to and from the handler's.
func Coerce(handlerType reflect.Type, fn any) (Handler, error) {
	v, err := bind.Coerce(handlerType, fn)
	if err != nil {
		return Handler{}, &Error{
			Kind:    InvocationSetupFailed,
			Message: "could not coerce handler: " + err.Error(),
			Err:     err,
		}
	}
	return newHandler(fn, v), nil
}

func newHandler(fn any, v reflect.Value) Handler {
	return Handler{Key: bind.Identity(fn), Code: bind.Code(fn), Func: v}
}

// EventList is an ordered list of event subscribers.
type EventList struct {
	handlers []Handler
}

// Add appends h. Nil handlers are ignored.
func (l *EventList) Add(h Handler) {
	if h.IsNil() {
		return
	}
	l.handlers = append(l.handlers, h)
}

// Remove drops the most recently added handler made from the same
// function value as h, or failing that from the same function code.
// Removing a handler that was never added does nothing.
func (l *EventList) Remove(h Handler) {
	if h.IsNil() {
		return
	}
	i := l.find(func(o Handler) bool { return o.Key == h.Key })
	if i < 0 && h.Code != 0 {
		i = l.find(func(o Handler) bool { return o.Code == h.Code })
	}
	if i < 0 {
		return
	}
	// Raise may be ranging over the old slice.
	l.handlers = slices.Delete(slices.Clone(l.handlers), i, i+1)
}

func (l *EventList) find(match func(Handler) bool) int {
	for i := len(l.handlers) - 1; i >= 0; i-- {
		if match(l.handlers[i]) {
			return i
		}
	}
	return -1
}

// Len returns the number of subscribers.
func (l *EventList) Len() int { return len(l.handlers) }

// Raise calls the subscribers present when it starts, in order, with
// args. It stops at the first subscriber whose parameters args do not
// fit, including coerced handlers that cannot convert an argument at
// run time. Panics of the subscribers themselves propagate.
func (l *EventList) Raise(args ...any) error {
	for _, h := range l.handlers {
		in, err := bind.Args(ins(h.Func.Type()), args)
		if err != nil {
			return raiseError(err)
		}
		if err := raise(h, in); err != nil {
			return err
		}
	}
	return nil
}

func raise(h Handler, in []reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*bind.Failure)
			if !ok {
				panic(r)
			}
			err = raiseError(f)
		}
	}()
	bind.Call(h.Func, in)
	return nil
}

func raiseError(err error) error {
	return &Error{Kind: InvocationSetupFailed, Message: "could not raise event: " + err.Error(), Err: err}
}
