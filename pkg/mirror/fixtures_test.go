package mirror_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/unbound-force/mirror/pkg/mirror"
)

var (
	ErrInsufficient = errors.New("insufficient funds")
	ErrEmptyLabel   = errors.New("label must not be empty")
	errExploded     = errors.New("exploded")
)

type audit struct {
	Revision int
	note     string
}

type Account struct {
	Owner   string
	Tags    map[string]string
	balance int
	audit
}

func (a *Account) Deposit(n int) { a.balance += n }

func (a Account) Balance() int { return a.balance }

func (a *Account) Withdraw(n int) error {
	if n > a.balance {
		return ErrInsufficient
	}
	a.balance -= n
	return nil
}

func (a *Account) Explode() { panic(errExploded) }

func (a *Account) Note(parts ...string) string { return strings.Join(parts, " ") }

// ChangedFunc is the handler type of Sample's Changed event.
type ChangedFunc func(sender any, name string)

type SampleOptions struct {
	Verbose bool
}

type Sample struct {
	label   string
	items   []string
	changed mirror.EventList
}

type stamp struct{}

func (stamp) String() string { return "stamp" }

var sampleInstances int

// sampleRegistry declares Sample's members in a fresh registry.
func sampleRegistry() *mirror.Registry {
	reg := mirror.NewRegistry()
	cls := reg.Declare(reflect.TypeFor[Sample]())

	cls.Constructor(func() *Sample { return &Sample{} }).
		Constructor(func(items []string) *Sample { return &Sample{items: items} })

	cls.Method("Sum", func(a int) int { return a }, mirror.Static()).
		Method("Sum", func(a, b int) int { return a + b }, mirror.Static()).
		Method("Sum", func(a, b, c int) int { return a + b + c }, mirror.Static())

	cls.Method("Put", func(s *Sample, v int) string { return "int" }).
		Method("Put", func(s *Sample, v string) string { return "string" })

	cls.Method("Describe", func(s *Sample, err error) string { return "error" }).
		Method("Describe", func(s *Sample, st fmt.Stringer) string { return "stringer" })

	cls.Method("reset", func() { sampleInstances = 0 }, mirror.Static(), mirror.NonPublic())

	g := mirror.NewTypeParam("G")
	cls.Generic("Echo", []*mirror.TypeParam{g}, []mirror.Type{g}, []mirror.Type{g},
		func(_ reflect.Value, _ []reflect.Type, args []reflect.Value) ([]reflect.Value, error) {
			return args, nil
		}, mirror.Static())

	t := mirror.NewTypeParam("T")
	cls.Generic("Convert", []*mirror.TypeParam{t}, []mirror.Type{t}, []mirror.Type{mirror.TypeOf[string]()},
		func(_ reflect.Value, typeArgs []reflect.Type, args []reflect.Value) ([]reflect.Value, error) {
			return []reflect.Value{reflect.ValueOf("generic " + typeArgs[0].String())}, nil
		}, mirror.Static()).
		Method("Convert", func(v int) string { return "plain" }, mirror.Static())

	s := mirror.NewTypeParam("S", mirror.Implements[fmt.Stringer]())
	cls.Generic("Show", []*mirror.TypeParam{s}, []mirror.Type{s}, []mirror.Type{mirror.TypeOf[string]()},
		func(recv reflect.Value, _ []reflect.Type, args []reflect.Value) ([]reflect.Value, error) {
			label := recv.Interface().(*Sample).label
			return []reflect.Value{reflect.ValueOf(label + ":" + args[0].Interface().(fmt.Stringer).String())}, nil
		})

	cls.Var("Instances", &sampleInstances)

	cls.Property("Label",
		func(s *Sample) string { return s.label },
		func(s *Sample, v string) error {
			if v == "" {
				return ErrEmptyLabel
			}
			s.label = v
			return nil
		}).
		Property("Size", func(s *Sample) int { return len(s.items) }, nil)

	cls.Indexer("Item",
		func(s *Sample, i int) string { return s.items[i] },
		func(s *Sample, i int, v string) { s.items[i] = v })

	cls.ListEvent("Changed", reflect.TypeFor[ChangedFunc](),
		func(s *Sample) *mirror.EventList { return &s.changed })

	cls.Nested("Options", reflect.TypeFor[SampleOptions]())

	cls.Method("Fail", func(s *Sample) { panic("sample failure") })

	return reg
}

// listener subscribes to Changed through a method value.
type listener struct {
	calls int
}

func (l *listener) OnChanged(sender any, name string) { l.calls++ }
