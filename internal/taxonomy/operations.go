package taxonomy

import "fmt"

// Operation names what the caller intends to do with a resolved member.
// It decides which kinds are eligible and whether argument types take
// part in matching.
type Operation string

// Operations.
const (
	OpAny    Operation = "any"
	OpValue  Operation = "value"
	OpIndex  Operation = "index"
	OpInvoke Operation = "invoke"
	OpEvent  Operation = "event"
	OpNested Operation = "nested"
)

type operationInfo struct {
	kinds    []Kind
	what     string
	takeArgs bool
}

var operations = map[Operation]operationInfo{
	OpAny:    {AllKinds, "member", false},
	OpValue:  {[]Kind{Field, Property}, "field or property", false},
	OpIndex:  {[]Kind{IndexedProperty}, "indexed property", true},
	OpInvoke: {[]Kind{Method, Constructor}, "method or constructor", true},
	OpEvent:  {[]Kind{Event}, "event", false},
	OpNested: {[]Kind{NestedType}, "nested type", false},
}

// KindsFor returns the member kinds eligible for op.
func KindsFor(op Operation) []Kind {
	return operations[op].kinds
}

// Describe returns the noun used for op's members in messages.
func Describe(op Operation) string {
	if info, ok := operations[op]; ok {
		return info.what
	}
	return "member"
}

// TakesArgs reports whether op matches argument types against
// parameters.
func TakesArgs(op Operation) bool {
	return operations[op].takeArgs
}

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if _, ok := operations[op]; !ok {
		return "", fmt.Errorf("invalid operation %q: must be one of any, value, index, invoke, event, nested", s)
	}
	return op, nil
}
