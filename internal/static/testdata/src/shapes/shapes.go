// Package shapes is a fixture for the static descriptor tests.
package shapes

import (
	"fmt"
	"strings"
)

// Origin is embedded in Shape.
type Origin struct {
	X, Y int
}

// Shape has fields, promoted fields and methods of both receivers.
type Shape struct {
	Name  string
	sides int
	Origin
}

// Grid is indexed by name.
type Grid map[string]int

// Sides is the default number of sides.
const Sides = 4

// Default is a package variable.
var Default = Shape{Name: "default", sides: Sides}

// NewShape builds a named shape.
func NewShape(name string) *Shape {
	return &Shape{Name: name, sides: Sides}
}

// NewSquare builds a square.
func NewSquare() Shape {
	return Shape{Name: "square", sides: 4}
}

// Scale returns the scaled side count.
func (s *Shape) Scale(f int) int {
	return s.sides * f
}

// Area returns a made-up area.
func (s Shape) Area() int {
	if s.sides == 0 {
		return 0
	}
	if s.X > s.Y {
		return s.X * s.sides
	}
	return s.Y * s.sides
}

// Describe formats the shape with w.
func (s Shape) Describe(w fmt.Stringer) string {
	return s.Name + ":" + w.String()
}

func (s *Shape) rename(n string) {
	s.Name = n
}

// Number is a constraint.
type Number interface {
	~int | ~float64
}

// Max returns the larger of a and b.
func Max[T Number](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Print renders s.
func Print[S fmt.Stringer](s S) string {
	return s.String()
}

// Join joins parts.
func Join(parts ...string) string {
	return strings.Join(parts, " ")
}
