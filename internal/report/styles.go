package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/unbound-force/mirror/internal/taxonomy"
)

// Styles defines the visual theme for terminal report output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for section headers (e.g. "=== Shape ===").
	Header lipgloss.Style

	// SubHeader is used for secondary information lines.
	SubHeader lipgloss.Style

	// Kind colors by member kind.
	Field    lipgloss.Style
	Property lipgloss.Style
	Method   lipgloss.Style
	Ctor     lipgloss.Style
	Event    lipgloss.Style
	Nested   lipgloss.Style

	// TableHeader styles the header row of tables.
	TableHeader lipgloss.Style

	// TableCell styles regular table cells.
	TableCell lipgloss.Style

	// ComplexityBad styles complexities above the threshold.
	ComplexityBad lipgloss.Style

	// ComplexityGood styles complexities within the threshold.
	ComplexityGood lipgloss.Style

	// Pass styles a successful resolution.
	Pass lipgloss.Style

	// Fail styles a failed resolution.
	Fail lipgloss.Style

	// Border is used for table borders.
	Border lipgloss.Style

	// Muted is used for de-emphasized text.
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		Field:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		Property: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Method:   lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		Ctor:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		Event:    lipgloss.NewStyle().Foreground(lipgloss.Color("170")),
		Nested:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		ComplexityBad:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		ComplexityGood: lipgloss.NewStyle().Foreground(lipgloss.Color("40")),

		Pass: lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		Fail: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// KindStyle returns the style for a member kind.
func (s Styles) KindStyle(kind taxonomy.Kind) lipgloss.Style {
	switch kind {
	case taxonomy.Field:
		return s.Field
	case taxonomy.Property, taxonomy.IndexedProperty:
		return s.Property
	case taxonomy.Method:
		return s.Method
	case taxonomy.Constructor:
		return s.Ctor
	case taxonomy.Event:
		return s.Event
	case taxonomy.NestedType:
		return s.Nested
	default:
		return s.Muted
	}
}
