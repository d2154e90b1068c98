package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/mirror/internal/taxonomy"
)

// TextOptions controls text output.
type TextOptions struct {
	// ComplexityThreshold highlights members above it. Zero disables
	// highlighting.
	ComplexityThreshold int
}

// WriteListingText writes a member listing as a styled table. Output
// uses lipgloss for color when the output is a TTY and degrades
// gracefully for pipes and CI.
func WriteListingText(w io.Writer, l *Listing, opts TextOptions) error {
	s := DefaultStyles()

	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", l.Type)))
	if len(l.Members) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No members found."))
		return nil
	}
	fmt.Fprintln(w)

	// 80 columns: borders and padding take 12, leaving KIND=15,
	// MEMBER=42, SCOPE=7, CPLX=4.
	const maxSig = 42
	rows := make([][]string, 0, len(l.Members))
	kinds := make([]taxonomy.Kind, 0, len(l.Members))
	over := make([]bool, 0, len(l.Members))
	for _, m := range l.Members {
		sig := m.Signature
		if len(sig) > maxSig {
			sig = sig[:maxSig-3] + "..."
		}
		cplx := ""
		if m.Complexity > 0 {
			cplx = strconv.Itoa(m.Complexity)
		}
		rows = append(rows, []string{string(m.Kind), sig, scope(m), cplx})
		kinds = append(kinds, m.Kind)
		over = append(over, opts.ComplexityThreshold > 0 && m.Complexity > opts.ComplexityThreshold)
	}

	t := table.New().
		Width(80).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if row < 0 || row >= len(rows) {
				return s.TableCell
			}
			switch col {
			case 0:
				return s.KindStyle(kinds[row])
			case 3:
				if over[row] {
					return s.ComplexityBad
				}
				return s.ComplexityGood
			}
			return s.TableCell
		}).
		Headers("KIND", "MEMBER", "SCOPE", "CPLX").
		Rows(rows...)

	fmt.Fprintln(w, t)

	counts := make(map[taxonomy.Kind]int)
	for _, m := range l.Members {
		counts[m.Kind]++
	}
	var parts []string
	for _, k := range taxonomy.AllKinds {
		if c, ok := counts[k]; ok {
			parts = append(parts, s.KindStyle(k).Render(fmt.Sprintf("%s: %d", k, c)))
		}
	}
	fmt.Fprintf(w, "    Summary: %s\n", strings.Join(parts, ", "))
	return nil
}

// scope abbreviates visibility and scope, e.g. "pub/i" or "priv/s".
func scope(m Member) string {
	vis := "priv"
	if m.Public {
		vis = "pub"
	}
	if m.Static {
		return vis + "/s"
	}
	return vis + "/i"
}

// WriteResolutionText writes a resolution outcome.
func WriteResolutionText(w io.Writer, r *Resolution) error {
	s := DefaultStyles()

	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s.%s (%s) ===", r.Type, r.Member, r.Operation)))
	if r.Error != nil {
		fmt.Fprintf(w, "    %s %s\n", s.Fail.Render(r.Error.Kind), r.Error.Message)
		for _, m := range r.Error.Matches {
			fmt.Fprintf(w, "      - %s\n", m)
		}
		return nil
	}

	m := r.Resolved
	fmt.Fprintf(w, "    %s %s\n", s.Pass.Render("resolved"), r.Instance)
	fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf("    %s %s, %s", m.Kind, m.Signature, scope(*m))))
	if len(r.TypeArgs) > 0 {
		fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf("    type arguments: %s", strings.Join(r.TypeArgs, ", "))))
	}
	if m.Location != "" {
		fmt.Fprintln(w, s.Muted.Render(fmt.Sprintf("    %s", m.Location)))
	}
	return nil
}
