package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/mirror/internal/report"
	"github.com/unbound-force/mirror/internal/taxonomy"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	tuiHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	tuiBorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	hotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// membersModel is the Bubble Tea model for browsing a member listing.
type membersModel struct {
	listing  *report.Listing
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	content  string
}

func newMembersModel(l *report.Listing, threshold int) membersModel {
	return membersModel{
		listing: l,
		help:    help.New(),
		keys:    defaultKeyMap,
		content: renderMembersContent(l, threshold),
	}
}

// renderMembersContent groups members by kind, one table per kind.
func renderMembersContent(l *report.Listing, threshold int) string {
	var sb strings.Builder
	styles := report.DefaultStyles()

	sb.WriteString(titleStyle.Render(
		fmt.Sprintf("Members of %s: %d", l.Type, len(l.Members))))
	sb.WriteString("\n\n")

	if len(l.Members) == 0 {
		sb.WriteString(statusStyle.Render("    No members found."))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, kind := range taxonomy.AllKinds {
		var rows [][]string
		var hot []bool
		for _, m := range l.Members {
			if m.Kind != kind {
				continue
			}
			sig := m.Signature
			if len(sig) > 60 {
				sig = sig[:57] + "..."
			}
			cplx := ""
			if m.Complexity > 0 {
				cplx = strconv.Itoa(m.Complexity)
			}
			doc := m.Doc
			if len(doc) > 40 {
				doc = doc[:37] + "..."
			}
			rows = append(rows, []string{sig, cplx, doc})
			hot = append(hot, threshold > 0 && m.Complexity > threshold)
		}
		if len(rows) == 0 {
			continue
		}

		sb.WriteString(styles.KindStyle(kind).Bold(true).Render(
			fmt.Sprintf("=== %s (%d) ===", kind, len(rows))))
		sb.WriteString("\n")

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tuiBorderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tuiHeaderStyle
				}
				if col == 1 && row >= 0 && row < len(hot) && hot[row] {
					return hotStyle
				}
				return lipgloss.NewStyle()
			}).
			Headers("MEMBER", "CPLX", "DOC").
			Rows(rows...)

		sb.WriteString(t.String())
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (m membersModel) Init() tea.Cmd {
	return nil
}

func (m membersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m membersModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.viewport.View() + "\n" + footer
}

// runInteractiveMembers launches the Bubble Tea TUI for browsing a
// member listing.
func runInteractiveMembers(l *report.Listing, threshold int) error {
	model := newMembersModel(l, threshold)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
