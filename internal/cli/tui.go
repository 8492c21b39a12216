package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/treeline/pkg/stree"
)

// Tree browser styles. Anchors reuse StyleSuccess and dangling aliases
// StyleWarning from the shared palette.
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	treeDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	treeTagStyle      = lipgloss.NewStyle().Foreground(colorGray)
	treeAliasStyle    = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// TreeModel - Interactive tree browsing
// =============================================================================

// treeRow is one visible line of the browser: a node plus the label it is
// reached by (mapping key, sequence index, or document heading).
type treeRow struct {
	Node  *stree.Node
	Label string
	Depth int
}

// TreeModel is the bubbletea model for interactive tree browsing. The
// visible rows are rebuilt from the expansion state after every toggle.
type TreeModel struct {
	Title  string
	Cursor int
	Height int
	Offset int

	stream   *stree.Stream
	rows     []treeRow
	expanded map[*stree.Node]bool
	anchors  map[string]bool
}

// NewTreeModel creates a browse model with the document roots expanded.
func NewTreeModel(s *stree.Stream, title string) TreeModel {
	m := TreeModel{
		Title:    title,
		Height:   15,
		stream:   s,
		expanded: make(map[*stree.Node]bool),
		anchors:  make(map[string]bool),
	}
	for _, doc := range s.Documents {
		if doc.Root == nil {
			continue
		}
		m.expanded[doc.Root] = true
		doc.Root.Walk(func(n *stree.Node) bool {
			if n.Anchor != "" {
				m.anchors[n.Anchor] = true
			}
			return true
		})
	}
	m.rebuild()
	return m
}

// Rows returns the number of currently visible lines.
func (m TreeModel) Rows() int { return len(m.rows) }

func (m *TreeModel) rebuild() {
	m.rows = m.rows[:0]
	for i, doc := range m.stream.Documents {
		m.appendRows(doc.Root, fmt.Sprintf("document %d", i+1), 0)
	}
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *TreeModel) appendRows(n *stree.Node, label string, depth int) {
	m.rows = append(m.rows, treeRow{Node: n, Label: label, Depth: depth})
	if n == nil || !m.expanded[n] {
		return
	}
	switch n.Kind {
	case stree.KindSequence:
		for i, item := range n.Items {
			m.appendRows(item, fmt.Sprintf("[%d]", i), depth+1)
		}
	case stree.KindMapping:
		for _, p := range n.Pairs {
			m.appendRows(p.Value, keyLabel(p.Key), depth+1)
		}
	}
}

// keyLabel renders a mapping key for display. Keys are full nodes, so
// collection keys get a placeholder instead of their whole subtree.
func keyLabel(k *stree.Node) string {
	switch {
	case k == nil:
		return "~"
	case k.Kind == stree.KindScalar:
		return k.Value
	default:
		return "(" + k.Kind.String() + " key)"
	}
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ", "right", "l":
			m.toggle()
		case "left", "h":
			m.collapse()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// toggle expands or collapses the collection under the cursor.
func (m *TreeModel) toggle() {
	if m.Cursor >= len(m.rows) {
		return
	}
	n := m.rows[m.Cursor].Node
	if n == nil || n.Len() == 0 {
		return
	}
	m.expanded[n] = !m.expanded[n]
	m.rebuild()
}

// collapse folds the collection under the cursor, or moves to its parent
// when it is already folded.
func (m *TreeModel) collapse() {
	if m.Cursor >= len(m.rows) {
		return
	}
	row := m.rows[m.Cursor]
	if row.Node != nil && m.expanded[row.Node] {
		m.expanded[row.Node] = false
		m.rebuild()
		return
	}
	for i := m.Cursor - 1; i >= 0; i-- {
		if m.rows[i].Depth < row.Depth {
			m.Cursor = i
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
			return
		}
	}
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse " + m.Title))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓ navigate  ⏎ expand/collapse  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		b.WriteString(cursor)
		b.WriteString(strings.Repeat("  ", row.Depth))
		b.WriteString(m.renderRow(row, i == m.Cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))

	return b.String()
}

func (m TreeModel) renderRow(row treeRow, current bool) string {
	labelStyle := treeNormalStyle
	if current {
		labelStyle = treeSelectedStyle
	}

	n := row.Node
	parts := []string{labelStyle.Render(row.Label + ":")}

	if n == nil {
		parts = append(parts, treeDimStyle.Render("~"))
		return strings.Join(parts, " ")
	}

	if n.Tag != "" && !n.Implicit {
		parts = append(parts, treeTagStyle.Render(n.Tag))
	}

	switch n.Kind {
	case stree.KindScalar:
		parts = append(parts, treeNormalStyle.Render(truncateValue(n.Value)))
	case stree.KindAlias:
		style := treeAliasStyle
		if !m.anchors[n.Value] {
			style = StyleWarning
		}
		parts = append(parts, style.Render("*"+n.Value))
	case stree.KindSequence:
		parts = append(parts, treeDimStyle.Render(collectionSummary("sequence", len(n.Items), m.expanded[n])))
	case stree.KindMapping:
		parts = append(parts, treeDimStyle.Render(collectionSummary("mapping", len(n.Pairs), m.expanded[n])))
	}

	if n.Anchor != "" {
		parts = append(parts, StyleSuccess.Render("&"+n.Anchor))
	}

	return strings.Join(parts, " ")
}

func collectionSummary(kind string, count int, expanded bool) string {
	if count > 0 && !expanded {
		return fmt.Sprintf("%s (%d) …", kind, count)
	}
	return fmt.Sprintf("%s (%d)", kind, count)
}

func truncateValue(v string) string {
	if v == "" {
		return `""`
	}
	if len(v) > 60 {
		return v[:57] + "..."
	}
	return v
}
