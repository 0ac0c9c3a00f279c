package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ContainerTreeModel - Interactive collapse/expand exploration
// =============================================================================

// treeRow is one visible container in the flattened hierarchy.
type treeRow struct {
	id         string
	label      string
	depth      int
	collapsed  bool
	nodes      int // direct member nodes
	containers int // direct child containers
}

// ContainerTreeModel is the bubbletea model for exploring the container
// hierarchy. Toggling a row collapses or expands that container in the
// underlying state; the tree re-flattens after every toggle.
type ContainerTreeModel struct {
	State  *vizstate.State
	Rows   []treeRow
	Cursor int
	Height int
	Offset int
}

// NewContainerTreeModel creates a model over the given state.
func NewContainerTreeModel(s *vizstate.State) ContainerTreeModel {
	m := ContainerTreeModel{
		State:  s,
		Height: 15,
	}
	m.Rows = flattenContainers(s)
	return m
}

func (m ContainerTreeModel) Init() tea.Cmd {
	return nil
}

func (m ContainerTreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if len(m.Rows) > 0 {
				row := m.Rows[m.Cursor]
				if row.collapsed {
					m.State.ExpandContainer(row.id)
				} else {
					m.State.CollapseContainer(row.id)
				}
				m.reflow()
			}
		case "c":
			for _, c := range m.State.Containers() {
				m.State.CollapseContainer(c.ID)
			}
			m.reflow()
		case "e":
			for _, c := range m.State.Containers() {
				m.State.ExpandContainer(c.ID)
			}
			m.reflow()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// reflow rebuilds the rows and clamps the cursor after a toggle changed
// which containers are visible.
func (m *ContainerTreeModel) reflow() {
	m.Rows = flattenContainers(m.State)
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

func (m ContainerTreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Container Hierarchy"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle  c collapse all  e expand all  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (no containers)"))
		b.WriteString("\n")
	}

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		marker := "▾"
		if row.collapsed {
			marker = "▸"
		}

		indent := strings.Repeat("  ", row.depth)
		line := cursor + indent + marker + " " + style.Render(row.label)

		var counts []string
		if row.nodes > 0 {
			counts = append(counts, fmt.Sprintf("%d nodes", row.nodes))
		}
		if row.containers > 0 {
			counts = append(counts, fmt.Sprintf("%d groups", row.containers))
		}
		if len(counts) > 0 {
			line += " " + listDimStyle.Render("("+strings.Join(counts, ", ")+")")
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	st := m.State.Stats()
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf(
		"visible: %d nodes · %d edges · %d hyperedges",
		st.VisibleNodes, st.VisibleEdges, st.HyperEdges)))
	b.WriteString("\n")

	return b.String()
}

// flattenContainers walks the visible containment tree depth-first.
// Children of a collapsed container stay hidden, so only its row appears.
func flattenContainers(s *vizstate.State) []treeRow {
	visible := make(map[string]vizstate.Container)
	for _, c := range s.VisibleContainers() {
		visible[c.ID] = c
	}

	var roots []vizstate.Container
	for _, c := range s.VisibleContainers() {
		if _, ok := s.ContainerOf(c.ID); !ok {
			roots = append(roots, c)
		}
	}

	var rows []treeRow
	var walk func(c vizstate.Container, depth int)
	walk = func(c vizstate.Container, depth int) {
		nodes, children := 0, 0
		var sub []vizstate.Container
		for _, childID := range s.ChildrenOf(c.ID) {
			if child, ok := visible[childID]; ok {
				children++
				sub = append(sub, child)
			} else if _, ok := s.Container(childID); ok {
				children++
			} else {
				nodes++
			}
		}
		rows = append(rows, treeRow{
			id:         c.ID,
			label:      c.DisplayLabel(),
			depth:      depth,
			collapsed:  c.Collapsed,
			nodes:      nodes,
			containers: children,
		})
		if c.Collapsed {
			return
		}
		for _, child := range sub {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return rows
}
