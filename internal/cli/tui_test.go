package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/flowscope/pkg/vizstate"
)

func treeState() *vizstate.State {
	s := vizstate.New()
	s.SetNode(vizstate.Node{ID: "n1", Label: "map"})
	s.SetNode(vizstate.Node{ID: "n2", Label: "filter"})
	s.SetNode(vizstate.Node{ID: "n3", Label: "sink"})
	s.SetEdge(vizstate.Edge{ID: "e1", Source: "n1", Target: "n2"})
	s.SetEdge(vizstate.Edge{ID: "e2", Source: "n2", Target: "n3"})
	s.SetContainer(vizstate.Container{ID: "c2", Label: "inner", Children: []string{"n3"}})
	s.SetContainer(vizstate.Container{ID: "c1", Label: "outer", Children: []string{"n1", "n2", "c2"}})
	return s
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestFlattenContainers(t *testing.T) {
	s := treeState()
	rows := flattenContainers(s)

	if len(rows) != 2 {
		t.Fatalf("flattenContainers() = %d rows, want 2", len(rows))
	}
	if rows[0].id != "c1" || rows[0].depth != 0 {
		t.Errorf("rows[0] = %+v, want c1 at depth 0", rows[0])
	}
	if rows[1].id != "c2" || rows[1].depth != 1 {
		t.Errorf("rows[1] = %+v, want c2 at depth 1", rows[1])
	}
	if rows[0].nodes != 2 || rows[0].containers != 1 {
		t.Errorf("c1 counts = %d nodes, %d containers, want 2 and 1", rows[0].nodes, rows[0].containers)
	}
}

func TestFlattenContainersCollapsed(t *testing.T) {
	s := treeState()
	s.CollapseContainer("c1")

	rows := flattenContainers(s)
	if len(rows) != 1 {
		t.Fatalf("flattenContainers() after collapse = %d rows, want 1", len(rows))
	}
	if !rows[0].collapsed {
		t.Error("c1 row should be marked collapsed")
	}
}

func TestContainerTreeModelToggle(t *testing.T) {
	s := treeState()
	m := NewContainerTreeModel(s)

	// Collapse c1 via enter
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(ContainerTreeModel)

	if len(m.Rows) != 1 {
		t.Fatalf("after collapse: %d rows, want 1", len(m.Rows))
	}
	if got := len(s.CollapsedContainers()); got != 1 {
		t.Errorf("collapsed containers = %d, want 1", got)
	}

	// Expand again
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(ContainerTreeModel)

	if len(m.Rows) != 2 {
		t.Fatalf("after expand: %d rows, want 2", len(m.Rows))
	}
	if got := len(s.CollapsedContainers()); got != 0 {
		t.Errorf("collapsed containers = %d, want 0", got)
	}
}

func TestContainerTreeModelCollapseAll(t *testing.T) {
	s := treeState()
	m := NewContainerTreeModel(s)

	updated, _ := m.Update(keyMsg("c"))
	m = updated.(ContainerTreeModel)

	// Only the outermost container stays visible.
	if len(m.Rows) != 1 {
		t.Fatalf("after collapse all: %d rows, want 1", len(m.Rows))
	}

	updated, _ = m.Update(keyMsg("e"))
	m = updated.(ContainerTreeModel)

	if len(m.Rows) != 2 {
		t.Fatalf("after expand all: %d rows, want 2", len(m.Rows))
	}
}

func TestContainerTreeModelNavigation(t *testing.T) {
	s := treeState()
	m := NewContainerTreeModel(s)

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(ContainerTreeModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after down = %d, want 1", m.Cursor)
	}

	// Down at the end stays put
	updated, _ = m.Update(keyMsg("j"))
	m = updated.(ContainerTreeModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after down at end = %d, want 1", m.Cursor)
	}

	updated, _ = m.Update(keyMsg("k"))
	m = updated.(ContainerTreeModel)
	if m.Cursor != 0 {
		t.Errorf("cursor after up = %d, want 0", m.Cursor)
	}
}

func TestContainerTreeModelQuit(t *testing.T) {
	s := treeState()
	m := NewContainerTreeModel(s)

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
}

func TestContainerTreeModelView(t *testing.T) {
	s := treeState()
	m := NewContainerTreeModel(s)

	view := m.View()
	if !strings.Contains(view, "outer") {
		t.Error("view should contain the outer container label")
	}
	if !strings.Contains(view, "inner") {
		t.Error("view should contain the inner container label")
	}
	if !strings.Contains(view, "visible:") {
		t.Error("view should contain the stats footer")
	}
}
