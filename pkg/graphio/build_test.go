package graphio

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

func sample(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestBuildState_LocationHierarchy(t *testing.T) {
	s, err := BuildState(sample(t), BuildOptions{})
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}

	st := s.Stats()
	if st.Nodes != 3 || st.Edges != 2 || st.Containers != 2 {
		t.Fatalf("stats = %+v", st)
	}

	if kids := s.ChildrenOf("loc0"); len(kids) != 2 {
		t.Errorf("loc0 children = %v", kids)
	}
	if parent, ok := s.ContainerOf("n3"); !ok || parent != "loc1" {
		t.Errorf("ContainerOf(n3) = %q %v", parent, ok)
	}

	// Edge styles come from the semantic tags via the default config.
	e1, _ := s.Edge("e1")
	if e1.Style != vizstate.StyleHighlighted {
		t.Errorf("e1 style = %v, want highlighted (Unbounded)", e1.Style)
	}
	e2, _ := s.Edge("e2")
	if e2.Style != vizstate.StyleWarning {
		t.Errorf("e2 style = %v, want warning (Cycle beats Network)", e2.Style)
	}
}

func TestBuildState_NestedChoice(t *testing.T) {
	s, err := BuildState(sample(t), BuildOptions{ChoiceID: "backtrace"})
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}

	if parent, ok := s.ContainerOf("bt_inner"); !ok || parent != "bt_root" {
		t.Errorf("ContainerOf(bt_inner) = %q %v", parent, ok)
	}
	if parent, ok := s.ContainerOf("n2"); !ok || parent != "bt_inner" {
		t.Errorf("ContainerOf(n2) = %q %v", parent, ok)
	}

	// Collapsing the root must swallow the whole tree.
	s.CollapseContainer("bt_root")
	if got := len(s.VisibleNodes()); got != 0 {
		t.Errorf("visible nodes after collapse = %d, want 0", got)
	}
}

func TestBuildState_LabelModes(t *testing.T) {
	doc := sample(t)

	s, err := BuildState(doc, BuildOptions{Labels: LabelShort})
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}
	n1, _ := s.Node("n1")
	if n1.Label != "src" {
		t.Errorf("short label = %q", n1.Label)
	}

	s, err = BuildState(doc, BuildOptions{Labels: LabelFull})
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}
	n1, _ = s.Node("n1")
	if n1.Label != "source_iter([1,2,3])" {
		t.Errorf("full label = %q", n1.Label)
	}
	// Nodes without a full label keep the short one.
	n2, _ := s.Node("n2")
	if n2.Label != "map" {
		t.Errorf("fallback label = %q", n2.Label)
	}
}

func TestBuildState_UnknownChoice(t *testing.T) {
	_, err := BuildState(sample(t), BuildOptions{ChoiceID: "ghost"})
	if !errors.Is(err, errors.ErrCodeInvalidHierarchy) {
		t.Fatalf("expected hierarchy error, got %v", err)
	}
}

func TestBuildState_FlatDocument(t *testing.T) {
	doc, err := Parse(strings.NewReader(`{
		"nodes":[{"id":"a"},{"id":"b"}],
		"edges":[{"id":"e","source":"a","target":"b"}]
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := BuildState(doc, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}
	if st := s.Stats(); st.Containers != 0 || st.VisibleNodes != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestExport_RoundTripsCollapsedState(t *testing.T) {
	s, err := BuildState(sample(t), BuildOptions{})
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}
	s.CollapseContainer("loc0")

	out, err := Export(s)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(out, &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(snap.Collapsed) != 1 || snap.Collapsed[0] != "loc0" {
		t.Errorf("Collapsed = %v", snap.Collapsed)
	}
	// e1 is internal to loc0; only e2 crosses the boundary.
	if len(snap.HyperEdges) != 1 || snap.HyperEdges[0].ID != vizstate.HyperEdgeID("loc0", "n3") {
		t.Errorf("hyperedges = %v", snap.HyperEdges)
	}
	if snap.Stats.VisibleNodes != 1 {
		t.Errorf("visible nodes = %d, want 1", snap.Stats.VisibleNodes)
	}
}
