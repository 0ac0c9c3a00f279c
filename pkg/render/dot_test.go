package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

func demoState() *vizstate.State {
	s := vizstate.New()
	s.SetNode(vizstate.Node{ID: "n1", Label: "source", FullLabel: "source_iter([1,2,3])", Type: "Source"})
	s.SetNode(vizstate.Node{ID: "n2", Label: "map", Type: "Transform"})
	s.SetNode(vizstate.Node{ID: "n3", Label: "sink", Type: "Sink"})
	s.SetEdge(vizstate.Edge{ID: "e1", Source: "n1", Target: "n2", Style: vizstate.StyleThick})
	s.SetEdge(vizstate.Edge{ID: "e2", Source: "n2", Target: "n3", Style: vizstate.StyleWarning, Label: "retry"})
	s.SetContainer(vizstate.Container{ID: "c1", Label: "Process 0", Children: []string{"n1", "n2"}})
	return s
}

func TestToDOT_Styles(t *testing.T) {
	dot := ToDOT(demoState(), config.Default(), Options{})

	if !strings.Contains(dot, `"n1" -> "n2" [penwidth=3];`) {
		t.Errorf("thick edge missing:\n%s", dot)
	}
	if !strings.Contains(dot, `"n2" -> "n3" [color=red, penwidth=2, fontcolor=red, label="retry"];`) {
		t.Errorf("warning edge missing:\n%s", dot)
	}
	if !strings.Contains(dot, `subgraph "cluster_c1"`) {
		t.Errorf("expanded container missing:\n%s", dot)
	}
	if !strings.Contains(dot, `color="#059669"`) {
		t.Errorf("Source type color missing:\n%s", dot)
	}
}

func TestToDOT_DetailedLabels(t *testing.T) {
	dot := ToDOT(demoState(), config.Default(), Options{Detailed: true})
	if !strings.Contains(dot, `label="source_iter([1,2,3])"`) {
		t.Errorf("full label missing:\n%s", dot)
	}
	// Nodes without a full label keep the short one.
	if !strings.Contains(dot, `label="map"`) {
		t.Errorf("fallback label missing:\n%s", dot)
	}
}

func TestToDOT_CollapsedHyperEdges(t *testing.T) {
	s := demoState()
	s.SetEdge(vizstate.Edge{ID: "e3", Source: "n1", Target: "n3"})
	s.CollapseContainer("c1")
	dot := ToDOT(s, config.Default(), Options{})

	if !strings.Contains(dot, `"c1" [label="Process 0", shape=box3d`) {
		t.Errorf("collapsed box missing:\n%s", dot)
	}
	// e2 and e3 merge into one dashed hyperedge with an edge count; the
	// warning style of e2 wins the aggregate.
	if !strings.Contains(dot, `"c1" -> "n3" [color=red, penwidth=2, fontcolor=red, style=dashed, label="2 edges"];`) {
		t.Errorf("hyperedge missing:\n%s", dot)
	}
	if strings.Contains(dot, `"n1"`) {
		t.Errorf("hidden node leaked:\n%s", dot)
	}
}

func TestToDOT_Legend(t *testing.T) {
	dot := ToDOT(demoState(), config.Default(), Options{Legend: true})
	if !strings.Contains(dot, `subgraph "cluster_legend"`) {
		t.Errorf("legend cluster missing:\n%s", dot)
	}
	if !strings.Contains(dot, `"legend_Transform"`) {
		t.Errorf("legend entry missing:\n%s", dot)
	}

	// No typed nodes, no legend.
	s := vizstate.New()
	s.SetNode(vizstate.Node{ID: "a"})
	dot = ToDOT(s, config.Default(), Options{Legend: true})
	if strings.Contains(dot, "legend") {
		t.Errorf("unexpected legend:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?>
<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)
	got := string(normalizeViewBox(svg))
	if !strings.Contains(got, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", got)
	}
	if !strings.Contains(got, `width="100" height="50"`) {
		t.Errorf("pixel dimensions missing: %s", got)
	}

	// SVGs without a viewBox pass through untouched.
	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("expected passthrough without viewBox")
	}
}
