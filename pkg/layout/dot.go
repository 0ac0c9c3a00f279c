// Package layout computes geometry for the visible projection of a graph
// state. It builds a DOT description of the currently visible entities,
// hands it to Graphviz, and writes the resulting positions and edge splines
// back into the state's layout side channel. The core state never interprets
// the geometry; it only stores it.
package layout

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// BuildDOT renders the visible projection as a DOT graph for layout.
// Visible nodes and collapsed containers become box nodes, expanded
// containers become nested cluster subgraphs, and visible edges plus
// hyperedges become edges tagged with their id so the computed splines can
// be mapped back.
func BuildDOT(s *vizstate.State, cfg config.Config) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	// Index visible nodes by parent so clusters can emit their own members.
	byParent := make(map[string][]vizstate.Node)
	for _, n := range s.VisibleNodes() {
		parent, _ := s.ContainerOf(n.ID)
		byParent[parent] = append(byParent[parent], n)
	}

	collapsed := make(map[string]vizstate.Container)
	expanded := make(map[string]vizstate.Container)
	var roots []string
	for _, c := range s.VisibleContainers() {
		if c.Collapsed {
			collapsed[c.ID] = c
		} else {
			expanded[c.ID] = c
		}
		// A visible container's parent is either absent or a visible
		// expanded container, under which it is emitted recursively.
		if _, ok := s.ContainerOf(c.ID); !ok {
			roots = append(roots, c.ID)
		}
	}

	for _, n := range byParent[""] {
		writeNode(&buf, 1, n, cfg)
	}
	for _, id := range roots {
		writeContainer(&buf, 1, s, id, collapsed, expanded, byParent, cfg)
	}

	buf.WriteString("\n")
	for _, e := range s.VisibleEdges() {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.Source, e.Target, e.ID)
	}
	for _, h := range s.HyperEdges() {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", h.Source, h.Target, h.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeContainer(buf *bytes.Buffer, depth int, s *vizstate.State, id string, collapsed, expanded map[string]vizstate.Container, byParent map[string][]vizstate.Node, cfg config.Config) {
	pad := strings.Repeat("  ", depth)
	if c, ok := collapsed[id]; ok {
		fmt.Fprintf(buf, "%s%q [label=%q, style=\"filled,bold\", fillcolor=lightgrey];\n", pad, c.ID, c.DisplayLabel())
		return
	}
	c, ok := expanded[id]
	if !ok {
		return
	}

	fmt.Fprintf(buf, "%ssubgraph %q {\n", pad, ClusterName(c.ID))
	fmt.Fprintf(buf, "%s  label=%q;\n", pad, c.DisplayLabel())
	fmt.Fprintf(buf, "%s  style=rounded;\n", pad)
	for _, n := range byParent[c.ID] {
		writeNode(buf, depth+1, n, cfg)
	}
	for _, child := range s.ChildrenOf(c.ID) {
		writeContainer(buf, depth+1, s, child, collapsed, expanded, byParent, cfg)
	}
	fmt.Fprintf(buf, "%s}\n", pad)
}

func writeNode(buf *bytes.Buffer, depth int, n vizstate.Node, cfg config.Config) {
	pad := strings.Repeat("  ", depth)
	attrs := []string{fmt.Sprintf("label=%q", n.DisplayLabel())}
	if color := cfg.ColorFor(n.Type); color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", color))
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", pad, n.ID, strings.Join(attrs, ", "))
}

// ClusterName returns the Graphviz subgraph name for a container. Graphviz
// only treats subgraphs as clusters when the name carries this prefix.
func ClusterName(containerID string) string {
	return "cluster_" + containerID
}

// ContainerID inverts [ClusterName]. The second return is false when the
// name is not a cluster name.
func ContainerID(clusterName string) (string, bool) {
	id, ok := strings.CutPrefix(clusterName, "cluster_")
	return id, ok
}
