// Package render turns the visible projection of a graph state into
// presentation output: styled Graphviz DOT, and SVG/PDF/PNG files produced
// from it. Unlike [layout], which only needs geometry, render carries the
// full visual vocabulary: node type colors, edge style classes, and dashed
// hyperedges labelled with the number of edges they stand in for.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// Options configures DOT generation.
type Options struct {
	// Detailed uses full node labels where available.
	Detailed bool

	// Legend appends a node-type legend cluster listing the configured
	// colors.
	Legend bool
}

// ToDOT converts the visible projection to Graphviz DOT. The resulting
// string can be rendered with [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(s *vizstate.State, cfg config.Config, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	byParent := make(map[string][]vizstate.Node)
	for _, n := range s.VisibleNodes() {
		parent, _ := s.ContainerOf(n.ID)
		byParent[parent] = append(byParent[parent], n)
	}

	visible := make(map[string]vizstate.Container)
	var roots []string
	for _, c := range s.VisibleContainers() {
		visible[c.ID] = c
		if _, ok := s.ContainerOf(c.ID); !ok {
			roots = append(roots, c.ID)
		}
	}

	for _, n := range byParent[""] {
		writeNode(&buf, 1, n, cfg, opts)
	}
	for _, id := range roots {
		writeContainer(&buf, 1, s, id, visible, byParent, cfg, opts)
	}

	buf.WriteString("\n")
	for _, e := range s.VisibleEdges() {
		attrs := edgeAttrs(e.Style)
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		writeEdge(&buf, e.Source, e.Target, attrs)
	}
	for _, h := range s.HyperEdges() {
		attrs := edgeAttrs(h.Style)
		attrs = append(attrs, "style=dashed")
		if n := len(h.OriginalEdges); n > 1 {
			attrs = append(attrs, fmt.Sprintf("label=\"%d edges\"", n))
		}
		writeEdge(&buf, h.Source, h.Target, attrs)
	}

	if opts.Legend {
		writeLegend(&buf, s, cfg)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeContainer(buf *bytes.Buffer, depth int, s *vizstate.State, id string, visible map[string]vizstate.Container, byParent map[string][]vizstate.Node, cfg config.Config, opts Options) {
	c, ok := visible[id]
	if !ok {
		return
	}
	pad := strings.Repeat("  ", depth)

	if c.Collapsed {
		fmt.Fprintf(buf, "%s%q [label=%q, shape=box3d, style=\"filled,bold\", fillcolor=lightgrey];\n", pad, c.ID, c.DisplayLabel())
		return
	}

	fmt.Fprintf(buf, "%ssubgraph \"cluster_%s\" {\n", pad, c.ID)
	fmt.Fprintf(buf, "%s  label=%q;\n", pad, c.DisplayLabel())
	fmt.Fprintf(buf, "%s  style=rounded;\n", pad)
	fmt.Fprintf(buf, "%s  color=grey60;\n", pad)
	for _, n := range byParent[c.ID] {
		writeNode(buf, depth+1, n, cfg, opts)
	}
	for _, child := range s.ChildrenOf(c.ID) {
		writeContainer(buf, depth+1, s, child, visible, byParent, cfg, opts)
	}
	fmt.Fprintf(buf, "%s}\n", pad)
}

func writeNode(buf *bytes.Buffer, depth int, n vizstate.Node, cfg config.Config, opts Options) {
	label := n.DisplayLabel()
	if opts.Detailed && n.FullLabel != "" {
		label = n.FullLabel
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if color := cfg.ColorFor(n.Type); color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", color), fmt.Sprintf("fontcolor=%q", color))
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", strings.Repeat("  ", depth), n.ID, strings.Join(attrs, ", "))
}

func writeEdge(buf *bytes.Buffer, source, target string, attrs []string) {
	if len(attrs) == 0 {
		fmt.Fprintf(buf, "  %q -> %q;\n", source, target)
		return
	}
	fmt.Fprintf(buf, "  %q -> %q [%s];\n", source, target, strings.Join(attrs, ", "))
}

// edgeAttrs maps an edge style class to DOT attributes.
func edgeAttrs(style vizstate.EdgeStyle) []string {
	switch style {
	case vizstate.StyleWarning:
		return []string{"color=red", "penwidth=2", "fontcolor=red"}
	case vizstate.StyleThick:
		return []string{"penwidth=3"}
	case vizstate.StyleHighlighted:
		return []string{"color=dodgerblue", "fontcolor=dodgerblue"}
	default:
		return nil
	}
}

// writeLegend emits a legend cluster with one swatch per node type that
// actually occurs in the state.
func writeLegend(buf *bytes.Buffer, s *vizstate.State, cfg config.Config) {
	seen := make(map[string]bool)
	var types []string
	for _, n := range s.Nodes() {
		if n.Type != "" && !seen[n.Type] {
			seen[n.Type] = true
			types = append(types, n.Type)
		}
	}
	if len(types) == 0 {
		return
	}

	buf.WriteString("\n  subgraph \"cluster_legend\" {\n")
	buf.WriteString("    label=\"Node Types\";\n")
	buf.WriteString("    style=dashed;\n")
	for _, t := range types {
		attrs := []string{fmt.Sprintf("label=%q", t), "shape=plaintext"}
		if color := cfg.ColorFor(t); color != "" {
			attrs = append(attrs, fmt.Sprintf("fontcolor=%q", color))
		}
		fmt.Fprintf(buf, "    \"legend_%s\" [%s];\n", t, strings.Join(attrs, ", "))
	}
	buf.WriteString("  }\n")
}
