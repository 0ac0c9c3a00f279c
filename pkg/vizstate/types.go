package vizstate

import "fmt"

// EdgeStyle classifies the visual weight of an edge. When several original
// edges collapse into one hyperedge, the highest-priority style wins; see
// [AggregateStyle].
type EdgeStyle int

const (
	// StylePlain is the default edge appearance.
	StylePlain EdgeStyle = iota
	// StyleHighlighted marks edges of interest (e.g. unbounded streams).
	StyleHighlighted
	// StyleThick marks structurally important edges (e.g. network hops).
	StyleThick
	// StyleWarning marks edges that need attention (e.g. cycles). Highest
	// priority.
	StyleWarning
)

// String returns the lowercase tag used in serialized output and DOT attrs.
func (s EdgeStyle) String() string {
	switch s {
	case StyleHighlighted:
		return "highlighted"
	case StyleThick:
		return "thick"
	case StyleWarning:
		return "warning"
	default:
		return "plain"
	}
}

// Node is a vertex of the dataflow graph.
//
// Hidden is owned by the collapse engine: it reflects whether some ancestor
// container is currently collapsed, and is recomputed on every mutation that
// can change it. Values supplied to [State.SetNode] are ignored.
type Node struct {
	ID        string `json:"id" bson:"id"`
	Label     string `json:"label,omitempty" bson:"label,omitempty"`          // Short display label
	FullLabel string `json:"fullLabel,omitempty" bson:"full_label,omitempty"` // Expanded label for detail views
	Type      string `json:"nodeType,omitempty" bson:"node_type,omitempty"`   // Type tag for coloring/legend
	Hidden    bool   `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed connection between two nodes.
//
// Source and Target may reference ids that are currently hidden inside a
// collapsed container - hidden is orthogonal to existence. Hidden is owned by
// the collapse engine, like [Node.Hidden].
type Edge struct {
	ID     string    `json:"id" bson:"id"`
	Source string    `json:"source" bson:"source"`
	Target string    `json:"target" bson:"target"`
	Label  string    `json:"label,omitempty" bson:"label,omitempty"`
	Style  EdgeStyle `json:"style,omitempty" bson:"style,omitempty"`
	Hidden bool      `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// Container groups nodes and other containers into a collapsible region.
//
// Children is a convenience field: [State.SetContainer] consumes it to update
// the containment index, and [State.Container] fills it (sorted) on read. The
// index itself is the source of truth.
//
// Collapsed and Hidden are owned by the engine. Collapse state changes only
// through [State.CollapseContainer] and [State.ExpandContainer]; values
// supplied to SetContainer are ignored.
type Container struct {
	ID        string   `json:"id" bson:"id"`
	Label     string   `json:"label,omitempty" bson:"label,omitempty"`
	Children  []string `json:"children,omitempty" bson:"children,omitempty"`
	Collapsed bool     `json:"collapsed,omitempty" bson:"collapsed,omitempty"`
	Hidden    bool     `json:"hidden,omitempty" bson:"hidden,omitempty"`

	// Optional explicit dimensions. Zero means the layout decides.
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (c Container) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}

// HyperEdge is a synthesized edge standing in for one or more hidden original
// edges that cross a collapsed container's boundary. Hyperedges exist only
// while at least one endpoint is a currently collapsed container; they are
// created by collapse and removed by the matching expand.
type HyperEdge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`

	// OriginalEdges lists the hidden edge ids this hyperedge represents,
	// sorted for determinism.
	OriginalEdges []string `json:"originalEdges" bson:"original_edges"`

	// Internals lists the hidden endpoints the original edges touched inside
	// collapsed containers, sorted and deduplicated.
	Internals []string `json:"internals,omitempty" bson:"internals,omitempty"`

	// Style is the aggregate of the original edges' styles.
	Style EdgeStyle `json:"style,omitempty" bson:"style,omitempty"`
}

// HyperEdgeID returns the deterministic id for a hyperedge between two
// visible endpoints. Direction is encoded in the id, so a container pair can
// carry up to two hyperedges, one per direction.
func HyperEdgeID(source, target string) string {
	return fmt.Sprintf("hyper_%s_to_%s", source, target)
}

// Point is a coordinate on the layout canvas.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Placement is the position and size assigned to a node or container by the
// external layout engine. The core stores placements but never interprets
// them.
type Placement struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Stats summarizes entity and projection counts for one State.
type Stats struct {
	Nodes      int `json:"nodes"`
	Edges      int `json:"edges"`
	Containers int `json:"containers"`

	VisibleNodes       int `json:"visibleNodes"`
	VisibleEdges       int `json:"visibleEdges"`
	VisibleContainers  int `json:"visibleContainers"`
	ExpandedContainers int `json:"expandedContainers"`
	HyperEdges         int `json:"hyperEdges"`
}
