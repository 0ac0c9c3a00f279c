package graphio

import (
	"encoding/json"

	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// LabelMode selects which document label a built node carries.
type LabelMode int

const (
	// LabelShort uses the short label (falling back to label, then id).
	LabelShort LabelMode = iota
	// LabelFull uses the full label.
	LabelFull
)

// BuildOptions tune document-to-state conversion.
type BuildOptions struct {
	// ChoiceID selects the hierarchy to materialize as containers. Empty
	// means the document's selected hierarchy (or its first one). Documents
	// without hierarchies produce a flat state.
	ChoiceID string

	// Labels selects short or full node labels.
	Labels LabelMode

	// Config resolves semantic tags to edge styles. Zero value means
	// config.Default().
	Config *config.Config
}

// BuildState converts a validated document into a fresh collapse-ready
// state. Nodes and edges load first, then the chosen hierarchy's containers
// with their node memberships.
func BuildState(doc *Document, opts BuildOptions) (*vizstate.State, error) {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	s := vizstate.New()
	for _, n := range doc.Nodes {
		label := n.DisplayLabel()
		if opts.Labels == LabelFull && n.FullLabel != "" {
			label = n.FullLabel
		}
		s.SetNode(vizstate.Node{
			ID:        n.ID,
			Label:     label,
			FullLabel: n.FullLabel,
			Type:      n.NodeType,
		})
	}
	for _, e := range doc.Edges {
		s.SetEdge(vizstate.Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
			Style:  cfg.StyleForTags(e.SemanticTags),
		})
	}

	if len(doc.HierarchyChoices) == 0 {
		return s, nil
	}
	choice, ok := doc.Choice(opts.ChoiceID)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidHierarchy, "unknown hierarchy choice %q", opts.ChoiceID)
	}

	// Group assigned nodes by container before creating containers, so each
	// container is set exactly once with its full child list.
	members := make(map[string][]string)
	for nodeID, containerID := range doc.NodeAssignments[choice.ID] {
		members[containerID] = append(members[containerID], nodeID)
	}
	addContainers(s, choice.Children, members)
	return s, nil
}

// addContainers walks a hierarchy tree depth-first, registering children
// before their parent so that parents always reference existing containers.
func addContainers(s *vizstate.State, tree []HierarchyNode, members map[string][]string) {
	for _, h := range tree {
		addContainers(s, h.Children, members)

		id := h.EffectiveID()
		children := make([]string, 0, len(h.Children)+len(members[id]))
		for _, child := range h.Children {
			children = append(children, child.EffectiveID())
		}
		children = append(children, members[id]...)
		s.SetContainer(vizstate.Container{
			ID:       id,
			Label:    h.Name,
			Children: children,
		})
	}
}

// Snapshot is the serialized view of a state: all entities plus the current
// projections, suitable for API responses and state export.
type Snapshot struct {
	Nodes      []vizstate.Node      `json:"nodes"`
	Edges      []vizstate.Edge      `json:"edges"`
	Containers []vizstate.Container `json:"containers"`
	HyperEdges []vizstate.HyperEdge `json:"hyperEdges"`
	Collapsed  []string             `json:"collapsed,omitempty"`
	Stats      vizstate.Stats       `json:"stats"`
}

// TakeSnapshot captures the full current state.
func TakeSnapshot(s *vizstate.State) Snapshot {
	return Snapshot{
		Nodes:      s.Nodes(),
		Edges:      s.Edges(),
		Containers: s.Containers(),
		HyperEdges: s.HyperEdges(),
		Collapsed:  s.CollapsedContainers(),
		Stats:      s.Stats(),
	}
}

// Export serializes the state as indented JSON.
func Export(s *vizstate.State) ([]byte, error) {
	out, err := json.MarshalIndent(TakeSnapshot(s), "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode state")
	}
	return out, nil
}
