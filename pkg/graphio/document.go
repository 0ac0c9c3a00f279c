// Package graphio reads and writes the JSON interchange format for dataflow
// graph documents.
//
// A Document is the on-disk form emitted by compilers and tracing tools:
// flat node and edge lists, one or more hierarchy choices (alternative
// nested groupings of the same nodes), and per-choice assignments of nodes
// to containers. Documents are validated up front so that building a
// vizstate.State from a valid document can never fail halfway through.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowscope/pkg/errors"
)

// Document is a parsed graph interchange file.
type Document struct {
	Nodes []DocNode `json:"nodes"`
	Edges []DocEdge `json:"edges"`

	// HierarchyChoices lists alternative groupings of the nodes, e.g. by
	// deployment location or by call site. Each choice is an independent
	// container tree.
	HierarchyChoices []HierarchyChoice `json:"hierarchyChoices,omitempty"`

	// NodeAssignments maps choice id -> node id -> container id within that
	// choice's tree.
	NodeAssignments map[string]map[string]string `json:"nodeAssignments,omitempty"`

	// SelectedHierarchy names the choice to use when the caller does not
	// pick one. Empty means the first choice.
	SelectedHierarchy string `json:"selectedHierarchy,omitempty"`

	Legend *Legend `json:"legend,omitempty"`
}

// DocNode is a node as it appears on disk.
type DocNode struct {
	ID         string         `json:"id"`
	NodeType   string         `json:"nodeType,omitempty"`
	Label      string         `json:"label,omitempty"`
	FullLabel  string         `json:"fullLabel,omitempty"`
	ShortLabel string         `json:"shortLabel,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// DisplayLabel returns the preferred short label: ShortLabel, then Label,
// then the id.
func (n DocNode) DisplayLabel() string {
	if n.ShortLabel != "" {
		return n.ShortLabel
	}
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// DocEdge is an edge as it appears on disk. SemanticTags carry the edge's
// properties (e.g. "Network", "Unbounded", "Cycle"); styling is resolved
// against the config at build time.
type DocEdge struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	SemanticTags []string `json:"semanticTags,omitempty"`
	Label        string   `json:"label,omitempty"`
}

// HierarchyChoice is one named container tree over the document's nodes.
type HierarchyChoice struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// HierarchyNode is a container in a choice's tree. Some producers emit the
// container id under "key" instead of "id"; EffectiveID handles both.
type HierarchyNode struct {
	ID       string          `json:"id,omitempty"`
	Key      string          `json:"key,omitempty"`
	Name     string          `json:"name,omitempty"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// EffectiveID returns the container id, accepting the "key" alias.
func (h HierarchyNode) EffectiveID() string {
	if h.ID != "" {
		return h.ID
	}
	return h.Key
}

// Legend describes the node-type legend shipped with the document.
type Legend struct {
	Title string       `json:"title,omitempty"`
	Items []LegendItem `json:"items,omitempty"`
}

// LegendItem is one legend row.
type LegendItem struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Load reads and validates a document from a file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "no such file: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse reads and validates a document from a reader.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document's internal references. It reports the first
// problem found: duplicate ids, dangling edge endpoints, or assignments
// pointing at unknown choices, nodes, or containers.
func (d *Document) Validate() error {
	nodeIDs := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "node with empty id")
		}
		if _, dup := nodeIDs[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "duplicate node id %q", n.ID)
		}
		nodeIDs[n.ID] = struct{}{}
	}

	edgeIDs := make(map[string]struct{}, len(d.Edges))
	for _, e := range d.Edges {
		if e.ID == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "edge with empty id")
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "duplicate edge id %q", e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
		if _, ok := nodeIDs[e.Source]; !ok {
			return errors.New(errors.ErrCodeUnknownNode, "edge %q: unknown source %q", e.ID, e.Source)
		}
		if _, ok := nodeIDs[e.Target]; !ok {
			return errors.New(errors.ErrCodeUnknownNode, "edge %q: unknown target %q", e.ID, e.Target)
		}
	}

	choiceIDs := make(map[string]struct{}, len(d.HierarchyChoices))
	containersByChoice := make(map[string]map[string]struct{}, len(d.HierarchyChoices))
	for _, choice := range d.HierarchyChoices {
		if choice.ID == "" {
			return errors.New(errors.ErrCodeInvalidHierarchy, "hierarchy choice with empty id")
		}
		if _, dup := choiceIDs[choice.ID]; dup {
			return errors.New(errors.ErrCodeInvalidHierarchy, "duplicate hierarchy choice %q", choice.ID)
		}
		choiceIDs[choice.ID] = struct{}{}

		seen := make(map[string]struct{})
		if err := validateTree(choice.ID, choice.Children, nodeIDs, seen); err != nil {
			return err
		}
		containersByChoice[choice.ID] = seen
	}

	if d.SelectedHierarchy != "" {
		if _, ok := choiceIDs[d.SelectedHierarchy]; !ok {
			return errors.New(errors.ErrCodeInvalidHierarchy, "selected hierarchy %q does not exist", d.SelectedHierarchy)
		}
	}

	for choiceID, assignments := range d.NodeAssignments {
		containers, ok := containersByChoice[choiceID]
		if !ok {
			return errors.New(errors.ErrCodeInvalidHierarchy, "assignments reference unknown choice %q", choiceID)
		}
		for nodeID, containerID := range assignments {
			if _, ok := nodeIDs[nodeID]; !ok {
				return errors.New(errors.ErrCodeUnknownNode, "choice %q assigns unknown node %q", choiceID, nodeID)
			}
			if _, ok := containers[containerID]; !ok {
				return errors.New(errors.ErrCodeInvalidHierarchy, "choice %q: node %q assigned to unknown container %q", choiceID, nodeID, containerID)
			}
		}
	}

	return nil
}

func validateTree(choiceID string, children []HierarchyNode, nodeIDs, seen map[string]struct{}) error {
	for _, child := range children {
		id := child.EffectiveID()
		if id == "" {
			return errors.New(errors.ErrCodeInvalidHierarchy, "choice %q: container with empty id", choiceID)
		}
		if _, dup := seen[id]; dup {
			return errors.New(errors.ErrCodeInvalidHierarchy, "choice %q: container %q appears twice", choiceID, id)
		}
		if _, clash := nodeIDs[id]; clash {
			return errors.New(errors.ErrCodeInvalidHierarchy, "choice %q: container %q collides with a node id", choiceID, id)
		}
		seen[id] = struct{}{}
		if err := validateTree(choiceID, child.Children, nodeIDs, seen); err != nil {
			return err
		}
	}
	return nil
}

// Choice returns the hierarchy choice to use. An empty id means the
// document's selected hierarchy, falling back to the first choice. Returns
// false when the document has no hierarchies or the id is unknown.
func (d *Document) Choice(id string) (HierarchyChoice, bool) {
	if id == "" {
		id = d.SelectedHierarchy
	}
	if id == "" {
		if len(d.HierarchyChoices) == 0 {
			return HierarchyChoice{}, false
		}
		return d.HierarchyChoices[0], true
	}
	for _, c := range d.HierarchyChoices {
		if c.ID == id {
			return c, true
		}
	}
	return HierarchyChoice{}, false
}

// Summary returns a short human-readable description of the document.
func (d *Document) Summary() string {
	return fmt.Sprintf("%d nodes, %d edges, %d hierarchies", len(d.Nodes), len(d.Edges), len(d.HierarchyChoices))
}
