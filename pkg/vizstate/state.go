package vizstate

import "slices"

// State is the visibility model for one graph view. The zero value is not
// usable - use [New].
//
// State is not safe for concurrent use without external synchronization.
type State struct {
	nodes      map[string]*Node
	edges      map[string]*Edge
	containers map[string]*Container
	hyper      map[string]*HyperEdge

	// Adjacency index: node id -> edge ids touching it.
	nodeEdges map[string]map[string]struct{}

	// Containment index: child id -> direct parent, parent id -> children.
	parent   map[string]string
	children map[string]map[string]struct{}

	// Hyperedge membership: original edge id -> owning hyperedge id.
	edgeHyper map[string]string

	// Layout side channel, written by the layout consumer.
	placements map[string]Placement
	routings   map[string][]Point
}

// New creates an empty State.
func New() *State {
	return &State{
		nodes:      make(map[string]*Node),
		edges:      make(map[string]*Edge),
		containers: make(map[string]*Container),
		hyper:      make(map[string]*HyperEdge),
		nodeEdges:  make(map[string]map[string]struct{}),
		parent:     make(map[string]string),
		children:   make(map[string]map[string]struct{}),
		edgeHyper:  make(map[string]string),
		placements: make(map[string]Placement),
		routings:   make(map[string][]Point),
	}
}

// =============================================================================
// Nodes
// =============================================================================

// SetNode inserts or replaces a node. Last write wins; there is no error on
// overwrite. The Hidden field is derived from the current collapse state of
// the node's ancestor chain, not taken from n.
func (s *State) SetNode(n Node) {
	n.Hidden = s.hasCollapsedAncestor(n.ID)
	s.nodes[n.ID] = &n
}

// Node returns the node with the given id, or (zero, false) if not present.
func (s *State) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// RemoveNode removes a node together with every edge touching it, and
// detaches it from its parent container. Removing a missing id is a no-op.
func (s *State) RemoveNode(id string) {
	if _, ok := s.nodes[id]; !ok {
		return
	}
	for _, eid := range sortedKeys(s.nodeEdges[id]) {
		s.RemoveEdge(eid)
	}
	delete(s.nodeEdges, id)
	s.detachFromParent(id)
	delete(s.placements, id)
	delete(s.nodes, id)
}

// =============================================================================
// Edges
// =============================================================================

// SetEdge inserts or replaces an edge and records it in the adjacency index
// for both endpoints. If the edge lands across or inside a currently
// collapsed container it is hidden immediately, joining or creating the
// implied hyperedge; the Hidden field of e is ignored.
func (s *State) SetEdge(e Edge) {
	if old, ok := s.edges[e.ID]; ok {
		s.dropAdjacency(old)
		s.detachEdge(old.ID)
	}
	s.addAdjacency(&e)
	s.edges[e.ID] = &e
	s.reindexEdge(&e)
}

// Edge returns the edge with the given id, or (zero, false) if not present.
func (s *State) Edge(id string) (Edge, bool) {
	e, ok := s.edges[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// RemoveEdge removes an edge, its adjacency entries, and its hyperedge
// membership. A hyperedge left without members disappears with it. Removing
// a missing id is a no-op.
func (s *State) RemoveEdge(id string) {
	e, ok := s.edges[id]
	if !ok {
		return
	}
	s.detachEdge(id)
	s.dropAdjacency(e)
	delete(s.routings, id)
	delete(s.edges, id)
}

// EdgesOf returns the ids of all edges touching the given node, sorted.
// The result is empty (never nil) for unknown or isolated nodes.
func (s *State) EdgesOf(nodeID string) []string {
	ids := sortedKeys(s.nodeEdges[nodeID])
	if ids == nil {
		return []string{}
	}
	return ids
}

func (s *State) addAdjacency(e *Edge) {
	for _, end := range [2]string{e.Source, e.Target} {
		set, ok := s.nodeEdges[end]
		if !ok {
			set = make(map[string]struct{})
			s.nodeEdges[end] = set
		}
		set[e.ID] = struct{}{}
	}
}

func (s *State) dropAdjacency(e *Edge) {
	for _, end := range [2]string{e.Source, e.Target} {
		if set, ok := s.nodeEdges[end]; ok {
			delete(set, e.ID)
			if len(set) == 0 {
				delete(s.nodeEdges, end)
			}
		}
	}
}

// =============================================================================
// Containers
// =============================================================================

// SetContainer inserts or replaces a container and rewires the containment
// index to match c.Children. Children previously in the container but absent
// from the new set are stranded (they become top-level); children listed with
// another current parent are re-parented. A child assignment that would break
// the containment forest (the container itself, or one of its ancestors) is
// dropped.
//
// Collapsed and Hidden are engine-owned: on replace the existing collapse
// state is preserved, on insert the container starts expanded. Use
// [State.CollapseContainer] to change it.
func (s *State) SetContainer(c Container) {
	wanted := c.Children
	c.Children = nil

	if prev, ok := s.containers[c.ID]; ok {
		c.Collapsed = prev.Collapsed
	} else {
		c.Collapsed = false
	}
	c.Hidden = s.hasCollapsedAncestor(c.ID)
	s.containers[c.ID] = &c

	next := make(map[string]struct{}, len(wanted))
	for _, child := range wanted {
		if child == c.ID || s.isAncestor(child, c.ID) {
			continue // would introduce a containment cycle
		}
		next[child] = struct{}{}
	}

	for child := range s.children[c.ID] {
		if _, keep := next[child]; !keep {
			delete(s.parent, child)
			s.refreshSubtree(child)
		}
	}

	for child := range next {
		if old, ok := s.parent[child]; ok && old != c.ID {
			delete(s.children[old], child)
		}
		s.parent[child] = c.ID
	}
	if len(next) > 0 {
		s.children[c.ID] = next
	} else {
		delete(s.children, c.ID)
	}

	for child := range next {
		s.refreshSubtree(child)
	}
}

// Container returns the container with the given id, with Children filled in
// sorted order, or (zero, false) if not present.
func (s *State) Container(id string) (Container, bool) {
	c, ok := s.containers[id]
	if !ok {
		return Container{}, false
	}
	out := *c
	out.Children = sortedKeys(s.children[id])
	return out, true
}

// RemoveContainer removes a container. A collapsed container is expanded
// first so that no hyperedge or hidden flag survives it. Its children lose
// their parent link and become top-level; they are not deleted. Removing a
// missing id is a no-op.
func (s *State) RemoveContainer(id string) {
	c, ok := s.containers[id]
	if !ok {
		return
	}
	if c.Collapsed {
		s.ExpandContainer(id)
	}
	s.detachFromParent(id)

	stranded := sortedKeys(s.children[id])
	for _, child := range stranded {
		delete(s.parent, child)
	}
	delete(s.children, id)
	for _, child := range stranded {
		s.refreshSubtree(child)
	}

	delete(s.placements, id)
	delete(s.containers, id)
}

// ContainerOf returns the direct parent container of a node or container,
// or ("", false) if it is top-level.
func (s *State) ContainerOf(id string) (string, bool) {
	p, ok := s.parent[id]
	return p, ok
}

// ChildrenOf returns the direct children of a container, sorted. The result
// is empty (never nil) for unknown or empty containers.
func (s *State) ChildrenOf(id string) []string {
	ids := sortedKeys(s.children[id])
	if ids == nil {
		return []string{}
	}
	return ids
}

func (s *State) detachFromParent(id string) {
	if p, ok := s.parent[id]; ok {
		delete(s.children[p], id)
		if len(s.children[p]) == 0 {
			delete(s.children, p)
		}
		delete(s.parent, id)
	}
}

// isAncestor reports whether a is an ancestor of id in the containment
// forest.
func (s *State) isAncestor(a, id string) bool {
	for cur, ok := s.parent[id]; ok; cur, ok = s.parent[cur] {
		if cur == a {
			return true
		}
	}
	return false
}

// =============================================================================
// Layout side channel
// =============================================================================

// SetPlacement stores the position and size the layout engine assigned to a
// node or container. The core never interprets placements.
func (s *State) SetPlacement(id string, p Placement) {
	s.placements[id] = p
}

// PlacementOf returns the stored placement for a node or container id.
func (s *State) PlacementOf(id string) (Placement, bool) {
	p, ok := s.placements[id]
	return p, ok
}

// SetRouting stores the routing points the layout engine assigned to an edge
// or hyperedge id.
func (s *State) SetRouting(id string, pts []Point) {
	s.routings[id] = slices.Clone(pts)
}

// RoutingOf returns the stored routing for an edge or hyperedge id.
func (s *State) RoutingOf(id string) []Point {
	return slices.Clone(s.routings[id])
}

// ClearLayout drops all stored placements and routings, typically before a
// fresh layout pass over a changed projection.
func (s *State) ClearLayout() {
	clear(s.placements)
	clear(s.routings)
}

// =============================================================================
// Helpers
// =============================================================================

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
