package vizstate

// CollapseContainer hides the container's subtree and reroutes its boundary
// edges into hyperedges. The container itself stays visible as the proxy for
// its contents. Collapsing an already collapsed or unknown container is a
// no-op.
//
// Nested collapse state is independent per container: collapsing a parent
// whose child is already collapsed neither disturbs the child's state nor
// double-processes its hidden nodes, and collapsing outer-then-inner or
// inner-then-outer yields the same hidden/hyperedge state.
func (s *State) CollapseContainer(id string) {
	c, ok := s.containers[id]
	if !ok || c.Collapsed {
		return
	}
	nodeIDs, containerIDs := s.descendants(id)
	c.Collapsed = true

	for _, nid := range nodeIDs {
		s.nodes[nid].Hidden = true
	}
	for _, cid := range containerIDs {
		s.containers[cid].Hidden = true
	}
	s.reindexEdgesOf(nodeIDs)
}

// ExpandContainer is the exact inverse of [State.CollapseContainer]. Nodes
// and containers of the subtree become visible again unless some other
// ancestor above them is still collapsed; boundary hyperedges rooted at the
// container are removed or re-rooted at the nearest still-collapsed
// container. Expanding an already expanded or unknown container is a no-op.
func (s *State) ExpandContainer(id string) {
	c, ok := s.containers[id]
	if !ok || !c.Collapsed {
		return
	}
	nodeIDs, containerIDs := s.descendants(id)
	c.Collapsed = false

	for _, nid := range nodeIDs {
		s.nodes[nid].Hidden = s.hasCollapsedAncestor(nid)
	}
	for _, cid := range containerIDs {
		s.containers[cid].Hidden = s.hasCollapsedAncestor(cid)
	}
	s.reindexEdgesOf(nodeIDs)
}

// descendants returns the transitive node and container members of a
// container. The traversal is an explicit worklist over the containment
// index, so arbitrarily deep nesting cannot exhaust the stack, and the
// result order is deterministic.
func (s *State) descendants(id string) (nodeIDs, containerIDs []string) {
	work := []string{id}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		for _, child := range sortedKeys(s.children[cur]) {
			if _, isContainer := s.containers[child]; isContainer {
				containerIDs = append(containerIDs, child)
				work = append(work, child)
			} else {
				nodeIDs = append(nodeIDs, child)
			}
		}
	}
	return nodeIDs, containerIDs
}

// hasCollapsedAncestor reports whether any strict ancestor of id is
// currently collapsed.
func (s *State) hasCollapsedAncestor(id string) bool {
	for cur, ok := s.parent[id]; ok; cur, ok = s.parent[cur] {
		if c, exists := s.containers[cur]; exists && c.Collapsed {
			return true
		}
	}
	return false
}

// visibleProxy resolves an endpoint to its nearest visible representative:
// the outermost collapsed ancestor if the endpoint is hidden, otherwise the
// endpoint itself.
func (s *State) visibleProxy(id string) string {
	proxy := id
	for cur, ok := s.parent[id]; ok; cur, ok = s.parent[cur] {
		if c, exists := s.containers[cur]; exists && c.Collapsed {
			proxy = cur
		}
	}
	return proxy
}

// refreshSubtree rederives hidden flags and edge visibility for id and its
// descendants after a containment change (re-parenting, stranding).
func (s *State) refreshSubtree(id string) {
	nodeIDs, containerIDs := []string{}, []string{}
	if _, isContainer := s.containers[id]; isContainer {
		s.containers[id].Hidden = s.hasCollapsedAncestor(id)
		nodeIDs, containerIDs = s.descendants(id)
	} else if _, isNode := s.nodes[id]; isNode {
		nodeIDs = []string{id}
	}
	for _, nid := range nodeIDs {
		s.nodes[nid].Hidden = s.hasCollapsedAncestor(nid)
	}
	for _, cid := range containerIDs {
		s.containers[cid].Hidden = s.hasCollapsedAncestor(cid)
	}
	s.reindexEdgesOf(nodeIDs)
}

// =============================================================================
// Hyperedge maintenance
// =============================================================================

// reindexEdgesOf rederives visibility and hyperedge membership for every
// edge touching the given nodes. Only these edges can change when the nodes'
// visible proxies change, which keeps collapse and expand proportional to
// the container size rather than the total edge count.
func (s *State) reindexEdgesOf(nodeIDs []string) {
	seen := make(map[string]struct{})
	for _, nid := range nodeIDs {
		for eid := range s.nodeEdges[nid] {
			seen[eid] = struct{}{}
		}
	}
	for _, eid := range sortedKeys(seen) {
		s.reindexEdge(s.edges[eid])
	}
}

// reindexEdge rederives one edge's hidden flag and hyperedge membership from
// the current collapse state.
//
// An edge is visible iff both endpoints are their own visible proxies. A
// hidden edge whose proxies differ is a boundary edge and belongs to the
// hyperedge between the two proxies; a hidden edge whose proxies coincide is
// fully internal and has no visual representation.
func (s *State) reindexEdge(e *Edge) {
	src := s.visibleProxy(e.Source)
	dst := s.visibleProxy(e.Target)

	e.Hidden = src != e.Source || dst != e.Target

	want := ""
	if e.Hidden && src != dst {
		want = HyperEdgeID(src, dst)
	}

	cur := s.edgeHyper[e.ID]
	if cur == want {
		if want != "" {
			s.rebuildHyperEdge(s.hyper[want])
		}
		return
	}
	s.detachEdge(e.ID)
	if want == "" {
		return
	}

	h, ok := s.hyper[want]
	if !ok {
		h = &HyperEdge{ID: want, Source: src, Target: dst}
		s.hyper[want] = h
	}
	h.OriginalEdges = insertSorted(h.OriginalEdges, e.ID)
	s.edgeHyper[e.ID] = want
	s.rebuildHyperEdge(h)
}

// detachEdge removes an edge from its hyperedge, dropping the hyperedge when
// its last member leaves. No-op for edges without membership.
func (s *State) detachEdge(edgeID string) {
	hid, ok := s.edgeHyper[edgeID]
	if !ok {
		return
	}
	delete(s.edgeHyper, edgeID)
	h := s.hyper[hid]
	h.OriginalEdges = removeSorted(h.OriginalEdges, edgeID)
	if len(h.OriginalEdges) == 0 {
		delete(s.routings, hid)
		delete(s.hyper, hid)
		return
	}
	s.rebuildHyperEdge(h)
}

// rebuildHyperEdge recomputes the aggregate style and internal endpoints of
// a hyperedge from its current member edges.
func (s *State) rebuildHyperEdge(h *HyperEdge) {
	styles := make([]EdgeStyle, 0, len(h.OriginalEdges))
	internals := make(map[string]struct{})
	for _, eid := range h.OriginalEdges {
		e := s.edges[eid]
		styles = append(styles, e.Style)
		if s.visibleProxy(e.Source) != e.Source {
			internals[e.Source] = struct{}{}
		}
		if s.visibleProxy(e.Target) != e.Target {
			internals[e.Target] = struct{}{}
		}
	}
	h.Style = AggregateStyle(styles)
	h.Internals = sortedKeys(internals)
}

func insertSorted(ids []string, id string) []string {
	i, found := sortedIndex(ids, id)
	if found {
		return ids
	}
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func removeSorted(ids []string, id string) []string {
	i, found := sortedIndex(ids, id)
	if !found {
		return ids
	}
	return append(ids[:i], ids[i+1:]...)
}

func sortedIndex(ids []string, id string) (int, bool) {
	lo, hi := 0, len(ids)
	for lo < hi {
		mid := (lo + hi) / 2
		if ids[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(ids) && ids[lo] == id
}
