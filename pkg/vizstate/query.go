package vizstate

import (
	"maps"
	"slices"
)

// The projection layer derives read views from the entity maps on demand.
// Nothing is cached between calls, so a projection can never be stale after
// a remove, collapse, or expand. All projections are sorted by id and return
// non-nil slices, so an empty projection serializes as [] rather than null.

// VisibleNodes returns all nodes that are not hidden inside a collapsed
// container.
func (s *State) VisibleNodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, id := range slices.Sorted(maps.Keys(s.nodes)) {
		if n := s.nodes[id]; !n.Hidden {
			out = append(out, *n)
		}
	}
	return out
}

// VisibleEdges returns all original edges whose endpoints are both visible.
func (s *State) VisibleEdges() []Edge {
	out := make([]Edge, 0, len(s.edges))
	for _, id := range slices.Sorted(maps.Keys(s.edges)) {
		if e := s.edges[id]; !e.Hidden {
			out = append(out, *e)
		}
	}
	return out
}

// VisibleContainers returns all containers not hidden inside a collapsed
// ancestor. A collapsed container is itself visible - it is the proxy for
// its subtree.
func (s *State) VisibleContainers() []Container {
	out := make([]Container, 0, len(s.containers))
	for _, id := range slices.Sorted(maps.Keys(s.containers)) {
		if c := s.containers[id]; !c.Hidden {
			cc := *c
			cc.Children = sortedKeys(s.children[id])
			out = append(out, cc)
		}
	}
	return out
}

// ExpandedContainers returns the visible containers that are not collapsed.
func (s *State) ExpandedContainers() []Container {
	out := make([]Container, 0, len(s.containers))
	for _, c := range s.VisibleContainers() {
		if !c.Collapsed {
			out = append(out, c)
		}
	}
	return out
}

// CollapsedContainers returns the ids of all currently collapsed containers,
// sorted, including ones hidden inside other collapsed containers.
func (s *State) CollapsedContainers() []string {
	out := make([]string, 0, len(s.containers))
	for id, c := range s.containers {
		if c.Collapsed {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// HyperEdges returns every currently synthesized hyperedge.
func (s *State) HyperEdges() []HyperEdge {
	out := make([]HyperEdge, 0, len(s.hyper))
	for _, id := range slices.Sorted(maps.Keys(s.hyper)) {
		h := s.hyper[id]
		hh := *h
		hh.OriginalEdges = slices.Clone(h.OriginalEdges)
		hh.Internals = slices.Clone(h.Internals)
		out = append(out, hh)
	}
	return out
}

// Nodes returns every node, visible or not, sorted by id.
func (s *State) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, id := range slices.Sorted(maps.Keys(s.nodes)) {
		out = append(out, *s.nodes[id])
	}
	return out
}

// Edges returns every edge, visible or not, sorted by id.
func (s *State) Edges() []Edge {
	out := make([]Edge, 0, len(s.edges))
	for _, id := range slices.Sorted(maps.Keys(s.edges)) {
		out = append(out, *s.edges[id])
	}
	return out
}

// Containers returns every container, visible or not, sorted by id, with
// Children filled in.
func (s *State) Containers() []Container {
	out := make([]Container, 0, len(s.containers))
	for _, id := range slices.Sorted(maps.Keys(s.containers)) {
		c := *s.containers[id]
		c.Children = sortedKeys(s.children[id])
		out = append(out, c)
	}
	return out
}

// Stats summarizes entity and projection counts.
func (s *State) Stats() Stats {
	return Stats{
		Nodes:              len(s.nodes),
		Edges:              len(s.edges),
		Containers:         len(s.containers),
		VisibleNodes:       len(s.VisibleNodes()),
		VisibleEdges:       len(s.VisibleEdges()),
		VisibleContainers:  len(s.VisibleContainers()),
		ExpandedContainers: len(s.ExpandedContainers()),
		HyperEdges:         len(s.hyper),
	}
}
