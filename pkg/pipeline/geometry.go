package pipeline

import "github.com/matzehuels/flowscope/pkg/vizstate"

// geometry is the cacheable form of one layout pass: placements for the
// visible entities and routings for the visible edges and hyperedges.
type geometry struct {
	Placements map[string]vizstate.Placement `json:"placements"`
	Routings   map[string][]vizstate.Point   `json:"routings"`
}

func captureGeometry(s *vizstate.State) geometry {
	geo := geometry{
		Placements: make(map[string]vizstate.Placement),
		Routings:   make(map[string][]vizstate.Point),
	}
	for _, n := range s.VisibleNodes() {
		if p, ok := s.PlacementOf(n.ID); ok {
			geo.Placements[n.ID] = p
		}
	}
	for _, c := range s.VisibleContainers() {
		if p, ok := s.PlacementOf(c.ID); ok {
			geo.Placements[c.ID] = p
		}
	}
	for _, e := range s.VisibleEdges() {
		if pts := s.RoutingOf(e.ID); len(pts) > 0 {
			geo.Routings[e.ID] = pts
		}
	}
	for _, h := range s.HyperEdges() {
		if pts := s.RoutingOf(h.ID); len(pts) > 0 {
			geo.Routings[h.ID] = pts
		}
	}
	return geo
}

func (g geometry) apply(s *vizstate.State) {
	s.ClearLayout()
	for id, p := range g.Placements {
		s.SetPlacement(id, p)
	}
	for id, pts := range g.Routings {
		s.SetRouting(id, pts)
	}
}
