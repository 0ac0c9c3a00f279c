package layout

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// Graphviz emits positions in points and node sizes in inches.
const pointsPerInch = 72.0

var (
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*\[([^\]]*)\]`)
	edgeStmtRe = regexp.MustCompile(`(?m)^\s*("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*->\s*("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*\[([^\]]*)\]`)
	subgraphRe = regexp.MustCompile(`subgraph\s+("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*\{`)

	posAttrRe    = regexp.MustCompile(`\bpos="([^"]*)"`)
	widthAttrRe  = regexp.MustCompile(`\bwidth="?([0-9.]+)"?`)
	heightAttrRe = regexp.MustCompile(`\bheight="?([0-9.]+)"?`)
	idAttrRe     = regexp.MustCompile(`\bid=("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.-]+)`)
	bbAttrRe     = regexp.MustCompile(`\bbb="([0-9.,]+)"`)
)

// ApplyXDOT parses Graphviz xdot output and stores the geometry in the
// state: node and collapsed-container placements from pos/width/height,
// cluster placements from bounding boxes, and edge routings from splines
// keyed by the id attribute carried through from [BuildDOT].
func ApplyXDOT(s *vizstate.State, xdot string) error {
	// Graphviz wraps long attribute lists with backslash continuations.
	src := strings.ReplaceAll(xdot, "\\\n", "")

	for _, m := range edgeStmtRe.FindAllStringSubmatch(src, -1) {
		attrs := m[3]
		id := unquote(firstMatch(idAttrRe, attrs))
		if id == "" {
			continue
		}
		pts := parseSpline(firstMatch(posAttrRe, attrs))
		if len(pts) > 0 {
			s.SetRouting(id, pts)
		}
	}

	for _, m := range nodeStmtRe.FindAllStringSubmatchIndex(src, -1) {
		name := unquote(src[m[2]:m[3]])
		attrs := src[m[4]:m[5]]
		if name == "graph" || name == "node" || name == "edge" {
			continue
		}

		x, y, ok := parsePoint(firstMatch(posAttrRe, attrs))
		if !ok {
			continue
		}
		w, _ := strconv.ParseFloat(firstMatch(widthAttrRe, attrs), 64)
		h, _ := strconv.ParseFloat(firstMatch(heightAttrRe, attrs), 64)
		s.SetPlacement(name, vizstate.Placement{
			X:      x,
			Y:      y,
			Width:  w * pointsPerInch,
			Height: h * pointsPerInch,
		})
	}

	// Cluster bounding boxes: the bb attribute follows each subgraph's
	// opening brace, before any nested subgraph can introduce another.
	headers := subgraphRe.FindAllStringSubmatchIndex(src, -1)
	for i, m := range headers {
		name := unquote(src[m[2]:m[3]])
		containerID, ok := ContainerID(name)
		if !ok {
			continue
		}

		end := len(src)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		bb := firstMatch(bbAttrRe, src[m[1]:end])
		if bb == "" {
			continue
		}
		p, err := parseBoundingBox(bb)
		if err != nil {
			return err
		}
		s.SetPlacement(containerID, p)
	}

	return nil
}

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}

// parsePoint reads a "x,y" pos attribute (center point).
func parsePoint(pos string) (x, y float64, ok bool) {
	parts := strings.Split(pos, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// parseSpline reads an edge pos attribute: whitespace-separated control
// points, optionally led by arrowhead markers "e,x,y" and "s,x,y". The
// markers are folded into the point list at the matching end.
func parseSpline(pos string) []vizstate.Point {
	if pos == "" {
		return nil
	}

	var start, end *vizstate.Point
	var pts []vizstate.Point
	for _, tok := range strings.Fields(pos) {
		switch {
		case strings.HasPrefix(tok, "e,"):
			if x, y, ok := parsePoint(tok[2:]); ok {
				end = &vizstate.Point{X: x, Y: y}
			}
		case strings.HasPrefix(tok, "s,"):
			if x, y, ok := parsePoint(tok[2:]); ok {
				start = &vizstate.Point{X: x, Y: y}
			}
		default:
			if x, y, ok := parsePoint(tok); ok {
				pts = append(pts, vizstate.Point{X: x, Y: y})
			}
		}
	}
	if start != nil {
		pts = append([]vizstate.Point{*start}, pts...)
	}
	if end != nil {
		pts = append(pts, *end)
	}
	return pts
}

// parseBoundingBox reads a cluster bb attribute "x1,y1,x2,y2" into a
// placement whose X,Y is the box center.
func parseBoundingBox(bb string) (vizstate.Placement, error) {
	parts := strings.Split(bb, ",")
	if len(parts) != 4 {
		return vizstate.Placement{}, errors.New(errors.ErrCodeLayout, "malformed bounding box %q", bb)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vizstate.Placement{}, errors.Wrap(errors.ErrCodeLayout, err, "malformed bounding box %q", bb)
		}
		vals[i] = v
	}
	w := vals[2] - vals[0]
	h := vals[3] - vals[1]
	return vizstate.Placement{
		X:      vals[0] + w/2,
		Y:      vals[1] + h/2,
		Width:  w,
		Height: h,
	}, nil
}
