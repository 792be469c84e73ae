// internal/parse/expand.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package parse

import (
	"github.com/skyplan/fplcore/internal/geo"
	"github.com/skyplan/fplcore/internal/routegraph"
)

// ExpandOptions are the policy knobs Design Notes flags as configurable
// rather than hard-coded.
type ExpandOptions struct {
	// Expand controls whether materialized interior airway waypoints are
	// kept in the final route (true) or collapsed back to user-facing
	// turn points (false).
	Expand bool
}

// ProcessAirwayExpansion runs the forward and backward passes described in
// section 4.2.3: forward seeds best-so-far distance/predecessors per
// candidate, backward selects the single best candidate per waypoint and
// materializes intermediate airway vertices as new expanded waypoints.
func (s *State) ProcessAirwayExpansion(opts ExpandOptions) {
	s.Errors.Push("airways")
	defer s.Errors.Pop()

	s.forwardPass()
	s.Waypoints = s.backwardPass()
	s.fillResolvedCoords()

	s.validateAirwaySegments()

	if !opts.Expand {
		s.Waypoints = collapseExpanded(s.Waypoints)
	}
}

func (s *State) forwardPass() {
	for i, w := range s.Waypoints {
		if i == 0 {
			for c := range w.Candidates {
				w.Candidates[c].Dist = 0
				w.Candidates[c].Predecessors = nil
			}
			continue
		}
		prev := s.Waypoints[i-1]

		if len(prev.Candidates) == 0 && len(w.Candidates) == 0 {
			// Neither side has bindings; nothing to seed from. Strip
			// any path code so the gap degrades to a DCT/none leg.
			prev.PathCodeOut, prev.PathName = PathNone, ""
			continue
		}

		if prev.PathCodeOut == PathAirway && prev.PathName != "" {
			s.seedAirwayContinuation(prev, w)
			continue
		}

		// Straight-line seeding: for each candidate of w, pick the best
		// predecessor of prev by direct distance.
		for ci := range w.Candidates {
			cv := s.Graph.Vertex(w.Candidates[ci].Vertex)
			best := -1
			bestDist := 0.0
			for pi, pc := range prev.Candidates {
				pv := s.Graph.Vertex(pc.Vertex)
				d := pc.Dist + geo.Distance(pv.Location, cv.Location)
				if best < 0 || d < bestDist {
					best, bestDist = pi, d
				}
			}
			if best >= 0 {
				w.Candidates[ci].Dist = bestDist
				w.Candidates[ci].Predecessors = nil
			}
		}
	}
}

// seedAirwayContinuation runs Dijkstra on the subgraph restricted to
// edges whose owning airway matches prev's outgoing path name, from every
// candidate of prev to every candidate of w. If no admissible edge
// connects any pair, synthetic helper edges (proportional to great-circle
// distance) bridge prev's candidates to every vertex participating in the
// named airway, and the search is rerun with those transient edges.
func (s *State) seedAirwayContinuation(prev, w *Waypoint) {
	pred := airwayPredicate(prev.PathName)

	found := false
	for ci := range w.Candidates {
		best := routegraph.PathResult{}
		for _, pc := range prev.Candidates {
			res := routegraph.ShortestPath(s.Graph, pc.Vertex, w.Candidates[ci].Vertex, pred, nil)
			if res.Found && (!best.Found || pc.Dist+res.Distance < best.Distance) {
				best = res
				best.Distance += pc.Dist
			}
		}
		if best.Found {
			w.Candidates[ci].Dist = best.Distance
			w.Candidates[ci].Predecessors = best.Vertices
			found = true
		}
	}

	if found {
		return
	}

	var helpers []routegraph.HelperEdge
	for v := 0; v < s.Graph.NumVertices(); v++ {
		vid := routegraph.VertexID(v)
		onAirway := false
		for _, e := range s.Graph.EdgesFrom(vid) {
			if e.Ident == prev.PathName {
				onAirway = true
				break
			}
		}
		if !onAirway {
			continue
		}
		for _, pc := range prev.Candidates {
			pv := s.Graph.Vertex(pc.Vertex)
			tv := s.Graph.Vertex(vid)
			helpers = append(helpers, routegraph.HelperEdge{
				From: pc.Vertex, To: vid, DistanceNM: geo.Distance(pv.Location, tv.Location),
				Kind: routegraph.EdgeHelper, Ident: "-",
			})
		}
	}

	for ci := range w.Candidates {
		best := routegraph.PathResult{}
		for _, pc := range prev.Candidates {
			res := routegraph.ShortestPath(s.Graph, pc.Vertex, w.Candidates[ci].Vertex, pred, helpers)
			if res.Found && (!best.Found || pc.Dist+res.Distance < best.Distance) {
				best = res
				best.Distance += pc.Dist
			}
		}
		if best.Found {
			w.Candidates[ci].Dist = best.Distance
			w.Candidates[ci].Predecessors = best.Vertices
		} else {
			s.Errors.ErrorString("Airway segment %s has unknown endpoint(s)", prev.PathName)
			prev.PathCodeOut = PathNone
			prev.PathName = ""
		}
	}
}

func airwayPredicate(name string) routegraph.EdgePredicate {
	return func(e routegraph.Edge) bool {
		return e.Kind == routegraph.EdgeAirway && e.Ident == name
	}
}

// backwardPass selects, at each waypoint, the single candidate minimizing
// cumulative forward distance plus straight-line distance to the next
// kept coordinate, then materializes intermediate airway vertices as new
// expanded waypoints.
func (s *State) backwardPass() []*Waypoint {
	n := len(s.Waypoints)
	chosen := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		w := s.Waypoints[i]
		if len(w.Candidates) == 0 {
			chosen[i] = -1
			continue
		}
		if i == n-1 {
			chosen[i] = bestByForwardDist(w.Candidates)
			continue
		}
		next := s.Waypoints[i+1]
		if chosen[i+1] < 0 || len(next.Candidates) == 0 {
			chosen[i] = bestByForwardDist(w.Candidates)
			continue
		}
		nv := s.Graph.Vertex(next.Candidates[chosen[i+1]].Vertex)
		best, bestScore := -1, 0.0
		for ci, c := range w.Candidates {
			cv := s.Graph.Vertex(c.Vertex)
			score := c.Dist + geo.Distance(cv.Location, nv.Location)
			if best < 0 || score < bestScore {
				best, bestScore = ci, score
			}
		}
		chosen[i] = best
	}

	var out []*Waypoint
	for i, w := range s.Waypoints {
		if chosen[i] < 0 {
			out = append(out, w)
			continue
		}
		c := w.Candidates[chosen[i]]
		w.Candidates = []Path{c}

		// Predecessors[0] is the source vertex (the previous waypoint's own
		// anchor) and the last entry is the target vertex (w's own anchor);
		// only the interior airway vertices between them get materialized.
		var interior []routegraph.VertexID
		if len(c.Predecessors) > 2 {
			interior = c.Predecessors[1 : len(c.Predecessors)-1]
		}
		for _, pv := range interior {
			vx := s.Graph.Vertex(pv)
			ew := &Waypoint{
				Ident:       vx.Ident,
				TypeMask:    vx.Mask,
				Rules:       w.Rules,
				AltFlag:     w.AltFlag,
				AltFt:       w.AltFt,
				SpeedKts:    w.SpeedKts,
				Coord:       vx.Location,
				HasCoord:    true,
				PathCodeOut: PathAirway,
				PathName:    pathNameFor(s, pv),
				Candidates:  []Path{{Vertex: pv}},
				Expanded:    true,
				EETSeconds:  -1,
			}
			out = append(out, ew)
		}
		out = append(out, w)
	}
	return out
}

// fillResolvedCoords copies each singly-resolved waypoint's bound vertex
// location onto Coord/HasCoord, so downstream route transforms (which
// operate purely on Waypoint) never need graph access.
func (s *State) fillResolvedCoords() {
	for _, w := range s.Waypoints {
		if w.HasCoord || len(w.Candidates) != 1 {
			continue
		}
		w.Coord = s.Graph.Vertex(w.Candidates[0].Vertex).Location
		w.HasCoord = true
	}
}

func pathNameFor(s *State, v routegraph.VertexID) string {
	for _, e := range s.Graph.EdgesFrom(v) {
		if e.Kind == routegraph.EdgeAirway {
			return e.Ident
		}
	}
	return ""
}

func bestByForwardDist(cands []Path) int {
	best, bestDist := 0, cands[0].Dist
	for i, c := range cands {
		if c.Dist < bestDist {
			best, bestDist = i, c.Dist
		}
	}
	return best
}

// validateAirwaySegments ensures each surviving airway segment has a
// directly connecting edge; if not, its path code is cleared.
func (s *State) validateAirwaySegments() {
	for i := 0; i < len(s.Waypoints)-1; i++ {
		w := s.Waypoints[i]
		if w.PathCodeOut != PathAirway || w.PathName == "" || len(w.Candidates) == 0 {
			continue
		}
		next := s.Waypoints[i+1]
		if len(next.Candidates) == 0 {
			w.PathCodeOut, w.PathName = PathNone, ""
			continue
		}
		from, to := w.Candidates[0].Vertex, next.Candidates[0].Vertex
		connected := false
		for _, e := range s.Graph.EdgesFrom(from) {
			if e.To == to && e.Ident == w.PathName {
				connected = true
				break
			}
		}
		if !connected {
			s.Errors.ErrorString("Airway segment %s %s %s has unknown endpoint(s)",
				w.PathName, w.Ident, next.Ident)
			w.PathCodeOut, w.PathName = PathNone, ""
		}
	}
}

// collapseExpanded removes consecutive expanded waypoints on the same
// path object, leaving only user-facing turn points.
func collapseExpanded(wps []*Waypoint) []*Waypoint {
	var out []*Waypoint
	for i, w := range wps {
		if w.Expanded && i > 0 && i < len(wps)-1 {
			prev, next := wps[i-1], wps[i+1]
			if prev.PathName == w.PathName && next.PathName == w.PathName {
				continue
			}
		}
		out = append(out, w)
	}
	return out
}
