// internal/routegraph/graph_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routegraph

import "testing"

func buildTestGraph() (*Graph, map[string]VertexID) {
	g := New()
	ids := make(map[string]VertexID)
	for _, name := range []string{"A", "B", "C", "D"} {
		ids[name] = g.AddVertex(Vertex{Ident: name, Mask: TypeNavaid})
	}
	g.AddEdge(Edge{From: ids["A"], To: ids["B"], DistanceNM: 10, Kind: EdgeAirway, Ident: "UM984", LowerFt: 0, UpperFt: 45000})
	g.AddEdge(Edge{From: ids["B"], To: ids["C"], DistanceNM: 10, Kind: EdgeAirway, Ident: "UM984", LowerFt: 0, UpperFt: 45000})
	g.AddEdge(Edge{From: ids["A"], To: ids["C"], DistanceNM: 30, Kind: EdgeDCT, Ident: "DCT"})
	g.AddEdge(Edge{From: ids["C"], To: ids["D"], DistanceNM: 5, Kind: EdgeAirway, Ident: "UM984", LowerFt: 18000, UpperFt: 45000})
	g.Finalize()
	return g, ids
}

func TestShortestPathPrefersAirwayOverLongerDCT(t *testing.T) {
	g, ids := buildTestGraph()
	res := ShortestPath(g, ids["A"], ids["C"], AllEdges, nil)
	if !res.Found {
		t.Fatal("expected path")
	}
	if res.Distance != 20 {
		t.Errorf("distance = %v, want 20 (A-B-C via airway)", res.Distance)
	}
	if len(res.Vertices) != 3 {
		t.Errorf("vertices = %v, want [A B C]", res.Vertices)
	}
}

func TestShortestPathPredicateExcludesDCT(t *testing.T) {
	g, ids := buildTestGraph()
	pred := KindIn(EdgeAirway)
	res := ShortestPath(g, ids["A"], ids["D"], pred, nil)
	if !res.Found || res.Distance != 25 {
		t.Errorf("got %+v, want airway-only path distance 25", res)
	}
}

func TestShortestPathAltitudeFilterExcludesLowLeg(t *testing.T) {
	g, ids := buildTestGraph()
	pred := And(KindIn(EdgeAirway), WithinAltitude(20000, 45000))
	res := ShortestPath(g, ids["A"], ids["D"], pred, nil)
	if res.Found {
		t.Errorf("expected no path once the C-D leg's 18000-45000 band is excluded by a 20000 floor, got %+v", res)
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	g := New()
	a := g.AddVertex(Vertex{Ident: "A"})
	b := g.AddVertex(Vertex{Ident: "B"})
	g.Finalize()
	res := ShortestPath(g, a, b, AllEdges, nil)
	if res.Found {
		t.Error("expected unreachable")
	}
}

func TestShortestPathHelperEdgeBridgesGap(t *testing.T) {
	g := New()
	a := g.AddVertex(Vertex{Ident: "A"})
	b := g.AddVertex(Vertex{Ident: "B"})
	g.Finalize()

	res := ShortestPath(g, a, b, AllEdges, []HelperEdge{{From: a, To: b, DistanceNM: 99, Kind: EdgeHelper}})
	if !res.Found || res.Distance != 99 {
		t.Errorf("expected helper edge to bridge A-B at distance 99, got %+v", res)
	}
}
