// internal/routegraph/dijkstra.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package routegraph

import "container/heap"

// PathResult is the outcome of a shortest-path search: the vertex chain
// and its total distance, or found=false if target is unreachable under
// the given predicate.
type PathResult struct {
	Vertices []VertexID
	Edges    []Edge
	Distance float64
	Found    bool
}

// HelperEdge is a transient edge considered only for a single search, used
// by airway expansion's forward pass (seedAirwayContinuation) to bridge a disconnected segment
// without mutating the finalized graph.
type HelperEdge = Edge

// ShortestPath runs Dijkstra from source to target, considering only edges
// admitted by pred plus any extra transient edges, and breaking ties on
// equal distance by preferring the candidate discovered first (matching
// the caller's edge iteration order, which airway expansion controls by
// how it orders extra).
func ShortestPath(g *Graph, source, target VertexID, pred EdgePredicate, extra []HelperEdge) PathResult {
	if pred == nil {
		pred = AllEdges
	}

	dist := make(map[VertexID]float64)
	prevVertex := make(map[VertexID]VertexID)
	prevEdge := make(map[VertexID]Edge)
	visited := make(map[VertexID]bool)

	extraByFrom := make(map[VertexID][]Edge)
	for _, e := range extra {
		extraByFrom[e.From] = append(extraByFrom[e.From], e)
	}

	dist[source] = 0
	pq := &vertexHeap{{vertex: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		top := heap.Pop(pq).(vertexDist)
		u := top.vertex
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == target {
			break
		}

		relax := func(e Edge) {
			if !pred(e) {
				return
			}
			nd := dist[u] + e.DistanceNM
			if d, ok := dist[e.To]; !ok || nd < d {
				dist[e.To] = nd
				prevVertex[e.To] = u
				prevEdge[e.To] = e
				heap.Push(pq, vertexDist{vertex: e.To, dist: nd})
			}
		}

		for _, e := range g.EdgesFrom(u) {
			relax(e)
		}
		for _, e := range extraByFrom[u] {
			relax(e)
		}
	}

	d, ok := dist[target]
	if !ok {
		return PathResult{Found: false}
	}

	var vertices []VertexID
	var edges []Edge
	for v := target; ; {
		vertices = append([]VertexID{v}, vertices...)
		pe, has := prevEdge[v]
		if !has {
			break
		}
		edges = append([]Edge{pe}, edges...)
		v = prevVertex[v]
	}

	return PathResult{Vertices: vertices, Edges: edges, Distance: d, Found: true}
}

type vertexDist struct {
	vertex VertexID
	dist   float64
}

type vertexHeap []vertexDist

func (h vertexHeap) Len() int            { return len(h) }
func (h vertexHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h vertexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *vertexHeap) Push(x interface{}) { *h = append(*h, x.(vertexDist)) }
func (h *vertexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
