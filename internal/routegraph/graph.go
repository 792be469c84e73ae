// internal/routegraph/graph.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package routegraph is the directed multigraph over navigation points
// that route resolution walks: airports, navaids, designated points, and
// synthesized course/distance fixes as vertices; airway segments, SID/STAR
// legs, and DCT hops as edges. Vertices and edges live in flat arenas
// addressed by 32-bit descriptors, with edges grouped per-vertex CSR-style,
// rather than the teacher's pointer/adjacency-list graphs -- resolution
// builds and discards graphs often enough per flight plan that arena
// locality matters more than per-edge object identity.
package routegraph

import (
	"sort"

	"github.com/google/uuid"

	"github.com/skyplan/fplcore/internal/geo"
)

// VertexID is a dense index into Graph.vertices.
type VertexID uint32

// InvalidVertex marks "no vertex".
const InvalidVertex VertexID = 1<<32 - 1

// TypeMask classifies which resolution roles a vertex may serve; a parse
// waypoint constrains candidate bindings by type_mask the way spec section
// 4.2.2 describes.
type TypeMask uint32

const (
	TypeAirport TypeMask = 1 << iota
	TypeNavaid
	TypeDesignatedPoint
	TypeMapElement
	TypeUserFix // synthesized course/distance or coordinate fix
	TypeAny     = TypeAirport | TypeNavaid | TypeDesignatedPoint | TypeMapElement | TypeUserFix
)

// Vertex is one navigation point in the graph.
type Vertex struct {
	ObjectID uuid.UUID
	Ident    string
	Location geo.Point
	Mask     TypeMask

	edgeStart, edgeEnd int32 // half-open slice into Graph.edges, set by Finalize
}

// EdgeKind classifies the provenance of an edge, used by resolution
// predicates (e.g. "only low-altitude airway segments").
type EdgeKind int

const (
	EdgeAirway EdgeKind = iota
	EdgeDCT
	EdgeSIDLeg
	EdgeSTARLeg
	EdgeHelper // synthetic edge bridging a disconnected airway segment
)

// Edge is one directed connection between two vertices.
type Edge struct {
	From, To   VertexID
	RouteID    uuid.UUID // owning airway/procedure UUID, zero for DCT
	Ident      string    // airway designator or "DCT"
	DistanceNM float64
	BearingDeg float64
	LowerFt    int
	UpperFt    int
	Kind       EdgeKind
}

// Graph is the CSR-style directed multigraph: vertices in a flat arena,
// edges grouped contiguously per source vertex after Finalize.
type Graph struct {
	vertices []Vertex
	edges    []Edge

	byIdent map[string][]VertexID
	byObj   map[uuid.UUID]VertexID

	finalized bool
}

// New returns an empty graph ready to accept vertices and edges via
// AddVertex/AddEdge, finished with Finalize.
func New() *Graph {
	return &Graph{
		byIdent: make(map[string][]VertexID),
		byObj:   make(map[uuid.UUID]VertexID),
	}
}

// AddVertex appends a vertex and returns its ID. Must be called before
// Finalize.
func (g *Graph) AddVertex(v Vertex) VertexID {
	if g.finalized {
		panic("routegraph: AddVertex after Finalize")
	}
	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, v)
	if v.Ident != "" {
		g.byIdent[v.Ident] = append(g.byIdent[v.Ident], id)
	}
	if v.ObjectID != uuid.Nil {
		g.byObj[v.ObjectID] = id
	}
	return id
}

// AddEdge appends a directed edge. Must be called before Finalize.
func (g *Graph) AddEdge(e Edge) {
	if g.finalized {
		panic("routegraph: AddEdge after Finalize")
	}
	g.edges = append(g.edges, e)
}

// Finalize sorts edges by source vertex and records each vertex's
// [edgeStart, edgeEnd) slice, turning the append-only edge list into a
// CSR adjacency structure. The graph is read-only after this.
func (g *Graph) Finalize() {
	sort.SliceStable(g.edges, func(i, j int) bool {
		return g.edges[i].From < g.edges[j].From
	})

	for i := range g.vertices {
		g.vertices[i].edgeStart, g.vertices[i].edgeEnd = 0, 0
	}

	i := 0
	for i < len(g.edges) {
		from := g.edges[i].From
		start := i
		for i < len(g.edges) && g.edges[i].From == from {
			i++
		}
		if int(from) < len(g.vertices) {
			g.vertices[from].edgeStart = int32(start)
			g.vertices[from].edgeEnd = int32(i)
		}
	}

	g.finalized = true
}

// Vertex returns the vertex at id.
func (g *Graph) Vertex(id VertexID) Vertex { return g.vertices[id] }

// NumVertices returns the vertex count.
func (g *Graph) NumVertices() int { return len(g.vertices) }

// VertexByIdent returns every vertex registered under ident.
func (g *Graph) VertexByIdent(ident string) []VertexID {
	return g.byIdent[ident]
}

// VertexByObject returns the vertex bound to an aeronautical-database
// object's UUID, if any.
func (g *Graph) VertexByObject(id uuid.UUID) (VertexID, bool) {
	v, ok := g.byObj[id]
	return v, ok
}

// EdgesFrom returns the edges leaving v. Only valid after Finalize.
func (g *Graph) EdgesFrom(v VertexID) []Edge {
	vx := g.vertices[v]
	return g.edges[vx.edgeStart:vx.edgeEnd]
}

// EdgePredicate filters which edges a path search may traverse. Resolution
// passes a fresh predicate per query instead of mutating edges with a
// scratch "solution" flag, so the same finalized graph serves concurrent
// or repeated searches safely.
type EdgePredicate func(e Edge) bool

// AllEdges admits every edge.
func AllEdges(Edge) bool { return true }

// KindIn admits edges whose Kind is one of kinds.
func KindIn(kinds ...EdgeKind) EdgePredicate {
	set := make(map[EdgeKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(e Edge) bool { return set[e.Kind] }
}

// WithinAltitude admits edges whose [LowerFt, UpperFt] band is contained
// within [lo, hi]: an edge whose band reaches below lo or above hi is
// rejected, even when it also covers the whole queried band.
func WithinAltitude(lo, hi int) EdgePredicate {
	return func(e Edge) bool {
		return e.LowerFt >= lo && e.UpperFt <= hi
	}
}

// And combines predicates with logical AND.
func And(preds ...EdgePredicate) EdgePredicate {
	return func(e Edge) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}
