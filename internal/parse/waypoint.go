// internal/parse/waypoint.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package parse

import (
	"github.com/skyplan/fplcore/internal/geo"
	"github.com/skyplan/fplcore/internal/routegraph"
)

// PathCode is the kind of connection from a waypoint to the next.
type PathCode int

const (
	PathNone PathCode = iota
	PathAirway
	PathDirectTo
	PathSID
	PathSTAR
	PathVFRDeparture
	PathVFRArrival
	PathVFRTransition
	PathStay
)

func (p PathCode) String() string {
	switch p {
	case PathAirway:
		return "airway"
	case PathDirectTo:
		return "directto"
	case PathSID:
		return "sid"
	case PathSTAR:
		return "star"
	case PathVFRDeparture:
		return "vfrdeparture"
	case PathVFRArrival:
		return "vfrarrival"
	case PathVFRTransition:
		return "vfrtransition"
	case PathStay:
		return "stay"
	default:
		return "none"
	}
}

// Path is one candidate resolution of a parse waypoint: a bound graph
// vertex, the cumulative forward distance to reach it, and a flat
// predecessors vector (per Design Notes: indexed by depth, not a pointer
// DAG). When the vertex was reached by an airway search, Predecessors is
// the full vertex chain from the previous waypoint's anchor (first entry)
// to this vertex (last entry); otherwise it is empty.
type Path struct {
	Vertex       routegraph.VertexID
	Dist         float64
	Predecessors []routegraph.VertexID
}

// Waypoint extends a flight-plan token with everything the pipeline
// accumulates about it across phases.
type Waypoint struct {
	Ident string // as parsed; mutated by suffix stripping

	TypeMask routegraph.TypeMask

	Rules    RulesFlag // IFR/VFR active at this point
	AltFlag  AltitudeFlag
	AltFt    int
	SpeedKts float64

	HasCourseDist bool
	CourseDeg     float64 // magnetic
	DistNM        float64

	Coord    geo.Point
	HasCoord bool

	// ElevationFt is the bound airport's field elevation, set only when
	// the waypoint resolves to an airport (used by the default-altitude
	// policy); zero otherwise.
	ElevationFt int

	PathCodeOut PathCode
	PathName    string // airway/SID/STAR ident, or STAY token

	Candidates []Path

	Expanded bool // true if materialized by the airway expander

	EETSeconds int // -1 if not yet computed
}

// RulesFlag is the active flight-rules regime at a waypoint.
type RulesFlag int

const (
	RulesIFR RulesFlag = iota
	RulesVFR
)

// NewWaypoint returns a waypoint for ident with no candidates yet and
// EET unset.
func NewWaypoint(ident string, rules RulesFlag) *Waypoint {
	return &Waypoint{
		Ident:      ident,
		Rules:      rules,
		EETSeconds: -1,
	}
}

// Resolved reports whether the waypoint has exactly one candidate, the
// state required before it can be consumed by FlightPlan.Populate.
func (w *Waypoint) Resolved() bool { return len(w.Candidates) == 1 }
