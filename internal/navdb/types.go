// internal/navdb/types.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package navdb models the time-sliced aeronautical database: the closed
// set of object kinds (airports, navaids, designated points, map
// elements, route segments, routes/airways, SIDs, STARs, departure and
// arrival legs, airspace), each resolved at a departure-time key, plus
// the asynchronous lookup facade used throughout resolution.
package navdb

import (
	"time"

	"github.com/google/uuid"

	"github.com/skyplan/fplcore/internal/geo"
)

// ObjectKind is the closed set of aeronautical-database object kinds.
type ObjectKind int

const (
	KindAirport ObjectKind = iota
	KindNavaid
	KindDesignatedPoint
	KindMapElement
	KindRouteSegment
	KindRoute
	KindSID
	KindSTAR
	KindDepartureLeg
	KindArrivalLeg
	KindAirspace
)

func (k ObjectKind) String() string {
	switch k {
	case KindAirport:
		return "airport"
	case KindNavaid:
		return "navaid"
	case KindDesignatedPoint:
		return "designated_point"
	case KindMapElement:
		return "mapelement"
	case KindRouteSegment:
		return "route_segment"
	case KindRoute:
		return "route"
	case KindSID:
		return "sid"
	case KindSTAR:
		return "star"
	case KindDepartureLeg:
		return "departure_leg"
	case KindArrivalLeg:
		return "arrival_leg"
	case KindAirspace:
		return "airspace"
	default:
		return "unknown"
	}
}

// NavaidType is the closed set of navaid sub-types the spec calls out.
type NavaidType int

const (
	NavaidVOR NavaidType = iota
	NavaidVORDME
	NavaidVORTAC
	NavaidTACAN
	NavaidDME
	NavaidNDB
	NavaidNDBDME
	NavaidILSDME
	NavaidLOCDME
	NavaidNDBMKR
)

// TimeSlice is one interval [Start, End) of validity for a time-sliced
// database object; End.IsZero() means "valid indefinitely".
type TimeSlice[T any] struct {
	Start, End time.Time
	Data       T
}

func (ts TimeSlice[T]) contains(t time.Time) bool {
	if t.Before(ts.Start) {
		return false
	}
	return ts.End.IsZero() || t.Before(ts.End)
}

// Timeline is the union of time slices backing one database object.
type Timeline[T any] []TimeSlice[T]

// At resolves the timeline at the given departure time, returning the
// one concrete slice (if any) whose interval contains t.
func (tl Timeline[T]) At(t time.Time) (T, bool) {
	for _, ts := range tl {
		if ts.contains(t) {
			return ts.Data, true
		}
	}
	var zero T
	return zero, false
}

// AirportData is the time-sliced content of an airport object.
type AirportData struct {
	ICAO      string
	Name      string
	Location  geo.Point
	Elevation int // feet
}

// NavaidData is the time-sliced content of a navaid object.
type NavaidData struct {
	Ident    string
	Type     NavaidType
	Location geo.Point
	Name     string
}

// DesignatedPointData is the time-sliced content of an intersection,
// user fix, or terminal fix.
type DesignatedPointData struct {
	Ident    string
	Location geo.Point
	Terminal bool // true if scoped to a specific terminal procedure
}

// MapElementData is the time-sliced content of a mapelement (a
// non-navigable reference point, e.g. a coastline or city label).
type MapElementData struct {
	Ident    string
	Location geo.Point
}

// AirwayKind classifies which altitude stratum a route segment serves.
type AirwayKind int

const (
	AirwayLow AirwayKind = iota
	AirwayHigh
	AirwayBoth
	AirwayInvalid
)

// RouteSegmentData is one segment of a named airway between two
// resolved vertex objects.
type RouteSegmentData struct {
	RouteUUID  uuid.UUID
	Ident      string // airway designator, e.g. "UM984"
	From, To   uuid.UUID
	DistanceNM float64
	BearingDeg float64 // initial true bearing, From -> To
	LowerFt    int
	UpperFt    int
	Kind       AirwayKind
}

// RouteData is the named airway that RouteSegmentData entries belong to.
type RouteData struct {
	Ident string
}

// ProcedureLegData is one leg of a SID (departure) or STAR (arrival).
type ProcedureLegData struct {
	ProcedureUUID uuid.UUID
	Airport       string
	FixUUID       uuid.UUID
	LowerFt       int
	UpperFt       int
	DistanceNM    float64
	BearingDeg    float64
}

// ProcedureData describes a SID/STAR's identity, independent of its legs.
type ProcedureData struct {
	Designator string
	Airport    string
}

// AirspaceData is a bounding volume; resolution only consults its
// identity and altitude band, not its lateral geometry.
type AirspaceData struct {
	Ident   string
	LowerFt int
	UpperFt int
}

// Object is a handle to one aeronautical-database entity; Kind never
// changes, but the data available through At varies by time.
type Object struct {
	ID   uuid.UUID
	Kind ObjectKind

	Airports   Timeline[AirportData]
	Navaids    Timeline[NavaidData]
	Points     Timeline[DesignatedPointData]
	MapElems   Timeline[MapElementData]
	Segments   Timeline[RouteSegmentData]
	Routes     Timeline[RouteData]
	Procedures Timeline[ProcedureData]
	Legs       Timeline[ProcedureLegData]
	Airspaces  Timeline[AirspaceData]
}

// AsAirport narrows o to its airport slice at t.
func (o *Object) AsAirport(t time.Time) (AirportData, bool) {
	if o.Kind != KindAirport {
		return AirportData{}, false
	}
	return o.Airports.At(t)
}

// AsNavaid narrows o to its navaid slice at t.
func (o *Object) AsNavaid(t time.Time) (NavaidData, bool) {
	if o.Kind != KindNavaid {
		return NavaidData{}, false
	}
	return o.Navaids.At(t)
}

// AsDesignatedPoint narrows o to its designated-point slice at t.
func (o *Object) AsDesignatedPoint(t time.Time) (DesignatedPointData, bool) {
	if o.Kind != KindDesignatedPoint {
		return DesignatedPointData{}, false
	}
	return o.Points.At(t)
}

// AsMapElement narrows o to its mapelement slice at t.
func (o *Object) AsMapElement(t time.Time) (MapElementData, bool) {
	if o.Kind != KindMapElement {
		return MapElementData{}, false
	}
	return o.MapElems.At(t)
}

// AsRouteSegment narrows o to its route-segment slice at t.
func (o *Object) AsRouteSegment(t time.Time) (RouteSegmentData, bool) {
	if o.Kind != KindRouteSegment {
		return RouteSegmentData{}, false
	}
	return o.Segments.At(t)
}

// AsRoute narrows o to its route (airway) slice at t.
func (o *Object) AsRoute(t time.Time) (RouteData, bool) {
	if o.Kind != KindRoute {
		return RouteData{}, false
	}
	return o.Routes.At(t)
}

// AsProcedure narrows o to its SID/STAR identity slice at t.
func (o *Object) AsProcedure(t time.Time) (ProcedureData, bool) {
	if o.Kind != KindSID && o.Kind != KindSTAR {
		return ProcedureData{}, false
	}
	return o.Procedures.At(t)
}

// AsLeg narrows o to its departure/arrival leg slice at t.
func (o *Object) AsLeg(t time.Time) (ProcedureLegData, bool) {
	if o.Kind != KindDepartureLeg && o.Kind != KindArrivalLeg {
		return ProcedureLegData{}, false
	}
	return o.Legs.At(t)
}

// AsAirspace narrows o to its airspace slice at t.
func (o *Object) AsAirspace(t time.Time) (AirspaceData, bool) {
	if o.Kind != KindAirspace {
		return AirspaceData{}, false
	}
	return o.Airspaces.At(t)
}

// Ident returns the object's printable identifier at t, or "" if the
// object has no binding at that time.
func (o *Object) Ident(t time.Time) string {
	switch o.Kind {
	case KindAirport:
		if d, ok := o.AsAirport(t); ok {
			return d.ICAO
		}
	case KindNavaid:
		if d, ok := o.AsNavaid(t); ok {
			return d.Ident
		}
	case KindDesignatedPoint:
		if d, ok := o.AsDesignatedPoint(t); ok {
			return d.Ident
		}
	case KindMapElement:
		if d, ok := o.AsMapElement(t); ok {
			return d.Ident
		}
	case KindRoute:
		if d, ok := o.AsRoute(t); ok {
			return d.Ident
		}
	case KindSID, KindSTAR:
		if d, ok := o.AsProcedure(t); ok {
			return d.Designator
		}
	}
	return ""
}

// Location returns the object's coordinate at t, or an invalid point if
// the object has no location (airways, procedures, legs).
func (o *Object) Location(t time.Time) geo.Point {
	switch o.Kind {
	case KindAirport:
		if d, ok := o.AsAirport(t); ok {
			return d.Location
		}
	case KindNavaid:
		if d, ok := o.AsNavaid(t); ok {
			return d.Location
		}
	case KindDesignatedPoint:
		if d, ok := o.AsDesignatedPoint(t); ok {
			return d.Location
		}
	case KindMapElement:
		if d, ok := o.AsMapElement(t); ok {
			return d.Location
		}
	}
	return geo.Invalid()
}
