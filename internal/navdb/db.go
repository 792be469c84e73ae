// internal/navdb/db.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/skyplan/fplcore/internal/geo"
	"github.com/skyplan/fplcore/internal/logging"
)

// Database is the in-memory, time-sliced aeronautical database: objects
// indexed by UUID, plus a secondary ident -> UUIDs index used for
// find-by-ident queries.
type Database struct {
	byUUID  map[uuid.UUID]*Object
	byIdent map[string][]uuid.UUID

	lg *logging.Logger
}

// New returns an empty database, ready for objects to be added via
// AddObject (normally called by Load).
func New(lg *logging.Logger) *Database {
	return &Database{
		byUUID:  make(map[uuid.UUID]*Object),
		byIdent: make(map[string][]uuid.UUID),
		lg:      lg,
	}
}

// AddObject registers o in the database, indexing it by every ident it
// carries across its timeline.
func (d *Database) AddObject(o *Object) {
	d.byUUID[o.ID] = o

	idents := make(map[string]struct{})
	collect := func(s string) {
		if s != "" {
			idents[strings.ToUpper(s)] = struct{}{}
		}
	}
	for _, ts := range o.Airports {
		collect(ts.Data.ICAO)
	}
	for _, ts := range o.Navaids {
		collect(ts.Data.Ident)
	}
	for _, ts := range o.Points {
		collect(ts.Data.Ident)
	}
	for _, ts := range o.MapElems {
		collect(ts.Data.Ident)
	}
	for _, ts := range o.Routes {
		collect(ts.Data.Ident)
	}
	for _, ts := range o.Segments {
		collect(ts.Data.Ident)
	}
	for _, ts := range o.Procedures {
		collect(ts.Data.Designator)
	}

	for ident := range idents {
		d.byIdent[ident] = append(d.byIdent[ident], o.ID)
	}
}

// Lookup returns the object with the given UUID, if present.
func (d *Database) Lookup(id uuid.UUID) (*Object, bool) {
	o, ok := d.byUUID[id]
	return o, ok
}

// ByIdent returns every object (of any kind) registered under ident.
func (d *Database) ByIdent(ident string) []*Object {
	ids := d.byIdent[strings.ToUpper(ident)]
	objs := make([]*Object, 0, len(ids))
	for _, id := range ids {
		if o, ok := d.byUUID[id]; ok {
			objs = append(objs, o)
		}
	}
	return objs
}

// snapshot is the on-disk (zstd-compressed JSON) representation loaded by
// Load; it mirrors Object's fields in plain, time.Time-friendly form.
type snapshot struct {
	Airports   []objSnapshot[AirportData]           `json:"airports"`
	Navaids    []objSnapshot[NavaidData]            `json:"navaids"`
	Points     []objSnapshot[DesignatedPointData]   `json:"designated_points"`
	MapElems   []objSnapshot[MapElementData]        `json:"map_elements"`
	Segments   []objSnapshot[RouteSegmentData]      `json:"route_segments"`
	Routes     []objSnapshot[RouteData]             `json:"routes"`
	Procedures []objSnapshotKind[ProcedureData]     `json:"procedures"`
	Legs       []objSnapshotKind[ProcedureLegData]  `json:"legs"`
	Airspaces  []objSnapshot[AirspaceData]          `json:"airspaces"`
}

type objSnapshot[T any] struct {
	UUID  uuid.UUID        `json:"uuid"`
	Start time.Time        `json:"start"`
	End   time.Time        `json:"end"`
	Data  T                `json:"data"`
}

type objSnapshotKind[T any] struct {
	objSnapshot[T]
	Kind string `json:"kind"` // "sid"/"star" or "departure_leg"/"arrival_leg"
}

// Load reads a zstd-compressed JSON snapshot of the time-sliced
// aeronautical database, the same on-disk strategy the teacher uses for
// its bravo/charlie/delta airspace and video-map snapshots.
func Load(path string, lg *logging.Logger) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening nav database: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("initializing zstd reader: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing nav database: %w", err)
	}

	var snap snapshot
	if err := unmarshalJSONWithContext(raw, &snap); err != nil {
		return nil, fmt.Errorf("parsing nav database: %w", err)
	}

	d := New(lg)
	for _, s := range snap.Airports {
		merge(d, s.UUID, KindAirport, func(o *Object) {
			o.Airports = append(o.Airports, TimeSlice[AirportData]{s.Start, s.End, s.Data})
		})
	}
	for _, s := range snap.Navaids {
		merge(d, s.UUID, KindNavaid, func(o *Object) {
			o.Navaids = append(o.Navaids, TimeSlice[NavaidData]{s.Start, s.End, s.Data})
		})
	}
	for _, s := range snap.Points {
		merge(d, s.UUID, KindDesignatedPoint, func(o *Object) {
			o.Points = append(o.Points, TimeSlice[DesignatedPointData]{s.Start, s.End, s.Data})
		})
	}
	for _, s := range snap.MapElems {
		merge(d, s.UUID, KindMapElement, func(o *Object) {
			o.MapElems = append(o.MapElems, TimeSlice[MapElementData]{s.Start, s.End, s.Data})
		})
	}
	for _, s := range snap.Segments {
		merge(d, s.UUID, KindRouteSegment, func(o *Object) {
			o.Segments = append(o.Segments, TimeSlice[RouteSegmentData]{s.Start, s.End, s.Data})
		})
	}
	for _, s := range snap.Routes {
		merge(d, s.UUID, KindRoute, func(o *Object) {
			o.Routes = append(o.Routes, TimeSlice[RouteData]{s.Start, s.End, s.Data})
		})
	}
	for _, s := range snap.Procedures {
		kind := KindSID
		if s.Kind == "star" {
			kind = KindSTAR
		}
		merge(d, s.UUID, kind, func(o *Object) {
			o.Procedures = append(o.Procedures, TimeSlice[ProcedureData]{s.Start, s.End, s.Data})
		})
	}
	for _, s := range snap.Legs {
		kind := KindDepartureLeg
		if s.Kind == "arrival_leg" {
			kind = KindArrivalLeg
		}
		merge(d, s.UUID, kind, func(o *Object) {
			o.Legs = append(o.Legs, TimeSlice[ProcedureLegData]{s.Start, s.End, s.Data})
		})
	}
	for _, s := range snap.Airspaces {
		merge(d, s.UUID, KindAirspace, func(o *Object) {
			o.Airspaces = append(o.Airspaces, TimeSlice[AirspaceData]{s.Start, s.End, s.Data})
		})
	}

	if lg != nil {
		lg.Debug("nav database loaded", "objects", len(d.byUUID), "bytes", deepSizeOf(d))
	}

	return d, nil
}

func merge(d *Database, id uuid.UUID, kind ObjectKind, apply func(*Object)) {
	o, ok := d.byUUID[id]
	if !ok {
		o = &Object{ID: id, Kind: kind}
	}
	apply(o)
	if !ok {
		d.AddObject(o)
	}
}

///////////////////////////////////////////////////////////////////////////
// FindCoord: the synchronous lookup facade over asynchronous queries.

// SearchFlags restricts which entity kinds a FindCoord query considers.
type SearchFlags uint32

const (
	SearchAirports SearchFlags = 1 << iota
	SearchNavaids
	SearchDesignatedPoints
	SearchMapElements
	SearchAll = SearchAirports | SearchNavaids | SearchDesignatedPoints | SearchMapElements
)

// Candidate is one match returned by a FindCoord query.
type Candidate struct {
	Object   *Object
	Kind     ObjectKind
	Ident    string
	Location geo.Point
}

// FindCoord is the synchronous facade described in spec section 4.3: it
// fans queries for each enabled entity kind out over a worker pool and
// serializes on their completion, honoring cancellation, before applying
// the tie-break and distance rules that the caller actually wants.
type FindCoord struct {
	db    *Database
	lg    *logging.Logger
	cache *lru.Cache[string, []Candidate]
}

// Suggest returns idents that might be what the caller meant by ident,
// for annotating an "unknown identifier" error; see Database.Suggest.
func (f *FindCoord) Suggest(ident string) []string {
	return f.db.Suggest(strings.ToUpper(ident))
}

// NewFindCoord builds a facade over db with an ident-lookup cache sized
// for a single flight plan's worth of repeated candidate lookups (airway
// expansion re-touches the same idents many times across Dijkstra
// restarts).
func NewFindCoord(db *Database, lg *logging.Logger) *FindCoord {
	cache, _ := lru.New[string, []Candidate](1024)
	return &FindCoord{db: db, lg: lg, cache: cache}
}

func kindRank(k ObjectKind) int {
	switch k {
	case KindAirport:
		return 0
	case KindNavaid:
		return 1
	case KindDesignatedPoint:
		return 2
	case KindMapElement:
		return 3
	default:
		return 4
	}
}

// ByIdent returns the closest plausible match(es) for ident across the
// enabled entity kinds at time t: airports beat navaids beat waypoints
// beat mapelements, and within a kind only candidates tied for the
// shortest matching name survive.
func (f *FindCoord) ByIdent(ctx context.Context, ident string, flags SearchFlags, t time.Time) ([]Candidate, error) {
	key := fmt.Sprintf("%s|%d|%d", strings.ToUpper(ident), flags, t.Unix())
	if f.cache != nil {
		if v, ok := f.cache.Get(key); ok {
			return v, nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	resultsCh := make(chan []Candidate, 4)

	query := func(enabled bool, kind ObjectKind) {
		if !enabled {
			return
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			var out []Candidate
			for _, o := range f.db.ByIdent(ident) {
				if o.Kind != kind {
					continue
				}
				id := o.Ident(t)
				if id == "" {
					continue
				}
				out = append(out, Candidate{Object: o, Kind: o.Kind, Ident: id, Location: o.Location(t)})
			}
			resultsCh <- out
			return nil
		})
	}

	query(flags&SearchAirports != 0, KindAirport)
	query(flags&SearchNavaids != 0, KindNavaid)
	query(flags&SearchDesignatedPoints != 0, KindDesignatedPoint)
	query(flags&SearchMapElements != 0, KindMapElement)

	go func() {
		g.Wait()
		close(resultsCh)
	}()

	var all []Candidate
	for r := range resultsCh {
		all = append(all, r...)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all = bestByKindThenName(all)

	if f.cache != nil {
		f.cache.Add(key, all)
	}
	return all, nil
}

// bestByKindThenName implements the tie-break: prefer the best-ranked
// kind present, and within that kind, only candidates whose ident is
// tied for shortest survive.
func bestByKindThenName(cands []Candidate) []Candidate {
	if len(cands) == 0 {
		return nil
	}
	bestRank := 4
	for _, c := range cands {
		if r := kindRank(c.Kind); r < bestRank {
			bestRank = r
		}
	}
	var sameKind []Candidate
	for _, c := range cands {
		if kindRank(c.Kind) == bestRank {
			sameKind = append(sameKind, c)
		}
	}
	shortest := len(sameKind[0].Ident)
	for _, c := range sameKind {
		if len(c.Ident) < shortest {
			shortest = len(c.Ident)
		}
	}
	var out []Candidate
	for _, c := range sameKind {
		if len(c.Ident) == shortest {
			out = append(out, c)
		}
	}
	return out
}

// ByLocation performs a bounding-box search around p, returning matches
// sorted by distance and discarding anything beyond maxDistKM.
func (f *FindCoord) ByLocation(ctx context.Context, p geo.Point, flags SearchFlags, maxDistKM float64, t time.Time) ([]Candidate, error) {
	const kmPerNM = 1.852
	maxDistNM := maxDistKM / kmPerNM

	var out []Candidate
	consider := func(enabled bool, kind ObjectKind, objs func() []*Object) {
		if !enabled {
			return
		}
		for _, o := range objs() {
			if o.Kind != kind {
				continue
			}
			loc := o.Location(t)
			if !loc.IsValid() {
				continue
			}
			if geo.Distance(p, loc) <= maxDistNM {
				out = append(out, Candidate{Object: o, Kind: o.Kind, Ident: o.Ident(t), Location: loc})
			}
		}
	}

	all := func() []*Object {
		objs := make([]*Object, 0, len(f.db.byUUID))
		for _, o := range f.db.byUUID {
			objs = append(objs, o)
		}
		return objs
	}

	consider(flags&SearchAirports != 0, KindAirport, all)
	consider(flags&SearchNavaids != 0, KindNavaid, all)
	consider(flags&SearchDesignatedPoints != 0, KindDesignatedPoint, all)
	consider(flags&SearchMapElements != 0, KindMapElement, all)

	sort.Slice(out, func(i, j int) bool {
		return geo.Distance(p, out[i].Location) < geo.Distance(p, out[j].Location)
	})

	return out, nil
}

// NearestAirport returns the nearest airport to p within maxNM, used by
// the DB-lookup phase to snap the first/last waypoint onto an airport.
func (f *FindCoord) NearestAirport(ctx context.Context, p geo.Point, maxNM float64, t time.Time) (Candidate, bool) {
	cands, err := f.ByLocation(ctx, p, SearchAirports, maxNM*1.852, t)
	if err != nil || len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}

// AirwaySegment is one route_segment of a named airway, resolved at time
// t: its owning route object plus both endpoints' idents and coordinates,
// ready to bind into a route graph.
type AirwaySegment struct {
	RouteUUID              uuid.UUID
	FromObjectID, ToObjectID uuid.UUID
	FromIdent, ToIdent      string
	FromLocation, ToLocation geo.Point
	DistanceNM, BearingDeg  float64
	LowerFt, UpperFt        int
	Kind                    AirwayKind
}

// AirwaySegments resolves every route_segment object registered under
// ident at time t into the graph-ready bundle the expander consults when
// it needs a named airway's edges -- the "(graph, ident->vertex) bundle"
// airway graph queries return.
func (f *FindCoord) AirwaySegments(ident string, t time.Time) []AirwaySegment {
	var out []AirwaySegment
	for _, o := range f.db.ByIdent(ident) {
		seg, ok := o.AsRouteSegment(t)
		if !ok {
			continue
		}
		from, ok1 := f.db.Lookup(seg.From)
		to, ok2 := f.db.Lookup(seg.To)
		if !ok1 || !ok2 {
			continue
		}
		fromLoc, toLoc := from.Location(t), to.Location(t)
		if !fromLoc.IsValid() || !toLoc.IsValid() {
			continue
		}
		out = append(out, AirwaySegment{
			RouteUUID:    seg.RouteUUID,
			FromObjectID: seg.From,
			ToObjectID:   seg.To,
			FromIdent:    from.Ident(t),
			ToIdent:      to.Ident(t),
			FromLocation: fromLoc,
			ToLocation:   toLoc,
			DistanceNM:   seg.DistanceNM,
			BearingDeg:   seg.BearingDeg,
			LowerFt:      seg.LowerFt,
			UpperFt:      seg.UpperFt,
			Kind:         seg.Kind,
		})
	}
	return out
}
