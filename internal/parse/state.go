// internal/parse/state.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package parse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skyplan/fplcore/internal/errlog"
	"github.com/skyplan/fplcore/internal/geo"
	"github.com/skyplan/fplcore/internal/navdb"
	"github.com/skyplan/fplcore/internal/routegraph"
	"github.com/skyplan/fplcore/internal/wmm"
)

// State holds the in-flight parse waypoints, the cruise-speed table, and
// the accumulated error list; it drives the four pipeline phases and owns
// the route graph for their duration.
type State struct {
	Waypoints []*Waypoint
	Graph     *routegraph.Graph

	// CruiseSpeeds maps altitude (ft) to TAS (kt); append-only during
	// parsing, looked up by nearest key.
	CruiseSpeeds map[int]float64

	Errors *errlog.ErrorLogger

	db      *navdb.FindCoord
	depTime time.Time

	loadedAirways map[string]bool
}

// NewState returns a state bound to db and graph, with departure time t
// used to key every time-sliced lookup.
func NewState(db *navdb.FindCoord, graph *routegraph.Graph, t time.Time, errs *errlog.ErrorLogger) *State {
	return &State{
		Graph:        graph,
		CruiseSpeeds: make(map[int]float64),
		Errors:       errs,
		db:           db,
		depTime:      t,
	}
}

// nearestCruiseSpeed finds the cruise speed keyed by the altitude nearest
// altFt, per the append-only/nearest-key lookup rule.
func (s *State) nearestCruiseSpeed(altFt int) (float64, bool) {
	if len(s.CruiseSpeeds) == 0 {
		return 0, false
	}
	bestAlt, bestDiff := 0, -1
	for a := range s.CruiseSpeeds {
		d := a - altFt
		if d < 0 {
			d = -d
		}
		if bestDiff < 0 || d < bestDiff {
			bestAlt, bestDiff = a, d
		}
	}
	return s.CruiseSpeeds[bestAlt], true
}

///////////////////////////////////////////////////////////////////////////
// 4.2.1 Speed/Altitude Resolution

// ProcessSpeedAlt walks the raw route tokens, uppercasing idents,
// recognizing IFR/VFR/DCT/STAY[n] control tokens, and stripping
// speed/altitude and course/distance suffixes from the rest. It returns
// the resulting waypoint list with rules/altitude/speed carried forward.
func (s *State) ProcessSpeedAlt(tokens []string, initialRules RulesFlag) []*Waypoint {
	var wps []*Waypoint
	rules := initialRules
	altFlag := AltitudeNone
	altFt := 0
	speed := 0.0
	lastStay := -1

	for _, raw := range tokens {
		tok := strings.ToUpper(strings.TrimSpace(raw))
		if tok == "" {
			continue
		}

		leadingSpeed, leadingAlt, isLeadingSpeedAlt := SplitLeadingSpeedAlt(tok)

		switch {
		case tok == "IFR":
			rules = RulesIFR
			if len(wps) > 0 {
				wps[len(wps)-1].Rules = rules
			}
			continue
		case tok == "VFR":
			rules = RulesVFR
			if len(wps) > 0 {
				wps[len(wps)-1].Rules = rules
			}
			continue
		case tok == "DCT":
			if len(wps) > 0 {
				wps[len(wps)-1].PathCodeOut = PathDirectTo
			}
			continue
		case isLeadingSpeedAlt:
			// Item 15's mandatory first token, a bare "speed+level" pair
			// with no attached waypoint ident -- sets the initial cruise
			// speed/altitude without producing a waypoint of its own.
			if v, err := ParseSpeed(leadingSpeed); err == nil {
				speed = v
			} else {
				s.Errors.Error(err)
			}
			if v, fl, err := ParseAlt(leadingAlt); err == nil {
				altFt, altFlag = v, fl
				s.CruiseSpeeds[altFt] = speed
			} else {
				s.Errors.Error(err)
			}
			continue
		case strings.HasPrefix(tok, "STAY") && isStayToken(tok):
			n := stayIndex(tok)
			if lastStay >= 0 && n != lastStay+1 {
				s.Errors.Error(errlog.ErrInvalidStaySequence)
			}
			lastStay = n
			if len(wps) > 0 {
				wps[len(wps)-1].PathCodeOut = PathStay
				wps[len(wps)-1].PathName = tok
			}
			continue
		}

		base := tok
		if b, sp, al, ok := SplitSpeedAltSuffix(tok); ok {
			base = b
			if v, err := ParseSpeed(sp); err == nil {
				speed = v
				if altFt != 0 {
					s.CruiseSpeeds[altFt] = speed
				}
			} else {
				s.Errors.Error(err)
			}
			if al != "" {
				if v, fl, err := ParseAlt(al); err == nil {
					altFt, altFlag = v, fl
					s.CruiseSpeeds[altFt] = speed
				} else {
					s.Errors.Error(err)
				}
			}
		}

		w := NewWaypoint(base, rules)
		w.AltFlag, w.AltFt, w.SpeedKts = altFlag, altFt, speed

		if b, course, dist, ok := SplitCourseDistSuffix(base); ok {
			w.Ident = b
			w.HasCourseDist = true
			w.CourseDeg, w.DistNM = course, dist
		}

		if p, err := geo.ParseICAOSurface(w.Ident); err == nil {
			w.Coord, w.HasCoord = p, true
			w.TypeMask = routegraph.TypeUserFix
		} else {
			w.TypeMask = routegraph.TypeAirport | routegraph.TypeNavaid | routegraph.TypeDesignatedPoint
			if rules == RulesVFR {
				w.TypeMask |= routegraph.TypeMapElement
			}
		}

		wps = append(wps, w)
	}

	if len(wps) > 0 {
		wps[0].TypeMask = routegraph.TypeAirport
		wps[len(wps)-1].TypeMask = routegraph.TypeAirport
	}

	s.Waypoints = wps
	return wps
}

func isStayToken(tok string) bool {
	if tok == "STAY" {
		return true
	}
	_, err := strconv.Atoi(tok[4:])
	return err == nil
}

// stayIndex returns the 1-based sequence number of a STAY token: bare
// "STAY" is treated as the first in a sequence, "STAYn" as the nth.
func stayIndex(tok string) int {
	if tok == "STAY" {
		return 1
	}
	n, err := strconv.Atoi(tok[4:])
	if err != nil {
		return 1
	}
	return n
}

///////////////////////////////////////////////////////////////////////////
// 4.2.2 DB Lookup

// ProcessDBLookup resolves each waypoint's identifier against the
// database, retroactively folding bare airway names into the previous
// waypoint's outgoing path, then synthesizes course/distance fixes.
func (s *State) ProcessDBLookup(ctx context.Context) {
	s.Errors.Push("dblookup")
	defer s.Errors.Pop()

	kept := s.Waypoints[:0]
	for i, w := range s.Waypoints {
		if w.HasCoord {
			if i == 0 || i == len(s.Waypoints)-1 {
				if c, ok := s.db.NearestAirport(ctx, w.Coord, 2, s.depTime); ok {
					w.Candidates = append(w.Candidates, Path{Vertex: s.bindVertex(c)})
					s.fillElevation(w, c)
					kept = append(kept, w)
					continue
				}
			}
			v := s.Graph.AddVertex(routegraph.Vertex{Ident: w.Ident, Location: w.Coord, Mask: routegraph.TypeUserFix})
			w.Candidates = append(w.Candidates, Path{Vertex: v})
			kept = append(kept, w)
			continue
		}

		flags := searchFlagsFor(w.TypeMask)
		cands, err := s.db.ByIdent(ctx, w.Ident, flags, s.depTime)
		if err != nil {
			s.Errors.ErrorString("identifier lookup for %q cancelled: %v", w.Ident, err)
		}

		if len(cands) == 0 && len(kept) > 0 {
			if _, ok := s.isAirwayIdent(w.Ident); ok {
				prev := kept[len(kept)-1]
				prev.PathCodeOut = PathAirway
				prev.PathName = w.Ident
				s.ensureAirwayEdges(w.Ident)
				continue // token erased; does not become a waypoint
			}
		}

		for _, c := range cands {
			w.Candidates = append(w.Candidates, Path{Vertex: s.bindVertex(c)})
		}

		if len(w.Candidates) == 0 && w.Rules == RulesIFR {
			if suggestions := s.db.Suggest(w.Ident); len(suggestions) > 0 {
				s.Errors.ErrorString("unknown identifier %s (did you mean %s?)", w.Ident, strings.Join(suggestions, ", "))
			} else {
				s.Errors.ErrorString("unknown identifier %s", w.Ident)
			}
		}

		kept = append(kept, w)
	}
	s.Waypoints = kept

	s.resolveCourseDistFixes()
}

func searchFlagsFor(mask routegraph.TypeMask) navdb.SearchFlags {
	var f navdb.SearchFlags
	if mask&routegraph.TypeAirport != 0 {
		f |= navdb.SearchAirports
	}
	if mask&routegraph.TypeNavaid != 0 {
		f |= navdb.SearchNavaids
	}
	if mask&routegraph.TypeDesignatedPoint != 0 {
		f |= navdb.SearchDesignatedPoints
	}
	if mask&routegraph.TypeMapElement != 0 {
		f |= navdb.SearchMapElements
	}
	return f
}

// isAirwayIdent is a crude airway-designator recognizer: one or more
// letters followed by one or more digits, e.g. "UM984", "UL129", "UN852".
func (s *State) isAirwayIdent(ident string) (string, bool) {
	if len(ident) < 2 {
		return "", false
	}
	if ident[0] < 'A' || ident[0] > 'Z' {
		return "", false
	}
	i := 1
	for i < len(ident) && ident[i] >= 'A' && ident[i] <= 'Z' {
		i++
	}
	if i == len(ident) {
		return "", false
	}
	for ; i < len(ident); i++ {
		if ident[i] < '0' || ident[i] > '9' {
			return "", false
		}
	}
	return ident, true
}

// fillElevation records the bound airport's field elevation on w, used by
// the default-altitude policy (spec section 9's m_defaultalt open
// question); left at zero if c does not resolve to an airport at depTime.
func (s *State) fillElevation(w *Waypoint, c navdb.Candidate) {
	if c.Object == nil {
		return
	}
	if a, ok := c.Object.AsAirport(s.depTime); ok {
		w.ElevationFt = a.Elevation
	}
}

func (s *State) bindVertex(c navdb.Candidate) routegraph.VertexID {
	if v, ok := s.Graph.VertexByObject(c.Object.ID); ok {
		return v
	}
	return s.Graph.AddVertex(routegraph.Vertex{
		ObjectID: c.Object.ID,
		Ident:    c.Ident,
		Location: c.Location,
		Mask:     maskForKind(c.Kind),
	})
}

// ensureAirwayEdges loads name's route_segment edges into the graph the
// first time the expander will need to traverse them, per section 4.3's
// airway graph queries. Idempotent per State: a route naming the same
// airway twice only queries the database once. Must run before the graph
// is finalized, so it is called from the DB-lookup phase rather than the
// airway-expansion phase that actually consumes the edges.
func (s *State) ensureAirwayEdges(name string) {
	if s.loadedAirways == nil {
		s.loadedAirways = make(map[string]bool)
	}
	if s.loadedAirways[name] {
		return
	}
	s.loadedAirways[name] = true

	for _, seg := range s.db.AirwaySegments(name, s.depTime) {
		from := s.ensureVertex(seg.FromObjectID, seg.FromIdent, seg.FromLocation)
		to := s.ensureVertex(seg.ToObjectID, seg.ToIdent, seg.ToLocation)
		s.Graph.AddEdge(routegraph.Edge{
			From:       from,
			To:         to,
			RouteID:    seg.RouteUUID,
			Ident:      name,
			DistanceNM: seg.DistanceNM,
			BearingDeg: seg.BearingDeg,
			LowerFt:    seg.LowerFt,
			UpperFt:    seg.UpperFt,
			Kind:       routegraph.EdgeAirway,
		})
	}
}

// ensureVertex returns the graph vertex already bound to objectID, adding
// one if this is the first time the airway loader has seen it.
func (s *State) ensureVertex(objectID uuid.UUID, ident string, loc geo.Point) routegraph.VertexID {
	if v, ok := s.Graph.VertexByObject(objectID); ok {
		return v
	}
	return s.Graph.AddVertex(routegraph.Vertex{
		ObjectID: objectID,
		Ident:    ident,
		Location: loc,
		Mask:     routegraph.TypeNavaid | routegraph.TypeDesignatedPoint,
	})
}

func maskForKind(k navdb.ObjectKind) routegraph.TypeMask {
	switch k {
	case navdb.KindAirport:
		return routegraph.TypeAirport
	case navdb.KindNavaid:
		return routegraph.TypeNavaid
	case navdb.KindDesignatedPoint:
		return routegraph.TypeDesignatedPoint
	case navdb.KindMapElement:
		return routegraph.TypeMapElement
	default:
		return routegraph.TypeUserFix
	}
}

// resolveCourseDistFixes converts each waypoint's magnetic course/distance
// into a true-course projection from every candidate vertex, synthesizing
// a new designated-point object per candidate with a UUID deterministically
// derived from the parent vertex's UUID and the course/distance suffix.
func (s *State) resolveCourseDistFixes() {
	for _, w := range s.Waypoints {
		if !w.HasCourseDist {
			continue
		}
		var synth []Path
		for _, cand := range w.Candidates {
			v := s.Graph.Vertex(cand.Vertex)
			trueCourse := wmm.MagneticToTrue(w.CourseDeg, v.Location, 0, decimalYear(s.depTime))
			proj := geo.CourseDistance(v.Location, trueCourse, w.DistNM)

			suffix := fmt.Sprintf("%03d%03d", int(w.CourseDeg), int(w.DistNM))
			id := uuid.NewSHA1(v.ObjectID, []byte(suffix))

			nv := s.Graph.AddVertex(routegraph.Vertex{
				ObjectID: id,
				Ident:    w.Ident,
				Location: proj,
				Mask:     routegraph.TypeUserFix,
			})
			synth = append(synth, Path{Vertex: nv})
		}
		w.Candidates = synth
		w.TypeMask = routegraph.TypeUserFix
	}
}

func decimalYear(t time.Time) float64 {
	year := t.Year()
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)
	frac := float64(t.Sub(start)) / float64(end.Sub(start))
	return float64(year) + frac
}
