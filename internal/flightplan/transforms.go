// internal/flightplan/transforms.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightplan

import (
	"sort"
	"strings"

	"github.com/skyplan/fplcore/internal/geo"
	"github.com/skyplan/fplcore/internal/parse"
)

var legalPathCodesIFR = map[parse.PathCode]bool{
	parse.PathNone:     true,
	parse.PathAirway:   true,
	parse.PathDirectTo: true,
	parse.PathSID:      true,
	parse.PathSTAR:     true,
	parse.PathStay:     true,
}

var legalPathCodesVFR = map[parse.PathCode]bool{
	parse.PathVFRDeparture:  true,
	parse.PathVFRArrival:    true,
	parse.PathVFRTransition: true,
}

// EnforcePathcodeVFRIFR resets illegal path-code/rules combinations to a
// safe default (none) and clears the path name.
func (fp *FlightPlan) EnforcePathcodeVFRIFR() {
	for _, w := range fp.Route {
		legal := legalPathCodesIFR
		if w.Rules == parse.RulesVFR {
			legal = legalPathCodesVFR
		}
		if !legal[w.PathCodeOut] {
			w.PathCodeOut = parse.PathNone
			w.PathName = ""
		}
	}
}

// FixMaxDCTDistance subdivides any DCT or VFR leg exceeding limitNM by
// inserting interior waypoints along the great circle at equal spacing no
// greater than limitNM.
func (fp *FlightPlan) FixMaxDCTDistance(limitNM float64) {
	var out []*parse.Waypoint
	for i := 0; i < len(fp.Route); i++ {
		w := fp.Route[i]
		out = append(out, w)
		if i == len(fp.Route)-1 {
			continue
		}
		next := fp.Route[i+1]
		if w.PathCodeOut != parse.PathDirectTo && w.Rules != parse.RulesVFR {
			continue
		}
		if !w.HasCoord || !next.HasCoord {
			continue
		}
		from, to := w.Coord, next.Coord
		dist := geo.Distance(from, to)
		if dist <= limitNM {
			continue
		}
		n := int(dist/limitNM) + 1
		if dist/float64(n) > limitNM {
			n++
		}
		course := geo.InitialCourse(from, to)
		step := dist / float64(n)
		for k := 1; k < n; k++ {
			pt := geo.CourseDistance(from, course, step*float64(k))
			iw := &parse.Waypoint{
				Ident:       pt.ICAOSurfaceString(),
				Coord:       pt,
				HasCoord:    true,
				Rules:       w.Rules,
				AltFlag:     w.AltFlag,
				AltFt:       w.AltFt,
				SpeedKts:    w.SpeedKts,
				PathCodeOut: w.PathCodeOut,
				Expanded:    true,
				EETSeconds:  -1,
			}
			out = append(out, iw)
		}
	}
	fp.Route = out
}

// EraseUnnecessaryAirway collapses consecutive interior waypoints on the
// same airway when their altitude/rules are identical. When
// keepTurnpoints is set, a point whose perpendicular distance to the
// chord exceeds fp.opts.TurnpointDeviationNM is retained regardless.
func (fp *FlightPlan) EraseUnnecessaryAirway(keepTurnpoints, includeDCT bool) {
	threshold := fp.opts.TurnpointDeviationNM
	if threshold <= 0 {
		threshold = 0.5
	}

	var out []*parse.Waypoint
	for i, w := range fp.Route {
		if i == 0 || i == len(fp.Route)-1 {
			out = append(out, w)
			continue
		}
		prev, next := fp.Route[i-1], fp.Route[i+1]

		sameAirway := w.PathName != "" && prev.PathName == w.PathName && next.PathName == w.PathName
		sameDCT := includeDCT && w.PathCodeOut == parse.PathDirectTo &&
			prev.PathCodeOut == parse.PathDirectTo

		if !sameAirway && !sameDCT {
			out = append(out, w)
			continue
		}
		if w.AltFt != prev.AltFt || w.Rules != prev.Rules {
			out = append(out, w)
			continue
		}

		if keepTurnpoints && w.HasCoord && prev.HasCoord && next.HasCoord {
			_, crossTrack, _ := geo.NearestPointOnGreatCircle(w.Coord, prev.Coord, next.Coord)
			if abs(crossTrack) > threshold {
				out = append(out, w)
				continue
			}
		}
		// collapsed: dropped.
	}
	fp.Route = out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// AddEET rebuilds the EET/ other-info from the per-waypoint flight times,
// skipping waypoints with short or numeric idents, sorted ascending
// within the category and de-duplicated by ident.
func (fp *FlightPlan) AddEET() {
	type entry struct {
		ident string
		secs  int
	}
	seen := make(map[string]int)
	var order []string
	for _, w := range fp.Route {
		if len(w.Ident) < 2 || isNumeric(w.Ident) || w.EETSeconds < 0 {
			continue
		}
		if _, ok := seen[w.Ident]; !ok {
			order = append(order, w.Ident)
		}
		seen[w.Ident] = w.EETSeconds
	}

	entries := make([]entry, 0, len(order))
	for _, ident := range order {
		entries = append(entries, entry{ident, seen[ident]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].secs < entries[j].secs })

	var parts []string
	for _, e := range entries {
		parts = append(parts, e.ident+parse.FormatEET(e.secs))
	}
	fp.OtherInfo.Set("EET", strings.Join(parts, " "))
}

var parisGroup = map[string]bool{
	"LFPB": true, "LFPG": true, "LFPN": true, "LFPO": true,
	"LFPT": true, "LFPV": true, "LFPC": true, "LFPM": true,
}

// NormalizePogo ensures POGO appears in RMK/ when departure and
// destination are both IFR and both in the Paris TMA group (or form an
// LFOB<->LFPN/V pair); otherwise removes it. Idempotent: a second
// invocation does not mutate otherinfo.
func (fp *FlightPlan) NormalizePogo() {
	dep, dest := strings.ToUpper(fp.Departure), strings.ToUpper(fp.Destination)
	bothIFR := fp.FlightRules == parse.RulesIFR

	applies := bothIFR && (parisGroup[dep] && parisGroup[dest] ||
		(dep == "LFOB" && (dest == "LFPN" || dest == "LFPV")) ||
		(dest == "LFOB" && (dep == "LFPN" || dep == "LFPV")))

	rmkVal, _ := fp.OtherInfo.Get("RMK")
	rmk, _ := rmkVal.(string)
	tokens := strings.Fields(rmk)

	var kept []string
	for _, t := range tokens {
		if strings.EqualFold(t, "POGO") {
			continue
		}
		kept = append(kept, t)
	}

	switch {
	case applies:
		kept = append(kept, "POGO")
	}

	newRMK := strings.Join(kept, " ")
	if newRMK == "" {
		fp.OtherInfo.Delete("RMK")
		return
	}
	fp.OtherInfo.Set("RMK", newRMK)
}
