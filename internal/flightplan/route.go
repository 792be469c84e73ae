// internal/flightplan/route.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightplan

import (
	"context"
	"strings"
	"time"

	"github.com/skyplan/fplcore/internal/navdb"
	"github.com/skyplan/fplcore/internal/parse"
	"github.com/skyplan/fplcore/internal/routegraph"
)

// ParseRoute runs the four-phase pipeline over item15 -- the raw route
// string lifted out by Parse -- against db, populating fp.Route. depTime
// keys every time-sliced database lookup, unless Item 18's DOF overrode
// the date component (see FlightPlan.DepartureDate), in which case the
// overridden date is used instead, with depTime's time-of-day retained.
func (fp *FlightPlan) ParseRoute(ctx context.Context, item15 string, db *navdb.FindCoord, depTime time.Time) {
	depTime = fp.effectiveDepartureTime(depTime)
	graph := routegraph.New()
	st := parse.NewState(db, graph, depTime, fp.Errors)

	tokens := tokenizeItem15(item15)
	st.ProcessSpeedAlt(tokens, fp.FlightRules)

	if len(st.Waypoints) == 0 {
		fp.Errors.ErrorString("route has no waypoints")
		return
	}

	st.ProcessDBLookup(ctx)
	graph.Finalize()
	st.ProcessAirwayExpansion(parse.ExpandOptions{Expand: true})
	st.ProcessTimeComputation(fp.otherInfoText("EET"))

	fp.Route = st.Waypoints
	for k, v := range st.CruiseSpeeds {
		fp.CruiseSpeeds[k] = v
	}
}

// effectiveDepartureTime combines a DOF date override, if any, with
// fallback's time-of-day.
func (fp *FlightPlan) effectiveDepartureTime(fallback time.Time) time.Time {
	if fp.DepartureDate.IsZero() {
		return fallback
	}
	y, m, d := fp.DepartureDate.Date()
	hh, mm, ss := fallback.Clock()
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

func tokenizeItem15(s string) []string {
	return strings.Fields(s)
}

func (fp *FlightPlan) otherInfoText(cat string) string {
	if v, ok := fp.OtherInfo.Get(cat); ok {
		if s, ok2 := v.(string); ok2 {
			return s
		}
	}
	return ""
}
