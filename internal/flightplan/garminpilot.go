// internal/flightplan/garminpilot.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightplan

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skyplan/fplcore/internal/geo"
)

const garminPilotPrefix = "garminpilot://flightplan?"

// Reasonable stand-ins for a Garmin Pilot share link that omits them --
// the ICAO suffix grammar this core reuses to carry the cruise altitude
// always pairs it with a preceding speed field, so a bare altitude needs
// a speed to ride along with.
const (
	garminDefaultAltitudeFt = 5000
	garminDefaultSpeedKt    = 100
)

// ParseGarminPilot parses a Garmin Pilot share-link flight plan --
// "garminpilot://flightplan?route=WP1+WP2+...&altitude=5000&speed=120&
// etd=<unix>&aircraft=<ident>" -- the app's deep-link export format. It
// rewrites the route into the same item15 token string Parse produces,
// so ParseRoute's DB lookup/airway expansion/time computation pipeline
// runs unchanged regardless of which format the plan arrived in.
func (fp *FlightPlan) ParseGarminPilot(s string) (item15 string) {
	if !strings.HasPrefix(s, garminPilotPrefix) {
		fp.Errors.ErrorString("invalid garminpilot prefix")
		return ""
	}
	q, err := url.ParseQuery(s[len(garminPilotPrefix):])
	if err != nil {
		fp.Errors.ErrorString("invalid garminpilot query: %v", err)
		return ""
	}

	if v := q.Get("aircraft"); v != "" {
		fp.AircraftID = v
	}
	if v := q.Get("etd"); v != "" {
		secs, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			fp.Errors.ErrorString("invalid garminpilot etd %q", v)
		} else {
			fp.DepartureDate = time.Unix(secs, 0).UTC()
		}
	}

	altitudeFt := garminDefaultAltitudeFt
	if v := q.Get("altitude"); v != "" {
		if n, perr := strconv.Atoi(v); perr == nil {
			altitudeFt = n
		} else {
			fp.Errors.ErrorString("invalid garminpilot altitude %q", v)
		}
	}

	speedKt := garminDefaultSpeedKt
	if v := q.Get("speed"); v != "" {
		if spd, perr := strconv.ParseFloat(v, 64); perr == nil {
			speedKt = int(spd + 0.5)
		} else {
			fp.Errors.ErrorString("invalid garminpilot speed %q", v)
		}
	}

	fp.setFlightRules("I")

	var idents []string
	for _, raw := range strings.Split(q.Get("route"), "+") {
		if raw == "" {
			continue
		}
		idents = append(idents, garminWaypointIdent(raw))
	}
	if len(idents) == 0 {
		fp.Errors.ErrorString("garminpilot route has no waypoints")
		return ""
	}
	fp.Departure, fp.Destination = idents[0], idents[len(idents)-1]
	idents[0] += fmt.Sprintf("/N%04dA%03d", speedKt, altitudeFt/100)

	return "IFR " + strings.Join(idents, " ")
}

// garminWaypointIdent recognizes the app's "lat/lon" decimal-coordinate
// waypoint form and rewrites it as an ICAO surface-position ident so the
// rest of the pipeline treats it like any other user fix; anything else
// passes through unchanged.
func garminWaypointIdent(raw string) string {
	idx := strings.IndexByte(raw, '/')
	if idx < 0 {
		return raw
	}
	lat, err1 := strconv.ParseFloat(raw[:idx], 64)
	lon, err2 := strconv.ParseFloat(raw[idx+1:], 64)
	if err1 != nil || err2 != nil {
		return raw
	}
	return geo.NewFromDegrees(lat, lon).ICAOSurfaceString()
}
