// internal/flightplan/flightplan.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package flightplan is the public facade: the FlightPlan object holding
// every ICAO item, the route (a sequence of resolved waypoints), and the
// route-shape transforms (erase_unnecessary_airway, fix_max_dct_distance,
// enforce_pathcode_vfrifr, normalize_pogo, add_eet).
package flightplan

import (
	"time"

	"github.com/iancoleman/orderedmap"

	"github.com/skyplan/fplcore/internal/errlog"
	"github.com/skyplan/fplcore/internal/navdb"
	"github.com/skyplan/fplcore/internal/parse"
)

// DefaultAltitudePolicy computes the fallback cruise altitude when none is
// given explicitly, resolving the Design Notes' "expose m_defaultalt as a
// policy" open question.
type DefaultAltitudePolicy func(depElevFt, destElevFt int) int

// HistoricalDefaultAltitude reproduces the original max(dep,dest),
// round-up-to-1000 (+1000 if >= 5000) behavior, kept as the default policy
// so existing plans resolve identically.
func HistoricalDefaultAltitude(depElevFt, destElevFt int) int {
	alt := depElevFt
	if destElevFt > alt {
		alt = destElevFt
	}
	alt = ((alt / 1000) + 1) * 1000
	if alt >= 5000 {
		alt += 1000
	}
	return alt
}

// Options are the policy knobs the spec's Design Notes flag as
// configurable rather than hard-coded.
type Options struct {
	DefaultAltitudePolicy DefaultAltitudePolicy
	TurnpointDeviationNM  float64
	MaxConsecutiveStay    int
}

// DefaultOptions returns the historically-compatible policy set.
func DefaultOptions() Options {
	return Options{
		DefaultAltitudePolicy: HistoricalDefaultAltitude,
		TurnpointDeviationNM:  0.5,
		MaxConsecutiveStay:    0, // not read; the parser only checks that STAY indices are consecutive
	}
}

// FlightPlan is the public facade over a parsed/resolved ICAO flight plan.
type FlightPlan struct {
	AircraftID   string
	Number       int
	FlightRules  parse.RulesFlag
	FlightType   byte // G, S, N, M, X
	AircraftType string
	WakeCategory byte // L, M, H, J

	Equipment   string
	Transponder string
	PBN         string

	Departure     string
	DepartureEOBT int // seconds since midnight
	Destination   string
	DestEET       int // seconds
	Alternates    []string

	// DepartureDate is the date-of-flight override from Item 18's DOF
	// (YYMMDD), zero if the plan never specified one. When set, it
	// replaces the date component of the departure time ParseRoute uses
	// to key every time-sliced database lookup and the WMM epoch,
	// keeping the time-of-day the caller-supplied departure time carried.
	DepartureDate time.Time

	SID  string
	STAR string

	Route []*parse.Waypoint

	OtherInfo *orderedmap.OrderedMap

	Endurance        int // seconds
	PersonsOnBoard   int
	PersonsTBN       bool
	EmergencyRadio   string
	SurvivalEquip    string
	Lifejackets      string
	Dinghies         string
	ColourMarkings   string
	Remarks          string
	PIC              string

	CruiseSpeeds map[int]float64

	Errors *errlog.ErrorLogger

	opts Options
}

// New returns an empty flight plan ready for Parse or Populate.
func New(opts Options) *FlightPlan {
	return &FlightPlan{
		OtherInfo:    orderedmap.New(),
		CruiseSpeeds: make(map[int]float64),
		Errors:       &errlog.ErrorLogger{},
		opts:         opts,
	}
}

// Populate fills the plan's route from a resolved parse.State, applying
// the default-altitude policy when no explicit cruise altitude exists.
func (fp *FlightPlan) Populate(st *parse.State, db *navdb.FindCoord, t time.Time) {
	fp.Route = st.Waypoints
	for k, v := range st.CruiseSpeeds {
		fp.CruiseSpeeds[k] = v
	}

	if fp.cruiseAltitude() == 0 {
		depElev, destElev := 0, 0
		if len(fp.Route) > 0 {
			depElev = elevationOf(fp.Route[0])
		}
		if len(fp.Route) > 0 {
			destElev = elevationOf(fp.Route[len(fp.Route)-1])
		}
		alt := fp.opts.DefaultAltitudePolicy(depElev, destElev)
		if len(fp.Route) > 0 {
			fp.Route[0].AltFt = alt
		}
	}

	fp.NormalizePogo()
}

func elevationOf(w *parse.Waypoint) int {
	return w.ElevationFt
}

func (fp *FlightPlan) cruiseAltitude() int {
	if len(fp.Route) == 0 {
		return 0
	}
	return fp.Route[0].AltFt
}

// SetRoute replaces the plan's route wholesale, e.g. after an editor
// action outside the parse pipeline.
func (fp *FlightPlan) SetRoute(route []*parse.Waypoint) {
	fp.Route = route
}
