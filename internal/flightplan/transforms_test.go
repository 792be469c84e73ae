// internal/flightplan/transforms_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightplan

import (
	"testing"

	"github.com/skyplan/fplcore/internal/geo"
	"github.com/skyplan/fplcore/internal/parse"
)

func TestNormalizePogoAddsAndRemoves(t *testing.T) {
	fp := New(DefaultOptions())
	fp.FlightRules = parse.RulesIFR
	fp.Departure = "LFPG"
	fp.Destination = "LFPO"
	fp.NormalizePogo()

	v, ok := fp.OtherInfo.Get("RMK")
	if !ok || v.(string) != "POGO" {
		t.Fatalf("expected RMK=POGO, got %v", v)
	}

	fp.NormalizePogo()
	v2, _ := fp.OtherInfo.Get("RMK")
	if v2.(string) != "POGO" {
		t.Errorf("second invocation mutated RMK: got %v", v2)
	}

	fp.Destination = "LSZH"
	fp.NormalizePogo()
	v3, _ := fp.OtherInfo.Get("RMK")
	if v3 != nil && v3.(string) != "" {
		if v3.(string) == "POGO" {
			t.Errorf("expected POGO removed once destination is not in the Paris group, got %v", v3)
		}
	}
}

func TestFixMaxDCTDistanceSubdivides(t *testing.T) {
	fp := New(DefaultOptions())
	fp.FlightRules = parse.RulesIFR

	a := geo.NewFromDegrees(47.0, 8.5)  // LSZH area
	b := geo.NewFromDegrees(47.6, 7.5)  // LFSB area
	w1 := &parse.Waypoint{Ident: "LSZH", Coord: a, HasCoord: true, PathCodeOut: parse.PathDirectTo, Rules: parse.RulesIFR, EETSeconds: -1}
	w2 := &parse.Waypoint{Ident: "LFSB", Coord: b, HasCoord: true, Rules: parse.RulesIFR, EETSeconds: -1}
	fp.Route = []*parse.Waypoint{w1, w2}

	fp.FixMaxDCTDistance(20)

	if len(fp.Route) < 3 {
		t.Fatalf("expected interior waypoints to be inserted, got %d waypoints", len(fp.Route))
	}
	for i := 0; i < len(fp.Route)-1; i++ {
		d := geo.Distance(fp.Route[i].Coord, fp.Route[i+1].Coord)
		if d > 20.01 {
			t.Errorf("leg %d-%d distance %.2f exceeds limit", i, i+1, d)
		}
	}
}

func TestEnforcePathcodeVFRIFR(t *testing.T) {
	fp := New(DefaultOptions())
	w := &parse.Waypoint{Rules: parse.RulesVFR, PathCodeOut: parse.PathAirway, PathName: "UM984"}
	fp.Route = []*parse.Waypoint{w}
	fp.EnforcePathcodeVFRIFR()
	if w.PathCodeOut != parse.PathNone || w.PathName != "" {
		t.Errorf("expected illegal VFR airway path code to be reset, got %v %q", w.PathCodeOut, w.PathName)
	}
}

func TestAddEETSortsAndDedupes(t *testing.T) {
	fp := New(DefaultOptions())
	fp.Route = []*parse.Waypoint{
		{Ident: "ALPHA", EETSeconds: 600},
		{Ident: "BRAVO", EETSeconds: 300},
		{Ident: "ALPHA", EETSeconds: 900},
	}
	fp.AddEET()
	v, _ := fp.OtherInfo.Get("EET")
	got := v.(string)
	want := "BRAVO0005 ALPHA0015"
	if got != want {
		t.Errorf("AddEET: got %q, want %q", got, want)
	}
}
