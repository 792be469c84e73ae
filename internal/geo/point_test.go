// internal/geo/point_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestICAOSurfaceRoundTrip(t *testing.T) {
	cases := []string{"4738N00813E", "0000N00000E", "4900S17000W", "474600N0082200E"}
	for _, s := range cases {
		p, err := ParseICAOSurface(s)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", s, err)
		}
		got := p.ICAOSurfaceString()
		p2, err := ParseICAOSurface(got)
		if err != nil {
			t.Fatalf("%s: re-parse of %s failed: %v", s, got, err)
		}
		if p2.Lat != p.Lat || p2.Lon != p.Lon {
			t.Errorf("%s: round trip via %s did not preserve fix", s, got)
		}
	}
}

func TestParseICAOSurfaceInvalid(t *testing.T) {
	for _, s := range []string{"", "XYZ", "4738X00813E", "473800N00813000X"} {
		if _, err := ParseICAOSurface(s); err == nil {
			t.Errorf("%s: expected error, got none", s)
		}
	}
}

func TestDistanceAndCourse(t *testing.T) {
	// JFK -> LAX, well-known approximate great-circle distance/course.
	jfk := NewFromDegrees(40.6413, -73.7781)
	lax := NewFromDegrees(33.9416, -118.4085)

	d := Distance(jfk, lax)
	if !approxEqual(d, 2145, 15) {
		t.Errorf("JFK-LAX distance: got %.1f nm, expected ~2145", d)
	}

	c := InitialCourse(jfk, lax)
	if !approxEqual(c, 274, 2) {
		t.Errorf("JFK-LAX initial course: got %.1f, expected ~274", c)
	}
}

func TestCourseDistanceInverse(t *testing.T) {
	start := NewFromDegrees(47.0, 8.0)
	for _, crs := range []float64{0, 45, 91, 180, 270, 359} {
		dest := CourseDistance(start, crs, 10)
		d := Distance(start, dest)
		if !approxEqual(d, 10, 0.01) {
			t.Errorf("course %.0f: distance got %.4f, expected 10", crs, d)
		}
		back := InitialCourse(start, dest)
		if !approxEqual(back, crs, 0.5) {
			t.Errorf("course %.0f: recovered course got %.2f", crs, back)
		}
	}
}

// S4: N47 E008, magnetic course 090+1=091 true, 10 nmi should land near
// N47 00'00" E008 14'39".
func TestCourseDistanceFixScenario(t *testing.T) {
	start := NewFromDegrees(47, 8)
	dest := CourseDistance(start, 91, 10)
	latDeg, lonDeg := dest.Degrees()
	if !approxEqual(latDeg, 47.0, 0.01) {
		t.Errorf("latitude: got %.4f, expected ~47.0", latDeg)
	}
	if !approxEqual(lonDeg, 8+14.65/60, 0.02) {
		t.Errorf("longitude: got %.4f, expected ~%.4f", lonDeg, 8+14.65/60)
	}
}

func TestNearestPointOnGreatCircle(t *testing.T) {
	a := NewFromDegrees(0, 0)
	b := NewFromDegrees(0, 10)
	p := NewFromDegrees(1, 5)

	nearest, xtrack, _ := NearestPointOnGreatCircle(p, a, b)
	latDeg, _ := nearest.Degrees()
	if !approxEqual(latDeg, 0, 0.05) {
		t.Errorf("nearest point latitude: got %.4f, expected ~0", latDeg)
	}
	if xtrack >= 0 {
		t.Errorf("expected negative (left-of-course) cross track, got %.3f", xtrack)
	}
}

func TestMaidenheadRoundTrip(t *testing.T) {
	pts := []Point{
		NewFromDegrees(40.6413, -73.7781),
		NewFromDegrees(-33.8688, 151.2093),
		NewFromDegrees(0, 0),
	}
	for _, p := range pts {
		loc := p.Maidenhead()
		if len(loc) != 10 {
			t.Fatalf("expected 10-character locator, got %q (%d)", loc, len(loc))
		}
		back, err := ParseMaidenhead(loc)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", loc, err)
		}
		latDeg, lonDeg := p.Degrees()
		blat, blon := back.Degrees()
		if !approxEqual(latDeg, blat, 0.01) || !approxEqual(lonDeg, blon, 0.01) {
			t.Errorf("%s: round trip gave (%.4f,%.4f), expected near (%.4f,%.4f)", loc, blat, blon, latDeg, lonDeg)
		}
	}
}
