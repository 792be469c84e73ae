// internal/geo/point.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geo implements the fixed-point geodesic coordinate type used
// throughout the route resolution pipeline, along with the ICAO
// surface-coordinate and Maidenhead locator text formats.
package geo

import (
	"fmt"
	gomath "math"
	"regexp"
	"strconv"
)

// scale maps the full int32 range onto a full circle (360 degrees), so
// that a Point's Lat/Lon fields carry uniform angular precision all the
// way around the globe without ever needing to renormalize a float
// degrees value against a +/-180 or 0/360 convention.
const scale = 360.0 / 4294967296.0 // 360 / 2^32

// invalidLat is the sentinel Lat value used to mark a Point with no fix.
const invalidLat = gomath.MinInt32

// Point is a fixed-point geodesic coordinate: Lat and Lon are each a
// 32-bit integer scaled from the full int32 range to 360 degrees, so
// arithmetic on coordinates near the antimeridian or poles never needs
// special-case wraparound logic.
type Point struct {
	Lat, Lon int32
}

// Invalid returns the sentinel "no fix" point.
func Invalid() Point { return Point{Lat: invalidLat} }

// IsValid reports whether p carries a resolved fix.
func (p Point) IsValid() bool { return p.Lat != invalidLat }

// NewFromDegrees builds a Point from floating-point latitude/longitude
// in degrees (positive north/east).
func NewFromDegrees(latDeg, lonDeg float64) Point {
	return Point{
		Lat: int32(gomath.Round(latDeg / scale)),
		Lon: int32(gomath.Round(lonDeg / scale)),
	}
}

// Degrees returns p's latitude and longitude in degrees.
func (p Point) Degrees() (latDeg, lonDeg float64) {
	return float64(p.Lat) * scale, float64(p.Lon) * scale
}

func radians(deg float64) float64 { return deg * gomath.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / gomath.Pi }

const earthRadiusNM = 3440.065

// Distance returns the great-circle distance between a and b, in
// nautical miles.
func Distance(a, b Point) float64 {
	lat1, lon1 := radians2(a)
	lat2, lon2 := radians2(b)
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	x := gomath.Sin(dlat/2)*gomath.Sin(dlat/2) +
		gomath.Cos(lat1)*gomath.Cos(lat2)*gomath.Sin(dlon/2)*gomath.Sin(dlon/2)
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	return earthRadiusNM * c
}

func radians2(p Point) (lat, lon float64) {
	latDeg, lonDeg := p.Degrees()
	return radians(latDeg), radians(lonDeg)
}

// InitialCourse returns the initial true course (degrees, 0-360) of the
// great-circle path from a to b.
func InitialCourse(a, b Point) float64 {
	lat1, lon1 := radians2(a)
	lat2, lon2 := radians2(b)
	dlon := lon2 - lon1
	y := gomath.Sin(dlon) * gomath.Cos(lat2)
	x := gomath.Cos(lat1)*gomath.Sin(lat2) - gomath.Sin(lat1)*gomath.Cos(lat2)*gomath.Cos(dlon)
	brg := degrees(gomath.Atan2(y, x))
	return normalizeCourse(brg)
}

func normalizeCourse(deg float64) float64 {
	deg = gomath.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// CourseDistance returns the point reached by travelling distNM nautical
// miles along true course courseDeg, starting from p, following a
// great-circle path.
func CourseDistance(p Point, courseDeg, distNM float64) Point {
	lat1, lon1 := radians2(p)
	brg := radians(courseDeg)
	d := distNM / earthRadiusNM

	lat2 := gomath.Asin(gomath.Sin(lat1)*gomath.Cos(d) + gomath.Cos(lat1)*gomath.Sin(d)*gomath.Cos(brg))
	lon2 := lon1 + gomath.Atan2(gomath.Sin(brg)*gomath.Sin(d)*gomath.Cos(lat1),
		gomath.Cos(d)-gomath.Sin(lat1)*gomath.Sin(lat2))

	return NewFromDegrees(degrees(lat2), normalizeLonDeg(degrees(lon2)))
}

func normalizeLonDeg(deg float64) float64 {
	for deg < -180 {
		deg += 360
	}
	for deg > 180 {
		deg -= 360
	}
	return deg
}

// NearestPointOnGreatCircle returns the point on the great circle through
// a and b that is nearest to p, along with the cross-track distance (nm,
// signed positive to the right of the a->b course) and the along-track
// distance (nm) from a to the projected point.
func NearestPointOnGreatCircle(p, a, b Point) (nearest Point, crossTrackNM, alongTrackNM float64) {
	dist13 := Distance(a, p) / earthRadiusNM
	brg13 := radians(InitialCourse(a, p))
	brg12 := radians(InitialCourse(a, b))

	xt := gomath.Asin(gomath.Sin(dist13) * gomath.Sin(brg13-brg12))
	crossTrackNM = xt * earthRadiusNM

	at := gomath.Acos(gomath.Cos(dist13) / gomath.Cos(xt))
	alongTrackNM = at * earthRadiusNM

	nearest = CourseDistance(a, degrees(brg12), alongTrackNM)
	return
}

var icaoCoordRe = regexp.MustCompile(
	`^(\d{2})(\d{2})(\d{2})?([NS])(\d{3})(\d{2})(\d{2})?([EW])$`)

// ParseICAOSurface parses an ICAO surface-coordinate literal of the form
// DDMM[SS]{N,S}DDDMM[SS]{E,W}, e.g. "4738N00813E".
func ParseICAOSurface(s string) (Point, error) {
	m := icaoCoordRe.FindStringSubmatch(s)
	if m == nil {
		return Point{}, fmt.Errorf("%s: not a valid ICAO surface coordinate", s)
	}
	latD, _ := strconv.Atoi(m[1])
	latM, _ := strconv.Atoi(m[2])
	latS := 0
	if m[3] != "" {
		latS, _ = strconv.Atoi(m[3])
	}
	lonD, _ := strconv.Atoi(m[5])
	lonM, _ := strconv.Atoi(m[6])
	lonS := 0
	if m[7] != "" {
		lonS, _ = strconv.Atoi(m[7])
	}

	lat := float64(latD) + float64(latM)/60 + float64(latS)/3600
	if m[4] == "S" {
		lat = -lat
	}
	lon := float64(lonD) + float64(lonM)/60 + float64(lonS)/3600
	if m[8] == "W" {
		lon = -lon
	}
	return NewFromDegrees(lat, lon), nil
}

// ICAOSurfaceString formats p as an ICAO surface-coordinate literal,
// DDMMSS{N,S}DDDMMSS{E,W}.
func (p Point) ICAOSurfaceString() string {
	latDeg, lonDeg := p.Degrees()

	hemiLat := "N"
	if latDeg < 0 {
		hemiLat = "S"
		latDeg = -latDeg
	}
	hemiLon := "E"
	if lonDeg < 0 {
		hemiLon = "W"
		lonDeg = -lonDeg
	}

	latD, latM, latS := splitDMS(latDeg)
	lonD, lonM, lonS := splitDMS(lonDeg)

	return fmt.Sprintf("%02d%02d%02d%s%03d%02d%02d%s", latD, latM, latS, hemiLat, lonD, lonM, lonS, hemiLon)
}

func splitDMS(deg float64) (d, m, s int) {
	d = int(deg)
	frac := (deg - float64(d)) * 60
	m = int(frac)
	frac = (frac - float64(m)) * 60
	s = int(gomath.Round(frac))
	if s == 60 {
		s = 0
		m++
	}
	if m == 60 {
		m = 0
		d++
	}
	return
}

const maidenheadFieldLetters = "ABCDEFGHIJKLMNOPQR"
const maidenheadSubsquareLetters = "abcdefghijklmnopqrstuvwx"

// Maidenhead returns the 10-character Maidenhead grid locator for p,
// used for pilot-facing surface-position display.
func (p Point) Maidenhead() string {
	latDeg, lonDeg := p.Degrees()
	lat := latDeg + 90
	lon := lonDeg + 180

	var b []byte

	field := func(v float64, div float64, letters string) int {
		return int(v / div)
	}

	lonField := field(lon, 20, maidenheadFieldLetters)
	latField := field(lat, 10, maidenheadFieldLetters)
	b = append(b, maidenheadFieldLetters[lonField], maidenheadFieldLetters[latField])
	lon -= float64(lonField) * 20
	lat -= float64(latField) * 10

	lonSq := int(lon / 2)
	latSq := int(lat / 1)
	b = append(b, byte('0'+lonSq), byte('0'+latSq))
	lon -= float64(lonSq) * 2
	lat -= float64(latSq) * 1

	lonSub := int(lon / (2.0 / 24))
	latSub := int(lat / (1.0 / 24))
	b = append(b, maidenheadSubsquareLetters[lonSub], maidenheadSubsquareLetters[latSub])
	lon -= float64(lonSub) * (2.0 / 24)
	lat -= float64(latSub) * (1.0 / 24)

	lonExt := int(lon / (2.0 / 240))
	latExt := int(lat / (1.0 / 240))
	b = append(b, byte('0'+lonExt), byte('0'+latExt))
	lon -= float64(lonExt) * (2.0 / 240)
	lat -= float64(latExt) * (1.0 / 240)

	lonExtSub := int(lon / (2.0 / 2400))
	latExtSub := int(lat / (1.0 / 2400))
	b = append(b, maidenheadSubsquareLetters[lonExtSub%24], maidenheadSubsquareLetters[latExtSub%24])

	return string(b)
}

// ParseMaidenhead decodes a 10-character Maidenhead grid locator back to
// a Point at the center of the smallest addressed cell.
func ParseMaidenhead(loc string) (Point, error) {
	if len(loc) != 10 {
		return Point{}, fmt.Errorf("%s: Maidenhead locator must be 10 characters", loc)
	}
	upper := func(c byte) byte {
		if c >= 'a' && c <= 'z' {
			return c - 'a' + 'A'
		}
		return c
	}
	idx := func(letters string, c byte) (int, bool) {
		for i := 0; i < len(letters); i++ {
			if letters[i] == c {
				return i, true
			}
		}
		return 0, false
	}

	lonField, ok1 := idx(maidenheadFieldLetters, upper(loc[0]))
	latField, ok2 := idx(maidenheadFieldLetters, upper(loc[1]))
	if !ok1 || !ok2 {
		return Point{}, fmt.Errorf("%s: invalid Maidenhead field", loc)
	}
	lonSq := int(loc[2] - '0')
	latSq := int(loc[3] - '0')
	lonSub, ok3 := idx(maidenheadSubsquareLetters, loc[4]|0x20)
	latSub, ok4 := idx(maidenheadSubsquareLetters, loc[5]|0x20)
	if !ok3 || !ok4 {
		return Point{}, fmt.Errorf("%s: invalid Maidenhead subsquare", loc)
	}
	lonExt := int(loc[6] - '0')
	latExt := int(loc[7] - '0')
	lonExtSub, ok5 := idx(maidenheadSubsquareLetters, loc[8]|0x20)
	latExtSub, ok6 := idx(maidenheadSubsquareLetters, loc[9]|0x20)
	if !ok5 || !ok6 {
		return Point{}, fmt.Errorf("%s: invalid Maidenhead extended subsquare", loc)
	}

	lon := float64(lonField)*20 + float64(lonSq)*2 + float64(lonSub)*(2.0/24) + float64(lonExt)*(2.0/240) +
		float64(lonExtSub)*(2.0/2400) + (2.0 / 4800) - 180
	lat := float64(latField)*10 + float64(latSq)*1 + float64(latSub)*(1.0/24) + float64(latExt)*(1.0/240) +
		float64(latExtSub)*(1.0/2400) + (1.0 / 4800) - 90

	return NewFromDegrees(lat, lon), nil
}
