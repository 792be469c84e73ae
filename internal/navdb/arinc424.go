// internal/navdb/arinc424.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skyplan/fplcore/internal/geo"
	"github.com/skyplan/fplcore/internal/logging"
)

// arinc424LineLength is the fixed record length of an ARINC 424 "CIFP"
// line: 132 data columns plus \r\n.
const arinc424LineLength = 134

// arinc424NS namespaces the deterministic UUIDs minted for objects that
// the ARINC 424 record format itself doesn't carry a persistent
// identifier for (the JSON snapshot format in db.go stores a UUID per
// object directly; ARINC 424 only gives us idents).
var arinc424NS = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fplcore.arinc424"))

func arinc424UUID(kind, ident string) uuid.UUID {
	return uuid.NewSHA1(arinc424NS, []byte(kind+"/"+ident))
}

// LoadARINC424 ingests a CIFP-style ARINC 424 navigation data file
// (airports, navaids, enroute/terminal waypoints, and enroute airways)
// directly into a Database, as a supplement to the zstd/JSON snapshot
// format Load reads. Every object it creates carries a single time slice
// that starts at refTime and has no end; each call builds a new Database.
//
// Procedures (SID/STAR/approach) are not parsed: the ARINC 424 SSA
// record format encodes full lateral/vertical procedure geometry (arcs,
// procedure turns, altitude-restriction codes) that this core's
// ProcedureLegData never models — it only needs a leg's owning
// procedure, fix, altitude band, distance, and bearing. Extracting SIDs
// and STARs from ARINC 424 would require building that geometry model
// first; it is not attempted here.
func LoadARINC424(r io.Reader, refTime time.Time, lg *logging.Logger) (d *Database, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("arinc424: malformed record: %v", rec)
		}
	}()

	d = New(lg)

	type airwayFix struct {
		ident string
		kind  AirwayKind
	}

	br := bufio.NewReader(r)
	airwayWIP := make(map[string]airwayFix) // sequence number -> fix

	var unread []byte
	getline := func() []byte {
		if unread != nil {
			l := unread
			unread = nil
			return l
		}
		b, rerr := br.ReadBytes('\n')
		if rerr == io.EOF && len(b) == 0 {
			return nil
		}
		if len(b) != arinc424LineLength {
			// Tolerate a final line missing its trailing CRLF.
			if len(b) < 132 {
				return nil
			}
		}
		return b
	}

	parseInt := func(s []byte) int {
		t := strings.TrimSpace(string(s))
		if t == "" {
			return 0
		}
		v, perr := strconv.Atoi(t)
		if perr != nil {
			panic(perr)
		}
		return v
	}

	parseLLDigits := func(d, m, s []byte) float64 {
		deg := parseInt(d)
		min := parseInt(m)
		sec := parseInt(s)
		return float64(deg) + float64(min)/60 + float64(sec)/100/3600
	}
	parseLatLong := func(lat, long []byte) geo.Point {
		latDeg := parseLLDigits(lat[1:3], lat[3:5], lat[5:])
		lonDeg := parseLLDigits(long[1:4], long[4:6], long[6:])
		if lat[0] == 'S' {
			latDeg = -latDeg
		}
		if long[0] == 'W' {
			lonDeg = -lonDeg
		}
		return geo.NewFromDegrees(latDeg, lonDeg)
	}

	addDesignatedPoint := func(ident string, loc geo.Point) {
		ident = strings.TrimSpace(ident)
		if ident == "" {
			return
		}
		id := arinc424UUID("point", ident)
		if _, ok := d.byUUID[id]; ok {
			return
		}
		o := &Object{ID: id, Kind: KindDesignatedPoint}
		o.Points = append(o.Points, TimeSlice[DesignatedPointData]{
			Start: refTime,
			Data:  DesignatedPointData{Ident: ident, Location: loc},
		})
		d.AddObject(o)
	}

	addNavaid := func(ident string, typ NavaidType, loc geo.Point, name string) {
		ident = strings.TrimSpace(ident)
		if ident == "" {
			return
		}
		id := arinc424UUID("navaid", ident)
		if _, ok := d.byUUID[id]; ok {
			return
		}
		o := &Object{ID: id, Kind: KindNavaid}
		o.Navaids = append(o.Navaids, TimeSlice[NavaidData]{
			Start: refTime,
			Data:  NavaidData{Ident: ident, Type: typ, Location: loc, Name: strings.TrimSpace(name)},
		})
		d.AddObject(o)
	}

	addAirport := func(icao string, loc geo.Point, elevFt int) {
		icao = strings.TrimSpace(icao)
		if icao == "" {
			return
		}
		id := arinc424UUID("airport", icao)
		if _, ok := d.byUUID[id]; ok {
			return
		}
		o := &Object{ID: id, Kind: KindAirport}
		o.Airports = append(o.Airports, TimeSlice[AirportData]{
			Start: refTime,
			Data:  AirportData{ICAO: icao, Location: loc, Elevation: elevFt},
		})
		d.AddObject(o)
	}

	// identLocation resolves a fix/navaid/airport ident to a coordinate
	// using whatever has already been loaded into d. ARINC 424 CIFP
	// files are sorted so that navaid and waypoint sections (D, E A, H C,
	// P C) precede the enroute airway section (E R) that references
	// them by ident alone.
	identLocation := func(ident string) (geo.Point, bool) {
		for _, o := range d.ByIdent(ident) {
			loc := o.Location(refTime)
			if loc.IsValid() {
				return loc, true
			}
		}
		return geo.Invalid(), false
	}

	flushAirway := func(route string) {
		if len(airwayWIP) == 0 {
			return
		}
		seqs := sortedMapKeys(airwayWIP)

		routeID := arinc424UUID("route", route)
		if _, ok := d.byUUID[routeID]; !ok {
			o := &Object{ID: routeID, Kind: KindRoute}
			o.Routes = append(o.Routes, TimeSlice[RouteData]{Start: refTime, Data: RouteData{Ident: route}})
			d.AddObject(o)
		}

		identObjectID := func(ident string) (uuid.UUID, bool) {
			objs := d.ByIdent(ident)
			if len(objs) == 0 {
				return uuid.Nil, false
			}
			return objs[0].ID, true
		}

		for i := 0; i+1 < len(seqs); i++ {
			from := airwayWIP[seqs[i]]
			to := airwayWIP[seqs[i+1]]
			fromLoc, fromOK := identLocation(from.ident)
			toLoc, toOK := identLocation(to.ident)
			fromID, fromIDOK := identObjectID(from.ident)
			toID, toIDOK := identObjectID(to.ident)
			if !fromOK || !toOK || !fromIDOK || !toIDOK {
				if lg != nil {
					lg.Warn("arinc424: airway segment with unresolved endpoint",
						"route", route, "from", from.ident, "to", to.ident)
				}
				continue
			}

			segID := arinc424UUID("segment", fmt.Sprintf("%s/%s/%s/%s", route, from.ident, to.ident, seqs[i]))
			seg := &Object{ID: segID, Kind: KindRouteSegment}
			seg.Segments = append(seg.Segments, TimeSlice[RouteSegmentData]{
				Start: refTime,
				Data: RouteSegmentData{
					RouteUUID:  routeID,
					Ident:      route,
					From:       fromID,
					To:         toID,
					DistanceNM: geo.Distance(fromLoc, toLoc),
					BearingDeg: geo.InitialCourse(fromLoc, toLoc),
					Kind:       to.kind,
				},
			})
			d.AddObject(seg)
		}

		clear(airwayWIP)
	}

	for {
		line := getline()
		if line == nil {
			break
		}
		if line[0] != 'S' {
			continue
		}

		sectionCode := line[4]
		switch sectionCode {
		case 'D': // navaids
			subsectionCode := line[6]
			if subsectionCode != ' ' && subsectionCode != 'B' {
				continue
			}
			id := strings.TrimSpace(string(line[13:17]))
			if len(id) < 2 {
				continue
			}
			name := string(line[93:123])
			typ := NavaidVOR
			if subsectionCode == 'B' {
				typ = NavaidNDB
			}
			loc := parseLatLong(line[32:41], line[41:51])
			addNavaid(id, typ, loc, name)

		case 'E': // enroute
			subsection := line[5]
			switch subsection {
			case 'A': // enroute waypoint
				id := string(line[13:18])
				addDesignatedPoint(id, parseLatLong(line[32:41], line[41:51]))

			case 'R': // enroute airway
				route := strings.TrimSpace(string(line[13:18]))
				seq := string(line[25:29])
				fix := strings.TrimSpace(string(line[29:34]))

				kind := AirwayBoth
				switch line[45] {
				case 'H':
					kind = AirwayHigh
				case 'L':
					kind = AirwayLow
				}
				airwayWIP[seq] = airwayFix{ident: fix, kind: kind}

				if line[40] == 'E' { // "end of airway" description code
					flushAirway(route)
				}
			}

		case 'H': // heliport waypoints
			if line[12] == 'C' {
				addDesignatedPoint(string(line[13:18]), parseLatLong(line[32:41], line[41:51]))
			}

		case 'P': // airports
			icao := strings.TrimSpace(string(line[6:10]))
			switch line[12] {
			case 'A': // primary airport record
				loc := parseLatLong(line[32:41], line[41:51])
				elev := parseInt(line[56:61])
				addAirport(icao, loc, elev)

			case 'C': // airport-terminal waypoint
				addDesignatedPoint(string(line[13:18]), parseLatLong(line[32:41], line[41:51]))
			}
		}
	}

	if lg != nil {
		lg.Debug("ARINC 424 nav data loaded", "objects", len(d.byUUID), "bytes", deepSizeOf(d))
	}

	return d, nil
}
