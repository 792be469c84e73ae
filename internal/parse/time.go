// internal/parse/time.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package parse

import (
	"strconv"
	"strings"

	"github.com/skyplan/fplcore/internal/geo"
)

// ProcessTimeComputation assigns an estimated elapsed time to each
// waypoint: an explicit override from the EET/ other-info string where
// the ident matches, else distance/nearest-cruise-speed accumulated from
// the previous valid waypoint.
func (s *State) ProcessTimeComputation(eetOtherInfo string) {
	overrides := parseEETOtherInfo(eetOtherInfo)

	var prevValid *Waypoint
	accumSeconds := 0
	for _, w := range s.Waypoints {
		if secs, ok := overrides[strings.ToUpper(w.Ident)]; ok {
			w.EETSeconds = secs
			if len(w.Candidates) > 0 {
				prevValid = w
			}
			continue
		}
		if len(w.Candidates) == 0 {
			continue
		}
		if prevValid == nil {
			w.EETSeconds = 0
			prevValid = w
			continue
		}
		prevLoc := s.Graph.Vertex(prevValid.Candidates[0].Vertex).Location
		curLoc := s.Graph.Vertex(w.Candidates[0].Vertex).Location
		dist := geo.Distance(prevLoc, curLoc)

		speed, ok := s.nearestCruiseSpeed(w.AltFt)
		if !ok || speed <= 0 {
			speed = w.SpeedKts
		}
		if speed <= 0 {
			prevValid = w
			continue
		}
		legSeconds := int(dist / speed * 3600)
		accumSeconds += legSeconds
		w.EETSeconds = accumSeconds
		prevValid = w
	}
}

// parseEETOtherInfo parses "IDENT1HHMM IDENT2HHMM ..." -- each token an
// ident glued to its trailing 4-digit HHMM, per section 6's EET/ wire
// format -- into a map of ident -> seconds since departure.
func parseEETOtherInfo(s string) map[string]int {
	out := make(map[string]int)
	for _, tok := range strings.Fields(s) {
		if len(tok) < 5 {
			continue
		}
		ident := strings.ToUpper(tok[:len(tok)-4])
		hhmm := tok[len(tok)-4:]
		hh, err1 := strconv.Atoi(hhmm[0:2])
		mm, err2 := strconv.Atoi(hhmm[2:4])
		if err1 != nil || err2 != nil {
			continue
		}
		out[ident] = hh*3600 + mm*60
	}
	return out
}

// FormatEET renders seconds since departure as HHMM.
func FormatEET(seconds int) string {
	hh := seconds / 3600
	mm := (seconds % 3600) / 60
	return pad2(hh) + pad2(mm)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
