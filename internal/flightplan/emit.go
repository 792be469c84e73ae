// internal/flightplan/emit.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightplan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skyplan/fplcore/internal/parse"
)

// GetItem15 walks the route and emits the canonical Item-15 string: an
// initial speed+level, then each printable waypoint with its speed/rules
// changes and outgoing path continuation.
func (fp *FlightPlan) GetItem15() string {
	if len(fp.Route) == 0 {
		return ""
	}

	var b strings.Builder

	first := fp.Route[0]
	b.WriteString(fp.formatSpeedLevel(first))

	rules := first.Rules
	altFt := first.AltFt

	for i := 1; i < len(fp.Route); i++ {
		w := fp.Route[i]
		if !fp.printable(i) {
			continue
		}

		b.WriteByte(' ')
		b.WriteString(fp.identFor(w))

		changed := w.Rules != rules || w.AltFt != altFt
		if changed {
			b.WriteByte('/')
			b.WriteString(fp.formatSpeedLevel(w))
			if w.Rules != rules {
				if w.Rules == parse.RulesVFR {
					b.WriteString(" VFR")
				} else {
					b.WriteString(" IFR")
				}
			}
			rules, altFt = w.Rules, w.AltFt
		}

		if path := fp.outgoingPathToken(w); path != "" {
			b.WriteByte(' ')
			b.WriteString(path)
		}
	}

	if len(fp.Route) == 2 && rules == parse.RulesIFR && fp.Route[1].Rules == parse.RulesIFR {
		b.WriteString(" DCT")
	}

	return b.String()
}

func (fp *FlightPlan) formatSpeedLevel(w *parse.Waypoint) string {
	speed := w.SpeedKts
	if speed <= 0 {
		if s, ok := fp.CruiseSpeeds[w.AltFt]; ok {
			speed = s
		}
	}
	speedStr := fmt.Sprintf("N%04d", int(speed))

	switch w.AltFlag {
	case parse.AltitudeVFR:
		return speedStr + "VFR"
	case parse.AltitudeStandard:
		return speedStr + fmt.Sprintf("A%03d", w.AltFt/100)
	default:
		return speedStr + fmt.Sprintf("F%03d", w.AltFt/100)
	}
}

// printable implements the interior-waypoint suppression rule: an
// expanded airway-interior waypoint whose ident is numeric or shorter
// than 2 characters is skipped if its neighbors share the same airway
// and flight rules.
func (fp *FlightPlan) printable(i int) bool {
	w := fp.Route[i]
	if !w.Expanded {
		return true
	}
	if len(w.Ident) >= 2 && !isNumeric(w.Ident) {
		return true
	}
	if i == 0 || i == len(fp.Route)-1 {
		return true
	}
	prev, next := fp.Route[i-1], fp.Route[i+1]
	if prev.PathName == w.PathName && next.PathName == w.PathName && prev.Rules == next.Rules {
		return false
	}
	return true
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func (fp *FlightPlan) identFor(w *parse.Waypoint) string {
	if w.Ident != "" {
		return w.Ident
	}
	if w.HasCoord {
		return w.Coord.ICAOSurfaceString()
	}
	return "UNKN"
}

func (fp *FlightPlan) outgoingPathToken(w *parse.Waypoint) string {
	switch w.PathCodeOut {
	case parse.PathAirway:
		return w.PathName
	case parse.PathDirectTo:
		return "DCT"
	case parse.PathSID:
		return fp.SID
	case parse.PathSTAR:
		return fp.STAR
	case parse.PathStay:
		return w.PathName
	default:
		return ""
	}
}

// GetFPL renders the full ICAO flight-plan string, embedding GetItem15 for
// item 15.
func (fp *FlightPlan) GetFPL() string {
	var b strings.Builder
	b.WriteString("(FPL-")
	b.WriteString(fp.AircraftID)
	b.WriteByte('-')
	b.WriteString(rulesLetter(fp.FlightRules))
	if fp.FlightType != 0 {
		b.WriteByte(fp.FlightType)
	}
	b.WriteByte('-')
	if fp.Number > 1 {
		b.WriteString(strconv.Itoa(fp.Number))
	}
	b.WriteString(fp.AircraftType)
	b.WriteByte('/')
	b.WriteByte(fp.WakeCategory)
	b.WriteByte('-')
	b.WriteString(fp.Equipment)
	b.WriteByte('/')
	b.WriteString(fp.Transponder)
	b.WriteByte('-')
	b.WriteString(fp.Departure)
	b.WriteString(formatEOBT(fp.DepartureEOBT))
	b.WriteByte('-')
	b.WriteString(fp.GetItem15())
	b.WriteByte('-')
	b.WriteString(fp.Destination)
	b.WriteString(formatEOBT(fp.DestEET))
	for _, alt := range fp.Alternates {
		b.WriteByte(' ')
		b.WriteString(alt)
	}
	b.WriteByte('-')
	b.WriteString(fp.getItem18())
	b.WriteByte(')')
	return b.String()
}

func rulesLetter(r parse.RulesFlag) string {
	if r == parse.RulesVFR {
		return "V"
	}
	return "I"
}

func formatEOBT(secs int) string {
	return fmt.Sprintf("%02d%02d", secs/3600, (secs%3600)/60)
}

// getItem18 orders otherinfo entries in insertion order, adds PBN/ if not
// already present, and injects RMK/IFPSRA when any IFR segment exists.
func (fp *FlightPlan) getItem18() string {
	if fp.PBN != "" {
		if _, ok := fp.OtherInfo.Get("PBN"); !ok {
			fp.OtherInfo.Set("PBN", fp.PBN)
		}
	}

	if fp.hasIFRSegment() {
		rmk, _ := fp.OtherInfo.Get("RMK")
		rmkStr, _ := rmk.(string)
		if !strings.Contains(rmkStr, "IFPSRA") {
			if rmkStr == "" {
				fp.OtherInfo.Set("RMK", "IFPSRA")
			} else {
				fp.OtherInfo.Set("RMK", rmkStr+" IFPSRA")
			}
		}
	}

	var parts []string
	for _, cat := range fp.OtherInfo.Keys() {
		v, _ := fp.OtherInfo.Get(cat)
		s, _ := v.(string)
		parts = append(parts, cat+"/"+s)
	}
	return strings.Join(parts, " ")
}

func (fp *FlightPlan) hasIFRSegment() bool {
	if fp.FlightRules == parse.RulesIFR {
		return true
	}
	for _, w := range fp.Route {
		if w.Rules == parse.RulesIFR {
			return true
		}
	}
	return false
}
