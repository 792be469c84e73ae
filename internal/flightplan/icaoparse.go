// internal/flightplan/icaoparse.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightplan

import (
	"strconv"
	"strings"
	"time"

	"github.com/skyplan/fplcore/internal/parse"
)

// Parse tokenizes a full ICAO flight-plan string --
// "(FPL-aircraftid-flightrules flighttype-[number]type/wake-
// equipment/transponder-departure eobt-item15-destination eet [alt1
// [alt2]] [-other-info] [-item19])" -- into fp's items, leaving the raw
// item-15 route string for ParseRoute. Errors are non-fatal: they
// accumulate into fp.Errors and parsing continues on a best-effort basis.
func (fp *FlightPlan) Parse(s string) (item15 string) {
	r := parse.NewReader(s)

	if !r.Consume('(') {
		fp.Errors.ErrorString("expected '(' at start of flight plan")
	}
	tok, err := r.ParseTxt(3, false)
	if err != nil || tok != "FPL" {
		fp.Errors.ErrorString("expected 'FPL' header")
	}
	if !r.Consume('-') {
		fp.Errors.ErrorString("expected '-' after FPL header")
	}

	fp.AircraftID, err = r.ParseTxt(0, false)
	if err != nil {
		fp.Errors.Error(err)
	}
	if !r.Consume('-') {
		fp.Errors.ErrorString("expected '-' after aircraft id")
	}

	rules, err := r.ParseTxt(1, false)
	if err != nil {
		fp.Errors.Error(err)
	} else {
		fp.setFlightRules(rules)
	}
	ftype, err := r.ParseTxt(1, false)
	if err == nil {
		fp.FlightType = ftype[0]
	}
	if !r.Consume('-') {
		fp.Errors.ErrorString("expected '-' after flight rules/type")
	}

	numAndType, err := r.ParseTxt(0, true)
	if err != nil {
		fp.Errors.Error(err)
	} else if n, convErr := strconv.Atoi(numAndType); convErr == nil {
		fp.Number = n
	} else {
		fp.AircraftType = numAndType
	}
	if r.Consume('/') {
		typeOrWake, _ := r.ParseTxt(0, false)
		if fp.AircraftType == "" {
			fp.AircraftType = typeOrWake
		} else if len(typeOrWake) == 1 {
			fp.WakeCategory = typeOrWake[0]
		}
	}
	if !r.Consume('-') {
		fp.Errors.ErrorString("expected '-' after type/wake")
	}

	fp.Equipment, err = r.ParseTxt(0, true)
	if err != nil {
		fp.Errors.Error(err)
	}
	if r.Consume('/') {
		fp.Transponder, _ = r.ParseTxt(0, false)
	}
	if !r.Consume('-') {
		fp.Errors.ErrorString("expected '-' after equipment/transponder")
	}

	fp.Departure, err = r.ParseTxt(4, false)
	if err != nil {
		fp.Errors.Error(err)
	}
	eobt, err := r.ParseTxt(4, false)
	if err != nil {
		fp.Errors.Error(err)
	} else if secs, perr := parse.ParseTime(eobt); perr == nil {
		fp.DepartureEOBT = secs
	} else {
		fp.Errors.Error(perr)
	}
	if !r.Consume('-') {
		fp.Errors.ErrorString("expected '-' after departure/EOBT")
	}

	item15 = r.RestUntilItemBoundary()

	if !r.Consume('-') {
		fp.Errors.ErrorString("expected '-' before destination")
	}
	fp.Destination, err = r.ParseTxt(4, false)
	if err != nil {
		fp.Errors.Error(err)
	}
	eet, err := r.ParseTxt(4, false)
	if err != nil {
		fp.Errors.Error(err)
	} else if secs, perr := parse.ParseTime(eet); perr == nil {
		fp.DestEET = secs
	}

	for {
		if alt, aerr := r.ParseTxt(4, false); aerr == nil {
			fp.Alternates = append(fp.Alternates, alt)
		} else {
			break
		}
	}

	if r.Consume('-') {
		otherInfo := r.RestUntilItemBoundary()
		fp.parseOtherInfo(otherInfo)
	}

	if r.Consume('-') {
		item19 := r.RestUntilItemBoundary()
		fp.parseItem19(item19)
	}

	r.Consume(')')

	return item15
}

func (fp *FlightPlan) setFlightRules(r string) {
	switch r {
	case "V":
		fp.FlightRules = parse.RulesVFR
	case "I":
		fp.FlightRules = parse.RulesIFR
	default:
		fp.Errors.ErrorString("invalid flight rules %q", r)
	}
}

// parseOtherInfo splits "CAT/TEXT CAT/TEXT ..." into fp.OtherInfo,
// preserving insertion order and unrecognized categories verbatim.
func (fp *FlightPlan) parseOtherInfo(s string) {
	for _, field := range splitCategories(s) {
		idx := strings.IndexByte(field, '/')
		if idx < 0 {
			continue
		}
		cat, text := field[:idx], field[idx+1:]
		fp.OtherInfo.Set(cat, text)

		switch cat {
		case "DOF":
			fp.applyDOF(text)
		}
	}
}

// splitCategories splits "CAT/TEXT" runs on the next all-uppercase
// "WORD/" boundary, per the Item-18 grammar.
func splitCategories(s string) []string {
	var out []string
	fields := strings.Fields(s)
	var cur []string
	for _, f := range fields {
		if isCategoryStart(f) && len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
			cur = nil
		}
		cur = append(cur, f)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func isCategoryStart(f string) bool {
	idx := strings.IndexByte(f, '/')
	if idx <= 0 {
		return false
	}
	for _, c := range f[:idx] {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// applyDOF parses Item 18's DOF (YYMMDD; YY 00-68 is read as 20YY and
// 69-99 as 19YY) and
// records it as the date-of-flight override. It does not touch
// DepartureEOBT, which remains the seconds-since-midnight time-of-day.
func (fp *FlightPlan) applyDOF(yymmdd string) {
	t, err := time.Parse("060102", yymmdd)
	if err != nil {
		fp.Errors.ErrorString("invalid DOF %q", yymmdd)
		return
	}
	fp.DepartureDate = t
}

func (fp *FlightPlan) parseItem19(s string) {
	for _, field := range splitCategories(s) {
		idx := strings.IndexByte(field, '/')
		if idx < 0 {
			continue
		}
		cat, val := field[:idx], field[idx+1:]
		switch cat {
		case "E":
			if secs, err := parse.ParseTime(val); err == nil {
				fp.Endurance = secs
			}
		case "P":
			if val == "TBN" {
				fp.PersonsTBN = true
			} else if n, err := strconv.Atoi(val); err == nil {
				fp.PersonsOnBoard = n
			}
		case "R":
			fp.EmergencyRadio = val
		case "S":
			fp.SurvivalEquip = val
		case "J":
			fp.Lifejackets = val
		case "D":
			fp.Dinghies = val
		case "A":
			fp.ColourMarkings = val
		case "N":
			fp.Remarks = val
		case "C":
			fp.PIC = val
		default:
			fp.Errors.ErrorString("unrecognized item 19 category %q", cat)
		}
	}
}
