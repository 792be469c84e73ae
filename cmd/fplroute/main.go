// main.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// parses an ICAO flight plan, resolves its route against a nav database
// snapshot, and prints the resolved Item-15 string and per-waypoint ETs.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/skyplan/fplcore/internal/diag"
	"github.com/skyplan/fplcore/internal/flightplan"
	"github.com/skyplan/fplcore/internal/logging"
	"github.com/skyplan/fplcore/internal/navdb"
)

var (
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	dbPath      = flag.String("db", "", "path to a zstd-compressed nav database snapshot")
	arincPath   = flag.String("arinc424", "", "path to a CIFP-style ARINC 424 nav data file (alternative to -db)")
	eobtDate    = flag.String("date", "", "departure date YYYY-MM-DD, used to key time-sliced database lookups (default: today)")
	dctLimit    = flag.Float64("maxdct", 0, "if nonzero, subdivide DCT/VFR legs exceeding this many nautical miles")
	eraseTurns  = flag.Bool("erase-airway", false, "collapse consecutive same-altitude interior airway waypoints")
	cpuProfile  = flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	cpuLimit    = flag.Int("cpu-limit-warn", 0, "if nonzero, log a warning if CPU utilization stays above this percent")
)

func main() {
	flag.Parse()

	lg := logging.New(*logLevel, *logDir)

	profiler, err := diag.CreateProfiler(*cpuProfile, *memProfile)
	if err != nil {
		lg.Error("starting profiler", "error", err)
		os.Exit(1)
	}
	defer profiler.Cleanup()

	if *cpuLimit > 0 {
		diag.MonitorCPUUsage(*cpuLimit, lg)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fplroute [flags] '(FPL-...)'")
		os.Exit(1)
	}
	fplText := flag.Arg(0)

	depTime, err := parseDepartureDate(*eobtDate)
	if err != nil {
		lg.Error(err.Error())
		os.Exit(1)
	}

	effectiveDBPath := *dbPath
	if effectiveDBPath == "" && *arincPath == "" {
		effectiveDBPath = navdb.DefaultSnapshotPath("default.json.zst")
	}

	var db *navdb.Database
	switch {
	case effectiveDBPath != "":
		db, err = navdb.Load(effectiveDBPath, lg)
		if err != nil {
			lg.Error("loading nav database", "error", err)
			os.Exit(1)
		}
	case *arincPath != "":
		f, ferr := os.Open(*arincPath)
		if ferr != nil {
			lg.Error("opening ARINC 424 nav data", "error", ferr)
			os.Exit(1)
		}
		db, err = navdb.LoadARINC424(f, depTime, lg)
		f.Close()
		if err != nil {
			lg.Error("parsing ARINC 424 nav data", "error", err)
			os.Exit(1)
		}
	default:
		db = navdb.New(lg)
	}
	coord := navdb.NewFindCoord(db, lg)

	fp := flightplan.New(flightplan.DefaultOptions())
	var item15 string
	if strings.HasPrefix(fplText, "garminpilot://flightplan?") {
		item15 = fp.ParseGarminPilot(fplText)
	} else {
		item15 = fp.Parse(fplText)
	}
	fp.ParseRoute(context.Background(), item15, coord, depTime)

	fp.EnforcePathcodeVFRIFR()
	if *dctLimit > 0 {
		fp.FixMaxDCTDistance(*dctLimit)
	}
	if *eraseTurns {
		fp.EraseUnnecessaryAirway(true, false)
	}
	fp.AddEET()
	fp.NormalizePogo()

	if fp.Errors.HaveErrors() {
		fp.Errors.PrintErrors(lg)
	}

	fmt.Println(fp.GetItem15())
	fmt.Println(fp.GetFPL())
}

func parseDepartureDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
