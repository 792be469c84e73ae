// internal/errlog/error.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package errlog accumulates the non-fatal parse/resolution/topology
// errors the pipeline produces instead of aborting on the first one, per
// the error-handling design: everything but a handful of sentinel
// programmer errors is reported as a string appended to the running list.
package errlog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/skyplan/fplcore/internal/logging"
)

// errorWrapColumns is the terminal width PrintErrors wraps long error
// strings to when writing to stderr.
const errorWrapColumns = 100

// ErrorLogger accumulates errors while tracking a "where am I" hierarchy
// (pushed/popped around each pipeline phase) so each message can be
// prefixed with context about which phase and waypoint produced it.
type ErrorLogger struct {
	hierarchy []string
	errors    []string
}

func (e *ErrorLogger) Push(s string) { e.hierarchy = append(e.hierarchy, s) }

func (e *ErrorLogger) Pop() {
	if len(e.hierarchy) > 0 {
		e.hierarchy = e.hierarchy[:len(e.hierarchy)-1]
	}
}

func (e *ErrorLogger) ErrorString(s string, args ...interface{}) {
	e.errors = append(e.errors, e.prefix()+fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.errors = append(e.errors, e.prefix()+err.Error())
}

func (e *ErrorLogger) prefix() string {
	if len(e.hierarchy) == 0 {
		return ""
	}
	return strings.Join(e.hierarchy, " / ") + ": "
}

func (e *ErrorLogger) HaveErrors() bool { return len(e.errors) > 0 }

// Errors returns the accumulated error strings in pipeline order.
func (e *ErrorLogger) Errors() []string {
	return append([]string(nil), e.errors...)
}

// PrintErrors logs each accumulated error and, separately, writes it
// (word-wrapped to errorWrapColumns) to stderr -- two loops so the log
// records and the terminal output aren't interleaved line by line.
func (e *ErrorLogger) PrintErrors(lg *logging.Logger) {
	if lg != nil {
		for _, err := range e.errors {
			lg.Error(err)
		}
	}
	for _, err := range e.errors {
		wrapped, _ := wrapText(err, errorWrapColumns, 2, false)
		fmt.Fprintln(os.Stderr, wrapped)
	}
}

func (e *ErrorLogger) String() string {
	return strings.Join(e.errors, "\n")
}

// Sentinel errors for conditions that abort a call at a public entry
// point, rather than being accumulated into an ErrorLogger.
var (
	ErrEmptyRoute          = errors.New("route has no waypoints")
	ErrMissingDeparture    = errors.New("flight plan has no departure aerodrome")
	ErrMissingDestination  = errors.New("flight plan has no destination aerodrome")
	ErrUnterminatedItem    = errors.New("unterminated item in ICAO flight plan string")
	ErrInvalidStaySequence = errors.New("STAY indices are not consecutive")
)

var sentinelsByText = map[string]error{
	ErrEmptyRoute.Error():          ErrEmptyRoute,
	ErrMissingDeparture.Error():    ErrMissingDeparture,
	ErrMissingDestination.Error():  ErrMissingDestination,
	ErrUnterminatedItem.Error():    ErrUnterminatedItem,
	ErrInvalidStaySequence.Error(): ErrInvalidStaySequence,
}

// DecodeSentinel recovers one of the package's sentinel errors from its
// string form, for round-tripping errors across an RPC or structured
// test-harness boundary that only carries text.
func DecodeSentinel(err error) error {
	if e, ok := sentinelsByText[err.Error()]; ok {
		return e
	}
	return err
}
