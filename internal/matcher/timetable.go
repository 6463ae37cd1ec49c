// Package matcher finds direct and one-transfer itineraries between two
// sets of candidate stops. Searches fan out over a fixed number of workers;
// each worker reads the timetable through its own session and returns a
// local result map that is folded after all workers finish.
package matcher

import (
	"context"

	"transit-journeys/internal/transit"
)

// DepartureQuery selects the runs leaving StopID on Day at or after
// AtOrAfter. Line restricts the result to one line; ExcludeLine drops one.
type DepartureQuery struct {
	StopID      string
	Day         transit.DayType
	AtOrAfter   transit.Clock
	Line        string
	ExcludeLine string
}

// Session is a single-connection view of the timetable. A session is used
// by one worker at a time.
type Session interface {
	// Departures returns one leg per (run, downstream stop) pair, ordered by
	// departure time ascending. Both ordinals are filled in.
	Departures(ctx context.Context, q DepartureQuery) ([]transit.Leg, error)
	Close() error
}

// Timetable hands out sessions.
type Timetable interface {
	Session(ctx context.Context) (Session, error)
}
