// Package matchertest provides an in-memory timetable for tests.
package matchertest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"transit-journeys/internal/matcher"
	"transit-journeys/internal/transit"
)

// Call is a scheduled stop of a run.
type Call struct {
	Stop    string
	Ordinal int
	Time    transit.Clock
}

// Run is one vehicle trip of a line.
type Run struct {
	Line      string
	Direction string
	Day       transit.DayType
	Calls     []Call
}

// Timetable serves departures from a fixed list of runs. It records how
// sessions are used so tests can check the one-session-per-worker rule.
type Timetable struct {
	Runs  []Run
	Stops []transit.Stop

	// FailStop makes Departures fail for that stop.
	FailStop string
	// FailSession makes Session fail.
	FailSession error

	mu      sync.Mutex
	queries []matcher.DepartureQuery
	open    atomic.Int32
	maxOpen atomic.Int32
	opened  atomic.Int32
	misuse  atomic.Bool
}

var ErrInjected = errors.New("injected failure")

func (t *Timetable) ListStops(ctx context.Context) ([]transit.Stop, error) {
	if t.FailSession != nil {
		return nil, t.FailSession
	}
	return slices.Clone(t.Stops), nil
}

func (t *Timetable) Session(ctx context.Context) (matcher.Session, error) {
	if t.FailSession != nil {
		return nil, t.FailSession
	}
	n := t.open.Add(1)
	t.opened.Add(1)
	for {
		cur := t.maxOpen.Load()
		if n <= cur || t.maxOpen.CompareAndSwap(cur, n) {
			break
		}
	}
	return &session{t: t}, nil
}

// Queries returns every departure query served so far.
func (t *Timetable) Queries() []matcher.DepartureQuery {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.queries)
}

// OpenSessions is the number of sessions not yet closed.
func (t *Timetable) OpenSessions() int { return int(t.open.Load()) }

// MaxOpenSessions is the highest number of simultaneously open sessions.
func (t *Timetable) MaxOpenSessions() int { return int(t.maxOpen.Load()) }

// SessionsOpened counts every Session call that succeeded.
func (t *Timetable) SessionsOpened() int { return int(t.opened.Load()) }

// SharedSession reports whether any session was used by two goroutines at once.
func (t *Timetable) SharedSession() bool { return t.misuse.Load() }

type session struct {
	t      *Timetable
	busy   atomic.Bool
	closed atomic.Bool
}

func (s *session) Departures(ctx context.Context, q matcher.DepartureQuery) ([]transit.Leg, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.t.misuse.Store(true)
	}
	defer s.busy.Store(false)
	if s.closed.Load() {
		return nil, fmt.Errorf("session closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.t.mu.Lock()
	s.t.queries = append(s.t.queries, q)
	s.t.mu.Unlock()

	if q.StopID == s.t.FailStop {
		return nil, ErrInjected
	}
	return s.t.Departures(q), nil
}

func (s *session) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.t.open.Add(-1)
	}
	return nil
}

// Departures answers q the way the Postgres store does: every call at the
// stop is paired with every call of the same run.
func (t *Timetable) Departures(q matcher.DepartureQuery) []transit.Leg {
	names := make(map[string]string, len(t.Stops))
	for _, st := range t.Stops {
		names[st.ID] = st.Name
	}
	var legs []transit.Leg
	for _, r := range t.Runs {
		if r.Day != q.Day {
			continue
		}
		if q.Line != "" && r.Line != q.Line {
			continue
		}
		if q.ExcludeLine != "" && r.Line == q.ExcludeLine {
			continue
		}
		for _, from := range r.Calls {
			if from.Stop != q.StopID || from.Time < q.AtOrAfter {
				continue
			}
			for _, to := range r.Calls {
				legs = append(legs, transit.Leg{
					Line:             r.Line,
					Direction:        r.Direction,
					Departure:        from.Time,
					Arrival:          to.Time,
					Boarding:         transit.StopRef{ID: from.Stop, Name: names[from.Stop]},
					Alighting:        transit.StopRef{ID: to.Stop, Name: names[to.Stop]},
					BoardingOrdinal:  from.Ordinal,
					AlightingOrdinal: to.Ordinal,
				})
			}
		}
	}
	slices.SortStableFunc(legs, func(a, b transit.Leg) int { return int(a.Departure - b.Departure) })
	return legs
}

// Clock parses s and panics on error.
func Clock(s string) transit.Clock {
	c, err := transit.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Line builds a run that calls at stops in order with ordinals 1..n,
// starting at first and spaced every minutes.
func Line(line, direction string, day transit.DayType, first string, minutes int, stops ...string) Run {
	start := Clock(first)
	r := Run{Line: line, Direction: direction, Day: day}
	for i, st := range stops {
		r.Calls = append(r.Calls, Call{Stop: st, Ordinal: i + 1, Time: start + transit.Clock(i*minutes*60)})
	}
	return r
}
