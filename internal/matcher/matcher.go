package matcher

import (
	"context"
	"errors"
	"time"

	"transit-journeys/internal/transit"
)

// Observer receives timing for every timetable read.
type Observer interface {
	ObserveDepartures(d time.Duration, err error)
}

type Matcher struct {
	tt       Timetable
	runner   *Runner
	observer Observer
}

type Option func(*Matcher)

// WithObserver reports timetable reads to o.
func WithObserver(o Observer) Option {
	return func(m *Matcher) { m.observer = o }
}

// New builds a Matcher. A nil runner means sequential execution.
func New(tt Timetable, runner *Runner, opts ...Option) *Matcher {
	if runner == nil {
		runner = Sequential()
	}
	m := &Matcher{tt: tt, runner: runner}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Matcher) Workers() int { return m.runner.Workers() }

// withSession opens a session for one worker, runs fn and closes it.
// Failures to open or read are reported as StoreUnavailable.
func (m *Matcher) withSession(ctx context.Context, fn func(Session) error) error {
	s, err := m.tt.Session(ctx)
	if err != nil {
		return storeError("open session", err)
	}
	defer s.Close()
	return fn(s)
}

func (m *Matcher) departures(ctx context.Context, s Session, q DepartureQuery) ([]transit.Leg, error) {
	start := time.Now()
	legs, err := s.Departures(ctx, q)
	if m.observer != nil {
		m.observer.ObserveDepartures(time.Since(start), err)
	}
	if err != nil {
		return nil, storeError("departures", err)
	}
	return legs, nil
}

func storeError(op string, err error) error {
	if transit.KindOf(err) != 0 || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return transit.NewError(transit.KindStoreUnavailable, op, err)
}

type stopSet map[string]transit.RankedStop

func indexStops(stops []transit.RankedStop) stopSet {
	s := make(stopSet, len(stops))
	for _, st := range stops {
		s[st.ID] = st
	}
	return s
}

// named fills in stop names the store left empty.
func (s stopSet) named(ref transit.StopRef) transit.StopRef {
	if ref.Name == "" {
		if st, ok := s[ref.ID]; ok {
			ref.Name = st.Name
		}
	}
	return ref
}
