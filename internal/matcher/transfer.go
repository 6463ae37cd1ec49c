package matcher

import (
	"context"

	"transit-journeys/internal/logging"
	"transit-journeys/internal/transit"
)

// stopLegs is the first-leg departure list of one start stop.
type stopLegs struct {
	stop transit.RankedStop
	legs []transit.Leg
}

type firstLegs struct {
	stops      []stopLegs
	candidates transit.KeySet
}

// FindTransfer returns itineraries with at most one change, deduplicated
// by the key of the leg that reaches the goal.
//
// Every (line, direction) departing any start stop is a first-leg
// candidate and can never serve as a second leg, whether or not it reached
// the goal itself. Lines in excluded are skipped for both legs. A first leg
// that already reaches a goal stop is kept as a one-leg itinerary.
//
// The search runs in two passes over the start stops. The first collects
// departures and candidates; the second matches second legs against the
// complete candidate set, so the outcome does not depend on how the start
// stops were partitioned.
func (m *Matcher) FindTransfer(ctx context.Context, start, goal []transit.RankedStop, day transit.DayType, at transit.Clock, excluded transit.LineSet) ([]transit.TransferItinerary, error) {
	goals := indexStops(goal)
	starts := indexStops(start)

	firsts, err := Run(ctx, m.runner, start, func(ctx context.Context, part []transit.RankedStop) (firstLegs, error) {
		out := firstLegs{candidates: make(transit.KeySet)}
		err := m.withSession(ctx, func(s Session) error {
			for _, st := range part {
				legs, err := m.departures(ctx, s, DepartureQuery{StopID: st.ID, Day: day, AtOrAfter: at})
				if err != nil {
					return err
				}
				for _, leg := range legs {
					out.candidates.Add(leg.Key())
				}
				out.stops = append(out.stops, stopLegs{stop: st, legs: legs})
			}
			return nil
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}

	candidates := make(transit.KeySet)
	var pending []stopLegs
	for _, f := range firsts {
		candidates.Union(f.candidates)
		pending = append(pending, f.stops...)
	}
	logging.Debugf("transfer: start stops=%d first-leg candidates=%d", len(pending), len(candidates))

	locals, err := Run(ctx, m.runner, pending, func(ctx context.Context, part []stopLegs) (map[transit.Key]transit.TransferItinerary, error) {
		local := make(map[transit.Key]transit.TransferItinerary)
		err := m.withSession(ctx, func(s Session) error {
			w := transferWorker{
				m:          m,
				s:          s,
				day:        day,
				goals:      goals,
				starts:     starts,
				excluded:   excluded,
				candidates: candidates,
				memo:       make(map[DepartureQuery][]transit.Leg),
				local:      local,
			}
			for _, sl := range part {
				if err := w.match(ctx, sl); err != nil {
					return err
				}
			}
			return nil
		})
		return local, err
	})
	if err != nil {
		return nil, err
	}
	return Sorted(Merge(locals...)), nil
}

type transferWorker struct {
	m          *Matcher
	s          Session
	day        transit.DayType
	goals      stopSet
	starts     stopSet
	excluded   transit.LineSet
	candidates transit.KeySet
	memo       map[DepartureQuery][]transit.Leg
	local      map[transit.Key]transit.TransferItinerary
}

func (w *transferWorker) match(ctx context.Context, sl stopLegs) error {
	for _, first := range sl.legs {
		if !first.Forward() || w.excluded.Has(first.Line) {
			continue
		}
		first.Boarding = w.starts.named(first.Boarding)
		if _, ok := w.goals[first.Alighting.ID]; ok {
			first.Alighting = w.goals.named(first.Alighting)
			Keep(w.local, transit.TransferItinerary{First: first})
			continue
		}

		seconds, err := w.secondLegs(ctx, DepartureQuery{
			StopID:      first.Alighting.ID,
			Day:         w.day,
			AtOrAfter:   first.Arrival,
			ExcludeLine: first.Line,
		})
		if err != nil {
			return err
		}
		for _, second := range seconds {
			if !second.Forward() || w.candidates.Has(second.Key()) || w.excluded.Has(second.Line) {
				continue
			}
			if _, ok := w.goals[second.Alighting.ID]; !ok {
				continue
			}
			second.Alighting = w.goals.named(second.Alighting)
			Keep(w.local, transit.TransferItinerary{First: first, Second: &second})
		}
	}
	return nil
}

// secondLegs memoizes transfer-stop reads within one worker.
func (w *transferWorker) secondLegs(ctx context.Context, q DepartureQuery) ([]transit.Leg, error) {
	if legs, ok := w.memo[q]; ok {
		return legs, nil
	}
	legs, err := w.m.departures(ctx, w.s, q)
	if err != nil {
		return nil, err
	}
	w.memo[q] = legs
	return legs, nil
}
