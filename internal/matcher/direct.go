package matcher

import (
	"context"

	"transit-journeys/internal/logging"
	"transit-journeys/internal/transit"
)

// FindDirect returns zero-transfer itineraries from any start stop to any
// goal stop departing at or after at, one per (line, direction), keeping
// the earliest departure across all start stops.
func (m *Matcher) FindDirect(ctx context.Context, start, goal []transit.RankedStop, day transit.DayType, at transit.Clock) ([]transit.DirectItinerary, error) {
	goals := indexStops(goal)
	starts := indexStops(start)

	locals, err := Run(ctx, m.runner, start, func(ctx context.Context, part []transit.RankedStop) (map[transit.Key]transit.DirectItinerary, error) {
		local := make(map[transit.Key]transit.DirectItinerary)
		err := m.withSession(ctx, func(s Session) error {
			for _, st := range part {
				legs, err := m.departures(ctx, s, DepartureQuery{StopID: st.ID, Day: day, AtOrAfter: at})
				if err != nil {
					return err
				}
				logging.Debugf("direct: stop=%s legs=%d", st.ID, len(legs))
				for _, leg := range legs {
					if !leg.Forward() {
						continue
					}
					if _, ok := goals[leg.Alighting.ID]; !ok {
						continue
					}
					leg.Boarding = starts.named(leg.Boarding)
					leg.Alighting = goals.named(leg.Alighting)
					Keep(local, transit.DirectItinerary{Leg: leg})
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
