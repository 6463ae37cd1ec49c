package geo

import (
	"slices"

	"transit-journeys/internal/transit"
)

// Nearest ranks stops by distance to point and returns the k closest.
// Stops without a valid position are skipped. Equal distances keep
// catalog order.
func Nearest(point transit.Coordinate, stops []transit.Stop, k int) []transit.RankedStop {
	if k <= 0 {
		return nil
	}
	ranked := make([]transit.RankedStop, 0, len(stops))
	for _, s := range stops {
		if !s.Coord.Valid() {
			continue
		}
		ranked = append(ranked, transit.RankedStop{Stop: s, Distance: Distance(point, s.Coord)})
	}
	slices.SortStableFunc(ranked, func(a, b transit.RankedStop) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
