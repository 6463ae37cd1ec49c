package matcher

import (
	"slices"

	"transit-journeys/internal/transit"
)

// Ranked is an itinerary that can be deduplicated by key.
type Ranked[I any] interface {
	Key() transit.Key
	Departure() transit.Clock
	Earlier(I) bool
}

// Keep stores it under its key unless an earlier itinerary is already there.
func Keep[I Ranked[I]](m map[transit.Key]I, it I) {
	cur, ok := m[it.Key()]
	if !ok || it.Earlier(cur) {
		m[it.Key()] = it
	}
}

// Merge folds worker-local maps with the earliest-wins rule. The result
// does not depend on the order of locals.
func Merge[I Ranked[I]](locals ...map[transit.Key]I) map[transit.Key]I {
	merged := make(map[transit.Key]I)
	for _, local := range locals {
		for _, it := range local {
			Keep(merged, it)
		}
	}
	return merged
}

// Sorted returns the values of m ordered by departure, then key.
func Sorted[I Ranked[I]](m map[transit.Key]I) []I {
	out := make([]I, 0, len(m))
	for _, it := range m {
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b I) int {
		return transit.CompareDeparture(a.Departure(), a.Key(), b.Departure(), b.Key())
	})
	return out
}
