package transit

import "cmp"

// DirectItinerary is a zero-transfer journey.
type DirectItinerary struct {
	Leg Leg `json:"leg"`
}

func (d DirectItinerary) Key() Key { return d.Leg.Key() }

func (d DirectItinerary) Departure() Clock { return d.Leg.Departure }

// Earlier reports whether d wins over o under the earliest-wins rule.
// Equal departures fall back to a total order on the remaining fields.
func (d DirectItinerary) Earlier(o DirectItinerary) bool { return compareLegs(d.Leg, o.Leg) < 0 }

// TransferItinerary is a journey found by the transfer matcher. Second is
// nil when the first leg already reaches the goal.
type TransferItinerary struct {
	First  Leg  `json:"first"`
	Second *Leg `json:"second,omitempty"`
}

// Transfers reports whether the itinerary changes vehicles.
func (t TransferItinerary) Transfers() bool { return t.Second != nil }

// Final returns the leg that reaches the goal.
func (t TransferItinerary) Final() Leg {
	if t.Second != nil {
		return *t.Second
	}
	return t.First
}

// Key is the key of the final leg.
func (t TransferItinerary) Key() Key { return t.Final().Key() }

// Departure is the departure of the final leg, which is what
// deduplication compares.
func (t TransferItinerary) Departure() Clock { return t.Final().Departure }

func (t TransferItinerary) Earlier(o TransferItinerary) bool {
	if c := compareLegs(t.Final(), o.Final()); c != 0 {
		return c < 0
	}
	if t.Transfers() != o.Transfers() {
		return !t.Transfers()
	}
	return compareLegs(t.First, o.First) < 0
}

func compareLegs(a, b Leg) int {
	return cmp.Or(
		cmp.Compare(a.Departure, b.Departure),
		cmp.Compare(a.Arrival, b.Arrival),
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.Direction, b.Direction),
		cmp.Compare(a.Boarding.ID, b.Boarding.ID),
		cmp.Compare(a.Alighting.ID, b.Alighting.ID),
		cmp.Compare(a.BoardingOrdinal, b.BoardingOrdinal),
		cmp.Compare(a.AlightingOrdinal, b.AlightingOrdinal),
	)
}

// CompareDeparture orders itineraries for output: by departure, then key.
func CompareDeparture(aDep Clock, aKey Key, bDep Clock, bKey Key) int {
	return cmp.Or(
		cmp.Compare(aDep, bDep),
		cmp.Compare(aKey.Line, bKey.Line),
		cmp.Compare(aKey.Direction, bKey.Direction),
	)
}
