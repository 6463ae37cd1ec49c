package main

import (
	"bufio"
	"fmt"
	"io"

	"transit-journeys/internal/planner"
	"transit-journeys/internal/transit"
)

// writeResult prints res the way the console tool always has: endpoints,
// the stops considered, then one line per itinerary.
func writeResult(w io.Writer, res *planner.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Search %s on %s (%s) from %s\n", res.ID, res.Date, res.DayType, res.Time)

	writeEndpoint(bw, "Start", res.Origin)
	writeEndpoint(bw, "Goal", res.Destination)
	if res.Status == planner.StatusUnlocated {
		fmt.Fprintln(bw, "Address could not be located.")
		return bw.Flush()
	}

	writeStops(bw, "Nearest Start Stops:", res.OriginStops)
	writeStops(bw, "Nearest Goal Stops:", res.GoalStops)

	for _, d := range res.Direct {
		fmt.Fprintf(bw, "Bus line: %s, Departure time: %s, Arrival time: %s\n",
			d.Leg.Line, d.Leg.Departure, d.Leg.Arrival)
	}
	for _, t := range res.Transfers {
		if !t.Transfers() {
			fmt.Fprintf(bw, "Bus line: %s, Departure time: %s, Arrival time: %s\n",
				t.First.Line, t.First.Departure, t.First.Arrival)
			continue
		}
		fmt.Fprintf(bw, "Bus line: %s, Departure time: %s, Arrival time: %s, change at %s to bus line: %s, Departure time: %s, Arrival time: %s\n",
			t.First.Line, t.First.Departure, t.First.Arrival, stopLabel(t.First.Alighting),
			t.Second.Line, t.Second.Departure, t.Second.Arrival)
	}
	if res.Status == planner.StatusNoRoute {
		fmt.Fprintln(bw, "No connection found.")
	}
	return bw.Flush()
}

func writeEndpoint(w io.Writer, label string, e planner.Endpoint) {
	if !e.Located() {
		fmt.Fprintf(w, "%s: %q not located: %s\n", label, e.Address, e.Err)
		return
	}
	fmt.Fprintf(w, "%s Coordinates: Latitude = %g, Longitude = %g\n", label, e.Coord.Lat, e.Coord.Lon)
}

func writeStops(w io.Writer, title string, stops []transit.RankedStop) {
	fmt.Fprintln(w, title)
	for _, st := range stops {
		fmt.Fprintf(w, "%s (%g, %g), Distance: %.0f meters\n", st.Name, st.Coord.Lat, st.Coord.Lon, st.Distance)
	}
}

func stopLabel(s transit.StopRef) string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
