package transit

import (
	"fmt"
	"math"
)

// Coordinate is a WGS-84 position in degrees. The zero value is the
// sentinel for a failed address lookup.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NoCoordinate marks a stop whose position is unknown.
var NoCoordinate = Coordinate{Lat: math.NaN(), Lon: math.NaN()}

// IsZero reports whether c is the (0,0) lookup-failure sentinel.
func (c Coordinate) IsZero() bool { return c.Lat == 0 && c.Lon == 0 }

// Valid reports whether c is a usable position.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinate) String() string { return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon) }

type Stop struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Coord Coordinate `json:"coord"`
}

// RankedStop is a stop annotated with its distance in meters to a query point.
type RankedStop struct {
	Stop
	Distance float64 `json:"distanceMeters"`
}

// StopRef identifies one end of a leg.
type StopRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Key is the deduplication key of an itinerary.
type Key struct {
	Line      string `json:"line"`
	Direction string `json:"direction"`
}

func (k Key) String() string { return k.Line + "/" + k.Direction }

// Leg is one scheduled vehicle run between a boarding and an alighting stop.
type Leg struct {
	Line             string  `json:"line"`
	Direction        string  `json:"direction"`
	Departure        Clock   `json:"departure"`
	Arrival          Clock   `json:"arrival"`
	Boarding         StopRef `json:"boarding"`
	Alighting        StopRef `json:"alighting"`
	BoardingOrdinal  int     `json:"boardingOrdinal"`
	AlightingOrdinal int     `json:"alightingOrdinal"`
}

func (l Leg) Key() Key { return Key{Line: l.Line, Direction: l.Direction} }

// Forward reports whether the leg travels along the line's route rather
// than backtracking.
func (l Leg) Forward() bool { return l.BoardingOrdinal < l.AlightingOrdinal }

// LineSet is a set of line identifiers.
type LineSet map[string]struct{}

func NewLineSet(lines ...string) LineSet {
	s := make(LineSet, len(lines))
	for _, l := range lines {
		s[l] = struct{}{}
	}
	return s
}

func (s LineSet) Add(line string) { s[line] = struct{}{} }

func (s LineSet) Has(line string) bool {
	_, ok := s[line]
	return ok
}

// KeySet is a set of (line, direction) keys.
type KeySet map[Key]struct{}

func (s KeySet) Add(k Key) { s[k] = struct{}{} }

func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Union adds every key of o to s.
func (s KeySet) Union(o KeySet) {
	for k := range o {
		s[k] = struct{}{}
	}
}
