package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit-journeys/internal/transit"
)

func TestDistanceKnownPairs(t *testing.T) {
	cases := []struct {
		name   string
		a, b   transit.Coordinate
		wantKm float64
	}{
		{name: "one degree of longitude at the equator", a: transit.Coordinate{}, b: transit.Coordinate{Lon: 1}, wantKm: 111.195},
		{name: "warsaw to poznan", a: transit.Coordinate{Lat: 52.2297, Lon: 21.0122}, b: transit.Coordinate{Lat: 52.4064, Lon: 16.9252}, wantKm: 278.9},
		{name: "antipodes", a: transit.Coordinate{Lat: 0, Lon: 0}, b: transit.Coordinate{Lat: 0, Lon: 180}, wantKm: math.Pi * EarthRadius / 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.a, tc.b) / 1000
			assert.InEpsilon(t, tc.wantKm, got, 0.01)
		})
	}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a := transit.Coordinate{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
		b := transit.Coordinate{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
		require.Equal(t, Distance(a, b), Distance(b, a))
		require.Zero(t, Distance(a, a))
	}
}

func catalog() []transit.Stop {
	return []transit.Stop{
		{ID: "A", Name: "Rynek", Coord: transit.Coordinate{Lat: 0, Lon: 0}},
		{ID: "B", Name: "Dworzec", Coord: transit.Coordinate{Lat: 0, Lon: 0.01}},
		{ID: "C", Name: "Centrum", Coord: transit.Coordinate{Lat: 1, Lon: 1}},
		{ID: "X", Name: "Bez pozycji", Coord: transit.NoCoordinate},
	}
}

func TestNearestReturnsClosest(t *testing.T) {
	got := Nearest(transit.Coordinate{Lat: 0.0001, Lon: 0.0001}, catalog(), 1)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ID)
}

func TestNearestCountAndOrder(t *testing.T) {
	stops := catalog()
	valid := 3
	for _, k := range []int{0, 1, 2, 3, 4, 10} {
		got := Nearest(transit.Coordinate{Lat: 0.5, Lon: 0.2}, stops, k)
		assert.Len(t, got, min(k, valid))
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1].Distance, got[i].Distance)
		}
		for _, s := range got {
			assert.NotEqual(t, "X", s.ID, "stops without a position never rank")
		}
	}
}

func TestNearestTiesKeepCatalogOrder(t *testing.T) {
	stops := []transit.Stop{
		{ID: "east", Coord: transit.Coordinate{Lat: 0, Lon: 0.01}},
		{ID: "west", Coord: transit.Coordinate{Lat: 0, Lon: -0.01}},
		{ID: "north", Coord: transit.Coordinate{Lat: 0.01, Lon: 0}},
	}
	got := Nearest(transit.Coordinate{}, stops, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "east", got[0].ID)
	assert.Equal(t, "west", got[1].ID)
}
