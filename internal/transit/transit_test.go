package transit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "07:00", want: 7 * 3600},
		{in: "08:10:30", want: 8*3600 + 10*60 + 30},
		{in: "25:05:00", want: 25*3600 + 5*60},
		{in: " 12:00 ", want: 12 * 3600},
		{in: "", wantErr: true},
		{in: "12", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "aa:00", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
		{in: "47:59:59", want: 47*3600 + 59*60 + 59},
		{in: "48:00", wantErr: true},
		{in: "2562047788015216:00", wantErr: true},
		{in: "99999999999999999999:00", wantErr: true},
		{in: "08:00:00.5", want: 8 * 3600},
		{in: "08:00:07.123456", want: 8*3600 + 7},
		{in: "08:00:00.", wantErr: true},
		{in: "08:00:00.x", wantErr: true},
		{in: "08:00.5", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClockString(t *testing.T) {
	assert.Equal(t, "08:00:00", Clock(8*3600).String())
	assert.Equal(t, "24:30:05", Clock(24*3600+30*60+5).String())
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, Coordinate{}.Valid())
	assert.True(t, Coordinate{}.IsZero())
	assert.False(t, NoCoordinate.Valid())
	assert.False(t, Coordinate{Lat: 91}.Valid())
	assert.False(t, Coordinate{Lon: -181}.Valid())
}

func TestDirectEarlier(t *testing.T) {
	a := DirectItinerary{Leg: Leg{Line: "12", Departure: 8 * 3600, Arrival: 8*3600 + 600}}
	b := DirectItinerary{Leg: Leg{Line: "12", Departure: 9 * 3600, Arrival: 9*3600 + 600}}
	assert.True(t, a.Earlier(b))
	assert.False(t, b.Earlier(a))
	assert.False(t, a.Earlier(a))

	// same departure: the tie break is a strict order
	c := a
	c.Leg.Boarding.ID = "z"
	assert.NotEqual(t, a.Earlier(c), c.Earlier(a))
}

func TestTransferKeyAndEarlier(t *testing.T) {
	first := Leg{Line: "5", Direction: "north", Departure: 8 * 3600, Arrival: 8*3600 + 900}
	second := Leg{Line: "7", Direction: "east", Departure: 8*3600 + 1200, Arrival: 9 * 3600}
	two := TransferItinerary{First: first, Second: &second}
	one := TransferItinerary{First: first}

	assert.Equal(t, Key{Line: "7", Direction: "east"}, two.Key())
	assert.Equal(t, Key{Line: "5", Direction: "north"}, one.Key())
	assert.Equal(t, second.Departure, two.Departure())
	assert.True(t, two.Transfers())
	assert.False(t, one.Transfers())

	laterFirst := first
	laterFirst.Departure += 60
	other := TransferItinerary{First: laterFirst, Second: &second}
	assert.True(t, two.Earlier(other), "equal final legs fall back to the first leg")
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("search: %w", NewError(KindStoreUnavailable, "departures", errors.New("conn refused")))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, KindStoreUnavailable, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Contains(t, err.Error(), "departures: store unavailable: conn refused")
}

func TestDayTypeLabels(t *testing.T) {
	assert.Equal(t, "Roboczy", Weekday.Label())
	assert.Equal(t, "Sobota", Saturday.Label())
	assert.Equal(t, "Niedziela i święta", SundayOrHoliday.Label())
	assert.Equal(t, "saturday", Saturday.String())
}
