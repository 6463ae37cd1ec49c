package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit-journeys/internal/transit"
)

func TestClassifyKnownDates(t *testing.T) {
	cases := []struct {
		date string
		want transit.DayType
	}{
		{date: "2024-01-01", want: transit.Weekday}, // Monday
		{date: "2024-05-30", want: transit.Weekday}, // Thursday
		{date: "2024-01-05", want: transit.Weekday}, // Friday
		{date: "2024-01-06", want: transit.Saturday},
		{date: "2024-01-07", want: transit.SundayOrHoliday},
	}
	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			got, err := Classify(tc.date)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyEveryDayOfAYear(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 366; i++ {
		got, err := Classify(d.Format(dateLayout))
		require.NoError(t, err)
		assert.Contains(t, []transit.DayType{transit.Weekday, transit.Saturday, transit.SundayOrHoliday}, got)
		d = d.AddDate(0, 0, 1)
	}
}

func TestClassifyInvalidDate(t *testing.T) {
	for _, in := range []string{"", "2024-13-01", "30.05.2024", "2024-02-30", "tomorrow"} {
		_, err := Classify(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, transit.ErrInvalidDate)
	}
}

func TestHolidaysFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yml")
	require.NoError(t, os.WriteFile(path, []byte("holidays:\n  - date: 2024-05-30\n    name: Boże Ciało\n"), 0o644))

	hs, err := LoadHolidays(path)
	require.NoError(t, err)
	require.Len(t, hs, 1)

	c, err := New(hs...)
	require.NoError(t, err)

	got, err := c.Classify("2024-05-30")
	require.NoError(t, err)
	assert.Equal(t, transit.SundayOrHoliday, got)

	got, err = c.Classify("2024-05-31")
	require.NoError(t, err)
	assert.Equal(t, transit.Weekday, got)

	name, ok := c.Holiday("2024-05-30")
	assert.True(t, ok)
	assert.Equal(t, "Boże Ciało", name)
}

func TestNewRejectsBadHoliday(t *testing.T) {
	_, err := New(Holiday{Date: "30/05/2024", Name: "bad"})
	require.Error(t, err)
}
