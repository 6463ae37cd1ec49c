package matcher_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit-journeys/internal/matcher"
	"transit-journeys/internal/transit"
)

func TestPartitionRoundRobin(t *testing.T) {
	parts := matcher.Partition([]int{0, 1, 2, 3, 4, 5, 6}, 3)
	require.Len(t, parts, 3)
	assert.Equal(t, []int{0, 3, 6}, parts[0])
	assert.Equal(t, []int{1, 4}, parts[1])
	assert.Equal(t, []int{2, 5}, parts[2])

	parts = matcher.Partition([]int{1}, 4)
	require.Len(t, parts, 4)
	assert.Empty(t, parts[3])

	assert.Len(t, matcher.Partition([]int{1, 2}, 0), 1)
}

func TestNewRunnerDefaults(t *testing.T) {
	assert.Equal(t, matcher.DefaultWorkers, matcher.NewRunner(0).Workers())
	assert.Equal(t, 3, matcher.NewRunner(3).Workers())
	assert.Equal(t, 1, matcher.Sequential().Workers())
}

func TestRunSkipsEmptyPartitions(t *testing.T) {
	var calls atomic.Int32
	res, err := matcher.Run(context.Background(), matcher.NewRunner(8), []int{1, 2, 3}, func(_ context.Context, part []int) (int, error) {
		calls.Add(1)
		sum := 0
		for _, v := range part {
			sum += v
		}
		return sum, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []int{1, 2, 3}, res)
}

func TestRunPropagatesErrorAndCancels(t *testing.T) {
	boom := errors.New("boom")
	var cancelled atomic.Int32
	_, err := matcher.Run(context.Background(), matcher.NewRunner(4), []int{0, 1, 2, 3}, func(ctx context.Context, part []int) (int, error) {
		if part[0] == 0 {
			return 0, boom
		}
		<-ctx.Done()
		cancelled.Add(1)
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), cancelled.Load())
}

func TestRunEmptyInput(t *testing.T) {
	res, err := matcher.Run(context.Background(), matcher.NewRunner(2), nil, func(context.Context, []int) (int, error) {
		t.Fatal("no partition should run")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func direct(line, dir string, dep transit.Clock, board string) transit.DirectItinerary {
	return transit.DirectItinerary{Leg: transit.Leg{
		Line: line, Direction: dir, Departure: dep, Arrival: dep + 600,
		Boarding: transit.StopRef{ID: board}, Alighting: transit.StopRef{ID: "G"},
		BoardingOrdinal: 1, AlightingOrdinal: 2,
	}}
}

func TestKeepEarliestWins(t *testing.T) {
	m := map[transit.Key]transit.DirectItinerary{}
	matcher.Keep(m, direct("12", "a", 9*3600, "S1"))
	matcher.Keep(m, direct("12", "a", 8*3600, "S2"))
	matcher.Keep(m, direct("12", "a", 10*3600, "S3"))
	matcher.Keep(m, direct("12", "b", 11*3600, "S1"))
	require.Len(t, m, 2)
	assert.Equal(t, transit.Clock(8*3600), m[transit.Key{Line: "12", Direction: "a"}].Leg.Departure)
}

func TestMergeOrderIndependent(t *testing.T) {
	a := map[transit.Key]transit.DirectItinerary{}
	b := map[transit.Key]transit.DirectItinerary{}
	c := map[transit.Key]transit.DirectItinerary{}
	matcher.Keep(a, direct("1", "x", 700, "S1"))
	matcher.Keep(a, direct("2", "x", 900, "S1"))
	matcher.Keep(b, direct("1", "x", 600, "S2"))
	matcher.Keep(b, direct("3", "x", 100, "S2"))
	matcher.Keep(c, direct("2", "x", 900, "S0")) // same departure, tie broken by stop
	matcher.Keep(c, direct("3", "x", 200, "S3"))

	want := matcher.Merge(a, b, c)
	assert.Equal(t, want, matcher.Merge(c, b, a))
	assert.Equal(t, want, matcher.Merge(b, a, c))
	assert.Equal(t, want, matcher.Merge(matcher.Merge(a, b), c))
	assert.Equal(t, want, matcher.Merge(a, matcher.Merge(b, c)))
	assert.Equal(t, "S0", want[transit.Key{Line: "2", Direction: "x"}].Leg.Boarding.ID)

	sorted := matcher.Sorted(want)
	require.Len(t, sorted, 3)
	assert.Equal(t, "3", sorted[0].Leg.Line)
	assert.Equal(t, "1", sorted[1].Leg.Line)
	assert.Equal(t, "2", sorted[2].Leg.Line)
}
