package availability

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

func TestFreeWindowsWithoutBlocks(t *testing.T) {
	loc := berlin(t)
	start := local(t, loc, "2024-03-12", "09:00")
	end := local(t, loc, "2024-03-12", "17:00")

	windows, err := FreeWindows(start, end, nil, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []FreeWindow{{MinStart: start, MaxStart: local(t, loc, "2024-03-12", "16:00")}}, windows)
}

func TestFreeWindowsDropsGapsShorterThanDuration(t *testing.T) {
	loc := berlin(t)
	start := local(t, loc, "2024-03-12", "09:00")
	end := local(t, loc, "2024-03-12", "13:00")
	blocked := []Interval{{Start: local(t, loc, "2024-03-12", "10:00"), End: local(t, loc, "2024-03-12", "10:30")}}

	windows, err := FreeWindows(start, end, blocked, 90*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []FreeWindow{{
		MinStart: local(t, loc, "2024-03-12", "10:30"),
		MaxStart: local(t, loc, "2024-03-12", "11:30"),
	}}, windows)
}

func TestFreeWindowsKeepsExactFit(t *testing.T) {
	loc := berlin(t)
	start := local(t, loc, "2024-03-12", "09:00")
	end := local(t, loc, "2024-03-12", "13:00")
	blocked := []Interval{{Start: local(t, loc, "2024-03-12", "10:00"), End: local(t, loc, "2024-03-12", "13:00")}}

	windows, err := FreeWindows(start, end, blocked, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []FreeWindow{{MinStart: start, MaxStart: start}}, windows)
}

func TestFreeWindowsNestedIntervalsDoNotRewindCursor(t *testing.T) {
	loc := berlin(t)
	start := local(t, loc, "2024-03-12", "09:00")
	end := local(t, loc, "2024-03-12", "17:00")
	blocked := []Interval{
		{Start: local(t, loc, "2024-03-12", "11:00"), End: local(t, loc, "2024-03-12", "11:30")},
		{Start: local(t, loc, "2024-03-12", "10:00"), End: local(t, loc, "2024-03-12", "14:00")},
		{Start: local(t, loc, "2024-03-12", "12:00"), End: local(t, loc, "2024-03-12", "12:15")},
	}

	windows, err := FreeWindows(start, end, blocked, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []FreeWindow{
		{MinStart: start, MaxStart: local(t, loc, "2024-03-12", "09:30")},
		{MinStart: local(t, loc, "2024-03-12", "14:00"), MaxStart: local(t, loc, "2024-03-12", "16:30")},
	}, windows)
	assert.Equal(t, local(t, loc, "2024-03-12", "11:00"), blocked[0].Start, "input must not be reordered")
}

func TestFreeWindowsWholeWindowBlocked(t *testing.T) {
	loc := berlin(t)
	start := local(t, loc, "2024-03-12", "09:00")
	end := local(t, loc, "2024-03-12", "17:00")

	windows, err := FreeWindows(start, end, []Interval{{Start: start.Add(-time.Hour), End: end.Add(time.Hour)}}, 15*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestFreeWindowsClipsOutsideIntervals(t *testing.T) {
	loc := berlin(t)
	start := local(t, loc, "2024-03-12", "09:00")
	end := local(t, loc, "2024-03-12", "17:00")
	blocked := []Interval{
		{Start: local(t, loc, "2024-03-11", "09:00"), End: local(t, loc, "2024-03-11", "18:00")},
		{Start: local(t, loc, "2024-03-12", "16:00"), End: local(t, loc, "2024-03-13", "02:00")},
	}

	windows, err := FreeWindows(start, end, blocked, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []FreeWindow{{MinStart: start, MaxStart: local(t, loc, "2024-03-12", "15:00")}}, windows)
}

func TestFreeWindowsRejectsInvalidInput(t *testing.T) {
	start := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	_, err := FreeWindows(start, start.Add(time.Hour), nil, 0)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	_, err = FreeWindows(start, start.Add(time.Hour), nil, -time.Minute)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	_, err = FreeWindows(start, start, nil, time.Minute)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}

func TestFreeWindowsRandomOverlapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(20240312))
	start := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	for round := 0; round < 500; round++ {
		blocked := make([]Interval, rng.Intn(12))
		for i := range blocked {
			s := start.Add(time.Duration(rng.Intn(660)-30) * time.Minute)
			blocked[i] = Interval{Start: s, End: s.Add(time.Duration(rng.Intn(180)+1) * time.Minute)}
		}
		duration := time.Duration(rng.Intn(120)+1) * time.Minute

		windows, err := FreeWindows(start, end, blocked, duration)
		require.NoError(t, err)

		for i, w := range windows {
			require.False(t, w.MaxStart.Before(w.MinStart), "round %d window %d inverted", round, i)
			require.False(t, w.MinStart.Before(start), "round %d window %d before start", round, i)
			require.False(t, w.MaxStart.Add(duration).After(end), "round %d window %d runs past end", round, i)
			if i > 0 {
				prevEnd := windows[i-1].MaxStart.Add(duration)
				require.False(t, w.MinStart.Before(prevEnd), "round %d windows %d and %d overlap", round, i-1, i)
			}
			booking := Interval{Start: w.MinStart, End: w.MaxStart.Add(duration)}
			for _, b := range blocked {
				require.False(t, booking.Overlaps(b), "round %d window %d overlaps a block", round, i)
			}
		}

		again, err := FreeWindows(start, end, blocked, duration)
		require.NoError(t, err)
		require.Equal(t, windows, again)
	}
}
