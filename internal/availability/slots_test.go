package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

func TestGenerateSlotsShortensFirstSlotToGranularityBoundary(t *testing.T) {
	loc := berlin(t)
	window := FreeWindow{
		MinStart: local(t, loc, "2024-01-15", "19:09:18"),
		MaxStart: local(t, loc, "2024-01-15", "20:00"),
	}

	slots, err := GenerateSlots([]FreeWindow{window}, 30, loc)
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		{Start: local(t, loc, "2024-01-15", "19:15"), End: local(t, loc, "2024-01-15", "19:30")},
		{Start: local(t, loc, "2024-01-15", "19:30"), End: local(t, loc, "2024-01-15", "20:00")},
		{Start: local(t, loc, "2024-01-15", "20:00"), End: local(t, loc, "2024-01-15", "20:30")},
	}, slots)
}

func TestGenerateSlotsAlignedStartHasFullLength(t *testing.T) {
	loc := berlin(t)
	window := FreeWindow{
		MinStart: local(t, loc, "2024-07-15", "09:00"),
		MaxStart: local(t, loc, "2024-07-15", "10:59"),
	}

	slots, err := GenerateSlots([]FreeWindow{window}, 60, loc)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, local(t, loc, "2024-07-15", "09:00"), slots[0].Start)
	assert.Equal(t, time.Hour, slots[0].End.Sub(slots[0].Start))
	assert.Equal(t, local(t, loc, "2024-07-15", "10:00"), slots[1].Start)
}

func TestGenerateSlotsZeroLengthWindow(t *testing.T) {
	loc := berlin(t)
	at := local(t, loc, "2024-01-15", "10:30")

	slots, err := GenerateSlots([]FreeWindow{{MinStart: at, MaxStart: at}}, 15, loc)
	require.NoError(t, err)
	assert.Equal(t, []Slot{{Start: at, End: at.Add(15 * time.Minute)}}, slots)

	off := at.Add(time.Minute)
	slots, err = GenerateSlots([]FreeWindow{{MinStart: off, MaxStart: off}}, 15, loc)
	require.NoError(t, err)
	assert.Empty(t, slots, "rounding past maxStart leaves nothing")
}

func TestGenerateSlotsRoundsOnLocalClockForHalfHourZones(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	window := FreeWindow{
		MinStart: local(t, loc, "2024-01-15", "09:05"),
		MaxStart: local(t, loc, "2024-01-15", "09:45"),
	}

	slots, err := GenerateSlots([]FreeWindow{window}, 30, loc)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:15", slots[0].Start.In(loc).Format("15:04"))
	assert.Equal(t, "09:30", slots[0].End.In(loc).Format("15:04"))
	assert.Equal(t, "09:30", slots[1].Start.In(loc).Format("15:04"))
}

func TestGenerateSlotsDefaultsAndRejectsGranularity(t *testing.T) {
	loc := berlin(t)
	window := FreeWindow{
		MinStart: local(t, loc, "2024-01-15", "09:00"),
		MaxStart: local(t, loc, "2024-01-15", "09:30"),
	}

	slots, err := GenerateSlots([]FreeWindow{window}, 0, loc)
	require.NoError(t, err)
	assert.Len(t, slots, 3)

	_, err = GenerateSlots([]FreeWindow{window}, 45, loc)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	_, err = GenerateSlots([]FreeWindow{window}, 15, nil)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}

func TestGenerateSlotsMultipleWindows(t *testing.T) {
	loc := berlin(t)
	windows := []FreeWindow{
		{MinStart: local(t, loc, "2024-01-15", "09:00"), MaxStart: local(t, loc, "2024-01-15", "09:15")},
		{MinStart: local(t, loc, "2024-01-15", "11:20"), MaxStart: local(t, loc, "2024-01-15", "11:30")},
	}

	slots, err := GenerateSlots(windows, 15, loc)
	require.NoError(t, err)
	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start.In(loc).Format("15:04"))
	}
	assert.Equal(t, []string{"09:00", "09:15", "11:30"}, starts)
}
