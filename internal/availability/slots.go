package availability

import (
	"time"

	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

// GenerateSlots discretizes free windows into bookable slots. The first start of
// each window is rounded up to the next RoundingStep boundary of local time; a
// first slot that does not begin on a granularity boundary ends at the next one.
func GenerateSlots(windows []FreeWindow, granularity int, loc *time.Location) ([]Slot, error) {
	if loc == nil {
		return nil, appErrors.InvalidInput("timezone is required")
	}
	minutes, err := normalizeGranularity(granularity)
	if err != nil {
		return nil, err
	}
	step := time.Duration(minutes) * time.Minute

	var slots []Slot
	for _, window := range windows {
		start := ceilLocal(window.MinStart, RoundingStep, loc)
		for !start.After(window.MaxStart) {
			end := ceilLocal(start.Add(time.Nanosecond), step, loc)
			slots = append(slots, Slot{Start: start, End: end})
			start = end
		}
	}
	return slots, nil
}

// ceilLocal rounds t up to a multiple of step measured on the local wall clock,
// so half-hour zone offsets still land on :00/:15/:30/:45 local.
func ceilLocal(t time.Time, step time.Duration, loc *time.Location) time.Time {
	_, offset := t.In(loc).Zone()
	shift := time.Duration(offset) * time.Second
	local := t.UTC().Add(shift)
	rounded := local.Truncate(step)
	if rounded.Before(local) {
		rounded = rounded.Add(step)
	}
	return rounded.Add(-shift).UTC()
}
