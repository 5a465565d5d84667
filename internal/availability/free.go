package availability

import (
	"sort"
	"time"

	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

// sweep is the fold state of FreeWindows. cursor only moves forward.
type sweep struct {
	cursor  time.Time
	windows []FreeWindow
}

func (s sweep) advance(to time.Time) sweep {
	if to.After(s.cursor) {
		s.cursor = to
	}
	return s
}

// FreeWindows computes the ranges of instants at which a service lasting
// duration can start inside [start, end) without touching a blocked interval.
// blocked is not modified; intervals are clipped to the window first.
func FreeWindows(start, end time.Time, blocked []Interval, duration time.Duration) ([]FreeWindow, error) {
	if duration <= 0 {
		return nil, appErrors.InvalidInput("service duration must be positive, got %s", duration)
	}
	if !start.Before(end) {
		return nil, appErrors.InvalidInput("working window %s-%s is empty", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	sorted := clipAndSort(start, end, blocked)

	state := sweep{cursor: start}
	for _, interval := range sorted {
		if interval.Start.After(state.cursor) {
			state.windows = appendFit(state.windows, state.cursor, interval.Start, duration)
		}
		state = state.advance(interval.End)
	}
	if state.cursor.Before(end) {
		state.windows = appendFit(state.windows, state.cursor, end, duration)
	}
	return state.windows, nil
}

// appendFit emits [from, until-duration] when the gap can hold the service.
func appendFit(windows []FreeWindow, from, until time.Time, duration time.Duration) []FreeWindow {
	maxStart := until.Add(-duration)
	if maxStart.Before(from) {
		return windows
	}
	return append(windows, FreeWindow{MinStart: from, MaxStart: maxStart})
}

func clipAndSort(start, end time.Time, blocked []Interval) []Interval {
	clipped := make([]Interval, 0, len(blocked))
	for _, b := range blocked {
		s, e := b.Start.UTC(), b.End.UTC()
		if s.Before(start) {
			s = start
		}
		if e.After(end) {
			e = end
		}
		if !s.Before(e) {
			continue
		}
		clipped = append(clipped, Interval{Start: s, End: e})
	}
	sort.SliceStable(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})
	return clipped
}
