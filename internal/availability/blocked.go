package availability

import (
	"time"
)

// AggregateBlocked collects every interval during which the window's employee
// cannot be booked on the window's date. The result is neither sorted nor
// merged; FreeWindows tolerates arbitrary overlap.
func AggregateBlocked(window WorkingWindow, sources BlockSources, now time.Time, loc *time.Location) ([]Interval, error) {
	dateKey := window.Date.String()
	blocked := make([]Interval, 0, len(window.Pauses)+len(sources.ExternalBusy)+1)

	for _, appt := range sources.Appointments {
		if appt.EmployeeID != window.EmployeeID {
			continue
		}
		key, err := appointmentDateKey(appt, loc)
		if err != nil {
			return nil, err
		}
		if key != dateKey {
			continue
		}
		blocked = append(blocked, Interval{Start: appt.Start.UTC(), End: appt.End.UTC()})
	}

	blocked = append(blocked, window.Pauses...)

	for _, entry := range sources.Blocked {
		if entry.EmployeeID != window.EmployeeID {
			continue
		}
		date, err := ParseDate(entry.DateKey)
		if err != nil {
			return nil, err
		}
		if date != window.Date {
			continue
		}
		if entry.AllDay || entry.Start == nil || entry.End == nil {
			blocked = append(blocked, window.Interval())
			continue
		}
		blocked = append(blocked, Interval{Start: entry.Start.On(date, loc), End: entry.End.On(date, loc)})
	}

	for _, busy := range sources.ExternalBusy {
		blocked = append(blocked, Interval{Start: busy.Start.UTC(), End: busy.End.UTC()})
	}

	if lead, ok := leadTimeBlock(window, now, loc); ok {
		blocked = append(blocked, lead)
	}

	return blocked, nil
}

// leadTimeBlock covers the part of today that can no longer be booked.
func leadTimeBlock(window WorkingWindow, now time.Time, loc *time.Location) (Interval, bool) {
	if DateOf(now, loc) != window.Date {
		return Interval{}, false
	}
	if window.LeadTime.NextDay {
		return window.Interval(), true
	}
	cutoff := now.UTC().Add(window.LeadTime.Duration)
	if !cutoff.After(window.Start) {
		return Interval{}, false
	}
	if cutoff.After(window.End) {
		cutoff = window.End
	}
	return Interval{Start: window.Start, End: cutoff}, true
}

func appointmentDateKey(appt Appointment, loc *time.Location) (string, error) {
	if appt.DateKey == "" {
		return DateOf(appt.Start, loc).String(), nil
	}
	date, err := ParseDate(appt.DateKey)
	if err != nil {
		return "", err
	}
	return date.String(), nil
}
