package availability

import (
	"time"

	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

// ResolveWorkingWindow converts a recurring schedule entry into the absolute
// working window of date. It returns false when the entry does not apply: the
// weekday differs or the date lies before today.
func ResolveWorkingWindow(employeeID string, entry ScheduleEntry, date Date, loc *time.Location, today Date) (WorkingWindow, bool, error) {
	if loc == nil {
		return WorkingWindow{}, false, appErrors.InvalidInput("timezone is required")
	}
	if date.Weekday() != entry.Weekday || date.Before(today) {
		return WorkingWindow{}, false, nil
	}

	granularity, err := normalizeGranularity(entry.Granularity)
	if err != nil {
		return WorkingWindow{}, false, err
	}

	start := entry.Start.On(date, loc)
	end := entry.End.On(date, loc)
	if !start.Before(end) {
		return WorkingWindow{}, false, appErrors.InvalidInput("working hours %s-%s on %s are empty", entry.Start, entry.End, date)
	}

	window := WorkingWindow{
		EmployeeID:  employeeID,
		Date:        date,
		Start:       start,
		End:         end,
		LeadTime:    entry.LeadTime,
		Granularity: granularity,
	}

	if entry.PauseStart != nil && entry.PauseEnd != nil {
		pause := Interval{Start: entry.PauseStart.On(date, loc), End: entry.PauseEnd.On(date, loc)}
		if !pause.Start.Before(pause.End) || pause.Start.Before(start) || pause.End.After(end) {
			return WorkingWindow{}, false, appErrors.InvalidInput("pause %s-%s on %s lies outside working hours", entry.PauseStart, entry.PauseEnd, date)
		}
		window.Pauses = []Interval{pause}
	}

	return window, true, nil
}

// ResolveDay resolves every schedule entry of one employee that applies to date.
// Several entries on the same weekday yield several windows (split shifts).
func ResolveDay(employeeID string, entries []ScheduleEntry, date Date, loc *time.Location, today Date) ([]WorkingWindow, error) {
	var windows []WorkingWindow
	for _, entry := range entries {
		window, ok, err := ResolveWorkingWindow(employeeID, entry, date, loc, today)
		if err != nil {
			return nil, err
		}
		if ok {
			windows = append(windows, window)
		}
	}
	return windows, nil
}

func normalizeGranularity(minutes int) (int, error) {
	switch minutes {
	case 0:
		return int(RoundingStep / time.Minute), nil
	case 15, 30, 60:
		return minutes, nil
	default:
		return 0, appErrors.InvalidInput("unsupported slot granularity %d", minutes)
	}
}
