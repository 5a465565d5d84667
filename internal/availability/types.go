package availability

import "time"

// RoundingStep is the fixed boundary the first slot of every free window is
// rounded up to, independent of the employee's slot granularity.
const RoundingStep = 15 * time.Minute

// DefaultCombineTolerance bounds how long a customer waits between two
// sequentially booked services.
const DefaultCombineTolerance = 30 * time.Minute

// Interval is a half-open absolute time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration of the interval, zero when inverted.
func (i Interval) Duration() time.Duration {
	if !i.End.After(i.Start) {
		return 0
	}
	return i.End.Sub(i.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// ScheduleEntry is one recurring weekly working-hours record of an employee.
type ScheduleEntry struct {
	Weekday     time.Weekday
	Start       WallClock
	End         WallClock
	PauseStart  *WallClock
	PauseEnd    *WallClock
	LeadTime    LeadTime
	Granularity int
}

// WorkingWindow is an employee's bookable range on one date, in absolute time.
type WorkingWindow struct {
	EmployeeID  string
	Date        Date
	Start       time.Time
	End         time.Time
	Pauses      []Interval
	LeadTime    LeadTime
	Granularity int
}

// Interval returns the window bounds.
func (w WorkingWindow) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// FreeWindow is the inclusive range of instants at which a service may start
// and still finish before the next blocked interval or the window end.
type FreeWindow struct {
	MinStart time.Time `json:"minStart"`
	MaxStart time.Time `json:"maxStart"`
}

// Slot is one discretized booking offer of a single employee.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GroupedSlot is a start instant offered by one or more employees.
type GroupedSlot struct {
	Start       time.Time `json:"start"`
	EmployeeIDs []string  `json:"employeeIds"`
}

// ServiceSlot is one leg of a combined booking.
type ServiceSlot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	EmployeeIDs []string  `json:"employeeIds"`
}

// CombinedSlot pairs a first-service start with the second service that follows it.
type CombinedSlot struct {
	First  ServiceSlot `json:"firstService"`
	Second ServiceSlot `json:"secondService"`
}

// Appointment is an existing booking that claims an employee's time.
// DateKey is the stored calendar date; when empty the local date of Start is used.
type Appointment struct {
	EmployeeID string
	DateKey    string
	Start      time.Time
	End        time.Time
}

// BlockedEntry is a vacation or blocked-time record for one calendar date.
// Multi-day vacations arrive as one entry per date sharing GroupID.
type BlockedEntry struct {
	EmployeeID string
	GroupID    string
	DateKey    string
	Start      *WallClock
	End        *WallClock
	AllDay     bool
}

// BlockSources bundles every claim on an employee's time for aggregation.
type BlockSources struct {
	Appointments []Appointment
	Blocked      []BlockedEntry
	ExternalBusy []Interval
}
