package availability

import (
	"time"

	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

const daysPerWeek = 7

// EmployeeInput is everything the engine needs about one eligible employee.
type EmployeeInput struct {
	ID       string
	Schedule []ScheduleEntry
	Sources  BlockSources
}

// Demand describes one service to be placed: its full occupancy and who may perform it.
type Demand struct {
	Duration  time.Duration
	Employees []EmployeeInput
}

// WeekRequest asks for single-service availability of the week containing Anchor.
type WeekRequest struct {
	Anchor   Date
	Location *time.Location
	Now      time.Time
	Demand   Demand
}

// CombinedWeekRequest asks for two back-to-back services in the week containing Anchor.
type CombinedWeekRequest struct {
	Anchor    Date
	Location  *time.Location
	Now       time.Time
	First     Demand
	Second    Demand
	Tolerance time.Duration
}

// Issue records an employee left out of the result because its data could not be used.
type Issue struct {
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason"`
}

// DaySlots is the grouped availability of one date.
type DaySlots struct {
	Date  Date          `json:"date"`
	Slots []GroupedSlot `json:"slots"`
}

// WeekResult is the outcome of ComputeWeek.
type WeekResult struct {
	Days   []DaySlots `json:"days"`
	Issues []Issue    `json:"issues,omitempty"`
}

// CombinedDay is the combined availability of one date.
type CombinedDay struct {
	Date  Date           `json:"date"`
	Slots []CombinedSlot `json:"slots"`
}

// CombinedWeekResult is the outcome of ComputeCombinedWeek.
type CombinedWeekResult struct {
	Days   []CombinedDay `json:"days"`
	Issues []Issue       `json:"issues,omitempty"`
}

// WeekDates lists the dates of the Monday-Sunday week containing anchor that are
// not before today.
func WeekDates(anchor, today Date) []Date {
	monday := anchor.MondayOfWeek()
	dates := make([]Date, 0, daysPerWeek)
	for i := 0; i < daysPerWeek; i++ {
		date := monday.AddDays(i)
		if date.Before(today) {
			continue
		}
		dates = append(dates, date)
	}
	return dates
}

// ComputeWeek runs the full pipeline for one service. Employees whose schedule
// or block data is unusable are reported in Issues and excluded; the rest are
// unaffected.
func ComputeWeek(req WeekRequest) (WeekResult, error) {
	if err := validateFrame(req.Anchor, req.Location); err != nil {
		return WeekResult{}, err
	}
	if err := validateDemand("service", req.Demand); err != nil {
		return WeekResult{}, err
	}

	dates := WeekDates(req.Anchor, DateOf(req.Now, req.Location))
	perDay, issues := demandSlots(dates, req.Location, req.Now, req.Demand)

	result := WeekResult{Days: make([]DaySlots, 0, len(dates)), Issues: issues}
	for _, date := range dates {
		slots := GroupSlots(perDay[date])
		result.Days = append(result.Days, DaySlots{Date: date, Slots: slots})
	}
	return result, nil
}

// ComputeCombinedWeek computes both services independently and pairs them per day.
func ComputeCombinedWeek(req CombinedWeekRequest) (CombinedWeekResult, error) {
	if err := validateFrame(req.Anchor, req.Location); err != nil {
		return CombinedWeekResult{}, err
	}
	if err := validateDemand("first service", req.First); err != nil {
		return CombinedWeekResult{}, err
	}
	if err := validateDemand("second service", req.Second); err != nil {
		return CombinedWeekResult{}, err
	}
	if req.Tolerance < 0 {
		return CombinedWeekResult{}, appErrors.InvalidInput("tolerance must not be negative, got %s", req.Tolerance)
	}

	dates := WeekDates(req.Anchor, DateOf(req.Now, req.Location))
	firstDays, firstIssues := demandSlots(dates, req.Location, req.Now, req.First)
	secondDays, secondIssues := demandSlots(dates, req.Location, req.Now, req.Second)

	opts := CombineOptions{
		FirstDuration:  req.First.Duration,
		SecondDuration: req.Second.Duration,
		Tolerance:      req.Tolerance,
	}
	result := CombinedWeekResult{
		Days:   make([]CombinedDay, 0, len(dates)),
		Issues: mergeIssues(firstIssues, secondIssues),
	}
	for _, date := range dates {
		result.Days = append(result.Days, CombinedDay{
			Date:  date,
			Slots: CombineSlots(firstDays[date], secondDays[date], opts),
		})
	}
	return result, nil
}

// EmployeeSlots computes one employee's slots for one date.
func EmployeeSlots(employee EmployeeInput, date Date, loc *time.Location, now time.Time, duration time.Duration) ([]Slot, error) {
	today := DateOf(now, loc)
	windows, err := ResolveDay(employee.ID, employee.Schedule, date, loc, today)
	if err != nil {
		return nil, err
	}

	var slots []Slot
	for _, window := range windows {
		blocked, err := AggregateBlocked(window, employee.Sources, now, loc)
		if err != nil {
			return nil, err
		}
		free, err := FreeWindows(window.Start, window.End, blocked, duration)
		if err != nil {
			return nil, err
		}
		windowSlots, err := GenerateSlots(free, window.Granularity, loc)
		if err != nil {
			return nil, err
		}
		slots = append(slots, windowSlots...)
	}
	return slots, nil
}

// demandSlots computes per-date, per-employee slots. An employee failing on any
// date is dropped from every date so the week stays consistent.
func demandSlots(dates []Date, loc *time.Location, now time.Time, demand Demand) (map[Date]map[string][]Slot, []Issue) {
	perDay := make(map[Date]map[string][]Slot, len(dates))
	for _, date := range dates {
		perDay[date] = make(map[string][]Slot)
	}

	var issues []Issue
	seen := make(map[string]struct{}, len(demand.Employees))
	for _, employee := range demand.Employees {
		if _, dup := seen[employee.ID]; dup {
			continue
		}
		seen[employee.ID] = struct{}{}

		week := make(map[Date][]Slot, len(dates))
		var failure error
		for _, date := range dates {
			slots, err := EmployeeSlots(employee, date, loc, now, demand.Duration)
			if err != nil {
				failure = err
				break
			}
			week[date] = slots
		}
		if failure != nil {
			issues = append(issues, Issue{EmployeeID: employee.ID, Reason: failure.Error()})
			continue
		}
		for date, slots := range week {
			if len(slots) > 0 {
				perDay[date][employee.ID] = slots
			}
		}
	}
	return perDay, issues
}

func validateFrame(anchor Date, loc *time.Location) error {
	if loc == nil {
		return appErrors.InvalidInput("timezone is required")
	}
	if anchor.IsZero() {
		return appErrors.InvalidInput("anchor date is required")
	}
	return nil
}

func validateDemand(label string, demand Demand) error {
	if demand.Duration <= 0 {
		return appErrors.InvalidInput("%s duration must be positive, got %s", label, demand.Duration)
	}
	if len(demand.Employees) == 0 {
		return appErrors.InvalidInput("%s has no eligible employees", label)
	}
	for _, employee := range demand.Employees {
		if employee.ID == "" {
			return appErrors.InvalidInput("%s lists an employee without id", label)
		}
	}
	return nil
}

func mergeIssues(lists ...[]Issue) []Issue {
	var merged []Issue
	seen := make(map[Issue]struct{})
	for _, list := range lists {
		for _, issue := range list {
			if _, ok := seen[issue]; ok {
				continue
			}
			seen[issue] = struct{}{}
			merged = append(merged, issue)
		}
	}
	return merged
}
