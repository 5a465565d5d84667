package availability

import (
	"sort"
	"time"
)

// CombineOptions configures CombineSlots.
type CombineOptions struct {
	// FirstDuration is the full occupancy of the first service, buffer included.
	FirstDuration  time.Duration
	SecondDuration time.Duration
	// Tolerance bounds the wait after the first service. Zero means DefaultCombineTolerance.
	Tolerance time.Duration
}

// CombineSlots pairs every first-service slot with the earliest second-service
// start in [firstEnd, firstEnd+Tolerance], both bounds inclusive. Every employee
// offering that exact second start is listed. First-service slots sharing a
// start collapse into one entry.
func CombineSlots(first, second map[string][]Slot, opts CombineOptions) []CombinedSlot {
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultCombineTolerance
	}

	candidates := GroupSlots(second)
	firstGroups := GroupSlots(first)

	combined := make([]CombinedSlot, 0, len(firstGroups))
	for _, group := range firstGroups {
		firstEnd := group.Start.Add(opts.FirstDuration)
		match, ok := earliestWithin(candidates, firstEnd, firstEnd.Add(tolerance))
		if !ok {
			continue
		}
		combined = append(combined, CombinedSlot{
			First: ServiceSlot{
				Start:       group.Start,
				End:         firstEnd,
				EmployeeIDs: group.EmployeeIDs,
			},
			Second: ServiceSlot{
				Start:       match.Start,
				End:         match.Start.Add(opts.SecondDuration),
				EmployeeIDs: match.EmployeeIDs,
			},
		})
	}
	return combined
}

// earliestWithin searches sorted grouped slots for the first start in [from, to].
func earliestWithin(sorted []GroupedSlot, from, to time.Time) (GroupedSlot, bool) {
	idx := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Start.Before(from)
	})
	if idx == len(sorted) || sorted[idx].Start.After(to) {
		return GroupedSlot{}, false
	}
	return sorted[idx], true
}
