package availability

import (
	"sort"
	"time"
)

// GroupSlots merges per-employee slots of one day into start instants offered
// by any employee. Slot length is not part of the key.
func GroupSlots(byEmployee map[string][]Slot) []GroupedSlot {
	members := make(map[time.Time]map[string]struct{})
	for employeeID, slots := range byEmployee {
		for _, slot := range slots {
			key := slot.Start.UTC()
			if members[key] == nil {
				members[key] = make(map[string]struct{})
			}
			members[key][employeeID] = struct{}{}
		}
	}

	grouped := make([]GroupedSlot, 0, len(members))
	for start, ids := range members {
		grouped = append(grouped, GroupedSlot{Start: start, EmployeeIDs: sortedKeys(ids)})
	}
	sort.Slice(grouped, func(i, j int) bool {
		return grouped[i].Start.Before(grouped[j].Start)
	})
	return grouped
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
