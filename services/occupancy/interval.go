package occupancy

import (
	"sort"
	"time"

	"smartparking/models"
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Intervals that merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// firstConflict returns the first binding reservation overlapping [start, end).
func firstConflict(reservations []models.Reservation, start, end time.Time) *models.Reservation {
	for i := range reservations {
		r := &reservations[i]
		if !r.Status.IsBinding() {
			continue
		}
		if Overlaps(start, end, r.StartTime, r.EndTime) {
			return r
		}
	}
	return nil
}

// nextFree walks binding reservations in start order from candidate and
// returns the instant the spot next comes free. A gap only ends the walk once
// the spot has been blocked, either by a live hold or by a reservation
// already walked through; abutting reservations merge.
func nextFree(candidate time.Time, blocked bool, reservations []models.Reservation) time.Time {
	binding := make([]models.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Status.IsBinding() && r.EndTime.After(candidate) {
			binding = append(binding, r)
		}
	}
	sort.SliceStable(binding, func(i, j int) bool {
		return binding[i].StartTime.Before(binding[j].StartTime)
	})

	for _, r := range binding {
		if !r.EndTime.After(candidate) {
			continue
		}
		if r.StartTime.After(candidate) && blocked {
			return candidate
		}
		candidate = r.EndTime
		blocked = true
	}
	return candidate
}
