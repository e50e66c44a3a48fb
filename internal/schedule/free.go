package schedule

import "sort"

// Slot is a free window on the printer.
type Slot struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// FreeSlots returns the gaps between reservations on date within [open, closing).
// A booking that wraps past midnight blocks the rest of its own day.
func FreeSlots(all []Reservation, date string, open, closing ClockTime) []Slot {
	type span struct{ start, end int }

	lo, hi := open.Minutes(), closing.Minutes()
	var busy []span
	for _, r := range all {
		if r.Date != date {
			continue
		}
		s, e := r.StartTime.Minutes(), endMinutes(r.StartTime, r.DurationHours)
		if e > minutesPerDay {
			e = minutesPerDay
		}
		if e <= lo || s >= hi {
			continue
		}
		busy = append(busy, span{max(s, lo), min(e, hi)})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start < busy[j].start })

	slots := []Slot{}
	cursor := lo
	for _, b := range busy {
		if b.start > cursor {
			slots = append(slots, Slot{Start: clockFromMinutes(cursor), End: clockFromMinutes(b.start)})
		}
		if b.end > cursor {
			cursor = b.end
		}
	}
	if cursor < hi {
		slots = append(slots, Slot{Start: clockFromMinutes(cursor), End: clockFromMinutes(hi)})
	}
	return slots
}
