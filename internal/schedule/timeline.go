package schedule

import (
	"fmt"
	"time"
)

// Timeline splits reservations around a point in time.
type Timeline struct {
	Upcoming []Reservation
	Active   []Reservation
	Past     []Reservation
}

// Partition places each reservation in exactly one bucket relative to now, keeping input
// order. now is read as a wall-clock time in its own location. Reservations with an
// unparseable date are dropped.
func Partition(reservations []Reservation, now time.Time) Timeline {
	wall := time.Date(now.Year(), now.Month(), now.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)

	t := Timeline{
		Upcoming: []Reservation{},
		Active:   []Reservation{},
		Past:     []Reservation{},
	}
	for _, r := range reservations {
		iv, err := r.running()
		if err != nil {
			continue
		}
		switch {
		case iv.Start.After(wall):
			t.Upcoming = append(t.Upcoming, r)
		case iv.Contains(wall):
			t.Active = append(t.Active, r)
		default:
			t.Past = append(t.Past, r)
		}
	}
	return t
}

// running is when the printer is actually busy: unlike Interval, a booking that wraps past
// midnight ends on the following day.
func (r Reservation) running() (Interval, error) {
	day, err := time.ParseInLocation(DateLayout, r.Date, time.UTC)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	start := at(day, r.StartTime)
	return Interval{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes(r.DurationHours)) * time.Minute),
	}, nil
}
