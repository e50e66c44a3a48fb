// Package schedule holds the booking rules for the shared printer: end-time arithmetic,
// same-day conflict detection, priority between conflicting bookings and submission checks.
// Everything here is pure and safe to call concurrently.
package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for Reservation.Date.
const DateLayout = "2006-01-02"

// Reservation is one booking of the printer.
type Reservation struct {
	ID            string     `json:"id"`
	OwnerName     string     `json:"ownerName"`
	Project       string     `json:"project,omitempty"`
	Date          string     `json:"date"`
	StartTime     ClockTime  `json:"startTime"`
	DurationHours float64    `json:"durationHours"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	OwnerID       *string    `json:"ownerId,omitempty"`
}

// EndTime is derived, never stored.
func (r Reservation) EndTime() ClockTime {
	return EndTime(r.StartTime, r.DurationHours)
}

// OwnedBy reports whether principalID created the reservation. Legacy rows without an
// owner belong to nobody.
func (r Reservation) OwnedBy(principalID string) bool {
	return r.OwnerID != nil && principalID != "" && *r.OwnerID == principalID
}

// Interval is a half-open [Start, End) range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses the half-open rule: touching intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// Contains reports whether t falls inside [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Interval anchors both start and end on r.Date. An end that wrapped past midnight lands
// before the start on the same date; that matches the same-day-only comparison rule.
func (r Reservation) Interval() (Interval, error) {
	day, err := time.ParseInLocation(DateLayout, r.Date, time.UTC)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	end := r.EndTime()
	return Interval{
		Start: at(day, r.StartTime),
		End:   at(day, end),
	}, nil
}

func at(day time.Time, c ClockTime) time.Time {
	return day.Add(time.Duration(c.Minutes()) * time.Minute)
}
