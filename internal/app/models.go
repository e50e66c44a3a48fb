package app

import (
	"fmt"
	"time"

	"printer-scheduler/internal/schedule"
)

// reservationRecord is a reservations row. Column names are snake_case; the
// in-memory model is schedule.Reservation.
type reservationRecord struct {
	ID            string     `db:"id"`
	OwnerName     string     `db:"owner_name"`
	Project       *string    `db:"project"`
	Date          string     `db:"date"`
	StartTime     string     `db:"start_time"`
	DurationHours float64    `db:"duration_hours"`
	Notes         *string    `db:"notes"`
	CreatedAt     *time.Time `db:"created_at"`
	UserID        *string    `db:"user_id"`
}

func toRecord(r schedule.Reservation) reservationRecord {
	return reservationRecord{
		ID:            r.ID,
		OwnerName:     r.OwnerName,
		Project:       optional(r.Project),
		Date:          r.Date,
		StartTime:     r.StartTime.String(),
		DurationHours: r.DurationHours,
		Notes:         optional(r.Notes),
		CreatedAt:     r.CreatedAt,
		UserID:        r.OwnerID,
	}
}

func (rec reservationRecord) reservation() (schedule.Reservation, error) {
	start, err := schedule.ParseClock(rec.StartTime)
	if err != nil {
		return schedule.Reservation{}, fmt.Errorf("reservation %s: %w", rec.ID, err)
	}
	return schedule.Reservation{
		ID:            rec.ID,
		OwnerName:     rec.OwnerName,
		Project:       deref(rec.Project),
		Date:          rec.Date,
		StartTime:     start,
		DurationHours: rec.DurationHours,
		Notes:         deref(rec.Notes),
		CreatedAt:     rec.CreatedAt,
		OwnerID:       rec.UserID,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// submitRequest is the body of POST and PUT /api/reservations.
type submitRequest struct {
	schedule.Draft
	Confirm bool `json:"confirm"`
}

type conflictView struct {
	ID        string             `json:"id"`
	OwnerName string             `json:"ownerName"`
	StartTime schedule.ClockTime `json:"startTime"`
	EndTime   schedule.ClockTime `json:"endTime"`
	CreatedAt *time.Time         `json:"createdAt,omitempty"`
}

type reservationView struct {
	schedule.Reservation
	EndTime     schedule.ClockTime `json:"endTime"`
	Duration    string             `json:"duration"`
	Conflicts   []conflictView     `json:"conflicts"`
	HasPriority bool               `json:"hasPriority"`
	Secondary   bool               `json:"secondary"`
}

func conflictViews(conflicts []schedule.Reservation) []conflictView {
	out := make([]conflictView, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, conflictView{
			ID:        c.ID,
			OwnerName: c.OwnerName,
			StartTime: c.StartTime,
			EndTime:   c.EndTime(),
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func newReservationView(r schedule.Reservation, snapshot []schedule.Reservation) reservationView {
	a := schedule.Assess(r, snapshot)
	return reservationView{
		Reservation: r,
		EndTime:     r.EndTime(),
		Duration:    schedule.FormatDuration(r.DurationHours),
		Conflicts:   conflictViews(a.Conflicts),
		HasPriority: a.HasPriority,
		Secondary:   a.Secondary,
	}
}

func reservationViews(rs, snapshot []schedule.Reservation) []reservationView {
	out := make([]reservationView, 0, len(rs))
	for _, r := range rs {
		out = append(out, newReservationView(r, snapshot))
	}
	return out
}
